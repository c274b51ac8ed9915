package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"vatrentals/internal/common"
	"vatrentals/internal/models"
	"vatrentals/internal/repositories"
)

type InsuranceService interface {
	CreatePolicy(ctx context.Context, policy *models.InsurancePolicy) error
	GetPolicyByID(ctx context.Context, id uuid.UUID) (*models.InsurancePolicy, error)
	ListPolicies(ctx context.Context, limit, offset int) ([]*models.InsurancePolicy, error)
	ListPoliciesByCar(ctx context.Context, carID uuid.UUID) ([]*models.InsurancePolicy, error)
	ListExpiring(ctx context.Context, within time.Duration) ([]*models.InsurancePolicy, error)
	UpdatePolicy(ctx context.Context, policy *models.InsurancePolicy) error
	DeletePolicy(ctx context.Context, id uuid.UUID) error
}

type insuranceService struct {
	insuranceRepo repositories.InsuranceRepository
	carRepo       repositories.CarRepository
}

func NewInsuranceService(insuranceRepo repositories.InsuranceRepository, carRepo repositories.CarRepository) InsuranceService {
	return &insuranceService{insuranceRepo: insuranceRepo, carRepo: carRepo}
}

func (s *insuranceService) CreatePolicy(ctx context.Context, policy *models.InsurancePolicy) error {
	if err := common.ValidateRequiredString(policy.PolicyNumber, "policy number"); err != nil {
		return err
	}
	if err := common.ValidateRequiredString(policy.Provider, "provider"); err != nil {
		return err
	}
	if err := common.ValidatePositiveFloat(policy.Premium, "premium", 10000000); err != nil {
		return err
	}
	if err := common.ValidateDateOrder(policy.StartsOn, policy.ExpiresOn); err != nil {
		return err
	}

	car, err := s.carRepo.GetByID(ctx, policy.CarID)
	if err != nil {
		return fmt.Errorf("retrieve car: %w", err)
	}
	if car == nil {
		return common.NotFoundf("car %s", policy.CarID)
	}

	if policy.ID == uuid.Nil {
		policy.ID = uuid.New()
	}
	return s.insuranceRepo.Create(ctx, policy)
}

func (s *insuranceService) GetPolicyByID(ctx context.Context, id uuid.UUID) (*models.InsurancePolicy, error) {
	policy, err := s.insuranceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if policy == nil {
		return nil, common.NotFoundf("insurance policy %s", id)
	}
	return policy, nil
}

func (s *insuranceService) ListPolicies(ctx context.Context, limit, offset int) ([]*models.InsurancePolicy, error) {
	limit, offset, err := common.ValidatePaginationParams(limit, offset)
	if err != nil {
		return nil, err
	}
	return s.insuranceRepo.List(ctx, limit, offset)
}

func (s *insuranceService) ListPoliciesByCar(ctx context.Context, carID uuid.UUID) ([]*models.InsurancePolicy, error) {
	return s.insuranceRepo.ListByCar(ctx, carID)
}

func (s *insuranceService) ListExpiring(ctx context.Context, within time.Duration) ([]*models.InsurancePolicy, error) {
	return s.insuranceRepo.ListExpiringBefore(ctx, time.Now().Add(within))
}

func (s *insuranceService) UpdatePolicy(ctx context.Context, policy *models.InsurancePolicy) error {
	existing, err := s.insuranceRepo.GetByID(ctx, policy.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return common.NotFoundf("insurance policy %s", policy.ID)
	}
	if err := common.ValidateDateOrder(policy.StartsOn, policy.ExpiresOn); err != nil {
		return err
	}
	return s.insuranceRepo.Update(ctx, policy)
}

func (s *insuranceService) DeletePolicy(ctx context.Context, id uuid.UUID) error {
	return s.insuranceRepo.Delete(ctx, id)
}
