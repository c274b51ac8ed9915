package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"vatrentals/internal/caching"
	"vatrentals/internal/common"
	"vatrentals/internal/models"
	"vatrentals/internal/repositories"
)

const customerCacheTTL = 15 * time.Minute

// CustomerService manages the customer directory. The booking ledger
// reads name and display code for denormalized snapshots; it never
// writes back.
type CustomerService interface {
	CreateCustomer(ctx context.Context, req *CreateCustomerRequest) (*models.Customer, error)
	GetCustomerByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	ListCustomers(ctx context.Context, limit, offset int) ([]*models.Customer, error)
	SearchCustomers(ctx context.Context, query string, limit, offset int) ([]*models.Customer, error)
	UpdateCustomer(ctx context.Context, customer *models.Customer) error
	DeleteCustomer(ctx context.Context, id uuid.UUID) error
	NextCustomerCode(ctx context.Context) (string, error)
}

type CreateCustomerRequest struct {
	Name          string
	Phone         string
	Address       *string
	AadharNumber  *string
	LicenseNumber *string
}

type customerService struct {
	customerRepo repositories.CustomerRepository
	cacheSvc     caching.CacheService
}

func NewCustomerService(customerRepo repositories.CustomerRepository, cacheSvc caching.CacheService) CustomerService {
	return &customerService{customerRepo: customerRepo, cacheSvc: cacheSvc}
}

func (s *customerService) CreateCustomer(ctx context.Context, req *CreateCustomerRequest) (*models.Customer, error) {
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return nil, err
	}
	if err := common.ValidateRequiredString(req.Phone, "phone"); err != nil {
		return nil, err
	}
	if err := common.SanitizeHTMLField(req.Address, "address"); err != nil {
		return nil, err
	}

	existing, err := s.customerRepo.GetByPhone(ctx, req.Phone)
	if err != nil {
		return nil, fmt.Errorf("check phone number: %w", err)
	}
	if existing != nil {
		return nil, common.Validationf("a customer with phone %s already exists", req.Phone)
	}

	code, err := s.NextCustomerCode(ctx)
	if err != nil {
		return nil, fmt.Errorf("generate customer code: %w", err)
	}

	customer := &models.Customer{
		ID:            uuid.New(),
		CustomerID:    code,
		Name:          req.Name,
		Phone:         req.Phone,
		Address:       req.Address,
		AadharNumber:  req.AadharNumber,
		LicenseNumber: req.LicenseNumber,
	}

	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("save customer: %w", err)
	}
	return customer, nil
}

func (s *customerService) GetCustomerByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	if cached, err := s.cacheSvc.GetCustomer(ctx, id); err == nil && cached != nil {
		return cached, nil
	}

	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, common.NotFoundf("customer %s", id)
	}

	if err := s.cacheSvc.SetCustomer(ctx, customer, customerCacheTTL); err != nil {
		log.Printf("WARN: failed to cache customer %s: %v", id, err)
	}
	return customer, nil
}

func (s *customerService) ListCustomers(ctx context.Context, limit, offset int) ([]*models.Customer, error) {
	limit, offset, err := common.ValidatePaginationParams(limit, offset)
	if err != nil {
		return nil, err
	}
	return s.customerRepo.List(ctx, limit, offset)
}

func (s *customerService) SearchCustomers(ctx context.Context, query string, limit, offset int) ([]*models.Customer, error) {
	query = common.SanitizeSearchQuery(query)
	if query == "" {
		return nil, common.Validationf("search query cannot be empty")
	}
	limit, offset, err := common.ValidatePaginationParams(limit, offset)
	if err != nil {
		return nil, err
	}
	return s.customerRepo.Search(ctx, query, limit, offset)
}

// UpdateCustomer edits contact fields only. The display code and the
// snapshots already taken on bookings are never rewritten.
func (s *customerService) UpdateCustomer(ctx context.Context, customer *models.Customer) error {
	existing, err := s.customerRepo.GetByID(ctx, customer.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return common.NotFoundf("customer %s", customer.ID)
	}

	customer.CustomerID = existing.CustomerID
	customer.CreatedAt = existing.CreatedAt

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return err
	}
	if err := s.cacheSvc.DeleteCustomer(ctx, customer.ID); err != nil {
		log.Printf("WARN: failed to drop customer cache %s: %v", customer.ID, err)
	}
	return nil
}

func (s *customerService) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	if err := s.customerRepo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.cacheSvc.DeleteCustomer(ctx, id); err != nil {
		log.Printf("WARN: failed to drop customer cache %s: %v", id, err)
	}
	return nil
}

// NextCustomerCode derives the display code from the directory size,
// e.g. CUST-0042 for the forty-second customer.
func (s *customerService) NextCustomerCode(ctx context.Context) (string, error) {
	count, err := s.customerRepo.Count(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("CUST-%04d", count+1), nil
}
