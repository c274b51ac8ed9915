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

const carCacheTTL = 15 * time.Minute

// FleetService manages the car directory. The booking ledger reads car
// status and rate through it and writes status back on create/return.
type FleetService interface {
	CreateCar(ctx context.Context, car *models.Car) error
	GetCarByID(ctx context.Context, id uuid.UUID) (*models.Car, error)
	ListCars(ctx context.Context, limit, offset int) ([]*models.Car, error)
	ListCarsByStatus(ctx context.Context, status string, limit, offset int) ([]*models.Car, error)
	SearchCars(ctx context.Context, filter *models.CarSearchFilter) ([]*models.Car, error)
	UpdateCar(ctx context.Context, car *models.Car) error
	SetCarStatus(ctx context.Context, id uuid.UUID, status string) error
	DeleteCar(ctx context.Context, id uuid.UUID) error
}

type fleetService struct {
	carRepo     repositories.CarRepository
	bookingRepo repositories.BookingRepository
	cacheSvc    caching.CacheService
}

func NewFleetService(carRepo repositories.CarRepository, bookingRepo repositories.BookingRepository,
	cacheSvc caching.CacheService) FleetService {
	return &fleetService{
		carRepo:     carRepo,
		bookingRepo: bookingRepo,
		cacheSvc:    cacheSvc,
	}
}

func validCarStatus(status string) bool {
	switch status {
	case models.CarStatusAvailable, models.CarStatusRented, models.CarStatusUnderMaintenance:
		return true
	}
	return false
}

func (s *fleetService) CreateCar(ctx context.Context, car *models.Car) error {
	if err := common.ValidateRequiredString(car.Make, "make"); err != nil {
		return err
	}
	if err := common.ValidateRequiredString(car.Model, "model"); err != nil {
		return err
	}
	if err := common.ValidateRequiredString(car.PlateNumber, "plate number"); err != nil {
		return err
	}
	if car.DailyRate != nil {
		if err := common.ValidatePositiveFloat(*car.DailyRate, "daily rate", 1000000); err != nil {
			return err
		}
	}

	existing, err := s.carRepo.GetByPlateNumber(ctx, car.PlateNumber)
	if err != nil {
		return fmt.Errorf("check plate number: %w", err)
	}
	if existing != nil {
		return common.Validationf("a car with plate number %s already exists", car.PlateNumber)
	}

	if car.ID == uuid.Nil {
		car.ID = uuid.New()
	}
	if car.Status == "" {
		car.Status = models.CarStatusAvailable
	}
	if !validCarStatus(car.Status) {
		return common.Validationf("invalid car status %q", car.Status)
	}

	return s.carRepo.Create(ctx, car)
}

func (s *fleetService) GetCarByID(ctx context.Context, id uuid.UUID) (*models.Car, error) {
	if cached, err := s.cacheSvc.GetCar(ctx, id); err == nil && cached != nil {
		return cached, nil
	}

	car, err := s.carRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if car == nil {
		return nil, common.NotFoundf("car %s", id)
	}

	if err := s.cacheSvc.SetCar(ctx, car, carCacheTTL); err != nil {
		log.Printf("WARN: failed to cache car %s: %v", id, err)
	}
	return car, nil
}

func (s *fleetService) ListCars(ctx context.Context, limit, offset int) ([]*models.Car, error) {
	limit, offset, err := common.ValidatePaginationParams(limit, offset)
	if err != nil {
		return nil, err
	}
	return s.carRepo.List(ctx, limit, offset)
}

func (s *fleetService) ListCarsByStatus(ctx context.Context, status string, limit, offset int) ([]*models.Car, error) {
	if !validCarStatus(status) {
		return nil, common.Validationf("invalid car status %q", status)
	}
	limit, offset, err := common.ValidatePaginationParams(limit, offset)
	if err != nil {
		return nil, err
	}
	return s.carRepo.ListByStatus(ctx, status, limit, offset)
}

func (s *fleetService) SearchCars(ctx context.Context, filter *models.CarSearchFilter) ([]*models.Car, error) {
	if filter == nil {
		return nil, common.Validationf("filter cannot be nil")
	}
	if filter.Query != "" {
		filter.Query = common.SanitizeSearchQuery(filter.Query)
	}
	var err error
	filter.Limit, filter.Offset, err = common.ValidatePaginationParams(filter.Limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	return s.carRepo.Search(ctx, filter)
}

func (s *fleetService) UpdateCar(ctx context.Context, car *models.Car) error {
	existing, err := s.carRepo.GetByID(ctx, car.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return common.NotFoundf("car %s", car.ID)
	}

	// Status moves through SetCarStatus or the booking lifecycle, not
	// through a general update.
	car.Status = existing.Status
	car.CreatedAt = existing.CreatedAt

	if err := s.carRepo.Update(ctx, car); err != nil {
		return err
	}
	s.dropCarCaches(ctx, car.ID)
	return nil
}

func (s *fleetService) SetCarStatus(ctx context.Context, id uuid.UUID, status string) error {
	if !validCarStatus(status) {
		return common.Validationf("invalid car status %q", status)
	}

	car, err := s.carRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if car == nil {
		return common.NotFoundf("car %s", id)
	}

	// A car with an active booking stays Rented until the booking is
	// returned; only maintenance moves are allowed underneath it.
	if car.Status == models.CarStatusRented && status == models.CarStatusAvailable {
		active, err := s.bookingRepo.FindActiveByCar(ctx, id)
		if err != nil {
			return err
		}
		if len(active) > 0 {
			return common.InvalidStatef("car %s has an active booking", car.PlateNumber)
		}
	}

	if err := s.carRepo.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	s.dropCarCaches(ctx, id)
	return nil
}

func (s *fleetService) DeleteCar(ctx context.Context, id uuid.UUID) error {
	active, err := s.bookingRepo.FindActiveByCar(ctx, id)
	if err != nil {
		return err
	}
	if len(active) > 0 {
		return common.InvalidStatef("car %s has %d active booking(s)", id, len(active))
	}

	if err := s.carRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.dropCarCaches(ctx, id)
	return nil
}

func (s *fleetService) dropCarCaches(ctx context.Context, id uuid.UUID) {
	if err := s.cacheSvc.DeleteCar(ctx, id); err != nil {
		log.Printf("WARN: failed to drop car cache %s: %v", id, err)
	}
	if err := s.cacheSvc.InvalidateDerived(ctx); err != nil {
		log.Printf("WARN: failed to invalidate derived caches: %v", err)
	}
}
