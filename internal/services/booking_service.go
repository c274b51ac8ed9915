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

// BookingServiceInterface is the booking ledger: it owns the booking
// lifecycle, conflict detection and the car availability side effects.
type BookingServiceInterface interface {
	CreateBooking(ctx context.Context, req *CreateBookingRequest) (*models.Booking, error)
	GetBookingByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	GetBookingByCode(ctx context.Context, code string) (*models.Booking, error)
	ListBookings(ctx context.Context, limit, offset int) ([]*models.Booking, error)
	SearchBookings(ctx context.Context, filter *models.BookingSearchFilter) ([]*models.Booking, error)
	UpdateBooking(ctx context.Context, req *UpdateBookingRequest) (*models.Booking, error)
	MarkReturned(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	RefundDeposit(ctx context.Context, id uuid.UUID) (bool, error)
	CancelBooking(ctx context.Context, id uuid.UUID) error
	CalendarView(ctx context.Context, from, to time.Time) ([]*models.Booking, error)
	NextBookingCode(ctx context.Context) (string, error)
}

// CreateBookingRequest carries the caller-supplied booking input.
// Customer and car display fields are snapshotted server-side.
type CreateBookingRequest struct {
	CustomerID        uuid.UUID
	CarID             uuid.UUID
	StartDate         time.Time
	EndDate           time.Time
	StartTime         string
	EndTime           string
	DailyRate         *float64
	DepositAmount     float64
	TotalRentReceived float64
	PaymentMode       string
	Notes             *string
}

// UpdateBookingRequest covers the editable, non-derived booking fields.
// Dates, rate and status are immutable after creation; status moves only
// through the lifecycle methods.
type UpdateBookingRequest struct {
	ID                uuid.UUID
	StartTime         *string
	EndTime           *string
	DepositAmount     *float64
	TotalRentReceived *float64
	PaymentMode       *string
	Notes             *string
}

type bookingService struct {
	bookingRepo  repositories.BookingRepository
	carRepo      repositories.CarRepository
	customerRepo repositories.CustomerRepository
	cacheSvc     caching.CacheService
	now          func() time.Time
}

// NewBookingService creates the booking ledger service.
func NewBookingService(bookingRepo repositories.BookingRepository, carRepo repositories.CarRepository,
	customerRepo repositories.CustomerRepository, cacheSvc caching.CacheService) BookingServiceInterface {
	return &bookingService{
		bookingRepo:  bookingRepo,
		carRepo:      carRepo,
		customerRepo: customerRepo,
		cacheSvc:     cacheSvc,
		now:          time.Now,
	}
}

// CreateBooking validates the input, runs conflict detection against the
// car's Active bookings and persists the booking atomically with the car
// status flip. Nothing is written when any step fails.
func (s *bookingService) CreateBooking(ctx context.Context, req *CreateBookingRequest) (*models.Booking, error) {
	if req.CustomerID == uuid.Nil {
		return nil, common.Validationf("customer ID is required")
	}
	if req.CarID == uuid.Nil {
		return nil, common.Validationf("car ID is required")
	}
	if err := common.ValidateDateOrder(req.StartDate, req.EndDate); err != nil {
		return nil, err
	}
	if err := common.ValidateNonNegativeFloat(req.DepositAmount, "deposit amount", 10000000); err != nil {
		return nil, err
	}
	if err := common.ValidateNonNegativeFloat(req.TotalRentReceived, "total rent received", 10000000); err != nil {
		return nil, err
	}
	if err := common.SanitizeHTMLField(req.Notes, "booking notes"); err != nil {
		return nil, err
	}

	car, err := s.carRepo.GetByID(ctx, req.CarID)
	if err != nil {
		return nil, fmt.Errorf("retrieve car: %w", err)
	}
	if car == nil {
		return nil, common.NotFoundf("car %s", req.CarID)
	}

	customer, err := s.customerRepo.GetByID(ctx, req.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("retrieve customer: %w", err)
	}
	if customer == nil {
		return nil, common.NotFoundf("customer %s", req.CustomerID)
	}

	// Fast pre-check over the in-memory list. The repository repeats the
	// check under a row lock, so this can never admit a double-booking;
	// it only fails sooner.
	active, err := s.bookingRepo.FindActiveByCar(ctx, req.CarID)
	if err != nil {
		return nil, fmt.Errorf("load active bookings: %w", err)
	}
	for _, existing := range active {
		if existing.ConflictsWith(req.StartDate, req.EndDate) {
			return nil, common.ErrBookingConflict
		}
	}

	rate := ResolveDailyRate(req.DailyRate, car)
	duration := RentalDuration(req.StartDate, req.EndDate)

	booking := &models.Booking{
		ID:                uuid.New(),
		CustomerID:        customer.ID,
		CustomerName:      customer.Name,
		CarID:             car.ID,
		CarDetails:        car.DisplayString(),
		StartDate:         req.StartDate,
		EndDate:           req.EndDate,
		StartTime:         req.StartTime,
		EndTime:           req.EndTime,
		Duration:          duration,
		DailyRate:         rate,
		TotalAmount:       TotalAmount(rate, duration),
		DepositAmount:     req.DepositAmount,
		TotalRentReceived: req.TotalRentReceived,
		PaymentMode:       req.PaymentMode,
		Status:            models.BookingStatusActive,
		DepositRefunded:   false,
		Notes:             req.Notes,
		CreatedAt:         s.now(),
	}

	if err := s.bookingRepo.CreateActive(ctx, booking); err != nil {
		return nil, err
	}

	s.invalidateDerived(ctx)
	return booking, nil
}

func (s *bookingService) GetBookingByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, common.NotFoundf("booking %s", id)
	}
	return booking, nil
}

func (s *bookingService) GetBookingByCode(ctx context.Context, code string) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByBookingCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, common.NotFoundf("booking %s", code)
	}
	return booking, nil
}

func (s *bookingService) ListBookings(ctx context.Context, limit, offset int) ([]*models.Booking, error) {
	limit, offset, err := common.ValidatePaginationParams(limit, offset)
	if err != nil {
		return nil, err
	}
	return s.bookingRepo.List(ctx, limit, offset)
}

func (s *bookingService) SearchBookings(ctx context.Context, filter *models.BookingSearchFilter) ([]*models.Booking, error) {
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
	return s.bookingRepo.Search(ctx, filter)
}

func (s *bookingService) UpdateBooking(ctx context.Context, req *UpdateBookingRequest) (*models.Booking, error) {
	booking, err := s.GetBookingByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.StartTime != nil {
		booking.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		booking.EndTime = *req.EndTime
	}
	if req.DepositAmount != nil {
		if err := common.ValidateNonNegativeFloat(*req.DepositAmount, "deposit amount", 10000000); err != nil {
			return nil, err
		}
		booking.DepositAmount = *req.DepositAmount
	}
	if req.TotalRentReceived != nil {
		if err := common.ValidateNonNegativeFloat(*req.TotalRentReceived, "total rent received", 10000000); err != nil {
			return nil, err
		}
		booking.TotalRentReceived = *req.TotalRentReceived
	}
	if req.PaymentMode != nil {
		booking.PaymentMode = *req.PaymentMode
	}
	if req.Notes != nil {
		if err := common.SanitizeHTMLField(req.Notes, "booking notes"); err != nil {
			return nil, err
		}
		booking.Notes = req.Notes
	}

	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return nil, fmt.Errorf("update booking: %w", err)
	}
	return booking, nil
}

// MarkReturned moves an Active booking to Returned, stamps returnedAt
// and releases the car. Returning a non-Active booking fails with
// ErrInvalidState and mutates nothing.
func (s *bookingService) MarkReturned(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	booking, err := s.GetBookingByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Status != models.BookingStatusActive {
		return nil, common.InvalidStatef("cannot return booking %s with status %q", booking.BookingID, booking.Status)
	}

	returnedAt := s.now()
	if err := s.bookingRepo.MarkReturned(ctx, id, returnedAt); err != nil {
		return nil, err
	}

	booking.Status = models.BookingStatusReturned
	booking.ReturnedAt = &returnedAt

	s.invalidateDerived(ctx)
	return booking, nil
}

// RefundDeposit reports whether the deposit flag was flipped. False
// means the booking is not returned yet or was already refunded; that
// is a reported non-fatal outcome, not an error.
func (s *bookingService) RefundDeposit(ctx context.Context, id uuid.UUID) (bool, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	if booking == nil {
		return false, common.NotFoundf("booking %s", id)
	}
	return s.bookingRepo.RefundDeposit(ctx, id)
}

// CancelBooking moves an Active booking to Cancelled. The car status is
// left untouched; fleet management reconciles availability separately.
func (s *bookingService) CancelBooking(ctx context.Context, id uuid.UUID) error {
	booking, err := s.GetBookingByID(ctx, id)
	if err != nil {
		return err
	}
	if booking.Status != models.BookingStatusActive {
		return common.InvalidStatef("cannot cancel booking %s with status %q", booking.BookingID, booking.Status)
	}

	if err := s.bookingRepo.Cancel(ctx, id); err != nil {
		return err
	}

	s.invalidateDerived(ctx)
	return nil
}

func (s *bookingService) CalendarView(ctx context.Context, from, to time.Time) ([]*models.Booking, error) {
	if err := common.ValidateDateOrder(from, to); err != nil {
		return nil, err
	}
	return s.bookingRepo.ListOverlappingRange(ctx, from, to)
}

// NextBookingCode previews the code the next booking created today will
// receive. The actual claim happens inside the create transaction, so
// the preview can be raced past but never produces a duplicate.
func (s *bookingService) NextBookingCode(ctx context.Context) (string, error) {
	today := s.now()
	count, err := s.bookingRepo.CountCreatedOn(ctx, today)
	if err != nil {
		return "", err
	}
	return repositories.FormatBookingCode(today, count+1), nil
}

func (s *bookingService) invalidateDerived(ctx context.Context) {
	if err := s.cacheSvc.InvalidateDerived(ctx); err != nil {
		log.Printf("WARN: failed to invalidate derived caches: %v", err)
	}
}
