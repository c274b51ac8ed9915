package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"vatrentals/internal/common"
	"vatrentals/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

func day(d int) time.Time {
	return date(2024, time.December, d)
}

type BookingServiceTestSuite struct {
	suite.Suite
	bookingRepo  *MockBookingRepository
	carRepo      *MockCarRepository
	customerRepo *MockCustomerRepository
	cacheSvc     *MockCacheService
	service      *bookingService
	ctx          context.Context

	now      time.Time
	car      *models.Car
	customer *models.Customer
}

func (suite *BookingServiceTestSuite) SetupTest() {
	suite.bookingRepo = new(MockBookingRepository)
	suite.carRepo = new(MockCarRepository)
	suite.customerRepo = new(MockCustomerRepository)
	suite.cacheSvc = new(MockCacheService)
	suite.ctx = context.Background()

	suite.now = time.Date(2024, 12, 10, 11, 0, 0, 0, time.UTC)

	svc := NewBookingService(suite.bookingRepo, suite.carRepo, suite.customerRepo, suite.cacheSvc)
	suite.service = svc.(*bookingService)
	suite.service.now = func() time.Time { return suite.now }

	suite.car = &models.Car{
		ID:          uuid.New(),
		Make:        "Maruti",
		Model:       "Swift",
		PlateNumber: "KA-01-AB-1234",
		Status:      models.CarStatusAvailable,
	}
	suite.customer = &models.Customer{
		ID:         uuid.New(),
		CustomerID: "CUST-0001",
		Name:       "Ravi Kumar",
		Phone:      "9876543210",
	}
}

func TestBookingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(BookingServiceTestSuite))
}

func (suite *BookingServiceTestSuite) createRequest(start, end time.Time) *CreateBookingRequest {
	return &CreateBookingRequest{
		CustomerID:    suite.customer.ID,
		CarID:         suite.car.ID,
		StartDate:     start,
		EndDate:       end,
		DepositAmount: 2000,
		PaymentMode:   "Cash",
	}
}

func (suite *BookingServiceTestSuite) TestCreateBooking_Success() {
	req := suite.createRequest(day(10), day(13))

	suite.carRepo.On("GetByID", suite.ctx, suite.car.ID).Return(suite.car, nil)
	suite.customerRepo.On("GetByID", suite.ctx, suite.customer.ID).Return(suite.customer, nil)
	suite.bookingRepo.On("FindActiveByCar", suite.ctx, suite.car.ID).Return([]*models.Booking{}, nil)
	suite.bookingRepo.On("CreateActive", suite.ctx, mock.AnythingOfType("*models.Booking")).Return(nil)
	suite.cacheSvc.On("InvalidateDerived", suite.ctx).Return(nil)

	booking, err := suite.service.CreateBooking(suite.ctx, req)
	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), booking)

	assert.Equal(suite.T(), models.BookingStatusActive, booking.Status)
	assert.False(suite.T(), booking.DepositRefunded)
	assert.Equal(suite.T(), 3, booking.Duration)
	assert.Equal(suite.T(), 1500.0, booking.DailyRate, "Swift rate from the model table")
	assert.Equal(suite.T(), 4500.0, booking.TotalAmount)
	assert.Equal(suite.T(), "Ravi Kumar", booking.CustomerName)
	assert.Equal(suite.T(), "Maruti Swift (KA-01-AB-1234)", booking.CarDetails)
	assert.Equal(suite.T(), suite.now, booking.CreatedAt)
	assert.Nil(suite.T(), booking.ReturnedAt)

	suite.bookingRepo.AssertExpectations(suite.T())
}

func (suite *BookingServiceTestSuite) TestCreateBooking_ExplicitRateWins() {
	req := suite.createRequest(day(10), day(12))
	rate := 1750.0
	req.DailyRate = &rate

	suite.carRepo.On("GetByID", suite.ctx, suite.car.ID).Return(suite.car, nil)
	suite.customerRepo.On("GetByID", suite.ctx, suite.customer.ID).Return(suite.customer, nil)
	suite.bookingRepo.On("FindActiveByCar", suite.ctx, suite.car.ID).Return([]*models.Booking{}, nil)
	suite.bookingRepo.On("CreateActive", suite.ctx, mock.AnythingOfType("*models.Booking")).Return(nil)
	suite.cacheSvc.On("InvalidateDerived", suite.ctx).Return(nil)

	booking, err := suite.service.CreateBooking(suite.ctx, req)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1750.0, booking.DailyRate)
	assert.Equal(suite.T(), 3500.0, booking.TotalAmount)
}

func (suite *BookingServiceTestSuite) TestCreateBooking_SameDayBookingLastsOneDay() {
	req := suite.createRequest(day(10), day(10))

	suite.carRepo.On("GetByID", suite.ctx, suite.car.ID).Return(suite.car, nil)
	suite.customerRepo.On("GetByID", suite.ctx, suite.customer.ID).Return(suite.customer, nil)
	suite.bookingRepo.On("FindActiveByCar", suite.ctx, suite.car.ID).Return([]*models.Booking{}, nil)
	suite.bookingRepo.On("CreateActive", suite.ctx, mock.AnythingOfType("*models.Booking")).Return(nil)
	suite.cacheSvc.On("InvalidateDerived", suite.ctx).Return(nil)

	booking, err := suite.service.CreateBooking(suite.ctx, req)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, booking.Duration)
	assert.Equal(suite.T(), 1500.0, booking.TotalAmount)
}

func (suite *BookingServiceTestSuite) TestCreateBooking_Conflict() {
	req := suite.createRequest(day(12), day(16))
	existing := &models.Booking{
		Status:    models.BookingStatusActive,
		StartDate: day(10),
		EndDate:   day(14),
	}

	suite.carRepo.On("GetByID", suite.ctx, suite.car.ID).Return(suite.car, nil)
	suite.customerRepo.On("GetByID", suite.ctx, suite.customer.ID).Return(suite.customer, nil)
	suite.bookingRepo.On("FindActiveByCar", suite.ctx, suite.car.ID).Return([]*models.Booking{existing}, nil)

	booking, err := suite.service.CreateBooking(suite.ctx, req)
	assert.Nil(suite.T(), booking)
	assert.ErrorIs(suite.T(), err, common.ErrBookingConflict)

	suite.bookingRepo.AssertNotCalled(suite.T(), "CreateActive", mock.Anything, mock.Anything)
}

func (suite *BookingServiceTestSuite) TestCreateBooking_BoundaryTouchConflicts() {
	// Existing booking ends on the 14th; a new one starting that same
	// day must be rejected.
	req := suite.createRequest(day(14), day(18))
	existing := &models.Booking{
		Status:    models.BookingStatusActive,
		StartDate: day(10),
		EndDate:   day(14),
	}

	suite.carRepo.On("GetByID", suite.ctx, suite.car.ID).Return(suite.car, nil)
	suite.customerRepo.On("GetByID", suite.ctx, suite.customer.ID).Return(suite.customer, nil)
	suite.bookingRepo.On("FindActiveByCar", suite.ctx, suite.car.ID).Return([]*models.Booking{existing}, nil)

	_, err := suite.service.CreateBooking(suite.ctx, req)
	assert.ErrorIs(suite.T(), err, common.ErrBookingConflict)
}

func (suite *BookingServiceTestSuite) TestCreateBooking_ReturnedBookingDoesNotConflict() {
	req := suite.createRequest(day(12), day(16))
	returned := &models.Booking{
		Status:    models.BookingStatusReturned,
		StartDate: day(10),
		EndDate:   day(14),
	}

	suite.carRepo.On("GetByID", suite.ctx, suite.car.ID).Return(suite.car, nil)
	suite.customerRepo.On("GetByID", suite.ctx, suite.customer.ID).Return(suite.customer, nil)
	suite.bookingRepo.On("FindActiveByCar", suite.ctx, suite.car.ID).Return([]*models.Booking{returned}, nil)
	suite.bookingRepo.On("CreateActive", suite.ctx, mock.AnythingOfType("*models.Booking")).Return(nil)
	suite.cacheSvc.On("InvalidateDerived", suite.ctx).Return(nil)

	booking, err := suite.service.CreateBooking(suite.ctx, req)
	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), booking)
}

func (suite *BookingServiceTestSuite) TestCreateBooking_ReversedDatesRejected() {
	req := suite.createRequest(day(15), day(10))

	booking, err := suite.service.CreateBooking(suite.ctx, req)
	assert.Nil(suite.T(), booking)
	assert.ErrorIs(suite.T(), err, common.ErrValidation)
	assert.Contains(suite.T(), err.Error(), "end date cannot be before start date")

	suite.carRepo.AssertNotCalled(suite.T(), "GetByID", mock.Anything, mock.Anything)
}

func (suite *BookingServiceTestSuite) TestCreateBooking_CarNotFound() {
	req := suite.createRequest(day(10), day(12))

	suite.carRepo.On("GetByID", suite.ctx, suite.car.ID).Return(nil, nil)

	booking, err := suite.service.CreateBooking(suite.ctx, req)
	assert.Nil(suite.T(), booking)
	assert.ErrorIs(suite.T(), err, common.ErrNotFound)
}

func (suite *BookingServiceTestSuite) TestCreateBooking_RepoConflictSurfaces() {
	// The transactional check can still reject after the pre-check
	// passed, e.g. when a concurrent writer won the race.
	req := suite.createRequest(day(10), day(12))

	suite.carRepo.On("GetByID", suite.ctx, suite.car.ID).Return(suite.car, nil)
	suite.customerRepo.On("GetByID", suite.ctx, suite.customer.ID).Return(suite.customer, nil)
	suite.bookingRepo.On("FindActiveByCar", suite.ctx, suite.car.ID).Return([]*models.Booking{}, nil)
	suite.bookingRepo.On("CreateActive", suite.ctx, mock.AnythingOfType("*models.Booking")).Return(common.ErrBookingConflict)

	booking, err := suite.service.CreateBooking(suite.ctx, req)
	assert.Nil(suite.T(), booking)
	assert.ErrorIs(suite.T(), err, common.ErrBookingConflict)
}

func (suite *BookingServiceTestSuite) TestMarkReturned_Success() {
	bookingID := uuid.New()
	active := &models.Booking{
		ID:        bookingID,
		BookingID: "VAT-20241208-002",
		CarID:     suite.car.ID,
		Status:    models.BookingStatusActive,
		StartDate: day(8),
		EndDate:   day(12),
	}

	suite.bookingRepo.On("GetByID", suite.ctx, bookingID).Return(active, nil)
	suite.bookingRepo.On("MarkReturned", suite.ctx, bookingID, suite.now).Return(nil)
	suite.cacheSvc.On("InvalidateDerived", suite.ctx).Return(nil)

	booking, err := suite.service.MarkReturned(suite.ctx, bookingID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.BookingStatusReturned, booking.Status)
	assert.NotNil(suite.T(), booking.ReturnedAt)
	assert.Equal(suite.T(), suite.now, *booking.ReturnedAt)
}

func (suite *BookingServiceTestSuite) TestMarkReturned_AlreadyReturned() {
	bookingID := uuid.New()
	returned := &models.Booking{
		ID:     bookingID,
		Status: models.BookingStatusReturned,
	}

	suite.bookingRepo.On("GetByID", suite.ctx, bookingID).Return(returned, nil)

	booking, err := suite.service.MarkReturned(suite.ctx, bookingID)
	assert.Nil(suite.T(), booking)
	assert.ErrorIs(suite.T(), err, common.ErrInvalidState)

	suite.bookingRepo.AssertNotCalled(suite.T(), "MarkReturned", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *BookingServiceTestSuite) TestMarkReturned_NotFound() {
	bookingID := uuid.New()
	suite.bookingRepo.On("GetByID", suite.ctx, bookingID).Return(nil, nil)

	booking, err := suite.service.MarkReturned(suite.ctx, bookingID)
	assert.Nil(suite.T(), booking)
	assert.ErrorIs(suite.T(), err, common.ErrNotFound)
}

func (suite *BookingServiceTestSuite) TestRefundDeposit_FlipsOnce() {
	bookingID := uuid.New()
	returned := &models.Booking{
		ID:     bookingID,
		Status: models.BookingStatusReturned,
	}

	suite.bookingRepo.On("GetByID", suite.ctx, bookingID).Return(returned, nil)
	suite.bookingRepo.On("RefundDeposit", suite.ctx, bookingID).Return(true, nil).Once()
	suite.bookingRepo.On("RefundDeposit", suite.ctx, bookingID).Return(false, nil).Once()

	refunded, err := suite.service.RefundDeposit(suite.ctx, bookingID)
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), refunded)

	// The second attempt is a no-op, reported rather than failed.
	refunded, err = suite.service.RefundDeposit(suite.ctx, bookingID)
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), refunded)
}

func (suite *BookingServiceTestSuite) TestRefundDeposit_ActiveBookingNotRefundable() {
	bookingID := uuid.New()
	active := &models.Booking{
		ID:     bookingID,
		Status: models.BookingStatusActive,
	}

	suite.bookingRepo.On("GetByID", suite.ctx, bookingID).Return(active, nil)
	suite.bookingRepo.On("RefundDeposit", suite.ctx, bookingID).Return(false, nil)

	refunded, err := suite.service.RefundDeposit(suite.ctx, bookingID)
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), refunded)
}

func (suite *BookingServiceTestSuite) TestRefundDeposit_NotFound() {
	bookingID := uuid.New()
	suite.bookingRepo.On("GetByID", suite.ctx, bookingID).Return(nil, nil)

	refunded, err := suite.service.RefundDeposit(suite.ctx, bookingID)
	assert.False(suite.T(), refunded)
	assert.ErrorIs(suite.T(), err, common.ErrNotFound)
}

func (suite *BookingServiceTestSuite) TestCancelBooking_Success() {
	bookingID := uuid.New()
	active := &models.Booking{
		ID:     bookingID,
		CarID:  suite.car.ID,
		Status: models.BookingStatusActive,
	}

	suite.bookingRepo.On("GetByID", suite.ctx, bookingID).Return(active, nil)
	suite.bookingRepo.On("Cancel", suite.ctx, bookingID).Return(nil)
	suite.cacheSvc.On("InvalidateDerived", suite.ctx).Return(nil)

	err := suite.service.CancelBooking(suite.ctx, bookingID)
	assert.NoError(suite.T(), err)

	// Cancellation never touches the car status.
	suite.carRepo.AssertNotCalled(suite.T(), "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *BookingServiceTestSuite) TestCancelBooking_NotActive() {
	bookingID := uuid.New()
	cancelled := &models.Booking{
		ID:     bookingID,
		Status: models.BookingStatusCancelled,
	}

	suite.bookingRepo.On("GetByID", suite.ctx, bookingID).Return(cancelled, nil)

	err := suite.service.CancelBooking(suite.ctx, bookingID)
	assert.ErrorIs(suite.T(), err, common.ErrInvalidState)

	suite.bookingRepo.AssertNotCalled(suite.T(), "Cancel", mock.Anything, mock.Anything)
}

func (suite *BookingServiceTestSuite) TestCalendarView_ReversedRangeRejected() {
	_, err := suite.service.CalendarView(suite.ctx, day(15), day(10))
	assert.ErrorIs(suite.T(), err, common.ErrValidation)

	suite.bookingRepo.AssertNotCalled(suite.T(), "ListOverlappingRange", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *BookingServiceTestSuite) TestNextBookingCode() {
	suite.bookingRepo.On("CountCreatedOn", suite.ctx, suite.now).Return(4, nil)

	code, err := suite.service.NextBookingCode(suite.ctx)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "VAT-20241210-005", code)
}

func (suite *BookingServiceTestSuite) TestUpdateBooking_EditableFieldsOnly() {
	bookingID := uuid.New()
	active := &models.Booking{
		ID:                bookingID,
		Status:            models.BookingStatusActive,
		StartDate:         day(8),
		EndDate:           day(12),
		DailyRate:         1500,
		TotalAmount:       6000,
		TotalRentReceived: 1000,
	}

	newReceived := 4000.0
	mode := "UPI"

	suite.bookingRepo.On("GetByID", suite.ctx, bookingID).Return(active, nil)
	suite.bookingRepo.On("Update", suite.ctx, mock.AnythingOfType("*models.Booking")).Return(nil)

	booking, err := suite.service.UpdateBooking(suite.ctx, &UpdateBookingRequest{
		ID:                bookingID,
		TotalRentReceived: &newReceived,
		PaymentMode:       &mode,
	})
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 4000.0, booking.TotalRentReceived)
	assert.Equal(suite.T(), "UPI", booking.PaymentMode)
	// Derived fields stay untouched.
	assert.Equal(suite.T(), 6000.0, booking.TotalAmount)
	assert.Equal(suite.T(), 1500.0, booking.DailyRate)
}

func (suite *BookingServiceTestSuite) TestCreateBooking_LoadActiveFails() {
	req := suite.createRequest(day(10), day(12))

	suite.carRepo.On("GetByID", suite.ctx, suite.car.ID).Return(suite.car, nil)
	suite.customerRepo.On("GetByID", suite.ctx, suite.customer.ID).Return(suite.customer, nil)
	suite.bookingRepo.On("FindActiveByCar", suite.ctx, suite.car.ID).
		Return([]*models.Booking{}, errors.New("connection reset"))

	booking, err := suite.service.CreateBooking(suite.ctx, req)
	assert.Nil(suite.T(), booking)
	assert.Error(suite.T(), err)
}
