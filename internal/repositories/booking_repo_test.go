package repositories

import (
	"context"
	"testing"
	"time"

	"vatrentals/internal/common"
	"vatrentals/internal/models"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type BookingRepoTestSuite struct {
	suite.Suite
	mock    pgxmock.PgxPoolIface
	repo    BookingRepository
	context context.Context
}

func (suite *BookingRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewBookingRepo(mock)
	suite.context = context.Background()
}

func (suite *BookingRepoTestSuite) TearDownTest() {
	suite.mock.Close()
}

func TestBookingRepoTestSuite(t *testing.T) {
	suite.Run(t, new(BookingRepoTestSuite))
}

func (suite *BookingRepoTestSuite) newBooking() *models.Booking {
	return &models.Booking{
		ID:            uuid.New(),
		CustomerID:    uuid.New(),
		CustomerName:  "Ravi Kumar",
		CarID:         uuid.New(),
		CarDetails:    "Maruti Swift (KA-01-AB-1234)",
		StartDate:     time.Date(2024, 12, 10, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2024, 12, 13, 0, 0, 0, 0, time.UTC),
		Duration:      3,
		DailyRate:     1500,
		TotalAmount:   4500,
		DepositAmount: 2000,
		PaymentMode:   "Cash",
		Status:        models.BookingStatusActive,
		CreatedAt:     time.Date(2024, 12, 10, 11, 0, 0, 0, time.UTC),
	}
}

func (suite *BookingRepoTestSuite) TestCreateActive_Success() {
	booking := suite.newBooking()

	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(`SELECT status FROM cars WHERE id = \$1 FOR UPDATE`).
		WithArgs(booking.CarID).
		WillReturnRows(pgxmock.NewRows([]string{"status"}).AddRow(models.CarStatusAvailable))
	suite.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings`).
		WithArgs(booking.CarID, models.BookingStatusActive, booking.StartDate, booking.EndDate).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
	suite.mock.ExpectQuery(`INSERT INTO booking_sequences`).
		WithArgs("2024-12-10").
		WillReturnRows(pgxmock.NewRows([]string{"last_number"}).AddRow(3))
	suite.mock.ExpectExec(`INSERT INTO bookings`).
		WithArgs(booking.ID, "VAT-20241210-003", booking.CustomerID, booking.CustomerName,
			booking.CarID, booking.CarDetails, booking.StartDate, booking.EndDate,
			booking.StartTime, booking.EndTime, booking.Duration, booking.DailyRate,
			booking.TotalAmount, booking.DepositAmount, booking.TotalRentReceived,
			booking.PaymentMode, booking.Status, booking.DepositRefunded, booking.Notes,
			booking.CreatedAt, booking.ReturnedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectExec(`UPDATE cars SET status = \$1`).
		WithArgs(models.CarStatusRented, booking.CarID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectCommit()

	err := suite.repo.CreateActive(suite.context, booking)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "VAT-20241210-003", booking.BookingID)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *BookingRepoTestSuite) TestCreateActive_ConflictRollsBack() {
	booking := suite.newBooking()

	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(`SELECT status FROM cars WHERE id = \$1 FOR UPDATE`).
		WithArgs(booking.CarID).
		WillReturnRows(pgxmock.NewRows([]string{"status"}).AddRow(models.CarStatusRented))
	suite.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings`).
		WithArgs(booking.CarID, models.BookingStatusActive, booking.StartDate, booking.EndDate).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	suite.mock.ExpectRollback()

	err := suite.repo.CreateActive(suite.context, booking)
	assert.ErrorIs(suite.T(), err, common.ErrBookingConflict)
	assert.Empty(suite.T(), booking.BookingID, "no code is claimed for a rejected booking")
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *BookingRepoTestSuite) TestCreateActive_CarMissing() {
	booking := suite.newBooking()

	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(`SELECT status FROM cars WHERE id = \$1 FOR UPDATE`).
		WithArgs(booking.CarID).
		WillReturnError(pgx.ErrNoRows)
	suite.mock.ExpectRollback()

	err := suite.repo.CreateActive(suite.context, booking)
	assert.ErrorIs(suite.T(), err, common.ErrNotFound)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *BookingRepoTestSuite) TestMarkReturned_Success() {
	bookingID := uuid.New()
	carID := uuid.New()
	returnedAt := time.Date(2024, 12, 13, 18, 0, 0, 0, time.UTC)

	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(`UPDATE bookings SET status = \$1, returned_at = \$2`).
		WithArgs(models.BookingStatusReturned, returnedAt, bookingID, models.BookingStatusActive).
		WillReturnRows(pgxmock.NewRows([]string{"car_id"}).AddRow(carID))
	suite.mock.ExpectExec(`UPDATE cars SET status = \$1`).
		WithArgs(models.CarStatusAvailable, carID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectCommit()

	err := suite.repo.MarkReturned(suite.context, bookingID, returnedAt)
	assert.NoError(suite.T(), err)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *BookingRepoTestSuite) TestMarkReturned_NotActive() {
	bookingID := uuid.New()
	returnedAt := time.Date(2024, 12, 13, 18, 0, 0, 0, time.UTC)

	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(`UPDATE bookings SET status = \$1, returned_at = \$2`).
		WithArgs(models.BookingStatusReturned, returnedAt, bookingID, models.BookingStatusActive).
		WillReturnError(pgx.ErrNoRows)
	suite.mock.ExpectRollback()

	err := suite.repo.MarkReturned(suite.context, bookingID, returnedAt)
	assert.ErrorIs(suite.T(), err, common.ErrInvalidState)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *BookingRepoTestSuite) TestRefundDeposit_Flipped() {
	bookingID := uuid.New()

	suite.mock.ExpectExec(`UPDATE bookings SET deposit_refunded = TRUE`).
		WithArgs(bookingID, models.BookingStatusReturned).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	refunded, err := suite.repo.RefundDeposit(suite.context, bookingID)
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), refunded)
}

func (suite *BookingRepoTestSuite) TestRefundDeposit_GuardRejects() {
	bookingID := uuid.New()

	// Zero rows: the booking is not Returned, or the flag is already set.
	suite.mock.ExpectExec(`UPDATE bookings SET deposit_refunded = TRUE`).
		WithArgs(bookingID, models.BookingStatusReturned).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	refunded, err := suite.repo.RefundDeposit(suite.context, bookingID)
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), refunded)
}

func (suite *BookingRepoTestSuite) TestCancel_NotActive() {
	bookingID := uuid.New()

	suite.mock.ExpectExec(`UPDATE bookings SET status = \$1`).
		WithArgs(models.BookingStatusCancelled, bookingID, models.BookingStatusActive).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := suite.repo.Cancel(suite.context, bookingID)
	assert.ErrorIs(suite.T(), err, common.ErrInvalidState)
}

func (suite *BookingRepoTestSuite) TestGetByBookingCode_NoRows() {
	suite.mock.ExpectQuery(`SELECT .+ FROM bookings WHERE booking_id = \$1`).
		WithArgs("VAT-20241210-099").
		WillReturnError(pgx.ErrNoRows)

	booking, err := suite.repo.GetByBookingCode(suite.context, "VAT-20241210-099")
	assert.NoError(suite.T(), err)
	assert.Nil(suite.T(), booking)
}

func (suite *BookingRepoTestSuite) TestCountCreatedOn() {
	day := time.Date(2024, 12, 10, 15, 0, 0, 0, time.UTC)

	suite.mock.ExpectQuery(`SELECT COALESCE\(last_number, 0\) FROM booking_sequences`).
		WithArgs("2024-12-10").
		WillReturnRows(pgxmock.NewRows([]string{"last_number"}).AddRow(7))

	count, err := suite.repo.CountCreatedOn(suite.context, day)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 7, count)
}

func (suite *BookingRepoTestSuite) TestCountCreatedOn_NoSequenceYet() {
	day := time.Date(2024, 12, 11, 8, 0, 0, 0, time.UTC)

	suite.mock.ExpectQuery(`SELECT COALESCE\(last_number, 0\) FROM booking_sequences`).
		WithArgs("2024-12-11").
		WillReturnError(pgx.ErrNoRows)

	count, err := suite.repo.CountCreatedOn(suite.context, day)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 0, count)
}

func (suite *BookingRepoTestSuite) TestFormatBookingCode() {
	t := time.Date(2024, 12, 10, 11, 0, 0, 0, time.UTC)
	assert.Equal(suite.T(), "VAT-20241210-001", FormatBookingCode(t, 1))
	assert.Equal(suite.T(), "VAT-20241210-042", FormatBookingCode(t, 42))
	assert.Equal(suite.T(), "VAT-20241210-1000", FormatBookingCode(t, 1000))
}
