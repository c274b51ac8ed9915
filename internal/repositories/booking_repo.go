package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vatrentals/internal/common"
	"vatrentals/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type BookingRepository interface {
	// CreateActive atomically verifies there is no overlapping Active
	// booking for the car, claims the next per-day booking code, inserts
	// the booking and flips the car to Rented. Returns
	// common.ErrBookingConflict (nothing written) on overlap.
	CreateActive(ctx context.Context, booking *models.Booking) error

	// MarkReturned atomically moves an Active booking to Returned,
	// stamps returned_at and flips the car back to Available.
	MarkReturned(ctx context.Context, id uuid.UUID, returnedAt time.Time) error

	// RefundDeposit flips deposit_refunded exactly once, and only for a
	// Returned booking. Reports whether the flag was flipped.
	RefundDeposit(ctx context.Context, id uuid.UUID) (bool, error)

	// Cancel moves an Active booking to Cancelled. The car's status is
	// deliberately left untouched.
	Cancel(ctx context.Context, id uuid.UUID) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	GetByBookingCode(ctx context.Context, code string) (*models.Booking, error)
	Update(ctx context.Context, booking *models.Booking) error
	List(ctx context.Context, limit, offset int) ([]*models.Booking, error)
	FindActiveByCar(ctx context.Context, carID uuid.UUID) ([]*models.Booking, error)
	ListOverlappingRange(ctx context.Context, from, to time.Time) ([]*models.Booking, error)
	ListActiveEndingOnOrBefore(ctx context.Context, date time.Time) ([]*models.Booking, error)
	ListCreatedBetween(ctx context.Context, from, to time.Time) ([]*models.Booking, error)
	CountCreatedOn(ctx context.Context, day time.Time) (int, error)
	Search(ctx context.Context, filter *models.BookingSearchFilter) ([]*models.Booking, error)
}

type bookingRepo struct {
	db Database
}

func NewBookingRepo(db Database) BookingRepository {
	return &bookingRepo{db: db}
}

const bookingColumns = `id, booking_id, customer_id, customer_name, car_id, car_details,
		start_date, end_date, start_time, end_time, duration, daily_rate, total_amount,
		deposit_amount, total_rent_received, payment_mode, status, deposit_refunded,
		notes, created_at, returned_at`

func scanBooking(row pgx.Row) (*models.Booking, error) {
	b := &models.Booking{}
	err := row.Scan(&b.ID, &b.BookingID, &b.CustomerID, &b.CustomerName, &b.CarID, &b.CarDetails,
		&b.StartDate, &b.EndDate, &b.StartTime, &b.EndTime, &b.Duration, &b.DailyRate, &b.TotalAmount,
		&b.DepositAmount, &b.TotalRentReceived, &b.PaymentMode, &b.Status, &b.DepositRefunded,
		&b.Notes, &b.CreatedAt, &b.ReturnedAt)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *bookingRepo) CreateActive(ctx context.Context, booking *models.Booking) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin booking transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Row lock on the car serializes concurrent writers for the same
	// vehicle, closing the check-then-act race between the conflict
	// check and the insert.
	var carStatus string
	err = tx.QueryRow(ctx, `SELECT status FROM cars WHERE id = $1 FOR UPDATE`, booking.CarID).Scan(&carStatus)
	if errors.Is(err, pgx.ErrNoRows) {
		return common.NotFoundf("car %s", booking.CarID)
	}
	if err != nil {
		return fmt.Errorf("lock car row: %w", err)
	}

	// Inclusive interval overlap: [S,E] conflicts with [s,e] iff S <= e AND E >= s.
	var overlapping int
	err = tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM bookings
		WHERE car_id = $1 AND status = $2 AND start_date <= $4 AND end_date >= $3
	`, booking.CarID, models.BookingStatusActive, booking.StartDate, booking.EndDate).Scan(&overlapping)
	if err != nil {
		return fmt.Errorf("check booking conflicts: %w", err)
	}
	if overlapping > 0 {
		return common.ErrBookingConflict
	}

	// Per-day sequence claim, rolled back with the rest of the
	// transaction if anything below fails.
	day := booking.CreatedAt.Format("2006-01-02")
	var seq int
	err = tx.QueryRow(ctx, `
		WITH upsert AS (
			INSERT INTO booking_sequences (day, last_number)
			VALUES ($1, 1)
			ON CONFLICT (day)
			DO UPDATE SET last_number = booking_sequences.last_number + 1, updated_at = NOW()
			RETURNING last_number
		)
		SELECT last_number FROM upsert
	`, day).Scan(&seq)
	if err != nil {
		return fmt.Errorf("claim booking sequence: %w", err)
	}
	booking.BookingID = FormatBookingCode(booking.CreatedAt, seq)

	_, err = tx.Exec(ctx, `
		INSERT INTO bookings (id, booking_id, customer_id, customer_name, car_id, car_details,
			start_date, end_date, start_time, end_time, duration, daily_rate, total_amount,
			deposit_amount, total_rent_received, payment_mode, status, deposit_refunded,
			notes, created_at, returned_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`, booking.ID, booking.BookingID, booking.CustomerID, booking.CustomerName, booking.CarID, booking.CarDetails,
		booking.StartDate, booking.EndDate, booking.StartTime, booking.EndTime, booking.Duration,
		booking.DailyRate, booking.TotalAmount, booking.DepositAmount, booking.TotalRentReceived,
		booking.PaymentMode, booking.Status, booking.DepositRefunded, booking.Notes,
		booking.CreatedAt, booking.ReturnedAt)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}

	_, err = tx.Exec(ctx, `UPDATE cars SET status = $1, updated_at = NOW() WHERE id = $2`,
		models.CarStatusRented, booking.CarID)
	if err != nil {
		return fmt.Errorf("mark car rented: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *bookingRepo) MarkReturned(ctx context.Context, id uuid.UUID, returnedAt time.Time) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin return transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var carID uuid.UUID
	err = tx.QueryRow(ctx, `
		UPDATE bookings SET status = $1, returned_at = $2
		WHERE id = $3 AND status = $4
		RETURNING car_id
	`, models.BookingStatusReturned, returnedAt, id, models.BookingStatusActive).Scan(&carID)
	if errors.Is(err, pgx.ErrNoRows) {
		return common.InvalidStatef("booking %s is not active", id)
	}
	if err != nil {
		return fmt.Errorf("mark booking returned: %w", err)
	}

	_, err = tx.Exec(ctx, `UPDATE cars SET status = $1, updated_at = NOW() WHERE id = $2`,
		models.CarStatusAvailable, carID)
	if err != nil {
		return fmt.Errorf("mark car available: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *bookingRepo) RefundDeposit(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE bookings SET deposit_refunded = TRUE
		WHERE id = $1 AND status = $2 AND deposit_refunded = FALSE
	`, id, models.BookingStatusReturned)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *bookingRepo) Cancel(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE bookings SET status = $1 WHERE id = $2 AND status = $3
	`, models.BookingStatusCancelled, id, models.BookingStatusActive)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.InvalidStatef("booking %s is not active", id)
	}
	return nil
}

func (r *bookingRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	booking, err := scanBooking(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return booking, err
}

func (r *bookingRepo) GetByBookingCode(ctx context.Context, code string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE booking_id = $1`
	booking, err := scanBooking(r.db.QueryRow(ctx, query, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return booking, err
}

func (r *bookingRepo) Update(ctx context.Context, booking *models.Booking) error {
	query := `
		UPDATE bookings
		SET start_time = $1, end_time = $2, deposit_amount = $3, total_rent_received = $4,
			payment_mode = $5, notes = $6
		WHERE id = $7
	`
	_, err := r.db.Exec(ctx, query, booking.StartTime, booking.EndTime, booking.DepositAmount,
		booking.TotalRentReceived, booking.PaymentMode, booking.Notes, booking.ID)
	return err
}

func (r *bookingRepo) List(ctx context.Context, limit, offset int) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

func (r *bookingRepo) FindActiveByCar(ctx context.Context, carID uuid.UUID) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE car_id = $1 AND status = $2 ORDER BY start_date`
	rows, err := r.db.Query(ctx, query, carID, models.BookingStatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

// ListOverlappingRange feeds the calendar view: every booking whose date
// range intersects [from, to], regardless of status.
func (r *bookingRepo) ListOverlappingRange(ctx context.Context, from, to time.Time) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE start_date <= $2 AND end_date >= $1 ORDER BY start_date`
	rows, err := r.db.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

func (r *bookingRepo) ListActiveEndingOnOrBefore(ctx context.Context, date time.Time) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE status = $1 AND end_date <= $2 ORDER BY end_date`
	rows, err := r.db.Query(ctx, query, models.BookingStatusActive, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

func (r *bookingRepo) ListCreatedBetween(ctx context.Context, from, to time.Time) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE created_at BETWEEN $1 AND $2 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

func (r *bookingRepo) CountCreatedOn(ctx context.Context, day time.Time) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(last_number, 0) FROM booking_sequences WHERE day = $1
	`, day.Format("2006-01-02")).Scan(&count)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	return count, err
}

func (r *bookingRepo) Search(ctx context.Context, filter *models.BookingSearchFilter) ([]*models.Booking, error) {
	if filter.Limit == 0 {
		filter.Limit = 50
	}

	queryBase := `SELECT ` + bookingColumns + ` FROM bookings WHERE 1=1`
	args := []any{}
	n := 0

	if filter.Query != "" {
		n++
		queryBase += fmt.Sprintf(` AND (booking_id ILIKE $%d OR customer_name ILIKE $%d OR car_details ILIKE $%d)`, n, n, n)
		args = append(args, "%"+filter.Query+"%")
	}
	if filter.Status != nil {
		n++
		queryBase += fmt.Sprintf(` AND status = $%d`, n)
		args = append(args, *filter.Status)
	}
	if filter.CarID != nil {
		n++
		queryBase += fmt.Sprintf(` AND car_id = $%d`, n)
		args = append(args, *filter.CarID)
	}
	if filter.CustomerID != nil {
		n++
		queryBase += fmt.Sprintf(` AND customer_id = $%d`, n)
		args = append(args, *filter.CustomerID)
	}
	if filter.From != nil {
		n++
		queryBase += fmt.Sprintf(` AND end_date >= $%d`, n)
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		n++
		queryBase += fmt.Sprintf(` AND start_date <= $%d`, n)
		args = append(args, *filter.To)
	}

	validSortFields := map[string]bool{"created_at": true, "start_date": true, "end_date": true, "total_amount": true}
	sortField := "created_at"
	if validSortFields[filter.SortBy] {
		sortField = filter.SortBy
	}
	queryBase += fmt.Sprintf(` ORDER BY %s %s`, sortField, common.ValidateSortOrder(filter.SortOrder))

	n++
	queryBase += fmt.Sprintf(` LIMIT $%d`, n)
	args = append(args, filter.Limit)
	if filter.Offset > 0 {
		n++
		queryBase += fmt.Sprintf(` OFFSET $%d`, n)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.Query(ctx, queryBase, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

func collectBookings(rows pgx.Rows) ([]*models.Booking, error) {
	var bookings []*models.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	return bookings, rows.Err()
}

// FormatBookingCode renders the display code for a booking created at t
// with per-day sequence seq, e.g. VAT-20241210-001.
func FormatBookingCode(t time.Time, seq int) string {
	return fmt.Sprintf("VAT-%s-%03d", t.Format("20060102"), seq)
}
