package models

import (
	"time"

	"github.com/google/uuid"
)

// Booking status values. Active bookings participate in conflict checks;
// Returned and Cancelled are terminal.
const (
	BookingStatusActive    = "Active"
	BookingStatusReturned  = "Returned"
	BookingStatusPending   = "Pending"
	BookingStatusCancelled = "Cancelled"
)

type Booking struct {
	ID        uuid.UUID `json:"id" db:"id"`
	BookingID string    `json:"booking_id" db:"booking_id"` // display code, e.g. VAT-20241210-001

	CustomerID   uuid.UUID `json:"customer_id" db:"customer_id"`
	CustomerName string    `json:"customer_name" db:"customer_name"` // snapshot at booking time
	CarID        uuid.UUID `json:"car_id" db:"car_id"`
	CarDetails   string    `json:"car_details" db:"car_details"` // snapshot at booking time

	StartDate time.Time `json:"start_date" db:"start_date"` // inclusive calendar date
	EndDate   time.Time `json:"end_date" db:"end_date"`     // inclusive calendar date
	StartTime string    `json:"start_time" db:"start_time"` // informational time-of-day
	EndTime   string    `json:"end_time" db:"end_time"`

	Duration    int     `json:"duration" db:"duration"` // whole days, derived, min 1
	DailyRate   float64 `json:"daily_rate" db:"daily_rate"`
	TotalAmount float64 `json:"total_amount" db:"total_amount"` // daily_rate * duration

	DepositAmount     float64 `json:"deposit_amount" db:"deposit_amount"`
	TotalRentReceived float64 `json:"total_rent_received" db:"total_rent_received"`
	PaymentMode       string  `json:"payment_mode" db:"payment_mode"`

	Status          string     `json:"status" db:"status"`
	DepositRefunded bool       `json:"deposit_refunded" db:"deposit_refunded"`
	Notes           *string    `json:"notes" db:"notes"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	ReturnedAt      *time.Time `json:"returned_at" db:"returned_at"`
}

// Overlaps reports whether two inclusive date ranges intersect.
// Bookings whose ranges merely touch (end date of one equals the start
// date of the other) count as overlapping.
func Overlaps(startA, endA, startB, endB time.Time) bool {
	return !startA.After(endB) && !endA.Before(startB)
}

// ConflictsWith reports whether the candidate range [start, end] collides
// with this booking. Only Active bookings participate.
func (b *Booking) ConflictsWith(start, end time.Time) bool {
	if b.Status != BookingStatusActive {
		return false
	}
	return Overlaps(start, end, b.StartDate, b.EndDate)
}

// BookingSearchFilter holds filter criteria for booking queries
type BookingSearchFilter struct {
	Query      string     `json:"query,omitempty"`
	Status     *string    `json:"status,omitempty"`
	CarID      *uuid.UUID `json:"car_id,omitempty"`
	CustomerID *uuid.UUID `json:"customer_id,omitempty"`
	From       *time.Time `json:"from,omitempty"`
	To         *time.Time `json:"to,omitempty"`
	SortBy     string     `json:"sort_by,omitempty"`
	SortOrder  string     `json:"sort_order,omitempty"`
	Limit      int        `json:"limit,omitempty"`
	Offset     int        `json:"offset,omitempty"`
}
