package models

import (
	"time"

	"github.com/google/uuid"
)

// Reminder classification for the due/overdue feed.
const (
	ReminderDueToday = "due_today"
	ReminderOverdue  = "overdue"
	ReminderDueSoon  = "due_soon"
)

// Reminder is a read-only feed item derived from an Active booking's
// end date versus today. Reminders are computed, never persisted.
type Reminder struct {
	BookingID    uuid.UUID `json:"booking_id"`
	BookingCode  string    `json:"booking_code"`
	CustomerName string    `json:"customer_name"`
	CarDetails   string    `json:"car_details"`
	EndDate      time.Time `json:"end_date"`
	Kind         string    `json:"kind"`
	DaysOverdue  int       `json:"days_overdue,omitempty"`
}
