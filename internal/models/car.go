package models

import (
	"time"

	"github.com/google/uuid"
)

// Car status values. The booking ledger flips these on create/return.
const (
	CarStatusAvailable        = "Available"
	CarStatusRented           = "Rented"
	CarStatusUnderMaintenance = "UnderMaintenance"
)

type Car struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Make         string    `json:"make" db:"make"`
	Model        string    `json:"model" db:"model"`
	Year         int       `json:"year" db:"year"`
	PlateNumber  string    `json:"plate_number" db:"plate_number"`
	FuelType     string    `json:"fuel_type" db:"fuel_type"`
	Transmission string    `json:"transmission" db:"transmission"`
	Status       string    `json:"status" db:"status"`
	DailyRate    *float64  `json:"daily_rate" db:"daily_rate"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// DisplayString renders the denormalized snapshot stored on bookings,
// e.g. "Maruti Swift (KA-01-AB-1234)".
func (c *Car) DisplayString() string {
	return c.Make + " " + c.Model + " (" + c.PlateNumber + ")"
}

// CarSearchFilter holds filter criteria for fleet queries
type CarSearchFilter struct {
	Query     string `json:"query,omitempty"`
	Status    *string `json:"status,omitempty"`
	FuelType  *string `json:"fuel_type,omitempty"`
	SortBy    string `json:"sort_by,omitempty"`
	SortOrder string `json:"sort_order,omitempty"`
	Limit     int    `json:"limit,omitempty"`
	Offset    int    `json:"offset,omitempty"`
}
