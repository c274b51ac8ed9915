package models

import (
	"time"

	"github.com/google/uuid"
)

type Customer struct {
	ID            uuid.UUID `json:"id" db:"id"`
	CustomerID    string    `json:"customer_id" db:"customer_id"` // display code, e.g. CUST-0042
	Name          string    `json:"name" db:"name"`
	Phone         string    `json:"phone" db:"phone"`
	Address       *string   `json:"address" db:"address"`
	AadharNumber  *string   `json:"aadhar_number" db:"aadhar_number"`
	LicenseNumber *string   `json:"license_number" db:"license_number"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}
