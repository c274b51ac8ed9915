package models

import (
	"time"

	"github.com/google/uuid"
)

type InsurancePolicy struct {
	ID           uuid.UUID `json:"id" db:"id"`
	CarID        uuid.UUID `json:"car_id" db:"car_id"`
	PolicyNumber string    `json:"policy_number" db:"policy_number"`
	Provider     string    `json:"provider" db:"provider"`
	Premium      float64   `json:"premium" db:"premium"`
	StartsOn     time.Time `json:"starts_on" db:"starts_on"`
	ExpiresOn    time.Time `json:"expires_on" db:"expires_on"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
