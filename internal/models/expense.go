package models

import (
	"time"

	"github.com/google/uuid"
)

type Expense struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	CarID       *uuid.UUID `json:"car_id" db:"car_id"` // nil for fleet-wide expenses
	Category    string     `json:"category" db:"category"`
	Amount      float64    `json:"amount" db:"amount"`
	ExpenseDate time.Time  `json:"expense_date" db:"expense_date"`
	Notes       *string    `json:"notes" db:"notes"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}
