package models

import (
	"time"

	"github.com/google/uuid"
)

// Expense is a standalone operating cost with no stock movement.
type Expense struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BusinessID  uuid.UUID `gorm:"column:business_id;type:uuid;not null;index"`
	Concept     string    `gorm:"column:concept;not null"`
	Category    string    `gorm:"column:category;not null"`
	AmountCents int64     `gorm:"column:amount_cents;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}
