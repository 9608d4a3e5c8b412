package models

import (
	"time"

	"github.com/google/uuid"
)

// Branch is a physical or logical sub-location of a business. Under
// per-branch inventory mode each branch carries its own stock pool.
type Branch struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BusinessID uuid.UUID `gorm:"column:business_id;type:uuid;not null;index"`
	Name       string    `gorm:"column:name;not null"`
	Address    *string   `gorm:"column:address"`
	Phone      *string   `gorm:"column:phone"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
