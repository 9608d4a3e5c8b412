package models

import (
	"time"

	"github.com/google/uuid"
)

// Terminal is a shared POS device identity bound to a branch. A terminal
// session alone cannot sell; an employee PIN shift must be layered on top.
type Terminal struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BusinessID uuid.UUID `gorm:"column:business_id;type:uuid;not null;index"`
	BranchID   uuid.UUID `gorm:"column:branch_id;type:uuid;not null;index"`
	Name       string    `gorm:"column:name;not null"`
	Identifier string    `gorm:"column:identifier;not null;uniqueIndex"`
	CodeHash   string    `gorm:"column:code_hash;not null"`
	Active     bool      `gorm:"column:active;not null;default:true"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
