package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/marcovaldez/tiendapos-backend/pkg/enums"
)

// Employee is a named staff member bound to a single branch. Role gates
// role-based actions (personnel admin, transfers); the permission flags
// gate feature access.
type Employee struct {
	ID           uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BusinessID   uuid.UUID          `gorm:"column:business_id;type:uuid;not null;index"`
	BranchID     uuid.UUID          `gorm:"column:branch_id;type:uuid;not null;index"`
	Name         string             `gorm:"column:name;not null"`
	Identifier   string             `gorm:"column:identifier;not null;uniqueIndex"`
	PasswordHash string             `gorm:"column:password_hash;not null"`
	PINHash      *string            `gorm:"column:pin_hash"`
	Role         enums.EmployeeRole `gorm:"column:role;not null;default:'cashier'"`

	CanSell           bool `gorm:"column:can_sell;not null;default:true"`
	CanViewStock      bool `gorm:"column:can_view_stock;not null;default:true"`
	CanManageProducts bool `gorm:"column:can_manage_products;not null;default:false"`
	CanViewReports    bool `gorm:"column:can_view_reports;not null;default:false"`

	Active    bool      `gorm:"column:active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
