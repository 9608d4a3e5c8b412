package models

import (
	"time"

	"github.com/google/uuid"
)

// BranchStock is the per-branch quantity for one product. A missing row
// resolves to quantity zero; visibility filtering is a presentation
// concern, not a ledger one.
type BranchStock struct {
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;primaryKey"`
	BranchID  uuid.UUID `gorm:"column:branch_id;type:uuid;primaryKey"`
	Qty       int       `gorm:"column:qty;not null;default:0"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
