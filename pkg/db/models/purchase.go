package models

import (
	"time"

	"github.com/google/uuid"
)

// Purchase records goods bought from a supplier. The received quantity
// lands in the stock pool the purchase names, so the row doubles as the
// cost side of the inventory ledger. BranchID is null when the business
// runs shared inventory.
type Purchase struct {
	ID            uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BusinessID    uuid.UUID  `gorm:"column:business_id;type:uuid;not null;index"`
	SupplierID    uuid.UUID  `gorm:"column:supplier_id;type:uuid;not null"`
	ProductID     uuid.UUID  `gorm:"column:product_id;type:uuid;not null"`
	BranchID      *uuid.UUID `gorm:"column:branch_id;type:uuid"`
	Qty           int        `gorm:"column:qty;not null"`
	UnitCostCents int64      `gorm:"column:unit_cost_cents;not null"`
	TotalCents    int64      `gorm:"column:total_cents;not null"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
}
