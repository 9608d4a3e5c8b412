package models

import (
	"time"

	"github.com/google/uuid"
)

// Product belongs to one business. SharedQty is the stock count used
// under shared inventory mode; per-branch counts live in BranchStock.
type Product struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BusinessID     uuid.UUID `gorm:"column:business_id;type:uuid;not null;index"`
	Name           string    `gorm:"column:name;not null"`
	Category       *string   `gorm:"column:category"`
	Barcode        *string   `gorm:"column:barcode;index"`
	UnitPriceCents int64     `gorm:"column:unit_price_cents;not null;default:0"`
	SharedQty      int       `gorm:"column:shared_qty;not null;default:0"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`

	BranchStocks []BranchStock `gorm:"foreignKey:ProductID"`
}
