package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/marcovaldez/tiendapos-backend/pkg/enums"
)

// Sale is an immutable point-of-sale transaction. Exactly one of
// SellerOwnerID / SellerEmployeeID is set. BranchID is null when the
// business runs shared inventory.
type Sale struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BusinessID       uuid.UUID           `gorm:"column:business_id;type:uuid;not null;index"`
	BranchID         *uuid.UUID          `gorm:"column:branch_id;type:uuid;index"`
	TotalCents       int64               `gorm:"column:total_cents;not null"`
	PaymentMethod    enums.PaymentMethod `gorm:"column:payment_method;not null"`
	SellerOwnerID    *uuid.UUID          `gorm:"column:seller_owner_id;type:uuid"`
	SellerEmployeeID *uuid.UUID          `gorm:"column:seller_employee_id;type:uuid"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime"`

	Items []SaleItem `gorm:"foreignKey:SaleID"`
}

// SaleItem is one line of a sale, capturing the unit price at sale time.
type SaleItem struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SaleID         uuid.UUID `gorm:"column:sale_id;type:uuid;not null;index"`
	ProductID      uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	Qty            int       `gorm:"column:qty;not null"`
	UnitPriceCents int64     `gorm:"column:unit_price_cents;not null"`
}
