package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/marcovaldez/tiendapos-backend/pkg/enums"
)

// Business is the tenant. It owns branches, products, staff, and the
// inventory topology configuration.
type Business struct {
	ID                     uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name                   string              `gorm:"column:name;not null"`
	TaxID                  *string             `gorm:"column:tax_id"`
	Address                *string             `gorm:"column:address"`
	Phone                  *string             `gorm:"column:phone"`
	ContactEmail           *string             `gorm:"column:contact_email"`
	Website                *string             `gorm:"column:website"`
	Currency               enums.Currency      `gorm:"column:currency;not null;default:'USD'"`
	InventoryMode          enums.InventoryMode `gorm:"column:inventory_mode;not null;default:'shared'"`
	InventoryModeChangedAt *time.Time          `gorm:"column:inventory_mode_changed_at"`
	PaymentMethods         pq.StringArray      `gorm:"column:payment_methods;type:text[]"`
	OwnerUserID            uuid.UUID           `gorm:"column:owner_user_id;type:uuid;not null;uniqueIndex"`
	CreatedAt              time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt              time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
