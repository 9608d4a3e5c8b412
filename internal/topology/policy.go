package topology

import (
	"time"

	"github.com/google/uuid"

	"github.com/marcovaldez/tiendapos-backend/pkg/db/models"
	"github.com/marcovaldez/tiendapos-backend/pkg/enums"
)

// DefaultCooldownDays is the rolling window during which a business may
// change its inventory mode only once.
const DefaultCooldownDays = 60

// Decision is the outcome of a mode-change check.
type Decision struct {
	Allowed       bool
	RemainingDays int
}

// CanChangeMode reports whether the business may switch inventory mode at
// the given instant. A nil InventoryModeChangedAt means the mode was never
// changed, so the switch is allowed immediately.
func CanChangeMode(business *models.Business, now time.Time, cooldownDays int) Decision {
	if cooldownDays <= 0 {
		cooldownDays = DefaultCooldownDays
	}
	if business == nil || business.InventoryModeChangedAt == nil {
		return Decision{Allowed: true}
	}

	unlockAt := business.InventoryModeChangedAt.AddDate(0, 0, cooldownDays)
	if !now.Before(unlockAt) {
		return Decision{Allowed: true}
	}

	remaining := int(unlockAt.Sub(now).Hours() / 24)
	if unlockAt.Sub(now)%(24*time.Hour) > 0 {
		remaining++
	}
	return Decision{Allowed: false, RemainingDays: remaining}
}

// ResolveStock returns the effective quantity of a product for the given
// branch under the supplied inventory mode. Shared mode ignores the branch
// entirely; per-branch mode reads the matching row, treating an absent row
// as zero.
func ResolveStock(product *models.Product, stocks []models.BranchStock, branchID *uuid.UUID, mode enums.InventoryMode) int {
	if product == nil {
		return 0
	}
	if mode == enums.InventoryModeShared {
		return product.SharedQty
	}
	if branchID == nil {
		return 0
	}
	for _, stock := range stocks {
		if stock.ProductID == product.ID && stock.BranchID == *branchID {
			return stock.Qty
		}
	}
	return 0
}
