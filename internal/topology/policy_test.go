package topology

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/marcovaldez/tiendapos-backend/pkg/db/models"
	"github.com/marcovaldez/tiendapos-backend/pkg/enums"
)

func TestCanChangeModeNeverChanged(t *testing.T) {
	business := &models.Business{InventoryMode: enums.InventoryModeShared}

	decision := CanChangeMode(business, time.Now(), 60)
	if !decision.Allowed {
		t.Fatal("expected mode change allowed when never changed before")
	}
	if decision.RemainingDays != 0 {
		t.Fatalf("expected 0 remaining days, got %d", decision.RemainingDays)
	}
}

func TestCanChangeModeInsideCooldown(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	changed := now.AddDate(0, 0, -10)
	business := &models.Business{
		InventoryMode:          enums.InventoryModePerBranch,
		InventoryModeChangedAt: &changed,
	}

	decision := CanChangeMode(business, now, 60)
	if decision.Allowed {
		t.Fatal("expected mode change blocked inside cooldown")
	}
	if decision.RemainingDays != 50 {
		t.Fatalf("expected 50 remaining days, got %d", decision.RemainingDays)
	}
}

func TestCanChangeModeAfterCooldown(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	changed := now.AddDate(0, 0, -60)
	business := &models.Business{InventoryModeChangedAt: &changed}

	decision := CanChangeMode(business, now, 60)
	if !decision.Allowed {
		t.Fatal("expected mode change allowed once cooldown elapsed")
	}
}

func TestCanChangeModePartialDayRoundsUp(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	changed := now.Add(-59*24*time.Hour - 12*time.Hour)
	business := &models.Business{InventoryModeChangedAt: &changed}

	decision := CanChangeMode(business, now, 60)
	if decision.Allowed {
		t.Fatal("expected mode change blocked with half a day left")
	}
	if decision.RemainingDays != 1 {
		t.Fatalf("expected 1 remaining day, got %d", decision.RemainingDays)
	}
}

func TestResolveStockSharedModeIgnoresBranch(t *testing.T) {
	branchID := uuid.New()
	product := &models.Product{ID: uuid.New(), SharedQty: 42}
	stocks := []models.BranchStock{{ProductID: product.ID, BranchID: branchID, Qty: 7}}

	if got := ResolveStock(product, stocks, &branchID, enums.InventoryModeShared); got != 42 {
		t.Fatalf("expected shared qty 42, got %d", got)
	}
	if got := ResolveStock(product, stocks, nil, enums.InventoryModeShared); got != 42 {
		t.Fatalf("expected shared qty 42 without branch, got %d", got)
	}
}

func TestResolveStockPerBranch(t *testing.T) {
	productID := uuid.New()
	branchA := uuid.New()
	branchB := uuid.New()
	product := &models.Product{ID: productID, SharedQty: 99}
	stocks := []models.BranchStock{
		{ProductID: productID, BranchID: branchA, Qty: 5},
	}

	if got := ResolveStock(product, stocks, &branchA, enums.InventoryModePerBranch); got != 5 {
		t.Fatalf("expected branch A qty 5, got %d", got)
	}
	if got := ResolveStock(product, stocks, &branchB, enums.InventoryModePerBranch); got != 0 {
		t.Fatalf("expected absent branch row to resolve to 0, got %d", got)
	}
	if got := ResolveStock(product, stocks, nil, enums.InventoryModePerBranch); got != 0 {
		t.Fatalf("expected nil branch to resolve to 0, got %d", got)
	}
}
