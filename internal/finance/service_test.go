package finance

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/marcovaldez/tiendapos-backend/internal/audit"
	"github.com/marcovaldez/tiendapos-backend/internal/identity"
	"github.com/marcovaldez/tiendapos-backend/internal/inventory"
	"github.com/marcovaldez/tiendapos-backend/pkg/db/models"
	"github.com/marcovaldez/tiendapos-backend/pkg/enums"
	pkgerrors "github.com/marcovaldez/tiendapos-backend/pkg/errors"
)

type sqliteTxRunner struct {
	db *gorm.DB
}

func (r sqliteTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type dbBusinessReader struct {
	db *gorm.DB
}

func (r dbBusinessReader) GetByID(ctx context.Context, id uuid.UUID) (*models.Business, error) {
	var business models.Business
	if err := r.db.WithContext(ctx).First(&business, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &business, nil
}

type dbProductReader struct {
	db *gorm.DB
}

func (r dbProductReader) GetByID(ctx context.Context, businessID, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ? AND business_id = ?", productID, businessID).Error; err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return &product, nil
}

type dbBranchReader struct {
	db *gorm.DB
}

func (r dbBranchReader) GetByID(ctx context.Context, businessID, branchID uuid.UUID) (*models.Branch, error) {
	var branch models.Branch
	if err := r.db.WithContext(ctx).First(&branch, "id = ? AND business_id = ?", branchID, businessID).Error; err != nil {
		return nil, err
	}
	return &branch, nil
}

type capturingAuditor struct {
	mu     sync.Mutex
	events []audit.Event
}

func (c *capturingAuditor) Record(ctx context.Context, event audit.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:finance_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	for _, ddl := range []string{businessesDDL, branchesDDL, productsDDL, branchStocksDDL, suppliersDDL, purchasesDDL, expensesDDL} {
		if err := db.Exec(ddl).Error; err != nil {
			t.Fatalf("create table: %v", err)
		}
	}
	return db
}

const businessesDDL = `
CREATE TABLE IF NOT EXISTS businesses (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  tax_id TEXT,
  address TEXT,
  phone TEXT,
  contact_email TEXT,
  website TEXT,
  currency TEXT NOT NULL DEFAULT 'USD',
  inventory_mode TEXT NOT NULL DEFAULT 'shared',
  inventory_mode_changed_at DATETIME,
  payment_methods TEXT,
  owner_user_id TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`

const branchesDDL = `
CREATE TABLE IF NOT EXISTS branches (
  id TEXT PRIMARY KEY,
  business_id TEXT NOT NULL,
  name TEXT NOT NULL,
  address TEXT,
  phone TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`

const productsDDL = `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  business_id TEXT NOT NULL,
  name TEXT NOT NULL,
  category TEXT,
  barcode TEXT,
  unit_price_cents INTEGER NOT NULL DEFAULT 0,
  shared_qty INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`

const branchStocksDDL = `
CREATE TABLE IF NOT EXISTS branch_stocks (
  product_id TEXT NOT NULL,
  branch_id TEXT NOT NULL,
  qty INTEGER NOT NULL DEFAULT 0,
  updated_at DATETIME,
  PRIMARY KEY (product_id, branch_id)
);`

const suppliersDDL = `
CREATE TABLE IF NOT EXISTS suppliers (
  id TEXT PRIMARY KEY,
  business_id TEXT NOT NULL,
  name TEXT NOT NULL,
  contact TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`

const purchasesDDL = `
CREATE TABLE IF NOT EXISTS purchases (
  id TEXT PRIMARY KEY,
  business_id TEXT NOT NULL,
  supplier_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  branch_id TEXT,
  qty INTEGER NOT NULL,
  unit_cost_cents INTEGER NOT NULL,
  total_cents INTEGER NOT NULL,
  created_at DATETIME
);`

const expensesDDL = `
CREATE TABLE IF NOT EXISTS expenses (
  id TEXT PRIMARY KEY,
  business_id TEXT NOT NULL,
  concept TEXT NOT NULL,
  category TEXT NOT NULL,
  amount_cents INTEGER NOT NULL,
  created_at DATETIME
);`

func setup(t *testing.T, mode enums.InventoryMode) (Service, *gorm.DB, *capturingAuditor, *models.Business) {
	t.Helper()
	db := newTestDB(t)

	business := &models.Business{
		ID:            uuid.New(),
		Name:          "Abarrotes Lupita",
		Currency:      enums.CurrencyMXN,
		InventoryMode: mode,
		OwnerUserID:   uuid.New(),
	}
	if err := db.Create(business).Error; err != nil {
		t.Fatalf("seed business: %v", err)
	}

	auditor := &capturingAuditor{}
	svc, err := NewService(
		sqliteTxRunner{db: db},
		NewRepository(db),
		inventory.NewStockRepository(db),
		dbBusinessReader{db: db},
		dbProductReader{db: db},
		dbBranchReader{db: db},
		auditor,
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, db, auditor, business
}

func seedProduct(t *testing.T, db *gorm.DB, businessID uuid.UUID, sharedQty int) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:         uuid.New(),
		BusinessID: businessID,
		Name:       "Harina 1kg",
		SharedQty:  sharedQty,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}

func seedSupplier(t *testing.T, db *gorm.DB, businessID uuid.UUID) *models.Supplier {
	t.Helper()
	supplier := &models.Supplier{ID: uuid.New(), BusinessID: businessID, Name: "Distribuidora Norte"}
	if err := db.Create(supplier).Error; err != nil {
		t.Fatalf("seed supplier: %v", err)
	}
	return supplier
}

func seedBranch(t *testing.T, db *gorm.DB, businessID uuid.UUID) uuid.UUID {
	t.Helper()
	branch := &models.Branch{ID: uuid.New(), BusinessID: businessID, Name: "Centro"}
	if err := db.Create(branch).Error; err != nil {
		t.Fatalf("seed branch: %v", err)
	}
	return branch.ID
}

func owner(business *models.Business) identity.Actor {
	return identity.OwnerActor(business.OwnerUserID, &business.ID)
}

func TestRecordPurchaseSharedMode(t *testing.T) {
	svc, db, auditor, business := setup(t, enums.InventoryModeShared)
	product := seedProduct(t, db, business.ID, 2)
	supplier := seedSupplier(t, db, business.ID)
	ctx := context.Background()

	purchase, err := svc.RecordPurchase(ctx, owner(business), PurchaseInput{
		BusinessID:    business.ID,
		SupplierID:    supplier.ID,
		ProductID:     product.ID,
		Qty:           10,
		UnitCostCents: 950,
	})
	if err != nil {
		t.Fatalf("record purchase: %v", err)
	}
	if purchase.TotalCents != 9500 {
		t.Fatalf("expected total 9500, got %d", purchase.TotalCents)
	}
	if purchase.BranchID != nil {
		t.Fatal("shared-mode purchase must not carry a branch")
	}

	var reloaded models.Product
	if err := db.First(&reloaded, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.SharedQty != 12 {
		t.Fatalf("expected stock 2->12, got %d", reloaded.SharedQty)
	}

	if len(auditor.events) != 1 {
		t.Fatalf("expected one audit event, got %d", len(auditor.events))
	}
	event := auditor.events[0]
	if event.Action != enums.AuditActionPurchase {
		t.Fatalf("expected purchase action, got %s", event.Action)
	}
	if event.ResultingQty == nil || *event.ResultingQty != 12 {
		t.Fatalf("expected resulting qty 12, got %+v", event.ResultingQty)
	}
	if !strings.Contains(event.Details, supplier.Name) {
		t.Fatalf("expected the event to name the supplier, got %q", event.Details)
	}
}

func TestRecordPurchasePerBranchMode(t *testing.T) {
	svc, db, _, business := setup(t, enums.InventoryModePerBranch)
	product := seedProduct(t, db, business.ID, 0)
	supplier := seedSupplier(t, db, business.ID)
	branchID := seedBranch(t, db, business.ID)
	ctx := context.Background()

	// Branch is mandatory in per-branch mode.
	if _, err := svc.RecordPurchase(ctx, owner(business), PurchaseInput{
		BusinessID:    business.ID,
		SupplierID:    supplier.ID,
		ProductID:     product.ID,
		Qty:           4,
		UnitCostCents: 100,
	}); err == nil {
		t.Fatal("expected branch requirement")
	}

	purchase, err := svc.RecordPurchase(ctx, owner(business), PurchaseInput{
		BusinessID:    business.ID,
		SupplierID:    supplier.ID,
		ProductID:     product.ID,
		BranchID:      &branchID,
		Qty:           4,
		UnitCostCents: 100,
	})
	if err != nil {
		t.Fatalf("record purchase: %v", err)
	}
	if purchase.BranchID == nil || *purchase.BranchID != branchID {
		t.Fatal("per-branch purchase must carry its branch")
	}

	stocks, err := inventory.NewStockRepository(db).GetBranchStocks(ctx, product.ID)
	if err != nil {
		t.Fatalf("get stocks: %v", err)
	}
	if len(stocks) != 1 || stocks[0].Qty != 4 {
		t.Fatalf("expected branch stock 4, got %+v", stocks)
	}
}

func TestRecordPurchaseRejectsForeignBranch(t *testing.T) {
	svc, db, auditor, business := setup(t, enums.InventoryModePerBranch)
	product := seedProduct(t, db, business.ID, 0)
	supplier := seedSupplier(t, db, business.ID)
	foreignBranch := seedBranch(t, db, uuid.New())
	ctx := context.Background()

	_, err := svc.RecordPurchase(ctx, owner(business), PurchaseInput{
		BusinessID:    business.ID,
		SupplierID:    supplier.ID,
		ProductID:     product.ID,
		BranchID:      &foreignBranch,
		Qty:           3,
		UnitCostCents: 100,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND for another tenant's branch, got %v", err)
	}

	var count int64
	if err := db.Model(&models.BranchStock{}).Count(&count).Error; err != nil {
		t.Fatalf("count stocks: %v", err)
	}
	if count != 0 {
		t.Fatal("rejected purchase must not create a stock row")
	}
	if len(auditor.events) != 0 {
		t.Fatal("rejected purchase must not emit audit events")
	}
}

func TestRecordPurchaseForeignSupplier(t *testing.T) {
	svc, db, _, business := setup(t, enums.InventoryModeShared)
	product := seedProduct(t, db, business.ID, 0)
	foreignSupplier := seedSupplier(t, db, uuid.New())

	_, err := svc.RecordPurchase(context.Background(), owner(business), PurchaseInput{
		BusinessID:    business.ID,
		SupplierID:    foreignSupplier.ID,
		ProductID:     product.ID,
		Qty:           3,
		UnitCostCents: 100,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND for another tenant's supplier, got %v", err)
	}

	var reloaded models.Product
	if err := db.First(&reloaded, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.SharedQty != 0 {
		t.Fatalf("rejected purchase must leave stock at 0, got %d", reloaded.SharedQty)
	}
}

func TestRecordPurchaseDeniedForCashier(t *testing.T) {
	svc, db, _, business := setup(t, enums.InventoryModeShared)
	product := seedProduct(t, db, business.ID, 0)
	supplier := seedSupplier(t, db, business.ID)

	cashier := identity.EmployeeActor(uuid.New(), business.ID, uuid.New(), enums.EmployeeRoleCashier,
		identity.Permissions{CanSell: true}, true)
	_, err := svc.RecordPurchase(context.Background(), cashier, PurchaseInput{
		BusinessID:    business.ID,
		SupplierID:    supplier.ID,
		ProductID:     product.ID,
		Qty:           1,
		UnitCostCents: 100,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}
}

func TestCreateSupplierOwnerOnly(t *testing.T) {
	svc, _, _, business := setup(t, enums.InventoryModeShared)
	ctx := context.Background()

	supervisor := identity.EmployeeActor(uuid.New(), business.ID, uuid.New(), enums.EmployeeRoleSupervisor,
		identity.Permissions{CanSell: true, CanViewStock: true}, true)
	_, err := svc.CreateSupplier(ctx, supervisor, CreateSupplierInput{
		BusinessID: business.ID,
		Name:       "Distribuidora Norte",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected FORBIDDEN for non-owner, got %v", err)
	}

	supplier, err := svc.CreateSupplier(ctx, owner(business), CreateSupplierInput{
		BusinessID: business.ID,
		Name:       "Distribuidora Norte",
	})
	if err != nil {
		t.Fatalf("create supplier: %v", err)
	}
	if supplier.ID == uuid.Nil {
		t.Fatal("expected an assigned supplier id")
	}

	suppliers, err := svc.ListSuppliers(ctx, owner(business), business.ID)
	if err != nil {
		t.Fatalf("list suppliers: %v", err)
	}
	if len(suppliers) != 1 || suppliers[0].Name != "Distribuidora Norte" {
		t.Fatalf("expected the created supplier, got %+v", suppliers)
	}
}

func TestRecordExpenseDefaultsCategory(t *testing.T) {
	svc, _, _, business := setup(t, enums.InventoryModeShared)
	ctx := context.Background()

	expense, err := svc.RecordExpense(ctx, owner(business), ExpenseInput{
		BusinessID:  business.ID,
		Concept:     "Luz del local",
		AmountCents: 45000,
	})
	if err != nil {
		t.Fatalf("record expense: %v", err)
	}
	if expense.Category != DefaultExpenseCategory {
		t.Fatalf("expected default category, got %q", expense.Category)
	}

	expenses, err := svc.ListExpenses(ctx, owner(business), ListInput{BusinessID: business.ID})
	if err != nil {
		t.Fatalf("list expenses: %v", err)
	}
	if len(expenses) != 1 || expenses[0].AmountCents != 45000 {
		t.Fatalf("expected the recorded expense, got %+v", expenses)
	}
}

func TestRecordExpenseRequiresConcept(t *testing.T) {
	svc, _, _, business := setup(t, enums.InventoryModeShared)

	_, err := svc.RecordExpense(context.Background(), owner(business), ExpenseInput{
		BusinessID:  business.ID,
		AmountCents: 100,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
