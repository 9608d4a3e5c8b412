package inventory

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marcovaldez/tiendapos-backend/internal/audit"
	"github.com/marcovaldez/tiendapos-backend/internal/identity"
	"github.com/marcovaldez/tiendapos-backend/pkg/db/models"
	"github.com/marcovaldez/tiendapos-backend/pkg/enums"
	pkgerrors "github.com/marcovaldez/tiendapos-backend/pkg/errors"
)

type stubStocks struct {
	sharedQty    map[uuid.UUID]int
	branchQty    map[uuid.UUID]map[uuid.UUID]int
	setSharedErr error
}

func newStubStocks() *stubStocks {
	return &stubStocks{
		sharedQty: map[uuid.UUID]int{},
		branchQty: map[uuid.UUID]map[uuid.UUID]int{},
	}
}

func (s *stubStocks) WithTx(tx *gorm.DB) StockRepository { return s }

func (s *stubStocks) AddShared(ctx context.Context, businessID, productID uuid.UUID, delta int) (int, error) {
	next := s.sharedQty[productID] + delta
	if next < 0 {
		return 0, pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock")
	}
	s.sharedQty[productID] = next
	return next, nil
}

func (s *stubStocks) AddBranch(ctx context.Context, productID, branchID uuid.UUID, delta int) (int, error) {
	if s.branchQty[productID] == nil {
		s.branchQty[productID] = map[uuid.UUID]int{}
	}
	next := s.branchQty[productID][branchID] + delta
	if next < 0 {
		return 0, pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock")
	}
	s.branchQty[productID][branchID] = next
	return next, nil
}

func (s *stubStocks) SetShared(ctx context.Context, businessID, productID uuid.UUID, qty int) error {
	if s.setSharedErr != nil {
		return s.setSharedErr
	}
	s.sharedQty[productID] = qty
	return nil
}

func (s *stubStocks) SetBranch(ctx context.Context, productID, branchID uuid.UUID, qty int) error {
	if s.branchQty[productID] == nil {
		s.branchQty[productID] = map[uuid.UUID]int{}
	}
	s.branchQty[productID][branchID] = qty
	return nil
}

func (s *stubStocks) GetBranchStocks(ctx context.Context, productID uuid.UUID) ([]models.BranchStock, error) {
	var stocks []models.BranchStock
	for branchID, qty := range s.branchQty[productID] {
		stocks = append(stocks, models.BranchStock{ProductID: productID, BranchID: branchID, Qty: qty})
	}
	return stocks, nil
}

func (s *stubStocks) ListLowShared(ctx context.Context, businessID uuid.UUID, threshold int) ([]models.Product, error) {
	return nil, nil
}

func (s *stubStocks) ListLowBranch(ctx context.Context, businessID, branchID uuid.UUID, threshold int) ([]models.BranchStock, error) {
	return nil, nil
}

type stubBusinessReader struct {
	business *models.Business
}

func (s *stubBusinessReader) GetByID(ctx context.Context, id uuid.UUID) (*models.Business, error) {
	if s.business == nil || s.business.ID != id {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "business not found")
	}
	return s.business, nil
}

type stubProductReader struct {
	product *models.Product
}

func (s *stubProductReader) GetByID(ctx context.Context, businessID, productID uuid.UUID) (*models.Product, error) {
	if s.product == nil || s.product.ID != productID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return s.product, nil
}

type stubBranchReader struct {
	owners map[uuid.UUID]uuid.UUID
}

func newStubBranchReader() *stubBranchReader {
	return &stubBranchReader{owners: map[uuid.UUID]uuid.UUID{}}
}

func (s *stubBranchReader) add(businessID uuid.UUID) uuid.UUID {
	branchID := uuid.New()
	s.owners[branchID] = businessID
	return branchID
}

func (s *stubBranchReader) GetByID(ctx context.Context, businessID, branchID uuid.UUID) (*models.Branch, error) {
	if s.owners[branchID] != businessID {
		return nil, gorm.ErrRecordNotFound
	}
	return &models.Branch{ID: branchID, BusinessID: businessID}, nil
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

func setupService(t *testing.T, mode enums.InventoryMode) (Service, *stubStocks, *capturingAuditor, *models.Business, *models.Product, *stubBranchReader) {
	t.Helper()
	business := &models.Business{ID: uuid.New(), InventoryMode: mode}
	product := &models.Product{ID: uuid.New(), BusinessID: business.ID, SharedQty: 10}

	stocks := newStubStocks()
	stocks.sharedQty[product.ID] = 10
	auditor := &capturingAuditor{}
	branches := newStubBranchReader()

	svc, err := NewService(stocks, &stubBusinessReader{business: business}, &stubProductReader{product: product}, branches, auditor)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, stocks, auditor, business, product, branches
}

func ownerFor(business *models.Business) identity.Actor {
	return identity.OwnerActor(uuid.New(), &business.ID)
}

func TestReceiveStockShared(t *testing.T) {
	svc, stocks, auditor, business, product, _ := setupService(t, enums.InventoryModeShared)

	level, err := svc.ReceiveStock(context.Background(), ownerFor(business), ReceiveStockInput{
		BusinessID: business.ID,
		ProductID:  product.ID,
		Qty:        5,
	})
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if level.Qty != 15 || stocks.sharedQty[product.ID] != 15 {
		t.Fatalf("expected 15, got level %d store %d", level.Qty, stocks.sharedQty[product.ID])
	}
	if len(auditor.events) != 1 || auditor.events[0].Action != enums.AuditActionPurchase {
		t.Fatalf("expected one purchase audit event, got %+v", auditor.events)
	}
}

func TestReceiveStockRequiresPositiveQty(t *testing.T) {
	svc, _, _, business, product, _ := setupService(t, enums.InventoryModeShared)

	_, err := svc.ReceiveStock(context.Background(), ownerFor(business), ReceiveStockInput{
		BusinessID: business.ID,
		ProductID:  product.ID,
		Qty:        0,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestReceiveStockPerBranchRequiresBranch(t *testing.T) {
	svc, _, _, business, product, _ := setupService(t, enums.InventoryModePerBranch)

	_, err := svc.ReceiveStock(context.Background(), ownerFor(business), ReceiveStockInput{
		BusinessID: business.ID,
		ProductID:  product.ID,
		Qty:        3,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected branch requirement, got %v", err)
	}
}

func TestAdjustStockSharedEmitsDelta(t *testing.T) {
	svc, stocks, auditor, business, product, _ := setupService(t, enums.InventoryModeShared)

	level, err := svc.AdjustStock(context.Background(), ownerFor(business), AdjustStockInput{
		BusinessID: business.ID,
		ProductID:  product.ID,
		NewQty:     4,
		Reason:     "cycle count",
	})
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if level.Qty != 4 || stocks.sharedQty[product.ID] != 4 {
		t.Fatalf("expected qty 4, got %d", level.Qty)
	}
	if len(auditor.events) != 1 {
		t.Fatalf("expected one audit event, got %d", len(auditor.events))
	}
	event := auditor.events[0]
	if event.Action != enums.AuditActionAdjustment || event.Delta == nil || *event.Delta != -6 {
		t.Fatalf("expected adjustment delta -6, got %+v", event)
	}
}

func TestAdjustStockDeniedForCashier(t *testing.T) {
	svc, _, auditor, business, product, _ := setupService(t, enums.InventoryModeShared)

	cashier := identity.EmployeeActor(uuid.New(), business.ID, uuid.New(), enums.EmployeeRoleCashier,
		identity.Permissions{CanSell: true}, true)
	_, err := svc.AdjustStock(context.Background(), cashier, AdjustStockInput{
		BusinessID: business.ID,
		ProductID:  product.ID,
		NewQty:     1,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}
	if len(auditor.events) != 0 {
		t.Fatal("denied action must not emit audit events")
	}
}

func TestGetLevelPerBranchAbsentRowIsZero(t *testing.T) {
	svc, _, _, business, product, _ := setupService(t, enums.InventoryModePerBranch)

	branchID := uuid.New()
	level, err := svc.GetLevel(context.Background(), ownerFor(business), business.ID, product.ID, &branchID)
	if err != nil {
		t.Fatalf("get level: %v", err)
	}
	if level.Qty != 0 {
		t.Fatalf("expected absent row to read 0, got %d", level.Qty)
	}
}

func TestReceiveStockRejectsForeignBranch(t *testing.T) {
	svc, stocks, auditor, business, product, branches := setupService(t, enums.InventoryModePerBranch)

	foreignBranch := branches.add(uuid.New())
	_, err := svc.ReceiveStock(context.Background(), ownerFor(business), ReceiveStockInput{
		BusinessID: business.ID,
		ProductID:  product.ID,
		BranchID:   &foreignBranch,
		Qty:        7,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND for another tenant's branch, got %v", err)
	}
	if len(stocks.branchQty[product.ID]) != 0 {
		t.Fatal("rejected receive must not create a stock row")
	}
	if len(auditor.events) != 0 {
		t.Fatal("rejected receive must not emit audit events")
	}
}

func TestReceiveStockOwnBranch(t *testing.T) {
	svc, stocks, _, business, product, branches := setupService(t, enums.InventoryModePerBranch)

	branchID := branches.add(business.ID)
	level, err := svc.ReceiveStock(context.Background(), ownerFor(business), ReceiveStockInput{
		BusinessID: business.ID,
		ProductID:  product.ID,
		BranchID:   &branchID,
		Qty:        7,
	})
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if level.Qty != 7 || stocks.branchQty[product.ID][branchID] != 7 {
		t.Fatalf("expected branch qty 7, got level %d", level.Qty)
	}
}

func TestAdjustStockRejectsForeignBranch(t *testing.T) {
	svc, stocks, _, business, product, branches := setupService(t, enums.InventoryModePerBranch)

	foreignBranch := branches.add(uuid.New())
	_, err := svc.AdjustStock(context.Background(), ownerFor(business), AdjustStockInput{
		BusinessID: business.ID,
		ProductID:  product.ID,
		BranchID:   &foreignBranch,
		NewQty:     4,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND for another tenant's branch, got %v", err)
	}
	if len(stocks.branchQty[product.ID]) != 0 {
		t.Fatal("rejected adjust must not create a stock row")
	}
}
