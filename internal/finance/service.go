package finance

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marcovaldez/tiendapos-backend/internal/accesscontrol"
	"github.com/marcovaldez/tiendapos-backend/internal/audit"
	"github.com/marcovaldez/tiendapos-backend/internal/identity"
	"github.com/marcovaldez/tiendapos-backend/internal/inventory"
	"github.com/marcovaldez/tiendapos-backend/pkg/db/models"
	"github.com/marcovaldez/tiendapos-backend/pkg/enums"
	pkgerrors "github.com/marcovaldez/tiendapos-backend/pkg/errors"
)

// DefaultExpenseCategory is applied when an expense names no category.
const DefaultExpenseCategory = "Servicios"

// Service covers the money side of the business: suppliers, stock
// purchases and standalone expenses. Purchases feed the same stock
// pools the sales side drains.
type Service interface {
	CreateSupplier(ctx context.Context, actor identity.Actor, input CreateSupplierInput) (*models.Supplier, error)
	ListSuppliers(ctx context.Context, actor identity.Actor, businessID uuid.UUID) ([]models.Supplier, error)
	RecordPurchase(ctx context.Context, actor identity.Actor, input PurchaseInput) (*models.Purchase, error)
	ListPurchases(ctx context.Context, actor identity.Actor, input ListInput) ([]models.Purchase, error)
	RecordExpense(ctx context.Context, actor identity.Actor, input ExpenseInput) (*models.Expense, error)
	ListExpenses(ctx context.Context, actor identity.Actor, input ListInput) ([]models.Expense, error)
}

// CreateSupplierInput registers a vendor for a business.
type CreateSupplierInput struct {
	BusinessID uuid.UUID
	Name       string
	Contact    *string
}

// PurchaseInput describes goods received from a supplier.
type PurchaseInput struct {
	BusinessID    uuid.UUID
	SupplierID    uuid.UUID
	ProductID     uuid.UUID
	BranchID      *uuid.UUID
	Qty           int
	UnitCostCents int64
}

// ExpenseInput records an operating cost with no stock movement.
type ExpenseInput struct {
	BusinessID  uuid.UUID
	Concept     string
	Category    string
	AmountCents int64
}

// ListInput filters the purchase and expense listings.
type ListInput struct {
	BusinessID uuid.UUID
	Limit      int
	Offset     int
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type businessReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Business, error)
}

type productReader interface {
	GetByID(ctx context.Context, businessID, productID uuid.UUID) (*models.Product, error)
}

type branchReader interface {
	GetByID(ctx context.Context, businessID, branchID uuid.UUID) (*models.Branch, error)
}

type auditRecorder interface {
	Record(ctx context.Context, event audit.Event)
}

type service struct {
	tx         txRunner
	repo       Repository
	stocks     inventory.StockRepository
	businesses businessReader
	products   productReader
	branches   branchReader
	auditor    auditRecorder
}

// NewService wires the finance service.
func NewService(tx txRunner, repo Repository, stocks inventory.StockRepository, businesses businessReader, products productReader, branches branchReader, auditor auditRecorder) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner is required")
	}
	if repo == nil {
		return nil, fmt.Errorf("finance repository is required")
	}
	if stocks == nil {
		return nil, fmt.Errorf("stock repository is required")
	}
	if businesses == nil {
		return nil, fmt.Errorf("business reader is required")
	}
	if products == nil {
		return nil, fmt.Errorf("product reader is required")
	}
	if branches == nil {
		return nil, fmt.Errorf("branch reader is required")
	}
	if auditor == nil {
		return nil, fmt.Errorf("audit recorder is required")
	}
	return &service{
		tx:         tx,
		repo:       repo,
		stocks:     stocks,
		businesses: businesses,
		products:   products,
		branches:   branches,
		auditor:    auditor,
	}, nil
}

func (s *service) CreateSupplier(ctx context.Context, actor identity.Actor, input CreateSupplierInput) (*models.Supplier, error) {
	if err := accesscontrol.Authorize(actor, accesscontrol.ActionManageBusiness, accesscontrol.Resource{BusinessID: input.BusinessID}); err != nil {
		return nil, err
	}
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier name is required")
	}
	if _, err := s.businesses.GetByID(ctx, input.BusinessID); err != nil {
		return nil, err
	}

	supplier := &models.Supplier{
		BusinessID: input.BusinessID,
		Name:       input.Name,
		Contact:    input.Contact,
	}
	if err := s.repo.CreateSupplier(ctx, supplier); err != nil {
		return nil, err
	}
	return supplier, nil
}

func (s *service) ListSuppliers(ctx context.Context, actor identity.Actor, businessID uuid.UUID) ([]models.Supplier, error) {
	if err := accesscontrol.Authorize(actor, accesscontrol.ActionViewReports, accesscontrol.Resource{BusinessID: businessID}); err != nil {
		return nil, err
	}
	return s.repo.ListSuppliers(ctx, businessID)
}

// RecordPurchase books goods received from a supplier and credits the
// stock pool the purchase names, both inside one transaction.
func (s *service) RecordPurchase(ctx context.Context, actor identity.Actor, input PurchaseInput) (*models.Purchase, error) {
	if err := accesscontrol.Authorize(actor, accesscontrol.ActionReceiveStock, accesscontrol.Resource{BusinessID: input.BusinessID}); err != nil {
		return nil, err
	}
	if input.Qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "purchase quantity must be positive")
	}
	if input.UnitCostCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit cost cannot be negative")
	}

	business, err := s.businesses.GetByID(ctx, input.BusinessID)
	if err != nil {
		return nil, err
	}

	branchID := input.BranchID
	if business.InventoryMode == enums.InventoryModeShared {
		branchID = nil
	} else {
		if branchID == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "branch is required under per-branch inventory")
		}
		if _, err := s.branches.GetByID(ctx, input.BusinessID, *branchID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "branch not found")
			}
			return nil, err
		}
	}

	supplier, err := s.repo.GetSupplier(ctx, input.BusinessID, input.SupplierID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
		}
		return nil, err
	}
	product, err := s.products.GetByID(ctx, input.BusinessID, input.ProductID)
	if err != nil {
		return nil, err
	}

	purchase := &models.Purchase{
		BusinessID:    input.BusinessID,
		SupplierID:    supplier.ID,
		ProductID:     product.ID,
		BranchID:      branchID,
		Qty:           input.Qty,
		UnitCostCents: input.UnitCostCents,
		TotalCents:    input.UnitCostCents * int64(input.Qty),
	}

	var resulting int
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		stocks := s.stocks.WithTx(tx)
		var err error
		if business.InventoryMode == enums.InventoryModeShared {
			resulting, err = stocks.AddShared(ctx, input.BusinessID, product.ID, input.Qty)
		} else {
			resulting, err = stocks.AddBranch(ctx, product.ID, *branchID, input.Qty)
		}
		if err != nil {
			return err
		}
		return s.repo.WithTx(tx).CreatePurchase(ctx, purchase)
	})
	if err != nil {
		return nil, err
	}

	delta := input.Qty
	s.auditor.Record(ctx, audit.Event{
		BusinessID:   input.BusinessID,
		BranchID:     branchID,
		Action:       enums.AuditActionPurchase,
		ActorKind:    actor.Kind,
		ActorRef:     actor.Ref(),
		ProductID:    &product.ID,
		Delta:        &delta,
		ResultingQty: &resulting,
		Details:      fmt.Sprintf("purchase %s from %s: %d units at %d cents", purchase.ID, supplier.Name, input.Qty, input.UnitCostCents),
	})

	return purchase, nil
}

func (s *service) ListPurchases(ctx context.Context, actor identity.Actor, input ListInput) ([]models.Purchase, error) {
	if err := accesscontrol.Authorize(actor, accesscontrol.ActionViewReports, accesscontrol.Resource{BusinessID: input.BusinessID}); err != nil {
		return nil, err
	}
	return s.repo.ListPurchases(ctx, input.BusinessID, input.Limit, input.Offset)
}

func (s *service) RecordExpense(ctx context.Context, actor identity.Actor, input ExpenseInput) (*models.Expense, error) {
	if err := accesscontrol.Authorize(actor, accesscontrol.ActionManageBusiness, accesscontrol.Resource{BusinessID: input.BusinessID}); err != nil {
		return nil, err
	}
	if input.Concept == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "expense concept is required")
	}
	if input.AmountCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "expense amount cannot be negative")
	}
	if _, err := s.businesses.GetByID(ctx, input.BusinessID); err != nil {
		return nil, err
	}

	category := input.Category
	if category == "" {
		category = DefaultExpenseCategory
	}
	expense := &models.Expense{
		BusinessID:  input.BusinessID,
		Concept:     input.Concept,
		Category:    category,
		AmountCents: input.AmountCents,
	}
	if err := s.repo.CreateExpense(ctx, expense); err != nil {
		return nil, err
	}
	return expense, nil
}

func (s *service) ListExpenses(ctx context.Context, actor identity.Actor, input ListInput) ([]models.Expense, error) {
	if err := accesscontrol.Authorize(actor, accesscontrol.ActionViewReports, accesscontrol.Resource{BusinessID: input.BusinessID}); err != nil {
		return nil, err
	}
	return s.repo.ListExpenses(ctx, input.BusinessID, input.Limit, input.Offset)
}
