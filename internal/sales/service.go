package sales

import (
	"context"
	"errors"
	"fmt"
	"strings"

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

// Service is the process_sale entry point plus sale reads.
type Service interface {
	ProcessSale(ctx context.Context, actor identity.Actor, input ProcessSaleInput) (*models.Sale, error)
	GetSale(ctx context.Context, actor identity.Actor, businessID, saleID uuid.UUID) (*models.Sale, error)
	ListSales(ctx context.Context, actor identity.Actor, input ListSalesInput) ([]models.Sale, error)
}

// SaleLine is one requested line of a sale.
type SaleLine struct {
	ProductID uuid.UUID
	Qty       int
}

// ProcessSaleInput carries a full sale request.
type ProcessSaleInput struct {
	BusinessID    uuid.UUID
	BranchID      *uuid.UUID
	PaymentMethod enums.PaymentMethod
	Lines         []SaleLine
}

// ListSalesInput filters the transaction listing.
type ListSalesInput struct {
	BusinessID uuid.UUID
	BranchID   *uuid.UUID
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

// NewService wires the sales service.
func NewService(tx txRunner, repo Repository, stocks inventory.StockRepository, businesses businessReader, products productReader, branches branchReader, auditor auditRecorder) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner is required")
	}
	if repo == nil {
		return nil, fmt.Errorf("sales repository is required")
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
	return &service{tx: tx, repo: repo, stocks: stocks, businesses: businesses, products: products, branches: branches, auditor: auditor}, nil
}

// ProcessSale decrements every line, then writes the sale and its items,
// all inside one transaction. Any rejected line rolls back the whole sale.
func (s *service) ProcessSale(ctx context.Context, actor identity.Actor, input ProcessSaleInput) (*models.Sale, error) {
	if err := accesscontrol.Authorize(actor, accesscontrol.ActionSell, accesscontrol.Resource{BusinessID: input.BusinessID}); err != nil {
		return nil, err
	}
	if len(input.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a sale needs at least one line")
	}
	for _, line := range input.Lines {
		if line.Qty <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "line quantity must be positive").
				WithDetails(map[string]any{"product_id": line.ProductID.String()})
		}
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}

	business, err := s.businesses.GetByID(ctx, input.BusinessID)
	if err != nil {
		return nil, err
	}
	if len(business.PaymentMethods) > 0 && !paymentEnabled(business.PaymentMethods, input.PaymentMethod) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment method not enabled for this business").
			WithDetails(map[string]any{"payment_method": input.PaymentMethod.String()})
	}

	branchID := input.BranchID
	if business.InventoryMode == enums.InventoryModeShared {
		branchID = nil
	} else {
		// An employee sells from the branch they are assigned to; the
		// request body cannot redirect the decrement to another pool.
		if actor.Kind == enums.ActorKindEmployee && actor.BranchID != nil {
			if branchID != nil && *branchID != *actor.BranchID {
				return nil, pkgerrors.New(pkgerrors.CodeForbidden, "sales are limited to the seller's branch")
			}
			branchID = actor.BranchID
		}
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

	// Prices are captured at sale time, before the stock transaction.
	items := make([]models.SaleItem, 0, len(input.Lines))
	var totalCents int64
	for _, line := range input.Lines {
		product, err := s.products.GetByID(ctx, input.BusinessID, line.ProductID)
		if err != nil {
			return nil, err
		}
		items = append(items, models.SaleItem{
			ProductID:      product.ID,
			Qty:            line.Qty,
			UnitPriceCents: product.UnitPriceCents,
		})
		totalCents += product.UnitPriceCents * int64(line.Qty)
	}

	sale := &models.Sale{
		BusinessID:    input.BusinessID,
		BranchID:      branchID,
		TotalCents:    totalCents,
		PaymentMethod: input.PaymentMethod,
		Items:         items,
	}
	switch actor.Kind {
	case enums.ActorKindOwner:
		sale.SellerOwnerID = actor.OwnerID
	case enums.ActorKindEmployee:
		sale.SellerEmployeeID = actor.EmployeeID
	default:
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "seller identity required")
	}

	resulting := make([]int, len(input.Lines))
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		stocks := s.stocks.WithTx(tx)
		for i, line := range input.Lines {
			var qty int
			var err error
			if business.InventoryMode == enums.InventoryModeShared {
				qty, err = stocks.AddShared(ctx, input.BusinessID, line.ProductID, -line.Qty)
			} else {
				qty, err = stocks.AddBranch(ctx, line.ProductID, *branchID, -line.Qty)
			}
			if err != nil {
				return err
			}
			resulting[i] = qty
		}
		return s.repo.WithTx(tx).Create(ctx, sale)
	})
	if err != nil {
		return nil, err
	}

	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = fmt.Sprintf("%s x%d -> %d left", item.ProductID, item.Qty, resulting[i])
	}
	s.auditor.Record(ctx, audit.Event{
		BusinessID: input.BusinessID,
		BranchID:   branchID,
		Action:     enums.AuditActionSale,
		ActorKind:  actor.Kind,
		ActorRef:   actor.Ref(),
		Details:    fmt.Sprintf("sale %s: total %d cents; %s", sale.ID, totalCents, strings.Join(lines, ", ")),
	})

	return sale, nil
}

func (s *service) GetSale(ctx context.Context, actor identity.Actor, businessID, saleID uuid.UUID) (*models.Sale, error) {
	if err := accesscontrol.Authorize(actor, accesscontrol.ActionViewTransactions, accesscontrol.Resource{BusinessID: businessID}); err != nil {
		return nil, err
	}
	sale, err := s.repo.GetByID(ctx, businessID, saleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
		}
		return nil, err
	}
	return sale, nil
}

func (s *service) ListSales(ctx context.Context, actor identity.Actor, input ListSalesInput) ([]models.Sale, error) {
	if err := accesscontrol.Authorize(actor, accesscontrol.ActionViewTransactions, accesscontrol.Resource{BusinessID: input.BusinessID}); err != nil {
		return nil, err
	}
	return s.repo.ListByBusiness(ctx, input.BusinessID, input.BranchID, input.Limit, input.Offset)
}

func paymentEnabled(enabled []string, method enums.PaymentMethod) bool {
	for _, candidate := range enabled {
		if candidate == method.String() {
			return true
		}
	}
	return false
}
