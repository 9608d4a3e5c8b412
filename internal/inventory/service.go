package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marcovaldez/tiendapos-backend/internal/accesscontrol"
	"github.com/marcovaldez/tiendapos-backend/internal/audit"
	"github.com/marcovaldez/tiendapos-backend/internal/identity"
	"github.com/marcovaldez/tiendapos-backend/internal/topology"
	"github.com/marcovaldez/tiendapos-backend/pkg/db/models"
	"github.com/marcovaldez/tiendapos-backend/pkg/enums"
	pkgerrors "github.com/marcovaldez/tiendapos-backend/pkg/errors"
)

// Service exposes topology-aware stock operations.
type Service interface {
	AdjustStock(ctx context.Context, actor identity.Actor, input AdjustStockInput) (*StockLevel, error)
	ReceiveStock(ctx context.Context, actor identity.Actor, input ReceiveStockInput) (*StockLevel, error)
	GetLevel(ctx context.Context, actor identity.Actor, businessID, productID uuid.UUID, branchID *uuid.UUID) (*StockLevel, error)
	ListLowStock(ctx context.Context, actor identity.Actor, input LowStockInput) (*LowStockReport, error)
}

// AdjustStockInput sets an absolute stock value.
type AdjustStockInput struct {
	BusinessID uuid.UUID
	ProductID  uuid.UUID
	BranchID   *uuid.UUID
	NewQty     int
	Reason     string
}

// ReceiveStockInput records incoming goods as a positive delta.
type ReceiveStockInput struct {
	BusinessID uuid.UUID
	ProductID  uuid.UUID
	BranchID   *uuid.UUID
	Qty        int
	Reason     string
}

// LowStockInput filters the low-stock report.
type LowStockInput struct {
	BusinessID uuid.UUID
	BranchID   *uuid.UUID
	Threshold  int
}

// StockLevel is the effective quantity for a product under the business's
// current inventory mode.
type StockLevel struct {
	ProductID uuid.UUID           `json:"product_id"`
	BranchID  *uuid.UUID          `json:"branch_id,omitempty"`
	Mode      enums.InventoryMode `json:"mode"`
	Qty       int                 `json:"qty"`
}

// LowStockReport lists products at or below a threshold.
type LowStockReport struct {
	Mode      enums.InventoryMode `json:"mode"`
	Threshold int                 `json:"threshold"`
	Levels    []StockLevel        `json:"levels"`
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
	stocks     StockRepository
	businesses businessReader
	products   productReader
	branches   branchReader
	auditor    auditRecorder
}

// NewService wires the inventory service.
func NewService(stocks StockRepository, businesses businessReader, products productReader, branches branchReader, auditor auditRecorder) (Service, error) {
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
	return &service{stocks: stocks, businesses: businesses, products: products, branches: branches, auditor: auditor}, nil
}

func (s *service) AdjustStock(ctx context.Context, actor identity.Actor, input AdjustStockInput) (*StockLevel, error) {
	if err := accesscontrol.Authorize(actor, accesscontrol.ActionAdjustStock, accesscontrol.Resource{BusinessID: input.BusinessID}); err != nil {
		return nil, err
	}
	if input.NewQty < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}

	business, branchID, err := s.resolveScope(ctx, input.BusinessID, input.BranchID)
	if err != nil {
		return nil, err
	}

	product, err := s.products.GetByID(ctx, input.BusinessID, input.ProductID)
	if err != nil {
		return nil, err
	}

	var before int
	if business.InventoryMode == enums.InventoryModeShared {
		before = product.SharedQty
		if err := s.stocks.SetShared(ctx, input.BusinessID, input.ProductID, input.NewQty); err != nil {
			return nil, err
		}
	} else {
		stocks, err := s.stocks.GetBranchStocks(ctx, input.ProductID)
		if err != nil {
			return nil, err
		}
		before = topology.ResolveStock(product, stocks, branchID, business.InventoryMode)
		if err := s.stocks.SetBranch(ctx, input.ProductID, *branchID, input.NewQty); err != nil {
			return nil, err
		}
	}

	delta := input.NewQty - before
	resulting := input.NewQty
	s.auditor.Record(ctx, audit.Event{
		BusinessID:   input.BusinessID,
		BranchID:     branchID,
		Action:       enums.AuditActionAdjustment,
		ActorKind:    actor.Kind,
		ActorRef:     actor.Ref(),
		ProductID:    &input.ProductID,
		Delta:        &delta,
		ResultingQty: &resulting,
		Details:      input.Reason,
	})

	return &StockLevel{
		ProductID: input.ProductID,
		BranchID:  branchID,
		Mode:      business.InventoryMode,
		Qty:       input.NewQty,
	}, nil
}

func (s *service) ReceiveStock(ctx context.Context, actor identity.Actor, input ReceiveStockInput) (*StockLevel, error) {
	if err := accesscontrol.Authorize(actor, accesscontrol.ActionReceiveStock, accesscontrol.Resource{BusinessID: input.BusinessID}); err != nil {
		return nil, err
	}
	if input.Qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "received quantity must be positive")
	}

	business, branchID, err := s.resolveScope(ctx, input.BusinessID, input.BranchID)
	if err != nil {
		return nil, err
	}

	var resulting int
	if business.InventoryMode == enums.InventoryModeShared {
		resulting, err = s.stocks.AddShared(ctx, input.BusinessID, input.ProductID, input.Qty)
	} else {
		if _, lookupErr := s.products.GetByID(ctx, input.BusinessID, input.ProductID); lookupErr != nil {
			return nil, lookupErr
		}
		resulting, err = s.stocks.AddBranch(ctx, input.ProductID, *branchID, input.Qty)
	}
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
		ProductID:    &input.ProductID,
		Delta:        &delta,
		ResultingQty: &resulting,
		Details:      input.Reason,
	})

	return &StockLevel{
		ProductID: input.ProductID,
		BranchID:  branchID,
		Mode:      business.InventoryMode,
		Qty:       resulting,
	}, nil
}

func (s *service) GetLevel(ctx context.Context, actor identity.Actor, businessID, productID uuid.UUID, branchID *uuid.UUID) (*StockLevel, error) {
	if err := accesscontrol.Authorize(actor, accesscontrol.ActionViewStock, accesscontrol.Resource{BusinessID: businessID}); err != nil {
		return nil, err
	}

	business, err := s.businesses.GetByID(ctx, businessID)
	if err != nil {
		return nil, err
	}
	product, err := s.products.GetByID(ctx, businessID, productID)
	if err != nil {
		return nil, err
	}

	var stocks []models.BranchStock
	if business.InventoryMode == enums.InventoryModePerBranch {
		if stocks, err = s.stocks.GetBranchStocks(ctx, productID); err != nil {
			return nil, err
		}
	}

	return &StockLevel{
		ProductID: productID,
		BranchID:  branchID,
		Mode:      business.InventoryMode,
		Qty:       topology.ResolveStock(product, stocks, branchID, business.InventoryMode),
	}, nil
}

func (s *service) ListLowStock(ctx context.Context, actor identity.Actor, input LowStockInput) (*LowStockReport, error) {
	if err := accesscontrol.Authorize(actor, accesscontrol.ActionViewReports, accesscontrol.Resource{BusinessID: input.BusinessID}); err != nil {
		return nil, err
	}
	if input.Threshold < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "threshold cannot be negative")
	}

	business, err := s.businesses.GetByID(ctx, input.BusinessID)
	if err != nil {
		return nil, err
	}

	report := &LowStockReport{Mode: business.InventoryMode, Threshold: input.Threshold, Levels: []StockLevel{}}

	if business.InventoryMode == enums.InventoryModeShared {
		products, err := s.stocks.ListLowShared(ctx, input.BusinessID, input.Threshold)
		if err != nil {
			return nil, err
		}
		for _, product := range products {
			report.Levels = append(report.Levels, StockLevel{
				ProductID: product.ID,
				Mode:      business.InventoryMode,
				Qty:       product.SharedQty,
			})
		}
		return report, nil
	}

	if input.BranchID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "branch is required under per-branch inventory")
	}
	stocks, err := s.stocks.ListLowBranch(ctx, input.BusinessID, *input.BranchID, input.Threshold)
	if err != nil {
		return nil, err
	}
	for _, stock := range stocks {
		branchID := stock.BranchID
		report.Levels = append(report.Levels, StockLevel{
			ProductID: stock.ProductID,
			BranchID:  &branchID,
			Mode:      business.InventoryMode,
			Qty:       stock.Qty,
		})
	}
	return report, nil
}

// resolveScope loads the business and validates the branch argument against
// the current inventory mode. Shared mode drops the branch; per-branch mode
// requires one that belongs to the business, so a mutation can never create
// or touch a stock row under another tenant's branch.
func (s *service) resolveScope(ctx context.Context, businessID uuid.UUID, branchID *uuid.UUID) (*models.Business, *uuid.UUID, error) {
	business, err := s.businesses.GetByID(ctx, businessID)
	if err != nil {
		return nil, nil, err
	}
	if business.InventoryMode == enums.InventoryModeShared {
		return business, nil, nil
	}
	if branchID == nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "branch is required under per-branch inventory")
	}
	if _, err := s.branches.GetByID(ctx, businessID, *branchID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "branch not found")
		}
		return nil, nil, err
	}
	return business, branchID, nil
}
