package products

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

// Service manages the product catalog.
type Service interface {
	CreateProduct(ctx context.Context, actor identity.Actor, input CreateProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, actor identity.Actor, input UpdateProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, actor identity.Actor, businessID, productID uuid.UUID) error
	GetProduct(ctx context.Context, actor identity.Actor, businessID, productID uuid.UUID) (*models.Product, error)
	ListProducts(ctx context.Context, actor identity.Actor, businessID uuid.UUID, filter ListFilter) ([]models.Product, error)
}

// CreateProductInput carries a new catalog entry. PerBranchStocks seeds
// the per-branch pools and only applies under per-branch inventory mode;
// SharedQty seeds the shared pool otherwise.
type CreateProductInput struct {
	BusinessID      uuid.UUID
	Name            string
	Category        *string
	Barcode         *string
	UnitPriceCents  int64
	SharedQty       int
	PerBranchStocks map[uuid.UUID]int
}

// UpdateProductInput carries partial catalog changes. Nil fields stay
// untouched; stock counts are not updated here, that is an inventory
// adjustment.
type UpdateProductInput struct {
	BusinessID     uuid.UUID
	ProductID      uuid.UUID
	Name           *string
	Category       *string
	Barcode        *string
	UnitPriceCents *int64
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type businessReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Business, error)
}

type auditRecorder interface {
	Record(ctx context.Context, event audit.Event)
}

type service struct {
	tx         txRunner
	repo       Repository
	stocks     inventory.StockRepository
	businesses businessReader
	auditor    auditRecorder
}

// NewService wires the product service.
func NewService(tx txRunner, repo Repository, stocks inventory.StockRepository, businesses businessReader, auditor auditRecorder) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner is required")
	}
	if repo == nil {
		return nil, fmt.Errorf("product repository is required")
	}
	if stocks == nil {
		return nil, fmt.Errorf("stock repository is required")
	}
	if businesses == nil {
		return nil, fmt.Errorf("business reader is required")
	}
	if auditor == nil {
		return nil, fmt.Errorf("audit recorder is required")
	}
	return &service{tx: tx, repo: repo, stocks: stocks, businesses: businesses, auditor: auditor}, nil
}

func (s *service) CreateProduct(ctx context.Context, actor identity.Actor, input CreateProductInput) (*models.Product, error) {
	if err := accesscontrol.Authorize(actor, accesscontrol.ActionManageProducts, accesscontrol.Resource{BusinessID: input.BusinessID}); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if input.UnitPriceCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative")
	}
	if input.SharedQty < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "initial stock cannot be negative")
	}
	for branchID, qty := range input.PerBranchStocks {
		if branchID == uuid.Nil || qty < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid per-branch stock seed")
		}
	}

	business, err := s.businesses.GetByID(ctx, input.BusinessID)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		BusinessID:     input.BusinessID,
		Name:           name,
		Category:       input.Category,
		Barcode:        input.Barcode,
		UnitPriceCents: input.UnitPriceCents,
	}
	if business.InventoryMode == enums.InventoryModeShared {
		product.SharedQty = input.SharedQty
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, product); err != nil {
			return err
		}
		if business.InventoryMode == enums.InventoryModePerBranch {
			stocks := s.stocks.WithTx(tx)
			for branchID, qty := range input.PerBranchStocks {
				if err := stocks.SetBranch(ctx, product.ID, branchID, qty); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, audit.Event{
		BusinessID: input.BusinessID,
		Action:     enums.AuditActionProductChange,
		ActorKind:  actor.Kind,
		ActorRef:   actor.Ref(),
		ProductID:  &product.ID,
		Details:    fmt.Sprintf("created product %q", product.Name),
	})
	return product, nil
}

func (s *service) UpdateProduct(ctx context.Context, actor identity.Actor, input UpdateProductInput) (*models.Product, error) {
	if err := accesscontrol.Authorize(actor, accesscontrol.ActionManageProducts, accesscontrol.Resource{BusinessID: input.BusinessID}); err != nil {
		return nil, err
	}
	product, err := s.repo.GetByID(ctx, input.BusinessID, input.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name cannot be empty")
		}
		product.Name = name
	}
	if input.Category != nil {
		product.Category = input.Category
	}
	if input.Barcode != nil {
		product.Barcode = input.Barcode
	}
	if input.UnitPriceCents != nil {
		if *input.UnitPriceCents < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative")
		}
		product.UnitPriceCents = *input.UnitPriceCents
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, audit.Event{
		BusinessID: input.BusinessID,
		Action:     enums.AuditActionProductChange,
		ActorKind:  actor.Kind,
		ActorRef:   actor.Ref(),
		ProductID:  &product.ID,
		Details:    fmt.Sprintf("updated product %q", product.Name),
	})
	return product, nil
}

// DeleteProduct removes the catalog entry and its branch pools together.
func (s *service) DeleteProduct(ctx context.Context, actor identity.Actor, businessID, productID uuid.UUID) error {
	if err := accesscontrol.Authorize(actor, accesscontrol.ActionManageProducts, accesscontrol.Resource{BusinessID: businessID}); err != nil {
		return err
	}
	product, err := s.repo.GetByID(ctx, businessID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.WithContext(ctx).
			Where("product_id = ?", productID).
			Delete(&models.BranchStock{}).Error; err != nil {
			return err
		}
		return s.repo.WithTx(tx).Delete(ctx, businessID, productID)
	})
	if err != nil {
		return err
	}

	s.auditor.Record(ctx, audit.Event{
		BusinessID: businessID,
		Action:     enums.AuditActionProductChange,
		ActorKind:  actor.Kind,
		ActorRef:   actor.Ref(),
		ProductID:  &productID,
		Details:    fmt.Sprintf("deleted product %q", product.Name),
	})
	return nil
}

func (s *service) GetProduct(ctx context.Context, actor identity.Actor, businessID, productID uuid.UUID) (*models.Product, error) {
	if err := accesscontrol.Authorize(actor, accesscontrol.ActionViewStock, accesscontrol.Resource{BusinessID: businessID}); err != nil {
		return nil, err
	}
	product, err := s.repo.GetByID(ctx, businessID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, err
	}
	return product, nil
}

func (s *service) ListProducts(ctx context.Context, actor identity.Actor, businessID uuid.UUID, filter ListFilter) ([]models.Product, error) {
	if err := accesscontrol.Authorize(actor, accesscontrol.ActionViewStock, accesscontrol.Resource{BusinessID: businessID}); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, businessID, filter)
}
