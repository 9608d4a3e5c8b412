package transfers

import (
	"context"
	"errors"
	"fmt"
	"time"

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

// Service moves stock between branch pools.
type Service interface {
	ExecuteTransfer(ctx context.Context, actor identity.Actor, input TransferInput) (*models.Transfer, error)
	GetTransfer(ctx context.Context, actor identity.Actor, businessID, transferID uuid.UUID) (*models.Transfer, error)
	ListTransfers(ctx context.Context, actor identity.Actor, input ListTransfersInput) ([]models.Transfer, error)
}

// TransferInput describes one requested movement.
type TransferInput struct {
	BusinessID   uuid.UUID
	ProductID    uuid.UUID
	FromBranchID uuid.UUID
	ToBranchID   uuid.UUID
	Qty          int
}

// ListTransfersInput filters the transfer listing.
type ListTransfersInput struct {
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
	now        func() time.Time
}

// NewService wires the transfer service.
func NewService(tx txRunner, repo Repository, stocks inventory.StockRepository, businesses businessReader, products productReader, branches branchReader, auditor auditRecorder) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner is required")
	}
	if repo == nil {
		return nil, fmt.Errorf("transfer repository is required")
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
		now:        time.Now,
	}, nil
}

// ExecuteTransfer debits the origin pool and credits the destination pool
// inside one transaction. A rejected debit rolls back both legs; the
// failed attempt is still persisted as a rolled_back record.
func (s *service) ExecuteTransfer(ctx context.Context, actor identity.Actor, input TransferInput) (*models.Transfer, error) {
	if err := accesscontrol.Authorize(actor, accesscontrol.ActionTransferStock, accesscontrol.Resource{BusinessID: input.BusinessID}); err != nil {
		return nil, err
	}
	actorRef := actor.Ref()
	if actorRef == nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "transfer actor identity required")
	}
	if input.Qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transfer quantity must be positive")
	}
	if input.FromBranchID == uuid.Nil || input.ToBranchID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "origin and destination branches are required")
	}
	if input.FromBranchID == input.ToBranchID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "origin and destination branches must differ")
	}

	business, err := s.businesses.GetByID(ctx, input.BusinessID)
	if err != nil {
		return nil, err
	}
	if business.InventoryMode != enums.InventoryModePerBranch {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidTopology, "transfers require per-branch inventory").
			WithDetails(map[string]any{"inventory_mode": business.InventoryMode.String()})
	}

	product, err := s.products.GetByID(ctx, input.BusinessID, input.ProductID)
	if err != nil {
		return nil, err
	}
	for _, branchID := range []uuid.UUID{input.FromBranchID, input.ToBranchID} {
		if _, err := s.branches.GetByID(ctx, input.BusinessID, branchID); err != nil {
			return nil, err
		}
	}

	transfer := &models.Transfer{
		BusinessID:   input.BusinessID,
		ProductID:    product.ID,
		FromBranchID: input.FromBranchID,
		ToBranchID:   input.ToBranchID,
		Qty:          input.Qty,
		Status:       enums.TransferStatusCommitted,
		ActorKind:    actor.Kind,
		ActorRef:     *actorRef,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		stocks := s.stocks.WithTx(tx)
		if _, err := stocks.AddBranch(ctx, product.ID, input.FromBranchID, -input.Qty); err != nil {
			return err
		}
		if _, err := stocks.AddBranch(ctx, product.ID, input.ToBranchID, input.Qty); err != nil {
			return err
		}
		committedAt := s.now()
		transfer.CommittedAt = &committedAt
		return s.repo.WithTx(tx).Create(ctx, transfer)
	})
	if err != nil {
		s.recordRollback(ctx, actor, *actorRef, input, product.ID)
		return nil, err
	}

	s.auditor.Record(ctx, audit.Event{
		BusinessID: input.BusinessID,
		BranchID:   &input.FromBranchID,
		Action:     enums.AuditActionTransfer,
		ActorKind:  actor.Kind,
		ActorRef:   actorRef,
		ProductID:  &product.ID,
		Delta:      &input.Qty,
		Details:    fmt.Sprintf("transfer %s: %d units to branch %s", transfer.ID, input.Qty, input.ToBranchID),
	})

	return transfer, nil
}

// recordRollback keeps the failed attempt inspectable. The rolled-back row
// is written outside the stock transaction and is best effort.
func (s *service) recordRollback(ctx context.Context, actor identity.Actor, actorRef uuid.UUID, input TransferInput, productID uuid.UUID) {
	failed := &models.Transfer{
		BusinessID:   input.BusinessID,
		ProductID:    productID,
		FromBranchID: input.FromBranchID,
		ToBranchID:   input.ToBranchID,
		Qty:          input.Qty,
		Status:       enums.TransferStatusRolledBack,
		ActorKind:    actor.Kind,
		ActorRef:     actorRef,
	}
	_ = s.repo.Create(ctx, failed)
}

func (s *service) GetTransfer(ctx context.Context, actor identity.Actor, businessID, transferID uuid.UUID) (*models.Transfer, error) {
	if err := accesscontrol.Authorize(actor, accesscontrol.ActionViewStock, accesscontrol.Resource{BusinessID: businessID}); err != nil {
		return nil, err
	}
	transfer, err := s.repo.GetByID(ctx, businessID, transferID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transfer not found")
		}
		return nil, err
	}
	return transfer, nil
}

func (s *service) ListTransfers(ctx context.Context, actor identity.Actor, input ListTransfersInput) ([]models.Transfer, error) {
	if err := accesscontrol.Authorize(actor, accesscontrol.ActionViewStock, accesscontrol.Resource{BusinessID: input.BusinessID}); err != nil {
		return nil, err
	}
	return s.repo.ListByBusiness(ctx, input.BusinessID, input.Limit, input.Offset)
}
