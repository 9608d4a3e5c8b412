package business

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/marcovaldez/tiendapos-backend/internal/accesscontrol"
	"github.com/marcovaldez/tiendapos-backend/internal/audit"
	"github.com/marcovaldez/tiendapos-backend/internal/identity"
	"github.com/marcovaldez/tiendapos-backend/internal/topology"
	"github.com/marcovaldez/tiendapos-backend/pkg/config"
	"github.com/marcovaldez/tiendapos-backend/pkg/db/models"
	"github.com/marcovaldez/tiendapos-backend/pkg/enums"
	pkgerrors "github.com/marcovaldez/tiendapos-backend/pkg/errors"
)

// Service manages the tenant record, its branches, and the inventory
// topology setting.
type Service interface {
	Onboard(ctx context.Context, ownerUserID uuid.UUID, input OnboardInput) (*models.Business, error)
	GetBusiness(ctx context.Context, actor identity.Actor, businessID uuid.UUID) (*models.Business, error)
	UpdateProfile(ctx context.Context, actor identity.Actor, businessID uuid.UUID, input UpdateProfileInput) (*models.Business, error)
	ChangeInventoryMode(ctx context.Context, actor identity.Actor, businessID uuid.UUID, mode enums.InventoryMode) (*models.Business, error)

	CreateBranch(ctx context.Context, actor identity.Actor, businessID uuid.UUID, input BranchInput) (*models.Branch, error)
	UpdateBranch(ctx context.Context, actor identity.Actor, businessID, branchID uuid.UUID, input BranchInput) (*models.Branch, error)
	DeleteBranch(ctx context.Context, actor identity.Actor, businessID, branchID uuid.UUID) error
	ListBranches(ctx context.Context, actor identity.Actor, businessID uuid.UUID) ([]models.Branch, error)
}

// OnboardInput creates the single business an owner is allowed to hold.
type OnboardInput struct {
	Name           string
	Currency       enums.Currency
	TaxID          *string
	Address        *string
	Phone          *string
	ContactEmail   *string
	Website        *string
	PaymentMethods []string
}

// UpdateProfileInput carries partial profile changes. Nil fields are
// left untouched; PaymentMethods replaces the whole set when non-nil.
type UpdateProfileInput struct {
	Name           *string
	Currency       *enums.Currency
	TaxID          *string
	Address        *string
	Phone          *string
	ContactEmail   *string
	Website        *string
	PaymentMethods []string
}

// BranchInput creates or renames a branch.
type BranchInput struct {
	Name    string
	Address *string
	Phone   *string
}

type auditRecorder interface {
	Record(ctx context.Context, event audit.Event)
}

type service struct {
	repo         Repository
	branches     BranchRepository
	auditor      auditRecorder
	cooldownDays int
	now          func() time.Time
}

// NewService wires the business service.
func NewService(repo Repository, branches BranchRepository, auditor auditRecorder, cfg config.InventoryConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("business repository is required")
	}
	if branches == nil {
		return nil, fmt.Errorf("branch repository is required")
	}
	if auditor == nil {
		return nil, fmt.Errorf("audit recorder is required")
	}
	return &service{
		repo:         repo,
		branches:     branches,
		auditor:      auditor,
		cooldownDays: cfg.ModeChangeCooldownDays,
		now:          time.Now,
	}, nil
}

// Onboard creates the owner's business. Each owner holds exactly one.
func (s *service) Onboard(ctx context.Context, ownerUserID uuid.UUID, input OnboardInput) (*models.Business, error) {
	if ownerUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner is required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "business name is required")
	}
	currency := input.Currency
	if currency == "" {
		currency = enums.CurrencyUSD
	}
	if !currency.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid currency")
	}
	methods, err := normalizePaymentMethods(input.PaymentMethods)
	if err != nil {
		return nil, err
	}

	if existing, err := s.repo.GetByOwner(ctx, ownerUserID); err == nil && existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "owner already has a business")
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	business := &models.Business{
		Name:           name,
		TaxID:          input.TaxID,
		Address:        input.Address,
		Phone:          input.Phone,
		ContactEmail:   input.ContactEmail,
		Website:        input.Website,
		Currency:       currency,
		InventoryMode:  enums.InventoryModeShared,
		PaymentMethods: methods,
		OwnerUserID:    ownerUserID,
	}
	if err := s.repo.Create(ctx, business); err != nil {
		return nil, err
	}
	return business, nil
}

func (s *service) GetBusiness(ctx context.Context, actor identity.Actor, businessID uuid.UUID) (*models.Business, error) {
	if !actor.IsAuthenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if actor.BusinessID == nil || *actor.BusinessID != businessID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "resource belongs to another business")
	}
	business, err := s.repo.GetByID(ctx, businessID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "business not found")
		}
		return nil, err
	}
	return business, nil
}

func (s *service) UpdateProfile(ctx context.Context, actor identity.Actor, businessID uuid.UUID, input UpdateProfileInput) (*models.Business, error) {
	if err := accesscontrol.Authorize(actor, accesscontrol.ActionManageBusiness, accesscontrol.Resource{BusinessID: businessID}); err != nil {
		return nil, err
	}
	business, err := s.repo.GetByID(ctx, businessID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "business not found")
		}
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "business name cannot be empty")
		}
		business.Name = name
	}
	if input.Currency != nil {
		if !input.Currency.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid currency")
		}
		business.Currency = *input.Currency
	}
	if input.TaxID != nil {
		business.TaxID = input.TaxID
	}
	if input.Address != nil {
		business.Address = input.Address
	}
	if input.Phone != nil {
		business.Phone = input.Phone
	}
	if input.ContactEmail != nil {
		business.ContactEmail = input.ContactEmail
	}
	if input.Website != nil {
		business.Website = input.Website
	}
	if input.PaymentMethods != nil {
		methods, err := normalizePaymentMethods(input.PaymentMethods)
		if err != nil {
			return nil, err
		}
		business.PaymentMethods = methods
	}

	if err := s.repo.Update(ctx, business); err != nil {
		return nil, err
	}
	return business, nil
}

// ChangeInventoryMode switches the stock topology. The switch is locked
// for the configured cooldown after every effective change; a no-op save
// of the current mode does not consume the window.
func (s *service) ChangeInventoryMode(ctx context.Context, actor identity.Actor, businessID uuid.UUID, mode enums.InventoryMode) (*models.Business, error) {
	if err := accesscontrol.Authorize(actor, accesscontrol.ActionManageBusiness, accesscontrol.Resource{BusinessID: businessID}); err != nil {
		return nil, err
	}
	if !mode.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid inventory mode")
	}

	business, err := s.repo.GetByID(ctx, businessID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "business not found")
		}
		return nil, err
	}
	if business.InventoryMode == mode {
		return business, nil
	}

	now := s.now()
	decision := topology.CanChangeMode(business, now, s.cooldownDays)
	if !decision.Allowed {
		return nil, pkgerrors.New(pkgerrors.CodeCooldownActive, "inventory mode was changed recently").
			WithDetails(map[string]any{"remaining_days": decision.RemainingDays})
	}

	previous := business.InventoryMode
	business.InventoryMode = mode
	business.InventoryModeChangedAt = &now
	if err := s.repo.Update(ctx, business); err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, audit.Event{
		BusinessID: businessID,
		Action:     enums.AuditActionModeChange,
		ActorKind:  actor.Kind,
		ActorRef:   actor.Ref(),
		Details:    fmt.Sprintf("inventory mode %s -> %s", previous, mode),
	})
	return business, nil
}

func (s *service) CreateBranch(ctx context.Context, actor identity.Actor, businessID uuid.UUID, input BranchInput) (*models.Branch, error) {
	if err := accesscontrol.Authorize(actor, accesscontrol.ActionManageBusiness, accesscontrol.Resource{BusinessID: businessID}); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "branch name is required")
	}
	if _, err := s.repo.GetByID(ctx, businessID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "business not found")
		}
		return nil, err
	}

	branch := &models.Branch{
		BusinessID: businessID,
		Name:       name,
		Address:    input.Address,
		Phone:      input.Phone,
	}
	if err := s.branches.Create(ctx, branch); err != nil {
		return nil, err
	}
	return branch, nil
}

func (s *service) UpdateBranch(ctx context.Context, actor identity.Actor, businessID, branchID uuid.UUID, input BranchInput) (*models.Branch, error) {
	if err := accesscontrol.Authorize(actor, accesscontrol.ActionManageBusiness, accesscontrol.Resource{BusinessID: businessID}); err != nil {
		return nil, err
	}
	branch, err := s.branches.GetByID(ctx, businessID, branchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "branch not found")
		}
		return nil, err
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		branch.Name = name
	}
	if input.Address != nil {
		branch.Address = input.Address
	}
	if input.Phone != nil {
		branch.Phone = input.Phone
	}
	if err := s.branches.Update(ctx, branch); err != nil {
		return nil, err
	}
	return branch, nil
}

func (s *service) DeleteBranch(ctx context.Context, actor identity.Actor, businessID, branchID uuid.UUID) error {
	if err := accesscontrol.Authorize(actor, accesscontrol.ActionManageBusiness, accesscontrol.Resource{BusinessID: businessID}); err != nil {
		return err
	}
	if _, err := s.branches.GetByID(ctx, businessID, branchID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "branch not found")
		}
		return err
	}
	return s.branches.Delete(ctx, businessID, branchID)
}

func (s *service) ListBranches(ctx context.Context, actor identity.Actor, businessID uuid.UUID) ([]models.Branch, error) {
	if !actor.IsAuthenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if actor.BusinessID == nil || *actor.BusinessID != businessID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "resource belongs to another business")
	}
	return s.branches.ListByBusiness(ctx, businessID)
}

func normalizePaymentMethods(raw []string) (pq.StringArray, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	seen := make(map[string]bool, len(raw))
	methods := make(pq.StringArray, 0, len(raw))
	for _, value := range raw {
		method, err := enums.ParsePaymentMethod(strings.TrimSpace(strings.ToLower(value)))
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method").
				WithDetails(map[string]any{"payment_method": value})
		}
		if seen[method.String()] {
			continue
		}
		seen[method.String()] = true
		methods = append(methods, method.String())
	}
	return methods, nil
}
