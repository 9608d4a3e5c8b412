package terminals

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marcovaldez/tiendapos-backend/internal/accesscontrol"
	"github.com/marcovaldez/tiendapos-backend/internal/audit"
	"github.com/marcovaldez/tiendapos-backend/internal/identity"
	"github.com/marcovaldez/tiendapos-backend/pkg/config"
	"github.com/marcovaldez/tiendapos-backend/pkg/db/models"
	"github.com/marcovaldez/tiendapos-backend/pkg/enums"
	pkgerrors "github.com/marcovaldez/tiendapos-backend/pkg/errors"
	"github.com/marcovaldez/tiendapos-backend/pkg/security"
)

// pairingCodeLength sizes the one-time code shown when a terminal is
// registered or its code is rotated.
const pairingCodeLength = 8

// Service covers POS device login and terminal management.
type Service interface {
	Login(ctx context.Context, identifier, code string) (*identity.TerminalSession, error)
	Logout(ctx context.Context, sessionID string) error

	RegisterTerminal(ctx context.Context, actor identity.Actor, input RegisterTerminalInput) (*models.Terminal, string, error)
	RotateCode(ctx context.Context, actor identity.Actor, businessID, terminalID uuid.UUID) (string, error)
	UpdateTerminal(ctx context.Context, actor identity.Actor, input UpdateTerminalInput) (*models.Terminal, error)
	ListTerminals(ctx context.Context, actor identity.Actor, businessID uuid.UUID) ([]models.Terminal, error)
}

// RegisterTerminalInput pairs a new POS device with a branch.
type RegisterTerminalInput struct {
	BusinessID uuid.UUID
	BranchID   uuid.UUID
	Name       string
	Identifier string
}

// UpdateTerminalInput carries partial terminal changes.
type UpdateTerminalInput struct {
	BusinessID uuid.UUID
	TerminalID uuid.UUID
	BranchID   *uuid.UUID
	Name       *string
	Active     *bool
}

type sessionStore interface {
	SaveTerminalSession(ctx context.Context, record identity.TerminalSession) error
	DeleteTerminalSession(ctx context.Context, sessionID string) error
}

type businessReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Business, error)
}

type auditRecorder interface {
	Record(ctx context.Context, event audit.Event)
}

type service struct {
	repo        Repository
	sessions    sessionStore
	businesses  businessReader
	auditor     auditRecorder
	passwordCfg config.PasswordConfig
	now         func() time.Time
}

// NewService wires the terminal service.
func NewService(repo Repository, sessions sessionStore, businesses businessReader, auditor auditRecorder, passwordCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("terminal repository is required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if businesses == nil {
		return nil, fmt.Errorf("business reader is required")
	}
	if auditor == nil {
		return nil, fmt.Errorf("audit recorder is required")
	}
	return &service{
		repo:        repo,
		sessions:    sessions,
		businesses:  businesses,
		auditor:     auditor,
		passwordCfg: passwordCfg,
		now:         time.Now,
	}, nil
}

var errInvalidPairing = pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid terminal credentials")

// Login exchanges a terminal identifier and pairing code for a session
// blob. The session carries no verified operator; selling requires an
// employee PIN shift on top.
func (s *service) Login(ctx context.Context, identifier, code string) (*identity.TerminalSession, error) {
	identifier = strings.TrimSpace(identifier)
	code = strings.TrimSpace(code)
	if identifier == "" || code == "" {
		return nil, errInvalidPairing
	}

	terminal, err := s.repo.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errInvalidPairing
		}
		return nil, err
	}
	if !terminal.Active {
		return nil, errInvalidPairing
	}
	ok, err := security.VerifySecret(code, terminal.CodeHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errInvalidPairing
	}

	business, err := s.businesses.GetByID(ctx, terminal.BusinessID)
	if err != nil {
		return nil, err
	}

	session := identity.TerminalSession{
		SessionID:   identity.NewSessionID(),
		TerminalID:  terminal.ID,
		BusinessID:  terminal.BusinessID,
		BranchID:    terminal.BranchID,
		Name:        terminal.Name,
		Business:    identity.SnapshotFromBusiness(business),
		ActivatedAt: s.now(),
	}
	if err := s.sessions.SaveTerminalSession(ctx, session); err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, audit.Event{
		BusinessID: terminal.BusinessID,
		BranchID:   &terminal.BranchID,
		Action:     enums.AuditActionLogin,
		ActorKind:  enums.ActorKindTerminal,
		ActorRef:   &terminal.ID,
		Details:    fmt.Sprintf("terminal %q logged in", terminal.Name),
	})
	return &session, nil
}

func (s *service) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.DeleteTerminalSession(ctx, sessionID)
}

// RegisterTerminal creates the device identity and returns the pairing
// code exactly once; only its hash is stored.
func (s *service) RegisterTerminal(ctx context.Context, actor identity.Actor, input RegisterTerminalInput) (*models.Terminal, string, error) {
	if err := accesscontrol.Authorize(actor, accesscontrol.ActionManageTerminals, accesscontrol.Resource{BusinessID: input.BusinessID}); err != nil {
		return nil, "", err
	}
	name := strings.TrimSpace(input.Name)
	identifier := strings.TrimSpace(input.Identifier)
	if name == "" || identifier == "" {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "name and identifier are required")
	}
	if input.BranchID == uuid.Nil {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "branch is required")
	}

	if _, err := s.repo.GetByIdentifier(ctx, identifier); err == nil {
		return nil, "", pkgerrors.New(pkgerrors.CodeConflict, "identifier already in use")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", err
	}

	code, err := security.GenerateTerminalCode(pairingCodeLength)
	if err != nil {
		return nil, "", err
	}
	codeHash, err := security.HashSecret(code, s.passwordCfg)
	if err != nil {
		return nil, "", err
	}

	terminal := &models.Terminal{
		BusinessID: input.BusinessID,
		BranchID:   input.BranchID,
		Name:       name,
		Identifier: identifier,
		CodeHash:   codeHash,
		Active:     true,
	}
	if err := s.repo.Create(ctx, terminal); err != nil {
		return nil, "", err
	}
	return terminal, code, nil
}

// RotateCode replaces the pairing code, invalidating the previous one.
func (s *service) RotateCode(ctx context.Context, actor identity.Actor, businessID, terminalID uuid.UUID) (string, error) {
	if err := accesscontrol.Authorize(actor, accesscontrol.ActionManageTerminals, accesscontrol.Resource{BusinessID: businessID}); err != nil {
		return "", err
	}
	terminal, err := s.repo.GetByID(ctx, businessID, terminalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", pkgerrors.New(pkgerrors.CodeNotFound, "terminal not found")
		}
		return "", err
	}

	code, err := security.GenerateTerminalCode(pairingCodeLength)
	if err != nil {
		return "", err
	}
	codeHash, err := security.HashSecret(code, s.passwordCfg)
	if err != nil {
		return "", err
	}
	terminal.CodeHash = codeHash
	if err := s.repo.Update(ctx, terminal); err != nil {
		return "", err
	}
	return code, nil
}

func (s *service) UpdateTerminal(ctx context.Context, actor identity.Actor, input UpdateTerminalInput) (*models.Terminal, error) {
	if err := accesscontrol.Authorize(actor, accesscontrol.ActionManageTerminals, accesscontrol.Resource{BusinessID: input.BusinessID}); err != nil {
		return nil, err
	}
	terminal, err := s.repo.GetByID(ctx, input.BusinessID, input.TerminalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "terminal not found")
		}
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		terminal.Name = name
	}
	if input.BranchID != nil {
		if *input.BranchID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "branch is required")
		}
		terminal.BranchID = *input.BranchID
	}
	if input.Active != nil {
		terminal.Active = *input.Active
	}

	if err := s.repo.Update(ctx, terminal); err != nil {
		return nil, err
	}
	return terminal, nil
}

func (s *service) ListTerminals(ctx context.Context, actor identity.Actor, businessID uuid.UUID) ([]models.Terminal, error) {
	if err := accesscontrol.Authorize(actor, accesscontrol.ActionManageTerminals, accesscontrol.Resource{BusinessID: businessID}); err != nil {
		return nil, err
	}
	return s.repo.ListByBusiness(ctx, businessID)
}
