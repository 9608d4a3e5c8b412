package employees

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

// Service covers staff login, PIN shifts, and personnel management.
type Service interface {
	Login(ctx context.Context, identifier, password string) (*identity.EmployeeSession, error)
	Logout(ctx context.Context, sessionID string) error
	VerifyPIN(ctx context.Context, terminalSessionID, pin string) (*identity.Shift, error)
	EndShift(ctx context.Context, terminalSessionID string) error

	CreateEmployee(ctx context.Context, actor identity.Actor, input CreateEmployeeInput) (*models.Employee, error)
	UpdateEmployee(ctx context.Context, actor identity.Actor, input UpdateEmployeeInput) (*models.Employee, error)
	DeactivateEmployee(ctx context.Context, actor identity.Actor, businessID, employeeID uuid.UUID) error
	ListEmployees(ctx context.Context, actor identity.Actor, businessID uuid.UUID) ([]models.Employee, error)
}

// CreateEmployeeInput registers a staff member at a branch.
type CreateEmployeeInput struct {
	BusinessID uuid.UUID
	BranchID   uuid.UUID
	Name       string
	Identifier string
	Password   string
	PIN        *string
	Role       enums.EmployeeRole

	CanSell           bool
	CanViewStock      bool
	CanManageProducts bool
	CanViewReports    bool
}

// UpdateEmployeeInput carries partial personnel changes. Nil fields are
// left untouched.
type UpdateEmployeeInput struct {
	BusinessID uuid.UUID
	EmployeeID uuid.UUID
	BranchID   *uuid.UUID
	Name       *string
	Password   *string
	PIN        *string
	Role       *enums.EmployeeRole

	CanSell           *bool
	CanViewStock      *bool
	CanManageProducts *bool
	CanViewReports    *bool
	Active            *bool
}

type sessionStore interface {
	SaveEmployeeSession(ctx context.Context, record identity.EmployeeSession) error
	DeleteEmployeeSession(ctx context.Context, sessionID string) error
	GetTerminalSession(ctx context.Context, sessionID string) (*identity.TerminalSession, error)
	SaveShift(ctx context.Context, terminalSessionID string, shift identity.Shift) error
	DeleteShift(ctx context.Context, terminalSessionID string) error
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

// NewService wires the employee service.
func NewService(repo Repository, sessions sessionStore, businesses businessReader, auditor auditRecorder, passwordCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("employee repository is required")
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

var errInvalidCredentials = pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")

// Login exchanges an identifier and password for a redis-backed session
// blob. The session ID is the bearer credential handed to the client.
func (s *service) Login(ctx context.Context, identifier, password string) (*identity.EmployeeSession, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, errInvalidCredentials
	}

	employee, err := s.repo.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}
	if !employee.Active {
		return nil, errInvalidCredentials
	}
	ok, err := security.VerifySecret(password, employee.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errInvalidCredentials
	}

	business, err := s.businesses.GetByID(ctx, employee.BusinessID)
	if err != nil {
		return nil, err
	}

	session := identity.EmployeeSession{
		SessionID:   identity.NewSessionID(),
		EmployeeID:  employee.ID,
		BusinessID:  employee.BusinessID,
		BranchID:    employee.BranchID,
		Name:        employee.Name,
		Role:        employee.Role,
		Permissions: identity.PermissionsFromEmployee(employee),
		Business:    identity.SnapshotFromBusiness(business),
		ActivatedAt: s.now(),
	}
	if err := s.sessions.SaveEmployeeSession(ctx, session); err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, audit.Event{
		BusinessID: employee.BusinessID,
		BranchID:   &employee.BranchID,
		Action:     enums.AuditActionLogin,
		ActorKind:  enums.ActorKindEmployee,
		ActorRef:   &employee.ID,
		Details:    fmt.Sprintf("employee %q logged in", employee.Name),
	})
	return &session, nil
}

func (s *service) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.DeleteEmployeeSession(ctx, sessionID)
}

// VerifyPIN starts a shift on a POS terminal. The PIN identifies an
// active employee of the terminal's branch; a verified match layers the
// shift record over the terminal session.
func (s *service) VerifyPIN(ctx context.Context, terminalSessionID, pin string) (*identity.Shift, error) {
	normalized, err := security.NormalizePIN(pin)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid pin format")
	}

	terminal, err := s.sessions.GetTerminalSession(ctx, terminalSessionID)
	if err != nil {
		if errors.Is(err, identity.ErrSessionNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "terminal session not found")
		}
		return nil, err
	}

	staff, err := s.repo.ListActiveByBranch(ctx, terminal.BranchID)
	if err != nil {
		return nil, err
	}
	var matched *models.Employee
	for i := range staff {
		if staff[i].PINHash == nil {
			continue
		}
		ok, err := security.VerifySecret(normalized, *staff[i].PINHash)
		if err != nil {
			continue
		}
		if ok {
			matched = &staff[i]
			break
		}
	}
	if matched == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "pin not recognized")
	}

	shift := identity.Shift{
		EmployeeID:  matched.ID,
		Name:        matched.Name,
		Role:        matched.Role,
		Permissions: identity.PermissionsFromEmployee(matched),
		StartedAt:   s.now(),
	}
	if err := s.sessions.SaveShift(ctx, terminalSessionID, shift); err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, audit.Event{
		BusinessID: terminal.BusinessID,
		BranchID:   &terminal.BranchID,
		Action:     enums.AuditActionLogin,
		ActorKind:  enums.ActorKindEmployee,
		ActorRef:   &matched.ID,
		Details:    fmt.Sprintf("employee %q started a shift on terminal %q", matched.Name, terminal.Name),
	})
	return &shift, nil
}

func (s *service) EndShift(ctx context.Context, terminalSessionID string) error {
	return s.sessions.DeleteShift(ctx, terminalSessionID)
}

func (s *service) CreateEmployee(ctx context.Context, actor identity.Actor, input CreateEmployeeInput) (*models.Employee, error) {
	if err := accesscontrol.Authorize(actor, accesscontrol.ActionManagePersonnel, accesscontrol.Resource{BusinessID: input.BusinessID}); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	identifier := strings.TrimSpace(input.Identifier)
	if name == "" || identifier == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name and identifier are required")
	}
	if len(input.Password) < 8 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}
	if input.BranchID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "branch is required")
	}
	role := input.Role
	if role == "" {
		role = enums.EmployeeRoleCashier
	}
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}

	if _, err := s.repo.GetByIdentifier(ctx, identifier); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "identifier already in use")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	passwordHash, err := security.HashSecret(input.Password, s.passwordCfg)
	if err != nil {
		return nil, err
	}
	var pinHash *string
	if input.PIN != nil {
		normalized, err := security.NormalizePIN(*input.PIN)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid pin format")
		}
		hashed, err := security.HashSecret(normalized, s.passwordCfg)
		if err != nil {
			return nil, err
		}
		pinHash = &hashed
	}

	employee := &models.Employee{
		BusinessID:        input.BusinessID,
		BranchID:          input.BranchID,
		Name:              name,
		Identifier:        identifier,
		PasswordHash:      passwordHash,
		PINHash:           pinHash,
		Role:              role,
		CanSell:           input.CanSell,
		CanViewStock:      input.CanViewStock,
		CanManageProducts: input.CanManageProducts,
		CanViewReports:    input.CanViewReports,
		Active:            true,
	}
	if err := s.repo.Create(ctx, employee); err != nil {
		return nil, err
	}
	return employee, nil
}

func (s *service) UpdateEmployee(ctx context.Context, actor identity.Actor, input UpdateEmployeeInput) (*models.Employee, error) {
	if err := accesscontrol.Authorize(actor, accesscontrol.ActionManagePersonnel, accesscontrol.Resource{BusinessID: input.BusinessID}); err != nil {
		return nil, err
	}
	employee, err := s.repo.GetByID(ctx, input.BusinessID, input.EmployeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "employee not found")
		}
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		employee.Name = name
	}
	if input.BranchID != nil {
		if *input.BranchID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "branch is required")
		}
		employee.BranchID = *input.BranchID
	}
	if input.Role != nil {
		if !input.Role.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
		}
		employee.Role = *input.Role
	}
	if input.Password != nil {
		if len(*input.Password) < 8 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
		}
		hashed, err := security.HashSecret(*input.Password, s.passwordCfg)
		if err != nil {
			return nil, err
		}
		employee.PasswordHash = hashed
	}
	if input.PIN != nil {
		normalized, err := security.NormalizePIN(*input.PIN)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid pin format")
		}
		hashed, err := security.HashSecret(normalized, s.passwordCfg)
		if err != nil {
			return nil, err
		}
		employee.PINHash = &hashed
	}
	if input.CanSell != nil {
		employee.CanSell = *input.CanSell
	}
	if input.CanViewStock != nil {
		employee.CanViewStock = *input.CanViewStock
	}
	if input.CanManageProducts != nil {
		employee.CanManageProducts = *input.CanManageProducts
	}
	if input.CanViewReports != nil {
		employee.CanViewReports = *input.CanViewReports
	}
	if input.Active != nil {
		employee.Active = *input.Active
	}

	if err := s.repo.Update(ctx, employee); err != nil {
		return nil, err
	}
	return employee, nil
}

func (s *service) DeactivateEmployee(ctx context.Context, actor identity.Actor, businessID, employeeID uuid.UUID) error {
	inactive := false
	_, err := s.UpdateEmployee(ctx, actor, UpdateEmployeeInput{
		BusinessID: businessID,
		EmployeeID: employeeID,
		Active:     &inactive,
	})
	return err
}

func (s *service) ListEmployees(ctx context.Context, actor identity.Actor, businessID uuid.UUID) ([]models.Employee, error) {
	if err := accesscontrol.Authorize(actor, accesscontrol.ActionManagePersonnel, accesscontrol.Resource{BusinessID: businessID}); err != nil {
		return nil, err
	}
	return s.repo.ListByBusiness(ctx, businessID)
}
