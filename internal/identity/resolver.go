package identity

import (
	"context"
	"fmt"

	pkgauth "github.com/marcovaldez/tiendapos-backend/pkg/auth"
	"github.com/marcovaldez/tiendapos-backend/pkg/auth/session"
	"github.com/marcovaldez/tiendapos-backend/pkg/config"
	"github.com/marcovaldez/tiendapos-backend/pkg/logger"
)

// Credentials are the raw identity hints extracted from a request. Any
// combination may be present; the resolver applies the owner > employee >
// terminal > none priority.
type Credentials struct {
	OwnerToken        string
	EmployeeSessionID string
	TerminalSessionID string
}

// Resolution is the outcome of identity resolution. Business is the
// session-embedded snapshot when an employee or terminal resolved, nil for
// owners (owner handlers load the business from the database).
type Resolution struct {
	Actor    Actor
	Business *BusinessSnapshot

	OwnerAccessID     string
	EmployeeSessionID string
	TerminalSessionID string
}

type sessionReader interface {
	GetEmployeeSession(ctx context.Context, sessionID string) (*EmployeeSession, error)
	GetTerminalSession(ctx context.Context, sessionID string) (*TerminalSession, error)
	GetShift(ctx context.Context, terminalSessionID string) (*Shift, error)
}

// Resolver turns request credentials into an Actor. Corrupt or missing
// session data never errors to the caller; it degrades to the next
// candidate and ultimately to ActorNone.
type Resolver struct {
	jwtCfg   config.JWTConfig
	sessions sessionReader
	checker  session.AccessSessionChecker
	logg     *logger.Logger
}

// NewResolver wires the resolver. The access-session checker is optional;
// when present, owner tokens whose jti has been revoked do not resolve.
func NewResolver(jwtCfg config.JWTConfig, sessions sessionReader, checker session.AccessSessionChecker, logg *logger.Logger) (*Resolver, error) {
	if sessions == nil {
		return nil, fmt.Errorf("session reader is required")
	}
	return &Resolver{jwtCfg: jwtCfg, sessions: sessions, checker: checker, logg: logg}, nil
}

// Resolve applies the priority chain and never returns an error.
func (r *Resolver) Resolve(ctx context.Context, creds Credentials) Resolution {
	if creds.OwnerToken != "" {
		if res, ok := r.resolveOwner(ctx, creds.OwnerToken); ok {
			return res
		}
	}
	if creds.EmployeeSessionID != "" {
		if res, ok := r.resolveEmployee(ctx, creds.EmployeeSessionID); ok {
			return res
		}
	}
	if creds.TerminalSessionID != "" {
		if res, ok := r.resolveTerminal(ctx, creds.TerminalSessionID); ok {
			return res
		}
	}
	return Resolution{Actor: NoActor()}
}

func (r *Resolver) resolveOwner(ctx context.Context, token string) (Resolution, bool) {
	claims, err := pkgauth.ParseAccessToken(r.jwtCfg, token)
	if err != nil {
		r.warn(ctx, "identity.owner_token_rejected", err)
		return Resolution{}, false
	}
	if r.checker != nil && claims.ID != "" {
		active, err := r.checker.HasSession(ctx, claims.ID)
		if err != nil {
			r.warn(ctx, "identity.owner_session_check_failed", err)
			return Resolution{}, false
		}
		if !active {
			return Resolution{}, false
		}
	}
	return Resolution{
		Actor:         OwnerActor(claims.UserID, claims.BusinessID),
		OwnerAccessID: claims.ID,
	}, true
}

func (r *Resolver) resolveEmployee(ctx context.Context, sessionID string) (Resolution, bool) {
	record, err := r.sessions.GetEmployeeSession(ctx, sessionID)
	if err != nil {
		r.warn(ctx, "identity.employee_session_rejected", err)
		return Resolution{}, false
	}
	snapshot := record.Business
	return Resolution{
		Actor:             EmployeeActor(record.EmployeeID, record.BusinessID, record.BranchID, record.Role, record.Permissions, true),
		Business:          &snapshot,
		EmployeeSessionID: record.SessionID,
	}, true
}

func (r *Resolver) resolveTerminal(ctx context.Context, sessionID string) (Resolution, bool) {
	record, err := r.sessions.GetTerminalSession(ctx, sessionID)
	if err != nil {
		r.warn(ctx, "identity.terminal_session_rejected", err)
		return Resolution{}, false
	}
	snapshot := record.Business

	shift, err := r.sessions.GetShift(ctx, sessionID)
	if err == nil && shift != nil {
		// A verified shift upgrades the terminal to the employee on duty,
		// bound to the terminal's branch.
		return Resolution{
			Actor:             EmployeeActor(shift.EmployeeID, record.BusinessID, record.BranchID, shift.Role, shift.Permissions, true),
			Business:          &snapshot,
			TerminalSessionID: record.SessionID,
		}, true
	}
	if err != nil && err != ErrSessionNotFound {
		r.warn(ctx, "identity.shift_lookup_failed", err)
	}

	return Resolution{
		Actor:             TerminalActor(record.TerminalID, record.BusinessID, record.BranchID),
		Business:          &snapshot,
		TerminalSessionID: record.SessionID,
	}, true
}

func (r *Resolver) warn(ctx context.Context, msg string, err error) {
	if r.logg == nil {
		return
	}
	ctx = r.logg.WithField(ctx, "reason", err.Error())
	r.logg.Warn(ctx, msg)
}
