package identity

import (
	"context"
	"sync/atomic"
)

type sessionDeleter interface {
	DeleteEmployeeSession(ctx context.Context, sessionID string) error
	DeleteTerminalSession(ctx context.Context, sessionID string) error
}

type ownerRevoker interface {
	Revoke(ctx context.Context, accessID string) error
}

// Store holds the process-wide view of the last resolution. Readers get a
// consistent snapshot from a single pointer swap; there is no partially
// updated state to observe.
type Store struct {
	current  atomic.Pointer[Resolution]
	sessions sessionDeleter
	revoker  ownerRevoker
}

// NewStore builds a store seeded with the unauthenticated resolution.
// Both collaborators are optional; ClearAll skips what it cannot reach.
func NewStore(sessions sessionDeleter, revoker ownerRevoker) *Store {
	s := &Store{sessions: sessions, revoker: revoker}
	empty := Resolution{Actor: NoActor()}
	s.current.Store(&empty)
	return s
}

// Current returns the last stored resolution.
func (s *Store) Current() Resolution {
	return *s.current.Load()
}

// Set swaps in a full resolution atomically.
func (s *Store) Set(res Resolution) {
	snapshot := res
	s.current.Store(&snapshot)
}

// SetEmployeeSession records an employee resolution.
func (s *Store) SetEmployeeSession(record EmployeeSession) {
	snapshot := record.Business
	s.Set(Resolution{
		Actor:             EmployeeActor(record.EmployeeID, record.BusinessID, record.BranchID, record.Role, record.Permissions, true),
		Business:          &snapshot,
		EmployeeSessionID: record.SessionID,
	})
}

// SetTerminalSession records a terminal resolution.
func (s *Store) SetTerminalSession(record TerminalSession) {
	snapshot := record.Business
	s.Set(Resolution{
		Actor:             TerminalActor(record.TerminalID, record.BusinessID, record.BranchID),
		Business:          &snapshot,
		TerminalSessionID: record.SessionID,
	})
}

// ClearAll tears down every identity trace: both redis session records
// first, then the owner refresh session, then the in-memory snapshot.
// Backend failures do not stop the local reset, so the call is idempotent
// and always leaves memory at {ActorNone, no business}. The first backend
// error is returned for logging.
func (s *Store) ClearAll(ctx context.Context) error {
	res := s.Current()

	var firstErr error
	if s.sessions != nil {
		if res.EmployeeSessionID != "" {
			if err := s.sessions.DeleteEmployeeSession(ctx, res.EmployeeSessionID); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		if res.TerminalSessionID != "" {
			if err := s.sessions.DeleteTerminalSession(ctx, res.TerminalSessionID); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	if s.revoker != nil && res.OwnerAccessID != "" {
		if err := s.revoker.Revoke(ctx, res.OwnerAccessID); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	empty := Resolution{Actor: NoActor()}
	s.current.Store(&empty)
	return firstErr
}
