package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"

	"github.com/marcovaldez/tiendapos-backend/pkg/config"
	"github.com/marcovaldez/tiendapos-backend/pkg/db/models"
	"github.com/marcovaldez/tiendapos-backend/pkg/enums"
	redisclient "github.com/marcovaldez/tiendapos-backend/pkg/redis"
)

// ErrSessionNotFound signals an absent or expired session record.
var ErrSessionNotFound = errors.New("session not found")

// BusinessSnapshot is the subset of business data embedded in session
// blobs. It serves display only; sensitive reads (inventory mode,
// permission checks) re-fetch from the database.
type BusinessSnapshot struct {
	ID            uuid.UUID           `json:"id"`
	Name          string              `json:"name"`
	Currency      enums.Currency      `json:"currency"`
	InventoryMode enums.InventoryMode `json:"inventory_mode"`
}

// SnapshotFromBusiness builds the embedded view of a business.
func SnapshotFromBusiness(business *models.Business) BusinessSnapshot {
	if business == nil {
		return BusinessSnapshot{}
	}
	return BusinessSnapshot{
		ID:            business.ID,
		Name:          business.Name,
		Currency:      business.Currency,
		InventoryMode: business.InventoryMode,
	}
}

// EmployeeSession is the redis record behind an employee login.
type EmployeeSession struct {
	SessionID   string             `json:"session_id"`
	EmployeeID  uuid.UUID          `json:"employee_id"`
	BusinessID  uuid.UUID          `json:"business_id"`
	BranchID    uuid.UUID          `json:"branch_id"`
	Name        string             `json:"name"`
	Role        enums.EmployeeRole `json:"role"`
	Permissions Permissions        `json:"permissions"`
	Business    BusinessSnapshot   `json:"business"`
	ActivatedAt time.Time          `json:"activated_at"`
}

// TerminalSession is the redis record behind a POS device login.
type TerminalSession struct {
	SessionID   string           `json:"session_id"`
	TerminalID  uuid.UUID        `json:"terminal_id"`
	BusinessID  uuid.UUID        `json:"business_id"`
	BranchID    uuid.UUID        `json:"branch_id"`
	Name        string           `json:"name"`
	Business    BusinessSnapshot `json:"business"`
	ActivatedAt time.Time        `json:"activated_at"`
}

// Shift is the employee layer over a terminal session after a verified PIN.
type Shift struct {
	EmployeeID  uuid.UUID          `json:"employee_id"`
	Name        string             `json:"name"`
	Role        enums.EmployeeRole `json:"role"`
	Permissions Permissions        `json:"permissions"`
	StartedAt   time.Time          `json:"started_at"`
}

type sessionKV interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type sessionKeyer interface {
	EmployeeSessionKey(sessionID string) string
	TerminalSessionKey(sessionID string) string
	ShiftKey(terminalSessionID string) string
}

// SessionRepository persists employee/terminal session blobs in redis.
type SessionRepository struct {
	kv    sessionKV
	keyer sessionKeyer
	cfg   config.SessionConfig
}

// NewSessionRepository wires the repository over the shared redis client.
func NewSessionRepository(client *redisclient.Client, cfg config.SessionConfig) (*SessionRepository, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	return &SessionRepository{kv: client, keyer: client, cfg: cfg}, nil
}

// SaveEmployeeSession stores the record under a fresh session ID.
func (r *SessionRepository) SaveEmployeeSession(ctx context.Context, record EmployeeSession) error {
	if record.SessionID == "" {
		return fmt.Errorf("session id is required")
	}
	blob, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode employee session: %w", err)
	}
	return r.kv.Set(ctx, r.keyer.EmployeeSessionKey(record.SessionID), string(blob), r.cfg.EmployeeTTL)
}

// GetEmployeeSession loads and decodes an employee session record.
func (r *SessionRepository) GetEmployeeSession(ctx context.Context, sessionID string) (*EmployeeSession, error) {
	blob, err := r.kv.Get(ctx, r.keyer.EmployeeSessionKey(sessionID))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	var record EmployeeSession
	if err := json.Unmarshal([]byte(blob), &record); err != nil {
		return nil, fmt.Errorf("decode employee session: %w", err)
	}
	return &record, nil
}

// DeleteEmployeeSession removes the record. Missing keys are not an error.
func (r *SessionRepository) DeleteEmployeeSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return r.kv.Del(ctx, r.keyer.EmployeeSessionKey(sessionID))
}

// SaveTerminalSession stores the terminal record.
func (r *SessionRepository) SaveTerminalSession(ctx context.Context, record TerminalSession) error {
	if record.SessionID == "" {
		return fmt.Errorf("session id is required")
	}
	blob, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode terminal session: %w", err)
	}
	return r.kv.Set(ctx, r.keyer.TerminalSessionKey(record.SessionID), string(blob), r.cfg.TerminalTTL)
}

// GetTerminalSession loads and decodes a terminal session record.
func (r *SessionRepository) GetTerminalSession(ctx context.Context, sessionID string) (*TerminalSession, error) {
	blob, err := r.kv.Get(ctx, r.keyer.TerminalSessionKey(sessionID))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	var record TerminalSession
	if err := json.Unmarshal([]byte(blob), &record); err != nil {
		return nil, fmt.Errorf("decode terminal session: %w", err)
	}
	return &record, nil
}

// DeleteTerminalSession removes the terminal record and any layered shift.
func (r *SessionRepository) DeleteTerminalSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return r.kv.Del(ctx, r.keyer.TerminalSessionKey(sessionID), r.keyer.ShiftKey(sessionID))
}

// SaveShift layers a verified employee shift over a terminal session.
func (r *SessionRepository) SaveShift(ctx context.Context, terminalSessionID string, shift Shift) error {
	if terminalSessionID == "" {
		return fmt.Errorf("terminal session id is required")
	}
	blob, err := json.Marshal(shift)
	if err != nil {
		return fmt.Errorf("encode shift: %w", err)
	}
	return r.kv.Set(ctx, r.keyer.ShiftKey(terminalSessionID), string(blob), r.cfg.ShiftTTL)
}

// GetShift loads the shift layered over a terminal session, if any.
func (r *SessionRepository) GetShift(ctx context.Context, terminalSessionID string) (*Shift, error) {
	blob, err := r.kv.Get(ctx, r.keyer.ShiftKey(terminalSessionID))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	var shift Shift
	if err := json.Unmarshal([]byte(blob), &shift); err != nil {
		return nil, fmt.Errorf("decode shift: %w", err)
	}
	return &shift, nil
}

// DeleteShift ends a shift without tearing down the terminal session.
func (r *SessionRepository) DeleteShift(ctx context.Context, terminalSessionID string) error {
	if terminalSessionID == "" {
		return nil
	}
	return r.kv.Del(ctx, r.keyer.ShiftKey(terminalSessionID))
}

// NewSessionID issues the random identifier handed back to clients.
func NewSessionID() string {
	return uuid.NewString()
}
