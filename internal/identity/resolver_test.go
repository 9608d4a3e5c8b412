package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	pkgauth "github.com/marcovaldez/tiendapos-backend/pkg/auth"
	"github.com/marcovaldez/tiendapos-backend/pkg/config"
	"github.com/marcovaldez/tiendapos-backend/pkg/enums"
)

type fakeSessionReader struct {
	employees map[string]*EmployeeSession
	terminals map[string]*TerminalSession
	shifts    map[string]*Shift
	err       error
}

func newFakeSessionReader() *fakeSessionReader {
	return &fakeSessionReader{
		employees: map[string]*EmployeeSession{},
		terminals: map[string]*TerminalSession{},
		shifts:    map[string]*Shift{},
	}
}

func (f *fakeSessionReader) GetEmployeeSession(ctx context.Context, sessionID string) (*EmployeeSession, error) {
	if f.err != nil {
		return nil, f.err
	}
	if record, ok := f.employees[sessionID]; ok {
		return record, nil
	}
	return nil, ErrSessionNotFound
}

func (f *fakeSessionReader) GetTerminalSession(ctx context.Context, sessionID string) (*TerminalSession, error) {
	if f.err != nil {
		return nil, f.err
	}
	if record, ok := f.terminals[sessionID]; ok {
		return record, nil
	}
	return nil, ErrSessionNotFound
}

func (f *fakeSessionReader) GetShift(ctx context.Context, terminalSessionID string) (*Shift, error) {
	if shift, ok := f.shifts[terminalSessionID]; ok {
		return shift, nil
	}
	return nil, ErrSessionNotFound
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "secret", Issuer: "tiendapos", ExpirationMinutes: 30}
}

func mintOwnerToken(t *testing.T, businessID *uuid.UUID) (string, uuid.UUID) {
	t.Helper()
	ownerID := uuid.New()
	token, err := pkgauth.MintAccessToken(testJWTConfig(), time.Now(), pkgauth.AccessTokenPayload{
		UserID:     ownerID,
		BusinessID: businessID,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token, ownerID
}

func TestResolvePriorityOwnerWins(t *testing.T) {
	sessions := newFakeSessionReader()
	sessions.employees["emp-sess"] = &EmployeeSession{
		SessionID:  "emp-sess",
		EmployeeID: uuid.New(),
		BusinessID: uuid.New(),
		BranchID:   uuid.New(),
		Role:       enums.EmployeeRoleCashier,
	}

	resolver, err := NewResolver(testJWTConfig(), sessions, nil, nil)
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}

	businessID := uuid.New()
	token, ownerID := mintOwnerToken(t, &businessID)

	res := resolver.Resolve(context.Background(), Credentials{
		OwnerToken:        token,
		EmployeeSessionID: "emp-sess",
	})
	if res.Actor.Kind != enums.ActorKindOwner {
		t.Fatalf("expected owner actor, got %s", res.Actor.Kind)
	}
	if res.Actor.OwnerID == nil || *res.Actor.OwnerID != ownerID {
		t.Fatal("owner id not carried")
	}
	if res.Actor.EmployeeID != nil || res.Actor.TerminalID != nil {
		t.Fatal("mixed actor state")
	}
}

func TestResolveInvalidOwnerTokenFallsThrough(t *testing.T) {
	sessions := newFakeSessionReader()
	record := &EmployeeSession{
		SessionID:  "emp-sess",
		EmployeeID: uuid.New(),
		BusinessID: uuid.New(),
		BranchID:   uuid.New(),
		Role:       enums.EmployeeRoleSupervisor,
		Business:   BusinessSnapshot{Name: "Tienda"},
	}
	sessions.employees["emp-sess"] = record

	resolver, _ := NewResolver(testJWTConfig(), sessions, nil, nil)
	res := resolver.Resolve(context.Background(), Credentials{
		OwnerToken:        "garbage-token",
		EmployeeSessionID: "emp-sess",
	})
	if res.Actor.Kind != enums.ActorKindEmployee {
		t.Fatalf("expected employee actor, got %s", res.Actor.Kind)
	}
	if res.Business == nil || res.Business.Name != "Tienda" {
		t.Fatal("expected session business snapshot")
	}
}

func TestResolveTerminalWithoutShift(t *testing.T) {
	sessions := newFakeSessionReader()
	terminalID := uuid.New()
	sessions.terminals["term-sess"] = &TerminalSession{
		SessionID:  "term-sess",
		TerminalID: terminalID,
		BusinessID: uuid.New(),
		BranchID:   uuid.New(),
	}

	resolver, _ := NewResolver(testJWTConfig(), sessions, nil, nil)
	res := resolver.Resolve(context.Background(), Credentials{TerminalSessionID: "term-sess"})
	if res.Actor.Kind != enums.ActorKindTerminal {
		t.Fatalf("expected terminal actor, got %s", res.Actor.Kind)
	}
	if res.Actor.PINVerified {
		t.Fatal("terminal actor must not be pin verified")
	}
}

func TestResolveTerminalWithShiftUpgradesToEmployee(t *testing.T) {
	sessions := newFakeSessionReader()
	branchID := uuid.New()
	employeeID := uuid.New()
	sessions.terminals["term-sess"] = &TerminalSession{
		SessionID:  "term-sess",
		TerminalID: uuid.New(),
		BusinessID: uuid.New(),
		BranchID:   branchID,
	}
	sessions.shifts["term-sess"] = &Shift{
		EmployeeID:  employeeID,
		Role:        enums.EmployeeRoleCashier,
		Permissions: Permissions{CanSell: true},
	}

	resolver, _ := NewResolver(testJWTConfig(), sessions, nil, nil)
	res := resolver.Resolve(context.Background(), Credentials{TerminalSessionID: "term-sess"})
	if res.Actor.Kind != enums.ActorKindEmployee {
		t.Fatalf("expected employee actor from shift, got %s", res.Actor.Kind)
	}
	if res.Actor.EmployeeID == nil || *res.Actor.EmployeeID != employeeID {
		t.Fatal("shift employee id not carried")
	}
	if res.Actor.BranchID == nil || *res.Actor.BranchID != branchID {
		t.Fatal("shift must bind to the terminal branch")
	}
	if !res.Actor.PINVerified {
		t.Fatal("shift actor must be pin verified")
	}
}

func TestResolveBackendFailureDegradesToNone(t *testing.T) {
	sessions := newFakeSessionReader()
	sessions.err = errors.New("redis down")

	resolver, _ := NewResolver(testJWTConfig(), sessions, nil, nil)
	res := resolver.Resolve(context.Background(), Credentials{
		EmployeeSessionID: "emp-sess",
		TerminalSessionID: "term-sess",
	})
	if res.Actor.Kind != enums.ActorKindNone {
		t.Fatalf("expected none actor on backend failure, got %s", res.Actor.Kind)
	}
}

func TestResolveNoCredentials(t *testing.T) {
	resolver, _ := NewResolver(testJWTConfig(), newFakeSessionReader(), nil, nil)
	res := resolver.Resolve(context.Background(), Credentials{})
	if res.Actor.Kind != enums.ActorKindNone {
		t.Fatalf("expected none actor, got %s", res.Actor.Kind)
	}
	if res.Actor.IsAuthenticated() {
		t.Fatal("none actor must not be authenticated")
	}
}
