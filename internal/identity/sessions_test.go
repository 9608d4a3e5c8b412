package identity

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"

	"github.com/marcovaldez/tiendapos-backend/pkg/config"
	"github.com/marcovaldez/tiendapos-backend/pkg/enums"
)

type fakeKV struct {
	data map[string]string
	ttls map[string]time.Duration
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeKV) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	f.data[key] = fmt.Sprint(value)
	f.ttls[key] = ttl
	return nil
}

func (f *fakeKV) Get(ctx context.Context, key string) (string, error) {
	v, ok := f.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return v, nil
}

func (f *fakeKV) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

type fakeKeyer struct{}

func (fakeKeyer) EmployeeSessionKey(id string) string { return "emp:" + id }
func (fakeKeyer) TerminalSessionKey(id string) string { return "term:" + id }
func (fakeKeyer) ShiftKey(id string) string           { return "shift:" + id }

func testSessionRepo(kv *fakeKV) *SessionRepository {
	return &SessionRepository{
		kv:    kv,
		keyer: fakeKeyer{},
		cfg: config.SessionConfig{
			EmployeeTTL: 12 * time.Hour,
			TerminalTTL: 720 * time.Hour,
			ShiftTTL:    8 * time.Hour,
		},
	}
}

func TestEmployeeSessionRoundTrip(t *testing.T) {
	kv := newFakeKV()
	repo := testSessionRepo(kv)
	ctx := context.Background()

	record := EmployeeSession{
		SessionID:   "emp-1",
		EmployeeID:  uuid.New(),
		BusinessID:  uuid.New(),
		BranchID:    uuid.New(),
		Name:        "Ana",
		Role:        enums.EmployeeRoleSupervisor,
		Permissions: Permissions{CanSell: true, CanViewStock: true},
		Business:    BusinessSnapshot{Name: "Tienda", InventoryMode: enums.InventoryModePerBranch},
		ActivatedAt: time.Now().UTC().Truncate(time.Second),
	}
	if err := repo.SaveEmployeeSession(ctx, record); err != nil {
		t.Fatalf("save: %v", err)
	}
	if kv.ttls["emp:emp-1"] != 12*time.Hour {
		t.Fatalf("unexpected ttl %v", kv.ttls["emp:emp-1"])
	}

	got, err := repo.GetEmployeeSession(ctx, "emp-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.EmployeeID != record.EmployeeID || got.Role != record.Role {
		t.Fatalf("record mismatch: %+v", got)
	}
	if got.Business.InventoryMode != enums.InventoryModePerBranch {
		t.Fatal("business snapshot not preserved")
	}

	if err := repo.DeleteEmployeeSession(ctx, "emp-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetEmployeeSession(ctx, "emp-1"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCorruptSessionBlobErrors(t *testing.T) {
	kv := newFakeKV()
	repo := testSessionRepo(kv)
	kv.data["emp:bad"] = "{not json"

	if _, err := repo.GetEmployeeSession(context.Background(), "bad"); err == nil {
		t.Fatal("expected decode error for corrupt blob")
	}
}

func TestDeleteTerminalSessionRemovesShift(t *testing.T) {
	kv := newFakeKV()
	repo := testSessionRepo(kv)
	ctx := context.Background()

	record := TerminalSession{
		SessionID:  "term-1",
		TerminalID: uuid.New(),
		BusinessID: uuid.New(),
		BranchID:   uuid.New(),
	}
	if err := repo.SaveTerminalSession(ctx, record); err != nil {
		t.Fatalf("save terminal: %v", err)
	}
	if err := repo.SaveShift(ctx, "term-1", Shift{EmployeeID: uuid.New(), Role: enums.EmployeeRoleCashier}); err != nil {
		t.Fatalf("save shift: %v", err)
	}

	if err := repo.DeleteTerminalSession(ctx, "term-1"); err != nil {
		t.Fatalf("delete terminal: %v", err)
	}
	if _, err := repo.GetTerminalSession(ctx, "term-1"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("terminal record should be gone, got %v", err)
	}
	if _, err := repo.GetShift(ctx, "term-1"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("shift should be gone with its terminal, got %v", err)
	}
}
