package auth

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	pkgauth "github.com/marcovaldez/tiendapos-backend/pkg/auth"
	"github.com/marcovaldez/tiendapos-backend/pkg/auth/session"
	"github.com/marcovaldez/tiendapos-backend/pkg/config"
	"github.com/marcovaldez/tiendapos-backend/pkg/db/models"
	"github.com/marcovaldez/tiendapos-backend/pkg/enums"
	pkgerrors "github.com/marcovaldez/tiendapos-backend/pkg/errors"
)

var testJWTCfg = config.JWTConfig{
	Secret:                 "test-secret-test-secret-test-secret",
	Issuer:                 "tiendapos-test",
	ExpirationMinutes:      15,
	RefreshTokenTTLMinutes: 60,
}

var testPasswordCfg = config.PasswordConfig{
	ArgonMemoryKB:    16384,
	ArgonTime:        1,
	ArgonParallelism: 1,
	ArgonSaltLen:     16,
	ArgonKeyLen:      32,
}

type fakeSessionManager struct {
	mu       sync.Mutex
	sessions map[string]string
}

func newFakeSessionManager() *fakeSessionManager {
	return &fakeSessionManager{sessions: make(map[string]string)}
}

func (f *fakeSessionManager) Generate(ctx context.Context, accessID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	token := "refresh-" + uuid.NewString()
	f.sessions[accessID] = token
	return token, nil
}

func (f *fakeSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.sessions[oldAccessID]
	if !ok || stored != provided {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(f.sessions, oldAccessID)
	newAccessID := session.NewAccessID()
	newToken := "refresh-" + uuid.NewString()
	f.sessions[newAccessID] = newToken
	return newAccessID, newToken, nil
}

func (f *fakeSessionManager) Revoke(ctx context.Context, accessID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, accessID)
	return nil
}

type dbBusinessLookup struct {
	db *gorm.DB
}

func (r dbBusinessLookup) GetByOwner(ctx context.Context, ownerUserID uuid.UUID) (*models.Business, error) {
	var business models.Business
	if err := r.db.WithContext(ctx).First(&business, "owner_user_id = ?", ownerUserID).Error; err != nil {
		return nil, err
	}
	return &business, nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:auth_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	for _, ddl := range []string{ownerUsersDDL, businessesDDL} {
		if err := db.Exec(ddl).Error; err != nil {
			t.Fatalf("create table: %v", err)
		}
	}
	return db
}

const ownerUsersDDL = `
CREATE TABLE IF NOT EXISTS owner_users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`

const businessesDDL = `
CREATE TABLE IF NOT EXISTS businesses (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  tax_id TEXT,
  address TEXT,
  phone TEXT,
  contact_email TEXT,
  website TEXT,
  currency TEXT NOT NULL DEFAULT 'USD',
  inventory_mode TEXT NOT NULL DEFAULT 'shared',
  inventory_mode_changed_at DATETIME,
  payment_methods TEXT,
  owner_user_id TEXT NOT NULL UNIQUE,
  created_at DATETIME,
  updated_at DATETIME
);`

func setup(t *testing.T) (Service, *gorm.DB, *fakeSessionManager) {
	t.Helper()
	db := newTestDB(t)
	sessions := newFakeSessionManager()
	svc, err := NewService(ServiceParams{
		OwnerRepo:      NewOwnerRepository(db),
		BusinessLookup: dbBusinessLookup{db: db},
		SessionManager: sessions,
		JWTConfig:      testJWTCfg,
		PasswordConfig: testPasswordCfg,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, db, sessions
}

func TestRegisterAndLogin(t *testing.T) {
	svc, db, _ := setup(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterRequest{Email: " Dueno@Tienda.MX ", Password: "segura-123"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if registered.Owner.Email != "dueno@tienda.mx" {
		t.Fatalf("expected normalized email, got %q", registered.Owner.Email)
	}
	if registered.AccessToken == "" || registered.RefreshToken == "" {
		t.Fatal("expected a full token pair")
	}
	if registered.BusinessID != nil {
		t.Fatal("a fresh owner has no business yet")
	}

	// A second account on the same email conflicts.
	_, err = svc.Register(ctx, RegisterRequest{Email: "dueno@tienda.mx", Password: "segura-123"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected CONFLICT, got %v", err)
	}

	// Once onboarded, login embeds the business in the token.
	business := &models.Business{
		ID:            uuid.New(),
		Name:          "La Surtidora",
		Currency:      enums.CurrencyMXN,
		InventoryMode: enums.InventoryModeShared,
		OwnerUserID:   registered.Owner.ID,
	}
	if err := db.Create(business).Error; err != nil {
		t.Fatalf("seed business: %v", err)
	}

	logged, err := svc.Login(ctx, LoginRequest{Email: "dueno@tienda.mx", Password: "segura-123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if logged.BusinessID == nil || *logged.BusinessID != business.ID {
		t.Fatalf("expected business id in response, got %v", logged.BusinessID)
	}
	if logged.Owner.LastLoginAt == nil {
		t.Fatal("login must record the timestamp")
	}

	claims, err := pkgauth.ParseAccessToken(testJWTCfg, logged.AccessToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID != registered.Owner.ID {
		t.Fatalf("expected subject %s, got %s", registered.Owner.ID, claims.UserID)
	}
	if claims.BusinessID == nil || *claims.BusinessID != business.ID {
		t.Fatalf("expected business claim, got %v", claims.BusinessID)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterRequest{Email: "dueno@tienda.mx", Password: "segura-123"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	for _, attempt := range []LoginRequest{
		{Email: "dueno@tienda.mx", Password: "equivocada"},
		{Email: "nadie@tienda.mx", Password: "segura-123"},
		{Email: "", Password: ""},
	} {
		_, err := svc.Login(ctx, attempt)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
			t.Fatalf("expected UNAUTHORIZED for %+v, got %v", attempt, err)
		}
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	svc, _, sessions := setup(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterRequest{Email: "dueno@tienda.mx", Password: "segura-123"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	refreshed, err := svc.Refresh(ctx, RefreshRequest{
		AccessToken:  registered.AccessToken,
		RefreshToken: registered.RefreshToken,
	})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.AccessToken == registered.AccessToken {
		t.Fatal("refresh must mint a new access token")
	}
	if refreshed.RefreshToken == registered.RefreshToken {
		t.Fatal("refresh must rotate the refresh token")
	}

	// The old pair is spent.
	_, err = svc.Refresh(ctx, RefreshRequest{
		AccessToken:  registered.AccessToken,
		RefreshToken: registered.RefreshToken,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED for spent pair, got %v", err)
	}

	sessions.mu.Lock()
	live := len(sessions.sessions)
	sessions.mu.Unlock()
	if live != 1 {
		t.Fatalf("expected exactly one live session after rotation, got %d", live)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterRequest{Email: "dueno@tienda.mx", Password: "segura-123"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	claims, err := pkgauth.ParseAccessToken(testJWTCfg, registered.AccessToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if err := svc.Logout(ctx, claims.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}

	_, err = svc.Refresh(ctx, RefreshRequest{
		AccessToken:  registered.AccessToken,
		RefreshToken: registered.RefreshToken,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED after logout, got %v", err)
	}
}
