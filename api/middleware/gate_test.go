package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/marcovaldez/tiendapos-backend/internal/accesscontrol"
	"github.com/marcovaldez/tiendapos-backend/internal/identity"
	"github.com/marcovaldez/tiendapos-backend/pkg/enums"
)

func serveGated(t *testing.T, action accesscontrol.Action, res identity.Resolution) *httptest.ResponseRecorder {
	t.Helper()
	handler := RequireAction(action, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transfers", nil)
	req = req.WithContext(WithResolution(req.Context(), res))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRequireActionAllowsOwner(t *testing.T) {
	businessID := uuid.New()
	res := identity.Resolution{Actor: identity.OwnerActor(uuid.New(), &businessID)}

	rec := serveGated(t, accesscontrol.ActionManageBusiness, res)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected owner to pass, got %d", rec.Code)
	}
}

func TestRequireActionDeniesCashierSupervisorActions(t *testing.T) {
	actor := identity.EmployeeActor(uuid.New(), uuid.New(), uuid.New(), enums.EmployeeRoleCashier,
		identity.Permissions{CanSell: true, CanViewStock: true}, true)

	rec := serveGated(t, accesscontrol.ActionTransferStock, identity.Resolution{Actor: actor})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for cashier, got %d", rec.Code)
	}
}

func TestRequireActionRejectsUnauthenticated(t *testing.T) {
	rec := serveGated(t, accesscontrol.ActionViewStock, identity.Resolution{Actor: identity.NoActor()})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireActionRejectsOwnerWithoutBusiness(t *testing.T) {
	res := identity.Resolution{Actor: identity.OwnerActor(uuid.New(), nil)}

	rec := serveGated(t, accesscontrol.ActionViewStock, res)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without a business, got %d", rec.Code)
	}
}
