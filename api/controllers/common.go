package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/marcovaldez/tiendapos-backend/api/middleware"
	"github.com/marcovaldez/tiendapos-backend/api/validators"
	"github.com/marcovaldez/tiendapos-backend/internal/identity"
	pkgerrors "github.com/marcovaldez/tiendapos-backend/pkg/errors"
)

// businessScope returns the resolved actor and the business it operates
// in. Handlers for business-scoped routes start here; onboarding and the
// login endpoints are the only surfaces that work without a business.
func businessScope(r *http.Request) (identity.Actor, uuid.UUID, error) {
	actor := middleware.ActorFromContext(r.Context())
	if !actor.IsAuthenticated() {
		return actor, uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if actor.BusinessID == nil {
		return actor, uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "no business in scope")
	}
	return actor, *actor.BusinessID, nil
}

func parsePagination(r *http.Request) (limit, offset int, err error) {
	limit, err = validators.ParseQueryInt(r, "limit", 50, 1, 200)
	if err != nil {
		return 0, 0, err
	}
	offset, err = validators.ParseQueryInt(r, "offset", 0, 0, 1<<30)
	if err != nil {
		return 0, 0, err
	}
	return limit, offset, nil
}
