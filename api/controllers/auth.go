package controllers

import (
	"net/http"

	"github.com/marcovaldez/tiendapos-backend/api/middleware"
	"github.com/marcovaldez/tiendapos-backend/api/responses"
	"github.com/marcovaldez/tiendapos-backend/api/validators"
	authsvc "github.com/marcovaldez/tiendapos-backend/internal/auth"
	"github.com/marcovaldez/tiendapos-backend/internal/identity"
	pkgerrors "github.com/marcovaldez/tiendapos-backend/pkg/errors"
	"github.com/marcovaldez/tiendapos-backend/pkg/logger"
)

// OwnerRegister creates an owner account and signs it in.
func OwnerRegister(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload authsvc.RegisterRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Register(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

func OwnerLogin(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload authsvc.LoginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func OwnerRefresh(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload authsvc.RefreshRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Refresh(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// OwnerLogout revokes the refresh session behind the presented token.
func OwnerLogout(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := middleware.ResolutionFromContext(r.Context())
		if res.OwnerAccessID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "owner credentials required"))
			return
		}
		if err := svc.Logout(r.Context(), res.OwnerAccessID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}

// SessionClear tears down every credential the caller presented, whichever
// kinds resolved. Always leaves the caller unauthenticated.
func SessionClear(store *identity.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := middleware.ResolutionFromContext(r.Context())
		store.Set(res)
		if err := store.ClearAll(r.Context()); err != nil {
			if logg != nil {
				logg.Warn(logg.WithField(r.Context(), "reason", err.Error()), "session.clear_all.partial")
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "cleared"})
	}
}
