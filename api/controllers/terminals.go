package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/marcovaldez/tiendapos-backend/api/middleware"
	"github.com/marcovaldez/tiendapos-backend/api/responses"
	"github.com/marcovaldez/tiendapos-backend/api/validators"
	terminalsvc "github.com/marcovaldez/tiendapos-backend/internal/terminals"
	pkgerrors "github.com/marcovaldez/tiendapos-backend/pkg/errors"
	"github.com/marcovaldez/tiendapos-backend/pkg/logger"
)

type terminalLoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Code       string `json:"code" validate:"required"`
}

// TerminalLogin pairs a POS device using its identifier and code.
func TerminalLogin(svc terminalsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload terminalLoginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.Login(r.Context(), payload.Identifier, payload.Code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, session)
	}
}

func TerminalLogout(svc terminalsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := middleware.ResolutionFromContext(r.Context())
		if res.TerminalSessionID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "terminal session required"))
			return
		}
		if err := svc.Logout(r.Context(), res.TerminalSessionID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}

type registerTerminalRequest struct {
	BranchID   uuid.UUID `json:"branch_id" validate:"required"`
	Name       string    `json:"name" validate:"required"`
	Identifier string    `json:"identifier" validate:"required"`
}

// RegisterTerminal creates a device and returns its pairing code once.
func RegisterTerminal(svc terminalsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, businessID, err := businessScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload registerTerminalRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		terminal, code, err := svc.RegisterTerminal(r.Context(), actor, terminalsvc.RegisterTerminalInput{
			BusinessID: businessID,
			BranchID:   payload.BranchID,
			Name:       payload.Name,
			Identifier: payload.Identifier,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, registeredTerminalResponse{
			Terminal:    terminalSummaryFromModel(terminal),
			PairingCode: code,
		})
	}
}

// RotateTerminalCode replaces the pairing code, invalidating the old one.
func RotateTerminalCode(svc terminalsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, businessID, err := businessScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		terminalID, err := validators.ParsePathUUID(chi.URLParam(r, "terminalID"), "terminalID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		code, err := svc.RotateCode(r.Context(), actor, businessID, terminalID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"pairing_code": code})
	}
}

type updateTerminalRequest struct {
	BranchID *uuid.UUID `json:"branch_id,omitempty"`
	Name     *string    `json:"name,omitempty"`
	Active   *bool      `json:"active,omitempty"`
}

func UpdateTerminal(svc terminalsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, businessID, err := businessScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		terminalID, err := validators.ParsePathUUID(chi.URLParam(r, "terminalID"), "terminalID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateTerminalRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		terminal, err := svc.UpdateTerminal(r.Context(), actor, terminalsvc.UpdateTerminalInput{
			BusinessID: businessID,
			TerminalID: terminalID,
			BranchID:   payload.BranchID,
			Name:       payload.Name,
			Active:     payload.Active,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, terminalSummaryFromModel(terminal))
	}
}

func ListTerminals(svc terminalsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, businessID, err := businessScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		terminals, err := svc.ListTerminals(r.Context(), actor, businessID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, terminalSummaries(terminals))
	}
}
