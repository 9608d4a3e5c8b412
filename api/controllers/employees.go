package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/marcovaldez/tiendapos-backend/api/middleware"
	"github.com/marcovaldez/tiendapos-backend/api/responses"
	"github.com/marcovaldez/tiendapos-backend/api/validators"
	employeesvc "github.com/marcovaldez/tiendapos-backend/internal/employees"
	"github.com/marcovaldez/tiendapos-backend/pkg/enums"
	pkgerrors "github.com/marcovaldez/tiendapos-backend/pkg/errors"
	"github.com/marcovaldez/tiendapos-backend/pkg/logger"
)

type employeeLoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

// EmployeeLogin opens a redis-backed session for a staff member.
func EmployeeLogin(svc employeesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload employeeLoginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.Login(r.Context(), payload.Identifier, payload.Password)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, session)
	}
}

// EmployeeLogout deletes the session presented in the request headers.
func EmployeeLogout(svc employeesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := middleware.ResolutionFromContext(r.Context())
		if res.EmployeeSessionID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "employee session required"))
			return
		}
		if err := svc.Logout(r.Context(), res.EmployeeSessionID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}

type verifyPINRequest struct {
	PIN string `json:"pin" validate:"required"`
}

// VerifyPIN starts a shift on the calling terminal. The PIN alone picks
// the employee out of the terminal's branch.
func VerifyPIN(svc employeesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := middleware.ResolutionFromContext(r.Context())
		if res.TerminalSessionID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "terminal session required"))
			return
		}

		var payload verifyPINRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shift, err := svc.VerifyPIN(r.Context(), res.TerminalSessionID, payload.PIN)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, shift)
	}
}

// EndShift removes the shift layer, returning the terminal to its
// anonymous browse-only state.
func EndShift(svc employeesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := middleware.ResolutionFromContext(r.Context())
		if res.TerminalSessionID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "terminal session required"))
			return
		}
		if err := svc.EndShift(r.Context(), res.TerminalSessionID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "shift_ended"})
	}
}

type createEmployeeRequest struct {
	BranchID   uuid.UUID `json:"branch_id" validate:"required"`
	Name       string    `json:"name" validate:"required"`
	Identifier string    `json:"identifier" validate:"required"`
	Password   string    `json:"password" validate:"required,min=8"`
	PIN        *string   `json:"pin,omitempty"`
	Role       string    `json:"role" validate:"required"`

	CanSell           bool `json:"can_sell"`
	CanViewStock      bool `json:"can_view_stock"`
	CanManageProducts bool `json:"can_manage_products"`
	CanViewReports    bool `json:"can_view_reports"`
}

func CreateEmployee(svc employeesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, businessID, err := businessScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createEmployeeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		role, err := enums.ParseEmployeeRole(strings.TrimSpace(payload.Role))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role"))
			return
		}

		employee, err := svc.CreateEmployee(r.Context(), actor, employeesvc.CreateEmployeeInput{
			BusinessID: businessID,
			BranchID:   payload.BranchID,
			Name:       payload.Name,
			Identifier: payload.Identifier,
			Password:   payload.Password,
			PIN:        payload.PIN,
			Role:       role,

			CanSell:           payload.CanSell,
			CanViewStock:      payload.CanViewStock,
			CanManageProducts: payload.CanManageProducts,
			CanViewReports:    payload.CanViewReports,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, employeeSummaryFromModel(employee))
	}
}

type updateEmployeeRequest struct {
	BranchID *uuid.UUID `json:"branch_id,omitempty"`
	Name     *string    `json:"name,omitempty"`
	Password *string    `json:"password,omitempty" validate:"omitempty,min=8"`
	PIN      *string    `json:"pin,omitempty"`
	Role     *string    `json:"role,omitempty"`

	CanSell           *bool `json:"can_sell,omitempty"`
	CanViewStock      *bool `json:"can_view_stock,omitempty"`
	CanManageProducts *bool `json:"can_manage_products,omitempty"`
	CanViewReports    *bool `json:"can_view_reports,omitempty"`
	Active            *bool `json:"active,omitempty"`
}

func UpdateEmployee(svc employeesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, businessID, err := businessScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		employeeID, err := validators.ParsePathUUID(chi.URLParam(r, "employeeID"), "employeeID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateEmployeeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := employeesvc.UpdateEmployeeInput{
			BusinessID: businessID,
			EmployeeID: employeeID,
			BranchID:   payload.BranchID,
			Name:       payload.Name,
			Password:   payload.Password,
			PIN:        payload.PIN,

			CanSell:           payload.CanSell,
			CanViewStock:      payload.CanViewStock,
			CanManageProducts: payload.CanManageProducts,
			CanViewReports:    payload.CanViewReports,
			Active:            payload.Active,
		}
		if payload.Role != nil {
			role, err := enums.ParseEmployeeRole(strings.TrimSpace(*payload.Role))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role"))
				return
			}
			input.Role = &role
		}

		employee, err := svc.UpdateEmployee(r.Context(), actor, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, employeeSummaryFromModel(employee))
	}
}

func DeactivateEmployee(svc employeesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, businessID, err := businessScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		employeeID, err := validators.ParsePathUUID(chi.URLParam(r, "employeeID"), "employeeID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeactivateEmployee(r.Context(), actor, businessID, employeeID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deactivated"})
	}
}

func ListEmployees(svc employeesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, businessID, err := businessScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		employees, err := svc.ListEmployees(r.Context(), actor, businessID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, employeeSummaries(employees))
	}
}
