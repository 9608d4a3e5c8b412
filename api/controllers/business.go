package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/marcovaldez/tiendapos-backend/api/middleware"
	"github.com/marcovaldez/tiendapos-backend/api/responses"
	"github.com/marcovaldez/tiendapos-backend/api/validators"
	businesssvc "github.com/marcovaldez/tiendapos-backend/internal/business"
	"github.com/marcovaldez/tiendapos-backend/pkg/enums"
	pkgerrors "github.com/marcovaldez/tiendapos-backend/pkg/errors"
	"github.com/marcovaldez/tiendapos-backend/pkg/logger"
)

type onboardRequest struct {
	Name           string   `json:"name" validate:"required"`
	Currency       string   `json:"currency,omitempty"`
	TaxID          *string  `json:"tax_id,omitempty"`
	Address        *string  `json:"address,omitempty"`
	Phone          *string  `json:"phone,omitempty"`
	ContactEmail   *string  `json:"contact_email,omitempty" validate:"omitempty,email"`
	Website        *string  `json:"website,omitempty"`
	PaymentMethods []string `json:"payment_methods,omitempty"`
}

// OnboardBusiness creates the caller's business. Owner credentials only;
// this is the one business-scoped operation that runs without one.
func OnboardBusiness(svc businesssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := middleware.ActorFromContext(r.Context())
		if actor.Kind != enums.ActorKindOwner || actor.OwnerID == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "owner credentials required"))
			return
		}

		var payload onboardRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := businesssvc.OnboardInput{
			Name:           payload.Name,
			TaxID:          payload.TaxID,
			Address:        payload.Address,
			Phone:          payload.Phone,
			ContactEmail:   payload.ContactEmail,
			Website:        payload.Website,
			PaymentMethods: payload.PaymentMethods,
		}
		if raw := strings.TrimSpace(payload.Currency); raw != "" {
			currency, err := enums.ParseCurrency(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid currency"))
				return
			}
			input.Currency = currency
		}

		business, err := svc.Onboard(r.Context(), *actor.OwnerID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, business)
	}
}

func GetBusiness(svc businesssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, businessID, err := businessScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		business, err := svc.GetBusiness(r.Context(), actor, businessID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, business)
	}
}

type updateBusinessRequest struct {
	Name           *string  `json:"name,omitempty"`
	Currency       *string  `json:"currency,omitempty"`
	TaxID          *string  `json:"tax_id,omitempty"`
	Address        *string  `json:"address,omitempty"`
	Phone          *string  `json:"phone,omitempty"`
	ContactEmail   *string  `json:"contact_email,omitempty" validate:"omitempty,email"`
	Website        *string  `json:"website,omitempty"`
	PaymentMethods []string `json:"payment_methods,omitempty"`
}

func UpdateBusiness(svc businesssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, businessID, err := businessScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateBusinessRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := businesssvc.UpdateProfileInput{
			Name:           payload.Name,
			TaxID:          payload.TaxID,
			Address:        payload.Address,
			Phone:          payload.Phone,
			ContactEmail:   payload.ContactEmail,
			Website:        payload.Website,
			PaymentMethods: payload.PaymentMethods,
		}
		if payload.Currency != nil {
			currency, err := enums.ParseCurrency(strings.TrimSpace(*payload.Currency))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid currency"))
				return
			}
			input.Currency = &currency
		}

		business, err := svc.UpdateProfile(r.Context(), actor, businessID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, business)
	}
}

type changeModeRequest struct {
	Mode string `json:"mode" validate:"required"`
}

// ChangeInventoryMode switches between shared and per-branch stock.
func ChangeInventoryMode(svc businesssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, businessID, err := businessScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload changeModeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		mode, err := enums.ParseInventoryMode(strings.TrimSpace(payload.Mode))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid inventory mode"))
			return
		}

		business, err := svc.ChangeInventoryMode(r.Context(), actor, businessID, mode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, business)
	}
}

type branchRequest struct {
	Name    string  `json:"name" validate:"required"`
	Address *string `json:"address,omitempty"`
	Phone   *string `json:"phone,omitempty"`
}

func CreateBranch(svc businesssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, businessID, err := businessScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload branchRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		branch, err := svc.CreateBranch(r.Context(), actor, businessID, businesssvc.BranchInput{
			Name:    payload.Name,
			Address: payload.Address,
			Phone:   payload.Phone,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, branch)
	}
}

func UpdateBranch(svc businesssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, businessID, err := businessScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		branchID, err := validators.ParsePathUUID(chi.URLParam(r, "branchID"), "branchID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload branchRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		branch, err := svc.UpdateBranch(r.Context(), actor, businessID, branchID, businesssvc.BranchInput{
			Name:    payload.Name,
			Address: payload.Address,
			Phone:   payload.Phone,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, branch)
	}
}

func DeleteBranch(svc businesssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, businessID, err := businessScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		branchID, err := validators.ParsePathUUID(chi.URLParam(r, "branchID"), "branchID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteBranch(r.Context(), actor, businessID, branchID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func ListBranches(svc businesssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, businessID, err := businessScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		branches, err := svc.ListBranches(r.Context(), actor, businessID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, branches)
	}
}
