package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/marcovaldez/tiendapos-backend/api/responses"
	"github.com/marcovaldez/tiendapos-backend/api/validators"
	inventorysvc "github.com/marcovaldez/tiendapos-backend/internal/inventory"
	"github.com/marcovaldez/tiendapos-backend/pkg/logger"
)

type adjustStockRequest struct {
	ProductID uuid.UUID  `json:"product_id" validate:"required"`
	BranchID  *uuid.UUID `json:"branch_id,omitempty"`
	NewQty    int        `json:"new_qty" validate:"min=0"`
	Reason    string     `json:"reason,omitempty"`
}

// AdjustStock sets an absolute quantity, typically after a physical count.
func AdjustStock(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, businessID, err := businessScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload adjustStockRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		level, err := svc.AdjustStock(r.Context(), actor, inventorysvc.AdjustStockInput{
			BusinessID: businessID,
			ProductID:  payload.ProductID,
			BranchID:   payload.BranchID,
			NewQty:     payload.NewQty,
			Reason:     payload.Reason,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, level)
	}
}

type receiveStockRequest struct {
	ProductID uuid.UUID  `json:"product_id" validate:"required"`
	BranchID  *uuid.UUID `json:"branch_id,omitempty"`
	Qty       int        `json:"qty" validate:"required,min=1"`
	Reason    string     `json:"reason,omitempty"`
}

// ReceiveStock records incoming goods as a positive delta.
func ReceiveStock(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, businessID, err := businessScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload receiveStockRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		level, err := svc.ReceiveStock(r.Context(), actor, inventorysvc.ReceiveStockInput{
			BusinessID: businessID,
			ProductID:  payload.ProductID,
			BranchID:   payload.BranchID,
			Qty:        payload.Qty,
			Reason:     payload.Reason,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, level)
	}
}

// GetStockLevel reads the effective quantity under the current mode.
func GetStockLevel(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, businessID, err := businessScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := validators.ParsePathUUID(chi.URLParam(r, "productID"), "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		branchID, err := validators.ParseQueryUUID(r, "branch_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		level, err := svc.GetLevel(r.Context(), actor, businessID, productID, branchID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, level)
	}
}

// ListLowStock reports products at or below a threshold.
func ListLowStock(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, businessID, err := businessScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		threshold, err := validators.ParseQueryInt(r, "threshold", 5, 0, 1<<30)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		branchID, err := validators.ParseQueryUUID(r, "branch_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		report, err := svc.ListLowStock(r.Context(), actor, inventorysvc.LowStockInput{
			BusinessID: businessID,
			BranchID:   branchID,
			Threshold:  threshold,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}
