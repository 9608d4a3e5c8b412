package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/marcovaldez/tiendapos-backend/api/responses"
	"github.com/marcovaldez/tiendapos-backend/api/validators"
	transfersvc "github.com/marcovaldez/tiendapos-backend/internal/transfers"
	"github.com/marcovaldez/tiendapos-backend/pkg/logger"
)

type transferRequest struct {
	ProductID    uuid.UUID `json:"product_id" validate:"required"`
	FromBranchID uuid.UUID `json:"from_branch_id" validate:"required"`
	ToBranchID   uuid.UUID `json:"to_branch_id" validate:"required"`
	Qty          int       `json:"qty" validate:"required,min=1"`
}

// ExecuteTransfer moves stock between branch pools atomically.
func ExecuteTransfer(svc transfersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, businessID, err := businessScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload transferRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		transfer, err := svc.ExecuteTransfer(r.Context(), actor, transfersvc.TransferInput{
			BusinessID:   businessID,
			ProductID:    payload.ProductID,
			FromBranchID: payload.FromBranchID,
			ToBranchID:   payload.ToBranchID,
			Qty:          payload.Qty,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, transfer)
	}
}

func GetTransfer(svc transfersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, businessID, err := businessScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		transferID, err := validators.ParsePathUUID(chi.URLParam(r, "transferID"), "transferID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		transfer, err := svc.GetTransfer(r.Context(), actor, businessID, transferID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, transfer)
	}
}

func ListTransfers(svc transfersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, businessID, err := businessScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, offset, err := parsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		transfers, err := svc.ListTransfers(r.Context(), actor, transfersvc.ListTransfersInput{
			BusinessID: businessID,
			Limit:      limit,
			Offset:     offset,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, transfers)
	}
}
