package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/marcovaldez/tiendapos-backend/api/responses"
	"github.com/marcovaldez/tiendapos-backend/api/validators"
	financesvc "github.com/marcovaldez/tiendapos-backend/internal/finance"
	"github.com/marcovaldez/tiendapos-backend/pkg/logger"
)

type createSupplierRequest struct {
	Name    string  `json:"name" validate:"required"`
	Contact *string `json:"contact,omitempty"`
}

// CreateSupplier registers a vendor for the business.
func CreateSupplier(svc financesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, businessID, err := businessScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createSupplierRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		supplier, err := svc.CreateSupplier(r.Context(), actor, financesvc.CreateSupplierInput{
			BusinessID: businessID,
			Name:       payload.Name,
			Contact:    payload.Contact,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, supplier)
	}
}

func ListSuppliers(svc financesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, businessID, err := businessScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		suppliers, err := svc.ListSuppliers(r.Context(), actor, businessID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, suppliers)
	}
}

type recordPurchaseRequest struct {
	SupplierID    uuid.UUID  `json:"supplier_id" validate:"required"`
	ProductID     uuid.UUID  `json:"product_id" validate:"required"`
	BranchID      *uuid.UUID `json:"branch_id,omitempty"`
	Qty           int        `json:"qty" validate:"required,min=1"`
	UnitCostCents int64      `json:"unit_cost_cents" validate:"min=0"`
}

// RecordPurchase books received goods and credits the stock pool.
func RecordPurchase(svc financesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, businessID, err := businessScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload recordPurchaseRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		purchase, err := svc.RecordPurchase(r.Context(), actor, financesvc.PurchaseInput{
			BusinessID:    businessID,
			SupplierID:    payload.SupplierID,
			ProductID:     payload.ProductID,
			BranchID:      payload.BranchID,
			Qty:           payload.Qty,
			UnitCostCents: payload.UnitCostCents,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, purchase)
	}
}

func ListPurchases(svc financesvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		purchases, err := svc.ListPurchases(r.Context(), actor, financesvc.ListInput{
			BusinessID: businessID,
			Limit:      limit,
			Offset:     offset,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, purchases)
	}
}

type recordExpenseRequest struct {
	Concept     string `json:"concept" validate:"required"`
	Category    string `json:"category,omitempty"`
	AmountCents int64  `json:"amount_cents" validate:"min=0"`
}

// RecordExpense books an operating cost with no stock movement.
func RecordExpense(svc financesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, businessID, err := businessScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload recordExpenseRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		expense, err := svc.RecordExpense(r.Context(), actor, financesvc.ExpenseInput{
			BusinessID:  businessID,
			Concept:     payload.Concept,
			Category:    payload.Category,
			AmountCents: payload.AmountCents,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, expense)
	}
}

func ListExpenses(svc financesvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		expenses, err := svc.ListExpenses(r.Context(), actor, financesvc.ListInput{
			BusinessID: businessID,
			Limit:      limit,
			Offset:     offset,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, expenses)
	}
}
