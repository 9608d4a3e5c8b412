package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/marcovaldez/tiendapos-backend/api/responses"
	"github.com/marcovaldez/tiendapos-backend/api/validators"
	productsvc "github.com/marcovaldez/tiendapos-backend/internal/products"
	pkgerrors "github.com/marcovaldez/tiendapos-backend/pkg/errors"
	"github.com/marcovaldez/tiendapos-backend/pkg/logger"
)

type createProductRequest struct {
	Name            string         `json:"name" validate:"required"`
	Category        *string        `json:"category,omitempty"`
	Barcode         *string        `json:"barcode,omitempty"`
	UnitPriceCents  int64          `json:"unit_price_cents" validate:"min=0"`
	SharedQty       int            `json:"shared_qty,omitempty" validate:"omitempty,min=0"`
	PerBranchStocks map[string]int `json:"per_branch_stocks,omitempty"`
}

func CreateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, businessID, err := businessScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		perBranch, err := parseBranchStocks(payload.PerBranchStocks)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.CreateProduct(r.Context(), actor, productsvc.CreateProductInput{
			BusinessID:      businessID,
			Name:            payload.Name,
			Category:        payload.Category,
			Barcode:         payload.Barcode,
			UnitPriceCents:  payload.UnitPriceCents,
			SharedQty:       payload.SharedQty,
			PerBranchStocks: perBranch,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

type updateProductRequest struct {
	Name           *string `json:"name,omitempty"`
	Category       *string `json:"category,omitempty"`
	Barcode        *string `json:"barcode,omitempty"`
	UnitPriceCents *int64  `json:"unit_price_cents,omitempty" validate:"omitempty,min=0"`
}

func UpdateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.UpdateProduct(r.Context(), actor, productsvc.UpdateProductInput{
			BusinessID:     businessID,
			ProductID:      productID,
			Name:           payload.Name,
			Category:       payload.Category,
			Barcode:        payload.Barcode,
			UnitPriceCents: payload.UnitPriceCents,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func DeleteProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		if err := svc.DeleteProduct(r.Context(), actor, businessID, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func GetProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		product, err := svc.GetProduct(r.Context(), actor, businessID, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// ListProducts supports name-prefix or barcode search plus a category filter.
func ListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		filter := productsvc.ListFilter{
			Search: strings.TrimSpace(r.URL.Query().Get("search")),
			Limit:  limit,
			Offset: offset,
		}
		if category := strings.TrimSpace(r.URL.Query().Get("category")); category != "" {
			filter.Category = &category
		}

		products, err := svc.ListProducts(r.Context(), actor, businessID, filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}

func parseBranchStocks(raw map[string]int) (map[uuid.UUID]int, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	parsed := make(map[uuid.UUID]int, len(raw))
	for key, qty := range raw {
		id, err := uuid.Parse(key)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "branch keys must be uuids").WithDetails(map[string]any{"branch_id": key})
		}
		if qty < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock quantities cannot be negative").WithDetails(map[string]any{"branch_id": key})
		}
		parsed[id] = qty
	}
	return parsed, nil
}
