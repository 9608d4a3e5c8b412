package controllers

import (
	"net/http"

	"github.com/marcovaldez/tiendapos-backend/api/responses"
	auditsvc "github.com/marcovaldez/tiendapos-backend/internal/audit"
	"github.com/marcovaldez/tiendapos-backend/pkg/logger"
)

// ListAuditEvents exposes the audit trail. Owner-only.
func ListAuditEvents(svc auditsvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		records, err := svc.ListEvents(r.Context(), actor, businessID, limit, offset)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, records)
	}
}
