package audit

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/marcovaldez/tiendapos-backend/internal/accesscontrol"
	"github.com/marcovaldez/tiendapos-backend/internal/identity"
	"github.com/marcovaldez/tiendapos-backend/pkg/db/models"
	pkgerrors "github.com/marcovaldez/tiendapos-backend/pkg/errors"
)

// Service exposes the audit trail for review. Writing goes through the
// Emitter; this is the read side, restricted to owners.
type Service interface {
	ListEvents(ctx context.Context, actor identity.Actor, businessID uuid.UUID, limit, offset int) ([]models.AuditRecord, error)
}

type readService struct {
	repo Repository
}

// NewService wires the audit read service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("audit repository is required")
	}
	return &readService{repo: repo}, nil
}

func (s *readService) ListEvents(ctx context.Context, actor identity.Actor, businessID uuid.UUID, limit, offset int) ([]models.AuditRecord, error) {
	if err := accesscontrol.Authorize(actor, accesscontrol.ActionViewAudit, accesscontrol.Resource{BusinessID: businessID}); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	records, err := s.repo.ListByBusiness(ctx, businessID, limit, offset)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list audit records")
	}
	return records, nil
}
