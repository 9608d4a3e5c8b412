package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/marcovaldez/tiendapos-backend/pkg/config"
	"github.com/marcovaldez/tiendapos-backend/pkg/db/models"
	"github.com/marcovaldez/tiendapos-backend/pkg/enums"
	"github.com/marcovaldez/tiendapos-backend/pkg/logger"
)

// Event is one audit trail entry as seen by emitting code.
type Event struct {
	BusinessID   uuid.UUID
	BranchID     *uuid.UUID
	Action       enums.AuditAction
	ActorKind    enums.ActorKind
	ActorRef     *uuid.UUID
	ProductID    *uuid.UUID
	Delta        *int
	ResultingQty *int
	Details      string
}

// Emitter appends audit records asynchronously. Record never blocks and
// never fails the caller; a full queue drops the event with a warning.
type Emitter struct {
	queue   chan Event
	repo    Repository
	logg    *logger.Logger
	timeout time.Duration
}

// NewEmitter builds the emitter with the configured queue depth.
func NewEmitter(repo Repository, cfg config.AuditConfig, logg *logger.Logger) (*Emitter, error) {
	if repo == nil {
		return nil, fmt.Errorf("audit repository is required")
	}
	depth := cfg.QueueSize
	if depth <= 0 {
		depth = 256
	}
	timeout := cfg.WriteTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Emitter{
		queue:   make(chan Event, depth),
		repo:    repo,
		logg:    logg,
		timeout: timeout,
	}, nil
}

// Record enqueues an event. The calling operation has already succeeded;
// nothing here may undo or delay it.
func (e *Emitter) Record(ctx context.Context, event Event) {
	select {
	case e.queue <- event:
	default:
		if e.logg != nil {
			logCtx := e.logg.WithFields(ctx, map[string]any{
				"action":      event.Action.String(),
				"business_id": event.BusinessID.String(),
			})
			e.logg.Warn(logCtx, "audit.queue_full.dropped")
		}
	}
}

// Run consumes the queue until the context is cancelled, then drains
// whatever is left before returning. Intended for an errgroup in cmd/api.
func (e *Emitter) Run(ctx context.Context) error {
	for {
		select {
		case event := <-e.queue:
			e.write(event)
		case <-ctx.Done():
			e.drain()
			return nil
		}
	}
}

func (e *Emitter) drain() {
	for {
		select {
		case event := <-e.queue:
			e.write(event)
		default:
			return
		}
	}
}

func (e *Emitter) write(event Event) {
	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	record := &models.AuditRecord{
		BusinessID:   event.BusinessID,
		BranchID:     event.BranchID,
		Action:       event.Action,
		ActorKind:    event.ActorKind,
		ActorRef:     event.ActorRef,
		ProductID:    event.ProductID,
		Delta:        event.Delta,
		ResultingQty: event.ResultingQty,
		Details:      event.Details,
	}
	if err := e.repo.Create(ctx, record); err != nil && e.logg != nil {
		logCtx := e.logg.WithFields(ctx, map[string]any{
			"action":      event.Action.String(),
			"business_id": event.BusinessID.String(),
		})
		e.logg.Error(logCtx, "audit.write_failed", err)
	}
}
