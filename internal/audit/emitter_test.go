package audit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marcovaldez/tiendapos-backend/pkg/config"
	"github.com/marcovaldez/tiendapos-backend/pkg/db/models"
	"github.com/marcovaldez/tiendapos-backend/pkg/enums"
)

type fakeRepository struct {
	mu       sync.Mutex
	records  []*models.AuditRecord
	createFn func(ctx context.Context, record *models.AuditRecord) error
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Create(ctx context.Context, record *models.AuditRecord) error {
	if f.createFn != nil {
		return f.createFn(ctx, record)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, record)
	return nil
}

func (f *fakeRepository) ListByBusiness(ctx context.Context, businessID uuid.UUID, limit, offset int) ([]models.AuditRecord, error) {
	return nil, nil
}

func (f *fakeRepository) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

func TestEmitterWritesQueuedEvents(t *testing.T) {
	repo := &fakeRepository{}
	emitter, err := NewEmitter(repo, config.AuditConfig{QueueSize: 16, WriteTimeout: time.Second}, nil)
	if err != nil {
		t.Fatalf("new emitter: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		emitter.Run(ctx)
	}()

	delta := -3
	emitter.Record(context.Background(), Event{
		BusinessID: uuid.New(),
		Action:     enums.AuditActionSale,
		ActorKind:  enums.ActorKindEmployee,
		Delta:      &delta,
	})

	deadline := time.After(2 * time.Second)
	for repo.count() == 0 {
		select {
		case <-deadline:
			t.Fatal("event was never written")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	<-done
}

func TestEmitterDrainsOnShutdown(t *testing.T) {
	repo := &fakeRepository{}
	emitter, err := NewEmitter(repo, config.AuditConfig{QueueSize: 16, WriteTimeout: time.Second}, nil)
	if err != nil {
		t.Fatalf("new emitter: %v", err)
	}

	for i := 0; i < 5; i++ {
		emitter.Record(context.Background(), Event{
			BusinessID: uuid.New(),
			Action:     enums.AuditActionAdjustment,
			ActorKind:  enums.ActorKindOwner,
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := emitter.Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}

	if repo.count() != 5 {
		t.Fatalf("expected all 5 events drained, got %d", repo.count())
	}
}

func TestEmitterDropsWhenQueueFull(t *testing.T) {
	repo := &fakeRepository{}
	emitter, err := NewEmitter(repo, config.AuditConfig{QueueSize: 1, WriteTimeout: time.Second}, nil)
	if err != nil {
		t.Fatalf("new emitter: %v", err)
	}

	// No consumer running; the second record must not block.
	done := make(chan struct{})
	go func() {
		defer close(done)
		emitter.Record(context.Background(), Event{BusinessID: uuid.New(), Action: enums.AuditActionSale, ActorKind: enums.ActorKindOwner})
		emitter.Record(context.Background(), Event{BusinessID: uuid.New(), Action: enums.AuditActionSale, ActorKind: enums.ActorKindOwner})
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Record blocked on a full queue")
	}
}
