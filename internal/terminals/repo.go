package terminals

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marcovaldez/tiendapos-backend/pkg/db/models"
)

// Repository manages persistence for POS terminal identities.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, terminal *models.Terminal) error
	GetByID(ctx context.Context, businessID, terminalID uuid.UUID) (*models.Terminal, error)
	GetByIdentifier(ctx context.Context, identifier string) (*models.Terminal, error)
	ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]models.Terminal, error)
	Update(ctx context.Context, terminal *models.Terminal) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a terminal repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, terminal *models.Terminal) error {
	if terminal.ID == uuid.Nil {
		terminal.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(terminal).Error
}

func (r *repository) GetByID(ctx context.Context, businessID, terminalID uuid.UUID) (*models.Terminal, error) {
	var terminal models.Terminal
	if err := r.db.WithContext(ctx).
		First(&terminal, "id = ? AND business_id = ?", terminalID, businessID).Error; err != nil {
		return nil, err
	}
	return &terminal, nil
}

func (r *repository) GetByIdentifier(ctx context.Context, identifier string) (*models.Terminal, error) {
	var terminal models.Terminal
	if err := r.db.WithContext(ctx).
		First(&terminal, "identifier = ?", identifier).Error; err != nil {
		return nil, err
	}
	return &terminal, nil
}

func (r *repository) ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]models.Terminal, error) {
	var terminals []models.Terminal
	if err := r.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Order("name ASC").
		Find(&terminals).Error; err != nil {
		return nil, err
	}
	return terminals, nil
}

func (r *repository) Update(ctx context.Context, terminal *models.Terminal) error {
	return r.db.WithContext(ctx).Save(terminal).Error
}
