package business

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marcovaldez/tiendapos-backend/pkg/db/models"
)

// Repository manages persistence for the tenant record.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, business *models.Business) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Business, error)
	GetByOwner(ctx context.Context, ownerUserID uuid.UUID) (*models.Business, error)
	Update(ctx context.Context, business *models.Business) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a business repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, business *models.Business) error {
	if business.ID == uuid.Nil {
		business.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(business).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Business, error) {
	var business models.Business
	if err := r.db.WithContext(ctx).First(&business, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &business, nil
}

func (r *repository) GetByOwner(ctx context.Context, ownerUserID uuid.UUID) (*models.Business, error) {
	var business models.Business
	if err := r.db.WithContext(ctx).First(&business, "owner_user_id = ?", ownerUserID).Error; err != nil {
		return nil, err
	}
	return &business, nil
}

func (r *repository) Update(ctx context.Context, business *models.Business) error {
	return r.db.WithContext(ctx).Save(business).Error
}
