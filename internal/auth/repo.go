package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marcovaldez/tiendapos-backend/pkg/db/models"
)

// OwnerRepository manages persistence for owner accounts.
type OwnerRepository interface {
	Create(ctx context.Context, owner *models.OwnerUser) error
	FindByEmail(ctx context.Context, email string) (*models.OwnerUser, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.OwnerUser, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type ownerRepository struct {
	db *gorm.DB
}

// NewOwnerRepository returns an owner repository bound to the provided database.
func NewOwnerRepository(db *gorm.DB) OwnerRepository {
	return &ownerRepository{db: db}
}

func (r *ownerRepository) Create(ctx context.Context, owner *models.OwnerUser) error {
	if owner.ID == uuid.Nil {
		owner.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(owner).Error
}

func (r *ownerRepository) FindByEmail(ctx context.Context, email string) (*models.OwnerUser, error) {
	var owner models.OwnerUser
	if err := r.db.WithContext(ctx).First(&owner, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &owner, nil
}

func (r *ownerRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.OwnerUser, error) {
	var owner models.OwnerUser
	if err := r.db.WithContext(ctx).First(&owner, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &owner, nil
}

func (r *ownerRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.OwnerUser{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}
