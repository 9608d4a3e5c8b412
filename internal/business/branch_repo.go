package business

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marcovaldez/tiendapos-backend/pkg/db/models"
)

// BranchRepository manages persistence for branches.
type BranchRepository interface {
	WithTx(tx *gorm.DB) BranchRepository
	Create(ctx context.Context, branch *models.Branch) error
	GetByID(ctx context.Context, businessID, branchID uuid.UUID) (*models.Branch, error)
	ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]models.Branch, error)
	Update(ctx context.Context, branch *models.Branch) error
	Delete(ctx context.Context, businessID, branchID uuid.UUID) error
}

type branchRepository struct {
	db *gorm.DB
}

// NewBranchRepository returns a branch repository bound to the provided database.
func NewBranchRepository(db *gorm.DB) BranchRepository {
	return &branchRepository{db: db}
}

func (r *branchRepository) WithTx(tx *gorm.DB) BranchRepository {
	if tx == nil {
		return r
	}
	return &branchRepository{db: tx}
}

func (r *branchRepository) Create(ctx context.Context, branch *models.Branch) error {
	if branch.ID == uuid.Nil {
		branch.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(branch).Error
}

func (r *branchRepository) GetByID(ctx context.Context, businessID, branchID uuid.UUID) (*models.Branch, error) {
	var branch models.Branch
	if err := r.db.WithContext(ctx).
		First(&branch, "id = ? AND business_id = ?", branchID, businessID).Error; err != nil {
		return nil, err
	}
	return &branch, nil
}

func (r *branchRepository) ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]models.Branch, error) {
	var branches []models.Branch
	if err := r.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Order("name ASC").
		Find(&branches).Error; err != nil {
		return nil, err
	}
	return branches, nil
}

func (r *branchRepository) Update(ctx context.Context, branch *models.Branch) error {
	return r.db.WithContext(ctx).Save(branch).Error
}

func (r *branchRepository) Delete(ctx context.Context, businessID, branchID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND business_id = ?", branchID, businessID).
		Delete(&models.Branch{}).Error
}
