package sales

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marcovaldez/tiendapos-backend/pkg/db/models"
)

// Repository manages persistence for sales and their line items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, sale *models.Sale) error
	GetByID(ctx context.Context, businessID, saleID uuid.UUID) (*models.Sale, error)
	ListByBusiness(ctx context.Context, businessID uuid.UUID, branchID *uuid.UUID, limit, offset int) ([]models.Sale, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a sales repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, sale *models.Sale) error {
	if sale.ID == uuid.Nil {
		sale.ID = uuid.New()
	}
	for i := range sale.Items {
		if sale.Items[i].ID == uuid.Nil {
			sale.Items[i].ID = uuid.New()
		}
		sale.Items[i].SaleID = sale.ID
	}
	return r.db.WithContext(ctx).Create(sale).Error
}

func (r *repository) GetByID(ctx context.Context, businessID, saleID uuid.UUID) (*models.Sale, error) {
	var sale models.Sale
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&sale, "id = ? AND business_id = ?", saleID, businessID).Error; err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *repository) ListByBusiness(ctx context.Context, businessID uuid.UUID, branchID *uuid.UUID, limit, offset int) ([]models.Sale, error) {
	query := r.db.WithContext(ctx).
		Preload("Items").
		Where("business_id = ?", businessID).
		Order("created_at DESC")
	if branchID != nil {
		query = query.Where("branch_id = ?", *branchID)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var sales []models.Sale
	if err := query.Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}
