package products

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marcovaldez/tiendapos-backend/pkg/db/models"
)

// Repository manages persistence for the product catalog.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, businessID, productID uuid.UUID) (*models.Product, error)
	GetByBarcode(ctx context.Context, businessID uuid.UUID, barcode string) (*models.Product, error)
	List(ctx context.Context, businessID uuid.UUID, filter ListFilter) ([]models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, businessID, productID uuid.UUID) error
}

// ListFilter narrows the catalog listing. Search matches the name by
// prefix and the barcode exactly.
type ListFilter struct {
	Search   string
	Category *string
	Limit    int
	Offset   int
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a product repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *repository) GetByID(ctx context.Context, businessID, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).
		First(&product, "id = ? AND business_id = ?", productID, businessID).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) GetByBarcode(ctx context.Context, businessID uuid.UUID, barcode string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).
		First(&product, "barcode = ? AND business_id = ?", barcode, businessID).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) List(ctx context.Context, businessID uuid.UUID, filter ListFilter) ([]models.Product, error) {
	query := r.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Order("name ASC")
	if filter.Search != "" {
		query = query.Where("name LIKE ? OR barcode = ?", filter.Search+"%", filter.Search)
	}
	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repository) Update(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

func (r *repository) Delete(ctx context.Context, businessID, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND business_id = ?", productID, businessID).
		Delete(&models.Product{}).Error
}
