package employees

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marcovaldez/tiendapos-backend/pkg/db/models"
)

// Repository manages persistence for staff records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, employee *models.Employee) error
	GetByID(ctx context.Context, businessID, employeeID uuid.UUID) (*models.Employee, error)
	GetByIdentifier(ctx context.Context, identifier string) (*models.Employee, error)
	ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]models.Employee, error)
	ListActiveByBranch(ctx context.Context, branchID uuid.UUID) ([]models.Employee, error)
	Update(ctx context.Context, employee *models.Employee) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an employee repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, employee *models.Employee) error {
	if employee.ID == uuid.Nil {
		employee.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(employee).Error
}

func (r *repository) GetByID(ctx context.Context, businessID, employeeID uuid.UUID) (*models.Employee, error) {
	var employee models.Employee
	if err := r.db.WithContext(ctx).
		First(&employee, "id = ? AND business_id = ?", employeeID, businessID).Error; err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *repository) GetByIdentifier(ctx context.Context, identifier string) (*models.Employee, error) {
	var employee models.Employee
	if err := r.db.WithContext(ctx).
		First(&employee, "identifier = ?", identifier).Error; err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *repository) ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]models.Employee, error) {
	var staff []models.Employee
	if err := r.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Order("name ASC").
		Find(&staff).Error; err != nil {
		return nil, err
	}
	return staff, nil
}

func (r *repository) ListActiveByBranch(ctx context.Context, branchID uuid.UUID) ([]models.Employee, error) {
	var staff []models.Employee
	if err := r.db.WithContext(ctx).
		Where("branch_id = ? AND active = ?", branchID, true).
		Find(&staff).Error; err != nil {
		return nil, err
	}
	return staff, nil
}

func (r *repository) Update(ctx context.Context, employee *models.Employee) error {
	return r.db.WithContext(ctx).Save(employee).Error
}
