package inventory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/marcovaldez/tiendapos-backend/pkg/db/models"
	pkgerrors "github.com/marcovaldez/tiendapos-backend/pkg/errors"
)

// StockRepository applies stock deltas as single conditional statements.
// The database enforces non-negativity; there is no read-then-write window.
type StockRepository interface {
	WithTx(tx *gorm.DB) StockRepository

	// AddShared applies a delta to a product's shared pool. Returns the
	// resulting quantity, or INSUFFICIENT_STOCK when the guard rejects it.
	AddShared(ctx context.Context, businessID, productID uuid.UUID, delta int) (int, error)

	// AddBranch applies a delta to a per-branch pool. Non-negative deltas
	// upsert a missing row; negative deltas against a missing row fail as
	// INSUFFICIENT_STOCK because an absent row holds zero.
	AddBranch(ctx context.Context, productID, branchID uuid.UUID, delta int) (int, error)

	// SetShared overwrites the shared pool with an absolute value.
	SetShared(ctx context.Context, businessID, productID uuid.UUID, qty int) error

	// SetBranch overwrites a per-branch pool, creating the row if absent.
	SetBranch(ctx context.Context, productID, branchID uuid.UUID, qty int) error

	GetBranchStocks(ctx context.Context, productID uuid.UUID) ([]models.BranchStock, error)

	// ListLowShared returns shared-mode products at or below the threshold.
	ListLowShared(ctx context.Context, businessID uuid.UUID, threshold int) ([]models.Product, error)

	// ListLowBranch returns per-branch rows at or below the threshold for
	// one branch, scoped to the business through the product table.
	ListLowBranch(ctx context.Context, businessID, branchID uuid.UUID, threshold int) ([]models.BranchStock, error)
}

type stockRepository struct {
	db *gorm.DB
}

// NewStockRepository returns a stock repository bound to the database.
func NewStockRepository(db *gorm.DB) StockRepository {
	return &stockRepository{db: db}
}

func (r *stockRepository) WithTx(tx *gorm.DB) StockRepository {
	if tx == nil {
		return r
	}
	return &stockRepository{db: tx}
}

func (r *stockRepository) AddShared(ctx context.Context, businessID, productID uuid.UUID, delta int) (int, error) {
	// RETURNING folds the guard, the write and the resulting quantity
	// into one statement.
	var product models.Product
	result := r.db.WithContext(ctx).Model(&product).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "shared_qty"}}}).
		Where("id = ? AND business_id = ? AND shared_qty + ? >= 0", productID, businessID, delta).
		UpdateColumn("shared_qty", gorm.Expr("shared_qty + ?", delta))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, r.sharedRejection(ctx, businessID, productID, delta)
	}
	return product.SharedQty, nil
}

// sharedRejection distinguishes a missing product from a guard rejection.
func (r *stockRepository) sharedRejection(ctx context.Context, businessID, productID uuid.UUID, delta int) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND business_id = ?", productID, businessID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return insufficient(productID, delta)
}

func (r *stockRepository) AddBranch(ctx context.Context, productID, branchID uuid.UUID, delta int) (int, error) {
	if delta >= 0 {
		stock := models.BranchStock{ProductID: productID, BranchID: branchID, Qty: delta}
		err := r.db.WithContext(ctx).Clauses(
			clause.OnConflict{
				Columns: []clause.Column{{Name: "product_id"}, {Name: "branch_id"}},
				DoUpdates: clause.Assignments(map[string]any{
					"qty": gorm.Expr("qty + ?", delta),
				}),
			},
			clause.Returning{Columns: []clause.Column{{Name: "qty"}}},
		).Create(&stock).Error
		if err != nil {
			return 0, err
		}
		return stock.Qty, nil
	}

	var stock models.BranchStock
	result := r.db.WithContext(ctx).Model(&stock).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "qty"}}}).
		Where("product_id = ? AND branch_id = ? AND qty + ? >= 0", productID, branchID, delta).
		UpdateColumn("qty", gorm.Expr("qty + ?", delta))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		// An absent row holds zero, so any decrement is insufficient.
		return 0, insufficient(productID, delta)
	}
	return stock.Qty, nil
}

func (r *stockRepository) SetShared(ctx context.Context, businessID, productID uuid.UUID, qty int) error {
	result := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND business_id = ?", productID, businessID).
		UpdateColumn("shared_qty", qty)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return nil
}

func (r *stockRepository) SetBranch(ctx context.Context, productID, branchID uuid.UUID, qty int) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}, {Name: "branch_id"}},
		DoUpdates: clause.Assignments(map[string]any{"qty": qty}),
	}).Create(&models.BranchStock{ProductID: productID, BranchID: branchID, Qty: qty}).Error
}

func (r *stockRepository) GetBranchStocks(ctx context.Context, productID uuid.UUID) ([]models.BranchStock, error) {
	var stocks []models.BranchStock
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Find(&stocks).Error; err != nil {
		return nil, err
	}
	return stocks, nil
}

func (r *stockRepository) ListLowShared(ctx context.Context, businessID uuid.UUID, threshold int) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).
		Where("business_id = ? AND shared_qty <= ?", businessID, threshold).
		Order("shared_qty ASC").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *stockRepository) ListLowBranch(ctx context.Context, businessID, branchID uuid.UUID, threshold int) ([]models.BranchStock, error) {
	var stocks []models.BranchStock
	if err := r.db.WithContext(ctx).
		Joins("JOIN products ON products.id = branch_stocks.product_id").
		Where("products.business_id = ? AND branch_stocks.branch_id = ? AND branch_stocks.qty <= ?", businessID, branchID, threshold).
		Order("branch_stocks.qty ASC").
		Find(&stocks).Error; err != nil {
		return nil, err
	}
	return stocks, nil
}

func insufficient(productID uuid.UUID, delta int) error {
	return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
		WithDetails(map[string]any{
			"product_id": productID.String(),
			"delta":      delta,
		})
}
