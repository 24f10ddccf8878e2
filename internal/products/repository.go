package products

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kasirpos/kasirpos-backend/pkg/db/models"
	"github.com/kasirpos/kasirpos-backend/pkg/pagination"
)

// Repository wires together catalog persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts the product.
func (r *Repository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// Save persists all fields of an already-loaded product.
func (r *Repository) Save(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// Delete removes the product row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id).Error
}

// FindByID loads the product without associations.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByCode loads the product matching the exact code.
func (r *Repository) FindByCode(ctx context.Context, code string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// List returns one page of products ordered newest-first, optionally filtered
// by a case-insensitive match over code or name.
func (r *Repository) List(ctx context.Context, search string, params pagination.Params) ([]models.Product, int64, error) {
	params = params.Normalize()

	query := r.db.WithContext(ctx).Model(&models.Product{})
	if term := strings.TrimSpace(search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		query = query.Where("LOWER(code) LIKE ? OR LOWER(name) LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []models.Product
	if err := query.
		Order("created_at DESC").
		Offset(params.Offset()).
		Limit(params.PageSize).
		Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Recent returns the n most recently added products.
func (r *Repository) Recent(ctx context.Context, n int) ([]models.Product, error) {
	var items []models.Product
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(n).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// DecrementStock atomically subtracts qty from the product's stock. The guard
// keeps stock from going negative; the boolean reports whether the row was
// actually updated.
func (r *Repository) DecrementStock(ctx context.Context, id uuid.UUID, qty int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock_quantity >= ?", id, qty).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", qty))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// SaleLineCount reports how many sale lines reference the product.
func (r *Repository) SaleLineCount(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.SaleLine{}).
		Where("product_id = ?", id).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountAll returns the catalog size.
func (r *Repository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountLowStock counts products at or below the threshold.
func (r *Repository) CountLowStock(ctx context.Context, threshold int) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("stock_quantity <= ?", threshold).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
