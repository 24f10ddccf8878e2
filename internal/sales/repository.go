package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kasirpos/kasirpos-backend/pkg/db/models"
	"github.com/kasirpos/kasirpos-backend/pkg/pagination"
)

// Repository persists sales and their lines.
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

// Create inserts the sale with its lines in one statement batch.
func (r *Repository) Create(ctx context.Context, sale *models.Sale) (*models.Sale, error) {
	if err := r.db.WithContext(ctx).Create(sale).Error; err != nil {
		return nil, err
	}
	return sale, nil
}

// FindByID loads a sale with its lines.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Sale, error) {
	var sale models.Sale
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&sale, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &sale, nil
}

// List returns one page of sales ordered newest-first.
func (r *Repository) List(ctx context.Context, params pagination.Params) ([]models.Sale, int64, error) {
	params = params.Normalize()

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Sale{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []models.Sale
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Order("created_at DESC").
		Offset(params.Offset()).
		Limit(params.PageSize).
		Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// CountSince counts sales recorded at or after the cutoff.
func (r *Repository) CountSince(ctx context.Context, cutoff time.Time) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Sale{}).
		Where("created_at >= ?", cutoff).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// RevenueSince sums sale totals recorded at or after the cutoff.
func (r *Repository) RevenueSince(ctx context.Context, cutoff time.Time) (int64, error) {
	var revenue *int64
	if err := r.db.WithContext(ctx).
		Model(&models.Sale{}).
		Where("created_at >= ?", cutoff).
		Select("SUM(total_cents)").
		Scan(&revenue).Error; err != nil {
		return 0, err
	}
	if revenue == nil {
		return 0, nil
	}
	return *revenue, nil
}
