package reports

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/rafidahmed/tinbari-backend/pkg/db/models"
)

// Repository reads the aggregates reporting is built from. Reporting never
// mutates anything.
type Repository interface {
	SalesBetween(ctx context.Context, from, to time.Time) ([]models.Sale, error)
	Variants(ctx context.Context) ([]models.ProductVariant, error)
	ExpensesBetween(ctx context.Context, from, to time.Time) ([]models.Expense, error)
	DueSales(ctx context.Context, limit int) ([]models.Sale, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a reports repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) SalesBetween(ctx context.Context, from, to time.Time) ([]models.Sale, error) {
	query := r.db.WithContext(ctx).Model(&models.Sale{})
	if !from.IsZero() {
		query = query.Where("created_at >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("created_at <= ?", to)
	}
	var sales []models.Sale
	if err := query.Preload("Items").Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}

func (r *repository) Variants(ctx context.Context) ([]models.ProductVariant, error) {
	var variants []models.ProductVariant
	if err := r.db.WithContext(ctx).Find(&variants).Error; err != nil {
		return nil, err
	}
	return variants, nil
}

func (r *repository) ExpensesBetween(ctx context.Context, from, to time.Time) ([]models.Expense, error) {
	query := r.db.WithContext(ctx).Model(&models.Expense{})
	if !from.IsZero() {
		query = query.Where("created_at >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("created_at <= ?", to)
	}
	var expenses []models.Expense
	if err := query.Find(&expenses).Error; err != nil {
		return nil, err
	}
	return expenses, nil
}

func (r *repository) DueSales(ctx context.Context, limit int) ([]models.Sale, error) {
	query := r.db.WithContext(ctx).
		Where("due_amount > 0").
		Order("due_amount DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var sales []models.Sale
	if err := query.Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}
