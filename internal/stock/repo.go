package stock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rafidahmed/tinbari-backend/pkg/db/models"
	"github.com/rafidahmed/tinbari-backend/pkg/pagination"
)

// Repository persists variants and the append-only stock log.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindGroupByID(ctx context.Context, id uuid.UUID) (*models.ProductGroup, error)
	FindVariantByLength(ctx context.Context, groupID uuid.UUID, lengthFeet float64) (*models.ProductVariant, error)
	CreateVariant(ctx context.Context, variant *models.ProductVariant) error
	SaveVariant(ctx context.Context, variant *models.ProductVariant) error
	AppendLog(ctx context.Context, entry *models.StockLog) error
	ListLogs(ctx context.Context, from, to time.Time, cursor *pagination.Cursor, limit int) ([]models.StockLog, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a stock repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindGroupByID(ctx context.Context, id uuid.UUID) (*models.ProductGroup, error) {
	var group models.ProductGroup
	err := r.db.WithContext(ctx).
		Preload("Variants").
		Where("id = ?", id).
		First(&group).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *repository) FindVariantByLength(ctx context.Context, groupID uuid.UUID, lengthFeet float64) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND length_feet = ?", groupID, lengthFeet).
		First(&variant).Error
	if err != nil {
		return nil, err
	}
	return &variant, nil
}

func (r *repository) CreateVariant(ctx context.Context, variant *models.ProductVariant) error {
	return r.db.WithContext(ctx).Create(variant).Error
}

func (r *repository) SaveVariant(ctx context.Context, variant *models.ProductVariant) error {
	return r.db.WithContext(ctx).Save(variant).Error
}

func (r *repository) AppendLog(ctx context.Context, entry *models.StockLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListLogs(ctx context.Context, from, to time.Time, cursor *pagination.Cursor, limit int) ([]models.StockLog, error) {
	query := r.db.WithContext(ctx).Model(&models.StockLog{})
	if !from.IsZero() {
		query = query.Where("date >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("date <= ?", to)
	}
	if cursor != nil {
		query = query.Where("date < ? OR (date = ? AND id < ?)", cursor.Timestamp, cursor.Timestamp, cursor.ID)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	var logs []models.StockLog
	if err := query.Order("date DESC, id DESC").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
