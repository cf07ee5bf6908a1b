package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rafidahmed/tinbari-backend/pkg/db/models"
)

// Repository persists product groups, variants and the settings singleton.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateGroup(ctx context.Context, group *models.ProductGroup) error
	FindGroupByID(ctx context.Context, id uuid.UUID) (*models.ProductGroup, error)
	ListGroups(ctx context.Context) ([]models.ProductGroup, error)
	SaveGroup(ctx context.Context, group *models.ProductGroup) error
	DeleteGroup(ctx context.Context, id uuid.UUID) error
	FindVariantByID(ctx context.Context, groupID, variantID uuid.UUID) (*models.ProductVariant, error)
	SaveVariant(ctx context.Context, variant *models.ProductVariant) error
	DeleteVariant(ctx context.Context, groupID, variantID uuid.UUID) error
	GetSettings(ctx context.Context) (*models.StoreSettings, error)
	SaveSettings(ctx context.Context, settings *models.StoreSettings) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateGroup(ctx context.Context, group *models.ProductGroup) error {
	return r.db.WithContext(ctx).Create(group).Error
}

func (r *repository) FindGroupByID(ctx context.Context, id uuid.UUID) (*models.ProductGroup, error) {
	var group models.ProductGroup
	err := r.db.WithContext(ctx).
		Preload("Variants", func(db *gorm.DB) *gorm.DB {
			return db.Order("length_feet ASC")
		}).
		Where("id = ?", id).
		First(&group).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *repository) ListGroups(ctx context.Context) ([]models.ProductGroup, error) {
	var groups []models.ProductGroup
	err := r.db.WithContext(ctx).
		Preload("Variants", func(db *gorm.DB) *gorm.DB {
			return db.Order("length_feet ASC")
		}).
		Order("created_at DESC").
		Find(&groups).Error
	if err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *repository) SaveGroup(ctx context.Context, group *models.ProductGroup) error {
	return r.db.WithContext(ctx).Save(group).Error
}

func (r *repository) DeleteGroup(ctx context.Context, id uuid.UUID) error {
	// Variants go with the group. Sales keep their denormalized snapshots.
	if err := r.db.WithContext(ctx).
		Where("group_id = ?", id).
		Delete(&models.ProductVariant{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.ProductGroup{}).Error
}

func (r *repository) FindVariantByID(ctx context.Context, groupID, variantID uuid.UUID) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	err := r.db.WithContext(ctx).
		Where("id = ? AND group_id = ?", variantID, groupID).
		First(&variant).Error
	if err != nil {
		return nil, err
	}
	return &variant, nil
}

func (r *repository) SaveVariant(ctx context.Context, variant *models.ProductVariant) error {
	return r.db.WithContext(ctx).Save(variant).Error
}

func (r *repository) DeleteVariant(ctx context.Context, groupID, variantID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND group_id = ?", variantID, groupID).
		Delete(&models.ProductVariant{}).Error
}

func (r *repository) GetSettings(ctx context.Context) (*models.StoreSettings, error) {
	var settings models.StoreSettings
	err := r.db.WithContext(ctx).First(&settings).Error
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *repository) SaveSettings(ctx context.Context, settings *models.StoreSettings) error {
	return r.db.WithContext(ctx).Save(settings).Error
}
