package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rafidahmed/tinbari-backend/pkg/enums"
)

// ProductGroup is one purchasable product line (type + brand + color +
// thickness). Stock lives on its variants, one per sheet length.
type ProductGroup struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ProductType string    `gorm:"column:product_type;not null"`
	Brand       string    `gorm:"column:brand;not null"`
	Color       string    `gorm:"column:color;not null;default:'N/A'"`
	Thickness   string    `gorm:"column:thickness;not null;default:'Standard'"`
	// Admin-defined free-form attributes. The costing and ledger code
	// never reads these.
	CustomValues    map[string]string     `gorm:"column:custom_values;type:jsonb;serializer:json"`
	CalculationMode enums.CalculationMode `gorm:"column:calculation_mode;type:text;not null"`
	Variants        []ProductVariant      `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

func (g *ProductGroup) BeforeCreate(*gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}
