package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rafidahmed/tinbari-backend/pkg/enums"
)

// SaleItem is an immutable snapshot of one sold line. Name, rate and
// BuyPriceUnit are captured at checkout so the memo stays readable after
// the source product is edited or deleted. A nil GroupID marks a manual
// line with no inventory linkage.
type SaleItem struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	SaleID          uuid.UUID       `gorm:"column:sale_id;type:uuid;not null;index"`
	GroupID         *uuid.UUID      `gorm:"column:group_id;type:uuid"`
	VariantID       *uuid.UUID      `gorm:"column:variant_id;type:uuid"`
	Name            string          `gorm:"column:name;not null"`
	LengthFeet      float64         `gorm:"column:length_feet;type:numeric(6,2);not null;default:0"`
	CalculationBase *float64        `gorm:"column:calculation_base;type:numeric(6,2)"`
	QuantityPieces  int             `gorm:"column:quantity_pieces;not null"`
	FormattedQty    string          `gorm:"column:formatted_qty;not null"`
	PriceUnit       decimal.Decimal `gorm:"column:price_unit;type:numeric(16,4);not null"`
	BuyPriceUnit    decimal.Decimal `gorm:"column:buy_price_unit;type:numeric(16,4);not null;default:0"`
	Subtotal        int             `gorm:"column:subtotal;not null"`
	UnitType        enums.UnitType  `gorm:"column:unit_type;type:text;not null;default:'piece'"`
}

func (i *SaleItem) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// Manual reports whether the line has no inventory linkage.
func (i SaleItem) Manual() bool {
	return i.GroupID == nil || i.VariantID == nil
}
