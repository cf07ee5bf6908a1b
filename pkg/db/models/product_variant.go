package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductVariant is one sheet length of a product group. AverageCost is a
// moving weighted average cost per piece: it changes only on stock-in,
// never on sale or stock restoration. StockPieces may go negative when the
// operator confirms a sale the books cannot cover.
type ProductVariant struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	GroupID         uuid.UUID       `gorm:"column:group_id;type:uuid;not null;index"`
	LengthFeet      float64         `gorm:"column:length_feet;type:numeric(6,2);not null"`
	CalculationBase *float64        `gorm:"column:calculation_base;type:numeric(6,2)"`
	StockPieces     int             `gorm:"column:stock_pieces;not null;default:0"`
	AverageCost     decimal.Decimal `gorm:"column:average_cost;type:numeric(16,4);not null;default:0"`
	// Optional default selling rate shown to the operator; never used by
	// cost accounting.
	SellingPrice *int      `gorm:"column:selling_price"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (v *ProductVariant) BeforeCreate(*gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
