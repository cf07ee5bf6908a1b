package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StockLog is the append-only stock-in journal. Entries are never updated
// or deleted; reporting reads them as-is.
type StockLog struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Date          time.Time       `gorm:"column:date;not null;index"`
	ProductName   string          `gorm:"column:product_name;not null"`
	QuantityAdded int             `gorm:"column:quantity_added;not null"`
	CostPrice     decimal.Decimal `gorm:"column:cost_price;type:numeric(16,4);not null"`
	NewStockLevel int             `gorm:"column:new_stock_level;not null"`
	Note          *string         `gorm:"column:note"`
}

func (l *StockLog) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
