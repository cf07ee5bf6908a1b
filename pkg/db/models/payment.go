package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Payment is one entry in a sale's payment history. Amounts are negative
// for cash-refund reversal entries; the history is otherwise append-only.
type Payment struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	SaleID     uuid.UUID `gorm:"column:sale_id;type:uuid;not null;index"`
	Amount     int       `gorm:"column:amount;not null"`
	Date       time.Time `gorm:"column:date;not null"`
	Note       string    `gorm:"column:note"`
	ReceivedBy string    `gorm:"column:received_by"`
}

func (p *Payment) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
