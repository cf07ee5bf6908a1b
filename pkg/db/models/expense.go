package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rafidahmed/tinbari-backend/pkg/enums"
)

// Expense is a shop expense entry feeding the reports.
type Expense struct {
	ID        uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	Reason    string                `gorm:"column:reason;not null"`
	Amount    int                   `gorm:"column:amount;not null"`
	Category  enums.ExpenseCategory `gorm:"column:category;type:text;not null;default:'other'"`
	AddedBy   *string               `gorm:"column:added_by"`
	CreatedAt time.Time             `gorm:"column:created_at;autoCreateTime;index"`
}

func (e *Expense) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
