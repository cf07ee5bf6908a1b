package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rafidahmed/tinbari-backend/pkg/enums"
)

// SalaryRecord is one payout in the employee ledger. EmployeeName is a
// snapshot so the history stays readable after the employee is deleted.
type SalaryRecord struct {
	ID           uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	EmployeeID   uuid.UUID               `gorm:"column:employee_id;type:uuid;not null;index"`
	EmployeeName string                  `gorm:"column:employee_name;not null"`
	Amount       int                     `gorm:"column:amount;not null"`
	Type         enums.SalaryPaymentType `gorm:"column:type;type:text;not null"`
	ForMonth     int                     `gorm:"column:for_month;not null"`
	ForYear      int                     `gorm:"column:for_year;not null"`
	Date         time.Time               `gorm:"column:date;not null;index"`
	Note         string                  `gorm:"column:note"`
}

func (s *SalaryRecord) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
