package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Employee is a salaried shop worker.
type Employee struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name        string    `gorm:"column:name;not null"`
	Phone       string    `gorm:"column:phone"`
	Designation string    `gorm:"column:designation;not null;default:'Staff'"`
	BaseSalary  int       `gorm:"column:base_salary;not null"`
	JoinedAt    time.Time `gorm:"column:joined_at;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (e *Employee) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
