package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rafidahmed/tinbari-backend/pkg/enums"
)

// Attendance is one employee-day in the attendance book, keyed by the
// calendar day as "2006-01-02". Re-marking the same day replaces the entry.
type Attendance struct {
	ID         uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	EmployeeID uuid.UUID              `gorm:"column:employee_id;type:uuid;not null;uniqueIndex:idx_attendance_employee_day"`
	Day        string                 `gorm:"column:day;not null;uniqueIndex:idx_attendance_employee_day"`
	Status     enums.AttendanceStatus `gorm:"column:status;type:text;not null"`
	MarkedAt   time.Time              `gorm:"column:marked_at;autoUpdateTime"`
}

func (a *Attendance) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
