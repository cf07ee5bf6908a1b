package payroll

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rafidahmed/tinbari-backend/pkg/db/models"
)

// Repository persists employees, their salary ledger and the attendance book.
type Repository interface {
	CreateEmployee(ctx context.Context, employee *models.Employee) error
	FindEmployeeByID(ctx context.Context, id uuid.UUID) (*models.Employee, error)
	ListEmployees(ctx context.Context) ([]models.Employee, error)
	DeleteEmployee(ctx context.Context, id uuid.UUID) error
	CreateSalaryRecord(ctx context.Context, record *models.SalaryRecord) error
	ListSalaryRecords(ctx context.Context, employeeID uuid.UUID) ([]models.SalaryRecord, error)
	UpsertAttendance(ctx context.Context, record *models.Attendance) error
	AttendanceForDay(ctx context.Context, day string) ([]models.Attendance, error)
	AttendanceBetween(ctx context.Context, employeeID uuid.UUID, fromDay, toDay string) ([]models.Attendance, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a payroll repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateEmployee(ctx context.Context, employee *models.Employee) error {
	return r.db.WithContext(ctx).Create(employee).Error
}

func (r *repository) FindEmployeeByID(ctx context.Context, id uuid.UUID) (*models.Employee, error) {
	var employee models.Employee
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&employee).Error
	if err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *repository) ListEmployees(ctx context.Context) ([]models.Employee, error) {
	var employees []models.Employee
	if err := r.db.WithContext(ctx).Order("joined_at ASC").Find(&employees).Error; err != nil {
		return nil, err
	}
	return employees, nil
}

// DeleteEmployee removes the employee and their attendance book. Salary
// records stay behind as snapshots.
func (r *repository) DeleteEmployee(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Where("employee_id = ?", id).
		Delete(&models.Attendance{}).Error; err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Employee{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) CreateSalaryRecord(ctx context.Context, record *models.SalaryRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *repository) ListSalaryRecords(ctx context.Context, employeeID uuid.UUID) ([]models.SalaryRecord, error) {
	var records []models.SalaryRecord
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("date DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repository) UpsertAttendance(ctx context.Context, record *models.Attendance) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "employee_id"}, {Name: "day"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "marked_at"}),
		}).
		Create(record).Error
}

func (r *repository) AttendanceForDay(ctx context.Context, day string) ([]models.Attendance, error) {
	var records []models.Attendance
	if err := r.db.WithContext(ctx).Where("day = ?", day).Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repository) AttendanceBetween(ctx context.Context, employeeID uuid.UUID, fromDay, toDay string) ([]models.Attendance, error) {
	var records []models.Attendance
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND day >= ? AND day <= ?", employeeID, fromDay, toDay).
		Order("day ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
