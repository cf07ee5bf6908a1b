package payroll

import (
	"context"
	stdErrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rafidahmed/tinbari-backend/pkg/db/models"
	"github.com/rafidahmed/tinbari-backend/pkg/enums"
	"github.com/rafidahmed/tinbari-backend/pkg/errors"
	"github.com/rafidahmed/tinbari-backend/pkg/logger"
)

const dayFormat = "2006-01-02"

// Service manages employees, salary payouts and the attendance book.
type Service interface {
	AddEmployee(ctx context.Context, input AddEmployeeInput) (*models.Employee, error)
	ListEmployees(ctx context.Context) ([]EmployeeSummary, error)
	DeleteEmployee(ctx context.Context, id uuid.UUID) error
	PayEmployee(ctx context.Context, employeeID uuid.UUID, input PayInput) (*models.SalaryRecord, error)
	EmployeeLedger(ctx context.Context, employeeID uuid.UUID) (*Ledger, error)
	MarkAttendance(ctx context.Context, employeeID uuid.UUID, input MarkAttendanceInput) (*models.Attendance, error)
	DailyAttendance(ctx context.Context, day time.Time) ([]DayEntry, error)
	MonthlyAttendance(ctx context.Context, employeeID uuid.UUID, year, month int) (*AttendanceReport, error)
}

// AddEmployeeInput registers a new salaried worker.
type AddEmployeeInput struct {
	Name        string
	Phone       string
	Designation string
	BaseSalary  int
	JoinedAt    time.Time
}

// PayInput is one payout entry, salary or advance. ForMonth and ForYear are
// derived from the payout date.
type PayInput struct {
	Amount int
	Type   enums.SalaryPaymentType
	Date   time.Time
	Note   string
}

// MarkAttendanceInput marks one employee-day in the attendance book.
type MarkAttendanceInput struct {
	Day    time.Time
	Status enums.AttendanceStatus
}

// EmployeeSummary pairs an employee with their payout totals.
type EmployeeSummary struct {
	models.Employee
	TotalSalaryPaid int `json:"total_salary_paid"`
	TotalAdvance    int `json:"total_advance"`
}

// Ledger is one employee's full payout history with totals.
type Ledger struct {
	Employee        models.Employee       `json:"employee"`
	Records         []models.SalaryRecord `json:"records"`
	TotalSalaryPaid int                   `json:"total_salary_paid"`
	TotalAdvance    int                   `json:"total_advance"`
}

// DayEntry is one employee's status for a single day. Employees without a
// book entry read as present.
type DayEntry struct {
	Employee models.Employee        `json:"employee"`
	Status   enums.AttendanceStatus `json:"status"`
}

// AttendanceReport is one employee's month in the attendance book.
type AttendanceReport struct {
	EmployeeID  uuid.UUID           `json:"employee_id"`
	Year        int                 `json:"year"`
	Month       int                 `json:"month"`
	AbsentCount int                 `json:"absent_count"`
	LateCount   int                 `json:"late_count"`
	Records     []models.Attendance `json:"records"`
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService wires the payroll service.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payroll repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) AddEmployee(ctx context.Context, input AddEmployeeInput) (*models.Employee, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.New(errors.CodeValidation, "employee name is required")
	}
	if input.BaseSalary <= 0 {
		return nil, errors.New(errors.CodeValidation, "base salary must be positive")
	}

	joined := input.JoinedAt
	if joined.IsZero() {
		joined = time.Now().UTC()
	}

	employee := &models.Employee{
		Name:        name,
		Phone:       strings.TrimSpace(input.Phone),
		Designation: orDefault(input.Designation, "Staff"),
		BaseSalary:  input.BaseSalary,
		JoinedAt:    joined,
	}
	if err := s.repo.CreateEmployee(ctx, employee); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "creating employee")
	}
	return employee, nil
}

func (s *service) ListEmployees(ctx context.Context) ([]EmployeeSummary, error) {
	employees, err := s.repo.ListEmployees(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "listing employees")
	}

	summaries := make([]EmployeeSummary, 0, len(employees))
	for _, employee := range employees {
		records, err := s.repo.ListSalaryRecords(ctx, employee.ID)
		if err != nil {
			return nil, errors.Wrap(errors.CodeInternal, err, "loading salary records")
		}
		salary, advance := payoutTotals(records)
		summaries = append(summaries, EmployeeSummary{
			Employee:        employee,
			TotalSalaryPaid: salary,
			TotalAdvance:    advance,
		})
	}
	return summaries, nil
}

// DeleteEmployee removes the employee; their salary records stay behind as
// snapshots in the ledger.
func (s *service) DeleteEmployee(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteEmployee(ctx, id); err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New(errors.CodeNotFound, "employee not found")
		}
		return errors.Wrap(errors.CodeInternal, err, "deleting employee")
	}
	s.logg.Info(s.logg.WithField(ctx, "employee_id", id.String()), "employee deleted")
	return nil
}

func (s *service) PayEmployee(ctx context.Context, employeeID uuid.UUID, input PayInput) (*models.SalaryRecord, error) {
	if input.Amount <= 0 {
		return nil, errors.New(errors.CodeValidation, "payout amount must be positive")
	}
	payType := input.Type
	if payType == "" {
		payType = enums.SalaryPaymentAdvance
	}
	if !payType.IsValid() {
		return nil, errors.New(errors.CodeValidation, fmt.Sprintf("invalid payout type %q", input.Type))
	}

	employee, err := s.repo.FindEmployeeByID(ctx, employeeID)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "employee not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "loading employee")
	}

	date := input.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	record := &models.SalaryRecord{
		EmployeeID:   employee.ID,
		EmployeeName: employee.Name,
		Amount:       input.Amount,
		Type:         payType,
		ForMonth:     int(date.Month()),
		ForYear:      date.Year(),
		Date:         date,
		Note:         strings.TrimSpace(input.Note),
	}
	if err := s.repo.CreateSalaryRecord(ctx, record); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "recording payout")
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"employee_id": employee.ID,
		"type":        string(payType),
		"amount":      input.Amount,
	}), "salary payout recorded")
	return record, nil
}

func (s *service) EmployeeLedger(ctx context.Context, employeeID uuid.UUID) (*Ledger, error) {
	employee, err := s.repo.FindEmployeeByID(ctx, employeeID)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "employee not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "loading employee")
	}

	records, err := s.repo.ListSalaryRecords(ctx, employeeID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "loading salary records")
	}
	salary, advance := payoutTotals(records)
	return &Ledger{
		Employee:        *employee,
		Records:         records,
		TotalSalaryPaid: salary,
		TotalAdvance:    advance,
	}, nil
}

func (s *service) MarkAttendance(ctx context.Context, employeeID uuid.UUID, input MarkAttendanceInput) (*models.Attendance, error) {
	if !input.Status.IsValid() {
		return nil, errors.New(errors.CodeValidation, fmt.Sprintf("invalid attendance status %q", input.Status))
	}
	if _, err := s.repo.FindEmployeeByID(ctx, employeeID); err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "employee not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "loading employee")
	}

	day := input.Day
	if day.IsZero() {
		day = time.Now().UTC()
	}

	record := &models.Attendance{
		EmployeeID: employeeID,
		Day:        day.Format(dayFormat),
		Status:     input.Status,
	}
	if err := s.repo.UpsertAttendance(ctx, record); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "marking attendance")
	}
	return record, nil
}

// DailyAttendance lists every employee's status for the day; employees
// without a book entry default to present.
func (s *service) DailyAttendance(ctx context.Context, day time.Time) ([]DayEntry, error) {
	if day.IsZero() {
		day = time.Now().UTC()
	}

	employees, err := s.repo.ListEmployees(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "listing employees")
	}
	marked, err := s.repo.AttendanceForDay(ctx, day.Format(dayFormat))
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "loading attendance")
	}

	byEmployee := make(map[uuid.UUID]enums.AttendanceStatus, len(marked))
	for _, record := range marked {
		byEmployee[record.EmployeeID] = record.Status
	}

	entries := make([]DayEntry, 0, len(employees))
	for _, employee := range employees {
		status, ok := byEmployee[employee.ID]
		if !ok {
			status = enums.AttendancePresent
		}
		entries = append(entries, DayEntry{Employee: employee, Status: status})
	}
	return entries, nil
}

func (s *service) MonthlyAttendance(ctx context.Context, employeeID uuid.UUID, year, month int) (*AttendanceReport, error) {
	if month < 1 || month > 12 {
		return nil, errors.New(errors.CodeValidation, "month must be between 1 and 12")
	}
	if year < 2000 {
		return nil, errors.New(errors.CodeValidation, "year is out of range")
	}
	if _, err := s.repo.FindEmployeeByID(ctx, employeeID); err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "employee not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "loading employee")
	}

	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	records, err := s.repo.AttendanceBetween(ctx, employeeID, first.Format(dayFormat), last.Format(dayFormat))
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "loading attendance")
	}

	report := &AttendanceReport{
		EmployeeID: employeeID,
		Year:       year,
		Month:      month,
		Records:    records,
	}
	for _, record := range records {
		switch record.Status {
		case enums.AttendanceAbsent:
			report.AbsentCount++
		case enums.AttendanceLate:
			report.LateCount++
		}
	}
	return report, nil
}

func payoutTotals(records []models.SalaryRecord) (salary, advance int) {
	for _, record := range records {
		switch record.Type {
		case enums.SalaryPaymentSalary:
			salary += record.Amount
		case enums.SalaryPaymentAdvance:
			advance += record.Amount
		}
	}
	return salary, advance
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
