package payroll

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rafidahmed/tinbari-backend/pkg/db/models"
	"github.com/rafidahmed/tinbari-backend/pkg/enums"
	pkgerrors "github.com/rafidahmed/tinbari-backend/pkg/errors"
	"github.com/rafidahmed/tinbari-backend/pkg/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:payroll_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func newPayrollService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(db), logger.New(logger.Options{ServiceName: "test"}))
	require.NoError(t, err)
	return svc
}

func seedEmployee(t *testing.T, svc Service, name string, base int) *models.Employee {
	t.Helper()
	employee, err := svc.AddEmployee(context.Background(), AddEmployeeInput{
		Name:       name,
		BaseSalary: base,
	})
	require.NoError(t, err)
	return employee
}

func TestAddEmployeeAppliesDefaults(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newPayrollService(t, db)

	employee, err := svc.AddEmployee(context.Background(), AddEmployeeInput{
		Name:       "Jamal",
		BaseSalary: 12000,
	})
	require.NoError(t, err)
	assert.Equal(t, "Staff", employee.Designation)
	assert.False(t, employee.JoinedAt.IsZero())
	assert.NotEqual(t, uuid.Nil, employee.ID)
}

func TestAddEmployeeRejectsNonPositiveSalary(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newPayrollService(t, db)

	_, err := svc.AddEmployee(context.Background(), AddEmployeeInput{Name: "Jamal"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestPayEmployeeSnapshotsNameAndDerivesMonth(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newPayrollService(t, db)
	ctx := context.Background()
	employee := seedEmployee(t, svc, "Jamal", 12000)

	record, err := svc.PayEmployee(ctx, employee.ID, PayInput{
		Amount: 12000,
		Type:   enums.SalaryPaymentSalary,
		Date:   time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, "Jamal", record.EmployeeName)
	assert.Equal(t, 3, record.ForMonth)
	assert.Equal(t, 2026, record.ForYear)

	_, err = svc.PayEmployee(ctx, uuid.New(), PayInput{Amount: 100})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestEmployeeLedgerSplitsSalaryAndAdvance(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newPayrollService(t, db)
	ctx := context.Background()
	employee := seedEmployee(t, svc, "Rahim", 15000)

	_, err := svc.PayEmployee(ctx, employee.ID, PayInput{Amount: 15000, Type: enums.SalaryPaymentSalary})
	require.NoError(t, err)
	_, err = svc.PayEmployee(ctx, employee.ID, PayInput{Amount: 2000, Type: enums.SalaryPaymentAdvance})
	require.NoError(t, err)
	// an untyped payout books as an advance
	_, err = svc.PayEmployee(ctx, employee.ID, PayInput{Amount: 1000})
	require.NoError(t, err)

	ledger, err := svc.EmployeeLedger(ctx, employee.ID)
	require.NoError(t, err)
	assert.Equal(t, 15000, ledger.TotalSalaryPaid)
	assert.Equal(t, 3000, ledger.TotalAdvance)
	assert.Len(t, ledger.Records, 3)
}

func TestDeleteEmployeeKeepsSalarySnapshots(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newPayrollService(t, db)
	ctx := context.Background()
	employee := seedEmployee(t, svc, "Karim", 10000)

	_, err := svc.PayEmployee(ctx, employee.ID, PayInput{Amount: 5000, Type: enums.SalaryPaymentSalary})
	require.NoError(t, err)
	_, err = svc.MarkAttendance(ctx, employee.ID, MarkAttendanceInput{Status: enums.AttendanceAbsent})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteEmployee(ctx, employee.ID))

	var employeeCount, attendanceCount, recordCount int64
	require.NoError(t, db.Model(&models.Employee{}).Count(&employeeCount).Error)
	require.NoError(t, db.Model(&models.Attendance{}).Count(&attendanceCount).Error)
	require.NoError(t, db.Model(&models.SalaryRecord{}).Count(&recordCount).Error)
	assert.Zero(t, employeeCount)
	assert.Zero(t, attendanceCount)
	assert.Equal(t, int64(1), recordCount)

	var record models.SalaryRecord
	require.NoError(t, db.First(&record).Error)
	assert.Equal(t, "Karim", record.EmployeeName)
}

func TestMarkAttendanceReplacesSameDay(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newPayrollService(t, db)
	ctx := context.Background()
	employee := seedEmployee(t, svc, "Sumon", 9000)
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	_, err := svc.MarkAttendance(ctx, employee.ID, MarkAttendanceInput{Day: day, Status: enums.AttendanceAbsent})
	require.NoError(t, err)
	_, err = svc.MarkAttendance(ctx, employee.ID, MarkAttendanceInput{Day: day, Status: enums.AttendanceLate})
	require.NoError(t, err)

	var records []models.Attendance
	require.NoError(t, db.Where("employee_id = ?", employee.ID).Find(&records).Error)
	require.Len(t, records, 1)
	assert.Equal(t, enums.AttendanceLate, records[0].Status)
	assert.Equal(t, "2026-03-10", records[0].Day)
}

func TestDailyAttendanceDefaultsToPresent(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newPayrollService(t, db)
	ctx := context.Background()
	marked := seedEmployee(t, svc, "Sumon", 9000)
	unmarked := seedEmployee(t, svc, "Belal", 9500)
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	_, err := svc.MarkAttendance(ctx, marked.ID, MarkAttendanceInput{Day: day, Status: enums.AttendanceAbsent})
	require.NoError(t, err)

	entries, err := svc.DailyAttendance(ctx, day)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	byName := make(map[string]enums.AttendanceStatus, len(entries))
	for _, entry := range entries {
		byName[entry.Employee.Name] = entry.Status
	}
	assert.Equal(t, enums.AttendanceAbsent, byName["Sumon"])
	assert.Equal(t, enums.AttendancePresent, byName[unmarked.Name])
}

func TestMonthlyAttendanceCountsWithinMonthOnly(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newPayrollService(t, db)
	ctx := context.Background()
	employee := seedEmployee(t, svc, "Sumon", 9000)

	mark := func(day time.Time, status enums.AttendanceStatus) {
		_, err := svc.MarkAttendance(ctx, employee.ID, MarkAttendanceInput{Day: day, Status: status})
		require.NoError(t, err)
	}
	mark(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), enums.AttendanceAbsent)
	mark(time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), enums.AttendanceAbsent)
	mark(time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC), enums.AttendanceLate)
	// outside the reported month
	mark(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), enums.AttendanceAbsent)

	report, err := svc.MonthlyAttendance(ctx, employee.ID, 2026, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, report.AbsentCount)
	assert.Equal(t, 1, report.LateCount)
	assert.Len(t, report.Records, 3)

	_, err = svc.MonthlyAttendance(ctx, employee.ID, 2026, 13)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
