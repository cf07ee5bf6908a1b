package controllers

import (
	"net/http"
	"time"

	"github.com/rafidahmed/tinbari-backend/api/responses"
	"github.com/rafidahmed/tinbari-backend/api/validators"
	payrollsvc "github.com/rafidahmed/tinbari-backend/internal/payroll"
	"github.com/rafidahmed/tinbari-backend/pkg/enums"
	pkgerrors "github.com/rafidahmed/tinbari-backend/pkg/errors"
	"github.com/rafidahmed/tinbari-backend/pkg/logger"
)

type addEmployeeRequest struct {
	Name        string  `json:"name" validate:"required"`
	Phone       string  `json:"phone,omitempty"`
	Designation string  `json:"designation,omitempty"`
	BaseSalary  int     `json:"base_salary" validate:"required,gt=0"`
	JoinedAt    *string `json:"joined_at,omitempty"`
}

type payEmployeeRequest struct {
	Amount int     `json:"amount" validate:"required,gt=0"`
	Type   string  `json:"type,omitempty"`
	Date   *string `json:"date,omitempty"`
	Note   string  `json:"note,omitempty"`
}

type markAttendanceRequest struct {
	Day    *string `json:"day,omitempty"`
	Status string  `json:"status" validate:"required"`
}

func AddEmployee(svc payrollsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload addEmployeeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var joined time.Time
		if payload.JoinedAt != nil {
			parsed, err := time.Parse("2006-01-02", *payload.JoinedAt)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid joined_at"))
				return
			}
			joined = parsed
		}

		employee, err := svc.AddEmployee(r.Context(), payrollsvc.AddEmployeeInput{
			Name:        validators.SanitizeString(payload.Name, 100),
			Phone:       validators.SanitizeString(payload.Phone, 20),
			Designation: validators.SanitizeString(payload.Designation, 50),
			BaseSalary:  payload.BaseSalary,
			JoinedAt:    joined,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, employee)
	}
}

func ListEmployees(svc payrollsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summaries, err := svc.ListEmployees(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summaries)
	}
}

func DeleteEmployee(svc payrollsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "employeeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteEmployee(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func PayEmployee(svc payrollsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "employeeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload payEmployeeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var date time.Time
		if payload.Date != nil {
			parsed, err := time.Parse("2006-01-02", *payload.Date)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid date"))
				return
			}
			date = parsed
		}

		record, err := svc.PayEmployee(r.Context(), id, payrollsvc.PayInput{
			Amount: payload.Amount,
			Type:   enums.SalaryPaymentType(payload.Type),
			Date:   date,
			Note:   validators.SanitizeString(payload.Note, 200),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, record)
	}
}

func EmployeeLedger(svc payrollsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "employeeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ledger, err := svc.EmployeeLedger(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, ledger)
	}
}

func MarkAttendance(svc payrollsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "employeeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload markAttendanceRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var day time.Time
		if payload.Day != nil {
			parsed, err := time.Parse("2006-01-02", *payload.Day)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid day"))
				return
			}
			day = parsed
		}

		record, err := svc.MarkAttendance(r.Context(), id, payrollsvc.MarkAttendanceInput{
			Day:    day,
			Status: enums.AttendanceStatus(payload.Status),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, record)
	}
}

func DailyAttendance(svc payrollsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		day, err := validators.ParseQueryTime(r, "date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		entries, err := svc.DailyAttendance(r.Context(), day)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, entries)
	}
}

func MonthlyAttendance(svc payrollsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "employeeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		now := time.Now().UTC()
		year, err := validators.ParseQueryInt(r, "year", now.Year(), 2000, 2200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		month, err := validators.ParseQueryInt(r, "month", int(now.Month()), 1, 12)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		report, err := svc.MonthlyAttendance(r.Context(), id, year, month)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}
