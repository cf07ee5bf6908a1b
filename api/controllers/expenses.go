package controllers

import (
	"net/http"

	"github.com/rafidahmed/tinbari-backend/api/middleware"
	"github.com/rafidahmed/tinbari-backend/api/responses"
	"github.com/rafidahmed/tinbari-backend/api/validators"
	expensessvc "github.com/rafidahmed/tinbari-backend/internal/expenses"
	"github.com/rafidahmed/tinbari-backend/pkg/enums"
	"github.com/rafidahmed/tinbari-backend/pkg/logger"
)

type addExpenseRequest struct {
	Reason   string `json:"reason" validate:"required"`
	Amount   int    `json:"amount" validate:"required,gt=0"`
	Category string `json:"category,omitempty"`
}

func AddExpense(svc expensessvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload addExpenseRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var addedBy *string
		if name := middleware.UserNameFromContext(r.Context()); name != "" {
			addedBy = &name
		}

		expense, err := svc.Add(r.Context(), expensessvc.AddExpenseInput{
			Reason:   validators.SanitizeString(payload.Reason, 200),
			Amount:   payload.Amount,
			Category: enums.ExpenseCategory(payload.Category),
			AddedBy:  addedBy,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, expense)
	}
}

func ListExpenses(svc expensessvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from, err := validators.ParseQueryTime(r, "from")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		to, err := validators.ParseQueryTime(r, "to")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), from, to)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func DeleteExpense(svc expensessvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "expenseId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
