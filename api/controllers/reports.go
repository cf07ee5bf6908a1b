package controllers

import (
	"net/http"
	"time"

	"github.com/rafidahmed/tinbari-backend/api/responses"
	"github.com/rafidahmed/tinbari-backend/api/validators"
	reportssvc "github.com/rafidahmed/tinbari-backend/internal/reports"
	"github.com/rafidahmed/tinbari-backend/pkg/logger"
)

// SalesSummaryReport aggregates revenue, profit and expenses for a range.
// The range defaults to the current day.
func SalesSummaryReport(svc reportssvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		if from.IsZero() && to.IsZero() {
			now := time.Now()
			from = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
			to = from.AddDate(0, 0, 1)
		}

		summary, err := svc.Summary(r.Context(), from, to)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

func StockValuationReport(svc reportssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		valuation, err := svc.StockValuation(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, valuation)
	}
}

func TopDuesReport(svc reportssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 20, 1, 200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dues, err := svc.TopDues(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dues)
	}
}
