package controllers

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rafidahmed/tinbari-backend/api/responses"
	"github.com/rafidahmed/tinbari-backend/api/validators"
	stocksvc "github.com/rafidahmed/tinbari-backend/internal/stock"
	"github.com/rafidahmed/tinbari-backend/pkg/enums"
	pkgerrors "github.com/rafidahmed/tinbari-backend/pkg/errors"
	"github.com/rafidahmed/tinbari-backend/pkg/logger"
	"github.com/rafidahmed/tinbari-backend/pkg/pagination"
)

type stockInRequest struct {
	LengthFeet      float64  `json:"length_feet" validate:"required,gt=0"`
	CalculationBase *float64 `json:"calculation_base,omitempty" validate:"omitempty,gt=0"`
	Quantity        float64  `json:"quantity" validate:"required,gt=0"`
	Unit            string   `json:"unit,omitempty"`
	Rate            string   `json:"rate" validate:"required"`
	Note            *string  `json:"note,omitempty"`
	Date            *string  `json:"date,omitempty"`
	ConfirmZeroCost bool     `json:"confirm_zero_cost,omitempty"`
}

// StockIn receives goods against a product group. The variant is resolved or
// created by sheet length inside the service.
func StockIn(svc stocksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID, err := pathUUID(r, "groupId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload stockInRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rate, err := decimal.NewFromString(payload.Rate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid rate"))
			return
		}

		var date time.Time
		if payload.Date != nil {
			date, err = time.Parse("2006-01-02", *payload.Date)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid date"))
				return
			}
		}

		unit := enums.UnitType(payload.Unit)
		if payload.Unit == "" {
			unit = enums.UnitTypeBundle
		}

		result, err := svc.StockIn(r.Context(), stocksvc.StockInInput{
			GroupID:         groupID,
			LengthFeet:      payload.LengthFeet,
			CalculationBase: payload.CalculationBase,
			Quantity:        payload.Quantity,
			Unit:            unit,
			Rate:            rate,
			Note:            payload.Note,
			Date:            date,
			ConfirmZeroCost: payload.ConfirmZeroCost,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

func StockLogs(svc stocksvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.Logs(r.Context(), from, to, pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}
