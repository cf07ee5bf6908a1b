package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rafidahmed/tinbari-backend/api/middleware"
	"github.com/rafidahmed/tinbari-backend/api/responses"
	"github.com/rafidahmed/tinbari-backend/api/validators"
	salessvc "github.com/rafidahmed/tinbari-backend/internal/sales"
	"github.com/rafidahmed/tinbari-backend/pkg/enums"
	pkgerrors "github.com/rafidahmed/tinbari-backend/pkg/errors"
	"github.com/rafidahmed/tinbari-backend/pkg/logger"
)

type checkoutItemRequest struct {
	GroupID   *uuid.UUID `json:"group_id,omitempty"`
	VariantID *uuid.UUID `json:"variant_id,omitempty"`
	Name      string     `json:"name,omitempty"`
	Quantity  float64    `json:"quantity" validate:"required,gt=0"`
	Unit      string     `json:"unit,omitempty"`
	Rate      string     `json:"rate" validate:"required"`
}

type checkoutRequest struct {
	Items                []checkoutItemRequest `json:"items" validate:"required,min=1,dive"`
	CustomerName         string                `json:"customer_name" validate:"required"`
	CustomerPhone        string                `json:"customer_phone,omitempty"`
	CustomerAddress      *string               `json:"customer_address,omitempty"`
	Discount             int                   `json:"discount,omitempty" validate:"omitempty,min=0"`
	PaidAmount           int                   `json:"paid_amount,omitempty" validate:"omitempty,min=0"`
	DeliveryStatus       string                `json:"delivery_status,omitempty"`
	Note                 *string               `json:"note,omitempty"`
	ConfirmNegativeStock bool                  `json:"confirm_negative_stock,omitempty"`
}

func (req checkoutRequest) toInput(soldBy string) (salessvc.CheckoutInput, error) {
	items := make([]salessvc.CheckoutItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		rate, err := decimal.NewFromString(item.Rate)
		if err != nil {
			return salessvc.CheckoutInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid rate")
		}
		items = append(items, salessvc.CheckoutItemInput{
			GroupID:   item.GroupID,
			VariantID: item.VariantID,
			Name:      validators.SanitizeString(item.Name, 200),
			Quantity:  item.Quantity,
			Unit:      enums.UnitType(item.Unit),
			Rate:      rate,
		})
	}
	return salessvc.CheckoutInput{
		Items:                items,
		CustomerName:         validators.SanitizeString(req.CustomerName, 200),
		CustomerPhone:        validators.SanitizeString(req.CustomerPhone, 32),
		CustomerAddress:      req.CustomerAddress,
		Discount:             req.Discount,
		PaidAmount:           req.PaidAmount,
		DeliveryStatus:       enums.DeliveryStatus(req.DeliveryStatus),
		Note:                 req.Note,
		SoldBy:               soldBy,
		ConfirmNegativeStock: req.ConfirmNegativeStock,
	}, nil
}

// Checkout finalizes a cart into an invoiced sale.
func Checkout(svc salessvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput(middleware.UserNameFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sale, err := svc.Checkout(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, sale)
	}
}

func ListSales(svc salessvc.Service, logg *logger.Logger) http.HandlerFunc {
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
		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 500)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		offset, err := validators.ParseQueryInt(r, "offset", 0, 0, 1_000_000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sales, total, err := svc.ListSales(r.Context(), salessvc.ListFilter{
			From:   from,
			To:     to,
			Query:  validators.SanitizeString(r.URL.Query().Get("q"), 200),
			Limit:  limit,
			Offset: offset,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteList(w, sales, int(total))
	}
}

func GetSale(svc salessvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "saleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sale, err := svc.GetSale(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sale)
	}
}

func ListDueSales(svc salessvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sales, err := svc.ListDueSales(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sales)
	}
}

type editSaleItemRequest struct {
	GroupID         *uuid.UUID `json:"group_id,omitempty"`
	VariantID       *uuid.UUID `json:"variant_id,omitempty"`
	Name            string     `json:"name" validate:"required"`
	LengthFeet      float64    `json:"length_feet,omitempty"`
	CalculationBase *float64   `json:"calculation_base,omitempty"`
	QuantityPieces  int        `json:"quantity_pieces" validate:"min=0"`
	FormattedQty    string     `json:"formatted_qty" validate:"required"`
	PriceUnit       string     `json:"price_unit" validate:"required"`
	BuyPriceUnit    string     `json:"buy_price_unit,omitempty"`
	Subtotal        int        `json:"subtotal" validate:"min=0"`
	UnitType        string     `json:"unit_type,omitempty"`
}

type editSaleRequest struct {
	Items                []editSaleItemRequest `json:"items" validate:"required,min=1,dive"`
	CustomerName         *string               `json:"customer_name,omitempty"`
	CustomerPhone        *string               `json:"customer_phone,omitempty"`
	CustomerAddress      *string               `json:"customer_address,omitempty"`
	Discount             int                   `json:"discount,omitempty" validate:"omitempty,min=0"`
	PaidAmount           int                   `json:"paid_amount,omitempty" validate:"omitempty,min=0"`
	ConfirmNegativeStock bool                  `json:"confirm_negative_stock,omitempty"`
}

func (req editSaleRequest) toInput() (salessvc.EditSaleInput, error) {
	items := make([]salessvc.EditSaleItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		price, err := decimal.NewFromString(item.PriceUnit)
		if err != nil {
			return salessvc.EditSaleInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price unit")
		}
		buy := decimal.Zero
		if item.BuyPriceUnit != "" {
			buy, err = decimal.NewFromString(item.BuyPriceUnit)
			if err != nil {
				return salessvc.EditSaleInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid buy price unit")
			}
		}
		unitType := enums.UnitType(item.UnitType)
		if item.UnitType == "" {
			unitType = enums.UnitTypePiece
		}
		items = append(items, salessvc.EditSaleItemInput{
			GroupID:         item.GroupID,
			VariantID:       item.VariantID,
			Name:            validators.SanitizeString(item.Name, 200),
			LengthFeet:      item.LengthFeet,
			CalculationBase: item.CalculationBase,
			QuantityPieces:  item.QuantityPieces,
			FormattedQty:    item.FormattedQty,
			PriceUnit:       price,
			BuyPriceUnit:    buy,
			Subtotal:        item.Subtotal,
			UnitType:        unitType,
		})
	}
	return salessvc.EditSaleInput{
		Items:                items,
		CustomerName:         req.CustomerName,
		CustomerPhone:        req.CustomerPhone,
		CustomerAddress:      req.CustomerAddress,
		Discount:             req.Discount,
		PaidAmount:           req.PaidAmount,
		ConfirmNegativeStock: req.ConfirmNegativeStock,
	}, nil
}

// EditSale replaces a sale's lines and recomputes totals, restoring the old
// stock before deducting the new.
func EditSale(svc salessvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "saleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload editSaleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sale, err := svc.EditSale(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sale)
	}
}

func DeleteSale(svc salessvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "saleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteSale(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type paymentRequest struct {
	Amount int    `json:"amount" validate:"required,gt=0"`
	Note   string `json:"note,omitempty"`
}

// AddPayment records a due collection against a sale.
func AddPayment(svc salessvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "saleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload paymentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sale, err := svc.AddPayment(r.Context(), id, salessvc.PaymentInput{
			Amount:     payload.Amount,
			Note:       validators.SanitizeString(payload.Note, 200),
			ReceivedBy: middleware.UserNameFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sale)
	}
}

type returnItemRequest struct {
	ReturnQty    int  `json:"return_qty" validate:"required,gt=0"`
	RefundAmount *int `json:"refund_amount,omitempty" validate:"omitempty,gt=0"`
}

// ReturnItem takes back pieces from a sold line. Without a refund amount the
// refund is derived proportionally and the paid total stays untouched; with
// one, cash leaves the drawer and a negative payment is recorded.
func ReturnItem(svc salessvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		saleID, err := pathUUID(r, "saleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := pathUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload returnItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var sale any
		if payload.RefundAmount != nil {
			sale, err = svc.ReturnItemWithRefund(r.Context(), saleID, itemID, payload.ReturnQty, *payload.RefundAmount)
		} else {
			sale, err = svc.ReturnItem(r.Context(), saleID, itemID, payload.ReturnQty)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sale)
	}
}

type openingDueRequest struct {
	CustomerName    string  `json:"customer_name" validate:"required"`
	CustomerPhone   string  `json:"customer_phone" validate:"required"`
	CustomerAddress *string `json:"customer_address,omitempty"`
	Amount          int     `json:"amount" validate:"required,gt=0"`
}

// CreateOpeningDue books a customer's pre-existing debt into the ledger.
func CreateOpeningDue(svc salessvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload openingDueRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sale, err := svc.CreateOpeningDue(r.Context(), salessvc.OpeningDueInput{
			CustomerName:    validators.SanitizeString(payload.CustomerName, 200),
			CustomerPhone:   validators.SanitizeString(payload.CustomerPhone, 32),
			CustomerAddress: payload.CustomerAddress,
			Amount:          payload.Amount,
			SoldBy:          middleware.UserNameFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, sale)
	}
}
