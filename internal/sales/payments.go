package sales

import (
	"context"
	stdErrors "errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rafidahmed/tinbari-backend/pkg/db/models"
	"github.com/rafidahmed/tinbari-backend/pkg/enums"
	"github.com/rafidahmed/tinbari-backend/pkg/errors"
)

// AddPayment records a collection against a sale. Overpayment is allowed
// and leaves the due negative, which reads as customer credit.
func (s *service) AddPayment(ctx context.Context, saleID uuid.UUID, input PaymentInput) (*models.Sale, error) {
	if input.Amount <= 0 {
		return nil, errors.New(errors.CodeValidation, "payment amount must be positive")
	}

	var sale *models.Sale
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		loaded, err := repo.FindSaleByID(ctx, saleID)
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New(errors.CodeNotFound, "sale not found")
		}
		if err != nil {
			return errors.Wrap(errors.CodeInternal, err, "loading sale")
		}
		sale = loaded

		payment := &models.Payment{
			SaleID:     sale.ID,
			Amount:     input.Amount,
			Date:       time.Now().UTC(),
			Note:       orDefault(input.Note, "Collection"),
			ReceivedBy: input.ReceivedBy,
		}
		if err := repo.CreatePayment(ctx, payment); err != nil {
			return errors.Wrap(errors.CodeInternal, err, "recording payment")
		}

		sale.PaidAmount += input.Amount
		sale.DueAmount -= input.Amount
		if err := repo.SaveSale(ctx, sale); err != nil {
			return errors.Wrap(errors.CodeInternal, err, "saving sale")
		}
		sale.Payments = append(sale.Payments, *payment)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithInvoice(ctx, sale.InvoiceNumber), "payment collected")
	return sale, nil
}

// CreateOpeningDue books a customer's pre-existing debt as a sale with a
// single manual line, so it flows through the same due ledger as everything
// else. No stock is touched.
func (s *service) CreateOpeningDue(ctx context.Context, input OpeningDueInput) (*models.Sale, error) {
	if strings.TrimSpace(input.CustomerName) == "" {
		return nil, errors.New(errors.CodeValidation, "customer name is required")
	}
	if input.Amount <= 0 {
		return nil, errors.New(errors.CodeValidation, "due amount must be positive")
	}

	note := "Opening due"

	var sale *models.Sale
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		invoice, err := repo.NextInvoiceNumber(ctx)
		if err != nil {
			return errors.Wrap(errors.CodeInternal, err, "allocating invoice number")
		}

		sale = &models.Sale{
			InvoiceNumber:   invoice,
			CustomerName:    strings.TrimSpace(input.CustomerName),
			CustomerPhone:   orNA(input.CustomerPhone),
			CustomerAddress: input.CustomerAddress,
			SubTotal:        input.Amount,
			Discount:        0,
			FinalAmount:     input.Amount,
			PaidAmount:      0,
			DueAmount:       input.Amount,
			DeliveryStatus:  enums.DeliveryStatusDelivered,
			SoldBy:          orDefault(input.SoldBy, "Ledger"),
			Note:            &note,
			Items: []models.SaleItem{{
				Name:           "Previous due",
				QuantityPieces: 1,
				FormattedQty:   "1",
				PriceUnit:      decimal.NewFromInt(int64(input.Amount)),
				BuyPriceUnit:   decimal.Zero,
				Subtotal:       input.Amount,
				UnitType:       enums.UnitTypePiece,
			}},
		}
		if err := repo.CreateSale(ctx, sale); err != nil {
			return errors.Wrap(errors.CodeInternal, err, "creating opening due")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithInvoice(ctx, sale.InvoiceNumber), "opening due recorded")
	return sale, nil
}
