package sales

import (
	"context"
	stdErrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rafidahmed/tinbari-backend/internal/stock"
	"github.com/rafidahmed/tinbari-backend/internal/units"
	"github.com/rafidahmed/tinbari-backend/pkg/db/models"
	"github.com/rafidahmed/tinbari-backend/pkg/errors"
)

// ReturnItem takes goods back against the outstanding bill: the refund is
// proportional to the line's realized per-piece price and only shrinks the
// due. PaidAmount is never touched on this path; cash refunds go through
// ReturnItemWithRefund.
func (s *service) ReturnItem(ctx context.Context, saleID, itemID uuid.UUID, returnQty int) (*models.Sale, error) {
	var sale *models.Sale
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		loaded, item, err := s.loadSaleItem(ctx, repo, saleID, itemID, returnQty)
		if err != nil {
			return err
		}
		sale = loaded
		itemName := item.Name

		// Proportional to the line's average per-piece price, which
		// absorbs any manual rate override made at the counter.
		refund := units.RoundMoney(
			decimal.NewFromInt(int64(item.Subtotal)).
				Div(decimal.NewFromInt(int64(item.QuantityPieces))).
				Mul(decimal.NewFromInt(int64(returnQty))))

		if err := s.restoreReturned(ctx, tx, item, returnQty); err != nil {
			return err
		}

		items := removeOrShrink(sale.Items, item.ID, returnQty, func(line *models.SaleItem, newQty int) {
			line.Subtotal -= refund
			line.FormattedQty = fmt.Sprintf("%d pcs (Returned %d)", newQty, returnQty)
		})

		sale.SubTotal -= refund
		sale.FinalAmount -= refund
		sale.DueAmount = sale.FinalAmount - sale.PaidAmount
		sale.Note = appendNote(sale.Note, fmt.Sprintf("| Returned %d of %s", returnQty, itemName))

		if err := repo.ReplaceItems(ctx, sale.ID, items); err != nil {
			return errors.Wrap(errors.CodeInternal, err, "replacing sale items")
		}
		sale.Items = items
		if err := repo.SaveSale(ctx, sale); err != nil {
			return errors.Wrap(errors.CodeInternal, err, "saving sale")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithInvoice(ctx, sale.InvoiceNumber), "item returned against due")
	return sale, nil
}

// ReturnItemWithRefund takes goods back with cash handed to the customer:
// the operator states the refunded amount, paidAmount shrinks by it and a
// negative payment entry keeps the cash trail honest.
func (s *service) ReturnItemWithRefund(ctx context.Context, saleID, itemID uuid.UUID, returnQty, refundAmount int) (*models.Sale, error) {
	if refundAmount <= 0 {
		return nil, errors.New(errors.CodeValidation, "refund amount must be positive")
	}

	var sale *models.Sale
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		loaded, item, err := s.loadSaleItem(ctx, repo, saleID, itemID, returnQty)
		if err != nil {
			return err
		}
		sale = loaded
		itemName := item.Name
		priceUnit := item.PriceUnit

		if err := s.restoreReturned(ctx, tx, item, returnQty); err != nil {
			return err
		}

		items := removeOrShrink(sale.Items, item.ID, returnQty, func(line *models.SaleItem, newQty int) {
			line.Subtotal = units.RoundMoney(decimal.NewFromInt(int64(newQty)).Mul(priceUnit))
			line.FormattedQty = fmt.Sprintf("%d pcs (Returned %d)", newQty, returnQty)
		})

		subTotal := 0
		for _, line := range items {
			subTotal += line.Subtotal
		}
		sale.SubTotal = subTotal
		sale.FinalAmount = subTotal - sale.Discount
		sale.PaidAmount -= refundAmount
		sale.DueAmount = sale.FinalAmount - sale.PaidAmount
		sale.Note = appendNote(sale.Note, fmt.Sprintf("| Return: %dpcs", returnQty))

		payment := &models.Payment{
			SaleID: sale.ID,
			Amount: -refundAmount,
			Date:   time.Now().UTC(),
			Note:   fmt.Sprintf("Returned %dx %s", returnQty, itemName),
		}
		if err := repo.CreatePayment(ctx, payment); err != nil {
			return errors.Wrap(errors.CodeInternal, err, "recording refund")
		}

		if err := repo.ReplaceItems(ctx, sale.ID, items); err != nil {
			return errors.Wrap(errors.CodeInternal, err, "replacing sale items")
		}
		sale.Items = items
		if err := repo.SaveSale(ctx, sale); err != nil {
			return errors.Wrap(errors.CodeInternal, err, "saving sale")
		}
		sale.Payments = append(sale.Payments, *payment)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithInvoice(ctx, sale.InvoiceNumber), "item returned with cash refund")
	return sale, nil
}

func (s *service) loadSaleItem(ctx context.Context, repo Repository, saleID, itemID uuid.UUID, returnQty int) (*models.Sale, *models.SaleItem, error) {
	if returnQty <= 0 {
		return nil, nil, errors.New(errors.CodeValidation, "return quantity must be positive")
	}

	sale, err := repo.FindSaleByID(ctx, saleID)
	if stdErrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, errors.New(errors.CodeNotFound, "sale not found")
	}
	if err != nil {
		return nil, nil, errors.Wrap(errors.CodeInternal, err, "loading sale")
	}

	for i := range sale.Items {
		if sale.Items[i].ID == itemID {
			if returnQty > sale.Items[i].QuantityPieces {
				return nil, nil, errors.New(errors.CodeValidation, "return quantity exceeds purchased quantity")
			}
			return sale, &sale.Items[i], nil
		}
	}
	return nil, nil, errors.New(errors.CodeNotFound, "sale item not found")
}

func (s *service) restoreReturned(ctx context.Context, tx *gorm.DB, item *models.SaleItem, returnQty int) error {
	if item.Manual() {
		return nil
	}
	_, err := s.mover.Restore(ctx, tx, []stock.MovementRequest{{
		GroupID:   *item.GroupID,
		VariantID: *item.VariantID,
		Pieces:    returnQty,
	}})
	return err
}

// removeOrShrink drops the line when fully returned, otherwise lets shrink
// adjust its money fields after the quantity is reduced.
func removeOrShrink(items []models.SaleItem, itemID uuid.UUID, returnQty int, shrink func(line *models.SaleItem, newQty int)) []models.SaleItem {
	result := make([]models.SaleItem, 0, len(items))
	for _, line := range items {
		if line.ID != itemID {
			result = append(result, line)
			continue
		}
		newQty := line.QuantityPieces - returnQty
		if newQty <= 0 {
			continue
		}
		line.QuantityPieces = newQty
		shrink(&line, newQty)
		result = append(result, line)
	}
	return result
}
