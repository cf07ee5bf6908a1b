package sales

import (
	"context"
	stdErrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rafidahmed/tinbari-backend/internal/catalog"
	"github.com/rafidahmed/tinbari-backend/internal/stock"
	"github.com/rafidahmed/tinbari-backend/internal/units"
	"github.com/rafidahmed/tinbari-backend/pkg/config"
	"github.com/rafidahmed/tinbari-backend/pkg/db/models"
	"github.com/rafidahmed/tinbari-backend/pkg/enums"
	"github.com/rafidahmed/tinbari-backend/pkg/errors"
	"github.com/rafidahmed/tinbari-backend/pkg/logger"
	"github.com/rafidahmed/tinbari-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type stockMover interface {
	Deduct(ctx context.Context, tx *gorm.DB, requests []stock.MovementRequest) ([]stock.MovementResult, error)
	Restore(ctx context.Context, tx *gorm.DB, requests []stock.MovementRequest) ([]stock.MovementResult, error)
}

type movementEngine struct{}

func (movementEngine) Deduct(ctx context.Context, tx *gorm.DB, requests []stock.MovementRequest) ([]stock.MovementResult, error) {
	return stock.Deduct(ctx, tx, requests)
}

func (movementEngine) Restore(ctx context.Context, tx *gorm.DB, requests []stock.MovementRequest) ([]stock.MovementResult, error) {
	return stock.Restore(ctx, tx, requests)
}

// Service is the sale transaction builder: every mutation of sale or stock
// state flows through here.
type Service interface {
	Checkout(ctx context.Context, input CheckoutInput) (*models.Sale, error)
	GetSale(ctx context.Context, id uuid.UUID) (*models.Sale, error)
	ListSales(ctx context.Context, filter ListFilter) ([]models.Sale, int64, error)
	ListDueSales(ctx context.Context) ([]models.Sale, error)
	EditSale(ctx context.Context, id uuid.UUID, input EditSaleInput) (*models.Sale, error)
	DeleteSale(ctx context.Context, id uuid.UUID) error
	AddPayment(ctx context.Context, saleID uuid.UUID, input PaymentInput) (*models.Sale, error)
	ReturnItem(ctx context.Context, saleID, itemID uuid.UUID, returnQty int) (*models.Sale, error)
	ReturnItemWithRefund(ctx context.Context, saleID, itemID uuid.UUID, returnQty, refundAmount int) (*models.Sale, error)
	CreateOpeningDue(ctx context.Context, input OpeningDueInput) (*models.Sale, error)
}

// CheckoutItemInput is one cart line. GroupID and VariantID are nil for
// manual (non-inventory) charges.
type CheckoutItemInput struct {
	GroupID   *uuid.UUID
	VariantID *uuid.UUID
	Name      string
	Quantity  float64
	Unit      enums.UnitType
	Rate      decimal.Decimal
}

// CheckoutInput is a complete sale as submitted from the counter.
type CheckoutInput struct {
	Items                []CheckoutItemInput
	CustomerName         string
	CustomerPhone        string
	CustomerAddress      *string
	Discount             int
	PaidAmount           int
	DeliveryStatus       enums.DeliveryStatus
	Note                 *string
	SoldBy               string
	ConfirmNegativeStock bool
}

// EditSaleItemInput is a revised sale line. Snapshot fields are supplied in
// full; the service recomputes only sale-level totals.
type EditSaleItemInput struct {
	GroupID         *uuid.UUID
	VariantID       *uuid.UUID
	Name            string
	LengthFeet      float64
	CalculationBase *float64
	QuantityPieces  int
	FormattedQty    string
	PriceUnit       decimal.Decimal
	BuyPriceUnit    decimal.Decimal
	Subtotal        int
	UnitType        enums.UnitType
}

// EditSaleInput revises a sale in place.
type EditSaleInput struct {
	Items                []EditSaleItemInput
	CustomerName         *string
	CustomerPhone        *string
	CustomerAddress      *string
	Discount             int
	PaidAmount           int
	ConfirmNegativeStock bool
}

// PaymentInput records a due collection against a sale.
type PaymentInput struct {
	Amount     int
	Note       string
	ReceivedBy string
}

// OpeningDueInput books a pre-existing customer debt as a manual sale.
type OpeningDueInput struct {
	CustomerName    string
	CustomerPhone   string
	CustomerAddress *string
	Amount          int
	SoldBy          string
}

type service struct {
	tx          txRunner
	repo        Repository
	catalogRepo catalog.Repository
	mover       stockMover
	shop        config.ShopConfig
	logg        *logger.Logger
}

// NewService wires the sale transaction builder.
func NewService(
	tx txRunner,
	repo Repository,
	catalogRepo catalog.Repository,
	mover stockMover,
	shop config.ShopConfig,
	logg *logger.Logger,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("sales repository required")
	}
	if catalogRepo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if mover == nil {
		mover = movementEngine{}
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if shop.MinPhoneDigits <= 0 {
		shop.MinPhoneDigits = 11
	}
	return &service{
		tx:          tx,
		repo:        repo,
		catalogRepo: catalogRepo,
		mover:       mover,
		shop:        shop,
		logg:        logg,
	}, nil
}

func (s *service) Checkout(ctx context.Context, input CheckoutInput) (*models.Sale, error) {
	if len(input.Items) == 0 {
		return nil, errors.New(errors.CodeValidation, "cart is empty")
	}
	if strings.TrimSpace(input.CustomerName) == "" {
		return nil, errors.New(errors.CodeValidation, "customer name is required")
	}
	if input.Discount < 0 {
		return nil, errors.New(errors.CodeValidation, "discount cannot be negative")
	}
	status := input.DeliveryStatus
	if status == "" {
		status = enums.DeliveryStatusDelivered
	}
	if !status.IsValid() {
		return nil, errors.New(errors.CodeValidation, fmt.Sprintf("invalid delivery status %q", input.DeliveryStatus))
	}

	var sale *models.Sale
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		catalogRepo := s.catalogRepo.WithTx(tx)

		items, err := s.buildItems(ctx, catalogRepo, input.Items)
		if err != nil {
			return err
		}

		subTotal := 0
		for _, item := range items {
			subTotal += item.Subtotal
		}
		finalAmount := subTotal - input.Discount
		dueAmount := finalAmount - input.PaidAmount

		// No anonymous credit.
		if dueAmount > 0 && digitCount(input.CustomerPhone) < s.shop.MinPhoneDigits {
			return errors.New(errors.CodeValidation, "customer phone is required for credit sales")
		}

		if err := s.deductFor(ctx, tx, items, input.ConfirmNegativeStock); err != nil {
			return err
		}

		invoice, err := repo.NextInvoiceNumber(ctx)
		if err != nil {
			return errors.Wrap(errors.CodeInternal, err, "allocating invoice number")
		}

		sale = &models.Sale{
			InvoiceNumber:   invoice,
			CustomerName:    strings.TrimSpace(input.CustomerName),
			CustomerPhone:   orNA(input.CustomerPhone),
			CustomerAddress: input.CustomerAddress,
			SubTotal:        subTotal,
			Discount:        input.Discount,
			FinalAmount:     finalAmount,
			PaidAmount:      input.PaidAmount,
			DueAmount:       dueAmount,
			DeliveryStatus:  status,
			SoldBy:          orDefault(input.SoldBy, "POS"),
			Note:            input.Note,
			Items:           items,
		}
		if err := repo.CreateSale(ctx, sale); err != nil {
			return errors.Wrap(errors.CodeInternal, err, "creating sale")
		}

		if input.PaidAmount > 0 {
			payment := &models.Payment{
				SaleID:     sale.ID,
				Amount:     input.PaidAmount,
				Date:       time.Now().UTC(),
				Note:       "Initial",
				ReceivedBy: sale.SoldBy,
			}
			if err := repo.CreatePayment(ctx, payment); err != nil {
				return errors.Wrap(errors.CodeInternal, err, "recording initial payment")
			}
			sale.Payments = append(sale.Payments, *payment)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithInvoice(ctx, sale.InvoiceNumber), "sale completed")
	return sale, nil
}

func (s *service) GetSale(ctx context.Context, id uuid.UUID) (*models.Sale, error) {
	sale, err := s.repo.FindSaleByID(ctx, id)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "sale not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "loading sale")
	}
	return sale, nil
}

func (s *service) ListSales(ctx context.Context, filter ListFilter) ([]models.Sale, int64, error) {
	filter.Limit = pagination.NormalizeLimit(filter.Limit)
	sales, total, err := s.repo.ListSales(ctx, filter)
	if err != nil {
		return nil, 0, errors.Wrap(errors.CodeInternal, err, "listing sales")
	}
	return sales, total, nil
}

func (s *service) ListDueSales(ctx context.Context) ([]models.Sale, error) {
	sales, err := s.repo.ListDueSales(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "listing due sales")
	}
	return sales, nil
}

// EditSale revises a sale atomically with respect to inventory: the original
// items' stock effect is fully restored first, then the revised items'
// effect is applied. Deltas are never computed directly.
func (s *service) EditSale(ctx context.Context, id uuid.UUID, input EditSaleInput) (*models.Sale, error) {
	if len(input.Items) == 0 {
		return nil, errors.New(errors.CodeValidation, "a sale needs at least one item")
	}
	if input.Discount < 0 {
		return nil, errors.New(errors.CodeValidation, "discount cannot be negative")
	}
	for _, item := range input.Items {
		if item.QuantityPieces <= 0 {
			return nil, errors.New(errors.CodeValidation, "item quantity must be positive")
		}
		if item.Subtotal < 0 {
			return nil, errors.New(errors.CodeValidation, "item subtotal cannot be negative")
		}
	}

	var sale *models.Sale
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		loaded, err := repo.FindSaleByID(ctx, id)
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New(errors.CodeNotFound, "sale not found")
		}
		if err != nil {
			return errors.Wrap(errors.CodeInternal, err, "loading sale")
		}
		sale = loaded

		// Phase one: put the original items' stock back.
		if _, err := s.mover.Restore(ctx, tx, movementRequests(sale.Items)); err != nil {
			return err
		}

		items := make([]models.SaleItem, 0, len(input.Items))
		for _, in := range input.Items {
			items = append(items, models.SaleItem{
				GroupID:         in.GroupID,
				VariantID:       in.VariantID,
				Name:            in.Name,
				LengthFeet:      in.LengthFeet,
				CalculationBase: in.CalculationBase,
				QuantityPieces:  in.QuantityPieces,
				FormattedQty:    in.FormattedQty,
				PriceUnit:       in.PriceUnit,
				BuyPriceUnit:    in.BuyPriceUnit,
				Subtotal:        in.Subtotal,
				UnitType:        in.UnitType,
			})
		}

		// Phase two: apply the revised items' stock effect.
		if err := s.deductFor(ctx, tx, items, input.ConfirmNegativeStock); err != nil {
			return err
		}

		subTotal := 0
		for _, item := range items {
			subTotal += item.Subtotal
		}
		sale.SubTotal = subTotal
		sale.Discount = input.Discount
		sale.FinalAmount = subTotal - input.Discount
		sale.PaidAmount = input.PaidAmount
		sale.DueAmount = sale.FinalAmount - input.PaidAmount
		if input.CustomerName != nil && strings.TrimSpace(*input.CustomerName) != "" {
			sale.CustomerName = strings.TrimSpace(*input.CustomerName)
		}
		if input.CustomerPhone != nil {
			sale.CustomerPhone = orNA(*input.CustomerPhone)
		}
		if input.CustomerAddress != nil {
			sale.CustomerAddress = input.CustomerAddress
		}
		sale.Note = appendNote(sale.Note, "(Edited)")

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

	s.logg.Info(s.logg.WithInvoice(ctx, sale.InvoiceNumber), "sale edited")
	return sale, nil
}

func (s *service) DeleteSale(ctx context.Context, id uuid.UUID) error {
	var invoice int64
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		sale, err := repo.FindSaleByID(ctx, id)
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New(errors.CodeNotFound, "sale not found")
		}
		if err != nil {
			return errors.Wrap(errors.CodeInternal, err, "loading sale")
		}
		invoice = sale.InvoiceNumber

		if _, err := s.mover.Restore(ctx, tx, movementRequests(sale.Items)); err != nil {
			return err
		}
		if err := repo.DeleteSale(ctx, id); err != nil {
			return errors.Wrap(errors.CodeInternal, err, "deleting sale")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logg.Info(s.logg.WithInvoice(ctx, invoice), "sale deleted")
	return nil
}

// buildItems prices each cart line and snapshots the product name and buy
// cost, so the sale stays interpretable after the catalog changes.
func (s *service) buildItems(ctx context.Context, catalogRepo catalog.Repository, inputs []CheckoutItemInput) ([]models.SaleItem, error) {
	items := make([]models.SaleItem, 0, len(inputs))
	for _, in := range inputs {
		if in.GroupID == nil || in.VariantID == nil {
			item, err := buildManualItem(in)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
			continue
		}

		group, err := catalogRepo.FindGroupByID(ctx, *in.GroupID)
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "product group not found")
		}
		if err != nil {
			return nil, errors.Wrap(errors.CodeInternal, err, "loading product group")
		}
		variant, err := catalogRepo.FindVariantByID(ctx, group.ID, *in.VariantID)
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "product variant not found")
		}
		if err != nil {
			return nil, errors.Wrap(errors.CodeInternal, err, "loading product variant")
		}

		base := 0.0
		if variant.CalculationBase != nil {
			base = *variant.CalculationBase
		}
		priced, err := units.PriceLine(units.Line{
			Mode:            group.CalculationMode,
			Unit:            in.Unit,
			Quantity:        in.Quantity,
			LengthFeet:      variant.LengthFeet,
			CalculationBase: base,
			Rate:            in.Rate,
		})
		if err != nil {
			return nil, err
		}

		unitType := enums.UnitTypePiece
		if group.CalculationMode == enums.CalculationModeTinBundle {
			unitType = in.Unit
		}

		items = append(items, models.SaleItem{
			GroupID:         in.GroupID,
			VariantID:       in.VariantID,
			Name:            stock.ProductName(group, variant.LengthFeet),
			LengthFeet:      variant.LengthFeet,
			CalculationBase: variant.CalculationBase,
			QuantityPieces:  priced.Pieces,
			FormattedQty:    priced.FormattedQty,
			PriceUnit:       in.Rate,
			BuyPriceUnit:    variant.AverageCost,
			Subtotal:        priced.Subtotal,
			UnitType:        unitType,
		})
	}
	return items, nil
}

func buildManualItem(in CheckoutItemInput) (models.SaleItem, error) {
	if strings.TrimSpace(in.Name) == "" {
		return models.SaleItem{}, errors.New(errors.CodeValidation, "manual item name is required")
	}
	if in.Quantity <= 0 {
		return models.SaleItem{}, errors.New(errors.CodeValidation, "quantity must be positive")
	}
	if in.Rate.Sign() <= 0 {
		return models.SaleItem{}, errors.New(errors.CodeValidation, "selling rate must be positive")
	}

	pieces := int(in.Quantity + 0.5)
	subtotal := units.RoundMoney(decimal.NewFromFloat(in.Quantity).Mul(in.Rate))
	return models.SaleItem{
		Name:           strings.TrimSpace(in.Name),
		QuantityPieces: pieces,
		FormattedQty:   fmt.Sprintf("%d pcs", pieces),
		PriceUnit:      in.Rate,
		BuyPriceUnit:   decimal.Zero,
		Subtotal:       subtotal,
		UnitType:       enums.UnitTypePiece,
	}, nil
}

// deductFor applies one stock deduction per non-manual item and converts
// negative outcomes into a confirmation requirement unless already
// confirmed. Running inside the caller's transaction means an unconfirmed
// warning rolls everything back untouched.
func (s *service) deductFor(ctx context.Context, tx *gorm.DB, items []models.SaleItem, confirmed bool) error {
	requests := movementRequests(items)
	if len(requests) == 0 {
		return nil
	}
	results, err := s.mover.Deduct(ctx, tx, requests)
	if err != nil {
		return err
	}
	if confirmed {
		return nil
	}

	negatives := map[string]any{}
	for _, res := range results {
		if res.Found && res.Negative {
			negatives[res.VariantID.String()] = res.NewLevel
		}
	}
	if len(negatives) > 0 {
		return errors.New(errors.CodeConfirmation, "stock will go negative").
			WithDetails(map[string]any{"variants": negatives})
	}
	return nil
}

func movementRequests(items []models.SaleItem) []stock.MovementRequest {
	requests := make([]stock.MovementRequest, 0, len(items))
	for _, item := range items {
		if item.Manual() {
			continue
		}
		requests = append(requests, stock.MovementRequest{
			GroupID:   *item.GroupID,
			VariantID: *item.VariantID,
			Pieces:    item.QuantityPieces,
		})
	}
	return requests
}

func digitCount(phone string) int {
	count := 0
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			count++
		}
	}
	return count
}

func orNA(value string) string {
	if strings.TrimSpace(value) == "" {
		return "N/A"
	}
	return strings.TrimSpace(value)
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func appendNote(note *string, suffix string) *string {
	combined := suffix
	if note != nil && *note != "" {
		combined = *note + " " + suffix
	}
	return &combined
}
