package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rafidahmed/tinbari-backend/internal/units"
	"github.com/rafidahmed/tinbari-backend/pkg/errors"
	"github.com/rafidahmed/tinbari-backend/pkg/logger"
)

// Cache is the slice of the redis client reporting needs. A nil cache
// disables caching entirely.
type Cache interface {
	CacheKey(parts ...string) string
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// Service computes read-only summaries over sales, stock and expenses.
type Service interface {
	Summary(ctx context.Context, from, to time.Time) (*SalesSummary, error)
	StockValuation(ctx context.Context) (*StockValuation, error)
	TopDues(ctx context.Context, limit int) ([]DueEntry, error)
}

// SalesSummary is the date-ranged money picture of the shop.
type SalesSummary struct {
	From            time.Time `json:"from"`
	To              time.Time `json:"to"`
	SaleCount       int       `json:"sale_count"`
	Revenue         int       `json:"revenue"`
	Collected       int       `json:"collected"`
	Outstanding     int       `json:"outstanding"`
	EstimatedProfit int       `json:"estimated_profit"`
	ExpenseTotal    int       `json:"expense_total"`
	NetProfit       int       `json:"net_profit"`
}

// StockValuation totals current stock at its weighted-average cost.
type StockValuation struct {
	VariantCount     int             `json:"variant_count"`
	TotalPieces      int             `json:"total_pieces"`
	TotalValue       decimal.Decimal `json:"total_value"`
	NegativeVariants []uuid.UUID     `json:"negative_variants"`
}

// DueEntry ranks a customer debt.
type DueEntry struct {
	SaleID        uuid.UUID `json:"sale_id"`
	InvoiceNumber int64     `json:"invoice_number"`
	CustomerName  string    `json:"customer_name"`
	CustomerPhone string    `json:"customer_phone"`
	DueAmount     int       `json:"due_amount"`
}

type service struct {
	repo     Repository
	cache    Cache
	cacheTTL time.Duration
	logg     *logger.Logger
}

// NewService wires the reports service. cache may be nil.
func NewService(repo Repository, cache Cache, cacheTTL time.Duration, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reports repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &service{repo: repo, cache: cache, cacheTTL: cacheTTL, logg: logg}, nil
}

func (s *service) Summary(ctx context.Context, from, to time.Time) (*SalesSummary, error) {
	key := ""
	if s.cache != nil {
		key = s.cache.CacheKey("summary", from.Format("20060102"), to.Format("20060102"))
		if raw, err := s.cache.Get(ctx, key); err == nil {
			var cached SalesSummary
			if json.Unmarshal([]byte(raw), &cached) == nil {
				return &cached, nil
			}
		}
	}

	sales, err := s.repo.SalesBetween(ctx, from, to)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "loading sales for summary")
	}
	expenses, err := s.repo.ExpensesBetween(ctx, from, to)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "loading expenses for summary")
	}

	summary := &SalesSummary{From: from, To: to, SaleCount: len(sales)}
	for _, sale := range sales {
		summary.Revenue += sale.FinalAmount
		summary.Collected += sale.PaidAmount
		summary.Outstanding += sale.DueAmount

		// Profit from the buy-cost snapshots, not the live catalog.
		for _, item := range sale.Items {
			cost := units.RoundMoney(item.BuyPriceUnit.Mul(decimal.NewFromInt(int64(item.QuantityPieces))))
			summary.EstimatedProfit += item.Subtotal - cost
		}
		summary.EstimatedProfit -= sale.Discount
	}
	for _, expense := range expenses {
		summary.ExpenseTotal += expense.Amount
	}
	summary.NetProfit = summary.EstimatedProfit - summary.ExpenseTotal

	if s.cache != nil {
		payload, err := json.Marshal(summary)
		if err == nil {
			if err := s.cache.Set(ctx, key, payload, s.cacheTTL); err != nil {
				s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "caching sales summary failed")
			}
		}
	}
	return summary, nil
}

func (s *service) StockValuation(ctx context.Context) (*StockValuation, error) {
	variants, err := s.repo.Variants(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "loading variants for valuation")
	}

	valuation := &StockValuation{VariantCount: len(variants), TotalValue: decimal.Zero}
	for _, variant := range variants {
		valuation.TotalPieces += variant.StockPieces
		if variant.StockPieces < 0 {
			valuation.NegativeVariants = append(valuation.NegativeVariants, variant.ID)
			continue
		}
		value := variant.AverageCost.Mul(decimal.NewFromInt(int64(variant.StockPieces)))
		valuation.TotalValue = valuation.TotalValue.Add(value)
	}
	return valuation, nil
}

func (s *service) TopDues(ctx context.Context, limit int) ([]DueEntry, error) {
	sales, err := s.repo.DueSales(ctx, limit)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "loading due sales")
	}

	entries := make([]DueEntry, 0, len(sales))
	for _, sale := range sales {
		entries = append(entries, DueEntry{
			SaleID:        sale.ID,
			InvoiceNumber: sale.InvoiceNumber,
			CustomerName:  sale.CustomerName,
			CustomerPhone: sale.CustomerPhone,
			DueAmount:     sale.DueAmount,
		})
	}
	return entries, nil
}
