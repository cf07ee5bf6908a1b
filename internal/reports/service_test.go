package reports

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rafidahmed/tinbari-backend/pkg/db/models"
	"github.com/rafidahmed/tinbari-backend/pkg/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:reports_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func newTestService(t *testing.T, db *gorm.DB, cache Cache) Service {
	t.Helper()
	svc, err := NewService(NewRepository(db), cache, time.Minute, logger.New(logger.Options{ServiceName: "test"}))
	require.NoError(t, err)
	return svc
}

func seedSale(t *testing.T, db *gorm.DB, invoice int64, final, paid int, items []models.SaleItem) *models.Sale {
	t.Helper()
	sale := &models.Sale{
		InvoiceNumber: invoice,
		CustomerName:  "Walk-in",
		CustomerPhone: "N/A",
		SubTotal:      final,
		FinalAmount:   final,
		PaidAmount:    paid,
		DueAmount:     final - paid,
		SoldBy:        "Counter",
		Items:         items,
	}
	require.NoError(t, db.Create(sale).Error)
	return sale
}

func TestSummaryAggregatesSalesAndExpenses(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db, nil)
	ctx := context.Background()

	// 30 pieces sold at 50 each, bought at 35 each: profit 450.
	seedSale(t, db, 1001, 1500, 1500, []models.SaleItem{{
		Name:           "Corrugated Tin | AKS | 8'",
		QuantityPieces: 30,
		FormattedQty:   "30 pcs",
		PriceUnit:      decimal.NewFromInt(50),
		BuyPriceUnit:   decimal.NewFromInt(35),
		Subtotal:       1500,
	}})
	// Partially paid sale, profit 200.
	seedSale(t, db, 1002, 1000, 400, []models.SaleItem{{
		Name:           "Screws/Nuts | Local",
		QuantityPieces: 100,
		FormattedQty:   "100 pcs",
		PriceUnit:      decimal.NewFromInt(10),
		BuyPriceUnit:   decimal.NewFromInt(8),
		Subtotal:       1000,
	}})
	require.NoError(t, db.Create(&models.Expense{Reason: "Truck fare", Amount: 300}).Error)

	summary, err := svc.Summary(ctx, time.Time{}, time.Time{})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.SaleCount)
	assert.Equal(t, 2500, summary.Revenue)
	assert.Equal(t, 1900, summary.Collected)
	assert.Equal(t, 600, summary.Outstanding)
	assert.Equal(t, 650, summary.EstimatedProfit)
	assert.Equal(t, 300, summary.ExpenseTotal)
	assert.Equal(t, 350, summary.NetProfit)
}

func TestSummarySubtractsDiscountFromProfit(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db, nil)

	sale := &models.Sale{
		InvoiceNumber: 1001,
		CustomerName:  "Walk-in",
		CustomerPhone: "N/A",
		SubTotal:      1000,
		Discount:      100,
		FinalAmount:   900,
		PaidAmount:    900,
		SoldBy:        "Counter",
		Items: []models.SaleItem{{
			Name:           "Ridge | PHP",
			QuantityPieces: 10,
			FormattedQty:   "10 pcs",
			PriceUnit:      decimal.NewFromInt(100),
			BuyPriceUnit:   decimal.NewFromInt(70),
			Subtotal:       1000,
		}},
	}
	require.NoError(t, db.Create(sale).Error)

	summary, err := svc.Summary(context.Background(), time.Time{}, time.Time{})
	require.NoError(t, err)

	assert.Equal(t, 900, summary.Revenue)
	// 1000 - 700 line profit minus the 100 discount.
	assert.Equal(t, 200, summary.EstimatedProfit)
}

func TestSummaryHonorsDateRange(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db, nil)

	old := seedSale(t, db, 1001, 500, 500, []models.SaleItem{{
		Name: "Flashing", QuantityPieces: 5, FormattedQty: "5 pcs",
		PriceUnit: decimal.NewFromInt(100), BuyPriceUnit: decimal.NewFromInt(80), Subtotal: 500,
	}})
	require.NoError(t, db.Model(old).Update("created_at", time.Now().AddDate(0, -2, 0)).Error)
	seedSale(t, db, 1002, 700, 700, []models.SaleItem{{
		Name: "Flashing", QuantityPieces: 7, FormattedQty: "7 pcs",
		PriceUnit: decimal.NewFromInt(100), BuyPriceUnit: decimal.NewFromInt(80), Subtotal: 700,
	}})

	from := time.Now().AddDate(0, 0, -7)
	summary, err := svc.Summary(context.Background(), from, time.Now().Add(time.Hour))
	require.NoError(t, err)

	assert.Equal(t, 1, summary.SaleCount)
	assert.Equal(t, 700, summary.Revenue)
}

type memoCache struct {
	mu      sync.Mutex
	entries map[string]string
	sets    int
}

func (c *memoCache) CacheKey(parts ...string) string {
	key := "test"
	for _, p := range parts {
		key += ":" + p
	}
	return key
}

func (c *memoCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.entries[key]
	if !ok {
		return "", gorm.ErrRecordNotFound
	}
	return value, nil
}

func (c *memoCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries == nil {
		c.entries = map[string]string{}
	}
	c.entries[key] = string(value.([]byte))
	c.sets++
	return nil
}

func TestSummaryServesFromCache(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	cache := &memoCache{}
	svc := newTestService(t, db, cache)
	ctx := context.Background()

	seedSale(t, db, 1001, 800, 800, []models.SaleItem{{
		Name: "Ridge", QuantityPieces: 8, FormattedQty: "8 pcs",
		PriceUnit: decimal.NewFromInt(100), BuyPriceUnit: decimal.NewFromInt(60), Subtotal: 800,
	}})

	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Now().Add(time.Hour)

	first, err := svc.Summary(ctx, from, to)
	require.NoError(t, err)
	require.Equal(t, 1, cache.sets)

	// New sale is invisible until the cached entry expires.
	seedSale(t, db, 1002, 999, 999, nil)

	second, err := svc.Summary(ctx, from, to)
	require.NoError(t, err)
	assert.Equal(t, first.Revenue, second.Revenue)
	assert.Equal(t, 1, cache.sets)
}

func TestStockValuation(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db, nil)

	groupID := uuid.New()
	healthy := &models.ProductVariant{GroupID: groupID, LengthFeet: 8, StockPieces: 120, AverageCost: decimal.NewFromInt(350)}
	short := &models.ProductVariant{GroupID: groupID, LengthFeet: 10, StockPieces: -15, AverageCost: decimal.NewFromInt(400)}
	require.NoError(t, db.Create(healthy).Error)
	require.NoError(t, db.Create(short).Error)

	valuation, err := svc.StockValuation(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, valuation.VariantCount)
	assert.Equal(t, 105, valuation.TotalPieces)
	assert.True(t, valuation.TotalValue.Equal(decimal.NewFromInt(42000)))
	require.Len(t, valuation.NegativeVariants, 1)
	assert.Equal(t, short.ID, valuation.NegativeVariants[0])
}

func TestTopDues(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db, nil)

	seedSale(t, db, 1001, 5000, 1000, nil)
	seedSale(t, db, 1002, 3000, 3000, nil)
	seedSale(t, db, 1003, 9000, 2000, nil)

	dues, err := svc.TopDues(context.Background(), 10)
	require.NoError(t, err)

	require.Len(t, dues, 2)
	assert.Equal(t, int64(1003), dues[0].InvoiceNumber)
	assert.Equal(t, 7000, dues[0].DueAmount)
	assert.Equal(t, int64(1001), dues[1].InvoiceNumber)
	assert.Equal(t, 4000, dues[1].DueAmount)
}
