package stock

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/rafidahmed/tinbari-backend/pkg/db/models"
	"github.com/rafidahmed/tinbari-backend/pkg/enums"
	pkgerrors "github.com/rafidahmed/tinbari-backend/pkg/errors"
	"github.com/rafidahmed/tinbari-backend/pkg/logger"
	"github.com/rafidahmed/tinbari-backend/pkg/pagination"
)

type testTxRunner struct {
	db *gorm.DB
}

func (r testTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func newStockService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(testTxRunner{db: db}, NewRepository(db), logger.New(logger.Options{ServiceName: "test"}))
	require.NoError(t, err)
	return svc
}

func seedBundleGroup(t *testing.T, db *gorm.DB) *models.ProductGroup {
	t.Helper()
	group := &models.ProductGroup{
		ProductType:     "Tin",
		Brand:           "PHP",
		Color:           "N/A",
		Thickness:       "Standard",
		CalculationMode: enums.CalculationModeTinBundle,
	}
	require.NoError(t, db.Create(group).Error)
	return group
}

func TestStockInFirstRestockSetsAverage(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newStockService(t, db)
	group := seedBundleGroup(t, db)
	base := 72.0

	result, err := svc.StockIn(context.Background(), StockInInput{
		GroupID:         group.ID,
		LengthFeet:      6,
		CalculationBase: &base,
		Quantity:        10,
		Unit:            enums.UnitTypeBundle,
		Rate:            decimal.NewFromInt(4200),
	})
	require.NoError(t, err)

	assert.True(t, result.CreatedVariant)
	assert.Equal(t, 120, result.PiecesAdded)
	assert.Equal(t, 120, result.NewStockLevel)
	assert.True(t, result.NewAverageCost.Equal(decimal.NewFromInt(350)), "got %s", result.NewAverageCost)

	var logs []models.StockLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, 120, logs[0].QuantityAdded)
	assert.Equal(t, 120, logs[0].NewStockLevel)
	assert.Contains(t, logs[0].ProductName, "Tin | PHP")
}

func TestStockInBlendsAverageOnSecondRestock(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newStockService(t, db)
	group := seedBundleGroup(t, db)
	base := 72.0
	ctx := context.Background()

	_, err := svc.StockIn(ctx, StockInInput{
		GroupID:         group.ID,
		LengthFeet:      6,
		CalculationBase: &base,
		Quantity:        10,
		Unit:            enums.UnitTypeBundle,
		Rate:            decimal.NewFromInt(4200),
	})
	require.NoError(t, err)

	// 60 loose pieces = 5 bundle equivalents at a cheaper 2100/bundle rate:
	// (120*350 + 10500) / 180 = 291.6667
	result, err := svc.StockIn(ctx, StockInInput{
		GroupID:    group.ID,
		LengthFeet: 6,
		Quantity:   60,
		Unit:       enums.UnitTypePiece,
		Rate:       decimal.NewFromInt(2100),
	})
	require.NoError(t, err)

	assert.False(t, result.CreatedVariant)
	assert.Equal(t, 180, result.NewStockLevel)
	assert.True(t, result.NewAverageCost.Equal(decimal.NewFromFloat(291.6667)), "got %s", result.NewAverageCost)
}

func TestStockInResolvesVariantByLength(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newStockService(t, db)
	group := seedBundleGroup(t, db)
	base := 72.0
	ctx := context.Background()

	_, err := svc.StockIn(ctx, StockInInput{
		GroupID: group.ID, LengthFeet: 6, CalculationBase: &base,
		Quantity: 10, Unit: enums.UnitTypeBundle, Rate: decimal.NewFromInt(4200),
	})
	require.NoError(t, err)

	// a different length is a new size, not the same variant
	result, err := svc.StockIn(ctx, StockInInput{
		GroupID: group.ID, LengthFeet: 8, CalculationBase: &base,
		Quantity: 5, Unit: enums.UnitTypeBundle, Rate: decimal.NewFromInt(5600),
	})
	require.NoError(t, err)
	assert.True(t, result.CreatedVariant)
	assert.Equal(t, 45, result.PiecesAdded) // 5 * 72/8 = 45

	var variants []models.ProductVariant
	require.NoError(t, db.Where("group_id = ?", group.ID).Find(&variants).Error)
	assert.Len(t, variants, 2)
}

func TestStockInZeroCostNeedsConfirmation(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newStockService(t, db)
	group := seedBundleGroup(t, db)
	base := 72.0
	ctx := context.Background()

	input := StockInInput{
		GroupID: group.ID, LengthFeet: 6, CalculationBase: &base,
		Quantity: 2, Unit: enums.UnitTypeBundle, Rate: decimal.Zero,
	}

	_, err := svc.StockIn(ctx, input)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConfirmation))

	// nothing was written
	var count int64
	require.NoError(t, db.Model(&models.StockLog{}).Count(&count).Error)
	assert.Zero(t, count)

	input.ConfirmZeroCost = true
	result, err := svc.StockIn(ctx, input)
	require.NoError(t, err)
	assert.True(t, result.NewAverageCost.IsZero())
}

func TestLogsPaginateByCursor(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newStockService(t, db)
	group := seedBundleGroup(t, db)
	base := 72.0
	ctx := context.Background()

	for day := 1; day <= 5; day++ {
		_, err := svc.StockIn(ctx, StockInInput{
			GroupID: group.ID, LengthFeet: 6, CalculationBase: &base,
			Quantity: 1, Unit: enums.UnitTypeBundle, Rate: decimal.NewFromInt(4200),
			Date: time.Date(2026, 3, day, 10, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
	}

	first, err := svc.Logs(ctx, time.Time{}, time.Time{}, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Logs, 2)
	require.NotEmpty(t, first.NextCursor)
	assert.True(t, first.Logs[0].Date.After(first.Logs[1].Date))

	second, err := svc.Logs(ctx, time.Time{}, time.Time{}, pagination.Params{Limit: 2, Cursor: first.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Logs, 2)
	assert.True(t, first.Logs[1].Date.After(second.Logs[0].Date))

	last, err := svc.Logs(ctx, time.Time{}, time.Time{}, pagination.Params{Limit: 2, Cursor: second.NextCursor})
	require.NoError(t, err)
	require.Len(t, last.Logs, 1)
	assert.Empty(t, last.NextCursor)
}

func TestLogsRejectInvalidCursor(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newStockService(t, db)

	_, err := svc.Logs(context.Background(), time.Time{}, time.Time{}, pagination.Params{Cursor: "not-base64!"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestStockInRejectsNonPositiveQuantity(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newStockService(t, db)
	group := seedBundleGroup(t, db)

	_, err := svc.StockIn(context.Background(), StockInInput{
		GroupID: group.ID, LengthFeet: 6, Quantity: 0,
		Unit: enums.UnitTypeBundle, Rate: decimal.NewFromInt(100),
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
