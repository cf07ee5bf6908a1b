package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rafidahmed/tinbari-backend/pkg/db/models"
	"github.com/rafidahmed/tinbari-backend/pkg/enums"
	pkgerrors "github.com/rafidahmed/tinbari-backend/pkg/errors"
	"github.com/rafidahmed/tinbari-backend/pkg/logger"
)

type testTxRunner struct {
	db *gorm.DB
}

func (r testTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:catalog_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func newCatalogService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(testTxRunner{db: db}, NewRepository(db), logger.New(logger.Options{ServiceName: "test"}))
	require.NoError(t, err)
	return svc
}

func TestCreateGroupAppliesDefaults(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newCatalogService(t, db)

	group, err := svc.CreateGroup(context.Background(), CreateGroupInput{
		ProductType:     "Corrugated Tin",
		Brand:           "AKS",
		CalculationMode: enums.CalculationModeTinBundle,
	})
	require.NoError(t, err)
	assert.Equal(t, "N/A", group.Color)
	assert.Equal(t, "Standard", group.Thickness)
	assert.NotEqual(t, uuid.Nil, group.ID)
}

func TestCreateGroupRejectsInvalidMode(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newCatalogService(t, db)

	_, err := svc.CreateGroup(context.Background(), CreateGroupInput{
		ProductType:     "Corrugated Tin",
		Brand:           "AKS",
		CalculationMode: enums.CalculationMode("weighted"),
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestDeleteGroupCascadesVariantsOnly(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newCatalogService(t, db)
	ctx := context.Background()

	group, err := svc.CreateGroup(ctx, CreateGroupInput{
		ProductType:     "Corrugated Tin",
		Brand:           "PHP",
		CalculationMode: enums.CalculationModeTinBundle,
	})
	require.NoError(t, err)

	base := 72.0
	variant := &models.ProductVariant{
		GroupID:         group.ID,
		LengthFeet:      6,
		CalculationBase: &base,
		StockPieces:     120,
		AverageCost:     decimal.NewFromInt(350),
	}
	require.NoError(t, db.Create(variant).Error)

	// a sale referencing the variant stays behind as a snapshot
	sale := &models.Sale{
		InvoiceNumber: 1001,
		CustomerName:  "Karim",
		SoldBy:        "admin",
		Items: []models.SaleItem{{
			GroupID:        &group.ID,
			VariantID:      &variant.ID,
			Name:           "Corrugated Tin | PHP | 6'",
			QuantityPieces: 10,
			FormattedQty:   "10 pcs",
			Subtotal:       4000,
			UnitType:       enums.UnitTypePiece,
		}},
	}
	require.NoError(t, db.Create(sale).Error)

	require.NoError(t, svc.DeleteGroup(ctx, group.ID))

	var variantCount int64
	require.NoError(t, db.Model(&models.ProductVariant{}).Count(&variantCount).Error)
	assert.Zero(t, variantCount)

	var itemCount int64
	require.NoError(t, db.Model(&models.SaleItem{}).Count(&itemCount).Error)
	assert.Equal(t, int64(1), itemCount)
}

func TestGetSettingsSeedsDefaults(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newCatalogService(t, db)

	settings, err := svc.GetSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(DefaultNextInvoiceNumber), settings.NextInvoiceNumber)
	assert.NotEmpty(t, settings.Brands)
	assert.NotEmpty(t, settings.ProductTypes)
}

func TestUpdateSettingsReplacesOnlyProvidedLists(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newCatalogService(t, db)
	ctx := context.Background()

	_, err := svc.GetSettings(ctx)
	require.NoError(t, err)

	updated, err := svc.UpdateSettings(ctx, UpdateSettingsInput{
		Brands: []string{"AKS", "PHP"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"AKS", "PHP"}, updated.Brands)
	assert.NotEmpty(t, updated.Colors)
}

func TestDeleteVariantRequiresZeroStock(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newCatalogService(t, db)
	ctx := context.Background()

	group, err := svc.CreateGroup(ctx, CreateGroupInput{
		ProductType:     "Corrugated Tin",
		Brand:           "AKS",
		CalculationMode: enums.CalculationModeTinBundle,
	})
	require.NoError(t, err)

	variant := &models.ProductVariant{
		GroupID:     group.ID,
		LengthFeet:  8,
		StockPieces: 45,
		AverageCost: decimal.NewFromInt(400),
	}
	require.NoError(t, db.Create(variant).Error)

	err = svc.DeleteVariant(ctx, group.ID, variant.ID)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	require.NoError(t, db.Model(variant).Update("stock_pieces", 0).Error)
	require.NoError(t, svc.DeleteVariant(ctx, group.ID, variant.ID))

	var count int64
	require.NoError(t, db.Model(&models.ProductVariant{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSetVariantSellingPrice(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newCatalogService(t, db)
	ctx := context.Background()

	group, err := svc.CreateGroup(ctx, CreateGroupInput{
		ProductType:     "Ridge",
		Brand:           "TK",
		CalculationMode: enums.CalculationModeFixedPiece,
	})
	require.NoError(t, err)

	variant := &models.ProductVariant{GroupID: group.ID, LengthFeet: 10, AverageCost: decimal.Zero}
	require.NoError(t, db.Create(variant).Error)

	updated, err := svc.SetVariantSellingPrice(ctx, group.ID, variant.ID, 450)
	require.NoError(t, err)
	require.NotNil(t, updated.SellingPrice)
	assert.Equal(t, 450, *updated.SellingPrice)

	_, err = svc.SetVariantSellingPrice(ctx, group.ID, uuid.New(), 450)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
