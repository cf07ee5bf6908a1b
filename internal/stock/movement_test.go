package stock

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rafidahmed/tinbari-backend/pkg/db/models"
	"github.com/rafidahmed/tinbari-backend/pkg/enums"
	pkgerrors "github.com/rafidahmed/tinbari-backend/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:stock_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedVariant(t *testing.T, db *gorm.DB, pieces int) (*models.ProductGroup, *models.ProductVariant) {
	t.Helper()
	group := &models.ProductGroup{
		ProductType:     "Tin",
		Brand:           "PHP",
		CalculationMode: enums.CalculationModeTinBundle,
	}
	if err := db.Create(group).Error; err != nil {
		t.Fatalf("seed group: %v", err)
	}
	base := 72.0
	variant := &models.ProductVariant{
		GroupID:         group.ID,
		LengthFeet:      6,
		CalculationBase: &base,
		StockPieces:     pieces,
		AverageCost:     decimal.NewFromInt(350),
	}
	if err := db.Create(variant).Error; err != nil {
		t.Fatalf("seed variant: %v", err)
	}
	return group, variant
}

func TestDeductLowersStock(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	group, variant := seedVariant(t, db, 180)

	err := db.Transaction(func(tx *gorm.DB) error {
		results, terr := Deduct(ctx, tx, []MovementRequest{
			{GroupID: group.ID, VariantID: variant.ID, Pieces: 30},
		})
		if terr != nil {
			return terr
		}
		if len(results) != 1 {
			t.Fatalf("expected 1 result, got %d", len(results))
		}
		if !results[0].Found || results[0].NewLevel != 150 || results[0].Negative {
			t.Fatalf("unexpected result: %+v", results[0])
		}
		return nil
	})
	if err != nil {
		t.Fatalf("deduct transaction: %v", err)
	}

	var reloaded models.ProductVariant
	if err := db.First(&reloaded, "id = ?", variant.ID).Error; err != nil {
		t.Fatalf("reload variant: %v", err)
	}
	if reloaded.StockPieces != 150 {
		t.Fatalf("expected 150 pieces, got %d", reloaded.StockPieces)
	}
	if !reloaded.AverageCost.Equal(decimal.NewFromInt(350)) {
		t.Fatalf("average cost must not move on deduct, got %s", reloaded.AverageCost)
	}
}

func TestDeductAllowsNegativeStockAndFlagsIt(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	group, variant := seedVariant(t, db, 10)

	err := db.Transaction(func(tx *gorm.DB) error {
		results, terr := Deduct(ctx, tx, []MovementRequest{
			{GroupID: group.ID, VariantID: variant.ID, Pieces: 25},
		})
		if terr != nil {
			return terr
		}
		if !results[0].Negative || results[0].NewLevel != -15 {
			t.Fatalf("expected flagged negative stock, got %+v", results[0])
		}
		return nil
	})
	if err != nil {
		t.Fatalf("deduct transaction: %v", err)
	}
}

func TestRestorePutsStockBack(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	group, variant := seedVariant(t, db, 150)

	err := db.Transaction(func(tx *gorm.DB) error {
		results, terr := Restore(ctx, tx, []MovementRequest{
			{GroupID: group.ID, VariantID: variant.ID, Pieces: 10},
		})
		if terr != nil {
			return terr
		}
		if results[0].NewLevel != 160 {
			t.Fatalf("expected 160 pieces, got %+v", results[0])
		}
		return nil
	})
	if err != nil {
		t.Fatalf("restore transaction: %v", err)
	}
}

func TestMovementMissingVariantIsNoOp(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()

	err := db.Transaction(func(tx *gorm.DB) error {
		results, terr := Restore(ctx, tx, []MovementRequest{
			{GroupID: uuid.New(), VariantID: uuid.New(), Pieces: 5},
		})
		if terr != nil {
			return terr
		}
		if results[0].Found {
			t.Fatalf("expected missing variant to be reported as not found")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("restore transaction: %v", err)
	}
}

func TestMovementRejectsNonPositivePieces(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	group, variant := seedVariant(t, db, 10)

	_, err := Deduct(ctx, db, []MovementRequest{
		{GroupID: group.ID, VariantID: variant.ID, Pieces: 0},
	})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}
}
