package stock

import (
	"context"
	stdErrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rafidahmed/tinbari-backend/internal/costing"
	"github.com/rafidahmed/tinbari-backend/internal/units"
	"github.com/rafidahmed/tinbari-backend/pkg/db/models"
	"github.com/rafidahmed/tinbari-backend/pkg/enums"
	"github.com/rafidahmed/tinbari-backend/pkg/errors"
	"github.com/rafidahmed/tinbari-backend/pkg/logger"
	"github.com/rafidahmed/tinbari-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service receives stock and exposes the stock log.
type Service interface {
	StockIn(ctx context.Context, input StockInInput) (*StockInResult, error)
	Logs(ctx context.Context, from, to time.Time, params pagination.Params) (*LogsPage, error)
}

// LogsPage is one page of the stock-in journal. NextCursor is empty on the
// last page.
type LogsPage struct {
	Logs       []models.StockLog `json:"logs"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

// StockInInput is one restock entry as keyed in by the operator.
type StockInInput struct {
	GroupID         uuid.UUID
	LengthFeet      float64
	CalculationBase *float64
	Quantity        float64
	Unit            enums.UnitType
	Rate            decimal.Decimal
	Note            *string
	Date            time.Time
	ConfirmZeroCost bool
}

// StockInResult reports the variant state after the restock.
type StockInResult struct {
	Variant        models.ProductVariant
	PiecesAdded    int
	NewStockLevel  int
	NewAverageCost decimal.Decimal
	CreatedVariant bool
}

type service struct {
	tx   txRunner
	repo Repository
	logg *logger.Logger
}

// NewService wires the stock service.
func NewService(tx txRunner, repo Repository, logg *logger.Logger) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("stock repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{tx: tx, repo: repo, logg: logg}, nil
}

func (s *service) StockIn(ctx context.Context, input StockInInput) (*StockInResult, error) {
	if input.GroupID == uuid.Nil {
		return nil, errors.New(errors.CodeValidation, "group id is required")
	}
	if input.Quantity <= 0 {
		return nil, errors.New(errors.CodeValidation, "quantity must be positive")
	}
	if input.Rate.Sign() < 0 {
		return nil, errors.New(errors.CodeValidation, "cost rate cannot be negative")
	}
	if input.Rate.Sign() == 0 && !input.ConfirmZeroCost {
		return nil, errors.New(errors.CodeConfirmation, "stock-in at zero cost needs confirmation")
	}
	if input.LengthFeet <= 0 {
		return nil, errors.New(errors.CodeValidation, "length in feet must be positive")
	}

	date := input.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	var result StockInResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		group, err := repo.FindGroupByID(ctx, input.GroupID)
		if err != nil {
			if stdErrors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New(errors.CodeNotFound, "product group not found")
			}
			return errors.Wrap(errors.CodeInternal, err, "loading product group")
		}

		unit := input.Unit
		if group.CalculationMode != enums.CalculationModeTinBundle {
			unit = enums.UnitTypePiece
		} else if !unit.IsValid() {
			return errors.New(errors.CodeValidation, fmt.Sprintf("invalid unit %q", input.Unit))
		}

		base := 0.0
		if input.CalculationBase != nil {
			base = *input.CalculationBase
		}

		// New sizes of an existing product are keyed by length, not id.
		variant, err := repo.FindVariantByLength(ctx, group.ID, input.LengthFeet)
		created := false
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			variant = &models.ProductVariant{
				GroupID:     group.ID,
				LengthFeet:  input.LengthFeet,
				AverageCost: decimal.Zero,
			}
			created = true
		} else if err != nil {
			return errors.Wrap(errors.CodeInternal, err, "resolving variant by length")
		}

		if base <= 0 && variant.CalculationBase != nil {
			base = *variant.CalculationBase
		}

		converted, err := units.ConvertStockIn(units.StockInEntry{
			Mode:            group.CalculationMode,
			Unit:            unit,
			Quantity:        input.Quantity,
			LengthFeet:      input.LengthFeet,
			CalculationBase: base,
			Rate:            input.Rate,
		})
		if err != nil {
			return err
		}

		newAvg, err := costing.WeightedAverage(variant.StockPieces, variant.AverageCost, converted.Pieces, converted.TotalCost)
		if err != nil {
			return err
		}

		variant.StockPieces += converted.Pieces
		variant.AverageCost = newAvg
		if group.CalculationMode == enums.CalculationModeTinBundle {
			if base <= 0 {
				base = units.DefaultCalculationBase
			}
			variant.CalculationBase = &base
		}

		if created {
			if err := repo.CreateVariant(ctx, variant); err != nil {
				return errors.Wrap(errors.CodeInternal, err, "creating variant")
			}
		} else if err := repo.SaveVariant(ctx, variant); err != nil {
			return errors.Wrap(errors.CodeInternal, err, "saving variant")
		}

		entry := &models.StockLog{
			Date:          date,
			ProductName:   ProductName(group, input.LengthFeet),
			QuantityAdded: converted.Pieces,
			CostPrice:     input.Rate,
			NewStockLevel: variant.StockPieces,
			Note:          input.Note,
		}
		if err := repo.AppendLog(ctx, entry); err != nil {
			return errors.Wrap(errors.CodeInternal, err, "appending stock log")
		}

		result = StockInResult{
			Variant:        *variant,
			PiecesAdded:    converted.Pieces,
			NewStockLevel:  variant.StockPieces,
			NewAverageCost: newAvg,
			CreatedVariant: created,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"group_id":  input.GroupID,
		"pieces":    result.PiecesAdded,
		"new_level": result.NewStockLevel,
	}), "stock received")

	return &result, nil
}

func (s *service) Logs(ctx context.Context, from, to time.Time, params pagination.Params) (*LogsPage, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, errors.Wrap(errors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	logs, err := s.repo.ListLogs(ctx, from, to, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "listing stock logs")
	}

	page := &LogsPage{Logs: logs}
	if len(logs) > limit {
		page.Logs = logs[:limit]
		last := page.Logs[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{Timestamp: last.Date, ID: last.ID})
	}
	return page, nil
}

// ProductName renders the denormalized display name stored on stock logs and
// sale items, so history stays readable after the product is edited or
// deleted.
func ProductName(group *models.ProductGroup, lengthFeet float64) string {
	thickness := ""
	if group.Thickness != "" && group.Thickness != "N/A" && group.Thickness != "Standard" {
		thickness = group.Thickness
	}
	color := ""
	if group.Color != "" && group.Color != "N/A" {
		color = group.Color
	}

	detail := strings.TrimSpace(strings.Join(strings.Fields(thickness+" "+color), " "))
	name := fmt.Sprintf("%s | %s", group.ProductType, group.Brand)
	if detail != "" {
		name += " | " + detail
	}
	if lengthFeet > 0 {
		name += fmt.Sprintf(" | %s'", decimal.NewFromFloat(lengthFeet).String())
	}
	return name
}
