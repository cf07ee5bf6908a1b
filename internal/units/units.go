// Package units converts between the quantity units a tin shop trades in
// (bundles, pieces, running feet) and prices quantities against a rate.
// All functions are pure.
package units

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/rafidahmed/tinbari-backend/pkg/enums"
	"github.com/rafidahmed/tinbari-backend/pkg/errors"
)

// DefaultCalculationBase is used when a bundle variant carries no explicit base.
const DefaultCalculationBase = 72.0

// PiecesPerBundle returns how many sheets of the given length make up one
// bundle. The result is rational, not necessarily an integer.
func PiecesPerBundle(calculationBase, lengthFeet float64) (float64, error) {
	if lengthFeet <= 0 {
		return 0, errors.New(errors.CodeValidation, "length in feet must be positive")
	}
	if calculationBase <= 0 {
		return 0, errors.New(errors.CodeValidation, "calculation base must be positive")
	}
	return calculationBase / lengthFeet, nil
}

// BundlesToPieces converts a bundle quantity to whole pieces, rounding
// half-up.
func BundlesToPieces(bundleQty, calculationBase, lengthFeet float64) (int, error) {
	perBundle, err := PiecesPerBundle(calculationBase, lengthFeet)
	if err != nil {
		return 0, err
	}
	return roundHalfUp(bundleQty * perBundle), nil
}

// BundleEquivalent returns the fractional bundle count a piece quantity
// represents. Used only for cost math.
func BundleEquivalent(pieces int, calculationBase, lengthFeet float64) (float64, error) {
	if calculationBase <= 0 {
		return 0, errors.New(errors.CodeValidation, "calculation base must be positive")
	}
	return float64(pieces) * lengthFeet / calculationBase, nil
}

// TotalFeet returns the total footage of a piece count at a given length.
func TotalFeet(pieces int, lengthFeet float64) float64 {
	return float64(pieces) * lengthFeet
}

// Line is one priced cart entry before it becomes a sale item.
type Line struct {
	Mode            enums.CalculationMode
	Unit            enums.UnitType
	Quantity        float64
	LengthFeet      float64
	CalculationBase float64
	Rate            decimal.Decimal
}

// Priced is the resolved piece count and money total for a Line.
type Priced struct {
	Pieces       int
	Subtotal     int
	FormattedQty string
}

// PriceLine resolves a cart line into pieces and a rounded subtotal.
//
// The rate is interpreted per the mode: per bundle for bundle stock (even
// when selling loose pieces), per foot for running-foot stock, per piece
// otherwise.
func PriceLine(l Line) (Priced, error) {
	if l.Quantity <= 0 {
		return Priced{}, errors.New(errors.CodeValidation, "quantity must be positive")
	}
	if l.Rate.Sign() <= 0 {
		return Priced{}, errors.New(errors.CodeValidation, "selling rate must be positive")
	}

	qty := decimal.NewFromFloat(l.Quantity)

	switch l.Mode {
	case enums.CalculationModeTinBundle:
		base := l.CalculationBase
		if base <= 0 {
			base = DefaultCalculationBase
		}
		perBundle, err := PiecesPerBundle(base, l.LengthFeet)
		if err != nil {
			return Priced{}, err
		}
		if l.Unit == enums.UnitTypeBundle {
			return Priced{
				Pieces:       roundHalfUp(l.Quantity * perBundle),
				Subtotal:     roundMoney(qty.Mul(l.Rate)),
				FormattedQty: fmt.Sprintf("%s bundle", trimFloat(l.Quantity)),
			}, nil
		}
		pieces := roundHalfUp(l.Quantity)
		return Priced{
			Pieces:       pieces,
			Subtotal:     roundMoney(qty.Mul(l.Rate).Div(decimal.NewFromFloat(perBundle))),
			FormattedQty: fmt.Sprintf("%d pcs", pieces),
		}, nil

	case enums.CalculationModeRunningFoot:
		pieces := roundHalfUp(l.Quantity)
		feet := TotalFeet(pieces, l.LengthFeet)
		return Priced{
			Pieces:       pieces,
			Subtotal:     roundMoney(decimal.NewFromFloat(feet).Mul(l.Rate)),
			FormattedQty: fmt.Sprintf("%d pcs (%s ft)", pieces, trimFloat(feet)),
		}, nil

	case enums.CalculationModeFixedPiece:
		pieces := roundHalfUp(l.Quantity)
		return Priced{
			Pieces:       pieces,
			Subtotal:     roundMoney(decimal.NewFromInt(int64(pieces)).Mul(l.Rate)),
			FormattedQty: fmt.Sprintf("%d pcs", pieces),
		}, nil

	default:
		return Priced{}, errors.New(errors.CodeValidation, fmt.Sprintf("unknown calculation mode %q", l.Mode))
	}
}

// StockInEntry is a restock quantity plus the rate it was bought at.
type StockInEntry struct {
	Mode            enums.CalculationMode
	Unit            enums.UnitType
	Quantity        float64
	LengthFeet      float64
	CalculationBase float64
	Rate            decimal.Decimal
}

// StockInQuantities is the piece count and exact total cost of a restock.
// TotalCost keeps full precision so averaging downstream does not compound
// rounding.
type StockInQuantities struct {
	Pieces    int
	TotalCost decimal.Decimal
}

// ConvertStockIn resolves a restock entry into pieces and total cost.
func ConvertStockIn(e StockInEntry) (StockInQuantities, error) {
	if e.Quantity <= 0 {
		return StockInQuantities{}, errors.New(errors.CodeValidation, "quantity must be positive")
	}
	if e.Rate.Sign() < 0 {
		return StockInQuantities{}, errors.New(errors.CodeValidation, "cost rate cannot be negative")
	}

	switch e.Mode {
	case enums.CalculationModeTinBundle:
		base := e.CalculationBase
		if base <= 0 {
			base = DefaultCalculationBase
		}
		if e.Unit == enums.UnitTypeBundle {
			pieces, err := BundlesToPieces(e.Quantity, base, e.LengthFeet)
			if err != nil {
				return StockInQuantities{}, err
			}
			return StockInQuantities{
				Pieces:    pieces,
				TotalCost: decimal.NewFromFloat(e.Quantity).Mul(e.Rate),
			}, nil
		}
		// Loose pieces are costed at their bundle equivalent.
		pieces := roundHalfUp(e.Quantity)
		equivalent, err := BundleEquivalent(pieces, base, e.LengthFeet)
		if err != nil {
			return StockInQuantities{}, err
		}
		return StockInQuantities{
			Pieces:    pieces,
			TotalCost: decimal.NewFromFloat(equivalent).Mul(e.Rate),
		}, nil

	case enums.CalculationModeRunningFoot:
		pieces := roundHalfUp(e.Quantity)
		feet := TotalFeet(pieces, e.LengthFeet)
		return StockInQuantities{
			Pieces:    pieces,
			TotalCost: decimal.NewFromFloat(feet).Mul(e.Rate),
		}, nil

	case enums.CalculationModeFixedPiece:
		pieces := roundHalfUp(e.Quantity)
		return StockInQuantities{
			Pieces:    pieces,
			TotalCost: decimal.NewFromInt(int64(pieces)).Mul(e.Rate),
		}, nil

	default:
		return StockInQuantities{}, errors.New(errors.CodeValidation, fmt.Sprintf("unknown calculation mode %q", e.Mode))
	}
}

// RoundMoney rounds a decimal amount to a whole currency unit, half away
// from zero.
func RoundMoney(amount decimal.Decimal) int {
	return roundMoney(amount)
}

func roundMoney(amount decimal.Decimal) int {
	return int(amount.Round(0).IntPart())
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

func trimFloat(v float64) string {
	d := decimal.NewFromFloat(v)
	return d.String()
}
