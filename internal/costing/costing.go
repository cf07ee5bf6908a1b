// Package costing implements the moving weighted-average cost of a stock
// variant.
package costing

import (
	"github.com/shopspring/decimal"

	"github.com/rafidahmed/tinbari-backend/pkg/errors"
)

// avgCostScale matches the numeric(16,4) precision average cost is stored at.
const avgCostScale = 4

// WeightedAverage blends the cost of incoming stock into the current average.
//
// The current stock's value is currentStock times currentAvg; the incoming
// value is incomingTotalCost. The new average is total value over total
// pieces. When the variant has no stock yet the incoming cost stands alone,
// which also covers re-stocking a variant whose count was zeroed out.
func WeightedAverage(currentStock int, currentAvg decimal.Decimal, incomingPieces int, incomingTotalCost decimal.Decimal) (decimal.Decimal, error) {
	if incomingPieces <= 0 {
		return decimal.Zero, errors.New(errors.CodeValidation, "incoming pieces must be positive")
	}
	if incomingTotalCost.Sign() < 0 {
		return decimal.Zero, errors.New(errors.CodeValidation, "incoming cost cannot be negative")
	}

	incoming := decimal.NewFromInt(int64(incomingPieces))

	if currentStock <= 0 {
		return incomingTotalCost.Div(incoming).Round(avgCostScale), nil
	}

	currentValue := decimal.NewFromInt(int64(currentStock)).Mul(currentAvg)
	totalPieces := decimal.NewFromInt(int64(currentStock + incomingPieces))

	return currentValue.Add(incomingTotalCost).Div(totalPieces).Round(avgCostScale), nil
}
