package stock

import (
	"context"
	stdErrors "errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rafidahmed/tinbari-backend/pkg/db/models"
	"github.com/rafidahmed/tinbari-backend/pkg/errors"
)

// MovementRequest asks for a piece-count change on one variant.
type MovementRequest struct {
	GroupID   uuid.UUID
	VariantID uuid.UUID
	Pieces    int
}

// MovementResult reports the outcome of one movement.
//
// Found is false when the variant no longer exists (product deleted after
// the sale). That is a no-op, not an error: the sale's own financial fields
// still update. Negative flags stock that went below zero and must be shown
// to the operator.
type MovementResult struct {
	VariantID uuid.UUID
	Found     bool
	NewLevel  int
	Negative  bool
}

// Deduct removes pieces from each variant inside the supplied transaction.
// Stock is never floored at zero; the shop floor is the source of truth and
// a real sale must not be blocked by a bookkeeping lag.
func Deduct(ctx context.Context, tx *gorm.DB, requests []MovementRequest) ([]MovementResult, error) {
	return move(ctx, tx, requests, -1)
}

// Restore puts pieces back on each variant inside the supplied transaction.
// Used by sale deletion, returns, and the reverse phase of a sale edit.
// Average cost is left untouched.
func Restore(ctx context.Context, tx *gorm.DB, requests []MovementRequest) ([]MovementResult, error) {
	return move(ctx, tx, requests, 1)
}

func move(ctx context.Context, tx *gorm.DB, requests []MovementRequest, direction int) ([]MovementResult, error) {
	if tx == nil {
		return nil, errors.New(errors.CodeInternal, "transaction handle is required")
	}

	results := make([]MovementResult, 0, len(requests))
	for _, req := range requests {
		if req.Pieces <= 0 {
			return nil, errors.New(errors.CodeValidation, fmt.Sprintf("movement pieces must be positive, got %d", req.Pieces))
		}
		if req.VariantID == uuid.Nil {
			return nil, errors.New(errors.CodeValidation, "variant id is required")
		}

		var variant models.ProductVariant
		err := tx.WithContext(ctx).
			Where("id = ? AND group_id = ?", req.VariantID, req.GroupID).
			First(&variant).Error
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			results = append(results, MovementResult{VariantID: req.VariantID, Found: false})
			continue
		}
		if err != nil {
			return nil, errors.Wrap(errors.CodeInternal, err, "loading variant for stock movement")
		}

		newLevel := variant.StockPieces + direction*req.Pieces
		err = tx.WithContext(ctx).
			Model(&models.ProductVariant{}).
			Where("id = ?", variant.ID).
			Update("stock_pieces", newLevel).Error
		if err != nil {
			return nil, errors.Wrap(errors.CodeInternal, err, "updating stock level")
		}

		results = append(results, MovementResult{
			VariantID: req.VariantID,
			Found:     true,
			NewLevel:  newLevel,
			Negative:  newLevel < 0,
		})
	}
	return results, nil
}
