package enums

// CalculationMode selects how a product group converts entered quantities
// into stock pieces.
type CalculationMode string

const (
	// CalculationModeTinBundle sells by the bundle; a bundle holds
	// calculation_base / length_feet equivalent pieces.
	CalculationModeTinBundle CalculationMode = "tin_bundle"
	// CalculationModeRunningFoot sells pieces priced by their total feet.
	CalculationModeRunningFoot CalculationMode = "running_foot"
	// CalculationModeFixedPiece sells plain pieces, one unit per piece.
	CalculationModeFixedPiece CalculationMode = "fixed_piece"
)

func (m CalculationMode) IsValid() bool {
	switch m {
	case CalculationModeTinBundle, CalculationModeRunningFoot, CalculationModeFixedPiece:
		return true
	}
	return false
}
