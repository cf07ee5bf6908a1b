package enums

// UnitType tags the unit a quantity or rate was entered in.
type UnitType string

const (
	UnitTypeBundle UnitType = "bundle"
	UnitTypePiece  UnitType = "piece"
)

func (u UnitType) IsValid() bool {
	return u == UnitTypeBundle || u == UnitTypePiece
}
