package engine

import (
	"github.com/shopspring/decimal"

	"tripsettle/pkg/models"
)

var kilogramsPerTon = decimal.NewFromInt(1000)

// Derive recomputes net weights, the origin/destination difference and the
// suggested tonnage from the raw readings. Missing inputs leave their
// dependents unset. A manual tonnage is kept as is.
func Derive(r models.WeightReading) models.WeightReading {
	out := r
	out.NetOrigin = sub(r.GrossOrigin, r.TareOrigin)
	out.NetDestination = sub(r.GrossDestination, r.TareDestination)
	out.WeightDifference = sub(out.NetOrigin, out.NetDestination)

	if r.Tons.Source == models.TonsManual {
		return out
	}

	out.Tons = models.Tons{Source: models.TonsDerived}
	if out.NetDestination.Valid {
		out.Tons.Value = decimal.NullDecimal{
			Decimal: out.NetDestination.Decimal.Div(kilogramsPerTon),
			Valid:   true,
		}
	}
	return out
}

// OverrideTons records an operator-entered tonnage. Later calls to Derive
// keep it until ClearTonsOverride.
func OverrideTons(r models.WeightReading, value decimal.NullDecimal) models.WeightReading {
	r.Tons = models.Tons{Source: models.TonsManual, Value: value}
	return r
}

func ClearTonsOverride(r models.WeightReading) models.WeightReading {
	r.Tons = models.Tons{Source: models.TonsDerived}
	return Derive(r)
}

func sub(a, b decimal.NullDecimal) decimal.NullDecimal {
	if !a.Valid || !b.Valid {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: a.Decimal.Sub(b.Decimal), Valid: true}
}
