package engine

import (
	"github.com/shopspring/decimal"

	"tripsettle/pkg/models"
)

// Calculate never fails: an amount is left unset unless its rate, and for
// per-ton rates the tonnage, are present. Unset is not zero.
func Calculate(tons decimal.NullDecimal, tariff, thirdParty models.Rate) models.Amounts {
	return models.Amounts{
		TripAmount:       amount(tons, tariff),
		ThirdPartyAmount: amount(tons, thirdParty),
	}
}

func amount(tons decimal.NullDecimal, rate models.Rate) decimal.NullDecimal {
	if !rate.Value.Valid {
		return decimal.NullDecimal{}
	}
	if rate.Basis == models.PerTrip {
		return rate.Value
	}
	if !tons.Valid {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: rate.Value.Decimal.Mul(tons.Decimal), Valid: true}
}

func pickRate(perTon, perTrip decimal.NullDecimal) models.Rate {
	if perTon.Valid {
		return models.Rate{Value: perTon, Basis: models.PerTon}
	}
	if perTrip.Valid {
		return models.Rate{Value: perTrip, Basis: models.PerTrip}
	}
	return models.Rate{}
}
