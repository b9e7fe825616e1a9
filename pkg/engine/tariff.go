package engine

import (
	"fmt"
	"strings"
	"time"

	"tripsettle/pkg/models"
)

type Validity string

const (
	ValidityValid      Validity = "valid"
	ValidityExpiring   Validity = "expiring"
	ValidityExpired    Validity = "expired"
	ValidityIndefinite Validity = "indefinite"
	ValidityNotFound   Validity = "not_found"
)

// ExpiryWindowDays is the inclusive horizon in which a rule is reported as expiring.
const ExpiryWindowDays = 30

type Resolution struct {
	Rule            *models.TariffRule `json:"rule"`
	Validity        Validity           `json:"validity"`
	DaysUntilExpiry *int               `json:"days_until_expiry"`
}

func (r Resolution) Found() bool {
	return r.Rule != nil
}

// Warning describes the advisory attached to the resolution, if any.
// Expired and expiring rules still apply.
func (r Resolution) Warning() *models.Warning {
	switch r.Validity {
	case ValidityNotFound:
		return &models.Warning{
			Code:    models.WarningTariffNotFound,
			Message: "no tariff rule matches this trip, enter the rate manually",
		}
	case ValidityExpired:
		return &models.Warning{
			Code:    models.WarningTariffExpired,
			Message: fmt.Sprintf("tariff %q expired %d day(s) ago", r.Rule.Name, -*r.DaysUntilExpiry),
		}
	case ValidityExpiring:
		return &models.Warning{
			Code:    models.WarningTariffExpiring,
			Message: fmt.Sprintf("tariff %q expires in %d day(s)", r.Rule.Name, *r.DaysUntilExpiry),
		}
	}
	return nil
}

// Matches reports whether every scope field of rule is wildcarded or equal to
// the context value.
func Matches(rule models.TariffRule, ctx models.TripContext) bool {
	want := ctx.Scope()
	for i, v := range rule.Scope() {
		if v != models.ScopeAll && v != want[i] {
			return false
		}
	}
	return true
}

// Specificity counts the concrete scope fields of rule.
func Specificity(rule models.TariffRule) int {
	n := 0
	for _, v := range rule.Scope() {
		if v != models.ScopeAll {
			n++
		}
	}
	return n
}

func ValidateContext(ctx models.TripContext) error {
	for i, v := range ctx.Scope() {
		v = strings.TrimSpace(v)
		if v == "" {
			return NewValidationError(models.ScopeFields[i], "is required to resolve a tariff")
		}
		if v == models.ScopeAll {
			return NewValidationError(models.ScopeFields[i], "must be a concrete value, not %s", models.ScopeAll)
		}
	}
	return nil
}

// Resolve picks the active rule with the highest specificity among those
// matching ctx. Equal specificity keeps catalog order: the first rule seen
// wins, so callers must pass rules in a stable order.
func Resolve(ctx models.TripContext, rules []models.TariffRule, today time.Time) (Resolution, error) {
	if err := ValidateContext(ctx); err != nil {
		return Resolution{}, err
	}

	best := -1
	bestScore := -1
	for i := range rules {
		if !rules[i].Active || !Matches(rules[i], ctx) {
			continue
		}
		if score := Specificity(rules[i]); score > bestScore {
			best = i
			bestScore = score
		}
	}

	if best < 0 {
		return Resolution{Validity: ValidityNotFound}, nil
	}

	rule := rules[best]
	validity, days := ClassifyValidity(rule.ValidUntil, today)
	return Resolution{Rule: &rule, Validity: validity, DaysUntilExpiry: days}, nil
}

// ClassifyValidity compares calendar dates, so a rule valid until today has
// zero days left and is still expiring rather than expired.
func ClassifyValidity(validUntil *time.Time, today time.Time) (Validity, *int) {
	if validUntil == nil {
		return ValidityIndefinite, nil
	}

	days := daysBetween(today, *validUntil)
	switch {
	case days < 0:
		return ValidityExpired, &days
	case days <= ExpiryWindowDays:
		return ValidityExpiring, &days
	default:
		return ValidityValid, &days
	}
}

func daysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}

// RatesFromRule prefers the per-ton price and falls back to the flat per-trip
// price. Both rates are unset when the rule carries neither.
func RatesFromRule(rule models.TariffRule) (tariff, thirdParty models.Rate) {
	return pickRate(rule.RatePerTon, rule.RatePerTrip), pickRate(rule.ThirdPartyRatePerTon, rule.ThirdPartyRatePerTrip)
}
