package engine

import (
	"strings"
	"time"

	"github.com/spf13/cast"

	"tripsettle/pkg/models"
)

// Catalog holds the active entries promotion matches names against.
type Catalog struct {
	Clients  []models.CatalogEntry
	Products []models.CatalogEntry
}

// Promote seeds a settlement draft from a completed trip. Client and product
// are matched by name; a missing or ambiguous match leaves the field empty
// for the operator to pick. The draft is armed to resolve its tariff once
// the scope is complete.
func Promote(src models.Trip, catalog Catalog) (models.Settlement, error) {
	if src.ID == 0 {
		return models.Settlement{}, NewValidationError("trip", "must be stored before promotion")
	}
	if !src.Status.Completed() {
		return models.Settlement{}, NewValidationError("status", "trip %d is %s, only completed trips can be promoted", src.ID, src.Status)
	}

	draft := models.Settlement{
		SourceTripID:         src.ID,
		Date:                 src.Date,
		CarrierID:            cloneID(src.CarrierID),
		DriverID:             cloneID(src.DriverID),
		VehicleID:            cloneID(src.VehicleID),
		OriginID:             cloneID(src.OriginID),
		DestinationID:        cloneID(src.DestinationID),
		Weights:              models.WeightReading{Tons: models.Tons{Source: models.TonsDerived}},
		TariffPending:        true,
		ClientPaymentStatus:  models.ClientPaymentPending,
		CarrierPaymentStatus: models.CarrierPaymentUnpaid,
	}

	if id, ok := MatchByName(src.ClientName, catalog.Clients); ok {
		draft.ClientID = &id
	}
	if id, ok := MatchByName(src.ProductName, catalog.Products); ok {
		draft.ProductID = &id
	}

	return draft, nil
}

// MatchByName finds the single entry whose name equals name ignoring case
// and repeated whitespace.
func MatchByName(name string, entries []models.CatalogEntry) (int64, bool) {
	want := normalizeName(name)
	if want == "" {
		return 0, false
	}

	var id int64
	hits := 0
	for _, e := range entries {
		if normalizeName(e.Name) == want {
			id = e.ID
			hits++
		}
	}
	return id, hits == 1
}

func normalizeName(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// ContextFor builds the tariff query of a settlement. ok is false while any
// scope field is still empty.
func ContextFor(s models.Settlement) (models.TripContext, bool) {
	ids := []*int64{s.ClientID, s.ProductID, s.OriginID, s.DestinationID, s.CarrierID}
	for _, id := range ids {
		if id == nil {
			return models.TripContext{}, false
		}
	}
	return models.TripContext{
		Client:        cast.ToString(*s.ClientID),
		Product:       cast.ToString(*s.ProductID),
		Origin:        cast.ToString(*s.OriginID),
		Destination:   cast.ToString(*s.DestinationID),
		Carrier:       cast.ToString(*s.CarrierID),
		TonsDelivered: s.Weights.Tons.Value,
	}, true
}

// ApplyPendingTariff resolves the tariff of an armed settlement the first
// time its scope is complete, then disarms it whether or not a rule matched.
// A miss clears any previously filled rule and rates.
// The returned resolution is nil when nothing ran.
func ApplyPendingTariff(s models.Settlement, rules []models.TariffRule, today time.Time) (models.Settlement, *Resolution, error) {
	if !s.TariffPending {
		return s, nil, nil
	}
	ctx, ok := ContextFor(s)
	if !ok {
		return s, nil, nil
	}

	res, err := Resolve(ctx, rules, today)
	if err != nil {
		return s, nil, err
	}

	s.TariffPending = false
	s.TariffValidity = string(res.Validity)
	if !res.Found() {
		// Rates from a rule that no longer covers the scope must not survive a requote.
		s.TariffRuleID = nil
		s.TariffRate, s.ThirdPartyRate = models.Rate{}, models.Rate{}
		return s, &res, nil
	}
	id := res.Rule.ID
	s.TariffRuleID = &id
	s.TariffRate, s.ThirdPartyRate = RatesFromRule(*res.Rule)
	return s, &res, nil
}

// Recompute runs the derivation chain in order: weights, then the pending
// tariff fill, then amounts from whatever tonnage the settlement holds.
func Recompute(s models.Settlement, rules []models.TariffRule, today time.Time) (models.Settlement, []models.Warning, error) {
	s.Weights = Derive(s.Weights)

	s, res, err := ApplyPendingTariff(s, rules, today)
	if err != nil {
		return s, nil, err
	}

	var warnings []models.Warning
	if res != nil {
		if w := res.Warning(); w != nil {
			warnings = append(warnings, *w)
		}
	}

	s.Amounts = Calculate(s.Weights.Tons.Value, s.TariffRate, s.ThirdPartyRate)
	return s, warnings, nil
}

func cloneID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
