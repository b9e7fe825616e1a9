package engine

import (
	"testing"
	"time"

	"tripsettle/pkg/models"
)

func rule(id int64, client, product, origin, destination, carrier string, perTon string) models.TariffRule {
	return models.TariffRule{
		ID:          id,
		Name:        "rule",
		Client:      client,
		Product:     product,
		Origin:      origin,
		Destination: destination,
		Carrier:     carrier,
		RatePerTon:  dec(perTon),
		Active:      true,
	}
}

func tripContext() models.TripContext {
	return models.TripContext{Client: "C1", Product: "oil", Origin: "O1", Destination: "D1", Carrier: "K1"}
}

var today = date(2026, time.March, 10)

func TestResolveSpecificityBeatsWildcard(t *testing.T) {
	rules := []models.TariffRule{
		rule(1, models.ScopeAll, models.ScopeAll, models.ScopeAll, models.ScopeAll, models.ScopeAll, "100"),
		rule(2, "C1", models.ScopeAll, models.ScopeAll, models.ScopeAll, models.ScopeAll, "150"),
	}

	res, err := Resolve(tripContext(), rules, today)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Found() || res.Rule.ID != 2 {
		t.Fatalf("expected rule 2, got %+v", res.Rule)
	}
	if !res.Rule.RatePerTon.Decimal.Equal(dec("150").Decimal) {
		t.Fatalf("rate = %s, want 150", res.Rule.RatePerTon.Decimal)
	}
}

func TestResolveFullyConcreteOutranksWildcardsInAnyOrder(t *testing.T) {
	exact := rule(9, "C1", "oil", "O1", "D1", "K1", "200")
	wild := []models.TariffRule{
		rule(1, models.ScopeAll, "oil", "O1", "D1", "K1", "110"),
		rule(2, "C1", models.ScopeAll, "O1", "D1", "K1", "120"),
		rule(3, "C1", "oil", "O1", "D1", models.ScopeAll, "130"),
	}

	orders := [][]models.TariffRule{
		append([]models.TariffRule{exact}, wild...),
		append(append([]models.TariffRule{}, wild...), exact),
		{wild[0], exact, wild[1], wild[2]},
	}
	for i, rules := range orders {
		res, err := Resolve(tripContext(), rules, today)
		if err != nil {
			t.Fatalf("order %d: unexpected error: %v", i, err)
		}
		if res.Rule == nil || res.Rule.ID != 9 {
			t.Fatalf("order %d: expected exact rule, got %+v", i, res.Rule)
		}
	}
}

func TestResolveTieKeepsCatalogOrder(t *testing.T) {
	rules := []models.TariffRule{
		rule(4, "C1", models.ScopeAll, models.ScopeAll, models.ScopeAll, models.ScopeAll, "10"),
		rule(5, models.ScopeAll, "oil", models.ScopeAll, models.ScopeAll, models.ScopeAll, "20"),
	}

	for i := 0; i < 5; i++ {
		res, err := Resolve(tripContext(), rules, today)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Rule.ID != 4 {
			t.Fatalf("call %d: expected first rule to win the tie, got %d", i, res.Rule.ID)
		}
	}
}

func TestResolveSkipsInactiveAndMismatched(t *testing.T) {
	inactive := rule(1, "C1", "oil", "O1", "D1", "K1", "300")
	inactive.Active = false
	rules := []models.TariffRule{
		inactive,
		rule(2, "C2", models.ScopeAll, models.ScopeAll, models.ScopeAll, models.ScopeAll, "50"),
	}

	res, err := Resolve(tripContext(), rules, today)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Found() {
		t.Fatalf("expected no match, got %+v", res.Rule)
	}
	if res.Validity != ValidityNotFound {
		t.Fatalf("validity = %s, want not_found", res.Validity)
	}
	w := res.Warning()
	if w == nil || w.Code != models.WarningTariffNotFound {
		t.Fatalf("expected tariff_not_found warning, got %+v", w)
	}
}

func TestResolveRejectsIncompleteContext(t *testing.T) {
	cases := []models.TripContext{
		{Client: "", Product: "oil", Origin: "O1", Destination: "D1", Carrier: "K1"},
		{Client: "C1", Product: models.ScopeAll, Origin: "O1", Destination: "D1", Carrier: "K1"},
		{Client: "C1", Product: "oil", Origin: "O1", Destination: "D1", Carrier: "  "},
	}
	for _, ctx := range cases {
		_, err := Resolve(ctx, nil, today)
		if !IsValidation(err) {
			t.Fatalf("Resolve(%+v) expected validation error, got %v", ctx, err)
		}
	}
}

func TestClassifyValidity(t *testing.T) {
	cases := []struct {
		name       string
		validUntil *time.Time
		want       Validity
		days       *int
	}{
		{"indefinite", nil, ValidityIndefinite, nil},
		{"expired yesterday", ptr(date(2026, time.March, 9)), ValidityExpired, ptr(-1)},
		{"last day", ptr(date(2026, time.March, 10)), ValidityExpiring, ptr(0)},
		{"window edge", ptr(date(2026, time.April, 9)), ValidityExpiring, ptr(30)},
		{"past window", ptr(date(2026, time.April, 10)), ValidityValid, ptr(31)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, days := ClassifyValidity(tc.validUntil, today.Add(17*time.Hour))
			if got != tc.want {
				t.Fatalf("validity = %s, want %s", got, tc.want)
			}
			if (days == nil) != (tc.days == nil) || (days != nil && *days != *tc.days) {
				t.Fatalf("days = %v, want %v", days, tc.days)
			}
		})
	}
}

func TestResolveExpiredRuleStillApplies(t *testing.T) {
	r := rule(1, "C1", models.ScopeAll, models.ScopeAll, models.ScopeAll, models.ScopeAll, "90")
	r.ValidUntil = ptr(date(2026, time.February, 1))

	res, err := Resolve(tripContext(), []models.TariffRule{r}, today)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Found() || res.Validity != ValidityExpired {
		t.Fatalf("expected expired match, got %+v", res)
	}
	if w := res.Warning(); w == nil || w.Code != models.WarningTariffExpired {
		t.Fatalf("expected tariff_expired warning, got %+v", w)
	}
}

func TestRatesFromRule(t *testing.T) {
	r := models.TariffRule{
		RatePerTrip:          dec("500"),
		ThirdPartyRatePerTon: dec("40"),
	}
	tariff, third := RatesFromRule(r)
	if tariff.Basis != models.PerTrip || !tariff.Value.Decimal.Equal(dec("500").Decimal) {
		t.Fatalf("tariff rate = %+v, want 500 per trip", tariff)
	}
	if third.Basis != models.PerTon || !third.Value.Decimal.Equal(dec("40").Decimal) {
		t.Fatalf("third-party rate = %+v, want 40 per ton", third)
	}
}
