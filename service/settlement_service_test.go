package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
	"tripsettle/pkg/engine"
	"tripsettle/pkg/models"
	"tripsettle/storage/memory"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

var decimalEqual = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

func completedTrip(t *testing.T, svc *service, ids map[string]int64, client string) *models.Trip {
	t.Helper()
	res, err := svc.Trip().Create(context.Background(), &models.Trip{
		Date:          time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC),
		ClientName:    client,
		ProductName:   "diesel",
		CarrierID:     ptr(ids["Fast Haul"]),
		OriginID:      ptr(ids["Callao"]),
		DestinationID: ptr(ids["Arequipa"]),
		Status:        models.TripCompletedL1,
	})
	if err != nil {
		t.Fatalf("create trip: %v", err)
	}
	return res.Trip
}

func TestPromoteResolvesTariffAndCalculates(t *testing.T) {
	stg := memory.New()
	ids := seed(t, stg)
	svc := newTestServices(stg, &stubLookup{})
	ctx := context.Background()

	_, err := svc.Tariff().Create(ctx, &models.TariffRule{
		Name:                 "acme default",
		Client:               fmt.Sprint(ids["Acme Mining"]),
		RatePerTon:           dec("150"),
		ThirdPartyRatePerTon: dec("120"),
		Active:               true,
	})
	if err != nil {
		t.Fatalf("create tariff: %v", err)
	}

	trip := completedTrip(t, svc, ids, "ACME mining")
	res, err := svc.Settlement().Promote(ctx, trip.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	st := res.Settlement
	if st.ClientID == nil || *st.ClientID != ids["Acme Mining"] {
		t.Fatalf("client = %v, want %d", st.ClientID, ids["Acme Mining"])
	}
	if st.TariffPending || st.TariffRuleID == nil {
		t.Fatalf("tariff not resolved: pending=%v rule=%v", st.TariffPending, st.TariffRuleID)
	}
	if st.TariffValidity != string(engine.ValidityIndefinite) {
		t.Fatalf("validity = %q", st.TariffValidity)
	}
	if st.Amounts.TripAmount.Valid {
		t.Fatal("amount must stay unset without weights")
	}

	edited, err := svc.Settlement().Edit(ctx, st.ID, SettlementPatch{
		GrossOrigin:      ptr(dec("20000")),
		TareOrigin:       ptr(dec("5000")),
		GrossDestination: ptr(dec("19500")),
		TareDestination:  ptr(dec("5200")),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := models.Amounts{TripAmount: dec("2145"), ThirdPartyAmount: dec("1716")}
	if diff := cmp.Diff(want, edited.Settlement.Amounts, decimalEqual); diff != "" {
		t.Fatalf("amounts mismatch (-want +got):\n%s", diff)
	}

	if _, err := svc.Settlement().Promote(ctx, trip.ID); !errors.Is(err, ErrAlreadyPromoted) {
		t.Fatalf("expected ErrAlreadyPromoted, got %v", err)
	}
}

func TestPromoteWithoutMatchWaitsForScope(t *testing.T) {
	stg := memory.New()
	ids := seed(t, stg)
	svc := newTestServices(stg, &stubLookup{})
	ctx := context.Background()

	trip := completedTrip(t, svc, ids, "Unknown Client")
	res, err := svc.Settlement().Promote(ctx, trip.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Settlement.ClientID != nil || !res.Settlement.TariffPending {
		t.Fatalf("expected empty client and armed tariff: %+v", res.Settlement)
	}

	// Rule arrives later; completing the scope triggers the lookup once.
	svc.Tariff().Create(ctx, &models.TariffRule{RatePerTrip: dec("900"), Active: true})
	edited, err := svc.Settlement().Edit(ctx, res.Settlement.ID, SettlementPatch{ClientID: ptr(ids["Acme Mining"])})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	st := edited.Settlement
	if st.TariffPending || st.TariffRate.Basis != models.PerTrip {
		t.Fatalf("tariff not applied: %+v", st.TariffRate)
	}
	if !st.Amounts.TripAmount.Valid || !st.Amounts.TripAmount.Decimal.Equal(decimal.NewFromInt(900)) {
		t.Fatalf("trip amount = %+v, want 900", st.Amounts.TripAmount)
	}
}

func TestPromoteRejectsPendingTrip(t *testing.T) {
	stg := memory.New()
	svc := newTestServices(stg, &stubLookup{})
	ctx := context.Background()

	res, _ := svc.Trip().Create(ctx, &models.Trip{Date: fixedNow})
	if _, err := svc.Settlement().Promote(ctx, res.Trip.ID); !engine.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestEditTonsOverrideAndManualRate(t *testing.T) {
	stg := memory.New()
	ids := seed(t, stg)
	svc := newTestServices(stg, &stubLookup{})
	ctx := context.Background()

	trip := completedTrip(t, svc, ids, "Acme Mining")
	res, _ := svc.Settlement().Promote(ctx, trip.ID)
	id := res.Settlement.ID

	edited, err := svc.Settlement().Edit(ctx, id, SettlementPatch{
		GrossDestination: ptr(dec("19500")),
		TareDestination:  ptr(dec("5200")),
		Tons:             ptr(dec("14")),
		TariffRate:       &models.Rate{Value: dec("100"), Basis: models.PerTon},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	st := edited.Settlement
	if st.Weights.Tons.Source != models.TonsManual || !st.Amounts.TripAmount.Decimal.Equal(decimal.NewFromInt(1400)) {
		t.Fatalf("manual tons not used: %+v %+v", st.Weights.Tons, st.Amounts)
	}
	if st.TariffPending {
		t.Fatal("manual rate should disarm the tariff lookup")
	}

	cleared, err := svc.Settlement().Edit(ctx, id, SettlementPatch{ClearTonsOverride: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cleared.Settlement.Weights.Tons.Source != models.TonsDerived ||
		!cleared.Settlement.Amounts.TripAmount.Decimal.Equal(decimal.NewFromInt(1430)) {
		t.Fatalf("clear override: %+v %+v", cleared.Settlement.Weights.Tons, cleared.Settlement.Amounts)
	}
}

func TestEditRejectsConflictingPatch(t *testing.T) {
	svc := newTestServices(memory.New(), &stubLookup{})
	ctx := context.Background()

	cases := []SettlementPatch{
		{Requote: true, TariffRate: &models.Rate{Value: dec("1")}},
		{Tons: ptr(dec("1")), ClearTonsOverride: true},
		{ClientPaymentStatus: ptr(models.ClientPaymentStatus("LATE"))},
	}
	for i, p := range cases {
		if _, err := svc.Settlement().Edit(ctx, 1, p); !engine.IsValidation(err) {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}
}

func TestRequoteRunsResolverAgain(t *testing.T) {
	stg := memory.New()
	ids := seed(t, stg)
	svc := newTestServices(stg, &stubLookup{})
	ctx := context.Background()

	trip := completedTrip(t, svc, ids, "Acme Mining")
	res, _ := svc.Settlement().Promote(ctx, trip.ID)
	if res.Settlement.TariffValidity != string(engine.ValidityNotFound) {
		t.Fatalf("validity = %q, want not_found", res.Settlement.TariffValidity)
	}
	if len(res.Warnings) != 1 || res.Warnings[0].Code != models.WarningTariffNotFound {
		t.Fatalf("warnings = %+v", res.Warnings)
	}

	svc.Tariff().Create(ctx, &models.TariffRule{RatePerTon: dec("80"), Active: true})

	again, err := svc.Settlement().Edit(ctx, res.Settlement.ID, SettlementPatch{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again.Settlement.TariffRuleID != nil {
		t.Fatal("disarmed settlement must not resolve again without requote")
	}

	requoted, err := svc.Settlement().Edit(ctx, res.Settlement.ID, SettlementPatch{Requote: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if requoted.Settlement.TariffRuleID == nil {
		t.Fatal("requote did not resolve the tariff")
	}
}

func TestRequoteMissDropsStaleRate(t *testing.T) {
	stg := memory.New()
	ids := seed(t, stg)
	svc := newTestServices(stg, &stubLookup{})
	ctx := context.Background()

	rule, err := svc.Tariff().Create(ctx, &models.TariffRule{
		Name:       "acme from callao",
		Client:     fmt.Sprint(ids["Acme Mining"]),
		Origin:     fmt.Sprint(ids["Callao"]),
		RatePerTon: dec("150"),
		Active:     true,
	})
	if err != nil {
		t.Fatalf("create tariff: %v", err)
	}

	trip := completedTrip(t, svc, ids, "Acme Mining")
	res, err := svc.Settlement().Promote(ctx, trip.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Settlement.TariffRuleID == nil || *res.Settlement.TariffRuleID != rule.ID {
		t.Fatalf("promotion resolved %v, want rule %d", res.Settlement.TariffRuleID, rule.ID)
	}

	edited, err := svc.Settlement().Edit(ctx, res.Settlement.ID, SettlementPatch{
		GrossDestination: ptr(dec("20000")),
		TareDestination:  ptr(dec("5000")),
		OriginID:         ptr(ids["Arequipa"]),
		Requote:          true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	st := edited.Settlement
	if st.TariffValidity != string(engine.ValidityNotFound) {
		t.Errorf("validity = %q, want not_found", st.TariffValidity)
	}
	if st.TariffRuleID != nil {
		t.Errorf("TariffRuleID = %d, want nil after a miss", *st.TariffRuleID)
	}
	if st.TariffRate.Value.Valid {
		t.Errorf("TariffRate = %s, want unset", st.TariffRate.Value.Decimal)
	}
	if st.Amounts.TripAmount.Valid {
		t.Errorf("TripAmount = %s, want unset", st.Amounts.TripAmount.Decimal)
	}
	if len(edited.Warnings) != 1 || edited.Warnings[0].Code != models.WarningTariffNotFound {
		t.Errorf("warnings = %+v, want a single tariff_not_found", edited.Warnings)
	}

	stored, err := svc.Settlement().Get(ctx, st.ID)
	if err != nil {
		t.Fatalf("get settlement: %v", err)
	}
	if stored.TariffRuleID != nil || stored.Amounts.TripAmount.Valid {
		t.Errorf("stored settlement kept rule %v amount %v", stored.TariffRuleID, stored.Amounts.TripAmount)
	}
}
