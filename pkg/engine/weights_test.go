package engine

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"tripsettle/pkg/models"
)

func TestDeriveExample(t *testing.T) {
	in := models.WeightReading{
		GrossOrigin:      dec("20000"),
		TareOrigin:       dec("5000"),
		GrossDestination: dec("19500"),
		TareDestination:  dec("5200"),
	}

	got := Derive(in)

	want := in
	want.NetOrigin = dec("15000")
	want.NetDestination = dec("14300")
	want.WeightDifference = dec("700")
	want.Tons = models.Tons{Source: models.TonsDerived, Value: dec("14.3")}

	if diff := cmp.Diff(want, got, decimalEqual); diff != "" {
		t.Fatalf("Derive mismatch (-want +got):\n%s", diff)
	}
}

func TestDerivePartialLeavesDependentsUnset(t *testing.T) {
	got := Derive(models.WeightReading{GrossOrigin: dec("20000"), TareOrigin: dec("5000")})

	if !got.NetOrigin.Valid {
		t.Fatal("expected net origin to be set")
	}
	if got.NetDestination.Valid || got.WeightDifference.Valid || got.Tons.Value.Valid {
		t.Fatalf("expected destination side unset, got %+v", got)
	}
}

func TestDeriveIdempotent(t *testing.T) {
	in := models.WeightReading{
		GrossOrigin:      dec("18000"),
		TareOrigin:       dec("6000"),
		GrossDestination: dec("17950"),
		TareDestination:  dec("6010"),
	}

	once := Derive(in)
	twice := Derive(once)
	if diff := cmp.Diff(once, twice, decimalEqual); diff != "" {
		t.Fatalf("second Derive changed the reading (-once +twice):\n%s", diff)
	}
}

func TestManualTonsSurviveDerive(t *testing.T) {
	in := Derive(models.WeightReading{
		GrossOrigin:      dec("20000"),
		TareOrigin:       dec("5000"),
		GrossDestination: dec("19500"),
		TareDestination:  dec("5200"),
	})

	overridden := OverrideTons(in, dec("14"))
	overridden.GrossDestination = dec("19800")
	got := Derive(Derive(overridden))

	if got.Tons.Source != models.TonsManual || !got.Tons.Value.Decimal.Equal(dec("14").Decimal) {
		t.Fatalf("override lost: %+v", got.Tons)
	}
	if !got.NetDestination.Decimal.Equal(dec("14600").Decimal) {
		t.Fatalf("net destination = %s, want 14600", got.NetDestination.Decimal)
	}

	cleared := ClearTonsOverride(got)
	if cleared.Tons.Source != models.TonsDerived || !cleared.Tons.Value.Decimal.Equal(dec("14.6").Decimal) {
		t.Fatalf("clear override = %+v, want derived 14.6", cleared.Tons)
	}
}
