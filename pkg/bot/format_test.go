package bot

import (
	"strings"
	"testing"
	"time"

	"tripsettle/pkg/models"

	"github.com/google/go-cmp/cmp"
)

func TestParseCallback(t *testing.T) {
	tests := []struct {
		name string
		data string
		want callback
		ok   bool
	}{
		{"status", "\fst|12|completed_L1", callback{Action: actionStatus, TripID: 12, Status: models.TripCompletedL1}, true},
		{"status without prefix", "st|3|cancelled", callback{Action: actionStatus, TripID: 3, Status: models.TripCancelled}, true},
		{"promote", "\fpr|7", callback{Action: actionPromote, TripID: 7}, true},
		{"unknown status", "\fst|12|lost", callback{}, false},
		{"missing status", "\fst|12", callback{}, false},
		{"bad id", "\fst|abc|pending", callback{}, false},
		{"zero id", "\fpr|0", callback{}, false},
		{"unknown action", "\ftake|5", callback{}, false},
		{"empty", "", callback{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseCallback(tt.data)
			if ok != tt.ok {
				t.Fatalf("parseCallback(%q) ok = %v, want %v", tt.data, ok, tt.ok)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("parseCallback(%q) mismatch (-want +got):\n%s", tt.data, diff)
			}
		})
	}
}

func TestTripMarkupRoundTrips(t *testing.T) {
	trip := &models.Trip{ID: 42, Status: models.TripPending}

	menu := tripMarkup(trip)

	var seen []models.TripStatus
	for _, row := range menu.InlineKeyboard {
		for _, btn := range row {
			cb, ok := parseCallback("\f" + btn.Unique + "|" + btn.Data)
			if !ok {
				t.Fatalf("button %q carries unparsable data %q", btn.Text, btn.Data)
			}
			if cb.TripID != 42 {
				t.Errorf("button %q trip = %d, want 42", btn.Text, cb.TripID)
			}
			if cb.Action == actionPromote {
				t.Errorf("pending trip offers promotion")
			}
			seen = append(seen, cb.Status)
		}
	}

	want := []models.TripStatus{
		models.TripCompletedL1,
		models.TripCompletedL2,
		models.TripCompletedL1L2,
		models.TripCompletedWithIssue,
		models.TripCancelled,
	}
	if diff := cmp.Diff(want, seen); diff != "" {
		t.Errorf("status buttons mismatch (-want +got):\n%s", diff)
	}
}

func TestTripMarkupOffersPromotionWhenCompleted(t *testing.T) {
	menu := tripMarkup(&models.Trip{ID: 5, Status: models.TripCompletedL2})

	last := menu.InlineKeyboard[len(menu.InlineKeyboard)-1]
	if len(last) != 1 || last[0].Unique != actionPromote || last[0].Data != "5" {
		t.Errorf("last row = %+v, want a single promote button for trip 5", last)
	}
}

func TestFormatTrip(t *testing.T) {
	trip := &models.Trip{
		ID:                  9,
		Date:                time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		ClientName:          "Acme Mining",
		LoadingAddress:      "Callao",
		Status:              models.TripCompletedL1,
		Line:                models.LineL1,
		UnloadingCoordinate: &models.Coordinate{Lat: -16.39889, Lng: -71.535},
	}

	got := formatTrip(trip)

	for _, want := range []string{"#9", "2026-03-10", "completed_L1 (L1)", "Acme Mining | 📦 -", "Callao ➡️ -", "-16.39889, -71.53500"} {
		if !strings.Contains(got, want) {
			t.Errorf("formatTrip() = %q, missing %q", got, want)
		}
	}
}

func TestFormatRanking(t *testing.T) {
	near := 49.96
	got := formatRanking([]models.DriverCandidate{
		{DriverID: 1, FullName: "Ana", DistanceKm: &near},
		{DriverID: 2, FullName: "Luis"},
	})

	want := "🚚 NEAREST DRIVERS\n1. Ana | 50.0 km\n2. Luis | unknown"
	if got != want {
		t.Errorf("formatRanking() = %q, want %q", got, want)
	}
	if got := formatRanking(nil); got != "📭 No active drivers." {
		t.Errorf("formatRanking(nil) = %q", got)
	}
}

func TestFormatWarnings(t *testing.T) {
	if got := formatWarnings(nil); got != "" {
		t.Errorf("formatWarnings(nil) = %q, want empty", got)
	}
	got := formatWarnings([]models.Warning{{Code: models.WarningGeocodeNotFound, Message: "address not located"}})
	if got != "\n\n⚠️ address not located" {
		t.Errorf("formatWarnings() = %q", got)
	}
}

func TestRankSession(t *testing.T) {
	if got := rankSession(-100123); got != "tg:-100123" {
		t.Errorf("rankSession() = %q, want tg:-100123", got)
	}
}
