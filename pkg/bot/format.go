package bot

import (
	"fmt"
	"strings"

	"tripsettle/pkg/models"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
	tele "gopkg.in/telebot.v3"
)

const (
	actionStatus  = "st"
	actionPromote = "pr"
)

type callback struct {
	Action string
	TripID int64
	Status models.TripStatus
}

// parseCallback reads the payload of an inline button built by tripMarkup.
// telebot prefixes unique buttons with a form feed.
func parseCallback(data string) (callback, bool) {
	parts := strings.Split(strings.TrimPrefix(data, "\f"), "|")
	if len(parts) < 2 {
		return callback{}, false
	}
	id, err := cast.ToInt64E(parts[1])
	if err != nil || id <= 0 {
		return callback{}, false
	}

	cb := callback{Action: parts[0], TripID: id}
	switch cb.Action {
	case actionStatus:
		if len(parts) != 3 {
			return callback{}, false
		}
		cb.Status = models.TripStatus(parts[2])
		if !cb.Status.Valid() {
			return callback{}, false
		}
	case actionPromote:
		if len(parts) != 2 {
			return callback{}, false
		}
	default:
		return callback{}, false
	}
	return cb, true
}

var statusLabels = map[models.TripStatus]string{
	models.TripPending:            "⏳ Pending",
	models.TripCompletedL1:        "✅ L1",
	models.TripCompletedL2:        "✅ L2",
	models.TripCompletedL1L2:      "✅ L1/L2",
	models.TripCompletedWithIssue: "⚠️ With issue",
	models.TripCancelled:          "❌ Cancel",
}

func tripMarkup(t *models.Trip) *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	id := cast.ToString(t.ID)

	var buttons []tele.Btn
	for _, s := range models.TripStatuses {
		if s == t.Status {
			continue
		}
		buttons = append(buttons, menu.Data(statusLabels[s], actionStatus, id, string(s)))
	}

	rows := []tele.Row{menu.Row(buttons[:3]...), menu.Row(buttons[3:]...)}
	if t.Status.Completed() {
		rows = append(rows, menu.Row(menu.Data("📑 Promote to settlement", actionPromote, id)))
	}
	menu.Inline(rows...)
	return menu
}

func formatTrip(t *models.Trip) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🚛 TRIP #%d | %s\n", t.ID, t.Date.Format("2006-01-02"))
	fmt.Fprintf(&sb, "📊 Status: %s", t.Status)
	if t.Line != "" {
		fmt.Fprintf(&sb, " (%s)", t.Line)
	}
	sb.WriteString("\n")
	if t.ClientName != "" || t.ProductName != "" {
		fmt.Fprintf(&sb, "👤 %s | 📦 %s\n", orDash(t.ClientName), orDash(t.ProductName))
	}
	fmt.Fprintf(&sb, "📍 %s ➡️ %s\n", orDash(t.LoadingAddress), orDash(t.UnloadingAddress))
	if t.UnloadingCoordinate != nil {
		fmt.Fprintf(&sb, "🗺 %.5f, %.5f\n", t.UnloadingCoordinate.Lat, t.UnloadingCoordinate.Lng)
	}
	if t.Particularity != "" {
		fmt.Fprintf(&sb, "✍️ %s\n", t.Particularity)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatRanking(list []models.DriverCandidate) string {
	if len(list) == 0 {
		return "📭 No active drivers."
	}
	var sb strings.Builder
	sb.WriteString("🚚 NEAREST DRIVERS\n")
	for i, c := range list {
		dist := "unknown"
		if c.DistanceKm != nil {
			dist = fmt.Sprintf("%.1f km", *c.DistanceKm)
		}
		fmt.Fprintf(&sb, "%d. %s | %s\n", i+1, c.FullName, dist)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatSettlement(s *models.Settlement) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📑 SETTLEMENT #%d (trip #%d)\n", s.ID, s.SourceTripID)
	fmt.Fprintf(&sb, "⚖️ Tons: %s\n", formatDecimal(s.Weights.Tons.Value))
	fmt.Fprintf(&sb, "💰 Rate: %s | Amount: %s\n", formatDecimal(s.TariffRate.Value), formatDecimal(s.Amounts.TripAmount))
	fmt.Fprintf(&sb, "🤝 Third party: %s | Amount: %s", formatDecimal(s.ThirdPartyRate.Value), formatDecimal(s.Amounts.ThirdPartyAmount))
	return sb.String()
}

func formatWarnings(ws []models.Warning) string {
	if len(ws) == 0 {
		return ""
	}
	lines := make([]string, 0, len(ws))
	for _, w := range ws {
		lines = append(lines, "⚠️ "+w.Message)
	}
	return "\n\n" + strings.Join(lines, "\n")
}

func formatDecimal(d decimal.NullDecimal) string {
	if !d.Valid {
		return "-"
	}
	return d.Decimal.StringFixed(2)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
