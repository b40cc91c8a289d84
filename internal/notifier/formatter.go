package notifier

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/matt-fiveeighty/odyssey-sub006/internal/digest"
	"github.com/matt-fiveeighty/odyssey-sub006/internal/liquidity"
	"github.com/matt-fiveeighty/odyssey-sub006/internal/model"
)

const dateLayout = "2006-01-02"

// Escape makes user-supplied text safe for HTML parse mode.
func Escape(s string) string { return html.EscapeString(s) }

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(0)
}

func severityIcon(s model.Severity) string {
	switch s {
	case model.SeverityCritical:
		return "🚨"
	case model.SeverityWarning:
		return "⚠️"
	case model.SeverityInfo:
		return "ℹ️"
	default:
		return "✅"
	}
}

// FormatDigest formats the yearly odds digest into a Telegram message.
func FormatDigest(d *digest.Digest) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("🎯 <b>Draw odds digest</b> | %d\n\n", d.Year))

	if len(d.Entries) == 0 {
		b.WriteString("No applications planned.\n")
	}
	for _, e := range d.Entries {
		o := e.Odds
		unit := o.UnitID
		if unit == "" {
			unit = "-"
		}
		if o.Unknown() {
			b.WriteString(fmt.Sprintf("• %s %s (%s): insufficient data\n", Escape(o.StateID), Escape(o.Species), Escape(unit)))
			continue
		}
		b.WriteString(fmt.Sprintf("• %s %s (%s): %.1f%%, %s\n",
			Escape(o.StateID), Escape(o.Species), Escape(unit), o.Odds*100, yearsLabel(o.YearsToDraw)))
		if e.Group != nil {
			b.WriteString(fmt.Sprintf("   party %.2f → %g pts (%s)\n", e.Group.Raw, e.Group.Effective, e.Group.Method))
		}
	}

	b.WriteString("\n")
	b.WriteString(FormatLiquidity(d.Year, &d.Liquidity))

	if len(d.Warnings) > 0 {
		b.WriteString("\n")
		for _, w := range d.Warnings {
			b.WriteString(fmt.Sprintf("⚠️ %s\n", Escape(w)))
		}
	}
	return b.String()
}

func yearsLabel(n int) string {
	switch n {
	case 0:
		return "draw now"
	case 1:
		return "1 year out"
	default:
		return fmt.Sprintf("%d years out", n)
	}
}

// FormatLiquidity formats a liquidity report.
func FormatLiquidity(year int, r *liquidity.Report) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s <b>Float exposure</b> | %d\n", severityIcon(r.Severity), year))
	b.WriteString(fmt.Sprintf("Ceiling: %s\n", money(r.Ceiling)))
	if r.Peak.IsZero() {
		b.WriteString("No money floated.\n")
		return b.String()
	}
	b.WriteString(fmt.Sprintf("Peak: %s (%s → %s)\n", money(r.Peak),
		r.PeakStart.Format(dateLayout), r.PeakEnd.Format(dateLayout)))
	if r.Deficit.IsPositive() {
		b.WriteString(fmt.Sprintf("Deficit: %s\n", money(r.Deficit)))
	}
	for _, e := range r.Active {
		b.WriteString(fmt.Sprintf("  • %s %s %s\n", Escape(e.StateID), Escape(e.Species), money(e.Amount)))
	}
	return b.String()
}

// FormatCascade formats a draw outcome and everything it changed.
func FormatCascade(c *model.CascadeResult) string {
	var b strings.Builder

	verb := "didn't draw"
	if c.Outcome == model.OutcomeDrew {
		verb = "drew"
	}
	b.WriteString(fmt.Sprintf("🦌 <b>%s %s %d: %s</b>\n\n", Escape(c.StateID), Escape(c.Species), c.Year, verb))

	for _, pm := range c.PointMutations {
		b.WriteString(fmt.Sprintf("Points: %+d → %d\n", pm.Delta, pm.NewBalance))
	}
	switch {
	case c.PermanentBan:
		b.WriteString("Eligibility: once in a lifetime, never again\n")
	case c.NextEligibleYear != nil && c.Outcome == model.OutcomeDrew:
		b.WriteString(fmt.Sprintf("Eligible again: %d\n", *c.NextEligibleYear))
	}
	if n := len(c.Invalidations); n > 0 {
		b.WriteString(fmt.Sprintf("Roadmap years to revisit: %d\n", n))
	}
	for _, rc := range c.Reclassifications {
		b.WriteString(fmt.Sprintf("Capital: %s %s → %s\n", money(rc.Amount), rc.From, rc.To))
	}

	if len(c.Alerts) > 0 {
		b.WriteString("\n")
		b.WriteString(FormatAlerts(c.Alerts))
	}
	return b.String()
}

// FormatAlerts lists alerts, most severe first.
func FormatAlerts(alerts []model.Alert) string {
	if len(alerts) == 0 {
		return "No alerts.\n"
	}
	sorted := make([]model.Alert, len(alerts))
	copy(sorted, alerts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return severityRank(sorted[i].Severity) > severityRank(sorted[j].Severity)
	})

	var b strings.Builder
	for _, a := range sorted {
		b.WriteString(fmt.Sprintf("%s <b>%s</b>\n%s\n", severityIcon(a.Severity), Escape(a.Title), Escape(a.Message)))
	}
	return b.String()
}

func severityRank(s model.Severity) int {
	switch s {
	case model.SeverityCritical:
		return 3
	case model.SeverityWarning:
		return 2
	case model.SeverityInfo:
		return 1
	default:
		return 0
	}
}

// FormatPoints formats the hunter's balances grouped by state.
func FormatPoints(points []model.UserPoints) string {
	var b strings.Builder
	b.WriteString("📦 <b>Point balances</b>\n\n")
	if len(points) == 0 {
		b.WriteString("No points on file.\n")
		return b.String()
	}

	sorted := make([]model.UserPoints, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].StateID != sorted[j].StateID {
			return sorted[i].StateID < sorted[j].StateID
		}
		return sorted[i].Species < sorted[j].Species
	})
	for _, p := range sorted {
		b.WriteString(fmt.Sprintf("%s %s: %d (%s)\n", Escape(p.StateID), Escape(p.Species), p.Points, p.Type))
	}
	return b.String()
}

// FormatDeadlines lists applications due within the reminder window.
func FormatDeadlines(actions []model.RoadmapAction, now time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("⏰ <b>Application deadlines</b> | %s\n\n", now.Format(dateLayout)))
	for _, a := range actions {
		if a.DueDate == nil {
			continue
		}
		days := int(a.DueDate.Sub(now).Hours() / 24)
		b.WriteString(fmt.Sprintf("• %s %s: due %s (%d days), %s\n",
			Escape(a.StateID), Escape(a.Species), a.DueDate.Format(dateLayout), days, money(a.Cost)))
	}
	return b.String()
}
