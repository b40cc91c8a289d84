// Package liquidity finds the worst moment of simultaneous float exposure
// across application windows.
package liquidity

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/matt-fiveeighty/odyssey-sub006/internal/model"
)

// DefaultCriticalBand is the deficit, as a fraction of the ceiling, above
// which an overage is critical rather than a warning.
var DefaultCriticalBand = decimal.NewFromFloat(0.2)

type options struct {
	criticalBand decimal.Decimal
}

// Option tunes Detect.
type Option func(*options)

// WithCriticalBand overrides DefaultCriticalBand.
func WithCriticalBand(fraction decimal.Decimal) Option {
	return func(o *options) { o.criticalBand = fraction }
}

// Segment is a stretch [Start, End) of constant exposure.
type Segment struct {
	Start    time.Time       `json:"start"`
	End      time.Time       `json:"end"`
	Amount   decimal.Decimal `json:"amount"`
	EventIDs []string        `json:"event_ids"`
}

// Report is the detector's diagnosis.
type Report struct {
	Ceiling   decimal.Decimal    `json:"ceiling"`
	Peak      decimal.Decimal    `json:"peak"`
	PeakStart time.Time          `json:"peak_start"`
	PeakEnd   time.Time          `json:"peak_end"`
	Active    []model.FloatEvent `json:"active"`
	Deficit   decimal.Decimal    `json:"deficit"`
	Severity  model.Severity     `json:"severity"`
	Overages  []Segment          `json:"overages,omitempty"`
}

// Detect sweeps every start and end date and sums the events whose
// [Start, End) interval contains it. Events that end on or before they
// start hold no money and are ignored.
func Detect(events []model.FloatEvent, ceiling decimal.Decimal, opts ...Option) Report {
	o := options{criticalBand: DefaultCriticalBand}
	for _, opt := range opts {
		opt(&o)
	}

	valid := make([]model.FloatEvent, 0, len(events))
	for _, e := range events {
		if e.End.After(e.Start) {
			valid = append(valid, e)
		}
	}

	report := Report{Ceiling: ceiling, Peak: decimal.Zero, Deficit: decimal.Zero, Severity: model.SeverityOK}
	bounds := boundaries(valid)

	for i, at := range bounds {
		var active []model.FloatEvent
		sum := decimal.Zero
		for _, e := range valid {
			if !e.Start.After(at) && e.End.After(at) {
				active = append(active, e)
				sum = sum.Add(e.Amount)
			}
		}
		if len(active) == 0 || i+1 == len(bounds) {
			continue
		}
		next := bounds[i+1]

		if sum.GreaterThan(report.Peak) {
			report.Peak = sum
			report.PeakStart = at
			report.PeakEnd = next
			report.Active = active
		}
		if sum.GreaterThan(ceiling) {
			report.Overages = append(report.Overages, Segment{Start: at, End: next, Amount: sum, EventIDs: eventIDs(active)})
		}
	}

	if report.Peak.LessThanOrEqual(ceiling) {
		return report
	}
	report.Deficit = report.Peak.Sub(ceiling)
	report.Severity = grade(report.Deficit, ceiling, o.criticalBand)
	return report
}

func grade(deficit, ceiling, band decimal.Decimal) model.Severity {
	if !ceiling.IsPositive() {
		return model.SeverityCritical
	}
	if deficit.GreaterThan(ceiling.Mul(band)) {
		return model.SeverityCritical
	}
	return model.SeverityWarning
}

func boundaries(events []model.FloatEvent) []time.Time {
	all := make([]time.Time, 0, len(events)*2)
	for _, e := range events {
		all = append(all, e.Start, e.End)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Before(all[j]) })

	out := all[:0]
	for _, t := range all {
		if len(out) > 0 && out[len(out)-1].Equal(t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func eventIDs(events []model.FloatEvent) []string {
	ids := make([]string, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	return ids
}
