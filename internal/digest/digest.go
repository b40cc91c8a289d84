// Package digest runs the read-only analyses over a plan year: odds for
// every planned application and the year's float exposure.
package digest

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/matt-fiveeighty/odyssey-sub006/internal/calculator"
	"github.com/matt-fiveeighty/odyssey-sub006/internal/liquidity"
	"github.com/matt-fiveeighty/odyssey-sub006/internal/model"
	"github.com/matt-fiveeighty/odyssey-sub006/internal/plan"
	"github.com/matt-fiveeighty/odyssey-sub006/internal/registry"
)

// Catalog is the reference data a digest needs.
type Catalog interface {
	registry.Lookup
	Unit(id string) (model.Unit, bool)
	Units(stateID, species string) []model.Unit
}

// Entry is the odds picture for one planned application.
type Entry struct {
	Action model.RoadmapAction `json:"action"`
	Group  *model.GroupResult  `json:"group,omitempty"`
	Odds   model.OddsResult    `json:"odds"`
}

// Digest is the analysis of one plan year.
type Digest struct {
	Year      int              `json:"year"`
	Entries   []Entry          `json:"entries"`
	Liquidity liquidity.Report `json:"liquidity"`
	Warnings  []string         `json:"warnings,omitempty"`
}

// Builder holds the reference data and the hunter's float ceiling.
type Builder struct {
	Catalog      Catalog
	FloatCeiling decimal.Decimal
	CriticalBand decimal.Decimal
}

// NewBuilder creates a Builder.
func NewBuilder(catalog Catalog, floatCeiling, criticalBand decimal.Decimal) *Builder {
	return &Builder{Catalog: catalog, FloatCeiling: floatCeiling, CriticalBand: criticalBand}
}

// Build analyses the apply actions planned for year.
func (b *Builder) Build(st plan.State, year int) Digest {
	d := Digest{Year: year}
	years := liquidity.ForYear(st.Roadmap, year)

	for _, y := range years {
		for _, a := range y.Actions {
			if a.Type != model.ActionApply {
				continue
			}
			if a.Stale {
				d.Warnings = append(d.Warnings, fmt.Sprintf("%s %s %d is waiting to be re-planned", a.StateID, a.Species, year))
				continue
			}
			entry := b.entry(st, a)
			if entry.Group != nil && entry.Group.Warning != "" {
				d.Warnings = append(d.Warnings, entry.Group.Warning)
			}
			d.Entries = append(d.Entries, entry)
		}
	}
	sort.SliceStable(d.Entries, func(i, j int) bool { return d.Entries[i].Odds.Odds > d.Entries[j].Odds.Odds })

	var opts []liquidity.Option
	if b.CriticalBand.IsPositive() {
		opts = append(opts, liquidity.WithCriticalBand(b.CriticalBand))
	}
	d.Liquidity = liquidity.Detect(liquidity.EventsFromRoadmap(years), b.FloatCeiling, opts...)
	return d
}

func (b *Builder) entry(st plan.State, a model.RoadmapAction) Entry {
	in := calculator.OddsInput{
		StateID:  a.StateID,
		Points:   float64(model.PointsFor(st.Points, a.Key())),
		Resident: st.Resident(a.StateID),
	}

	unit, ok := b.unitFor(a)
	if !ok {
		in.Unit = model.Unit{ID: a.UnitID, StateID: a.StateID, Species: a.Species}
		return Entry{Action: a, Odds: calculator.InsufficientData(in, fmt.Sprintf("no unit on file for %s %s", a.StateID, a.Species))}
	}
	in.Unit = unit

	if len(a.PartyPoints) > 0 {
		group, odds := calculator.GroupOdds(b.Catalog, in, a.PartyPoints)
		return Entry{Action: a, Group: &group, Odds: odds}
	}
	return Entry{Action: a, Odds: calculator.DrawOdds(b.Catalog, in)}
}

// unitFor resolves the action's unit, falling back to the first catalog
// unit for its (state, species).
func (b *Builder) unitFor(a model.RoadmapAction) (model.Unit, bool) {
	if a.UnitID != "" {
		return b.Catalog.Unit(a.UnitID)
	}
	units := b.Catalog.Units(a.StateID, a.Species)
	if len(units) == 0 {
		return model.Unit{}, false
	}
	return units[0], true
}
