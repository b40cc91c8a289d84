// Package dispatcher turns one draw outcome into the full set of plan
// mutations and diagnostics it implies. It never edits the plan it reads.
package dispatcher

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/matt-fiveeighty/odyssey-sub006/internal/model"
	"github.com/matt-fiveeighty/odyssey-sub006/internal/registry"
)

// DefaultPointCreepThreshold is the balance at which a point stack is
// flagged for a dead-asset review.
const DefaultPointCreepThreshold = 6

var (
	ErrUnknownOutcome   = errors.New("unknown draw outcome")
	ErrInvalidMilestone = errors.New("milestone needs a state and species")
)

// cascadeNamespace seeds deterministic bundle IDs so replays collide.
var cascadeNamespace = uuid.MustParse("6f1d2b8e-3c4a-4e57-9a0b-2d7c9e51a3f4")

// Policy holds the hunter's knobs. A zero HuntYearBudget disables the
// success-disaster check.
type Policy struct {
	HuntYearBudget      decimal.Decimal
	PointCreepThreshold int
}

func (p Policy) creepThreshold() int {
	if p.PointCreepThreshold <= 0 {
		return DefaultPointCreepThreshold
	}
	return p.PointCreepThreshold
}

// Snapshot is the read-only view of the plan a cascade is computed against.
type Snapshot struct {
	Points     []model.UserPoints
	Roadmap    []model.RoadmapYear
	Milestones []model.Milestone
	Capital    []model.CapitalEntry
}

// DrawResult is one reported outcome for one milestone.
type DrawResult struct {
	Milestone model.Milestone
	Outcome   model.DrawOutcome
}

// Dispatch computes the cascade for a draw result. Missing registry data
// degrades to alerts; only structurally invalid input returns an error.
func Dispatch(systems registry.Lookup, snap Snapshot, res DrawResult, pol Policy) (model.CascadeResult, error) {
	m := res.Milestone
	if m.StateID == "" || m.Species == "" {
		return model.CascadeResult{}, fmt.Errorf("milestone %q: %w", m.ID, ErrInvalidMilestone)
	}
	if res.Outcome != model.OutcomeDrew && res.Outcome != model.OutcomeDidntDraw {
		return model.CascadeResult{}, fmt.Errorf("%w: %q", ErrUnknownOutcome, res.Outcome)
	}

	out := model.CascadeResult{
		ID:                bundleID(m, res.Outcome),
		MilestoneID:       m.ID,
		StateID:           m.StateID,
		Species:           m.Species,
		Year:              m.Year,
		Outcome:           res.Outcome,
		PointMutations:    []model.PointMutation{},
		Invalidations:     []model.RoadmapInvalidation{},
		Reclassifications: []model.CapitalReclassification{},
		Conflicts:         []model.ScheduleConflict{},
		Alerts:            []model.Alert{},
	}

	sys, known := systems.Lookup(m.StateID)
	if !known {
		out.Alerts = append(out.Alerts, unknownStateAlert(m))
	}

	if res.Outcome == model.OutcomeDrew {
		drew(&out, sys, known, snap, m, pol)
	} else {
		didntDraw(&out, sys, known, snap, m, pol)
	}
	return out, nil
}

// FindMilestone returns the milestone tracking (key, year) of the given type.
func FindMilestone(milestones []model.Milestone, key model.Key, typ model.ActionType, year int) (model.Milestone, bool) {
	for _, m := range milestones {
		if m.Key() == key && m.Type == typ && m.Year == year {
			return m, true
		}
	}
	return model.Milestone{}, false
}

func bundleID(m model.Milestone, outcome model.DrawOutcome) string {
	seed := fmt.Sprintf("%s|%s|%s|%d|%s", m.ID, m.StateID, m.Species, m.Year, outcome)
	return uuid.NewSHA1(cascadeNamespace, []byte(seed)).String()
}
