package dispatcher

import (
	"fmt"

	"github.com/matt-fiveeighty/odyssey-sub006/internal/model"
	"github.com/matt-fiveeighty/odyssey-sub006/internal/registry"
)

func didntDraw(out *model.CascadeResult, sys registry.StateSystem, known bool, snap Snapshot, m model.Milestone, pol Policy) {
	key := m.Key()

	// 1. failed attempts earn progress unless the draw is a pure lottery
	delta := 0
	if known {
		delta = failurePoints(sys.Algorithm)
	}
	current := model.PointsFor(snap.Points, key)
	balance := current + delta
	out.PointMutations = append(out.PointMutations, model.PointMutation{
		StateID:    m.StateID,
		Species:    m.Species,
		Delta:      delta,
		NewBalance: balance,
		Reason:     fmt.Sprintf("unsuccessful %s %s application in %d", m.StateID, m.Species, m.Year),
	})

	// 2. floated money comes back
	for _, c := range snap.Capital {
		if c.Status != model.CapitalFloated || !tiedTo(c, m) {
			continue
		}
		out.Reclassifications = append(out.Reclassifications, model.CapitalReclassification{
			EntryID: c.ID, StateID: c.StateID, Species: c.Species, Amount: c.Amount,
			From: model.CapitalFloated, To: model.CapitalAvailable,
		})
	}

	// 3. the roadmap stays valid

	// 4. point creep
	if balance >= pol.creepThreshold() {
		out.Alerts = append(out.Alerts, deadAssetAlert(m.StateID, m.Species, balance, m.Year))
	}
}

// failurePoints is the point award for an unsuccessful application.
func failurePoints(alg registry.Algorithm) int {
	switch alg.(type) {
	case registry.Preference, registry.Hybrid, registry.Dual, registry.PreferenceNR,
		registry.Bonus, registry.BonusSquared:
		return 1
	case registry.Random, registry.Unknown:
		return 0
	default:
		return 0
	}
}

// tiedTo matches capital to a milestone by id, falling back to
// (state, species, year) for entries recorded without one.
func tiedTo(c model.CapitalEntry, m model.Milestone) bool {
	if c.MilestoneID != "" {
		return c.MilestoneID == m.ID
	}
	return c.Key() == m.Key() && c.Year == m.Year
}
