package dispatcher

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/matt-fiveeighty/odyssey-sub006/internal/model"
	"github.com/matt-fiveeighty/odyssey-sub006/internal/registry"
)

func drew(out *model.CascadeResult, sys registry.StateSystem, known bool, snap Snapshot, m model.Milestone, pol Policy) {
	key := m.Key()

	// 1. points are spent
	current := model.PointsFor(snap.Points, key)
	out.PointMutations = append(out.PointMutations, model.PointMutation{
		StateID:    m.StateID,
		Species:    m.Species,
		Delta:      -current,
		NewBalance: 0,
		Reason:     fmt.Sprintf("drew %s %s in %d", m.StateID, m.Species, m.Year),
	})

	// 2. waiting period
	var waitYears int
	var permanent bool
	if known {
		waitYears, permanent = sys.WaitingPeriod(m.Species)
	}
	out.WaitingPeriodYears = waitYears
	out.PermanentBan = permanent
	if !permanent {
		next := m.Year + 1 + waitYears
		out.NextEligibleYear = &next
	}

	// 3. roadmap years inside the waiting window
	years := make([]int, 0, len(snap.Roadmap))
	for _, y := range snap.Roadmap {
		years = append(years, y.Year)
	}
	sort.Ints(years)
	for _, y := range years {
		if y <= m.Year {
			continue
		}
		switch {
		case permanent:
			out.Invalidations = append(out.Invalidations, model.RoadmapInvalidation{
				Year: y, StateID: m.StateID, Species: m.Species, Action: model.InvalidateRemove,
				Reason: fmt.Sprintf("%s %s is once-in-a-lifetime and was drawn in %d", m.StateID, m.Species, m.Year),
			})
		case y < *out.NextEligibleYear:
			out.Invalidations = append(out.Invalidations, model.RoadmapInvalidation{
				Year: y, StateID: m.StateID, Species: m.Species, Action: model.InvalidateRecalculate,
				Reason: fmt.Sprintf("inside the %d-year waiting period; eligible again in %d", waitYears, *out.NextEligibleYear),
			})
		}
	}

	// 4. floated money becomes sunk
	for _, c := range snap.Capital {
		if c.Key() == key && c.Status == model.CapitalFloated {
			out.Reclassifications = append(out.Reclassifications, model.CapitalReclassification{
				EntryID: c.ID, StateID: c.StateID, Species: c.Species, Amount: c.Amount,
				From: model.CapitalFloated, To: model.CapitalSunk,
			})
		}
	}

	// 5. success disaster, counting only actions still in the plan
	if pol.HuntYearBudget.IsPositive() {
		for _, y := range snap.Roadmap {
			if y.Year != m.Year {
				continue
			}
			live := liveActions(y)
			total := live.TotalCost()
			if total.GreaterThan(pol.HuntYearBudget) {
				conflict := successDisaster(live, total, pol)
				out.Conflicts = append(out.Conflicts, conflict)
				out.Alerts = append(out.Alerts, successDisasterAlert(m, conflict))
			}
		}
	}

	// 6. eligibility and dead-asset alerts
	switch {
	case permanent:
		out.Alerts = append(out.Alerts, permanentBanAlert(m))
	case waitYears > 0:
		out.Alerts = append(out.Alerts, waitingPeriodAlert(m, waitYears, *out.NextEligibleYear))
	}
	for _, p := range sortedPoints(snap.Points) {
		if p.StateID != m.StateID || p.Species == m.Species {
			continue
		}
		if p.Points >= pol.creepThreshold() {
			out.Alerts = append(out.Alerts, deadAssetAlert(p.StateID, p.Species, p.Points, m.Year))
		}
	}
}

func successDisaster(y model.RoadmapYear, total decimal.Decimal, pol Policy) model.ScheduleConflict {
	ids := make([]string, 0, len(y.Actions))
	for _, a := range y.Actions {
		ids = append(ids, a.ID)
	}
	return model.ScheduleConflict{
		Year:      y.Year,
		Severity:  model.SeverityCritical,
		Total:     total,
		Budget:    pol.HuntYearBudget,
		ActionIDs: ids,
		Message: fmt.Sprintf("%d plans $%s against a $%s hunt-year budget, $%s over",
			y.Year, total.StringFixed(2), pol.HuntYearBudget.StringFixed(2), total.Sub(pol.HuntYearBudget).StringFixed(2)),
	}
}

// liveActions drops actions an earlier cascade marked stale.
func liveActions(y model.RoadmapYear) model.RoadmapYear {
	live := model.RoadmapYear{Year: y.Year}
	for _, a := range y.Actions {
		if !a.Stale {
			live.Actions = append(live.Actions, a)
		}
	}
	return live
}

func sortedPoints(points []model.UserPoints) []model.UserPoints {
	out := append([]model.UserPoints(nil), points...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].StateID != out[j].StateID {
			return out[i].StateID < out[j].StateID
		}
		return out[i].Species < out[j].Species
	})
	return out
}
