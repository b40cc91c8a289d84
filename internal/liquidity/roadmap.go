package liquidity

import "github.com/matt-fiveeighty/odyssey-sub006/internal/model"

// EventsFromRoadmap derives float events from application actions that carry
// both a deadline and a refund date.
func EventsFromRoadmap(years []model.RoadmapYear) []model.FloatEvent {
	var out []model.FloatEvent
	for _, y := range years {
		for _, a := range y.Actions {
			if a.Type != model.ActionApply || a.DueDate == nil || a.RefundDate == nil {
				continue
			}
			if !a.Cost.IsPositive() || !a.RefundDate.After(*a.DueDate) {
				continue
			}
			out = append(out, model.FloatEvent{
				ID:      a.ID,
				StateID: a.StateID,
				Species: a.Species,
				Amount:  a.Cost,
				Start:   *a.DueDate,
				End:     *a.RefundDate,
			})
		}
	}
	return out
}

// ForYear keeps the roadmap years equal to year.
func ForYear(years []model.RoadmapYear, year int) []model.RoadmapYear {
	for _, y := range years {
		if y.Year == year {
			return []model.RoadmapYear{y}
		}
	}
	return nil
}
