package dispatcher

import (
	"fmt"

	"github.com/matt-fiveeighty/odyssey-sub006/internal/model"
)

func unknownStateAlert(m model.Milestone) model.Alert {
	return model.Alert{
		Kind:     model.AlertUnknownState,
		Severity: model.SeverityWarning,
		StateID:  m.StateID,
		Species:  m.Species,
		Year:     m.Year,
		Title:    "Insufficient data",
		Message:  fmt.Sprintf("No point system on file for %s; waiting periods and point awards were not applied.", m.StateID),
	}
}

func permanentBanAlert(m model.Milestone) model.Alert {
	return model.Alert{
		Kind:     model.AlertPermanentBan,
		Severity: model.SeverityCritical,
		StateID:  m.StateID,
		Species:  m.Species,
		Year:     m.Year,
		Title:    "Once-in-a-lifetime tag drawn",
		Message:  fmt.Sprintf("%s %s can never be applied for again. Future %s %s plans are removed.", m.StateID, m.Species, m.StateID, m.Species),
	}
}

func waitingPeriodAlert(m model.Milestone, years, nextEligible int) model.Alert {
	return model.Alert{
		Kind:     model.AlertWaitingPeriod,
		Severity: model.SeverityWarning,
		StateID:  m.StateID,
		Species:  m.Species,
		Year:     m.Year,
		Title:    "Waiting period started",
		Message:  fmt.Sprintf("%s %s has a %d-year waiting period. Eligible again in %d.", m.StateID, m.Species, years, nextEligible),
	}
}

func successDisasterAlert(m model.Milestone, c model.ScheduleConflict) model.Alert {
	return model.Alert{
		Kind:     model.AlertSuccessDisaster,
		Severity: model.SeverityCritical,
		StateID:  m.StateID,
		Species:  m.Species,
		Year:     c.Year,
		Title:    "Drew more hunts than the budget covers",
		Message:  c.Message,
	}
}

func deadAssetAlert(stateID, species string, points, year int) model.Alert {
	return model.Alert{
		Kind:     model.AlertDeadAsset,
		Severity: model.SeverityInfo,
		StateID:  stateID,
		Species:  species,
		Year:     year,
		Title:    "Review point stack",
		Message:  fmt.Sprintf("%d %s %s points and climbing. Check whether this draw is still reachable or the points are a dead asset.", points, stateID, species),
	}
}
