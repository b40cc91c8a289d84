package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ActionType is the kind of step planned for a (state, species) in a year.
type ActionType string

const (
	ActionBuyPoints ActionType = "buy_points"
	ActionApply     ActionType = "apply"
	ActionHunt      ActionType = "hunt"
	ActionScout     ActionType = "scout"
)

// RoadmapAction is one planned step. DueDate is the application deadline;
// RefundDate is when floated money comes back or becomes a tag purchase.
// Stale marks an action a draw outcome invalidated until it is re-planned.
type RoadmapAction struct {
	ID          string          `json:"id"`
	StateID     string          `json:"state_id"`
	Species     string          `json:"species"`
	Type        ActionType      `json:"type"`
	Year        int             `json:"year"`
	UnitID      string          `json:"unit_id,omitempty"`
	Cost        decimal.Decimal `json:"cost"`
	DueDate     *time.Time      `json:"due_date,omitempty"`
	RefundDate  *time.Time      `json:"refund_date,omitempty"`
	PartyPoints []float64       `json:"party_points,omitempty"`
	Stale       bool            `json:"stale,omitempty"`
}

func (a RoadmapAction) Key() Key { return Key{StateID: a.StateID, Species: a.Species} }

// RoadmapYear groups the actions planned for one calendar year.
type RoadmapYear struct {
	Year    int             `json:"year"`
	Actions []RoadmapAction `json:"actions"`
}

// TotalCost sums every action's estimated cost.
func (y RoadmapYear) TotalCost() decimal.Decimal {
	total := decimal.Zero
	for _, a := range y.Actions {
		total = total.Add(a.Cost)
	}
	return total
}
