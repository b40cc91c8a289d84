package model

import "github.com/shopspring/decimal"

// DrawOutcome is the recorded result of a draw. The empty value means pending.
type DrawOutcome string

const (
	OutcomePending   DrawOutcome = ""
	OutcomeDrew      DrawOutcome = "drew"
	OutcomeDidntDraw DrawOutcome = "didnt_draw"
)

// Milestone is a trackable instance of a roadmap action.
type Milestone struct {
	ID        string          `json:"id"`
	StateID   string          `json:"state_id"`
	Species   string          `json:"species"`
	Type      ActionType      `json:"type"`
	Year      int             `json:"year"`
	UnitID    string          `json:"unit_id,omitempty"`
	Cost      decimal.Decimal `json:"cost"`
	Completed bool            `json:"completed"`
	Outcome   DrawOutcome     `json:"outcome,omitempty"`
}

func (m Milestone) Key() Key { return Key{StateID: m.StateID, Species: m.Species} }

// Matches reports whether the roadmap action is the one this milestone tracks.
func (m Milestone) Matches(a RoadmapAction) bool {
	return a.StateID == m.StateID && a.Species == m.Species && a.Type == m.Type && a.Year == m.Year
}
