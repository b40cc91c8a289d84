package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CapitalStatus tracks where a committed dollar currently sits.
type CapitalStatus string

const (
	CapitalFloated   CapitalStatus = "floated"
	CapitalSunk      CapitalStatus = "sunk"
	CapitalAvailable CapitalStatus = "available"
)

// CapitalEntry is money tied to an application. MilestoneID is optional;
// without it the entry is matched by (state, species, year).
type CapitalEntry struct {
	ID          string          `json:"id"`
	StateID     string          `json:"state_id"`
	Species     string          `json:"species"`
	Year        int             `json:"year"`
	MilestoneID string          `json:"milestone_id,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Status      CapitalStatus   `json:"status"`
	Note        string          `json:"note,omitempty"`
}

func (c CapitalEntry) Key() Key { return Key{StateID: c.StateID, Species: c.Species} }

// FloatEvent is money out of pocket over [Start, End).
type FloatEvent struct {
	ID      string          `json:"id"`
	StateID string          `json:"state_id"`
	Species string          `json:"species"`
	Amount  decimal.Decimal `json:"amount"`
	Start   time.Time       `json:"start"`
	End     time.Time       `json:"end"`
}
