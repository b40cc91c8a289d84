package model

import "github.com/shopspring/decimal"

// Severity grades diagnostics from the liquidity detector and the dispatcher.
type Severity string

const (
	SeverityOK       Severity = "ok"
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// AlertKind names the condition an alert reports.
type AlertKind string

const (
	AlertPermanentBan    AlertKind = "permanent_ban"
	AlertWaitingPeriod   AlertKind = "waiting_period"
	AlertSuccessDisaster AlertKind = "success_disaster"
	AlertDeadAsset       AlertKind = "dead_asset_review"
	AlertUnknownState    AlertKind = "unknown_state"
)

// Alert is a user-facing diagnostic produced by a cascade.
type Alert struct {
	Kind     AlertKind `json:"kind"`
	Severity Severity  `json:"severity"`
	StateID  string    `json:"state_id,omitempty"`
	Species  string    `json:"species,omitempty"`
	Year     int       `json:"year,omitempty"`
	Title    string    `json:"title"`
	Message  string    `json:"message"`
}

// PointMutation changes one balance by Delta. NewBalance is never negative.
type PointMutation struct {
	StateID    string `json:"state_id"`
	Species    string `json:"species"`
	Delta      int    `json:"delta"`
	NewBalance int    `json:"new_balance"`
	Reason     string `json:"reason"`
}

func (m PointMutation) Key() Key { return Key{StateID: m.StateID, Species: m.Species} }

// InvalidationAction tells the caller what to do with an invalidated year.
type InvalidationAction string

const (
	InvalidateRecalculate InvalidationAction = "recalculate"
	InvalidateRemove      InvalidationAction = "remove"
)

// RoadmapInvalidation flags the (state, species) actions of one year.
type RoadmapInvalidation struct {
	Year    int                `json:"year"`
	StateID string             `json:"state_id"`
	Species string             `json:"species"`
	Action  InvalidationAction `json:"action"`
	Reason  string             `json:"reason"`
}

// CapitalReclassification moves a capital entry between statuses.
type CapitalReclassification struct {
	EntryID string          `json:"entry_id"`
	StateID string          `json:"state_id"`
	Species string          `json:"species"`
	Amount  decimal.Decimal `json:"amount"`
	From    CapitalStatus   `json:"from"`
	To      CapitalStatus   `json:"to"`
}

// ScheduleConflict reports a year whose planned spending exceeds the budget.
type ScheduleConflict struct {
	Year      int             `json:"year"`
	Severity  Severity        `json:"severity"`
	Total     decimal.Decimal `json:"total"`
	Budget    decimal.Decimal `json:"budget"`
	ActionIDs []string        `json:"action_ids"`
	Message   string          `json:"message"`
}

// CascadeResult is the complete set of mutations and diagnostics for one
// draw outcome. Callers apply it as a single transaction.
type CascadeResult struct {
	ID                 string                    `json:"id"`
	MilestoneID        string                    `json:"milestone_id"`
	StateID            string                    `json:"state_id"`
	Species            string                    `json:"species"`
	Year               int                       `json:"year"`
	Outcome            DrawOutcome               `json:"outcome"`
	// WaitingPeriodYears is only meaningful when PermanentBan is false.
	WaitingPeriodYears int                       `json:"waiting_period_years"`
	PermanentBan       bool                      `json:"permanent_ban"`
	NextEligibleYear   *int                      `json:"next_eligible_year"`
	PointMutations     []PointMutation           `json:"point_mutations"`
	Invalidations      []RoadmapInvalidation     `json:"invalidations"`
	Reclassifications  []CapitalReclassification `json:"reclassifications"`
	Conflicts          []ScheduleConflict        `json:"conflicts"`
	Alerts             []Alert                   `json:"alerts"`
}
