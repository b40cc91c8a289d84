package model

// Rounding is how a state collapses a party's averaged points.
type Rounding string

const (
	RoundingFloor Rounding = "floor"
	RoundingExact Rounding = "exact"
)

// UnknownAlgorithm labels an odds result the engine could not model.
const UnknownAlgorithm = "unknown"

// UnknownYears is the years-to-draw estimate reported for insufficient data.
const UnknownYears = 99

// OddsResult is the draw odds calculator's output for one target unit.
type OddsResult struct {
	StateID        string  `json:"state_id"`
	Species        string  `json:"species"`
	UnitID         string  `json:"unit_id"`
	Points         float64 `json:"points"`
	Odds           float64 `json:"odds"` // 0.0 ~ 1.0
	YearsToDraw    int     `json:"years_to_draw"`
	ExpectedPoints float64 `json:"expected_points"`
	Algorithm      string  `json:"algorithm"`
	Explanation    string  `json:"explanation"`
}

// Unknown reports whether the result signals insufficient data.
func (r OddsResult) Unknown() bool { return r.Algorithm == UnknownAlgorithm }

// GroupResult describes a party's effective points after state rounding.
type GroupResult struct {
	StateID   string   `json:"state_id"`
	Species   string   `json:"species"`
	Raw       float64  `json:"raw"`
	Method    Rounding `json:"method"`
	Effective float64  `json:"effective"`
	PointLoss float64  `json:"point_loss"`
	Warning   string   `json:"warning,omitempty"`
}
