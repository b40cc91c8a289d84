package model

import "fmt"

// PointType describes what a state's points buy.
type PointType string

const (
	PointPreference PointType = "preference"
	PointBonus      PointType = "bonus"
	PointNone       PointType = "none"
)

// Key identifies a (state, species) pair.
type Key struct {
	StateID string `json:"state_id"`
	Species string `json:"species"`
}

func (k Key) String() string { return fmt.Sprintf("%s/%s", k.StateID, k.Species) }

// UserPoints is the hunter's accumulated balance for one (state, species).
type UserPoints struct {
	StateID string    `json:"state_id"`
	Species string    `json:"species"`
	Points  int       `json:"points"`
	Type    PointType `json:"type"`
}

func (p UserPoints) Key() Key { return Key{StateID: p.StateID, Species: p.Species} }

// PointsFor returns the balance held for key, or 0 when the hunter holds none.
func PointsFor(points []UserPoints, key Key) int {
	for _, p := range points {
		if p.Key() == key {
			return p.Points
		}
	}
	return 0
}
