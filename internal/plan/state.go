package plan

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/matt-fiveeighty/odyssey-sub006/internal/model"
)

// State is the hunter's persisted plan.
type State struct {
	HunterID        string               `json:"hunter_id"`
	HomeState       string               `json:"home_state"`
	Points          []model.UserPoints   `json:"points"`
	Roadmap         []model.RoadmapYear  `json:"roadmap"`
	Milestones      []model.Milestone    `json:"milestones"`
	Capital         []model.CapitalEntry `json:"capital"`
	AppliedCascades []string             `json:"applied_cascades"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// Resident reports whether the hunter lives in stateID.
func (s *State) Resident(stateID string) bool {
	return s.HomeState != "" && s.HomeState == stateID
}

// LoadState reads the plan from a JSON file. Returns an empty plan if the file doesn't exist.
func LoadState(filePath string) (*State, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &State{}, nil
		}
		return nil, err
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	return &state, nil
}

// SaveState writes the plan through a temp file so a crash never leaves a
// half-written plan behind.
func SaveState(filePath string, state *State) error {
	state.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	tmp := filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, filePath)
}

func (s *State) clone() *State {
	c := *s
	c.Points = append([]model.UserPoints(nil), s.Points...)
	c.Milestones = append([]model.Milestone(nil), s.Milestones...)
	c.Capital = append([]model.CapitalEntry(nil), s.Capital...)
	c.AppliedCascades = append([]string(nil), s.AppliedCascades...)
	c.Roadmap = make([]model.RoadmapYear, len(s.Roadmap))
	for i, y := range s.Roadmap {
		c.Roadmap[i] = model.RoadmapYear{Year: y.Year, Actions: make([]model.RoadmapAction, len(y.Actions))}
		for j, a := range y.Actions {
			a.PartyPoints = append([]float64(nil), a.PartyPoints...)
			c.Roadmap[i].Actions[j] = a
		}
	}
	return &c
}
