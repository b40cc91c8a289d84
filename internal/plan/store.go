package plan

import (
	"errors"
	"fmt"
	"log"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/matt-fiveeighty/odyssey-sub006/internal/dispatcher"
	"github.com/matt-fiveeighty/odyssey-sub006/internal/model"
)

var (
	ErrAlreadyApplied  = errors.New("cascade already applied")
	ErrStaleCascade    = errors.New("cascade was computed against a different plan")
	ErrAlreadyResolved = errors.New("milestone already has a draw outcome")
)

// Store owns the hunter's plan and applies cascades to it atomically.
type Store struct {
	mu       sync.Mutex
	state    *State
	filePath string
}

// NewStore loads the plan at filePath, creating an empty one if needed.
func NewStore(filePath string) (*Store, error) {
	state, err := LoadState(filePath)
	if err != nil {
		return nil, err
	}
	s := &Store{state: state, filePath: filePath}
	if err := s.save(s.state); err != nil {
		return nil, err
	}
	return s, nil
}

// State returns a deep copy of the current plan.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.state.clone()
}

// Snapshot returns the dispatcher's view of the current plan.
func (s *Store) Snapshot() dispatcher.Snapshot {
	st := s.State()
	return dispatcher.Snapshot{
		Points:     st.Points,
		Roadmap:    st.Roadmap,
		Milestones: st.Milestones,
		Capital:    st.Capital,
	}
}

// Apply commits every mutation in the cascade or none of them.
func (s *Store) Apply(c model.CascadeResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.Contains(s.state.AppliedCascades, c.ID) {
		return fmt.Errorf("%s: %w", c.ID, ErrAlreadyApplied)
	}
	for _, m := range s.state.Milestones {
		if m.ID == c.MilestoneID && m.Outcome != model.OutcomePending {
			return fmt.Errorf("%s is %s: %w", m.ID, m.Outcome, ErrAlreadyResolved)
		}
	}

	next := s.state.clone()
	if err := applyPoints(next, c); err != nil {
		return err
	}
	applyInvalidations(next, c.Invalidations)
	if err := applyCapital(next, c.Reclassifications); err != nil {
		return err
	}
	for i := range next.Milestones {
		if next.Milestones[i].ID == c.MilestoneID {
			next.Milestones[i].Outcome = c.Outcome
			next.Milestones[i].Completed = true
		}
	}
	next.AppliedCascades = append(next.AppliedCascades, c.ID)

	if err := s.save(next); err != nil {
		return fmt.Errorf("save plan: %w", err)
	}
	s.state = next
	log.Printf("[INFO] applied %s cascade %s for %s/%s %d", c.Outcome, c.ID, c.StateID, c.Species, c.Year)
	return nil
}

// RecordPointPurchase adds one point for key and books the fee as sunk.
func (s *Store) RecordPointPurchase(key model.Key, year int, fee decimal.Decimal) (model.UserPoints, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.clone()
	i := pointIndex(next, key)
	next.Points[i].Points++
	next.Capital = append(next.Capital, model.CapitalEntry{
		ID:      uuid.NewString(),
		StateID: key.StateID,
		Species: key.Species,
		Year:    year,
		Amount:  fee,
		Status:  model.CapitalSunk,
		Note:    "point purchase",
	})
	if err := s.save(next); err != nil {
		return model.UserPoints{}, fmt.Errorf("save plan: %w", err)
	}
	s.state = next
	return next.Points[i], nil
}

// FloatApplication books an application fee as floated capital.
func (s *Store) FloatApplication(m model.Milestone, amount decimal.Decimal) (model.CapitalEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := model.CapitalEntry{
		ID:          uuid.NewString(),
		StateID:     m.StateID,
		Species:     m.Species,
		Year:        m.Year,
		MilestoneID: m.ID,
		Amount:      amount,
		Status:      model.CapitalFloated,
	}
	next := s.state.clone()
	next.Capital = append(next.Capital, entry)
	if err := s.save(next); err != nil {
		return model.CapitalEntry{}, fmt.Errorf("save plan: %w", err)
	}
	s.state = next
	return entry, nil
}

func applyPoints(next *State, c model.CascadeResult) error {
	for _, pm := range c.PointMutations {
		if pm.NewBalance < 0 {
			return fmt.Errorf("%s would go negative", pm.Key())
		}
		i := pointIndex(next, pm.Key())
		if next.Points[i].Points+pm.Delta != pm.NewBalance {
			return fmt.Errorf("%s holds %d, cascade expected %d: %w",
				pm.Key(), next.Points[i].Points, pm.NewBalance-pm.Delta, ErrStaleCascade)
		}
		next.Points[i].Points = pm.NewBalance
	}
	if c.Outcome == model.OutcomeDrew {
		key := model.Key{StateID: c.StateID, Species: c.Species}
		if got := model.PointsFor(next.Points, key); got != 0 {
			return fmt.Errorf("%s holds %d points after a draw: %w", key, got, ErrStaleCascade)
		}
	}
	return nil
}

func applyInvalidations(next *State, invs []model.RoadmapInvalidation) {
	for _, inv := range invs {
		key := model.Key{StateID: inv.StateID, Species: inv.Species}
		for yi := range next.Roadmap {
			y := &next.Roadmap[yi]
			if y.Year != inv.Year {
				continue
			}
			kept := y.Actions[:0]
			for _, a := range y.Actions {
				if a.Key() == key {
					if inv.Action == model.InvalidateRemove {
						continue
					}
					a.Stale = true
				}
				kept = append(kept, a)
			}
			y.Actions = kept
		}
	}
}

func applyCapital(next *State, rcs []model.CapitalReclassification) error {
	for _, rc := range rcs {
		found := false
		for i := range next.Capital {
			if next.Capital[i].ID != rc.EntryID {
				continue
			}
			if next.Capital[i].Status != rc.From {
				return fmt.Errorf("capital %s is %s, not %s: %w", rc.EntryID, next.Capital[i].Status, rc.From, ErrStaleCascade)
			}
			next.Capital[i].Status = rc.To
			found = true
		}
		if !found {
			return fmt.Errorf("capital %s not found: %w", rc.EntryID, ErrStaleCascade)
		}
	}
	return nil
}

// pointIndex finds key's balance, appending a zero balance if absent.
func pointIndex(st *State, key model.Key) int {
	for i, p := range st.Points {
		if p.Key() == key {
			return i
		}
	}
	st.Points = append(st.Points, model.UserPoints{StateID: key.StateID, Species: key.Species})
	return len(st.Points) - 1
}

func (s *Store) save(st *State) error {
	return SaveState(s.filePath, st)
}
