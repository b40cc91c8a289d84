package registry

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matt-fiveeighty/odyssey-sub006/internal/model"
)

//go:embed default_registry.yaml
var defaultRegistry []byte

// StateSystem describes one state's point system. Values are copies; the
// registry they came from is never mutated.
type StateSystem struct {
	ID            string
	Name          string
	Algorithm     Algorithm
	GroupRounding model.Rounding
	oil           map[string]int
}

// NewStateSystem builds a StateSystem. oil maps species to waiting years,
// where 0 means a permanent ban.
func NewStateSystem(id, name string, alg Algorithm, rounding model.Rounding, oil map[string]int) StateSystem {
	s := StateSystem{
		ID:            normalizeState(id),
		Name:          name,
		Algorithm:     alg,
		GroupRounding: rounding,
		oil:           make(map[string]int, len(oil)),
	}
	for species, years := range oil {
		s.oil[normalizeSpecies(species)] = years
	}
	return s
}

// IsOIL reports whether species is once-in-a-lifetime in this state.
func (s StateSystem) IsOIL(species string) bool {
	_, ok := s.oil[normalizeSpecies(species)]
	return ok
}

// WaitingPeriod returns the post-draw wait for species. permanent is true
// for a lifetime ban; non-OIL species return (0, false).
func (s StateSystem) WaitingPeriod(species string) (years int, permanent bool) {
	w, ok := s.oil[normalizeSpecies(species)]
	if !ok {
		return 0, false
	}
	if w == 0 {
		return 0, true
	}
	return w, false
}

// OILSpecies lists the once-in-a-lifetime species, sorted.
func (s StateSystem) OILSpecies() []string {
	out := make([]string, 0, len(s.oil))
	for sp := range s.oil {
		out = append(out, sp)
	}
	sort.Strings(out)
	return out
}

func (s StateSystem) clone() StateSystem {
	c := s
	c.oil = make(map[string]int, len(s.oil))
	for k, v := range s.oil {
		c.oil[k] = v
	}
	return c
}

// Lookup resolves a state's point system.
type Lookup interface {
	Lookup(stateID string) (StateSystem, bool)
}

// Registry is the immutable reference table of state point systems and units.
type Registry struct {
	states map[string]StateSystem
	units  map[string]model.Unit
}

// New builds a registry from already-constructed systems and units.
func New(systems []StateSystem, units []model.Unit) (*Registry, error) {
	r := &Registry{
		states: make(map[string]StateSystem, len(systems)),
		units:  make(map[string]model.Unit, len(units)),
	}
	for _, s := range systems {
		s.ID = normalizeState(s.ID)
		if s.ID == "" {
			return nil, fmt.Errorf("state system without id")
		}
		if _, dup := r.states[s.ID]; dup {
			return nil, fmt.Errorf("duplicate state %q", s.ID)
		}
		r.states[s.ID] = s.clone()
	}
	for _, u := range units {
		if u.ID == "" || u.StateID == "" || u.Species == "" {
			return nil, fmt.Errorf("unit %q: id, state and species are required", u.ID)
		}
		if _, dup := r.units[u.ID]; dup {
			return nil, fmt.Errorf("duplicate unit %q", u.ID)
		}
		u.StateID = normalizeState(u.StateID)
		u.Species = normalizeSpecies(u.Species)
		r.units[u.ID] = u
	}
	return r, nil
}

// Lookup implements Lookup.
func (r *Registry) Lookup(stateID string) (StateSystem, bool) {
	s, ok := r.states[normalizeState(stateID)]
	if !ok {
		return StateSystem{}, false
	}
	return s.clone(), true
}

// States lists the registered state ids, sorted.
func (r *Registry) States() []string {
	out := make([]string, 0, len(r.states))
	for id := range r.states {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Unit returns a unit from the catalog.
func (r *Registry) Unit(id string) (model.Unit, bool) {
	u, ok := r.units[id]
	return u, ok
}

// Units lists the catalog units for a (state, species), sorted by id.
func (r *Registry) Units(stateID, species string) []model.Unit {
	stateID, species = normalizeState(stateID), normalizeSpecies(species)
	var out []model.Unit
	for _, u := range r.units {
		if u.StateID == stateID && u.Species == species {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// rawState decodes one state entry. Parameters are pointers so an explicit
// zero in the file is kept and only absent fields take defaults.
type rawState struct {
	ID               string         `yaml:"id"`
	Name             string         `yaml:"name"`
	Algorithm        string         `yaml:"algorithm"`
	PreferencePct    *float64       `yaml:"preference_pct"`
	RandomPct        *float64       `yaml:"random_pct"`
	ResidualOdds     *float64       `yaml:"residual_odds"`
	ApplicantsPerTag *int           `yaml:"applicants_per_tag"`
	HighOdds         *float64       `yaml:"high_odds"`
	LowOdds          *float64       `yaml:"low_odds"`
	GroupRounding    string         `yaml:"group_rounding"`
	OIL              map[string]int `yaml:"oil"`
}

type rawFile struct {
	States []rawState   `yaml:"states"`
	Units  []model.Unit `yaml:"units"`
}

// Parse decodes a YAML registry document. Unknown algorithm tags load as
// Unknown; structural problems are errors.
func Parse(data []byte) (*Registry, error) {
	var raw rawFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse registry: %w", err)
	}
	systems := make([]StateSystem, 0, len(raw.States))
	for i, rs := range raw.States {
		if strings.TrimSpace(rs.ID) == "" {
			return nil, fmt.Errorf("states[%d]: id is required", i)
		}
		rounding := model.Rounding(strings.ToLower(rs.GroupRounding))
		switch rounding {
		case "":
			rounding = model.RoundingFloor
		case model.RoundingFloor, model.RoundingExact:
		default:
			return nil, fmt.Errorf("state %s: invalid group_rounding %q", rs.ID, rs.GroupRounding)
		}
		for species, years := range rs.OIL {
			if years < 0 {
				return nil, fmt.Errorf("state %s: negative waiting period for %s", rs.ID, species)
			}
		}
		systems = append(systems, NewStateSystem(rs.ID, rs.Name, buildAlgorithm(rs), rounding, rs.OIL))
	}
	return New(systems, raw.Units)
}

// Load reads a registry file from disk.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}
	return Parse(data)
}

// Default returns the registry compiled into the binary.
func Default() *Registry {
	r, err := Parse(defaultRegistry)
	if err != nil {
		panic(fmt.Sprintf("embedded registry: %v", err))
	}
	return r
}

func normalizeState(id string) string { return strings.ToUpper(strings.TrimSpace(id)) }

func normalizeSpecies(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
