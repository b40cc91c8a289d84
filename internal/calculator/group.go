package calculator

import (
	"fmt"
	"math"

	"github.com/matt-fiveeighty/odyssey-sub006/internal/model"
	"github.com/matt-fiveeighty/odyssey-sub006/internal/registry"
)

// GroupAverage computes a party's effective points under the state's
// rounding rule. Unknown states are treated as floor so odds are never
// overstated.
func GroupAverage(systems registry.Lookup, stateID, species string, points []float64) model.GroupResult {
	res := model.GroupResult{StateID: stateID, Species: species, Method: model.RoundingFloor}

	if len(points) > 0 {
		sum := 0.0
		for _, p := range points {
			sum += p
		}
		res.Raw = sum / float64(len(points))
	}

	name := stateID
	if sys, ok := systems.Lookup(stateID); ok {
		res.Method = sys.GroupRounding
		name = displayName(sys)
	}

	switch res.Method {
	case model.RoundingExact:
		res.Effective = res.Raw
	default:
		res.Method = model.RoundingFloor
		res.Effective = math.Floor(res.Raw)
		res.PointLoss = res.Raw - res.Effective
		if res.PointLoss > 0 {
			res.Warning = fmt.Sprintf("%s uses %s rounding for group applications: the party's %s average counts as %s, losing %s points.",
				name, res.Method, fmtPoints(res.Raw), fmtPoints(res.Effective), fmtPoints(res.PointLoss))
		}
	}
	return res
}

// GroupOdds averages the party's points and feeds the effective value into
// DrawOdds. in.Points is ignored.
func GroupOdds(systems registry.Lookup, in OddsInput, members []float64) (model.GroupResult, model.OddsResult) {
	group := GroupAverage(systems, in.StateID, in.Unit.Species, members)
	in.Points = group.Effective
	return group, DrawOdds(systems, in)
}
