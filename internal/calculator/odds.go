package calculator

import (
	"fmt"
	"math"
	"strings"

	"github.com/matt-fiveeighty/odyssey-sub006/internal/model"
	"github.com/matt-fiveeighty/odyssey-sub006/internal/registry"
)

const (
	// likelyOdds is the modeled odds at which a weighted draw counts as likely.
	likelyOdds = 0.5
	// maxProjectionYears caps the bonus-point projection loop.
	maxProjectionYears = 30
)

// OddsInput asks for the odds of one hunter (or party) at one unit.
// Points may be fractional when a state averages party points exactly.
type OddsInput struct {
	StateID  string
	Points   float64
	Unit     model.Unit
	Resident bool
}

// DrawOdds computes current-year odds and the years until a likely draw.
// It never fails: an unknown state or algorithm yields an "unknown" result.
func DrawOdds(systems registry.Lookup, in OddsInput) model.OddsResult {
	res := model.OddsResult{
		StateID: in.StateID,
		Species: in.Unit.Species,
		UnitID:  in.Unit.ID,
		Points:  in.Points,
	}

	sys, ok := systems.Lookup(in.StateID)
	if !ok {
		return unknownResult(res, fmt.Sprintf("no point system on file for %s", in.StateID))
	}

	held := math.Max(0, in.Points)
	required := in.Unit.RequiredPoints(in.Resident)
	quota := in.Unit.TagQuota

	switch alg := sys.Algorithm.(type) {
	case registry.Preference:
		res = thresholdOdds(res, held, required, alg.PoolPct/100, alg.ResidualOdds, "preference pool")
	case registry.Hybrid:
		var randomOdds float64
		if quota > 0 {
			randomOdds = alg.RandomPct / 100 / float64(quota)
		}
		res = thresholdOdds(res, held, required, alg.PreferencePct/100, randomOdds, "preference pool")
	case registry.Dual:
		res = thresholdOdds(res, held, required, alg.PreferencePct/100, alg.ResidualOdds, "general pool")
	case registry.PreferenceNR:
		res = thresholdOdds(res, held, in.Unit.RequiredPointsNonresident, alg.HighOdds, alg.LowOdds, "nonresident pool")
	case registry.Bonus:
		res = weightedOdds(res, held, required, quota, applicantPool(in.Unit, alg.ApplicantsPerTag), linearWeight)
	case registry.BonusSquared:
		res = weightedOdds(res, held, required, quota, applicantPool(in.Unit, alg.ApplicantsPerTag), squaredWeight)
	case registry.Random:
		res = randomOdds(res, held, quota, applicantPool(in.Unit, alg.ApplicantsPerTag))
	default:
		return unknownResult(res, fmt.Sprintf("%s uses an unmodeled draw algorithm %q", sys.ID, sys.Algorithm.Tag()))
	}

	res.Algorithm = string(sys.Algorithm.Tag())
	res.Explanation = fmt.Sprintf("%s (%s): %s%s", displayName(sys), res.Algorithm, res.Explanation, unitStats(in.Unit))
	return res
}

// InsufficientData builds the "unknown" result for a question the caller
// cannot even pose, such as an action with no unit on file.
func InsufficientData(in OddsInput, why string) model.OddsResult {
	return unknownResult(model.OddsResult{
		StateID: in.StateID,
		Species: in.Unit.Species,
		UnitID:  in.Unit.ID,
		Points:  in.Points,
	}, why)
}

func unknownResult(res model.OddsResult, why string) model.OddsResult {
	res.Odds = 0
	res.YearsToDraw = model.UnknownYears
	res.ExpectedPoints = res.Points
	res.Algorithm = model.UnknownAlgorithm
	res.Explanation = "Insufficient data: " + why + "."
	return res
}

// thresholdOdds covers every algorithm where meeting the required points
// moves the applicant into a better pool.
func thresholdOdds(res model.OddsResult, held, required, atOrAbove, below float64, pool string) model.OddsResult {
	if held >= required {
		res.Odds = clamp(atOrAbove)
		res.YearsToDraw = 0
		res.ExpectedPoints = held
		res.Explanation = fmt.Sprintf("%s points meets the %s required; %s odds %s.",
			fmtPoints(held), fmtPoints(required), pool, fmtPct(res.Odds))
		return res
	}
	gap := int(math.Ceil(required - held))
	res.Odds = clamp(below)
	res.YearsToDraw = gap
	res.ExpectedPoints = held + float64(gap)
	res.Explanation = fmt.Sprintf("%s points is %d short of the %s required; only a %s random chance until then.",
		fmtPoints(held), gap, fmtPoints(required), fmtPct(res.Odds))
	return res
}

type weightFunc func(points float64) float64

func linearWeight(p float64) float64 { return p + 1 }

func squaredWeight(p float64) float64 { return (p + 1) * (p + 1) }

// modeledOdds treats the field as applicants who each hold the unit's
// required points, plus the hunter.
func modeledOdds(points, required float64, quota, applicants int, w weightFunc) float64 {
	if quota <= 0 || applicants <= 0 {
		return 0
	}
	mine := w(points)
	field := float64(applicants)*w(required) + mine
	return clamp(float64(quota) * mine / field)
}

func weightedOdds(res model.OddsResult, held, required float64, quota, applicants int, w weightFunc) model.OddsResult {
	res.Odds = modeledOdds(held, required, quota, applicants, w)

	years := maxProjectionYears
	for y := 0; y <= maxProjectionYears; y++ {
		if modeledOdds(held+float64(y), required, quota, applicants, w) >= likelyOdds {
			years = y
			break
		}
	}
	res.YearsToDraw = years
	res.ExpectedPoints = held + float64(years)
	res.Explanation = fmt.Sprintf("%s points buys %s chances against ~%d applicants for %d tags; odds %s now, likely in %d years.",
		fmtPoints(held), fmtPoints(w(held)), applicants, quota, fmtPct(res.Odds), years)
	return res
}

func randomOdds(res model.OddsResult, held float64, quota, applicants int) model.OddsResult {
	res.ExpectedPoints = held
	if quota <= 0 || applicants <= 0 {
		res.Odds = 0
		res.YearsToDraw = model.UnknownYears
		res.Explanation = "no tags or applicant data for this unit."
		return res
	}
	res.Odds = clamp(float64(quota) / float64(applicants))
	res.YearsToDraw = int(math.Ceil(1 / res.Odds))
	res.Explanation = fmt.Sprintf("pure lottery, %d tags for ~%d applicants; points do not help, odds %s each year.",
		quota, applicants, fmtPct(res.Odds))
	return res
}

// applicantPool prefers observed applicant counts over the state's ratio.
func applicantPool(u model.Unit, perTag int) int {
	if u.Applicants > 0 {
		return u.Applicants
	}
	return u.TagQuota * perTag
}

func unitStats(u model.Unit) string {
	var parts []string
	if u.SuccessRate > 0 {
		parts = append(parts, fmt.Sprintf("success %s", fmtPct(u.SuccessRate)))
	}
	if u.TrophyRate > 0 {
		parts = append(parts, fmt.Sprintf("trophy %s", fmtPct(u.TrophyRate)))
	}
	if len(parts) == 0 {
		return ""
	}
	name := u.Name
	if name == "" {
		name = u.ID
	}
	return fmt.Sprintf(" %s: %s.", name, strings.Join(parts, ", "))
}

func displayName(s registry.StateSystem) string {
	if s.Name == "" {
		return s.ID
	}
	return s.Name
}

func clamp(v float64) float64 {
	switch {
	case v < 0 || math.IsNaN(v):
		return 0
	case v > 1:
		return 1
	}
	return v
}

func fmtPct(v float64) string {
	if v > 0 && v < 0.01 {
		return fmt.Sprintf("%.2f%%", v*100)
	}
	return fmt.Sprintf("%.0f%%", v*100)
}

func fmtPoints(p float64) string {
	if p == math.Trunc(p) {
		return fmt.Sprintf("%.0f", p)
	}
	return fmt.Sprintf("%.2f", p)
}
