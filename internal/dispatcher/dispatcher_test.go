package dispatcher

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matt-fiveeighty/odyssey-sub006/internal/model"
	"github.com/matt-fiveeighty/odyssey-sub006/internal/registry"
)

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg, err := registry.New([]registry.StateSystem{
		registry.NewStateSystem("WY", "Wyoming", registry.Preference{PoolPct: 75, ResidualOdds: 0.03}, model.RoundingExact,
			map[string]int{"moose": 5, "bighorn_sheep": 0}),
		registry.NewStateSystem("CO", "Colorado", registry.Hybrid{PreferencePct: 80, RandomPct: 20}, model.RoundingFloor, nil),
		registry.NewStateSystem("MT", "Montana", registry.BonusSquared{ApplicantsPerTag: 20}, model.RoundingExact, nil),
		registry.NewStateSystem("NM", "New Mexico", registry.Random{ApplicantsPerTag: 12}, model.RoundingExact, nil),
	}, nil)
	require.NoError(t, err)
	return reg
}

func usd(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func roadmap(from, to int) []model.RoadmapYear {
	var years []model.RoadmapYear
	for y := from; y <= to; y++ {
		years = append(years, model.RoadmapYear{Year: y, Actions: []model.RoadmapAction{
			{ID: "apply-wy-" + string(rune('a'+y-from)), StateID: "WY", Species: "moose", Type: model.ActionApply, Year: y, Cost: usd(150)},
		}})
	}
	return years
}

func milestone(state, species string, year int) model.Milestone {
	return model.Milestone{ID: "m-" + state + "-" + species, StateID: state, Species: species, Type: model.ActionApply, Year: year}
}

func dispatch(t *testing.T, snap Snapshot, m model.Milestone, outcome model.DrawOutcome, pol Policy) model.CascadeResult {
	t.Helper()
	out, err := Dispatch(testRegistry(t), snap, DrawResult{Milestone: m, Outcome: outcome}, pol)
	require.NoError(t, err)
	return out
}

func TestDrew_NonOILSpecies(t *testing.T) {
	snap := Snapshot{
		Points:  []model.UserPoints{{StateID: "WY", Species: "elk", Points: 7}},
		Roadmap: roadmap(2026, 2030),
	}

	out := dispatch(t, snap, milestone("WY", "elk", 2026), model.OutcomeDrew, Policy{})

	require.Len(t, out.PointMutations, 1)
	assert.Equal(t, -7, out.PointMutations[0].Delta)
	assert.Equal(t, 0, out.PointMutations[0].NewBalance)
	assert.Equal(t, 0, out.WaitingPeriodYears)
	assert.False(t, out.PermanentBan)
	require.NotNil(t, out.NextEligibleYear)
	assert.Equal(t, 2027, *out.NextEligibleYear)
	assert.Empty(t, out.Invalidations)
	assert.Empty(t, out.Alerts)
}

func TestDrew_FiniteWaitingPeriod(t *testing.T) {
	snap := Snapshot{
		Points:  []model.UserPoints{{StateID: "WY", Species: "moose", Points: 12}},
		Roadmap: roadmap(2025, 2033),
	}

	out := dispatch(t, snap, milestone("WY", "moose", 2026), model.OutcomeDrew, Policy{})

	assert.Equal(t, 5, out.WaitingPeriodYears)
	require.NotNil(t, out.NextEligibleYear)
	assert.Equal(t, 2032, *out.NextEligibleYear)

	var years []int
	for _, inv := range out.Invalidations {
		assert.Equal(t, model.InvalidateRecalculate, inv.Action)
		assert.Equal(t, "WY", inv.StateID)
		assert.Equal(t, "moose", inv.Species)
		years = append(years, inv.Year)
	}
	assert.Equal(t, []int{2027, 2028, 2029, 2030, 2031}, years)

	require.Len(t, out.Alerts, 1)
	assert.Equal(t, model.AlertWaitingPeriod, out.Alerts[0].Kind)
	assert.Equal(t, model.SeverityWarning, out.Alerts[0].Severity)
	assert.Contains(t, out.Alerts[0].Message, "2032")
}

func TestDrew_PermanentBan(t *testing.T) {
	snap := Snapshot{
		Points:  []model.UserPoints{{StateID: "WY", Species: "bighorn_sheep", Points: 20}},
		Roadmap: roadmap(2026, 2029),
	}

	out := dispatch(t, snap, milestone("WY", "bighorn_sheep", 2026), model.OutcomeDrew, Policy{})

	assert.True(t, out.PermanentBan)
	assert.Nil(t, out.NextEligibleYear)
	require.Len(t, out.Invalidations, 3)
	for _, inv := range out.Invalidations {
		assert.Equal(t, model.InvalidateRemove, inv.Action)
		assert.Greater(t, inv.Year, 2026)
	}
	require.Len(t, out.Alerts, 1)
	assert.Equal(t, model.AlertPermanentBan, out.Alerts[0].Kind)
	assert.Equal(t, model.SeverityCritical, out.Alerts[0].Severity)
}

func TestDrew_FloatedCapitalBecomesSunk(t *testing.T) {
	snap := Snapshot{
		Capital: []model.CapitalEntry{
			{ID: "c1", StateID: "WY", Species: "moose", Year: 2026, Amount: usd(2000), Status: model.CapitalFloated},
			{ID: "c2", StateID: "WY", Species: "moose", Year: 2025, Amount: usd(50), Status: model.CapitalSunk},
			{ID: "c3", StateID: "CO", Species: "elk", Year: 2026, Amount: usd(700), Status: model.CapitalFloated},
		},
	}

	out := dispatch(t, snap, milestone("WY", "moose", 2026), model.OutcomeDrew, Policy{})

	require.Len(t, out.Reclassifications, 1)
	rc := out.Reclassifications[0]
	assert.Equal(t, "c1", rc.EntryID)
	assert.Equal(t, model.CapitalFloated, rc.From)
	assert.Equal(t, model.CapitalSunk, rc.To)
	assert.True(t, rc.Amount.Equal(usd(2000)))
}

func TestDrew_SuccessDisaster(t *testing.T) {
	snap := Snapshot{
		Roadmap: []model.RoadmapYear{{Year: 2026, Actions: []model.RoadmapAction{
			{ID: "wy-moose", StateID: "WY", Species: "moose", Type: model.ActionHunt, Year: 2026, Cost: usd(3200)},
			{ID: "co-elk", StateID: "CO", Species: "elk", Type: model.ActionHunt, Year: 2026, Cost: usd(2800)},
		}}},
	}
	pol := Policy{HuntYearBudget: usd(5000)}

	out := dispatch(t, snap, milestone("CO", "elk", 2026), model.OutcomeDrew, pol)

	require.Len(t, out.Conflicts, 1)
	c := out.Conflicts[0]
	assert.Equal(t, model.SeverityCritical, c.Severity)
	assert.True(t, c.Total.Equal(usd(6000)))
	assert.True(t, c.Budget.Equal(usd(5000)))
	assert.Equal(t, []string{"wy-moose", "co-elk"}, c.ActionIDs)

	require.NotEmpty(t, out.Alerts)
	assert.Equal(t, model.AlertSuccessDisaster, out.Alerts[0].Kind)
	assert.Equal(t, model.SeverityCritical, out.Alerts[0].Severity)
	assert.Equal(t, c.Message, out.Alerts[0].Message)

	within := dispatch(t, snap, milestone("CO", "elk", 2026), model.OutcomeDrew, Policy{HuntYearBudget: usd(6000)})
	assert.Empty(t, within.Conflicts)

	disabled := dispatch(t, snap, milestone("CO", "elk", 2026), model.OutcomeDrew, Policy{})
	assert.Empty(t, disabled.Conflicts)
}

func TestDrew_SuccessDisasterIgnoresStaleActions(t *testing.T) {
	snap := Snapshot{
		Roadmap: []model.RoadmapYear{{Year: 2026, Actions: []model.RoadmapAction{
			{ID: "wy-moose", StateID: "WY", Species: "moose", Type: model.ActionHunt, Year: 2026, Cost: usd(3200), Stale: true},
			{ID: "co-elk", StateID: "CO", Species: "elk", Type: model.ActionHunt, Year: 2026, Cost: usd(2800)},
			{ID: "co-deer", StateID: "CO", Species: "mule_deer", Type: model.ActionHunt, Year: 2026, Cost: usd(1400)},
		}}},
	}

	within := dispatch(t, snap, milestone("CO", "elk", 2026), model.OutcomeDrew, Policy{HuntYearBudget: usd(5000)})
	assert.Empty(t, within.Conflicts)

	over := dispatch(t, snap, milestone("CO", "elk", 2026), model.OutcomeDrew, Policy{HuntYearBudget: usd(4000)})
	require.Len(t, over.Conflicts, 1)
	assert.True(t, over.Conflicts[0].Total.Equal(usd(4200)))
	assert.Equal(t, []string{"co-elk", "co-deer"}, over.Conflicts[0].ActionIDs)
}

func TestDrew_DeadAssetReviewForOtherSpecies(t *testing.T) {
	snap := Snapshot{
		Points: []model.UserPoints{
			{StateID: "WY", Species: "elk", Points: 4},
			{StateID: "WY", Species: "deer", Points: 8},
			{StateID: "CO", Species: "elk", Points: 15},
		},
	}

	out := dispatch(t, snap, milestone("WY", "elk", 2026), model.OutcomeDrew, Policy{})

	require.Len(t, out.Alerts, 1)
	assert.Equal(t, model.AlertDeadAsset, out.Alerts[0].Kind)
	assert.Equal(t, "deer", out.Alerts[0].Species)
}

func TestDidntDraw_PointAwards(t *testing.T) {
	cases := []struct {
		state string
		delta int
	}{
		{"WY", 1},
		{"CO", 1},
		{"MT", 1},
		{"NM", 0},
		{"ZZ", 0},
	}
	for _, tc := range cases {
		t.Run(tc.state, func(t *testing.T) {
			snap := Snapshot{
				Points:  []model.UserPoints{{StateID: tc.state, Species: "elk", Points: 3}},
				Roadmap: roadmap(2026, 2030),
			}
			out := dispatch(t, snap, milestone(tc.state, "elk", 2026), model.OutcomeDidntDraw, Policy{})

			require.Len(t, out.PointMutations, 1)
			assert.Equal(t, tc.delta, out.PointMutations[0].Delta)
			assert.Equal(t, 3+tc.delta, out.PointMutations[0].NewBalance)
			assert.Empty(t, out.Invalidations, "a miss never invalidates the roadmap")
			assert.Nil(t, out.NextEligibleYear)
		})
	}
}

func TestDidntDraw_ReleasesFloatedCapital(t *testing.T) {
	m := milestone("CO", "elk", 2026)
	snap := Snapshot{
		Capital: []model.CapitalEntry{
			{ID: "by-id", MilestoneID: m.ID, StateID: "CO", Species: "elk", Year: 2026, Amount: usd(700), Status: model.CapitalFloated},
			{ID: "by-key", StateID: "CO", Species: "elk", Year: 2026, Amount: usd(40), Status: model.CapitalFloated},
			{ID: "other-year", StateID: "CO", Species: "elk", Year: 2027, Amount: usd(700), Status: model.CapitalFloated},
			{ID: "other-milestone", MilestoneID: "m-else", StateID: "CO", Species: "elk", Year: 2026, Amount: usd(9), Status: model.CapitalFloated},
		},
	}

	out := dispatch(t, snap, m, model.OutcomeDidntDraw, Policy{})

	require.Len(t, out.Reclassifications, 2)
	assert.Equal(t, "by-id", out.Reclassifications[0].EntryID)
	assert.Equal(t, "by-key", out.Reclassifications[1].EntryID)
	for _, rc := range out.Reclassifications {
		assert.Equal(t, model.CapitalAvailable, rc.To)
	}
}

func TestDidntDraw_PointCreep(t *testing.T) {
	snap := Snapshot{Points: []model.UserPoints{{StateID: "WY", Species: "elk", Points: 5}}}

	out := dispatch(t, snap, milestone("WY", "elk", 2026), model.OutcomeDidntDraw, Policy{})
	require.Len(t, out.Alerts, 1)
	assert.Equal(t, model.AlertDeadAsset, out.Alerts[0].Kind)

	quiet := dispatch(t, snap, milestone("WY", "elk", 2026), model.OutcomeDidntDraw, Policy{PointCreepThreshold: 10})
	assert.Empty(t, quiet.Alerts)
}

func TestDispatch_UnknownStateDegrades(t *testing.T) {
	snap := Snapshot{
		Points:  []model.UserPoints{{StateID: "ZZ", Species: "elk", Points: 2}},
		Roadmap: roadmap(2026, 2028),
	}

	out := dispatch(t, snap, milestone("ZZ", "elk", 2026), model.OutcomeDrew, Policy{})

	assert.Equal(t, 0, out.PointMutations[0].NewBalance)
	require.NotNil(t, out.NextEligibleYear)
	assert.Equal(t, 2027, *out.NextEligibleYear)
	require.Len(t, out.Alerts, 1)
	assert.Equal(t, model.AlertUnknownState, out.Alerts[0].Kind)
}

func TestDispatch_StructuralErrors(t *testing.T) {
	reg := testRegistry(t)

	_, err := Dispatch(reg, Snapshot{}, DrawResult{Milestone: milestone("WY", "elk", 2026), Outcome: "maybe"}, Policy{})
	assert.True(t, errors.Is(err, ErrUnknownOutcome))

	_, err = Dispatch(reg, Snapshot{}, DrawResult{Milestone: model.Milestone{ID: "x", Year: 2026}, Outcome: model.OutcomeDrew}, Policy{})
	assert.True(t, errors.Is(err, ErrInvalidMilestone))
}

func TestDispatch_ReplayIsIdenticalAndSnapshotUntouched(t *testing.T) {
	snap := Snapshot{
		Points:  []model.UserPoints{{StateID: "WY", Species: "moose", Points: 9}},
		Roadmap: roadmap(2026, 2034),
		Capital: []model.CapitalEntry{{ID: "c1", StateID: "WY", Species: "moose", Year: 2026, Amount: usd(2000), Status: model.CapitalFloated}},
	}
	m := milestone("WY", "moose", 2026)

	first := dispatch(t, snap, m, model.OutcomeDrew, Policy{HuntYearBudget: usd(100)})
	second := dispatch(t, snap, m, model.OutcomeDrew, Policy{HuntYearBudget: usd(100)})

	assert.Equal(t, first, second)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, 9, snap.Points[0].Points)
	assert.Equal(t, model.CapitalFloated, snap.Capital[0].Status)

	miss := dispatch(t, snap, m, model.OutcomeDidntDraw, Policy{})
	assert.NotEqual(t, first.ID, miss.ID)
}

func TestFindMilestone(t *testing.T) {
	ms := []model.Milestone{milestone("WY", "elk", 2026), milestone("WY", "elk", 2027)}

	m, ok := FindMilestone(ms, model.Key{StateID: "WY", Species: "elk"}, model.ActionApply, 2027)
	require.True(t, ok)
	assert.Equal(t, 2027, m.Year)

	_, ok = FindMilestone(ms, model.Key{StateID: "WY", Species: "elk"}, model.ActionHunt, 2027)
	assert.False(t, ok)
}
