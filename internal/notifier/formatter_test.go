package notifier

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/matt-fiveeighty/odyssey-sub006/internal/digest"
	"github.com/matt-fiveeighty/odyssey-sub006/internal/liquidity"
	"github.com/matt-fiveeighty/odyssey-sub006/internal/model"
)

func TestFormatCascade_Drew(t *testing.T) {
	next := 2032
	c := &model.CascadeResult{
		StateID: "WY", Species: "moose", Year: 2026, Outcome: model.OutcomeDrew,
		WaitingPeriodYears: 5, NextEligibleYear: &next,
		PointMutations: []model.PointMutation{{Delta: -12, NewBalance: 0}},
		Reclassifications: []model.CapitalReclassification{
			{Amount: decimal.NewFromInt(1500), From: model.CapitalFloated, To: model.CapitalSunk},
		},
		Alerts: []model.Alert{
			{Severity: model.SeverityInfo, Title: "Review WY elk", Message: "7 points"},
			{Severity: model.SeverityWarning, Title: "Waiting period", Message: "Eligible again in 2032."},
		},
	}

	msg := FormatCascade(c)
	for _, want := range []string{"WY moose 2026: drew", "Points: -12 → 0", "Eligible again: 2032", "$1500 floated → sunk"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
	if strings.Index(msg, "Waiting period") > strings.Index(msg, "Review WY elk") {
		t.Errorf("warning should be listed before info:\n%s", msg)
	}
}

func TestFormatCascade_PermanentBan(t *testing.T) {
	c := &model.CascadeResult{StateID: "CO", Species: "moose", Year: 2026, Outcome: model.OutcomeDrew, PermanentBan: true}
	msg := FormatCascade(c)
	if !strings.Contains(msg, "never again") {
		t.Errorf("expected permanent ban wording, got:\n%s", msg)
	}
	if strings.Contains(msg, "Eligible again") {
		t.Errorf("permanent ban must not show a next eligible year:\n%s", msg)
	}
}

func TestFormatLiquidity(t *testing.T) {
	start := time.Date(2026, time.May, 15, 0, 0, 0, 0, time.UTC)
	r := &liquidity.Report{
		Ceiling: decimal.NewFromInt(1500), Peak: decimal.NewFromInt(1550), Deficit: decimal.NewFromInt(50),
		PeakStart: start, PeakEnd: start.AddDate(0, 0, 13), Severity: model.SeverityWarning,
		Active: []model.FloatEvent{
			{StateID: "CO", Species: "elk", Amount: decimal.NewFromInt(750)},
			{StateID: "WY", Species: "elk", Amount: decimal.NewFromInt(800)},
		},
	}
	msg := FormatLiquidity(2026, r)
	for _, want := range []string{"⚠️", "Peak: $1550 (2026-05-15 → 2026-05-28)", "Deficit: $50", "WY elk $800"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}

	empty := FormatLiquidity(2026, &liquidity.Report{Ceiling: decimal.NewFromInt(1500), Severity: model.SeverityOK})
	if !strings.Contains(empty, "No money floated") {
		t.Errorf("unexpected empty report:\n%s", empty)
	}
}

func TestFormatDigest(t *testing.T) {
	d := &digest.Digest{
		Year: 2026,
		Entries: []digest.Entry{
			{Odds: model.OddsResult{StateID: "CO", Species: "elk", UnitID: "CO-E-061", Odds: 0.8, Algorithm: "hybrid"}},
			{
				Group: &model.GroupResult{Raw: 3.5, Effective: 3, Method: model.RoundingFloor},
				Odds:  model.OddsResult{StateID: "CO", Species: "elk", UnitID: "CO-E-012", Odds: 0.05, YearsToDraw: 1, Algorithm: "hybrid"},
			},
			{Odds: model.OddsResult{StateID: "NM", Species: "oryx", Algorithm: model.UnknownAlgorithm, YearsToDraw: model.UnknownYears}},
		},
		Liquidity: liquidity.Report{Ceiling: decimal.NewFromInt(1500), Severity: model.SeverityOK},
		Warnings:  []string{"party rounds down"},
	}
	msg := FormatDigest(d)
	for _, want := range []string{
		"CO elk (CO-E-061): 80.0%, draw now",
		"CO elk (CO-E-012): 5.0%, 1 year out",
		"party 3.50 → 3 pts (floor)",
		"NM oryx (-): insufficient data",
		"⚠️ party rounds down",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("digest missing %q:\n%s", want, msg)
		}
	}
}

func TestFormatPoints_Sorted(t *testing.T) {
	msg := FormatPoints([]model.UserPoints{
		{StateID: "WY", Species: "elk", Points: 4, Type: model.PointPreference},
		{StateID: "AZ", Species: "elk", Points: 2, Type: model.PointBonus},
	})
	if strings.Index(msg, "AZ elk: 2 (bonus)") > strings.Index(msg, "WY elk: 4 (preference)") {
		t.Errorf("expected AZ before WY:\n%s", msg)
	}
	if !strings.Contains(FormatPoints(nil), "No points on file") {
		t.Error("expected empty message")
	}
}

func TestFormatters_EscapeUserText(t *testing.T) {
	points := FormatPoints([]model.UserPoints{{StateID: "C<O", Species: "elk&deer", Points: 1, Type: model.PointPreference}})
	if !strings.Contains(points, "C&lt;O elk&amp;deer: 1") || strings.Contains(points, "C<O") {
		t.Errorf("points not escaped:\n%s", points)
	}

	cascade := FormatCascade(&model.CascadeResult{
		StateID: "<i>", Species: "elk", Year: 2026, Outcome: model.OutcomeDidntDraw,
		Alerts: []model.Alert{{Severity: model.SeverityWarning, Title: "a<b", Message: "x > y"}},
	})
	for _, want := range []string{"<b>&lt;i&gt; elk 2026: didn't draw</b>", "<b>a&lt;b</b>", "x &gt; y"} {
		if !strings.Contains(cascade, want) {
			t.Errorf("cascade missing %q:\n%s", want, cascade)
		}
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		in   string
		cmd  string
		args []string
	}{
		{"/drew CO elk 2026", "/drew", []string{"CO", "elk", "2026"}},
		{"/Odds@planner_bot 2027", "/odds", []string{"2027"}},
		{"   ", "", nil},
	}
	for _, tt := range tests {
		cmd, args := ParseCommand(tt.in)
		if cmd != tt.cmd || strings.Join(args, " ") != strings.Join(tt.args, " ") {
			t.Errorf("ParseCommand(%q) = %q %v, want %q %v", tt.in, cmd, args, tt.cmd, tt.args)
		}
	}
}
