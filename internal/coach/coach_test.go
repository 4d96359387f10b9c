package coach_test

import (
	"slices"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/myrjola/repcoach/internal/coach"
	"github.com/myrjola/repcoach/internal/gamification"
	"github.com/myrjola/repcoach/internal/units"
)

// firstPicker always picks the first message so that results are deterministic.
type firstPicker struct{}

func (firstPicker) Pick(pool []string) string {
	if len(pool) == 0 {
		return ""
	}
	return pool[0]
}

func newCoach() *coach.Coach {
	return coach.New(coach.DefaultConfig(), firstPicker{})
}

func TestCoach_CheckForNewPR(t *testing.T) {
	records := map[string]gamification.PersonalRecord{
		"pushups": {Volume: 50, Date: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)},
	}
	tests := []struct {
		name   string
		key    string
		volume float64
		want   coach.PRResult
	}{
		{
			name:   "zero volume is never a record",
			key:    "x",
			volume: 0,
			want:   coach.PRResult{},
		},
		{
			name:   "first positive volume",
			key:    "squats",
			volume: 20,
			want: coach.PRResult{
				IsNewPR:     true,
				Improvement: 20,
				Message:     coach.Messages(coach.MessageFirstPR)[0],
			},
		},
		{
			name:   "equal volume",
			key:    "pushups",
			volume: 50,
			want:   coach.PRResult{PreviousPR: 50},
		},
		{
			name:   "strictly greater",
			key:    "pushups",
			volume: 60,
			want: coach.PRResult{
				IsNewPR:            true,
				PreviousPR:         50,
				Improvement:        10,
				ImprovementPercent: 20,
				Message:            coach.Messages(coach.MessagePR)[0],
			},
		},
	}
	c := newCoach()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.CheckForNewPR(tt.key, tt.volume, records)
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
				t.Errorf("CheckForNewPR() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCoach_CheckForGymPR(t *testing.T) {
	records := map[string]coach.GymRecord{
		"bench_press": {WeightKg: 60, Reps: 5},
	}
	tests := []struct {
		name     string
		id       string
		weight   units.Weight
		reps     int
		wantPR   bool
		wantType string
	}{
		{name: "first lift", id: "squat", weight: units.Kg(40), reps: 5, wantPR: true, wantType: coach.PRFirst},
		{name: "heavier at same reps", id: "bench_press", weight: units.Kg(62.5), reps: 5, wantPR: true, wantType: coach.PRWeight},
		{name: "weight beats rep and 1rm", id: "bench_press", weight: units.Kg(65), reps: 8, wantPR: true, wantType: coach.PRWeight},
		{name: "same weight more reps", id: "bench_press", weight: units.Kg(60), reps: 7, wantPR: true, wantType: coach.PRReps},
		{name: "higher estimated max only", id: "bench_press", weight: units.Kg(55), reps: 10, wantPR: true, wantType: coach.PROneRepMax},
		{name: "weaker set", id: "bench_press", weight: units.Kg(55), reps: 5, wantPR: false},
		{name: "zero reps", id: "squat", weight: units.Kg(100), reps: 0, wantPR: false},
		{name: "pounds converted", id: "bench_press", weight: units.Lbs(135), reps: 5, wantPR: true, wantType: coach.PRWeight},
	}
	c := newCoach()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.CheckForGymPR(tt.id, tt.weight, tt.reps, records)
			if got.IsNewPR != tt.wantPR || got.Type != tt.wantType {
				t.Errorf("CheckForGymPR() = {IsNewPR: %t, Type: %q}, want {%t, %q}", got.IsNewPR, got.Type, tt.wantPR, tt.wantType)
			}
		})
	}
}

func TestGymRecord_Add(t *testing.T) {
	day1 := time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 2)
	var rec coach.GymRecord
	rec, improved := rec.Add(100, 1, day1)
	if !improved {
		t.Fatal("first set did not improve an empty record")
	}
	rec, improved = rec.Add(80, 10, day2)
	if !improved {
		t.Fatal("80x10 did not improve the estimated max")
	}
	want := coach.GymRecord{WeightKg: 100, Reps: 1, Best1RM: coach.EstimatedOneRepMax(80, 10), Date: day2}
	if diff := cmp.Diff(want, rec); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}
	if _, improved = rec.Add(90, 3, day2.AddDate(0, 0, 1)); improved {
		t.Error("90x3 improved the record")
	}
	if _, improved = rec.Add(100, 0, day2); improved {
		t.Error("a set without reps improved the record")
	}

	c := newCoach()
	records := map[string]coach.GymRecord{"deadlift": rec}
	if got := c.CheckForGymPR("deadlift", units.Kg(90), 10, records); got.Type != coach.PROneRepMax {
		t.Errorf("90x10 after 100x1 and 80x10 = %q, want %q", got.Type, coach.PROneRepMax)
	}
}

func TestEstimatedOneRepMax(t *testing.T) {
	if got, want := coach.EstimatedOneRepMax(60, 5), 70.0; got != want {
		t.Errorf("EstimatedOneRepMax(60, 5) = %v, want %v", got, want)
	}
	if got := coach.EstimatedOneRepMax(60, 0); got != 0 {
		t.Errorf("EstimatedOneRepMax(60, 0) = %v, want 0", got)
	}
}

func TestCoach_GetWeightSuggestion(t *testing.T) {
	hard := []coach.SessionSummary{{RPE: 7}, {RPE: 9}, {RPE: 9.5}, {RPE: 9}}
	tests := []struct {
		name       string
		in         coach.WeightInput
		wantAction string
		wantWeight units.Weight
	}{
		{
			name: "three hard sessions deload regardless of today",
			in: coach.WeightInput{
				TargetReps: 5, ActualReps: 8, RPE: 6,
				CurrentWeight: units.Kg(100), Increment: units.Kg(2.5), RecentSessions: hard,
			},
			wantAction: coach.ActionDeload,
			wantWeight: units.Kg(90),
		},
		{
			name: "deload rounds to half kilograms",
			in: coach.WeightInput{
				TargetReps: 5, ActualReps: 5, RPE: 8,
				CurrentWeight: units.Kg(47.5), Increment: units.Kg(2.5), RecentSessions: hard,
			},
			wantAction: coach.ActionDeload,
			wantWeight: units.Kg(43),
		},
		{
			name: "easy and above target increases",
			in: coach.WeightInput{
				TargetReps: 5, ActualReps: 7, RPE: 7,
				CurrentWeight: units.Kg(60), Increment: units.Kg(2.5),
			},
			wantAction: coach.ActionIncrease,
			wantWeight: units.Kg(62.5),
		},
		{
			name: "pound increments are converted",
			in: coach.WeightInput{
				TargetReps: 5, ActualReps: 8, RPE: 6,
				CurrentWeight: units.Lbs(100), Increment: units.Lbs(5),
			},
			wantAction: coach.ActionIncrease,
			wantWeight: units.Lbs(105),
		},
		{
			name: "hard and short decreases",
			in: coach.WeightInput{
				TargetReps: 5, ActualReps: 3, RPE: 9.5,
				CurrentWeight: units.Kg(60), Increment: units.Kg(2.5),
			},
			wantAction: coach.ActionDecrease,
			wantWeight: units.Kg(57.5),
		},
		{
			name: "easy but only one rep above target maintains",
			in: coach.WeightInput{
				TargetReps: 5, ActualReps: 6, RPE: 6,
				CurrentWeight: units.Kg(60), Increment: units.Kg(2.5),
			},
			wantAction: coach.ActionMaintain,
			wantWeight: units.Kg(60),
		},
		{
			name: "unitless weight is kilograms",
			in: coach.WeightInput{
				TargetReps: 5, ActualReps: 5, RPE: 8,
				CurrentWeight: units.Weight{Value: 30}, Increment: units.Kg(1),
			},
			wantAction: coach.ActionMaintain,
			wantWeight: units.Kg(30),
		},
	}
	c := newCoach()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.GetWeightSuggestion(tt.in)
			if got.Action != tt.wantAction {
				t.Errorf("Action = %q, want %q", got.Action, tt.wantAction)
			}
			if diff := cmp.Diff(tt.wantWeight, got.NewWeight, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
				t.Errorf("NewWeight mismatch (-want +got):\n%s", diff)
			}
			if got.Message == "" {
				t.Error("expected a message")
			}
		})
	}
}

func TestCoach_CheckDeloadNeeded(t *testing.T) {
	tests := []struct {
		name       string
		sessions   []coach.SessionSummary
		wantDeload bool
		wantReason string
	}{
		{
			name:       "not enough data",
			sessions:   []coach.SessionSummary{{RPE: 10}, {RPE: 10}, {RPE: 10}, {RPE: 10}},
			wantReason: "Not enough data yet",
		},
		{
			name: "fatigue with flat volume",
			sessions: []coach.SessionSummary{
				{RPE: 6, Volume: 500},
				{RPE: 9, Volume: 1000}, {RPE: 8.5, Volume: 1000}, {RPE: 9, Volume: 980},
				{RPE: 8.5, Volume: 990}, {RPE: 9, Volume: 950},
			},
			wantDeload: true,
			wantReason: "Average RPE 8.8 over 5 sessions without volume gains.",
		},
		{
			name: "hard but volume rising",
			sessions: []coach.SessionSummary{
				{RPE: 9, Volume: 900}, {RPE: 9, Volume: 920}, {RPE: 9, Volume: 940},
				{RPE: 9, Volume: 960}, {RPE: 9, Volume: 980},
			},
			wantReason: "Recovery looks good.",
		},
	}
	c := newCoach()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.CheckDeloadNeeded(tt.sessions)
			if got.NeedsDeload != tt.wantDeload || got.Reason != tt.wantReason {
				t.Errorf("CheckDeloadNeeded() = {%t, %q}, want {%t, %q}", got.NeedsDeload, got.Reason, tt.wantDeload, tt.wantReason)
			}
			if tt.wantDeload && got.Type != "fatigue" {
				t.Errorf("Type = %q, want fatigue", got.Type)
			}
		})
	}
}

func TestCoach_CheckDeloadNeeded_singleSessionWindow(t *testing.T) {
	cfg := coach.DefaultConfig()
	cfg.MinDeloadSessions = 0
	c := coach.New(cfg, firstPicker{})
	if got := c.CheckDeloadNeeded(nil); got.Reason != "Not enough data yet" {
		t.Errorf("CheckDeloadNeeded(nil).Reason = %q, want not enough data", got.Reason)
	}
	got := c.CheckDeloadNeeded([]coach.SessionSummary{{RPE: 6, Volume: 100}, {RPE: 9.5, Volume: 100}})
	if !got.NeedsDeload || got.AverageRPE != 9.5 {
		t.Errorf("CheckDeloadNeeded() = {%t, %v}, want {true, 9.5}", got.NeedsDeload, got.AverageRPE)
	}
}

func TestRandomPicker_picksFromPool(t *testing.T) {
	p := coach.NewRandomPicker(42)
	pool := coach.Messages(coach.MessagePR)
	for range 50 {
		if got := p.Pick(pool); !slices.Contains(pool, got) {
			t.Fatalf("Pick() = %q, not in pool", got)
		}
	}
	if got := p.Pick(nil); got != "" {
		t.Errorf("Pick(nil) = %q, want empty", got)
	}
}
