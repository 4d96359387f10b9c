package preferences_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/myrjola/repcoach/internal/history"
	"github.com/myrjola/repcoach/internal/preferences"
	"github.com/myrjola/repcoach/internal/ptr"
)

func TestValidator_Validate(t *testing.T) {
	defaults := preferences.Defaults()
	tests := []struct {
		name       string
		in         preferences.Input
		wantValid  bool
		wantFields []string
		want       func(p *preferences.Preferences)
	}{
		{
			name:      "empty input gives defaults",
			in:        preferences.Input{},
			wantValid: true,
			want:      func(*preferences.Preferences) {},
		},
		{
			name:       "seven training days is rejected",
			in:         preferences.Input{TrainingDaysPerWeek: ptr.Ref(7)},
			wantValid:  false,
			wantFields: []string{"trainingDaysPerWeek"},
			want:       func(*preferences.Preferences) {},
		},
		{
			name: "valid fields overlay defaults",
			in: preferences.Input{
				TrainingDaysPerWeek: ptr.Ref(4),
				RepScheme:           ptr.Ref("pyramid"),
				PreferredDays:       ptr.Ref([]int{5, 1, 3, 1}),
				RestBetweenSets:     ptr.Ref(90),
			},
			wantValid: true,
			want: func(p *preferences.Preferences) {
				p.TrainingDaysPerWeek = 4
				p.RepScheme = "pyramid"
				p.PreferredDays = []time.Weekday{time.Monday, time.Wednesday, time.Friday}
				p.RestBetweenSets = 90
			},
		},
		{
			name: "invalid fields keep defaults while valid ones apply",
			in: preferences.Input{
				SetsPerExercise: ptr.Ref(4),
				FitnessLevel:    ptr.Ref("elite"),
				PreferredDays:   ptr.Ref([]int{1, 7}),
				ProgramDuration: ptr.Ref(5),
			},
			wantValid:  false,
			wantFields: []string{"programDuration", "fitnessLevel", "preferredDays"},
			want: func(p *preferences.Preferences) {
				p.SetsPerExercise = 4
			},
		},
		{
			name:      "iana timezone",
			in:        preferences.Input{Timezone: ptr.Ref("America/New_York")},
			wantValid: true,
			want: func(p *preferences.Preferences) {
				p.Timezone = "America/New_York"
			},
		},
		{
			name:       "unknown timezone is rejected",
			in:         preferences.Input{Timezone: ptr.Ref("Mars/Olympus_Mons")},
			wantValid:  false,
			wantFields: []string{"timezone"},
			want:       func(*preferences.Preferences) {},
		},
		{
			name:       "server local timezone is rejected",
			in:         preferences.Input{Timezone: ptr.Ref("Local")},
			wantValid:  false,
			wantFields: []string{"timezone"},
			want:       func(*preferences.Preferences) {},
		},
	}
	v := preferences.NewValidator(preferences.DefaultOptions())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := v.Validate(tt.in)
			if got.Valid != tt.wantValid {
				t.Errorf("Valid = %t, want %t", got.Valid, tt.wantValid)
			}
			var fields []string
			for _, e := range got.Errors {
				fields = append(fields, e.Field)
			}
			if diff := cmp.Diff(tt.wantFields, fields); diff != "" {
				t.Errorf("error fields mismatch (-want +got):\n%s", diff)
			}
			want := defaults
			want.PreferredDays = []time.Weekday{}
			tt.want(&want)
			if diff := cmp.Diff(want, got.Sanitized); diff != "" {
				t.Errorf("Sanitized mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidator_roundTrip(t *testing.T) {
	p := preferences.Defaults()
	p.PreferredDays = []time.Weekday{time.Tuesday, time.Thursday}
	p.FitnessLevel = "advanced"
	got := preferences.NewValidator(preferences.DefaultOptions()).Validate(preferences.InputFrom(p))
	if !got.Valid {
		t.Fatalf("Validate() errors = %v", got.Errors)
	}
	if diff := cmp.Diff(p, got.Sanitized); diff != "" {
		t.Errorf("Sanitized mismatch (-want +got):\n%s", diff)
	}
}

func TestInput_Over(t *testing.T) {
	stored := preferences.Defaults()
	stored.TrainingDaysPerWeek = 6
	stored.ProgramDuration = 12
	stored.PreferredDays = []time.Weekday{time.Monday, time.Wednesday, time.Friday}
	stored.Timezone = "Europe/Helsinki"

	in := preferences.Input{FitnessLevel: ptr.Ref("advanced")}
	got := preferences.NewValidator(preferences.DefaultOptions()).Validate(in.Over(stored))
	if !got.Valid {
		t.Fatalf("Validate() errors = %v", got.Errors)
	}
	want := stored
	want.FitnessLevel = "advanced"
	if diff := cmp.Diff(want, got.Sanitized); diff != "" {
		t.Errorf("Sanitized mismatch (-want +got):\n%s", diff)
	}

	rejected := preferences.NewValidator(preferences.DefaultOptions()).Validate(
		preferences.Input{SetsPerExercise: ptr.Ref(9)}.Over(stored))
	if rejected.Valid || len(rejected.Errors) != 1 || rejected.Errors[0].Field != "setsPerExercise" {
		t.Errorf("Validate() = %+v, want a single setsPerExercise error", rejected)
	}
}

func TestPreferences_Location(t *testing.T) {
	p := preferences.Defaults()
	if got := p.Location(); got != time.UTC {
		t.Errorf("default Location() = %v, want UTC", got)
	}
	p.Timezone = "America/New_York"
	if got := p.Location().String(); got != "America/New_York" {
		t.Errorf("Location() = %q, want America/New_York", got)
	}
	p.Timezone = "nowhere"
	if got := p.Location(); got != time.UTC {
		t.Errorf("invalid Location() = %v, want UTC", got)
	}
}

func TestRequiresPlanRegeneration(t *testing.T) {
	base := preferences.Defaults()
	tests := []struct {
		name   string
		change func(p *preferences.Preferences)
		want   bool
	}{
		{name: "unchanged", change: func(*preferences.Preferences) {}, want: false},
		{name: "preferred days", change: func(p *preferences.Preferences) { p.PreferredDays = []time.Weekday{time.Monday} }, want: false},
		{name: "rest", change: func(p *preferences.Preferences) { p.RestBetweenSets = 120 }, want: false},
		{name: "timezone", change: func(p *preferences.Preferences) { p.Timezone = "Asia/Tokyo" }, want: false},
		{name: "training days", change: func(p *preferences.Preferences) { p.TrainingDaysPerWeek = 5 }, want: true},
		{name: "program duration", change: func(p *preferences.Preferences) { p.ProgramDuration = 8 }, want: true},
		{name: "rep scheme", change: func(p *preferences.Preferences) { p.RepScheme = "strength" }, want: true},
		{name: "sets", change: func(p *preferences.Preferences) { p.SetsPerExercise = 5 }, want: true},
		{name: "progression rate", change: func(p *preferences.Preferences) { p.ProgressionRate = "aggressive" }, want: true},
		{name: "fitness level", change: func(p *preferences.Preferences) { p.FitnessLevel = "advanced" }, want: true},
		{name: "session duration", change: func(p *preferences.Preferences) { p.TargetSessionDuration = 45 }, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updated := base
			tt.change(&updated)
			if got := preferences.RequiresPlanRegeneration(base, updated); got != tt.want {
				t.Errorf("RequiresPlanRegeneration() = %t, want %t", got, tt.want)
			}
		})
	}
}

func TestAdjustProgressForPreferenceChange(t *testing.T) {
	old := preferences.Defaults() // 3 days × 6 weeks
	shorter := old
	shorter.TrainingDaysPerWeek = 2
	shorter.ProgramDuration = 4
	longer := old
	longer.ProgramDuration = 12

	completed := history.CompletedDays{
		"pushups": {"p11", "p12", "p13", "p21", "p22", "p23", "p31", "p32", "p33", "p41"},
		"squats":  {"s11", "s12"},
	}

	got := preferences.AdjustProgressForPreferenceChange(completed, old, shorter)
	want := history.CompletedDays{
		"pushups": {"p11", "p12", "p13", "p21", "p22", "p23", "p31", "p32"},
		"squats":  {"s11", "s12"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("shortened mismatch (-want +got):\n%s", diff)
	}
	if len(completed["pushups"]) != 10 {
		t.Error("input was modified")
	}

	got = preferences.AdjustProgressForPreferenceChange(completed, old, longer)
	if diff := cmp.Diff(completed, got); diff != "" {
		t.Errorf("lengthened mismatch (-want +got):\n%s", diff)
	}
}
