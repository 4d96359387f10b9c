package gym_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/myrjola/repcoach/internal/catalog"
	"github.com/myrjola/repcoach/internal/coach"
	"github.com/myrjola/repcoach/internal/gym"
	"github.com/myrjola/repcoach/internal/units"
)

func TestFilterProgramByEquipment(t *testing.T) {
	c := catalog.Default()
	pull, ok := c.GymProgram("pull_basics")
	if !ok {
		t.Fatal("pull_basics missing")
	}

	got := gym.FilterProgramByEquipment(c, pull, []string{"table"})

	wantSubstituted := []gym.Substitution{
		{Day: "Pull", Original: "pullups", Replacement: "inverted_rows"},
		{Day: "Pull", Original: "dumbbell_row", Replacement: "inverted_rows"},
	}
	if diff := cmp.Diff(wantSubstituted, got.Substituted); diff != "" {
		t.Errorf("Substituted mismatch (-want +got):\n%s", diff)
	}
	if len(got.Unavailable) != 0 {
		t.Errorf("Unavailable = %v, want none", got.Unavailable)
	}
	wantDays := []catalog.GymDay{{Name: "Pull", Exercises: []catalog.GymSlot{
		{ExerciseID: "inverted_rows", TargetSets: 3, TargetReps: 8},
		{ExerciseID: "inverted_rows", TargetSets: 3, TargetReps: 10},
	}}}
	if diff := cmp.Diff(wantDays, got.Program.Days); diff != "" {
		t.Errorf("Days mismatch (-want +got):\n%s", diff)
	}

	original, _ := c.GymProgram("pull_basics")
	if original.Days[0].Exercises[0].ExerciseID != "pullups" {
		t.Error("catalog program was modified")
	}
}

func TestFilterProgramByEquipment_unavailable(t *testing.T) {
	c := catalog.Default()
	starter, _ := c.GymProgram("starter_5x5")

	got := gym.FilterProgramByEquipment(c, starter, nil)

	if diff := cmp.Diff([]string{"barbell_row", "overhead_press", "deadlift"}, got.Unavailable); diff != "" {
		t.Errorf("Unavailable mismatch (-want +got):\n%s", diff)
	}
	var ids []string
	for _, slot := range got.Program.Days[0].Exercises {
		ids = append(ids, slot.ExerciseID)
	}
	if diff := cmp.Diff([]string{"bodyweight_squat", "pushups"}, ids); diff != "" {
		t.Errorf("Workout A mismatch (-want +got):\n%s", diff)
	}
}

func TestFilterProgramByEquipment_everythingAvailable(t *testing.T) {
	c := catalog.Default()
	starter, _ := c.GymProgram("starter_5x5")

	got := gym.FilterProgramByEquipment(c, starter, c.Equipment())

	if len(got.Substituted) != 0 || len(got.Unavailable) != 0 {
		t.Errorf("got substitutions %v and unavailable %v, want none", got.Substituted, got.Unavailable)
	}
	if diff := cmp.Diff(starter, got.Program); diff != "" {
		t.Errorf("Program mismatch (-want +got):\n%s", diff)
	}
}

func TestSummarize(t *testing.T) {
	s := gym.Session{Exercises: []gym.ExerciseLog{{
		ExerciseID: "bench_press",
		Sets: []gym.Set{
			{Reps: 5, Weight: units.Kg(60), RPE: 7},
			{Reps: 5, Weight: units.Kg(62.5), RPE: 8},
			{Reps: 3, Weight: units.Kg(62.5)},
		},
	}}}

	got := gym.Summarize(s)

	want := []gym.Summary{{
		ExerciseID: "bench_press",
		TopSet:     gym.Set{Reps: 5, Weight: units.Kg(62.5), RPE: 8},
		VolumeKg:   300 + 312.5 + 187.5,
		AverageRPE: 7.5,
	}}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("Summarize() mismatch (-want +got):\n%s", diff)
	}
}

func TestRecordsAndRecentSummaries(t *testing.T) {
	day1 := time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 2)
	sessions := []gym.Session{
		{Date: day1, Exercises: []gym.ExerciseLog{{ExerciseID: "barbell_squat", Sets: []gym.Set{
			{Reps: 5, Weight: units.Kg(100), RPE: 8},
		}}}},
		{Date: day2, Exercises: []gym.ExerciseLog{{ExerciseID: "barbell_squat", Sets: []gym.Set{
			{Reps: 5, Weight: units.Kg(100), RPE: 9},
			{Reps: 0, Weight: units.Kg(200), RPE: 10},
		}}}},
	}

	records := gym.Records(sessions)
	want := map[string]coach.GymRecord{
		"barbell_squat": {WeightKg: 100, Reps: 5, Best1RM: coach.EstimatedOneRepMax(100, 5), Date: day1},
	}
	if diff := cmp.Diff(want, records); diff != "" {
		t.Errorf("Records() mismatch (-want +got):\n%s", diff)
	}

	recent := gym.RecentSummaries(sessions, "barbell_squat", 1)
	wantRecent := []coach.SessionSummary{{RPE: 9.5, Volume: 500}}
	if diff := cmp.Diff(wantRecent, recent); diff != "" {
		t.Errorf("RecentSummaries() mismatch (-want +got):\n%s", diff)
	}
}

func TestRecords_heaviestAndBestEstimateAreSeparate(t *testing.T) {
	day1 := time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 2)
	sessions := []gym.Session{
		{Date: day1, Exercises: []gym.ExerciseLog{{ExerciseID: "deadlift", Sets: []gym.Set{
			{Reps: 1, Weight: units.Kg(100)},
		}}}},
		{Date: day2, Exercises: []gym.ExerciseLog{{ExerciseID: "deadlift", Sets: []gym.Set{
			{Reps: 10, Weight: units.Kg(80)},
		}}}},
	}
	records := gym.Records(sessions)
	want := map[string]coach.GymRecord{
		"deadlift": {WeightKg: 100, Reps: 1, Best1RM: coach.EstimatedOneRepMax(80, 10), Date: day2},
	}
	if diff := cmp.Diff(want, records, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("Records() mismatch (-want +got):\n%s", diff)
	}

	c := coach.New(coach.DefaultConfig(), coach.NewRandomPicker(1))
	if got := c.CheckForGymPR("deadlift", units.Kg(90), 10, records); !got.IsNewPR || got.Type != coach.PROneRepMax {
		t.Errorf("90x10 = {IsNewPR: %t, Type: %q}, want a 1rm record", got.IsNewPR, got.Type)
	}
	if got := c.CheckForGymPR("deadlift", units.Kg(90), 5, records); got.IsNewPR {
		t.Errorf("90x5 = %+v, want no record", got)
	}
	if got := c.CheckForGymPR("deadlift", units.Kg(102.5), 1, records); !got.IsNewPR || got.Type != coach.PRWeight {
		t.Errorf("102.5x1 = {IsNewPR: %t, Type: %q}, want a weight record", got.IsNewPR, got.Type)
	}
}
