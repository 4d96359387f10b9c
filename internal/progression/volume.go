package progression

import (
	"fmt"
	"maps"
	"slices"
)

// CalculateWeeklyVolume counts sets per muscle group. Exercise keys are looked up among bodyweight plans first and
// gym exercises second. Unknown keys are ignored.
func (e *Engine) CalculateWeeklyVolume(workouts []Workout) map[string]int {
	volume := make(map[string]int)
	for _, w := range workouts {
		for _, group := range e.muscleGroups(w.ExerciseKey) {
			volume[group] += len(w.Sets)
		}
	}
	return volume
}

func (e *Engine) muscleGroups(key string) []string {
	if ex, ok := e.catalog.Exercise(key); ok {
		return ex.MuscleGroups
	}
	if g, ok := e.catalog.GymExercise(key); ok {
		return g.MuscleGroups
	}
	return nil
}

// Volume statuses.
const (
	VolumeUnder   = "under"
	VolumeOptimal = "optimal"
	VolumeOver    = "over"
)

// VolumeStatus compares the weekly sets of a muscle group with its landmarks.
type VolumeStatus struct {
	MuscleGroup string `json:"muscleGroup"`
	Sets        int    `json:"sets"`
	Status      string `json:"status"`
	Warning     string `json:"warning,omitempty"`
	Suggestion  string `json:"suggestion,omitempty"`
}

// CheckVolumeStatus reports each muscle group in name order. Unknown goals use hypertrophy landmarks.
func (e *Engine) CheckVolumeStatus(volume map[string]int, goal Goal) []VolumeStatus {
	lm, ok := e.cfg.VolumeLandmarks[goal]
	if !ok {
		lm = e.cfg.VolumeLandmarks[GoalHypertrophy]
	}

	statuses := make([]VolumeStatus, 0, len(volume))
	for _, group := range slices.Sorted(maps.Keys(volume)) {
		sets := volume[group]
		s := VolumeStatus{MuscleGroup: group, Sets: sets, Status: VolumeOptimal}
		switch {
		case sets < lm.MEV:
			s.Status = VolumeUnder
			s.Warning = fmt.Sprintf("%s gets %d sets per week, below the minimum effective %d.", group, sets, lm.MEV)
			s.Suggestion = fmt.Sprintf("Add %d sets for %s.", lm.MEV-sets, group)
		case sets > lm.MRV:
			s.Status = VolumeOver
			s.Warning = fmt.Sprintf("%s gets %d sets per week, above the recoverable %d.", group, sets, lm.MRV)
			s.Suggestion = fmt.Sprintf("Drop %d sets for %s or take a deload.", sets-lm.MRV, group)
		}
		statuses = append(statuses, s)
	}
	return statuses
}

// AMRAP progression types.
const (
	AmrapHold     = "hold"
	AmrapStandard = "standard"
	AmrapDouble   = "double"
	AmrapTriple   = "triple"
)

// AmrapProgression is the load increase earned by an as-many-reps-as-possible set.
type AmrapProgression struct {
	Type      string  `json:"progressionType"`
	Increment float64 `json:"increment"`
}

// CalculateAmrapProgression holds below target, adds baseIncrement at target and doubles or triples it when the
// target is beaten by AmrapDoubleMargin or AmrapTripleMargin reps.
func (e *Engine) CalculateAmrapProgression(amrapReps, targetReps int, baseIncrement float64) AmrapProgression {
	switch {
	case amrapReps < targetReps:
		return AmrapProgression{Type: AmrapHold, Increment: 0}
	case amrapReps >= targetReps+e.cfg.AmrapTripleMargin:
		return AmrapProgression{Type: AmrapTriple, Increment: 3 * baseIncrement} //nolint:mnd // triple.
	case amrapReps >= targetReps+e.cfg.AmrapDoubleMargin:
		return AmrapProgression{Type: AmrapDouble, Increment: 2 * baseIncrement} //nolint:mnd // double.
	default:
		return AmrapProgression{Type: AmrapStandard, Increment: baseIncrement}
	}
}
