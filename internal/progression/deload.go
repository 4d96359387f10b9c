package progression

import (
	"fmt"
	"maps"
	"math"

	"github.com/myrjola/repcoach/internal/catalog"
)

// DeloadDecision tells whether the next sessions should be lighter and by which factor.
type DeloadDecision struct {
	NeedsDeload       bool    `json:"needsDeload"`
	Factor            float64 `json:"factor"`
	ConsecutiveMisses int     `json:"consecutiveMisses"`
	Reason            string  `json:"reason"`
}

// CheckDeloadNeeded looks at the last DeloadWindow workouts and flags a deload after DeloadAfterMisses consecutive
// latest workouts below targetVolume. A deload session ends the run of misses. The reduction doubles when a deload
// already happened within the window.
func (e *Engine) CheckDeloadNeeded(recent []Workout, targetVolume int) DeloadDecision {
	window := recent[max(0, len(recent)-e.cfg.DeloadWindow):]

	misses := 0
	for i := len(window) - 1; i >= 0; i-- {
		if window[i].Deload || window[i].Volume() >= targetVolume {
			break
		}
		misses++
	}
	if misses < e.cfg.DeloadAfterMisses {
		return DeloadDecision{
			NeedsDeload:       false,
			Factor:            1,
			ConsecutiveMisses: misses,
			Reason:            "Keep going, you are recovering fine.",
		}
	}

	reduction := e.cfg.DeloadReduction
	for _, w := range window {
		if w.Deload {
			reduction *= 2
			break
		}
	}
	return DeloadDecision{
		NeedsDeload:       true,
		Factor:            1 - reduction,
		ConsecutiveMisses: misses,
		Reason: fmt.Sprintf("%d sessions in a row below target. Reduce the load by %.0f%% this week.",
			misses, reduction*100), //nolint:mnd // percent.
	}
}

// ApplyDeload scales value by factor, rounded, without going below the unit minimum. Values already below the
// minimum are kept as they are.
func (e *Engine) ApplyDeload(value int, factor float64, unit catalog.Unit) int {
	minimum := e.cfg.MinDeloadReps
	if unit == catalog.UnitSeconds {
		minimum = e.cfg.MinDeloadSeconds
	}
	reduced := int(math.Round(float64(value) * factor))
	return max(reduced, min(minimum, value))
}

// RepSchemeState is the persisted deload count driving rep scheme evolution together with the deloads that are
// prescribed but not performed yet.
type RepSchemeState struct {
	Deloads int `json:"deloads"`
	// Active maps an exercise key to the load factor of its next session.
	Active map[string]float64 `json:"active,omitempty"`
}

// DeloadFactor returns the pending deload factor of exerciseKey.
func (s RepSchemeState) DeloadFactor(exerciseKey string) (float64, bool) {
	f, ok := s.Active[exerciseKey]
	return f, ok
}

// StartDeload prescribes factor for the next session of exerciseKey.
func (s RepSchemeState) StartDeload(exerciseKey string, factor float64) RepSchemeState {
	active := maps.Clone(s.Active)
	if active == nil {
		active = map[string]float64{}
	}
	active[exerciseKey] = factor
	s.Active = active
	return s
}

// EndDeload clears the pending deload of exerciseKey.
func (s RepSchemeState) EndDeload(exerciseKey string) RepSchemeState {
	if _, ok := s.Active[exerciseKey]; !ok {
		return s
	}
	active := maps.Clone(s.Active)
	delete(active, exerciseKey)
	if len(active) == 0 {
		active = nil
	}
	s.Active = active
	return s
}

// CurrentRepScheme returns the scheme for the accumulated deloads, stopping at the last stage.
func (e *Engine) CurrentRepScheme(state RepSchemeState) catalog.RepScheme {
	schemes := e.catalog.RepSchemes()
	if len(schemes) == 0 {
		return catalog.RepScheme{}
	}
	return schemes[e.stage(state, len(schemes))]
}

// RecordDeload counts a deload and reports whether the rep scheme moved to the next stage.
func (e *Engine) RecordDeload(state RepSchemeState) (RepSchemeState, bool) {
	n := len(e.catalog.RepSchemes())
	next := state
	next.Deloads++
	return next, n > 0 && e.stage(next, n) != e.stage(state, n)
}

func (e *Engine) stage(state RepSchemeState, schemes int) int {
	per := max(e.cfg.DeloadsPerSchemeStage, 1)
	return min(max(state.Deloads, 0)/per, schemes-1)
}
