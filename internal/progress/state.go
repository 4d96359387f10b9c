// Package progress persists a user's training state and orchestrates the calculators around it.
package progress

import (
	"context"
	"maps"
	"slices"

	"github.com/myrjola/repcoach/internal/errors"
	"github.com/myrjola/repcoach/internal/gamification"
	"github.com/myrjola/repcoach/internal/gym"
	"github.com/myrjola/repcoach/internal/history"
	"github.com/myrjola/repcoach/internal/preferences"
	"github.com/myrjola/repcoach/internal/progression"
)

var (
	ErrNotFound        = errors.NewSentinel("not found")
	ErrUnauthenticated = errors.NewSentinel("unauthenticated")
)

// Accessibility settings are stored for the client and not interpreted.
type Accessibility struct {
	ReducedMotion bool `json:"reducedMotion"`
	HighContrast  bool `json:"highContrast"`
	LargeText     bool `json:"largeText"`
	Sound         bool `json:"sound"`
	Haptics       bool `json:"haptics"`
}

// DefaultAccessibility enables feedback and leaves visual adjustments off.
func DefaultAccessibility() Accessibility {
	return Accessibility{Sound: true, Haptics: true}
}

// State is everything persisted for one user.
type State struct {
	CompletedDays history.CompletedDays      `json:"completedDays"`
	History       []history.Entry            `json:"sessionHistory"`
	Preferences   preferences.Preferences    `json:"trainingPreferences"`
	GymWeights    map[string]float64         `json:"gymWeights"`
	GymReps       map[string][]int           `json:"gymReps"`
	GymSessions   []gym.Session              `json:"gymSessions"`
	Freeze        gamification.FreezeLedger  `json:"freeze"`
	SchemeStage   progression.RepSchemeState `json:"schemeStage"`
	Accessibility Accessibility              `json:"accessibility"`
}

// NewState returns the state of a user who has not trained yet.
func NewState() State {
	return State{
		CompletedDays: history.CompletedDays{},
		History:       []history.Entry{},
		Preferences:   preferences.Defaults(),
		GymWeights:    map[string]float64{},
		GymReps:       map[string][]int{},
		GymSessions:   []gym.Session{},
		Accessibility: DefaultAccessibility(),
	}
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := s
	out.CompletedDays = s.CompletedDays.Clone()
	out.History = slices.Clone(s.History)
	out.Preferences.PreferredDays = slices.Clone(s.Preferences.PreferredDays)
	out.GymWeights = maps.Clone(s.GymWeights)
	out.GymReps = make(map[string][]int, len(s.GymReps))
	for k, v := range s.GymReps {
		out.GymReps[k] = slices.Clone(v)
	}
	out.GymSessions = slices.Clone(s.GymSessions)
	out.SchemeStage.Active = maps.Clone(s.SchemeStage.Active)
	return out
}

// DayRef identifies a completed plan day.
type DayRef struct {
	ExerciseKey string `json:"exerciseKey"`
	DayID       string `json:"dayId"`
}

// GymTarget is the working weight and last reps of a gym exercise.
type GymTarget struct {
	WeightKg float64 `json:"weightKg"`
	Reps     []int   `json:"reps"`
}

// Patch is a partial update. Zero fields leave the stored values untouched.
type Patch struct {
	// ReplaceCompletedDays overwrites all completed days before AddDays are applied.
	ReplaceCompletedDays history.CompletedDays
	AddDays              []DayRef
	AppendHistory        []history.Entry
	AppendGymSessions    []gym.Session
	GymTargets           map[string]GymTarget
	Preferences          *preferences.Preferences
	Freeze               *gamification.FreezeLedger
	SchemeStage          *progression.RepSchemeState
	Accessibility        *Accessibility
}

// IsZero reports whether p changes nothing.
func (p Patch) IsZero() bool {
	return p.ReplaceCompletedDays == nil && len(p.AddDays) == 0 && len(p.AppendHistory) == 0 &&
		len(p.AppendGymSessions) == 0 && len(p.GymTargets) == 0 && p.Preferences == nil && p.Freeze == nil &&
		p.SchemeStage == nil && p.Accessibility == nil
}

// Merge folds next into p so that applying the result equals applying p and then next.
func (p Patch) Merge(next Patch) Patch {
	out := p
	if next.ReplaceCompletedDays != nil {
		out.ReplaceCompletedDays = next.ReplaceCompletedDays
		out.AddDays = nil
	}
	out.AddDays = append(slices.Clone(out.AddDays), next.AddDays...)
	out.AppendHistory = append(slices.Clone(out.AppendHistory), next.AppendHistory...)
	out.AppendGymSessions = append(slices.Clone(out.AppendGymSessions), next.AppendGymSessions...)
	if len(next.GymTargets) > 0 {
		out.GymTargets = maps.Clone(out.GymTargets)
		if out.GymTargets == nil {
			out.GymTargets = map[string]GymTarget{}
		}
		maps.Copy(out.GymTargets, next.GymTargets)
	}
	if next.Preferences != nil {
		out.Preferences = next.Preferences
	}
	if next.Freeze != nil {
		out.Freeze = next.Freeze
	}
	if next.SchemeStage != nil {
		out.SchemeStage = next.SchemeStage
	}
	if next.Accessibility != nil {
		out.Accessibility = next.Accessibility
	}
	return out
}

// Apply updates s in place. Completed days stay unique and history volumes are clamped.
func (s *State) Apply(p Patch) {
	if s.CompletedDays == nil || p.ReplaceCompletedDays != nil {
		s.CompletedDays = p.ReplaceCompletedDays.Clone()
	}
	for _, d := range p.AddDays {
		s.CompletedDays.Add(d.ExerciseKey, d.DayID)
	}
	for _, e := range p.AppendHistory {
		s.History = history.Append(s.History, e)
	}
	s.GymSessions = append(s.GymSessions, p.AppendGymSessions...)
	if s.GymWeights == nil {
		s.GymWeights = map[string]float64{}
	}
	if s.GymReps == nil {
		s.GymReps = map[string][]int{}
	}
	for id, target := range p.GymTargets {
		s.GymWeights[id] = target.WeightKg
		s.GymReps[id] = slices.Clone(target.Reps)
	}
	if p.Preferences != nil {
		s.Preferences = *p.Preferences
	}
	if p.Freeze != nil {
		s.Freeze = *p.Freeze
	}
	if p.SchemeStage != nil {
		s.SchemeStage = *p.SchemeStage
	}
	if p.Accessibility != nil {
		s.Accessibility = *p.Accessibility
	}
}

// Store loads and saves the state of the user authenticated in ctx.
type Store interface {
	Load(ctx context.Context) (State, error)
	Save(ctx context.Context, p Patch) error
}
