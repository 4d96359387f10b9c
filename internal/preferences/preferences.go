// Package preferences validates training preferences against the allowed option sets.
package preferences

import (
	"fmt"
	"slices"
	"time"
	_ "time/tzdata"

	"github.com/myrjola/repcoach/internal/history"
)

// Preferences are the user's training preferences. Durations are in minutes, rest in seconds and the program
// duration in weeks. Timezone is an IANA name used for calendar days and workout hours.
type Preferences struct {
	TrainingDaysPerWeek   int            `json:"trainingDaysPerWeek"`
	PreferredDays         []time.Weekday `json:"preferredDays"`
	TargetSessionDuration int            `json:"targetSessionDuration"`
	RepScheme             string         `json:"repScheme"`
	SetsPerExercise       int            `json:"setsPerExercise"`
	ProgressionRate       string         `json:"progressionRate"`
	ProgramDuration       int            `json:"programDuration"`
	RestBetweenSets       int            `json:"restBetweenSets"`
	FitnessLevel          string         `json:"fitnessLevel"`
	Timezone              string         `json:"timezone"`
}

// ProgramDays is the total number of training days of the program.
func (p Preferences) ProgramDays() int {
	return p.TrainingDaysPerWeek * p.ProgramDuration
}

// Location resolves Timezone and falls back to UTC.
func (p Preferences) Location() *time.Location {
	loc, ok := loadLocation(p.Timezone)
	if !ok {
		return time.UTC
	}
	return loc
}

func loadLocation(name string) (*time.Location, bool) {
	if name == "" || name == "Local" {
		return nil, false
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, false
	}
	return loc, true
}

// Input is an unvalidated preference update. Nil fields are left at their base value.
type Input struct {
	TrainingDaysPerWeek   *int    `json:"trainingDaysPerWeek,omitempty"`
	PreferredDays         *[]int  `json:"preferredDays,omitempty"`
	TargetSessionDuration *int    `json:"targetSessionDuration,omitempty"`
	RepScheme             *string `json:"repScheme,omitempty"`
	SetsPerExercise       *int    `json:"setsPerExercise,omitempty"`
	ProgressionRate       *string `json:"progressionRate,omitempty"`
	ProgramDuration       *int    `json:"programDuration,omitempty"`
	RestBetweenSets       *int    `json:"restBetweenSets,omitempty"`
	FitnessLevel          *string `json:"fitnessLevel,omitempty"`
	Timezone              *string `json:"timezone,omitempty"`
}

// InputFrom turns p into an Input setting every field.
func InputFrom(p Preferences) Input {
	days := make([]int, len(p.PreferredDays))
	for i, d := range p.PreferredDays {
		days[i] = int(d)
	}
	return Input{
		TrainingDaysPerWeek:   &p.TrainingDaysPerWeek,
		PreferredDays:         &days,
		TargetSessionDuration: &p.TargetSessionDuration,
		RepScheme:             &p.RepScheme,
		SetsPerExercise:       &p.SetsPerExercise,
		ProgressionRate:       &p.ProgressionRate,
		ProgramDuration:       &p.ProgramDuration,
		RestBetweenSets:       &p.RestBetweenSets,
		FitnessLevel:          &p.FitnessLevel,
		Timezone:              &p.Timezone,
	}
}

// Over fills every field missing from in with the value of base.
func (in Input) Over(base Preferences) Input {
	out := InputFrom(base)
	if base.Timezone == "" {
		out.Timezone = nil
	}
	fill(&out.TrainingDaysPerWeek, in.TrainingDaysPerWeek)
	fill(&out.PreferredDays, in.PreferredDays)
	fill(&out.TargetSessionDuration, in.TargetSessionDuration)
	fill(&out.RepScheme, in.RepScheme)
	fill(&out.SetsPerExercise, in.SetsPerExercise)
	fill(&out.ProgressionRate, in.ProgressionRate)
	fill(&out.ProgramDuration, in.ProgramDuration)
	fill(&out.RestBetweenSets, in.RestBetweenSets)
	fill(&out.FitnessLevel, in.FitnessLevel)
	fill(&out.Timezone, in.Timezone)
	return out
}

func fill[T any](dst **T, value *T) {
	if value != nil {
		*dst = value
	}
}

// Options are the allowed values per field.
type Options struct {
	TrainingDaysPerWeek   []int
	TargetSessionDuration []int
	RepScheme             []string
	SetsPerExercise       []int
	ProgressionRate       []string
	ProgramDuration       []int
	RestBetweenSets       []int
	FitnessLevel          []string
}

func DefaultOptions() Options {
	return Options{
		TrainingDaysPerWeek:   []int{2, 3, 4, 5, 6},
		TargetSessionDuration: []int{15, 20, 30, 45, 60},
		RepScheme:             []string{"standard", "strength", "endurance", "pyramid"},
		SetsPerExercise:       []int{2, 3, 4, 5},
		ProgressionRate:       []string{"conservative", "moderate", "aggressive"},
		ProgramDuration:       []int{4, 6, 8, 12},
		RestBetweenSets:       []int{30, 45, 60, 90, 120, 180},
		FitnessLevel:          []string{"beginner", "intermediate", "advanced"},
	}
}

// Defaults are used for every missing or invalid field.
func Defaults() Preferences {
	return Preferences{
		TrainingDaysPerWeek:   3, //nolint:mnd // defaults.
		PreferredDays:         []time.Weekday{},
		TargetSessionDuration: 30,  //nolint:mnd // defaults.
		RepScheme:             "standard",
		SetsPerExercise:       3, //nolint:mnd // defaults.
		ProgressionRate:       "moderate",
		ProgramDuration:       6,  //nolint:mnd // defaults.
		RestBetweenSets:       60, //nolint:mnd // defaults.
		FitnessLevel:          "beginner",
		Timezone:              "UTC",
	}
}

// FieldError describes a rejected field.
type FieldError struct {
	Field   string `json:"field"`
	Value   any    `json:"value"`
	Message string `json:"message"`
}

// Result of Validate. Sanitized is always usable.
type Result struct {
	Valid     bool         `json:"valid"`
	Errors    []FieldError `json:"errors"`
	Sanitized Preferences  `json:"sanitized"`
}

type Validator struct {
	opts     Options
	defaults Preferences
}

func NewValidator(opts Options) *Validator {
	return &Validator{opts: opts, defaults: Defaults()}
}

// Validate starts from the defaults and overlays each present field that is one of the allowed options. Rejected
// fields keep their default and are reported in Errors.
func (v *Validator) Validate(in Input) Result {
	res := Result{Valid: true, Errors: []FieldError{}, Sanitized: v.defaults}
	res.Sanitized.PreferredDays = slices.Clone(v.defaults.PreferredDays)
	reject := func(field string, value any) {
		res.Valid = false
		res.Errors = append(res.Errors, FieldError{
			Field:   field,
			Value:   value,
			Message: fmt.Sprintf("%v is not a valid value for %s", value, field),
		})
	}

	overlay(in.TrainingDaysPerWeek, v.opts.TrainingDaysPerWeek, &res.Sanitized.TrainingDaysPerWeek, "trainingDaysPerWeek", reject)
	overlay(in.TargetSessionDuration, v.opts.TargetSessionDuration, &res.Sanitized.TargetSessionDuration,
		"targetSessionDuration", reject)
	overlay(in.RepScheme, v.opts.RepScheme, &res.Sanitized.RepScheme, "repScheme", reject)
	overlay(in.SetsPerExercise, v.opts.SetsPerExercise, &res.Sanitized.SetsPerExercise, "setsPerExercise", reject)
	overlay(in.ProgressionRate, v.opts.ProgressionRate, &res.Sanitized.ProgressionRate, "progressionRate", reject)
	overlay(in.ProgramDuration, v.opts.ProgramDuration, &res.Sanitized.ProgramDuration, "programDuration", reject)
	overlay(in.RestBetweenSets, v.opts.RestBetweenSets, &res.Sanitized.RestBetweenSets, "restBetweenSets", reject)
	overlay(in.FitnessLevel, v.opts.FitnessLevel, &res.Sanitized.FitnessLevel, "fitnessLevel", reject)

	if in.PreferredDays != nil {
		days, ok := parseWeekdays(*in.PreferredDays)
		if ok {
			res.Sanitized.PreferredDays = days
		} else {
			reject("preferredDays", *in.PreferredDays)
		}
	}
	if in.Timezone != nil {
		if _, ok := loadLocation(*in.Timezone); ok {
			res.Sanitized.Timezone = *in.Timezone
		} else {
			reject("timezone", *in.Timezone)
		}
	}
	return res
}

func overlay[T comparable](value *T, allowed []T, dst *T, field string, reject func(string, any)) {
	if value == nil {
		return
	}
	if !slices.Contains(allowed, *value) {
		reject(field, *value)
		return
	}
	*dst = *value
}

// parseWeekdays accepts 0 (Sunday) through 6 and returns the days sorted without duplicates.
func parseWeekdays(in []int) ([]time.Weekday, bool) {
	days := make([]time.Weekday, 0, len(in))
	for _, d := range in {
		if d < int(time.Sunday) || d > int(time.Saturday) {
			return nil, false
		}
		days = append(days, time.Weekday(d))
	}
	slices.Sort(days)
	return slices.Compact(days), true
}

// RequiresPlanRegeneration reports whether a structural field differs. Preferred days, rest and the timezone are
// cosmetic.
func RequiresPlanRegeneration(old, updated Preferences) bool {
	return old.TrainingDaysPerWeek != updated.TrainingDaysPerWeek ||
		old.ProgramDuration != updated.ProgramDuration ||
		old.RepScheme != updated.RepScheme ||
		old.SetsPerExercise != updated.SetsPerExercise ||
		old.ProgressionRate != updated.ProgressionRate ||
		old.FitnessLevel != updated.FitnessLevel ||
		old.TargetSessionDuration != updated.TargetSessionDuration
}

// AdjustProgressForPreferenceChange truncates each exercise's completed days to the new program length when it
// shrinks. The first days are kept in order. The input is not modified.
func AdjustProgressForPreferenceChange(completed history.CompletedDays, old, updated Preferences) history.CompletedDays {
	out := completed.Clone()
	limit := updated.ProgramDays()
	if limit >= old.ProgramDays() {
		return out
	}
	limit = max(limit, 0)
	for key, days := range out {
		if len(days) > limit {
			out[key] = days[:limit:limit]
		}
	}
	return out
}
