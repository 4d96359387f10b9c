// Package schedule decides which bodyweight sessions are due on a given day.
package schedule

import (
	"slices"
	"time"

	"github.com/myrjola/repcoach/internal/catalog"
)

// fullBodyMaxDays is the number of preferred days at or below which every exercise is trained each session.
const fullBodyMaxDays = 2

// NextSession is the first session of an exercise plan that has not been completed.
type NextSession struct {
	ExerciseKey string       `json:"exerciseKey"`
	Name        string       `json:"name"`
	Week        int          `json:"week"`     // 1-based
	DayIndex    int          `json:"dayIndex"` // 0-based within the week
	DayID       string       `json:"dayId"`
	Target      int          `json:"target"`
	Unit        catalog.Unit `json:"unit"`
}

// NextSessionForExercise scans the plan in week and day order and returns the first day missing from completed.
// It returns nil when every day is completed.
func NextSessionForExercise(ex catalog.Exercise, completed []string) *NextSession {
	for w, days := range ex.Weeks {
		for d, target := range days {
			id := ex.DayID(w+1, d+1)
			if slices.Contains(completed, id) {
				continue
			}
			return &NextSession{
				ExerciseKey: ex.Key,
				Name:        ex.Name,
				Week:        w + 1,
				DayIndex:    d,
				DayID:       id,
				Target:      target,
				Unit:        ex.Unit,
			}
		}
	}
	return nil
}

// IsTrainingDay reports whether today is one of preferredDays. No preferred days means every day is allowed.
func IsTrainingDay(today time.Time, preferredDays []time.Weekday) bool {
	return len(preferredDays) == 0 || slices.Contains(preferredDays, today.Weekday())
}

// Scheduler looks exercises up from a catalog.
type Scheduler struct {
	catalog *catalog.Catalog
}

func New(c *catalog.Catalog) *Scheduler {
	return &Scheduler{catalog: c}
}

// NextSession returns the next session of the exercise key or nil if the key is unknown or the plan is mastered.
func (s *Scheduler) NextSession(key string, completedDays map[string][]string) *NextSession {
	ex, ok := s.catalog.Exercise(key)
	if !ok {
		return nil
	}
	return NextSessionForExercise(ex, completedDays[key])
}

// DailyStack returns the next session of every exercise due today.
//
// Without preferred days Sunday is a rest day, Monday, Wednesday and Friday train the upper body and the other days
// the lower body and core. With preferred days only those days train. Up to two preferred days train the full body,
// otherwise the preferred days alternate between upper and lower body in weekday order.
//
// A non-empty activeProgram restricts the exercises to those of the program. Mastered exercises are left out.
func (s *Scheduler) DailyStack(
	today time.Time,
	completedDays map[string][]string,
	activeProgram string,
	preferredDays []time.Weekday,
) []NextSession {
	regions, ok := dueRegions(today.Weekday(), preferredDays)
	if !ok {
		return nil
	}

	var allowed []string
	if program, found := s.catalog.Program(activeProgram); activeProgram != "" && found {
		allowed = program.Exercises
	}

	var stack []NextSession
	for _, ex := range s.catalog.ExercisesByRegion(regions...) {
		if allowed != nil && !slices.Contains(allowed, ex.Key) {
			continue
		}
		if next := NextSessionForExercise(ex, completedDays[ex.Key]); next != nil {
			stack = append(stack, *next)
		}
	}
	return stack
}

var (
	upperBody = []catalog.Region{catalog.RegionUpper}
	lowerBody = []catalog.Region{catalog.RegionLower, catalog.RegionCore}
	fullBody  = []catalog.Region{catalog.RegionUpper, catalog.RegionLower, catalog.RegionCore}
)

// dueRegions returns false on rest days.
func dueRegions(weekday time.Weekday, preferredDays []time.Weekday) ([]catalog.Region, bool) {
	if len(preferredDays) == 0 {
		switch {
		case weekday == time.Sunday:
			return nil, false
		case weekday%2 == 1:
			return upperBody, true
		default:
			return lowerBody, true
		}
	}

	days := slices.Clone(preferredDays)
	slices.Sort(days)
	days = slices.Compact(days)
	position := slices.Index(days, weekday)
	switch {
	case position < 0:
		return nil, false
	case len(days) <= fullBodyMaxDays:
		return fullBody, true
	case position%2 == 0:
		return upperBody, true
	default:
		return lowerBody, true
	}
}
