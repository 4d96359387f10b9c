// Package history holds the records a user accumulates: completed plan days and the session log.
package history

import (
	"maps"
	"slices"
	"time"
)

// CompletedDays maps an exercise key to its completed day identifiers in completion order.
type CompletedDays map[string][]string

// Add inserts dayID for key unless it is already present and reports whether it was added.
func (c CompletedDays) Add(key, dayID string) bool {
	if slices.Contains(c[key], dayID) {
		return false
	}
	c[key] = append(c[key], dayID)
	return true
}

// Merge adds every day of other that is missing from c, keeping the order of c first.
func (c CompletedDays) Merge(other CompletedDays) {
	for _, key := range slices.Sorted(maps.Keys(other)) {
		for _, id := range other[key] {
			c.Add(key, id)
		}
	}
}

// Total counts completed days across all exercises.
func (c CompletedDays) Total() int {
	total := 0
	for _, ids := range c {
		total += len(ids)
	}
	return total
}

func (c CompletedDays) Clone() CompletedDays {
	out := make(CompletedDays, len(c))
	for k, v := range c {
		out[k] = slices.Clone(v)
	}
	return out
}

// Entry is one completed workout in the session log.
type Entry struct {
	ExerciseKey string    `json:"exerciseKey"`
	Date        time.Time `json:"date"`
	// Volume is total reps, seconds, or reps × kilograms depending on Unit.
	Volume float64 `json:"volume"`
	Unit   string  `json:"unit"`
	// Sets holds the per-set reps or seconds when they were reported.
	Sets []int `json:"sets,omitempty"`
	// Deload marks a session performed at a reduced target.
	Deload bool `json:"deload,omitempty"`
}

// NewEntry clamps negative volumes to zero.
func NewEntry(exerciseKey string, date time.Time, volume float64, unit string) Entry {
	return Entry{
		ExerciseKey: exerciseKey,
		Date:        date,
		Volume:      max(volume, 0),
		Unit:        unit,
	}
}

// Append appends e to log with its volume clamped to zero or more.
func Append(log []Entry, e Entry) []Entry {
	e.Volume = max(e.Volume, 0)
	e.Sets = slices.Clone(e.Sets)
	return append(log, e)
}

// ForExercise returns the entries of key in log order.
func ForExercise(log []Entry, key string) []Entry {
	var out []Entry
	for _, e := range log {
		if e.ExerciseKey == key {
			out = append(out, e)
		}
	}
	return out
}

// DistinctDays returns the local calendar days with at least one entry, most recent first, as midnights in loc.
func DistinctDays(log []Entry, loc *time.Location) []time.Time {
	seen := make(map[time.Time]bool, len(log))
	var days []time.Time
	for _, e := range log {
		d := StartOfDay(e.Date, loc)
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	slices.SortFunc(days, func(a, b time.Time) int { return b.Compare(a) })
	return days
}

// StartOfDay returns midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// DaysBetween returns the fractional number of days from earlier to later.
func DaysBetween(later, earlier time.Time) float64 {
	return later.Sub(earlier).Hours() / 24 //nolint:mnd // hours per day.
}
