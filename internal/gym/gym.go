// Package gym adapts gym programs to available equipment and summarizes logged gym sessions.
package gym

import (
	"slices"
	"time"

	"github.com/myrjola/repcoach/internal/catalog"
	"github.com/myrjola/repcoach/internal/coach"
	"github.com/myrjola/repcoach/internal/units"
)

// Set is one performed set. RPE 0 means not rated.
type Set struct {
	Reps      int          `json:"reps"`
	Weight    units.Weight `json:"weight"`
	RPE       float64      `json:"rpe"`
	Timestamp time.Time    `json:"timestamp,omitzero"`
	// AMRAP marks an as-many-reps-as-possible set.
	AMRAP bool `json:"amrap,omitempty"`
}

type ExerciseLog struct {
	ExerciseID string `json:"exerciseId"`
	Sets       []Set  `json:"sets"`
}

// Session is a logged gym workout.
type Session struct {
	ProgramID string        `json:"programId"`
	DayName   string        `json:"dayName"`
	Date      time.Time     `json:"date"`
	Exercises []ExerciseLog `json:"exercises"`
}

// Substitution records a replaced exercise.
type Substitution struct {
	Day         string `json:"day"`
	Original    string `json:"original"`
	Replacement string `json:"replacement"`
}

type FilterResult struct {
	Program     catalog.GymProgram `json:"program"`
	Substituted []Substitution     `json:"substituted"`
	Unavailable []string           `json:"unavailable"`
}

// FilterProgramByEquipment replaces every exercise that needs missing equipment with its first substitute whose
// equipment is available. Exercises without such a substitute are removed and reported as unavailable. The catalog
// program is not modified.
func FilterProgramByEquipment(c *catalog.Catalog, program catalog.GymProgram, available []string) FilterResult {
	res := FilterResult{
		Program: catalog.GymProgram{
			ID:   program.ID,
			Name: program.Name,
			Days: make([]catalog.GymDay, 0, len(program.Days)),
		},
		Substituted: []Substitution{},
		Unavailable: []string{},
	}
	usable := func(id string) bool {
		ex, ok := c.GymExercise(id)
		if !ok {
			return false
		}
		for _, eq := range ex.Equipment {
			if !slices.Contains(available, eq) {
				return false
			}
		}
		return true
	}

	for _, day := range program.Days {
		filtered := catalog.GymDay{Name: day.Name, Exercises: make([]catalog.GymSlot, 0, len(day.Exercises))}
		for _, slot := range day.Exercises {
			if usable(slot.ExerciseID) {
				filtered.Exercises = append(filtered.Exercises, slot)
				continue
			}
			ex, _ := c.GymExercise(slot.ExerciseID)
			i := slices.IndexFunc(ex.Substitutes, usable)
			if i < 0 {
				if !slices.Contains(res.Unavailable, slot.ExerciseID) {
					res.Unavailable = append(res.Unavailable, slot.ExerciseID)
				}
				continue
			}
			res.Substituted = append(res.Substituted, Substitution{
				Day:         day.Name,
				Original:    slot.ExerciseID,
				Replacement: ex.Substitutes[i],
			})
			slot.ExerciseID = ex.Substitutes[i]
			filtered.Exercises = append(filtered.Exercises, slot)
		}
		res.Program.Days = append(res.Program.Days, filtered)
	}
	return res
}

// Summary is the outcome of one exercise in a session.
type Summary struct {
	ExerciseID string  `json:"exerciseId"`
	TopSet     Set     `json:"topSet"`
	VolumeKg   float64 `json:"volumeKg"`
	AverageRPE float64 `json:"averageRpe"`
}

// Summarize returns one summary per exercise in logged order. The top set has the highest estimated one rep max.
// Average RPE ignores unrated sets.
func Summarize(s Session) []Summary {
	out := make([]Summary, 0, len(s.Exercises))
	for _, ex := range s.Exercises {
		sum := Summary{ExerciseID: ex.ExerciseID}
		var (
			rpeTotal float64
			rated    int
			best     = -1.0
		)
		for _, set := range ex.Sets {
			kg := set.Weight.Kilograms()
			sum.VolumeKg += float64(set.Reps) * kg
			if set.RPE > 0 {
				rpeTotal += set.RPE
				rated++
			}
			if e1rm := coach.EstimatedOneRepMax(kg, set.Reps); e1rm > best {
				best = e1rm
				sum.TopSet = set
			}
		}
		if rated > 0 {
			sum.AverageRPE = rpeTotal / float64(rated)
		}
		out = append(out, sum)
	}
	return out
}

// Records folds every set of sessions, in order, into one record per exercise. Sets without reps are ignored.
func Records(sessions []Session) map[string]coach.GymRecord {
	records := make(map[string]coach.GymRecord)
	for _, s := range sessions {
		for _, ex := range s.Exercises {
			for _, set := range ex.Sets {
				if rec, improved := records[ex.ExerciseID].Add(set.Weight.Kilograms(), set.Reps, s.Date); improved {
					records[ex.ExerciseID] = rec
				}
			}
		}
	}
	return records
}

// RecentSummaries lists the last n session summaries of exerciseID, oldest first, as input for the coach.
func RecentSummaries(sessions []Session, exerciseID string, n int) []coach.SessionSummary {
	var out []coach.SessionSummary
	for _, s := range sessions {
		for _, sum := range Summarize(s) {
			if sum.ExerciseID == exerciseID {
				out = append(out, coach.SessionSummary{RPE: sum.AverageRPE, Volume: sum.VolumeKg})
			}
		}
	}
	if len(out) > n {
		out = out[len(out)-n:]
	}
	return out
}
