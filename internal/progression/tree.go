package progression

import (
	"fmt"
	"slices"

	"github.com/myrjola/repcoach/internal/catalog"
)

// Workout is a completed session of a single exercise.
type Workout struct {
	ExerciseKey string `json:"exerciseKey"`
	// Sets holds the reps, or seconds, of each completed set.
	Sets []int `json:"sets"`
	// Deload marks a session performed at deload intensity.
	Deload bool `json:"deload"`
}

// Volume sums all sets.
func (w Workout) Volume() int {
	total := 0
	for _, s := range w.Sets {
		total += s
	}
	return total
}

// Position locates an exercise in a progression tree.
type Position struct {
	Tree        string         `json:"tree"`
	Index       int            `json:"index"`
	Level       catalog.Level  `json:"level"`
	HasNext     bool           `json:"hasNext"`
	HasPrevious bool           `json:"hasPrevious"`
	Next        *catalog.Level `json:"next,omitempty"`
	Previous    *catalog.Level `json:"previous,omitempty"`
}

// FindCurrentLevel returns false when the tree or the exercise within it is unknown.
func (e *Engine) FindCurrentLevel(treeName, exerciseKey string) (Position, bool) {
	tree, ok := e.catalog.Tree(treeName)
	if !ok {
		return Position{}, false
	}
	i := slices.IndexFunc(tree.Levels, func(l catalog.Level) bool { return l.Key == exerciseKey })
	if i < 0 {
		return Position{}, false
	}
	pos := Position{
		Tree:        tree.Name,
		Index:       i,
		Level:       tree.Levels[i],
		HasNext:     i < len(tree.Levels)-1,
		HasPrevious: i > 0,
	}
	if pos.HasNext {
		next := tree.Levels[i+1]
		pos.Next = &next
	}
	if pos.HasPrevious {
		previous := tree.Levels[i-1]
		pos.Previous = &previous
	}
	return pos, true
}

// TreeMove is a progression or regression decision.
type TreeMove struct {
	Move     bool           `json:"move"`
	Exercise *catalog.Level `json:"exercise,omitempty"`
	Reason   string         `json:"reason"`
}

// CheckProgressionReady moves up when each of the last LookBack workouts has at least MinSets sets at or above the
// level target plus RepsBuffer.
func (e *Engine) CheckProgressionReady(pos Position, recent []Workout) TreeMove {
	if !pos.HasNext {
		return TreeMove{Reason: "You have reached the hardest variation."}
	}
	if len(recent) < e.cfg.LookBack {
		return TreeMove{Reason: fmt.Sprintf("Complete %d workouts at this level first.", e.cfg.LookBack)}
	}
	threshold := pos.Level.TargetReps + e.cfg.RepsBuffer
	for _, w := range recent[len(recent)-e.cfg.LookBack:] {
		strong := 0
		for _, reps := range w.Sets {
			if reps >= threshold {
				strong++
			}
		}
		if strong < e.cfg.MinSets {
			return TreeMove{Reason: fmt.Sprintf("Hit %d sets of %d reps consistently to progress.", e.cfg.MinSets, threshold)}
		}
	}
	return TreeMove{
		Move:     true,
		Exercise: pos.Next,
		Reason:   fmt.Sprintf("Ready for %s.", pos.Next.Name),
	}
}

// CheckRegressionNeeded moves down when RegressionThreshold of the last LookBack workouts fell short. A workout is
// short when it has fewer than MinSets sets or averages below RegressionShortfall of the target reps.
func (e *Engine) CheckRegressionNeeded(pos Position, recent []Workout) TreeMove {
	if !pos.HasPrevious {
		return TreeMove{Reason: "Already at the easiest variation."}
	}
	window := recent[max(0, len(recent)-e.cfg.LookBack):]
	short := 0
	for _, w := range window {
		if e.isShort(w, pos.Level.TargetReps) {
			short++
		}
	}
	if short < e.cfg.RegressionThreshold {
		return TreeMove{Reason: "Performance is within range."}
	}
	return TreeMove{
		Move:     true,
		Exercise: pos.Previous,
		Reason:   fmt.Sprintf("Build strength with %s before trying again.", pos.Previous.Name),
	}
}

func (e *Engine) isShort(w Workout, targetReps int) bool {
	if len(w.Sets) < e.cfg.MinSets {
		return true
	}
	mean := float64(w.Volume()) / float64(len(w.Sets))
	return mean < e.cfg.RegressionShortfall*float64(targetReps)
}
