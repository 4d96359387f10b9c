package progress

import (
	"context"
	"time"

	"github.com/myrjola/repcoach/internal/catalog"
	"github.com/myrjola/repcoach/internal/coach"
	"github.com/myrjola/repcoach/internal/gamification"
	"github.com/myrjola/repcoach/internal/gym"
	"github.com/myrjola/repcoach/internal/progression"
)

// Dashboard is the derived overview of a user's training.
type Dashboard struct {
	Stats           gamification.Stats                     `json:"stats"`
	Badges          []gamification.Badge                   `json:"badges"`
	Level           gamification.Level                     `json:"level"`
	Streak          gamification.StreakState               `json:"streak"`
	StreakStatus    gamification.StreakStatus              `json:"streakStatus"`
	FreezeTokens    int                                    `json:"freezeTokens"`
	Comeback        *gamification.Comeback                 `json:"comeback"`
	PersonalRecords map[string]gamification.PersonalRecord `json:"personalRecords"`
	GymRecords      map[string]coach.GymRecord             `json:"gymRecords"`
	SchemeStage     catalog.RepScheme                      `json:"schemeStage"`
	WeeklyVolume    []progression.VolumeStatus             `json:"weeklyVolume"`
	Accessibility   Accessibility                          `json:"accessibility"`
}

const week = 7 * 24 * time.Hour

// Dashboard recomputes everything from a fresh load.
func (t *Tracker) Dashboard(ctx context.Context) (Dashboard, error) {
	state, err := t.Load(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	now := t.localNow(state)
	stats := t.game.CalculateStats(state.CompletedDays, state.History, now)
	badges := t.game.GetUnlockedBadges(stats)
	if badges == nil {
		badges = []gamification.Badge{}
	}
	streak := t.game.CalculateStreakWithGrace(state.History, now)
	weekly := t.progression.CalculateWeeklyVolume(t.weeklyWorkouts(state, now))
	return Dashboard{
		Stats:           stats,
		Badges:          badges,
		Level:           t.game.CalculateLevel(stats, len(badges)),
		Streak:          streak,
		StreakStatus:    t.game.GetStreakStatus(streak),
		FreezeTokens:    t.game.RemainingFreezeTokens(state.Freeze, now),
		Comeback:        t.game.CheckComeback(state.History, now.Location()),
		PersonalRecords: gamification.GetPersonalRecords(state.History),
		GymRecords:      gym.Records(state.GymSessions),
		SchemeStage:     t.progression.CurrentRepScheme(state.SchemeStage),
		WeeklyVolume:    t.progression.CheckVolumeStatus(weekly, goalOf(state.Preferences.RepScheme)),
		Accessibility:   state.Accessibility,
	}, nil
}

// weeklyWorkouts collects the last seven days. Bodyweight sessions count as the preferred number of sets.
func (t *Tracker) weeklyWorkouts(state State, now time.Time) []progression.Workout {
	since := now.Add(-week)
	var out []progression.Workout
	for _, e := range state.History {
		if e.Date.Before(since) {
			continue
		}
		if _, ok := t.catalog.Exercise(e.ExerciseKey); !ok {
			continue
		}
		out = append(out, progression.Workout{
			ExerciseKey: e.ExerciseKey,
			Sets:        make([]int, max(state.Preferences.SetsPerExercise, 1)),
		})
	}
	for _, s := range state.GymSessions {
		if s.Date.Before(since) {
			continue
		}
		for _, ex := range s.Exercises {
			w := progression.Workout{ExerciseKey: ex.ExerciseID}
			for _, set := range ex.Sets {
				w.Sets = append(w.Sets, set.Reps)
			}
			out = append(out, w)
		}
	}
	return out
}

func goalOf(repScheme string) progression.Goal {
	switch repScheme {
	case "strength":
		return progression.GoalStrength
	case "endurance":
		return progression.GoalEndurance
	default:
		return progression.GoalHypertrophy
	}
}
