package progress

import (
	"context"
	"log/slog"
	"slices"

	"github.com/myrjola/repcoach/internal/coach"
	"github.com/myrjola/repcoach/internal/errors"
	"github.com/myrjola/repcoach/internal/gamification"
	"github.com/myrjola/repcoach/internal/gym"
	"github.com/myrjola/repcoach/internal/history"
	"github.com/myrjola/repcoach/internal/progression"
	"github.com/myrjola/repcoach/internal/units"
)

var ErrEmptySession = errors.NewSentinel("session has no sets")

const recentGymSessions = 5

// GymSessionInput is a logged gym session. Increment defaults to 2.5 kg.
type GymSessionInput struct {
	Session   gym.Session  `json:"session"`
	Increment units.Weight `json:"increment"`
}

// GymExerciseResult is the coaching outcome of one exercise.
type GymExerciseResult struct {
	Summary    gym.Summary            `json:"summary"`
	PR         coach.GymPRResult      `json:"pr"`
	Suggestion coach.WeightSuggestion `json:"suggestion"`
	Fatigue    coach.DeloadAdvice     `json:"fatigue"`
	// Amrap is set when the exercise ended with an AMRAP set.
	Amrap *progression.AmrapProgression `json:"amrap,omitempty"`
	// NextWeight is the stored working weight for the next session.
	NextWeight units.Weight `json:"nextWeight"`
}

type GymSessionResult struct {
	Exercises []GymExerciseResult      `json:"exercises"`
	NewBadges []gamification.Badge     `json:"newBadges"`
	Streak    gamification.StreakState `json:"streak"`
	Saved     bool                     `json:"saved"`
}

// LogGymSession records the session, checks each exercise's top set for records and suggests the next weight.
// An AMRAP set that beats the prescribed reps can raise the stored weight beyond the suggestion unless the coach
// asked for a decrease or deload. Each exercise also enters the session log with its volume in kilograms.
func (t *Tracker) LogGymSession(ctx context.Context, in GymSessionInput) (GymSessionResult, error) {
	session := in.Session
	sets := 0
	for _, ex := range session.Exercises {
		sets += len(ex.Sets)
	}
	if sets == 0 {
		return GymSessionResult{}, errors.Wrap(ErrEmptySession, "log gym session")
	}
	increment := in.Increment
	if increment.Value <= 0 {
		increment = units.Kg(2.5) //nolint:mnd // smallest common plate pair.
	}

	state, err := t.Load(ctx)
	if err != nil {
		return GymSessionResult{}, err
	}
	now := t.localNow(state)
	if session.Date.IsZero() {
		session.Date = now
	}

	badgesBefore := t.game.GetUnlockedBadges(t.game.CalculateStats(state.CompletedDays, state.History, now))
	records := gym.Records(state.GymSessions)
	patch := Patch{
		AppendGymSessions: []gym.Session{session},
		GymTargets:        map[string]GymTarget{},
	}
	res := GymSessionResult{Exercises: []GymExerciseResult{}}
	prs := 0
	for i, sum := range gym.Summarize(session) {
		if len(session.Exercises[i].Sets) == 0 {
			continue
		}
		top := sum.TopSet
		targetReps := t.targetReps(session, sum.ExerciseID, top.Reps)
		recent := gym.RecentSummaries(state.GymSessions, sum.ExerciseID, recentGymSessions)
		suggestion := t.coach.GetWeightSuggestion(coach.WeightInput{
			TargetReps:     targetReps,
			ActualReps:     top.Reps,
			RPE:            sum.AverageRPE,
			CurrentWeight:  top.Weight,
			Increment:      increment,
			RecentSessions: recent,
		})
		pr := t.coach.CheckForGymPR(sum.ExerciseID, top.Weight, top.Reps, records)
		if pr.IsNewPR {
			prs++
		}
		withToday := append(slices.Clone(recent), coach.SessionSummary{RPE: sum.AverageRPE, Volume: sum.VolumeKg})
		exercise := GymExerciseResult{
			Summary:    sum,
			PR:         pr,
			Suggestion: suggestion,
			Fatigue:    t.coach.CheckDeloadNeeded(withToday),
			NextWeight: suggestion.NewWeight,
		}
		if amrap, ok := lastAmrap(session.Exercises[i].Sets); ok {
			p := t.progression.CalculateAmrapProgression(amrap.Reps, targetReps, increment.Kilograms())
			exercise.Amrap = &p
			if suggestion.Action == coach.ActionIncrease || suggestion.Action == coach.ActionMaintain {
				if kg := amrap.Weight.Kilograms() + p.Increment; kg > exercise.NextWeight.Kilograms() {
					exercise.NextWeight = units.Kg(kg).In(suggestion.NewWeight.Unit)
				}
			}
		}
		res.Exercises = append(res.Exercises, exercise)

		reps := make([]int, 0, len(session.Exercises[i].Sets))
		for _, s := range session.Exercises[i].Sets {
			reps = append(reps, s.Reps)
		}
		patch.GymTargets[sum.ExerciseID] = GymTarget{WeightKg: exercise.NextWeight.Kilograms(), Reps: reps}
		patch.AppendHistory = append(patch.AppendHistory,
			history.NewEntry(sum.ExerciseID, session.Date, sum.VolumeKg, string(units.Kilograms)))
	}

	state.Apply(patch)
	res.NewBadges = gamification.NewlyUnlocked(badgesBefore,
		t.game.GetUnlockedBadges(t.game.CalculateStats(state.CompletedDays, state.History, now)))
	res.Streak = t.game.CalculateStreakWithGrace(state.History, now)
	res.Saved = t.save(ctx, patch)

	t.observer.GymSessionLogged(len(res.Exercises), prs)
	if len(res.NewBadges) > 0 {
		t.observer.BadgesUnlocked(len(res.NewBadges))
	}
	t.logger.LogAttrs(ctx, slog.LevelInfo, "gym session logged",
		slog.String("program_id", session.ProgramID),
		slog.Int("exercises", len(res.Exercises)),
		slog.Int("prs", prs),
		slog.Bool("saved", res.Saved))
	return res, nil
}

func lastAmrap(sets []gym.Set) (gym.Set, bool) {
	for i := len(sets) - 1; i >= 0; i-- {
		if sets[i].AMRAP {
			return sets[i], true
		}
	}
	return gym.Set{}, false
}

// targetReps looks up the prescribed reps in the session's program day and falls back to performed.
func (t *Tracker) targetReps(session gym.Session, exerciseID string, performed int) int {
	program, ok := t.catalog.GymProgram(session.ProgramID)
	if !ok {
		return performed
	}
	for _, day := range program.Days {
		if day.Name != session.DayName {
			continue
		}
		for _, slot := range day.Exercises {
			if slot.ExerciseID == exerciseID {
				return slot.TargetReps
			}
		}
	}
	return performed
}
