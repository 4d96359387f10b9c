package progress

import (
	"context"
	"log/slog"
	"math"
	"slices"
	"time"

	"github.com/myrjola/repcoach/internal/catalog"
	"github.com/myrjola/repcoach/internal/coach"
	"github.com/myrjola/repcoach/internal/errors"
	"github.com/myrjola/repcoach/internal/gamification"
	"github.com/myrjola/repcoach/internal/history"
	"github.com/myrjola/repcoach/internal/progression"
	"github.com/myrjola/repcoach/internal/schedule"
)

var (
	ErrUnknownExercise = errors.NewSentinel("unknown exercise")
	ErrUnknownDay      = errors.NewSentinel("unknown day")
	ErrPlanComplete    = errors.NewSentinel("plan already complete")
)

// PlannedSession is a due session with the realistic target for the user's fitness level. While a deload is pending
// for the exercise both targets are reduced by DeloadFactor.
type PlannedSession struct {
	schedule.NextSession
	Realistic    progression.RealisticTarget `json:"realistic"`
	Deload       bool                        `json:"deload"`
	DeloadFactor float64                     `json:"deloadFactor,omitempty"`
}

// TodayPlan lists the sessions due today.
type TodayPlan struct {
	Date        string            `json:"date"`
	TrainingDay bool              `json:"trainingDay"`
	Sessions    []PlannedSession  `json:"sessions"`
	SchemeStage catalog.RepScheme `json:"schemeStage"`
}

// Today builds the daily stack. A non-empty activeProgram limits it to the program's exercises.
func (t *Tracker) Today(ctx context.Context, activeProgram string) (TodayPlan, error) {
	state, err := t.Load(ctx)
	if err != nil {
		return TodayPlan{}, err
	}
	now := t.localNow(state)
	prefs := state.Preferences
	plan := TodayPlan{
		Date:        now.Format(time.DateOnly),
		TrainingDay: schedule.IsTrainingDay(now, prefs.PreferredDays),
		Sessions:    []PlannedSession{},
		SchemeStage: t.progression.CurrentRepScheme(state.SchemeStage),
	}
	for _, next := range t.scheduler.DailyStack(now, state.CompletedDays, activeProgram, prefs.PreferredDays) {
		ex, _ := t.catalog.Exercise(next.ExerciseKey)
		start := t.progression.CalculateStartingPoint(ex, progression.FitnessLevel(prefs.FitnessLevel), nil)
		planned := PlannedSession{
			NextSession: next,
			Realistic:   t.progression.GetRealisticRepTarget(start.StartReps, ex.FinalGoal, next.Week, catalog.Weeks),
		}
		if factor, ok := state.SchemeStage.DeloadFactor(ex.Key); ok {
			planned.Deload = true
			planned.DeloadFactor = factor
			planned.Target = t.progression.ApplyDeload(planned.Target, factor, ex.Unit)
			planned.Realistic.CappedTarget = t.progression.ApplyDeload(planned.Realistic.CappedTarget, factor, ex.Unit)
		}
		plan.Sessions = append(plan.Sessions, planned)
	}
	return plan, nil
}

// SessionInput describes a completed bodyweight session. DayID defaults to the next open day. Volume is the sum of
// Sets when sets are given.
type SessionInput struct {
	ExerciseKey string  `json:"exerciseKey"`
	DayID       string  `json:"dayId"`
	Sets        []int   `json:"sets"`
	Volume      float64 `json:"volume"`
}

// Variation is the progression tree verdict for an exercise that has easier and harder variants.
type Variation struct {
	Position    progression.Position `json:"position"`
	Progression progression.TreeMove `json:"progression"`
	Regression  progression.TreeMove `json:"regression"`
}

// SessionResult is everything that changed by logging a session.
type SessionResult struct {
	Added               bool                       `json:"added"`
	Entry               history.Entry              `json:"entry"`
	PR                  coach.PRResult             `json:"pr"`
	Deload              progression.DeloadDecision `json:"deload"`
	SchemeStage         catalog.RepScheme          `json:"schemeStage"`
	SchemeStageAdvanced bool                       `json:"schemeStageAdvanced"`
	Variation           *Variation                 `json:"variation,omitempty"`
	NewBadges           []gamification.Badge       `json:"newBadges"`
	Stats               gamification.Stats         `json:"stats"`
	Streak              gamification.StreakState   `json:"streak"`
	Comeback            *gamification.Comeback     `json:"comeback"`
	Next                *schedule.NextSession      `json:"next"`
	Saved               bool                       `json:"saved"`
}

// LogSession marks the day completed, appends the session to the log and recomputes records, deloads, badges and
// the streak. Completing an already completed day still logs the session.
//
// A session logged while a deload is pending is marked as the deload session and clears it. A new deload is
// prescribed when the misses reach the threshold and counts towards the rep scheme evolution.
func (t *Tracker) LogSession(ctx context.Context, in SessionInput) (SessionResult, error) {
	ex, ok := t.catalog.Exercise(in.ExerciseKey)
	if !ok {
		return SessionResult{}, errors.Wrap(ErrUnknownExercise, "log session", slog.String("exercise_key", in.ExerciseKey))
	}
	state, err := t.Load(ctx)
	if err != nil {
		return SessionResult{}, err
	}

	dayID := in.DayID
	if dayID == "" {
		next := schedule.NextSessionForExercise(ex, state.CompletedDays[ex.Key])
		if next == nil {
			return SessionResult{}, errors.Wrap(ErrPlanComplete, "log session", slog.String("exercise_key", ex.Key))
		}
		dayID = next.DayID
	}
	dayIndex := slices.Index(ex.DayIDs(), dayID)
	if dayIndex < 0 {
		return SessionResult{}, errors.Wrap(ErrUnknownDay, "log session", slog.String("day_id", dayID))
	}

	volume := in.Volume
	if len(in.Sets) > 0 {
		volume = 0
		for _, s := range in.Sets {
			volume += float64(s)
		}
	}
	now := t.localNow(state)
	entry := history.NewEntry(ex.Key, now, volume, string(ex.Unit))
	entry.Sets = slices.Clone(in.Sets)

	statsBefore := t.game.CalculateStats(state.CompletedDays, state.History, now)
	badgesBefore := t.game.GetUnlockedBadges(statsBefore)
	pr := t.coach.CheckForNewPR(ex.Key, entry.Volume, gamification.GetPersonalRecords(state.History))

	res := SessionResult{Added: !containsDay(state, ex.Key, dayID), PR: pr}
	patch := Patch{AddDays: []DayRef{{ExerciseKey: ex.Key, DayID: dayID}}}
	stage := state.SchemeStage
	if _, pending := stage.DeloadFactor(ex.Key); pending {
		entry.Deload = true
		stage = stage.EndDeload(ex.Key)
		patch.SchemeStage = &stage
	}
	res.Entry = entry
	patch.AppendHistory = []history.Entry{entry}
	state.Apply(patch)

	recent := workouts(history.ForExercise(state.History, ex.Key))
	target := ex.Target(dayIndex/catalog.DaysPerWeek+1, dayIndex%catalog.DaysPerWeek+1)
	res.Deload = t.progression.CheckDeloadNeeded(recent, target)
	if res.Deload.NeedsDeload {
		next, advanced := t.progression.RecordDeload(stage)
		next = next.StartDeload(ex.Key, res.Deload.Factor)
		patch.SchemeStage = &next
		state.SchemeStage = next
		res.SchemeStageAdvanced = advanced
	}
	res.SchemeStage = t.progression.CurrentRepScheme(state.SchemeStage)
	if pos, ok := t.progression.FindCurrentLevel(ex.Key, ex.Key); ok {
		res.Variation = &Variation{
			Position:    pos,
			Progression: t.progression.CheckProgressionReady(pos, recent),
			Regression:  t.progression.CheckRegressionNeeded(pos, recent),
		}
	}

	res.Stats = t.game.CalculateStats(state.CompletedDays, state.History, now)
	res.NewBadges = gamification.NewlyUnlocked(badgesBefore, t.game.GetUnlockedBadges(res.Stats))
	res.Streak = t.game.CalculateStreakWithGrace(state.History, now)
	res.Comeback = t.game.CheckComeback(state.History, now.Location())
	res.Next = schedule.NextSessionForExercise(ex, state.CompletedDays[ex.Key])
	res.Saved = t.save(ctx, patch)

	t.observer.SessionLogged(ex.Key, pr.IsNewPR)
	if len(res.NewBadges) > 0 {
		t.observer.BadgesUnlocked(len(res.NewBadges))
	}
	t.logger.LogAttrs(ctx, slog.LevelInfo, "session logged",
		slog.String("exercise_key", ex.Key),
		slog.String("day_id", dayID),
		slog.Float64("volume", entry.Volume),
		slog.Bool("deload", entry.Deload),
		slog.Bool("new_pr", pr.IsNewPR),
		slog.Bool("saved", res.Saved))
	return res, nil
}

func containsDay(state State, key, dayID string) bool {
	return slices.Contains(state.CompletedDays[key], dayID)
}

// workouts converts log entries into workouts for the progression engine. Entries without per-set data count as a
// single set of their volume.
func workouts(entries []history.Entry) []progression.Workout {
	out := make([]progression.Workout, 0, len(entries))
	for _, e := range entries {
		sets := slices.Clone(e.Sets)
		if len(sets) == 0 {
			sets = []int{int(math.Round(e.Volume))}
		}
		out = append(out, progression.Workout{
			ExerciseKey: e.ExerciseKey,
			Sets:        sets,
			Deload:      e.Deload,
		})
	}
	return out
}
