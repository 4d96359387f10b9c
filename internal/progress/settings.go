package progress

import (
	"context"
	"log/slog"

	"github.com/myrjola/repcoach/internal/gamification"
	"github.com/myrjola/repcoach/internal/preferences"
)

// PreferencesResult is the validation outcome and its effect on the plan.
type PreferencesResult struct {
	preferences.Result
	RegeneratePlan   bool `json:"regeneratePlan"`
	ProgressAdjusted bool `json:"progressAdjusted"`
	Saved            bool `json:"saved"`
}

// UpdatePreferences overlays in on the stored preferences, validates the result and stores it when every field is
// valid. A shorter program truncates the completed days.
func (t *Tracker) UpdatePreferences(ctx context.Context, in preferences.Input) (PreferencesResult, error) {
	state, err := t.Load(ctx)
	if err != nil {
		return PreferencesResult{}, err
	}
	res := PreferencesResult{Result: t.validator.Validate(in.Over(state.Preferences))}
	if !res.Valid {
		return res, nil
	}
	old, updated := state.Preferences, res.Sanitized
	res.RegeneratePlan = preferences.RequiresPlanRegeneration(old, updated)

	patch := Patch{Preferences: &updated}
	adjusted := preferences.AdjustProgressForPreferenceChange(state.CompletedDays, old, updated)
	if adjusted.Total() != state.CompletedDays.Total() {
		patch.ReplaceCompletedDays = adjusted
		res.ProgressAdjusted = true
	}
	res.Saved = t.save(ctx, patch)
	t.logger.LogAttrs(ctx, slog.LevelInfo, "preferences updated",
		slog.Bool("regenerate_plan", res.RegeneratePlan),
		slog.Bool("progress_adjusted", res.ProgressAdjusted))
	return res, nil
}

// Preferences returns the stored preferences.
func (t *Tracker) Preferences(ctx context.Context) (preferences.Preferences, error) {
	state, err := t.Load(ctx)
	if err != nil {
		return preferences.Preferences{}, err
	}
	return state.Preferences, nil
}

// FreezeOutcome is the result of spending a streak freeze token.
type FreezeOutcome struct {
	gamification.FreezeResult
	Saved bool `json:"saved"`
}

// UseStreakFreeze spends one of this month's tokens. Nothing is saved when none are left.
func (t *Tracker) UseStreakFreeze(ctx context.Context) (FreezeOutcome, error) {
	state, err := t.Load(ctx)
	if err != nil {
		return FreezeOutcome{}, err
	}
	ledger, res := t.game.UseStreakFreeze(state.Freeze, t.localNow(state))
	out := FreezeOutcome{FreezeResult: res}
	if res.Success {
		out.Saved = t.save(ctx, Patch{Freeze: &ledger})
	}
	return out, nil
}

// UpdateAccessibility stores the settings as given.
func (t *Tracker) UpdateAccessibility(ctx context.Context, a Accessibility) (bool, error) {
	if _, err := t.Load(ctx); err != nil {
		return false, err
	}
	return t.save(ctx, Patch{Accessibility: &a}), nil
}
