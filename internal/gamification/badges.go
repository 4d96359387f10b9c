package gamification

import "slices"

// Badge is an achievement unlocked by a predicate over [Stats].
type Badge struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`

	unlocked func(Stats) bool
}

//nolint:gochecknoglobals // fixed badge table.
var badges = []Badge{
	{ID: "first_workout", Name: "First step", Description: "Complete your first workout", Icon: "🎯",
		unlocked: func(s Stats) bool { return s.TotalSessions >= 1 }},
	{ID: "sessions_10", Name: "Getting serious", Description: "Complete 10 workouts", Icon: "💪",
		unlocked: func(s Stats) bool { return s.TotalSessions >= 10 }},
	{ID: "sessions_50", Name: "Half century", Description: "Complete 50 workouts", Icon: "🏅",
		unlocked: func(s Stats) bool { return s.TotalSessions >= 50 }},
	{ID: "sessions_100", Name: "Centurion", Description: "Complete 100 workouts", Icon: "🏆",
		unlocked: func(s Stats) bool { return s.TotalSessions >= 100 }},
	{ID: "streak_3", Name: "On a roll", Description: "Train 3 days in a row", Icon: "🔥",
		unlocked: func(s Stats) bool { return s.CurrentStreak >= 3 }},
	{ID: "streak_7", Name: "Week warrior", Description: "Train 7 days in a row", Icon: "⚡",
		unlocked: func(s Stats) bool { return s.CurrentStreak >= 7 }},
	{ID: "streak_30", Name: "Unstoppable", Description: "Train 30 days in a row", Icon: "👑",
		unlocked: func(s Stats) bool { return s.CurrentStreak >= 30 }},
	{ID: "early_bird", Name: "Early bird", Description: "Work out before 8 in the morning", Icon: "🌅",
		unlocked: func(s Stats) bool { return s.HasEarlyWorkout }},
	{ID: "night_owl", Name: "Night owl", Description: "Work out after 8 in the evening", Icon: "🦉",
		unlocked: func(s Stats) bool { return s.HasLateWorkout }},
	{ID: "plan_complete", Name: "Finisher", Description: "Complete a full 6 week plan", Icon: "🎓",
		unlocked: func(s Stats) bool { return s.CompletedPlans >= 1 }},
	{ID: "all_rounder", Name: "All rounder", Description: "Train 3 different exercises", Icon: "🌟",
		unlocked: func(s Stats) bool { return s.ActivePlans >= 3 }},
}

// Badges returns the full badge table.
func Badges() []Badge {
	return slices.Clone(badges)
}

// GetUnlockedBadges returns the badges whose predicate holds, in table order.
func (e *Engine) GetUnlockedBadges(stats Stats) []Badge {
	var out []Badge
	for _, b := range badges {
		if b.unlocked(stats) {
			out = append(out, b)
		}
	}
	return out
}

// NewlyUnlocked returns the badges of after that are missing from before.
func NewlyUnlocked(before, after []Badge) []Badge {
	var out []Badge
	for _, b := range after {
		if !slices.ContainsFunc(before, func(o Badge) bool { return o.ID == b.ID }) {
			out = append(out, b)
		}
	}
	return out
}
