// Package gamification derives stats, badges, streaks, comebacks, personal records and levels from the session log.
package gamification

// Config holds the thresholds of the engine.
type Config struct {
	// ProgramLength is the number of completed days that completes a plan.
	ProgramLength int
	// EarlyHour and LateHour bound early bird (<) and night owl (>=) workouts in local time.
	EarlyHour int
	LateHour  int
	// StreakGapDays is the largest gap between consecutive workout days that keeps a plain streak alive.
	StreakGapDays float64
	// GraceDays is how many missed days a streak may absorb in total.
	GraceDays            int
	HotStreak            int
	LegendaryStreak      int
	FreezeTokensPerMonth int
	ComebackGapDays      int
	XPPerSession         int
	XPPerPlan            int
	XPPerBadge           int
	// LevelThresholds is the total XP needed for each level starting from level 1.
	LevelThresholds []int
	LevelTitles     []string
}

func DefaultConfig() Config {
	return Config{
		ProgramLength:        18,
		EarlyHour:            8,
		LateHour:             20,
		StreakGapDays:        1.1,
		GraceDays:            2,
		HotStreak:            7,
		LegendaryStreak:      30,
		FreezeTokensPerMonth: 3,
		ComebackGapDays:      7,
		XPPerSession:         10,
		XPPerPlan:            50,
		XPPerBadge:           25,
		LevelThresholds:      []int{0, 50, 150, 300, 500, 800, 1200, 1700, 2300, 3000},
		LevelTitles: []string{
			"Newcomer", "Mover", "Regular", "Committed", "Athlete",
			"Veteran", "Elite", "Champion", "Master", "Legend",
		},
	}
}

// Engine is stateless apart from its configuration.
type Engine struct {
	cfg Config
}

func New(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}
