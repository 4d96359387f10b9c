package gamification

import (
	"time"

	"github.com/myrjola/repcoach/internal/history"
)

// Stats are the aggregates badges are evaluated against.
type Stats struct {
	TotalSessions   int  `json:"totalSessions"`
	CompletedPlans  int  `json:"completedPlans"`
	ActivePlans     int  `json:"activePlans"`
	CurrentStreak   int  `json:"currentStreak"`
	HasEarlyWorkout bool `json:"hasEarlyWorkout"`
	HasLateWorkout  bool `json:"hasLateWorkout"`
}

// CalculateStats aggregates the completed days and the session log as seen at now. Hours and calendar days are
// evaluated in now's location.
func (e *Engine) CalculateStats(completed history.CompletedDays, log []history.Entry, now time.Time) Stats {
	var s Stats
	for _, ids := range completed {
		s.TotalSessions += len(ids)
		if len(ids) > 0 {
			s.ActivePlans++
		}
		if len(ids) >= e.cfg.ProgramLength {
			s.CompletedPlans++
		}
	}
	for _, entry := range log {
		hour := entry.Date.In(now.Location()).Hour()
		if hour < e.cfg.EarlyHour {
			s.HasEarlyWorkout = true
		}
		if hour >= e.cfg.LateHour {
			s.HasLateWorkout = true
		}
	}
	s.CurrentStreak = e.currentStreak(log, now)
	return s
}

// currentStreak counts consecutive distinct workout days ending today or yesterday.
func (e *Engine) currentStreak(log []history.Entry, now time.Time) int {
	days := history.DistinctDays(log, now.Location())
	if len(days) == 0 {
		return 0
	}
	today := history.StartOfDay(now, now.Location())
	if history.DaysBetween(today, days[0]) > e.cfg.StreakGapDays {
		return 0
	}
	streak := 1
	for i := 1; i < len(days); i++ {
		if history.DaysBetween(days[i-1], days[i]) > e.cfg.StreakGapDays {
			break
		}
		streak++
	}
	return streak
}
