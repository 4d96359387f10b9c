package gamification

import (
	"fmt"
	"math"
	"time"

	"github.com/myrjola/repcoach/internal/history"
)

// StreakState is derived from the session log on every call.
type StreakState struct {
	Streak         int       `json:"streak"`
	GraceDaysUsed  int       `json:"graceDaysUsed"`
	GraceRemaining int       `json:"graceRemaining"`
	IsAtRisk       bool      `json:"isAtRisk"`
	Message        string    `json:"message"`
	LastWorkout    time.Time `json:"lastWorkout,omitzero"`
}

// CalculateStreakWithGrace counts consecutive workout days while the missed days in between, including the days
// since the last workout, stay within GraceDays in total. The streak is at risk when there was no workout today.
func (e *Engine) CalculateStreakWithGrace(log []history.Entry, now time.Time) StreakState {
	days := history.DistinctDays(log, now.Location())
	if len(days) == 0 {
		return StreakState{
			GraceRemaining: e.cfg.GraceDays,
			Message:        "Start your streak with a workout today!",
		}
	}

	today := history.StartOfDay(now, now.Location())
	used := missedDays(today, days[0])
	if used > e.cfg.GraceDays {
		return StreakState{
			GraceRemaining: e.cfg.GraceDays,
			Message:        "Your streak ended. Every streak starts with a single workout!",
			LastWorkout:    days[0],
		}
	}

	streak := 1
	for i := 1; i < len(days); i++ {
		missed := missedDays(days[i-1], days[i])
		if used+missed > e.cfg.GraceDays {
			break
		}
		used += missed
		streak++
	}

	s := StreakState{
		Streak:         streak,
		GraceDaysUsed:  used,
		GraceRemaining: e.cfg.GraceDays - used,
		IsAtRisk:       !days[0].Equal(today),
		LastWorkout:    days[0],
	}
	switch {
	case s.IsAtRisk && s.GraceRemaining == 0:
		s.Message = fmt.Sprintf("Last chance! Work out today to save your %d-day streak.", streak)
	case s.IsAtRisk:
		s.Message = fmt.Sprintf("Work out today to keep your %d-day streak going.", streak)
	default:
		s.Message = fmt.Sprintf("%d-day streak! Keep it up!", streak)
	}
	return s
}

// missedDays is the number of calendar days strictly between two workout days.
func missedDays(later, earlier time.Time) int {
	return max(int(math.Round(history.DaysBetween(later, earlier)))-1, 0)
}

// Streak statuses.
const (
	StatusInactive  = "inactive"
	StatusDanger    = "danger"
	StatusWarning   = "warning"
	StatusActive    = "active"
	StatusHot       = "hot"
	StatusLegendary = "legendary"
)

// StreakStatus is the presentation of a streak.
type StreakStatus struct {
	Status string `json:"status"`
	Emoji  string `json:"emoji"`
	Color  string `json:"color"`
}

// GetStreakStatus maps the streak to a status. Risk is evaluated before length.
func (e *Engine) GetStreakStatus(s StreakState) StreakStatus {
	switch {
	case s.Streak == 0:
		return StreakStatus{Status: StatusInactive, Emoji: "💤", Color: "gray"}
	case s.IsAtRisk && s.GraceRemaining == 0:
		return StreakStatus{Status: StatusDanger, Emoji: "🚨", Color: "red"}
	case s.IsAtRisk:
		return StreakStatus{Status: StatusWarning, Emoji: "⚠️", Color: "orange"}
	case s.Streak >= e.cfg.LegendaryStreak:
		return StreakStatus{Status: StatusLegendary, Emoji: "👑", Color: "purple"}
	case s.Streak >= e.cfg.HotStreak:
		return StreakStatus{Status: StatusHot, Emoji: "🔥", Color: "orange"}
	default:
		return StreakStatus{Status: StatusActive, Emoji: "✨", Color: "green"}
	}
}

// Comeback is surfaced when the user returns after a long break.
type Comeback struct {
	Type       string `json:"type"`
	DaysMissed int    `json:"daysMissed"`
}

// CheckComeback returns a comeback when the two most recent workout days are ComebackGapDays or more apart. The
// distance to today is not considered.
func (e *Engine) CheckComeback(log []history.Entry, loc *time.Location) *Comeback {
	days := history.DistinctDays(log, loc)
	if len(days) < 2 { //nolint:mnd // two most recent days.
		return nil
	}
	gap := int(math.Round(history.DaysBetween(days[0], days[1])))
	if gap < e.cfg.ComebackGapDays {
		return nil
	}
	return &Comeback{Type: "comeback", DaysMissed: gap}
}
