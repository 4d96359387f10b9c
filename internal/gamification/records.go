package gamification

import (
	"time"

	"github.com/myrjola/repcoach/internal/history"
)

// PersonalRecord is the best volume of an exercise and when it was reached.
type PersonalRecord struct {
	Volume float64   `json:"volume"`
	Date   time.Time `json:"date"`
}

// GetPersonalRecords keeps the highest volume entry per exercise. On ties the first entry wins.
func GetPersonalRecords(log []history.Entry) map[string]PersonalRecord {
	records := make(map[string]PersonalRecord)
	for _, e := range log {
		if pr, ok := records[e.ExerciseKey]; ok && e.Volume <= pr.Volume {
			continue
		}
		records[e.ExerciseKey] = PersonalRecord{Volume: e.Volume, Date: e.Date}
	}
	return records
}

// Level is the XP based rank of a user.
type Level struct {
	Level int    `json:"level"`
	Title string `json:"title"`
	XP    int    `json:"xp"`
	// CurrentLevelXP and NextLevelXP are the thresholds around XP. NextLevelXP is zero at the top level.
	CurrentLevelXP int `json:"currentLevelXp"`
	NextLevelXP    int `json:"nextLevelXp"`
}

// CalculateLevel awards XP for sessions, completed plans and unlocked badges.
func (e *Engine) CalculateLevel(stats Stats, badgeCount int) Level {
	xp := stats.TotalSessions*e.cfg.XPPerSession + stats.CompletedPlans*e.cfg.XPPerPlan + badgeCount*e.cfg.XPPerBadge

	level := 0
	for i, threshold := range e.cfg.LevelThresholds {
		if xp >= threshold {
			level = i
		}
	}
	out := Level{Level: level + 1, XP: xp}
	if level < len(e.cfg.LevelThresholds) {
		out.CurrentLevelXP = e.cfg.LevelThresholds[level]
	}
	if level+1 < len(e.cfg.LevelThresholds) {
		out.NextLevelXP = e.cfg.LevelThresholds[level+1]
	}
	if level < len(e.cfg.LevelTitles) {
		out.Title = e.cfg.LevelTitles[level]
	}
	return out
}
