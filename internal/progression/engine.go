package progression

import (
	"fmt"
	"math"

	"github.com/myrjola/repcoach/internal/catalog"
)

const (
	BasedOnAssessment   = "assessment"
	BasedOnFitnessLevel = "fitness_level"
)

// Engine is safe for concurrent use. It never mutates its inputs.
type Engine struct {
	cfg     Config
	catalog *catalog.Catalog
}

func New(cfg Config, c *catalog.Catalog) *Engine {
	return &Engine{cfg: cfg, catalog: c}
}

// StartingPoint is the first target of an exercise.
type StartingPoint struct {
	StartReps    int    `json:"startReps"`
	EstimatedMax int    `json:"estimatedMax"`
	BasedOn      string `json:"basedOn"`
}

// CalculateStartingPoint uses the max effort assessment when given and otherwise scales the exercise base by the
// fitness level. Unknown levels are treated as beginner.
func (e *Engine) CalculateStartingPoint(ex catalog.Exercise, level FitnessLevel, assessment *int) StartingPoint {
	minimum := e.cfg.MinRepStart
	if ex.Unit == catalog.UnitSeconds {
		minimum = e.cfg.MinTimedStart
	}

	if assessment != nil && *assessment > 0 {
		return StartingPoint{
			StartReps:    max(roundInt(float64(*assessment)*e.cfg.AssessmentRatio), minimum),
			EstimatedMax: *assessment,
			BasedOn:      BasedOnAssessment,
		}
	}

	multiplier, ok := e.cfg.FitnessMultipliers[level]
	if !ok {
		multiplier = e.cfg.FitnessMultipliers[Beginner]
	}
	start := max(roundInt(float64(ex.Base)*multiplier), minimum)
	return StartingPoint{
		StartReps:    start,
		EstimatedMax: roundInt(float64(start) / e.cfg.AssessmentRatio),
		BasedOn:      BasedOnFitnessLevel,
	}
}

// RealisticTarget compares the linear target towards the final goal with what compounded weekly growth allows.
type RealisticTarget struct {
	OriginalTarget        int     `json:"originalTarget"`
	CappedTarget          int     `json:"cappedTarget"`
	WeeklyIncreasePercent float64 `json:"weeklyIncreasePercent"`
	IsRealistic           bool    `json:"isRealistic"`
	Message               string  `json:"message"`
}

// GetRealisticRepTarget interpolates linearly from startValue to finalGoal and caps the result at MaxWeeklyIncrease
// compounded per week.
func (e *Engine) GetRealisticRepTarget(startValue, finalGoal, currentWeek, totalWeeks int) RealisticTarget {
	if startValue <= 0 || totalWeeks <= 0 || currentWeek <= 0 || finalGoal <= startValue {
		return RealisticTarget{
			OriginalTarget:        startValue,
			CappedTarget:          startValue,
			WeeklyIncreasePercent: 0,
			IsRealistic:           true,
			Message:               "Keep building consistency at your current level.",
		}
	}
	week := min(currentWeek, totalWeeks)

	naive := roundInt(float64(startValue) + float64(finalGoal-startValue)*float64(week)/float64(totalWeeks))
	required := math.Pow(float64(naive)/float64(startValue), 1/float64(week)) - 1
	capped := roundInt(float64(startValue) * math.Pow(1+e.cfg.MaxWeeklyIncrease, float64(week)))

	switch {
	case naive > capped:
		return RealisticTarget{
			OriginalTarget:        naive,
			CappedTarget:          capped,
			WeeklyIncreasePercent: percent(e.cfg.MaxWeeklyIncrease),
			IsRealistic:           false,
			Message: fmt.Sprintf("Reaching %d by week %d needs %.0f%% growth per week. Aim for %d instead.",
				naive, week, percent(required), capped),
		}
	case required < e.cfg.MinWeeklyIncrease:
		return RealisticTarget{
			OriginalTarget:        naive,
			CappedTarget:          naive,
			WeeklyIncreasePercent: percent(required),
			IsRealistic:           true,
			Message:               "Conservative progression. You can push a little harder if it feels easy.",
		}
	default:
		return RealisticTarget{
			OriginalTarget:        naive,
			CappedTarget:          naive,
			WeeklyIncreasePercent: percent(required),
			IsRealistic:           true,
			Message:               "On track for a steady weekly increase.",
		}
	}
}

func roundInt(v float64) int {
	return int(math.Round(v))
}

func percent(ratio float64) float64 {
	return math.Round(ratio*1000) / 10 //nolint:mnd // one decimal.
}
