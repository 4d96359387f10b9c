// Package progression computes starting points, week-by-week targets, progression tree moves, deloads, rep scheme
// evolution, volume landmarks and AMRAP based increments.
package progression

// FitnessLevel is the self-reported training background.
type FitnessLevel string

const (
	Beginner     FitnessLevel = "beginner"
	Intermediate FitnessLevel = "intermediate"
	Advanced     FitnessLevel = "advanced"
)

// Goal selects the weekly volume landmarks.
type Goal string

const (
	GoalHypertrophy Goal = "hypertrophy"
	GoalStrength    Goal = "strength"
	GoalEndurance   Goal = "endurance"
)

// Landmarks are the minimum effective and maximum recoverable weekly sets per muscle group.
type Landmarks struct {
	MEV int
	MRV int
}

// Config holds every threshold the engine uses.
type Config struct {
	// FitnessMultipliers scale an exercise's base value when no assessment is available.
	FitnessMultipliers map[FitnessLevel]float64
	// AssessmentRatio is the share of a max effort test used as the starting value.
	AssessmentRatio float64
	MinTimedStart   int
	MinRepStart     int

	// MinWeeklyIncrease and MaxWeeklyIncrease bound realistic compounded weekly growth.
	MinWeeklyIncrease float64
	MaxWeeklyIncrease float64

	// LookBack is the number of recent workouts inspected for progression and regression.
	LookBack   int
	RepsBuffer int
	MinSets    int
	// RegressionThreshold short sessions within LookBack trigger a regression.
	RegressionThreshold int
	// RegressionShortfall is the share of the target reps below which a session counts as short.
	RegressionShortfall float64

	DeloadAfterMisses int
	DeloadWindow      int
	DeloadReduction   float64
	MinDeloadReps     int
	MinDeloadSeconds  int

	// DeloadsPerSchemeStage deloads move the rep scheme one stage forward.
	DeloadsPerSchemeStage int

	AmrapDoubleMargin int
	AmrapTripleMargin int

	VolumeLandmarks map[Goal]Landmarks
}

func DefaultConfig() Config {
	return Config{
		FitnessMultipliers: map[FitnessLevel]float64{
			Beginner:     0.7,
			Intermediate: 1.0,
			Advanced:     1.4,
		},
		AssessmentRatio:       0.7,
		MinTimedStart:         10,
		MinRepStart:           1,
		MinWeeklyIncrease:     0.05,
		MaxWeeklyIncrease:     0.10,
		LookBack:              3,
		RepsBuffer:            2,
		MinSets:               3,
		RegressionThreshold:   3,
		RegressionShortfall:   0.7,
		DeloadAfterMisses:     3,
		DeloadWindow:          6,
		DeloadReduction:       0.10,
		MinDeloadReps:         3,
		MinDeloadSeconds:      10,
		DeloadsPerSchemeStage: 2,
		AmrapDoubleMargin:     5,
		AmrapTripleMargin:     10,
		VolumeLandmarks: map[Goal]Landmarks{
			GoalHypertrophy: {MEV: 10, MRV: 20},
			GoalStrength:    {MEV: 6, MRV: 15},
			GoalEndurance:   {MEV: 8, MRV: 25},
		},
	}
}
