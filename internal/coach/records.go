package coach

import (
	"math"
	"time"

	"github.com/myrjola/repcoach/internal/gamification"
	"github.com/myrjola/repcoach/internal/units"
)

// PRResult tells whether a session volume is a new personal record.
type PRResult struct {
	IsNewPR            bool    `json:"isNewPR"`
	PreviousPR         float64 `json:"previousPR"`
	Improvement        float64 `json:"improvement"`
	ImprovementPercent float64 `json:"improvementPercent"`
	Message            string  `json:"message,omitempty"`
}

// CheckForNewPR compares volume with the stored record of exerciseKey. A zero volume is never a record, the first
// positive volume always is, and later volumes must be strictly greater.
func (c *Coach) CheckForNewPR(
	exerciseKey string,
	volume float64,
	records map[string]gamification.PersonalRecord,
) PRResult {
	if volume <= 0 {
		return PRResult{}
	}
	prev, ok := records[exerciseKey]
	if !ok {
		return PRResult{
			IsNewPR:     true,
			Improvement: volume,
			Message:     c.message(MessageFirstPR),
		}
	}
	if volume <= prev.Volume {
		return PRResult{PreviousPR: prev.Volume}
	}
	improvement := volume - prev.Volume
	res := PRResult{
		IsNewPR:     true,
		PreviousPR:  prev.Volume,
		Improvement: improvement,
		Message:     c.message(MessagePR),
	}
	if prev.Volume > 0 {
		res.ImprovementPercent = math.Round(improvement/prev.Volume*1000) / 10 //nolint:mnd // one decimal.
	}
	return res
}

// GymRecord holds the heaviest weight lifted for an exercise with the most reps done at it, and the best estimated
// one rep max of any set, which may come from a lighter set.
type GymRecord struct {
	WeightKg float64   `json:"weightKg"`
	Reps     int       `json:"reps"`
	Best1RM  float64   `json:"estimated1RM"`
	Date     time.Time `json:"date,omitzero"`
}

// EstimatedOneRepMax uses the Epley formula.
func EstimatedOneRepMax(weightKg float64, reps int) float64 {
	if reps <= 0 {
		return 0
	}
	return weightKg * (1 + float64(reps)/30) //nolint:mnd // Epley.
}

// OneRepMax is the best estimated one rep max of the record.
func (r GymRecord) OneRepMax() float64 {
	return max(r.Best1RM, EstimatedOneRepMax(r.WeightKg, r.Reps))
}

// Add folds a set into the record and reports whether any part of it improved.
func (r GymRecord) Add(weightKg float64, reps int, date time.Time) (GymRecord, bool) {
	if reps <= 0 {
		return r, false
	}
	prev := r.OneRepMax()
	improved := false
	switch {
	case r.Reps == 0 || weightKg > r.WeightKg+weightEpsilon:
		r.WeightKg, r.Reps = weightKg, reps
		improved = true
	case math.Abs(weightKg-r.WeightKg) <= weightEpsilon && reps > r.Reps:
		r.Reps = reps
		improved = true
	}
	e1rm := EstimatedOneRepMax(weightKg, reps)
	if e1rm > prev+weightEpsilon {
		improved = true
	}
	r.Best1RM = max(prev, e1rm)
	if improved {
		r.Date = date
	}
	return r, improved
}

// Gym PR types.
const (
	PRFirst     = "first"
	PRWeight    = "weight"
	PRReps      = "reps"
	PROneRepMax = "1rm"
)

// GymPRResult tells whether a set is a gym record and which kind.
type GymPRResult struct {
	IsNewPR      bool    `json:"isNewPR"`
	Type         string  `json:"type,omitempty"`
	Message      string  `json:"message,omitempty"`
	Estimated1RM float64 `json:"estimated1RM"`
	Previous1RM  float64 `json:"previous1RM"`
}

const weightEpsilon = 1e-9

// CheckForGymPR compares a set with the stored record. The first matching condition wins: first lift, a weight above
// the heaviest lifted at no fewer reps than were done with it, more reps at the heaviest weight, and finally a higher
// estimated one rep max than any earlier set.
func (c *Coach) CheckForGymPR(exerciseID string, weight units.Weight, reps int, records map[string]GymRecord) GymPRResult {
	kg := weight.Kilograms()
	if reps <= 0 || kg < 0 {
		return GymPRResult{}
	}
	estimated := EstimatedOneRepMax(kg, reps)
	prev, ok := records[exerciseID]
	if !ok {
		return GymPRResult{IsNewPR: true, Type: PRFirst, Message: c.message(MessageFirstPR), Estimated1RM: estimated}
	}

	res := GymPRResult{Estimated1RM: estimated, Previous1RM: prev.OneRepMax()}
	switch {
	case kg > prev.WeightKg+weightEpsilon && reps >= prev.Reps:
		res.IsNewPR, res.Type, res.Message = true, PRWeight, c.message(MessageWeightPR)
	case math.Abs(kg-prev.WeightKg) <= weightEpsilon && reps > prev.Reps:
		res.IsNewPR, res.Type, res.Message = true, PRReps, c.message(MessageRepPR)
	case estimated > res.Previous1RM+weightEpsilon:
		res.IsNewPR, res.Type, res.Message = true, PROneRepMax, c.message(MessageOneRepMax)
	}
	return res
}
