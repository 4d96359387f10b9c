package coach

import (
	"fmt"
	"math"

	"github.com/myrjola/repcoach/internal/units"
)

// SessionSummary is the per-exercise outcome of an earlier gym session.
type SessionSummary struct {
	RPE    float64 `json:"rpe"`
	Volume float64 `json:"volume"`
}

// WeightInput describes the session just performed.
type WeightInput struct {
	TargetReps    int
	ActualReps    int
	RPE           float64
	CurrentWeight units.Weight
	Increment     units.Weight
	// RecentSessions are earlier sessions of the exercise, oldest first.
	RecentSessions []SessionSummary
}

// Suggestion actions.
const (
	ActionIncrease = "increase"
	ActionDecrease = "decrease"
	ActionMaintain = "maintain"
	ActionDeload   = "deload"
)

// Confidence levels.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
)

// SuggestionMetrics explain the decision.
type SuggestionMetrics struct {
	RPE                float64 `json:"rpe"`
	RepDifference      int     `json:"repDifference"`
	ConsecutiveHighRPE int     `json:"consecutiveHighRpe"`
}

// WeightSuggestion is expressed in the unit of the current weight.
type WeightSuggestion struct {
	Action     string            `json:"action"`
	NewWeight  units.Weight      `json:"newWeight"`
	Confidence string            `json:"confidence"`
	Message    string            `json:"message"`
	Metrics    SuggestionMetrics `json:"metrics"`
}

// GetWeightSuggestion decides the next weight. A run of HighRPEStreak hard recent sessions deloads regardless of
// today. Otherwise an easy session beating the target by RepMargin increases by one increment, a hard session short
// of the target decreases by one increment, and anything else maintains. Weights are computed in kilograms.
func (c *Coach) GetWeightSuggestion(in WeightInput) WeightSuggestion {
	current := in.CurrentWeight.Kilograms()
	increment := in.Increment.Kilograms()
	metrics := SuggestionMetrics{
		RPE:                in.RPE,
		RepDifference:      in.ActualReps - in.TargetReps,
		ConsecutiveHighRPE: c.consecutiveHighRPE(in.RecentSessions),
	}
	suggest := func(action string, kg float64, confidence, key string) WeightSuggestion {
		return WeightSuggestion{
			Action:     action,
			NewWeight:  units.Kg(math.Max(kg, 0)).In(displayUnit(in.CurrentWeight)),
			Confidence: confidence,
			Message:    c.message(key),
			Metrics:    metrics,
		}
	}

	switch {
	case metrics.ConsecutiveHighRPE >= c.cfg.HighRPEStreak:
		deloaded := units.RoundTo(current*(1-c.cfg.DeloadReduction), c.cfg.WeightStep)
		return suggest(ActionDeload, deloaded, ConfidenceHigh, MessageDeload)
	case in.RPE <= c.cfg.LowRPE && metrics.RepDifference >= c.cfg.RepMargin:
		return suggest(ActionIncrease, current+increment, ConfidenceHigh, MessageIncrease)
	case in.RPE >= c.cfg.HighRPE && metrics.RepDifference < 0:
		return suggest(ActionDecrease, current-increment, ConfidenceHigh, MessageDecrease)
	default:
		return suggest(ActionMaintain, current, ConfidenceMedium, MessageMaintain)
	}
}

func displayUnit(w units.Weight) units.Unit {
	if w.Unit == "" {
		return units.Kilograms
	}
	return w.Unit
}

func (c *Coach) consecutiveHighRPE(recent []SessionSummary) int {
	n := 0
	for i := len(recent) - 1; i >= 0 && recent[i].RPE >= c.cfg.HighRPE; i-- {
		n++
	}
	return n
}

// DeloadAdvice is the fatigue verdict over recent sessions.
type DeloadAdvice struct {
	NeedsDeload bool    `json:"needsDeload"`
	Type        string  `json:"type,omitempty"`
	Reason      string  `json:"reason"`
	AverageRPE  float64 `json:"averageRpe"`
	Message     string  `json:"message,omitempty"`
}

const reasonNotEnoughData = "Not enough data yet"

// CheckDeloadNeeded flags fatigue when the last MinDeloadSessions sessions average FatigueRPE or more while volume
// did not increase from the first to the last of them. The window is at least one session.
func (c *Coach) CheckDeloadNeeded(recent []SessionSummary) DeloadAdvice {
	size := max(c.cfg.MinDeloadSessions, 1)
	if len(recent) < size {
		return DeloadAdvice{Reason: reasonNotEnoughData}
	}
	window := recent[len(recent)-size:]
	total := 0.0
	for _, s := range window {
		total += s.RPE
	}
	avg := total / float64(len(window))
	rounded := math.Round(avg*10) / 10 //nolint:mnd // one decimal.

	if avg >= c.cfg.FatigueRPE && window[len(window)-1].Volume <= window[0].Volume {
		return DeloadAdvice{
			NeedsDeload: true,
			Type:        "fatigue",
			Reason:      fmt.Sprintf("Average RPE %.1f over %d sessions without volume gains.", rounded, len(window)),
			AverageRPE:  rounded,
			Message:     c.message(MessageFatigue),
		}
	}
	return DeloadAdvice{Reason: "Recovery looks good.", AverageRPE: rounded}
}
