// Package coach evaluates single sessions: personal records, weight suggestions from RPE and reps, and fatigue.
package coach

import (
	"math/rand/v2"
	"slices"
	"sync"
)

// Config holds the thresholds of the coach.
type Config struct {
	HighRPE float64
	LowRPE  float64
	// RepMargin is how many reps above target an easy set must reach to earn an increase.
	RepMargin int
	// HighRPEStreak consecutive sessions at HighRPE or above trigger a deload.
	HighRPEStreak   int
	DeloadReduction float64
	// WeightStep is the rounding step of suggested weights in kilograms.
	WeightStep float64
	// MinDeloadSessions is the sample size needed for fatigue detection.
	MinDeloadSessions int
	FatigueRPE        float64
}

func DefaultConfig() Config {
	return Config{
		HighRPE:           9,
		LowRPE:            7,
		RepMargin:         2,
		HighRPEStreak:     3,
		DeloadReduction:   0.10,
		WeightStep:        0.5,
		MinDeloadSessions: 5,
		FatigueRPE:        8.5,
	}
}

// Picker chooses a message from a pool.
type Picker interface {
	Pick(pool []string) string
}

type randomPicker struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandomPicker picks uniformly with a PCG source seeded by seed.
func NewRandomPicker(seed uint64) Picker {
	return &randomPicker{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))} //nolint:gosec // not for security.
}

func (p *randomPicker) Pick(pool []string) string {
	if len(pool) == 0 {
		return ""
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return pool[p.rnd.IntN(len(pool))]
}

// Message pool keys.
const (
	MessageFirstPR   = "first_pr"
	MessagePR        = "pr"
	MessageWeightPR  = "weight_pr"
	MessageRepPR     = "rep_pr"
	MessageOneRepMax = "1rm_pr"
	MessageIncrease  = "increase"
	MessageDecrease  = "decrease"
	MessageMaintain  = "maintain"
	MessageDeload    = "deload"
	MessageFatigue   = "fatigue"
)

//nolint:gochecknoglobals // fixed message pools.
var messages = map[string][]string{
	MessageFirstPR: {
		"First one on the board! 🎉",
		"Your journey starts here. New record set!",
	},
	MessagePR: {
		"New personal record! 🏆",
		"You just beat your best. Incredible!",
		"Record smashed! 💥",
	},
	MessageWeightPR: {
		"Heaviest lift yet! 🏋️",
		"New weight PR. Stronger than ever!",
	},
	MessageRepPR: {
		"More reps at the same weight. Rep PR! 💪",
		"Rep record! Your endurance is climbing.",
	},
	MessageOneRepMax: {
		"Estimated 1RM is up. You are getting stronger! 📈",
		"New estimated max. Great work!",
	},
	MessageIncrease: {
		"That looked easy. Time to add weight!",
		"Strong session. Go heavier next time.",
	},
	MessageDecrease: {
		"Tough one. Drop the weight a little and own the reps.",
		"Back off slightly and build up again.",
	},
	MessageMaintain: {
		"Solid work. Stay at this weight.",
		"Right in the zone. Keep it here.",
	},
	MessageDeload: {
		"Several hard sessions in a row. Take a lighter week.",
		"Recovery time. A deload will help you come back stronger.",
	},
	MessageFatigue: {
		"Fatigue is building up. Consider a deload week.",
		"Your body is asking for rest. Plan a lighter week.",
	},
}

// Messages returns the pool for key.
func Messages(key string) []string {
	return slices.Clone(messages[key])
}

// Coach is safe for concurrent use when its Picker is.
type Coach struct {
	cfg    Config
	picker Picker
}

func New(cfg Config, picker Picker) *Coach {
	return &Coach{cfg: cfg, picker: picker}
}

func (c *Coach) message(key string) string {
	return c.picker.Pick(messages[key])
}
