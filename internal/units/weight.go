// Package units models weights with their display unit. Arithmetic is done in kilograms.
package units

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/myrjola/repcoach/internal/errors"
)

// Unit is a weight display unit.
type Unit string

const (
	Kilograms Unit = "kg"
	Pounds    Unit = "lbs"
)

const kilogramsPerPound = 0.45359237

var ErrUnknownUnit = errors.NewSentinel("unknown weight unit")

// ParseUnit accepts kg or lbs.
func ParseUnit(s string) (Unit, error) {
	switch Unit(s) {
	case Kilograms, Pounds:
		return Unit(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownUnit, s)
	}
}

// Weight is an amount in a unit as entered or displayed.
type Weight struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

func Kg(v float64) Weight  { return Weight{Value: v, Unit: Kilograms} }
func Lbs(v float64) Weight { return Weight{Value: v, Unit: Pounds} }

// Kilograms converts w to kilograms. An empty unit is treated as kilograms.
func (w Weight) Kilograms() float64 {
	if w.Unit == Pounds {
		return w.Value * kilogramsPerPound
	}
	return w.Value
}

// In converts w to unit.
func (w Weight) In(unit Unit) Weight {
	kg := w.Kilograms()
	if unit == Pounds {
		return Weight{Value: kg / kilogramsPerPound, Unit: Pounds}
	}
	return Weight{Value: kg, Unit: Kilograms}
}

func (w Weight) String() string {
	unit := w.Unit
	if unit == "" {
		unit = Kilograms
	}
	return fmt.Sprintf("%g %s", RoundTo(w.Value, 0.1), unit)
}

// UnmarshalJSON accepts either {"value":…,"unit":…} or a bare number in kilograms.
func (w *Weight) UnmarshalJSON(b []byte) error {
	var kg float64
	if err := json.Unmarshal(b, &kg); err == nil {
		*w = Kg(kg)
		return nil
	}
	type plain Weight
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return errors.Wrap(err, "unmarshal weight")
	}
	if p.Unit == "" {
		p.Unit = Kilograms
	}
	if _, err := ParseUnit(string(p.Unit)); err != nil {
		return err
	}
	*w = Weight(p)
	return nil
}

// RoundTo rounds v to the nearest multiple of step.
func RoundTo(v, step float64) float64 {
	if step <= 0 {
		return v
	}
	return math.Round(v/step) * step
}
