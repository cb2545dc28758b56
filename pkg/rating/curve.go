// Package rating fits and evaluates the power-law rating curve that maps
// water height above the slot bottom to discharge through the slot.
package rating

import "math"

// Curve is a fitted power-law rating curve Q = A * h^B with h in centimeters
// above the slot bottom and Q in liters per minute. A Curve is immutable;
// share it freely between pipeline stages.
type Curve struct {
	A float64
	B float64
}

// Evaluate returns the discharge in L/min for the given height above the
// slot bottom. Heights at or below zero clamp to zero discharge: no water
// leaves the tube when the level sits at or under the slot bottom, and
// raising a negative height to a fractional exponent has no physical meaning.
func (c Curve) Evaluate(heightCM float64) float64 {
	if heightCM <= 0 {
		return 0
	}
	return c.A * math.Pow(heightCM, c.B)
}
