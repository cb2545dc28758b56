package rating

import (
	"math"
	"testing"
)

func TestCurveEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		curve    Curve
		heightCM float64
		expected float64
		epsilon  float64
	}{
		{
			name:     "identity curve",
			curve:    Curve{A: 1, B: 1},
			heightCM: 5.0,
			expected: 5.0,
			epsilon:  1e-12,
		},
		{
			name:     "power law value",
			curve:    Curve{A: 2.5, B: 1.8},
			heightCM: 10.0,
			expected: 2.5 * math.Pow(10.0, 1.8),
			epsilon:  1e-9,
		},
		{
			name:     "zero height clamps to zero",
			curve:    Curve{A: 2.5, B: 1.8},
			heightCM: 0.0,
			expected: 0.0,
			epsilon:  0,
		},
		{
			name:     "negative height clamps to zero",
			curve:    Curve{A: 2.5, B: 1.8},
			heightCM: -3.2,
			expected: 0.0,
			epsilon:  0,
		},
		{
			name:     "fractional exponent",
			curve:    Curve{A: 0.75, B: 0.5},
			heightCM: 4.0,
			expected: 1.5,
			epsilon:  1e-12,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.curve.Evaluate(tt.heightCM)
			if math.Abs(got-tt.expected) > tt.epsilon {
				t.Errorf("Evaluate(%v) = %v, expected %v ± %v", tt.heightCM, got, tt.expected, tt.epsilon)
			}
		})
	}
}

func TestCurveEvaluateMonotonic(t *testing.T) {
	// With positive a and b the curve must be strictly increasing for h > 0.
	curve := Curve{A: 1.9, B: 1.4}

	prev := curve.Evaluate(0.01)
	for h := 0.02; h < 50; h += 0.37 {
		q := curve.Evaluate(h)
		if q <= prev {
			t.Fatalf("Evaluate not increasing at h=%v: %v <= %v", h, q, prev)
		}
		prev = q
	}
}
