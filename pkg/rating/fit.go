package rating

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// CalibrationSample is one paired calibration measurement: the sensor's
// baseline reading for the slot bottom, the raw water-height reading, and
// the discharge measured independently (bucket-and-stopwatch or similar).
// Heights are millimeters as read from the sensor; discharge is L/min.
type CalibrationSample struct {
	BaselineMM   float64
	RawMM        float64
	DischargeLPM float64
}

// HeightCM returns the water height above the slot bottom in centimeters.
func (s CalibrationSample) HeightCM() float64 {
	return (s.RawMM - s.BaselineMM) / 10
}

// Result contains the fitted curve along with fit-quality metrics.
type Result struct {
	Curve       Curve
	RSquared    float64
	RMSE        float64
	ResidualSS  float64
	Iterations  int
	SampleCount int
}

// DefaultGuess is the standard starting point for the fit.
var DefaultGuess = Curve{A: 1, B: 1}

const (
	maxIterations = 200
	ssrTolerance  = 1e-12
	lambdaInit    = 1e-3
	lambdaMin     = 1e-12
	lambdaMax     = 1e12
)

// Fit estimates the rating curve parameters (a, b) from calibration samples
// by Levenberg-Marquardt minimization of the residual sum of squares
// sum((Q_i - a*h_i^b)^2), starting from guess.
//
// Zero heights are admissible as long as the exponent stays positive
// (0^b = 0 for b > 0); if the starting guess or any accepted iterate drives
// b <= 0 while a zero-height sample is present, Fit fails instead of
// producing NaN. Convergence is local: a poor starting guess can settle in
// a poor minimum, which the caller may address by retrying with a different
// guess. Fit has no side effects.
func Fit(samples []CalibrationSample, guess Curve) (Result, error) {
	n := len(samples)
	if n == 0 {
		return Result{}, &InvalidInputError{Reason: "no calibration samples"}
	}
	if n < 2 {
		return Result{}, &InvalidInputError{Reason: "need at least 2 samples to determine 2 parameters"}
	}

	heights := make([]float64, n)
	flows := make([]float64, n)
	hasZero := false
	for i, s := range samples {
		h := s.HeightCM()
		if h < 0 {
			return Result{}, &InvalidInputError{Reason: "negative height above slot (raw reading below baseline)"}
		}
		if s.DischargeLPM < 0 {
			return Result{}, &InvalidInputError{Reason: "negative measured discharge"}
		}
		if h == 0 {
			hasZero = true
		}
		heights[i] = h
		flows[i] = s.DischargeLPM
	}
	if hasZero && guess.B <= 0 {
		return Result{}, &InvalidInputError{Reason: "non-positive exponent guess with zero-height sample present"}
	}

	a, b := guess.A, guess.B
	ssr := residualSS(heights, flows, a, b)
	lambda := lambdaInit

	// Damped least squares: each step solves the augmented system
	// [J; sqrt(lambda)*I] * delta = [r; 0] by QR, where J is the Jacobian
	// of the model and r the residual vector.
	jac := mat.NewDense(n+2, 2, nil)
	rhs := mat.NewVecDense(n+2, nil)
	var delta mat.VecDense

	for iter := 1; iter <= maxIterations; iter++ {
		for i := 0; i < n; i++ {
			h := heights[i]
			if h == 0 {
				// f(0) = 0 for b > 0, and both partials vanish in the limit.
				jac.Set(i, 0, 0)
				jac.Set(i, 1, 0)
				rhs.SetVec(i, flows[i])
				continue
			}
			hb := math.Pow(h, b)
			jac.Set(i, 0, hb)
			jac.Set(i, 1, a*hb*math.Log(h))
			rhs.SetVec(i, flows[i]-a*hb)
		}
		sqrtLambda := math.Sqrt(lambda)
		jac.Set(n, 0, sqrtLambda)
		jac.Set(n, 1, 0)
		jac.Set(n+1, 0, 0)
		jac.Set(n+1, 1, sqrtLambda)
		rhs.SetVec(n, 0)
		rhs.SetVec(n+1, 0)

		var qr mat.QR
		qr.Factorize(jac)
		if err := qr.SolveVecTo(&delta, false, rhs); err != nil {
			return Result{}, &ConvergenceError{Iterations: iter, ResidualSS: ssr, Reason: "singular step system: " + err.Error()}
		}

		trialA := a + delta.AtVec(0)
		trialB := b + delta.AtVec(1)
		if hasZero && trialB <= 0 {
			return Result{}, &ConvergenceError{Iterations: iter, ResidualSS: ssr,
				Reason: "exponent driven non-positive with zero-height sample present"}
		}

		trialSSR := residualSS(heights, flows, trialA, trialB)
		if math.IsNaN(trialSSR) || math.IsInf(trialSSR, 0) {
			lambda *= 10
			if lambda > lambdaMax {
				return Result{}, &ConvergenceError{Iterations: iter, ResidualSS: ssr, Reason: "step produced a non-finite residual"}
			}
			continue
		}

		if trialSSR <= ssr {
			improvement := ssr - trialSSR
			a, b, ssr = trialA, trialB, trialSSR
			lambda /= 10
			if lambda < lambdaMin {
				lambda = lambdaMin
			}
			if improvement <= ssrTolerance*(ssr+ssrTolerance) {
				return summarize(heights, flows, a, b, ssr, iter), nil
			}
		} else {
			lambda *= 10
			if lambda > lambdaMax {
				return Result{}, &ConvergenceError{Iterations: iter, ResidualSS: ssr, Reason: "damping exhausted without improvement"}
			}
		}
	}

	return Result{}, &ConvergenceError{Iterations: maxIterations, ResidualSS: ssr, Reason: "iteration budget exhausted"}
}

func residualSS(heights, flows []float64, a, b float64) float64 {
	var ss float64
	for i, h := range heights {
		var f float64
		if h > 0 {
			f = a * math.Pow(h, b)
		}
		r := flows[i] - f
		ss += r * r
	}
	return ss
}

func summarize(heights, flows []float64, a, b, ssr float64, iters int) Result {
	n := len(flows)
	meanQ := stat.Mean(flows, nil)

	var ssTot float64
	for _, q := range flows {
		d := q - meanQ
		ssTot += d * d
	}
	r2 := 0.0
	if ssTot > 0 {
		r2 = 1 - ssr/ssTot
	}

	return Result{
		Curve:       Curve{A: a, B: b},
		RSquared:    r2,
		RMSE:        math.Sqrt(ssr / float64(n)),
		ResidualSS:  ssr,
		Iterations:  iters,
		SampleCount: n,
	}
}
