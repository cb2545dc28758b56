package rating

import "fmt"

// InvalidInputError reports calibration input the fitter cannot work with:
// an empty or underdetermined sample set, a negative discharge, or a
// negative height (h^b is complex-valued for fractional b).
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid calibration input: %s", e.Reason)
}

// ConvergenceError reports a fit that did not reach the residual tolerance
// within the iteration budget, or that was driven into an inadmissible
// region of parameter space. Power-law fits are sensitive to the starting
// guess; the caller may retry with a different one.
type ConvergenceError struct {
	Iterations int
	ResidualSS float64
	Reason     string
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("fit did not converge after %d iterations (residual SS %g): %s",
		e.Iterations, e.ResidualSS, e.Reason)
}
