// Package flow derives the discharge and inflow time series from raw
// water-height readings using a fitted rating curve and the tube geometry.
package flow

import (
	"fmt"
	"math"
	"time"

	"github.com/mvankuijk/runoffcalc/pkg/rating"
)

// Sample is one raw water-height reading. RawMM is the sensor reading in
// millimeters, uncorrected for the slot baseline.
type Sample struct {
	Time  time.Time
	RawMM float64
}

// Record is one fully derived point of the output series. InflowLPM is only
// meaningful when InflowValid is true; the first record of a series has no
// predecessor to difference against, so its inflow is missing rather than
// zero. Consumers averaging or plotting the series must skip it, not count
// it as zero flow.
type Record struct {
	Time         time.Time
	HeightCM     float64
	DischargeLPM float64
	StorageLPM   float64
	InflowLPM    float64
	InflowValid  bool
}

// Params carries the per-run constants of the transform.
type Params struct {
	// BaselineCM is the slot-bottom height in centimeters, subtracted from
	// each converted reading.
	BaselineCM float64
	// TubeDiameterCM is the inner diameter of the measuring tube.
	TubeDiameterCM float64
	// Curve maps height above the slot bottom to discharge.
	Curve rating.Curve
}

// InvalidInputError reports transform parameters the pipeline cannot run on.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid transform input: %s", e.Reason)
}

// DegenerateIntervalError reports two consecutive samples with identical
// timestamps, which would put a zero in the backward-difference denominator.
type DegenerateIntervalError struct {
	Index int
	Time  time.Time
}

func (e *DegenerateIntervalError) Error() string {
	return fmt.Sprintf("zero elapsed time at record %d (%s)", e.Index, e.Time.Format(time.RFC3339))
}

// Transform derives height, discharge, storage, and inflow for each sample
// of the series:
//
//	height   = raw/10 - baseline                       [cm above slot]
//	discharge = curve(height)                          [L/min]
//	storage  = pi * d^2 * height / 4 * 60/1000         [tube volume above slot, series units]
//	inflow   = d(storage)/dt_seconds + (q_t + q_{t-1})/2
//
// The series must already be sorted ascending by timestamp; Transform does
// not sort, and the backward difference is meaningless on unsorted input.
// Duplicate consecutive timestamps abort the batch with a
// DegenerateIntervalError -- a measurement series with a broken interval is
// not usable in part. Transform is a pure function: it never mutates the
// input and identical inputs produce identical output.
func Transform(series []Sample, p Params) ([]Record, error) {
	if p.TubeDiameterCM <= 0 {
		return nil, &InvalidInputError{Reason: "tube diameter must be positive"}
	}

	// Cross-section area times height gives cm^3 of stored water; the
	// 60/1000 factor carries it in the same L/min-compatible unit as the
	// discharge terms of the inflow formula.
	area := math.Pi * p.TubeDiameterCM * p.TubeDiameterCM / 4

	out := make([]Record, 0, len(series))
	for i, s := range series {
		h := s.RawMM/10 - p.BaselineCM
		q := p.Curve.Evaluate(h)
		storage := area * h * 60 / 1000

		rec := Record{
			Time:         s.Time,
			HeightCM:     h,
			DischargeLPM: q,
			StorageLPM:   storage,
		}

		if i > 0 {
			prev := out[i-1]
			dt := s.Time.Sub(prev.Time).Seconds()
			if dt == 0 {
				return nil, &DegenerateIntervalError{Index: i, Time: s.Time}
			}
			rec.InflowLPM = (storage-prev.StorageLPM)/dt + (q+prev.DischargeLPM)/2
			rec.InflowValid = true
		}

		out = append(out, rec)
	}
	return out, nil
}
