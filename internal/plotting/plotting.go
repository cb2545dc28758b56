// Package plotting renders the two diagnostic plots of a calibration run:
// the fitted rating curve against the calibration points, and the derived
// discharge/inflow series over time. It makes no numeric decisions; it only
// draws what the core produced.
package plotting

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/mvankuijk/runoffcalc/internal/flow"
	"github.com/mvankuijk/runoffcalc/pkg/rating"
)

// RatingCurvePlot writes a PNG with the calibration samples as a scatter
// and the fitted curve drawn through them.
func RatingCurvePlot(samples []rating.CalibrationSample, curve rating.Curve, path string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Rating curve Q = %.4g · h^%.4g", curve.A, curve.B)
	p.X.Label.Text = "Height above slot (cm)"
	p.Y.Label.Text = "Discharge (L/min)"
	p.X.Min = 0

	pts := make(plotter.XYs, len(samples))
	for i, s := range samples {
		pts[i].X = s.HeightCM()
		pts[i].Y = s.DischargeLPM
	}

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("building calibration scatter: %w", err)
	}
	scatter.Color = plotutil.Color(0)

	fitted := plotter.NewFunction(curve.Evaluate)
	fitted.Color = plotutil.Color(1)
	fitted.Samples = 200

	p.Add(scatter, fitted)
	p.Legend.Add("measured", scatter)
	p.Legend.Add("fitted", fitted)
	p.Legend.Top = true

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("saving rating curve plot: %w", err)
	}
	return nil
}

// FlowSeriesPlot writes a PNG with discharge and inflow over time. Records
// with a missing inflow are left out of the inflow line entirely; drawing
// them as zero would fake a no-flow reading.
func FlowSeriesPlot(records []flow.Record, path string) error {
	p := plot.New()
	p.Title.Text = "Discharge and inflow"
	p.X.Label.Text = "Time"
	p.Y.Label.Text = "Flow (L/min)"
	p.X.Tick.Marker = plot.TimeTicks{Format: "15:04:05"}

	discharge := make(plotter.XYs, 0, len(records))
	inflow := make(plotter.XYs, 0, len(records))
	for _, r := range records {
		t := float64(r.Time.Unix())
		discharge = append(discharge, plotter.XY{X: t, Y: r.DischargeLPM})
		if r.InflowValid {
			inflow = append(inflow, plotter.XY{X: t, Y: r.InflowLPM})
		}
	}

	dischargeLine, err := plotter.NewLine(discharge)
	if err != nil {
		return fmt.Errorf("building discharge line: %w", err)
	}
	dischargeLine.Color = plotutil.Color(0)

	inflowLine, err := plotter.NewLine(inflow)
	if err != nil {
		return fmt.Errorf("building inflow line: %w", err)
	}
	inflowLine.Color = plotutil.Color(1)

	p.Add(dischargeLine, inflowLine)
	p.Legend.Add("discharge", dischargeLine)
	p.Legend.Add("inflow", inflowLine)
	p.Legend.Top = true

	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("saving flow series plot: %w", err)
	}
	return nil
}
