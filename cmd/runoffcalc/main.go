// Command runoffcalc runs one offline calibration batch: it fits the
// power-law rating curve from the calibration dataset, applies it to the
// water-level time series to derive discharge and inflow, renders the two
// diagnostic plots, and optionally archives the derived series in SQLite.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/mvankuijk/runoffcalc/internal/flow"
	"github.com/mvankuijk/runoffcalc/internal/loader"
	"github.com/mvankuijk/runoffcalc/internal/log"
	"github.com/mvankuijk/runoffcalc/internal/plotting"
	"github.com/mvankuijk/runoffcalc/internal/storage"
	"github.com/mvankuijk/runoffcalc/pkg/config"
	"github.com/mvankuijk/runoffcalc/pkg/rating"
)

const version = "1.1-" + runtime.GOOS + "/" + runtime.GOARCH

func main() {
	cfgFile := flag.String("config", "runoffcalc.yaml", "Path to the YAML run configuration")
	baseline := flag.Float64("baseline", 0, "Override baseline_cm from the config")
	diameter := flag.Float64("diameter", 0, "Override tube_diameter_cm from the config")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("runoffcalc %s\n", version)
		os.Exit(0)
	}

	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg, err := config.Load(*cfgFile)
	if err != nil {
		log.Errorf("Failed to load configuration: %v", err)
		os.Exit(1)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "baseline":
			cfg.BaselineCM = *baseline
		case "diameter":
			cfg.TubeDiameterCM = *diameter
		}
	})

	if err := run(cfg); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}

// run executes the batch and reports the first failure with its stage. No
// stage retries: the pipeline is deterministic, and partial output of a
// measurement series is not usable.
func run(cfg config.Config) error {
	calibration, err := loader.LoadCalibration(cfg.CalibrationFile)
	if err != nil {
		return fmt.Errorf("loading calibration data: %w", err)
	}
	levels, err := loader.LoadLevels(cfg.LevelsFile)
	if err != nil {
		return fmt.Errorf("loading level series: %w", err)
	}
	log.Infof("loaded %d calibration samples, %d level readings", len(calibration), len(levels))

	res, err := rating.Fit(calibration, rating.Curve{A: cfg.InitialA, B: cfg.InitialB})
	if err != nil {
		return fmt.Errorf("fitting rating curve: %w", err)
	}
	log.Infow("rating curve fitted",
		"a", res.Curve.A,
		"b", res.Curve.B,
		"r_squared", res.RSquared,
		"rmse_lpm", res.RMSE,
		"iterations", res.Iterations,
		"samples", res.SampleCount,
	)

	records, err := flow.Transform(levels, flow.Params{
		BaselineCM:     cfg.BaselineCM,
		TubeDiameterCM: cfg.TubeDiameterCM,
		Curve:          res.Curve,
	})
	if err != nil {
		return fmt.Errorf("transforming level series: %w", err)
	}
	log.Infof("derived %d records", len(records))

	if err := plotting.RatingCurvePlot(calibration, res.Curve, cfg.RatingPlot); err != nil {
		return fmt.Errorf("rendering rating curve plot: %w", err)
	}
	if err := plotting.FlowSeriesPlot(records, cfg.FlowPlot); err != nil {
		return fmt.Errorf("rendering flow series plot: %w", err)
	}
	log.Infof("wrote plots %s, %s", cfg.RatingPlot, cfg.FlowPlot)

	if cfg.ArchivePath != "" {
		archive, err := storage.Open(cfg.ArchivePath)
		if err != nil {
			return fmt.Errorf("opening results archive: %w", err)
		}
		defer archive.Close()
		if err := archive.WriteRecords(records); err != nil {
			return fmt.Errorf("archiving derived records: %w", err)
		}
		log.Infof("archived %d records to %s", len(records), cfg.ArchivePath)
	}

	return nil
}
