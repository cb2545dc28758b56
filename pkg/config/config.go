// Package config loads the YAML run configuration for a calibration batch.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Config describes one calibration run: where the two input datasets live,
// the tube geometry, the fit starting point, and where to put the outputs.
type Config struct {
	// CalibrationFile is the CSV of paired (baseline, raw height, measured
	// discharge) calibration rows.
	CalibrationFile string `yaml:"calibration_file"`
	// LevelsFile is the CSV of timestamped raw water-height readings.
	LevelsFile string `yaml:"levels_file"`

	// BaselineCM is the slot-bottom height in centimeters, subtracted from
	// every converted level reading.
	BaselineCM float64 `yaml:"baseline_cm"`
	// TubeDiameterCM is the inner diameter of the measuring tube.
	TubeDiameterCM float64 `yaml:"tube_diameter_cm"`

	// InitialA and InitialB seed the least-squares fit. The fit is local;
	// a run that fails to converge can be retried with a different seed.
	InitialA float64 `yaml:"initial_a"`
	InitialB float64 `yaml:"initial_b"`

	// RatingPlot and FlowPlot are the output PNG paths.
	RatingPlot string `yaml:"rating_plot"`
	FlowPlot   string `yaml:"flow_plot"`

	// ArchivePath, when set, names a SQLite database to store the derived
	// series in.
	ArchivePath string `yaml:"archive_path,omitempty"`
}

// Default returns the configuration defaults applied before the YAML file
// is read over them.
func Default() Config {
	return Config{
		InitialA:   1,
		InitialB:   1,
		RatingPlot: "rating.png",
		FlowPlot:   "flow.png",
	}
}

// Load reads the YAML configuration file at path, applies defaults for
// absent keys, and validates the result.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for values the pipeline cannot run on.
func (c Config) Validate() error {
	if c.CalibrationFile == "" {
		return fmt.Errorf("calibration_file is required")
	}
	if c.LevelsFile == "" {
		return fmt.Errorf("levels_file is required")
	}
	if c.TubeDiameterCM <= 0 {
		return fmt.Errorf("tube_diameter_cm must be positive, got %v", c.TubeDiameterCM)
	}
	return nil
}
