// Package loader reads the two input datasets from CSV files and hands the
// core validated, ordered in-memory sequences. All source-format concerns
// (headers, malformed rows, row order) stop here.
package loader

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mvankuijk/runoffcalc/internal/flow"
	"github.com/mvankuijk/runoffcalc/pkg/rating"
)

// LoadCalibration reads paired calibration measurements. The file must have
// a header row naming the columns baseline_mm, raw_mm, and discharge_lpm,
// in any order.
func LoadCalibration(path string) ([]rating.CalibrationSample, error) {
	rows, header, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	cols, err := columnIndex(header, "baseline_mm", "raw_mm", "discharge_lpm")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	samples := make([]rating.CalibrationSample, 0, len(rows))
	for i, row := range rows {
		baseline, err := parseField(row, cols["baseline_mm"], path, i)
		if err != nil {
			return nil, err
		}
		raw, err := parseField(row, cols["raw_mm"], path, i)
		if err != nil {
			return nil, err
		}
		discharge, err := parseField(row, cols["discharge_lpm"], path, i)
		if err != nil {
			return nil, err
		}
		samples = append(samples, rating.CalibrationSample{
			BaselineMM:   baseline,
			RawMM:        raw,
			DischargeLPM: discharge,
		})
	}
	return samples, nil
}

// LoadLevels reads the raw water-height time series. The file must have a
// header row naming the columns time (RFC 3339) and raw_mm. Rows are
// returned sorted ascending by timestamp, which the downstream transform
// requires.
func LoadLevels(path string) ([]flow.Sample, error) {
	rows, header, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	cols, err := columnIndex(header, "time", "raw_mm")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	samples := make([]flow.Sample, 0, len(rows))
	for i, row := range rows {
		ts, err := time.Parse(time.RFC3339, strings.TrimSpace(row[cols["time"]]))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: bad timestamp: %w", path, i+2, err)
		}
		raw, err := parseField(row, cols["raw_mm"], path, i)
		if err != nil {
			return nil, err
		}
		samples = append(samples, flow.Sample{Time: ts, RawMM: raw})
	}

	sort.Slice(samples, func(i, j int) bool {
		return samples[i].Time.Before(samples[j].Time)
	})
	return samples, nil
}

// readCSV returns the data rows and the header row of a CSV file.
func readCSV(path string) ([][]string, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	all, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(all) < 1 {
		return nil, nil, fmt.Errorf("%s: missing header row", path)
	}
	return all[1:], all[0], nil
}

// columnIndex maps the wanted column names to their positions in the header.
func columnIndex(header []string, wanted ...string) (map[string]int, error) {
	cols := make(map[string]int, len(wanted))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, w := range wanted {
		if _, ok := cols[w]; !ok {
			return nil, fmt.Errorf("missing column %q in header", w)
		}
	}
	return cols, nil
}

func parseField(row []string, col int, path string, rowIdx int) (float64, error) {
	if col >= len(row) {
		return 0, fmt.Errorf("%s row %d: too few fields", path, rowIdx+2)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(row[col]), 64)
	if err != nil {
		return 0, fmt.Errorf("%s row %d: bad number %q", path, rowIdx+2, row[col])
	}
	return v, nil
}
