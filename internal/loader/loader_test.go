package loader

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadCalibration(t *testing.T) {
	path := writeTemp(t, "calibration.csv",
		"baseline_mm,raw_mm,discharge_lpm\n"+
			"100,150,3.2\n"+
			"100,210,9.7\n")

	samples, err := LoadCalibration(path)
	if err != nil {
		t.Fatalf("LoadCalibration failed: %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(samples))
	}
	if math.Abs(samples[0].HeightCM()-5.0) > 1e-12 {
		t.Errorf("height = %v, expected 5.0", samples[0].HeightCM())
	}
	if samples[1].DischargeLPM != 9.7 {
		t.Errorf("discharge = %v, expected 9.7", samples[1].DischargeLPM)
	}
}

func TestLoadCalibrationColumnOrder(t *testing.T) {
	// Column order in the file must not matter.
	path := writeTemp(t, "calibration.csv",
		"discharge_lpm,baseline_mm,raw_mm\n"+
			"3.2,100,150\n")

	samples, err := LoadCalibration(path)
	if err != nil {
		t.Fatalf("LoadCalibration failed: %v", err)
	}
	if samples[0].RawMM != 150 || samples[0].DischargeLPM != 3.2 {
		t.Errorf("columns mismapped: %+v", samples[0])
	}
}

func TestLoadCalibrationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errText string
	}{
		{
			name:    "missing column",
			content: "baseline_mm,raw_mm\n100,150\n",
			errText: "missing column",
		},
		{
			name:    "bad number with row position",
			content: "baseline_mm,raw_mm,discharge_lpm\n100,150,3.2\n100,abc,4.0\n",
			errText: "row 3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTemp(t, "calibration.csv", tt.content)
			_, err := LoadCalibration(path)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.errText) {
				t.Errorf("error %q does not mention %q", err, tt.errText)
			}
		})
	}
}

func TestLoadLevelsSortsAscending(t *testing.T) {
	path := writeTemp(t, "levels.csv",
		"time,raw_mm\n"+
			"2026-08-01T12:02:00Z,47\n"+
			"2026-08-01T12:00:00Z,42\n"+
			"2026-08-01T12:01:00Z,44\n")

	samples, err := LoadLevels(path)
	if err != nil {
		t.Fatalf("LoadLevels failed: %v", err)
	}
	if len(samples) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(samples))
	}
	for i := 1; i < len(samples); i++ {
		if !samples[i].Time.After(samples[i-1].Time) {
			t.Fatalf("samples not sorted ascending at index %d", i)
		}
	}
	want := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	if !samples[0].Time.Equal(want) || samples[0].RawMM != 42 {
		t.Errorf("first sample = %+v, expected %v / 42", samples[0], want)
	}
}

func TestLoadLevelsBadTimestamp(t *testing.T) {
	path := writeTemp(t, "levels.csv",
		"time,raw_mm\n"+
			"not-a-time,42\n")

	_, err := LoadLevels(path)
	if err == nil || !strings.Contains(err.Error(), "bad timestamp") {
		t.Fatalf("expected a timestamp error, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := LoadCalibration(filepath.Join(t.TempDir(), "absent.csv")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
