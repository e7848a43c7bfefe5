package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"pictograph/internal/curve"
	"pictograph/internal/fault"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Expected defaults to validate, got %v", err)
	}
	if cfg.Extract.MinObjectSize != 20 || cfg.Cluster.Seed != 42 || cfg.Peaks.MinDistance != 20 {
		t.Errorf("Unexpected defaults: %+v", cfg)
	}
	if cfg.Calibration.XMax != 4000 || cfg.Calibration.YMax != 1000 {
		t.Errorf("Unexpected calibration defaults: %+v", cfg.Calibration)
	}
	if cfg.ExtractOptions().Polarity != curve.Bright {
		t.Errorf("Expected bright polarity by default")
	}
}

func TestLoadMissingReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.Cluster.K != DefaultConfig().Cluster.K {
		t.Errorf("Expected default k, got %d", cfg.Cluster.K)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Cluster.K = 6
	cfg.Extract.Polarity = "dark"
	cfg.Calibration.XMin = 200
	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}

	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}
	if got.Cluster.K != 6 || got.Calibration.XMin != 200 {
		t.Errorf("Expected saved values back, got k=%d xMin=%v", got.Cluster.K, got.Calibration.XMin)
	}
	if got.ExtractOptions().Polarity != curve.Dark {
		t.Errorf("Expected dark polarity")
	}
}

func TestPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("peaks:\n  sensitivity: 0.8\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.Peaks.Sensitivity != 0.8 || cfg.Peaks.MinDistance != 20 {
		t.Errorf("Expected sensitivity 0.8 with default distance, got %+v", cfg.Peaks)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"negative k", "cluster:\n  k: 0\n"},
		{"polarity", "extract:\n  polarity: sideways\n"},
		{"percentiles", "stretch:\n  lowPercentile: 90\n  highPercentile: 10\n"},
		{"syntax", "peaks: [unclosed\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(c.yaml), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadConfig(path); !errors.Is(err, fault.ErrInvalidParameter) {
				t.Errorf("Expected invalid parameter, got %v", err)
			}
		})
	}
}
