// Package config loads and saves the digitizer settings as YAML.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"pictograph/internal/calibrate"
	"pictograph/internal/cluster"
	"pictograph/internal/curve"
	"pictograph/internal/fault"
	"pictograph/internal/peaks"
	"pictograph/internal/raster"

	"gopkg.in/yaml.v3"
)

const (
	appDir     = "pictograph"
	configFile = "config.yaml"
)

// Config holds every tunable of the pipeline. The zero value is not useful;
// start from DefaultConfig.
type Config struct {
	Extract struct {
		// MinObjectSize drops foreground specks smaller than this many pixels
		MinObjectSize int `yaml:"minObjectSize"`

		// Polarity is "bright" (curve lighter than background) or "dark"
		Polarity string `yaml:"polarity"`
	} `yaml:"extract"`

	Stretch struct {
		LowPercentile  float64 `yaml:"lowPercentile"`
		HighPercentile float64 `yaml:"highPercentile"`
	} `yaml:"stretch"`

	// Calibration bounds used when none are given on the command line
	Calibration calibrate.Bounds `yaml:"calibration"`

	Peaks struct {
		Sensitivity float64 `yaml:"sensitivity"`
		MinDistance int     `yaml:"minDistance"`
	} `yaml:"peaks"`

	Cluster struct {
		K             int     `yaml:"k"`
		Seed          int     `yaml:"seed"`
		Attempts      int     `yaml:"attempts"`
		MaxIterations int     `yaml:"maxIterations"`
		Epsilon       float64 `yaml:"epsilon"`
		BaseSize      float64 `yaml:"baseSize"`
		PixelsPerUnit int     `yaml:"pixelsPerUnit"`
	} `yaml:"cluster"`

	Plot struct {
		BaseWidth     float64 `yaml:"baseWidth"`
		PixelsPerUnit int     `yaml:"pixelsPerUnit"`
		Title         string  `yaml:"title"`
		XLabel        string  `yaml:"xLabel"`
		YLabel        string  `yaml:"yLabel"`
	} `yaml:"plot"`

	Crop struct {
		// PreviewHeight is the pixel height of the cropped preview
		PreviewHeight int `yaml:"previewHeight"`
	} `yaml:"crop"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Extract.MinObjectSize = curve.DefaultMinObjectSize
	cfg.Extract.Polarity = curve.Bright.String()

	cfg.Stretch.LowPercentile = raster.DefaultLowPercentile
	cfg.Stretch.HighPercentile = raster.DefaultHighPercentile

	cfg.Calibration = calibrate.Bounds{XMin: 0, XMax: 4000, YMin: 0, YMax: 1000}

	cfg.Peaks.Sensitivity = peaks.DefaultSensitivity
	cfg.Peaks.MinDistance = peaks.DefaultMinDistance

	km := cluster.DefaultOptions()
	cfg.Cluster.K = km.K
	cfg.Cluster.Seed = km.Seed
	cfg.Cluster.Attempts = km.Attempts
	cfg.Cluster.MaxIterations = km.MaxIterations
	cfg.Cluster.Epsilon = km.Epsilon
	cfg.Cluster.BaseSize = cluster.DefaultBaseSize
	cfg.Cluster.PixelsPerUnit = 100

	cfg.Plot.BaseWidth = 10
	cfg.Plot.PixelsPerUnit = 100
	cfg.Plot.Title = "Extracted Spectrum"
	cfg.Plot.XLabel = "Wavelength (nm)"
	cfg.Plot.YLabel = "Intensity"

	cfg.Crop.PreviewHeight = 250

	return cfg
}

// DefaultPath returns the per-user config location,
// ~/.config/pictograph/config.yaml on Linux.
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(configDir, appDir, configFile)
}

// LoadConfig loads configuration from a YAML file.
// If the file doesn't exist, it returns the default configuration.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fault.Wrap(fault.StageConfig, fault.ErrIOFailure, fmt.Errorf("error reading config file: %w", err))
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fault.Wrap(fault.StageConfig, fault.ErrInvalidParameter, fmt.Errorf("error parsing config file: %w", err))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fault.Wrap(fault.StageConfig, fault.ErrIOFailure, fmt.Errorf("error creating config directory: %w", err))
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fault.Wrap(fault.StageConfig, fault.ErrInvalidParameter, fmt.Errorf("error marshaling config: %w", err))
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fault.Wrap(fault.StageConfig, fault.ErrIOFailure, fmt.Errorf("error writing config file: %w", err))
	}

	return nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	bad := func(format string, args ...interface{}) error {
		return fault.New(fault.StageConfig, fault.ErrInvalidParameter, format, args...)
	}
	switch {
	case c.Extract.MinObjectSize < 0:
		return bad("extract.minObjectSize must not be negative")
	case c.Stretch.LowPercentile < 0 || c.Stretch.HighPercentile > 100 || c.Stretch.LowPercentile > c.Stretch.HighPercentile:
		return bad("stretch percentiles must satisfy 0 <= low <= high <= 100")
	case c.Peaks.MinDistance < 1:
		return bad("peaks.minDistance must be at least 1")
	case c.Cluster.K < 1:
		return bad("cluster.k must be at least 1")
	case c.Cluster.Attempts < 1 || c.Cluster.MaxIterations < 1:
		return bad("cluster.attempts and cluster.maxIterations must be at least 1")
	case c.Cluster.BaseSize <= 0 || c.Plot.BaseWidth <= 0:
		return bad("display sizes must be positive")
	case c.Cluster.PixelsPerUnit < 1 || c.Plot.PixelsPerUnit < 1:
		return bad("pixelsPerUnit must be at least 1")
	case c.Crop.PreviewHeight < 1:
		return bad("crop.previewHeight must be at least 1")
	}
	if _, err := curve.ParsePolarity(c.Extract.Polarity); err != nil {
		return bad("extract.polarity: %v", err)
	}
	return c.Calibration.Validate()
}

// ExtractOptions converts the extract section.
func (c *Config) ExtractOptions() curve.Options {
	p, _ := curve.ParsePolarity(c.Extract.Polarity)
	return curve.Options{MinObjectSize: c.Extract.MinObjectSize, Polarity: p}
}

// StretchOptions converts the stretch section.
func (c *Config) StretchOptions() raster.StretchOptions {
	return raster.StretchOptions{Low: c.Stretch.LowPercentile, High: c.Stretch.HighPercentile}
}

// ClusterOptions converts the cluster section.
func (c *Config) ClusterOptions() cluster.Options {
	return cluster.Options{
		K:             c.Cluster.K,
		Seed:          c.Cluster.Seed,
		Attempts:      c.Cluster.Attempts,
		MaxIterations: c.Cluster.MaxIterations,
		Epsilon:       c.Cluster.Epsilon,
	}
}
