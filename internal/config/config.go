// Package config loads the stratviz configuration from YAML with
// environment variable overrides.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the stratviz platform.
type Config struct {
	Storage    Storage                       `yaml:"storage"`
	Server     Server                        `yaml:"server"`
	Logging    Logging                       `yaml:"logging"`
	Simulation Simulation                    `yaml:"simulation"`
	Strategies map[string]map[string]float64 `yaml:"strategies"`
	DataFiles  map[string]string             `yaml:"data_files"`
	Viewer     Viewer                        `yaml:"viewer"`
}

// Storage holds paths for data persistence.
type Storage struct {
	ResultsDir string `yaml:"results_dir"`  // engine result dumps (input)
	OutputDir  string `yaml:"output_dir"`   // analysis reports and trade archives
	VizDataDir string `yaml:"viz_data_dir"` // trade-record lookup tables
	SQLitePath string `yaml:"sqlite_path"`
}

// Server holds network listener configuration for the viewer API.
type Server struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Simulation seeds the external backtest engine. Loading and validation of
// engine behaviour is outside this repository; the values are passed through.
type Simulation struct {
	InitialCash    float64 `yaml:"initial_cash"`
	CommissionRate float64 `yaml:"commission_rate"`
	Slippage       float64 `yaml:"slippage"`
}

// Viewer holds the interactive session defaults and the option sets offered
// by the front-end. The sets are advisory: values outside them still pass
// through to lookup.
type Viewer struct {
	DefaultStrategy  string   `yaml:"default_strategy"`
	DefaultTimeframe string   `yaml:"default_timeframe"`
	DefaultBenchmark string   `yaml:"default_benchmark"`
	DefaultTarget    string   `yaml:"default_target"`
	Timeframes       []string `yaml:"timeframes"`
	Targets          []string `yaml:"targets"`
	Benchmarks       []string `yaml:"benchmarks"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML configuration file at the given path, parses it into a
// Config struct, and then applies environment variable overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("STRATVIZ_RESULTS_DIR"); v != "" {
		cfg.Storage.ResultsDir = v
	}
	if v := os.Getenv("STRATVIZ_OUTPUT_DIR"); v != "" {
		cfg.Storage.OutputDir = v
	}
	if v := os.Getenv("STRATVIZ_VIZ_DATA_DIR"); v != "" {
		cfg.Storage.VizDataDir = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
