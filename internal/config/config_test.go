package config

import (
	"os"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	// Create a temporary YAML config file.
	yamlContent := []byte(`
storage:
  results_dir: "/tmp/stratviz/results"
  output_dir: "/tmp/stratviz/out"
  viz_data_dir: "/tmp/stratviz/visual"
  sqlite_path: "/tmp/stratviz/stratviz.db"
server:
  host: "0.0.0.0"
  port: 8050
logging:
  level: "info"
  format: "json"
simulation:
  initial_cash: 100000
  commission_rate: 0.001
  slippage: 0.0005
strategies:
  vad:
    window: 20
    threshold: 1.5
data_files:
  240min_BTC: "/tmp/data/btc_240min.csv"
  5min_QQQ: "/tmp/data/qqq_5min.csv"
viewer:
  default_strategy: "vad"
  default_timeframe: "240min"
  default_benchmark: "buyandhold"
  default_target: "BTC"
  timeframes: ["5min", "240min"]
  targets: ["QQQ", "BTC", "600519"]
  benchmarks: ["buyandhold", "treasury", "btc"]
`)

	tmpFile, err := os.CreateTemp("", "stratviz-config-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(yamlContent); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	if err := tmpFile.Close(); err != nil {
		t.Fatalf("failed to close temp file: %v", err)
	}

	// Clear any environment overrides that might interfere.
	os.Unsetenv("STRATVIZ_RESULTS_DIR")
	os.Unsetenv("STRATVIZ_OUTPUT_DIR")
	os.Unsetenv("STRATVIZ_VIZ_DATA_DIR")
	os.Unsetenv("SQLITE_PATH")
	os.Unsetenv("LOG_LEVEL")

	cfg, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	// -- Storage --
	if cfg.Storage.ResultsDir != "/tmp/stratviz/results" {
		t.Errorf("Storage.ResultsDir = %q, want %q", cfg.Storage.ResultsDir, "/tmp/stratviz/results")
	}
	if cfg.Storage.VizDataDir != "/tmp/stratviz/visual" {
		t.Errorf("Storage.VizDataDir = %q, want %q", cfg.Storage.VizDataDir, "/tmp/stratviz/visual")
	}
	if cfg.Storage.SQLitePath != "/tmp/stratviz/stratviz.db" {
		t.Errorf("Storage.SQLitePath = %q, want %q", cfg.Storage.SQLitePath, "/tmp/stratviz/stratviz.db")
	}

	// -- Server --
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 8050 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8050)
	}

	// -- Simulation --
	if cfg.Simulation.InitialCash != 100000 {
		t.Errorf("Simulation.InitialCash = %v, want %v", cfg.Simulation.InitialCash, 100000.0)
	}
	if cfg.Simulation.CommissionRate != 0.001 {
		t.Errorf("Simulation.CommissionRate = %v, want %v", cfg.Simulation.CommissionRate, 0.001)
	}

	// -- Strategies --
	if cfg.Strategies["vad"]["window"] != 20 {
		t.Errorf("Strategies[vad][window] = %v, want 20", cfg.Strategies["vad"]["window"])
	}

	// -- Data files --
	if cfg.DataFiles["240min_BTC"] != "/tmp/data/btc_240min.csv" {
		t.Errorf("DataFiles[240min_BTC] = %q", cfg.DataFiles["240min_BTC"])
	}

	// -- Viewer --
	if cfg.Viewer.DefaultStrategy != "vad" || cfg.Viewer.DefaultTimeframe != "240min" {
		t.Errorf("viewer defaults = %q/%q, want vad/240min", cfg.Viewer.DefaultStrategy, cfg.Viewer.DefaultTimeframe)
	}
	if len(cfg.Viewer.Targets) != 3 || cfg.Viewer.Targets[1] != "BTC" {
		t.Errorf("Viewer.Targets = %v", cfg.Viewer.Targets)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	yamlContent := []byte(`
storage:
  viz_data_dir: "/original/visual"
logging:
  level: "info"
`)

	tmpFile, err := os.CreateTemp("", "stratviz-config-env-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(yamlContent); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	tmpFile.Close()

	// Set environment overrides.
	os.Setenv("STRATVIZ_VIZ_DATA_DIR", "/env/visual")
	os.Setenv("LOG_LEVEL", "debug")
	defer os.Unsetenv("STRATVIZ_VIZ_DATA_DIR")
	defer os.Unsetenv("LOG_LEVEL")

	cfg, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Storage.VizDataDir != "/env/visual" {
		t.Errorf("Storage.VizDataDir = %q, want %q (env override)", cfg.Storage.VizDataDir, "/env/visual")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q (env override)", cfg.Logging.Level, "debug")
	}
}
