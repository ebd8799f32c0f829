package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"student-loan-sim/service"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Addr != ":8080" || cfg.Server.RunTimeout != 45*time.Second {
		t.Errorf("unexpected server config %+v", cfg.Server)
	}
	if cfg.Redis.Enabled {
		t.Errorf("expected redis to be off by default")
	}
	if cfg.Simulation.Defaults != service.DefaultParameters() {
		t.Errorf("expected default parameters, got %+v", cfg.Simulation.Defaults)
	}
	if limits := cfg.Limits(); limits != service.DefaultLimits() {
		t.Errorf("expected default limits, got %+v", limits)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("SLC_SERVER_ADDR", ":9999")
	t.Setenv("SLC_REDIS_ENABLED", "true")
	t.Setenv("SLC_REDIS_TTL", "90m")
	t.Setenv("SLC_SIMULATION_DEFAULTS_CURRENT_LOAN", "12345")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Addr != ":9999" {
		t.Errorf("expected :9999, got %s", cfg.Server.Addr)
	}
	if !cfg.Redis.Enabled || cfg.Redis.TTL != 90*time.Minute {
		t.Errorf("unexpected redis config %+v", cfg.Redis)
	}
	if cfg.Simulation.Defaults.CurrentLoan != 12345 {
		t.Errorf("expected loan 12345, got %v", cfg.Simulation.Defaults.CurrentLoan)
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slc.yaml")
	data := `
server:
  addr: ":7000"
simulation:
  workers: 3
  max_simulations: 5000
  defaults:
    initial_salary: 32000
returns:
  data_dir: /var/lib/slc/prices
log:
  format: text
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Addr != ":7000" || cfg.Simulation.Workers != 3 || cfg.Simulation.MaxSimulations != 5000 {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.Simulation.Defaults.InitialSalary != 32000 {
		t.Errorf("expected salary from file, got %v", cfg.Simulation.Defaults.InitialSalary)
	}
	// Keys not in the file keep their defaults.
	if cfg.Simulation.Defaults.Threshold != service.DefaultParameters().Threshold {
		t.Errorf("expected default threshold, got %v", cfg.Simulation.Defaults.Threshold)
	}
	if cfg.Returns.DataDir != "/var/lib/slc/prices" || cfg.Log.Format != "text" {
		t.Errorf("unexpected returns/log config %+v %+v", cfg.Returns, cfg.Log)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("expected error for a missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	tests := map[string]string{
		"SLC_LOG_LEVEL":                          "loud",
		"SLC_SIMULATION_WORKERS":                 "-1",
		"SLC_SIMULATION_MAX_SIMULATIONS":         "0",
		"SLC_SIMULATION_DEFAULTS_REPAYMENT_RATE": "2",
		"SLC_RATE_LIMIT_CAPACITY":                "0",
	}

	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			if _, err := Load(""); err == nil {
				t.Errorf("expected %s=%s to be rejected", key, value)
			}
		})
	}
}
