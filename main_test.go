package main

import (
	"testing"

	"github.com/pthm-cable/polymini/config"
)

func TestApplyRunFlags(t *testing.T) {
	cmd := newRunCmd()
	if err := cmd.ParseFlags([]string{"--seed", "9", "--epochs", "0", "--storage", "sqlite", "--log-individuals"}); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	cfg := config.Defaults()
	wantLogEvery := cfg.Telemetry.LogEveryNEpochs
	applyRunFlags(cmd, cfg)

	if cfg.Simulation.Seed != 9 {
		t.Errorf("Seed = %d, want 9", cfg.Simulation.Seed)
	}
	if cfg.Simulation.Epochs != 0 {
		t.Errorf("Epochs = %d, want 0", cfg.Simulation.Epochs)
	}
	if cfg.Storage.Driver != "sqlite" {
		t.Errorf("Storage.Driver = %q, want sqlite", cfg.Storage.Driver)
	}
	if !cfg.Telemetry.LogIndividuals {
		t.Error("LogIndividuals = false, want true")
	}
	if cfg.Telemetry.LogEveryNEpochs != wantLogEvery {
		t.Errorf("LogEveryNEpochs = %d, want unchanged %d", cfg.Telemetry.LogEveryNEpochs, wantLogEvery)
	}
}

func TestConfigCommand(t *testing.T) {
	cmd := newConfigCmd()
	cmd.Flags().String("config", "", "")
	if err := cmd.RunE(cmd, nil); err != nil {
		t.Fatalf("config command: %v", err)
	}
}
