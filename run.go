package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pthm-cable/polymini/config"
	"github.com/pthm-cable/polymini/sim"
	"github.com/pthm-cable/polymini/storage"
	"github.com/pthm-cable/polymini/telemetry"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the simulation headless",
		RunE:  runSimulation,
	}
	cmd.Flags().Int64("seed", 0, "RNG seed (0 = config seed, -1 = time-based)")
	cmd.Flags().Int("epochs", -1, "Stop after N epochs (0 = until interrupted, -1 = config)")
	cmd.Flags().String("output-dir", "", "Output directory for CSV logs and config snapshot")
	cmd.Flags().Bool("log-individuals", false, "Write one CSV row per individual per epoch")
	cmd.Flags().Int("log-every", -1, "Log stats every N epochs (0 = never, -1 = config)")
	cmd.Flags().String("storage", "", "Storage driver: none, memory, sqlite (empty = config)")
	cmd.Flags().String("storage-path", "", "SQLite database path (empty = config)")
	cmd.Flags().String("log-level", "info", "Log level: debug, info, warn, error")
	return cmd
}

func runSimulation(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	configPath, _ := flags.GetString("config")
	levelName, _ := flags.GetString("log-level")

	var level slog.Level
	if err := level.UnmarshalText([]byte(levelName)); err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	if err := config.Init(configPath); err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg := config.Cfg()
	applyRunFlags(cmd, cfg)

	seed := cfg.Simulation.Seed
	if seed == -1 {
		seed = time.Now().UnixNano()
		cfg.Simulation.Seed = seed
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	om, err := telemetry.NewOutputManager(cfg.Telemetry.OutputDir, cfg.Telemetry.LogIndividuals)
	if err != nil {
		return err
	}
	defer om.Close()
	if err := om.WriteConfig(cfg); err != nil {
		return err
	}

	perf := telemetry.NewPerfCollector(cfg.Simulation.MaxSteps)
	reporter := telemetry.NewReporter(telemetry.ReporterOptions{
		Output:   om,
		Perf:     perf,
		LogEvery: cfg.Telemetry.LogEveryNEpochs,
	})

	s := sim.New(cfg, rand.New(rand.NewSource(seed)))
	s.SetTimer(perf)
	s.AddRecorder(reporter)

	store, err := storage.NewStore(cfg.Storage.Driver, cfg.Storage.Path)
	if err != nil {
		return err
	}
	if store != nil {
		if err := store.Init(ctx); err != nil {
			return fmt.Errorf("initializing %s store: %w", cfg.Storage.Driver, err)
		}
		defer store.Close()

		cfgYAML, err := cfg.YAML()
		if err != nil {
			return err
		}
		rec, err := storage.StartRun(ctx, store, seed, cfgYAML)
		if err != nil {
			return err
		}
		s.AddRecorder(rec)
		slog.Info("recording run", "run_id", rec.RunID(), "driver", cfg.Storage.Driver)
	}

	if err := s.Seed(); err != nil {
		return err
	}

	slog.Info("starting simulation",
		"seed", seed,
		"epochs", cfg.Simulation.Epochs,
		"max_steps", cfg.Simulation.MaxSteps,
		"species", len(cfg.Species),
		"output_dir", om.Dir(),
	)

	start := time.Now()
	err = s.Run(ctx, cfg.Simulation.Epochs)
	if errors.Is(err, context.Canceled) {
		slog.Info("interrupted", "epochs", s.Epochs())
		err = nil
	}
	if err != nil {
		return err
	}

	if werr := om.WriteHallOfFame(reporter.HallOfFame()); werr != nil {
		slog.Error("failed to write hall of fame", "error", werr)
	}
	slog.Info("simulation finished", "epochs", s.Epochs(), "elapsed", time.Since(start).String())
	return nil
}

// applyRunFlags overlays explicitly set flags on the loaded configuration.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if v, _ := flags.GetInt64("seed"); v != 0 {
		cfg.Simulation.Seed = v
	}
	if v, _ := flags.GetInt("epochs"); v >= 0 {
		cfg.Simulation.Epochs = v
	}
	if v, _ := flags.GetString("output-dir"); v != "" {
		cfg.Telemetry.OutputDir = v
	}
	if flags.Changed("log-individuals") {
		cfg.Telemetry.LogIndividuals, _ = flags.GetBool("log-individuals")
	}
	if v, _ := flags.GetInt("log-every"); v >= 0 {
		cfg.Telemetry.LogEveryNEpochs = v
	}
	if v, _ := flags.GetString("storage"); v != "" {
		cfg.Storage.Driver = v
	}
	if v, _ := flags.GetString("storage-path"); v != "" {
		cfg.Storage.Path = v
	}
}
