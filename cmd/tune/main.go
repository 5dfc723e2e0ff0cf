// Package main tunes evolution parameters with CMA-ES.
package main

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/polymini/config"
)

// formatDuration formats a duration as HH:MM:SS or MM:SS for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

func main() {
	cmd := &cobra.Command{
		Use:          "tune",
		Short:        "Search evolution parameters that maximise species fitness",
		SilenceUsage: true,
		RunE:         runTune,
	}
	cmd.Flags().String("config", "", "Base config YAML file (empty = use defaults)")
	cmd.Flags().String("output", "", "Output directory for results (required)")
	cmd.Flags().Int("seeds", 2, "Number of seeds per evaluation")
	cmd.Flags().Int("population", 0, "CMA-ES population size (0 = config)")
	cmd.MarkFlagRequired("output")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runTune(cmd *cobra.Command, _ []string) error {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	configPath, _ := cmd.Flags().GetString("config")
	outputDir, _ := cmd.Flags().GetString("output")
	numSeeds, _ := cmd.Flags().GetInt("seeds")
	popSize, _ := cmd.Flags().GetInt("population")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := config.Init(configPath); err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	baseCfg := config.Cfg()
	if popSize == 0 {
		popSize = baseCfg.Tune.Population
	}
	if popSize < 2 {
		popSize = 4
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	params := NewParamVector(baseCfg)
	seeds := make([]int64, max(numSeeds, 1))
	for i := range seeds {
		seeds[i] = baseCfg.Simulation.Seed + int64(i*1000)
	}
	evaluator := NewFitnessEvaluator(params, seeds, baseCfg)

	logFile, err := os.Create(filepath.Join(outputDir, "tune_log.csv"))
	if err != nil {
		return fmt.Errorf("creating log file: %w", err)
	}
	defer logFile.Close()
	logWriter := csv.NewWriter(logFile)
	defer logWriter.Flush()

	header := []string{"eval", "score"}
	for _, spec := range params.Specs {
		header = append(header, spec.Name)
	}
	logWriter.Write(header)

	maxEvals := max(baseCfg.Tune.Iterations, 1) * popSize
	evalCount := 0
	startTime := time.Now()

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			raw := params.Denormalize(x)
			score := evaluator.Evaluate(ctx, raw)
			evalCount++

			row := []string{strconv.Itoa(evalCount), strconv.FormatFloat(score, 'f', 6, 64)}
			for _, v := range params.Clamp(raw) {
				row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
			}
			logWriter.Write(row)
			logWriter.Flush()

			elapsed := time.Since(startTime)
			remaining := time.Duration(maxEvals-evalCount) * (elapsed / time.Duration(evalCount))
			_, best := evaluator.Best()
			slog.Info("evaluation",
				"eval", evalCount,
				"max_evals", maxEvals,
				"score", score,
				"best", best,
				"elapsed", formatDuration(elapsed),
				"eta", formatDuration(remaining),
			)
			return score
		},
	}

	settings := &optimize.Settings{
		FuncEvaluations: maxEvals,
		Concurrent:      0, // sequential evaluation
	}
	method := &optimize.CmaEsChol{
		InitStepSize: baseCfg.Tune.StepSize,
		Population:   popSize,
	}

	slog.Info("starting CMA-ES",
		"params", params.Dim(),
		"population", popSize,
		"max_evals", maxEvals,
		"seeds", len(seeds),
		"epochs_per_run", baseCfg.Tune.Epochs,
	)

	result, err := optimize.Minimize(problem, params.Normalize(params.DefaultVector()), settings, method)
	if err != nil {
		slog.Warn("optimization ended", "error", err)
	}

	bestParams, bestScore := evaluator.Best()
	if bestParams == nil && result != nil {
		bestParams = params.Clamp(params.Denormalize(result.X))
	}
	if bestParams == nil {
		return fmt.Errorf("no evaluation completed")
	}

	attrs := []any{"evals", evalCount, "elapsed", formatDuration(time.Since(startTime)), "score", bestScore}
	for i, spec := range params.Specs {
		attrs = append(attrs, spec.Name, bestParams[i])
	}
	slog.Info("optimization complete", attrs...)

	bestCfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	params.ApplyToConfig(bestCfg, bestParams)
	configOutPath := filepath.Join(outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(configOutPath); err != nil {
		return err
	}
	slog.Info("best config saved", "path", configOutPath)
	return nil
}
