package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/readex-eu/readex-ptf-sub000/internal/driver"
	"github.com/readex-eu/readex-ptf-sub000/internal/history"
	"github.com/readex-eu/readex-ptf-sub000/internal/search"
	"github.com/readex-eu/readex-ptf-sub000/pkg/config"
	"github.com/readex-eu/readex-ptf-sub000/pkg/logger"
	"github.com/readex-eu/readex-ptf-sub000/pkg/models"
)

var (
	runConfigPath   string
	runMeasurements string
	runStrategy     string
	runParallelism  int
	runOutput       string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a search locally against recorded measurements",
	Long: `Runs the configured search strategy to completion, measuring every
scenario by looking it up in a replay table of recorded measurements.`,
	RunE: runSearch,
}

func init() {
	runCmd.Flags().StringVar(&runConfigPath, "config", "", "Tuning config path (required)")
	runCmd.Flags().StringVar(&runMeasurements, "measurements", "", "Replay table path (defaults to the config's measurements)")
	runCmd.Flags().StringVar(&runStrategy, "strategy", "", "Override the configured strategy")
	runCmd.Flags().IntVar(&runParallelism, "parallelism", 0, "Override the driver parallelism")
	runCmd.Flags().StringVar(&runOutput, "output", "text", "Result format: text or json")

	_ = runCmd.MarkFlagRequired("config")
	rootCmd.AddCommand(runCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadTuning(runConfigPath)
	if err != nil {
		return err
	}
	if runStrategy != "" {
		cfg.Strategy.Name = runStrategy
	}
	if runParallelism > 0 {
		cfg.Driver.Parallelism = runParallelism
	}
	if runOutput != "text" && runOutput != "json" {
		return fmt.Errorf("unsupported output format %q", runOutput)
	}

	replayPath := runMeasurements
	if replayPath == "" {
		replayPath = cfg.Measurements
	}
	if replayPath == "" {
		return fmt.Errorf("a replay table is required: pass --measurements or set measurements in the config")
	}
	measurer, err := driver.LoadReplay(replayPath)
	if err != nil {
		return err
	}

	var hist history.Source
	if cfg.History.Path != "" {
		src, err := history.LoadFile(cfg.History.Path)
		if err != nil {
			return err
		}
		hist = src
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d := driver.New(measurer, driver.Options{
		Parallelism:   cfg.Driver.Parallelism,
		MaxIterations: cfg.Driver.MaxIterations,
		Logger:        logger.Default,
	})
	s, f, err := search.FromConfig(cfg, d.Host(), hist)
	if err != nil {
		return err
	}
	logger.Info("starting search",
		"strategy", f.Name,
		"replay_records", measurer.Len(),
		"parallelism", cfg.Driver.Parallelism)

	res, err := d.Run(ctx, f.Name, s)
	if err != nil {
		return err
	}
	if runOutput == "json" {
		return writeResultJSON(cmd.OutOrStdout(), res)
	}
	return writeResultText(cmd.OutOrStdout(), res)
}

type scenarioOut struct {
	ID     int                `json:"id"`
	Key    string             `json:"key"`
	Values map[string]int     `json:"values"`
	Result map[string]float64 `json:"results,omitempty"`
}

type resultOut struct {
	Strategy     string                 `json:"strategy"`
	Optimum      *scenarioOut           `json:"optimum"`
	OptimumValue float64                `json:"optimum_value"`
	Worst        *scenarioOut           `json:"worst"`
	WorstValue   float64                `json:"worst_value"`
	Optima       []scenarioOut          `json:"optima,omitempty"`
	Iterations   int                    `json:"iterations"`
	Measured     int                    `json:"measured"`
	Converged    bool                   `json:"converged"`
	DurationMS   int64                  `json:"duration_ms"`
	Path         map[int]float64        `json:"path"`
	Properties   map[string]propertyOut `json:"properties"`
}

type propertyOut struct {
	Count int     `json:"count"`
	Min   float64 `json:"min"`
	Mean  float64 `json:"mean"`
	Max   float64 `json:"max"`
	P95   float64 `json:"p95"`
}

func scenarioOf(s *models.Scenario) *scenarioOut {
	if s == nil {
		return nil
	}
	return &scenarioOut{ID: s.ID, Key: s.Key(), Values: s.Values(), Result: s.Results()}
}

func writeResultJSON(w io.Writer, res *driver.Result) error {
	out := resultOut{
		Strategy:     res.Strategy,
		Optimum:      scenarioOf(res.Optimum),
		OptimumValue: res.OptimumValue,
		Worst:        scenarioOf(res.Worst),
		WorstValue:   res.WorstValue,
		Iterations:   res.Iterations,
		Measured:     res.Measured,
		Converged:    res.Converged,
		DurationMS:   res.Duration.Milliseconds(),
		Path:         res.Path,
		Properties:   make(map[string]propertyOut, len(res.Properties)),
	}
	for _, s := range res.Optima {
		out.Optima = append(out.Optima, *scenarioOf(s))
	}
	for name, agg := range res.Properties {
		out.Properties[name] = propertyOut{Count: agg.Count, Min: agg.Min, Mean: agg.Mean, Max: agg.Max, P95: agg.P95}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writeResultText(w io.Writer, res *driver.Result) error {
	fmt.Fprintf(w, "strategy:   %s\n", res.Strategy)
	fmt.Fprintf(w, "optimum:    %s = %g\n", res.Optimum, res.OptimumValue)
	fmt.Fprintf(w, "worst:      %s = %g\n", res.Worst, res.WorstValue)
	for _, s := range res.Optima {
		fmt.Fprintf(w, "pareto:     %s %v\n", s, s.Results())
	}
	fmt.Fprintf(w, "iterations: %d (measured %d, converged %v, %s)\n",
		res.Iterations, res.Measured, res.Converged, res.Duration)

	names := make([]string, 0, len(res.Properties))
	for name := range res.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		agg := res.Properties[name]
		fmt.Fprintf(w, "property:   %s n=%d min=%g mean=%g max=%g\n", name, agg.Count, agg.Min, agg.Mean, agg.Max)
	}
	return nil
}
