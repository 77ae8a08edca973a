// Package driver runs a search strategy to completion in-process: it owns the
// host pools, measures every created scenario through a Measurer, and feeds
// the results back until the strategy reports that it is finished.
package driver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/readex-eu/readex-ptf-sub000/internal/metrics"
	"github.com/readex-eu/readex-ptf-sub000/internal/pool"
	"github.com/readex-eu/readex-ptf-sub000/internal/search"
	"github.com/readex-eu/readex-ptf-sub000/pkg/logger"
	"github.com/readex-eu/readex-ptf-sub000/pkg/models"
	"github.com/readex-eu/readex-ptf-sub000/pkg/utils"
)

// ErrIterationLimit is returned when a strategy did not finish within
// Options.MaxIterations.
var ErrIterationLimit = errors.New("iteration limit reached")

// Defaults used when Options leaves a field at zero.
const (
	DefaultParallelism   = 1
	DefaultMaxIterations = 10000
)

// Options control one driver
type Options struct {
	// Parallelism bounds the measurements in flight.
	Parallelism int
	// MaxIterations caps create/measure/finish rounds.
	MaxIterations int
	Logger        *slog.Logger
	// Timer and IDs are passed to the strategy host; nil uses the process defaults.
	Timer search.TimerService
	IDs   *utils.IDAllocator
}

// Result is the outcome of a tuning run
type Result struct {
	Strategy     string
	Optimum      *models.Scenario
	OptimumValue float64
	Worst        *models.Scenario
	WorstValue   float64
	// Optima is the Pareto front of strategies reporting one.
	Optima     []*models.Scenario
	Path       map[int]float64
	Iterations int
	Measured   int
	Converged  bool
	Duration   time.Duration
	// Properties summarizes every measured property by name.
	Properties map[string]*metrics.Aggregation
}

// Driver owns the host side of a tuning run
type Driver struct {
	measurer Measurer
	opts     Options
	log      *slog.Logger

	created   *pool.ScenarioPool
	finished  *pool.FinishedPool
	results   *pool.ResultStore
	collector *metrics.Collector
}

// New creates a driver measuring through m.
func New(m Measurer, opts Options) *Driver {
	if opts.Parallelism <= 0 {
		opts.Parallelism = DefaultParallelism
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultMaxIterations
	}
	log := opts.Logger
	if log == nil {
		log = logger.Default
	}
	return &Driver{
		measurer:  m,
		opts:      opts,
		log:       log.With("component", "driver"),
		created:   pool.NewScenarioPool(),
		finished:  pool.NewFinishedPool(),
		results:   pool.NewResultStore(),
		collector: metrics.NewCollector(),
	}
}

// Host returns the collaborators a strategy driven by d must be initialized with.
func (d *Driver) Host() search.Host {
	return search.Host{
		Created: d.created,
		Results: d.results,
		Timer:   d.opts.Timer,
		IDs:     d.opts.IDs,
		Logger:  d.opts.Logger,
	}
}

// Finished returns a measured scenario.
func (d *Driver) Finished(id int) (*models.Scenario, bool) {
	return d.finished.Get(id)
}

// Run drives s until SearchFinished reports true. s must have been
// initialized with d.Host(). On error or cancellation the strategy is
// terminated and no result is returned.
func (d *Driver) Run(ctx context.Context, name string, s search.Strategy) (*Result, error) {
	start := time.Now()
	d.collector.Start()
	log := d.log.With("strategy", name)
	log.Info("tuning run started", "parallelism", d.opts.Parallelism, "max_iterations", d.opts.MaxIterations)

	iterations, err := d.loop(ctx, name, log, s)
	d.collector.Stop()
	if err != nil {
		s.Terminate()
		metrics.ObserveRun(name, metrics.OutcomeError, iterations)
		log.Error("tuning run failed", "iteration", iterations, "error", err)
		return nil, err
	}

	result, err := d.result(name, s)
	if err != nil {
		metrics.ObserveRun(name, metrics.OutcomeError, iterations)
		return nil, err
	}
	result.Iterations = iterations
	result.Converged = true
	result.Duration = time.Since(start)
	metrics.ObserveRun(name, metrics.OutcomeSuccess, iterations)
	log.Info("tuning run finished",
		"iterations", iterations, "measured", result.Measured,
		"optimum", result.Optimum.Key(), "value", result.OptimumValue, "duration", result.Duration)
	return result, nil
}

func (d *Driver) loop(ctx context.Context, name string, log *slog.Logger, s search.Strategy) (int, error) {
	for iter := 1; iter <= d.opts.MaxIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return iter - 1, fmt.Errorf("tuning run cancelled: %w", err)
		}
		if err := s.CreateScenarios(); err != nil {
			return iter, fmt.Errorf("iteration %d: create scenarios: %w", iter, err)
		}

		batch := d.created.Drain()
		metrics.ObserveScenariosCreated(name, len(batch))
		if err := d.measureAll(ctx, batch); err != nil {
			return iter, fmt.Errorf("iteration %d: %w", iter, err)
		}

		done, err := s.SearchFinished()
		if err != nil {
			return iter, fmt.Errorf("iteration %d: search finished: %w", iter, err)
		}
		log.Debug("iteration complete", "iteration", iter, "scenarios", len(batch), "done", done)
		if done {
			return iter, nil
		}
	}
	return d.opts.MaxIterations, fmt.Errorf("%w: %d", ErrIterationLimit, d.opts.MaxIterations)
}

// measureAll measures batch with at most Parallelism measurements in flight
// and stores every result before returning. The first failure is returned
// once all measurements have completed.
func (d *Driver) measureAll(ctx context.Context, batch []*models.Scenario) error {
	if len(batch) == 0 {
		return nil
	}

	semaphore := make(chan struct{}, d.opts.Parallelism)
	var wg sync.WaitGroup
	errs := make([]error, len(batch))

	for i, sc := range batch {
		wg.Add(1)
		go func(idx int, sc *models.Scenario) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			errs[idx] = d.measure(ctx, sc)
		}(i, sc)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func (d *Driver) measure(ctx context.Context, sc *models.Scenario) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("measure scenario %d: %w", sc.ID, err)
	}
	began := time.Now()
	props, err := d.measurer.Measure(ctx, sc)
	if err != nil {
		metrics.ObserveMeasurement(time.Since(began), metrics.OutcomeError)
		return fmt.Errorf("measure scenario %d: %w", sc.ID, err)
	}
	metrics.ObserveMeasurement(time.Since(began), metrics.OutcomeSuccess)

	d.results.Put(sc.ID, props...)
	d.finished.Add(sc)
	for _, p := range props {
		d.collector.Record(p.Name, sc.ID, p.Value)
	}
	d.log.Debug("scenario measured", "id", sc.ID, "config", sc.Key(), "properties", len(props))
	return nil
}

func (d *Driver) result(name string, s search.Strategy) (*Result, error) {
	path := s.SearchPath()
	optID, err := s.Optimum()
	if err != nil {
		return nil, fmt.Errorf("optimum: %w", err)
	}
	worstID, err := s.Worst()
	if err != nil {
		return nil, fmt.Errorf("worst: %w", err)
	}

	result := &Result{
		Strategy:     name,
		OptimumValue: path[optID],
		WorstValue:   path[worstID],
		Path:         path,
		Measured:     d.finished.Len(),
		Properties:   make(map[string]*metrics.Aggregation),
	}
	var ok bool
	if result.Optimum, ok = d.finished.Get(optID); !ok {
		return nil, fmt.Errorf("optimum scenario %d was never measured", optID)
	}
	if result.Worst, ok = d.finished.Get(worstID); !ok {
		return nil, fmt.Errorf("worst scenario %d was never measured", worstID)
	}

	if reporter, ok := s.(search.OptimaReporter); ok {
		ids, err := reporter.Optima()
		if err != nil {
			return nil, fmt.Errorf("optima: %w", err)
		}
		for _, id := range ids {
			if sc, ok := d.finished.Get(id); ok {
				result.Optima = append(result.Optima, sc)
			}
		}
	}

	for _, prop := range d.collector.Objectives() {
		result.Properties[prop] = d.collector.Aggregate(prop)
	}
	return result, nil
}
