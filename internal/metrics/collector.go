package metrics

import (
	"sort"
	"sync"
	"time"
)

// Sample is one objective value observed for a scenario.
type Sample struct {
	ScenarioID int       `json:"scenario_id"`
	Objective  string    `json:"objective"`
	Value      float64   `json:"value"`
	Timestamp  time.Time `json:"timestamp"`
}

// Aggregation summarizes the samples of one objective.
type Aggregation struct {
	Count int     `json:"count"`
	Sum   float64 `json:"sum"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Mean  float64 `json:"mean"`
	P50   float64 `json:"p50"`
	P95   float64 `json:"p95"`
	P99   float64 `json:"p99"`
}

// Collector keeps the objective values seen during one tuning run
type Collector struct {
	mu sync.RWMutex

	startTime time.Time
	endTime   time.Time

	// objective name -> samples in arrival order
	series map[string][]Sample

	// objective name -> cached aggregation
	aggregations map[string]*Aggregation
}

// NewCollector creates a new objective collector
func NewCollector() *Collector {
	return &Collector{
		startTime:    time.Now(),
		series:       make(map[string][]Sample),
		aggregations: make(map[string]*Aggregation),
	}
}

// Start marks the start of collection
func (c *Collector) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.startTime = time.Now()
}

// Stop marks the end of collection
func (c *Collector) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endTime = time.Now()
}

// Duration returns the time between Start and Stop, or until now while running.
func (c *Collector) Duration() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.endTime.IsZero() {
		return time.Since(c.startTime)
	}
	return c.endTime.Sub(c.startTime)
}

// Record stores one objective value
func (c *Collector) Record(objective string, scenarioID int, value float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.series[objective] = append(c.series[objective], Sample{
		ScenarioID: scenarioID,
		Objective:  objective,
		Value:      value,
		Timestamp:  time.Now(),
	})
	delete(c.aggregations, objective)
}

// Series returns a copy of the samples of one objective
func (c *Collector) Series(objective string) []Sample {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Sample(nil), c.series[objective]...)
}

// Aggregate returns cached statistics for an objective, or nil if nothing
// was recorded.
func (c *Collector) Aggregate(objective string) *Aggregation {
	c.mu.Lock()
	defer c.mu.Unlock()

	if agg, ok := c.aggregations[objective]; ok {
		return agg
	}
	samples := c.series[objective]
	if len(samples) == 0 {
		return nil
	}
	agg := calculateAggregation(samples)
	c.aggregations[objective] = agg
	return agg
}

// Objectives returns the recorded objective names, sorted
func (c *Collector) Objectives() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.series))
	for name := range c.series {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clear drops all samples and restarts the clock
func (c *Collector) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.series = make(map[string][]Sample)
	c.aggregations = make(map[string]*Aggregation)
	c.startTime = time.Now()
	c.endTime = time.Time{}
}

func calculateAggregation(samples []Sample) *Aggregation {
	values := make([]float64, len(samples))
	for i, s := range samples {
		values[i] = s.Value
	}
	sort.Float64s(values)

	sum := 0.0
	for _, v := range values {
		sum += v
	}

	return &Aggregation{
		Count: len(values),
		Sum:   sum,
		Min:   values[0],
		Max:   values[len(values)-1],
		Mean:  sum / float64(len(values)),
		P50:   calculatePercentile(values, 0.50),
		P95:   calculatePercentile(values, 0.95),
		P99:   calculatePercentile(values, 0.99),
	}
}

// calculatePercentile interpolates linearly between the closest ranks of a
// sorted slice.
func calculatePercentile(sortedValues []float64, p float64) float64 {
	if len(sortedValues) == 0 {
		return 0.0
	}
	if len(sortedValues) == 1 {
		return sortedValues[0]
	}

	index := p * float64(len(sortedValues)-1)
	lower := int(index)
	upper := lower + 1

	if upper >= len(sortedValues) {
		return sortedValues[len(sortedValues)-1]
	}

	weight := index - float64(lower)
	return sortedValues[lower]*(1-weight) + sortedValues[upper]*weight
}
