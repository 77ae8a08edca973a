package search

import (
	"fmt"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"github.com/readex-eu/readex-ptf-sub000/pkg/models"
	"github.com/readex-eu/readex-ptf-sub000/pkg/utils"
)

const (
	DefaultPopulationSize    = 20
	DefaultMaxGenerations    = 100
	DefaultMaxAttempts       = 10000
	DefaultAttemptsPerMember = 100
	// MinReproductionPopulation is the smallest population that can pick a
	// parent plus three distinct donors.
	MinReproductionPopulation = 5
	DefaultDifferentialWeight = 0.5
	DefaultCrossoverRate      = 0.5
	repeatLag                 = 3
)

// GDE3State is the life-cycle stage of a GDE3 search.
type GDE3State int

const (
	StateUninitialized GDE3State = iota
	StatePopulationSeeded
	StateEvaluating
	StateReproducing
	StateConverged
)

func (s GDE3State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StatePopulationSeeded:
		return "population_seeded"
	case StateEvaluating:
		return "evaluating"
	case StateReproducing:
		return "reproducing"
	case StateConverged:
		return "converged"
	default:
		return "unknown"
	}
}

// member is one population slot. genome holds a feasible-value index per
// dimension; parent indexes the population for children awaiting selection.
type member struct {
	scenario *models.Scenario
	genome   []int
	values   []float64
	parent   int
	optimal  bool
}

type dimension struct {
	space int
	param models.TuningParameter
}

type evaluation struct {
	id     int
	values []float64
}

// GDE3 is a multi-objective differential evolution search. Mutation works
// on feasible-value indices, so every child is feasible by construction and
// discrete sets are handled the same way as stepped ranges.
type GDE3 struct {
	host        Host
	log         *slog.Logger
	initialized bool

	spaces     []*models.SearchSpace
	objectives []ObjectiveFunction

	populationSize    int
	maxGenerations    int
	maxAttempts       int
	attemptsPerMember int
	f, cr             float64
	seed              int64
	rng               *utils.RandSource

	timeout    time.Duration
	stopTimer  func() bool
	timerFired atomic.Bool

	state       GDE3State
	reason      string
	dims        []dimension
	population  []member
	children    []member
	signatures  map[string]bool
	generation  int
	attempts    int
	populations [][]int
	evaluated   []evaluation
	track       *tracker
	convergence ConvergenceCheck
	customCheck bool
}

// NewGDE3 creates a GDE3 search with default knobs.
func NewGDE3() *GDE3 {
	return &GDE3{
		populationSize:    DefaultPopulationSize,
		maxGenerations:    DefaultMaxGenerations,
		maxAttempts:       DefaultMaxAttempts,
		attemptsPerMember: DefaultAttemptsPerMember,
		f:                 DefaultDifferentialWeight,
		cr:                DefaultCrossoverRate,
		signatures:        make(map[string]bool),
		track:             newTracker(),
	}
}

func (g *GDE3) Initialize(host Host) error {
	h, err := host.withDefaults("gde3")
	if err != nil {
		return err
	}
	g.host = h
	g.log = h.Logger
	g.rng = utils.NewRandSource(g.seed)
	g.initialized = true
	g.log.Debug("random source seeded", "seed", g.rng.Seed())
	return nil
}

func (g *GDE3) SetPopulationSize(n int) {
	if n > 0 {
		g.populationSize = n
	}
}

func (g *GDE3) SetGenerationLimits(maxGenerations, maxAttempts int) {
	if maxGenerations > 0 {
		g.maxGenerations = maxGenerations
	}
	if maxAttempts > 0 {
		g.maxAttempts = maxAttempts
	}
}

// SetTimer caps the wall-clock time of the search. The clock starts when
// the population is seeded.
func (g *GDE3) SetTimer(d time.Duration) {
	g.timeout = d
}

func (g *GDE3) SetSeed(seed int64) {
	g.seed = seed
	if g.initialized {
		g.rng = utils.NewRandSource(seed)
	}
}

// SetAttemptsPerMember sets the per-member budget used for seeding and for
// each generation.
func (g *GDE3) SetAttemptsPerMember(n int) {
	if n > 0 {
		g.attemptsPerMember = n
	}
}

// SetConvergence replaces the stopping rule.
func (g *GDE3) SetConvergence(check ConvergenceCheck) {
	g.convergence = check
	g.customCheck = check != nil
}

func (g *GDE3) AddSearchSpace(space *models.SearchSpace) error {
	if space == nil {
		return configError("AddSearchSpace", "search space is nil", nil)
	}
	if g.state != StateUninitialized {
		return configError("AddSearchSpace", "search already started", nil)
	}
	g.spaces = append(g.spaces, space)
	return nil
}

func (g *GDE3) AddObjectiveFunction(obj ObjectiveFunction) {
	if obj != nil {
		g.objectives = append(g.objectives, obj)
	}
}

// State returns the current life-cycle stage.
func (g *GDE3) State() GDE3State {
	return g.state
}

// Generation returns the number of completed generations.
func (g *GDE3) Generation() int {
	return g.generation
}

// ConvergenceReason explains why the search stopped.
func (g *GDE3) ConvergenceReason() string {
	return g.reason
}

// PopulationIDs returns the scenario ids of the current population.
func (g *GDE3) PopulationIDs() []int {
	return populationIDs(g.population)
}

// CreateScenarios seeds the population on first call and queues one child
// per member afterwards. Calls while measurements are pending queue nothing.
func (g *GDE3) CreateScenarios() error {
	if !g.initialized {
		return ErrNotInitialized
	}
	if len(g.spaces) == 0 {
		return configError("CreateScenarios", "gde3 search needs a search space", ErrNoSearchSpaces)
	}

	switch g.state {
	case StateUninitialized:
		g.seedPopulation()
		return nil
	case StateEvaluating:
		g.reproduce()
		return nil
	default:
		return nil
	}
}

func (g *GDE3) seedPopulation() {
	g.dims = g.dims[:0]
	for i, space := range g.spaces {
		for _, p := range space.Parameters() {
			g.dims = append(g.dims, dimension{space: i, param: p})
		}
	}
	if g.convergence == nil {
		g.convergence = NewCombinedCheck(
			&TimerCheck{},
			&RepeatedPopulationCheck{Lag: repeatLag},
			&GenerationLimitCheck{Max: g.maxGenerations},
			&AttemptLimitCheck{Max: g.maxAttempts},
		)
	}
	if g.timeout > 0 {
		g.stopTimer = g.host.Timer.AfterFunc(g.timeout, func() { g.timerFired.Store(true) })
	}

	budget := g.populationSize * g.attemptsPerMember
	draws := 0
	for len(g.population) < g.populationSize && draws < budget {
		draws++
		genome := make([]int, len(g.dims))
		for d, dim := range g.dims {
			genome[d] = g.rng.Intn(dim.param.Restriction.Cardinality())
		}
		variants := g.variants(genome)
		if !feasible(variants) {
			continue
		}
		key := models.ConfigurationKey(variants)
		if g.signatures[key] {
			continue
		}
		g.signatures[key] = true
		g.population = append(g.population, g.spawn(genome, variants, -1))
	}

	if len(g.population) < g.populationSize {
		g.log.Warn("population seeded short",
			"requested", g.populationSize, "seeded", len(g.population), "draws", draws)
	} else {
		g.log.Info("population seeded", "size", len(g.population), "draws", draws)
	}
	g.state = StatePopulationSeeded
}

type candidate struct {
	genome   []int
	variants []models.Variant
	parent   int
}

func (g *GDE3) reproduce() {
	if len(g.population) < MinReproductionPopulation {
		g.log.Warn("population too small to reproduce",
			"size", len(g.population), "min", MinReproductionPopulation)
		g.converge("population too small to reproduce")
		return
	}

	budget := g.populationSize * g.attemptsPerMember
	spent := 0
	generationKeys := make(map[string]bool, len(g.population))
	accepted := make([]candidate, 0, len(g.population))
	for idx := range g.population {
		for {
			if spent >= budget {
				g.log.Warn("generation abandoned",
					"generation", g.generation, "children", len(accepted), "attempts", spent)
				g.converge(fmt.Sprintf("generation_abandoned: generation %d spent its budget of %d attempts with %d of %d children",
					g.generation, budget, len(accepted), len(g.population)))
				return
			}
			// The cumulative cap holds inside a generation too.
			if g.attempts >= g.maxAttempts {
				g.log.Warn("attempt limit reached during reproduction",
					"generation", g.generation, "children", len(accepted), "attempts", g.attempts)
				g.converge(fmt.Sprintf("attempt_limit: spent %d reproduction attempts", g.attempts))
				return
			}
			spent++
			g.attempts++

			genome := g.mutate(idx)
			variants := g.variants(genome)
			if !feasible(variants) {
				continue
			}
			key := models.ConfigurationKey(variants)
			if g.signatures[key] || generationKeys[key] {
				continue
			}
			generationKeys[key] = true
			accepted = append(accepted, candidate{genome: genome, variants: variants, parent: idx})
			break
		}
	}

	for key := range generationKeys {
		g.signatures[key] = true
	}
	for _, c := range accepted {
		g.children = append(g.children, g.spawn(c.genome, c.variants, c.parent))
	}
	g.state = StateReproducing
	g.log.Debug("generation queued", "generation", g.generation, "children", len(g.children), "attempts", spent)
}

// mutate builds a DE/rand/1/bin trial genome for population index idx.
func (g *GDE3) mutate(idx int) []int {
	parent := g.population[idx].genome
	r := g.rng.DistinctExcluding(len(g.population), 3, idx)
	r0, r1, r2 := g.population[r[0]].genome, g.population[r[1]].genome, g.population[r[2]].genome
	jrand := g.rng.Intn(len(g.dims))

	child := make([]int, len(parent))
	for d := range parent {
		if d == jrand || g.rng.BernoulliBool(g.cr) {
			x := float64(r2[d]) + g.f*float64(r0[d]-r1[d])
			child[d] = utils.RoundIndex(x, g.dims[d].param.Restriction.Cardinality())
		} else {
			child[d] = parent[d]
		}
	}
	return child
}

func (g *GDE3) variants(genome []int) []models.Variant {
	perSpace := make([][]models.Assignment, len(g.spaces))
	for d, dim := range g.dims {
		value := dim.param.Restriction.ValueAt(genome[d])
		perSpace[dim.space] = append(perSpace[dim.space], models.Assignment{Parameter: dim.param, Value: value})
	}
	out := make([]models.Variant, len(g.spaces))
	for i := range perSpace {
		out[i] = models.NewVariant(perSpace[i]...)
	}
	return out
}

func (g *GDE3) spawn(genome []int, variants []models.Variant, parent int) member {
	entries := make([]models.ScenarioEntry, len(variants))
	for i, v := range variants {
		entries[i] = models.ScenarioEntry{Variant: v, Entities: g.spaces[i].Entities()}
	}
	s := models.NewScenario(g.host.IDs.Next(), entries...)
	g.host.Created.Push(s)
	g.log.Debug("scenario queued", "id", s.ID, "config", s.Key(), "parent", parent)
	return member{scenario: s, genome: genome, parent: parent}
}

// SearchFinished evaluates the queued scenarios, runs selection and reports
// whether the search has converged. A timer that fired during measurement
// still lets the current generation be selected.
func (g *GDE3) SearchFinished() (bool, error) {
	if !g.initialized {
		return false, ErrNotInitialized
	}
	timerFired := g.timerFired.Load()
	if len(g.objectives) == 0 {
		g.log.Info("no objective registered, using passthrough")
		g.objectives = append(g.objectives, &PassthroughObjective{})
	}

	switch g.state {
	case StateUninitialized:
		return false, nil
	case StateConverged:
		return true, nil
	case StatePopulationSeeded:
		if err := g.evaluate(g.population); err != nil {
			return false, err
		}
		g.populations = append(g.populations, g.PopulationIDs())
		g.state = StateEvaluating
		if len(g.population) < MinReproductionPopulation {
			g.log.Warn("population too small to reproduce",
				"size", len(g.population), "min", MinReproductionPopulation)
			g.converge("population too small to reproduce")
			return true, nil
		}
	case StateReproducing:
		if err := g.evaluate(g.children); err != nil {
			return false, err
		}
		g.selectSurvivors()
		g.generation++
		g.populations = append(g.populations, g.PopulationIDs())
		g.state = StateEvaluating
		g.log.Info("generation selected",
			"generation", g.generation, "population", len(g.population),
			"non_dominated", countOptimal(g.population), "attempts", g.attempts)
	}

	done, reason := g.convergence.CheckConvergence(GenerationState{
		Generation:    g.generation,
		TotalAttempts: g.attempts,
		Populations:   g.populations,
		TimerFired:    timerFired,
	})
	if done {
		g.converge(reason)
		return true, nil
	}
	return false, nil
}

func (g *GDE3) evaluate(members []member) error {
	for i := range members {
		m := &members[i]
		if m.values != nil {
			continue
		}
		values, err := evaluateAll(g.objectives, m.scenario.ID, g.host.Results)
		if err != nil {
			return fmt.Errorf("evaluate scenario %d: %w", m.scenario.ID, err)
		}
		for k, obj := range g.objectives {
			m.scenario.SetResult(obj.Name(), values[k])
		}
		m.values = values
		g.evaluated = append(g.evaluated, evaluation{id: m.scenario.ID, values: values})
		g.track.record(m.scenario.ID, values[0])
	}
	return nil
}

// selectSurvivors resolves every parent/child link, then prunes the merged
// population back to populationSize.
func (g *GDE3) selectSurvivors() {
	for i := range g.population {
		g.population[i].optimal = false
	}
	removed := make([]bool, len(g.population))
	kept := make([]bool, len(g.children))
	for c := range g.children {
		child := &g.children[c]
		parent := &g.population[child.parent]
		switch {
		case weaklyDominates(parent.values, child.values):
		case weaklyDominates(child.values, parent.values):
			removed[child.parent] = true
			kept[c] = true
		default:
			kept[c] = true
			parent.optimal = true
			child.optimal = true
		}
	}

	next := make([]member, 0, len(g.population)+len(g.children))
	for i, m := range g.population {
		if !removed[i] {
			next = append(next, m)
		}
	}
	for c, m := range g.children {
		if kept[c] {
			m.parent = -1
			next = append(next, m)
		}
	}
	g.population = next
	g.children = nil
	g.prune()
}

func (g *GDE3) prune() {
	for len(g.population) > g.populationSize {
		j := g.firstDominated()
		if j < 0 {
			break
		}
		g.population = append(g.population[:j], g.population[j+1:]...)
	}
	for len(g.population) > g.populationSize {
		vectors := make([][]float64, len(g.population))
		for i, m := range g.population {
			vectors[i] = m.values
		}
		j := lowestIndex(crowdingDistances(vectors))
		g.population = append(g.population[:j], g.population[j+1:]...)
	}
}

// firstDominated returns the first member dominated by another one. Equal
// objective vectors count as the earlier member dominating the later.
func (g *GDE3) firstDominated() int {
	for j := range g.population {
		for i := range g.population {
			if i == j {
				continue
			}
			a, b := g.population[i].values, g.population[j].values
			if strictlyDominates(a, b) || (i < j && weaklyDominates(a, b)) {
				return j
			}
		}
	}
	return -1
}

func (g *GDE3) converge(reason string) {
	g.state = StateConverged
	g.reason = reason
	if g.stopTimer != nil {
		g.stopTimer()
		g.stopTimer = nil
	}
	g.log.Info("search converged", "reason", reason, "generation", g.generation, "evaluated", len(g.evaluated))
}

// Optimum returns the first scenario holding the minimum for a single
// objective, or the lowest id on the Pareto front otherwise.
func (g *GDE3) Optimum() (int, error) {
	if len(g.evaluated) == 0 {
		return 0, ErrNotEvaluated
	}
	if len(g.objectives) <= 1 {
		return g.track.Optimum()
	}
	optima, err := g.Optima()
	if err != nil {
		return 0, err
	}
	return optima[0], nil
}

// Optima returns the ids of every evaluated scenario that no other
// evaluated scenario strictly dominates, in ascending order.
func (g *GDE3) Optima() ([]int, error) {
	if len(g.evaluated) == 0 {
		return nil, ErrNotEvaluated
	}
	vectors := make([][]float64, len(g.evaluated))
	for i, e := range g.evaluated {
		vectors[i] = e.values
	}
	front := paretoFront(vectors)
	ids := make([]int, len(front))
	for i, idx := range front {
		ids[i] = g.evaluated[idx].id
	}
	sort.Ints(ids)
	return ids, nil
}

// Worst returns the first scenario holding the maximum of the first objective.
func (g *GDE3) Worst() (int, error) {
	return g.track.Worst()
}

// SearchPath maps every evaluated scenario to its first objective value.
func (g *GDE3) SearchPath() map[int]float64 {
	return g.track.SearchPath()
}

// Objectives returns the objective vector of an evaluated scenario.
func (g *GDE3) Objectives(id int) ([]float64, bool) {
	for _, e := range g.evaluated {
		if e.id == id {
			return append([]float64(nil), e.values...), true
		}
	}
	return nil, false
}

// Clear resets the run, keeping knobs and objectives. A seeded search
// restarts from the same seed.
func (g *GDE3) Clear() {
	if g.stopTimer != nil {
		g.stopTimer()
		g.stopTimer = nil
	}
	g.timerFired.Store(false)
	g.spaces = nil
	g.state = StateUninitialized
	g.reason = ""
	g.dims = nil
	g.population = nil
	g.children = nil
	g.signatures = make(map[string]bool)
	g.generation = 0
	g.attempts = 0
	g.populations = nil
	g.evaluated = nil
	g.track.reset()
	if !g.customCheck {
		g.convergence = nil
	}
	if g.initialized {
		g.rng = utils.NewRandSource(g.rng.Seed())
	}
}

func (g *GDE3) Terminate() {
	if g.state != StateConverged && g.state != StateUninitialized {
		g.converge("terminated")
	}
	if g.stopTimer != nil {
		g.stopTimer()
		g.stopTimer = nil
	}
}

func (g *GDE3) Finalize() {
	g.Clear()
	g.objectives = nil
}

func feasible(variants []models.Variant) bool {
	for _, v := range variants {
		if !v.Feasible() {
			return false
		}
	}
	return true
}

func countOptimal(members []member) int {
	n := 0
	for _, m := range members {
		if m.optimal {
			n++
		}
	}
	return n
}

func populationIDs(members []member) []int {
	ids := make([]int, len(members))
	for i, m := range members {
		ids[i] = m.scenario.ID
	}
	return ids
}
