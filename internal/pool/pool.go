// Package pool holds the host side of a tuning run: the created and
// finished scenario pools and the store of measured properties. All types
// are safe for concurrent use, since measurements land from worker
// goroutines.
package pool

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/readex-eu/readex-ptf-sub000/pkg/models"
)

// ErrNoResults is returned for scenarios without recorded properties.
var ErrNoResults = errors.New("no results recorded")

// ScenarioPool is a FIFO of scenarios waiting to be measured.
type ScenarioPool struct {
	mu    sync.Mutex
	queue []*models.Scenario
}

func NewScenarioPool() *ScenarioPool {
	return &ScenarioPool{}
}

func (p *ScenarioPool) Push(s *models.Scenario) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queue = append(p.queue, s)
}

func (p *ScenarioPool) Pop() (*models.Scenario, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.queue) == 0 {
		return nil, false
	}
	s := p.queue[0]
	p.queue[0] = nil
	p.queue = p.queue[1:]
	return s, true
}

func (p *ScenarioPool) Empty() bool {
	return p.Size() == 0
}

func (p *ScenarioPool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// Drain removes and returns every queued scenario in FIFO order.
func (p *ScenarioPool) Drain() []*models.Scenario {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := p.queue
	p.queue = nil
	return out
}

// FinishedPool indexes measured scenarios by id.
type FinishedPool struct {
	mu        sync.RWMutex
	scenarios map[int]*models.Scenario
}

func NewFinishedPool() *FinishedPool {
	return &FinishedPool{scenarios: make(map[int]*models.Scenario)}
}

func (p *FinishedPool) Add(s *models.Scenario) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scenarios[s.ID] = s
}

func (p *FinishedPool) Get(id int) (*models.Scenario, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s, ok := p.scenarios[id]
	return s, ok
}

func (p *FinishedPool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.scenarios)
}

// IDs returns the ids of all finished scenarios in ascending order.
func (p *FinishedPool) IDs() []int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	ids := make([]int, 0, len(p.scenarios))
	for id := range p.scenarios {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// ResultStore maps scenario ids to their measured properties.
type ResultStore struct {
	mu    sync.RWMutex
	props map[int][]models.Property
}

func NewResultStore() *ResultStore {
	return &ResultStore{props: make(map[int][]models.Property)}
}

// Put appends properties measured for a scenario.
func (s *ResultStore) Put(scenarioID int, props ...models.Property) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.props[scenarioID] = append(s.props[scenarioID], props...)
}

// Properties returns a copy of a scenario's properties.
func (s *ResultStore) Properties(scenarioID int) ([]models.Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	props, ok := s.props[scenarioID]
	if !ok || len(props) == 0 {
		return nil, fmt.Errorf("scenario %d: %w", scenarioID, ErrNoResults)
	}
	return append([]models.Property(nil), props...), nil
}

func (s *ResultStore) Has(scenarioID int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.props[scenarioID]) > 0
}

func (s *ResultStore) Delete(scenarioID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.props, scenarioID)
}

func (s *ResultStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.props)
}
