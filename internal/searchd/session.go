// Package searchd exposes search strategies to an external orchestrator over
// gRPC, one session per tuning run, plus a small HTTP API for discovery,
// health and metrics.
package searchd

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/readex-eu/readex-ptf-sub000/internal/history"
	"github.com/readex-eu/readex-ptf-sub000/internal/metrics"
	"github.com/readex-eu/readex-ptf-sub000/internal/pool"
	"github.com/readex-eu/readex-ptf-sub000/internal/search"
	"github.com/readex-eu/readex-ptf-sub000/pkg/config"
	"github.com/readex-eu/readex-ptf-sub000/pkg/logger"
	"github.com/readex-eu/readex-ptf-sub000/pkg/models"
	"github.com/readex-eu/readex-ptf-sub000/pkg/utils"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrScenarioNotFound = errors.New("scenario not found")
	ErrSessionClosed    = errors.New("session closed")
	// ErrInvalidConfig wraps tuning configs rejected at session creation.
	ErrInvalidConfig = errors.New("invalid tuning config")
)

// Session is one remote tuning run. Strategy calls are serialized by mu.
type Session struct {
	ID        string
	Strategy  string
	CreatedAt time.Time

	mu       sync.Mutex
	strategy search.Strategy
	created  *pool.ScenarioPool
	results  *pool.ResultStore
	issued   *pool.FinishedPool
	finished bool
	closed   bool
}

// Report is the outcome view of a session.
type Report struct {
	Optimum *models.Scenario
	Worst   *models.Scenario
	Optima  []*models.Scenario
	Path    map[int]float64
}

// CreateScenarios asks the strategy for new scenarios and hands them out.
func (s *Session) CreateScenarios() ([]*models.Scenario, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}
	if err := s.strategy.CreateScenarios(); err != nil {
		return nil, err
	}
	scenarios := s.created.Drain()
	for _, sc := range scenarios {
		s.issued.Add(sc)
	}
	metrics.ObserveScenariosCreated(s.Strategy, len(scenarios))
	return scenarios, nil
}

// ReportResults records the measured properties of a handed-out scenario.
func (s *Session) ReportResults(scenarioID int, props []models.Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if _, ok := s.issued.Get(scenarioID); !ok {
		return fmt.Errorf("%w: %d", ErrScenarioNotFound, scenarioID)
	}
	s.results.Put(scenarioID, props...)
	return nil
}

// SearchFinished evaluates the reported results.
func (s *Session) SearchFinished() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, ErrSessionClosed
	}
	done, err := s.strategy.SearchFinished()
	if err != nil {
		return false, err
	}
	s.finished = done
	return done, nil
}

// Finished reports whether the strategy has completed.
func (s *Session) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished
}

// Report returns the optimum, worst, Pareto front and search path so far.
func (s *Session) Report() (*Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}

	optID, err := s.strategy.Optimum()
	if err != nil {
		return nil, err
	}
	worstID, err := s.strategy.Worst()
	if err != nil {
		return nil, err
	}
	r := &Report{Path: s.strategy.SearchPath()}
	r.Optimum, _ = s.issued.Get(optID)
	r.Worst, _ = s.issued.Get(worstID)
	if reporter, ok := s.strategy.(search.OptimaReporter); ok {
		ids, err := reporter.Optima()
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			if sc, ok := s.issued.Get(id); ok {
				r.Optima = append(r.Optima, sc)
			}
		}
	}
	return r, nil
}

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.strategy.Terminate()
	s.strategy.Finalize()
	s.closed = true
}

// SessionStore holds the open sessions.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	ids     *utils.IDAllocator
	history history.Source
}

// NewSessionStore creates a store. hist backs the history sampler and may be nil.
func NewSessionStore(hist history.Source) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		ids:      utils.NewIDAllocator(),
		history:  hist,
	}
}

// Create parses configYAML and opens a session running its strategy. A
// non-empty strategy overrides the config's strategy name.
func (st *SessionStore) Create(strategy, configYAML string) (*Session, error) {
	cfg, err := config.ParseTuningYAMLString(configYAML)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if strategy != "" {
		cfg.Strategy.Name = strategy
	}

	sess := &Session{
		ID:        utils.GenerateSessionID(),
		CreatedAt: time.Now().UTC(),
		created:   pool.NewScenarioPool(),
		results:   pool.NewResultStore(),
		issued:    pool.NewFinishedPool(),
	}
	host := search.Host{
		Created: sess.created,
		Results: sess.results,
		IDs:     st.ids,
		Logger:  logger.Default.With("session_id", sess.ID),
	}
	s, f, err := search.FromConfig(cfg, host, st.history)
	if err != nil {
		return nil, err
	}
	sess.strategy = s
	sess.Strategy = f.Name

	st.mu.Lock()
	defer st.mu.Unlock()
	if _, exists := st.sessions[sess.ID]; exists {
		return nil, fmt.Errorf("session already exists: %s", sess.ID)
	}
	st.sessions[sess.ID] = sess
	metrics.SessionOpened()
	return sess, nil
}

// Get looks up an open session.
func (st *SessionStore) Get(id string) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	sess, ok := st.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sess, nil
}

// Close finalizes the strategy of a session and forgets it.
func (st *SessionStore) Close(id string) error {
	st.mu.Lock()
	sess, ok := st.sessions[id]
	if ok {
		delete(st.sessions, id)
	}
	st.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	sess.close()
	metrics.SessionClosed()
	return nil
}

// List returns the open sessions, oldest first.
func (st *SessionStore) List() []*Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := make([]*Session, 0, len(st.sessions))
	for _, sess := range st.sessions {
		out = append(out, sess)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Len returns the number of open sessions.
func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// CloseAll closes every session. Used on shutdown.
func (st *SessionStore) CloseAll() {
	for _, sess := range st.List() {
		_ = st.Close(sess.ID)
	}
}
