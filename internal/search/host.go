package search

import (
	"log/slog"
	"time"

	"github.com/readex-eu/readex-ptf-sub000/pkg/logger"
	"github.com/readex-eu/readex-ptf-sub000/pkg/models"
	"github.com/readex-eu/readex-ptf-sub000/pkg/utils"
)

// ScenarioSink is the host's created-scenario pool.
type ScenarioSink interface {
	Push(s *models.Scenario)
	Pop() (*models.Scenario, bool)
	Empty() bool
	Size() int
}

// ResultsSource returns the measured properties of a scenario. It must fail
// for scenarios that have not been measured.
type ResultsSource interface {
	Properties(scenarioID int) ([]models.Property, error)
}

// TimerService runs fn once after d. The returned stop function cancels a
// pending call and reports whether it did.
type TimerService interface {
	AfterFunc(d time.Duration, fn func()) (stop func() bool)
}

// SystemTimer is a TimerService backed by time.AfterFunc.
type SystemTimer struct{}

func (SystemTimer) AfterFunc(d time.Duration, fn func()) func() bool {
	return time.AfterFunc(d, fn).Stop
}

// Host bundles the collaborators a strategy talks to. Created and Results
// are required; the rest fall back to process defaults.
type Host struct {
	Created ScenarioSink
	Results ResultsSource
	Timer   TimerService
	IDs     *utils.IDAllocator
	Logger  *slog.Logger
}

func (h Host) withDefaults(strategy string) (Host, error) {
	if h.Created == nil {
		return h, configError("Initialize", "host has no created-scenario sink", nil)
	}
	if h.Results == nil {
		return h, configError("Initialize", "host has no results source", nil)
	}
	if h.Timer == nil {
		h.Timer = SystemTimer{}
	}
	if h.IDs == nil {
		h.IDs = utils.ScenarioIDs
	}
	h.Logger = logger.ForStrategy(h.Logger, strategy)
	return h, nil
}
