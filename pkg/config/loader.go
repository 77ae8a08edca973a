package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadTuning reads a tuning file, overlays it on the defaults, applies
// environment overrides and validates the result.
func LoadTuning(path string) (*Tuning, error) {
	cfg, err := load(path)
	if err != nil {
		return nil, err
	}
	if err := validateTuning(cfg); err != nil {
		return nil, fmt.Errorf("invalid tuning file %s: %w", path, err)
	}
	return cfg, nil
}

// LoadServer is LoadTuning for the search service: search spaces arrive
// per session, so only the logging and listener settings are validated.
// An empty path yields the defaults plus environment overrides.
func LoadServer(path string) (*Tuning, error) {
	cfg, err := load(path)
	if err != nil {
		return nil, err
	}
	if err := validateCommon(cfg); err != nil {
		return nil, fmt.Errorf("invalid server config: %w", err)
	}
	return cfg, nil
}

func load(path string) (*Tuning, error) {
	cfg := defaultTuning()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(&cfg)
	return &cfg, nil
}

func defaultTuning() Tuning {
	return Tuning{
		LogLevel:  "info",
		LogFormat: "text",
		Strategy: StrategyConfig{
			Name:           "exhaustive",
			SampleCount:    10,
			PopulationSize: 20,
			MaxGenerations: 100,
			MaxAttempts:    10000,
			Sampler:        "uniform",
		},
		Driver: DriverConfig{
			Parallelism:   1,
			MaxIterations: 10000,
		},
		History: HistoryConfig{Top: 3},
		Server: ServerConfig{
			GRPCAddr:        ":50051",
			HTTPAddr:        ":8080",
			GracefulTimeout: 10 * time.Second,
		},
	}
}

func applyEnvOverrides(cfg *Tuning) {
	if v := os.Getenv("PTF_SEARCH_LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv("PTF_SEARCH_LOG_FORMAT"); v != "" {
		cfg.LogFormat = strings.ToLower(v)
	}
	if v := os.Getenv("PTF_SEARCH_STRATEGY"); v != "" {
		cfg.Strategy.Name = strings.ToLower(v)
	}
	if v := os.Getenv("PTF_SEARCH_GRPC_ADDR"); v != "" {
		cfg.Server.GRPCAddr = v
	}
	if v := os.Getenv("PTF_SEARCH_HTTP_ADDR"); v != "" {
		cfg.Server.HTTPAddr = v
	}
	if v := os.Getenv("PTF_SEARCH_SEED"); v != "" {
		if seed, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Strategy.Seed = seed
		}
	}
	if v := os.Getenv("PTF_SEARCH_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Strategy.Timeout = d
		}
	}
	if v := os.Getenv("PTF_SEARCH_MEASUREMENTS"); v != "" {
		cfg.Measurements = v
	}
}

// StrategyNames lists the strategy names accepted in configuration.
var StrategyNames = []string{"exhaustive", "individual", "random", "gde3"}

// validateTuning performs validation on a tuning run configuration
func validateTuning(cfg *Tuning) error {
	if err := validateCommon(cfg); err != nil {
		return err
	}

	if err := validateStrategy(&cfg.Strategy); err != nil {
		return fmt.Errorf("strategy validation failed: %w", err)
	}

	for i, name := range cfg.Objectives {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("objective %d: name cannot be empty", i)
		}
	}

	if len(cfg.SearchSpaces) == 0 {
		return fmt.Errorf("at least one search space must be defined")
	}
	if _, err := cfg.BuildSearchSpaces(); err != nil {
		return fmt.Errorf("search_spaces validation failed: %w", err)
	}

	if cfg.Driver.Parallelism <= 0 {
		return fmt.Errorf("driver parallelism must be positive, got %d", cfg.Driver.Parallelism)
	}
	if cfg.Driver.MaxIterations <= 0 {
		return fmt.Errorf("driver max_iterations must be positive, got %d", cfg.Driver.MaxIterations)
	}

	if cfg.Strategy.Sampler == "history" {
		if cfg.History.Path == "" {
			return fmt.Errorf("history sampler requires history.path")
		}
		if cfg.History.Signature == "" {
			return fmt.Errorf("history sampler requires history.signature")
		}
	}
	if cfg.History.Top <= 0 {
		return fmt.Errorf("history top must be positive, got %d", cfg.History.Top)
	}

	return nil
}

// validateCommon validates the logging and server settings
func validateCommon(cfg *Tuning) error {
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[cfg.LogLevel] {
		return fmt.Errorf("invalid log_level: %s (must be debug, info, warn, or error)", cfg.LogLevel)
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return fmt.Errorf("invalid log_format: %s (must be text or json)", cfg.LogFormat)
	}
	if cfg.Server.GRPCAddr == "" {
		return fmt.Errorf("server grpc_addr cannot be empty")
	}
	if cfg.Server.GracefulTimeout < 0 {
		return fmt.Errorf("server graceful_timeout cannot be negative")
	}
	return nil
}

// validateStrategy validates the strategy section
func validateStrategy(s *StrategyConfig) error {
	known := false
	for _, name := range StrategyNames {
		if s.Name == name {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("unknown strategy: %s (must be one of %s)", s.Name, strings.Join(StrategyNames, ", "))
	}
	if s.SampleCount <= 0 {
		return fmt.Errorf("sample_count must be positive, got %d", s.SampleCount)
	}
	if s.PopulationSize <= 0 {
		return fmt.Errorf("population_size must be positive, got %d", s.PopulationSize)
	}
	if s.MaxGenerations <= 0 {
		return fmt.Errorf("max_generations must be positive, got %d", s.MaxGenerations)
	}
	if s.MaxAttempts <= 0 {
		return fmt.Errorf("max_attempts must be positive, got %d", s.MaxAttempts)
	}
	if s.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative, got %s", s.Timeout)
	}
	if s.Sampler != "uniform" && s.Sampler != "history" {
		return fmt.Errorf("invalid sampler: %s (must be uniform or history)", s.Sampler)
	}
	return nil
}
