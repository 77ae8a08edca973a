package config

import "time"

// Tuning is the top-level configuration of one tuning run or search service.
type Tuning struct {
	LogLevel     string              `yaml:"log_level"`
	LogFormat    string              `yaml:"log_format"`
	Strategy     StrategyConfig      `yaml:"strategy"`
	Objectives   []string            `yaml:"objectives"`
	SearchSpaces []SearchSpaceConfig `yaml:"search_spaces"`
	Driver       DriverConfig        `yaml:"driver"`
	History      HistoryConfig       `yaml:"history"`
	Server       ServerConfig        `yaml:"server"`
	Measurements string              `yaml:"measurements,omitempty"`
}

// StrategyConfig selects a search strategy and its knobs. Knobs a strategy
// does not understand are ignored.
type StrategyConfig struct {
	Name           string        `yaml:"name"`
	SampleCount    int           `yaml:"sample_count"`
	PopulationSize int           `yaml:"population_size"`
	MaxGenerations int           `yaml:"max_generations"`
	MaxAttempts    int           `yaml:"max_attempts"`
	Timeout        time.Duration `yaml:"timeout"`
	Seed           int64         `yaml:"seed"`
	Sampler        string        `yaml:"sampler"` // uniform or history
}

// SearchSpaceConfig describes one search space.
type SearchSpaceConfig struct {
	Domain     string            `yaml:"domain,omitempty"`
	Entities   []string          `yaml:"entities,omitempty"`
	Parameters []ParameterConfig `yaml:"parameters"`
}

// ParameterConfig describes one tuning parameter. Exactly one of Values
// and Range must be set.
type ParameterConfig struct {
	Name   string       `yaml:"name"`
	Values []int        `yaml:"values,omitempty"`
	Range  *RangeConfig `yaml:"range,omitempty"`
}

// RangeConfig is a stepped integer range.
type RangeConfig struct {
	From int `yaml:"from"`
	To   int `yaml:"to"`
	Step int `yaml:"step"`
}

// DriverConfig controls the local tuning loop.
type DriverConfig struct {
	Parallelism   int `yaml:"parallelism"`
	MaxIterations int `yaml:"max_iterations"`
}

// HistoryConfig points the history sampler at prior tuning runs.
type HistoryConfig struct {
	Path      string `yaml:"path,omitempty"`
	Signature string `yaml:"signature,omitempty"`
	Top       int    `yaml:"top"`
}

// ServerConfig controls the search service listeners.
type ServerConfig struct {
	GRPCAddr        string        `yaml:"grpc_addr"`
	HTTPAddr        string        `yaml:"http_addr"`
	GracefulTimeout time.Duration `yaml:"graceful_timeout"`
}
