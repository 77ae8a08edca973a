package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ParseTuningYAML parses a Tuning from YAML bytes on top of the defaults and
// validates it. Environment overrides are not applied; this is used for
// payloads received over the wire.
func ParseTuningYAML(data []byte) (*Tuning, error) {
	cfg := defaultTuning()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse tuning yaml: %w", err)
	}

	if err := validateTuning(&cfg); err != nil {
		return nil, fmt.Errorf("invalid tuning config: %w", err)
	}

	return &cfg, nil
}

// ParseTuningYAMLString parses a Tuning from a YAML string and validates it.
func ParseTuningYAMLString(yamlText string) (*Tuning, error) {
	return ParseTuningYAML([]byte(yamlText))
}
