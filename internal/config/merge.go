package config

import (
	"fmt"

	"github.com/chukwuka-orefo/clinical-eligibility-ml/internal/domain"
)

// DeepMerge merges override values into base recursively. Nested maps
// merge key by key; any other value in override replaces the base value.
// Keys unknown to either side are preserved. Neither input is mutated.
func DeepMerge(base, override map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(base))
	for key, value := range base {
		out[key] = value
	}

	for key, value := range override {
		if overrideMap, ok := value.(map[string]interface{}); ok {
			if baseMap, ok := out[key].(map[string]interface{}); ok {
				out[key] = DeepMerge(baseMap, overrideMap)
				continue
			}
		}
		out[key] = value
	}
	return out
}

// ApplyOverrides layers programmatic overrides onto the loaded
// configuration, merging recursively so sibling settings keep their
// values, and re-resolves the config struct.
func (m *Manager) ApplyOverrides(overrides map[string]interface{}) error {
	merged := DeepMerge(m.v.AllSettings(), overrides)
	if err := m.v.MergeConfigMap(merged); err != nil {
		return fmt.Errorf("failed to merge overrides: %w", err)
	}

	config := &domain.Config{}
	if err := m.v.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	for key, value := range merged {
		if knownTopLevelKeys[key] {
			continue
		}
		if config.Extra == nil {
			config.Extra = make(map[string]interface{})
		}
		config.Extra[key] = value
	}

	m.config = config
	return nil
}
