// Package config loads study and application configuration from YAML
// files and environment variables, layering user-supplied values over
// documented defaults field by field.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/chukwuka-orefo/clinical-eligibility-ml/internal/domain"
)

// knownTopLevelKeys are the configuration sections the loader
// understands. Anything else in a user file is preserved under Extra
// rather than silently discarded.
var knownTopLevelKeys = map[string]bool{
	"study":                  true,
	"age":                    true,
	"stroke_signal":          true,
	"cardiovascular_context": true,
	"admission":              true,
	"ml_scoring":             true,
	"exclusions":             true,
	"screening":              true,
	"logging":                true,
	"data":                   true,
	"server":                 true,
	"environment":            true,
}

// Manager loads and holds the resolved application configuration.
type Manager struct {
	v      *viper.Viper
	config *domain.Config
}

// NewManager creates a configuration manager and loads configuration
// from the given file path. An empty path loads defaults plus
// environment variables only; a non-empty path must exist.
func NewManager(configPath string) (*Manager, error) {
	m := &Manager{v: viper.New()}
	if err := m.loadConfig(configPath); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

// loadConfig loads configuration from defaults, file, and environment.
func (m *Manager) loadConfig(configPath string) error {
	m.v.SetEnvPrefix("ELIGIBILITY")
	m.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	m.v.AutomaticEnv()

	m.setDefaults()

	if configPath != "" {
		m.v.SetConfigFile(configPath)
		if err := m.v.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &domain.Config{}
	if err := m.v.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Keep unrecognized top-level keys so study files can carry
	// annotations without the loader dropping them.
	for key, value := range m.v.AllSettings() {
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

// setDefaults sets default configuration values.
func (m *Manager) setDefaults() {
	defaults := domain.DefaultStudyConfig()

	// Age rule defaults
	m.v.SetDefault("age.min", defaults.Age.Min)
	m.v.SetDefault("age.max", defaults.Age.Max)
	m.v.SetDefault("age.hard_exclude", defaults.Age.HardExclude)
	m.v.SetDefault("age.treat_missing_as_eligible", defaults.Age.TreatMissingAsEligible)

	// Stroke-signal rule defaults
	m.v.SetDefault("stroke_signal.min_code_count", defaults.StrokeSignal.MinCodeCount)
	m.v.SetDefault("stroke_signal.require_any_signal", defaults.StrokeSignal.RequireAnySignal)
	m.v.SetDefault("stroke_signal.prefer_primary_dx", defaults.StrokeSignal.PreferPrimaryDx)

	// Cardiovascular context defaults
	m.v.SetDefault("cardiovascular_context.min_code_count", defaults.CardiovascularContext.MinCodeCount)
	m.v.SetDefault("cardiovascular_context.required", defaults.CardiovascularContext.Required)

	// Admission context defaults
	m.v.SetDefault("admission.emergency_only", defaults.Admission.EmergencyOnly)

	// ML scoring defaults
	m.v.SetDefault("ml_scoring.enabled", defaults.MLScoring.Enabled)
	m.v.SetDefault("ml_scoring.min_score", defaults.MLScoring.MinScore)

	// Exclusion defaults
	m.v.SetDefault("exclusions.exclude_without_stroke_signal", defaults.Exclusions.ExcludeWithoutStrokeSignal)
	m.v.SetDefault("exclusions.exclude_if_age_above_hard_limit", defaults.Exclusions.ExcludeIfAgeAboveHardLimit)

	// Screening defaults
	m.v.SetDefault("screening.k_values", defaults.Screening.KValues)

	// Logging defaults
	m.v.SetDefault("logging.level", "info")
	m.v.SetDefault("logging.format", "text")

	// Data defaults
	m.v.SetDefault("data.dataset", string(domain.MIMICIV))
	m.v.SetDefault("data.raw_dir", "data/raw")
	m.v.SetDefault("data.interim_dir", "data/interim")
	m.v.SetDefault("data.output_dir", "data/outputs")
	m.v.SetDefault("data.db_path", "data/eligibility.db")

	// Server defaults
	m.v.SetDefault("server.host", "0.0.0.0")
	m.v.SetDefault("server.port", 8080)
}

// GetConfig returns the complete configuration.
func (m *Manager) GetConfig() *domain.Config {
	return m.config
}

// GetStudyConfig returns the resolved study rule configuration.
func (m *Manager) GetStudyConfig() *domain.StudyConfig {
	return &m.config.StudyConfig
}

// GetDataConfig returns dataset and filesystem configuration.
func (m *Manager) GetDataConfig() *domain.DataConfig {
	return &m.config.Data
}

// GetServerConfig returns server configuration.
func (m *Manager) GetServerConfig() *domain.ServerConfig {
	return &m.config.Server
}

// Validate validates the resolved configuration.
func (m *Manager) Validate() error {
	config := m.config

	if config.Age.Min < 0 {
		return fmt.Errorf("age.min must be non-negative, got %v", config.Age.Min)
	}
	if config.Age.Max < config.Age.Min {
		return fmt.Errorf("age.max (%v) must not be below age.min (%v)", config.Age.Max, config.Age.Min)
	}
	if config.Age.HardExclude < config.Age.Max {
		return fmt.Errorf("age.hard_exclude (%v) must not be below age.max (%v)", config.Age.HardExclude, config.Age.Max)
	}
	if config.StrokeSignal.MinCodeCount < 0 {
		return fmt.Errorf("stroke_signal.min_code_count must be non-negative, got %d", config.StrokeSignal.MinCodeCount)
	}
	if config.MLScoring.MinScore < 0 || config.MLScoring.MinScore > 1 {
		return fmt.Errorf("ml_scoring.min_score must be within [0, 1], got %v", config.MLScoring.MinScore)
	}
	for _, k := range config.Screening.KValues {
		if k < 0 {
			return fmt.Errorf("screening.k_values must be non-negative, got %d", k)
		}
	}

	if _, ok := domain.CodeSystemForDataset[config.Data.Dataset]; !ok {
		return fmt.Errorf("unsupported dataset: %s", config.Data.Dataset)
	}

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	return nil
}
