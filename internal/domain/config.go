package domain

// AgeConfig holds age inclusion/exclusion thresholds in years.
type AgeConfig struct {
	Min         float64 `mapstructure:"min" json:"min"`
	Max         float64 `mapstructure:"max" json:"max"`
	HardExclude float64 `mapstructure:"hard_exclude" json:"hard_exclude"`

	// TreatMissingAsEligible controls the null-age policy when the age
	// column is present but a row's value is null. Default false: a null
	// age is not in range. The fully-absent age column is always handled
	// by conservative inclusion regardless of this toggle.
	TreatMissingAsEligible bool `mapstructure:"treat_missing_as_eligible" json:"treat_missing_as_eligible"`
}

// StrokeSignalConfig holds stroke-signal inclusion thresholds.
type StrokeSignalConfig struct {
	MinCodeCount     int  `mapstructure:"min_code_count" json:"min_code_count"`
	RequireAnySignal bool `mapstructure:"require_any_signal" json:"require_any_signal"`
	PreferPrimaryDx  bool `mapstructure:"prefer_primary_dx" json:"prefer_primary_dx"`
}

// CardiovascularContextConfig holds cardiovascular comorbidity context
// thresholds. Context only, never a hard gate.
type CardiovascularContextConfig struct {
	MinCodeCount int  `mapstructure:"min_code_count" json:"min_code_count"`
	Required     bool `mapstructure:"required" json:"required"`
}

// AdmissionContextConfig controls admission-type gating.
type AdmissionContextConfig struct {
	EmergencyOnly bool `mapstructure:"emergency_only" json:"emergency_only"`
}

// MLScoringConfig controls model training and scoring.
type MLScoringConfig struct {
	Enabled  bool    `mapstructure:"enabled" json:"enabled"`
	MinScore float64 `mapstructure:"min_score" json:"min_score"`
}

// ExclusionsConfig toggles the individual exclusion sub-rules.
type ExclusionsConfig struct {
	ExcludeWithoutStrokeSignal bool `mapstructure:"exclude_without_stroke_signal" json:"exclude_without_stroke_signal"`
	ExcludeIfAgeAboveHardLimit bool `mapstructure:"exclude_if_age_above_hard_limit" json:"exclude_if_age_above_hard_limit"`
}

// ScreeningConfig holds the manual screening capacities used by the
// ranking evaluator.
type ScreeningConfig struct {
	KValues []int `mapstructure:"k_values" json:"k_values"`
}

// StudyConfig is the resolved study configuration threaded explicitly
// through every rule and evaluator call. Defaults exist for every field;
// user-supplied values override per-field, recursively. Study metadata
// and unrecognized top-level keys are preserved verbatim.
type StudyConfig struct {
	Study                 map[string]interface{}      `mapstructure:"study" json:"study,omitempty"`
	Age                   AgeConfig                   `mapstructure:"age" json:"age"`
	StrokeSignal          StrokeSignalConfig          `mapstructure:"stroke_signal" json:"stroke_signal"`
	CardiovascularContext CardiovascularContextConfig `mapstructure:"cardiovascular_context" json:"cardiovascular_context"`
	Admission             AdmissionContextConfig      `mapstructure:"admission" json:"admission"`
	MLScoring             MLScoringConfig             `mapstructure:"ml_scoring" json:"ml_scoring"`
	Exclusions            ExclusionsConfig            `mapstructure:"exclusions" json:"exclusions"`
	Screening             ScreeningConfig             `mapstructure:"screening" json:"screening"`

	// Extra holds unrecognized top-level keys from the user config,
	// preserved verbatim so the merge never silently discards them.
	Extra map[string]interface{} `mapstructure:"-" json:"extra,omitempty"`
}

// DefaultStudyConfig returns the documented defaults for every field.
func DefaultStudyConfig() *StudyConfig {
	return &StudyConfig{
		Age: AgeConfig{
			Min:                    18,
			Max:                    85,
			HardExclude:            90,
			TreatMissingAsEligible: false,
		},
		StrokeSignal: StrokeSignalConfig{
			MinCodeCount:     1,
			RequireAnySignal: true,
			PreferPrimaryDx:  true,
		},
		CardiovascularContext: CardiovascularContextConfig{
			MinCodeCount: 1,
			Required:     false,
		},
		Admission: AdmissionContextConfig{
			EmergencyOnly: false,
		},
		MLScoring: MLScoringConfig{
			Enabled:  true,
			MinScore: 0.0,
		},
		Exclusions: ExclusionsConfig{
			ExcludeWithoutStrokeSignal: true,
			ExcludeIfAgeAboveHardLimit: true,
		},
		Screening: ScreeningConfig{
			KValues: []int{25, 50, 100, 200},
		},
	}
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level" json:"level"`
	Format string `mapstructure:"format" json:"format"`
}

// DataConfig holds dataset selection and filesystem layout. The dataset
// profile is resolved once at process start and threaded explicitly; no
// component reads process-wide globals.
type DataConfig struct {
	Dataset    Dataset `mapstructure:"dataset" json:"dataset"`
	RawDir     string  `mapstructure:"raw_dir" json:"raw_dir"`
	InterimDir string  `mapstructure:"interim_dir" json:"interim_dir"`
	OutputDir  string  `mapstructure:"output_dir" json:"output_dir"`
	DBPath     string  `mapstructure:"db_path" json:"db_path"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Host string `mapstructure:"host" json:"host"`
	Port int    `mapstructure:"port" json:"port"`
}

// Config is the full application configuration: study rules plus ambient
// settings.
type Config struct {
	StudyConfig `mapstructure:",squash"`

	Logging LoggingConfig `mapstructure:"logging" json:"logging"`
	Data    DataConfig    `mapstructure:"data" json:"data"`
	Server  ServerConfig  `mapstructure:"server" json:"server"`
}
