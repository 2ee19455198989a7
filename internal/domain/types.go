package domain

// CodeSystem identifies the diagnosis coding standard in use.
type CodeSystem string

const (
	ICD9  CodeSystem = "ICD9"
	ICD10 CodeSystem = "ICD10"
)

// Dataset identifies the source dataset profile for a run.
type Dataset string

const (
	MIMICIII Dataset = "mimic_iii"
	MIMICIV  Dataset = "mimic_iv"
)

// CodeSystemForDataset maps a dataset profile to its diagnosis code system.
var CodeSystemForDataset = map[Dataset]CodeSystem{
	MIMICIII: ICD9,
	MIMICIV:  ICD10,
}

// Classification holds the phenotype flags for a single diagnosis code.
type Classification struct {
	IsStroke         bool `json:"is_stroke"`
	IsCardiovascular bool `json:"is_cardiovascular"`
}

// DiagnosisRecord is one diagnosis-level row. Immutable once ingested;
// classification annotates a copy, never the source record.
type DiagnosisRecord struct {
	SubjectID     int64      `json:"subject_id"`
	AdmissionID   int64      `json:"hadm_id"`
	DiagnosisCode string     `json:"diagnosis_code"`
	CodeSystem    CodeSystem `json:"code_system"`
	SeqNum        *int       `json:"seq_num,omitempty"`
}

// DiagnosisTable is a diagnosis-level table. HasSeqNum records whether the
// ordering column was present in the source at all, as opposed to null on
// individual rows.
type DiagnosisTable struct {
	Rows      []DiagnosisRecord
	HasSeqNum bool
}

// ClassifiedDiagnosis is a diagnosis row annotated with codelist flags.
type ClassifiedDiagnosis struct {
	DiagnosisRecord
	IsStrokeCode         bool `json:"is_stroke_code"`
	IsCardiovascularCode bool `json:"is_cardiovascular_code"`
}

// ClassifiedDiagnosisTable is the annotated diagnosis-level table.
type ClassifiedDiagnosisTable struct {
	Rows      []ClassifiedDiagnosis
	HasSeqNum bool
}

// StrokePhenotype is the admission-level stroke phenotype record.
type StrokePhenotype struct {
	AdmissionID         int64   `json:"hadm_id"`
	TotalDiagnosisCount int     `json:"total_diagnosis_count"`
	StrokeCodeCount     int     `json:"stroke_code_count"`
	StrokeCodeDensity   float64 `json:"stroke_code_density"`
	HasAnyStrokeSignal  bool    `json:"has_any_stroke_signal"`
	StrokePrimaryDxFlag bool    `json:"stroke_primary_dx_flag"`
}

// StrokePhenotypeTable is the admission-level stroke phenotype table.
// HasSeqNum propagates whether primary-diagnosis flags are meaningful.
type StrokePhenotypeTable struct {
	Rows      []StrokePhenotype
	HasSeqNum bool
}

// CardiovascularPhenotype is the admission-level cardiovascular phenotype
// record. There is no primary-diagnosis flag for this phenotype.
type CardiovascularPhenotype struct {
	AdmissionID               int64   `json:"hadm_id"`
	TotalDiagnosisCount       int     `json:"total_diagnosis_count"`
	CardiovascularCodeCount   int     `json:"cardiovascular_code_count"`
	CardiovascularCodeDensity float64 `json:"cardiovascular_code_density"`
	HasAnyCVDSignal           bool    `json:"has_any_cvd_signal"`
}

// CardiovascularPhenotypeTable is the admission-level cardiovascular
// phenotype table.
type CardiovascularPhenotypeTable struct {
	Rows []CardiovascularPhenotype
}

// AdmissionRecord is one hospital stay, the grain for all eligibility
// decisions. AgeAtAdmission is nil for a null value on a row that has the
// column; column absence is tracked on the table.
type AdmissionRecord struct {
	SubjectID        int64    `json:"subject_id"`
	AdmissionID      int64    `json:"hadm_id"`
	AdmissionType    string   `json:"admission_type"`
	AgeAtAdmission   *float64 `json:"age_at_admission,omitempty"`
	LengthOfStayDays *float64 `json:"length_of_stay_days,omitempty"`
}

// AdmissionTable is the admission-level input table.
type AdmissionTable struct {
	Rows   []AdmissionRecord
	HasAge bool
}

// PatientRecord is one patient-level demographics row.
type PatientRecord struct {
	SubjectID int64    `json:"subject_id"`
	Gender    string   `json:"gender,omitempty"`
	AnchorAge *float64 `json:"anchor_age,omitempty"`
}

// AdmissionFeatures is the admission-level joined row the rule engine and
// the models consume: admission context plus both phenotypes, with
// conservative fill defaults for admissions absent from the diagnosis
// table.
type AdmissionFeatures struct {
	SubjectID                 int64    `json:"subject_id"`
	AdmissionID               int64    `json:"hadm_id"`
	AdmissionType             string   `json:"admission_type"`
	AgeAtAdmission            *float64 `json:"age_at_admission,omitempty"`
	LengthOfStayDays          *float64 `json:"length_of_stay_days,omitempty"`
	TotalDiagnosisCount       int      `json:"total_diagnosis_count"`
	StrokeCodeCount           int      `json:"stroke_code_count"`
	StrokeCodeDensity         float64  `json:"stroke_code_density"`
	HasAnyStrokeSignal        bool     `json:"has_any_stroke_signal"`
	StrokePrimaryDxFlag       bool     `json:"stroke_primary_dx_flag"`
	CardiovascularCodeCount   int      `json:"cardiovascular_code_count"`
	CardiovascularCodeDensity float64  `json:"cardiovascular_code_density"`
	HasAnyCVDSignal           bool     `json:"has_any_cvd_signal"`
}

// EligibilityFlags carries the rule-engine outputs for one admission.
// Derived fresh on every run; never the sole source of truth.
type EligibilityFlags struct {
	AgeInRange                bool   `json:"age_in_range"`
	AgeExcluded               bool   `json:"age_excluded"`
	StrokeSignalOK            bool   `json:"stroke_signal_ok"`
	StrokePrimaryPreferred    bool   `json:"stroke_primary_preferred"`
	IsEmergency               bool   `json:"is_emergency"`
	AdmissionOK               bool   `json:"admission_ok"`
	Excluded                  bool   `json:"excluded"`
	ExclusionReason           string `json:"exclusion_reason,omitempty"`
	EligibilityHeuristicLabel bool   `json:"eligibility_heuristic_label"`
}

// EligibilityRecord is one admission-level row as it moves through the
// rule engine.
type EligibilityRecord struct {
	AdmissionFeatures
	EligibilityFlags
}

// EligibilityTable is the rule-engine working table. The Has* fields track
// which logical column groups are populated, so each rule can fail fast
// when a declared input is absent instead of silently reading zero values.
type EligibilityTable struct {
	Rows []EligibilityRecord

	// Source columns.
	HasAge       bool
	HasPrimaryDx bool

	// Flag groups added by rules.
	HasAgeFlags       bool
	HasStrokeFlags    bool
	HasAdmissionFlags bool
	HasExclusionFlags bool
	HasFinalLabel     bool
}

// Clone returns a deep copy of the table. Rules operate copy-on-write;
// inputs are never mutated in place.
func (t *EligibilityTable) Clone() *EligibilityTable {
	out := *t
	out.Rows = make([]EligibilityRecord, len(t.Rows))
	copy(out.Rows, t.Rows)
	return &out
}

// Exclusion reasons. First matching reason wins; reasons are not combined.
const (
	ReasonAgeAboveHardLimit = "age_above_hard_limit"
	ReasonNoStrokeSignal    = "no_stroke_signal"
)

// ScoredAdmission is the ranking evaluator's input row. The heuristic
// label is a noisy reference, not ground truth.
type ScoredAdmission struct {
	SubjectID                 int64   `json:"subject_id"`
	AdmissionID               int64   `json:"hadm_id"`
	EligibilityHeuristicLabel bool    `json:"eligibility_heuristic_label"`
	EligibilityMLScore        float64 `json:"eligibility_ml_score"`
}

// RankingMetric is one (method, K) row of the long-form evaluation table.
type RankingMetric struct {
	Method       string  `json:"method"`
	K            int     `json:"k"`
	RecallAtK    float64 `json:"recall_at_k"`
	PrecisionAtK float64 `json:"precision_at_k"`
}

// Screening method identifiers.
const (
	MethodHeuristic = "heuristic"
	MethodML        = "ml"
)

// ComparisonRow is one K row of the wide comparison table, with
// recall/precision columns per method.
type ComparisonRow struct {
	K                  int     `json:"k"`
	RecallHeuristic    float64 `json:"recall_at_k_heuristic"`
	RecallML           float64 `json:"recall_at_k_ml"`
	PrecisionHeuristic float64 `json:"precision_at_k_heuristic"`
	PrecisionML        float64 `json:"precision_at_k_ml"`
}
