// Package ingestion loads raw admission, diagnosis, and patient extracts
// from CSV into typed tables, validating the schema up front. Headers are
// matched case-insensitively so MIMIC-III uppercase and MIMIC-IV
// lowercase extracts load through the same path.
package ingestion

import (
	"github.com/chukwuka-orefo/clinical-eligibility-ml/internal/domain"
)

// Profile describes the dataset-specific column layout of the raw
// extracts. Resolved once per run from the configured dataset.
type Profile struct {
	Dataset    domain.Dataset
	CodeSystem domain.CodeSystem

	// DiagnosisCodeColumn names the diagnosis code column.
	DiagnosisCodeColumn string
	// CodeVersionColumn names the per-row ICD version column, empty when
	// the dataset carries a single code system.
	CodeVersionColumn string
	// AnchorAgeColumn names the patient-level age column used as the age
	// fallback when admissions carry no age of their own.
	AnchorAgeColumn string
}

// ProfileFor resolves the column profile for a dataset.
func ProfileFor(dataset domain.Dataset) (Profile, error) {
	switch dataset {
	case domain.MIMICIII:
		return Profile{
			Dataset:             domain.MIMICIII,
			CodeSystem:          domain.ICD9,
			DiagnosisCodeColumn: "icd9_code",
			AnchorAgeColumn:     "age",
		}, nil
	case domain.MIMICIV:
		return Profile{
			Dataset:             domain.MIMICIV,
			CodeSystem:          domain.ICD10,
			DiagnosisCodeColumn: "icd_code",
			CodeVersionColumn:   "icd_version",
			AnchorAgeColumn:     "anchor_age",
		}, nil
	default:
		return Profile{}, domain.NewValidationError("dataset", "unsupported dataset", string(dataset))
	}
}
