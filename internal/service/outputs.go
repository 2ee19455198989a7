package service

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/chukwuka-orefo/clinical-eligibility-ml/internal/domain"
)

// Output file names under the configured output directory.
const (
	eligibilityOutputFile = "eligibility_labels.csv"
	scoredOutputFile      = "scored_admissions.csv"
	comparisonOutputFile  = "ranking_comparison.csv"
)

// Interim artifact names under the configured interim directory.
const (
	strokePhenotypeFile         = "stroke_phenotype.csv"
	cardiovascularPhenotypeFile = "cardiovascular_phenotype.csv"
)

// writePhenotypes exports the derived phenotype tables to the interim
// directory, one CSV per phenotype, so intermediate signals can be
// inspected without re-running the pipeline.
func (p *Pipeline) writePhenotypes(stroke *domain.StrokePhenotypeTable, cvd *domain.CardiovascularPhenotypeTable) error {
	if err := os.MkdirAll(p.cfg.Data.InterimDir, 0755); err != nil {
		return fmt.Errorf("failed to create interim directory: %w", err)
	}

	records := [][]string{{
		"hadm_id", "total_diagnosis_count", "stroke_code_count",
		"stroke_code_density", "has_any_stroke_signal", "stroke_primary_dx_flag",
	}}
	for _, row := range stroke.Rows {
		records = append(records, []string{
			strconv.FormatInt(row.AdmissionID, 10),
			strconv.Itoa(row.TotalDiagnosisCount),
			strconv.Itoa(row.StrokeCodeCount),
			strconv.FormatFloat(row.StrokeCodeDensity, 'f', 6, 64),
			strconv.FormatBool(row.HasAnyStrokeSignal),
			strconv.FormatBool(row.StrokePrimaryDxFlag),
		})
	}
	if err := writeCSVFile(filepath.Join(p.cfg.Data.InterimDir, strokePhenotypeFile), records); err != nil {
		return err
	}

	records = [][]string{{
		"hadm_id", "total_diagnosis_count", "cardiovascular_code_count",
		"cardiovascular_code_density", "has_any_cvd_signal",
	}}
	for _, row := range cvd.Rows {
		records = append(records, []string{
			strconv.FormatInt(row.AdmissionID, 10),
			strconv.Itoa(row.TotalDiagnosisCount),
			strconv.Itoa(row.CardiovascularCodeCount),
			strconv.FormatFloat(row.CardiovascularCodeDensity, 'f', 6, 64),
			strconv.FormatBool(row.HasAnyCVDSignal),
		})
	}
	return writeCSVFile(filepath.Join(p.cfg.Data.InterimDir, cardiovascularPhenotypeFile), records)
}

// writeOutputs writes the run's tables as CSV files. Rows are already in
// deterministic admission order, so two runs over the same inputs
// produce byte-identical files.
func (p *Pipeline) writeOutputs(result *RunResult) error {
	if err := os.MkdirAll(p.cfg.Data.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := p.writeEligibility(result); err != nil {
		return err
	}
	if err := p.writeScored(result); err != nil {
		return err
	}
	if len(result.Comparison) > 0 {
		if err := p.writeComparison(result); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) writeEligibility(result *RunResult) error {
	records := [][]string{{
		"subject_id", "hadm_id", "admission_type",
		"stroke_code_count", "has_any_stroke_signal",
		"cardiovascular_code_count", "has_any_cvd_signal",
		"age_in_range", "stroke_signal_ok", "admission_ok",
		"excluded", "exclusion_reason", "eligibility_heuristic_label",
	}}
	for _, row := range result.Eligible.Rows {
		records = append(records, []string{
			strconv.FormatInt(row.SubjectID, 10),
			strconv.FormatInt(row.AdmissionID, 10),
			row.AdmissionType,
			strconv.Itoa(row.StrokeCodeCount),
			strconv.FormatBool(row.HasAnyStrokeSignal),
			strconv.Itoa(row.CardiovascularCodeCount),
			strconv.FormatBool(row.HasAnyCVDSignal),
			strconv.FormatBool(row.AgeInRange),
			strconv.FormatBool(row.StrokeSignalOK),
			strconv.FormatBool(row.AdmissionOK),
			strconv.FormatBool(row.Excluded),
			row.ExclusionReason,
			strconv.FormatBool(row.EligibilityHeuristicLabel),
		})
	}
	return writeCSVFile(filepath.Join(p.cfg.Data.OutputDir, eligibilityOutputFile), records)
}

func (p *Pipeline) writeScored(result *RunResult) error {
	records := [][]string{{
		"subject_id", "hadm_id", "eligibility_heuristic_label", "eligibility_ml_score",
	}}
	for _, row := range result.Scored {
		records = append(records, []string{
			strconv.FormatInt(row.SubjectID, 10),
			strconv.FormatInt(row.AdmissionID, 10),
			strconv.FormatBool(row.EligibilityHeuristicLabel),
			strconv.FormatFloat(row.EligibilityMLScore, 'f', 6, 64),
		})
	}
	return writeCSVFile(filepath.Join(p.cfg.Data.OutputDir, scoredOutputFile), records)
}

func (p *Pipeline) writeComparison(result *RunResult) error {
	records := [][]string{{
		"k", "recall_at_k_heuristic", "recall_at_k_ml",
		"precision_at_k_heuristic", "precision_at_k_ml",
	}}
	for _, row := range result.Comparison {
		records = append(records, []string{
			strconv.Itoa(row.K),
			strconv.FormatFloat(row.RecallHeuristic, 'f', 6, 64),
			strconv.FormatFloat(row.RecallML, 'f', 6, 64),
			strconv.FormatFloat(row.PrecisionHeuristic, 'f', 6, 64),
			strconv.FormatFloat(row.PrecisionML, 'f', 6, 64),
		})
	}
	return writeCSVFile(filepath.Join(p.cfg.Data.OutputDir, comparisonOutputFile), records)
}

// ReadScoredAdmissions reads a scored-admissions CSV written by a
// previous run, for re-evaluation without re-running the pipeline.
func ReadScoredAdmissions(path string) ([]domain.ScoredAdmission, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, domain.NewMissingColumnError("scored_admissions",
			"subject_id", "hadm_id", "eligibility_heuristic_label", "eligibility_ml_score")
	}

	columns := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		columns[name] = i
	}
	for _, required := range []string{"subject_id", "hadm_id", "eligibility_heuristic_label", "eligibility_ml_score"} {
		if _, ok := columns[required]; !ok {
			return nil, domain.NewMissingColumnError("scored_admissions", required)
		}
	}

	rows := make([]domain.ScoredAdmission, 0, len(records)-1)
	for _, record := range records[1:] {
		subjectID, err := strconv.ParseInt(record[columns["subject_id"]], 10, 64)
		if err != nil {
			return nil, domain.NewValidationError("subject_id", "non-integer identifier", record[columns["subject_id"]])
		}
		admissionID, err := strconv.ParseInt(record[columns["hadm_id"]], 10, 64)
		if err != nil {
			return nil, domain.NewValidationError("hadm_id", "non-integer identifier", record[columns["hadm_id"]])
		}
		label, err := strconv.ParseBool(record[columns["eligibility_heuristic_label"]])
		if err != nil {
			return nil, domain.NewSchemaViolationError("scored_admissions",
				"eligibility_heuristic_label", "boolean", record[columns["eligibility_heuristic_label"]])
		}
		score, err := strconv.ParseFloat(record[columns["eligibility_ml_score"]], 64)
		if err != nil {
			return nil, domain.NewSchemaViolationError("scored_admissions",
				"eligibility_ml_score", "numeric", record[columns["eligibility_ml_score"]])
		}
		rows = append(rows, domain.ScoredAdmission{
			SubjectID:                 subjectID,
			AdmissionID:               admissionID,
			EligibilityHeuristicLabel: label,
			EligibilityMLScore:        score,
		})
	}
	return rows, nil
}

func writeCSVFile(path string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
