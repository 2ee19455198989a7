// Package phenotype reduces classified diagnosis-level rows to one
// phenotype record per admission. Phenotypes are derived clinical
// signals, not diagnoses; each aggregation is a pure function of its
// input table.
package phenotype

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/chukwuka-orefo/clinical-eligibility-ml/internal/domain"
)

// DeriveStrokePhenotype aggregates stroke signals to admission level.
// The output holds exactly one record per distinct admission present in
// the input, sorted by admission id ascending; admissions absent from the
// diagnosis table are a downstream-join responsibility.
func DeriveStrokePhenotype(table *domain.ClassifiedDiagnosisTable, logger *logrus.Logger) (*domain.StrokePhenotypeTable, error) {
	if err := validateRows(table.Rows); err != nil {
		return nil, err
	}

	byAdmission := make(map[int64]*domain.StrokePhenotype)
	for _, row := range table.Rows {
		record, ok := byAdmission[row.AdmissionID]
		if !ok {
			record = &domain.StrokePhenotype{AdmissionID: row.AdmissionID}
			byAdmission[row.AdmissionID] = record
		}
		record.TotalDiagnosisCount++
		if row.IsStrokeCode {
			record.StrokeCodeCount++
			// Primary-diagnosis flag requires the ordering column; when it
			// is absent the flag stays false for all admissions.
			if table.HasSeqNum && row.SeqNum != nil && *row.SeqNum == 1 {
				record.StrokePrimaryDxFlag = true
			}
		}
	}

	out := &domain.StrokePhenotypeTable{
		Rows:      make([]domain.StrokePhenotype, 0, len(byAdmission)),
		HasSeqNum: table.HasSeqNum,
	}
	for _, record := range byAdmission {
		record.StrokeCodeDensity = density(record.StrokeCodeCount, record.TotalDiagnosisCount)
		record.HasAnyStrokeSignal = record.StrokeCodeCount > 0
		out.Rows = append(out.Rows, *record)
	}
	sort.Slice(out.Rows, func(i, j int) bool {
		return out.Rows[i].AdmissionID < out.Rows[j].AdmissionID
	})

	logger.WithFields(logrus.Fields{
		"admissions":  len(out.Rows),
		"has_seq_num": table.HasSeqNum,
	}).Info("Derived stroke phenotype")

	return out, nil
}

// density returns flagged/total with an explicit zero guard so an
// admission with no diagnoses yields 0.0, never NaN.
func density(flagged, total int) float64 {
	if total == 0 {
		return 0.0
	}
	return float64(flagged) / float64(total)
}

// validateRows enforces the aggregation preconditions: every row carries
// a usable admission id.
func validateRows(rows []domain.ClassifiedDiagnosis) error {
	for _, row := range rows {
		if row.AdmissionID == 0 {
			return domain.NewValidationError("hadm_id", "null or missing admission id in diagnoses table", nil)
		}
	}
	return nil
}
