// Package features assembles the admission-level feature table from the
// admission extract and both phenotype tables, and flattens it into the
// numeric matrix the scoring models consume.
package features

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/chukwuka-orefo/clinical-eligibility-ml/internal/domain"
)

// Join left-joins both phenotype tables onto the admission table at the
// admission grain. Admissions with no diagnosis rows get conservative
// fill values: zero counts, zero density, false signals. Output rows are
// sorted ascending by admission id.
func Join(admissions *domain.AdmissionTable, stroke *domain.StrokePhenotypeTable, cvd *domain.CardiovascularPhenotypeTable, logger *logrus.Logger) (*domain.EligibilityTable, error) {
	strokeByAdmission := make(map[int64]domain.StrokePhenotype, len(stroke.Rows))
	for _, row := range stroke.Rows {
		strokeByAdmission[row.AdmissionID] = row
	}
	cvdByAdmission := make(map[int64]domain.CardiovascularPhenotype, len(cvd.Rows))
	for _, row := range cvd.Rows {
		cvdByAdmission[row.AdmissionID] = row
	}

	table := &domain.EligibilityTable{
		Rows:         make([]domain.EligibilityRecord, 0, len(admissions.Rows)),
		HasAge:       admissions.HasAge,
		HasPrimaryDx: stroke.HasSeqNum,
	}

	unmatched := 0
	seen := make(map[int64]bool, len(admissions.Rows))
	for _, admission := range admissions.Rows {
		if admission.AdmissionID == 0 {
			return nil, domain.NewValidationError("hadm_id", "null admission id in admissions", nil)
		}
		if seen[admission.AdmissionID] {
			return nil, domain.NewValidationError("hadm_id", "duplicate admission id in admissions", admission.AdmissionID)
		}
		seen[admission.AdmissionID] = true

		features := domain.AdmissionFeatures{
			SubjectID:        admission.SubjectID,
			AdmissionID:      admission.AdmissionID,
			AdmissionType:    admission.AdmissionType,
			AgeAtAdmission:   admission.AgeAtAdmission,
			LengthOfStayDays: admission.LengthOfStayDays,
		}

		if ph, ok := strokeByAdmission[admission.AdmissionID]; ok {
			features.TotalDiagnosisCount = ph.TotalDiagnosisCount
			features.StrokeCodeCount = ph.StrokeCodeCount
			features.StrokeCodeDensity = ph.StrokeCodeDensity
			features.HasAnyStrokeSignal = ph.HasAnyStrokeSignal
			features.StrokePrimaryDxFlag = ph.StrokePrimaryDxFlag
		} else {
			unmatched++
		}

		if ph, ok := cvdByAdmission[admission.AdmissionID]; ok {
			features.CardiovascularCodeCount = ph.CardiovascularCodeCount
			features.CardiovascularCodeDensity = ph.CardiovascularCodeDensity
			features.HasAnyCVDSignal = ph.HasAnyCVDSignal
		}

		table.Rows = append(table.Rows, domain.EligibilityRecord{AdmissionFeatures: features})
	}

	sort.Slice(table.Rows, func(i, j int) bool {
		return table.Rows[i].AdmissionID < table.Rows[j].AdmissionID
	})

	logger.WithFields(logrus.Fields{
		"admissions":        len(table.Rows),
		"without_diagnoses": unmatched,
	}).Info("Joined phenotypes onto admissions")

	return table, nil
}
