package phenotype

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/chukwuka-orefo/clinical-eligibility-ml/internal/domain"
)

// DeriveCardiovascularPhenotype aggregates cardiovascular signals to
// admission level. Cardiovascular context is a comorbidity signal for
// eligibility and modelling; there is no primary-diagnosis variant.
func DeriveCardiovascularPhenotype(table *domain.ClassifiedDiagnosisTable, logger *logrus.Logger) (*domain.CardiovascularPhenotypeTable, error) {
	if err := validateRows(table.Rows); err != nil {
		return nil, err
	}

	byAdmission := make(map[int64]*domain.CardiovascularPhenotype)
	for _, row := range table.Rows {
		record, ok := byAdmission[row.AdmissionID]
		if !ok {
			record = &domain.CardiovascularPhenotype{AdmissionID: row.AdmissionID}
			byAdmission[row.AdmissionID] = record
		}
		record.TotalDiagnosisCount++
		if row.IsCardiovascularCode {
			record.CardiovascularCodeCount++
		}
	}

	out := &domain.CardiovascularPhenotypeTable{
		Rows: make([]domain.CardiovascularPhenotype, 0, len(byAdmission)),
	}
	for _, record := range byAdmission {
		record.CardiovascularCodeDensity = density(record.CardiovascularCodeCount, record.TotalDiagnosisCount)
		record.HasAnyCVDSignal = record.CardiovascularCodeCount > 0
		out.Rows = append(out.Rows, *record)
	}
	sort.Slice(out.Rows, func(i, j int) bool {
		return out.Rows[i].AdmissionID < out.Rows[j].AdmissionID
	})

	logger.WithField("admissions", len(out.Rows)).Info("Derived cardiovascular phenotype")

	return out, nil
}
