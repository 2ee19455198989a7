package model

import (
	"github.com/sirupsen/logrus"

	"github.com/chukwuka-orefo/clinical-eligibility-ml/internal/domain"

	"github.com/chukwuka-orefo/clinical-eligibility-ml/internal/features"
)

// TrainAndScore fits the model on the labeled eligibility table and
// returns one scored row per admission, in table order. Training and
// scoring use the same table: scores exist to rank the current cohort
// for review, not to generalize.
func TrainAndScore(m domain.EligibilityModel, table *domain.EligibilityTable, logger *logrus.Logger) ([]domain.ScoredAdmission, error) {
	x, y, err := features.Matrix(table)
	if err != nil {
		return nil, err
	}

	if err := m.Fit(x, y); err != nil {
		return nil, err
	}
	scores, err := m.PredictScore(x)
	if err != nil {
		return nil, err
	}

	scored := make([]domain.ScoredAdmission, len(table.Rows))
	for i, row := range table.Rows {
		scored[i] = domain.ScoredAdmission{
			SubjectID:                 row.SubjectID,
			AdmissionID:               row.AdmissionID,
			EligibilityHeuristicLabel: row.EligibilityHeuristicLabel,
			EligibilityMLScore:        scores[i],
		}
	}

	positives := 0
	for _, s := range scored {
		if s.EligibilityHeuristicLabel {
			positives++
		}
	}
	logger.WithFields(logrus.Fields{
		"admissions": len(scored),
		"positives":  positives,
		"features":   len(m.FeatureNames()),
	}).Info("Trained model and scored admissions")

	return scored, nil
}
