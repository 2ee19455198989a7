package evaluation

import "github.com/chukwuka-orefo/clinical-eligibility-ml/internal/domain"

// ErrorSummary counts disagreements between thresholded ML predictions
// and heuristic labels.
type ErrorSummary struct {
	FalsePositiveCount int `json:"false_positive_count"`
	FalseNegativeCount int `json:"false_negative_count"`
}

// AnalyseErrors splits a scored table into false positives (ML positive
// at the threshold, heuristic negative) and false negatives (ML
// negative, heuristic positive), for clinical and analytical review of
// screening behaviour. Labels remain a noisy reference.
func AnalyseErrors(rows []domain.ScoredAdmission, scoreThreshold float64) (falsePositives, falseNegatives []domain.ScoredAdmission, err error) {
	if err := validateScored(rows); err != nil {
		return nil, nil, err
	}

	for _, row := range rows {
		predictedPositive := row.EligibilityMLScore >= scoreThreshold
		switch {
		case predictedPositive && !row.EligibilityHeuristicLabel:
			falsePositives = append(falsePositives, row)
		case !predictedPositive && row.EligibilityHeuristicLabel:
			falseNegatives = append(falseNegatives, row)
		}
	}
	return falsePositives, falseNegatives, nil
}

// SummariseErrors returns the disagreement counts.
func SummariseErrors(falsePositives, falseNegatives []domain.ScoredAdmission) ErrorSummary {
	return ErrorSummary{
		FalsePositiveCount: len(falsePositives),
		FalseNegativeCount: len(falseNegatives),
	}
}
