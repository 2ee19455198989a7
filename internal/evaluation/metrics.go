package evaluation

import (
	"math"
	"sort"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/chukwuka-orefo/clinical-eligibility-ml/internal/domain"
)

// Metrics holds auxiliary sanity-check metrics. Secondary to the ranking
// metrics: used to detect gross model failures and compare models, never
// to claim clinical validity.
type Metrics struct {
	ROCAUC       float64 `json:"roc_auc"`
	BrierScore   float64 `json:"brier_score"`
	PositiveRate float64 `json:"positive_rate"`
}

// ComputeMetrics computes ROC-AUC, Brier score, and prevalence over a
// scored table. ROC-AUC is NaN when only one class is present.
func ComputeMetrics(rows []domain.ScoredAdmission, logger *logrus.Logger) (*Metrics, error) {
	if err := validateScored(rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, domain.NewValidationError("scored_admissions", "empty scored table", nil)
	}

	labels := make([]float64, len(rows))
	brierTerms := make([]float64, len(rows))
	for i, row := range rows {
		if row.EligibilityHeuristicLabel {
			labels[i] = 1
		}
		diff := row.EligibilityMLScore - labels[i]
		brierTerms[i] = diff * diff
	}

	m := &Metrics{
		ROCAUC:       rocAUC(rows),
		BrierScore:   stat.Mean(brierTerms, nil),
		PositiveRate: stat.Mean(labels, nil),
	}
	if math.IsNaN(m.ROCAUC) {
		logger.Warn("ROC-AUC could not be computed (single-class labels)")
	}
	return m, nil
}

// rocAUC computes the area under the ROC curve via the rank-sum
// formulation, with average ranks for tied scores.
func rocAUC(rows []domain.ScoredAdmission) float64 {
	n := len(rows)
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(a, b int) bool {
		return rows[indices[a]].EligibilityMLScore < rows[indices[b]].EligibilityMLScore
	})

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j < n && rows[indices[j]].EligibilityMLScore == rows[indices[i]].EligibilityMLScore {
			j++
		}
		avg := float64(i+j+1) / 2.0 // ranks are 1-based
		for k := i; k < j; k++ {
			ranks[indices[k]] = avg
		}
		i = j
	}

	var positives, rankSum float64
	for i, row := range rows {
		if row.EligibilityHeuristicLabel {
			positives++
			rankSum += ranks[i]
		}
	}
	negatives := float64(n) - positives
	if positives == 0 || negatives == 0 {
		return math.NaN()
	}
	return (rankSum - positives*(positives+1)/2.0) / (positives * negatives)
}
