package model

import (
	"sort"

	"github.com/chukwuka-orefo/clinical-eligibility-ml/internal/domain"
)

// DecisionStump is a one-feature threshold baseline. It exists to keep
// the logistic model honest: a model that cannot beat the stump on
// ranking metrics is not adding value over a single flag.
type DecisionStump struct {
	featureNames []string

	FeatureIndex int     `json:"feature_index"`
	Threshold    float64 `json:"threshold"`
}

// NewDecisionStump creates an untrained stump over the named features.
func NewDecisionStump(featureNames []string) *DecisionStump {
	names := make([]string, len(featureNames))
	copy(names, featureNames)
	return &DecisionStump{featureNames: names, FeatureIndex: -1}
}

// FeatureNames returns the feature columns in matrix order.
func (m *DecisionStump) FeatureNames() []string {
	out := make([]string, len(m.featureNames))
	copy(out, m.featureNames)
	return out
}

// Fit exhaustively searches every feature and candidate threshold for
// the split with the best balanced accuracy. Ties resolve to the lowest
// feature index and lowest threshold, so fitting is deterministic.
func (m *DecisionStump) Fit(features [][]float64, labels []bool) error {
	if len(features) == 0 {
		return domain.NewValidationError("features", "empty training matrix", nil)
	}
	if len(features) != len(labels) {
		return domain.NewValidationError("labels", "feature and label counts differ", len(labels))
	}

	positives, negatives := 0, 0
	for _, y := range labels {
		if y {
			positives++
		} else {
			negatives++
		}
	}

	bestScore := -1.0
	for j := range m.featureNames {
		values := make([]float64, 0, len(features))
		for _, row := range features {
			values = append(values, row[j])
		}
		for _, threshold := range candidateThresholds(values) {
			tp, tn := 0, 0
			for i, row := range features {
				predicted := row[j] >= threshold
				if predicted && labels[i] {
					tp++
				} else if !predicted && !labels[i] {
					tn++
				}
			}
			score := balancedAccuracy(tp, tn, positives, negatives)
			if score > bestScore {
				bestScore = score
				m.FeatureIndex = j
				m.Threshold = threshold
			}
		}
	}

	return nil
}

// PredictScore returns 1.0 above the threshold and 0.0 below. Binary by
// construction; ties in the ranking keep input order.
func (m *DecisionStump) PredictScore(features [][]float64) ([]float64, error) {
	if m.FeatureIndex < 0 {
		return nil, domain.NewValidationError("model", "model is not fitted", nil)
	}

	scores := make([]float64, len(features))
	for i, row := range features {
		if m.FeatureIndex >= len(row) {
			return nil, domain.NewValidationError("features", "feature row width mismatch", len(row))
		}
		if row[m.FeatureIndex] >= m.Threshold {
			scores[i] = 1
		}
	}
	return scores, nil
}

// candidateThresholds returns midpoints between adjacent distinct
// values, sorted ascending.
func candidateThresholds(values []float64) []float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	var thresholds []float64
	for i := 1; i < len(sorted); i++ {
		if sorted[i] != sorted[i-1] {
			thresholds = append(thresholds, (sorted[i]+sorted[i-1])/2)
		}
	}
	if len(thresholds) == 0 {
		thresholds = []float64{sorted[0]}
	}
	return thresholds
}

func balancedAccuracy(tp, tn, positives, negatives int) float64 {
	sensitivity, specificity := 1.0, 1.0
	if positives > 0 {
		sensitivity = float64(tp) / float64(positives)
	}
	if negatives > 0 {
		specificity = float64(tn) / float64(negatives)
	}
	return (sensitivity + specificity) / 2
}
