// Package evaluation compares screening strategies over scored
// admissions: heuristic-only review versus score-ranked review at fixed
// screening capacities. The heuristic label is treated throughout as a
// noisy proxy for true eligibility; these metrics compare strategies,
// they do not certify accuracy.
package evaluation

import (
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/chukwuka-orefo/clinical-eligibility-ml/internal/domain"
)

// EvaluateRanking computes Recall@K and Precision@K for both screening
// methods at every K, returning one long-form row per (method, K) pair.
// Inputs are validated before any metric is computed.
func EvaluateRanking(rows []domain.ScoredAdmission, kValues []int, logger *logrus.Logger) ([]domain.RankingMetric, error) {
	if err := validateScored(rows); err != nil {
		return nil, err
	}

	results := make([]domain.RankingMetric, 0, 2*len(kValues))
	for _, k := range kValues {
		logger.WithField("k", k).Debug("Evaluating ranking metrics")

		recall, precision := heuristicScreening(rows, k)
		results = append(results, domain.RankingMetric{
			Method:       domain.MethodHeuristic,
			K:            k,
			RecallAtK:    recall,
			PrecisionAtK: precision,
		})

		recall, precision = scoreRankedScreening(rows, k)
		results = append(results, domain.RankingMetric{
			Method:       domain.MethodML,
			K:            k,
			RecallAtK:    recall,
			PrecisionAtK: precision,
		})
	}

	logger.WithFields(logrus.Fields{
		"admissions": len(rows),
		"k_values":   len(kValues),
	}).Info("Completed ranking evaluation")

	return results, nil
}

// HeuristicScreened returns the admissions the heuristic strategy would
// review at capacity k: the heuristic-positive set in stable ascending
// admission-id order, truncated to k. The order determines which
// admissions are reviewed when the positive set exceeds capacity.
func HeuristicScreened(rows []domain.ScoredAdmission, k int) []domain.ScoredAdmission {
	positives := make([]domain.ScoredAdmission, 0, len(rows))
	for _, row := range rows {
		if row.EligibilityHeuristicLabel {
			positives = append(positives, row)
		}
	}
	sort.SliceStable(positives, func(i, j int) bool {
		return positives[i].AdmissionID < positives[j].AdmissionID
	})

	if k < len(positives) {
		positives = positives[:k]
	}
	return positives
}

// heuristicScreening simulates reviewing heuristic-positive admissions
// with no prioritization within the positive set.
func heuristicScreening(rows []domain.ScoredAdmission, k int) (recall, precision float64) {
	totalPositives := 0
	for _, row := range rows {
		if row.EligibilityHeuristicLabel {
			totalPositives++
		}
	}
	screened := len(HeuristicScreened(rows, k))

	if totalPositives > 0 {
		recall = float64(screened) / float64(totalPositives)
	}
	if k > 0 {
		precision = float64(screened) / float64(k)
	}
	return recall, precision
}

// scoreRankedScreening ranks all admissions by ML score descending (ties
// keep original relative order, so the ranking is deterministic) and
// reviews the top K.
func scoreRankedScreening(rows []domain.ScoredAdmission, k int) (recall, precision float64) {
	ranked := make([]domain.ScoredAdmission, len(rows))
	copy(ranked, rows)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].EligibilityMLScore > ranked[j].EligibilityMLScore
	})

	top := k
	if top > len(ranked) {
		top = len(ranked)
	}

	totalPositives := 0
	for _, row := range rows {
		if row.EligibilityHeuristicLabel {
			totalPositives++
		}
	}
	truePositives := 0
	for _, row := range ranked[:top] {
		if row.EligibilityHeuristicLabel {
			truePositives++
		}
	}

	if totalPositives > 0 {
		recall = float64(truePositives) / float64(totalPositives)
	}
	if k > 0 {
		precision = float64(truePositives) / float64(k)
	}
	return recall, precision
}

// validateScored enforces the evaluator preconditions: finite scores and
// unique admission keys.
func validateScored(rows []domain.ScoredAdmission) error {
	seen := make(map[int64]bool, len(rows))
	for _, row := range rows {
		if math.IsNaN(row.EligibilityMLScore) || math.IsInf(row.EligibilityMLScore, 0) {
			return domain.NewValidationError("eligibility_ml_score",
				"non-finite score detected", row.EligibilityMLScore)
		}
		if seen[row.AdmissionID] {
			return domain.NewValidationError("hadm_id",
				"duplicate admission id in scored table", row.AdmissionID)
		}
		seen[row.AdmissionID] = true
	}
	return nil
}
