package evaluation

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/chukwuka-orefo/clinical-eligibility-ml/internal/domain"
)

// CompareScreeningStrategies evaluates both methods at every K and
// pivots the long-form results into a wide comparison table with one row
// per K and recall/precision columns per method, sorted by K ascending.
// A nil kValues falls back to the configured screening capacities.
func CompareScreeningStrategies(rows []domain.ScoredAdmission, kValues []int, cfg *domain.StudyConfig, logger *logrus.Logger) ([]domain.ComparisonRow, error) {
	if kValues == nil {
		if cfg == nil {
			cfg = domain.DefaultStudyConfig()
		}
		kValues = cfg.Screening.KValues
	}

	metrics, err := EvaluateRanking(rows, kValues, logger)
	if err != nil {
		return nil, err
	}

	return PivotComparison(metrics), nil
}

// PivotComparison reshapes long-form (method, K) metric rows into the
// wide side-by-side table.
func PivotComparison(metrics []domain.RankingMetric) []domain.ComparisonRow {
	byK := make(map[int]*domain.ComparisonRow)
	for _, m := range metrics {
		row, ok := byK[m.K]
		if !ok {
			row = &domain.ComparisonRow{K: m.K}
			byK[m.K] = row
		}
		switch m.Method {
		case domain.MethodHeuristic:
			row.RecallHeuristic = m.RecallAtK
			row.PrecisionHeuristic = m.PrecisionAtK
		case domain.MethodML:
			row.RecallML = m.RecallAtK
			row.PrecisionML = m.PrecisionAtK
		}
	}

	out := make([]domain.ComparisonRow, 0, len(byK))
	for _, row := range byK {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].K < out[j].K })
	return out
}
