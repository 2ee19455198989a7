package evaluation

import (
	"math"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chukwuka-orefo/clinical-eligibility-ml/internal/domain"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	return logger
}

func scored(hadm int64, label bool, score float64) domain.ScoredAdmission {
	return domain.ScoredAdmission{SubjectID: 1, AdmissionID: hadm, EligibilityHeuristicLabel: label, EligibilityMLScore: score}
}

func findMetric(t *testing.T, metrics []domain.RankingMetric, method string, k int) domain.RankingMetric {
	t.Helper()
	for _, m := range metrics {
		if m.Method == method && m.K == k {
			return m
		}
	}
	t.Fatalf("no metric for method=%s k=%d", method, k)
	return domain.RankingMetric{}
}

func TestScoreRankedScreeningAtK2(t *testing.T) {
	// Labels [T,F,T,F], scores [0.9,0.8,0.3,0.1], K=2: top-2 holds one
	// true positive, so recall@2 = precision@2 = 0.5.
	rows := []domain.ScoredAdmission{
		scored(1, true, 0.9),
		scored(2, false, 0.8),
		scored(3, true, 0.3),
		scored(4, false, 0.1),
	}

	metrics, err := EvaluateRanking(rows, []int{2}, testLogger())
	require.NoError(t, err)

	ml := findMetric(t, metrics, domain.MethodML, 2)
	assert.InDelta(t, 0.5, ml.RecallAtK, 1e-9)
	assert.InDelta(t, 0.5, ml.PrecisionAtK, 1e-9)
}

func TestHeuristicScreening(t *testing.T) {
	rows := []domain.ScoredAdmission{
		scored(4, true, 0.2),
		scored(1, true, 0.9),
		scored(2, false, 0.8),
		scored(3, true, 0.3),
	}

	metrics, err := EvaluateRanking(rows, []int{2, 10}, testLogger())
	require.NoError(t, err)

	// 3 positives, K=2: two screened.
	atTwo := findMetric(t, metrics, domain.MethodHeuristic, 2)
	assert.InDelta(t, 2.0/3.0, atTwo.RecallAtK, 1e-9)
	assert.InDelta(t, 1.0, atTwo.PrecisionAtK, 1e-9)

	// K beyond the positive count screens them all.
	atTen := findMetric(t, metrics, domain.MethodHeuristic, 10)
	assert.InDelta(t, 1.0, atTen.RecallAtK, 1e-9)
	assert.InDelta(t, 0.3, atTen.PrecisionAtK, 1e-9)
}

func TestHeuristicScreenedOrder(t *testing.T) {
	rows := []domain.ScoredAdmission{
		scored(4, true, 0.2),
		scored(1, true, 0.9),
		scored(2, false, 0.8),
		scored(3, true, 0.3),
	}

	// At capacity, the lowest admission ids are reviewed first.
	screened := HeuristicScreened(rows, 2)
	require.Len(t, screened, 2)
	assert.Equal(t, int64(1), screened[0].AdmissionID)
	assert.Equal(t, int64(3), screened[1].AdmissionID)

	// Beyond the positive count, all positives appear in id order.
	screened = HeuristicScreened(rows, 10)
	require.Len(t, screened, 3)
	assert.Equal(t, int64(1), screened[0].AdmissionID)
	assert.Equal(t, int64(3), screened[1].AdmissionID)
	assert.Equal(t, int64(4), screened[2].AdmissionID)

	assert.Empty(t, HeuristicScreened(rows, 0))
}

func TestKZeroYieldsZeroPrecision(t *testing.T) {
	rows := []domain.ScoredAdmission{scored(1, true, 0.9)}

	metrics, err := EvaluateRanking(rows, []int{0}, testLogger())
	require.NoError(t, err)

	for _, m := range metrics {
		assert.Equal(t, 0.0, m.PrecisionAtK)
	}
}

func TestZeroPositivesYieldsZeroRecall(t *testing.T) {
	rows := []domain.ScoredAdmission{
		scored(1, false, 0.9),
		scored(2, false, 0.1),
	}

	metrics, err := EvaluateRanking(rows, []int{2}, testLogger())
	require.NoError(t, err)

	for _, m := range metrics {
		assert.Equal(t, 0.0, m.RecallAtK)
	}
}

func TestKLargerThanTableIsLegal(t *testing.T) {
	rows := []domain.ScoredAdmission{
		scored(1, true, 0.9),
		scored(2, false, 0.1),
	}

	metrics, err := EvaluateRanking(rows, []int{100}, testLogger())
	require.NoError(t, err)

	ml := findMetric(t, metrics, domain.MethodML, 100)
	assert.InDelta(t, 1.0, ml.RecallAtK, 1e-9)
	assert.InDelta(t, 0.01, ml.PrecisionAtK, 1e-9)
}

func TestTiedScoresKeepOriginalOrder(t *testing.T) {
	rows := []domain.ScoredAdmission{
		scored(1, true, 0.5),
		scored(2, false, 0.5),
		scored(3, true, 0.5),
	}

	first, err := EvaluateRanking(rows, []int{1, 2}, testLogger())
	require.NoError(t, err)
	second, err := EvaluateRanking(rows, []int{1, 2}, testLogger())
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// Stable sort keeps row 1 first at K=1.
	atOne := findMetric(t, first, domain.MethodML, 1)
	assert.InDelta(t, 0.5, atOne.RecallAtK, 1e-9)
	assert.InDelta(t, 1.0, atOne.PrecisionAtK, 1e-9)
}

func TestValidationRejectsNonFiniteScores(t *testing.T) {
	rows := []domain.ScoredAdmission{scored(1, true, math.NaN())}

	_, err := EvaluateRanking(rows, []int{1}, testLogger())
	require.Error(t, err)
	var validation *domain.ValidationError
	assert.ErrorAs(t, err, &validation)

	rows = []domain.ScoredAdmission{scored(1, true, math.Inf(1))}
	_, err = EvaluateRanking(rows, []int{1}, testLogger())
	require.Error(t, err)
}

func TestValidationRejectsDuplicateAdmissions(t *testing.T) {
	rows := []domain.ScoredAdmission{
		scored(1, true, 0.9),
		scored(1, false, 0.1),
	}

	_, err := EvaluateRanking(rows, []int{1}, testLogger())
	require.Error(t, err)
	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "hadm_id", validation.Field)
}

func TestCompareScreeningStrategiesPivot(t *testing.T) {
	rows := []domain.ScoredAdmission{
		scored(1, true, 0.9),
		scored(2, false, 0.8),
		scored(3, true, 0.3),
		scored(4, false, 0.1),
	}

	comparison, err := CompareScreeningStrategies(rows, []int{2, 4}, nil, testLogger())
	require.NoError(t, err)
	require.Len(t, comparison, 2)

	assert.Equal(t, 2, comparison[0].K)
	assert.Equal(t, 4, comparison[1].K)
	assert.InDelta(t, 0.5, comparison[0].RecallML, 1e-9)
	assert.InDelta(t, 1.0, comparison[0].RecallHeuristic, 1e-9)
	assert.InDelta(t, 1.0, comparison[1].RecallML, 1e-9)
	assert.InDelta(t, 0.5, comparison[1].PrecisionML, 1e-9)
}

func TestCompareDefaultsToConfiguredKValues(t *testing.T) {
	rows := []domain.ScoredAdmission{scored(1, true, 0.9)}

	comparison, err := CompareScreeningStrategies(rows, nil, nil, testLogger())
	require.NoError(t, err)
	require.Len(t, comparison, 4)
	assert.Equal(t, []int{25, 50, 100, 200}, []int{comparison[0].K, comparison[1].K, comparison[2].K, comparison[3].K})
}

func TestComputeMetrics(t *testing.T) {
	rows := []domain.ScoredAdmission{
		scored(1, true, 0.9),
		scored(2, true, 0.8),
		scored(3, false, 0.2),
		scored(4, false, 0.1),
	}

	m, err := ComputeMetrics(rows, testLogger())
	require.NoError(t, err)

	// Perfect separation.
	assert.InDelta(t, 1.0, m.ROCAUC, 1e-9)
	assert.InDelta(t, 0.5, m.PositiveRate, 1e-9)
	assert.InDelta(t, (0.01+0.04+0.04+0.01)/4.0, m.BrierScore, 1e-9)
}

func TestComputeMetricsSingleClass(t *testing.T) {
	rows := []domain.ScoredAdmission{
		scored(1, true, 0.9),
		scored(2, true, 0.8),
	}

	m, err := ComputeMetrics(rows, testLogger())
	require.NoError(t, err)
	assert.True(t, math.IsNaN(m.ROCAUC))
	assert.Equal(t, 1.0, m.PositiveRate)
}

func TestAnalyseErrors(t *testing.T) {
	rows := []domain.ScoredAdmission{
		scored(1, true, 0.9),  // true positive
		scored(2, false, 0.8), // false positive
		scored(3, true, 0.2),  // false negative
		scored(4, false, 0.1), // true negative
	}

	fps, fns, err := AnalyseErrors(rows, 0.5)
	require.NoError(t, err)
	require.Len(t, fps, 1)
	require.Len(t, fns, 1)
	assert.Equal(t, int64(2), fps[0].AdmissionID)
	assert.Equal(t, int64(3), fns[0].AdmissionID)

	summary := SummariseErrors(fps, fns)
	assert.Equal(t, 1, summary.FalsePositiveCount)
	assert.Equal(t, 1, summary.FalseNegativeCount)
}
