package model

import (
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chukwuka-orefo/clinical-eligibility-ml/internal/domain"
	"github.com/chukwuka-orefo/clinical-eligibility-ml/internal/features"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	return logger
}

// separableData returns a training set where positives have strictly
// larger values on every feature.
func separableData() ([][]float64, []bool) {
	x := [][]float64{
		{3, 0.6, 1, 2, 0.4, 1},
		{2, 0.5, 1, 1, 0.2, 1},
		{4, 0.8, 1, 3, 0.5, 1},
		{0, 0, 0, 0, 0, 0},
		{0, 0.1, 0, 1, 0.1, 1},
		{1, 0.1, 0, 0, 0, 0},
	}
	y := []bool{true, true, true, false, false, false}
	return x, y
}

func TestLogisticRegressionRanksSeparableData(t *testing.T) {
	x, y := separableData()
	m := NewLogisticRegression(features.FeatureNames(), DefaultLogisticRegressionOptions())
	require.NoError(t, m.Fit(x, y))

	scores, err := m.PredictScore(x)
	require.NoError(t, err)
	require.Len(t, scores, len(x))

	for _, score := range scores {
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 1.0)
	}

	// Every positive outranks every negative.
	for i, yi := range y {
		for j, yj := range y {
			if yi && !yj {
				assert.Greater(t, scores[i], scores[j],
					"positive row %d should outrank negative row %d", i, j)
			}
		}
	}
}

func TestLogisticRegressionIsDeterministic(t *testing.T) {
	x, y := separableData()

	first := NewLogisticRegression(features.FeatureNames(), DefaultLogisticRegressionOptions())
	require.NoError(t, first.Fit(x, y))
	second := NewLogisticRegression(features.FeatureNames(), DefaultLogisticRegressionOptions())
	require.NoError(t, second.Fit(x, y))

	assert.Equal(t, first.Weights, second.Weights)
	assert.Equal(t, first.Intercept, second.Intercept)
}

func TestLogisticRegressionValidation(t *testing.T) {
	m := NewLogisticRegression(features.FeatureNames(), DefaultLogisticRegressionOptions())

	err := m.Fit(nil, nil)
	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)

	err = m.Fit([][]float64{{1, 2}}, []bool{true})
	require.ErrorAs(t, err, &validation)

	_, err = m.PredictScore([][]float64{{1, 2, 3, 4, 5, 6}})
	require.ErrorAs(t, err, &validation)
}

func TestLogisticRegressionPersistenceRoundTrip(t *testing.T) {
	x, y := separableData()
	m := NewLogisticRegression(features.FeatureNames(), DefaultLogisticRegressionOptions())
	require.NoError(t, m.Fit(x, y))

	original, err := m.PredictScore(x)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, m.Save(path))

	loaded, err := LoadLogisticRegression(path)
	require.NoError(t, err)
	assert.Equal(t, m.FeatureNames(), loaded.FeatureNames())

	restored, err := loaded.PredictScore(x)
	require.NoError(t, err)
	assert.Equal(t, original, restored)
}

func TestDecisionStump(t *testing.T) {
	x, y := separableData()
	m := NewDecisionStump(features.FeatureNames())
	require.NoError(t, m.Fit(x, y))

	scores, err := m.PredictScore(x)
	require.NoError(t, err)

	// The data is separable, so the stump classifies it perfectly.
	for i, yi := range y {
		if yi {
			assert.Equal(t, 1.0, scores[i])
		} else {
			assert.Equal(t, 0.0, scores[i])
		}
	}
}

func TestDecisionStumpUnfitted(t *testing.T) {
	m := NewDecisionStump(features.FeatureNames())
	_, err := m.PredictScore([][]float64{{1, 2, 3, 4, 5, 6}})
	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestTrainAndScore(t *testing.T) {
	table := &domain.EligibilityTable{
		Rows: []domain.EligibilityRecord{
			{
				AdmissionFeatures: domain.AdmissionFeatures{
					SubjectID: 1, AdmissionID: 100,
					StrokeCodeCount: 2, StrokeCodeDensity: 0.5, HasAnyStrokeSignal: true,
				},
				EligibilityFlags: domain.EligibilityFlags{EligibilityHeuristicLabel: true},
			},
			{
				AdmissionFeatures: domain.AdmissionFeatures{SubjectID: 2, AdmissionID: 200},
			},
		},
		HasFinalLabel: true,
	}

	m := NewLogisticRegression(features.FeatureNames(), DefaultLogisticRegressionOptions())
	scored, err := TrainAndScore(m, table, testLogger())
	require.NoError(t, err)

	require.Len(t, scored, 2)
	assert.Equal(t, int64(100), scored[0].AdmissionID)
	assert.True(t, scored[0].EligibilityHeuristicLabel)
	assert.Greater(t, scored[0].EligibilityMLScore, scored[1].EligibilityMLScore)
}
