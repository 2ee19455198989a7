// Package model provides the eligibility scoring models. Scores rank
// admissions for manual review; they are trained against the heuristic
// label as a noisy proxy, never against confirmed enrollment.
package model

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/chukwuka-orefo/clinical-eligibility-ml/internal/domain"
)

// LogisticRegressionOptions configures training.
type LogisticRegressionOptions struct {
	LearningRate float64
	Epochs       int
	L2Penalty    float64
}

// DefaultLogisticRegressionOptions returns the training defaults.
func DefaultLogisticRegressionOptions() LogisticRegressionOptions {
	return LogisticRegressionOptions{
		LearningRate: 0.1,
		Epochs:       500,
		L2Penalty:    1e-4,
	}
}

// LogisticRegression is a full-batch gradient-descent logistic
// regression with balanced class weights and per-feature
// standardization. Training is deterministic: weights start at zero and
// the data order never changes.
type LogisticRegression struct {
	opts         LogisticRegressionOptions
	featureNames []string

	Weights   []float64 `json:"weights"`
	Intercept float64   `json:"intercept"`
	Means     []float64 `json:"means"`
	Stds      []float64 `json:"stds"`
}

// NewLogisticRegression creates an untrained model over the named
// features.
func NewLogisticRegression(featureNames []string, opts LogisticRegressionOptions) *LogisticRegression {
	names := make([]string, len(featureNames))
	copy(names, featureNames)
	return &LogisticRegression{opts: opts, featureNames: names}
}

// FeatureNames returns the feature columns in matrix order.
func (m *LogisticRegression) FeatureNames() []string {
	out := make([]string, len(m.featureNames))
	copy(out, m.featureNames)
	return out
}

// Fit trains the model. Labels are weighted so both classes contribute
// equally regardless of prevalence.
func (m *LogisticRegression) Fit(features [][]float64, labels []bool) error {
	if len(features) == 0 {
		return domain.NewValidationError("features", "empty training matrix", nil)
	}
	if len(features) != len(labels) {
		return domain.NewValidationError("labels", "feature and label counts differ", len(labels))
	}
	cols := len(m.featureNames)
	for _, row := range features {
		if len(row) != cols {
			return domain.NewValidationError("features", "feature row width mismatch", len(row))
		}
	}

	positives := 0
	for _, y := range labels {
		if y {
			positives++
		}
	}
	n := len(labels)
	negatives := n - positives

	// Balanced class weights; a single-class fit degenerates to the
	// prior and that is acceptable for a proxy model.
	posWeight, negWeight := 1.0, 1.0
	if positives > 0 && negatives > 0 {
		posWeight = float64(n) / (2.0 * float64(positives))
		negWeight = float64(n) / (2.0 * float64(negatives))
	}

	m.standardizeFit(features)
	x := m.standardize(features)

	m.Weights = make([]float64, cols)
	m.Intercept = 0

	grad := make([]float64, cols)
	for epoch := 0; epoch < m.opts.Epochs; epoch++ {
		for j := range grad {
			grad[j] = 0
		}
		interceptGrad := 0.0
		totalWeight := 0.0

		for i, row := range x {
			p := sigmoid(floats.Dot(m.Weights, row) + m.Intercept)
			y, w := 0.0, negWeight
			if labels[i] {
				y, w = 1.0, posWeight
			}
			residual := w * (p - y)
			floats.AddScaled(grad, residual, row)
			interceptGrad += residual
			totalWeight += w
		}

		scale := m.opts.LearningRate / totalWeight
		for j := range m.Weights {
			m.Weights[j] -= scale * (grad[j] + m.opts.L2Penalty*m.Weights[j])
		}
		m.Intercept -= scale * interceptGrad
	}

	return nil
}

// PredictScore returns the predicted probability per row.
func (m *LogisticRegression) PredictScore(features [][]float64) ([]float64, error) {
	if m.Weights == nil {
		return nil, domain.NewValidationError("model", "model is not fitted", nil)
	}
	for _, row := range features {
		if len(row) != len(m.Weights) {
			return nil, domain.NewValidationError("features", "feature row width mismatch", len(row))
		}
	}

	x := m.standardize(features)
	scores := make([]float64, len(x))
	for i, row := range x {
		scores[i] = sigmoid(floats.Dot(m.Weights, row) + m.Intercept)
	}
	return scores, nil
}

// standardizeFit computes per-column means and standard deviations.
// Constant columns get unit scale so they standardize to zero.
func (m *LogisticRegression) standardizeFit(features [][]float64) {
	cols := len(m.featureNames)
	m.Means = make([]float64, cols)
	m.Stds = make([]float64, cols)

	column := make([]float64, len(features))
	for j := 0; j < cols; j++ {
		for i, row := range features {
			column[i] = row[j]
		}
		mean, std := stat.MeanStdDev(column, nil)
		if std == 0 || math.IsNaN(std) {
			std = 1
		}
		m.Means[j] = mean
		m.Stds[j] = std
	}
}

func (m *LogisticRegression) standardize(features [][]float64) [][]float64 {
	out := make([][]float64, len(features))
	for i, row := range features {
		scaled := make([]float64, len(row))
		for j, v := range row {
			scaled[j] = (v - m.Means[j]) / m.Stds[j]
		}
		out[i] = scaled
	}
	return out
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}
