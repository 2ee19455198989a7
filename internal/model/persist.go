package model

import (
	"encoding/json"
	"fmt"
	"os"
)

// serializedModel is the on-disk form of a fitted logistic regression.
type serializedModel struct {
	FeatureNames []string  `json:"feature_names"`
	Weights      []float64 `json:"weights"`
	Intercept    float64   `json:"intercept"`
	Means        []float64 `json:"means"`
	Stds         []float64 `json:"stds"`
}

// Save writes the fitted model to a JSON file.
func (m *LogisticRegression) Save(path string) error {
	payload := serializedModel{
		FeatureNames: m.featureNames,
		Weights:      m.Weights,
		Intercept:    m.Intercept,
		Means:        m.Means,
		Stds:         m.Stds,
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize model: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write model file: %w", err)
	}
	return nil
}

// LoadLogisticRegression reads a fitted model from a JSON file.
func LoadLogisticRegression(path string) (*LogisticRegression, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file: %w", err)
	}
	var payload serializedModel
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse model file: %w", err)
	}

	m := NewLogisticRegression(payload.FeatureNames, DefaultLogisticRegressionOptions())
	m.Weights = payload.Weights
	m.Intercept = payload.Intercept
	m.Means = payload.Means
	m.Stds = payload.Stds
	return m, nil
}
