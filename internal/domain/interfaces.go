package domain

import "context"

// EligibilityModel is the narrow contract every scoring strategy
// satisfies: trainable on a feature matrix, produces a continuous
// eligibility score per admission, reports its feature names. No
// inheritance hierarchy beyond this interface.
type EligibilityModel interface {
	// Fit trains the model on a feature matrix and heuristic-proxy labels.
	// Rows of features correspond to entries of labels.
	Fit(features [][]float64, labels []bool) error

	// PredictScore returns a continuous eligibility score per row,
	// conventionally in [0,1], used for ranking.
	PredictScore(features [][]float64) ([]float64, error)

	// FeatureNames returns the feature columns the model consumes, in
	// matrix column order.
	FeatureNames() []string
}

// RunRecord summarizes one completed pipeline run.
type RunRecord struct {
	ID            string `json:"id"`
	StudyName     string `json:"study_name"`
	Dataset       string `json:"dataset"`
	RecordCount   int    `json:"record_count"`
	EligibleCount int    `json:"eligible_count"`
	CreatedAt     string `json:"created_at"`
}

// ResultStore persists pipeline runs, per-admission eligibility results,
// and screening comparison tables.
type ResultStore interface {
	SaveRun(ctx context.Context, run *RunRecord) error
	SaveResults(ctx context.Context, runID string, rows []ScoredAdmission) error
	SaveComparison(ctx context.Context, runID string, rows []ComparisonRow) error
	GetRun(ctx context.Context, runID string) (*RunRecord, error)
	LatestRun(ctx context.Context) (*RunRecord, error)
	ListRuns(ctx context.Context, limit int) ([]*RunRecord, error)
	GetComparison(ctx context.Context, runID string) ([]ComparisonRow, error)
	Close() error
}
