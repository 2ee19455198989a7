package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chukwuka-orefo/clinical-eligibility-ml/internal/domain"
)

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()

	first := &domain.RunRecord{
		ID: "run-1", StudyName: "stroke-pilot", Dataset: "mimic_iv",
		RecordCount: 2, EligibleCount: 1, CreatedAt: "2026-08-30T10:00:00Z",
	}
	second := &domain.RunRecord{
		ID: "run-2", StudyName: "stroke-pilot", Dataset: "mimic_iv",
		RecordCount: 2, EligibleCount: 2, CreatedAt: "2026-08-30T11:00:00Z",
	}
	require.NoError(t, store.SaveRun(ctx, first))
	require.NoError(t, store.SaveRun(ctx, second))

	results := []domain.ScoredAdmission{
		{SubjectID: 1, AdmissionID: 100, EligibilityHeuristicLabel: true, EligibilityMLScore: 0.9},
		{SubjectID: 2, AdmissionID: 200, EligibilityHeuristicLabel: false, EligibilityMLScore: 0.1},
	}
	require.NoError(t, store.SaveResults(ctx, "run-1", results))

	comparison := []domain.ComparisonRow{
		{K: 50, RecallHeuristic: 1.0, RecallML: 0.9, PrecisionHeuristic: 0.3, PrecisionML: 0.28},
		{K: 25, RecallHeuristic: 1.0, RecallML: 0.8, PrecisionHeuristic: 0.5, PrecisionML: 0.4},
	}
	require.NoError(t, store.SaveComparison(ctx, "run-1", comparison))

	got, err := store.GetRun(ctx, "run-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, first.EligibleCount, got.EligibleCount)

	missing, err := store.GetRun(ctx, "absent")
	require.NoError(t, err)
	assert.Nil(t, missing)

	latest, err := store.LatestRun(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "run-2", latest.ID)

	runs, err := store.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-2", runs[0].ID)

	stored, err := store.GetComparison(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, stored, 2)
	// Ordered by K regardless of insert order.
	assert.Equal(t, 25, stored[0].K)
	assert.Equal(t, 50, stored[1].K)
}
