// Package service orchestrates the screening pipeline: ingest raw
// extracts, annotate diagnoses, derive phenotypes, apply the eligibility
// rules, train the proxy model, and evaluate both screening strategies.
package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/chukwuka-orefo/clinical-eligibility-ml/internal/codemap"
	"github.com/chukwuka-orefo/clinical-eligibility-ml/internal/domain"
	"github.com/chukwuka-orefo/clinical-eligibility-ml/internal/evaluation"
	"github.com/chukwuka-orefo/clinical-eligibility-ml/internal/features"
	"github.com/chukwuka-orefo/clinical-eligibility-ml/internal/heuristics"
	"github.com/chukwuka-orefo/clinical-eligibility-ml/internal/ingestion"
	"github.com/chukwuka-orefo/clinical-eligibility-ml/internal/model"
	"github.com/chukwuka-orefo/clinical-eligibility-ml/internal/phenotype"
)

// classifierCacheSize bounds the diagnosis-code memoization cache. Raw
// extracts repeat a few thousand distinct codes.
const classifierCacheSize = 16384

// Raw extract file names under the configured raw directory.
const (
	admissionsFile = "admissions.csv"
	diagnosesFile  = "diagnoses.csv"
	patientsFile   = "patients.csv"
)

// RunResult holds everything one pipeline run produced.
type RunResult struct {
	RunID      string
	Eligible   *domain.EligibilityTable
	Scored     []domain.ScoredAdmission
	Comparison []domain.ComparisonRow
}

// Pipeline wires the screening stages together. The store is optional;
// a nil store skips persistence and only writes output files.
type Pipeline struct {
	cfg    *domain.Config
	store  domain.ResultStore
	logger *logrus.Logger
}

// NewPipeline creates a pipeline over the given configuration.
func NewPipeline(cfg *domain.Config, store domain.ResultStore, logger *logrus.Logger) *Pipeline {
	return &Pipeline{cfg: cfg, store: store, logger: logger}
}

// Run executes the full screening pipeline.
func (p *Pipeline) Run(ctx context.Context) (*RunResult, error) {
	profile, err := ingestion.ProfileFor(p.cfg.Data.Dataset)
	if err != nil {
		return nil, err
	}

	p.logger.WithFields(logrus.Fields{
		"dataset": string(profile.Dataset),
		"raw_dir": p.cfg.Data.RawDir,
	}).Info("Starting screening pipeline run")

	admissions, diagnoses, err := p.ingest(profile)
	if err != nil {
		return nil, err
	}

	classifier, err := codemap.NewClassifier(p.logger, classifierCacheSize)
	if err != nil {
		return nil, err
	}
	classified, err := classifier.Annotate(diagnoses)
	if err != nil {
		return nil, err
	}

	strokeTable, err := phenotype.DeriveStrokePhenotype(classified, p.logger)
	if err != nil {
		return nil, err
	}
	cvdTable, err := phenotype.DeriveCardiovascularPhenotype(classified, p.logger)
	if err != nil {
		return nil, err
	}
	if err := p.writePhenotypes(strokeTable, cvdTable); err != nil {
		return nil, err
	}

	joined, err := features.Join(admissions, strokeTable, cvdTable, p.logger)
	if err != nil {
		return nil, err
	}

	engine := heuristics.NewEngine(p.logger)
	labeled, err := engine.Apply(joined, &p.cfg.StudyConfig)
	if err != nil {
		return nil, err
	}

	scored, comparison, err := p.scoreAndEvaluate(labeled)
	if err != nil {
		return nil, err
	}

	result := &RunResult{
		RunID:      uuid.New().String(),
		Eligible:   labeled,
		Scored:     scored,
		Comparison: comparison,
	}

	if err := p.writeOutputs(result); err != nil {
		return nil, err
	}
	if err := p.persist(ctx, result); err != nil {
		return nil, err
	}

	p.logger.WithFields(logrus.Fields{
		"run_id":     result.RunID,
		"admissions": len(labeled.Rows),
	}).Info("Completed screening pipeline run")

	return result, nil
}

// ingest loads the raw extracts. The patient extract is optional; when
// present it supplies the age fallback for admission tables without an
// age column.
func (p *Pipeline) ingest(profile ingestion.Profile) (*domain.AdmissionTable, *domain.DiagnosisTable, error) {
	admissionsPath := filepath.Join(p.cfg.Data.RawDir, admissionsFile)
	diagnosesPath := filepath.Join(p.cfg.Data.RawDir, diagnosesFile)
	patientsPath := filepath.Join(p.cfg.Data.RawDir, patientsFile)

	admissions, err := ingestion.LoadAdmissions(admissionsPath, profile, p.logger)
	if err != nil {
		return nil, nil, err
	}
	diagnoses, err := ingestion.LoadDiagnoses(diagnosesPath, profile, p.logger)
	if err != nil {
		return nil, nil, err
	}

	if _, err := os.Stat(patientsPath); err == nil {
		patients, err := ingestion.LoadPatients(patientsPath, profile, p.logger)
		if err != nil {
			return nil, nil, err
		}
		admissions = ingestion.AttachAnchorAges(admissions, patients, p.logger)
	}

	return admissions, diagnoses, nil
}

// scoreAndEvaluate trains the proxy model and compares screening
// strategies. With scoring disabled, admissions carry a zero score and
// the comparison is skipped.
func (p *Pipeline) scoreAndEvaluate(labeled *domain.EligibilityTable) ([]domain.ScoredAdmission, []domain.ComparisonRow, error) {
	if !p.cfg.MLScoring.Enabled {
		p.logger.Info("Model scoring disabled; skipping ranking comparison")
		scored := make([]domain.ScoredAdmission, len(labeled.Rows))
		for i, row := range labeled.Rows {
			scored[i] = domain.ScoredAdmission{
				SubjectID:                 row.SubjectID,
				AdmissionID:               row.AdmissionID,
				EligibilityHeuristicLabel: row.EligibilityHeuristicLabel,
			}
		}
		return scored, nil, nil
	}

	m := model.NewLogisticRegression(features.FeatureNames(), model.DefaultLogisticRegressionOptions())
	scored, err := model.TrainAndScore(m, labeled, p.logger)
	if err != nil {
		return nil, nil, err
	}

	comparison, err := evaluation.CompareScreeningStrategies(scored, nil, &p.cfg.StudyConfig, p.logger)
	if err != nil {
		return nil, nil, err
	}
	return scored, comparison, nil
}

// persist writes the run to the result store, when one is configured.
func (p *Pipeline) persist(ctx context.Context, result *RunResult) error {
	if p.store == nil {
		return nil
	}

	eligible := 0
	for _, row := range result.Eligible.Rows {
		if row.EligibilityHeuristicLabel {
			eligible++
		}
	}

	studyName := ""
	if name, ok := p.cfg.Study["name"].(string); ok {
		studyName = name
	}

	run := &domain.RunRecord{
		ID:            result.RunID,
		StudyName:     studyName,
		Dataset:       string(p.cfg.Data.Dataset),
		RecordCount:   len(result.Eligible.Rows),
		EligibleCount: eligible,
		CreatedAt:     time.Now().UTC().Format(time.RFC3339),
	}
	if err := p.store.SaveRun(ctx, run); err != nil {
		return fmt.Errorf("failed to persist run: %w", err)
	}
	if err := p.store.SaveResults(ctx, result.RunID, result.Scored); err != nil {
		return fmt.Errorf("failed to persist results: %w", err)
	}
	if len(result.Comparison) > 0 {
		if err := p.store.SaveComparison(ctx, result.RunID, result.Comparison); err != nil {
			return fmt.Errorf("failed to persist comparison: %w", err)
		}
	}
	return nil
}
