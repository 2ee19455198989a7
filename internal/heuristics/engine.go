// Package heuristics implements the transparent, rule-based eligibility
// criteria for stroke-trial screening. Each rule is an independently
// callable pure function over the admission-level joined table; the
// engine composes them and derives the final heuristic label. The label
// is a noisy baseline for screening, deliberately recall-oriented.
package heuristics

import (
	"github.com/sirupsen/logrus"

	"github.com/chukwuka-orefo/clinical-eligibility-ml/internal/domain"
)

// RuleFunc applies one eligibility rule, returning a new table with its
// flags added. Rules never mutate their input and never raise on
// well-formed rows; a nil config degrades to the documented defaults.
type RuleFunc func(table *domain.EligibilityTable, cfg *domain.StudyConfig) (*domain.EligibilityTable, error)

// Rule couples a rule function with its name and the flag groups it
// populates.
type Rule struct {
	Name  string
	Apply RuleFunc
}

// Engine composes the eligibility rules in dependency-safe order and
// derives the final label.
type Engine struct {
	logger *logrus.Logger
	rules  []Rule
}

// NewEngine creates a rule engine with the standard rule set: age,
// stroke signal, admission context, exclusion.
func NewEngine(logger *logrus.Logger) *Engine {
	return &Engine{
		logger: logger,
		rules: []Rule{
			{Name: "age", Apply: ApplyAgeRule},
			{Name: "stroke_signal", Apply: ApplyStrokeRule},
			{Name: "admission_context", Apply: ApplyAdmissionRule},
			{Name: "exclusion", Apply: ApplyExclusionRule},
		},
	}
}

// Apply runs every rule and derives the final heuristic label. The input
// table is left untouched.
func (e *Engine) Apply(table *domain.EligibilityTable, cfg *domain.StudyConfig) (*domain.EligibilityTable, error) {
	cfg = resolveConfig(cfg)

	current := table
	for _, rule := range e.rules {
		next, err := rule.Apply(current, cfg)
		if err != nil {
			return nil, err
		}
		e.logger.WithFields(logrus.Fields{
			"rule": rule.Name,
			"rows": len(next.Rows),
		}).Debug("Applied eligibility rule")
		current = next
	}

	labeled, err := DeriveFinalLabel(current)
	if err != nil {
		return nil, err
	}

	eligible := 0
	excluded := 0
	for _, row := range labeled.Rows {
		if row.EligibilityHeuristicLabel {
			eligible++
		}
		if row.Excluded {
			excluded++
		}
	}
	e.logger.WithFields(logrus.Fields{
		"rows":     len(labeled.Rows),
		"eligible": eligible,
		"excluded": excluded,
	}).Info("Derived eligibility heuristic labels")

	return labeled, nil
}

// DeriveFinalLabel computes the strict conjunction
// age_in_range AND stroke_signal_ok AND admission_ok AND NOT excluded.
// Any single disqualifying rule suppresses eligibility; this is a hard
// AND, not a weighted score. Fails fast when any rule's flags are
// missing from the table.
func DeriveFinalLabel(table *domain.EligibilityTable) (*domain.EligibilityTable, error) {
	var missing []string
	if !table.HasAgeFlags {
		missing = append(missing, "age_in_range", "age_excluded")
	}
	if !table.HasStrokeFlags {
		missing = append(missing, "stroke_signal_ok")
	}
	if !table.HasAdmissionFlags {
		missing = append(missing, "admission_ok")
	}
	if !table.HasExclusionFlags {
		missing = append(missing, "excluded")
	}
	if len(missing) > 0 {
		return nil, domain.NewMissingColumnError("eligibility", missing...)
	}

	out := table.Clone()
	out.HasFinalLabel = true
	for i := range out.Rows {
		row := &out.Rows[i]
		row.EligibilityHeuristicLabel = row.AgeInRange &&
			row.StrokeSignalOK &&
			row.AdmissionOK &&
			!row.Excluded
	}
	return out, nil
}

// resolveConfig degrades a missing study config to the documented
// defaults.
func resolveConfig(cfg *domain.StudyConfig) *domain.StudyConfig {
	if cfg == nil {
		return domain.DefaultStudyConfig()
	}
	return cfg
}
