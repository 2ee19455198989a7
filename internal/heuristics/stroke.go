package heuristics

import "github.com/chukwuka-orefo/clinical-eligibility-ml/internal/domain"

// ApplyStrokeRule adds the stroke_signal_ok flag:
// (require_any_signal implies has_any_stroke_signal) AND
// stroke_code_count >= min_code_count. Permissive and recall-oriented.
//
// Also adds stroke_primary_preferred, mirroring the primary-diagnosis
// flag when the preference is enabled and the ordering column exists.
// That flag is advisory only and never gates the final label.
func ApplyStrokeRule(table *domain.EligibilityTable, cfg *domain.StudyConfig) (*domain.EligibilityTable, error) {
	cfg = resolveConfig(cfg)
	out := table.Clone()
	out.HasStrokeFlags = true

	for i := range out.Rows {
		row := &out.Rows[i]

		ok := row.StrokeCodeCount >= cfg.StrokeSignal.MinCodeCount
		if cfg.StrokeSignal.RequireAnySignal {
			ok = ok && row.HasAnyStrokeSignal
		}
		row.StrokeSignalOK = ok

		if cfg.StrokeSignal.PreferPrimaryDx && table.HasPrimaryDx {
			row.StrokePrimaryPreferred = row.StrokePrimaryDxFlag
		} else {
			row.StrokePrimaryPreferred = false
		}
	}
	return out, nil
}

// IsStrokeSignalOK checks the stroke-signal criteria for a single
// admission.
func IsStrokeSignalOK(strokeCodeCount int, hasAnyStrokeSignal bool, cfg *domain.StudyConfig) bool {
	cfg = resolveConfig(cfg)
	if cfg.StrokeSignal.RequireAnySignal && !hasAnyStrokeSignal {
		return false
	}
	return strokeCodeCount >= cfg.StrokeSignal.MinCodeCount
}
