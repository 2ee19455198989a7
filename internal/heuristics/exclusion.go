package heuristics

import "github.com/chukwuka-orefo/clinical-eligibility-ml/internal/domain"

// ApplyExclusionRule adds excluded and exclusion_reason. Independent of
// the inclusion rules: age above the hard limit is checked first, then
// absent stroke signal, each behind its config toggle (both default
// enabled). First matching reason wins; reasons are never combined. A
// null age never triggers the age exclusion.
func ApplyExclusionRule(table *domain.EligibilityTable, cfg *domain.StudyConfig) (*domain.EligibilityTable, error) {
	cfg = resolveConfig(cfg)
	out := table.Clone()
	out.HasExclusionFlags = true

	for i := range out.Rows {
		row := &out.Rows[i]
		row.Excluded = false
		row.ExclusionReason = ""

		if cfg.Exclusions.ExcludeIfAgeAboveHardLimit && table.HasAge &&
			row.AgeAtAdmission != nil && *row.AgeAtAdmission > cfg.Age.HardExclude {
			row.Excluded = true
			row.ExclusionReason = domain.ReasonAgeAboveHardLimit
			continue
		}

		if cfg.Exclusions.ExcludeWithoutStrokeSignal && !row.HasAnyStrokeSignal {
			row.Excluded = true
			row.ExclusionReason = domain.ReasonNoStrokeSignal
		}
	}
	return out, nil
}

// IsExcluded checks the exclusion rules for a single admission.
func IsExcluded(age *float64, hasAnyStrokeSignal bool, cfg *domain.StudyConfig) (bool, string) {
	cfg = resolveConfig(cfg)
	if cfg.Exclusions.ExcludeIfAgeAboveHardLimit && age != nil && *age > cfg.Age.HardExclude {
		return true, domain.ReasonAgeAboveHardLimit
	}
	if cfg.Exclusions.ExcludeWithoutStrokeSignal && !hasAnyStrokeSignal {
		return true, domain.ReasonNoStrokeSignal
	}
	return false, ""
}
