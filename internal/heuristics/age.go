package heuristics

import "github.com/chukwuka-orefo/clinical-eligibility-ml/internal/domain"

// ApplyAgeRule adds age_in_range and age_excluded flags.
//
// A fully-absent age column must never disqualify: every row gets
// age_in_range=true and age_excluded=false (conservative inclusion).
// When the column is present but a row's value is null, the row is not
// in range unless age.treat_missing_as_eligible is set; a null age is
// never hard-excluded. This is the sole rule allowed to soft-fail on a
// missing input column.
func ApplyAgeRule(table *domain.EligibilityTable, cfg *domain.StudyConfig) (*domain.EligibilityTable, error) {
	cfg = resolveConfig(cfg)
	out := table.Clone()
	out.HasAgeFlags = true

	if !table.HasAge {
		for i := range out.Rows {
			out.Rows[i].AgeInRange = true
			out.Rows[i].AgeExcluded = false
		}
		return out, nil
	}

	for i := range out.Rows {
		age := out.Rows[i].AgeAtAdmission
		if age == nil {
			out.Rows[i].AgeInRange = cfg.Age.TreatMissingAsEligible
			out.Rows[i].AgeExcluded = false
			continue
		}
		out.Rows[i].AgeInRange = *age >= cfg.Age.Min && *age <= cfg.Age.Max
		out.Rows[i].AgeExcluded = *age > cfg.Age.HardExclude
	}
	return out, nil
}

// IsAgeEligible checks a single age value against the inclusion rules.
// A nil age follows the configured null-age policy and is never hard
// excluded.
func IsAgeEligible(age *float64, cfg *domain.StudyConfig) bool {
	cfg = resolveConfig(cfg)
	if age == nil {
		return cfg.Age.TreatMissingAsEligible
	}
	if *age > cfg.Age.HardExclude {
		return false
	}
	return *age >= cfg.Age.Min && *age <= cfg.Age.Max
}
