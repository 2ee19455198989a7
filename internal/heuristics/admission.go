package heuristics

import (
	"strings"

	"github.com/chukwuka-orefo/clinical-eligibility-ml/internal/domain"
)

// ApplyAdmissionRule adds is_emergency and admission_ok flags. An
// admission is emergency when its type contains "EMERGENCY",
// case-insensitively. When elective admissions are permitted
// (admission.emergency_only=false, the default) admission_ok is true
// unconditionally.
func ApplyAdmissionRule(table *domain.EligibilityTable, cfg *domain.StudyConfig) (*domain.EligibilityTable, error) {
	cfg = resolveConfig(cfg)
	out := table.Clone()
	out.HasAdmissionFlags = true

	for i := range out.Rows {
		row := &out.Rows[i]
		row.IsEmergency = strings.Contains(strings.ToUpper(row.AdmissionType), "EMERGENCY")
		if cfg.Admission.EmergencyOnly {
			row.AdmissionOK = row.IsEmergency
		} else {
			row.AdmissionOK = true
		}
	}
	return out, nil
}
