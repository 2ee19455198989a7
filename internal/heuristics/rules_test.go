package heuristics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chukwuka-orefo/clinical-eligibility-ml/internal/domain"
)

func TestIsAgeEligible(t *testing.T) {
	permissive := domain.DefaultStudyConfig()
	permissive.Age.TreatMissingAsEligible = true

	tests := []struct {
		name string
		age  *float64
		cfg  *domain.StudyConfig
		want bool
	}{
		{"within window", floatPtr(70), nil, true},
		{"at lower bound", floatPtr(18), nil, true},
		{"at upper bound", floatPtr(85), nil, true},
		{"below minimum", floatPtr(17), nil, false},
		{"above maximum", floatPtr(86), nil, false},
		{"above hard limit", floatPtr(95), nil, false},
		{"null age defaults to ineligible", nil, nil, false},
		{"null age eligible when configured", nil, permissive, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAgeEligible(tt.age, tt.cfg))
		})
	}
}

func TestIsStrokeSignalOK(t *testing.T) {
	strict := domain.DefaultStudyConfig()
	strict.StrokeSignal.MinCodeCount = 2

	lenient := domain.DefaultStudyConfig()
	lenient.StrokeSignal.RequireAnySignal = false
	lenient.StrokeSignal.MinCodeCount = 0

	tests := []struct {
		name      string
		count     int
		anySignal bool
		cfg       *domain.StudyConfig
		want      bool
	}{
		{"one code with signal", 1, true, nil, true},
		{"no codes no signal", 0, false, nil, false},
		{"signal without minimum count", 1, true, strict, false},
		{"count meets raised minimum", 2, true, strict, true},
		{"no signal required", 0, false, lenient, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsStrokeSignalOK(tt.count, tt.anySignal, tt.cfg))
		})
	}
}

func TestIsExcluded(t *testing.T) {
	noAgeExclusion := domain.DefaultStudyConfig()
	noAgeExclusion.Exclusions.ExcludeIfAgeAboveHardLimit = false

	tests := []struct {
		name       string
		age        *float64
		anySignal  bool
		cfg        *domain.StudyConfig
		want       bool
		wantReason string
	}{
		{"eligible admission", floatPtr(70), true, nil, false, ""},
		{"age above hard limit", floatPtr(95), true, nil, true, domain.ReasonAgeAboveHardLimit},
		{"no stroke signal", floatPtr(70), false, nil, true, domain.ReasonNoStrokeSignal},
		{"age reason wins over stroke reason", floatPtr(95), false, nil, true, domain.ReasonAgeAboveHardLimit},
		{"null age never triggers age exclusion", nil, true, nil, false, ""},
		{"age exclusion toggled off", floatPtr(95), true, noAgeExclusion, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			excluded, reason := IsExcluded(tt.age, tt.anySignal, tt.cfg)
			assert.Equal(t, tt.want, excluded)
			assert.Equal(t, tt.wantReason, reason)
		})
	}
}
