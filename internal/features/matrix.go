package features

import "github.com/chukwuka-orefo/clinical-eligibility-ml/internal/domain"

// featureNames is the fixed model feature order. Age and length of stay
// are deliberately left out: both are nullable and the heuristic label
// already encodes the age rule, so including age would let the model
// trivially reconstruct the label.
var featureNames = []string{
	"stroke_code_count",
	"stroke_code_density",
	"has_any_stroke_signal",
	"cardiovascular_code_count",
	"cardiovascular_code_density",
	"has_any_cvd_signal",
}

// FeatureNames returns the model feature columns in matrix order.
func FeatureNames() []string {
	out := make([]string, len(featureNames))
	copy(out, featureNames)
	return out
}

// Matrix flattens the labeled eligibility table into a feature matrix
// and label vector in row order. The final label must already be
// derived.
func Matrix(table *domain.EligibilityTable) ([][]float64, []bool, error) {
	if !table.HasFinalLabel {
		return nil, nil, domain.NewMissingColumnError("eligibility", "eligibility_heuristic_label")
	}

	x := make([][]float64, len(table.Rows))
	y := make([]bool, len(table.Rows))
	for i, row := range table.Rows {
		x[i] = []float64{
			float64(row.StrokeCodeCount),
			row.StrokeCodeDensity,
			boolToFloat(row.HasAnyStrokeSignal),
			float64(row.CardiovascularCodeCount),
			row.CardiovascularCodeDensity,
			boolToFloat(row.HasAnyCVDSignal),
		}
		y[i] = row.EligibilityHeuristicLabel
	}
	return x, y, nil
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
