// Package codemap maps raw diagnosis codes to clinical phenotype signals
// via static per-code-system prefix tables. Codes are treated as signals,
// not definitive diagnoses; the lists are deliberately conservative and
// recall-oriented.
package codemap

import "github.com/chukwuka-orefo/clinical-eligibility-ml/internal/domain"

// ICD-9 stroke code families (430-436, cerebrovascular disease).
var icd9StrokePrefixes = []string{
	"430",
	"431",
	"432",
	"433",
	"434",
	"435",
	"436",
}

// ICD-10 stroke code families. G45 covers transient cerebral ischaemic
// attacks.
var icd10StrokePrefixes = []string{
	"I60",
	"I61",
	"I62",
	"I63",
	"I64",
	"G45",
}

// ICD-9 cardiovascular code families (390-429, diseases of the
// circulatory system excluding the cerebrovascular range).
var icd9CardiovascularPrefixes = []string{
	"390", "391", "392", "393", "394", "395", "396", "397", "398",
	"401", "402", "403", "404", "405",
	"410", "411", "412", "413", "414", "415", "416", "417",
	"420", "421", "422", "423", "424", "425", "426", "427", "428", "429",
}

// ICD-10 cardiovascular code families (I00-I51).
var icd10CardiovascularPrefixes = []string{
	"I00", "I01", "I02", "I03", "I04", "I05", "I06", "I07", "I08", "I09",
	"I10", "I11", "I12", "I13", "I15",
	"I20", "I21", "I22", "I23", "I24", "I25", "I26", "I27", "I28",
	"I30", "I31", "I32", "I33", "I34", "I35", "I36", "I37", "I38", "I39",
	"I40", "I41", "I42", "I43", "I44", "I45", "I46", "I47", "I48", "I49",
	"I50", "I51",
}

// StrokePrefixes returns the stroke code prefixes for a code system.
func StrokePrefixes(system domain.CodeSystem) ([]string, error) {
	switch system {
	case domain.ICD9:
		return icd9StrokePrefixes, nil
	case domain.ICD10:
		return icd10StrokePrefixes, nil
	default:
		return nil, domain.NewUnsupportedCodeSystemError(string(system))
	}
}

// CardiovascularPrefixes returns the cardiovascular code prefixes for a
// code system.
func CardiovascularPrefixes(system domain.CodeSystem) ([]string, error) {
	switch system {
	case domain.ICD9:
		return icd9CardiovascularPrefixes, nil
	case domain.ICD10:
		return icd10CardiovascularPrefixes, nil
	default:
		return nil, domain.NewUnsupportedCodeSystemError(string(system))
	}
}

// matchesPrefix reports whether a normalized code begins with any of the
// provided prefixes.
func matchesPrefix(code string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if len(code) >= len(prefix) && code[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}
