package codemap

import (
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"github.com/chukwuka-orefo/clinical-eligibility-ml/internal/domain"
)

// Classify maps a (diagnosis code, code system) pair to phenotype flags.
// The code is normalized defensively (trim, uppercase) before matching.
// An empty code or empty system yields both flags false. A system string
// that is present but not one of the known values fails with
// UnsupportedCodeSystemError. Pure function over static tables: no I/O,
// no state, deterministic.
func Classify(code string, system domain.CodeSystem) (domain.Classification, error) {
	if code == "" || system == "" {
		return domain.Classification{}, nil
	}

	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return domain.Classification{}, nil
	}

	strokePrefixes, err := StrokePrefixes(system)
	if err != nil {
		return domain.Classification{}, err
	}
	cvdPrefixes, err := CardiovascularPrefixes(system)
	if err != nil {
		return domain.Classification{}, err
	}

	return domain.Classification{
		IsStroke:         matchesPrefix(normalized, strokePrefixes),
		IsCardiovascular: matchesPrefix(normalized, cvdPrefixes),
	}, nil
}

type cacheKey struct {
	code   string
	system domain.CodeSystem
}

// Classifier annotates diagnosis tables in bulk. Classification results
// are memoized per (code, system) pair since the same codes recur across
// admissions.
type Classifier struct {
	logger *logrus.Logger
	cache  *lru.Cache[cacheKey, domain.Classification]
}

// NewClassifier creates a bulk classifier with an LRU memoization cache
// of the given size.
func NewClassifier(logger *logrus.Logger, cacheSize int) (*Classifier, error) {
	cache, err := lru.New[cacheKey, domain.Classification](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Classifier{logger: logger, cache: cache}, nil
}

// Classify returns the phenotype flags for one code, consulting the memo
// cache first.
func (c *Classifier) Classify(code string, system domain.CodeSystem) (domain.Classification, error) {
	key := cacheKey{code: code, system: system}
	if cached, ok := c.cache.Get(key); ok {
		return cached, nil
	}

	result, err := Classify(code, system)
	if err != nil {
		return domain.Classification{}, err
	}

	c.cache.Add(key, result)
	return result, nil
}

// Annotate applies the codelists row-wise, returning a new table with
// stroke and cardiovascular flags. The source table is not mutated.
func (c *Classifier) Annotate(table *domain.DiagnosisTable) (*domain.ClassifiedDiagnosisTable, error) {
	out := &domain.ClassifiedDiagnosisTable{
		Rows:      make([]domain.ClassifiedDiagnosis, 0, len(table.Rows)),
		HasSeqNum: table.HasSeqNum,
	}

	strokeCount := 0
	cvdCount := 0
	for _, row := range table.Rows {
		flags, err := c.Classify(row.DiagnosisCode, row.CodeSystem)
		if err != nil {
			return nil, err
		}
		if flags.IsStroke {
			strokeCount++
		}
		if flags.IsCardiovascular {
			cvdCount++
		}
		out.Rows = append(out.Rows, domain.ClassifiedDiagnosis{
			DiagnosisRecord:      row,
			IsStrokeCode:         flags.IsStroke,
			IsCardiovascularCode: flags.IsCardiovascular,
		})
	}

	c.logger.WithFields(logrus.Fields{
		"total_rows":           len(out.Rows),
		"stroke_codes":         strokeCount,
		"cardiovascular_codes": cvdCount,
	}).Info("Applied codelists to diagnoses")

	return out, nil
}
