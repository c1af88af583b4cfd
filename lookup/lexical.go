// Package lookup implements the two catalog retrieval paths: exact/fuzzy
// lexical matching and hybrid dense+sparse ranked search with reciprocal rank
// fusion.
package lookup

import (
	"sort"
	"strings"
	"unicode"

	"github.com/Namenomeaning/chemistry-chatbot/catalog"
	"github.com/Namenomeaning/chemistry-chatbot/types"
	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
	"go.uber.org/zap"
)

// LexicalSearcher matches a lookup key against the catalog. Formula and
// element-symbol keys use exact case-insensitive equality on the formula
// fields only; name keys use token-order-insensitive fuzzy scoring against
// the canonical and common names.
type LexicalSearcher struct {
	catalog   *catalog.Catalog
	threshold float64
	logger    *zap.Logger
}

func NewLexical(cat *catalog.Catalog, threshold float64, logger *zap.Logger) *LexicalSearcher {
	if threshold <= 0 || threshold > 1 {
		threshold = 0.7
	}
	return &LexicalSearcher{catalog: cat, threshold: threshold, logger: logger}
}

// Lookup returns matches ordered by descending score, catalog order breaking
// ties. An empty result is the no-match signal.
func (s *LexicalSearcher) Lookup(key string) []types.LookupResult {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil
	}

	formulaQuery := IsFormulaQuery(key)
	keyUpper := strings.ToUpper(key)
	keyLower := strings.ToLower(key)

	var results []types.LookupResult
	for _, record := range s.catalog.Records() {
		if formulaQuery {
			// Exact equality only: fuzzy scoring over formulas would conflate
			// near-identical strings like CH4 and C2H4.
			if keyUpper == strings.ToUpper(record.Formula) ||
				(record.MolecularFormula != "" && keyUpper == strings.ToUpper(record.MolecularFormula)) {
				results = append(results, toResult(record, 1.0))
			}
			continue
		}

		score := float64(fuzzy.TokenSortRatio(keyLower, strings.ToLower(record.IUPACName))) / 100.0
		for _, name := range record.CommonNames {
			if cs := float64(fuzzy.TokenSortRatio(keyLower, strings.ToLower(name))) / 100.0; cs > score {
				score = cs
			}
		}
		if score >= s.threshold {
			results = append(results, toResult(record, score))
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) == 0 {
		s.logger.Debug("Lexical lookup found no match", zap.String("key", key))
	}
	return results
}

// IsFormulaQuery reports whether a key should be matched as a chemical
// formula or element symbol rather than a name. Only bare single tokens
// qualify: formulas carry digits without hyphens or spaces (CH4, C2H5OH),
// positional names carry hyphens (propan-1-ol), and multi-word keys are
// always name queries. Element symbols are at most two characters starting
// uppercase (Na, H).
func IsFormulaQuery(key string) bool {
	key = strings.TrimSpace(key)
	if key == "" {
		return false
	}
	if strings.IndexFunc(key, unicode.IsSpace) >= 0 {
		return false
	}

	hasDigit := strings.IndexFunc(key, unicode.IsDigit) >= 0
	hasHyphen := strings.Contains(key, "-")
	if hasDigit && !hasHyphen {
		return true
	}

	runes := []rune(key)
	return len(runes) <= 2 && unicode.IsUpper(runes[0])
}

func toResult(record catalog.Record, score float64) types.LookupResult {
	return types.LookupResult{
		RecordID:    record.DocID,
		DisplayName: record.IUPACName,
		Formula:     record.Formula,
		Category:    record.Class,
		Score:       score,
		DiagramURL:  record.ImageURL,
		AudioURL:    record.AudioURL,
	}
}
