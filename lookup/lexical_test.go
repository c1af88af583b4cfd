package lookup

import (
	"testing"

	"github.com/Namenomeaning/chemistry-chatbot/catalog"
	"go.uber.org/zap"
)

func testCatalog() *catalog.Catalog {
	return catalog.New([]catalog.Record{
		{
			DocID:            "compound_001",
			IUPACName:        "ethanol",
			CommonNames:      []string{"rượu etylic", "cồn"},
			Formula:          "C2H5OH",
			MolecularFormula: "C2H6O",
			Class:            "alcohol",
		},
		{
			DocID:            "compound_002",
			IUPACName:        "methane",
			CommonNames:      []string{"metan"},
			Formula:          "CH4",
			MolecularFormula: "CH4",
			Class:            "alkane",
		},
		{
			DocID:            "compound_003",
			IUPACName:        "ethene",
			CommonNames:      []string{"etylen"},
			Formula:          "C2H4",
			MolecularFormula: "C2H4",
			Class:            "alkene",
		},
		{
			DocID:            "element_011",
			IUPACName:        "sodium",
			CommonNames:      []string{"natri"},
			Formula:          "Na",
			MolecularFormula: "Na",
			Class:            "alkali metal",
		},
	})
}

func TestIsFormulaQuery(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"CH4", true},
		{"C2H5OH", true},
		{"Na", true},
		{"Fe", true},
		{"ethanol", false},
		{"rượu etylic", false},
		{"propan-2-ol", false},
		{"2-methylbutane", false},
		{"ethanol C2H5OH rượu etylic", false},
		{"axit sunfuric H2SO4", false},
		{" CH4 ", true},
	}
	for _, tt := range tests {
		if got := IsFormulaQuery(tt.key); got != tt.want {
			t.Errorf("IsFormulaQuery(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestLexicalLookupFormulaExactOnly(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	s := NewLexical(testCatalog(), 0.7, logger)

	results := s.Lookup("CH4")
	if len(results) != 1 {
		t.Fatalf("Lookup(CH4) returned %d results, want 1", len(results))
	}
	if results[0].RecordID != "compound_002" {
		t.Errorf("Lookup(CH4) matched %s, want compound_002", results[0].RecordID)
	}
	if results[0].Score != 1.0 {
		t.Errorf("exact formula match score = %v, want 1.0", results[0].Score)
	}

	// A near-identical formula must not cross-match.
	for _, res := range results {
		if res.RecordID == "compound_003" {
			t.Error("Lookup(CH4) must not match C2H4")
		}
	}
}

func TestLexicalLookupElementSymbol(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	s := NewLexical(testCatalog(), 0.7, logger)

	results := s.Lookup("Na")
	if len(results) != 1 || results[0].RecordID != "element_011" {
		t.Fatalf("Lookup(Na) = %+v, want single element_011", results)
	}
}

func TestLexicalLookupFuzzyName(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	s := NewLexical(testCatalog(), 0.7, logger)

	tests := []struct {
		name   string
		key    string
		wantID string
	}{
		{"exact_iupac", "ethanol", "compound_001"},
		{"common_name", "rượu etylic", "compound_001"},
		{"case_insensitive", "ETHANOL", "compound_001"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := s.Lookup(tt.key)
			if len(results) == 0 {
				t.Fatalf("Lookup(%q) returned no results", tt.key)
			}
			if results[0].RecordID != tt.wantID {
				t.Errorf("Lookup(%q) top = %s, want %s", tt.key, results[0].RecordID, tt.wantID)
			}
		})
	}
}

func TestLexicalLookupBelowThreshold(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	s := NewLexical(testCatalog(), 0.7, logger)

	if results := s.Lookup("completely unrelated query about weather"); len(results) != 0 {
		t.Errorf("unrelated query returned %d results, want 0", len(results))
	}
}
