// Package catalog holds the read-only compound knowledge base consulted by
// the lookup components. Records are loaded once at startup (from a JSON file
// or from Postgres) and served as an immutable in-memory snapshot; an
// external ingestion process owns the data itself.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
)

// Record is one substance entry: an element or a compound.
type Record struct {
	DocID            string   `json:"doc_id"`
	IUPACName        string   `json:"iupac_name"`
	CommonNames      []string `json:"common_names"`
	Formula          string   `json:"formula"`
	MolecularFormula string   `json:"molecular_formula"`
	Class            string   `json:"class"`
	Info             string   `json:"info"`
	NamingRule       string   `json:"naming_rule"`
	ImageURL         string   `json:"image_url"`
	AudioURL         string   `json:"audio_url"`
}

// HasDiagram reports whether a structural diagram is available.
func (r Record) HasDiagram() bool { return r.ImageURL != "" }

// HasPronunciation reports whether pronunciation audio is available.
func (r Record) HasPronunciation() bool { return r.AudioURL != "" }

// Catalog is an immutable snapshot of the compound knowledge base. Insertion
// order is preserved and used as the stable tie-break order for rankings.
type Catalog struct {
	records []Record
	byID    map[string]Record
}

func New(records []Record) *Catalog {
	byID := make(map[string]Record, len(records))
	for _, r := range records {
		byID[r.DocID] = r
	}
	return &Catalog{records: records, byID: byID}
}

// Records returns the snapshot in catalog order. Callers must not mutate it.
func (c *Catalog) Records() []Record { return c.records }

// ByID returns the record with the given doc id.
func (c *Catalog) ByID(id string) (Record, bool) {
	r, ok := c.byID[id]
	return r, ok
}

func (c *Catalog) Len() int { return len(c.records) }

// LoadFile reads a catalog snapshot from a JSON array file.
func LoadFile(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode catalog file %s: %w", path, err)
	}
	return records, nil
}
