package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Namenomeaning/chemistry-chatbot/catalog"
)

// LoadCompounds reads the full compound catalog in stable insertion order.
// common_names is stored as a JSONB array by the ingestion pipeline.
func (s *PostgresStore) LoadCompounds(ctx context.Context) ([]catalog.Record, error) {
	const query = `
        SELECT doc_id, iupac_name, COALESCE(common_names, '[]'::jsonb),
               COALESCE(formula, ''), COALESCE(molecular_formula, ''),
               COALESCE(class, ''), COALESCE(info, ''), COALESCE(naming_rule, ''),
               COALESCE(image_url, ''), COALESCE(audio_url, '')
        FROM compounds
        ORDER BY id`

	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query compounds: %w", err)
	}
	defer rows.Close()

	var records []catalog.Record
	for rows.Next() {
		var r catalog.Record
		var names []byte
		if err := rows.Scan(&r.DocID, &r.IUPACName, &names, &r.Formula,
			&r.MolecularFormula, &r.Class, &r.Info, &r.NamingRule,
			&r.ImageURL, &r.AudioURL); err != nil {
			return nil, fmt.Errorf("scan compound row: %w", err)
		}
		if err := json.Unmarshal(names, &r.CommonNames); err != nil {
			return nil, fmt.Errorf("decode common_names for %s: %w", r.DocID, err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate compounds: %w", err)
	}
	return records, nil
}
