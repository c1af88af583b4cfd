package database

import (
	"context"
	"encoding/json"
	"fmt"

	apperrors "github.com/Namenomeaning/chemistry-chatbot/errors"
	"github.com/Namenomeaning/chemistry-chatbot/types"
)

// GetRecent returns up to n most recent turns for a thread in causal order.
// An unknown thread yields an empty slice.
func (s *PostgresStore) GetRecent(ctx context.Context, threadID string, n int) ([]types.Turn, error) {
	if n <= 0 {
		return nil, nil
	}

	const query = `
        SELECT turn FROM turns
        WHERE thread_id = $1
        ORDER BY seq DESC
        LIMIT $2`

	rows, err := s.DB.QueryContext(ctx, query, threadID, n)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrStorageUnavailable, err.Error())
	}
	defer rows.Close()

	var turns []types.Turn
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan turn row: %w", err)
		}
		var turn types.Turn
		if err := json.Unmarshal(raw, &turn); err != nil {
			return nil, fmt.Errorf("decode stored turn: %w", err)
		}
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrStorageUnavailable, err.Error())
	}

	// Rows arrive newest-first; flip to causal order.
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

// Append stores a completed turn, creating the thread row if absent. Thread
// creation is idempotent so concurrent first turns on a fresh thread cannot
// conflict.
func (s *PostgresStore) Append(ctx context.Context, threadID string, turn types.Turn) error {
	raw, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("encode turn: %w", err)
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.WrapError(apperrors.ErrStorageUnavailable, err.Error())
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO threads (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`, threadID); err != nil {
		return apperrors.WrapError(apperrors.ErrStorageUnavailable, err.Error())
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO turns (id, thread_id, turn) VALUES ($1, $2, $3)`,
		turn.ID, threadID, raw); err != nil {
		return apperrors.WrapError(apperrors.ErrStorageUnavailable, err.Error())
	}
	if err := tx.Commit(); err != nil {
		return apperrors.WrapError(apperrors.ErrStorageUnavailable, err.Error())
	}
	return nil
}
