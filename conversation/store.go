// Package conversation owns per-thread turn history. A thread is an ordered,
// append-only sequence of turns identified by an opaque string key; threads
// are created lazily on first append and never deleted.
package conversation

import (
	"context"

	"github.com/Namenomeaning/chemistry-chatbot/types"
)

// Store is the conversation history contract consumed by the pipeline.
//
// GetRecent returns up to n most recent turns in causal order (oldest first);
// an unknown thread yields an empty result, not an error. Append creates the
// thread if absent and is atomic with respect to concurrent callers on the
// same thread id; it fails only when the backing store is unavailable, which
// the pipeline surfaces as a fatal turn failure.
type Store interface {
	GetRecent(ctx context.Context, threadID string, n int) ([]types.Turn, error)
	Append(ctx context.Context, threadID string, turn types.Turn) error
}
