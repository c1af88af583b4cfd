package conversation

import (
	"context"
	"fmt"
	"testing"

	"github.com/Namenomeaning/chemistry-chatbot/types"
	"github.com/google/uuid"
)

func TestMemoryStoreAppendAndGetRecent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		turn := types.Turn{
			ID:      uuid.New(),
			RawText: fmt.Sprintf("question %d", i),
			Answer:  types.FinalAnswer{Text: fmt.Sprintf("answer %d", i)},
		}
		if err := store.Append(ctx, "thread-a", turn); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	recent, err := store.GetRecent(ctx, "thread-a", 2)
	if err != nil {
		t.Fatalf("GetRecent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("GetRecent returned %d turns, want 2", len(recent))
	}
	// Causal order: oldest of the window first, newest last.
	if recent[0].RawText != "question 3" || recent[1].RawText != "question 4" {
		t.Errorf("GetRecent window = %q, %q, want question 3, question 4", recent[0].RawText, recent[1].RawText)
	}
}

func TestMemoryStoreThreadIsolation(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Append(ctx, "thread-a", types.Turn{ID: uuid.New(), RawText: "ethanol là gì?"}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	recent, err := store.GetRecent(ctx, "thread-b", 1)
	if err != nil {
		t.Fatalf("GetRecent: %v", err)
	}
	if len(recent) != 0 {
		t.Errorf("fresh thread saw %d turns from another thread", len(recent))
	}
}

func TestMemoryStoreGetRecentMoreThanStored(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Append(ctx, "thread-a", types.Turn{ID: uuid.New(), RawText: "CH4"}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	recent, err := store.GetRecent(ctx, "thread-a", 10)
	if err != nil {
		t.Fatalf("GetRecent: %v", err)
	}
	if len(recent) != 1 {
		t.Errorf("GetRecent returned %d turns, want 1", len(recent))
	}
}
