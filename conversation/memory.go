package conversation

import (
	"context"
	"sync"

	"github.com/Namenomeaning/chemistry-chatbot/types"
)

// MemoryStore keeps thread history in process memory. Appends on one thread
// are serialized by a per-thread mutex; independent threads never contend
// beyond the map lookup.
type MemoryStore struct {
	mu      sync.RWMutex
	threads map[string]*threadHistory
}

type threadHistory struct {
	mu    sync.Mutex
	turns []types.Turn
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{threads: make(map[string]*threadHistory)}
}

func (s *MemoryStore) GetRecent(_ context.Context, threadID string, n int) ([]types.Turn, error) {
	if n <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	th := s.threads[threadID]
	s.mu.RUnlock()
	if th == nil {
		return nil, nil
	}

	th.mu.Lock()
	defer th.mu.Unlock()
	start := len(th.turns) - n
	if start < 0 {
		start = 0
	}
	recent := make([]types.Turn, len(th.turns)-start)
	copy(recent, th.turns[start:])
	return recent, nil
}

func (s *MemoryStore) Append(_ context.Context, threadID string, turn types.Turn) error {
	s.mu.Lock()
	th, ok := s.threads[threadID]
	if !ok {
		th = &threadHistory{}
		s.threads[threadID] = th
	}
	s.mu.Unlock()

	th.mu.Lock()
	th.turns = append(th.turns, turn)
	th.mu.Unlock()
	return nil
}
