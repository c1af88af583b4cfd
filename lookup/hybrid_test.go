package lookup

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"
)

// fakeEmbedder maps texts onto fixed unit vectors so dense similarity is
// fully deterministic.
func fakeEmbedder(calls *atomic.Int32) func(ctx context.Context, text string) ([]float32, error) {
	return func(_ context.Context, text string) ([]float32, error) {
		calls.Add(1)
		lower := strings.ToLower(text)
		switch {
		case strings.Contains(lower, "ethanol"):
			return []float32{1, 0, 0}, nil
		case strings.Contains(lower, "methane"):
			return []float32{0, 1, 0}, nil
		default:
			return []float32{0, 0, 1}, nil
		}
	}
}

func newTestHybrid(t *testing.T, calls *atomic.Int32) *HybridSearcher {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	s, err := NewHybrid(context.Background(), testCatalog(), fakeEmbedder(calls), HybridConfig{
		RRFRankConstant: 60,
		PrefetchLimit:   10,
		CacheSize:       16,
	}, logger)
	if err != nil {
		t.Fatalf("NewHybrid: %v", err)
	}
	return s
}

func TestHybridLookupRanksAgreedCandidateFirst(t *testing.T) {
	var calls atomic.Int32
	s := newTestHybrid(t, &calls)

	results, err := s.Lookup(context.Background(), "ethanol", 3, 0.4)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("Lookup returned no results")
	}
	if results[0].RecordID != "compound_001" {
		t.Errorf("top result = %s, want compound_001", results[0].RecordID)
	}
	if results[0].Score != 1.0 {
		t.Errorf("top result score = %v, want 1.0 (first in both rankings)", results[0].Score)
	}
	for _, res := range results[1:] {
		if res.Score >= results[0].Score {
			t.Errorf("result %s score %v not below top score", res.RecordID, res.Score)
		}
	}
}

func TestHybridLookupThresholdFilters(t *testing.T) {
	var calls atomic.Int32
	s := newTestHybrid(t, &calls)

	results, err := s.Lookup(context.Background(), "ethanol", 3, 0.99)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if len(results) != 1 || results[0].RecordID != "compound_001" {
		t.Fatalf("high threshold kept %+v, want only compound_001", results)
	}
}

func TestHybridLookupIdempotentAndCached(t *testing.T) {
	var calls atomic.Int32
	s := newTestHybrid(t, &calls)
	ctx := context.Background()

	first, err := s.Lookup(ctx, "ethanol", 3, 0.4)
	if err != nil {
		t.Fatalf("first Lookup: %v", err)
	}
	afterFirst := calls.Load()

	second, err := s.Lookup(ctx, "ethanol", 3, 0.4)
	if err != nil {
		t.Fatalf("second Lookup: %v", err)
	}
	if calls.Load() != afterFirst {
		t.Error("cached lookup re-embedded the key")
	}

	if len(first) != len(second) {
		t.Fatalf("result count changed between calls: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("position %d changed between calls: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestHybridLookupEmptyKey(t *testing.T) {
	var calls atomic.Int32
	s := newTestHybrid(t, &calls)

	results, err := s.Lookup(context.Background(), "   ", 3, 0.4)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if results != nil {
		t.Errorf("blank key returned %+v, want nil", results)
	}
}
