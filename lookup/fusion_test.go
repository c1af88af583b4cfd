package lookup

import (
	"math"
	"testing"
)

func TestFuseRRFAgreementWins(t *testing.T) {
	dense := []string{"a", "b", "c"}
	sparse := []string{"b", "a", "d"}

	fused := fuseRRF(60, dense, sparse)
	if len(fused) != 4 {
		t.Fatalf("fused %d candidates, want 4", len(fused))
	}

	// a: ranks 1 and 2; b: ranks 2 and 1. Symmetric, so they tie and the id
	// tie-break orders a first. Both must outrank the single-list candidates.
	if fused[0].ID != "a" || fused[1].ID != "b" {
		t.Errorf("top two = %s, %s, want a, b", fused[0].ID, fused[1].ID)
	}
	if fused[0].Score != fused[1].Score {
		t.Errorf("symmetric candidates scored %v vs %v, want equal", fused[0].Score, fused[1].Score)
	}
	if fused[2].Score >= fused[0].Score {
		t.Error("candidate present in one ranking outranked candidates present in both")
	}
}

func TestFuseRRFNormalization(t *testing.T) {
	// First place in every ranking normalizes to exactly 1.0.
	fused := fuseRRF(60, []string{"a", "b"}, []string{"a", "c"})
	if fused[0].ID != "a" {
		t.Fatalf("top = %s, want a", fused[0].ID)
	}
	if math.Abs(fused[0].Score-1.0) > 1e-9 {
		t.Errorf("unanimous first place score = %v, want 1.0", fused[0].Score)
	}
	for _, c := range fused[1:] {
		if c.Score >= 1.0 {
			t.Errorf("candidate %s scored %v, want < 1.0", c.ID, c.Score)
		}
	}
}

func TestFuseRRFDeterministic(t *testing.T) {
	dense := []string{"x", "y", "z"}
	sparse := []string{"z", "y", "x"}

	first := fuseRRF(60, dense, sparse)
	for i := 0; i < 10; i++ {
		again := fuseRRF(60, dense, sparse)
		for j := range first {
			if first[j] != again[j] {
				t.Fatalf("run %d position %d: %+v != %+v", i, j, again[j], first[j])
			}
		}
	}
}

func TestFuseRRFEmpty(t *testing.T) {
	if fused := fuseRRF(60); fused != nil {
		t.Errorf("no rankings fused to %+v, want nil", fused)
	}
	if fused := fuseRRF(60, nil, nil); fused != nil {
		t.Errorf("empty rankings fused to %+v, want nil", fused)
	}
}
