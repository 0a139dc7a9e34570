package dice

import (
	"math/bits"
	"testing"

	"github.com/probsys/randomness-recycling/recycle"
)

func TestALDRAmplification(t *testing.T) {
	a := []uint32{1, 3}
	x, err := NewALDR(a)
	if err != nil {
		t.Fatal(err)
	}
	// m=4, k=2, K=4: c=4, so Q=(4,12) and the slice 2^4 mod 4 = 0 rejects
	// nothing.
	if len(x.breadths) != 5 {
		t.Fatalf("levels %d, want 5", len(x.breadths))
	}
	if x.weights[0] != 4 || x.weights[1] != 12 {
		t.Fatalf("amplified weights %v, want [4 12]", x.weights)
	}
	if x.reject != 0 {
		t.Fatalf("reject weight %d, want 0", x.reject)
	}
	wantBreadths := []uint32{0, 1, 2, 0, 0}
	for j, v := range wantBreadths {
		if x.breadths[j] != v {
			t.Fatalf("breadths[%d] = %d, want %d", j, x.breadths[j], v)
		}
	}
	wantLeaves := []uint32{1, 0, 1}
	for i, v := range wantLeaves {
		if x.leaves[i] != v {
			t.Fatalf("leaves[%d] = %d, want %d", i, x.leaves[i], v)
		}
	}
}

func TestALDRRejectWeight(t *testing.T) {
	for _, tc := range []struct {
		weights []uint32
		reject  uint64
	}{
		{[]uint32{1, 3}, 0},         // m=4, 16 mod 4
		{[]uint32{1, 1, 1}, 1},      // m=3, 16 mod 3
		{[]uint32{1, 1, 2, 3, 2}, 4}, // m=9, 256 mod 9
	} {
		x, err := NewALDR(tc.weights)
		if err != nil {
			t.Fatal(err)
		}
		if x.reject != tc.reject {
			t.Fatalf("weights %v: reject %d, want %d", tc.weights, x.reject, tc.reject)
		}
		// Leaf mass plus the reject slice must tile 2^K exactly.
		bigK := uint32(len(x.breadths) - 1)
		var mass uint64
		for j, b := range x.breadths {
			mass += uint64(b) << (int(bigK) - j)
		}
		if mass+x.reject != uint64(1)<<bigK {
			t.Fatalf("weights %v: mass %d + reject %d != 2^%d", tc.weights, mass, x.reject, bigK)
		}
		var leaves int
		for _, q := range x.weights {
			leaves += bits.OnesCount64(q)
		}
		if leaves != len(x.leaves) {
			t.Fatalf("weights %v: %d leaves laid out, want %d", tc.weights, len(x.leaves), leaves)
		}
	}
}

func TestALDRQuarterSplit(t *testing.T) {
	x, err := NewALDR([]uint32{1, 3})
	if err != nil {
		t.Fatal(err)
	}
	p := recycle.NewPool(recycle.NewSeededEntropy("aldr-quarter"))
	const rounds = 4000000
	ones := 0
	for i := 0; i < rounds; i++ {
		if x.Sample(p) == 1 {
			ones++
		}
	}
	rate := float64(ones) / rounds
	if rate < 0.749 || rate > 0.751 {
		t.Fatalf("Pr[1] = %.5f outside [0.749, 0.751]", rate)
	}
}

func TestALDRFrequencies(t *testing.T) {
	weights := []uint32{1, 1, 2, 3, 2}
	x, err := NewALDR(weights)
	if err != nil {
		t.Fatal(err)
	}
	const rounds = 500000
	counts := sampleCounts(t, x, "aldr-freq", rounds)
	checkFrequencies(t, counts, weights, rounds)
}

// The rejection path must leave the pool with a valid uniform; a corrupted
// pool would skew the frequencies checked here for a weight sum with a fat
// reject slice.
func TestALDRRejectionKeepsInvariant(t *testing.T) {
	// m=5: K=6, 64 mod 5 = 4 rejected out of 64.
	x, err := NewALDR([]uint32{2, 3})
	if err != nil {
		t.Fatal(err)
	}
	counts := sampleCounts(t, x, "aldr-reject", 500000)
	checkFrequencies(t, counts, []uint32{2, 3}, 500000)
}
