package dice

import (
	"math/bits"
	"testing"
)

func TestFLDRTreeShape(t *testing.T) {
	a := []uint32{1, 1, 2, 3, 2}
	f, err := NewFLDR(a)
	if err != nil {
		t.Fatal(err)
	}
	// m=9 needs k=4 traversal bits, so five levels.
	if len(f.breadths) != 5 {
		t.Fatalf("levels %d, want 5", len(f.breadths))
	}
	wantBreadths := []uint32{0, 0, 0, 3, 3}
	for j, v := range wantBreadths {
		if f.breadths[j] != v {
			t.Fatalf("breadths[%d] = %d, want %d", j, f.breadths[j], v)
		}
	}
	wantLeaves := []uint32{2, 3, 4, 0, 1, 3}
	if len(f.leaves) != len(wantLeaves) {
		t.Fatalf("leaves %v, want %v", f.leaves, wantLeaves)
	}
	for i, v := range wantLeaves {
		if f.leaves[i] != v {
			t.Fatalf("leaves[%d] = %d, want %d", i, f.leaves[i], v)
		}
	}
}

func TestFLDRLeafCount(t *testing.T) {
	for _, a := range [][]uint32{
		{1, 1, 2, 3, 2},
		{3, 1, 4, 1, 5},
		{1},
		{255, 1},
		{1 << 30, 1 << 30},
	} {
		f, err := NewFLDR(a)
		if err != nil {
			t.Fatal(err)
		}
		want := 0
		var total uint32
		for _, w := range a {
			want += bits.OnesCount32(w)
			total += w
		}
		if len(f.leaves) != want {
			t.Fatalf("weights %v: %d leaves, want %d", a, len(f.leaves), want)
		}
		var sum uint32
		for _, b := range f.breadths {
			sum += b
		}
		if int(sum) != want {
			t.Fatalf("weights %v: breadths sum to %d, want %d", a, sum, want)
		}
		// Level j holds weight 2^(k-j) per leaf; together they must tile
		// the whole weight sum, which is what makes rejection unnecessary.
		k := uint32(len(f.breadths) - 1)
		var mass uint64
		for j, b := range f.breadths {
			mass += uint64(b) << (int(k) - j)
		}
		if mass != uint64(total) {
			t.Fatalf("weights %v: leaf mass %d, want %d", a, mass, total)
		}
	}
}

func TestFLDRPowerOfTwoSum(t *testing.T) {
	// m=8 makes the prepared uniform rejection-free and the tree exactly
	// three levels deep.
	f, err := NewFLDR([]uint32{4, 2, 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(f.breadths) != 4 {
		t.Fatalf("levels %d, want 4", len(f.breadths))
	}
	const rounds = 300000
	counts := sampleCounts(t, f, "fldr-pow2", rounds)
	checkFrequencies(t, counts, []uint32{4, 2, 2}, rounds)
}

func TestFLDRFrequencies(t *testing.T) {
	weights := []uint32{1, 1, 2, 3, 2}
	f, err := NewFLDR(weights)
	if err != nil {
		t.Fatal(err)
	}
	const rounds = 500000
	counts := sampleCounts(t, f, "fldr-freq", rounds)
	checkFrequencies(t, counts, weights, rounds)
}
