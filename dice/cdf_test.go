package dice

import "testing"

func TestCDFTable(t *testing.T) {
	c, err := NewCDF([]uint32{3, 1, 4, 1, 5})
	if err != nil {
		t.Fatal(err)
	}
	want := []uint32{0, 3, 4, 8, 9, 14}
	if len(c.cdf) != len(want) {
		t.Fatalf("cdf length %d, want %d", len(c.cdf), len(want))
	}
	for i, v := range want {
		if c.cdf[i] != v {
			t.Fatalf("cdf[%d] = %d, want %d", i, c.cdf[i], v)
		}
	}
}

// Forcing every pool position in [0, m) walks the whole table: the binary
// search must map position u to the bucket whose cdf range contains it.
func TestCDFForcedPositions(t *testing.T) {
	c, err := NewCDF([]uint32{3, 1, 4, 1, 5})
	if err != nil {
		t.Fatal(err)
	}
	want := []uint32{0, 0, 0, 1, 2, 2, 2, 2, 3, 4, 4, 4, 4, 4}
	for u, expect := range want {
		p := forcedPool(t, uint64(u), 14)
		if got := c.Sample(p); got != expect {
			t.Fatalf("position %d: got %d, want %d", u, got, expect)
		}
	}
}

func TestCDFFrequencies(t *testing.T) {
	weights := []uint32{3, 1, 4, 1, 5}
	c, err := NewCDF(weights)
	if err != nil {
		t.Fatal(err)
	}
	const rounds = 500000
	counts := sampleCounts(t, c, "cdf-freq", rounds)
	checkFrequencies(t, counts, weights, rounds)
}

func TestCDFZeroWeightNeverDrawn(t *testing.T) {
	weights := []uint32{2, 0, 3}
	c, err := NewCDF(weights)
	if err != nil {
		t.Fatal(err)
	}
	const rounds = 100000
	counts := sampleCounts(t, c, "cdf-zero", rounds)
	if counts[1] != 0 {
		t.Fatalf("zero-weight outcome drawn %d times", counts[1])
	}
	checkFrequencies(t, counts, weights, rounds)
}
