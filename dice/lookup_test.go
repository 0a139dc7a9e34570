package dice

import "testing"

func TestLookupTable(t *testing.T) {
	l, err := NewLookup([]uint32{3, 1, 4, 1, 5})
	if err != nil {
		t.Fatal(err)
	}
	want := []uint32{0, 0, 0, 1, 2, 2, 2, 2, 3, 4, 4, 4, 4, 4}
	if len(l.lookup) != len(want) {
		t.Fatalf("lookup length %d, want %d", len(l.lookup), len(want))
	}
	for j, v := range want {
		if l.lookup[j] != v {
			t.Fatalf("lookup[%d] = %d, want %d", j, l.lookup[j], v)
		}
	}
}

// The flat table and the forced pool must agree position by position with
// the binary search over the same weights.
func TestLookupForcedPositions(t *testing.T) {
	l, err := NewLookup([]uint32{3, 1, 4, 1, 5})
	if err != nil {
		t.Fatal(err)
	}
	want := []uint32{0, 0, 0, 1, 2, 2, 2, 2, 3, 4, 4, 4, 4, 4}
	for u, expect := range want {
		p := forcedPool(t, uint64(u), 14)
		if got := l.Sample(p); got != expect {
			t.Fatalf("position %d: got %d, want %d", u, got, expect)
		}
	}
}

func TestLookupFrequencies(t *testing.T) {
	weights := []uint32{3, 1, 4, 1, 5}
	l, err := NewLookup(weights)
	if err != nil {
		t.Fatal(err)
	}
	const rounds = 500000
	counts := sampleCounts(t, l, "lookup-freq", rounds)
	checkFrequencies(t, counts, weights, rounds)
}
