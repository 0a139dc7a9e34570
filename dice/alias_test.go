package dice

import "testing"

func TestAliasConstruction(t *testing.T) {
	a := []uint32{7, 11, 13}
	w, err := NewAlias(a)
	if err != nil {
		t.Fatal(err)
	}
	if w.weightSum != 31 {
		t.Fatalf("weight sum %d, want 31", w.weightSum)
	}
	// Two merges (0 borrows from 2, then 2 from 1) redistribute the initial
	// a[i]*n odds; the final table for (7,11,13) is pinned down exactly.
	wantOdds := []uint32{21, 31, 29}
	for i, v := range wantOdds {
		if w.noAliasOdds[i] != v {
			t.Fatalf("noAliasOdds[%d] = %d, want %d", i, w.noAliasOdds[i], v)
		}
	}
	if w.aliases[0] != 2 || w.aliases[2] != 1 {
		t.Fatalf("aliases = %v, want 0->2, 2->1", w.aliases)
	}
}

// Completeness: bucket i's keep odds plus everything flowing in from
// buckets aliased to i must reproduce a[i]*n exactly, so that
// Pr[i] = a[i]/m after dividing by n*weightSum.
func TestAliasCompleteness(t *testing.T) {
	for _, a := range [][]uint32{
		{7, 11, 13},
		{3, 1, 4, 1, 5},
		{1, 1, 2, 3, 2},
		{1, 1000},
		{5, 5, 5, 5},
		{0, 9, 0, 1},
	} {
		w, err := NewAlias(a)
		if err != nil {
			t.Fatal(err)
		}
		n := uint64(len(a))
		for i := range a {
			total := uint64(w.noAliasOdds[i])
			for j := range a {
				if w.noAliasOdds[j] < w.weightSum && w.aliases[j] == uint32(i) {
					total += uint64(w.weightSum) - uint64(w.noAliasOdds[j])
				}
			}
			if total != uint64(a[i])*n {
				t.Fatalf("weights %v: bucket %d balances to %d, want %d", a, i, total, uint64(a[i])*n)
			}
		}
	}
}

func TestAliasEOOffsets(t *testing.T) {
	w, err := NewAliasEO([]uint32{7, 11, 13})
	if err != nil {
		t.Fatal(err)
	}
	// Bucket 0 aliases to 2: its residual slice starts right after bucket
	// 2's own keep interval [0,29). Bucket 2 aliases to 1: its slice starts
	// after [0,31).
	if w.offsets[0] != 29-21 {
		t.Fatalf("offsets[0] = %d, want 8", w.offsets[0])
	}
	if w.offsets[2] != 31-29 {
		t.Fatalf("offsets[2] = %d, want 2", w.offsets[2])
	}
	for i, v := range []uint32{7, 11, 13} {
		if w.weights[i] != v {
			t.Fatalf("weights[%d] = %d, want %d", i, w.weights[i], v)
		}
	}
}

// Every alias-branch residual must land inside [0, weights[winner]*n) so
// the merge bound is honest. Exercise the wrap arithmetic by sweeping all
// pool positions for a distribution with several alias chains.
func TestAliasEOResidualRanges(t *testing.T) {
	a := []uint32{3, 1, 4, 1, 5}
	w, err := NewAliasEO(a)
	if err != nil {
		t.Fatal(err)
	}
	n := uint64(len(a))
	m := uint64(w.weightSum)
	seen := make([]map[uint64]bool, len(a))
	for i := range seen {
		seen[i] = make(map[uint64]bool)
	}
	for u := uint64(0); u < n*m; u++ {
		p := forcedPool(t, u, n*m)
		winner := w.Sample(p)
		wi := u / n
		i := u % n
		var residual uint64
		if wi < uint64(w.noAliasOdds[i]) {
			residual = wi
		} else {
			residual = wi + w.offsets[i]
		}
		limit := uint64(w.weights[winner]) * n
		if residual >= limit {
			t.Fatalf("position %d: residual %d outside [0,%d) for winner %d", u, residual, limit, winner)
		}
		if seen[winner][residual] {
			t.Fatalf("position %d: residual %d for winner %d occupied twice", u, residual, winner)
		}
		seen[winner][residual] = true
	}
	// The per-winner residual intervals must be packed with no holes:
	// exactly weights[i]*n positions map to winner i.
	for i := range seen {
		if uint64(len(seen[i])) != uint64(w.weights[i])*n {
			t.Fatalf("winner %d covered %d residuals, want %d", i, len(seen[i]), uint64(w.weights[i])*n)
		}
	}
}

func TestAliasFrequencies(t *testing.T) {
	weights := []uint32{7, 11, 13}
	const rounds = 500000

	plain, err := NewAlias(weights)
	if err != nil {
		t.Fatal(err)
	}
	counts := sampleCounts(t, plain, "alias-plain-freq", rounds)
	checkFrequencies(t, counts, weights, rounds)

	eo, err := NewAliasEO(weights)
	if err != nil {
		t.Fatal(err)
	}
	counts = sampleCounts(t, eo, "alias-eo-freq", rounds)
	checkFrequencies(t, counts, weights, rounds)
}
