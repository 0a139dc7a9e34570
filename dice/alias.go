// The MIT License (MIT)
//
// # Copyright (c) 2016 xtaci
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package dice

import (
	"math"

	"github.com/pkg/errors"

	"github.com/probsys/randomness-recycling/recycle"
)

// Alias is Walker's alias method in exact integer form: one uniform pick
// of a bucket, one Bernoulli to keep the bucket or follow its alias.
// noAliasOdds[i] is the keep probability of bucket i in units of weightSum.
type Alias struct {
	weightSum   uint32
	aliases     []uint32
	noAliasOdds []uint32
}

// noAlias marks a list end during construction; buckets that keep full
// odds never have their alias slot read afterwards.
const noAlias = math.MaxUint32

// aliasLists threads two linked lists through the array that later holds
// the final alias map. An index lives in exactly one of the three
// structures at any time, which is what lets them share memory.
type aliasLists struct {
	aliases    []uint32
	smallsHead uint32
	bigsHead   uint32
}

func newAliasLists(n int) *aliasLists {
	return &aliasLists{
		aliases:    make([]uint32, n),
		smallsHead: noAlias,
		bigsHead:   noAlias,
	}
}

func (l *aliasLists) pushSmall(idx uint32) {
	l.aliases[idx] = l.smallsHead
	l.smallsHead = idx
}

func (l *aliasLists) pushBig(idx uint32) {
	l.aliases[idx] = l.bigsHead
	l.bigsHead = idx
}

func (l *aliasLists) popSmall() uint32 {
	idx := l.smallsHead
	l.smallsHead = l.aliases[idx]
	return idx
}

func (l *aliasLists) popBig() uint32 {
	idx := l.bigsHead
	l.bigsHead = l.aliases[idx]
	return idx
}

// NewAlias runs Walker's pairing: every small bucket borrows the missing
// odds from one big bucket, one merge per small bucket and at most n-1
// merges in all.
func NewAlias(a []uint32) (*Alias, error) {
	weightSum, err := sumWeights(a)
	if err != nil {
		return nil, err
	}
	n := uint32(len(a))
	maxWeight := uint32(math.MaxUint32) / n
	for i, w := range a {
		if w > maxWeight {
			return nil, errors.Errorf("dice: weight %d at index %d exceeds %d for %d outcomes", w, i, maxWeight, n)
		}
	}

	noAliasOdds := make([]uint32, n)
	for i, w := range a {
		noAliasOdds[i] = w * n
	}

	lists := newAliasLists(len(a))
	for i := uint32(0); i < n; i++ {
		if noAliasOdds[i] < weightSum {
			lists.pushSmall(i)
		} else {
			lists.pushBig(i)
		}
	}

	for lists.smallsHead != noAlias && lists.bigsHead != noAlias {
		small := lists.popSmall()
		big := lists.popBig()
		lists.aliases[small] = big
		noAliasOdds[big] -= weightSum - noAliasOdds[small]
		if noAliasOdds[big] < weightSum {
			lists.pushSmall(big)
		} else {
			lists.pushBig(big)
		}
	}

	// Leftovers sit within rounding of 100% keep odds; snap them exactly
	// there so the Bernoulli below never follows their alias slot.
	for lists.smallsHead != noAlias {
		noAliasOdds[lists.popSmall()] = weightSum
	}
	for lists.bigsHead != noAlias {
		noAliasOdds[lists.popBig()] = weightSum
	}

	return &Alias{
		weightSum:   weightSum,
		aliases:     lists.aliases,
		noAliasOdds: noAliasOdds,
	}, nil
}

// Sample picks a bucket uniformly and keeps it with odds
// noAliasOdds[u]/weightSum, following the alias otherwise. Both the
// uniform and the Bernoulli recycle through the pool.
func (x *Alias) Sample(p *recycle.Pool) uint32 {
	u := uint32(p.Uniform(uint64(len(x.aliases))))
	if p.Bernoulli(x.noAliasOdds[u], x.weightSum) {
		return u
	}
	return x.aliases[u]
}

func (x *Alias) Outcomes() uint32 { return uint32(len(x.aliases)) }

func (x *Alias) Bytes() uint32 {
	return uint32(len(x.aliases))*4 + uint32(len(x.noAliasOdds))*4 + 8
}

// AliasEO is the alias method with full recycling: a single uniform on
// [0, n*weightSum) decides bucket and branch at once, and precomputed
// offsets relocate alias-branch residuals into one contiguous interval
// per winner.
type AliasEO struct {
	Alias
	weights []uint32
	offsets []uint64
}

// NewAliasEO extends the alias tables with the per-bucket offsets.
//
// cumulativeSums[j] walks, bucket by bucket, the concatenation of all
// residual intervals whose winner is j: j's own keep interval first, then
// one slice per bucket aliased to j. offsets[i] may wrap below zero; the
// later w+offsets[i] in Sample wraps back, so the modular arithmetic is
// intentional.
func NewAliasEO(a []uint32) (*AliasEO, error) {
	wai, err := NewAlias(a)
	if err != nil {
		return nil, err
	}
	n := len(a)
	cumulativeSums := make([]uint64, n)
	for i, odds := range wai.noAliasOdds {
		cumulativeSums[i] = uint64(odds)
	}
	offsets := make([]uint64, n)
	for i := range offsets {
		if wai.aliases[i] != noAlias {
			offsets[i] = cumulativeSums[wai.aliases[i]] - uint64(wai.noAliasOdds[i])
			cumulativeSums[wai.aliases[i]] += uint64(wai.weightSum) - uint64(wai.noAliasOdds[i])
		}
	}
	weights := make([]uint32, n)
	copy(weights, a)

	return &AliasEO{
		Alias:   *wai,
		weights: weights,
		offsets: offsets,
	}, nil
}

// Sample splits one uniform u on [0, n*weightSum) into a bucket i = u mod n
// and a weight coordinate w = u div n. The keep branch recycles w directly
// on [0, weights[i]*n); the alias branch shifts w by the bucket's offset
// into [0, weights[alias]*n).
func (x *AliasEO) Sample(p *recycle.Pool) uint32 {
	n := uint64(len(x.aliases))
	u := p.Uniform(n * uint64(x.weightSum))
	w := u / n
	i := uint32(u % n)
	if w < uint64(x.noAliasOdds[i]) {
		p.Merge(w, uint64(x.weights[i])*n)
		return i
	}
	j := x.aliases[i]
	p.Merge(w+x.offsets[i], uint64(x.weights[j])*n)
	return j
}

func (x *AliasEO) Bytes() uint32 {
	return x.Alias.Bytes() + uint32(len(x.weights))*4 + uint32(len(x.offsets))*8
}
