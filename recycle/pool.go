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

// Package recycle implements an entropy pool with randomness recycling.
//
// The pool buffers one uniform integer of growing range. Every draw carves a
// factor out of that range and merges the residual uniform back in, so the
// amortized number of fresh bits consumed per draw approaches the Shannon
// entropy of whatever distribution is sampled on top of it.
//
// Invariant held across every operation: state ~ unif[0, bound), independent
// of all values returned so far.
package recycle

import (
	"math/bits"
	"sync/atomic"
)

// Pool is a recycling entropy pool bound to one bit source.
// A Pool must not be used from multiple goroutines concurrently;
// give each goroutine its own Pool instead.
type Pool struct {
	src Entropy

	// bit buffer: the low pos bits of word are unconsumed fair bits
	word uint64
	pos  uint32

	// buffered uniform: state ~ unif[0, bound)
	state uint64
	bound uint64

	drawn uint64 // bits pulled from src since construction
}

// NewPool creates a pool over the given bit source. A nil source selects
// the system CSPRNG.
func NewPool(src Entropy) *Pool {
	if src == nil {
		src = NewSystemEntropy()
	}
	return &Pool{src: src, bound: 1}
}

// BitsDrawn reports how many raw bits have been pulled from the source.
// Bits still sitting unconsumed in the buffer are included.
func (p *Pool) BitsDrawn() uint64 { return p.drawn }

func (p *Pool) refill() {
	p.word = p.src.Word()
	p.pos = 64
	p.drawn += 64
	atomic.AddUint64(&DefaultSnmp.WordsDrawn, 1)
}

// FlipN returns n fresh fair bits, n <= 64, stitching across word
// boundaries with shift-and-or. Bits come straight from the source and
// bypass the recycling pool; use FlipNFromUnif when the result feeds
// arithmetic that recycles.
func (p *Pool) FlipN(n uint32) uint64 {
	if p.pos == 0 {
		p.refill()
	}
	take := n
	if take > p.pos {
		take = p.pos
	}
	p.pos -= take
	b := (p.word >> p.pos) & (^uint64(0) >> (64 - take))
	if take != n {
		p.refill()
		rest := n - take
		b <<= rest
		p.pos -= rest
		b |= (p.word >> p.pos) & (^uint64(0) >> (64 - rest))
	}
	return b
}

// Flip returns a single fair bit.
func (p *Pool) Flip() uint64 { return p.FlipN(1) }

// refillUniform tops the pool up to bound >= 1<<56 while keeping
// state ~ unif[0, bound): both sides shift left by clz(bound) and the
// freed low bits of state fill with fresh flips.
func (p *Pool) refillUniform() {
	n := uint32(bits.LeadingZeros64(p.bound))
	if n >= 8 {
		p.bound <<= n
		p.state = p.state<<n | p.FlipN(n)
	}
}

// Merge folds an externally produced uniform into the pool.
// state must satisfy state ~ unif[0, bound) and be independent of the
// pool's current contents; bound must keep bound*p.bound within 64 bits.
func (p *Pool) Merge(state, bound uint64) {
	p.bound *= bound
	p.state = p.state*bound + state
}

// MergeBits is Merge specialized to a bound of 1<<n.
func (p *Pool) MergeBits(state uint64, n uint32) {
	p.bound <<= n
	p.state = p.state<<n | state
}

// Uniform returns a value distributed unif[0, n) for positive n well below
// 1<<63. The result is independent of the pool state left behind.
//
// The quotient/remainder split is the whole trick: when state/n lands
// strictly below bound/n, the quotient and remainder are independent
// uniforms, so the remainder is the answer and the quotient stays buffered.
// Otherwise the leftover remainder range replaces the pool and the loop
// retries, shrinking bound by a factor n per round.
func (p *Pool) Uniform(n uint64) uint64 {
	for {
		p.refillUniform()
		qState, rState := p.state/n, p.state%n
		qBound, rBound := p.bound/n, p.bound%n
		if qState < qBound {
			p.state, p.bound = qState, qBound
			return rState
		}
		// qState == qBound here, so rState ~ unif[0, rBound)
		p.state, p.bound = rState, rBound
	}
}

// FlipNFromUnif returns n fair bits through the pool, using shifts instead
// of division. Preferred over FlipN whenever the caller recycles, since the
// pool keeps the quotient range.
func (p *Pool) FlipNFromUnif(n uint32) uint64 {
	mask := uint64(1)<<n - 1
	for {
		p.refillUniform()
		qState, rState := p.state>>n, p.state&mask
		qBound, rBound := p.bound>>n, p.bound&mask
		if qState < qBound {
			p.state, p.bound = qState, qBound
			return rState
		}
		p.state, p.bound = rState, rBound
	}
}

// UniformU32 returns 32 recycled bits; shorthand for FlipNFromUnif(32).
func (p *Pool) UniformU32() uint32 {
	return uint32(p.FlipNFromUnif(32))
}

// Bernoulli returns true with probability numer/denom and recycles the
// rest of the draw. Requires 0 < denom and numer <= denom.
//
// The pool range splits into three slices: [0, q*numer) answers true,
// [q*numer, q*denom) answers false, and the ragged tail [q*denom, bound)
// re-enters the loop.
func (p *Pool) Bernoulli(numer, denom uint32) bool {
	for {
		p.refillUniform()
		qBound := p.bound / uint64(denom)
		rBound := p.bound % uint64(denom)
		trueBound := qBound * uint64(numer)
		if p.state < trueBound {
			p.bound = trueBound
			return true
		}
		fullBound := qBound * uint64(denom)
		if p.state < fullBound {
			p.state -= trueBound
			p.bound = fullBound - trueBound
			return false
		}
		p.state -= fullBound
		p.bound = rBound
		atomic.AddUint64(&DefaultSnmp.Retries, 1)
	}
}

// BernoulliTwoDiv is the straightforward rendering of Bernoulli on top of
// Uniform: one division for the draw, one merge for the recycle. Slower
// than Bernoulli, and it reads the low residue of the pool rather than its
// high slice, so the two give different answers on the same stream; each
// has its own rate test.
func (p *Pool) BernoulliTwoDiv(numer, denom uint32) bool {
	u := p.Uniform(uint64(denom))
	if u < uint64(numer) {
		p.Merge(u, uint64(numer))
		return true
	}
	p.Merge(u-uint64(numer), uint64(denom)-uint64(numer))
	return false
}
