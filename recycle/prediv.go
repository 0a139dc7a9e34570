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

package recycle

import "sync/atomic"

// PreparedUniform caches the divisions needed to draw unif[0, m) from a
// recycled 32-bit uniform without dividing on the hot path.
type PreparedUniform struct {
	outcomes     uint32
	quotient     uint32 // floor(2^32 / m)
	notRemainder uint32 // ^(2^32 mod m); rejection tail comparator
	inverse      uint64 // ceil-division helper, see Draw
}

// PrepareUniform precomputes the fixed-point constants for modulus m.
func PrepareUniform(m uint32) PreparedUniform {
	if m < 2 {
		return PreparedUniform{outcomes: m}
	}
	numerator := uint64(1) << 32
	quotient := uint32(numerator / uint64(m))
	remainder := uint32(numerator % uint64(m))
	inverse := ^uint64(0) / uint64(m)
	if ^uint64(0)%uint64(m) == uint64(m-1) {
		inverse++
	}
	return PreparedUniform{
		outcomes:     m,
		quotient:     quotient,
		notRemainder: ^remainder,
		inverse:      inverse,
	}
}

// Outcomes returns the modulus this table was prepared for.
func (x *PreparedUniform) Outcomes() uint32 { return x.outcomes }

// Draw produces unif[0, m) and recycles the leftover of the 32-bit draw.
//
// u*m splits a 32-bit uniform u into a high part unifm ~ unif[0, m) and a
// low part; draws landing in the tail slice of width 2^32 mod m are
// rejected and retried. On acceptance, subtracting ceil(2^32*unifm/m)
// from u leaves a uniform on [0, quotient) that merges back into the pool.
func (p *Pool) Draw(x *PreparedUniform) uint32 {
	if x.outcomes < 2 {
		return 0
	}
	for {
		u := p.UniformU32()
		prod := uint64(u) * uint64(x.outcomes)
		unifm := uint32(prod >> 32)
		rem := uint32(prod)
		if rem > x.notRemainder {
			// tail slice: no cheap residual to keep, retry
			atomic.AddUint64(&DefaultSnmp.Retries, 1)
			continue
		}
		lowerBound := uint32((x.inverse * uint64(unifm)) >> 32)
		// the fixed-point product can land up to two below the ceiling
		for uint64(lowerBound)*uint64(x.outcomes) < uint64(unifm)<<32 {
			lowerBound++
		}
		p.Merge(uint64(u-lowerBound), uint64(x.quotient))
		return unifm
	}
}
