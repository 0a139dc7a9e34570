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
	"math/bits"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/probsys/randomness-recycling/recycle"
)

// ALDR is the Amplified Loaded Dice Roller: FLDR over weights scaled by
// c = floor(2^2k / m), which squeezes the rejection slice down to
// r = 2^2k mod m out of 2^2k. The uniform trapped in a rejected draw is
// merged back into the pool before retrying, so even rejection costs only
// the accept/reject information itself.
type ALDR struct {
	breadths []uint32
	leaves   []uint32
	weights  []uint64 // amplified weights Q[i] = c*a[i], recycle bounds
	reject   uint64   // 2^2k mod m, total weight of the rejection slice
}

// NewALDR amplifies the weights and lays out the flat tree over their
// 2k+1-bit expansions. Requires the weight sum below 2^31 so the doubled
// exponent stays within 63 bits.
func NewALDR(a []uint32) (*ALDR, error) {
	m, err := sumWeights(a)
	if err != nil {
		return nil, err
	}
	if m >= 1<<31 {
		return nil, errors.Errorf("dice: weight sum %d exceeds 2^31-1", m)
	}
	k := ceilLog2(m)
	bigK := 2 * k
	c := (uint64(1) << bigK) / uint64(m)
	r := (uint64(1) << bigK) % uint64(m)

	amplified := make([]uint64, len(a))
	numLeaves := 0
	for i, w := range a {
		amplified[i] = c * uint64(w)
		numLeaves += bits.OnesCount64(amplified[i])
	}

	breadths := make([]uint32, bigK+1)
	leaves := make([]uint32, 0, numLeaves)
	for j := uint32(0); j <= bigK; j++ {
		bit := uint64(1) << (bigK - j)
		for i := range amplified {
			if amplified[i]&bit != 0 {
				leaves = append(leaves, uint32(i))
				breadths[j]++
			}
		}
	}

	return &ALDR{
		breadths: breadths,
		leaves:   leaves,
		weights:  amplified,
		reject:   r,
	}, nil
}

// Sample draws 2k recycled fair bits. Draws landing in the top slice of
// width reject merge their in-slice position back and restart; the rest
// walk the tree as in FLDR, recycling against the amplified weight of the
// winner.
func (x *ALDR) Sample(p *recycle.Pool) uint32 {
	numFlips := uint32(len(x.breadths) - 1)
	full := uint64(1) << numFlips
	for {
		flips := p.FlipNFromUnif(numFlips)
		if flips >= full-x.reject {
			p.Merge(flips-(full-x.reject), x.reject)
			atomic.AddUint64(&recycle.DefaultSnmp.Retries, 1)
			continue
		}
		depth, location, val := uint32(0), uint32(0), uint32(0)
		pos := numFlips
		for {
			if val < x.breadths[depth] {
				ans := x.leaves[location+val]
				mask := uint64(1)<<pos - 1
				recycleState := flips & mask
				recycleBound := x.weights[ans]
				recycleState += recycleBound & mask
				p.Merge(recycleState, recycleBound)
				return ans
			}
			location += x.breadths[depth]
			pos--
			val = (val-x.breadths[depth])<<1 | uint32(flips>>pos)&1
			depth++
		}
	}
}

func (x *ALDR) Outcomes() uint32 { return uint32(len(x.weights)) }

func (x *ALDR) Bytes() uint32 {
	return uint32(len(x.breadths))*4 + uint32(len(x.leaves))*4 +
		uint32(len(x.weights))*8 + 16
}
