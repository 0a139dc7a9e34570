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

	"github.com/pkg/errors"

	"github.com/probsys/randomness-recycling/recycle"
)

// FLDR is the Fast Loaded Dice Roller with its leaves packed to the left:
// the binary tree over the k+1-bit expansions of the weights covers the
// full weight sum, so there is no rejection level at all. One recycled
// uniform mod m supplies the traversal bits.
type FLDR struct {
	breadths []uint32 // leaf count per level, root level first
	leaves   []uint32 // leaf -> outcome, level-major then weight order
	weights  []uint32
	prepared recycle.PreparedUniform
}

// ceilLog2 returns ceil(log2(m)) for m >= 1.
func ceilLog2(m uint32) uint32 {
	k := uint32(32 - bits.LeadingZeros32(m))
	if m&(m-1) == 0 {
		k--
	}
	return k
}

// NewFLDR lays the weights' bit expansions out as a flat tree,
// most significant level first.
func NewFLDR(a []uint32) (*FLDR, error) {
	m, err := sumWeights(a)
	if err != nil {
		return nil, err
	}
	if m > 1<<31 {
		return nil, errors.Errorf("dice: weight sum %d exceeds 2^31", m)
	}
	k := ceilLog2(m)

	numLeaves := 0
	for _, w := range a {
		numLeaves += bits.OnesCount32(w)
	}

	breadths := make([]uint32, k+1)
	leaves := make([]uint32, 0, numLeaves)
	for j := uint32(0); j <= k; j++ {
		bit := uint32(1) << (k - j)
		for i, w := range a {
			if w&bit != 0 {
				leaves = append(leaves, uint32(i))
				breadths[j]++
			}
		}
	}

	weights := make([]uint32, len(a))
	copy(weights, a)

	return &FLDR{
		breadths: breadths,
		leaves:   leaves,
		weights:  weights,
		prepared: recycle.PrepareUniform(m),
	}, nil
}

// Sample walks the flat tree on the bits of one uniform mod m, high bit
// first. On landing, the unused low bits of the draw concatenate with the
// trailing bits of the winner's weight into a single uniform on
// [0, weight), which merges back into the pool.
func (x *FLDR) Sample(p *recycle.Pool) uint32 {
	numFlips := uint32(len(x.breadths) - 1)
	flips := p.Draw(&x.prepared)
	depth, location, val := uint32(0), uint32(0), uint32(0)
	pos := numFlips
	for {
		if val < x.breadths[depth] {
			ans := x.leaves[location+val]
			mask := uint32(1)<<pos - 1
			recycleState := flips & mask
			recycleBound := x.weights[ans]
			recycleState += recycleBound & mask
			p.Merge(uint64(recycleState), uint64(recycleBound))
			return ans
		}
		location += x.breadths[depth]
		pos--
		val = (val-x.breadths[depth])<<1 | (flips>>pos)&1
		depth++
	}
}

func (x *FLDR) Outcomes() uint32 { return uint32(len(x.weights)) }

func (x *FLDR) Bytes() uint32 {
	return uint32(len(x.breadths))*4 + uint32(len(x.leaves))*4 +
		uint32(len(x.weights))*4 + 16 + 12
}
