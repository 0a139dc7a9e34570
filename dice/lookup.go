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

import "github.com/probsys/randomness-recycling/recycle"

// Lookup samples with a flat table indexed directly by the uniform draw.
// O(1) per draw, but memory is linear in the weight sum.
type Lookup struct {
	cdf    []uint32
	lookup []uint32 // lookup[j] = i iff cdf[i] <= j < cdf[i+1]
}

// NewLookup builds the CDF and the flat outcome table over it.
func NewLookup(a []uint32) (*Lookup, error) {
	c, err := NewCDF(a)
	if err != nil {
		return nil, err
	}
	cdf := c.cdf
	m := cdf[len(cdf)-1]
	lookup := make([]uint32, m)
	for i := range a {
		for j := cdf[i]; j < cdf[i+1]; j++ {
			lookup[j] = uint32(i)
		}
	}
	return &Lookup{cdf: cdf, lookup: lookup}, nil
}

// Sample indexes the table with u ~ unif[0, m) and recycles u's offset
// within the winning bucket.
func (x *Lookup) Sample(p *recycle.Pool) uint32 {
	u := uint32(p.Uniform(uint64(len(x.lookup))))
	result := x.lookup[u]
	p.Merge(uint64(u-x.cdf[result]), uint64(x.cdf[result+1]-x.cdf[result]))
	return result
}

func (x *Lookup) Outcomes() uint32 { return uint32(len(x.cdf) - 1) }

func (x *Lookup) Bytes() uint32 {
	return uint32(len(x.cdf))*4 + uint32(len(x.lookup))*4 + 8
}
