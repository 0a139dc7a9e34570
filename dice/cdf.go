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

// CDF samples by binary search over the cumulative weight table.
// O(log n) per draw, O(n) memory.
type CDF struct {
	cdf []uint32 // cdf[0]=0, cdf[i+1]=cdf[i]+a[i], cdf[n]=m
}

// NewCDF prefix-sums the weights into a cumulative table.
func NewCDF(a []uint32) (*CDF, error) {
	if _, err := sumWeights(a); err != nil {
		return nil, err
	}
	cdf := make([]uint32, len(a)+1)
	for i, w := range a {
		cdf[i+1] = cdf[i] + w
	}
	return &CDF{cdf: cdf}, nil
}

// Sample draws u ~ unif[0, m), upper-bound-searches the table for the
// bucket containing u, and recycles u's position within the bucket.
func (x *CDF) Sample(p *recycle.Pool) uint32 {
	u := uint32(p.Uniform(uint64(x.cdf[len(x.cdf)-1])))
	low, high := uint32(1), uint32(len(x.cdf)-1)
	for low < high {
		mid := (low + high) / 2
		if x.cdf[mid] <= u {
			low = mid + 1
		} else {
			high = mid
		}
	}
	p.Merge(uint64(u-x.cdf[low-1]), uint64(x.cdf[low]-x.cdf[low-1]))
	return low - 1
}

func (x *CDF) Outcomes() uint32 { return uint32(len(x.cdf) - 1) }

func (x *CDF) Bytes() uint32 {
	return uint32(len(x.cdf))*4 + 4
}
