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

// Package dice implements exact categorical samplers over nonnegative
// integer weights. Every sampler draws Pr[X=i] = a[i]/sum(a) with no
// floating point involved, and feeds its residual randomness back into the
// recycle.Pool it samples from.
package dice

import (
	"math"
	"sort"

	"github.com/pkg/errors"

	"github.com/probsys/randomness-recycling/recycle"
)

// Sampler is a preprocessed categorical distribution. Preprocessing happens
// once in the constructor; Sample may be called any number of times after.
// Samplers are immutable and safe to share, the Pool is not.
type Sampler interface {
	// Sample draws one index in [0, Outcomes()) from the pool.
	Sample(p *recycle.Pool) uint32
	// Outcomes reports the number of categories.
	Outcomes() uint32
	// Bytes reports the heap footprint of the preprocessed tables.
	Bytes() uint32
}

// makers maps sampler names to their constructors, the same way cipher
// names map to constructors elsewhere in this project's binaries.
var makers = map[string]func(a []uint32) (Sampler, error){
	"uniform": func(a []uint32) (Sampler, error) { return NewUniform(a) },
	"cdf":     func(a []uint32) (Sampler, error) { return NewCDF(a) },
	"lookup":  func(a []uint32) (Sampler, error) { return NewLookup(a) },
	"alias":   func(a []uint32) (Sampler, error) { return NewAliasEO(a) },
	"fldr":    func(a []uint32) (Sampler, error) { return NewFLDR(a) },
	"aldr":    func(a []uint32) (Sampler, error) { return NewALDR(a) },
}

// New builds the named sampler over the given weights.
func New(name string, a []uint32) (Sampler, error) {
	if mk, ok := makers[name]; ok {
		return mk(a)
	}
	return nil, errors.Errorf("dice: unknown sampler %q", name)
}

// Names lists the samplers New accepts, sorted.
func Names() []string {
	names := make([]string, 0, len(makers))
	for name := range makers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// sumWeights validates the common contract shared by all samplers and
// returns the weight total.
func sumWeights(a []uint32) (uint32, error) {
	if len(a) == 0 {
		return 0, errors.New("dice: empty weights")
	}
	var m uint64
	for _, w := range a {
		m += uint64(w)
	}
	if m == 0 {
		return 0, errors.New("dice: weight sum is zero")
	}
	if m > math.MaxUint32 {
		return 0, errors.Errorf("dice: weight sum %d exceeds 32 bits", m)
	}
	return uint32(m), nil
}

// Uniform is the degenerate sampler over n equally likely outcomes. Only
// the first weight is consulted; it gives the number of outcomes.
type Uniform struct {
	n uint32
}

// NewUniform builds a uniform sampler over a[0] outcomes.
func NewUniform(a []uint32) (*Uniform, error) {
	if len(a) == 0 || a[0] == 0 {
		return nil, errors.New("dice: uniform needs a positive outcome count")
	}
	return &Uniform{n: a[0]}, nil
}

func (x *Uniform) Sample(p *recycle.Pool) uint32 {
	return uint32(p.Uniform(uint64(x.n)))
}

func (x *Uniform) Outcomes() uint32 { return x.n }

func (x *Uniform) Bytes() uint32 { return 4 }
