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

import (
	"fmt"
	"sync/atomic"
)

// Snmp aggregates process-wide counters across every pool, in the manner of
// kcp-go's DefaultSnmp. All fields are updated atomically.
type Snmp struct {
	WordsDrawn uint64 // 64-bit words pulled from entropy sources
	Retries    uint64 // rejection-loop restarts (pool tail slices, prediv)
	Samples    uint64 // categorical samples produced
	Requests   uint64 // wire requests served
}

func newSnmp() *Snmp {
	return new(Snmp)
}

// Header returns the field names, useful to write CSV headers.
func (s *Snmp) Header() []string {
	return []string{
		"WordsDrawn",
		"BitsDrawn",
		"Retries",
		"Samples",
		"Requests",
	}
}

// ToSlice returns current counter values, in the same order as Header.
func (s *Snmp) ToSlice() []string {
	snmp := s.Copy()
	return []string{
		fmt.Sprint(snmp.WordsDrawn),
		fmt.Sprint(snmp.WordsDrawn * 64),
		fmt.Sprint(snmp.Retries),
		fmt.Sprint(snmp.Samples),
		fmt.Sprint(snmp.Requests),
	}
}

// Copy makes a consistent-enough snapshot of the counters.
func (s *Snmp) Copy() *Snmp {
	d := newSnmp()
	d.WordsDrawn = atomic.LoadUint64(&s.WordsDrawn)
	d.Retries = atomic.LoadUint64(&s.Retries)
	d.Samples = atomic.LoadUint64(&s.Samples)
	d.Requests = atomic.LoadUint64(&s.Requests)
	return d
}

// Reset zeroes all counters.
func (s *Snmp) Reset() {
	atomic.StoreUint64(&s.WordsDrawn, 0)
	atomic.StoreUint64(&s.Retries, 0)
	atomic.StoreUint64(&s.Samples, 0)
	atomic.StoreUint64(&s.Requests, 0)
}

// DefaultSnmp is the global counter block.
var DefaultSnmp *Snmp

func init() {
	DefaultSnmp = newSnmp()
}
