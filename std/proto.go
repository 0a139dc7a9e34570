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

package std

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// maxRequestWeights caps how many weights a single request may carry; it
// bounds server-side preprocessing memory per stream.
const maxRequestWeights = 1 << 20

// Request is one sampling order on the wire: a single text line of the form
//
//	<sampler> <num_samples> <w0> [w1 ...]
//
// mirroring the local CLI's argument order.
type Request struct {
	Sampler string
	Count   uint32
	Weights []uint32
}

// ParseRequest decodes a request line. It validates shape only; whether the
// weights are acceptable is the sampler constructor's call.
func ParseRequest(line string) (*Request, error) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return nil, errors.Errorf("malformed request:%v", line)
	}
	count, err := strconv.ParseUint(fields[1], 10, 32)
	if err != nil {
		return nil, errors.Wrapf(err, "bad sample count:%v", fields[1])
	}
	if len(fields)-2 > maxRequestWeights {
		return nil, errors.Errorf("too many weights:%v", len(fields)-2)
	}
	weights := make([]uint32, 0, len(fields)-2)
	for _, f := range fields[2:] {
		w, err := strconv.ParseUint(f, 10, 32)
		if err != nil {
			return nil, errors.Wrapf(err, "bad weight:%v", f)
		}
		weights = append(weights, uint32(w))
	}
	return &Request{Sampler: fields[0], Count: uint32(count), Weights: weights}, nil
}

// Encode renders the request as its wire line, newline included.
func (r *Request) Encode() string {
	var sb strings.Builder
	sb.WriteString(r.Sampler)
	sb.WriteByte(' ')
	sb.WriteString(strconv.FormatUint(uint64(r.Count), 10))
	for _, w := range r.Weights {
		sb.WriteByte(' ')
		sb.WriteString(strconv.FormatUint(uint64(w), 10))
	}
	sb.WriteByte('\n')
	return sb.String()
}
