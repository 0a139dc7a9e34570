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

package main

import (
	"bufio"
	"log"
	"os"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"github.com/probsys/randomness-recycling/dice"
	"github.com/probsys/randomness-recycling/recycle"
)

// lookupWarnSum is the weight total past which the flat lookup table gets
// uncomfortably large (its memory is linear in the sum).
const lookupWarnSum = 1 << 24

// VERSION is populated via build flags when packaging official binaries.
var VERSION = "SELFBUILD"

func main() {
	if VERSION == "SELFBUILD" {
		// Enable timestamps + file:line to simplify debugging self-built binaries.
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	myApp := cli.NewApp()
	myApp.Name = "sample"
	myApp.Usage = "exact categorical sampling with randomness recycling"
	myApp.UsageText = "sample [options] <sampler> <num_samples> <w0> [w1 ...]"
	myApp.Version = VERSION
	myApp.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "seed, s",
			Value: "",
			Usage: "seed phrase for a reproducible bit stream; empty uses the OS entropy source",
		},
		cli.BoolFlag{
			Name:  "stats",
			Usage: "print entropy counters to stderr after sampling",
		},
		cli.BoolFlag{
			Name:  "quiet",
			Usage: "suppress warnings",
		},
	}
	myApp.Action = func(c *cli.Context) error {
		if c.NArg() < 3 {
			cli.ShowAppHelp(c)
			log.Printf("samplers: %v", strings.Join(dice.Names(), ", "))
			return errors.New("need <sampler> <num_samples> <w0> [w1 ...]")
		}
		args := c.Args()
		name := args.Get(0)
		count, err := strconv.ParseUint(args.Get(1), 10, 32)
		checkError(err)

		weights := make([]uint32, 0, c.NArg()-2)
		var sum uint64
		for _, arg := range args[2:] {
			w, err := strconv.ParseUint(arg, 10, 32)
			checkError(err)
			weights = append(weights, uint32(w))
			sum += w
		}

		if name == "lookup" && sum >= lookupWarnSum && !c.Bool("quiet") {
			color.Red("Warning: lookup table holds %d entries; consider alias or fldr", sum)
		}

		s, err := dice.New(name, weights)
		checkError(err)

		var src recycle.Entropy
		if seed := c.String("seed"); seed != "" {
			src = recycle.NewSeededEntropy(seed)
		}
		pool := recycle.NewPool(src)

		w := bufio.NewWriter(os.Stdout)
		for i := uint64(0); i < count; i++ {
			if i > 0 {
				w.WriteByte(' ')
			}
			w.WriteString(strconv.FormatUint(uint64(s.Sample(pool)), 10))
		}
		w.WriteByte('\n')
		checkError(w.Flush())
		atomic.AddUint64(&recycle.DefaultSnmp.Samples, count)

		if c.Bool("stats") {
			log.Printf("bits drawn: %d (%.3f per sample)",
				pool.BitsDrawn(), float64(pool.BitsDrawn())/float64(count))
		}
		return nil
	}
	myApp.Run(os.Args)
}

func checkError(err error) {
	if err != nil {
		log.Printf("%+v\n", err)
		os.Exit(-1)
	}
}
