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
	"fmt"
	"io"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"strconv"
	"sync/atomic"

	"github.com/fatih/color"
	"github.com/urfave/cli"
	"github.com/xtaci/smux"

	"github.com/probsys/randomness-recycling/dice"
	"github.com/probsys/randomness-recycling/recycle"
	"github.com/probsys/randomness-recycling/std"
)

// VERSION is populated via build flags when packaging official binaries.
var VERSION = "SELFBUILD"

func main() {
	if VERSION == "SELFBUILD" {
		// Enable timestamps + file:line to simplify debugging self-built binaries.
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	myApp := cli.NewApp()
	myApp.Name = "sampled"
	myApp.Usage = "sample streaming server (with SMUX)"
	myApp.Version = VERSION
	myApp.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "listen,l",
			Value: ":29901",
			Usage: `server listen address, eg: "IP:29901"`,
		},
		cli.StringFlag{
			Name:   "key",
			Value:  "it's a secrect",
			Usage:  "pre-shared secret between client and server",
			EnvVar: "SAMPLED_KEY",
		},
		cli.StringFlag{
			Name:  "crypt",
			Value: "aes",
			Usage: "aes, aes-128, aes-192, aes-128-gcm, salsa20, blowfish, twofish, xor, none, null",
		},
		cli.StringFlag{
			Name:  "seed",
			Value: "",
			Usage: "seed phrase for reproducible per-stream bit sources; empty uses the OS entropy source",
		},
		cli.IntFlag{
			Name:  "mtu",
			Value: 1350,
			Usage: "set maximum transmission unit for UDP packets",
		},
		cli.IntFlag{
			Name:  "sndwnd",
			Value: 1024,
			Usage: "set send window size(num of packets)",
		},
		cli.IntFlag{
			Name:  "rcvwnd",
			Value: 1024,
			Usage: "set receive window size(num of packets)",
		},
		cli.IntFlag{
			Name:  "datashard,ds",
			Value: 10,
			Usage: "set reed-solomon erasure coding - datashard",
		},
		cli.IntFlag{
			Name:  "parityshard,ps",
			Value: 3,
			Usage: "set reed-solomon erasure coding - parityshard",
		},
		cli.IntFlag{
			Name:  "dscp",
			Value: 0,
			Usage: "set DSCP(6bit)",
		},
		cli.BoolFlag{
			Name:  "nocomp",
			Usage: "disable snappy compression",
		},
		cli.IntFlag{
			Name:  "sockbuf",
			Value: 4194304,
			Usage: "per-socket buffer in bytes",
		},
		cli.IntFlag{
			Name:  "smuxver",
			Value: 1,
			Usage: "specify smux version, available 1,2",
		},
		cli.IntFlag{
			Name:  "smuxbuf",
			Value: 4194304,
			Usage: "the overall de-mux buffer in bytes",
		},
		cli.IntFlag{
			Name:  "streambuf",
			Value: 2097152,
			Usage: "per stream receive buffer in bytes, smux v2+",
		},
		cli.IntFlag{
			Name:  "keepalive",
			Value: 10,
			Usage: "seconds between heartbeats",
		},
		cli.StringFlag{
			Name:  "snmplog",
			Value: "",
			Usage: "collect counters to file, aware of timeformat in golang, like: ./snmp-20060102.log",
		},
		cli.IntFlag{
			Name:  "snmpperiod",
			Value: 60,
			Usage: "counter collect period, in seconds",
		},
		cli.StringFlag{
			Name:  "log",
			Value: "",
			Usage: "specify a log file to output, default goes to stderr",
		},
		cli.BoolFlag{
			Name:  "pprof",
			Usage: "start profiling server on :6060",
		},
		cli.BoolFlag{
			Name:  "quiet",
			Usage: "to suppress the 'stream open/close' messages",
		},
		cli.BoolFlag{
			Name:  "tcp",
			Usage: "to emulate a TCP connection(linux)",
		},
		cli.StringFlag{
			Name:  "c",
			Value: "", // when the value is not empty, the config path must exists
			Usage: "config from json file, which will override the command from shell",
		},
	}
	myApp.Action = func(c *cli.Context) error {
		config := Config{}
		config.Listen = c.String("listen")
		config.Key = c.String("key")
		config.Crypt = c.String("crypt")
		config.Seed = c.String("seed")
		config.MTU = c.Int("mtu")
		config.SndWnd = c.Int("sndwnd")
		config.RcvWnd = c.Int("rcvwnd")
		config.DataShard = c.Int("datashard")
		config.ParityShard = c.Int("parityshard")
		config.DSCP = c.Int("dscp")
		config.NoComp = c.Bool("nocomp")
		config.SockBuf = c.Int("sockbuf")
		config.SmuxVer = c.Int("smuxver")
		config.SmuxBuf = c.Int("smuxbuf")
		config.StreamBuf = c.Int("streambuf")
		config.KeepAlive = c.Int("keepalive")
		config.Log = c.String("log")
		config.SnmpLog = c.String("snmplog")
		config.SnmpPeriod = c.Int("snmpperiod")
		config.Pprof = c.Bool("pprof")
		config.Quiet = c.Bool("quiet")
		config.TCP = c.Bool("tcp")

		if c.String("c") != "" {
			//Now only support json config file
			err := parseJSONConfig(&config, c.String("c"))
			checkError(err)
		}

		// log redirect
		if config.Log != "" {
			f, err := os.OpenFile(config.Log, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0666)
			checkError(err)
			defer f.Close()
			log.SetOutput(f)
		}

		log.Println("version:", VERSION)
		log.Println("smux version:", config.SmuxVer)
		log.Println("listening on:", config.Listen)
		log.Println("sampling:", "seeded entropy:", config.Seed != "")

		if config.Seed != "" && !config.Quiet {
			color.Red("Warning: seeded entropy replays the identical bit stream on every stream; use for testing only")
		}

		block, method := std.DeriveBlockCrypt(config.Crypt, config.Key)
		log.Println("encryption:", method)

		smuxConfig, err := std.BuildSmuxConfig(config.SmuxVer, config.SmuxBuf, config.StreamBuf, config.KeepAlive)
		checkError(err)

		go std.SnmpLogger(config.SnmpLog, config.SnmpPeriod)
		if config.Pprof {
			go http.ListenAndServe(":6060", nil)
		}

		lis, err := listen(&config, block)
		checkError(err)

		if err := lis.SetDSCP(config.DSCP); err != nil {
			log.Println("SetDSCP:", err)
		}
		if err := lis.SetReadBuffer(config.SockBuf); err != nil {
			log.Println("SetReadBuffer:", err)
		}
		if err := lis.SetWriteBuffer(config.SockBuf); err != nil {
			log.Println("SetWriteBuffer:", err)
		}

		for {
			if conn, err := lis.AcceptKCP(); err == nil {
				log.Println("remote address:", conn.RemoteAddr())
				conn.SetStreamMode(true)
				conn.SetWriteDelay(false)
				conn.SetMtu(config.MTU)
				conn.SetWindowSize(config.SndWnd, config.RcvWnd)

				if config.NoComp {
					go handleMux(conn, &config, smuxConfig)
				} else {
					go handleMux(std.NewCompStream(conn), &config, smuxConfig)
				}
			} else {
				log.Printf("%+v", err)
			}
		}
	}
	myApp.Run(os.Args)
}

// handleMux terminates a KCP session and answers sampling requests on every
// smux stream it carries.
func handleMux(conn io.ReadWriteCloser, config *Config, smuxConfig *smux.Config) {
	mux, err := smux.Server(conn, smuxConfig)
	if err != nil {
		log.Println(err)
		return
	}
	defer mux.Close()

	for {
		stream, err := mux.AcceptStream()
		if err != nil {
			log.Println(err)
			return
		}
		go func(stream *smux.Stream) {
			defer stream.Close()
			if !config.Quiet {
				log.Println("stream opened", "in:", fmt.Sprint(stream.RemoteAddr(), "(", stream.ID(), ")"))
				defer log.Println("stream closed", "in:", fmt.Sprint(stream.RemoteAddr(), "(", stream.ID(), ")"))
			}
			if err := serveStream(stream, config.Seed); err != nil {
				log.Printf("%+v", err)
			}
		}(stream)
	}
}

// serveStream reads one request line and streams the samples back. Every
// stream samples from its own pool, so concurrent requests never share
// recycling state.
func serveStream(stream io.ReadWriter, seed string) error {
	br := bufio.NewReader(stream)
	line, err := br.ReadString('\n')
	if err != nil {
		return err
	}
	req, err := std.ParseRequest(line)
	if err != nil {
		fmt.Fprintf(stream, "error: %v\n", err)
		return nil
	}
	s, err := dice.New(req.Sampler, req.Weights)
	if err != nil {
		fmt.Fprintf(stream, "error: %v\n", err)
		return nil
	}

	var src recycle.Entropy
	if seed != "" {
		src = recycle.NewSeededEntropy(seed)
	}
	pool := recycle.NewPool(src)

	w := bufio.NewWriter(stream)
	for i := uint32(0); i < req.Count; i++ {
		if i > 0 {
			w.WriteByte(' ')
		}
		w.WriteString(strconv.FormatUint(uint64(s.Sample(pool)), 10))
	}
	w.WriteByte('\n')
	if err := w.Flush(); err != nil {
		return err
	}

	atomic.AddUint64(&recycle.DefaultSnmp.Samples, uint64(req.Count))
	atomic.AddUint64(&recycle.DefaultSnmp.Requests, 1)
	return nil
}

func checkError(err error) {
	if err != nil {
		log.Printf("%+v\n", err)
		os.Exit(-1)
	}
}
