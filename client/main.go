// The MIT License (MIT)
//
// # Copyright (c) 2025 canvastorm
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
	"context"
	"crypto/tls"
	"log"
	"math/rand"
	"net"
	"net/http"
	_ "net/http/pprof"
	"os"
	"time"

	"github.com/agilira/lethe"
	"github.com/pkg/errors"
	"github.com/quic-go/quic-go"
	"github.com/urfave/cli"

	"github.com/canvastorm/canvastorm/std"
)

// VERSION is populated via build flags when packaging official binaries.
var VERSION = "SELFBUILD"

func main() {
	if VERSION == "SELFBUILD" {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	myApp := cli.NewApp()
	myApp.Name = "canvastorm-flood"
	myApp.Usage = "synthetic load client"
	myApp.Version = VERSION
	myApp.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "target,t",
			Value: "127.0.0.1:4433",
			Usage: "canvas server address",
		},
		cli.IntFlag{
			Name:  "clients,n",
			Value: 100,
			Usage: "number of concurrent connections to ramp up",
		},
		cli.StringFlag{
			Name:  "id",
			Value: "loadgen",
			Usage: "worker id, used to name the metrics file",
		},
		cli.IntFlag{
			Name:  "rampup",
			Value: 120,
			Usage: "seconds over which handshakes are staggered",
		},
		cli.IntFlag{
			Name:  "interval",
			Value: 300,
			Usage: "mean seconds between pixel writes per client",
		},
		cli.StringFlag{
			Name:  "metrics",
			Value: "",
			Usage: "metrics CSV path, defaults to <id>_data.csv",
		},
		cli.StringFlag{
			Name:  "log",
			Value: "",
			Usage: "specify a log file to output, default goes to stderr",
		},
		cli.BoolFlag{
			Name:  "pprof",
			Usage: "start profiling server on :6061",
		},
	}
	myApp.Action = func(c *cli.Context) error {
		target := c.String("target")
		clients := c.Int("clients")
		id := c.String("id")
		rampup := c.Int("rampup")
		interval := c.Int("interval")
		metricsPath := c.String("metrics")
		if metricsPath == "" {
			metricsPath = id + "_data.csv"
		}

		if c.String("log") != "" {
			writer, err := lethe.NewWithDefaults(c.String("log"))
			checkError(err)
			defer writer.Close()
			log.SetOutput(writer)
		}
		if c.Bool("pprof") {
			go http.ListenAndServe(":6061", nil)
		}

		raddr, err := net.ResolveUDPAddr("udp4", target)
		checkError(errors.Wrap(err, "resolve target"))

		// one shared socket and transport for the whole fleet
		udpConn, err := net.ListenUDP("udp4", &net.UDPAddr{})
		checkError(errors.Wrap(err, "bind"))
		tr := &quic.Transport{Conn: udpConn}

		tlsConf := std.ClientTLSConfig()
		quicConf := &quic.Config{
			EnableDatagrams: true,
			MaxIdleTimeout:  10 * time.Minute,
			KeepAlivePeriod: 15 * time.Second,
		}

		metrics := &std.LoadMetrics{}
		go std.MetricsLogger(metrics, metricsPath, 1)

		log.Printf("worker %s ramping up %d clients against %v over %ds", id, clients, raddr, rampup)

		for i := 0; i < clients; i++ {
			go func() {
				// stagger handshakes so the server isn't hit by a thundering herd
				if rampup > 0 {
					time.Sleep(time.Duration(rand.Int63n(int64(rampup) * int64(time.Second))))
				}
				simulateUser(tr, raddr, tlsConf, quicConf, interval, metrics)
			}()
		}

		select {} // run until killed
	}
	myApp.Run(os.Args)
}

// simulateUser holds one connection open, drains broadcasts and submits a
// random pixel write once per cooldown-sized period.
func simulateUser(tr *quic.Transport, raddr net.Addr, tlsConf *tls.Config, quicConf *quic.Config, interval int, metrics *std.LoadMetrics) {
	conn, err := tr.Dial(context.Background(), raddr, tlsConf, quicConf)
	if err != nil {
		metrics.Failed.Add(1)
		return
	}
	metrics.Active.Add(1)

	go func() {
		ctx := conn.Context()
		for {
			payload, err := conn.ReceiveDatagram(ctx)
			if err != nil {
				return
			}
			metrics.RxDatagrams.Add(1)
			metrics.RxBytes.Add(uint64(len(payload)))
		}
	}()

	buf := make([]byte, 0, std.PixelDatagramSize)
	for {
		// jitter the period ±7% so writes don't synchronize across clients
		jitter := 1.0 + (rand.Float64()-0.5)*0.14
		time.Sleep(time.Duration(float64(interval) * jitter * float64(time.Second)))

		w := std.PixelWrite{
			X:     uint16(rand.Intn(std.CanvasWidth)),
			Y:     uint16(rand.Intn(std.CanvasHeight)),
			Color: uint8(rand.Intn(256)),
		}
		buf = std.AppendPixelDatagram(buf[:0], w)
		if conn.SendDatagram(buf) == nil {
			metrics.TxPixels.Add(1)
		}
		if conn.Context().Err() != nil {
			return
		}
	}
}

func checkError(err error) {
	if err != nil {
		log.Printf("%+v\n", err)
		os.Exit(-1)
	}
}
