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
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"runtime"

	"github.com/agilira/lethe"
	"github.com/fatih/color"
	"github.com/urfave/cli"

	"github.com/canvastorm/canvastorm/std"
)

// VERSION is populated via build flags when packaging official binaries.
var VERSION = "SELFBUILD"

func main() {
	if VERSION == "SELFBUILD" {
		// Enable timestamps + file:line to simplify debugging self-built binaries.
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	myApp := cli.NewApp()
	myApp.Name = "canvastorm"
	myApp.Usage = "pixel canvas server (QUIC/DATAGRAM)"
	myApp.Version = VERSION
	myApp.Flags = []cli.Flag{
		cli.IntFlag{
			Name:  "workers,w",
			Value: 0,
			Usage: "number of worker cores, 0 means logical cores minus one",
		},
		cli.IntFlag{
			Name:  "sockbuf",
			Value: 4194304, // socket buffer size in bytes
			Usage: "per-socket buffer in bytes",
		},
		cli.StringFlag{
			Name:  "cert",
			Value: "cert.crt",
			Usage: "TLS certificate path, self-signed and written here if absent",
		},
		cli.StringFlag{
			Name:  "key",
			Value: "key.key",
			Usage: "TLS key path, generated alongside the certificate if absent",
		},
		cli.StringFlag{
			Name:  "log",
			Value: "",
			Usage: "specify a log file to output, default goes to stderr",
		},
		cli.BoolFlag{
			Name:  "quiet",
			Usage: "to suppress the 'conn open/close' messages",
		},
		cli.BoolFlag{
			Name:  "pprof",
			Usage: "start profiling server on :6060",
		},
		cli.StringFlag{
			Name:  "c",
			Value: "", // when set, the JSON file must exist on disk
			Usage: "config from json file, which will override the command from shell",
		},
	}
	myApp.Action = func(c *cli.Context) error {
		config := Config{}
		config.Workers = c.Int("workers")
		config.SockBuf = c.Int("sockbuf")
		config.CertFile = c.String("cert")
		config.KeyFile = c.String("key")
		config.Log = c.String("log")
		config.Quiet = c.Bool("quiet")
		config.Pprof = c.Bool("pprof")

		if c.String("c") != "" {
			// Only JSON configuration files are supported at the moment.
			err := parseJSONConfig(&config, c.String("c"))
			checkError(err)
		}

		// Redirect logs through a rotating writer when a log file is given.
		if config.Log != "" {
			writer, err := lethe.NewWithDefaults(config.Log)
			checkError(err)
			defer writer.Close()
			log.SetOutput(writer)
		}

		numCores := runtime.NumCPU()
		workers := config.Workers
		if workers == 0 {
			workers = numCores - 1
		}
		if workers <= 0 {
			log.Fatal("at least 1 worker is required, use -w to force a count")
		}
		if numCores < 2 && config.Workers == 0 {
			color.Red("WARNING: single core system detected, master and workers will share core 0.")
		}
		if runtime.GOOS != "linux" {
			color.Red("WARNING: no SO_REUSEPORT on this platform, forcing a single worker; flows will not shard.")
			workers = 1
		}

		// Core partition: core 0 master, the rest workers.
		masterCore := 0
		workerCores := make([]int, workers)
		for i := range workerCores {
			workerCores[i] = (i + 1) % numCores
		}

		log.Println("version:", VERSION)
		log.Println("canvas:", std.CanvasWidth, "x", std.CanvasHeight)
		log.Println("port:", std.ServerPort)
		log.Println("sockbuf:", config.SockBuf)
		log.Println("cooldown:", timingWheelTicks, "s")
		log.Println("broadcast interval:", broadcastIntervalMs, "ms, full every", fullBroadcastEvery)
		log.Println("pprof:", config.Pprof)
		log.Println("quiet:", config.Quiet)
		log.Printf("topology: master on core %d, %d workers on cores %v", masterCore, workers, workerCores)

		tlsConf, err := std.ServerTLSConfig(config.CertFile, config.KeyFile)
		checkError(err)

		// Start the pprof server if the feature is enabled.
		if config.Pprof {
			go http.ListenAndServe(":6060", nil)
		}

		clock := NewClock()
		pixels := newCanvas()
		pool := newBufferPool()

		queues := make([]*spscRing, workers)
		for i, coreID := range workerCores {
			queues[i] = newSPSCRing(spscQueueCap)
			w := newWorkerCore(i, config.SockBuf, config.Quiet, queues[i], pool, clock)
			go w.run(coreID, tlsConf)
		}

		// The master loop owns the main goroutine and never returns.
		master := newMasterCore(queues, pixels, pool, clock)
		master.run(masterCore)
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
