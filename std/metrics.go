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

package std

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"
)

// Counter is a cache-line-padded counter so hot-path increments from
// different goroutines don't false-share.
type Counter struct {
	v atomic.Uint64
	_ [56]byte
}

// Add increments the counter by n.
func (c *Counter) Add(n uint64) { c.v.Add(n) }

// Load returns the current value.
func (c *Counter) Load() uint64 { return c.v.Load() }

// LoadMetrics aggregates the flood client's counters.
type LoadMetrics struct {
	Active      Counter // established connections
	Failed      Counter // handshakes that never completed
	TxPixels    Counter // pixel writes sent
	RxDatagrams Counter // broadcast datagrams received
	RxBytes     Counter // broadcast bytes received
}

// MetricsLogger appends one CSV row per interval to path until the process
// exits. The filename part of path is passed through time.Format, so dated
// files like "./load-20060102.csv" work. A zero interval or empty path
// disables logging.
func MetricsLogger(m *LoadMetrics, path string, interval int) {
	if path == "" || interval == 0 {
		return
	}
	ticker := time.NewTicker(time.Duration(interval) * time.Second)
	defer ticker.Stop()

	var lastDatagrams, lastBytes uint64
	for range ticker.C {
		logdir, logfile := filepath.Split(path)
		f, err := os.OpenFile(logdir+time.Now().Format(logfile), os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			log.Println(err)
			return
		}
		w := csv.NewWriter(f)
		// write header in empty file
		if stat, err := f.Stat(); err == nil && stat.Size() == 0 {
			if err := w.Write([]string{"Unix", "Active", "Failed", "TxPixels", "RxDatagramsPerSec", "RxMbps"}); err != nil {
				log.Println(err)
			}
		}

		datagrams := m.RxDatagrams.Load()
		bytes := m.RxBytes.Load()
		dps := (datagrams - lastDatagrams) / uint64(interval)
		mbps := float64(bytes-lastBytes) * 8.0 / 1e6 / float64(interval)
		lastDatagrams, lastBytes = datagrams, bytes

		row := []string{
			fmt.Sprint(time.Now().Unix()),
			fmt.Sprint(m.Active.Load()),
			fmt.Sprint(m.Failed.Load()),
			fmt.Sprint(m.TxPixels.Load()),
			fmt.Sprint(dps),
			fmt.Sprintf("%.3f", mbps),
		}
		if err := w.Write(row); err != nil {
			log.Println(err)
		}
		w.Flush()
		f.Close()
	}
}
