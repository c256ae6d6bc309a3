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
	"runtime"
)

// drainBatch caps how many writes the master takes from one worker per pass,
// bounding the window where the seqlock holds the canvas inconsistent.
const drainBatch = 128

// masterCore is the single writer of the canvas. It drains every worker's
// ring round-robin and publishes snapshots on the broadcast cadence.
type masterCore struct {
	workers []*spscRing
	canvas  *canvas
	pool    *bufferPool
	clock   *Clock
}

func newMasterCore(workers []*spscRing, canvas *canvas, pool *bufferPool, clock *Clock) *masterCore {
	return &masterCore{workers: workers, canvas: canvas, pool: pool, clock: clock}
}

// run spins on its dedicated core. The master never blocks: a syscall in this
// loop would put its latency on every pixel's path.
func (m *masterCore) run(coreID int) {
	runtime.LockOSThread()
	if err := pinToCore(coreID); err != nil {
		log.Println("master affinity:", err)
	}
	log.Println("master loop running on core", coreID)

	lastPublish := m.clock.NowMs()
	for {
		m.canvas.beginWrite()
		for _, q := range m.workers {
			for i := 0; i < drainBatch; i++ {
				pw, ok := q.pop()
				if !ok {
					break
				}
				m.canvas.setPixel(int(pw.X), int(pw.Y), pw.Color)
			}
		}
		m.canvas.endWrite()

		if now := m.clock.NowMs(); now-lastPublish >= broadcastIntervalMs {
			m.pool.publish(m.canvas)
			lastPublish = now
		}

		runtime.Gosched()
	}
}
