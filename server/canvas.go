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
	"sync/atomic"

	"github.com/canvastorm/canvastorm/std"
)

const (
	// poolSize is the number of snapshot slots. Power of two; with 16 slots
	// at a 5-second publish cadence a reader has ~75 seconds before the slot
	// it is traversing can be overwritten.
	poolSize = 16

	// broadcastIntervalMs is the master's publish cadence.
	broadcastIntervalMs = 5000

	// fullBroadcastEvery makes every Fth broadcast a full snapshot; the rest
	// are diffs against each worker's last-sent copy.
	fullBroadcastEvery = 10
)

// snapshotSlot holds one published canvas version: the raw copy workers diff
// against and its RLE form for full broadcasts.
type snapshotSlot struct {
	raw           [std.CanvasSize]byte
	compressed    [2 * std.CanvasSize]byte
	compressedLen int
}

// bufferPool is the RCU publication point. The master exclusively owns the
// slot after active; once active advances, that slot belongs to readers until
// the index comes around again. Readers load active and only ever read.
type bufferPool struct {
	slots  [poolSize]snapshotSlot
	active atomic.Uint32
}

func newBufferPool() *bufferPool {
	return new(bufferPool)
}

func (p *bufferPool) activeIndex() uint32 {
	return p.active.Load()
}

func (p *bufferPool) slot(i uint32) *snapshotSlot {
	return &p.slots[i&(poolSize-1)]
}

// publish copies the canvas into the next slot, compresses it, and only then
// advances active. The store is the release that makes both buffers visible
// to workers; nothing may be written to the slot after it.
func (p *bufferPool) publish(c *canvas) uint32 {
	next := (p.active.Load() + 1) & (poolSize - 1)
	s := &p.slots[next]
	copy(s.raw[:], c.pixels)
	s.compressedLen = std.RLEEncode(s.compressed[:], s.raw[:])
	p.active.Store(next)
	return next
}

// canvas is the live pixel grid. The master is its only writer; everyone else
// reads through the buffer pool, or samples live under the seqlock.
type canvas struct {
	pixels []byte
	seq    atomic.Uint64 // odd while a drain batch is being applied
}

func newCanvas() *canvas {
	return &canvas{pixels: make([]byte, std.CanvasSize)}
}

// setPixel stores one pixel. Out-of-range coordinates are a no-op.
func (c *canvas) setPixel(x, y int, color byte) {
	if x < std.CanvasWidth && y < std.CanvasHeight {
		c.pixels[y*std.CanvasWidth+x] = color
	}
}

// beginWrite/endWrite bracket a drain batch. The canvas is byte-wise
// inconsistent in between; live readers sample seq before and after and retry
// on odd or mismatch. Pool consumers never need this.
func (c *canvas) beginWrite() { c.seq.Add(1) }
func (c *canvas) endWrite()   { c.seq.Add(1) }

func (c *canvas) readSeq() uint64 { return c.seq.Load() }

// snapshotToPool copies the live canvas into a specific pool slot without
// compressing or publishing. Master-only.
func (c *canvas) snapshotToPool(p *bufferPool, index uint32) {
	copy(p.slot(index).raw[:], c.pixels)
}

// readConsistent copies the live canvas into dst, retrying until a copy
// completes with no drain batch in progress.
func (c *canvas) readConsistent(dst []byte) {
	for {
		seq := c.readSeq()
		if seq&1 != 0 {
			continue
		}
		copy(dst, c.pixels)
		if c.readSeq() == seq {
			return
		}
	}
}
