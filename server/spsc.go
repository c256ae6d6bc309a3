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

// spscQueueCap bounds the pixel writes a worker can have in flight toward the
// master. Power of two; overflow drops, the next broadcast resyncs clients.
const spscQueueCap = 1024

// pad keeps the two cursors on separate cache lines.
type pad [64]byte

// spscRing is a bounded single-producer single-consumer queue of pixel
// writes. The owning worker is the only pusher, the master the only popper;
// violating that voids all ordering guarantees.
//
// Cursors run free and wrap; slot selection masks them, so the queue stays
// correct across counter overflow. Each side keeps a cached view of the
// opposing cursor and only touches the shared atomic when that view runs dry,
// keeping cross-core traffic off the common path.
type spscRing struct {
	_          pad
	head       atomic.Uint64 // consumer cursor, advanced by the master
	_          pad
	cachedTail uint64 // consumer's view of tail
	_          pad
	tail       atomic.Uint64 // producer cursor, advanced by the worker
	_          pad
	cachedHead uint64 // producer's view of head
	_          pad
	buf        []std.PixelWrite
	mask       uint64
}

func newSPSCRing(capacity int) *spscRing {
	if capacity < 2 || capacity&(capacity-1) != 0 {
		panic("spsc capacity must be a power of two >= 2")
	}
	return &spscRing{
		buf:  make([]std.PixelWrite, capacity),
		mask: uint64(capacity - 1),
	}
}

// push enqueues one write. It reports false when the ring is full; the write
// is dropped, never blocked on.
func (q *spscRing) push(w std.PixelWrite) bool {
	tail := q.tail.Load()
	if tail-q.cachedHead > q.mask {
		q.cachedHead = q.head.Load()
		if tail-q.cachedHead > q.mask {
			return false
		}
	}
	q.buf[tail&q.mask] = w
	q.tail.Store(tail + 1)
	return true
}

// pop dequeues one write, reporting false when the ring is empty.
func (q *spscRing) pop() (std.PixelWrite, bool) {
	head := q.head.Load()
	if head == q.cachedTail {
		q.cachedTail = q.tail.Load()
		if head == q.cachedTail {
			return std.PixelWrite{}, false
		}
	}
	w := q.buf[head&q.mask]
	q.head.Store(head + 1)
	return w, true
}

func (q *spscRing) cap() int {
	return len(q.buf)
}
