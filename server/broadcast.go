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

import "github.com/canvastorm/canvastorm/std"

// broadcaster is a worker's view of the buffer pool: which snapshot it last
// fanned out, and the raw copy its diffs are computed against. One per
// worker, never shared.
type broadcaster struct {
	pool      *bufferPool
	lastIndex uint32
	count     uint64
	lastSent  []byte // raw canvas as of the last payload sent
	diffBuf   []byte // scratch for diff records, reused every round
}

func newBroadcaster(pool *bufferPool) *broadcaster {
	return &broadcaster{
		pool:      pool,
		lastIndex: pool.activeIndex(),
		lastSent:  make([]byte, std.CanvasSize),
	}
}

// poll checks for a new publication. It returns nil when the active index has
// not moved. The very first payload and every fullBroadcastEvery-th one is
// the full compressed snapshot; in between it is a stream of diff records
// against lastSent, which is patched in place as the records are produced.
//
// The returned slice aliases either the pool slot or the scratch buffer and
// is only valid until the next poll.
func (b *broadcaster) poll() (payload []byte, full bool) {
	index := b.pool.activeIndex()
	if index == b.lastIndex {
		return nil, false
	}
	b.lastIndex = index
	b.count++

	s := b.pool.slot(index)
	if b.count == 1 || b.count%fullBroadcastEvery == 0 {
		copy(b.lastSent, s.raw[:])
		return s.compressed[:s.compressedLen], true
	}

	b.diffBuf = b.diffBuf[:0]
	for i := 0; i < std.CanvasSize; i++ {
		if v := s.raw[i]; v != b.lastSent[i] {
			b.diffBuf = std.AppendDiffRecord(b.diffBuf, uint32(i), v)
			b.lastSent[i] = v
		}
	}
	return b.diffBuf, false
}

// forEachChunk slices payload into datagram-sized chunks, rounded down to a
// whole number of records so no record ever straddles two datagrams.
func forEachChunk(payload []byte, recordSize int, fn func(chunk []byte)) {
	max := (std.BroadcastChunkSize / recordSize) * recordSize
	for len(payload) > 0 {
		n := len(payload)
		if n > max {
			n = max
		}
		fn(payload[:n])
		payload = payload[n:]
	}
}
