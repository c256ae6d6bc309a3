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
	"net"
	"time"

	"github.com/quic-go/quic-go"
)

// appErrServerFull is sent when a worker has no free user slot left; the peer
// is simply dropped, there is no retry protocol.
const appErrServerFull quic.ApplicationErrorCode = 0x101

// datagramConn is the slice of a QUIC connection the data plane touches.
// quic.Connection satisfies it; tests substitute fakes.
type datagramConn interface {
	SendDatagram(payload []byte) error
	ReceiveDatagram(ctx context.Context) ([]byte, error)
	CloseWithError(code quic.ApplicationErrorCode, desc string) error
	Context() context.Context
	RemoteAddr() net.Addr
}

// connTable is a worker's connection registry: user-id slots handed out from
// a free list, recycled when the QUIC stack reports the connection closed.
// Owned by exactly one worker goroutine; never shared.
type connTable struct {
	conns    map[uint32]datagramConn
	freeIDs  []uint32
	cooldown *cooldownBitset
}

func newConnTable(capacity int, cooldown *cooldownBitset) *connTable {
	free := make([]uint32, capacity)
	// filled descending so ids are handed out starting at 0
	for i := range free {
		free[i] = uint32(capacity - 1 - i)
	}
	return &connTable{
		conns:    make(map[uint32]datagramConn, capacity),
		freeIDs:  free,
		cooldown: cooldown,
	}
}

// admit assigns a user id to conn. When the free list is exhausted the
// connection is closed immediately and false returned.
func (t *connTable) admit(conn datagramConn) (uint32, bool) {
	n := len(t.freeIDs)
	if n == 0 {
		conn.CloseWithError(appErrServerFull, "")
		return 0, false
	}
	id := t.freeIDs[n-1]
	t.freeIDs = t.freeIDs[:n-1]
	t.conns[id] = conn
	return id, true
}

// release returns id to the free list and clears its cooldown bit so the next
// owner starts clean. The timing wheel slot that still holds id is left as is:
// when it expires it clears the bit again, which ends the next owner's
// cooldown early if that owner has written in the meantime.
func (t *connTable) release(id uint32) {
	if _, ok := t.conns[id]; !ok {
		return
	}
	delete(t.conns, id)
	t.cooldown.clearCooldown(id)
	t.freeIDs = append(t.freeIDs, id)
}

// sweep removes every connection whose QUIC context has ended and returns the
// recycled ids. Callers throttle this; it walks the whole table.
func (t *connTable) sweep() []uint32 {
	var closed []uint32
	for id, c := range t.conns {
		if c.Context().Err() != nil {
			closed = append(closed, id)
		}
	}
	for _, id := range closed {
		t.release(id)
	}
	return closed
}

func (t *connTable) size() int {
	return len(t.conns)
}

// quicConfig mirrors the transport limits the service has always run with.
func quicConfig() *quic.Config {
	return &quic.Config{
		EnableDatagrams:                true,
		MaxIdleTimeout:                 10 * time.Minute,
		InitialConnectionReceiveWindow: 10_000_000,
		InitialStreamReceiveWindow:     1_000_000,
		MaxIncomingStreams:             100,
		MaxIncomingUniStreams:          100,
	}
}
