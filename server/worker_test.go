package main

import (
	"testing"

	"github.com/canvastorm/canvastorm/std"
)

func newTestWorker() *workerCore {
	pool := newBufferPool()
	queue := newSPSCRing(spscQueueCap)
	return newWorkerCore(0, 4194304, true, queue, pool, nil)
}

func TestHandleWriteEnforcesCooldown(t *testing.T) {
	w := newTestWorker()

	write := inboundWrite{userID: 7, pw: std.PixelWrite{X: 100, Y: 200, Color: 255}}
	w.handleWrite(write)
	w.handleWrite(write) // same user inside the cooldown window

	if v, ok := w.masterQueue.pop(); !ok || v != write.pw {
		t.Fatalf("first write not queued: %+v ok=%v", v, ok)
	}
	if _, ok := w.masterQueue.pop(); ok {
		t.Fatalf("repeated write within cooldown was queued")
	}

	if !w.cooldown.isOnCooldown(7) {
		t.Fatalf("user not on cooldown after accepted write")
	}
}

func TestHandleWriteDistinctUsers(t *testing.T) {
	w := newTestWorker()

	w.handleWrite(inboundWrite{userID: 1, pw: std.PixelWrite{X: 1, Color: 1}})
	w.handleWrite(inboundWrite{userID: 2, pw: std.PixelWrite{X: 2, Color: 2}})

	for want := uint16(1); want <= 2; want++ {
		v, ok := w.masterQueue.pop()
		if !ok || v.X != want {
			t.Fatalf("pop = %+v ok=%v, want X=%d", v, ok, want)
		}
	}
}

func TestHandleWriteCooldownExpiresViaWheel(t *testing.T) {
	w := newTestWorker()

	w.handleWrite(inboundWrite{userID: 3, pw: std.PixelWrite{X: 5, Color: 5}})
	w.masterQueue.pop()

	for i := 0; i < timingWheelTicks; i++ {
		w.wheel.tick(&w.cooldown)
	}

	w.handleWrite(inboundWrite{userID: 3, pw: std.PixelWrite{X: 6, Color: 6}})
	if v, ok := w.masterQueue.pop(); !ok || v.X != 6 {
		t.Fatalf("write after expiry not queued: %+v ok=%v", v, ok)
	}
}

func TestHandleWriteDropsOnFullRing(t *testing.T) {
	w := newTestWorker()

	for i := 0; i < w.masterQueue.cap(); i++ {
		w.handleWrite(inboundWrite{userID: uint32(i), pw: std.PixelWrite{X: uint16(i)}})
	}
	// ring is full; the write is dropped but the user still lands on cooldown
	overflow := uint32(w.masterQueue.cap())
	w.handleWrite(inboundWrite{userID: overflow, pw: std.PixelWrite{X: 9999}})

	if !w.cooldown.isOnCooldown(overflow) {
		t.Fatalf("dropped write should still set cooldown")
	}

	count := 0
	for {
		if _, ok := w.masterQueue.pop(); !ok {
			break
		}
		count++
	}
	if count != w.masterQueue.cap() {
		t.Fatalf("drained %d writes, want %d", count, w.masterQueue.cap())
	}
}

// a broadcast fan-out reaches every connection with record-aligned chunks
func TestServiceBroadcastFansOut(t *testing.T) {
	w := newTestWorker()
	c := newCanvas()

	a := newFakeConn()
	b := newFakeConn()
	w.table.admit(a)
	w.table.admit(b)

	c.setPixel(100, 200, 255)
	w.bcast.pool.publish(c)
	w.serviceBroadcast()

	if len(a.sent) == 0 || len(b.sent) == 0 {
		t.Fatalf("broadcast missed a connection: a=%d b=%d", len(a.sent), len(b.sent))
	}

	// first broadcast is a full; reassemble and verify
	var stream []byte
	for i, chunk := range a.sent {
		if len(chunk) > std.BroadcastChunkSize {
			t.Fatalf("oversized chunk: %d", len(chunk))
		}
		if i < len(a.sent)-1 && len(chunk)%2 != 0 {
			t.Fatalf("chunk %d splits an RLE pair", i)
		}
		stream = append(stream, chunk...)
	}
	decoded := make([]byte, std.CanvasSize)
	if n := std.RLEDecode(decoded, stream); n != std.CanvasSize {
		t.Fatalf("reassembled full decoded to %d bytes", n)
	}
	if decoded[200*std.CanvasWidth+100] != 255 {
		t.Fatalf("reassembled full missing the written pixel")
	}
}
