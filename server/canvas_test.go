package main

import (
	"bytes"
	"testing"

	"github.com/canvastorm/canvastorm/std"
)

func TestCanvasSnapshotToPool(t *testing.T) {
	c := newCanvas()
	p := newBufferPool()

	c.setPixel(10, 10, 255)
	c.snapshotToPool(p, 1)

	if got := p.slot(1).raw[10*std.CanvasWidth+10]; got != 255 {
		t.Fatalf("snapshot pixel = %d, want 255", got)
	}
	if got := p.slot(1).raw[0]; got != 0 {
		t.Fatalf("untouched pixel = %d, want 0", got)
	}
}

func TestCanvasSetPixelBounds(t *testing.T) {
	c := newCanvas()
	// out-of-range writes are no-ops, not panics
	c.setPixel(std.CanvasWidth, 0, 1)
	c.setPixel(0, std.CanvasHeight, 1)
	c.setPixel(65535, 65535, 1)

	for i, v := range c.pixels {
		if v != 0 {
			t.Fatalf("pixel %d modified by out-of-range write", i)
		}
	}

	c.setPixel(std.CanvasWidth-1, std.CanvasHeight-1, 7)
	if c.pixels[std.CanvasSize-1] != 7 {
		t.Fatalf("corner pixel not written")
	}
}

func TestBufferPoolPublish(t *testing.T) {
	c := newCanvas()
	p := newBufferPool()

	c.setPixel(100, 200, 255)
	index := p.publish(c)

	if index != 1 || p.activeIndex() != 1 {
		t.Fatalf("active index = %d after first publish, want 1", p.activeIndex())
	}

	s := p.slot(index)
	if !bytes.Equal(s.raw[:], c.pixels) {
		t.Fatalf("published raw does not match canvas")
	}

	decoded := make([]byte, std.CanvasSize)
	if n := std.RLEDecode(decoded, s.compressed[:s.compressedLen]); n != std.CanvasSize {
		t.Fatalf("compressed snapshot decoded to %d bytes, want %d", n, std.CanvasSize)
	}
	if !bytes.Equal(decoded, c.pixels) {
		t.Fatalf("compressed snapshot does not round trip to the canvas")
	}
}

func TestBufferPoolIndexWraps(t *testing.T) {
	c := newCanvas()
	p := newBufferPool()

	for i := 1; i <= poolSize+2; i++ {
		index := p.publish(c)
		if index != uint32(i&(poolSize-1)) {
			t.Fatalf("publish %d landed on slot %d", i, index)
		}
	}
}

func TestCanvasSeqlock(t *testing.T) {
	c := newCanvas()
	if c.readSeq() != 0 {
		t.Fatalf("fresh canvas seq = %d", c.readSeq())
	}

	c.beginWrite()
	if c.readSeq()&1 == 0 {
		t.Fatalf("seq even during write")
	}
	c.setPixel(1, 1, 9)
	c.endWrite()
	if c.readSeq()&1 != 0 {
		t.Fatalf("seq odd after write finished")
	}

	dst := make([]byte, std.CanvasSize)
	c.readConsistent(dst)
	if dst[1*std.CanvasWidth+1] != 9 {
		t.Fatalf("consistent read missed committed pixel")
	}
}
