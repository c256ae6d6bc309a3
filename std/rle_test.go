package std

import (
	"bytes"
	"math/rand"
	"testing"
)

func TestRLEEncodeKnownPairs(t *testing.T) {
	src := []byte{7, 7, 7, 3, 3}
	dst := make([]byte, RLEMaxEncodedLen(len(src)))
	n := RLEEncode(dst, src)

	want := []byte{3, 7, 2, 3}
	if !bytes.Equal(dst[:n], want) {
		t.Fatalf("encoded %v, want %v", dst[:n], want)
	}

	out := make([]byte, len(src))
	if m := RLEDecode(out, dst[:n]); m != len(src) {
		t.Fatalf("decoded %d bytes, want %d", m, len(src))
	}
	if !bytes.Equal(out, src) {
		t.Fatalf("round trip mismatch: %v", out)
	}
}

func TestRLEEmptyInput(t *testing.T) {
	if n := RLEEncode(nil, nil); n != 0 {
		t.Fatalf("encode of empty input wrote %d bytes", n)
	}
	if n := RLEDecode(make([]byte, 4), nil); n != 0 {
		t.Fatalf("decode of empty input wrote %d bytes", n)
	}
}

func TestRLELongRunSplitsAt255(t *testing.T) {
	src := bytes.Repeat([]byte{9}, 600)
	dst := make([]byte, RLEMaxEncodedLen(len(src)))
	n := RLEEncode(dst, src)

	want := []byte{255, 9, 255, 9, 90, 9}
	if !bytes.Equal(dst[:n], want) {
		t.Fatalf("encoded %v, want %v", dst[:n], want)
	}
}

func TestRLERoundTripRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for trial := 0; trial < 50; trial++ {
		src := make([]byte, rng.Intn(4096))
		for i := range src {
			// few distinct values to force runs
			src[i] = byte(rng.Intn(4))
		}

		dst := make([]byte, RLEMaxEncodedLen(len(src)))
		n := RLEEncode(dst, src)
		if n > RLEMaxEncodedLen(len(src)) {
			t.Fatalf("encoded size %d exceeds bound %d", n, RLEMaxEncodedLen(len(src)))
		}

		out := make([]byte, len(src))
		if m := RLEDecode(out, dst[:n]); m != len(src) {
			t.Fatalf("decoded %d bytes, want %d", m, len(src))
		}
		if !bytes.Equal(out, src) {
			t.Fatalf("round trip mismatch on trial %d", trial)
		}
	}
}

func TestRLEDecodeBoundedByDst(t *testing.T) {
	src := []byte{255, 1, 255, 1}
	out := make([]byte, 100)
	if n := RLEDecode(out, src); n != 100 {
		t.Fatalf("decoded %d bytes, want capped 100", n)
	}
	for i, v := range out {
		if v != 1 {
			t.Fatalf("out[%d] = %d, want 1", i, v)
		}
	}
}
