package std

import "testing"

func TestPixelDatagramRoundTrip(t *testing.T) {
	w := PixelWrite{X: 100, Y: 200, Color: 255}
	b := AppendPixelDatagram(nil, w)
	if len(b) != PixelDatagramSize {
		t.Fatalf("datagram length %d, want %d", len(b), PixelDatagramSize)
	}

	// little-endian layout is frozen
	if b[0] != 100 || b[1] != 0 || b[2] != 200 || b[3] != 0 || b[4] != 255 {
		t.Fatalf("unexpected wire bytes: %v", b)
	}

	got, ok := ParsePixelDatagram(b)
	if !ok || got != w {
		t.Fatalf("parsed %+v ok=%v, want %+v", got, ok, w)
	}
}

func TestPixelDatagramRejectsWrongLength(t *testing.T) {
	for _, n := range []int{0, 1, 4, 6, 100} {
		if _, ok := ParsePixelDatagram(make([]byte, n)); ok {
			t.Fatalf("accepted %d-byte datagram", n)
		}
	}
}

func TestDiffRecordRoundTrip(t *testing.T) {
	b := AppendDiffRecord(nil, 200*CanvasWidth+100, 255)
	if len(b) != DiffRecordSize {
		t.Fatalf("record length %d, want %d", len(b), DiffRecordSize)
	}

	index, color, ok := ParseDiffRecord(b)
	if !ok || index != 200*CanvasWidth+100 || color != 255 {
		t.Fatalf("parsed index=%d color=%d ok=%v", index, color, ok)
	}

	if _, _, ok := ParseDiffRecord(b[:4]); ok {
		t.Fatalf("accepted truncated record")
	}
}
