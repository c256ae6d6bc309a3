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

import "encoding/binary"

// Canvas geometry, shared by server and client.
const (
	CanvasWidth  = 1000
	CanvasHeight = 1000
	CanvasSize   = CanvasWidth * CanvasHeight
)

// Wire framing. All integers are little-endian; the byte order is frozen for
// compatibility with deployed clients.
//
// Broadcast payloads carry no type byte. A client treats its first payload
// after connect as a full snapshot and keys fulls off the server's cadence
// thereafter; the rest are diff streams.
const (
	// PixelDatagramSize is the exact length of an inbound pixel write:
	// x u16, y u16, color u8. Anything else is dropped.
	PixelDatagramSize = 5

	// DiffRecordSize is the length of one outbound diff record:
	// linear pixel index u32, color u8.
	DiffRecordSize = 5

	// BroadcastChunkSize caps a single broadcast datagram. It leaves
	// headroom below the QUIC datagram frame limit on a 1350-byte MTU.
	BroadcastChunkSize = 1000

	// ServerPort is fixed; every worker binds it with port reuse.
	ServerPort = 4433
)

// PixelWrite is one validated client write.
type PixelWrite struct {
	X     uint16
	Y     uint16
	Color uint8
}

// ParsePixelDatagram decodes a client datagram. It returns false for any
// payload that is not exactly PixelDatagramSize bytes; coordinate bounds are
// the canvas owner's problem.
func ParsePixelDatagram(b []byte) (PixelWrite, bool) {
	if len(b) != PixelDatagramSize {
		return PixelWrite{}, false
	}
	return PixelWrite{
		X:     binary.LittleEndian.Uint16(b[0:2]),
		Y:     binary.LittleEndian.Uint16(b[2:4]),
		Color: b[4],
	}, true
}

// AppendPixelDatagram appends the wire form of w to dst.
func AppendPixelDatagram(dst []byte, w PixelWrite) []byte {
	dst = binary.LittleEndian.AppendUint16(dst, w.X)
	dst = binary.LittleEndian.AppendUint16(dst, w.Y)
	return append(dst, w.Color)
}

// AppendDiffRecord appends one (index, color) diff record to dst.
func AppendDiffRecord(dst []byte, index uint32, color byte) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, index)
	return append(dst, color)
}

// ParseDiffRecord decodes the diff record at the start of b.
func ParseDiffRecord(b []byte) (index uint32, color byte, ok bool) {
	if len(b) < DiffRecordSize {
		return 0, 0, false
	}
	return binary.LittleEndian.Uint32(b[0:4]), b[4], true
}
