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

// MaxRunLength is the largest run a single (count, value) pair can carry.
const MaxRunLength = 255

// RLEMaxEncodedLen returns the worst-case encoded size for n input bytes,
// reached when no two adjacent bytes are equal.
func RLEMaxEncodedLen(n int) int {
	return 2 * n
}

// RLEEncode compresses src into dst as (count, value) pairs and returns the
// number of bytes written. dst must be at least RLEMaxEncodedLen(len(src))
// bytes. The output is stable across platforms: any accelerated variant must
// produce these exact bytes.
func RLEEncode(dst, src []byte) int {
	if len(src) == 0 {
		return 0
	}

	n := 0
	last := src[0]
	count := byte(1)
	for _, v := range src[1:] {
		if v == last && count < MaxRunLength {
			count++
			continue
		}
		dst[n] = count
		dst[n+1] = last
		n += 2
		last = v
		count = 1
	}
	dst[n] = count
	dst[n+1] = last
	return n + 2
}

// RLEDecode expands src into dst and returns the number of bytes written.
// Decoding stops when dst is full; a trailing odd byte in src is ignored.
func RLEDecode(dst, src []byte) int {
	n := 0
	for i := 0; i+1 < len(src) && n < len(dst); i += 2 {
		count := int(src[i])
		v := src[i+1]
		for j := 0; j < count && n < len(dst); j++ {
			dst[n] = v
			n++
		}
	}
	return n
}
