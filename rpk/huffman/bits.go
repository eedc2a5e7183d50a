// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package huffman

// bitWriter packs bits into a byte slice, least significant bit first: bit i
// of the stream lives in byte i/8 at position i%8.
type bitWriter struct {
	buf []byte

	// acc holds nacc pending bits, oldest in bit 0.
	acc  uint64
	nacc int

	total uint64
}

// writeCode appends the bits of c.
func (w *bitWriter) writeCode(c Code) {
	w.total += uint64(c.Len)
	bits, n := c.Bits, c.Len
	for n > 0 {
		take := 64 - w.nacc
		if take > n {
			take = n
		}
		chunk := bits
		if take < 64 {
			chunk &= 1<<uint(take) - 1
		}
		w.acc |= chunk << uint(w.nacc)
		w.nacc += take
		if take < 64 {
			bits >>= uint(take)
		} else {
			bits = 0
		}
		n -= take
		for w.nacc >= 8 {
			w.buf = append(w.buf, byte(w.acc))
			w.acc >>= 8
			w.nacc -= 8
		}
	}
}

// flush writes out any partial byte, zero padded on the high side, and
// returns the packed buffer.
func (w *bitWriter) flush() []byte {
	if w.nacc > 0 {
		w.buf = append(w.buf, byte(w.acc))
		w.acc, w.nacc = 0, 0
	}
	return w.buf
}

// bitReader reads bits in the order bitWriter wrote them.
type bitReader struct {
	buf []byte
	pos uint64
}

func (r *bitReader) next() uint64 {
	b := r.buf[r.pos>>3] >> (r.pos & 7)
	r.pos++
	return uint64(b & 1)
}
