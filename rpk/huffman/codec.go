// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package huffman

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
)

// ErrCorrupt marks errors caused by a malformed encoded block.
var ErrCorrupt = errors.New("corrupt huffman block")

const bitCountSize = 8

// Encode compresses buf into a self-describing block:
//
//	[frequency table][uint64 bit count][packed bits]
//
// An empty buf produces a block with an empty frequency table and a zero bit
// count, which decodes back to an empty buffer.
func Encode(buf []byte) ([]byte, error) {
	ft := CountFrequencies(buf)
	ct, err := BuildCodeTable(BuildTree(ft))
	if err != nil {
		return nil, err
	}

	var nbits uint64
	for sym, c := range ft {
		nbits += c * uint64(ct[sym].Len)
	}
	packedSize := (nbits + 7) / 8
	want := uint64(ft.EncodedSize()) + bitCountSize + packedSize

	out := make([]byte, 0, want)
	if out, err = ft.AppendBinary(out); err != nil {
		return nil, err
	}
	out = binary.LittleEndian.AppendUint64(out, nbits)

	w := bitWriter{buf: out}
	for _, b := range buf {
		w.writeCode(ct[b])
	}
	out = w.flush()

	if w.total != nbits || uint64(len(out)) != want {
		return nil, errors.AssertionFailedf(
			"encoded %d bits into %d bytes, expected %d bits in %d bytes",
			w.total, len(out), nbits, want)
	}
	return out, nil
}

// Decode reverses Encode.
//
// Bytes after the packed bits are ignored, so a block may be followed by
// padding.
func Decode(buf []byte) ([]byte, error) {
	ft, n, err := ParseFrequencyTable(buf)
	if err != nil {
		return nil, err
	}
	root := BuildTree(ft)
	if root == nil {
		return []byte{}, nil
	}

	rest := buf[n:]
	if len(rest) < bitCountSize {
		return nil, errors.Mark(
			errors.Newf("missing bit count: %d bytes after frequency table", len(rest)), ErrCorrupt)
	}
	nbits := binary.LittleEndian.Uint64(rest)
	packed := rest[bitCountSize:]
	if nbits/8+boolToUint64(nbits%8 != 0) > uint64(len(packed)) {
		return nil, errors.Mark(
			errors.Newf("bit count %d exceeds %d packed bytes", nbits, len(packed)), ErrCorrupt)
	}

	total := ft.Total()
	out := make([]byte, 0, min(total, nbits))
	var seen FrequencyTable
	r := bitReader{buf: packed}
	node := root
	for r.pos < nbits {
		in := node.(*Internal)
		if r.next() == 0 {
			node = in.Left
		} else {
			node = in.Right
		}
		if leaf, ok := node.(*Leaf); ok {
			if leaf.Freq == 0 {
				return nil, errors.Mark(
					errors.Newf("bit %d selects the placeholder symbol", r.pos-1), ErrCorrupt)
			}
			if seen[leaf.Symbol]++; seen[leaf.Symbol] > ft[leaf.Symbol] {
				return nil, errors.Mark(
					errors.Newf("symbol 0x%02x occurs more than the %d times the frequency table declares",
						leaf.Symbol, ft[leaf.Symbol]), ErrCorrupt)
			}
			out = append(out, leaf.Symbol)
			node = root
		}
	}
	if node != root {
		return nil, errors.Mark(
			errors.New("bit stream ends in the middle of a code"), ErrCorrupt)
	}
	if uint64(len(out)) != total {
		return nil, errors.Mark(
			errors.Newf("decoded %d symbols, frequency table declares %d", len(out), total), ErrCorrupt)
	}
	for sym := range ft {
		if seen[sym] != ft[sym] {
			return nil, errors.Mark(
				errors.Newf("symbol 0x%02x decoded %d times, frequency table declares %d",
					sym, seen[sym], ft[sym]), ErrCorrupt)
		}
	}
	return out, nil
}

func boolToUint64(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
