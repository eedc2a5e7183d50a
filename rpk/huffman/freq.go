// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package huffman

import (
	"encoding/binary"
	"math"

	"github.com/cockroachdb/errors"
)

// FrequencyTable counts the occurrences of every byte value in a buffer.
//
// It is the only model information stored with an encoded block; the decoder
// rebuilds the identical tree from it.
type FrequencyTable [256]uint64

const (
	countFieldSize = 4
	entrySize      = 1 + 4
)

// CountFrequencies builds the FrequencyTable for buf.
func CountFrequencies(buf []byte) *FrequencyTable {
	ft := &FrequencyTable{}
	for _, b := range buf {
		ft[b]++
	}
	return ft
}

// Symbols returns the number of distinct symbols with a non-zero count.
func (ft *FrequencyTable) Symbols() int {
	n := 0
	for _, c := range ft {
		if c != 0 {
			n++
		}
	}
	return n
}

// Total returns the sum of all counts.
func (ft *FrequencyTable) Total() uint64 {
	var t uint64
	for _, c := range ft {
		t += c
	}
	return t
}

// EncodedSize returns the number of bytes AppendBinary will add.
func (ft *FrequencyTable) EncodedSize() int {
	return countFieldSize + entrySize*ft.Symbols()
}

// AppendBinary appends the serialized table to buf:
//
//	[uint32 symbol count] ([symbol byte][uint32 count])*
//
// Entries are written in ascending symbol order. Counts which do not fit in
// 32 bits are an error.
func (ft *FrequencyTable) AppendBinary(buf []byte) ([]byte, error) {
	start := len(buf)
	need := ft.EncodedSize()
	buf = binary.LittleEndian.AppendUint32(buf, uint32(ft.Symbols()))
	for sym, c := range ft {
		if c == 0 {
			continue
		}
		if c > math.MaxUint32 {
			return nil, errors.Newf("count %d for symbol 0x%02x exceeds 32 bits", c, sym)
		}
		buf = append(buf, byte(sym))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(c))
	}
	if len(buf)-start != need {
		return nil, errors.AssertionFailedf("frequency table wrote %d bytes, expected %d",
			len(buf)-start, need)
	}
	return buf, nil
}

// ParseFrequencyTable reads a serialized table from the front of buf and
// returns it along with the number of bytes consumed.
func ParseFrequencyTable(buf []byte) (*FrequencyTable, int, error) {
	if len(buf) < countFieldSize {
		return nil, 0, errors.Mark(
			errors.Newf("frequency table truncated: %d bytes", len(buf)), ErrCorrupt)
	}
	n := binary.LittleEndian.Uint32(buf)
	if n > 256 {
		return nil, 0, errors.Mark(
			errors.Newf("frequency table declares %d symbols", n), ErrCorrupt)
	}
	size := countFieldSize + entrySize*int(n)
	if len(buf) < size {
		return nil, 0, errors.Mark(
			errors.Newf("frequency table truncated: %d symbols need %d bytes, have %d",
				n, size, len(buf)), ErrCorrupt)
	}

	ft := &FrequencyTable{}
	for off := countFieldSize; off < size; off += entrySize {
		sym := buf[off]
		if ft[sym] != 0 {
			return nil, 0, errors.Mark(
				errors.Newf("frequency table repeats symbol 0x%02x", sym), ErrCorrupt)
		}
		c := binary.LittleEndian.Uint32(buf[off+1:])
		if c == 0 {
			return nil, 0, errors.Mark(
				errors.Newf("frequency table has zero count for symbol 0x%02x", sym), ErrCorrupt)
		}
		ft[sym] = uint64(c)
	}
	return ft, size, nil
}
