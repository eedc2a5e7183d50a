// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package rpkdata

import (
	"encoding/binary"
	"io"

	"github.com/cockroachdb/errors"
)

// Sentinel is a 64-bit marker bracketing a region of the archive.
type Sentinel uint64

// These are the four sentinels of the format. They share no simple bit
// relationship, so a damaged frame boundary cannot be read as an index
// boundary (or vice versa).
const (
	StreamHead Sentinel = 0xf9e8d7c6b5a44a5b
	StreamTail Sentinel = 0xb5a44a5b6c7d8e9f
	IndexHead  Sentinel = 0x9f8e7d6c5b4aa4b5
	IndexTail  Sentinel = 0x5b4aa4b5c6d7e8f9
)

// SentinelSize is the encoded size of a Sentinel.
const SentinelSize = 8

// HeaderSize is the size of the archive header, which holds the absolute
// offset of the index region.
const HeaderSize = 8

// Alignment is the boundary every frame and the index region start on.
const Alignment = 8

// ErrFormat marks errors caused by a structurally invalid archive.
var ErrFormat = errors.New("malformed archive")

var zeroPad [Alignment]byte

// PadLen returns the number of zero bytes needed to bring n up to Alignment.
func PadLen(n int) int {
	return (Alignment - n%Alignment) % Alignment
}

func (s Sentinel) String() string {
	switch s {
	case StreamHead:
		return "stream head"
	case StreamTail:
		return "stream tail"
	case IndexHead:
		return "index head"
	case IndexTail:
		return "index tail"
	}
	return "unknown sentinel"
}

// Append appends the little-endian encoding of s to buf.
func (s Sentinel) Append(buf []byte) []byte {
	return binary.LittleEndian.AppendUint64(buf, uint64(s))
}

// Check returns a format error unless buf starts with s.
func (s Sentinel) Check(buf []byte) error {
	if len(buf) < SentinelSize {
		return errors.Mark(errors.Newf("%s truncated: %d bytes", s, len(buf)), ErrFormat)
	}
	if got := Sentinel(binary.LittleEndian.Uint64(buf)); got != s {
		return errors.Mark(errors.Newf("bad %s: 0x%016x", s, uint64(got)), ErrFormat)
	}
	return nil
}

// WriteHeader writes the archive header pointing at indexOffset. Writers
// reserve the header with a zero offset and patch it when the index has been
// appended.
func WriteHeader(w io.WriterAt, indexOffset uint64) error {
	var buf [HeaderSize]byte
	binary.LittleEndian.PutUint64(buf[:], indexOffset)
	_, err := w.WriteAt(buf[:], 0)
	return err
}

// ReadHeader reads the index offset from the archive header and checks that
// it is aligned.
func ReadHeader(r io.ReaderAt) (indexOffset uint64, err error) {
	var buf [HeaderSize]byte
	if _, err = r.ReadAt(buf[:], 0); err != nil {
		return 0, errors.Wrap(err, "reading header")
	}
	indexOffset = binary.LittleEndian.Uint64(buf[:])
	if indexOffset%Alignment != 0 {
		return 0, errors.Mark(
			errors.Newf("index offset 0x%x is not %d-byte aligned", indexOffset, Alignment), ErrFormat)
	}
	return indexOffset, nil
}
