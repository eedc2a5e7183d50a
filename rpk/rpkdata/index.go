// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package rpkdata

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"

	"github.com/cockroachdb/errors"

	"github.com/riannucci/respack/rpk/rpkdata/index"
)

const (
	indexLenSize     = 4
	indexVersionSize = 4
	nameLenSize      = 4
	entryInfoSize    = 8 + 8
)

// MinIndexSize is the size of an index region with no entries.
const MinIndexSize = SentinelSize + indexLenSize + indexVersionSize + SentinelSize

// MinArchiveSize is the size of an archive with no files.
const MinArchiveSize = HeaderSize + MinIndexSize

// AppendIndex appends the index region for x to buf:
//
//	[index head][uint32 length][uint32 version]
//	  ([uint32 name length][name][uint64 offset][uint64 size])*
//	[zero padding to 8 bytes][index tail]
//
// length counts the length field, the version field and the entries. Entries
// are written in ascending name order.
func AppendIndex(buf []byte, x *index.Index, v Version) ([]byte, error) {
	buf = IndexHead.Append(buf)
	start := len(buf)
	buf = append(buf, make([]byte, indexLenSize)...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(v))

	err := x.LoopItems(func(e index.Entry) error {
		if uint64(len(e.Name)) > math.MaxUint32 {
			return errors.Newf("name of %d bytes is too long", len(e.Name))
		}
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(e.Name)))
		buf = append(buf, e.Name...)
		buf = binary.LittleEndian.AppendUint64(buf, e.Offset)
		buf = binary.LittleEndian.AppendUint64(buf, e.Size)
		return nil
	})
	if err != nil {
		return nil, err
	}

	size := len(buf) - start
	if uint64(size) > math.MaxUint32 {
		return nil, errors.Newf("index of %d bytes is too large", size)
	}
	binary.LittleEndian.PutUint32(buf[start:], uint32(size))
	buf = append(buf, zeroPad[:PadLen(size)]...)
	return IndexTail.Append(buf), nil
}

// WriteIndex writes the index region for x to w and returns its size.
func WriteIndex(w io.Writer, x *index.Index, v Version) (uint64, error) {
	buf, err := AppendIndex(nil, x, v)
	if err != nil {
		return 0, err
	}
	if _, err := w.Write(buf); err != nil {
		return 0, err
	}
	return uint64(len(buf)), nil
}

func formatErr(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrFormat)
}

// ParseIndex parses a complete index region, as produced by AppendIndex.
//
// Every structural property is checked: both sentinels, alignment, the
// declared length against the region size, entry bounds, zero padding and the
// validity and uniqueness of every name.
func ParseIndex(region []byte) (*index.Index, Version, error) {
	n := len(region)
	if n < MinIndexSize {
		return nil, 0, formatErr("index region of %d bytes is shorter than %d", n, MinIndexSize)
	}
	if n%Alignment != 0 {
		return nil, 0, formatErr("index region of %d bytes is not %d-byte aligned", n, Alignment)
	}
	if err := IndexHead.Check(region); err != nil {
		return nil, 0, err
	}
	if err := IndexTail.Check(region[n-SentinelSize:]); err != nil {
		return nil, 0, err
	}

	body := region[SentinelSize : n-SentinelSize]
	size := uint64(binary.LittleEndian.Uint32(body))
	v := Version(binary.LittleEndian.Uint32(body[indexLenSize:]))
	if size < indexLenSize+indexVersionSize {
		return nil, 0, formatErr("index length %d is too small", size)
	}
	if want := size + uint64(PadLen(int(size%Alignment))); want != uint64(len(body)) {
		return nil, 0, formatErr("index length %d does not fit a region of %d bytes", size, n)
	}
	if !bytes.Equal(body[size:], zeroPad[:len(body)-int(size)]) {
		return nil, 0, formatErr("index padding is not zero")
	}

	x := index.New(false)
	entries := body[:size]
	p := uint64(indexLenSize + indexVersionSize)
	for p < size {
		if size-p < nameLenSize {
			return nil, 0, formatErr("index entry at %d: truncated name length", p)
		}
		nameLen := uint64(binary.LittleEndian.Uint32(entries[p:]))
		p += nameLenSize
		if size-p < nameLen+entryInfoSize {
			return nil, 0, formatErr("index entry at %d: %d byte name overruns index", p, nameLen)
		}
		e := index.Entry{Name: string(entries[p : p+nameLen])}
		p += nameLen
		e.Offset = binary.LittleEndian.Uint64(entries[p:])
		e.Size = binary.LittleEndian.Uint64(entries[p+8:])
		p += entryInfoSize
		if err := x.Add(e); err != nil {
			return nil, 0, errors.Mark(err, ErrFormat)
		}
	}
	if p != size {
		return nil, 0, formatErr("index entries end at %d, length is %d", p, size)
	}
	return x, v, nil
}
