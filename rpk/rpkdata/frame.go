// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package rpkdata

import (
	"io"
	"math"

	"github.com/cockroachdb/errors"

	"github.com/riannucci/respack/rpk/huffman"
)

// MinFrameSize is the size of a frame with an empty payload: just the head
// and tail sentinels.
const MinFrameSize = 2 * SentinelSize

// FrameSize returns the total size of a frame holding a payload of n bytes.
func FrameSize(n int) uint64 {
	return uint64(SentinelSize + n + PadLen(n) + SentinelSize)
}

// AppendFrame appends a frame holding payload to buf:
//
//	[stream head][payload][zero padding to 8 bytes][stream tail]
func AppendFrame(buf, payload []byte) []byte {
	buf = StreamHead.Append(buf)
	buf = append(buf, payload...)
	buf = append(buf, zeroPad[:PadLen(len(payload))]...)
	return StreamTail.Append(buf)
}

// WriteFrame Huffman-encodes data and writes it to w as a single frame. It
// returns the number of bytes written, which is always a multiple of
// Alignment.
//
// The frame is assembled in memory and handed to w in one Write.
func WriteFrame(w io.Writer, data []byte) (uint64, error) {
	block, err := huffman.Encode(data)
	if err != nil {
		return 0, errors.Wrap(err, "encoding")
	}
	size := FrameSize(len(block))
	frame := AppendFrame(make([]byte, 0, size), block)
	if uint64(len(frame)) != size || size%Alignment != 0 {
		return 0, errors.AssertionFailedf("frame is %d bytes, expected %d", len(frame), size)
	}
	if _, err := w.Write(frame); err != nil {
		return 0, err
	}
	return size, nil
}

// ReadFrameRaw reads the size-byte frame at offset, checks both sentinels and
// returns the payload (including any padding).
func ReadFrameRaw(r io.ReaderAt, offset, size uint64) ([]byte, error) {
	if size < MinFrameSize {
		return nil, errors.Mark(
			errors.Newf("frame size %d is smaller than its sentinels", size), ErrFormat)
	}
	if size%Alignment != 0 || offset%Alignment != 0 {
		return nil, errors.Mark(
			errors.Newf("frame at 0x%x (size %d) is not %d-byte aligned", offset, size, Alignment), ErrFormat)
	}
	if size > math.MaxInt || offset > math.MaxInt64-size {
		return nil, errors.Mark(
			errors.Newf("frame at 0x%x (size %d) is out of range", offset, size), ErrFormat)
	}

	buf := make([]byte, size)
	if _, err := r.ReadAt(buf, int64(offset)); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, errors.Wrapf(err, "reading frame at 0x%x", offset)
	}
	if err := StreamHead.Check(buf); err != nil {
		return nil, errors.Wrapf(err, "frame at 0x%x", offset)
	}
	if err := StreamTail.Check(buf[size-SentinelSize:]); err != nil {
		return nil, errors.Wrapf(err, "frame at 0x%x", offset)
	}
	return buf[SentinelSize : size-SentinelSize], nil
}

// ReadFrame reads the frame at offset and decodes its payload.
func ReadFrame(r io.ReaderAt, offset, size uint64) ([]byte, error) {
	payload, err := ReadFrameRaw(r, offset, size)
	if err != nil {
		return nil, err
	}
	data, err := huffman.Decode(payload)
	if err != nil {
		if errors.Is(err, huffman.ErrCorrupt) {
			err = errors.Mark(err, ErrFormat)
		}
		return nil, errors.Wrapf(err, "decoding frame at 0x%x", offset)
	}
	return data, nil
}
