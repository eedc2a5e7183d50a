// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package rpkdata

import "io"

// OffsetWriter tracks the absolute archive offset of the next byte written
// through it.
//
// Once a Write fails, every later Write returns the same error and the offset
// stops advancing, so offsets recorded before the failure stay meaningful.
type OffsetWriter struct {
	w   io.Writer
	off uint64
	err error
}

// NewOffsetWriter returns an OffsetWriter whose first byte lands at offset
// start.
func NewOffsetWriter(w io.Writer, start uint64) *OffsetWriter {
	return &OffsetWriter{w: w, off: start}
}

// Offset returns the offset of the next byte to be written.
func (o *OffsetWriter) Offset() uint64 { return o.off }

// Err returns the first write error, if any.
func (o *OffsetWriter) Err() error { return o.err }

func (o *OffsetWriter) Write(p []byte) (int, error) {
	if o.err != nil {
		return 0, o.err
	}
	n, err := o.w.Write(p)
	o.off += uint64(n)
	if err == nil && n < len(p) {
		err = io.ErrShortWrite
	}
	o.err = err
	return n, err
}
