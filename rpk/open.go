// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package rpk

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/cockroachdb/errors"

	"github.com/riannucci/respack/rpk/rpkdata"
	"github.com/riannucci/respack/rpk/rpkdata/index"
)

// Mode is the state of an Archive handle.
type Mode int

// Valid values of Mode
const (
	// The handle has no open file.
	ModeUnset Mode = iota

	// The handle is building a new archive.
	ModeWrite

	// The handle is reading an existing archive.
	ModeRead
)

func (m Mode) String() string {
	switch m {
	case ModeUnset:
		return "unset"
	case ModeWrite:
		return "write"
	case ModeRead:
		return "read"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Archive is a handle on one resource pack file, open either for writing or
// for reading.
//
// An Archive is not safe for concurrent use.
type Archive struct {
	opts optionData
	log  *slog.Logger

	mode Mode
	path string
	file *os.File
	idx  *index.Index

	version rpkdata.Version

	// write mode
	buf *bufio.Writer
	w   *rpkdata.OffsetWriter

	// read mode; indexOffset is also the end of the frame region
	indexOffset uint64
}

// New returns an unopened Archive configured with options.
func New(options ...Option) (*Archive, error) {
	opts := optionData{digest: rpkdata.DigestBLAKE2b256}
	for _, o := range options {
		o(&opts)
	}
	if err := opts.valid(); err != nil {
		return nil, err
	}
	log := opts.log
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Archive{opts: opts, log: log}, nil
}

// Mode returns the current mode of the handle.
func (a *Archive) Mode() Mode { return a.mode }

// Path returns the path of the open file, or "" if the handle is unset.
func (a *Archive) Path() string { return a.path }

// Open opens path in the given mode. If the handle is already open, it is
// closed first; an error from that implicit Close is logged, not returned.
//
// ModeWrite creates or truncates path. ModeRead parses and validates the
// whole index before returning.
func (a *Archive) Open(path string, mode Mode) error {
	if a.mode != ModeUnset {
		prev := a.path
		if err := a.Close(); err != nil {
			a.log.Error("closing previous archive", "path", prev, "err", err)
		}
	}

	switch mode {
	case ModeWrite:
		return a.openWrite(path)
	case ModeRead:
		return a.openRead(path)
	}
	return errors.Mark(errors.Newf("cannot open in mode %s", mode), ErrMode)
}

func (a *Archive) openWrite(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating archive")
	}
	a.buf = bufio.NewWriter(f)
	// placeholder for the index offset, patched by Close
	if _, err := a.buf.Write(make([]byte, rpkdata.HeaderSize)); err != nil {
		f.Close()
		a.reset()
		return errors.Wrap(err, "writing header")
	}
	a.w = rpkdata.NewOffsetWriter(a.buf, rpkdata.HeaderSize)
	a.file = f
	a.path = path
	a.idx = index.New(a.opts.caseSafe)
	a.version = 0
	a.mode = ModeWrite
	a.log.Debug("opened archive for writing", "path", path)
	return nil
}

func (a *Archive) openRead(path string) (err error) {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "opening archive")
	}
	defer func() {
		if err != nil {
			f.Close()
			a.log.Error("rejected archive", "path", path, "err", err)
		}
	}()

	st, err := f.Stat()
	if err != nil {
		return errors.Wrap(err, "statting archive")
	}
	size := uint64(st.Size())
	if size < rpkdata.MinArchiveSize {
		return errors.Mark(errors.Newf(
			"%d byte file is smaller than the minimum archive (%d bytes)", size, rpkdata.MinArchiveSize),
			ErrFormat)
	}

	off, err := rpkdata.ReadHeader(f)
	if err != nil {
		return err
	}
	if off < rpkdata.HeaderSize || off > size-rpkdata.MinIndexSize {
		return errors.Mark(errors.Newf(
			"index offset 0x%x is outside the %d byte file", off, size), ErrFormat)
	}

	region := make([]byte, size-off)
	if _, err := f.ReadAt(region, int64(off)); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return errors.Wrap(err, "reading index")
	}
	x, v, err := rpkdata.ParseIndex(region)
	if err != nil {
		return errors.Wrapf(err, "index at 0x%x", off)
	}
	x.CaseSafe = a.opts.caseSafe

	a.file = f
	a.path = path
	a.idx = x
	a.version = v
	a.indexOffset = off
	a.mode = ModeRead
	a.log.Debug("opened archive for reading", "path", path, "entries", x.Len(), "version", v.String())
	return nil
}

// Close finishes the current session and returns the handle to ModeUnset.
//
// In ModeWrite the index is appended and the header patched to point at it;
// the archive is only valid once Close returns nil. Close on an unset handle
// is a no-op.
func (a *Archive) Close() error {
	defer a.reset()

	switch a.mode {
	case ModeUnset:
		return nil
	case ModeRead:
		return a.file.Close()
	}

	err := a.finish()
	if cerr := a.file.Close(); err == nil && cerr != nil {
		err = errors.Wrap(cerr, "closing archive")
	}
	return err
}

func (a *Archive) finish() error {
	if err := a.w.Err(); err != nil {
		return errors.Wrap(err, "archive is incomplete after an earlier write error")
	}
	off := a.w.Offset()
	n, err := rpkdata.WriteIndex(a.w, a.idx, a.version)
	if err != nil {
		return errors.Wrap(err, "writing index")
	}
	if err := a.buf.Flush(); err != nil {
		return errors.Wrap(err, "flushing archive")
	}
	if err := rpkdata.WriteHeader(a.file, off); err != nil {
		return errors.Wrap(err, "writing header")
	}
	a.log.Info("wrote archive",
		"path", a.path, "entries", a.idx.Len(), "version", a.version.String(), "bytes", off+n)
	return nil
}

func (a *Archive) reset() {
	log, opts := a.log, a.opts
	*a = Archive{opts: opts, log: log}
}

// GetVersion returns the archive version as dot-separated groups, or "" if
// none is set or the handle is unset.
func (a *Archive) GetVersion() string {
	return a.version.String()
}

// Version returns the packed archive version.
func (a *Archive) Version() rpkdata.Version { return a.version }

// FileExist returns true iff name is indexed. It is valid in either mode.
func (a *Archive) FileExist(name string) bool {
	if a.idx == nil {
		return false
	}
	return a.idx.Has(name)
}

// Entries returns every index entry in ascending name order. It is valid in
// either mode.
func (a *Archive) Entries() []index.Entry {
	if a.idx == nil {
		return nil
	}
	return a.idx.Entries()
}
