// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package rpk

import (
	"github.com/cockroachdb/errors"

	"github.com/riannucci/respack/rpk/rpkdata"
)

// These error marks classify failures; test for them with errors.Is.
var (
	// ErrMode is returned when an operation does not match the handle's mode,
	// e.g. AddStream on a read handle.
	ErrMode = errors.New("wrong archive mode")

	// ErrConflict is returned when a logical path is added twice.
	ErrConflict = errors.New("logical path conflict")

	// ErrNotFound is returned when a logical path is not in the archive.
	ErrNotFound = errors.New("no such entry")

	// ErrFormat is returned when the archive on disk is malformed.
	ErrFormat = rpkdata.ErrFormat
)

func modeErr(op string, have, want Mode) error {
	return errors.Mark(errors.Newf("%s requires a %s handle, this one is %s", op, want, have), ErrMode)
}
