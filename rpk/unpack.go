// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package rpk

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"

	"github.com/riannucci/respack/rpk/rpkdata"
	"github.com/riannucci/respack/rpk/rpkdata/index"
)

// GetFileStream returns the decoded contents of the logical path name.
func (a *Archive) GetFileStream(name string) ([]byte, error) {
	if a.mode != ModeRead {
		return nil, modeErr("GetFileStream", a.mode, ModeRead)
	}
	e, ok := a.idx.Get(name)
	if !ok {
		return nil, errors.Mark(errors.Newf("%q", name), ErrNotFound)
	}
	return a.readEntry(e)
}

func (a *Archive) readEntry(e index.Entry) ([]byte, error) {
	if e.Offset < rpkdata.HeaderSize || e.Offset > a.indexOffset || e.Size > a.indexOffset-e.Offset {
		return nil, errors.Mark(errors.Newf(
			"entry %q (0x%x, %d bytes) lies outside the frame region", e.Name, e.Offset, e.Size),
			ErrFormat)
	}
	data, err := rpkdata.ReadFrame(a.file, e.Offset, e.Size)
	if err != nil {
		return nil, errors.Wrapf(err, "entry %q", e.Name)
	}
	return data, nil
}

// Extract writes every entry below destDir ("" means the current directory),
// creating directories as needed. The first failure aborts the extraction;
// files already written are left in place.
func (a *Archive) Extract(destDir string) error {
	if a.mode != ModeRead {
		return modeErr("Extract", a.mode, ModeRead)
	}
	err := a.idx.LoopItems(func(e index.Entry) error {
		data, err := a.readEntry(e)
		if err != nil {
			return err
		}
		target := filepath.Join(destDir, filepath.FromSlash(e.Name))
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return errors.Wrapf(err, "making directory for %q", e.Name)
		}
		if err := os.WriteFile(target, data, 0644); err != nil {
			return errors.Wrapf(err, "writing %q", e.Name)
		}
		a.log.Debug("extracted", "name", e.Name, "size", len(data))
		return nil
	})
	if err != nil {
		a.log.Error("extraction aborted", "dest", destDir, "err", err)
		return err
	}
	a.log.Info("extracted archive", "path", a.path, "dest", destDir, "entries", a.idx.Len())
	return nil
}

// ExtractToTempFile writes the contents of name to a new temporary file and
// returns its path. The directory part of prefix selects where the file is
// created (the system temp directory if empty); the base part starts the file
// name.
//
// The caller owns the file and should remove it with DeleteTempFile.
func (a *Archive) ExtractToTempFile(name, prefix string) (string, error) {
	data, err := a.GetFileStream(name)
	if err != nil {
		return "", err
	}
	dir, base := filepath.Split(prefix)
	f, err := os.CreateTemp(dir, base+"*")
	if err != nil {
		return "", errors.Wrap(err, "creating temp file")
	}
	_, err = f.Write(data)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(f.Name())
		return "", errors.Wrapf(err, "writing temp file for %q", name)
	}
	return f.Name(), nil
}

// DeleteTempFile removes a file made by ExtractToTempFile.
func DeleteTempFile(path string) error {
	if path == "" {
		return nil
	}
	return errors.Wrap(os.Remove(path), "deleting temp file")
}

// EntryDigest pairs an index entry with the digest of its decoded contents.
type EntryDigest struct {
	index.Entry
	Digest rpkdata.Digest
}

// Verify decodes every entry, checking each frame, and returns the digest of
// every file's contents in ascending name order.
func (a *Archive) Verify() ([]EntryDigest, error) {
	if a.mode != ModeRead {
		return nil, modeErr("Verify", a.mode, ModeRead)
	}
	ret := make([]EntryDigest, 0, a.idx.Len())
	err := a.idx.LoopItems(func(e index.Entry) error {
		data, err := a.readEntry(e)
		if err != nil {
			return err
		}
		ret = append(ret, EntryDigest{Entry: e, Digest: a.opts.digest.Sum(data)})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}
