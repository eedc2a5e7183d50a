// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package rpk

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cockroachdb/errors"

	"github.com/riannucci/respack/rpk/rpkdata"
	"github.com/riannucci/respack/rpk/rpkdata/index"
)

// SetVersion parses and sets the archive version, e.g. "3.14.1".
//
// An invalid version is logged as a warning and returned; the previously set
// version is kept.
func (a *Archive) SetVersion(version string) error {
	if a.mode != ModeWrite {
		err := modeErr("SetVersion", a.mode, ModeWrite)
		a.log.Warn("ignoring version", "version", version, "err", err)
		return err
	}
	v, err := rpkdata.ParseVersion(version)
	if err != nil {
		a.log.Warn("ignoring invalid version", "version", version, "keeping", a.version.String(), "err", err)
		return err
	}
	a.version = v
	return nil
}

// AddStream stores data under the logical path destDir/name.
//
// If the path is invalid or already present, nothing is written and the error
// is marked ErrConflict (for duplicates).
func (a *Archive) AddStream(data []byte, name, destDir string) error {
	if a.mode != ModeWrite {
		return modeErr("AddStream", a.mode, ModeWrite)
	}
	logical, err := index.JoinPath(destDir, name)
	if err != nil {
		return err
	}
	return a.addStream(data, logical)
}

func (a *Archive) addStream(data []byte, logical string) error {
	if err := a.checkNew(logical); err != nil {
		return err
	}
	off := a.w.Offset()
	n, err := rpkdata.WriteFrame(a.w, data)
	if err != nil {
		return errors.Wrapf(err, "writing %q", logical)
	}
	if err := a.idx.Add(index.Entry{Name: logical, Offset: off, Size: n}); err != nil {
		return errors.AssertionFailedf("indexing %q after a successful check: %v", logical, err)
	}
	a.log.Debug("added", "name", logical, "size", len(data), "frame", n)
	return nil
}

func (a *Archive) checkNew(logical string) error {
	err := a.idx.CanAdd(logical)
	if errors.Is(err, index.ErrDuplicate) {
		err = errors.Mark(err, ErrConflict)
	}
	return err
}

// AddFile reads the file at path and stores it under the logical path
// destDir/base(path).
func (a *Archive) AddFile(path, destDir string) error {
	if a.mode != ModeWrite {
		return modeErr("AddFile", a.mode, ModeWrite)
	}
	logical, err := index.JoinPath(destDir, filepath.Base(path))
	if err != nil {
		return err
	}
	if err := a.checkNew(logical); err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "reading file")
	}
	return a.addStream(data, logical)
}

// AddDir stores the contents of the directory at path under destDir,
// recursing into subdirectories. Entries are visited in lexical order.
//
// Symlinks are handled according to the SymlinkPolicy; other irregular files
// are skipped with a warning. The first failure aborts the call. Frames
// already written stay in the file, so the session should be discarded.
func (a *Archive) AddDir(path, destDir string) error {
	if a.mode != ModeWrite {
		return modeErr("AddDir", a.mode, ModeWrite)
	}
	st, err := os.Stat(path)
	if err != nil {
		return errors.Wrap(err, "adding directory")
	}
	if !st.IsDir() {
		return errors.Newf("%q is not a directory", path)
	}
	return a.addDir(path, destDir)
}

func (a *Archive) addDir(path, destDir string) error {
	ents, err := os.ReadDir(path)
	if err != nil {
		return errors.Wrap(err, "listing directory")
	}
	for _, ent := range ents {
		src := filepath.Join(path, ent.Name())
		logical, err := index.JoinPath(destDir, ent.Name())
		if err != nil {
			return errors.Wrapf(err, "adding %q", src)
		}
		if pat := a.excluded(logical); pat != "" {
			a.log.Debug("excluded", "name", logical, "pattern", pat)
			continue
		}

		switch typ := ent.Type(); {
		case typ&fs.ModeSymlink != 0:
			err = a.addSymlink(src, destDir)
		case typ.IsDir():
			err = a.addDir(src, logical)
		case typ.IsRegular():
			err = a.AddFile(src, destDir)
		default:
			a.log.Warn("skipping irregular file", "path", src, "type", typ.String())
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (a *Archive) addSymlink(src, destDir string) error {
	if a.opts.symlinks != SymlinkFollowFiles {
		a.log.Warn("skipping symlink", "path", src)
		return nil
	}
	st, err := os.Stat(src)
	if err != nil || !st.Mode().IsRegular() {
		a.log.Warn("skipping symlink which does not point to a regular file", "path", src, "err", err)
		return nil
	}
	return a.AddFile(src, destDir)
}

func (a *Archive) excluded(logical string) string {
	for _, pat := range a.opts.exclude {
		// patterns were validated by New
		if ok, _ := doublestar.Match(pat, logical); ok {
			return pat
		}
	}
	return ""
}
