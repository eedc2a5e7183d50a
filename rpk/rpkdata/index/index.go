// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package index holds the in-memory path index of a respack archive, which
// maps logical paths to the frame holding each file.
package index

import (
	"iter"
	"regexp"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrDuplicate is returned by Add when the logical path is already indexed.
var ErrDuplicate = errors.New("duplicate entry")

// Entry locates one stored file.
type Entry struct {
	// Name is the normalized logical path ("dir/sub/file.ext").
	Name string

	// Offset is the absolute file offset of the frame's head sentinel.
	Offset uint64

	// Size is the total size of the frame, sentinels and padding included.
	Size uint64
}

// Index maps logical paths to entries.
//
// A name may not also be a directory of another name ("a" and "a/b"), since
// such an archive could not be extracted. If CaseSafe is set, Add also
// rejects names which differ from an existing name only in case, so that the
// archive extracts cleanly on case-insensitive filesystems.
type Index struct {
	CaseSafe bool

	entries map[string]Entry
	lower   map[string]string

	// dirs maps every directory implied by an entry (folded if CaseSafe) to
	// the first entry below it.
	dirs map[string]string
}

// New returns an empty Index.
func New(caseSafe bool) *Index {
	return &Index{
		CaseSafe: caseSafe,
		entries:  map[string]Entry{},
		lower:    map[string]string{},
		dirs:     map[string]string{},
	}
}

// Len returns the number of entries.
func (x *Index) Len() int { return len(x.entries) }

// Has returns true iff name is indexed.
func (x *Index) Has(name string) bool {
	_, ok := x.entries[name]
	return ok
}

// Get returns the entry for name.
func (x *Index) Get(name string) (Entry, bool) {
	e, ok := x.entries[name]
	return e, ok
}

// CanAdd returns the error Add would return for name, without changing the
// index.
func (x *Index) CanAdd(name string) error {
	if err := CheckPath(name); err != nil {
		return errors.Wrapf(err, "entry %q", name)
	}
	if _, ok := x.entries[name]; ok {
		return errors.Wrapf(ErrDuplicate, "%q", name)
	}
	if x.CaseSafe {
		if prev, ok := x.lower[strings.ToLower(name)]; ok {
			return errors.Wrapf(ErrDuplicate, "%q differs from %q only in case", name, prev)
		}
	}
	if below, ok := x.dirs[x.fold(name)]; ok {
		return errors.Wrapf(ErrDuplicate, "%q is already a directory holding %q", name, below)
	}
	for dir := range parentDirs(name) {
		if file, ok := x.file(x.fold(dir)); ok {
			return errors.Wrapf(ErrDuplicate, "%q would be below the file %q", name, file)
		}
	}
	return nil
}

func (x *Index) fold(name string) string {
	if x.CaseSafe {
		return strings.ToLower(name)
	}
	return name
}

// file looks up a folded name.
func (x *Index) file(key string) (string, bool) {
	if x.CaseSafe {
		name, ok := x.lower[key]
		return name, ok
	}
	_, ok := x.entries[key]
	return key, ok
}

// parentDirs yields "a" and "a/b" for "a/b/c".
func parentDirs(name string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for i := 0; i < len(name); i++ {
			if name[i] == '/' && !yield(name[:i]) {
				return
			}
		}
	}
}

// Add inserts e. The index is left unchanged if e.Name is invalid or already
// present.
func (x *Index) Add(e Entry) error {
	if err := x.CanAdd(e.Name); err != nil {
		return err
	}
	if x.CaseSafe {
		x.lower[strings.ToLower(e.Name)] = e.Name
	}
	for dir := range parentDirs(e.Name) {
		if _, ok := x.dirs[x.fold(dir)]; !ok {
			x.dirs[x.fold(dir)] = e.Name
		}
	}
	x.entries[e.Name] = e
	return nil
}

// Names returns every logical path in ascending order.
func (x *Index) Names() []string {
	ret := make([]string, 0, len(x.entries))
	for name := range x.entries {
		ret = append(ret, name)
	}
	sort.Strings(ret)
	return ret
}

// Entries returns every entry in ascending name order.
func (x *Index) Entries() []Entry {
	ret := make([]Entry, 0, len(x.entries))
	for _, name := range x.Names() {
		ret = append(ret, x.entries[name])
	}
	return ret
}

// LoopItems invokes cb for every entry in ascending name order.
//
// LoopItems never returns an error by itself, but will forward the error
// returned by `cb` (if any). Returning an error from cb immediately stops the
// loop.
func (x *Index) LoopItems(cb func(e Entry) error) error {
	for _, name := range x.Names() {
		if err := cb(x.entries[name]); err != nil {
			return err
		}
	}
	return nil
}

var badChars = regexp.MustCompile("[<>:\"/\\\\|?*\x00-\x1f]")

func checkPathPiece(piece string) error {
	if piece == "" {
		return errors.New("empty path component")
	}
	if piece == "." {
		return errors.New("'.' path component")
	}
	if piece == ".." {
		return errors.Newf("relative path segment %q not allowed", piece)
	}
	if idxs := badChars.FindStringIndex(piece); len(idxs) > 0 {
		return errors.Newf("bad char %q in path component", piece[idxs[0]:idxs[1]])
	}
	return nil
}

// CheckPath returns nil iff p is a normalized logical path: one or more
// '/'-separated components, none of them empty, ".", ".." or containing
// characters which are unsafe on common filesystems.
func CheckPath(p string) error {
	if p == "" {
		return errors.New("empty path")
	}
	for i, piece := range strings.Split(p, "/") {
		if err := checkPathPiece(piece); err != nil {
			return errors.Wrapf(err, "path component %d", i)
		}
	}
	return nil
}

// JoinPath joins dir and name into a normalized logical path.
//
// Both arguments may use either '/' or '\' as a separator. Empty and "."
// components are dropped, so "", "./", "a//b/" are all tolerated; ".." is an
// error, as is a result with no components.
func JoinPath(dir, name string) (string, error) {
	pieces := make([]string, 0, 8)
	for _, part := range []string{dir, name} {
		part = strings.ReplaceAll(part, "\\", "/")
		for _, piece := range strings.Split(part, "/") {
			if piece == "" || piece == "." {
				continue
			}
			pieces = append(pieces, piece)
		}
	}
	ret := strings.Join(pieces, "/")
	if err := CheckPath(ret); err != nil {
		return "", errors.Wrapf(err, "joining %q and %q", dir, name)
	}
	return ret, nil
}
