// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package rpk

import (
	"fmt"
	"log/slog"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cockroachdb/errors"

	"github.com/riannucci/respack/rpk/rpkdata"
)

// SymlinkPolicy controls how AddDir treats symbolic links. Symlinks are
// never descended, whatever the policy.
type SymlinkPolicy int

// Valid values of SymlinkPolicy
const (
	// Symlinks are skipped with a warning.
	SymlinkSkip SymlinkPolicy = iota

	// Symlinks to regular files are stored as copies of their target. Any
	// other symlink is skipped with a warning.
	SymlinkFollowFiles
)

// Valid returns nil iff the SymlinkPolicy is valid.
func (s SymlinkPolicy) Valid() error {
	switch s {
	case SymlinkSkip, SymlinkFollowFiles:
		return nil
	}
	return errors.Newf("unknown symlink policy %d", int(s))
}

func (s SymlinkPolicy) String() string {
	switch s {
	case SymlinkSkip:
		return "skip"
	case SymlinkFollowFiles:
		return "follow-files"
	}
	return fmt.Sprintf("SymlinkPolicy(%d)", int(s))
}

type optionData struct {
	log      *slog.Logger
	exclude  []string
	symlinks SymlinkPolicy
	caseSafe bool
	digest   rpkdata.DigestScheme
}

func (o *optionData) valid() error {
	if err := o.symlinks.Valid(); err != nil {
		return err
	}
	if err := o.digest.Valid(); err != nil {
		return err
	}
	for _, pat := range o.exclude {
		if !doublestar.ValidatePattern(pat) {
			return errors.Wrapf(doublestar.ErrBadPattern, "exclude pattern %q", pat)
		}
	}
	return nil
}

// Option functions can be supplied to New.
type Option func(*optionData)

// WithLogger directs warnings and progress messages to log. By default they
// are discarded.
func WithLogger(log *slog.Logger) Option {
	return func(o *optionData) {
		o.log = log
	}
}

// WithExclude adds doublestar glob patterns (e.g. "**/*.tmp"). AddDir skips
// every file and directory whose logical path matches one of them.
func WithExclude(patterns ...string) Option {
	return func(o *optionData) {
		o.exclude = append(o.exclude, patterns...)
	}
}

// WithSymlinks sets the SymlinkPolicy used by AddDir. The default is
// SymlinkSkip.
func WithSymlinks(p SymlinkPolicy) Option {
	return func(o *optionData) {
		o.symlinks = p
	}
}

// WithCaseSafe makes the writer reject logical paths which differ from an
// existing one only in case.
func WithCaseSafe(val bool) Option {
	return func(o *optionData) {
		o.caseSafe = val
	}
}

// WithDigest selects the hash used by Verify. The default is
// DigestBLAKE2b256.
func WithDigest(d rpkdata.DigestScheme) Option {
	return func(o *optionData) {
		o.digest = d
	}
}
