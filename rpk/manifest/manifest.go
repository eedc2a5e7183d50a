// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package manifest describes a pack job in YAML:
//
//	version: "3.14.1"
//	exclude: ["**/*.tmp"]
//	follow_symlinks: false
//	sources:
//	  - path: assets/textures
//	    dest: textures
//	  - path: README.txt
//
// Relative source paths are resolved against the directory holding the
// manifest.
package manifest

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/riannucci/respack/rpk"
	"github.com/riannucci/respack/rpk/rpkdata"
)

// Source is one file or directory to pack.
type Source struct {
	// Path is the file or directory on disk.
	Path string `yaml:"path"`

	// Dest is the logical directory the source is stored under. Empty means
	// the archive root.
	Dest string `yaml:"dest,omitempty"`
}

// Manifest is a parsed pack job.
type Manifest struct {
	Version        string   `yaml:"version,omitempty"`
	Exclude        []string `yaml:"exclude,omitempty"`
	FollowSymlinks bool     `yaml:"follow_symlinks,omitempty"`
	Sources        []Source `yaml:"sources"`
}

// Load reads, parses and validates the manifest at path, resolving relative
// source paths against its directory.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading manifest")
	}
	m, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "manifest %q", path)
	}
	base := filepath.Dir(path)
	for i := range m.Sources {
		if !filepath.IsAbs(m.Sources[i].Path) {
			m.Sources[i].Path = filepath.Join(base, m.Sources[i].Path)
		}
	}
	return m, nil
}

// Parse parses and validates a manifest. Unknown fields are an error.
func Parse(data []byte) (*Manifest, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	m := &Manifest{}
	if err := dec.Decode(m); err != nil {
		if err == io.EOF {
			return nil, errors.New("empty manifest")
		}
		return nil, errors.Wrap(err, "parsing manifest")
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks that the manifest names at least one source and that the
// version and exclude patterns are well formed.
func (m *Manifest) Validate() error {
	if len(m.Sources) == 0 {
		return errors.New("no sources")
	}
	for i, s := range m.Sources {
		if s.Path == "" {
			return errors.Newf("source %d has no path", i)
		}
	}
	if m.Version != "" {
		if _, err := rpkdata.ParseVersion(m.Version); err != nil {
			return err
		}
	}
	for _, pat := range m.Exclude {
		if !doublestar.ValidatePattern(pat) {
			return errors.Wrapf(doublestar.ErrBadPattern, "exclude pattern %q", pat)
		}
	}
	return nil
}

// Options returns the Archive options the manifest implies.
func (m *Manifest) Options() []rpk.Option {
	ret := []rpk.Option{rpk.WithExclude(m.Exclude...)}
	if m.FollowSymlinks {
		ret = append(ret, rpk.WithSymlinks(rpk.SymlinkFollowFiles))
	}
	return ret
}

// Apply sets the version and adds every source to a, which must be open for
// writing. Directories are added with AddDir, anything else with AddFile.
// The first failure aborts.
func (m *Manifest) Apply(a *rpk.Archive) error {
	if m.Version != "" {
		if err := a.SetVersion(m.Version); err != nil {
			return err
		}
	}
	for _, s := range m.Sources {
		st, err := os.Stat(s.Path)
		if err != nil {
			return errors.Wrap(err, "reading source")
		}
		if st.IsDir() {
			err = a.AddDir(s.Path, s.Dest)
		} else {
			err = a.AddFile(s.Path, s.Dest)
		}
		if err != nil {
			return errors.Wrapf(err, "adding source %q", s.Path)
		}
	}
	return nil
}
