// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package rpk

import (
	"io/fs"
	"os"
	"path/filepath"
)

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// writeTree creates files (relative '/'-separated path -> contents) below
// root.
func writeTree(root string, files map[string]string) {
	for rel, data := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		must(os.MkdirAll(filepath.Dir(p), 0755))
		must(os.WriteFile(p, []byte(data), 0644))
	}
}

// readTree returns every regular file below root, keyed by '/'-separated
// relative path.
func readTree(root string) map[string]string {
	ret := map[string]string{}
	must(filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil || !d.Type().IsRegular() {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		ret[filepath.ToSlash(rel)] = string(data)
		return nil
	}))
	return ret
}

func flipByte(path string, off int64) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	must(err)
	defer f.Close()
	var b [1]byte
	_, err = f.ReadAt(b[:], off)
	must(err)
	b[0] ^= 0xff
	_, err = f.WriteAt(b[:], off)
	must(err)
}
