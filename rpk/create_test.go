// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package rpk

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"

	. "github.com/smartystreets/goconvey/convey"
)

func names(a *Archive) []string {
	ret := []string{}
	for _, e := range a.Entries() {
		ret = append(ret, e.Name)
	}
	return ret
}

func TestCreate(t *testing.T) {
	t.Parallel()

	Convey("Writing", t, func() {
		dir := t.TempDir()
		src := filepath.Join(dir, "src")
		path := filepath.Join(dir, "out.rpk")
		writeTree(src, map[string]string{
			"readme.txt":            "hello",
			"img/logo.png":          "\x89PNG\r\n\x1a\n",
			"img/icons/a.ico":       "aaaaaaaaaaaaaaaaaaaaaaab",
			"levels/1/map.dat":      "",
			"levels/1/notes.tmp":    "scratch",
			"levels/2/map.dat":      "zz",
			"skip/everything/x.txt": "x",
		})

		opts := []Option(nil)
		var a *Archive
		open := func() {
			var err error
			a, err = New(opts...)
			So(err, ShouldBeNil)
			So(a.Open(path, ModeWrite), ShouldBeNil)
		}
		Reset(func() {
			if a != nil {
				a.Close()
			}
		})

		Convey("AddDir", func() {
			open()
			So(a.AddDir(src, "res"), ShouldBeNil)
			So(names(a), ShouldResemble, []string{
				"res/img/icons/a.ico",
				"res/img/logo.png",
				"res/levels/1/map.dat",
				"res/levels/1/notes.tmp",
				"res/levels/2/map.dat",
				"res/readme.txt",
				"res/skip/everything/x.txt",
			})
			So(a.Close(), ShouldBeNil)
		})

		Convey("AddDir with excludes", func() {
			opts = append(opts, WithExclude("**/*.tmp", "skip"))
			open()
			So(a.AddDir(src, ""), ShouldBeNil)
			So(names(a), ShouldResemble, []string{
				"img/icons/a.ico",
				"img/logo.png",
				"levels/1/map.dat",
				"levels/2/map.dat",
				"readme.txt",
			})
			So(a.Close(), ShouldBeNil)
		})

		Convey("AddDir on a file", func() {
			open()
			err := a.AddDir(filepath.Join(src, "readme.txt"), "")
			So(err.Error(), ShouldContainSubstring, "not a directory")
			So(a.Close(), ShouldBeNil)
		})

		Convey("AddDir aborts on the first conflict", func() {
			open()
			So(a.AddStream([]byte("mine"), "img/logo.png", ""), ShouldBeNil)
			err := a.AddDir(src, "")
			So(errors.Is(err, ErrConflict), ShouldBeTrue)
			So(names(a), ShouldResemble, []string{"img/icons/a.ico", "img/logo.png"})
		})

		Convey("AddFile", func() {
			open()
			So(a.AddFile(filepath.Join(src, "img", "logo.png"), "gfx"), ShouldBeNil)
			So(a.FileExist("gfx/logo.png"), ShouldBeTrue)

			Convey("rejects duplicates", func() {
				err := a.AddFile(filepath.Join(src, "img", "logo.png"), "gfx")
				So(errors.Is(err, ErrConflict), ShouldBeTrue)
			})

			Convey("reports missing files", func() {
				err := a.AddFile(filepath.Join(src, "nope"), "")
				So(errors.Is(err, os.ErrNotExist), ShouldBeTrue)
				So(a.FileExist("nope"), ShouldBeFalse)
			})
		})

		Convey("duplicate streams keep the first", func() {
			open()
			So(a.AddStream([]byte("first"), "b.txt", "a"), ShouldBeNil)
			err := a.AddStream([]byte("second"), "a/b.txt", "")
			So(errors.Is(err, ErrConflict), ShouldBeTrue)
			So(a.Close(), ShouldBeNil)

			So(a.Open(path, ModeRead), ShouldBeNil)
			So(len(a.Entries()), ShouldEqual, 1)
			data, err := a.GetFileStream("a/b.txt")
			So(err, ShouldBeNil)
			So(string(data), ShouldEqual, "first")
			So(a.Close(), ShouldBeNil)
		})

		Convey("a file cannot also be a directory", func() {
			open()
			So(a.AddStream([]byte("x"), "a", ""), ShouldBeNil)
			err := a.AddStream([]byte("y"), "b", "a")
			So(errors.Is(err, ErrConflict), ShouldBeTrue)

			So(a.AddStream([]byte("z"), "d", "c"), ShouldBeNil)
			err = a.AddStream([]byte("w"), "c", "")
			So(errors.Is(err, ErrConflict), ShouldBeTrue)
			So(a.Close(), ShouldBeNil)

			So(a.Open(path, ModeRead), ShouldBeNil)
			So(names(a), ShouldResemble, []string{"a", "c/d"})
			So(a.Extract(filepath.Join(dir, "out")), ShouldBeNil)
			So(a.Close(), ShouldBeNil)
		})

		Convey("bad logical paths", func() {
			open()
			for _, bad := range []string{"", "../x", "a/../../x", "bad:name", "q?"} {
				So(a.AddStream([]byte("x"), bad, ""), ShouldNotBeNil)
			}
			So(a.AddStream([]byte("x"), "x", ".."), ShouldNotBeNil)
			So(a.Entries(), ShouldBeEmpty)
		})

		Convey("separators are normalized", func() {
			open()
			So(a.AddStream([]byte("x"), `c\d.txt`, `a\b\`), ShouldBeNil)
			So(a.FileExist("a/b/c/d.txt"), ShouldBeTrue)
		})

		Convey("case safety", func() {
			opts = append(opts, WithCaseSafe(true))
			open()
			So(a.AddStream([]byte("x"), "Readme", ""), ShouldBeNil)
			err := a.AddStream([]byte("y"), "README", "")
			So(errors.Is(err, ErrConflict), ShouldBeTrue)
			So(names(a), ShouldResemble, []string{"Readme"})
		})

		Convey("symlinks", func() {
			target := filepath.Join(src, "readme.txt")
			if err := os.Symlink(target, filepath.Join(src, "link.txt")); err != nil {
				SkipSo(err, ShouldBeNil)
				return
			}
			must(os.Symlink(filepath.Join(src, "img"), filepath.Join(src, "linkdir")))
			must(os.Symlink(filepath.Join(src, "dangling"), filepath.Join(src, "broken")))
			// a cycle which would recurse forever if followed
			must(os.Symlink(src, filepath.Join(src, "img", "loop")))

			Convey("are skipped by default", func() {
				open()
				So(a.AddDir(src, ""), ShouldBeNil)
				So(a.FileExist("link.txt"), ShouldBeFalse)
				So(a.FileExist("linkdir/logo.png"), ShouldBeFalse)
				So(len(a.Entries()), ShouldEqual, 7)
			})

			Convey("file targets can be followed", func() {
				opts = append(opts, WithSymlinks(SymlinkFollowFiles))
				open()
				So(a.AddDir(src, ""), ShouldBeNil)
				So(a.FileExist("link.txt"), ShouldBeTrue)
				So(a.FileExist("linkdir/logo.png"), ShouldBeFalse)
				So(a.FileExist("broken"), ShouldBeFalse)
				So(len(a.Entries()), ShouldEqual, 8)
				So(a.Close(), ShouldBeNil)

				So(a.Open(path, ModeRead), ShouldBeNil)
				data, err := a.GetFileStream("link.txt")
				So(err, ShouldBeNil)
				So(string(data), ShouldEqual, "hello")
				So(a.Close(), ShouldBeNil)
			})
		})
	})
}
