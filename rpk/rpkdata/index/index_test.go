// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package index

import (
	"testing"

	"github.com/cockroachdb/errors"

	. "github.com/smartystreets/goconvey/convey"
)

func TestPaths(t *testing.T) {
	t.Parallel()

	Convey("JoinPath", t, func() {
		Convey("good", func() {
			for _, tc := range []struct{ dir, name, want string }{
				{"", "file.txt", "file.txt"},
				{"textures", "a.png", "textures/a.png"},
				{"textures/", "a.png", "textures/a.png"},
				{"./textures//ui", "a.png", "textures/ui/a.png"},
				{"/abs/dir", "f", "abs/dir/f"},
				{`win\style`, "f", "win/style/f"},
				{"", "sub/dir/f", "sub/dir/f"},
			} {
				got, err := JoinPath(tc.dir, tc.name)
				So(err, ShouldBeNil)
				So(got, ShouldEqual, tc.want)
			}
		})

		Convey("bad", func() {
			_, err := JoinPath("", "")
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "empty path")

			_, err = JoinPath("a/..", "f")
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "relative path segment")

			_, err = JoinPath("", "some|invalid")
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, `bad char "|"`)
		})
	})

	Convey("CheckPath", t, func() {
		So(CheckPath("a/b/c.txt"), ShouldBeNil)
		So(CheckPath("a//b"), ShouldNotBeNil)
		So(CheckPath("/a"), ShouldNotBeNil)
		So(CheckPath("a/./b"), ShouldNotBeNil)
		So(CheckPath("../a"), ShouldNotBeNil)
		So(CheckPath("a\\b"), ShouldNotBeNil)
		So(CheckPath("invalid:file").Error(), ShouldContainSubstring, `bad char ":"`)
	})
}

func TestIndex(t *testing.T) {
	t.Parallel()

	Convey("Index", t, func() {
		x := New(false)
		So(x.Add(Entry{Name: "b/file", Offset: 8, Size: 40}), ShouldBeNil)
		So(x.Add(Entry{Name: "a", Offset: 48, Size: 32}), ShouldBeNil)
		So(x.Add(Entry{Name: "c", Offset: 80, Size: 24}), ShouldBeNil)

		Convey("lookup", func() {
			So(x.Len(), ShouldEqual, 3)
			So(x.Has("a"), ShouldBeTrue)
			So(x.Has("b"), ShouldBeFalse)
			e, ok := x.Get("b/file")
			So(ok, ShouldBeTrue)
			So(e, ShouldResemble, Entry{Name: "b/file", Offset: 8, Size: 40})
		})

		Convey("ordering", func() {
			So(x.Names(), ShouldResemble, []string{"a", "b/file", "c"})
			So(x.Entries()[0].Offset, ShouldEqual, 48)
		})

		Convey("duplicate keeps the first entry", func() {
			err := x.Add(Entry{Name: "a", Offset: 1000, Size: 16})
			So(errors.Is(err, ErrDuplicate), ShouldBeTrue)
			e, _ := x.Get("a")
			So(e.Offset, ShouldEqual, 48)
			So(x.Len(), ShouldEqual, 3)
		})

		Convey("case", func() {
			So(x.Add(Entry{Name: "A", Offset: 104, Size: 16}), ShouldBeNil)

			safe := New(true)
			So(safe.Add(Entry{Name: "someFile"}), ShouldBeNil)
			err := safe.Add(Entry{Name: "SOMEFILE"})
			So(errors.Is(err, ErrDuplicate), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "only in case")
		})

		Convey("file and directory share a name", func() {
			err := x.Add(Entry{Name: "b", Offset: 104, Size: 16})
			So(errors.Is(err, ErrDuplicate), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "already a directory")

			err = x.Add(Entry{Name: "a/inner", Offset: 104, Size: 16})
			So(errors.Is(err, ErrDuplicate), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "below the file")

			err = x.Add(Entry{Name: "c/d/e", Offset: 104, Size: 16})
			So(errors.Is(err, ErrDuplicate), ShouldBeTrue)
			So(x.Len(), ShouldEqual, 3)

			// siblings sharing a prefix are fine
			So(x.Add(Entry{Name: "b/other", Offset: 104, Size: 16}), ShouldBeNil)
			So(x.Add(Entry{Name: "bb", Offset: 120, Size: 16}), ShouldBeNil)
			So(x.Add(Entry{Name: "a.txt", Offset: 136, Size: 16}), ShouldBeNil)

			Convey("ignoring case when case safe", func() {
				safe := New(true)
				So(safe.Add(Entry{Name: "Dir/file"}), ShouldBeNil)
				So(errors.Is(safe.Add(Entry{Name: "dir"}), ErrDuplicate), ShouldBeTrue)
				So(safe.Add(Entry{Name: "Top"}), ShouldBeNil)
				So(errors.Is(safe.Add(Entry{Name: "top/x"}), ErrDuplicate), ShouldBeTrue)
			})
		})

		Convey("invalid name", func() {
			So(x.Add(Entry{Name: "../escape"}), ShouldNotBeNil)
			So(x.Len(), ShouldEqual, 3)
		})

		Convey("LoopItems", func() {
			found := []string{}
			err := x.LoopItems(func(e Entry) error {
				found = append(found, e.Name)
				if e.Name == "b/file" {
					return errors.New("stop")
				}
				return nil
			})
			So(err.Error(), ShouldEqual, "stop")
			So(found, ShouldResemble, []string{"a", "b/file"})
		})
	})
}
