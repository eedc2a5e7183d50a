// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package rpk

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/riannucci/respack/rpk/rpkdata"
)

func TestUnpack(t *testing.T) {
	t.Parallel()

	Convey("Reading", t, func() {
		dir := t.TempDir()
		src := filepath.Join(dir, "src")
		path := filepath.Join(dir, "out.rpk")
		files := map[string]string{
			"readme.txt":         "hello",
			"img/logo.png":       "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR",
			"img/icons/a.ico":    strings.Repeat("a", 1000) + "b",
			"levels/1/map.dat":   "",
			"levels/2/map.dat":   "zz",
			"levels/2/blob.bin":  "\x01\x02\x05\x00\x20\x34",
			"deep/a/b/c/d/e.txt": "e",
		}
		writeTree(src, files)

		a, err := New()
		So(err, ShouldBeNil)
		So(a.Open(path, ModeWrite), ShouldBeNil)
		So(a.SetVersion("1.2"), ShouldBeNil)
		So(a.AddDir(src, ""), ShouldBeNil)
		So(a.Close(), ShouldBeNil)

		So(a.Open(path, ModeRead), ShouldBeNil)
		Reset(func() { a.Close() })

		Convey("Extract reproduces the tree", func() {
			out := filepath.Join(dir, "out")
			So(a.Extract(out), ShouldBeNil)
			So(readTree(out), ShouldResemble, files)
		})

		Convey("Extract over an existing tree", func() {
			out := filepath.Join(dir, "out")
			writeTree(out, map[string]string{"readme.txt": "stale", "extra": "kept"})
			So(a.Extract(out), ShouldBeNil)
			got := readTree(out)
			So(got["readme.txt"], ShouldEqual, "hello")
			So(got["extra"], ShouldEqual, "kept")
		})

		Convey("Extract fails on a blocked path", func() {
			out := filepath.Join(dir, "out")
			// a file where a directory must go
			writeTree(out, map[string]string{"deep": "file"})
			So(a.Extract(out), ShouldNotBeNil)
		})

		Convey("GetFileStream", func() {
			for name, want := range files {
				data, err := a.GetFileStream(name)
				So(err, ShouldBeNil)
				So(string(data), ShouldEqual, want)
			}

			_, err := a.GetFileStream("nope")
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
			So(a.GetVersion(), ShouldEqual, "1.2")
		})

		Convey("temp files", func() {
			tmp, err := a.ExtractToTempFile("img/logo.png", filepath.Join(dir, "logo-"))
			So(err, ShouldBeNil)
			So(filepath.Dir(tmp), ShouldEqual, dir)
			So(filepath.Base(tmp), ShouldStartWith, "logo-")
			data, err := os.ReadFile(tmp)
			So(err, ShouldBeNil)
			So(string(data), ShouldEqual, files["img/logo.png"])

			other, err := a.ExtractToTempFile("img/logo.png", filepath.Join(dir, "logo-"))
			So(err, ShouldBeNil)
			So(other, ShouldNotEqual, tmp)

			So(DeleteTempFile(tmp), ShouldBeNil)
			So(DeleteTempFile(other), ShouldBeNil)
			_, err = os.Stat(tmp)
			So(errors.Is(err, os.ErrNotExist), ShouldBeTrue)
			So(DeleteTempFile(""), ShouldBeNil)

			_, err = a.ExtractToTempFile("nope", "")
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
		})

		Convey("Verify", func() {
			digests, err := a.Verify()
			So(err, ShouldBeNil)
			So(len(digests), ShouldEqual, len(files))
			for _, d := range digests {
				So(d.Digest, ShouldResemble, rpkdata.DigestBLAKE2b256.Sum([]byte(files[d.Name])))
			}
		})

		Convey("Verify with another scheme", func() {
			b, err := New(WithDigest(rpkdata.DigestSHA3_256))
			So(err, ShouldBeNil)
			So(b.Open(path, ModeRead), ShouldBeNil)
			digests, err := b.Verify()
			So(err, ShouldBeNil)
			So(digests[0].Digest.Scheme, ShouldEqual, rpkdata.DigestSHA3_256)
			So(b.Close(), ShouldBeNil)
		})

		Convey("Verify reports damaged frames", func() {
			e := a.Entries()[0]
			So(a.Close(), ShouldBeNil)
			// first byte of the payload's symbol count
			flipByte(path, int64(e.Offset)+rpkdata.SentinelSize)
			So(a.Open(path, ModeRead), ShouldBeNil)
			_, err := a.Verify()
			So(errors.Is(err, ErrFormat), ShouldBeTrue)
		})
	})
}
