// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// respack builds, lists, checks and extracts resource pack archives.
//
//	respack -c VERSION SRC_DIR OUT_FILE   pack a directory
//	respack --manifest FILE OUT_FILE      pack the sources named by a manifest
//	respack -x ARCHIVE DEST_DIR           extract everything
//	respack -l ARCHIVE                    list entries
//	respack -t ARCHIVE                    decode everything and print digests
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"github.com/riannucci/respack/rpk"
	"github.com/riannucci/respack/rpk/manifest"
	"github.com/riannucci/respack/rpk/rpkdata"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type flags struct {
	create         string
	extract        bool
	list           bool
	test           bool
	manifest       string
	exclude        []string
	followSymlinks bool
	caseSafe       bool
	digest         string
	verbose        bool
}

func (f *flags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.create, "create", "c", "", "pack SRC_DIR into OUT_FILE, stamped with `VERSION`")
	fs.BoolVarP(&f.extract, "extract", "x", false, "extract ARCHIVE into DEST_DIR")
	fs.BoolVarP(&f.list, "list", "l", false, "list the entries of ARCHIVE")
	fs.BoolVarP(&f.test, "test", "t", false, "decode every entry of ARCHIVE and print its digest")
	fs.StringVar(&f.manifest, "manifest", "", "pack the sources listed in the YAML manifest `FILE` into OUT_FILE")
	fs.StringArrayVar(&f.exclude, "exclude", nil, "skip files matching `GLOB` when packing (repeatable)")
	fs.BoolVar(&f.followSymlinks, "follow-symlinks", false, "store symlinked files instead of skipping them")
	fs.BoolVar(&f.caseSafe, "case-safe", false, "reject names which differ only in case")
	fs.StringVar(&f.digest, "digest", rpkdata.DigestBLAKE2b256.String(), "digest used by --test")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "log every file")
}

func run(args []string, stdout, stderr io.Writer) error {
	var f flags
	fs := pflag.NewFlagSet("respack", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	f.register(fs)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage:\n"+
			"  respack -c VERSION SRC_DIR OUT_FILE\n"+
			"  respack --manifest FILE OUT_FILE\n"+
			"  respack -x ARCHIVE DEST_DIR\n"+
			"  respack -l ARCHIVE\n"+
			"  respack -t ARCHIVE\n\n"+
			"Flags:\n%s", fs.FlagUsages())
	}
	if err := fs.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	level := slog.LevelInfo
	if f.verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	mode, err := f.mode(fs)
	if err != nil {
		fs.Usage()
		return err
	}
	opts, err := f.options(log)
	if err != nil {
		return err
	}

	start := time.Now()
	var m *manifest.Manifest
	if mode == "manifest" {
		if m, err = manifest.Load(f.manifest); err != nil {
			return err
		}
		// the manifest's own settings extend the command line ones
		opts = append(opts, m.Options()...)
	}
	a, err := rpk.New(opts...)
	if err != nil {
		return err
	}

	switch mode {
	case "create":
		err = create(a, f.create, fs.Args())
	case "manifest":
		err = packManifest(a, m, fs.Args())
	case "extract":
		err = extract(a, stdout, fs.Args())
	case "list":
		err = list(a, stdout, fs.Args())
	case "test":
		err = test(a, stdout, fs.Args())
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(stderr, "done in %s\n", time.Since(start).Round(time.Millisecond))
	return nil
}

// mode returns the single action selected on the command line.
func (f *flags) mode(fs *pflag.FlagSet) (string, error) {
	var modes []string
	for _, m := range []string{"create", "manifest", "extract", "list", "test"} {
		if fs.Changed(m) {
			modes = append(modes, m)
		}
	}
	switch len(modes) {
	case 0:
		return "", errors.New("one of -c, --manifest, -x, -l or -t is required")
	case 1:
		return modes[0], nil
	}
	return "", errors.Newf("conflicting actions %q", modes)
}

func (f *flags) options(log *slog.Logger) ([]rpk.Option, error) {
	digest, err := rpkdata.ParseDigestScheme(f.digest)
	if err != nil {
		return nil, err
	}
	opts := []rpk.Option{
		rpk.WithLogger(log),
		rpk.WithExclude(f.exclude...),
		rpk.WithCaseSafe(f.caseSafe),
		rpk.WithDigest(digest),
	}
	if f.followSymlinks {
		opts = append(opts, rpk.WithSymlinks(rpk.SymlinkFollowFiles))
	}
	return opts, nil
}

func wantArgs(args []string, names ...string) error {
	if len(args) != len(names) {
		return errors.Newf("expected arguments %q, got %d", names, len(args))
	}
	return nil
}

// closeErr closes a after a failed write session, so that the error which
// caused the failure is the one reported.
func closeErr(a *rpk.Archive, err error) error {
	if cerr := a.Close(); err == nil {
		err = cerr
	}
	return err
}

func create(a *rpk.Archive, version string, args []string) error {
	if err := wantArgs(args, "SRC_DIR", "OUT_FILE"); err != nil {
		return err
	}
	if err := a.Open(args[1], rpk.ModeWrite); err != nil {
		return err
	}
	// an invalid version is logged and the archive is still written
	_ = a.SetVersion(version)
	return closeErr(a, a.AddDir(args[0], ""))
}

func packManifest(a *rpk.Archive, m *manifest.Manifest, args []string) error {
	if err := wantArgs(args, "OUT_FILE"); err != nil {
		return err
	}
	if err := a.Open(args[0], rpk.ModeWrite); err != nil {
		return err
	}
	return closeErr(a, m.Apply(a))
}

func extract(a *rpk.Archive, out io.Writer, args []string) error {
	if err := wantArgs(args, "ARCHIVE", "DEST_DIR"); err != nil {
		return err
	}
	if err := a.Open(args[0], rpk.ModeRead); err != nil {
		return err
	}
	defer a.Close()
	fmt.Fprintf(out, "Resource Version: %s\n", versionOrNone(a))
	return a.Extract(args[1])
}

func versionOrNone(a *rpk.Archive) string {
	if v := a.GetVersion(); v != "" {
		return v
	}
	return "none"
}

func list(a *rpk.Archive, out io.Writer, args []string) error {
	if err := wantArgs(args, "ARCHIVE"); err != nil {
		return err
	}
	if err := a.Open(args[0], rpk.ModeRead); err != nil {
		return err
	}
	defer a.Close()

	var total uint64
	for _, e := range a.Entries() {
		fmt.Fprintf(out, "0x%08x %10s  %s\n", e.Offset, humanize.IBytes(e.Size), e.Name)
		total += e.Size
	}
	fmt.Fprintf(out, "%d entries, %s of frames, version %s\n",
		len(a.Entries()), humanize.IBytes(total), versionOrNone(a))
	return nil
}

func test(a *rpk.Archive, out io.Writer, args []string) error {
	if err := wantArgs(args, "ARCHIVE"); err != nil {
		return err
	}
	if err := a.Open(args[0], rpk.ModeRead); err != nil {
		return err
	}
	defer a.Close()

	digests, err := a.Verify()
	if err != nil {
		return err
	}
	for _, d := range digests {
		fmt.Fprintf(out, "%s  %s\n", d.Digest, d.Name)
	}
	return nil
}
