// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package respack implements a resource pack format: a single file holding
// many independently retrievable files, each compressed on its own with a
// static Huffman code, and addressed by a logical path such as
// "textures/wall.png".
//
// Unlike a 'solid' archive, any one file can be read without touching the
// others. The index is read eagerly when the archive is opened, and a lookup
// costs one read of the file's frame.
//
// It has a fairly basic format. All integers are little-endian.
//   - header: uint64 absolute offset of the index region
//   - one frame per file: stream_head + huffman_block + padding + stream_tail
//   - index region: index_head + length + version + entries + padding +
//     index_tail
//
// Every frame and the index region start on an 8 byte boundary, and padding
// is always zero. The four 64-bit sentinels are distinct, so a reader detects
// both damaged frames and a header which does not point at an index.
//
// huffman_block is the file's frequency table followed by a bit count and the
// LSB-first packed codes; see package rpk/huffman.
//
// Each index entry is a length-prefixed logical path followed by the offset
// and total size of its frame. The version is 1-4 groups of 0-99 packed one
// per byte; see rpkdata.Version.
//
// The format does not record file modes, owners or timestamps. Extraction
// writes plain files and directories.
//
// Package rpk holds the Archive handle used to write and read archives, and
// cmd/respack is a command line tool built on it.
package respack
