// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package huffman implements the static, single-symbol Huffman coder used for
// every file stored in a respack archive.
//
// Only the frequency table is stored with the encoded data. The tree is
// rebuilt from it on decode, so BuildTree must stay deterministic: changing
// its merge order breaks every existing archive.
package huffman
