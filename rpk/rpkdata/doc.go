// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package rpkdata implements IO routines for reading and writing the pieces of
// the respack format: the header, the sentinels, stream frames, the index
// region and the packed resource version.
package rpkdata
