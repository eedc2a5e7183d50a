// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package rpkdata

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"

	"github.com/cockroachdb/errors"
)

// DigestScheme selects the hash used to fingerprint extracted file contents.
// Digests are not stored in the archive; they let tools compare an archive
// against a source tree or a previous build.
type DigestScheme byte

// These are the available digest algorithms.
const (
	DigestBLAKE2b256 DigestScheme = iota + 1
	DigestSHA2_256
	DigestSHA3_256
)

// Valid returns nil iff the DigestScheme is valid.
func (d DigestScheme) Valid() error {
	switch d {
	case DigestBLAKE2b256, DigestSHA2_256, DigestSHA3_256:
		return nil
	}
	return errors.Newf("unknown digest scheme 0x%x", byte(d))
}

func (d DigestScheme) String() string {
	switch d {
	case DigestBLAKE2b256:
		return "blake2b-256"
	case DigestSHA2_256:
		return "sha2-256"
	case DigestSHA3_256:
		return "sha3-256"
	}
	return fmt.Sprintf("DigestScheme(%d)", byte(d))
}

// ParseDigestScheme parses the String form of a DigestScheme.
func ParseDigestScheme(name string) (DigestScheme, error) {
	for _, d := range []DigestScheme{DigestBLAKE2b256, DigestSHA2_256, DigestSHA3_256} {
		if d.String() == name {
			return d, nil
		}
	}
	return 0, errors.Newf("unknown digest scheme %q", name)
}

// Hash returns a new hash.Hash for this scheme.
func (d DigestScheme) Hash() hash.Hash {
	switch d {
	case DigestBLAKE2b256:
		h, err := blake2b.New256(nil)
		if err != nil {
			panic(err)
		}
		return h
	case DigestSHA2_256:
		return sha256.New()
	case DigestSHA3_256:
		return sha3.New256()
	}
	panic(d.Valid())
}

// Digest is the hash of one file's contents.
type Digest struct {
	Scheme DigestScheme
	Sum    []byte
}

// Sum computes the digest of data.
func (d DigestScheme) Sum(data []byte) Digest {
	h := d.Hash()
	h.Write(data)
	return Digest{Scheme: d, Sum: h.Sum(nil)}
}

func (d Digest) String() string {
	return d.Scheme.String() + ":" + hex.EncodeToString(d.Sum)
}
