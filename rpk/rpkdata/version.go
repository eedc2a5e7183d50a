// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package rpkdata

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// Version is a packed resource version of one to four groups, each 0-99.
//
// Every group occupies one byte as 0x80|value, the last group in the lowest
// byte. Bytes without the 0x80 flag are unused, so the zero Version means
// "no version".
type Version uint32

const (
	maxVersionGroups = 4
	maxGroupValue    = 99
	groupFlag        = 0x80
)

// ParseVersion parses "g[.g[.g[.g]]]" where every g is one or more ASCII
// digits with a value of at most 99.
func ParseVersion(s string) (Version, error) {
	if s == "" {
		return 0, errors.New("empty version")
	}
	groups := strings.Split(s, ".")
	if len(groups) > maxVersionGroups {
		return 0, errors.Newf("version %q has %d groups, at most %d allowed",
			s, len(groups), maxVersionGroups)
	}

	var v Version
	for i, g := range groups {
		if g == "" {
			return 0, errors.Newf("version %q: group %d is empty", s, i)
		}
		val := 0
		for _, c := range []byte(g) {
			if c < '0' || c > '9' {
				return 0, errors.Newf("version %q: group %d has non-digit %q", s, i, c)
			}
			val = val*10 + int(c-'0')
			if val > maxGroupValue {
				return 0, errors.Newf("version %q: group %d exceeds %d", s, i, maxGroupValue)
			}
		}
		v = v<<8 | Version(groupFlag|val)
	}
	return v, nil
}

// Groups returns the version groups, most significant first.
func (v Version) Groups() []int {
	ret := make([]int, 0, maxVersionGroups)
	for shift := 24; shift >= 0; shift -= 8 {
		b := byte(v >> uint(shift))
		if b&groupFlag == 0 {
			continue
		}
		ret = append(ret, int(b&^groupFlag))
	}
	return ret
}

// String formats v as dot-separated groups. The zero Version formats as "".
func (v Version) String() string {
	groups := v.Groups()
	parts := make([]string, len(groups))
	for i, g := range groups {
		parts[i] = strconv.Itoa(g)
	}
	return strings.Join(parts, ".")
}
