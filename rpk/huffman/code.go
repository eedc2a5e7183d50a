// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package huffman

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// MaxCodeLen is the longest code a CodeTable can hold.
const MaxCodeLen = 64

// Code is a sequence of Len bits. The first bit of the sequence (the edge
// taken from the root) is bit 0 of Bits.
type Code struct {
	Bits uint64
	Len  int
}

// Bit returns the i'th bit of the code.
func (c Code) Bit(i int) uint64 {
	return (c.Bits >> uint(i)) & 1
}

// HasPrefix returns true iff p is a prefix of c (or equal to it).
func (c Code) HasPrefix(p Code) bool {
	if p.Len > c.Len {
		return false
	}
	if p.Len == 0 {
		return true
	}
	mask := ^uint64(0) >> uint(MaxCodeLen-p.Len)
	return c.Bits&mask == p.Bits
}

func (c Code) String() string {
	sb := strings.Builder{}
	for i := 0; i < c.Len; i++ {
		fmt.Fprintf(&sb, "%d", c.Bit(i))
	}
	return sb.String()
}

// CodeTable maps symbols to their codes. Symbols absent from the tree have a
// zero-length code.
type CodeTable [256]Code

// BuildCodeTable walks the tree breadth-first, appending a 0 bit for every
// left edge and a 1 bit for every right edge. A nil tree yields an empty
// table.
func BuildCodeTable(root Node) (*CodeTable, error) {
	ct := &CodeTable{}
	if root == nil {
		return ct, nil
	}

	type item struct {
		n    Node
		code Code
	}
	queue := []item{{n: root}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		switch n := cur.n.(type) {
		case *Internal:
			if cur.code.Len == MaxCodeLen {
				return nil, errors.AssertionFailedf("huffman tree deeper than %d", MaxCodeLen)
			}
			next := cur.code.Len + 1
			queue = append(queue,
				item{n.Left, Code{cur.code.Bits, next}},
				item{n.Right, Code{cur.code.Bits | 1<<uint(cur.code.Len), next}})

		case *Leaf:
			// The single-symbol placeholder shares symbol 0 but has no weight;
			// it must not shadow a real symbol 0.
			if n.Freq == 0 {
				continue
			}
			ct[n.Symbol] = cur.code

		default:
			panic(fmt.Sprintf("impossible node type %T", n))
		}
	}
	return ct, nil
}
