// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package huffman

import (
	"container/heap"
)

// Node is a node of a Huffman tree. It is either a *Leaf or an *Internal.
type Node interface {
	// Weight is the summed frequency of every leaf below (and including) this
	// node.
	Weight() uint64

	// symbol is the tie-break key used while building the tree. Leaves use
	// their own symbol, internal nodes inherit the symbol of their left child.
	symbol() byte
}

// Leaf holds a single symbol.
type Leaf struct {
	Symbol byte
	Freq   uint64
}

// Internal joins two subtrees. Left is reached with a 0 bit, Right with a 1
// bit.
type Internal struct {
	Left, Right Node

	weight uint64
	sym    byte
}

var (
	_ Node = (*Leaf)(nil)
	_ Node = (*Internal)(nil)
)

func (l *Leaf) Weight() uint64 { return l.Freq }
func (l *Leaf) symbol() byte   { return l.Symbol }

func (n *Internal) Weight() uint64 { return n.weight }
func (n *Internal) symbol() byte   { return n.sym }

func join(left, right Node) *Internal {
	return &Internal{
		Left:   left,
		Right:  right,
		weight: left.Weight() + right.Weight(),
		sym:    left.symbol(),
	}
}

// nodeQueue is a min-heap ordered by (weight, symbol).
type nodeQueue []Node

func (q nodeQueue) Len() int { return len(q) }
func (q nodeQueue) Less(i, j int) bool {
	if wi, wj := q[i].Weight(), q[j].Weight(); wi != wj {
		return wi < wj
	}
	return q[i].symbol() < q[j].symbol()
}
func (q nodeQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *nodeQueue) Push(x any)   { *q = append(*q, x.(Node)) }
func (q *nodeQueue) Pop() any {
	old := *q
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*q = old[:len(old)-1]
	return n
}

// BuildTree builds the Huffman tree for ft.
//
// The two lowest nodes are repeatedly merged, the first one popped becoming
// the left child. Ties on weight go to the lower symbol. Every leaf symbol is
// unique and merged nodes take a symbol from a disjoint subtree, so the order
// is total and the same table always yields the same tree.
//
// An empty table returns nil. A table with one symbol returns a root whose
// right child is a zero-weight placeholder for symbol 0, so that the real
// symbol still gets a 1-bit code.
func BuildTree(ft *FrequencyTable) Node {
	q := make(nodeQueue, 0, 256)
	for sym, c := range ft {
		if c != 0 {
			q = append(q, &Leaf{Symbol: byte(sym), Freq: c})
		}
	}

	switch len(q) {
	case 0:
		return nil
	case 1:
		return join(q[0], &Leaf{})
	}

	heap.Init(&q)
	for q.Len() > 1 {
		left := heap.Pop(&q).(Node)
		right := heap.Pop(&q).(Node)
		heap.Push(&q, join(left, right))
	}
	return q[0]
}
