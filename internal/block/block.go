// Copyright 2026 The pcodecore Authors
// This file is part of pcodecore.

// Package block implements the basic block graph: blocks, edges,
// dominator computation, natural-loop structuring, and the edge/splice
// primitives that higher layers (heritage, merge) depend on.
package block

import (
	"fmt"

	"github.com/probechain/pcodecore/internal/pcodeop"
)

// Edge is one in/out edge slot. Reverse-index mirrors (In on the
// target, Out on the source) are kept consistent by the mutators below
// rather than recomputed, per spec.md §4.4's edge-move/switch/remove
// operations.
type Edge struct {
	Block  *BasicBlock
	Label  int // predIndex / succIndex on the far side, for phi alignment
}

// BasicBlock is a straight-line run of PcodeOps with a terminator edge
// set (spec.md §3.5 / §4.4).
type BasicBlock struct {
	index int

	ops []*pcodeop.PcodeOp

	In  []Edge
	Out []Edge

	// Structuring state, recomputed by structureReset's pipeline.
	immedDom   *BasicBlock
	domChildren []*BasicBlock
	domPreorder int
	domPostorder int

	loopHeader bool
	loopDepth  int
	inLoop     *Loop

	visited bool // scratch flag reused by DFS passes
}

// Index implements pcodeop.Block.
func (b *BasicBlock) Index() int { return b.index }

// Ops returns the block's op list in program order.
func (b *BasicBlock) Ops() []*pcodeop.PcodeOp { return b.ops }

// AppendOp appends op to the block's op list and sets op's parent to b.
// It does not mark op alive; the caller does that with its bank's
// MarkAlive.
func (b *BasicBlock) AppendOp(op *pcodeop.PcodeOp) {
	op.SetParent(b)
	b.ops = append(b.ops, op)
}

// RemoveOp splices op out of the block's op list without destroying it.
func (b *BasicBlock) RemoveOp(op *pcodeop.PcodeOp) {
	for i, cur := range b.ops {
		if cur == op {
			b.ops = append(b.ops[:i], b.ops[i+1:]...)
			op.SetParent(nil)
			return
		}
	}
}

// Phis returns the leading MULTIEQUAL ops, which by convention sit at
// the head of the block's op list.
func (b *BasicBlock) Phis() []*pcodeop.PcodeOp {
	var out []*pcodeop.PcodeOp
	for _, op := range b.ops {
		if !op.IsPhi() {
			break
		}
		out = append(out, op)
	}
	return out
}

// ImmedDom returns the block's immediate dominator, or nil if
// unreachable or not yet computed.
func (b *BasicBlock) ImmedDom() *BasicBlock { return b.immedDom }

// DomChildren returns the block's children in the dominator tree.
func (b *BasicBlock) DomChildren() []*BasicBlock { return b.domChildren }

// LoopHeader reports whether structureLoops marked b as a natural loop header.
func (b *BasicBlock) LoopHeader() bool { return b.loopHeader }

// LoopDepth reports the natural-loop nesting depth computed by structureLoops.
func (b *BasicBlock) LoopDepth() int { return b.loopDepth }

// PredIndex returns the index of from within b's In edge list, used to
// align phi inputs with predecessor order (spec.md §4.4/§4.5).
func (b *BasicBlock) PredIndex(from *BasicBlock) int {
	return b.predIndex(from)
}

func (b *BasicBlock) predIndex(from *BasicBlock) int {
	for i, e := range b.In {
		if e.Block == from {
			return i
		}
	}
	return -1
}

func (b *BasicBlock) String() string { return fmt.Sprintf("block%d", b.index) }
