// Copyright 2026 The pcodecore Authors
// This file is part of pcodecore.

package jumptable

import (
	"errors"

	"github.com/probechain/pcodecore/internal/block"
	"github.com/probechain/pcodecore/internal/pcodeop"
	"github.com/probechain/pcodecore/internal/varnode"
)

// ErrBranchindNotFound is returned by StageJumpTable when branchind is
// not in the op list of any block of the supplied graph (it belongs to
// a different function, or was already unlinked).
var ErrBranchindNotFound = errors.New("jumptable: BRANCHIND not found in staged clone")

// StageJumpTable clones orig's already-generated flow (blocks, edges,
// and ops -- pre-heritage, so no SSA or dominator state needs copying)
// into a fresh bank/graph triple, so the jumptable action group can run
// against the clone without mutating the function under analysis. It
// returns the clone graph and the clone's counterpart of branchind.
func StageJumpTable(orig *block.Graph, branchind *pcodeop.PcodeOp) (*block.Graph, *pcodeop.PcodeOp, error) {
	cloneVB := varnode.NewBank()
	cloneOB := pcodeop.NewBank(cloneVB)
	cloneGraph := block.NewGraph()

	blockMap := make(map[*block.BasicBlock]*block.BasicBlock, len(orig.Blocks()))
	for _, b := range orig.Blocks() {
		blockMap[b] = cloneGraph.NewBlock()
	}
	if orig.Root() != nil {
		cloneGraph.SetRoot(blockMap[orig.Root()])
	}
	for _, b := range orig.Blocks() {
		for _, e := range b.Out {
			cloneGraph.AddEdge(blockMap[b], blockMap[e.Block])
		}
	}

	vnMemo := make(map[*varnode.Varnode]*varnode.Varnode)
	cloneVn := func(vn *varnode.Varnode) *varnode.Varnode {
		if vn == nil {
			return nil
		}
		if c, ok := vnMemo[vn]; ok {
			return c
		}
		c := cloneVB.Create(vn.Space, vn.Offset, vn.Size)
		c.SetFlags(vn.Flags())
		vnMemo[vn] = c
		return c
	}

	var counterpart *pcodeop.PcodeOp
	for _, b := range orig.Blocks() {
		cb := blockMap[b]
		for _, op := range b.Ops() {
			cop := cloneOB.NewOp(op.NumInputs(), op.Seq, op.Opcode)
			for i := 0; i < op.NumInputs(); i++ {
				cop.OpSetInput(cloneVn(op.Input(i)), i)
			}
			if op.Output() != nil {
				if err := cop.OpSetOutput(cloneVn(op.Output()), cloneVB); err != nil {
					return nil, nil, err
				}
			}
			cb.AppendOp(cop)
			cloneOB.MarkAlive(cop)
			if op == branchind {
				counterpart = cop
			}
		}
	}
	if counterpart == nil {
		return nil, nil, ErrBranchindNotFound
	}
	return cloneGraph, counterpart, nil
}
