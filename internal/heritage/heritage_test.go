// Copyright 2026 The pcodecore Authors
// This file is part of pcodecore.

package heritage

import (
	"testing"

	"github.com/probechain/pcodecore/internal/block"
	"github.com/probechain/pcodecore/internal/pcodeop"
	"github.com/probechain/pcodecore/internal/space"
	"github.com/probechain/pcodecore/internal/varnode"
)

func testStackSpace() *space.AddrSpace {
	return &space.AddrSpace{Name: "stack", Index: 2, AddrSize: 8}
}

func seqAt(sp *space.AddrSpace, off uint64, t uint64) pcodeop.SeqNum {
	return pcodeop.SeqNum{Addr: space.Address{Space: sp, Offset: off}, Time: t}
}

// TestHeritagePhiInsertionAndRename builds a diamond CFG where both
// branches may redefine a stack slot and a join-block read must be
// heritaged into a phi fed by each branch's reaching definition.
func TestHeritagePhiInsertionAndRename(t *testing.T) {
	ramSp := &space.AddrSpace{Name: "ram", Index: 1, AddrSize: 8}
	stackSp := testStackSpace()

	vb := varnode.NewBank()
	ob := pcodeop.NewBank(vb)
	g := block.NewGraph()

	entry := g.NewBlock()
	left := g.NewBlock()
	right := g.NewBlock()
	join := g.NewBlock()
	g.AddEdge(entry, left)
	g.AddEdge(entry, right)
	g.AddEdge(left, join)
	g.AddEdge(right, join)
	g.StructureReset()

	// entry: v1 = COPY #1   (defines the stack slot)
	v1 := vb.Create(stackSp, 0x20, 4)
	defEntry := ob.NewOp(1, seqAt(ramSp, 0x100, 1), pcodeop.COPY)
	if err := defEntry.OpSetOutput(v1, vb); err != nil {
		t.Fatalf("OpSetOutput: %v", err)
	}
	entry.AppendOp(defEntry)

	// left: v2 = COPY v1   (redefines the slot on this branch)
	v2 := vb.Create(stackSp, 0x20, 4)
	defLeft := ob.NewOp(1, seqAt(ramSp, 0x110, 1), pcodeop.COPY)
	defLeft.OpSetInput(v1, 0)
	if err := defLeft.OpSetOutput(v2, vb); err != nil {
		t.Fatalf("OpSetOutput: %v", err)
	}
	left.AppendOp(defLeft)

	// right: no redefinition.

	// join: use = COPY <raw slot read, pre-heritage>
	rawRead := vb.Create(stackSp, 0x20, 4)
	useOp := ob.NewOp(1, seqAt(ramSp, 0x120, 1), pcodeop.COPY)
	useOp.OpSetInput(rawRead, 0)
	join.AppendOp(useOp)

	h := New(g, vb, ob)
	h.Run(stackSp)

	phis := join.Phis()
	if len(phis) != 1 {
		t.Fatalf("expected exactly one phi installed at join, got %d", len(phis))
	}
	phi := phis[0]
	if phi.NumInputs() != 2 {
		t.Fatalf("expected phi with 2 inputs (one per predecessor), got %d", phi.NumInputs())
	}

	if useOp.Input(0) != phi.Output() {
		t.Errorf("join's use should have been rewired to read the phi's output, got %v", useOp.Input(0))
	}

	leftIdx := join.PredIndex(left)
	rightIdx := join.PredIndex(right)
	if phi.Input(leftIdx) != v2 {
		t.Errorf("phi's left-edge input should be left's redefinition v2, got %v", phi.Input(leftIdx))
	}
	if phi.Input(rightIdx) != v1 {
		t.Errorf("phi's right-edge input should be entry's v1 (unchanged on that path), got %v", phi.Input(rightIdx))
	}

	if h.PassCount(stackSp) != 1 {
		t.Errorf("expected pass count 1 after a single Run, got %d", h.PassCount(stackSp))
	}
	if h.DeadRemovalAllowed(stackSp) {
		t.Errorf("dead removal should not be allowed after only one pass")
	}
}

func TestHeritageGuardsAliasingLoadAfterIndirectStore(t *testing.T) {
	ramSp := &space.AddrSpace{Name: "ram", Index: 1, AddrSize: 8}
	heapSp := &space.AddrSpace{Name: "heap", Index: 3, AddrSize: 8}

	vb := varnode.NewBank()
	ob := pcodeop.NewBank(vb)
	g := block.NewGraph()
	b := g.NewBlock()
	g.StructureReset()

	spaceConst := vb.Create(ramSp, 0, 8)
	spaceConst.SetFlags(varnode.FlagConstant)
	dynAddr := vb.Create(ramSp, 0x40, 8) // not constant: a computed pointer

	store := ob.NewOp(3, seqAt(ramSp, 0x200, 1), pcodeop.STORE)
	store.OpSetInput(spaceConst, 0)
	store.OpSetInput(dynAddr, 1)
	b.AppendOp(store)

	load := ob.NewOp(2, seqAt(ramSp, 0x204, 1), pcodeop.LOAD)
	load.OpSetInput(spaceConst, 0)
	load.OpSetInput(dynAddr, 1)
	loadOut := vb.Create(heapSp, 0x1000, 8)
	if err := load.OpSetOutput(loadOut, vb); err != nil {
		t.Fatalf("OpSetOutput: %v", err)
	}
	b.AppendOp(load)

	h := New(g, vb, ob)
	h.Run(heapSp)

	guards := h.Guards()
	if len(guards) != 1 {
		t.Fatalf("expected one guard for the aliasing load, got %d", len(guards))
	}
	if guards[0].Load != load || guards[0].Store != store {
		t.Errorf("guard should pair the load with the preceding indirect store")
	}
}

func TestHeritageNoOpWithoutDefinitions(t *testing.T) {
	sp := &space.AddrSpace{Name: "stack", Index: 2, AddrSize: 8}
	vb := varnode.NewBank()
	ob := pcodeop.NewBank(vb)
	g := block.NewGraph()
	g.NewBlock()

	h := New(g, vb, ob)
	h.Run(sp) // no definitions anywhere in sp; must not panic or install phis
	if h.PassCount(sp) != 1 {
		t.Errorf("pass counter should still advance even on a no-op pass")
	}
}
