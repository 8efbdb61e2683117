// Copyright 2026 The pcodecore Authors
// This file is part of pcodecore.

package funcdata

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/probechain/pcodecore/internal/pcodeop"
	"github.com/probechain/pcodecore/internal/space"
	"github.com/probechain/pcodecore/internal/varnode"
)

func testSpace() *space.AddrSpace { return &space.AddrSpace{Name: "ram", Index: 1, AddrSize: 8} }

func newTestFuncdata() *Funcdata {
	sp := testSpace()
	entry := space.Address{Space: sp, Offset: 0x1000}
	return New("f", entry, nil, nil, nil, nil, nil, Config{MaxHeritagePasses: 2, JumpTableStepLimit: 10})
}

func TestFlagsSetHasClear(t *testing.T) {
	fd := newTestFuncdata()
	require.False(t, fd.HasFlags(HighlevelOn))
	fd.SetFlags(HighlevelOn | NoCode)
	require.True(t, fd.HasFlags(HighlevelOn))
	require.True(t, fd.HasFlags(NoCode))
	fd.ClearFlags(NoCode)
	require.True(t, fd.HasFlags(HighlevelOn))
	require.False(t, fd.HasFlags(NoCode))
}

func TestClearPreservesOverridesOnly(t *testing.T) {
	fd := newTestFuncdata()
	fd.SetFlags(JumpTableRecoveryOn | TypeRecoveryOn | ProcessingStarted | BlocksGenerated)
	sp := testSpace()
	fd.VBank.Create(sp, 0x10, 4)

	fd.Clear()

	require.True(t, fd.HasFlags(JumpTableRecoveryOn))
	require.True(t, fd.HasFlags(TypeRecoveryOn))
	require.False(t, fd.HasFlags(ProcessingStarted))
	require.False(t, fd.HasFlags(BlocksGenerated))
	require.Equal(t, 0, fd.VBank.Size())
}

func TestStartProcessingBuildsFlowAndDetectsUnreachable(t *testing.T) {
	fd := newTestFuncdata()
	root := fd.Graph.NewBlock()
	orphan := fd.Graph.NewBlock()
	fd.Graph.SetRoot(root)
	_ = orphan // no edge from root: unreachable

	fd.StartProcessing()

	require.True(t, fd.HasFlags(ProcessingStarted))
	require.True(t, fd.HasFlags(BlocksGenerated))
	require.True(t, fd.HasFlags(BlocksUnreachable))
}

func TestStartProcessingIsIdempotentOnceStarted(t *testing.T) {
	fd := newTestFuncdata()
	fd.Graph.NewBlock()
	fd.StartProcessing()
	fd.SetFlags(UnimplementedPresent)
	fd.StartProcessing()
	require.True(t, fd.HasFlags(UnimplementedPresent), "a second StartProcessing must not reset analysis state")
}

func TestStopProcessingReclaimsDeadOps(t *testing.T) {
	fd := newTestFuncdata()
	sp := testSpace()
	op := fd.OBank.NewOp(0, pcodeop.SeqNum{Addr: space.Address{Space: sp, Offset: 0x10}, Time: 1}, pcodeop.COPY)
	require.Equal(t, 1, fd.OBank.DeadCount())

	fd.StartProcessing()
	fd.StopProcessing()

	require.Equal(t, 0, fd.OBank.DeadCount())
	require.True(t, fd.HasFlags(ProcessingComplete))
	_, found := fd.OBank.FindOp(op.Seq)
	require.False(t, found, "a reclaimed op must no longer be findable")
}

func TestStopProcessingNoopBeforeStart(t *testing.T) {
	fd := newTestFuncdata()
	fd.StopProcessing()
	require.False(t, fd.HasFlags(ProcessingComplete))
}

func TestCloneVarnodeDropsUnsafeFlags(t *testing.T) {
	fd := newTestFuncdata()
	sp := testSpace()
	vn := fd.VBank.Create(sp, 0x20, 4)
	vn.SetFlags(varnode.FlagConstant | varnode.FlagTypeLocked | varnode.FlagIndirectCreation)

	clone := fd.CloneVarnode(vn)

	require.True(t, clone.HasFlags(varnode.FlagConstant))
	require.False(t, clone.HasFlags(varnode.FlagTypeLocked), "the type-lock must never be copied")
	require.False(t, clone.HasFlags(varnode.FlagIndirectCreation))
	require.True(t, clone.IsFree())
	require.NotSame(t, vn, clone)
}

func TestCloneOpRewiresInputsThroughMap(t *testing.T) {
	fd := newTestFuncdata()
	sp := testSpace()
	srcIn := fd.VBank.Create(sp, 0x30, 4)
	src := fd.OBank.NewOp(1, pcodeop.SeqNum{Addr: space.Address{Space: sp, Offset: 0x40}, Time: 1}, pcodeop.COPY)
	src.OpSetInput(srcIn, 0)

	replacement := fd.VBank.Create(sp, 0x34, 4)
	clone := fd.CloneOp(src, pcodeop.SeqNum{Addr: space.Address{Space: sp, Offset: 0x50}, Time: 1}, func(vn *varnode.Varnode) *varnode.Varnode {
		if vn == srcIn {
			return replacement
		}
		return vn
	})

	require.Equal(t, pcodeop.COPY, clone.Opcode)
	require.Same(t, replacement, clone.Input(0))
	require.NotSame(t, src, clone)
}

func TestSweepDeadJumpTablesRemovesEntryForDeadBranchind(t *testing.T) {
	fd := newTestFuncdata()
	sp := testSpace()
	addrVn := fd.VBank.Create(sp, 0x60, 8)
	branchind := fd.OBank.NewOp(1, pcodeop.SeqNum{Addr: space.Address{Space: sp, Offset: 0x70}, Time: 1}, pcodeop.BRANCHIND)
	branchind.OpSetInput(addrVn, 0)
	block := fd.Graph.NewBlock()
	block.AppendOp(branchind)
	fd.OBank.MarkAlive(branchind)

	fd.JumpTables[branchind] = nil

	fd.OBank.MarkDead(branchind)
	fd.sweepDeadJumpTables(fd.Graph)

	_, stillTracked := fd.JumpTables[branchind]
	require.False(t, stillTracked, "a jump table whose BRANCHIND died should be swept")
}
