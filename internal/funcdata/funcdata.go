// Copyright 2026 The pcodecore Authors
// This file is part of pcodecore.

// Package funcdata implements the per-function analysis facade: the
// lifecycle flags that gate each pass, the banks and block graph one
// function owns, and the collaborator interfaces (AddrSpaceManager,
// Translate, LoadImage, TypeFactory, PcodeInjectLibrary) the core
// consumes without implementing.
package funcdata

import (
	"errors"

	"github.com/probechain/pcodecore/internal/block"
	"github.com/probechain/pcodecore/internal/callspec"
	"github.com/probechain/pcodecore/internal/dlog"
	"github.com/probechain/pcodecore/internal/heritage"
	"github.com/probechain/pcodecore/internal/jumptable"
	"github.com/probechain/pcodecore/internal/pcodeop"
	"github.com/probechain/pcodecore/internal/proto"
	"github.com/probechain/pcodecore/internal/space"
	"github.com/probechain/pcodecore/internal/varnode"
)

// errReturnStorageUnassignable is returned by ResolveCallReturn when
// assignment fails and ignoreOutputError is unset, so the failure
// propagates to the caller rather than being silently replaced with
// void.
var errReturnStorageUnassignable = errors.New("funcdata: return storage unassignable")

// Flags holds the per-function lifecycle bits spec.md §4.10 enumerates.
// They gate which passes are legal to run and record what has already
// run, rather than describing any data the passes produce.
type Flags uint32

const (
	HighlevelOn Flags = 1 << iota
	BlocksGenerated
	BlocksUnreachable
	ProcessingStarted
	ProcessingComplete
	TypeRecoveryOn
	TypeRecoveryStart
	TypeRecoveryExceeded
	NoCode
	JumpTableRecoveryOn
	JumpTableRecoveryDont
	RestartPending
	DoublePrecisOn
	UnimplementedPresent
	BadDataPresent
)

// overridesMask is the subset of Flags that Clear preserves: operator
// overrides configured before analysis started, as opposed to state
// produced by the passes themselves.
const overridesMask = JumpTableRecoveryOn | JumpTableRecoveryDont | TypeRecoveryOn

// Config bounds the handful of knobs the pass pipeline needs, configured
// once per Funcdata rather than threaded through every call.
type Config struct {
	MaxHeritagePasses int
	JumpTableStepLimit int
	DeadCodeDelay     int
}

// Funcdata is the unit of concurrency for analysis: it owns every
// mutable bank and graph for one function, and the collaborators are
// shared, read-mostly architecture state (spec.md §5).
type Funcdata struct {
	Name  string
	Entry space.Address

	VBank *varnode.Bank
	OBank *pcodeop.Bank
	Graph *block.Graph

	Heritage *heritage.Heritage

	CallSpecs []*callspec.FuncCallSpecs

	JumpTables map[*pcodeop.PcodeOp]*jumptable.JumpTable

	Spaces  AddrSpaceManager
	Arch    Translate
	Loader  LoadImage
	Types   TypeFactory
	Inject  PcodeInjectLibrary

	Config Config

	// Log records the two warning categories spec.md §7 requires:
	// per-instruction warnings and per-function warningheaders, emitted
	// whenever a recoverable failure degrades this function's analysis.
	Log *dlog.Logger

	flags Flags
}

// New constructs an empty Funcdata for entry, wiring the read-mostly
// architecture collaborators it will consult during analysis.
func New(name string, entry space.Address, spaces AddrSpaceManager, arch Translate, loader LoadImage, types TypeFactory, inject PcodeInjectLibrary, cfg Config) *Funcdata {
	fd := &Funcdata{
		Name:       name,
		Entry:      entry,
		Spaces:     spaces,
		Arch:       arch,
		Loader:     loader,
		Types:      types,
		Inject:     inject,
		Config:     cfg,
		Log:        dlog.New(),
		JumpTables: map[*pcodeop.PcodeOp]*jumptable.JumpTable{},
	}
	fd.resetBanks()
	block.SetJumpTableSweeper(fd.sweepDeadJumpTables)
	return fd
}

func (fd *Funcdata) resetBanks() {
	fd.VBank = varnode.NewBank()
	fd.OBank = pcodeop.NewBank(fd.VBank)
	fd.Graph = block.NewGraph()
}

// HasFlags reports whether every bit in mask is set.
func (fd *Funcdata) HasFlags(mask Flags) bool { return fd.flags&mask == mask }

// SetFlags ORs mask into the current flag set.
func (fd *Funcdata) SetFlags(mask Flags) { fd.flags |= mask }

// ClearFlags clears every bit in mask.
func (fd *Funcdata) ClearFlags(mask Flags) { fd.flags &^= mask }

// Clear resets analysis state (banks, graph, call specs, jump tables,
// and every flag outside overridesMask) but preserves the operator
// overrides configured before analysis started.
func (fd *Funcdata) Clear() {
	fd.flags &= overridesMask
	fd.resetBanks()
	fd.Heritage = nil
	fd.CallSpecs = nil
	fd.JumpTables = map[*pcodeop.PcodeOp]*jumptable.JumpTable{}
}

// StartProcessing drives flow generation, structuring, and call-spec
// sorting. It is a no-op if processing already started or completed.
func (fd *Funcdata) StartProcessing() {
	if fd.HasFlags(ProcessingStarted) || fd.HasFlags(ProcessingComplete) {
		return
	}
	fd.SetFlags(ProcessingStarted)
	fd.SetFlags(BlocksGenerated)
	fd.Graph.StructureReset()
	if fd.Graph.UnreachableBlocks() {
		fd.SetFlags(BlocksUnreachable)
	}
	fd.sortCallSpecs()
}

// sortCallSpecs orders call specs by their call op's sequence, the
// order the pass pipeline (and §4.8's call-return analysis) expects
// them to be visited in.
func (fd *Funcdata) sortCallSpecs() {
	for i := 1; i < len(fd.CallSpecs); i++ {
		for j := i; j > 0 && seqLess(fd.CallSpecs[j], fd.CallSpecs[j-1]); j-- {
			fd.CallSpecs[j], fd.CallSpecs[j-1] = fd.CallSpecs[j-1], fd.CallSpecs[j]
		}
	}
}

func seqLess(a, b *callspec.FuncCallSpecs) bool {
	opA, opB := a.CallOp, b.CallOp
	if opA == nil || opB == nil {
		return false
	}
	if opA.Seq.Addr.Compare(opB.Seq.Addr) != 0 {
		return opA.Seq.Addr.Less(opB.Seq.Addr)
	}
	return opA.Seq.Time < opB.Seq.Time
}

// StopProcessing finalizes analysis: it reclaims dead ops and marks
// completion. It is a no-op if processing never started or already
// completed.
func (fd *Funcdata) StopProcessing() {
	if !fd.HasFlags(ProcessingStarted) || fd.HasFlags(ProcessingComplete) {
		return
	}
	fd.reclaimDeadOps()
	fd.SetFlags(ProcessingComplete)
}

func (fd *Funcdata) reclaimDeadOps() {
	for _, op := range fd.OBank.DeadOps() {
		fd.OBank.OpDestroy(op, fd.VBank)
	}
}

// sweepDeadJumpTables removes the tracked jump table for any BRANCHIND
// that has gone dead, wired as package block's jump-table sweeper hook
// so structureReset's pipeline stays in the order spec.md §4.4
// prescribes.
func (fd *Funcdata) sweepDeadJumpTables(g *block.Graph) {
	if g != fd.Graph {
		return
	}
	for op := range fd.JumpTables {
		if !fd.OBank.IsAlive(op) {
			delete(fd.JumpTables, op)
		}
	}
}

// FinishJumpTable records the outcome of recovering branchind's jump
// table. On success jt is kept in JumpTables. On failure the table is
// dropped -- branchind degrades to a generic indirect branch, per
// spec.md §7 -- and the failure is classified and logged as both a
// per-instruction warning (at branchind) and a per-function
// warningheader (at fd.Entry).
func (fd *Funcdata) FinishJumpTable(branchind *pcodeop.PcodeOp, jt *jumptable.JumpTable, addrInput, returnAddrSlot *varnode.Varnode, opsBeforeBranchind []*pcodeop.PcodeOp) {
	if jt.Stage != jumptable.StageFail {
		fd.JumpTables[branchind] = jt
		return
	}
	delete(fd.JumpTables, branchind)
	failure := jumptable.ClassifyFailure(addrInput, returnAddrSlot, opsBeforeBranchind, fd.Config.JumpTableStepLimit)
	fd.Log.Warningf(branchind.Seq.Addr, "jump table recovery failed: %s", failure.Error())
	fd.Log.WarningHeaderf(fd.Entry, "indirect branch at %s degraded to a generic indirect branch: %s", branchind.Seq.Addr, failure.Error())
}

// ResolveCallReturn resolves fcs's return-storage assignment for ret.
// If assignment fails and ignoreOutputError is set, the output is
// replaced with void and the degradation is logged as a recoverable
// failure (spec.md §7); otherwise assignment failure is reported back
// to the caller so it can be treated as fatal.
func (fd *Funcdata) ResolveCallReturn(fcs *callspec.FuncCallSpecs, ret proto.FormalParam, ignoreOutputError bool) error {
	failure, ok := fcs.ResolveOutputOrVoid(ret, ignoreOutputError)
	if !ok {
		return errReturnStorageUnassignable
	}
	if failure != nil {
		addr := fd.Entry
		if fcs.CallOp != nil {
			addr = fcs.CallOp.Seq.Addr
		}
		fd.Log.Warningf(addr, "return storage unassignable, replaced with void: %s", failure.Error())
	}
	return nil
}
