// Copyright 2026 The pcodecore Authors
// This file is part of pcodecore.

package callspec

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/probechain/pcodecore/internal/decomperr"
	"github.com/probechain/pcodecore/internal/pcodeop"
	"github.com/probechain/pcodecore/internal/proto"
	"github.com/probechain/pcodecore/internal/space"
	"github.com/probechain/pcodecore/internal/varnode"
)

// FuncCallSpecs extends a proto.FuncProto for one call site: the CALL
// (or CALLIND, pending de-indirection) op, the callee entry address,
// the stackpointer offset into the callee's frame, and the trial sets
// that recovery fills in before the prototype locks.
type FuncCallSpecs struct {
	proto.FuncProto

	CallOp    *pcodeop.PcodeOp
	EntryAddr space.Address

	StackPointerOffset uint64
	ParamShift         int

	// stackPlaceholderSlot indexes the as-yet-unresolved stack-adjust
	// placeholder trial while recovery is active. Negative values mean
	// "no placeholder pending" -- preserved as a signed int rather than
	// normalized to -1 or clamped to 0, per spec.md §9.
	stackPlaceholderSlot int

	InputActive  *proto.ParamActive
	OutputActive *proto.ParamActive

	MatchCount int

	// Callee is the linked callee's analysis state once deindirect or a
	// direct CALL resolves it. Kept opaque (funcdata.Funcdata in
	// practice) to avoid an import cycle between callspec and funcdata.
	Callee interface{}

	trialCache *lru.Cache[int, AncestorResult]
}

// NewFuncCallSpecs creates a FuncCallSpecs bound to callOp. For a direct
// CALL, entryAddr is the target; for a CALLIND it is invalid until
// deindirect resolves it.
func NewFuncCallSpecs(callOp *pcodeop.PcodeOp, entryAddr space.Address) *FuncCallSpecs {
	cache, _ := lru.New[int, AncestorResult](64)
	return &FuncCallSpecs{
		CallOp:               callOp,
		EntryAddr:            entryAddr,
		stackPlaceholderSlot: -1,
		trialCache:           cache,
	}
}

// StackPlaceholderSlot returns the current placeholder slot index.
// Negative means none is pending.
func (f *FuncCallSpecs) StackPlaceholderSlot() int { return f.stackPlaceholderSlot }

// SetStackPlaceholderSlot installs slot verbatim -- including negative
// values, which the caller uses to mean "none pending" (spec.md §9).
func (f *FuncCallSpecs) SetStackPlaceholderSlot(slot int) { f.stackPlaceholderSlot = slot }

// HasStackPlaceholder reports whether a placeholder slot is pending.
func (f *FuncCallSpecs) HasStackPlaceholder() bool { return f.stackPlaceholderSlot >= 0 }

// InitActiveInput enters input-trial recovery mode: a fresh ParamActive
// is attached and subsequent ops observed on the CALL's inputs register
// as trials via CheckInputTrialUse.
func (f *FuncCallSpecs) InitActiveInput() {
	f.InputActive = &proto.ParamActive{IsInput: true}
}

// InitActiveOutput enters output-trial recovery mode, mirroring
// InitActiveInput for the CALL's (or the callee RETURN's) output side.
func (f *FuncCallSpecs) InitActiveOutput() {
	f.OutputActive = &proto.ParamActive{IsInput: false}
}

// localFrame, when non-nil, is the caller's stack frame window used to
// recognize a trial that aliases a caller local rather than a genuine
// argument.
type localFrame struct {
	Space      *space.AddrSpace
	Base, Size uint64
}

func (lf *localFrame) aliasesLocal(vn *varnode.Varnode) bool {
	if lf == nil || lf.Space == nil || vn.Space != lf.Space {
		return false
	}
	return vn.Offset >= lf.Base && vn.Offset+uint64(vn.Size) <= lf.Base+lf.Size
}

// CheckInputTrialUse classifies one observed input trial per spec.md
// §4.8: (a) whether a common ancestor of vn reaches a legitimate
// source via AncestorRealistic, (b) whether it aliases a caller local,
// (c) whether the callee's extrapop would swallow it (a stack offset
// below the callee's declared extra-pop distance), (d) whether it's a dead
// stack placeholder (the reserved slot with no real read).
func (f *FuncCallSpecs) CheckInputTrialUse(trial *proto.ParamTrial, vn *varnode.Varnode, locals *localFrame, extrapop int) {
	trial.SetFlags(proto.TrialChecked)

	if f.isDeadStackPlaceholder(trial, vn) {
		return
	}

	result := f.realismOf(vn)
	switch result {
	case AncestorFailKill:
		trial.SetFlags(proto.TrialIndcreateFormed)
		trial.ClearFlags(proto.TrialActive)
		return
	case AncestorFail:
		trial.ClearFlags(proto.TrialActive)
		return
	case AncestorSolid:
		trial.SetFlags(proto.TrialAncestorSolid | proto.TrialAncestorRealistic)
	case AncestorSuccess:
		trial.SetFlags(proto.TrialAncestorRealistic)
	}

	if locals.aliasesLocal(vn) {
		trial.ClearFlags(proto.TrialActive)
		return
	}

	if extrapop > 0 && vn.Space != nil && vn.Space.Kind == space.KindStack && vn.Offset < uint64(extrapop) {
		trial.SetFlags(proto.TrialKilledByCall)
		trial.ClearFlags(proto.TrialActive)
		return
	}

	trial.SetFlags(proto.TrialActive)
}

func (f *FuncCallSpecs) isDeadStackPlaceholder(trial *proto.ParamTrial, vn *varnode.Varnode) bool {
	if !f.HasStackPlaceholder() || vn.Space == nil || vn.Space.Kind != space.KindStack {
		return false
	}
	if trial.Slot != f.stackPlaceholderSlot {
		return false
	}
	if vn.HasNoDescendants() {
		trial.ClearFlags(proto.TrialActive)
		return true
	}
	return false
}

func (f *FuncCallSpecs) realismOf(vn *varnode.Varnode) AncestorResult {
	if f.trialCache != nil {
		if cached, ok := f.trialCache.Get(vn.ID()); ok {
			return cached
		}
	}
	result := AncestorRealistic(vn)
	if f.trialCache != nil {
		f.trialCache.Add(vn.ID(), result)
	}
	return result
}

// CommitNewInputs materializes the active, realistic input trials as
// concrete Assignments once the prototype locks. It fails fatally if a
// stack placeholder slot is still pending at commit time: recovery was
// supposed to have resolved or killed it before the prototype locked
// (spec.md §7's "unresolved stack placeholder at commit time").
func (f *FuncCallSpecs) CommitNewInputs() ([]proto.Assignment, error) {
	if f.HasStackPlaceholder() {
		return nil, decomperr.NewLowLevelError(decomperr.ErrUnresolvedStackPlaceholder, "commitNewInputs")
	}
	if f.InputActive == nil {
		return nil, nil
	}
	var out []proto.Assignment
	for _, t := range f.InputActive.ActiveTrials() {
		out = append(out, proto.Assignment{Addr: t.Addr, Size: t.Size})
	}
	f.Inputs = out
	return out, nil
}

// CommitNewOutputs mirrors CommitNewInputs for the output side.
func (f *FuncCallSpecs) CommitNewOutputs() []proto.Assignment {
	if f.OutputActive == nil {
		return nil
	}
	var out []proto.Assignment
	for _, t := range f.OutputActive.ActiveTrials() {
		out = append(out, proto.Assignment{Addr: t.Addr, Size: t.Size})
	}
	if len(out) > 0 {
		f.Output = out[0]
	}
	return out
}

// Deindirect replaces a CALLIND's target once de-indirection resolves
// the callee: entryAddr becomes the fixed target and callee is
// imported as the linked Funcdata, subject to lateRestriction
// rejecting an incompatible prototype.
func (f *FuncCallSpecs) Deindirect(entryAddr space.Address, callee interface{}, lateRestriction func() bool) bool {
	if lateRestriction != nil && !lateRestriction() {
		return false
	}
	f.EntryAddr = entryAddr
	f.Callee = callee
	if f.CallOp != nil {
		f.CallOp.OpSetOpcode(pcodeop.CALL)
	}
	return true
}

// ResolveSpacebaseRelative binds the callee's stack-pointer offset
// relative to the caller's stack frame.
func (f *FuncCallSpecs) ResolveSpacebaseRelative(callerFrameBase uint64) {
	f.StackPointerOffset = callerFrameBase
}
