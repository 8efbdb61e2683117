// Copyright 2026 The pcodecore Authors
// This file is part of pcodecore.

package callspec

import (
	"testing"

	"github.com/probechain/pcodecore/internal/decomperr"
	"github.com/probechain/pcodecore/internal/pcodeop"
	"github.com/probechain/pcodecore/internal/proto"
	"github.com/probechain/pcodecore/internal/space"
	"github.com/probechain/pcodecore/internal/varnode"
)

// TestStackPlaceholderLifecycleToleratesNegativeSlot pins the Open
// Question decision: stackPlaceholderSlot is a signed int, and a
// negative value means "no placeholder pending" rather than being
// normalized to a fixed sentinel.
func TestStackPlaceholderLifecycleToleratesNegativeSlot(t *testing.T) {
	sp := testRAM()
	ob := pcodeop.NewBank(varnode.NewBank())
	callOp := ob.NewOp(1, seqAt(sp, 0x200, 1), pcodeop.CALLIND)

	fcs := NewFuncCallSpecs(callOp, space.Address{})
	if fcs.HasStackPlaceholder() {
		t.Fatalf("a freshly created FuncCallSpecs should have no pending placeholder")
	}
	if fcs.StackPlaceholderSlot() != -1 {
		t.Errorf("expected default slot -1, got %d", fcs.StackPlaceholderSlot())
	}

	fcs.SetStackPlaceholderSlot(-5)
	if fcs.HasStackPlaceholder() {
		t.Errorf("an arbitrary negative slot should still mean no placeholder pending")
	}
	if fcs.StackPlaceholderSlot() != -5 {
		t.Errorf("expected the exact negative value -5 preserved, got %d", fcs.StackPlaceholderSlot())
	}

	fcs.SetStackPlaceholderSlot(2)
	if !fcs.HasStackPlaceholder() {
		t.Errorf("a non-negative slot should mean a placeholder is pending")
	}

	if _, err := fcs.CommitNewInputs(); err == nil {
		t.Errorf("CommitNewInputs should fail while a stack placeholder is still pending")
	} else if !decomperr.IsLowLevel(err) {
		t.Errorf("expected a low-level error, got %v", err)
	}

	fcs.SetStackPlaceholderSlot(-1)
	if _, err := fcs.CommitNewInputs(); err != nil {
		t.Errorf("CommitNewInputs should succeed once the placeholder is released: %v", err)
	}
	if fcs.HasStackPlaceholder() {
		t.Errorf("no placeholder should be pending after a successful commit")
	}
}

func TestCheckInputTrialUseMarksUnaffectedInputInactive(t *testing.T) {
	sp := testRAM()
	vb := varnode.NewBank()
	ob := pcodeop.NewBank(vb)
	callOp := ob.NewOp(1, seqAt(sp, 0x300, 1), pcodeop.CALL)

	fcs := NewFuncCallSpecs(callOp, space.Address{Space: sp, Offset: 0x1000})
	fcs.InitActiveInput()

	vn := vb.Create(sp, 0x60, 4)
	vn.SetFlags(varnode.FlagUnaffected)
	if _, err := vb.SetInput(vn); err != nil {
		t.Fatalf("SetInput: %v", err)
	}

	trial := &proto.ParamTrial{Addr: space.Address{Space: sp, Offset: 0x60}, Size: 4}
	fcs.InputActive.Trials = append(fcs.InputActive.Trials, trial)

	fcs.CheckInputTrialUse(trial, vn, nil, 0)
	if trial.IsActive() {
		t.Errorf("a trial whose ancestor is an unaffected input should not be marked active")
	}
}

func TestCheckInputTrialUseAcceptsRealisticInput(t *testing.T) {
	sp := testRAM()
	vb := varnode.NewBank()
	ob := pcodeop.NewBank(vb)
	callOp := ob.NewOp(1, seqAt(sp, 0x310, 1), pcodeop.CALL)

	fcs := NewFuncCallSpecs(callOp, space.Address{Space: sp, Offset: 0x1000})
	fcs.InitActiveInput()

	vn := vb.Create(sp, 0x70, 4)
	if _, err := vb.SetInput(vn); err != nil {
		t.Fatalf("SetInput: %v", err)
	}

	trial := &proto.ParamTrial{Addr: space.Address{Space: sp, Offset: 0x70}, Size: 4}
	fcs.CheckInputTrialUse(trial, vn, nil, 0)
	if !trial.IsActive() {
		t.Errorf("a trial tracing to a legitimate incoming input should be marked active")
	}
	if !trial.HasFlags(proto.TrialAncestorRealistic) {
		t.Errorf("expected the realistic flag set")
	}
}

func TestDeindirectRejectsIncompatiblePrototype(t *testing.T) {
	sp := testRAM()
	ob := pcodeop.NewBank(varnode.NewBank())
	callOp := ob.NewOp(1, seqAt(sp, 0x320, 1), pcodeop.CALLIND)
	fcs := NewFuncCallSpecs(callOp, space.Address{})

	ok := fcs.Deindirect(space.Address{Space: sp, Offset: 0x500}, "callee", func() bool { return false })
	if ok {
		t.Fatalf("expected deindirect to be rejected by lateRestriction")
	}
	if fcs.CallOp.Opcode != pcodeop.CALLIND {
		t.Errorf("a rejected deindirect must leave the CALLIND opcode untouched")
	}

	ok = fcs.Deindirect(space.Address{Space: sp, Offset: 0x500}, "callee", func() bool { return true })
	if !ok || fcs.CallOp.Opcode != pcodeop.CALL {
		t.Errorf("expected deindirect to succeed and rewrite the opcode to CALL")
	}
}
