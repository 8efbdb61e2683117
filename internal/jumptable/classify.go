// Copyright 2026 The pcodecore Authors
// This file is part of pcodecore.

package jumptable

import (
	"github.com/probechain/pcodecore/internal/decomperr"
	"github.com/probechain/pcodecore/internal/pcodeop"
	"github.com/probechain/pcodecore/internal/varnode"
)

// ClassifyFailure assigns a RecoverableKind to a BRANCHIND that
// recovery gave up on, using the same per-branchind context
// EarlyJumpTableFail and TestForReturnAddress already inspect: a
// return-address chain is a tail call (FailReturn), an unresolved
// opaque CALLOTHER couldn't be ruled out (FailCallOther), a direct
// single-LOAD-from-a-constant-address chain is a thunk (FailThunk),
// and anything else recovery exhausted its stages on is FailNormal
// (spec.md §7).
func ClassifyFailure(addrInput, returnAddrSlot *varnode.Varnode, opsBeforeBranchind []*pcodeop.PcodeOp, stepLimit int) *decomperr.RecoverableFailure {
	if TestForReturnAddress(addrInput, returnAddrSlot) {
		return decomperr.NewRecoverableFailure(decomperr.FailReturn, "branchind address chain reduces to the return-address slot")
	}
	if err := EarlyJumpTableFail(opsBeforeBranchind, addrInput, stepLimit); err != nil {
		return decomperr.NewRecoverableFailure(decomperr.FailCallOther, err.Error())
	}
	if isThunkJump(addrInput) {
		return decomperr.NewRecoverableFailure(decomperr.FailThunk, "branchind address loads directly from a fixed address")
	}
	return decomperr.NewRecoverableFailure(decomperr.FailNormal, "jump table recovery exhausted its stages")
}

// isThunkJump reports whether vn is defined by a LOAD whose pointer
// operand is a constant -- the classic `JMP [fixed_address]` shape.
func isThunkJump(vn *varnode.Varnode) bool {
	def, ok := vn.Def().(*pcodeop.PcodeOp)
	if !ok || def.Opcode != pcodeop.LOAD {
		return false
	}
	ptr := def.Input(def.NumInputs() - 1)
	return ptr != nil && ptr.IsConstant()
}
