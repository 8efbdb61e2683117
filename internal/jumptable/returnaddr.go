// Copyright 2026 The pcodecore Authors
// This file is part of pcodecore.

package jumptable

import (
	"github.com/probechain/pcodecore/internal/pcodeop"
	"github.com/probechain/pcodecore/internal/varnode"
)

// TestForReturnAddress walks addrInput's chain of COPY/INDIRECT/
// INT_AND ops (the shapes an alignment mask or an indirect-effect
// annotation can introduce without changing the traced value's
// identity) and reports whether it ultimately reduces to
// returnAddrSlot -- meaning the BRANCHIND is really a tail-call
// returning to the caller, not a switch dispatch (spec.md §4.9 /
// §8 scenario 6).
func TestForReturnAddress(addrInput, returnAddrSlot *varnode.Varnode) bool {
	vn := addrInput
	for vn != nil {
		if vn == returnAddrSlot || vn.HasFlags(varnode.FlagReturnAddress) {
			return true
		}
		def, ok := vn.Def().(*pcodeop.PcodeOp)
		if !ok {
			return false
		}
		switch def.Opcode {
		case pcodeop.COPY, pcodeop.INT_AND:
			vn = def.Input(0)
		case pcodeop.INDIRECT:
			vn = def.Input(0)
		default:
			return false
		}
	}
	return false
}
