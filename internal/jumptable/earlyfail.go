// Copyright 2026 The pcodecore Authors
// This file is part of pcodecore.

package jumptable

import (
	"errors"

	"github.com/probechain/pcodecore/internal/pcodeop"
	"github.com/probechain/pcodecore/internal/varnode"
)

// ErrOpaqueCallOther is returned by EarlyJumpTableFail when the
// backward walk hits an unknown user-op whose output could have
// produced the traced address, making recovery unsound.
var ErrOpaqueCallOther = errors.New("jumptable: opaque CALLOTHER may define the traced address")

// EarlyJumpTableFail walks opsBeforeBranchind (the BRANCHIND's
// preceding ops in the dead op list, nearest-first) looking for a
// CALLOTHER whose output overlaps tracedAddr's storage, stopping after
// stepLimit ops either way. Finding one aborts recovery: an opaque
// user-op could have produced any value, so the traced address is not
// trustworthy.
func EarlyJumpTableFail(opsBeforeBranchind []*pcodeop.PcodeOp, tracedAddr *varnode.Varnode, stepLimit int) error {
	for steps, op := range opsBeforeBranchind {
		if steps >= stepLimit {
			break
		}
		if op.Opcode != pcodeop.CALLOTHER {
			continue
		}
		out := op.Output()
		if out == nil {
			continue
		}
		if overlaps(out, tracedAddr) {
			return ErrOpaqueCallOther
		}
	}
	return nil
}

func overlaps(a, b *varnode.Varnode) bool {
	if a.Space != b.Space {
		return false
	}
	aEnd := a.Offset + uint64(a.Size)
	bEnd := b.Offset + uint64(b.Size)
	return a.Offset < bEnd && b.Offset < aEnd
}
