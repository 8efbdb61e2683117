// Copyright 2026 The pcodecore Authors
// This file is part of pcodecore.

package funcdata

import (
	"github.com/probechain/pcodecore/internal/pcodeop"
	"github.com/probechain/pcodecore/internal/varnode"
)

// cloneableVarnodeFlags is the subset of varnode.Flags a clone carries
// over. Liveness (FlagInput, FlagWritten), the type-lock
// (FlagTypeLocked), and identity markers tied to a specific def site
// (FlagIndirectCreation) are never copied, per spec.md §4.10.
const cloneableVarnodeFlags = varnode.FlagConstant |
	varnode.FlagAnnotation |
	varnode.FlagAddrTied |
	varnode.FlagAddrForced |
	varnode.FlagPersistent |
	varnode.FlagMapped |
	varnode.FlagNameLocked |
	varnode.FlagSpacebase |
	varnode.FlagReadOnly |
	varnode.FlagVolatile |
	varnode.FlagUnaffected |
	varnode.FlagReturnAddress |
	varnode.FlagPrecisionHi |
	varnode.FlagPrecisionLo

// CloneVarnode allocates a fresh, free varnode in fd's bank with vn's
// storage and the safe subset of its flags. The clone carries no def
// link and no descendants, regardless of vn's own state.
func (fd *Funcdata) CloneVarnode(vn *varnode.Varnode) *varnode.Varnode {
	c := fd.VBank.Create(vn.Space, vn.Offset, vn.Size)
	c.SetFlags(vn.Flags() & cloneableVarnodeFlags)
	return c
}

// CloneOp allocates a fresh dead op with src's opcode and input count,
// rewiring each input through inputMap so callers can first clone the
// inputs (or reuse live ones) before wiring the copy. The clone is not
// linked into any block and carries no output until the caller calls
// OpSetOutput.
func (fd *Funcdata) CloneOp(src *pcodeop.PcodeOp, seq pcodeop.SeqNum, inputMap func(*varnode.Varnode) *varnode.Varnode) *pcodeop.PcodeOp {
	clone := fd.OBank.NewOp(src.NumInputs(), seq, src.Opcode)
	for i := 0; i < src.NumInputs(); i++ {
		in := src.Input(i)
		if in == nil {
			continue
		}
		mapped := in
		if inputMap != nil {
			mapped = inputMap(in)
		}
		clone.OpSetInput(mapped, i)
	}
	return clone
}
