// Copyright 2026 The pcodecore Authors
// This file is part of pcodecore.

package proto

import (
	"github.com/probechain/pcodecore/internal/decomperr"
	"github.com/probechain/pcodecore/internal/space"
)

// ProtoStore backs a FuncProto's resolved storage: either tied to a
// symbol-database entry (out of scope here, carried as an opaque
// out-of-scope handle) or held purely internally to the function.
type ProtoStore struct {
	Symbol   interface{}
	Internal bool
}

// LockFlags records which facets of a FuncProto have been pinned by an
// override or user annotation and must not be overwritten by further
// analysis.
type LockFlags uint16

const (
	LockInput LockFlags = 1 << iota
	LockOutput
	LockModel
	LockVoidInput
)

// FuncProto is the mutable per-function prototype: a ProtoModel plus
// resolved input/output storage, lock state, and calling-convention
// markers.
type FuncProto struct {
	Model *ProtoModel
	Store ProtoStore
	Locks LockFlags

	Inputs []Assignment
	Output Assignment

	DotDotDot   bool
	Inline      bool
	NoReturn    bool
	Constructor bool
	Destructor  bool
	HasThis     bool

	ExtraPop            int
	ReturnBytesConsumed int

	EffectOverrides *space.RangeList
}

func (p *FuncProto) Locked(f LockFlags) bool { return p.Locks&f == f }
func (p *FuncProto) Lock(f LockFlags)        { p.Locks |= f }
func (p *FuncProto) Unlock(f LockFlags)      { p.Locks &^= f }

// ResolveInputs runs assignMap against formals and records the
// resulting storage, unless the input side is locked, in which case
// the existing Inputs are left untouched and ResolveInputs succeeds
// trivially.
func (p *FuncProto) ResolveInputs(formals []FormalParam) bool {
	if p.Locked(LockInput) {
		return true
	}
	assigns, ok := p.Model.Input.AssignMap(formals, p.HasThis)
	if !ok {
		return false
	}
	p.Inputs = assigns
	return true
}

// ResolveOutput runs assignMap for the single return formal, unless
// the output side is locked.
func (p *FuncProto) ResolveOutput(ret FormalParam) bool {
	if p.Locked(LockOutput) {
		return true
	}
	assigns, ok := p.Model.Output.AssignMap([]FormalParam{ret}, false)
	if !ok || len(assigns) == 0 {
		return false
	}
	p.Output = assigns[0]
	return true
}

// ResolveOutputOrVoid mirrors ResolveOutput, but on assignment failure
// with ignoreOutputError set, replaces the output with a void (zero)
// assignment instead of failing outright and reports the degradation
// as a recoverable FailOutputUnassigned failure (spec.md §7). ok is
// false only when resolution failed and ignoreOutputError was unset,
// in which case Output is left untouched and the caller decides how to
// treat the failure.
func (p *FuncProto) ResolveOutputOrVoid(ret FormalParam, ignoreOutputError bool) (failure *decomperr.RecoverableFailure, ok bool) {
	if p.ResolveOutput(ret) {
		return nil, true
	}
	if !ignoreOutputError {
		return nil, false
	}
	p.Output = Assignment{}
	return decomperr.NewRecoverableFailure(decomperr.FailOutputUnassigned, "return-storage assignment failed"), true
}
