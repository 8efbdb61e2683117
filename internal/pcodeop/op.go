// Copyright 2026 The pcodecore Authors
// This file is part of pcodecore.

package pcodeop

import (
	"fmt"

	"github.com/probechain/pcodecore/internal/space"
	"github.com/probechain/pcodecore/internal/varnode"
)

// SeqNum is (instruction address, monotonic time uniquifier, in-block
// order) per spec.md §3.4.
type SeqNum struct {
	Addr  space.Address
	Time  uint64 // monotonic uniquifier at the address
	Order int    // position within the parent basic block
}

func (s SeqNum) String() string { return fmt.Sprintf("%s:%d", s.Addr, s.Time) }

// Flags is the bitset of per-op properties from spec.md §3.4.
type Flags uint32

const (
	FlagBranch Flags = 1 << iota
	FlagCall
	FlagMarker
	FlagStartBasic
	FlagStartMark
	FlagNoCollapse
	FlagDead
	FlagSpecialPrint
	FlagIndirectCreation
	FlagIndirectStore
	FlagHaltKind
	FlagCalculatedBool
	FlagHoldout
	FlagReturnCopy
	// Additional flags
	FlagSpecialPropagation
	FlagIncidentalCopy
	FlagIsCpoolTransformed
	FlagStopTypePropagation
	FlagStoreUnmapped
)

// Block is the minimal view a PcodeOp needs of its parent basic block;
// the real type lives in package block. Kept as an interface to avoid a
// pcodeop<->block import cycle (both need each other's concrete type).
type Block interface {
	Index() int
}

// PcodeOp is one micro-operation: spec.md §3.4.
type PcodeOp struct {
	Seq    SeqNum
	Opcode Opcode

	inputs []*varnode.Varnode
	output *varnode.Varnode

	parent Block
	flags  Flags

	// indirectTarget is set only for INDIRECT ops: the op whose memory
	// effect this annotation describes (spec.md §3.6: "must immediately
	// precede the op it annotates").
	indirectTarget *PcodeOp
}

// NewOp allocates a dead op (no parent block) with n input slots at seq.
// Matches the newOp(n, seq) primitive of spec.md §4.3.
func NewOp(n int, seq SeqNum, opc Opcode) *PcodeOp {
	return &PcodeOp{Seq: seq, Opcode: opc, inputs: make([]*varnode.Varnode, n)}
}

// SeqAddr implements varnode.Def / varnode.Descendant.
func (op *PcodeOp) SeqAddr() space.Address { return op.Seq.Addr }

// SeqUniq implements varnode.Def / varnode.Descendant.
func (op *PcodeOp) SeqUniq() uint64 { return op.Seq.Time }

// Input returns the varnode in input slot i, or nil if unset.
func (op *PcodeOp) Input(i int) *varnode.Varnode { return op.inputs[i] }

// NumInputs returns the number of input slots.
func (op *PcodeOp) NumInputs() int { return len(op.inputs) }

// Output returns the op's result varnode, or nil.
func (op *PcodeOp) Output() *varnode.Varnode { return op.output }

// Parent returns the basic block that owns this op, or nil if dead.
func (op *PcodeOp) Parent() Block { return op.parent }

// SetParent is used by package block when linking/unlinking the op.
func (op *PcodeOp) SetParent(b Block) { op.parent = b }

// Flags returns the op's flag bitset.
func (op *PcodeOp) Flags() Flags { return op.flags }

// SetFlags ORs mask into the op's flag bitset.
func (op *PcodeOp) SetFlags(mask Flags) { op.flags |= mask }

// ClearFlags ANDs the complement of mask into the op's flag bitset.
func (op *PcodeOp) ClearFlags(mask Flags) { op.flags &^= mask }

// IsDead reports whether op currently has no parent block.
func (op *PcodeOp) IsDead() bool { return op.parent == nil }

// IsPhi reports whether this is a MULTIEQUAL (phi) op.
func (op *PcodeOp) IsPhi() bool { return op.Opcode == MULTIEQUAL }

// IsIndirectAnnotation reports whether this is an INDIRECT op.
func (op *PcodeOp) IsIndirectAnnotation() bool { return op.Opcode == INDIRECT }

// IndirectTarget returns the op that an INDIRECT op annotates.
func (op *PcodeOp) IndirectTarget() *PcodeOp { return op.indirectTarget }

// SetIndirectTarget sets the op an INDIRECT op annotates (second input's
// referent, per spec.md §4.3's placement rule).
func (op *PcodeOp) SetIndirectTarget(target *PcodeOp) { op.indirectTarget = target }

// OpSetOpcode updates op's opcode. Re-keying of any per-opcode index
// lives in Bank.OpSetOpcode, which callers should use instead of
// mutating Opcode directly once op is registered with a Bank.
func (op *PcodeOp) OpSetOpcode(opc Opcode) { op.Opcode = opc }

// OpSetInput attaches vn to input slot i, detaching whatever was there.
// If vn is a constant already used elsewhere, the caller is expected to
// have duplicated it first (spec.md §3.2: "duplicated on every reuse");
// OpSetInput itself only wires the link and updates descendant sets.
func (op *PcodeOp) OpSetInput(vn *varnode.Varnode, i int) {
	if old := op.inputs[i]; old != nil {
		old.RemoveDescendant(op)
	}
	op.inputs[i] = vn
	if vn != nil {
		vn.AddDescendant(op)
	}
}

// RemoveInputSlot deletes input slot i entirely, shifting later inputs
// down by one (spec.md §4.4 pushMultiequals: a phi losing a
// predecessor edge loses the corresponding input, not just its value).
func (op *PcodeOp) RemoveInputSlot(i int) {
	if old := op.inputs[i]; old != nil {
		old.RemoveDescendant(op)
	}
	op.inputs = append(op.inputs[:i], op.inputs[i+1:]...)
}

// InsertInputSlot grows the input list by one slot at position i,
// leaving it nil (caller wires it via OpSetInput).
func (op *PcodeOp) InsertInputSlot(i int) {
	op.inputs = append(op.inputs, nil)
	copy(op.inputs[i+1:], op.inputs[i:])
	op.inputs[i] = nil
}

// OpSetOutput makes vn op's output, detaching any previous output's def
// link. vn must be free or already op's own output.
func (op *PcodeOp) OpSetOutput(vn *varnode.Varnode, bank *varnode.Bank) error {
	if op.output != nil && op.output != vn {
		bank.MakeFree(op.output)
	}
	if vn == nil {
		op.output = nil
		return nil
	}
	linked, err := bank.SetDef(vn, op)
	if err != nil {
		return err
	}
	op.output = linked
	return nil
}

// Unlink detaches op from every input's descendant set and from its
// output's def link, without destroying the op object itself (spec.md
// §4.3 opUnlink).
func (op *PcodeOp) Unlink(bank *varnode.Bank) {
	for i, vn := range op.inputs {
		if vn != nil {
			vn.RemoveDescendant(op)
			op.inputs[i] = nil
		}
	}
	if op.output != nil {
		bank.MakeFree(op.output)
		op.output = nil
	}
	op.parent = nil
}

func (op *PcodeOp) String() string {
	s := ""
	if op.output != nil {
		s += op.output.String() + " = "
	}
	s += op.Opcode.String()
	for _, in := range op.inputs {
		if in != nil {
			s += " " + in.String()
		} else {
			s += " <nil>"
		}
	}
	return s
}
