// Copyright 2026 The pcodecore Authors
// This file is part of pcodecore.

// Package varnode implements the SSA value model of spec.md §3.2-3.3: a
// Varnode (one SSA value, storage-tagged) and the dual-indexed Varnode
// bank that owns the lifecycle of every Varnode in a function.
//
// The cyclic Varnode <-> PcodeOp graph is kept free of an import cycle
// through small interfaces: this package declares the Def and Descendant
// views that pcodeop.PcodeOp satisfies, and a Varnode holds its defining
// op and its readers through them, while pcodeop stores Varnode pointers
// directly (it is the "owner" of op<->varnode edges). This package never
// imports pcodeop.
package varnode

import (
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/probechain/pcodecore/internal/space"
)

// Flags is the bitset of per-Varnode properties from spec.md §3.2.
type Flags uint32

const (
	FlagInput Flags = 1 << iota
	FlagConstant
	FlagAnnotation
	FlagAddrTied
	FlagAddrForced
	FlagPersistent
	FlagMapped
	FlagTypeLocked
	FlagNameLocked
	FlagSpacebase
	FlagReadOnly
	FlagVolatile
	FlagUnaffected
	FlagReturnAddress
	FlagIndirectCreation
	FlagImplicit
	FlagExplicit
	FlagWritten
	FlagAutoLive
	FlagPrecisionHi
	FlagPrecisionLo
)

// Def is the minimal view a Varnode needs of its defining operation. The
// real type (pcodeop.PcodeOp) implements this; varnode never imports
// pcodeop to avoid a package cycle, per Design Note §9's "stable handles"
// strategy.
type Def interface {
	// SeqAddr is the address component of the op's sequence number, used
	// as the Varnode's def-index sort key.
	SeqAddr() space.Address
	// SeqUniq is the per-address uniquifier of the op's sequence number.
	SeqUniq() uint64
}

// Descendant is the minimal view a Varnode needs of a reading op.
type Descendant interface {
	SeqAddr() space.Address
	SeqUniq() uint64
}

// Varnode is one SSA value: a storage-tagged slot that is either an input,
// the output of exactly one PcodeOp (def != nil), or free.
type Varnode struct {
	id int // bank-assigned identity, stable for the varnode's lifetime

	Space  *space.AddrSpace
	Offset uint64
	Size   int

	def         Def
	descendants mapset.Set[Descendant]

	flags Flags

	DataType interface{} // opaque handle into the (out-of-scope) type system

	ConsumeMask uint64
	NZMask      uint64 // non-zero mask

	Cover interface{} // *merge.Cover, opaque here to avoid an import cycle

	Symbol interface{} // opaque backing symbol entry
	High    interface{} // opaque *merge.HighVariable
}

// ID returns the bank-assigned stable identity of v.
func (v *Varnode) ID() int { return v.id }

// Flags returns the current flag bitset.
func (v *Varnode) Flags() Flags { return v.flags }

// HasFlags reports whether every bit in mask is set.
func (v *Varnode) HasFlags(mask Flags) bool { return v.flags&mask == mask }

// SetFlags ORs mask into the flag bitset.
func (v *Varnode) SetFlags(mask Flags) { v.flags |= mask }

// ClearFlags ANDs the complement of mask into the flag bitset.
func (v *Varnode) ClearFlags(mask Flags) { v.flags &^= mask }

// Def returns the op that produced v, or nil if v is free or an input.
func (v *Varnode) Def() Def { return v.def }

// IsInput reports whether v was established by Bank.SetInput.
func (v *Varnode) IsInput() bool { return v.flags&FlagInput != 0 }

// IsFree reports whether v has neither a def nor input status.
func (v *Varnode) IsFree() bool { return v.def == nil && !v.IsInput() }

// IsConstant reports whether FlagConstant is set on v. The flag is not
// derived from v's space; whoever creates a constant sets it.
func (v *Varnode) IsConstant() bool { return v.flags&FlagConstant != 0 }

// Descendants returns the set of ops that read v.
func (v *Varnode) Descendants() mapset.Set[Descendant] {
	if v.descendants == nil {
		return mapset.NewThreadUnsafeSet[Descendant]()
	}
	return v.descendants
}

// AddDescendant registers d as a reader of v.
func (v *Varnode) AddDescendant(d Descendant) {
	if v.descendants == nil {
		v.descendants = mapset.NewThreadUnsafeSet[Descendant]()
	}
	v.descendants.Add(d)
}

// RemoveDescendant unregisters d as a reader of v.
func (v *Varnode) RemoveDescendant(d Descendant) {
	if v.descendants != nil {
		v.descendants.Remove(d)
	}
}

// HasNoDescendants reports whether nothing currently reads v.
func (v *Varnode) HasNoDescendants() bool {
	return v.descendants == nil || v.descendants.Cardinality() == 0
}

func (v *Varnode) String() string {
	tag := ""
	switch {
	case v.IsConstant():
		tag = "#"
	case v.IsInput():
		tag = "in:"
	}
	if v.Space == nil {
		return fmt.Sprintf("%s?:%#x:%d", tag, v.Offset, v.Size)
	}
	return fmt.Sprintf("%s%s:%#x:%d", tag, v.Space.Name, v.Offset, v.Size)
}

// overlaps reports whether v's storage window intersects [offset,offset+size).
func (v *Varnode) overlaps(sp *space.AddrSpace, offset uint64, size int) bool {
	if v.Space != sp {
		return false
	}
	vEnd := v.Offset + uint64(v.Size)
	oEnd := offset + uint64(size)
	return v.Offset < oEnd && offset < vEnd
}
