// Copyright 2026 The pcodecore Authors
// This file is part of pcodecore.
//
// pcodecore is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package space implements the address-space and address model shared by
// every other package in this module: a named, indexed AddrSpace, the
// Address pair (space, offset) with its minimal/maximal sentinels, and
// disjoint Range/RangeList sets over those addresses.
package space

import (
	"fmt"

	"github.com/holiman/uint256"
)

// Kind classifies the storage domain an AddrSpace models.
type Kind int

const (
	KindRAM Kind = iota
	KindRegister
	KindStack
	KindConstant
	KindUnique
	KindFspec
	KindIop
	KindJoin
)

func (k Kind) String() string {
	switch k {
	case KindRAM:
		return "ram"
	case KindRegister:
		return "register"
	case KindStack:
		return "stack"
	case KindConstant:
		return "const"
	case KindUnique:
		return "unique"
	case KindFspec:
		return "fspec"
	case KindIop:
		return "iop"
	case KindJoin:
		return "join"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// DelayClass gates when heritage considers a space's definitions stable.
type DelayClass int

// Flags is a bitset of AddrSpace properties.
type Flags uint32

const (
	FlagHeritaged Flags = 1 << iota
	FlagDoesDeadcode
	FlagBigEndian
	FlagTruncated
	FlagReverseJustified
)

// AddrSpace is a named, indexed region of addressable storage. Two
// AddrSpace values are equal iff they are the same pointer; Index is used
// purely as a deterministic sort key, never as an identity test.
type AddrSpace struct {
	Name       string
	Index      int
	Kind       Kind
	AddrSize   int // bytes per address (word size of the space's pointer)
	WordSize   int // bytes per addressable unit
	BigEndian  bool
	Delay      DelayClass
	Flags      Flags
	SpaceBases []string // names of registers that can base a virtual space
}

// mask returns the modulus mask for wrapOffset, e.g. 0xFFFFFFFF for a
// 4-byte space.
func (s *AddrSpace) mask() uint64 {
	if s.AddrSize >= 8 {
		return ^uint64(0)
	}
	return (uint64(1) << (uint(s.AddrSize) * 8)) - 1
}

// WrapOffset reduces off modulo the space's addressable range.
func (s *AddrSpace) WrapOffset(off uint64) uint64 {
	return off & s.mask()
}

// Heritaged reports whether this space participates in SSA construction.
func (s *AddrSpace) Heritaged() bool { return s.Flags&FlagHeritaged != 0 }

// sentinelSpace is the process-wide identity used by Address.Maximal/Minimal.
// It never appears in a real AddrSpaceManager's space table.
var sentinelSpace = &AddrSpace{Name: "$$sentinel$$", Index: -1}

// Address is an absolute byte address tagged by the space that contains it.
type Address struct {
	Space  *AddrSpace
	Offset uint64
}

// Minimal is the sentinel address that sorts strictly below every real
// address: null space, offset 0.
func Minimal() Address { return Address{Space: nil, Offset: 0} }

// Maximal is the sentinel address that sorts strictly above every real
// address: the reserved sentinel space, offset 2^64-1.
func Maximal() Address { return Address{Space: sentinelSpace, Offset: ^uint64(0)} }

// IsMinimal reports whether a is the minimal sentinel.
func (a Address) IsMinimal() bool { return a.Space == nil }

// IsMaximal reports whether a is the maximal sentinel.
func (a Address) IsMaximal() bool { return a.Space == sentinelSpace }

// spaceIndex returns a comparison key for a's space: minimal sorts below
// every index, maximal sorts above every index.
func (a Address) spaceIndex() int {
	switch {
	case a.IsMinimal():
		return -1 << 31
	case a.IsMaximal():
		return 1<<31 - 1
	default:
		return a.Space.Index
	}
}

// Compare orders two addresses: by space index, then offset. Minimal sorts
// below all real addresses; Maximal sorts above all of them.
func (a Address) Compare(b Address) int {
	if ai, bi := a.spaceIndex(), b.spaceIndex(); ai != bi {
		if ai < bi {
			return -1
		}
		return 1
	}
	if a.IsMinimal() || a.IsMaximal() {
		return 0
	}
	switch {
	case a.Offset < b.Offset:
		return -1
	case a.Offset > b.Offset:
		return 1
	default:
		return 0
	}
}

// Less reports whether a sorts strictly before b.
func (a Address) Less(b Address) bool { return a.Compare(b) < 0 }

// Equal reports whether a and b denote the same address.
func (a Address) Equal(b Address) bool { return a.Compare(b) == 0 }

// Add returns a new Address offset by delta bytes, wrapped modulo the
// space's address size. Arithmetic uses a 256-bit accumulator
// (github.com/holiman/uint256) so that a delta which is itself large (e.g.
// an accumulated stack-frame size) never silently overflows before the
// space-specific wrap is applied.
func (a Address) Add(delta uint64) Address {
	if a.Space == nil || a.Space == sentinelSpace {
		return Address{Space: a.Space, Offset: a.Offset + delta}
	}
	acc := new(uint256.Int).SetUint64(a.Offset)
	acc.Add(acc, new(uint256.Int).SetUint64(delta))
	return Address{Space: a.Space, Offset: a.Space.WrapOffset(acc.Uint64())}
}

func (a Address) String() string {
	switch {
	case a.IsMinimal():
		return "<minimal>"
	case a.IsMaximal():
		return "<maximal>"
	default:
		return fmt.Sprintf("%s:%#x", a.Space.Name, a.Offset)
	}
}

// Range is a closed, inclusive interval [First, Last] within one space.
type Range struct {
	Space *AddrSpace
	First uint64
	Last  uint64
}

func (r Range) String() string {
	return fmt.Sprintf("%s[%#x,%#x]", r.Space.Name, r.First, r.Last)
}

// contains reports whether off lies within [r.First, r.Last].
func (r Range) contains(off uint64) bool { return off >= r.First && off <= r.Last }
