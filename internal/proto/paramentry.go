// Copyright 2026 The pcodecore Authors
// This file is part of pcodecore.

package proto

import (
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/probechain/pcodecore/internal/space"
)

// EntryFlags marks auxiliary properties of a ParamEntry beyond its
// exclusion/array classification.
type EntryFlags uint32

const (
	// EntryReverseStack reverses slot numbering for stack-growth-aware
	// array entries (the last-declared formal occupies the lowest slot).
	EntryReverseStack EntryFlags = 1 << iota
	// EntryIsHidden marks the hidden-return-pointer exclusion entry.
	EntryIsHidden
)

// JoinRecord describes the constituent storage pieces a join-space
// ParamEntry glues together, most-significant piece first.
type JoinRecord struct {
	Pieces []space.Address
	Sizes  []int
}

// ParamEntry is a contiguous storage window usable for parameter or
// return-value assignment. Alignment 0 marks an exclusion entry (a
// single register-sized slot); non-zero alignment marks an array entry
// (a stack window sliced into fixed-size slots).
type ParamEntry struct {
	Space     *space.AddrSpace
	Base      uint64
	Size      int
	MinSize   int
	Alignment int
	TypeClass int
	Flags     EntryFlags
	Groups    mapset.Set[int]
	Join      *JoinRecord
}

// Exclusion reports whether e is a single register-sized exclusion slot.
func (e *ParamEntry) Exclusion() bool { return e.Alignment == 0 }

// Contains reports whether addr, sized sz, lies entirely within e's
// storage window.
func (e *ParamEntry) Contains(addr space.Address, sz int) bool {
	if e.Space != addr.Space {
		return false
	}
	return addr.Offset >= e.Base && addr.Offset+uint64(sz) <= e.Base+uint64(e.Size)
}

// Overlaps reports whether e and other share any byte of storage in
// the same space.
func (e *ParamEntry) Overlaps(other *ParamEntry) bool {
	if e.Space != other.Space {
		return false
	}
	return e.Base < other.Base+uint64(other.Size) && other.Base < e.Base+uint64(e.Size)
}

// AddressBySlot computes the storage address consumed by the
// slotnum-th use of e at size sz. For an exclusion entry only slotnum
// 0 is valid. For an array entry, sz is rounded up to the entry's
// alignment to determine how many slots it consumes; the returned
// nextSlot is the slot count the caller should pass on the next call.
func (e *ParamEntry) AddressBySlot(slotnum, sz int) (addr space.Address, nextSlot int, ok bool) {
	if e.Exclusion() {
		if slotnum != 0 {
			return space.Address{}, slotnum, false
		}
		return space.Address{Space: e.Space, Offset: e.Base}, 1, true
	}

	numSlots := e.Size / e.Alignment
	slotsUsed := (sz + e.Alignment - 1) / e.Alignment
	if slotsUsed < 1 {
		slotsUsed = 1
	}
	if slotnum < 0 || slotnum+slotsUsed > numSlots {
		return space.Address{}, slotnum, false
	}
	addr = space.Address{Space: e.Space, Offset: e.Base + uint64(slotnum*e.Alignment)}
	return addr, slotnum + slotsUsed, true
}
