// Copyright 2026 The pcodecore Authors
// This file is part of pcodecore.

package proto

import (
	"testing"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/probechain/pcodecore/internal/space"
)

func testRegSpace() *space.AddrSpace {
	return &space.AddrSpace{Name: "register", Index: 3, AddrSize: 8}
}

func testStackSpace() *space.AddrSpace {
	return &space.AddrSpace{Name: "stack", Index: 2, AddrSize: 8}
}

// TestParamEntrySlotAssignment pins the literal scenario of spec.md
// §8.4: an exclusion entry accepts only slot 0, and an array entry
// advances its slot counter by however many alignment units the
// requested size consumes.
func TestParamEntrySlotAssignment(t *testing.T) {
	reg := testRegSpace()
	excl := &ParamEntry{
		Space: reg, Base: 0x100, Size: 4, MinSize: 1, Alignment: 0,
		Groups: mapset.NewThreadUnsafeSet(2),
	}

	addr, next, ok := excl.AddressBySlot(0, 4)
	if !ok || addr.Offset != 0x100 || next != 1 {
		t.Fatalf("exclusion entry slot 0: got (%v, %d, %v)", addr, next, ok)
	}
	if _, _, ok := excl.AddressBySlot(1, 4); ok {
		t.Errorf("exclusion entry slot 1 should be invalid")
	}

	stack := testStackSpace()
	arr := &ParamEntry{
		Space: stack, Base: 0x1000, Size: 32, Alignment: 4,
	}

	addr, next, ok = arr.AddressBySlot(0, 4)
	if !ok || addr.Offset != 0x1000 || next != 1 {
		t.Fatalf("array entry slot 0 sz 4: got (%v, %d, %v)", addr, next, ok)
	}

	addr, next, ok = arr.AddressBySlot(1, 8)
	if !ok || addr.Offset != 0x1004 || next != 3 {
		t.Fatalf("array entry slot 1 sz 8: got (%v, %d, %v), want base+4 and next slot 3", addr, next, ok)
	}
}

func TestParamEntryOverlapsAndContains(t *testing.T) {
	reg := testRegSpace()
	a := &ParamEntry{Space: reg, Base: 0x100, Size: 8}
	b := &ParamEntry{Space: reg, Base: 0x104, Size: 8}
	c := &ParamEntry{Space: reg, Base: 0x200, Size: 8}

	if !a.Overlaps(b) {
		t.Errorf("a and b should overlap")
	}
	if a.Overlaps(c) {
		t.Errorf("a and c should not overlap")
	}
	if !a.Contains(space.Address{Space: reg, Offset: 0x102}, 4) {
		t.Errorf("a should contain a 4-byte read at 0x102")
	}
	if a.Contains(space.Address{Space: reg, Offset: 0x106}, 4) {
		t.Errorf("a should not contain a read spilling past its end")
	}
}
