// Copyright 2026 The pcodecore Authors
// This file is part of pcodecore.

package space

import "testing"

func testSpace() *AddrSpace {
	return &AddrSpace{Name: "ram", Index: 1, AddrSize: 8, WordSize: 1}
}

func TestAddressSentinelOrdering(t *testing.T) {
	sp := testSpace()
	real := Address{Space: sp, Offset: 0x1000}
	if !Minimal().Less(real) {
		t.Errorf("minimal should sort below a real address")
	}
	if !real.Less(Maximal()) {
		t.Errorf("real address should sort below maximal")
	}
	if !Minimal().Less(Maximal()) {
		t.Errorf("minimal should sort below maximal")
	}
}

func TestAddressAddWraps(t *testing.T) {
	sp := &AddrSpace{Name: "ram32", Index: 2, AddrSize: 4}
	a := Address{Space: sp, Offset: 0xFFFFFFFC}
	got := a.Add(8)
	if got.Offset != 0x00000004 {
		t.Errorf("expected wrap to 0x4, got %#x", got.Offset)
	}
}

func TestRangeListMerging(t *testing.T) {
	sp := testSpace()
	var rl RangeList

	rl.Insert(sp, 0x1000, 0x1003)
	rl.Insert(sp, 0x1002, 0x1007)
	if got := rl.Ranges(); len(got) != 1 || got[0].First != 0x1000 || got[0].Last != 0x1007 {
		t.Fatalf("expected single merged range [0x1000,0x1007], got %v", got)
	}

	rl.Insert(sp, 0x1009, 0x100F)
	if got := rl.Ranges(); len(got) != 2 {
		t.Fatalf("expected two ranges, got %v", got)
	}

	rl.Insert(sp, 0x1008, 0x1008)
	got := rl.Ranges()
	if len(got) != 1 || got[0].First != 0x1000 || got[0].Last != 0x100F {
		t.Fatalf("expected single range [0x1000,0x100F], got %v", got)
	}
	if !rl.Valid() {
		t.Errorf("range list invariant violated: %v", got)
	}
}

func TestRangeListRemoveSplits(t *testing.T) {
	sp := testSpace()
	var rl RangeList
	rl.Insert(sp, 0, 0xFF)
	rl.Remove(sp, 0x40, 0x4F)

	got := rl.Ranges()
	if len(got) != 2 {
		t.Fatalf("expected two ranges after split, got %v", got)
	}
	if got[0].First != 0 || got[0].Last != 0x3F {
		t.Errorf("unexpected first range: %v", got[0])
	}
	if got[1].First != 0x50 || got[1].Last != 0xFF {
		t.Errorf("unexpected second range: %v", got[1])
	}
	if !rl.Valid() {
		t.Errorf("range list invariant violated after remove: %v", got)
	}
}

func TestRangeListLongestFit(t *testing.T) {
	sp := testSpace()
	var rl RangeList
	rl.Insert(sp, 0x1000, 0x1010)
	rl.Insert(sp, 0x1020, 0x1030)

	r, ok := rl.LongestFit(sp, 0x1005)
	if !ok || r.Last != 0x1010 {
		t.Fatalf("expected longest fit to [.., 0x1010], got %v ok=%v", r, ok)
	}

	if _, ok := rl.LongestFit(sp, 0x1018); ok {
		t.Errorf("expected no coverage at 0x1018")
	}
}

func TestRangeListInsertIdempotent(t *testing.T) {
	sp := testSpace()
	var rl RangeList
	rl.Insert(sp, 0x10, 0x20)
	rl.Insert(sp, 0x10, 0x20)
	if got := rl.Ranges(); len(got) != 1 {
		t.Fatalf("expected idempotent insert, got %v", got)
	}
}

func TestRangeListCrossSpaceNoOverlap(t *testing.T) {
	spA := testSpace()
	spB := &AddrSpace{Name: "register", Index: 3, AddrSize: 8}
	var rl RangeList
	rl.Insert(spA, 0x1000, 0x1010)
	rl.Insert(spB, 0x1000, 0x1010)
	if got := rl.Ranges(); len(got) != 2 {
		t.Fatalf("expected ranges in distinct spaces to stay separate, got %v", got)
	}
	if !rl.Valid() {
		t.Errorf("invariant violated across spaces: %v", rl.Ranges())
	}
}
