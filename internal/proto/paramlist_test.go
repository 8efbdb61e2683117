// Copyright 2026 The pcodecore Authors
// This file is part of pcodecore.

package proto

import (
	"testing"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/probechain/pcodecore/internal/space"
)

func excl(sp *space.AddrSpace, base uint64, size, group int) *ParamEntry {
	return &ParamEntry{Space: sp, Base: base, Size: size, MinSize: size, Alignment: 0, Groups: mapset.NewThreadUnsafeSet(group)}
}

func TestParamListStandardAssignMapFallsThroughToStack(t *testing.T) {
	reg := testRegSpace()
	stack := testStackSpace()

	list := NewParamListStandard([]*ParamEntry{
		excl(reg, 0x10, 4, 0),
		excl(reg, 0x14, 4, 1),
		{Space: stack, Base: 0x1000, Size: 32, Alignment: 4},
	})

	formals := []FormalParam{{Size: 4}, {Size: 4}, {Size: 4}}
	assigns, ok := list.AssignMap(formals, false)
	if !ok {
		t.Fatalf("expected assignment to succeed")
	}
	if len(assigns) != 3 {
		t.Fatalf("expected 3 assignments, got %d", len(assigns))
	}
	if assigns[0].Addr.Offset != 0x10 || assigns[1].Addr.Offset != 0x14 {
		t.Errorf("expected first two formals in the two register slots, got %v %v", assigns[0], assigns[1])
	}
	if assigns[2].Addr.Space != stack || assigns[2].Addr.Offset != 0x1000 {
		t.Errorf("expected third formal to fall through to the stack window, got %v", assigns[2])
	}
}

func TestParamListStandardAssignMapHiddenRetFirst(t *testing.T) {
	reg := testRegSpace()
	hidden := &ParamEntry{Space: reg, Base: 0x8, Size: 8, Alignment: 0, Groups: mapset.NewThreadUnsafeSet(9)}
	hidden.TypeClass = HiddenRetClass
	list := NewParamListStandard([]*ParamEntry{hidden, excl(reg, 0x10, 4, 0)})

	formals := []FormalParam{{HiddenRet: true}, {Size: 4}}
	assigns, ok := list.AssignMap(formals, false)
	if !ok {
		t.Fatalf("expected assignment to succeed")
	}
	if assigns[0].Addr.Offset != 0x8 {
		t.Errorf("expected hidden-ret parameter allocated first, got %v", assigns[0])
	}
	if assigns[1].Addr.Offset != 0x10 {
		t.Errorf("expected second formal in the ordinary register slot, got %v", assigns[1])
	}
}

func TestParamListStandardForceExclusionGroupKeepsBestTrial(t *testing.T) {
	reg := testRegSpace()
	e1 := excl(reg, 0x10, 4, 5)
	e2 := excl(reg, 0x14, 4, 5)
	list := NewParamListStandard([]*ParamEntry{e1, e2})

	active := &ParamActive{Trials: []*ParamTrial{
		{Addr: space.Address{Space: reg, Offset: 0x10}, Size: 4, Slot: 0},
		{Addr: space.Address{Space: reg, Offset: 0x14}, Size: 2, Slot: 1},
	}}
	list.FillinMap(active)

	if !active.Trials[0].IsActive() {
		t.Errorf("exact-size trial should survive forceExclusionGroup")
	}
	if active.Trials[1].IsActive() {
		t.Errorf("mismatched-size trial sharing the group should be forced inactive")
	}
}

func TestParamListRegisterAssignMapIgnoresOrder(t *testing.T) {
	reg := testRegSpace()
	list := NewParamListRegister([]*ParamEntry{
		{Space: reg, Base: 0x10, Size: 4, TypeClass: 1},
		{Space: reg, Base: 0x14, Size: 4, TypeClass: 1},
	})
	assigns, ok := list.AssignMap([]FormalParam{{Size: 4, TypeClass: 1}, {Size: 4, TypeClass: 1}}, false)
	if !ok || len(assigns) != 2 {
		t.Fatalf("expected both formals assigned distinct registers, got %v ok=%v", assigns, ok)
	}
	if assigns[0].Addr == assigns[1].Addr {
		t.Errorf("expected distinct register addresses, got the same for both")
	}
}

func TestParamListStandardOutPicksFirstFittingEntry(t *testing.T) {
	reg := testRegSpace()
	out := NewParamListStandardOut([]*ParamEntry{
		{Space: reg, Base: 0x18, Size: 4, TypeClass: 1},
		{Space: reg, Base: 0x1C, Size: 8, TypeClass: 1},
	})
	assigns, ok := out.AssignMap([]FormalParam{{Size: 4, TypeClass: 1}}, false)
	if !ok || assigns[0].Addr.Offset != 0x18 {
		t.Fatalf("expected the first fitting entry, got %v ok=%v", assigns, ok)
	}
}

func TestParamListRegisterOutPicksSmallestFittingEntry(t *testing.T) {
	reg := testRegSpace()
	out := NewParamListRegisterOut([]*ParamEntry{
		{Space: reg, Base: 0x18, Size: 8, TypeClass: 1},
		{Space: reg, Base: 0x20, Size: 4, TypeClass: 1},
	})
	assigns, ok := out.AssignMap([]FormalParam{{Size: 4, TypeClass: 1}}, false)
	if !ok || assigns[0].Addr.Offset != 0x20 {
		t.Fatalf("expected the smallest fitting entry (listed second), got %v ok=%v", assigns, ok)
	}
}

// TestParamListMergedFoldInPrefersMinSizeMatch pins the Open Question
// decision: foldIn keeps the containing entry in place only when its
// MinSize matches the candidate's, otherwise the candidate is appended
// as a distinct entry rather than silently dropped.
func TestParamListMergedFoldInPrefersMinSizeMatch(t *testing.T) {
	reg := testRegSpace()
	m := &ParamListMerged{}

	wide := &ParamEntry{Space: reg, Base: 0x40, Size: 8, MinSize: 4}
	entries := []*ParamEntry{wide}

	matching := &ParamEntry{Space: reg, Base: 0x40, Size: 4, MinSize: 4}
	folded := m.foldIn(entries, matching)
	if len(folded) != 1 {
		t.Fatalf("expected matching MinSize candidate to fold in place, got %d entries", len(folded))
	}

	differing := &ParamEntry{Space: reg, Base: 0x40, Size: 4, MinSize: 2}
	appended := m.foldIn(entries, differing)
	if len(appended) != 2 {
		t.Fatalf("expected differing MinSize candidate to be appended, got %d entries", len(appended))
	}
}

func TestParamListMergedBestPicksLowestScoringModel(t *testing.T) {
	reg := testRegSpace()
	good := NewParamListStandard([]*ParamEntry{excl(reg, 0x10, 4, 0)})
	bad := NewParamListStandard([]*ParamEntry{excl(reg, 0x90, 4, 0)})
	m := &ParamListMerged{Models: []ParamList{good, bad}}

	trial := &ParamTrial{Addr: space.Address{Space: reg, Offset: 0x10}, Size: 4}
	actives := []*ParamActive{
		{Trials: []*ParamTrial{{Addr: trial.Addr, Size: trial.Size}}},
		{Trials: []*ParamTrial{{Addr: trial.Addr, Size: trial.Size}}},
	}

	best, _ := m.Best(actives)
	if best != 0 {
		t.Errorf("expected the model whose entry actually matches the trial to score best, got index %d", best)
	}
}
