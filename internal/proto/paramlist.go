// Copyright 2026 The pcodecore Authors
// This file is part of pcodecore.

package proto

import (
	"sort"

	"github.com/probechain/pcodecore/internal/space"
)

// FormalParam is one input (or the single output) type position being
// resolved to storage.
type FormalParam struct {
	Size      int
	Alignment int
	TypeClass int
	HiddenRet bool
}

// Assignment is the storage resolved for one formal.
type Assignment struct {
	Addr space.Address
	Size int
}

// ParamList exposes assignMap/fillinMap and containment queries over a
// ProtoModel's declared ABI storage windows. Four concrete variants
// exist: standard (ordered resource list with fallthrough), register
// (unordered register set), standard-out / register-out (one-of-many
// return slot); ParamListMerged layers a scoring selector over a set
// of constituent models.
type ParamList interface {
	AssignMap(formals []FormalParam, hasThis bool) ([]Assignment, bool)
	FillinMap(active *ParamActive)
	Entries() []*ParamEntry
	FindEntry(addr space.Address, size int) (*ParamEntry, bool)
}

// HiddenRetClass is the type-class reserved for the hidden return-value
// pointer parameter, distinct from every real formal's TypeClass.
const HiddenRetClass = -1

func findEntry(entries []*ParamEntry, addr space.Address, size int) (*ParamEntry, bool) {
	for _, e := range entries {
		if e.Contains(addr, size) {
			return e, true
		}
	}
	return nil, false
}

// groupStatus is per-resource-group slot accounting shared by every
// ParamEntry belonging to that group, matching how an exclusion entry
// locks the whole group on use while an array entry merely advances
// within it.
type groupStatus struct {
	locked  bool
	slotnum int
}

// ParamListStandard is the ordered, resource-list-with-fallthrough
// variant used for conventional register-then-stack calling
// conventions.
type ParamListStandard struct {
	entries []*ParamEntry
	groups  map[int]*groupStatus
}

// NewParamListStandard builds a ParamListStandard over entries, which
// must already be ordered the way assignAddressFallback should try
// them (registers before the stack fallback window, typically).
func NewParamListStandard(entries []*ParamEntry) *ParamListStandard {
	return &ParamListStandard{entries: entries, groups: map[int]*groupStatus{}}
}

func (p *ParamListStandard) Entries() []*ParamEntry { return p.entries }

func (p *ParamListStandard) FindEntry(addr space.Address, size int) (*ParamEntry, bool) {
	return findEntry(p.entries, addr, size)
}

func (p *ParamListStandard) resetGroups() { p.groups = map[int]*groupStatus{} }

func (p *ParamListStandard) statusForGroup(g int) *groupStatus {
	st, ok := p.groups[g]
	if !ok {
		st = &groupStatus{}
		p.groups[g] = st
	}
	return st
}

func (p *ParamListStandard) groupLocked(e *ParamEntry) bool {
	if e.Groups == nil {
		return false
	}
	for _, g := range e.Groups.ToSlice() {
		if p.statusForGroup(g).locked {
			return true
		}
	}
	return false
}

func (p *ParamListStandard) lockGroups(e *ParamEntry) {
	if e.Groups == nil {
		return
	}
	for _, g := range e.Groups.ToSlice() {
		p.statusForGroup(g).locked = true
	}
}

func (p *ParamListStandard) groupSlot(e *ParamEntry) int {
	if e.Groups == nil || e.Groups.Cardinality() == 0 {
		return 0
	}
	return p.statusForGroup(e.Groups.ToSlice()[0]).slotnum
}

func (p *ParamListStandard) advanceGroupSlot(e *ParamEntry, next int) {
	if e.Groups == nil || e.Groups.Cardinality() == 0 {
		return
	}
	p.statusForGroup(e.Groups.ToSlice()[0]).slotnum = next
}

// assignAddressFallback picks the first entry whose type-class matches
// (or any class if matchExact is false) and whose remaining slot count
// accommodates alignSize at alignment, updating the per-group slot
// status accordingly.
func (p *ParamListStandard) assignAddressFallback(typeClass, alignSize int, matchExact bool) (Assignment, bool) {
	for _, e := range p.entries {
		if matchExact && e.TypeClass != typeClass {
			continue
		}
		if p.groupLocked(e) {
			continue
		}
		if e.Exclusion() {
			addr, _, ok := e.AddressBySlot(0, alignSize)
			if !ok {
				continue
			}
			p.lockGroups(e)
			return Assignment{Addr: addr, Size: alignSize}, true
		}
		slot := p.groupSlot(e)
		addr, next, ok := e.AddressBySlot(slot, alignSize)
		if !ok {
			continue
		}
		p.advanceGroupSlot(e, next)
		return Assignment{Addr: addr, Size: alignSize}, true
	}
	return Assignment{}, false
}

func pointerSize(entries []*ParamEntry) int {
	for _, e := range entries {
		if e.Space != nil {
			return e.Space.AddrSize
		}
	}
	return 8
}

// AssignMap assigns each formal a storage window: a hidden-return
// formal is allocated first in the HIDDENRET class with a pointer-sized
// fallback slot; every other formal tries an exact type-class match
// before falling back to any general-class entry with room.
func (p *ParamListStandard) AssignMap(formals []FormalParam, hasThis bool) ([]Assignment, bool) {
	p.resetGroups()
	out := make([]Assignment, 0, len(formals))
	for _, f := range formals {
		var a Assignment
		var ok bool
		if f.HiddenRet {
			ps := pointerSize(p.entries)
			a, ok = p.assignAddressFallback(HiddenRetClass, ps, true)
			if !ok {
				a, ok = p.assignAddressFallback(HiddenRetClass, ps, false)
			}
		} else {
			a, ok = p.assignAddressFallback(f.TypeClass, f.Size, true)
			if !ok {
				a, ok = p.assignAddressFallback(f.TypeClass, f.Size, false)
			}
		}
		if !ok {
			return out, false
		}
		out = append(out, a)
	}
	return out, true
}

// FillinMap runs the standard trial-classification pipeline: build the
// trial map against this list's entries, force a single survivor per
// exclusion group, force a "no use" tail within each resource section,
// force long inactive runs to stay inactive, then promote survivors.
func (p *ParamListStandard) FillinMap(active *ParamActive) {
	p.buildTrialMap(active)
	p.forceExclusionGroup(active)
	p.forceNoUse(active)
	p.forceInactiveChain(active, 2)
	for _, t := range active.Trials {
		if t.HasFlags(TrialActive) {
			t.SetFlags(TrialUsed)
		}
	}
	active.PassCount++
}

func (p *ParamListStandard) buildTrialMap(active *ParamActive) {
	for _, t := range active.Trials {
		entry, ok := p.FindEntry(t.Addr, t.Size)
		if !ok {
			t.ClearFlags(TrialActive)
			t.SetFlags(TrialChecked)
			continue
		}
		t.Entry = entry
		t.SetFlags(TrialChecked | TrialActive)
	}
	p.registerUnreferencedEntries(active)
}

// registerUnreferencedEntries adds a TrialUnref trial for every entry
// that sits before the furthest entry actually claimed by a trial, so
// its slot accounting is preserved even though nothing reads it.
func (p *ParamListStandard) registerUnreferencedEntries(active *ParamActive) {
	used := make(map[*ParamEntry]bool)
	lastUsedIdx := -1
	for _, t := range active.Trials {
		if t.Entry == nil {
			continue
		}
		used[t.Entry] = true
		for idx, e := range p.entries {
			if e == t.Entry && idx > lastUsedIdx {
				lastUsedIdx = idx
			}
		}
	}
	for idx := 0; idx < lastUsedIdx; idx++ {
		e := p.entries[idx]
		if used[e] {
			continue
		}
		addr, _, ok := e.AddressBySlot(0, e.MinSize)
		if !ok {
			continue
		}
		active.Trials = append(active.Trials, &ParamTrial{
			Addr: addr, Size: e.MinSize, Entry: e, Flags: TrialChecked | TrialUnref,
		})
	}
}

// forceExclusionGroup keeps only the best-scoring active trial within
// each exclusion group, marking the rest "no use".
func (p *ParamListStandard) forceExclusionGroup(active *ParamActive) {
	byGroup := map[int][]*ParamTrial{}
	for _, t := range active.Trials {
		if t.Entry == nil || !t.HasFlags(TrialActive) || !t.Entry.Exclusion() || t.Entry.Groups == nil {
			continue
		}
		for _, g := range t.Entry.Groups.ToSlice() {
			byGroup[g] = append(byGroup[g], t)
		}
	}
	for _, trials := range byGroup {
		if len(trials) <= 1 {
			continue
		}
		best := trials[0]
		for _, t := range trials[1:] {
			if trialMismatchCost(t) < trialMismatchCost(best) {
				best = t
			}
		}
		for _, t := range trials {
			if t != best {
				t.ClearFlags(TrialActive)
			}
		}
	}
}

func trialMismatchCost(t *ParamTrial) int {
	if t.Entry != nil && t.Size != t.Entry.Size && t.Size != t.Entry.MinSize {
		return penaltyTrialMismatch
	}
	return 0
}

// forceNoUse splits trials into sections by resource type-class and,
// within each section ordered by slot, forces every trial following
// the first inactive one to stay inactive.
func (p *ParamListStandard) forceNoUse(active *ParamActive) {
	sections := map[int][]*ParamTrial{}
	for _, t := range active.Trials {
		if t.Entry == nil {
			continue
		}
		sections[t.Entry.TypeClass] = append(sections[t.Entry.TypeClass], t)
	}
	for _, trials := range sections {
		sort.Slice(trials, func(i, j int) bool { return trials[i].Slot < trials[j].Slot })
		seenNoUse := false
		for _, t := range trials {
			if seenNoUse {
				t.ClearFlags(TrialActive)
				continue
			}
			if !t.HasFlags(TrialActive) {
				seenNoUse = true
			}
		}
	}
}

// forceInactiveChain forces every trial after a run of maxchain
// consecutive inactive trials (in slot order) to stay inactive too.
func (p *ParamListStandard) forceInactiveChain(active *ParamActive, maxchain int) {
	sorted := append([]*ParamTrial(nil), active.Trials...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Slot < sorted[j].Slot })
	run := 0
	tripped := false
	for _, t := range sorted {
		if tripped {
			t.ClearFlags(TrialActive)
			continue
		}
		if t.HasFlags(TrialActive) {
			run = 0
			continue
		}
		run++
		if run >= maxchain {
			tripped = true
		}
	}
}

// ParamListRegister is the unordered-register-set variant: a formal
// grabs the first unused entry of matching type-class with no
// positional fallthrough to a stack window.
type ParamListRegister struct {
	entries []*ParamEntry
	used    map[*ParamEntry]bool
}

func NewParamListRegister(entries []*ParamEntry) *ParamListRegister {
	return &ParamListRegister{entries: entries, used: map[*ParamEntry]bool{}}
}

func (p *ParamListRegister) Entries() []*ParamEntry { return p.entries }

func (p *ParamListRegister) FindEntry(addr space.Address, size int) (*ParamEntry, bool) {
	return findEntry(p.entries, addr, size)
}

func (p *ParamListRegister) AssignMap(formals []FormalParam, hasThis bool) ([]Assignment, bool) {
	p.used = map[*ParamEntry]bool{}
	out := make([]Assignment, 0, len(formals))
	for _, f := range formals {
		var chosen *ParamEntry
		for _, e := range p.entries {
			if p.used[e] || e.TypeClass != f.TypeClass || e.Size < f.Size {
				continue
			}
			chosen = e
			break
		}
		if chosen == nil {
			return out, false
		}
		p.used[chosen] = true
		out = append(out, Assignment{Addr: space.Address{Space: chosen.Space, Offset: chosen.Base}, Size: f.Size})
	}
	return out, true
}

func (p *ParamListRegister) FillinMap(active *ParamActive) {
	for _, t := range active.Trials {
		if entry, ok := p.FindEntry(t.Addr, t.Size); ok {
			t.Entry = entry
			t.SetFlags(TrialChecked | TrialActive | TrialUsed)
		} else {
			t.SetFlags(TrialChecked)
			t.ClearFlags(TrialActive)
		}
	}
	active.PassCount++
}

// ParamListStandardOut resolves a single return-value storage slot
// from an ordered candidate list: the one-of-many return slot, with a
// positional preference order.
type ParamListStandardOut struct {
	entries []*ParamEntry
}

func NewParamListStandardOut(entries []*ParamEntry) *ParamListStandardOut {
	return &ParamListStandardOut{entries: entries}
}

func (p *ParamListStandardOut) Entries() []*ParamEntry { return p.entries }

func (p *ParamListStandardOut) FindEntry(addr space.Address, size int) (*ParamEntry, bool) {
	return findEntry(p.entries, addr, size)
}

func (p *ParamListStandardOut) AssignMap(formals []FormalParam, hasThis bool) ([]Assignment, bool) {
	if len(formals) != 1 {
		return nil, false
	}
	f := formals[0]
	for _, e := range p.entries {
		if e.TypeClass != f.TypeClass && e.TypeClass != 0 {
			continue
		}
		if e.Size < f.Size {
			continue
		}
		return []Assignment{{Addr: space.Address{Space: e.Space, Offset: e.Base}, Size: f.Size}}, true
	}
	return nil, false
}

func (p *ParamListStandardOut) FillinMap(active *ParamActive) {
	for _, t := range active.Trials {
		if entry, ok := p.FindEntry(t.Addr, t.Size); ok {
			t.Entry = entry
			t.SetFlags(TrialChecked | TrialActive | TrialUsed)
		}
	}
	active.PassCount++
}

// ParamListRegisterOut is RegisterOut's one-of-many return slot: like
// ParamListStandardOut but drawn from an unordered register set, so the
// smallest entry that still fits the return value wins rather than the
// first positionally.
type ParamListRegisterOut struct {
	entries []*ParamEntry
}

func NewParamListRegisterOut(entries []*ParamEntry) *ParamListRegisterOut {
	return &ParamListRegisterOut{entries: entries}
}

func (p *ParamListRegisterOut) Entries() []*ParamEntry { return p.entries }

func (p *ParamListRegisterOut) FindEntry(addr space.Address, size int) (*ParamEntry, bool) {
	return findEntry(p.entries, addr, size)
}

func (p *ParamListRegisterOut) AssignMap(formals []FormalParam, hasThis bool) ([]Assignment, bool) {
	if len(formals) != 1 {
		return nil, false
	}
	f := formals[0]
	var best *ParamEntry
	for _, e := range p.entries {
		if e.TypeClass != f.TypeClass || e.Size < f.Size {
			continue
		}
		if best == nil || e.Size < best.Size {
			best = e
		}
	}
	if best == nil {
		return nil, false
	}
	return []Assignment{{Addr: space.Address{Space: best.Space, Offset: best.Base}, Size: f.Size}}, true
}

func (p *ParamListRegisterOut) FillinMap(active *ParamActive) {
	for _, t := range active.Trials {
		if entry, ok := p.FindEntry(t.Addr, t.Size); ok {
			t.Entry = entry
			t.SetFlags(TrialChecked | TrialActive | TrialUsed)
		}
	}
	active.PassCount++
}

// ParamListMerged is the merged-model variant: it holds owned copies of
// constituent ParamLists and scores an observed trial set against each
// to pick the best-fit model for an ambiguous call site.
type ParamListMerged struct {
	Models []ParamList
}

// Best runs each Models entry's FillinMap on the matching element of
// actives (model i fills actives[i] in place) and returns the index of
// the model whose result scores lowest, and that score.
func (m *ParamListMerged) Best(actives []*ParamActive) (int, int) {
	bestIdx, bestScore := -1, 0
	for i, model := range m.Models {
		if i >= len(actives) {
			break
		}
		model.FillinMap(actives[i])
		score := scoreActive(actives[i])
		if bestIdx == -1 || score < bestScore {
			bestIdx, bestScore = i, score
		}
	}
	return bestIdx, bestScore
}

// foldIn merges candidate into entries: if an existing entry already
// contains candidate's storage window AND its MinSize matches
// candidate's, candidate is folded in place (entries is returned
// unchanged) rather than appended as a separate window; otherwise
// candidate is appended as a distinct entry.
func (m *ParamListMerged) foldIn(entries []*ParamEntry, candidate *ParamEntry) []*ParamEntry {
	for _, e := range entries {
		if e.Contains(space.Address{Space: candidate.Space, Offset: candidate.Base}, candidate.Size) {
			if e.MinSize == candidate.MinSize {
				return entries
			}
		}
	}
	return append(entries, candidate)
}
