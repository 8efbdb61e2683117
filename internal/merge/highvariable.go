// Copyright 2026 The pcodecore Authors
// This file is part of pcodecore.

package merge

import (
	"sort"

	"github.com/probechain/pcodecore/internal/block"
	"github.com/probechain/pcodecore/internal/pcodeop"
	"github.com/probechain/pcodecore/internal/varnode"
)

// HighVariable groups one or more SSA Varnodes that represent the same
// source-level variable after merging (spec.md §3.7/§4.6).
type HighVariable struct {
	Members []*varnode.Varnode
	Cover   *Cover
	Symbol  interface{}
}

func (h *HighVariable) absorb(vn *varnode.Varnode, c *Cover) {
	h.Members = append(h.Members, vn)
	for b, ivs := range c.byBlock {
		for _, iv := range ivs {
			h.Cover.AddRange(b, iv.Start, iv.End-1)
		}
	}
	vn.High = h
}

type storageKey struct {
	spaceIdx int
	offset   uint64
	size     int
}

func keyOf(vn *varnode.Varnode) storageKey {
	return storageKey{spaceIdx: vn.Space.Index, offset: vn.Offset, size: vn.Size}
}

func blockIndexOf(vn *varnode.Varnode) int {
	def, ok := vn.Def().(*pcodeop.PcodeOp)
	if !ok {
		return -1
	}
	b, ok := def.Parent().(*block.BasicBlock)
	if !ok {
		return -1
	}
	return b.Index()
}

// MergeAddrTied merges address-tied varnodes (spec.md §4.6
// mergeAddrTied: storage that must retain its identity, e.g. a
// stack slot with a taken address) sharing a storage key into the
// same HighVariable whenever their covers do not intersect. Candidates
// are sorted into a blocksort array keyed by block index before
// merging, matching the teacher-idiom index-ordering convention used
// throughout this repo's banks.
func MergeAddrTied(vnodes []*varnode.Varnode) []*HighVariable {
	groups := make(map[storageKey][]*varnode.Varnode)
	for _, vn := range vnodes {
		if !vn.HasFlags(varnode.FlagAddrTied) {
			continue
		}
		k := keyOf(vn)
		groups[k] = append(groups[k], vn)
	}

	var result []*HighVariable
	for _, group := range groups {
		sort.Slice(group, func(i, j int) bool {
			return blockIndexOf(group[i]) < blockIndexOf(group[j])
		})

		covers := make(map[*varnode.Varnode]*Cover, len(group))
		for _, vn := range group {
			covers[vn] = BuildCover(vn)
		}

		var highs []*HighVariable
		for _, vn := range group {
			placed := false
			for _, h := range highs {
				if !h.Cover.Intersects(covers[vn]) {
					h.absorb(vn, covers[vn])
					placed = true
					break
				}
			}
			if !placed {
				h := &HighVariable{Cover: NewCover()}
				h.absorb(vn, covers[vn])
				highs = append(highs, h)
			}
		}
		result = append(result, highs...)
	}
	return result
}
