// Copyright 2026 The pcodecore Authors
// This file is part of pcodecore.

// Package merge implements spec.md §4.6: per-block live-range Cover,
// address-tied varnode merging into HighVariable, overlap/bound
// classification, partial-shadow recognition, and precision-pair
// folding.
//
// Grounded directly on spec.md §4.6 (no in-pack analogue exists for a
// cover/interval-union live-range model at this granularity); the
// block-index-keyed "blocksort" shape reuses internal/block's
// index-ordering convention for consistency across packages.
package merge

import (
	"github.com/probechain/pcodecore/internal/block"
	"github.com/probechain/pcodecore/internal/pcodeop"
	"github.com/probechain/pcodecore/internal/varnode"
)

// Interval is an op-index range [Start, End) within one block.
type Interval struct {
	Start, End int
}

func (iv Interval) overlaps(o Interval) bool {
	return iv.Start < o.End && o.Start < iv.End
}

// Cover is the set of program points, grouped by block, at which a
// varnode's value must be preserved (spec.md §3.5/§4.6).
type Cover struct {
	byBlock map[*block.BasicBlock][]Interval
}

// NewCover creates an empty cover.
func NewCover() *Cover { return &Cover{byBlock: make(map[*block.BasicBlock][]Interval)} }

// AddRange extends the cover in b to include [start, end], both ends
// inclusive.
func (c *Cover) AddRange(b *block.BasicBlock, start, end int) {
	if end < start {
		start, end = end, start
	}
	iv := Interval{Start: start, End: end + 1}
	for i, cur := range c.byBlock[b] {
		if cur.overlaps(iv) || cur.End == iv.Start || iv.End == cur.Start {
			if iv.Start < cur.Start {
				cur.Start = iv.Start
			}
			if iv.End > cur.End {
				cur.End = iv.End
			}
			c.byBlock[b][i] = cur
			return
		}
	}
	c.byBlock[b] = append(c.byBlock[b], iv)
}

// Contains reports whether pos in block b falls within the cover.
func (c *Cover) Contains(b *block.BasicBlock, pos int) bool {
	for _, iv := range c.byBlock[b] {
		if pos >= iv.Start && pos < iv.End {
			return true
		}
	}
	return false
}

// Intersects reports whether c and other share any covered point.
func (c *Cover) Intersects(other *Cover) bool {
	for b, ivs := range c.byBlock {
		oivs, ok := other.byBlock[b]
		if !ok {
			continue
		}
		for _, a := range ivs {
			for _, o := range oivs {
				if a.overlaps(o) {
					return true
				}
			}
		}
	}
	return false
}

// opIndex finds op's position in b's op list, or -1.
func opIndex(b *block.BasicBlock, op *pcodeop.PcodeOp) int {
	for i, cur := range b.Ops() {
		if cur == op {
			return i
		}
	}
	return -1
}

// BuildCover computes vn's cover: from its definition point (or block
// start, if defined elsewhere/as an input) to every descendant read
// point, per block.
func BuildCover(vn *varnode.Varnode) *Cover {
	c := NewCover()

	def, _ := vn.Def().(*pcodeop.PcodeOp)
	var defBlock *block.BasicBlock
	defPos := 0
	if def != nil {
		if b, ok := def.Parent().(*block.BasicBlock); ok {
			defBlock = b
			defPos = opIndex(b, def)
		}
	}

	for _, d := range vn.Descendants().ToSlice() {
		reader, ok := d.(*pcodeop.PcodeOp)
		if !ok {
			continue
		}
		rb, ok := reader.Parent().(*block.BasicBlock)
		if !ok {
			continue
		}
		pos := opIndex(rb, reader)
		if pos < 0 {
			continue
		}
		if rb == defBlock {
			c.AddRange(rb, defPos, pos)
		} else {
			c.AddRange(rb, 0, pos)
		}
	}
	if defBlock != nil && len(c.byBlock[defBlock]) == 0 {
		c.AddRange(defBlock, defPos, defPos)
	}
	return c
}
