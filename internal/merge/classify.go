// Copyright 2026 The pcodecore Authors
// This file is part of pcodecore.

package merge

import "github.com/probechain/pcodecore/internal/varnode"

// OverlapType classifies how two varnodes' storage windows relate
// (spec.md §4.6).
type OverlapType int

const (
	OverlapDisjoint OverlapType = iota
	OverlapPartial
	OverlapEqual
)

// BoundType classifies whether a read must be snipped to a different
// varnode to preserve semantics (spec.md §4.6).
type BoundType int

const (
	BoundNone BoundType = iota
	BoundPartial
	BoundDefinition
	BoundAddrForce
)

func storageRange(vn *varnode.Varnode) (start, end uint64) {
	return vn.Offset, vn.Offset + uint64(vn.Size)
}

// Overlap classifies the storage relationship between a and b. Two
// varnodes in different spaces never overlap.
func Overlap(a, b *varnode.Varnode) OverlapType {
	if a.Space != b.Space {
		return OverlapDisjoint
	}
	if a.Offset == b.Offset && a.Size == b.Size {
		return OverlapEqual
	}
	aStart, aEnd := storageRange(a)
	bStart, bEnd := storageRange(b)
	if aEnd <= bStart || bEnd <= aStart {
		return OverlapDisjoint
	}
	return OverlapPartial
}

// Bound decides whether candidate's cover containing reader's read
// point is enough to satisfy the read outright, or whether it must be
// rerouted (spec.md §4.6's boundtype decision). reader is the
// descendant varnode whose def the snip search is trying to satisfy
// from candidate.
func Bound(candidate, reader *varnode.Varnode) BoundType {
	switch Overlap(candidate, reader) {
	case OverlapDisjoint:
		return BoundNone
	case OverlapEqual:
		if reader.HasFlags(varnode.FlagAddrForced) {
			return BoundAddrForce
		}
		return BoundDefinition
	default:
		return BoundPartial
	}
}

// Shadow describes wide's narrower slice recognized by
// PartialCopyShadow.
type Shadow struct {
	Wide       *varnode.Varnode
	Narrow     *varnode.Varnode
	ByteOffset int // narrow's offset into wide, in bytes from wide's low end
}

// PartialCopyShadow recognizes narrow as a byte-aligned slice of wide
// at a known offset (spec.md §4.6: "a narrower varnode as a shadow of
// a wider one at a known byte offset"), the condition that lets a
// partial overlap resolve via SUBPIECE/PIECE scaffolding instead of a
// snip.
func PartialCopyShadow(wide, narrow *varnode.Varnode) (Shadow, bool) {
	if wide.Space != narrow.Space {
		return Shadow{}, false
	}
	if narrow.Size >= wide.Size {
		return Shadow{}, false
	}
	if narrow.Offset < wide.Offset {
		return Shadow{}, false
	}
	byteOffset := int(narrow.Offset - wide.Offset)
	if byteOffset+narrow.Size > wide.Size {
		return Shadow{}, false
	}
	return Shadow{Wide: wide, Narrow: narrow, ByteOffset: byteOffset}, true
}
