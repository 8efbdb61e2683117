// Copyright 2026 The pcodecore Authors
// This file is part of pcodecore.

package wire

import (
	"errors"

	"github.com/probechain/pcodecore/internal/space"
)

// ErrUnknownSpace is returned by Decode* when a decoded space index
// does not resolve through the supplied SpaceResolver.
var ErrUnknownSpace = errors.New("wire: unresolved space index")

// SpaceResolver maps an encoded space index back to the live
// *space.AddrSpace it names, the collaborator a decoder needs since
// the wire format carries spaces by index, not by pointer.
type SpaceResolver interface {
	SpaceByIndex(index int) (*space.AddrSpace, bool)
}

// EncodeRange builds a <range> element for r.
func EncodeRange(r space.Range) *Element {
	e := NewElement(ElemRange)
	e.SetUint(AttrSpace, uint64(r.Space.Index))
	e.SetUint(AttrFirst, r.First)
	e.SetUint(AttrLast, r.Last)
	return e
}

// DecodeRange reads a <range> element back into a space.Range.
func DecodeRange(e *Element, resolver SpaceResolver) (space.Range, error) {
	if e.ID != ElemRange {
		return space.Range{}, ErrMalformed
	}
	idx, ok := e.Uint(AttrSpace)
	if !ok {
		return space.Range{}, ErrMalformed
	}
	sp, ok := resolver.SpaceByIndex(int(idx))
	if !ok {
		return space.Range{}, ErrUnknownSpace
	}
	first, ok := e.Uint(AttrFirst)
	if !ok {
		return space.Range{}, ErrMalformed
	}
	last, ok := e.Uint(AttrLast)
	if !ok {
		return space.Range{}, ErrMalformed
	}
	return space.Range{Space: sp, First: first, Last: last}, nil
}

// EncodeRangeList builds a <rangelist> element wrapping one <range>
// child per disjoint range in rl's canonical sorted form.
func EncodeRangeList(rl *space.RangeList) *Element {
	e := NewElement(ElemRangeList)
	if rl == nil {
		return e
	}
	for _, r := range rl.Ranges() {
		e.AddChild(EncodeRange(r))
	}
	return e
}

// DecodeRangeList reads a <rangelist> element back into a RangeList,
// reinserting each child range in document order so merging behaves
// identically to building the list live (spec.md §8's round-trip law:
// identity on the canonical sorted form).
func DecodeRangeList(e *Element, resolver SpaceResolver) (*space.RangeList, error) {
	if e.ID != ElemRangeList {
		return nil, ErrMalformed
	}
	rl := &space.RangeList{}
	for _, child := range e.ChildrenOf(ElemRange) {
		r, err := DecodeRange(child, resolver)
		if err != nil {
			return nil, err
		}
		rl.Insert(r.Space, r.First, r.Last)
	}
	return rl, nil
}
