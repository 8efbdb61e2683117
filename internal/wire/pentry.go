// Copyright 2026 The pcodecore Authors
// This file is part of pcodecore.

package wire

import (
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/probechain/pcodecore/internal/decomperr"
	"github.com/probechain/pcodecore/internal/proto"
	"github.com/probechain/pcodecore/internal/space"
)

// EncodeAddr builds an <addr> element for addr.
func EncodeAddr(addr space.Address) *Element {
	e := NewElement(ElemAddr)
	e.SetUint(AttrSpace, uint64(addr.Space.Index))
	e.SetUint(AttrOffset, addr.Offset)
	return e
}

// DecodeAddr reads an <addr> element back into a space.Address.
func DecodeAddr(e *Element, resolver SpaceResolver) (space.Address, error) {
	if e.ID != ElemAddr {
		return space.Address{}, ErrMalformed
	}
	idx, ok := e.Uint(AttrSpace)
	if !ok {
		return space.Address{}, ErrMalformed
	}
	sp, ok := resolver.SpaceByIndex(int(idx))
	if !ok {
		return space.Address{}, ErrUnknownSpace
	}
	off, ok := e.Uint(AttrOffset)
	if !ok {
		return space.Address{}, ErrMalformed
	}
	return space.Address{Space: sp, Offset: off}, nil
}

// EncodePentry builds a <pentry> element for e, per spec.md §6:
// minsize/maxsize/align/metatype attributes, containing one address
// element (or a <join> of address pieces for a join-space entry) and
// one <group> child per member of e.Groups.
func EncodePentry(e *proto.ParamEntry) *Element {
	el := NewElement(ElemPentry)
	el.SetInt(AttrMinSize, int64(e.MinSize))
	el.SetInt(AttrMaxSize, int64(e.Size))
	el.SetInt(AttrAlign, int64(e.Alignment))
	el.SetInt(AttrMetatype, int64(e.TypeClass))

	if e.Join != nil {
		join := NewElement(ElemJoin)
		for i, piece := range e.Join.Pieces {
			pe := EncodeAddr(piece)
			pe.ID = ElemJoinPiece
			sz := 0
			if i < len(e.Join.Sizes) {
				sz = e.Join.Sizes[i]
			}
			pe.SetInt(AttrMaxSize, int64(sz))
			join.AddChild(pe)
		}
		el.AddChild(join)
	} else {
		el.AddChild(EncodeAddr(space.Address{Space: e.Space, Offset: e.Base}))
	}

	if e.Groups != nil {
		for _, g := range e.Groups.ToSlice() {
			gc := NewElement(ElemGroup)
			gc.SetInt(AttrGroup, int64(g))
			el.AddChild(gc)
		}
	}
	return el
}

// DecodePentry reads a <pentry> element back into a ParamEntry.
func DecodePentry(el *Element, resolver SpaceResolver) (*proto.ParamEntry, error) {
	if el.ID != ElemPentry {
		return nil, ErrMalformed
	}
	minSize, ok := el.Int(AttrMinSize)
	if !ok {
		return nil, ErrMalformed
	}
	maxSize, ok := el.Int(AttrMaxSize)
	if !ok {
		return nil, ErrMalformed
	}
	align, ok := el.Int(AttrAlign)
	if !ok {
		return nil, ErrMalformed
	}
	metatype, ok := el.Int(AttrMetatype)
	if !ok {
		return nil, ErrMalformed
	}

	pe := &proto.ParamEntry{
		Size:      int(maxSize),
		MinSize:   int(minSize),
		Alignment: int(align),
		TypeClass: int(metatype),
		Groups:    mapset.NewThreadUnsafeSet[int](),
	}

	if join, ok := el.FirstChild(ElemJoin); ok {
		rec := &proto.JoinRecord{}
		for _, pc := range join.ChildrenOf(ElemJoinPiece) {
			addr, err := DecodeAddr(pc, resolver)
			if err != nil {
				return nil, err
			}
			sz, _ := pc.Int(AttrMaxSize)
			rec.Pieces = append(rec.Pieces, addr)
			rec.Sizes = append(rec.Sizes, int(sz))
		}
		pe.Join = rec
	} else if addrEl, ok := el.FirstChild(ElemAddr); ok {
		addr, err := DecodeAddr(addrEl, resolver)
		if err != nil {
			return nil, err
		}
		pe.Space = addr.Space
		pe.Base = addr.Offset
	}

	for _, gc := range el.ChildrenOf(ElemGroup) {
		g, ok := gc.Int(AttrGroup)
		if !ok {
			return nil, ErrMalformed
		}
		pe.Groups.Add(int(g))
	}

	if pe.Join != nil && pe.Groups.Cardinality() > 0 {
		return nil, decomperr.NewLowLevelError(decomperr.ErrJoinPentryInGroup, "decodePentry")
	}

	return pe, nil
}
