// Copyright 2026 The pcodecore Authors
// This file is part of pcodecore.

package wire

import "github.com/probechain/pcodecore/internal/space"

// ReturnSymData is the decoded/encoded form of a <returnsym> element:
// spec.md §6 describes it as an optional typelock flag plus one
// address element and one encoded type reference. Type decoding goes
// through TypeFactory (out of scope for this package), so ReturnSymData
// carries the type's size rather than a full DataType handle.
type ReturnSymData struct {
	TypeLock bool
	Addr     space.Address
	TypeSize int
}

// EncodeReturnSym builds a <returnsym> element for d.
func EncodeReturnSym(d ReturnSymData) *Element {
	el := NewElement(ElemReturnSym)
	el.SetBool(AttrTypeLock, d.TypeLock)
	el.SetInt(AttrTypeSize, int64(d.TypeSize))
	el.AddChild(EncodeAddr(d.Addr))
	return el
}

// DecodeReturnSym reads a <returnsym> element back into ReturnSymData.
func DecodeReturnSym(el *Element, resolver SpaceResolver) (ReturnSymData, error) {
	if el.ID != ElemReturnSym {
		return ReturnSymData{}, ErrMalformed
	}
	addrEl, ok := el.FirstChild(ElemAddr)
	if !ok {
		return ReturnSymData{}, ErrMalformed
	}
	addr, err := DecodeAddr(addrEl, resolver)
	if err != nil {
		return ReturnSymData{}, err
	}
	typeSize, _ := el.Int(AttrTypeSize)
	return ReturnSymData{
		TypeLock: el.Bool(AttrTypeLock),
		Addr:     addr,
		TypeSize: int(typeSize),
	}, nil
}
