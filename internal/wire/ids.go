// Copyright 2026 The pcodecore Authors
// This file is part of pcodecore.

package wire

// Element ids. range/rangelist/prototype/pentry/returnsym match the
// literal ids spec.md §6 gives as examples; the prototype children and
// addr have no ids specified there, so this package assigns a
// consistent internal block for them.
const (
	ElemRange    = 12
	ElemRangeList = 13

	ElemPentry    = 168
	ElemPrototype = 169
	ElemReturnSym = 172

	ElemAddr            = 200
	ElemInput           = 201
	ElemOutput          = 202
	ElemUnaffected      = 203
	ElemKilledByCall    = 204
	ElemReturnAddress   = 205
	ElemLocalRange      = 206
	ElemParamRange      = 207
	ElemLikelyTrash     = 208
	ElemInternalStorage = 209
	ElemPcode           = 210
	ElemGroup           = 211
	ElemJoin            = 212
	ElemJoinPiece       = 213
)

// Attribute ids.
const (
	AttrSpace = 1
	AttrFirst = 2
	AttrLast  = 3
	AttrName  = 4
	AttrOffset = 5

	AttrModel       = 10
	AttrExtrapop    = 11
	AttrDotDotDot   = 12
	AttrModelLock   = 13
	AttrVoidLock    = 14
	AttrInline      = 15
	AttrNoReturn    = 16
	AttrHasThis     = 17
	AttrConstructor = 18
	AttrStackGrowth = 19
	AttrInjectEntry = 20
	AttrInjectReturn = 21

	AttrMinSize   = 30
	AttrMaxSize   = 31
	AttrAlign     = 32
	AttrMetatype  = 33
	AttrExtension = 34
	AttrGroup     = 35

	AttrTypeLock = 40
	AttrTypeSize = 41
)
