// Copyright 2026 The pcodecore Authors
// This file is part of pcodecore.

package funcdata

import (
	"github.com/probechain/pcodecore/internal/proto"
	"github.com/probechain/pcodecore/internal/space"
)

// AddrSpaceManager is the architecture-global registry of address
// spaces. Funcdata consults it to resolve the handful of well-known
// spaces it needs by role rather than by name.
type AddrSpaceManager interface {
	GetSpaceByIndex(index int) *space.AddrSpace
	GetStackSpace() *space.AddrSpace
	GetConstantSpace() *space.AddrSpace
	GetUniqueSpace() *space.AddrSpace
	GetIopSpace() *space.AddrSpace
	GetFspecSpace() *space.AddrSpace
	ConstructJoinAddress(pieces []proto.JoinRecord) space.Address
	RenormalizeJoinAddress(addr space.Address, size int) ([]proto.JoinRecord, bool)
}

// Translate exposes the architecture's register file and byte order.
type Translate interface {
	GetRegister(name string) (space.Address, int, bool)
	IsBigEndian() bool
	GetDefaultCodeSpace() *space.AddrSpace
}

// LoadImage supplies raw bytes from the binary under analysis.
// LoadFill reports false on a miss (e.g. an unmapped page) rather than
// blocking or erroring, per spec.md §5's "synchronous I/O boundary"
// rule.
type LoadImage interface {
	LoadFill(buf []byte, addr space.Address) (n int, ok bool)
}

// DataType is the opaque handle TypeFactory hands back; Funcdata never
// inspects its shape directly.
type DataType interface {
	Size() int
}

// TypeFactory resolves and decodes data types.
type TypeFactory interface {
	GetBase(size int, metatype string) DataType
	GetTypePointer(points DataType) DataType
	GetTypeVoid() DataType
	GetTypeSpacebase() DataType
	DecodeType(raw []byte) (DataType, error)
}

// PcodeEmitter receives raw p-code emitted by an inject payload.
type PcodeEmitter interface {
	EmitCopy(dst, src space.Address, size int)
}

// PcodeInjectLibrary resolves named inject payloads (entry/return/
// callfixup snippets) and emits their p-code into a supplied emitter.
type PcodeInjectLibrary interface {
	Inject(name string, emit PcodeEmitter) error
}
