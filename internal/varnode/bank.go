// Copyright 2026 The pcodecore Authors
// This file is part of pcodecore.

package varnode

import (
	"errors"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/probechain/pcodecore/internal/decomperr"
	"github.com/probechain/pcodecore/internal/space"
)

// locKey orders the loc index: (space, offset, size) is the primary key;
// ties are broken by creation order so that distinct varnodes with
// identical storage (e.g. across SSA generations before renaming) remain
// individually addressable.
type locKey struct {
	spaceIdx int
	offset   uint64
	size     int
	id       int
}

// defKey orders the def index: definition site first (address then
// per-address uniquifier), then id as a final tiebreaker.
type defKey struct {
	defAddrSpace int
	defAddrOff   uint64
	defUniq      uint64
	id           int
}

// Bank owns the lifecycle of every Varnode belonging to one function. It
// maintains the dual loc/def ordered indexes of spec.md §3.3 and a
// monotonic create-index passes can use to mark phase boundaries.
//
// Grounded on probe-lang/lang/vm/memory.go's map-of-descriptors +
// bounds-checked-mutator idiom, generalized from byte allocations to SSA
// value identities.
type Bank struct {
	byID map[int]*Varnode

	locKeys []locKey // sorted
	defKeys []defKey // sorted

	nextID       int
	createIndex  int
	locEnumCache *lru.Cache[int, []*Varnode] // spaceIdx -> snapshot
}

// NewBank creates an empty Varnode bank.
func NewBank() *Bank {
	cache, _ := lru.New[int, []*Varnode](64)
	return &Bank{
		byID:         make(map[int]*Varnode),
		locEnumCache: cache,
	}
}

// CreateIndex returns the bank's current monotonic create-index.
func (b *Bank) CreateIndex() int { return b.createIndex }

// Create allocates a fresh free Varnode of the given storage and inserts
// it into both indexes as an as-yet-unanchored entry (callers must follow
// with SetInput or SetDef to give it a definition-site key; until then it
// sorts under the zero def key).
func (b *Bank) Create(sp *space.AddrSpace, offset uint64, size int) *Varnode {
	v := &Varnode{id: b.nextID, Space: sp, Offset: offset, Size: size}
	b.nextID++
	b.createIndex++
	b.byID[v.id] = v
	b.insertLoc(v)
	b.insertDef(v, space.Minimal(), 0)
	b.locEnumCache.Remove(spaceIndexOf(sp))
	return v
}

func spaceIndexOf(sp *space.AddrSpace) int {
	if sp == nil {
		return -1
	}
	return sp.Index
}

func (b *Bank) insertLoc(v *Varnode) {
	k := locKey{spaceIdx: spaceIndexOf(v.Space), offset: v.Offset, size: v.Size, id: v.id}
	i := sort.Search(len(b.locKeys), func(i int) bool { return !locLess(b.locKeys[i], k) })
	b.locKeys = append(b.locKeys, locKey{})
	copy(b.locKeys[i+1:], b.locKeys[i:])
	b.locKeys[i] = k
}

func (b *Bank) removeLoc(v *Varnode) {
	k := locKey{spaceIdx: spaceIndexOf(v.Space), offset: v.Offset, size: v.Size, id: v.id}
	for i, cur := range b.locKeys {
		if cur == k {
			b.locKeys = append(b.locKeys[:i], b.locKeys[i+1:]...)
			return
		}
	}
}

func locLess(a, b locKey) bool {
	if a.spaceIdx != b.spaceIdx {
		return a.spaceIdx < b.spaceIdx
	}
	if a.offset != b.offset {
		return a.offset < b.offset
	}
	if a.size != b.size {
		return a.size < b.size
	}
	return a.id < b.id
}

func (b *Bank) insertDef(v *Varnode, addr space.Address, uniq uint64) {
	k := defKey{defAddrSpace: spaceIndexOf(addr.Space), defAddrOff: addr.Offset, defUniq: uniq, id: v.id}
	i := sort.Search(len(b.defKeys), func(i int) bool { return !defLess(b.defKeys[i], k) })
	b.defKeys = append(b.defKeys, defKey{})
	copy(b.defKeys[i+1:], b.defKeys[i:])
	b.defKeys[i] = k
}

func (b *Bank) removeDef(v *Varnode) {
	for i, cur := range b.defKeys {
		if cur.id == v.id {
			b.defKeys = append(b.defKeys[:i], b.defKeys[i+1:]...)
			return
		}
	}
}

func defLess(a, b defKey) bool {
	if a.defAddrSpace != b.defAddrSpace {
		return a.defAddrSpace < b.defAddrSpace
	}
	if a.defAddrOff != b.defAddrOff {
		return a.defAddrOff < b.defAddrOff
	}
	if a.defUniq != b.defUniq {
		return a.defUniq < b.defUniq
	}
	return a.id < b.id
}

// errNotFree and errHasDescendants are not among spec.md §7's named
// low-level-error causes (those are declared in internal/decomperr);
// they are wrapped through decomperr.NewLowLevelError for a consistent
// taxonomy regardless.
var (
	errNotFree        = errors.New("varnode: not free")
	errHasDescendants = errors.New("varnode: still has descendants")
)

// SetInput marks v as a function input. Fails if v is not free, or if its
// storage overlaps an existing input in the same space (spec.md §4.2): in
// that case the pre-existing input of identical storage is returned
// in place of creating a duplicate.
func (b *Bank) SetInput(v *Varnode) (*Varnode, error) {
	if !v.IsFree() {
		return nil, decomperr.NewLowLevelError(errNotFree, "setInput")
	}
	for _, other := range b.byID {
		if other == v || !other.IsInput() {
			continue
		}
		if other.overlaps(v.Space, v.Offset, v.Size) {
			if other.Space == v.Space && other.Offset == v.Offset && other.Size == v.Size {
				return other, nil
			}
			return nil, decomperr.NewLowLevelError(decomperr.ErrOverlappingInput, "setInput: overlaps an existing input of different storage")
		}
	}
	v.SetFlags(FlagInput)
	return v, nil
}

// SetDef links v as the output of def, reusing the matching pre-existing
// input if one exists at identical storage (spec.md §4.2). Fails if v is
// not currently free.
func (b *Bank) SetDef(v *Varnode, def Def) (*Varnode, error) {
	if !v.IsFree() {
		return nil, decomperr.NewLowLevelError(errNotFree, "setDef")
	}
	for _, other := range b.byID {
		if other == v || !other.IsInput() {
			continue
		}
		if other.Space == v.Space && other.Offset == v.Offset && other.Size == v.Size {
			return other, nil
		}
	}
	b.removeDef(v)
	v.def = def
	v.SetFlags(FlagWritten)
	b.insertDef(v, def.SeqAddr(), def.SeqUniq())
	return v, nil
}

// MakeFree detaches v's def or input status, returning it to the free
// state (still indexed, still owned by the bank).
func (b *Bank) MakeFree(v *Varnode) {
	v.def = nil
	v.ClearFlags(FlagInput | FlagWritten)
	b.removeDef(v)
	b.insertDef(v, space.Minimal(), 0)
}

// Destroy removes v from the bank. Fails if v still has descendants or a
// def/input role (spec.md §4.2).
func (b *Bank) Destroy(v *Varnode) error {
	if !v.IsFree() {
		return decomperr.NewLowLevelError(errNotFree, "destroy: varnode still has a def or input role")
	}
	if !v.HasNoDescendants() {
		return decomperr.NewLowLevelError(errHasDescendants, "destroy")
	}
	b.removeLoc(v)
	b.removeDef(v)
	delete(b.byID, v.id)
	b.locEnumCache.Remove(spaceIndexOf(v.Space))
	return nil
}

// Lookup returns the varnode with the given bank identity, if live.
func (b *Bank) Lookup(id int) (*Varnode, bool) {
	v, ok := b.byID[id]
	return v, ok
}

// Size returns the number of live varnodes in the bank.
func (b *Bank) Size() int { return len(b.byID) }

// BeginLoc returns every live varnode in sp, ordered by (offset, size,
// id) -- the inclusive lower bound of the loc index for that space.
func (b *Bank) BeginLoc(sp *space.AddrSpace) []*Varnode {
	if cached, ok := b.locEnumCache.Get(spaceIndexOf(sp)); ok {
		return cached
	}
	var out []*Varnode
	for _, k := range b.locKeys {
		if k.spaceIdx == spaceIndexOf(sp) {
			out = append(out, b.byID[k.id])
		}
	}
	b.locEnumCache.Add(spaceIndexOf(sp), out)
	return out
}

// BeginLocExact returns every live varnode at exactly (sp, offset, size).
func (b *Bank) BeginLocExact(sp *space.AddrSpace, offset uint64, size int) []*Varnode {
	var out []*Varnode
	for _, v := range b.BeginLoc(sp) {
		if v.Offset == offset && v.Size == size {
			out = append(out, v)
		}
	}
	return out
}

// BeginDef returns every live varnode defined at addr, in per-address
// uniquifier order.
func (b *Bank) BeginDef(addr space.Address) []*Varnode {
	var out []*Varnode
	for _, k := range b.defKeys {
		if k.defAddrSpace == spaceIndexOf(addr.Space) && k.defAddrOff == addr.Offset {
			out = append(out, b.byID[k.id])
		}
	}
	return out
}

// ConsistentWithIndexes checks the invariant of spec.md §8: the loc index
// and def index contain exactly the same set of live varnodes.
func (b *Bank) ConsistentWithIndexes() bool {
	if len(b.locKeys) != len(b.byID) || len(b.defKeys) != len(b.byID) {
		return false
	}
	seen := make(map[int]bool, len(b.locKeys))
	for _, k := range b.locKeys {
		seen[k.id] = true
	}
	for _, k := range b.defKeys {
		if !seen[k.id] {
			return false
		}
	}
	return true
}
