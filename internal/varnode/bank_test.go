// Copyright 2026 The pcodecore Authors
// This file is part of pcodecore.

package varnode

import (
	"testing"

	"github.com/probechain/pcodecore/internal/space"
)

func testRAM() *space.AddrSpace { return &space.AddrSpace{Name: "ram", Index: 1, AddrSize: 8} }

type fakeDef struct {
	addr space.Address
	uniq uint64
}

func (f fakeDef) SeqAddr() space.Address { return f.addr }
func (f fakeDef) SeqUniq() uint64        { return f.uniq }

func TestBankCreateAndDestroy(t *testing.T) {
	b := NewBank()
	sp := testRAM()
	v := b.Create(sp, 0x100, 4)
	if b.Size() != 1 {
		t.Fatalf("expected 1 live varnode, got %d", b.Size())
	}
	if !v.IsFree() {
		t.Errorf("freshly created varnode should be free")
	}
	if err := b.Destroy(v); err != nil {
		t.Fatalf("destroy of free varnode should succeed: %v", err)
	}
	if b.Size() != 0 {
		t.Errorf("expected 0 live varnodes after destroy, got %d", b.Size())
	}
}

func TestBankSetInputRejectsOverlap(t *testing.T) {
	b := NewBank()
	sp := testRAM()
	a := b.Create(sp, 0x100, 4)
	if _, err := b.SetInput(a); err != nil {
		t.Fatalf("first SetInput should succeed: %v", err)
	}

	overlapping := b.Create(sp, 0x102, 4)
	if _, err := b.SetInput(overlapping); err == nil {
		t.Errorf("expected overlap error setting input over existing input")
	}

	identical := b.Create(sp, 0x100, 4)
	got, err := b.SetInput(identical)
	if err != nil {
		t.Fatalf("identical-storage SetInput should reuse the existing input: %v", err)
	}
	if got != a {
		t.Errorf("expected the pre-existing input varnode to be returned in place")
	}
}

func TestBankSetDefRequiresFree(t *testing.T) {
	b := NewBank()
	sp := testRAM()
	v := b.Create(sp, 0x200, 8)
	def := fakeDef{addr: space.Address{Space: sp, Offset: 0x10}, uniq: 1}
	if _, err := b.SetDef(v, def); err != nil {
		t.Fatalf("SetDef on a free varnode should succeed: %v", err)
	}
	if v.IsFree() {
		t.Errorf("varnode should no longer be free after SetDef")
	}
	if _, err := b.SetDef(v, def); err == nil {
		t.Errorf("SetDef on an already-written varnode should fail")
	}
}

func TestBankDestroyRejectsLiveDescendants(t *testing.T) {
	b := NewBank()
	sp := testRAM()
	v := b.Create(sp, 0x300, 4)
	v.AddDescendant(fakeDef{addr: space.Address{Space: sp, Offset: 0x20}, uniq: 1})
	if err := b.Destroy(v); err == nil {
		t.Errorf("expected destroy to fail while descendants remain")
	}
}

func TestBankIndexesStayConsistent(t *testing.T) {
	b := NewBank()
	sp := testRAM()
	for i := 0; i < 5; i++ {
		b.Create(sp, uint64(0x1000+i*4), 4)
	}
	if !b.ConsistentWithIndexes() {
		t.Errorf("loc and def indexes should contain the same live set")
	}
	locd := b.BeginLoc(sp)
	if len(locd) != 5 {
		t.Fatalf("expected 5 varnodes in loc enumeration, got %d", len(locd))
	}
	for i := 1; i < len(locd); i++ {
		if locd[i-1].Offset > locd[i].Offset {
			t.Errorf("loc enumeration not sorted by offset: %v", locd)
		}
	}
}

func TestBankMakeFreeThenDestroy(t *testing.T) {
	b := NewBank()
	sp := testRAM()
	v := b.Create(sp, 0x400, 4)
	def := fakeDef{addr: space.Address{Space: sp, Offset: 0x30}, uniq: 1}
	if _, err := b.SetDef(v, def); err != nil {
		t.Fatalf("SetDef failed: %v", err)
	}
	b.MakeFree(v)
	if !v.IsFree() {
		t.Errorf("expected varnode to be free after MakeFree")
	}
	if err := b.Destroy(v); err != nil {
		t.Errorf("destroy after MakeFree should succeed: %v", err)
	}
}
