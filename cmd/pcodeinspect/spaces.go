// Copyright 2026 The pcodecore Authors
// This file is part of pcodecore.

package main

import "github.com/probechain/pcodecore/internal/space"

// staticSpaces is a minimal, hardcoded address-space table sufficient
// to resolve the handful of spaces a wire-encoded prototype or pentry
// dump references. A real AddrSpaceManager would come from the
// architecture description; pcodeinspect only ever inspects isolated
// wire blobs, so a fixed table is enough.
type staticSpaces struct {
	byIndex map[int]*space.AddrSpace
}

func newStaticSpaces() *staticSpaces {
	ram := &space.AddrSpace{Name: "ram", Index: 1, AddrSize: 8}
	reg := &space.AddrSpace{Name: "register", Index: 2, AddrSize: 8}
	constSp := &space.AddrSpace{Name: "const", Index: 3, Kind: space.KindConstant, AddrSize: 8}
	unique := &space.AddrSpace{Name: "unique", Index: 4, Kind: space.KindUnique, AddrSize: 8}
	return &staticSpaces{byIndex: map[int]*space.AddrSpace{
		1: ram,
		2: reg,
		3: constSp,
		4: unique,
	}}
}

func (s *staticSpaces) SpaceByIndex(index int) (*space.AddrSpace, bool) {
	sp, ok := s.byIndex[index]
	return sp, ok
}
