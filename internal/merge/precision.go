// Copyright 2026 The pcodecore Authors
// This file is part of pcodecore.

package merge

import (
	"errors"

	"github.com/probechain/pcodecore/internal/varnode"
)

// ErrNotAdjacent is returned by FoldPrecisionPair when lo and hi are
// not byte-adjacent halves of a double-width value.
var ErrNotAdjacent = errors.New("merge: precision pair halves are not adjacent")

// PrecisionPair is a folded lo/hi pair representing one double-width
// value carried as two single-width varnodes until SUBPIECE/PIECE
// scaffolding proves they may be treated as a whole (spec.md §4.6).
type PrecisionPair struct {
	Lo, Hi *varnode.Varnode
	Whole  *varnode.Varnode // installed lazily, once the whole value is needed
}

// FoldPrecisionPair marks lo and hi with their precision flags and
// records the pairing. lo must occupy the bytes immediately below hi
// in the same space.
func FoldPrecisionPair(lo, hi *varnode.Varnode) (*PrecisionPair, error) {
	if lo.Space != hi.Space || lo.Offset+uint64(lo.Size) != hi.Offset {
		return nil, ErrNotAdjacent
	}
	lo.SetFlags(varnode.FlagPrecisionLo)
	hi.SetFlags(varnode.FlagPrecisionHi)
	return &PrecisionPair{Lo: lo, Hi: hi}, nil
}

// InstallWhole records the SUBPIECE/PIECE-backed combined varnode once
// the whole double-width value is demanded. Until this is called,
// Whole is nil and consumers must read Lo/Hi separately.
func (p *PrecisionPair) InstallWhole(whole *varnode.Varnode) {
	p.Whole = whole
}

// NeedsScaffolding reports whether no whole varnode has been installed
// on the pair yet (Whole is nil).
func (p *PrecisionPair) NeedsScaffolding() bool { return p.Whole == nil }
