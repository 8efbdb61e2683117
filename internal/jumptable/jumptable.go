// Copyright 2026 The pcodecore Authors
// This file is part of pcodecore.

// Package jumptable implements switch-table recovery from a BRANCHIND
// op: the early-fail opaque-CALLOTHER check, staged recovery over a
// partial clone of the function, the tail-call/return-address guard,
// and the multistage target-enumeration state machine.
package jumptable

import "github.com/probechain/pcodecore/internal/space"

// Stage is the multistage recovery state machine's current phase.
type Stage int

const (
	StageInitial Stage = iota
	StageNormSwitch
	StageSwitchNorm2
	StageComplete
	StageFail
)

// JumpTable holds the recovered switch-table: either a fully enumerated
// address set (Stage == StageComplete) or a partial recovery pinned at
// an intermediate Stage, ready to resume.
type JumpTable struct {
	Stage   Stage
	Targets []space.Address

	// switchOver maps a recovered target address to its successor
	// block index in the CFG the BRANCHIND lives in, filled in once the
	// target blocks exist.
	switchOver map[uint64]int
}

// NewJumpTable creates an empty jump table at the initial recovery
// stage.
func NewJumpTable() *JumpTable {
	return &JumpTable{Stage: StageInitial, switchOver: map[uint64]int{}}
}

// SwitchOver maps addr to blockIndex, recorded once the target block
// for that address is known.
func (jt *JumpTable) SwitchOver(addr space.Address, blockIndex int) {
	jt.switchOver[addr.Offset] = blockIndex
}

// BlockFor returns the successor block index recovered for addr.
func (jt *JumpTable) BlockFor(addr space.Address) (int, bool) {
	idx, ok := jt.switchOver[addr.Offset]
	return idx, ok
}

// AddTarget appends a recovered target address.
func (jt *JumpTable) AddTarget(addr space.Address) {
	jt.Targets = append(jt.Targets, addr)
}
