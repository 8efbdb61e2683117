// Copyright 2026 The pcodecore Authors
// This file is part of pcodecore.

package proto

import "github.com/probechain/pcodecore/internal/space"

// StackGrowth indicates which direction the stack grows as arguments
// are pushed.
type StackGrowth int

const (
	StackGrowsNegative StackGrowth = iota
	StackGrowsPositive
)

// ProtoModel bundles the declarative ABI definition used to assign and
// score a function's parameter and return storage: input/output
// ParamLists, effect records, likely-trash and internal-storage
// ranges, the local/param stack windows, stack growth direction, and
// the this/constructor markers.
type ProtoModel struct {
	Name string

	Input  ParamList
	Output ParamList

	LikelyTrash   *space.RangeList
	InternalStore *space.RangeList
	LocalRange    *space.RangeList
	ParamRange    *space.RangeList

	StackGrowth StackGrowth

	HasThis     bool
	IsConstruct bool

	InjectUponEntry  int
	InjectUponReturn int

	// Merged is non-nil only when this ProtoModel is itself the
	// merged-model selector over a set of constituent ProtoModels.
	Merged *ParamListMerged
}

// Score returns the cumulative mismatch penalty of active's trials as
// they are already matched to entries; m's Input list is not consulted.
func (m *ProtoModel) Score(active *ParamActive) int {
	return scoreActive(active)
}
