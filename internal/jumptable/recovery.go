// Copyright 2026 The pcodecore Authors
// This file is part of pcodecore.

package jumptable

import "github.com/probechain/pcodecore/internal/space"

// RecoverFull runs a single-shot enumeration of every target address,
// used when the table's shape is simple enough to resolve in one pass
// (e.g. a load from a single contiguous table of fixed-size entries).
func RecoverFull(jt *JumpTable, enumerate func() ([]space.Address, bool)) {
	targets, ok := enumerate()
	if !ok {
		jt.Stage = StageFail
		return
	}
	jt.Targets = append(jt.Targets, targets...)
	jt.Stage = StageComplete
}

// AdvanceStage advances jt's multistage recovery by one step: next is
// handed the current stage and returns the stage to transition to plus
// any newly recovered targets for this step. Recovery stops advancing
// once next returns StageComplete or StageFail.
func AdvanceStage(jt *JumpTable, next func(Stage) (Stage, []space.Address, bool)) {
	if jt.Stage == StageComplete || jt.Stage == StageFail {
		return
	}
	stage, targets, ok := next(jt.Stage)
	if !ok {
		jt.Stage = StageFail
		return
	}
	jt.Targets = append(jt.Targets, targets...)
	jt.Stage = stage
}
