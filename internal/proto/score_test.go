// Copyright 2026 The pcodecore Authors
// This file is part of pcodecore.

package proto

import "testing"

func TestScoreTrialsPenaltyTable(t *testing.T) {
	// Missing slot at index 0 costs the steepest penalty; beyond index
	// 3 every missing slot costs the flat late penalty.
	if got := ScoreTrials([]int{0}, 0, 0); got != 16 {
		t.Errorf("missing slot 0: got %d, want 16", got)
	}
	if got := ScoreTrials([]int{4}, 0, 0); got != penaltyMissingLate {
		t.Errorf("missing slot 4: got %d, want %d", got, penaltyMissingLate)
	}
	if got := ScoreTrials(nil, 1, 0); got != penaltyDuplicateSlot {
		t.Errorf("one duplicated slot: got %d, want %d", got, penaltyDuplicateSlot)
	}
	if got := ScoreTrials(nil, 0, 1); got != penaltyTrialMismatch {
		t.Errorf("one mismatched trial: got %d, want %d", got, penaltyTrialMismatch)
	}
}

func TestScoreActivePenalizesMismatchAndMissing(t *testing.T) {
	reg := testRegSpace()
	entry := &ParamEntry{Space: reg, Base: 0x10, Size: 4, MinSize: 4}
	active := &ParamActive{Trials: []*ParamTrial{
		{Entry: entry, Size: 4}, // exact match, no penalty
		{Entry: nil},            // missing, slot index 1
	}}
	if got, want := scoreActive(active), missingPenalty(1); got != want {
		t.Errorf("got %d, want %d", got, want)
	}
}
