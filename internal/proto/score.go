// Copyright 2026 The pcodecore Authors
// This file is part of pcodecore.

package proto

// missingSlotPenalty gives the cost of a missing formal at each of the
// first four slot positions; every later slot costs the flat
// penaltyMissingLate instead.
var missingSlotPenalty = [4]int{16, 10, 7, 5}

const (
	penaltyDuplicateSlot = 20
	penaltyTrialMismatch = 20
	penaltyMissingLate   = 3
)

func missingPenalty(slotIndex int) int {
	if slotIndex >= 0 && slotIndex < len(missingSlotPenalty) {
		return missingSlotPenalty[slotIndex]
	}
	return penaltyMissingLate
}

// ScoreTrials computes the cumulative mismatch penalty used to rank a
// ProtoModel candidate against an observed trial set: missingSlots
// lists the formal-slot indices that found no trial, duplicated counts
// slots claimed by more than one trial, mismatched counts trials whose
// size disagrees with their matched entry.
func ScoreTrials(missingSlots []int, duplicated, mismatched int) int {
	score := 0
	for _, idx := range missingSlots {
		score += missingPenalty(idx)
	}
	score += duplicated * penaltyDuplicateSlot
	score += mismatched * penaltyTrialMismatch
	return score
}

// scoreActive is ScoreTrials specialized to a ParamActive's trials:
// a trial with no matched entry is a missing slot at its own index,
// a duplicated entry (claimed by more than one trial) costs once per
// extra claimant, and a matched trial whose size matches neither the
// entry's declared nor minimum size costs a mismatch penalty.
func scoreActive(active *ParamActive) int {
	claims := make(map[*ParamEntry]int)
	var missing []int
	mismatched := 0
	for i, t := range active.Trials {
		if t.Entry == nil {
			missing = append(missing, i)
			continue
		}
		claims[t.Entry]++
		if t.Size != t.Entry.Size && t.Size != t.Entry.MinSize {
			mismatched++
		}
	}
	duplicated := 0
	for _, n := range claims {
		if n > 1 {
			duplicated += n - 1
		}
	}
	return ScoreTrials(missing, duplicated, mismatched)
}
