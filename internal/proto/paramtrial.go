// Copyright 2026 The pcodecore Authors
// This file is part of pcodecore.

package proto

import "github.com/probechain/pcodecore/internal/space"

// TrialFlags records the classification state accumulated on a
// ParamTrial across fillinMap passes.
type TrialFlags uint32

const (
	TrialChecked TrialFlags = 1 << iota
	TrialUsed
	TrialActive
	TrialUnref
	TrialKilledByCall
	TrialAncestorRealistic
	TrialAncestorSolid
	TrialCondExeEffect
	TrialRemFormed
	TrialIndcreateFormed
)

// ParamTrial is a concrete observed parameter-passing candidate: an
// address and size seen on a CALL or RETURN op's operand, matched
// (or not) against a ParamEntry.
type ParamTrial struct {
	Addr  space.Address
	Size  int
	Slot  int
	Entry *ParamEntry
	Flags TrialFlags
}

func (t *ParamTrial) HasFlags(m TrialFlags) bool { return t.Flags&m == m }
func (t *ParamTrial) SetFlags(m TrialFlags)      { t.Flags |= m }
func (t *ParamTrial) ClearFlags(m TrialFlags)    { t.Flags &^= m }

// IsActive reports whether the trial currently counts toward the
// formal parameter list.
func (t *ParamTrial) IsActive() bool { return t.HasFlags(TrialActive) }

// ParamActive holds the ordered trial set for one CALL or RETURN site
// and tracks the pass count used to detect fillinMap convergence.
type ParamActive struct {
	Trials    []*ParamTrial
	PassCount int
	IsInput   bool
}

// NumTrials returns the number of trials currently tracked.
func (a *ParamActive) NumTrials() int { return len(a.Trials) }

// ActiveTrials returns the subset of trials currently marked active.
func (a *ParamActive) ActiveTrials() []*ParamTrial {
	out := make([]*ParamTrial, 0, len(a.Trials))
	for _, t := range a.Trials {
		if t.IsActive() {
			out = append(out, t)
		}
	}
	return out
}
