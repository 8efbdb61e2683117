// Copyright 2026 The pcodecore Authors
// This file is part of pcodecore.

// Package callspec implements per-call-site prototype evolution
// (FuncCallSpecs) and the AncestorRealistic ancestor-DAG traversal that
// backs trial classification.
package callspec

import (
	"github.com/probechain/pcodecore/internal/pcodeop"
	"github.com/probechain/pcodecore/internal/varnode"
)

// AncestorResult is the terminal verdict of an AncestorRealistic
// traversal.
type AncestorResult int

const (
	AncestorFail AncestorResult = iota
	AncestorFailKill
	AncestorSuccess
	AncestorSolid
)

// Realistic reports whether r counts the trial as realistic: success or
// solid, per spec.md §4.8.
func (r AncestorResult) Realistic() bool { return r == AncestorSuccess || r == AncestorSolid }

// ancestorFrame is one explicit stack-machine frame: the varnode under
// examination and the byte offset within its eventual value the search
// is still tracking (PIECE divides a traversal into high/low halves
// aligned to that offset).
type ancestorFrame struct {
	vn     *varnode.Varnode
	offset int
}

// AncestorRealistic walks the ancestor DAG of vn as an explicit stack
// machine (rather than recursion) so visited varnodes can be marked to
// break cycles without unwinding Go's call stack. It descends through
// COPY/SUBPIECE/PIECE/MULTIEQUAL/INDIRECT with the type-preserving
// rules of spec.md §4.8: SUBPIECE at offset 0 whose input is the same
// size as vn is transparent; PIECE's two halves are visited according
// to which one frame.offset currently falls in.
func AncestorRealistic(vn *varnode.Varnode) AncestorResult {
	visited := make(map[*varnode.Varnode]bool)
	stack := []ancestorFrame{{vn: vn, offset: 0}}

	for len(stack) > 0 {
		frame := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if frame.vn == nil || visited[frame.vn] {
			continue
		}
		visited[frame.vn] = true

		if frame.vn.HasFlags(varnode.FlagIndirectCreation) {
			return AncestorFailKill
		}
		if frame.vn.HasFlags(varnode.FlagReturnAddress) {
			return AncestorFail
		}
		if frame.vn.HasFlags(varnode.FlagUnaffected) && frame.vn.Def() == nil {
			return AncestorFail
		}

		def, ok := frame.vn.Def().(*pcodeop.PcodeOp)
		if !ok {
			if frame.vn.IsInput() {
				// an ordinary formal input, not flagged unaffected or
				// return-address: a legitimate incoming value.
				return AncestorSuccess
			}
			// free or constant: an anchoring write with nothing further
			// to trace.
			return AncestorSolid
		}

		switch def.Opcode {
		case pcodeop.COPY:
			stack = append(stack, ancestorFrame{vn: def.Input(0), offset: frame.offset})

		case pcodeop.SUBPIECE:
			in, shift := def.Input(0), constOffset(def.Input(1))
			if shift == 0 && in.Size == frame.vn.Size {
				stack = append(stack, ancestorFrame{vn: in, offset: frame.offset})
			} else {
				stack = append(stack, ancestorFrame{vn: in, offset: frame.offset + shift})
			}

		case pcodeop.PIECE:
			hi, lo := def.Input(0), def.Input(1)
			if frame.offset < lo.Size {
				stack = append(stack, ancestorFrame{vn: lo, offset: frame.offset})
			} else {
				stack = append(stack, ancestorFrame{vn: hi, offset: frame.offset - lo.Size})
			}

		case pcodeop.MULTIEQUAL:
			// every input is pushed; the traversal returns the verdict
			// of the first branch to reach one (the last input is
			// examined first), so the branches' verdicts are not combined.
			for i := 0; i < def.NumInputs(); i++ {
				stack = append(stack, ancestorFrame{vn: def.Input(i), offset: frame.offset})
			}

		case pcodeop.INDIRECT:
			stack = append(stack, ancestorFrame{vn: def.Input(0), offset: frame.offset})

		default:
			return AncestorSolid
		}
	}

	// the stack ran dry without resolving to a specific verdict (every
	// branch of a MULTIEQUAL bottomed out in a cycle already visited);
	// treat as solid, matching spec.md's "anchoring write found".
	return AncestorSolid
}

func constOffset(vn *varnode.Varnode) int {
	if vn == nil || !vn.IsConstant() {
		return 0
	}
	return int(vn.Offset)
}
