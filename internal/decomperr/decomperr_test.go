// Copyright 2026 The pcodecore Authors
// This file is part of pcodecore.

package decomperr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLowLevelErrorUnwrapsToSentinel(t *testing.T) {
	err := NewLowLevelError(ErrOverlappingInput, "CommitNewInputs")
	require.True(t, errors.Is(err, ErrOverlappingInput))
	require.Contains(t, err.Error(), "CommitNewInputs")
	require.NotEmpty(t, err.Stack())
}

func TestIsLowLevelDistinguishesFromRecoverable(t *testing.T) {
	low := NewLowLevelError(ErrMalformedPrototype, "")
	rec := NewRecoverableFailure(FailCallOther, "opaque CALLOTHER")

	require.True(t, IsLowLevel(low))
	require.False(t, IsLowLevel(rec))
	require.True(t, IsRecoverable(rec))
	require.False(t, IsRecoverable(low))
}

func TestRecoverableFailureKindString(t *testing.T) {
	rf := NewRecoverableFailure(FailOutputUnassigned, "")
	require.Equal(t, "output_unassigned", rf.Error())

	rf2 := NewRecoverableFailure(FailThunk, "tail jump to thunk")
	require.Equal(t, "fail_thunk: tail jump to thunk", rf2.Error())
}

func TestLowLevelErrorWithoutContext(t *testing.T) {
	err := NewLowLevelError(ErrWrongStackGrowthDirection, "")
	require.Equal(t, ErrWrongStackGrowthDirection.Error(), err.Error())
}
