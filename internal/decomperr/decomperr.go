// Copyright 2026 The pcodecore Authors
// This file is part of pcodecore.

// Package decomperr implements the two error taxonomies of spec.md §7:
// LowLevelError, a structural invariant violation that is
// unconditionally fatal to the current function, and
// RecoverableFailure, a per-site failure that marks state but leaves
// the function's analysis intact.
package decomperr

import (
	"errors"
	"fmt"

	"github.com/go-stack/stack"
	pkgerrors "github.com/pkg/errors"
)

// Sentinel causes for LowLevelError, matched with errors.Is.
var (
	ErrMalformedPrototype      = errors.New("decomperr: malformed prototype encoding")
	ErrOverlappingInput        = errors.New("decomperr: overlapping input varnode")
	ErrUnresolvedStackPlaceholder = errors.New("decomperr: stack placeholder unresolved")
	ErrJoinPentryInGroup       = errors.New("decomperr: join pentry decoded inside a group")
	ErrIllegalPentryOverlap    = errors.New("decomperr: illegal pentry overlap")
	ErrWrongStackGrowthDirection = errors.New("decomperr: pentry size contradicts stack-growth direction")
)

// LowLevelError wraps a fatal structural invariant violation with the
// call stack at the point it was raised, mirroring the teacher's
// sentinel-error-plus-wrap idiom but layering stack capture on top for
// the fatal path (spec.md §7.1: "unconditionally fatal... discarded at
// the function boundary").
type LowLevelError struct {
	cause   error
	context string
	stack   stack.CallStack
}

// NewLowLevelError wraps cause with context and the caller's current
// stack. cause should usually be one of this package's sentinels.
func NewLowLevelError(cause error, context string) *LowLevelError {
	return &LowLevelError{
		cause:   pkgerrors.WithStack(cause),
		context: context,
		stack:   stack.Trace().TrimRuntime(),
	}
}

func (e *LowLevelError) Error() string {
	if e.context == "" {
		return e.cause.Error()
	}
	return fmt.Sprintf("%s: %s", e.context, e.cause.Error())
}

// Unwrap exposes the wrapped sentinel for errors.Is/errors.As.
func (e *LowLevelError) Unwrap() error { return e.cause }

// Stack returns the captured call frames, for diagnostic dumps.
func (e *LowLevelError) Stack() stack.CallStack { return e.stack }

// RecoverableKind classifies a non-fatal analysis failure.
type RecoverableKind int

const (
	FailNormal RecoverableKind = iota
	FailReturn
	FailThunk
	FailCallOther
	FailDynamicSymbolUnmatched
	FailOutputUnassigned
)

func (k RecoverableKind) String() string {
	switch k {
	case FailNormal:
		return "fail_normal"
	case FailReturn:
		return "fail_return"
	case FailThunk:
		return "fail_thunk"
	case FailCallOther:
		return "fail_callother"
	case FailDynamicSymbolUnmatched:
		return "dynamic_symbol_unmatched"
	case FailOutputUnassigned:
		return "output_unassigned"
	default:
		return "unknown"
	}
}

// RecoverableFailure is a tagged, non-fatal failure: the site that
// produced it degrades (a jump table becomes a generic indirect
// branch, an unassignable return becomes void) but analysis continues.
type RecoverableFailure struct {
	Kind   RecoverableKind
	Detail string
}

func (f *RecoverableFailure) Error() string {
	if f.Detail == "" {
		return f.Kind.String()
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Detail)
}

// NewRecoverableFailure constructs a RecoverableFailure of the given
// kind with an optional human-readable detail.
func NewRecoverableFailure(kind RecoverableKind, detail string) *RecoverableFailure {
	return &RecoverableFailure{Kind: kind, Detail: detail}
}

// IsRecoverable reports whether err is (or wraps) a RecoverableFailure,
// the discriminator the pass scheduler uses to decide whether the
// function's analysis survives.
func IsRecoverable(err error) bool {
	var rf *RecoverableFailure
	return errors.As(err, &rf)
}

// IsLowLevel reports whether err is (or wraps) a LowLevelError.
func IsLowLevel(err error) bool {
	var le *LowLevelError
	return errors.As(err, &le)
}
