// Copyright 2026 The pcodecore Authors
// This file is part of pcodecore.

// Package dlog is a minimal structured logging wrapper recording the
// two warning categories spec.md §7 requires: a per-instruction
// warning attached to the offending address, and a per-function
// warningheader attached to the function's entry address. No external
// logging library is wired in here -- the teacher tree never reaches
// for one at this layer either, so this ambient concern stays on
// stdlib `log` rather than introducing a dependency the corpus itself
// doesn't use for logging.
package dlog

import (
	"fmt"
	"log"
	"os"

	"github.com/probechain/pcodecore/internal/space"
)

// Warning is one recorded diagnostic: either a per-instruction warning
// (Addr is the offending instruction) or a per-function warningheader
// (Addr is the function entry, Header true).
type Warning struct {
	Addr   space.Address
	Header bool
	Text   string
}

// Logger records warnings for later inspection (e.g. by a caller that
// renders them as comments) and mirrors each one to a stdlib logger
// writing to os.Stderr.
type Logger struct {
	out      *log.Logger
	warnings []Warning
}

// New creates a Logger writing to os.Stderr with no prefix, matching
// the plain stdlib-logger idiom the rest of this tree's ambient stack
// follows.
func New() *Logger {
	return &Logger{out: log.New(os.Stderr, "", 0)}
}

// Warningf records a per-instruction warning at addr and mirrors it to
// the underlying logger.
func (l *Logger) Warningf(addr space.Address, format string, args ...interface{}) {
	text := fmt.Sprintf(format, args...)
	l.warnings = append(l.warnings, Warning{Addr: addr, Text: text})
	l.out.Printf("%s: %s", addr, text)
}

// WarningHeaderf records a per-function warningheader at entry and
// mirrors it to the underlying logger.
func (l *Logger) WarningHeaderf(entry space.Address, format string, args ...interface{}) {
	text := fmt.Sprintf(format, args...)
	l.warnings = append(l.warnings, Warning{Addr: entry, Header: true, Text: text})
	l.out.Printf("%s: [header] %s", entry, text)
}

// Warnings returns every warning recorded so far, in emission order.
func (l *Logger) Warnings() []Warning { return l.warnings }

// HeaderWarnings returns only the per-function warningheader entries.
func (l *Logger) HeaderWarnings() []Warning {
	var out []Warning
	for _, w := range l.warnings {
		if w.Header {
			out = append(out, w)
		}
	}
	return out
}
