// Copyright 2026 The pcodecore Authors
// This file is part of pcodecore.

package dlog

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/probechain/pcodecore/internal/space"
)

func TestWarningfRecordsInstructionWarning(t *testing.T) {
	sp := &space.AddrSpace{Name: "ram", Index: 1, AddrSize: 8}
	l := New()
	addr := space.Address{Space: sp, Offset: 0x400}

	l.Warningf(addr, "jump table recovery failed: %s", "fail_normal")

	warnings := l.Warnings()
	require.Len(t, warnings, 1)
	require.False(t, warnings[0].Header)
	require.Equal(t, addr, warnings[0].Addr)
	require.Contains(t, warnings[0].Text, "fail_normal")
}

func TestWarningHeaderfIsFilteredSeparately(t *testing.T) {
	sp := &space.AddrSpace{Name: "ram", Index: 1, AddrSize: 8}
	l := New()
	entry := space.Address{Space: sp, Offset: 0x1000}
	instr := space.Address{Space: sp, Offset: 0x1010}

	l.WarningHeaderf(entry, "unimplemented instruction encountered")
	l.Warningf(instr, "overlapping input varnode")

	require.Len(t, l.Warnings(), 2)
	headers := l.HeaderWarnings()
	require.Len(t, headers, 1)
	require.Equal(t, entry, headers[0].Addr)
}
