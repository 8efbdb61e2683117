// Copyright 2026 The pcodecore Authors
// This file is part of pcodecore.

package wire

import (
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/stretchr/testify/require"

	"github.com/probechain/pcodecore/internal/proto"
	"github.com/probechain/pcodecore/internal/space"
)

// TestProtoModelRoundTripYieldsEqualEntriesAndRanges pins spec.md §8's
// round-trip law: encode-then-decode of a ProtoModel yields an equal
// model -- same entries in order, same ranges.
func TestProtoModelRoundTripYieldsEqualEntriesAndRanges(t *testing.T) {
	ram, reg, resolver := testSpaces()

	in1 := &proto.ParamEntry{Space: reg, Base: 0x0, Size: 8, MinSize: 1, Alignment: 0, TypeClass: 1, Groups: mapset.NewThreadUnsafeSet(0)}
	in2 := &proto.ParamEntry{Space: reg, Base: 0x8, Size: 8, MinSize: 1, Alignment: 0, TypeClass: 1, Groups: mapset.NewThreadUnsafeSet(1)}
	out1 := &proto.ParamEntry{Space: reg, Base: 0x0, Size: 8, MinSize: 1, Alignment: 0, TypeClass: -1, Groups: mapset.NewThreadUnsafeSet(0)}

	trash := &space.RangeList{}
	trash.Insert(reg, 0x10, 0x17)
	local := &space.RangeList{}
	local.Insert(ram, 0x0, 0xFF)

	m := &proto.ProtoModel{
		Name:             "__stdcall",
		Input:            proto.NewParamListStandard([]*proto.ParamEntry{in1, in2}),
		Output:           proto.NewParamListStandard([]*proto.ParamEntry{out1}),
		LikelyTrash:      trash,
		InternalStore:    &space.RangeList{},
		LocalRange:       local,
		ParamRange:       &space.RangeList{},
		StackGrowth:      proto.StackGrowsNegative,
		HasThis:          true,
		InjectUponEntry:  -1,
		InjectUponReturn: -1,
	}

	el := EncodeProtoModel(m)
	decoded, err := DecodeProtoModel(el, resolver)
	require.NoError(t, err)

	require.Equal(t, m.Name, decoded.Name)
	require.Equal(t, m.HasThis, decoded.HasThis)
	require.Equal(t, m.IsConstruct, decoded.IsConstruct)
	require.Equal(t, m.StackGrowth, decoded.StackGrowth)
	require.Equal(t, m.LikelyTrash.Ranges(), decoded.LikelyTrash.Ranges())
	require.Equal(t, m.LocalRange.Ranges(), decoded.LocalRange.Ranges())

	wantIn := m.Input.Entries()
	gotIn := decoded.Input.Entries()
	require.Len(t, gotIn, len(wantIn))
	for i := range wantIn {
		require.Equal(t, wantIn[i].Space, gotIn[i].Space)
		require.Equal(t, wantIn[i].Base, gotIn[i].Base)
		require.Equal(t, wantIn[i].Size, gotIn[i].Size)
	}

	wantOut := m.Output.Entries()
	gotOut := decoded.Output.Entries()
	require.Len(t, gotOut, len(wantOut))
	require.Equal(t, wantOut[0].Base, gotOut[0].Base)
}

func TestFuncProtoRoundTripPreservesExtrapopAndLocks(t *testing.T) {
	_, reg, resolver := testSpaces()
	m := &proto.ProtoModel{
		Name:   "__fastcall",
		Input:  proto.NewParamListStandard(nil),
		Output: proto.NewParamListStandard(nil),
	}
	_ = reg

	d := FuncProtoData{
		Model:     m,
		ExtraPop:  4,
		DotDotDot: true,
		NoReturn:  true,
	}

	el := EncodeFuncProto(d)
	decoded, err := DecodeFuncProto(el, resolver)
	require.NoError(t, err)

	require.Equal(t, d.ExtraPop, decoded.ExtraPop)
	require.Equal(t, d.DotDotDot, decoded.DotDotDot)
	require.Equal(t, d.NoReturn, decoded.NoReturn)
	require.Equal(t, m.Name, decoded.Model.Name)
}
