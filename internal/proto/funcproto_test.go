// Copyright 2026 The pcodecore Authors
// This file is part of pcodecore.

package proto

import "testing"

func TestFuncProtoResolveInputsRespectsLock(t *testing.T) {
	reg := testRegSpace()
	model := &ProtoModel{Input: NewParamListStandard([]*ParamEntry{excl(reg, 0x10, 4, 0)})}
	fp := &FuncProto{Model: model}

	if !fp.ResolveInputs([]FormalParam{{Size: 4}}) {
		t.Fatalf("expected resolution to succeed")
	}
	if len(fp.Inputs) != 1 || fp.Inputs[0].Addr.Offset != 0x10 {
		t.Fatalf("unexpected resolved inputs: %v", fp.Inputs)
	}

	fp.Lock(LockInput)
	stale := fp.Inputs
	if !fp.ResolveInputs([]FormalParam{{Size: 4}, {Size: 4}}) {
		t.Fatalf("a locked input side should report success trivially")
	}
	if len(fp.Inputs) != len(stale) {
		t.Errorf("locked input side should not be overwritten by a new resolution")
	}
}

func TestFuncProtoResolveOutput(t *testing.T) {
	reg := testRegSpace()
	model := &ProtoModel{Output: NewParamListStandardOut([]*ParamEntry{{Space: reg, Base: 0x18, Size: 4}})}
	fp := &FuncProto{Model: model}

	if !fp.ResolveOutput(FormalParam{Size: 4}) {
		t.Fatalf("expected output resolution to succeed")
	}
	if fp.Output.Addr.Offset != 0x18 {
		t.Errorf("unexpected resolved output: %v", fp.Output)
	}
}
