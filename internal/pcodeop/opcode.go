// Copyright 2026 The pcodecore Authors
// This file is part of pcodecore.

// Package pcodeop implements the micro-operation model of spec.md §3.4-3.5:
// a closed Opcode enum with per-opcode metadata (Design Note §9), the
// PcodeOp type itself, and the three-list op bank (alive / dead /
// per-opcode index).
package pcodeop

import "fmt"

// Opcode is one member of the fixed p-code instruction set. The set is
// closed: no dynamic extension, per Design Note §9 ("keep the opcode enum
// closed; use per-opcode tables of metadata").
type Opcode int

const (
	COPY Opcode = iota
	LOAD
	STORE
	BRANCH
	CBRANCH
	BRANCHIND
	CALL
	CALLIND
	CALLOTHER
	RETURN
	INT_EQUAL
	INT_NOTEQUAL
	INT_LESS
	INT_SLESS
	INT_LESSEQUAL
	INT_SLESSEQUAL
	INT_ZEXT
	INT_SEXT
	INT_ADD
	INT_SUB
	INT_CARRY
	INT_SCARRY
	INT_SBORROW
	INT_2COMP
	INT_NEGATE
	INT_XOR
	INT_AND
	INT_OR
	INT_LEFT
	INT_RIGHT
	INT_SRIGHT
	INT_MULT
	INT_DIV
	INT_SDIV
	INT_REM
	INT_SREM
	BOOL_NEGATE
	BOOL_XOR
	BOOL_AND
	BOOL_OR
	FLOAT_EQUAL
	FLOAT_NOTEQUAL
	FLOAT_LESS
	FLOAT_LESSEQUAL
	FLOAT_ADD
	FLOAT_SUB
	FLOAT_MULT
	FLOAT_DIV
	FLOAT_NEG
	FLOAT_ABS
	FLOAT_SQRT
	FLOAT_CEIL
	FLOAT_FLOOR
	FLOAT_ROUND
	FLOAT_NAN
	INT2FLOAT
	FLOAT2FLOAT
	TRUNC
	MULTIEQUAL // phi
	INDIRECT
	PIECE
	SUBPIECE
	CPOOLREF
	NEW
	INSERT
	EXTRACT
	PTRADD
	PTRSUB
	SEGMENTOP
	UNIMPLEMENTED
	opcodeCount
)

// FlowType classifies how an opcode affects control flow.
type FlowType int

const (
	FlowFallthrough FlowType = iota
	FlowBranch
	FlowCondBranch
	FlowIndirectBranch
	FlowCall
	FlowIndirectCall
	FlowTerminal // return/halt
	FlowNone     // no flow effect of its own (pure data op)
)

// EvalCategory buckets opcodes for the local non-zero-mask evaluator.
type EvalCategory int

const (
	EvalGeneric EvalCategory = iota
	EvalArithmetic
	EvalCompare
	EvalLogical
	EvalMemory
	EvalControl
	EvalSpecial
)

// Info is the per-opcode metadata row of Design Note §9.
type Info struct {
	Name           string
	Arity          int // -1 means variable arity
	HasOutput      bool
	Flow           FlowType
	Eval           EvalCategory
	LocalNZMask    func(inputNZ []uint64, outSize int) uint64
}

func allOnes(size int) uint64 {
	if size >= 8 {
		return ^uint64(0)
	}
	return (uint64(1) << (uint(size) * 8)) - 1
}

func bitwiseOr(inputNZ []uint64, outSize int) uint64 {
	var m uint64
	for _, n := range inputNZ {
		m |= n
	}
	return m & allOnes(outSize)
}

func boolMask(_ []uint64, outSize int) uint64 { return 1 & allOnes(outSize) }

func fullMask(_ []uint64, outSize int) uint64 { return allOnes(outSize) }

// info is the closed metadata table indexed by Opcode, per Design Note §9.
var info = [opcodeCount]Info{
	COPY:          {Name: "COPY", Arity: 1, HasOutput: true, Flow: FlowNone, Eval: EvalGeneric, LocalNZMask: passthroughMask},
	LOAD:          {Name: "LOAD", Arity: 2, HasOutput: true, Flow: FlowNone, Eval: EvalMemory, LocalNZMask: fullMask},
	STORE:         {Name: "STORE", Arity: 3, HasOutput: false, Flow: FlowNone, Eval: EvalMemory},
	BRANCH:        {Name: "BRANCH", Arity: 1, HasOutput: false, Flow: FlowBranch, Eval: EvalControl},
	CBRANCH:       {Name: "CBRANCH", Arity: 2, HasOutput: false, Flow: FlowCondBranch, Eval: EvalControl},
	BRANCHIND:     {Name: "BRANCHIND", Arity: 1, HasOutput: false, Flow: FlowIndirectBranch, Eval: EvalControl},
	CALL:          {Name: "CALL", Arity: -1, HasOutput: false, Flow: FlowCall, Eval: EvalControl},
	CALLIND:       {Name: "CALLIND", Arity: -1, HasOutput: false, Flow: FlowIndirectCall, Eval: EvalControl},
	CALLOTHER:     {Name: "CALLOTHER", Arity: -1, HasOutput: true, Flow: FlowNone, Eval: EvalSpecial},
	RETURN:        {Name: "RETURN", Arity: -1, HasOutput: false, Flow: FlowTerminal, Eval: EvalControl},
	INT_EQUAL:     {Name: "INT_EQUAL", Arity: 2, HasOutput: true, Flow: FlowNone, Eval: EvalCompare, LocalNZMask: boolMask},
	INT_NOTEQUAL:  {Name: "INT_NOTEQUAL", Arity: 2, HasOutput: true, Flow: FlowNone, Eval: EvalCompare, LocalNZMask: boolMask},
	INT_LESS:      {Name: "INT_LESS", Arity: 2, HasOutput: true, Flow: FlowNone, Eval: EvalCompare, LocalNZMask: boolMask},
	INT_SLESS:     {Name: "INT_SLESS", Arity: 2, HasOutput: true, Flow: FlowNone, Eval: EvalCompare, LocalNZMask: boolMask},
	INT_LESSEQUAL: {Name: "INT_LESSEQUAL", Arity: 2, HasOutput: true, Flow: FlowNone, Eval: EvalCompare, LocalNZMask: boolMask},
	INT_SLESSEQUAL: {Name: "INT_SLESSEQUAL", Arity: 2, HasOutput: true, Flow: FlowNone, Eval: EvalCompare, LocalNZMask: boolMask},
	INT_ZEXT:      {Name: "INT_ZEXT", Arity: 1, HasOutput: true, Flow: FlowNone, Eval: EvalGeneric, LocalNZMask: passthroughMask},
	INT_SEXT:      {Name: "INT_SEXT", Arity: 1, HasOutput: true, Flow: FlowNone, Eval: EvalGeneric, LocalNZMask: fullMask},
	INT_ADD:       {Name: "INT_ADD", Arity: 2, HasOutput: true, Flow: FlowNone, Eval: EvalArithmetic, LocalNZMask: fullMask},
	INT_SUB:       {Name: "INT_SUB", Arity: 2, HasOutput: true, Flow: FlowNone, Eval: EvalArithmetic, LocalNZMask: fullMask},
	INT_CARRY:     {Name: "INT_CARRY", Arity: 2, HasOutput: true, Flow: FlowNone, Eval: EvalArithmetic, LocalNZMask: boolMask},
	INT_SCARRY:    {Name: "INT_SCARRY", Arity: 2, HasOutput: true, Flow: FlowNone, Eval: EvalArithmetic, LocalNZMask: boolMask},
	INT_SBORROW:   {Name: "INT_SBORROW", Arity: 2, HasOutput: true, Flow: FlowNone, Eval: EvalArithmetic, LocalNZMask: boolMask},
	INT_2COMP:     {Name: "INT_2COMP", Arity: 1, HasOutput: true, Flow: FlowNone, Eval: EvalArithmetic, LocalNZMask: fullMask},
	INT_NEGATE:    {Name: "INT_NEGATE", Arity: 1, HasOutput: true, Flow: FlowNone, Eval: EvalLogical, LocalNZMask: passthroughMask},
	INT_XOR:       {Name: "INT_XOR", Arity: 2, HasOutput: true, Flow: FlowNone, Eval: EvalLogical, LocalNZMask: bitwiseOr},
	INT_AND:       {Name: "INT_AND", Arity: 2, HasOutput: true, Flow: FlowNone, Eval: EvalLogical, LocalNZMask: bitwiseOr},
	INT_OR:        {Name: "INT_OR", Arity: 2, HasOutput: true, Flow: FlowNone, Eval: EvalLogical, LocalNZMask: bitwiseOr},
	INT_LEFT:      {Name: "INT_LEFT", Arity: 2, HasOutput: true, Flow: FlowNone, Eval: EvalArithmetic, LocalNZMask: fullMask},
	INT_RIGHT:     {Name: "INT_RIGHT", Arity: 2, HasOutput: true, Flow: FlowNone, Eval: EvalArithmetic, LocalNZMask: fullMask},
	INT_SRIGHT:    {Name: "INT_SRIGHT", Arity: 2, HasOutput: true, Flow: FlowNone, Eval: EvalArithmetic, LocalNZMask: fullMask},
	INT_MULT:      {Name: "INT_MULT", Arity: 2, HasOutput: true, Flow: FlowNone, Eval: EvalArithmetic, LocalNZMask: fullMask},
	INT_DIV:       {Name: "INT_DIV", Arity: 2, HasOutput: true, Flow: FlowNone, Eval: EvalArithmetic, LocalNZMask: fullMask},
	INT_SDIV:      {Name: "INT_SDIV", Arity: 2, HasOutput: true, Flow: FlowNone, Eval: EvalArithmetic, LocalNZMask: fullMask},
	INT_REM:       {Name: "INT_REM", Arity: 2, HasOutput: true, Flow: FlowNone, Eval: EvalArithmetic, LocalNZMask: fullMask},
	INT_SREM:      {Name: "INT_SREM", Arity: 2, HasOutput: true, Flow: FlowNone, Eval: EvalArithmetic, LocalNZMask: fullMask},
	BOOL_NEGATE:   {Name: "BOOL_NEGATE", Arity: 1, HasOutput: true, Flow: FlowNone, Eval: EvalLogical, LocalNZMask: boolMask},
	BOOL_XOR:      {Name: "BOOL_XOR", Arity: 2, HasOutput: true, Flow: FlowNone, Eval: EvalLogical, LocalNZMask: boolMask},
	BOOL_AND:      {Name: "BOOL_AND", Arity: 2, HasOutput: true, Flow: FlowNone, Eval: EvalLogical, LocalNZMask: boolMask},
	BOOL_OR:       {Name: "BOOL_OR", Arity: 2, HasOutput: true, Flow: FlowNone, Eval: EvalLogical, LocalNZMask: boolMask},
	FLOAT_EQUAL:    {Name: "FLOAT_EQUAL", Arity: 2, HasOutput: true, Flow: FlowNone, Eval: EvalCompare, LocalNZMask: boolMask},
	FLOAT_NOTEQUAL: {Name: "FLOAT_NOTEQUAL", Arity: 2, HasOutput: true, Flow: FlowNone, Eval: EvalCompare, LocalNZMask: boolMask},
	FLOAT_LESS:     {Name: "FLOAT_LESS", Arity: 2, HasOutput: true, Flow: FlowNone, Eval: EvalCompare, LocalNZMask: boolMask},
	FLOAT_LESSEQUAL: {Name: "FLOAT_LESSEQUAL", Arity: 2, HasOutput: true, Flow: FlowNone, Eval: EvalCompare, LocalNZMask: boolMask},
	FLOAT_ADD:     {Name: "FLOAT_ADD", Arity: 2, HasOutput: true, Flow: FlowNone, Eval: EvalArithmetic, LocalNZMask: fullMask},
	FLOAT_SUB:     {Name: "FLOAT_SUB", Arity: 2, HasOutput: true, Flow: FlowNone, Eval: EvalArithmetic, LocalNZMask: fullMask},
	FLOAT_MULT:    {Name: "FLOAT_MULT", Arity: 2, HasOutput: true, Flow: FlowNone, Eval: EvalArithmetic, LocalNZMask: fullMask},
	FLOAT_DIV:     {Name: "FLOAT_DIV", Arity: 2, HasOutput: true, Flow: FlowNone, Eval: EvalArithmetic, LocalNZMask: fullMask},
	FLOAT_NEG:     {Name: "FLOAT_NEG", Arity: 1, HasOutput: true, Flow: FlowNone, Eval: EvalArithmetic, LocalNZMask: fullMask},
	FLOAT_ABS:     {Name: "FLOAT_ABS", Arity: 1, HasOutput: true, Flow: FlowNone, Eval: EvalArithmetic, LocalNZMask: fullMask},
	FLOAT_SQRT:    {Name: "FLOAT_SQRT", Arity: 1, HasOutput: true, Flow: FlowNone, Eval: EvalArithmetic, LocalNZMask: fullMask},
	FLOAT_CEIL:    {Name: "FLOAT_CEIL", Arity: 1, HasOutput: true, Flow: FlowNone, Eval: EvalArithmetic, LocalNZMask: fullMask},
	FLOAT_FLOOR:   {Name: "FLOAT_FLOOR", Arity: 1, HasOutput: true, Flow: FlowNone, Eval: EvalArithmetic, LocalNZMask: fullMask},
	FLOAT_ROUND:   {Name: "FLOAT_ROUND", Arity: 1, HasOutput: true, Flow: FlowNone, Eval: EvalArithmetic, LocalNZMask: fullMask},
	FLOAT_NAN:     {Name: "FLOAT_NAN", Arity: 1, HasOutput: true, Flow: FlowNone, Eval: EvalCompare, LocalNZMask: boolMask},
	INT2FLOAT:     {Name: "INT2FLOAT", Arity: 1, HasOutput: true, Flow: FlowNone, Eval: EvalGeneric, LocalNZMask: fullMask},
	FLOAT2FLOAT:   {Name: "FLOAT2FLOAT", Arity: 1, HasOutput: true, Flow: FlowNone, Eval: EvalGeneric, LocalNZMask: fullMask},
	TRUNC:         {Name: "TRUNC", Arity: 1, HasOutput: true, Flow: FlowNone, Eval: EvalGeneric, LocalNZMask: fullMask},
	MULTIEQUAL:    {Name: "MULTIEQUAL", Arity: -1, HasOutput: true, Flow: FlowNone, Eval: EvalSpecial, LocalNZMask: bitwiseOr},
	INDIRECT:      {Name: "INDIRECT", Arity: 2, HasOutput: true, Flow: FlowNone, Eval: EvalSpecial, LocalNZMask: passthroughMask},
	PIECE:         {Name: "PIECE", Arity: 2, HasOutput: true, Flow: FlowNone, Eval: EvalGeneric, LocalNZMask: fullMask},
	SUBPIECE:      {Name: "SUBPIECE", Arity: 2, HasOutput: true, Flow: FlowNone, Eval: EvalGeneric, LocalNZMask: fullMask},
	CPOOLREF:      {Name: "CPOOLREF", Arity: -1, HasOutput: true, Flow: FlowNone, Eval: EvalSpecial, LocalNZMask: fullMask},
	NEW:           {Name: "NEW", Arity: -1, HasOutput: true, Flow: FlowNone, Eval: EvalSpecial, LocalNZMask: fullMask},
	INSERT:        {Name: "INSERT", Arity: 3, HasOutput: true, Flow: FlowNone, Eval: EvalGeneric, LocalNZMask: fullMask},
	EXTRACT:       {Name: "EXTRACT", Arity: 2, HasOutput: true, Flow: FlowNone, Eval: EvalGeneric, LocalNZMask: fullMask},
	PTRADD:        {Name: "PTRADD", Arity: 3, HasOutput: true, Flow: FlowNone, Eval: EvalGeneric, LocalNZMask: fullMask},
	PTRSUB:        {Name: "PTRSUB", Arity: 2, HasOutput: true, Flow: FlowNone, Eval: EvalGeneric, LocalNZMask: fullMask},
	SEGMENTOP:     {Name: "SEGMENTOP", Arity: -1, HasOutput: true, Flow: FlowNone, Eval: EvalSpecial, LocalNZMask: fullMask},
	UNIMPLEMENTED: {Name: "UNIMPLEMENTED", Arity: -1, HasOutput: false, Flow: FlowNone, Eval: EvalSpecial},
}

func passthroughMask(inputNZ []uint64, outSize int) uint64 {
	if len(inputNZ) == 0 {
		return allOnes(outSize)
	}
	return inputNZ[0] & allOnes(outSize)
}

// Info returns the metadata row for op.
func (op Opcode) Info() Info { return info[op] }

// HasOutput reports whether op produces a result varnode.
func (op Opcode) HasOutput() bool { return info[op].HasOutput }

// Flow reports op's control-flow classification.
func (op Opcode) Flow() FlowType { return info[op].Flow }

// IsBranch reports whether op directly transfers control (any branch/
// call/return form).
func (op Opcode) IsBranch() bool {
	switch info[op].Flow {
	case FlowBranch, FlowCondBranch, FlowIndirectBranch, FlowCall, FlowIndirectCall, FlowTerminal:
		return true
	default:
		return false
	}
}

func (op Opcode) String() string {
	if int(op) < 0 || int(op) >= int(opcodeCount) || info[op].Name == "" {
		return fmt.Sprintf("opcode(%d)", int(op))
	}
	return info[op].Name
}
