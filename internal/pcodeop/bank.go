// Copyright 2026 The pcodecore Authors
// This file is part of pcodecore.

package pcodeop

import (
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/probechain/pcodecore/internal/varnode"
)

// Bank holds the three logical op lists of spec.md §3.5: alive (ops
// linked into a block), dead (unlinked, pending destruction), and a
// per-opcode index for cheap "all ops of opcode X" iteration. It also
// maintains a sequence-number index so FindOp is O(log n).
type Bank struct {
	alive map[*PcodeOp]bool
	dead  map[*PcodeOp]bool

	byOpcode map[Opcode][]*PcodeOp
	opcodeIdxCache *lru.Cache[Opcode, []*PcodeOp]

	bySeq []*PcodeOp // sorted by (Seq.Addr, Seq.Time)

	varBank *varnode.Bank
}

// NewBank creates an empty op bank bound to vb, the varnode bank it will
// wire op inputs/outputs into.
func NewBank(vb *varnode.Bank) *Bank {
	cache, _ := lru.New[Opcode, []*PcodeOp](32)
	return &Bank{
		alive:          make(map[*PcodeOp]bool),
		dead:           make(map[*PcodeOp]bool),
		byOpcode:       make(map[Opcode][]*PcodeOp),
		opcodeIdxCache: cache,
		varBank:        vb,
	}
}

// NewOp allocates a dead op and registers it with the bank's seq/opcode
// indexes (spec.md §4.3 newOp).
func (b *Bank) NewOp(n int, seq SeqNum, opc Opcode) *PcodeOp {
	op := NewOp(n, seq, opc)
	b.dead[op] = true
	b.insertSeq(op)
	b.insertOpcode(op)
	return op
}

func (b *Bank) insertSeq(op *PcodeOp) {
	i := sort.Search(len(b.bySeq), func(i int) bool { return !seqLess(b.bySeq[i], op) })
	b.bySeq = append(b.bySeq, nil)
	copy(b.bySeq[i+1:], b.bySeq[i:])
	b.bySeq[i] = op
}

func seqLess(a, b *PcodeOp) bool {
	if c := a.Seq.Addr.Compare(b.Seq.Addr); c != 0 {
		return c < 0
	}
	return a.Seq.Time < b.Seq.Time
}

func (b *Bank) removeSeq(op *PcodeOp) {
	for i, cur := range b.bySeq {
		if cur == op {
			b.bySeq = append(b.bySeq[:i], b.bySeq[i+1:]...)
			return
		}
	}
}

func (b *Bank) insertOpcode(op *PcodeOp) {
	b.byOpcode[op.Opcode] = append(b.byOpcode[op.Opcode], op)
	b.opcodeIdxCache.Remove(op.Opcode)
}

func (b *Bank) removeOpcode(op *PcodeOp, opc Opcode) {
	list := b.byOpcode[opc]
	for i, cur := range list {
		if cur == op {
			b.byOpcode[opc] = append(list[:i], list[i+1:]...)
			break
		}
	}
	b.opcodeIdxCache.Remove(opc)
}

// OpSetOpcode updates op's opcode and re-keys the per-opcode index
// (spec.md §4.3).
func (b *Bank) OpSetOpcode(op *PcodeOp, opc Opcode) {
	old := op.Opcode
	b.removeOpcode(op, old)
	op.OpSetOpcode(opc)
	b.insertOpcode(op)
}

// AllOfOpcode returns every live (alive or dead) op with the given
// opcode, from the per-opcode index.
func (b *Bank) AllOfOpcode(opc Opcode) []*PcodeOp {
	if cached, ok := b.opcodeIdxCache.Get(opc); ok {
		return cached
	}
	out := append([]*PcodeOp(nil), b.byOpcode[opc]...)
	b.opcodeIdxCache.Add(opc, out)
	return out
}

// MarkAlive transitions op from dead to alive. Package block does not
// call it; whoever links op into a basic block's op list does.
func (b *Bank) MarkAlive(op *PcodeOp) {
	delete(b.dead, op)
	b.alive[op] = true
}

// MarkDead transitions op from alive to dead, per spec.md's "ops move
// here before destruction or during flow construction."
func (b *Bank) MarkDead(op *PcodeOp) {
	delete(b.alive, op)
	b.dead[op] = true
}

// OpDestroy destroys op: unlinks its output and inputs, then removes it
// from every index (spec.md §4.3 opDestroy).
func (b *Bank) OpDestroy(op *PcodeOp, vb *varnode.Bank) {
	op.Unlink(vb)
	delete(b.alive, op)
	delete(b.dead, op)
	b.removeSeq(op)
	b.removeOpcode(op, op.Opcode)
}

// OpDestroyRecursive removes op and, transitively, every producer whose
// output is consumed solely by the subgraph being removed, skipping CALL
// and INDIRECT-creation sources (spec.md §4.3). scratch is reused across
// calls to avoid repeat allocation in hot removal loops.
func (b *Bank) OpDestroyRecursive(op *PcodeOp, vb *varnode.Bank, scratch []*PcodeOp) []*PcodeOp {
	scratch = scratch[:0]
	scratch = append(scratch, op)
	for len(scratch) > 0 {
		cur := scratch[len(scratch)-1]
		scratch = scratch[:len(scratch)-1]

		var producers []*PcodeOp
		for i := 0; i < cur.NumInputs(); i++ {
			in := cur.Input(i)
			if in == nil || in.Def() == nil {
				continue
			}
			prod, ok := in.Def().(*PcodeOp)
			if !ok {
				continue
			}
			if prod.Opcode == CALL || prod.Opcode == CALLIND || prod.Opcode == INDIRECT {
				continue
			}
			if in.Descendants().Cardinality() == 1 {
				producers = append(producers, prod)
			}
		}
		b.OpDestroy(cur, vb)
		scratch = append(scratch, producers...)
	}
	return scratch
}

// FindOp locates the op with the given sequence number, O(log n).
func (b *Bank) FindOp(seq SeqNum) (*PcodeOp, bool) {
	i := sort.Search(len(b.bySeq), func(i int) bool {
		if c := b.bySeq[i].Seq.Addr.Compare(seq.Addr); c != 0 {
			return c >= 0
		}
		return b.bySeq[i].Seq.Time >= seq.Time
	})
	if i < len(b.bySeq) && b.bySeq[i].Seq.Addr.Equal(seq.Addr) && b.bySeq[i].Seq.Time == seq.Time {
		return b.bySeq[i], true
	}
	return nil, false
}

// AliveCount / DeadCount report list sizes, used by tests and Funcdata's
// invariant checks.
func (b *Bank) AliveCount() int { return len(b.alive) }
func (b *Bank) DeadCount() int  { return len(b.dead) }

// DeadOps returns every currently dead op, for stopProcessing's
// reclaim pass.
func (b *Bank) DeadOps() []*PcodeOp {
	out := make([]*PcodeOp, 0, len(b.dead))
	for op := range b.dead {
		out = append(out, op)
	}
	return out
}

// IsAlive reports whether op is currently in the alive list.
func (b *Bank) IsAlive(op *PcodeOp) bool { return b.alive[op] }
