// Copyright 2026 The pcodecore Authors
// This file is part of pcodecore.

// Package heritage turns repeated direct-storage accesses to a
// heritaged address space (stack, registers) into proper SSA form:
// phi (MULTIEQUAL) insertion at the iterated dominance frontier
// followed by a dominator-tree rename pass, per spec.md §4.5.
//
// Grounded on the phi-insertion/rename shape of liftAlloc/rename in
// tmc-mirror-go.tools__ssa-lift.go.go, adapted from Go SSA's Alloc
// cells to p-code's direct (space, offset, size) storage keys — pcode
// has no explicit Alloc instruction, so definition sites are any op
// whose output lands at a given storage key instead of any store to a
// single alloc'd cell.
package heritage

import (
	"sort"

	"github.com/probechain/pcodecore/internal/block"
	"github.com/probechain/pcodecore/internal/pcodeop"
	"github.com/probechain/pcodecore/internal/space"
	"github.com/probechain/pcodecore/internal/varnode"
)

// storageKey identifies one heritaged storage location.
type storageKey struct {
	spaceIdx int
	offset   uint64
	size     int
}

func keyOf(vn *varnode.Varnode) storageKey {
	return storageKey{spaceIdx: vn.Space.Index, offset: vn.Offset, size: vn.Size}
}

// Guard is a pseudo-definition recorded when a LOAD's address cannot be
// proven disjoint from an earlier STORE, so a later heritage pass must
// treat the store as a possible write to the loaded location (spec.md
// §4.5: "Load/store guards").
type Guard struct {
	Load  *pcodeop.PcodeOp
	Store *pcodeop.PcodeOp
}

// Heritage drives one function's SSA construction, one pass per
// address space per iteration (spec.md §4.5).
type Heritage struct {
	graph   *block.Graph
	varBank *varnode.Bank
	opBank  *pcodeop.Bank

	passCount  map[*space.AddrSpace]int
	globalPass int
	deadDelay  map[*space.AddrSpace]int
	guards     []Guard
}

// New creates a heritage driver bound to g's block graph and the
// function's varnode/op banks.
func New(g *block.Graph, vb *varnode.Bank, ob *pcodeop.Bank) *Heritage {
	return &Heritage{
		graph:     g,
		varBank:   vb,
		opBank:    ob,
		passCount: make(map[*space.AddrSpace]int),
		deadDelay: make(map[*space.AddrSpace]int),
	}
}

// PassCount reports how many heritage passes sp has undergone.
func (h *Heritage) PassCount(sp *space.AddrSpace) int { return h.passCount[sp] }

// deadRemovalAllowed gates when unreferenced definitions in sp may be
// pruned: spec.md §4.5 requires a per-space dead-code-delay counter so
// a just-heritaged definition survives at least one extra pass before
// its apparent deadness is trusted (a later pass may still discover a
// guarded use of it).
func (h *Heritage) deadRemovalAllowed(sp *space.AddrSpace) bool {
	return h.deadDelay[sp] >= 2
}

// DeadRemovalAllowed exposes deadRemovalAllowed for package funcdata.
func (h *Heritage) DeadRemovalAllowed(sp *space.AddrSpace) bool {
	return h.deadRemovalAllowed(sp)
}

// Run performs one heritage pass over address space sp: phi insertion
// at the iterated dominance frontier of all current definition sites,
// then a dominator-tree rename.
func (h *Heritage) Run(sp *space.AddrSpace) {
	h.passCount[sp]++
	h.deadDelay[sp]++
	h.globalPass++

	defblocks := h.collectDefSites(sp)
	if len(defblocks) == 0 {
		return
	}

	df := h.graph.DominanceFrontier()
	phis := h.insertPhis(sp, defblocks, df)

	root := h.graph.Root()
	if root == nil {
		return
	}
	h.rename(root, sp, make(map[storageKey][]*varnode.Varnode), phis)

	h.applyGuards()
}

// collectDefSites returns, for each storage key in sp, the set of
// blocks containing an op whose output lands at that key.
func (h *Heritage) collectDefSites(sp *space.AddrSpace) map[storageKey]map[*block.BasicBlock]bool {
	defblocks := make(map[storageKey]map[*block.BasicBlock]bool)
	for _, b := range h.graph.Blocks() {
		for _, op := range b.Ops() {
			out := op.Output()
			if out == nil || out.Space != sp {
				continue
			}
			k := keyOf(out)
			if defblocks[k] == nil {
				defblocks[k] = make(map[*block.BasicBlock]bool)
			}
			defblocks[k][b] = true
		}
	}
	return defblocks
}

// phiSet records, per block, the phi op installed for each storage key
// during this pass.
type phiSet map[*block.BasicBlock]map[storageKey]*pcodeop.PcodeOp

// insertPhis runs the Cytron et al. iterated-dominance-frontier
// worklist (one independent pass per storage key, mirroring
// liftAlloc's per-Alloc phi placement) and installs a MULTIEQUAL op at
// the head of every block in each key's IDF.
func (h *Heritage) insertPhis(sp *space.AddrSpace, defblocks map[storageKey]map[*block.BasicBlock]bool, df map[*block.BasicBlock][]*block.BasicBlock) phiSet {
	result := make(phiSet)

	keys := make([]storageKey, 0, len(defblocks))
	for k := range defblocks {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].offset != keys[j].offset {
			return keys[i].offset < keys[j].offset
		}
		return keys[i].size < keys[j].size
	})

	for _, k := range keys {
		hasAlready := make(map[*block.BasicBlock]bool)
		work := make(map[*block.BasicBlock]bool)
		var worklist []*block.BasicBlock
		for b := range defblocks[k] {
			work[b] = true
			worklist = append(worklist, b)
		}

		for len(worklist) > 0 {
			u := worklist[len(worklist)-1]
			worklist = worklist[:len(worklist)-1]
			for _, v := range df[u] {
				if hasAlready[v] {
					continue
				}
				hasAlready[v] = true
				phi := pcodeop.NewOp(len(v.In), pcodeop.SeqNum{Addr: space.Address{Space: sp, Offset: k.offset}, Time: uint64(h.globalPass)}, pcodeop.MULTIEQUAL)
				out := h.varBank.Create(sp, k.offset, k.size)
				if err := phi.OpSetOutput(out, h.varBank); err != nil {
					continue
				}
				prependPhi(v, phi)
				if result[v] == nil {
					result[v] = make(map[storageKey]*pcodeop.PcodeOp)
				}
				result[v][k] = phi
				if !work[v] {
					work[v] = true
					worklist = append(worklist, v)
				}
			}
		}
	}
	return result
}

func prependPhi(b *block.BasicBlock, phi *pcodeop.PcodeOp) {
	b.AppendOp(phi)
	ops := b.Ops()
	copy(ops[1:], ops[:len(ops)-1])
	ops[0] = phi
}

// rename is the dominator-tree preorder walk of spec.md §4.5: each
// definition pushes a fresh name, each use reads the top of its key's
// stack, and each phi input on an outgoing edge is filled from the
// top-of-stack at edge time.
func (h *Heritage) rename(b *block.BasicBlock, sp *space.AddrSpace, stacks map[storageKey][]*varnode.Varnode, phis phiSet) {
	pushed := make(map[storageKey]int)

	for _, op := range b.Ops() {
		if op.IsPhi() {
			if out := op.Output(); out != nil && out.Space == sp {
				k := keyOf(out)
				stacks[k] = append(stacks[k], out)
				pushed[k]++
			}
			continue
		}
		for i := 0; i < op.NumInputs(); i++ {
			in := op.Input(i)
			if in == nil || in.Space != sp || in.Def() != nil || in.IsInput() {
				continue
			}
			k := keyOf(in)
			st := stacks[k]
			if len(st) == 0 {
				continue
			}
			top := st[len(st)-1]
			if top != in {
				op.OpSetInput(top, i)
			}
		}
		if out := op.Output(); out != nil && out.Space == sp {
			k := keyOf(out)
			stacks[k] = append(stacks[k], out)
			pushed[k]++
		}
	}

	for _, e := range b.Out {
		succ := e.Block
		for k, phi := range phis[succ] {
			st := stacks[k]
			if len(st) == 0 {
				continue
			}
			idx := succ.PredIndex(b)
			if idx >= 0 && idx < phi.NumInputs() {
				phi.OpSetInput(st[len(st)-1], idx)
			}
		}
	}

	for _, child := range b.DomChildren() {
		h.rename(child, sp, stacks, phis)
	}

	for k, n := range pushed {
		stacks[k] = stacks[k][:len(stacks[k])-n]
	}
}

// applyGuards scans the LOAD/STORE pairs of every block, whatever
// space the pass is heritaging, for possible aliasing that
// the exact-storage-key model above cannot see (spec.md §4.5: "a LOAD
// whose address may alias with an earlier STORE creates a guard
// pseudo-definition"). A LOAD/STORE is "may-alias" here when neither
// op's address input is a constant, so their storage keys cannot be
// compared structurally.
func (h *Heritage) applyGuards() {
	h.guards = h.guards[:0]
	var lastStore *pcodeop.PcodeOp
	for _, b := range h.graph.Blocks() {
		for _, op := range b.Ops() {
			switch op.Opcode {
			case pcodeop.STORE:
				addr := op.Input(1)
				if addr == nil || !addr.IsConstant() {
					lastStore = op
				}
			case pcodeop.LOAD:
				addr := op.Input(1)
				if lastStore != nil && (addr == nil || !addr.IsConstant()) {
					h.guards = append(h.guards, Guard{Load: op, Store: lastStore})
				}
			}
		}
	}
}

// Guards returns the load/store guards recorded by the last pass.
func (h *Heritage) Guards() []Guard { return h.guards }
