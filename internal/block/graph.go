// Copyright 2026 The pcodecore Authors
// This file is part of pcodecore.

package block

import (
	"errors"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
)

var errBlockNotSingleExit = errors.New("block: RemoveFromFlow requires exactly one outgoing edge")

// Graph owns the block arena for one function and the structuring
// state shared across passes (spec.md §3.5: "block graph").
type Graph struct {
	blocks []*BasicBlock
	root   *BasicBlock

	loops []*Loop

	unreachableFlag bool
}

// NewGraph creates an empty block graph.
func NewGraph() *Graph { return &Graph{} }

// NewBlock allocates and registers a new block at the next index.
func (g *Graph) NewBlock() *BasicBlock {
	b := &BasicBlock{index: len(g.blocks)}
	g.blocks = append(g.blocks, b)
	if g.root == nil {
		g.root = b
	}
	return b
}

// Blocks returns the graph's blocks in index order.
func (g *Graph) Blocks() []*BasicBlock { return g.blocks }

// Root returns the entry block.
func (g *Graph) Root() *BasicBlock { return g.root }

// SetRoot explicitly designates the entry block (needed after block 0
// is removed by dead-block elimination).
func (g *Graph) SetRoot(b *BasicBlock) { g.root = b }

// AddEdge links from->to, appending matching Out/In entries and
// recording each side's index in the other for phi alignment.
func (g *Graph) AddEdge(from, to *BasicBlock) {
	outIdx := len(from.Out)
	inIdx := len(to.In)
	from.Out = append(from.Out, Edge{Block: to, Label: inIdx})
	to.In = append(to.In, Edge{Block: from, Label: outIdx})
}

// MoveOutEdge repoints the slot-th outgoing edge of from away from its
// old target to newTarget, fixing up both sides' reverse indexes
// (spec.md §4.4 moveOutEdge).
func (g *Graph) MoveOutEdge(from *BasicBlock, slot int, newTarget *BasicBlock) {
	old := from.Out[slot].Block
	oldIn := from.Out[slot].Label
	g.unlinkIn(old, oldIn)

	newInIdx := len(newTarget.In)
	newTarget.In = append(newTarget.In, Edge{Block: from, Label: slot})
	from.Out[slot] = Edge{Block: newTarget, Label: newInIdx}
}

// SwitchEdge repoints every edge from->old to from->new (spec.md §4.4
// switchEdge); used when old is being removed and new absorbs its flow.
func (g *Graph) SwitchEdge(from, old, newTarget *BasicBlock) {
	for i, e := range from.Out {
		if e.Block == old {
			g.MoveOutEdge(from, i, newTarget)
		}
	}
}

func (g *Graph) unlinkIn(b *BasicBlock, idx int) {
	b.In = append(b.In[:idx], b.In[idx+1:]...)
	for i := idx; i < len(b.In); i++ {
		src := b.In[i].Block
		src.Out[b.In[i].Label].Label = i
	}
}

func (g *Graph) unlinkOut(b *BasicBlock, idx int) {
	b.Out = append(b.Out[:idx], b.Out[idx+1:]...)
	for i := idx; i < len(b.Out); i++ {
		dst := b.Out[i].Block
		dst.In[b.Out[i].Label].Label = i
	}
}

// RemoveEdge cuts the from->to edge at the given out-slot, first
// invoking pushMultiequals so that any phi whose input on that edge
// feeds live users is patched before the edge disappears (spec.md §4.4:
// "this must happen before edges are cut").
func (g *Graph) RemoveEdge(from *BasicBlock, outSlot int) {
	to := from.Out[outSlot].Block
	inSlot := from.Out[outSlot].Label
	pushMultiequals(to, inSlot)

	g.unlinkOut(from, outSlot)
	g.unlinkIn(to, inSlot)
}

// pushMultiequals walks to's phi ops and removes the input fed by the
// predecessor edge about to be cut (spec.md §4.4: "this must happen
// before edges are cut"). A phi reduced to a single input is left for
// the next heritage/merge pass to collapse into a plain copy; pruning
// it here would require rewriting every descendant read, which is
// merge's job, not the block graph's.
func pushMultiequals(to *BasicBlock, inSlot int) {
	for _, phi := range to.Phis() {
		if inSlot < phi.NumInputs() {
			phi.RemoveInputSlot(inSlot)
		}
	}
}

// RemoveFromFlow detaches b entirely: every in-edge is rerouted to b's
// sole successor (b must have exactly one, per spec.md §4.4's
// dead-block-elimination precondition), and b's own edges are cleared.
func (g *Graph) RemoveFromFlow(b *BasicBlock) error {
	if len(b.Out) != 1 {
		return errBlockNotSingleExit
	}
	succ := b.Out[0].Block
	for len(b.In) > 0 {
		pred := b.In[0].Block
		for i, e := range pred.Out {
			if e.Block == b {
				g.MoveOutEdge(pred, i, succ)
				break
			}
		}
	}
	g.RemoveEdge(b, 0)
	return nil
}

// NewJoinBlock synthesizes a join block spliced between every block in
// preds and common, for a conditional-join transform (spec.md §4.4).
func (g *Graph) NewJoinBlock(preds []*BasicBlock, common *BasicBlock) *BasicBlock {
	join := g.NewBlock()
	for _, p := range preds {
		for i, e := range p.Out {
			if e.Block == common {
				g.MoveOutEdge(p, i, join)
			}
		}
	}
	g.AddEdge(join, common)
	return join
}

// DuplicateBlock clones src's op shape (not its live ops — pcodeop
// duplication is the caller's concern) into a new block for a
// node-split transform, and rewires one in-edge from old to the clone.
func (g *Graph) DuplicateBlock(src *BasicBlock, edgeFromIdx int) *BasicBlock {
	dup := g.NewBlock()
	pred := src.In[edgeFromIdx].Block
	predOutIdx := src.In[edgeFromIdx].Label
	g.MoveOutEdge(pred, predOutIdx, dup)
	for _, e := range src.Out {
		g.AddEdge(dup, e.Block)
	}
	return dup
}

// Reachable returns the set of blocks reachable from the graph's root
// (spec.md §3.5: "reachability collection").
func (g *Graph) Reachable() mapset.Set[*BasicBlock] {
	seen := mapset.NewThreadUnsafeSet[*BasicBlock]()
	var walk func(*BasicBlock)
	walk = func(b *BasicBlock) {
		if seen.Contains(b) {
			return
		}
		seen.Add(b)
		for _, e := range b.Out {
			walk(e.Block)
		}
	}
	if g.root != nil {
		walk(g.root)
	}
	return seen
}

// StructureReset recomputes loops and dominators and clears the higher
// structured hierarchy, per spec.md §4.4's pipeline. It is the sole
// entry point allowed to invalidate dominator/loop information.
func (g *Graph) StructureReset() {
	g.structureLoops()
	g.calcForwardDominator()
	g.detectUnreachable()
	g.removeDeadJumpTables()
}

func (g *Graph) detectUnreachable() {
	g.unreachableFlag = false
	for _, b := range g.blocks {
		if b == g.root {
			continue
		}
		if b.immedDom == nil {
			g.unreachableFlag = true
		}
	}
}

// removeDeadJumpTables is a placeholder hook invoked by structureReset;
// actual jump-table liveness lives in package jumptable, which calls
// back into IsAlive on the indirect branch op. Kept here as a no-op
// extension point so StructureReset's pipeline order matches spec.md
// exactly; package funcdata wires the real callback via SetJumpTableSweeper.
var jumpTableSweeper func(*Graph)

// SetJumpTableSweeper installs the callback that removes jump tables
// whose indirect branch op has gone dead.
func SetJumpTableSweeper(f func(*Graph)) { jumpTableSweeper = f }

func (g *Graph) removeDeadJumpTables() {
	if jumpTableSweeper != nil {
		jumpTableSweeper(g)
	}
}

// UnreachableBlocks reports whether the last StructureReset found any
// non-entry block with no immediate dominator.
func (g *Graph) UnreachableBlocks() bool { return g.unreachableFlag }

func sortByIndex(bs []*BasicBlock) {
	sort.Slice(bs, func(i, j int) bool { return bs[i].index < bs[j].index })
}
