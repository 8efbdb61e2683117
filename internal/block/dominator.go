// Copyright 2026 The pcodecore Authors
// This file is part of pcodecore.

package block

// calcForwardDominator computes immediate dominators with the
// Cooper/Harvey/Kennedy iterative algorithm (spec.md §4.4 step 2),
// grounded on the same "A Simple, Fast Dominance Algorithm" used by
// the dominator-tree builder this package's heritage consumer was
// modeled after.
func (g *Graph) calcForwardDominator() {
	for _, b := range g.blocks {
		b.immedDom = nil
		b.domChildren = nil
	}
	if g.root == nil {
		return
	}

	postorder := make([]*BasicBlock, 0, len(g.blocks))
	visited := make(map[*BasicBlock]bool)
	var dfs func(*BasicBlock)
	dfs = func(b *BasicBlock) {
		if visited[b] {
			return
		}
		visited[b] = true
		for _, e := range b.Out {
			dfs(e.Block)
		}
		postorder = append(postorder, b)
	}
	dfs(g.root)

	rpo := make([]*BasicBlock, len(postorder))
	postIndex := make(map[*BasicBlock]int, len(postorder))
	for i, b := range postorder {
		rpo[len(postorder)-1-i] = b
		postIndex[b] = i
	}

	idom := make(map[*BasicBlock]*BasicBlock, len(rpo))
	idom[g.root] = g.root

	changed := true
	for changed {
		changed = false
		for _, b := range rpo {
			if b == g.root {
				continue
			}
			var newIdom *BasicBlock
			for _, e := range b.In {
				p := e.Block
				if idom[p] == nil {
					continue
				}
				if newIdom == nil {
					newIdom = p
					continue
				}
				newIdom = intersect(idom, postIndex, newIdom, p)
			}
			if newIdom == nil {
				continue
			}
			if idom[b] != newIdom {
				idom[b] = newIdom
				changed = true
			}
		}
	}

	g.root.immedDom = g.root
	for b, d := range idom {
		if b == g.root {
			continue
		}
		b.immedDom = d
		d.domChildren = append(d.domChildren, b)
	}
	for _, b := range g.blocks {
		sortByIndex(b.domChildren)
	}

	assignDomOrder(g.root, 0)
}

func intersect(idom map[*BasicBlock]*BasicBlock, postIndex map[*BasicBlock]int, a, b *BasicBlock) *BasicBlock {
	for a != b {
		for postIndex[a] < postIndex[b] {
			a = idom[a]
		}
		for postIndex[b] < postIndex[a] {
			b = idom[b]
		}
	}
	return a
}

func assignDomOrder(b *BasicBlock, pre int) int {
	b.domPreorder = pre
	pre++
	for _, c := range b.domChildren {
		pre = assignDomOrder(c, pre)
	}
	b.domPostorder = pre
	return pre
}

// Dominates reports whether a dominates b in the current dominator
// tree (inclusive: a dominates itself).
func Dominates(a, b *BasicBlock) bool {
	if a == b {
		return true
	}
	return a.domPreorder <= b.domPreorder && b.domPostorder <= a.domPostorder
}

// DominanceFrontier computes the dominance frontier of every block
// using the Cytron et al. algorithm (spec.md §4.5: "iterated dominance
// frontier"), grounded on the two-phase postorder-of-domtree build
// used by the SSA lifting pass this package's heritage partner mirrors.
func (g *Graph) DominanceFrontier() map[*BasicBlock][]*BasicBlock {
	df := make(map[*BasicBlock][]*BasicBlock, len(g.blocks))
	if g.root == nil {
		return df
	}
	var build func(*BasicBlock)
	build = func(u *BasicBlock) {
		for _, c := range u.domChildren {
			build(c)
		}
		for _, e := range u.Out {
			v := e.Block
			if v.immedDom != u {
				df[u] = appendUnique(df[u], v)
			}
		}
		for _, c := range u.domChildren {
			for _, v := range df[c] {
				if v.immedDom != u {
					df[u] = appendUnique(df[u], v)
				}
			}
		}
	}
	build(g.root)
	return df
}

func appendUnique(list []*BasicBlock, b *BasicBlock) []*BasicBlock {
	for _, cur := range list {
		if cur == b {
			return list
		}
	}
	return append(list, b)
}
