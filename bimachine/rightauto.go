package bimachine

import (
	"fmt"
	"sort"

	"github.com/spetrov/crrewrite/fsa"
)

// gEntry is one live candidate tracked by the right automaton with g (C8
// §4.6): rule is the rule it belongs to, states is the set of center-union
// states still reachable backward, from rule's final set, over the suffix
// consumed so far. At most one entry per rule is ever live at a time, but a
// dropped-then-reinjected entry is appended at the end of g, so position
// within the slice does NOT track rule priority — callers needing priority
// order must scan by rule index (see entryForRule), not by g position.
type gEntry struct {
	rule   int
	states []fsa.State
}

// gState is one state of the right automaton with g: the underlying right
// context DFA state plus g.
type gState struct {
	ctx fsa.State
	g   []gEntry
}

// rightAuto is the precompiled right automaton with g: every (gState,byte)
// transition is computed once by scanning backward from the empty suffix,
// so δ/ψ_δ/τ construction (and eventually Apply) only ever do table
// lookups against it, never a fresh relation walk.
type rightAuto struct {
	right  *ctxIndex
	states []gState
	succ   []map[byte]int
	start  int
}

// buildRightAuto explores every reachable (right-context-state, g) pair by
// BFS over alphabet, starting from the state for the empty suffix (the very
// end of the input). Each step first propagates existing g entries backward
// through the center union's reverse adjacency — dropping any whose entire
// tracked state set has no predecessor on this byte — then injects a fresh
// entry for every rule whose right context now holds and which does not
// already have a live entry.
func buildRightAuto(alphabet string, right *ctxIndex, cu *centerUnion) *rightAuto {
	ra := &rightAuto{right: right}

	index := map[string]int{}
	add := func(s gState) (int, bool) {
		k := fmt.Sprint(s.ctx, s.g)
		if id, ok := index[k]; ok {
			return id, false
		}
		id := len(ra.states)
		index[k] = id
		ra.states = append(ra.states, s)
		ra.succ = append(ra.succ, map[byte]int{})
		return id, true
	}

	startCtx := right.dfa.Start()
	startID, _ := add(gState{ctx: startCtx, g: injectG(nil, right, cu, startCtx)})
	ra.start = startID

	queue := []int{startID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		cur := ra.states[id]
		for i := 0; i < len(alphabet); i++ {
			b := alphabet[i]
			nextCtx, ok := right.dfa.Successor(cur.ctx, b)
			if !ok {
				continue
			}
			g2 := propagateG(cur.g, cu, b)
			g2 = injectG(g2, right, cu, nextCtx)
			nid, isNew := add(gState{ctx: nextCtx, g: g2})
			ra.succ[id][b] = nid
			if isNew {
				queue = append(queue, nid)
			}
		}
	}
	return ra
}

// injectG appends, for every rule with no live entry already in g whose
// right context holds at ctx, a fresh entry seeded with that rule's full
// final-state set.
func injectG(g []gEntry, right *ctxIndex, cu *centerUnion, ctx fsa.State) []gEntry {
	out := append([]gEntry(nil), g...)
	has := make([]bool, len(cu.ruleInitial))
	for _, e := range out {
		has[e.rule] = true
	}
	for r := range cu.ruleInitial {
		if has[r] || !right.ok(ctx, r) {
			continue
		}
		out = append(out, gEntry{rule: r, states: append([]fsa.State(nil), cu.ruleFinal[r]...)})
	}
	return out
}

// propagateG replaces every entry's state set with its predecessors on b,
// dropping entries whose set becomes empty.
func propagateG(g []gEntry, cu *centerUnion, b byte) []gEntry {
	out := make([]gEntry, 0, len(g))
	for _, e := range g {
		seen := map[fsa.State]bool{}
		var next []fsa.State
		for _, s := range e.states {
			for _, p := range cu.rev[s][b] {
				if !seen[p] {
					seen[p] = true
					next = append(next, p)
				}
			}
		}
		if len(next) == 0 {
			continue
		}
		sort.Slice(next, func(i, j int) bool { return next[i] < next[j] })
		out = append(out, gEntry{rule: e.rule, states: next})
	}
	return out
}

// Successor returns the state reached from id on b, if defined.
func (ra *rightAuto) Successor(id int, b byte) (int, bool) {
	nid, ok := ra.succ[id][b]
	return nid, ok
}

// FindPath walks text from the start state, returning the sequence of state
// ids visited (length len(text)+1).
func (ra *rightAuto) FindPath(text string) ([]int, bool) {
	path := make([]int, len(text)+1)
	path[0] = ra.start
	cur := ra.start
	for i := 0; i < len(text); i++ {
		nxt, ok := ra.Successor(cur, text[i])
		if !ok {
			return nil, false
		}
		path[i+1] = nxt
		cur = nxt
	}
	return path, true
}
