package bimachine

import (
	"fmt"
	"sort"

	"github.com/spetrov/crrewrite/classical"
	"github.com/spetrov/crrewrite/fsa"
	"github.com/spetrov/crrewrite/symbol"
)

// ctxIndex is the shared context automaton for a rule batch's left or right
// side: a single deterministic automaton (the union of every rule's context
// acceptor) plus, per state, containsFinalOf — the set of rule indices
// whose context acceptor accepts at that state. Two states with the same
// containsFinalOf are indistinguishable to every rule's matching decision,
// so collapsing them (collapse=true) is a pure size optimization.
type ctxIndex struct {
	dfa             *classical.FSA
	containsFinalOf [][]int
}

// ok reports whether ruleIdx's context is satisfied at state.
func (c *ctxIndex) ok(state fsa.State, ruleIdx int) bool {
	if state == fsa.NoState || int(state) >= len(c.containsFinalOf) {
		return false
	}
	set := c.containsFinalOf[state]
	i := sort.SearchInts(set, ruleIdx)
	return i < len(set) && set[i] == ruleIdx
}

// buildContextIndex unions a batch of per-rule context automata (already
// Σ-closed by package rule), determinizes the union, and tags every
// resulting state with containsFinalOf. When collapse is true, states with
// identical containsFinalOf profiles are additionally merged via colored
// pseudo-minimization — the extra compaction step the bimachine-with-
// final-output construction performs and the two-step construction skips.
func buildContextIndex(alphabet string, automata []*fsa.FSA[symbol.Sym], collapse bool) *ctxIndex {
	combined := fsa.New[symbol.Sym](0)
	ruleOfFinal := map[fsa.State]int{}
	for ruleIdx, a := range automata {
		base := fsa.State(combined.NumStates)
		for s := 0; s < a.NumStates; s++ {
			ns := combined.AddState()
			if a.Final[s] {
				combined.SetFinal(ns, true)
				ruleOfFinal[ns] = ruleIdx
			}
		}
		for _, i := range a.Initial {
			combined.Initial = append(combined.Initial, base+i)
		}
		for _, t := range a.Trans.All() {
			combined.AddTransition(base+t.From, t.Label, base+t.To)
		}
	}

	// combined can carry epsilon transitions — package rule's Left automata
	// end in a ToRightSimple sentinel final reached by epsilon edges — so
	// Determinize's epsilon-free precondition needs RemoveEpsilon first.
	det := fsa.Determinize(fsa.RemoveEpsilon(combined))

	profileOf := func(states []fsa.State) []int {
		seen := map[int]bool{}
		for _, o := range states {
			if ri, ok := ruleOfFinal[o]; ok {
				seen[ri] = true
			}
		}
		out := make([]int, 0, len(seen))
		for ri := range seen {
			out = append(out, ri)
		}
		sort.Ints(out)
		return out
	}

	profile := make([][]int, det.FSA.NumStates)
	for ns, orig := range det.SubsetOf {
		profile[ns] = profileOf(orig)
	}

	if !collapse {
		return &ctxIndex{dfa: classical.FromCore(det.FSA, alphabet), containsFinalOf: profile}
	}

	colorID := map[string]int{}
	color := make([]int, det.FSA.NumStates)
	for s, p := range profile {
		key := fmt.Sprint(p)
		c, ok := colorID[key]
		if !ok {
			c = len(colorID)
			colorID[key] = c
		}
		color[s] = c
	}
	minimized, classColor := fsa.ColoredPseudoMinimizeTagged(det.FSA, color)

	profileOfColor := make([][]int, len(colorID))
	for s, p := range profile {
		profileOfColor[color[s]] = p
	}
	minProfile := make([][]int, minimized.NumStates)
	for s, c := range classColor {
		minProfile[s] = profileOfColor[c]
	}

	return &ctxIndex{dfa: classical.FromCore(minimized, alphabet), containsFinalOf: minProfile}
}
