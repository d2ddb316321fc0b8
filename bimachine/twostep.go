package bimachine

import (
	"fmt"
	"strings"

	"github.com/spetrov/crrewrite/fsa"
	"github.com/spetrov/crrewrite/rule"
	"github.com/spetrov/crrewrite/symbol"
)

// deltaKey is the sparse key for C8's δ/ψ_δ tables: current center state,
// input byte, current right-automaton-with-g state.
type deltaKey struct {
	q fsa.State
	a byte
	r int
}

// deltaVal bundles δ and ψ_δ's shared value for one (q,a,r): the next
// center state and the output emitted taking that step.
type deltaVal struct {
	next fsa.State
	out  symbol.Word
}

// tauKey is the sparse key for C8's τ table: left-context state, right-
// automaton-with-g state.
type tauKey struct {
	l fsa.State
	r int
}

// TwoStepRewriter is the C8 "two-step" bimachine: a left context DFA, a
// right automaton with g (rightAuto), and three precompiled tables —
// δ/ψ_δ over (center-state, byte, right-index) and τ over (left-index,
// right-index) — built once at construction time so Apply never re-
// simulates the center transducer.
type TwoStepRewriter struct {
	alphabet string
	cu       *centerUnion
	left     *ctxIndex
	right    *rightAuto

	delta  *SparseTable[deltaKey, deltaVal]
	tau    *SparseTable[tauKey, fsa.State]
	tauEps *Table[int, symbol.Word]
}

// BuildTwoStep compiles batch into a TwoStepRewriter via the two-step
// bimachine construction (C8): a global center-transducer union, a right
// automaton whose states carry g (the ordered list of live rule candidates
// reachable backward from this point), and the δ(q,a,R)/ψ_δ(q,a,R)/τ(L,R)
// tables built by walking both automata's full reachable state spaces once.
func BuildTwoStep(batch *rule.Batch) (*TwoStepRewriter, error) {
	if len(batch.Rules) == 0 {
		return nil, rule.ErrEmptyBatch
	}

	lefts := make([]*fsa.FSA[symbol.Sym], len(batch.Rules))
	rights := make([]*fsa.FSA[symbol.Sym], len(batch.Rules))
	for i, r := range batch.Rules {
		lefts[i] = r.Left
		rights[i] = r.RightReversed
	}
	left := buildContextIndex(batch.Alphabet, lefts, false)
	right := buildContextIndex(batch.Alphabet, rights, false)

	cu, err := buildCenterUnion(batch.Rules)
	if err != nil {
		return nil, err
	}
	ra := buildRightAuto(batch.Alphabet, right, cu)

	delta := buildDelta(ra, cu, batch.Alphabet)
	tau := buildTau(left, ra, cu)
	tauEps := buildTauEps(batch.Rules, left, right)

	return &TwoStepRewriter{
		alphabet: batch.Alphabet,
		cu:       cu,
		left:     left,
		right:    ra,
		delta:    delta,
		tau:      tau,
		tauEps:   tauEps,
	}, nil
}

// entryForRule returns the (deduplicated, at most one per rule) g entry
// belonging to rule, if g currently tracks one.
func entryForRule(g []gEntry, rule int) ([]fsa.State, bool) {
	for _, e := range g {
		if e.rule == rule {
			return e.states, true
		}
	}
	return nil, false
}

// buildDelta computes δ(q,a,R) and ψ_δ(q,a,R) for every reachable center
// state q, input byte a, and right-automaton state R. Every candidate edge
// out of q belongs to q's own rule (centers never cross rule boundaries),
// so the only ambiguity is intra-rule alternation: among the candidates
// whose target survives in R's single entry for that rule, a
// still-continuing (non-final) target is preferred over an
// already-complete one, since g's construction guarantees continuing is
// only still tracked when some longer completion is genuinely reachable.
func buildDelta(ra *rightAuto, cu *centerUnion, alphabet string) *SparseTable[deltaKey, deltaVal] {
	t := NewSparseTable[deltaKey, deltaVal]()
	for q := 0; q < cu.numStates; q++ {
		rule := cu.ruleOf[q]
		for i := 0; i < len(alphabet); i++ {
			a := alphabet[i]
			edges := cu.fwd[q][a]
			if len(edges) == 0 {
				continue
			}
			for r, st := range ra.states {
				states, ok := entryForRule(st.g, rule)
				if !ok {
					continue
				}
				var best *centerEdge
				for i := range edges {
					e := edges[i]
					if !containsState(states, e.to) {
						continue
					}
					if best == nil || (cu.isFinal(best.to) && !cu.isFinal(e.to)) {
						best = &e
					}
				}
				if best == nil {
					continue
				}
				_ = t.Insert(deltaKey{fsa.State(q), a, r}, deltaVal{next: best.to, out: best.out})
			}
		}
	}
	return t
}

// buildTau computes τ(L,R): scanning rules in priority order, the first
// whose left context holds at L and which has a live g entry at R that
// still contains its own initial state gives the center state to start
// matching from.
func buildTau(left *ctxIndex, ra *rightAuto, cu *centerUnion) *SparseTable[tauKey, fsa.State] {
	t := NewSparseTable[tauKey, fsa.State]()
	maxLeft := 0
	if left.dfa.Core.NumStates > 0 {
		maxLeft = left.dfa.Core.NumStates
	}
	for l := 0; l < maxLeft; l++ {
		for r, st := range ra.states {
			for rule := range cu.ruleInitial {
				if !left.ok(fsa.State(l), rule) {
					continue
				}
				states, ok := entryForRule(st.g, rule)
				if !ok || !containsState(states, cu.ruleInitial[rule]) {
					continue
				}
				_ = t.Insert(tauKey{fsa.State(l), r}, cu.ruleInitial[rule])
				break
			}
		}
	}
	return t
}

// Apply rewrites text in a single left-to-right pass, advancing the current
// center state through the precompiled δ/ψ_δ tables and restarting via τ
// whenever there is no match in progress.
func (rw *TwoStepRewriter) Apply(text string) (string, error) {
	for i := 0; i < len(text); i++ {
		if strings.IndexByte(rw.alphabet, text[i]) < 0 {
			return "", &UnknownSymbolError{Symbol: text[i], Pos: i}
		}
	}
	n := len(text)

	leftPath, ok := rw.left.dfa.FindPath(text)
	if !ok {
		return "", fmt.Errorf("bimachine: left context automaton is not total over its own alphabet")
	}

	reversed := make([]byte, n)
	for i := 0; i < n; i++ {
		reversed[i] = text[n-1-i]
	}
	rightPath, ok := rw.right.FindPath(string(reversed))
	if !ok {
		return "", fmt.Errorf("bimachine: right context automaton is not total over its own alphabet")
	}
	rightAt := func(i int) int { return rightPath[n-i] }

	var out strings.Builder
	pos := 0
	curr := qErr
	for pos < n {
		if curr == qErr {
			if q, ok := rw.tau.Lookup(tauKey{leftPath[pos], rightAt(pos)}); ok {
				curr = q
			}
		}
		if curr == qErr {
			out.WriteByte(text[pos])
			pos++
			continue
		}
		dv, ok := rw.delta.Lookup(deltaKey{curr, text[pos], rightAt(pos + 1)})
		if !ok {
			// τ guarantees any state it hands out completes along the
			// actual text, so this should be unreachable; fall back to a
			// literal byte rather than lose input.
			out.WriteByte(text[pos])
			pos++
			curr = qErr
			continue
		}
		out.WriteString(dv.out)
		pos++
		curr = dv.next
		if rw.cu.isFinal(curr) {
			curr = qErr
		}
	}

	if w, ok := rw.tauEps.Lookup(int(leftPath[n]), int(rw.right.states[rightPath[0]].ctx)); ok {
		out.WriteString(w)
	}
	return out.String(), nil
}
