package bimachine

import (
	"fmt"

	"github.com/spetrov/crrewrite/fsa"
	"github.com/spetrov/crrewrite/rule"
	"github.com/spetrov/crrewrite/symbol"
)

// qErr marks "no viable center state" throughout the δ/τ tables — reusing
// fsa.NoState rather than inventing a fresh sentinel, since it already
// means "absent" for every automaton in this module.
const qErr = fsa.NoState

// centerEdge is one transition of the merged center transducer: reading an
// input byte, emitting an output word, landing on a global (union-wide)
// state.
type centerEdge struct {
	to  fsa.State
	out symbol.Word
}

// centerUnion merges every rule's center transducer into one disjoint state
// space, so the C8 and C9 tables can be built over a single δ/ψ_δ domain
// (plus the q_err sentinel) instead of per-rule relations walked at rewrite
// time. Thompson's construction (package thompson) gives each rule a single
// initial state but not necessarily a single final state: a top-level union or
// Kleene star joins its branches' finals into a shared accepting state via
// epsilon edges, and real-time conversion (package transducer) then marks
// every branch final that can epsilon-reach it, so an alternation center
// like "[a,x]|[ab,y]" ends up with one final state per branch length.
// ruleFinal therefore records the whole set.
type centerUnion struct {
	numStates   int
	fwd         []map[byte][]centerEdge // global state -> byte -> forward edges
	rev         []map[byte][]fsa.State  // global state -> byte -> predecessor states
	ruleOf      []int                   // global state -> owning rule index
	ruleInitial []fsa.State             // rule index -> its initial global state
	ruleFinal   [][]fsa.State           // rule index -> all its final global states
}

// buildCenterUnion lays every rule's CenterRT end to end with disjoint state
// ids (offset by the running total of prior rules' state counts) and
// flattens their transitions into forward and reverse adjacency, keyed by
// input byte.
func buildCenterUnion(rules []*rule.Representation) (*centerUnion, error) {
	cu := &centerUnion{
		ruleInitial: make([]fsa.State, len(rules)),
		ruleFinal:   make([][]fsa.State, len(rules)),
	}

	offset := make([]int, len(rules))
	total := 0
	for i, r := range rules {
		offset[i] = total
		total += r.CenterRT.NumStates
	}
	cu.numStates = total
	cu.fwd = make([]map[byte][]centerEdge, total)
	cu.rev = make([]map[byte][]fsa.State, total)
	cu.ruleOf = make([]int, total)

	for i, r := range rules {
		off := offset[i]
		for s := 0; s < r.CenterRT.NumStates; s++ {
			cu.ruleOf[off+s] = i
		}
		if len(r.CenterRT.Initial) == 0 {
			return nil, fmt.Errorf("bimachine: rule %q center transducer has no initial state", r.Name)
		}
		cu.ruleInitial[i] = fsa.State(off) + r.CenterRT.Initial[0]
		for s := 0; s < r.CenterRT.NumStates; s++ {
			if r.CenterRT.Final[s] {
				cu.ruleFinal[i] = append(cu.ruleFinal[i], fsa.State(off+s))
			}
		}
		if len(cu.ruleFinal[i]) == 0 {
			return nil, fmt.Errorf("bimachine: rule %q center transducer has no final state", r.Name)
		}
		for _, t := range r.CenterRT.Trans.All() {
			from := fsa.State(off) + t.From
			to := fsa.State(off) + t.To
			b := t.Label.In.B
			if cu.fwd[from] == nil {
				cu.fwd[from] = map[byte][]centerEdge{}
			}
			cu.fwd[from][b] = append(cu.fwd[from][b], centerEdge{to: to, out: t.Label.Out})
			if cu.rev[to] == nil {
				cu.rev[to] = map[byte][]fsa.State{}
			}
			cu.rev[to][b] = append(cu.rev[to][b], from)
		}
	}
	return cu, nil
}

// isFinal reports whether state is one of its owning rule's final states.
func (cu *centerUnion) isFinal(state fsa.State) bool {
	for _, f := range cu.ruleFinal[cu.ruleOf[state]] {
		if f == state {
			return true
		}
	}
	return false
}

func containsState(states []fsa.State, s fsa.State) bool {
	for _, x := range states {
		if x == s {
			return true
		}
	}
	return false
}
