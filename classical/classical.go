// Package classical provides the plain-symbol DFA specialization used for
// left- and right-context automata: O(1) successor lookup against a
// completed, deterministic automaton, path-following over an input string,
// and the classical-language operations (intersection, complement) used to
// combine context acceptors with Σ*.
package classical

import (
	"github.com/spetrov/crrewrite/fsa"
	"github.com/spetrov/crrewrite/symbol"
)

// State is a classical-automaton state id.
type State = fsa.State

// FSA wraps a deterministic fsa.FSA[symbol.Sym] with a small per-state map
// giving O(1) Successor lookups keyed by the symbols actually used by that
// state — never a 256-slot array indexed by raw byte, which would risk
// excess stack/heap use if the symbol representation ever widens.
type FSA struct {
	Core     *fsa.FSA[symbol.Sym]
	Alphabet string
	succ     map[State]map[byte]State
}

// FromCore wraps an already-deterministic automaton for O(1) querying.
func FromCore(core *fsa.FSA[symbol.Sym], alphabet string) *FSA {
	c := &FSA{Core: core, Alphabet: alphabet}
	c.reindex()
	return c
}

func (c *FSA) reindex() {
	c.succ = make(map[State]map[byte]State, c.Core.NumStates)
	for _, t := range c.Core.Trans.All() {
		m := c.succ[t.From]
		if m == nil {
			m = map[byte]State{}
			c.succ[t.From] = m
		}
		m[t.Label.B] = t.To
	}
}

// Successor returns the destination of q on sym, and whether it is defined.
func (c *FSA) Successor(q State, sym byte) (State, bool) {
	m := c.succ[q]
	if m == nil {
		return fsa.NoState, false
	}
	s, ok := m[sym]
	return s, ok
}

// Start returns the (unique, by construction) initial state, or NoState if
// the automaton has none.
func (c *FSA) Start() State {
	if len(c.Core.Initial) == 0 {
		return fsa.NoState
	}
	return c.Core.Initial[0]
}

// IsFinal reports whether q is a final state.
func (c *FSA) IsFinal(q State) bool { return q != fsa.NoState && c.Core.Final[q] }

// FindPath walks text from the start state, returning the sequence of
// states visited (length len(text)+1). ok is false if text leaves the
// automaton's domain (no successor defined) partway through.
func (c *FSA) FindPath(text string) (path []State, ok bool) {
	path = make([]State, len(text)+1)
	path[0] = c.Start()
	cur := path[0]
	for i := 0; i < len(text); i++ {
		nxt, defined := c.Successor(cur, text[i])
		if !defined {
			return nil, false
		}
		path[i+1] = nxt
		cur = nxt
	}
	return path, true
}

// CreateFromSymbolSet builds Σ (a two-state acceptor of exactly one
// alphabet symbol) when star is false, or Σ* (a one-state, self-looping,
// always-accepting automaton) when star is true.
func CreateFromSymbolSet(alphabet string, star bool) *fsa.FSA[symbol.Sym] {
	if star {
		a := fsa.New[symbol.Sym](1)
		a.Initial = []fsa.State{0}
		a.SetFinal(0, true)
		for i := 0; i < len(alphabet); i++ {
			a.AddTransition(0, symbol.NewSym(alphabet[i]), 0)
		}
		return a
	}
	a := fsa.New[symbol.Sym](2)
	a.Initial = []fsa.State{0}
	a.SetFinal(1, true)
	for i := 0; i < len(alphabet); i++ {
		a.AddTransition(0, symbol.NewSym(alphabet[i]), 1)
	}
	return a
}

// Intersect builds the product DFA recognizing L(a) ∩ L(b).
func Intersect(a, b *fsa.FSA[symbol.Sym]) *fsa.FSA[symbol.Sym] {
	return fsa.Product[symbol.Sym, symbol.Sym, symbol.Sym](a, b,
		func(x, y symbol.Sym) bool { return x == y && !x.IsEpsilon() },
		func(x, _ symbol.Sym) symbol.Sym { return x })
}

// CompleteOver adds a fresh non-accepting sink state and routes every
// missing (state, symbol) pair there, so the automaton is total over
// alphabet. This is a required precondition for Complement.
func CompleteOver(a *fsa.FSA[symbol.Sym], alphabet string) *fsa.FSA[symbol.Sym] {
	out := a.Clone()
	have := make([]map[byte]bool, out.NumStates)
	for i := range have {
		have[i] = map[byte]bool{}
	}
	for _, t := range out.Trans.All() {
		have[t.From][t.Label.B] = true
	}
	missing := false
	for s := 0; s < out.NumStates && !missing; s++ {
		for i := 0; i < len(alphabet); i++ {
			if !have[s][alphabet[i]] {
				missing = true
				break
			}
		}
	}
	if !missing {
		return out
	}
	sink := out.AddState()
	for i := 0; i < len(alphabet); i++ {
		out.AddTransition(sink, symbol.NewSym(alphabet[i]), sink)
	}
	for s := 0; s < int(sink); s++ {
		for i := 0; i < len(alphabet); i++ {
			if !have[s][alphabet[i]] {
				out.AddTransition(fsa.State(s), symbol.NewSym(alphabet[i]), sink)
			}
		}
	}
	return out
}

// Complement builds the DFA recognizing Σ* \ L(a). a must already be total
// over alphabet (see CompleteOver).
func Complement(a *fsa.FSA[symbol.Sym]) *fsa.FSA[symbol.Sym] {
	out := a.Clone()
	for i := range out.Final {
		out.Final[i] = !out.Final[i]
	}
	return out
}
