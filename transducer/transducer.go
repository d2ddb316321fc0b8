// Package transducer implements the letter-transducer and real-time
// transducer operations: expansion from word-pair labels to chained
// symbol-pair labels, domain/range projection, composition, and real-time
// (input-epsilon-free) conversion with infinite-ambiguity detection.
package transducer

import (
	"errors"

	"github.com/spetrov/crrewrite/fsa"
	"github.com/spetrov/crrewrite/symbol"
	"github.com/spetrov/crrewrite/transition"
)

// Letter is a letter transducer: every transition is labeled by a symbol
// pair, either side possibly epsilon.
type Letter = fsa.FSA[symbol.SymPair]

// RealTimeT is a real-time transducer: the input side is epsilon-free.
type RealTimeT = fsa.FSA[symbol.SymWord]

// ErrInfinitelyAmbiguous is returned by RealTime when the input-epsilon
// subgraph contains a cycle that accumulates a non-empty output word.
var ErrInfinitelyAmbiguous = errors.New("transducer: infinitely ambiguous on input epsilon")

// Expand replaces every word-pair-labeled transition of a regex-level
// automaton with a chain of symbol-pair transitions, allocating fresh
// intermediate states and padding the shorter side with epsilon.
func Expand(a *fsa.FSA[symbol.WordPair]) *Letter {
	out := fsa.New[symbol.SymPair](a.NumStates)
	copy(out.Final, a.Final)
	out.Initial = append([]fsa.State(nil), a.Initial...)

	for _, t := range a.Trans.All() {
		u, v := t.Label.U, t.Label.V
		n := len(u)
		if len(v) > n {
			n = len(v)
		}
		if n == 0 {
			out.AddTransition(t.From, symbol.SymPair{}.Epsilon(), t.To)
			continue
		}
		cur := t.From
		for i := 0; i < n; i++ {
			in := symbol.Sym{B: symbol.Epsilon}
			if i < len(u) {
				in = symbol.NewSym(u[i])
			}
			out_ := symbol.Sym{B: symbol.Epsilon}
			if i < len(v) {
				out_ = symbol.NewSym(v[i])
			}
			var next fsa.State
			if i == n-1 {
				next = t.To
			} else {
				next = out.AddState()
			}
			out.AddTransition(cur, symbol.SymPair{In: in, Out: out_}, next)
			cur = next
		}
	}
	return out
}

// Domain projects a letter transducer onto its input coordinate.
func Domain(a *Letter) *fsa.FSA[symbol.Sym] {
	out := fsa.New[symbol.Sym](a.NumStates)
	copy(out.Final, a.Final)
	out.Initial = append([]fsa.State(nil), a.Initial...)
	for _, t := range a.Trans.All() {
		out.AddTransition(t.From, t.Label.In, t.To)
	}
	return out
}

// Range projects a letter transducer onto its output coordinate.
func Range(a *Letter) *fsa.FSA[symbol.Sym] {
	out := fsa.New[symbol.Sym](a.NumStates)
	copy(out.Final, a.Final)
	out.Initial = append([]fsa.State(nil), a.Initial...)
	for _, t := range a.Trans.All() {
		out.AddTransition(t.From, t.Label.Out, t.To)
	}
	return out
}

// Compose builds the relational composition of two letter transducers:
// every pair of transitions whose middle symbols agree (including the
// trivial epsilon/epsilon agreement) contributes an edge carrying a's input
// and b's output.
//
// This assumes both operands already line up on a shared epsilon
// convention (true of every transducer this module builds internally,
// since centers are always expanded from a regex before composition would
// ever be considered) rather than implementing the full epsilon-filter
// construction needed for two arbitrary letter transducers; the rule
// pipeline (package rule) never calls Compose; it is exposed as a library
// primitive for callers that construct their own transducers.
func Compose(a, b *Letter) *Letter {
	return fsa.Product[symbol.SymPair, symbol.SymPair, symbol.SymPair](a, b,
		func(la, lb symbol.SymPair) bool { return la.Out == lb.In },
		func(la, lb symbol.SymPair) symbol.SymPair { return symbol.SymPair{In: la.In, Out: lb.Out} })
}

type epsEdge struct {
	outIsEps bool
	out      byte
	to       fsa.State
}

// detectInfiniteAmbiguity decides whether the input-epsilon subgraph
// contains a cycle through at least one non-empty-output edge. Such a cycle
// is exactly the condition under which real-time conversion would need to
// emit an unboundedly long output for a single input position: for any
// non-empty edge (u,v), the transducer is infinitely ambiguous iff v can
// reach u again purely via input-epsilon edges (that reachability, combined
// with the (u,v) edge itself, is the cycle).
func detectInfiniteAmbiguity(n int, epsAdj map[fsa.State][]epsEdge) error {
	reachableFrom := func(start fsa.State) map[fsa.State]bool {
		seen := map[fsa.State]bool{start: true}
		queue := []fsa.State{start}
		for len(queue) > 0 {
			s := queue[0]
			queue = queue[1:]
			for _, e := range epsAdj[s] {
				if !seen[e.to] {
					seen[e.to] = true
					queue = append(queue, e.to)
				}
			}
		}
		return seen
	}
	for u := 0; u < n; u++ {
		for _, e := range epsAdj[fsa.State(u)] {
			if e.outIsEps {
				continue
			}
			if reachableFrom(e.to)[fsa.State(u)] {
				return ErrInfinitelyAmbiguous
			}
		}
	}
	return nil
}

// EpsilonOutputsFrom returns every distinct output word reachable from
// state by following only input-epsilon transitions and ending in an
// original final state — the set of outputs the transducer could produce
// while consuming no input symbols, starting from state. Used to test a
// center transducer for functionality on the empty input: an initial state
// with more than one such word is not a function on ε.
func EpsilonOutputsFrom(a *Letter, state fsa.State) []symbol.Word {
	epsAdj := map[fsa.State][]epsEdge{}
	for _, t := range a.Trans.All() {
		if t.Label.In.IsEpsilon() {
			epsAdj[t.From] = append(epsAdj[t.From], epsEdge{outIsEps: t.Label.Out.IsEpsilon(), out: t.Label.Out.B, to: t.To})
		}
	}
	type item struct {
		state fsa.State
		word  symbol.Word
	}
	first := item{state, ""}
	seen := map[item]bool{first: true}
	queue := []item{first}
	var words []symbol.Word
	seenWord := map[symbol.Word]bool{}
	record := func(s fsa.State, w symbol.Word) {
		if a.Final[s] && !seenWord[w] {
			seenWord[w] = true
			words = append(words, w)
		}
	}
	record(state, "")
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range epsAdj[cur.state] {
			w := cur.word
			if !e.outIsEps {
				w += string(rune(e.out))
			}
			nxt := item{e.to, w}
			if !seen[nxt] {
				seen[nxt] = true
				queue = append(queue, nxt)
				record(e.to, w)
			}
		}
	}
	return words
}

// RealTime converts a letter transducer into an equivalent real-time
// transducer (input-epsilon-free), reusing the original's state numbering.
// outputsForEpsilon, if non-nil, is appended with every output word
// produced by an input-epsilon path from an original state to an original
// final state — i.e. the relation's epsilon-outputs, gathered from every
// state rather than only from the initial states, into one flat list that
// does not record which state produced each word. Package rule passes nil
// here and asks EpsilonOutputsFrom for the initial state's outputs instead.
func RealTime(a *Letter, outputsForEpsilon *[]symbol.Word) (*RealTimeT, error) {
	epsAdj := map[fsa.State][]epsEdge{}
	var nonEpsIn []transition.T[symbol.SymPair]
	for _, t := range a.Trans.All() {
		if t.Label.In.IsEpsilon() {
			epsAdj[t.From] = append(epsAdj[t.From], epsEdge{outIsEps: t.Label.Out.IsEpsilon(), out: t.Label.Out.B, to: t.To})
		} else {
			nonEpsIn = append(nonEpsIn, t)
		}
	}

	if err := detectInfiniteAmbiguity(a.NumStates, epsAdj); err != nil {
		return nil, err
	}

	type item struct {
		state fsa.State
		word  symbol.Word
	}
	closureOf := func(start fsa.State) []item {
		first := item{start, ""}
		seen := map[item]bool{first: true}
		queue := []item{first}
		all := []item{first}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, e := range epsAdj[cur.state] {
				w := cur.word
				if !e.outIsEps {
					w += string(rune(e.out))
				}
				nxt := item{e.to, w}
				if !seen[nxt] {
					seen[nxt] = true
					all = append(all, nxt)
					queue = append(queue, nxt)
				}
			}
		}
		return all
	}

	nonEpsByFrom := map[fsa.State][]transition.T[symbol.SymPair]{}
	for _, t := range nonEpsIn {
		nonEpsByFrom[t.From] = append(nonEpsByFrom[t.From], t)
	}

	out := fsa.New[symbol.SymWord](a.NumStates)
	out.Initial = append([]fsa.State(nil), a.Initial...)

	for p := 0; p < a.NumStates; p++ {
		for _, it := range closureOf(fsa.State(p)) {
			if a.Final[it.state] {
				out.Final[p] = true
				if outputsForEpsilon != nil {
					*outputsForEpsilon = append(*outputsForEpsilon, it.word)
				}
			}
			for _, t := range nonEpsByFrom[it.state] {
				w := it.word
				if !t.Label.Out.IsEpsilon() {
					w += string(rune(t.Label.Out.B))
				}
				out.AddTransition(fsa.State(p), symbol.SymWord{In: t.Label.In, Out: w}, t.To)
			}
		}
	}
	return out, nil
}
