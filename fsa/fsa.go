// Package fsa implements the monoidal finite-state-automaton core: a
// generic NFA/DFA representation parameterized by its label type, plus
// epsilon removal, trimming, subset determinization, colored
// pseudo-minimization, product/union/concatenation/Kleene-star/reversal,
// and the "simple" normal-form conversions.
//
// FSA[L] is intentionally label-agnostic: the same algorithms serve plain
// automata (L = symbol.Sym), letter transducers (L = symbol.SymPair) and
// real-time transducers (L = symbol.SymWord), mirroring the reference
// library's LabelType template parameter as a Go type parameter.
package fsa

import (
	"encoding/binary"
	"sort"

	"github.com/spetrov/crrewrite/internal/conv"
	"github.com/spetrov/crrewrite/internal/sparse"
	"github.com/spetrov/crrewrite/symbol"
	"github.com/spetrov/crrewrite/transition"
)

// State identifies a state within one FSA value.
type State = transition.State

// NoState is the sentinel "no such state" value.
const NoState State = -1

// FSA is a finite automaton over label type L.
type FSA[L comparable] struct {
	NumStates int
	Initial   []State
	Final     []bool
	Trans     *transition.List[L]
}

// New returns an empty automaton with numStates states, none initial or
// final.
func New[L comparable](numStates int) *FSA[L] {
	return &FSA[L]{
		NumStates: numStates,
		Final:     make([]bool, numStates),
		Trans:     transition.New[L](),
	}
}

// AddState appends a fresh non-initial, non-final state and returns it.
func (a *FSA[L]) AddState() State {
	s := State(a.NumStates)
	a.NumStates++
	a.Final = append(a.Final, false)
	return s
}

// AddTransition appends a transition. Does not invalidate Final/Initial.
func (a *FSA[L]) AddTransition(from State, label L, to State) {
	a.Trans.Add(transition.T[L]{From: from, Label: label, To: to})
}

// SetFinal marks s as final or not.
func (a *FSA[L]) SetFinal(s State, final bool) { a.Final[s] = final }

// IsFinal reports whether s is final.
func (a *FSA[L]) IsFinal(s State) bool { return a.Final[s] }

// Clone returns a deep-enough independent copy (transitions copied,
// indices not preserved).
func (a *FSA[L]) Clone() *FSA[L] {
	out := New[L](a.NumStates)
	copy(out.Final, a.Final)
	out.Initial = append([]State(nil), a.Initial...)
	for _, t := range a.Trans.All() {
		out.AddTransition(t.From, t.Label, t.To)
	}
	return out
}

// adjacency builds a from-state -> outgoing-transitions map, used by every
// BFS-shaped algorithm below instead of a linear scan per state.
func adjacency[L comparable](a *FSA[L]) map[State][]transition.T[L] {
	adj := make(map[State][]transition.T[L], a.NumStates)
	for _, t := range a.Trans.All() {
		adj[t.From] = append(adj[t.From], t)
	}
	return adj
}

func sortedCopy(in []State) []State {
	out := append([]State(nil), in...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func dedupSorted(in []State) []State {
	if len(in) == 0 {
		return in
	}
	out := in[:1]
	for _, s := range in[1:] {
		if s != out[len(out)-1] {
			out = append(out, s)
		}
	}
	return out
}

// subsetKey interns a sorted, deduplicated state set into a comparable map
// key.
func subsetKey(set []State) string {
	b := make([]byte, 4*len(set))
	for i, s := range set {
		binary.LittleEndian.PutUint32(b[4*i:], conv.IntToUint32(int(s)))
	}
	return string(b)
}

// RemoveEpsilon eliminates epsilon transitions by closing every non-epsilon
// target (and the initial set) over the epsilon-reachability relation. L
// must know how to recognize its own epsilon label.
func RemoveEpsilon[L symbol.Label[L]](a *FSA[L]) *FSA[L] {
	epsAdj := make(map[State][]State, a.NumStates)
	var nonEps []transition.T[L]
	for _, t := range a.Trans.All() {
		if t.Label.IsEpsilon() {
			epsAdj[t.From] = append(epsAdj[t.From], t.To)
		} else {
			nonEps = append(nonEps, t)
		}
	}

	closure := func(start State) []State {
		seen := sparse.NewSparseSet(uint32(a.NumStates))
		stack := []State{start}
		seen.Insert(uint32(start))
		result := []State{start}
		for len(stack) > 0 {
			s := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, nxt := range epsAdj[s] {
				if !seen.Contains(uint32(nxt)) {
					seen.Insert(uint32(nxt))
					result = append(result, nxt)
					stack = append(stack, nxt)
				}
			}
		}
		return result
	}

	out := New[L](a.NumStates)
	copy(out.Final, a.Final)

	initSeen := map[State]bool{}
	for _, i := range a.Initial {
		for _, s := range closure(i) {
			initSeen[s] = true
		}
	}
	for s := range initSeen {
		out.Initial = append(out.Initial, s)
	}
	out.Initial = sortedCopy(out.Initial)

	for _, t := range nonEps {
		for _, q2 := range closure(t.To) {
			out.AddTransition(t.From, t.Label, q2)
		}
	}
	return out
}

// reachability returns a mark[] slice over [0,n) reachable from seeds,
// following trans forwards, or backwards when reversed is true.
func reachability[L comparable](n int, trans []transition.T[L], seeds []State, reversed bool) []bool {
	adj := make([][]State, n)
	for _, t := range trans {
		if reversed {
			adj[t.To] = append(adj[t.To], t.From)
		} else {
			adj[t.From] = append(adj[t.From], t.To)
		}
	}
	mark := make([]bool, n)
	seen := sparse.NewSparseSet(uint32(n))
	var stack []State
	for _, s := range seeds {
		if !seen.Contains(uint32(s)) {
			seen.Insert(uint32(s))
			mark[s] = true
			stack = append(stack, s)
		}
	}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, nx := range adj[s] {
			if !seen.Contains(uint32(nx)) {
				seen.Insert(uint32(nx))
				mark[nx] = true
				stack = append(stack, nx)
			}
		}
	}
	return mark
}

func finalsOf[L comparable](a *FSA[L]) []State {
	var r []State
	for s, f := range a.Final {
		if f {
			r = append(r, State(s))
		}
	}
	return r
}

// Trim keeps only states that are both reachable from an initial state and
// co-reachable from a final state, renumbering what remains.
func Trim[L comparable](a *FSA[L]) *FSA[L] {
	fwd := reachability(a.NumStates, a.Trans.All(), a.Initial, false)
	bwd := reachability(a.NumStates, a.Trans.All(), finalsOf(a), true)

	remap := make([]State, a.NumStates)
	newCount := 0
	for s := 0; s < a.NumStates; s++ {
		if fwd[s] && bwd[s] {
			remap[s] = State(newCount)
			newCount++
		} else {
			remap[s] = NoState
		}
	}

	out := New[L](newCount)
	for s := 0; s < a.NumStates; s++ {
		if remap[s] != NoState {
			out.Final[remap[s]] = a.Final[s]
		}
	}
	for _, i := range a.Initial {
		if remap[i] != NoState {
			out.Initial = append(out.Initial, remap[i])
		}
	}
	out.Initial = dedupSorted(sortedCopy(out.Initial))
	for _, t := range a.Trans.All() {
		if remap[t.From] != NoState && remap[t.To] != NoState {
			out.AddTransition(remap[t.From], t.Label, remap[t.To])
		}
	}
	return out
}

// TrimWithAux behaves like Trim but additionally carries a parallel
// per-state auxiliary slice (len(aux) == a.NumStates) through the same
// reachability filter and renumbering, for callers that attach extra
// bookkeeping to states that Trim's ordinary signature can't express.
func TrimWithAux[L comparable, Aux any](a *FSA[L], aux []Aux) (*FSA[L], []Aux) {
	fwd := reachability(a.NumStates, a.Trans.All(), a.Initial, false)
	bwd := reachability(a.NumStates, a.Trans.All(), finalsOf(a), true)

	remap := make([]State, a.NumStates)
	newCount := 0
	for s := 0; s < a.NumStates; s++ {
		if fwd[s] && bwd[s] {
			remap[s] = State(newCount)
			newCount++
		} else {
			remap[s] = NoState
		}
	}

	out := New[L](newCount)
	newAux := make([]Aux, newCount)
	for s := 0; s < a.NumStates; s++ {
		if remap[s] != NoState {
			out.Final[remap[s]] = a.Final[s]
			newAux[remap[s]] = aux[s]
		}
	}
	for _, i := range a.Initial {
		if remap[i] != NoState {
			out.Initial = append(out.Initial, remap[i])
		}
	}
	out.Initial = dedupSorted(sortedCopy(out.Initial))
	for _, t := range a.Trans.All() {
		if remap[t.From] != NoState && remap[t.To] != NoState {
			out.AddTransition(remap[t.From], t.Label, remap[t.To])
		}
	}
	return out, newAux
}

// DeterminizeResult is the output of subset determinization, retaining for
// each new state the subset of original states it stands for; package
// bimachine's context index reads it to tell which rule contexts each
// aggregated state satisfies.
type DeterminizeResult[L comparable] struct {
	FSA      *FSA[L]
	SubsetOf map[State][]State // new state id -> sorted original state ids
}

// Determinize runs the standard powerset construction. The input must
// already be epsilon-free.
func Determinize[L comparable](a *FSA[L]) DeterminizeResult[L] {
	adj := adjacency(a)

	initSet := dedupSorted(sortedCopy(a.Initial))
	key0 := subsetKey(initSet)
	idOf := map[string]State{key0: 0}
	setOf := map[State][]State{0: initSet}

	out := New[L](1)
	out.Initial = []State{0}

	markFinal := func(id State, set []State) {
		for _, s := range set {
			if a.Final[s] {
				out.Final[id] = true
				return
			}
		}
	}
	markFinal(0, initSet)

	queue := []State{0}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		set := setOf[cur]

		// Labels are visited in the order they are first met, not in map
		// order. This is not required for correctness (the result automaton
		// is the same automaton up to state numbering either way) but keeps
		// output stable for tests.
		perLabel := map[L]map[State]bool{}
		var labels []L
		for _, s := range set {
			for _, t := range adj[s] {
				m := perLabel[t.Label]
				if m == nil {
					m = map[State]bool{}
					perLabel[t.Label] = m
					labels = append(labels, t.Label)
				}
				m[t.To] = true
			}
		}

		for _, label := range labels {
			m := perLabel[label]
			tgt := make([]State, 0, len(m))
			for s := range m {
				tgt = append(tgt, s)
			}
			tgt = dedupSorted(sortedCopy(tgt))
			k := subsetKey(tgt)
			id, ok := idOf[k]
			if !ok {
				id = out.AddState()
				idOf[k] = id
				setOf[id] = tgt
				markFinal(id, tgt)
				queue = append(queue, id)
			}
			out.AddTransition(cur, label, id)
		}
	}

	return DeterminizeResult[L]{FSA: out, SubsetOf: setOf}
}

// Product explores the synchronized product of a and b: from state pairs
// reachable via edges (a1,lblA,a2) and (b1,lblB,b2) for which guard(lblA,
// lblB) holds, emitting (mk(lblA,lblB)). Used for both classical
// intersection (guard = equal-and-non-epsilon, mk = first argument) and
// transducer composition (guard = middle symbols agree, mk = outer pair).
func Product[LA, LB, LR comparable](a *FSA[LA], b *FSA[LB], guard func(LA, LB) bool, mk func(LA, LB) LR) *FSA[LR] {
	adjA := adjacency(a)
	adjB := adjacency(b)

	type pair struct{ a, b State }
	idOf := map[pair]State{}
	out := New[LR](0)

	get := func(p pair) State {
		if id, ok := idOf[p]; ok {
			return id
		}
		id := out.AddState()
		idOf[p] = id
		if a.Final[p.a] && b.Final[p.b] {
			out.Final[id] = true
		}
		return id
	}

	var queue []pair
	for _, ia := range a.Initial {
		for _, ib := range b.Initial {
			p := pair{ia, ib}
			if _, ok := idOf[p]; !ok {
				id := get(p)
				out.Initial = append(out.Initial, id)
				queue = append(queue, p)
			}
		}
	}

	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		from := idOf[p]
		for _, ta := range adjA[p.a] {
			for _, tb := range adjB[p.b] {
				if !guard(ta.Label, tb.Label) {
					continue
				}
				np := pair{ta.To, tb.To}
				_, existed := idOf[np]
				to := get(np)
				out.AddTransition(from, mk(ta.Label, tb.Label), to)
				if !existed {
					queue = append(queue, np)
				}
			}
		}
	}
	return out
}

// Union builds the disjoint union of a and b, joined by a fresh initial
// state with epsilon edges to both operands' initials and a fresh final
// state reached by epsilon edges from both operands' finals.
func Union[L symbol.Label[L]](a, b *FSA[L]) *FSA[L] {
	out, offB := disjointMerge(a, b)
	newInit := out.AddState()
	newFinal := out.AddState()
	eps := (*new(L)).Epsilon()
	for _, i := range a.Initial {
		out.AddTransition(newInit, eps, i)
	}
	for _, i := range b.Initial {
		out.AddTransition(newInit, eps, offB(i))
	}
	for s, f := range a.Final {
		if f {
			out.AddTransition(State(s), eps, newFinal)
		}
	}
	for s, f := range b.Final {
		if f {
			out.AddTransition(offB(State(s)), eps, newFinal)
		}
	}
	out.Initial = []State{newInit}
	out.SetFinal(newFinal, true)
	return out
}

// Concat builds the concatenation a·b: every final of a gets an epsilon
// edge to every initial of b; a's finality is cleared.
func Concat[L symbol.Label[L]](a, b *FSA[L]) *FSA[L] {
	out, offB := disjointMerge(a, b)
	eps := (*new(L)).Epsilon()
	for s, f := range a.Final {
		if f {
			for _, i := range b.Initial {
				out.AddTransition(State(s), eps, offB(i))
			}
			out.Final[s] = false
		}
	}
	for s, f := range b.Final {
		out.Final[int(offB(State(s)))] = f
	}
	out.Initial = append([]State(nil), a.Initial...)
	return out
}

// ConcatRight builds a·Σ* without allocating a new join state: every
// non-epsilon outgoing transition of Σ*'s initial is cloned onto every
// final state of a directly, and Σ*'s initial's finality (always true for
// Σ*) is copied onto a's finals too. This is the "right-concatenation"
// optimization used to build `L·Σ*`/`R·Σ*` efficiently in rule
// construction (C7).
func ConcatRight[L symbol.Label[L]](a, sigmaStar *FSA[L]) *FSA[L] {
	if len(sigmaStar.Initial) != 1 {
		panic("fsa: ConcatRight requires a single-initial right operand")
	}
	star0 := sigmaStar.Initial[0]
	out := a.Clone()
	starAdj := adjacency(sigmaStar)
	for s, f := range a.Final {
		if !f {
			continue
		}
		if sigmaStar.Final[star0] {
			// already final; keep it so.
		}
		cloneFrom(out, sigmaStar, starAdj, State(s), star0, map[State]State{star0: State(s)})
	}
	return out
}

// cloneFrom recursively clones sigmaStar's transitions reachable from
// starState into out, identifying starState with outState, memoizing via
// seen to avoid infinite recursion on Σ*'s self-loop.
func cloneFrom[L comparable](out, sigmaStar *FSA[L], adj map[State][]transition.T[L], outState, starState State, seen map[State]State) {
	for _, t := range adj[starState] {
		childOut, ok := seen[t.To]
		if !ok {
			childOut = out.AddState()
			seen[t.To] = childOut
			if sigmaStar.Final[t.To] {
				out.SetFinal(childOut, true)
			}
			out.AddTransition(outState, t.Label, childOut)
			cloneFrom(out, sigmaStar, adj, childOut, t.To, seen)
		} else {
			out.AddTransition(outState, t.Label, childOut)
		}
	}
}

// KleeneStar builds a* : a fresh initial/final pair, epsilon edges into and
// out of a's initial/finals, an epsilon edge from the new initial to the new
// final (so the empty word is always accepted), and an epsilon edge from the
// new final back to the new initial.
func KleeneStar[L symbol.Label[L]](a *FSA[L]) *FSA[L] {
	out := a.Clone()
	eps := (*new(L)).Epsilon()
	newInit := out.AddState()
	newFinal := out.AddState()
	for _, i := range a.Initial {
		out.AddTransition(newInit, eps, i)
	}
	for s, f := range a.Final {
		if f {
			out.AddTransition(State(s), eps, newFinal)
		}
	}
	out.AddTransition(newInit, eps, newFinal)
	out.AddTransition(newFinal, eps, newInit)
	out.Initial = []State{newInit}
	for i := range out.Final {
		out.Final[i] = false
	}
	out.SetFinal(newFinal, true)
	return out
}

// Reverse swaps the roles of initial/final and reverses every transition.
func Reverse[L comparable](a *FSA[L]) *FSA[L] {
	out := New[L](a.NumStates)
	for s := 0; s < a.NumStates; s++ {
		out.Final[s] = false
	}
	for _, i := range a.Initial {
		out.Final[i] = true
	}
	for s, f := range a.Final {
		if f {
			out.Initial = append(out.Initial, State(s))
		}
	}
	for _, t := range a.Trans.All() {
		out.AddTransition(t.To, t.Label, t.From)
	}
	return out
}

// disjointMerge copies a into a fresh automaton, then appends b's states
// renumbered starting at a.NumStates, returning the resulting automaton and
// a function mapping b's original state ids to their new ids.
func disjointMerge[L comparable](a, b *FSA[L]) (*FSA[L], func(State) State) {
	out := New[L](a.NumStates)
	copy(out.Final, a.Final)
	for _, t := range a.Trans.All() {
		out.AddTransition(t.From, t.Label, t.To)
	}
	base := State(a.NumStates)
	offB := func(s State) State { return s + base }
	for s := 0; s < b.NumStates; s++ {
		out.AddState()
	}
	for s, f := range b.Final {
		out.Final[int(offB(State(s)))] = f
	}
	for _, t := range b.Trans.All() {
		out.AddTransition(offB(t.From), t.Label, offB(t.To))
	}
	return out, offB
}

// ToLeftSimple inserts a fresh sentinel initial state with epsilon edges to
// every original initial, so the result has exactly one initial state with
// no incoming edges. preserveEpsilonInLanguage, when true, additionally
// marks the new initial final if any original initial was final, so that
// acceptance of the empty word survives the transformation.
func ToLeftSimple[L symbol.Label[L]](a *FSA[L], preserveEpsilonInLanguage bool) *FSA[L] {
	out := a.Clone()
	eps := (*new(L)).Epsilon()
	newInit := out.AddState()
	wasEpsilonAccepting := false
	for _, i := range a.Initial {
		out.AddTransition(newInit, eps, i)
		if a.Final[i] {
			wasEpsilonAccepting = true
		}
	}
	out.Initial = []State{newInit}
	if preserveEpsilonInLanguage && wasEpsilonAccepting {
		out.SetFinal(newInit, true)
	}
	return out
}

// ToRightSimple inserts a fresh sentinel final state with epsilon edges
// from every original final, so the result has exactly one final state with
// no outgoing edges. An initial state that was final reaches the new final
// by its epsilon edge, so the empty word stays accepted without further
// help and preserveEpsilonInLanguage has no effect here.
func ToRightSimple[L symbol.Label[L]](a *FSA[L], preserveEpsilonInLanguage bool) *FSA[L] {
	out := a.Clone()
	eps := (*new(L)).Epsilon()
	newFinal := out.AddState()
	for s, f := range a.Final {
		if f {
			out.AddTransition(State(s), eps, newFinal)
			out.Final[s] = false
		}
	}
	out.SetFinal(newFinal, true)
	return out
}

// ToSimple applies both transformations, yielding a unique initial state
// with no incoming edges and a unique final state with no outgoing edges.
func ToSimple[L symbol.Label[L]](a *FSA[L], preserveEpsilonInLanguage bool) *FSA[L] {
	return ToRightSimple(ToLeftSimple(a, preserveEpsilonInLanguage), preserveEpsilonInLanguage)
}
