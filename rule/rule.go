// Package rule packages a single contextual replacement rule — a center
// pattern plus its left and right context patterns — into the automata a
// bimachine construction consumes: a left-context acceptor closed under a
// trailing Σ*, a right-context acceptor closed under a leading Σ* (plus its
// reverse, for single-sweep matching), and a real-time center transducer.
// The two context acceptors are pseudo-minimized and converted to the
// appropriate simple normal form; the center transducer is left as
// Thompson's construction and real-time conversion produce it, since it can
// be genuinely nondeterministic.
package rule

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spetrov/crrewrite/classical"
	"github.com/spetrov/crrewrite/fsa"
	"github.com/spetrov/crrewrite/symbol"
	"github.com/spetrov/crrewrite/thompson"
	"github.com/spetrov/crrewrite/transducer"
)

// ErrNonFunctionalEpsilon is returned when a rule's center transducer
// accepts the empty input along more than one path with disagreeing
// output, i.e. it is not a function on ε.
var ErrNonFunctionalEpsilon = errors.New("rule: center is not a function on the empty input")

// Source is the unparsed, user-supplied form of one rule: three regex
// patterns over a shared alphabet. Left and Right may be empty, meaning
// "no context restriction" (equivalent to Σ*).
type Source struct {
	Name   string
	Left   string
	Right  string
	Center string
}

// BuildError reports which rule (by batch index and name) failed to
// compile, and why.
type BuildError struct {
	Index int
	Name  string
	Err   error
}

func (e *BuildError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("rule: rule %d (%q): %v", e.Index, e.Name, e.Err)
	}
	return fmt.Sprintf("rule: rule %d: %v", e.Index, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }

// Representation is a compiled rule: the three automata a bimachine
// construction reads directly.
type Representation struct {
	Name string

	// Left recognizes Σ*·L, pseudo-minimized and converted to right-simple
	// (one final state, no outgoing edges from it).
	Left *fsa.FSA[symbol.Sym]

	// Right recognizes R·Σ*, pseudo-minimized and converted to left-simple
	// (one initial state, no incoming edges into it).
	Right *fsa.FSA[symbol.Sym]

	// RightReversed recognizes Σ*·reverse(R) — the language whose forward
	// acceptance over a reversed suffix of the input is equivalent to R·Σ*
	// accepting that suffix, letting the bimachine construction compute
	// every position's right-context satisfaction in a single backward
	// sweep (see package bimachine).
	RightReversed *fsa.FSA[symbol.Sym]

	// CenterRT is the real-time (input-epsilon-free) center transducer, with
	// the single initial state Thompson's construction gives it; it may have
	// several final states, since real-time conversion marks final every
	// state that can epsilon-reach the original final. Left unminimized: it may be genuinely
	// nondeterministic (see Build), so package bimachine walks it as a
	// relation rather than a function.
	CenterRT *transducer.RealTimeT

	// HasEpsOutput and EpsOutput record the rule's behavior on the empty
	// center match, when well-defined (see ErrNonFunctionalEpsilon).
	HasEpsOutput bool
	EpsOutput    symbol.Word
}

// colorByFinality seeds ColoredPseudoMinimize with the standard two-class
// (final / non-final) coloring appropriate for a plain language acceptor.
func colorByFinality[L comparable](a *fsa.FSA[L]) []int {
	c := make([]int, a.NumStates)
	for s, f := range a.Final {
		if f {
			c[s] = 1
		}
	}
	return c
}

// Build compiles one rule's three context/center patterns into a
// Representation, over the given alphabet.
func Build(alphabet string, src Source) (*Representation, error) {
	sigmaStar := classical.CreateFromSymbolSet(alphabet, true)

	left, err := buildContext(alphabet, src.Left, sigmaStar, true)
	if err != nil {
		return nil, fmt.Errorf("left context: %w", err)
	}
	right, err := buildContext(alphabet, src.Right, sigmaStar, false)
	if err != nil {
		return nil, fmt.Errorf("right context: %w", err)
	}
	rightRev, err := buildRightReversed(alphabet, src.Right, sigmaStar)
	if err != nil {
		return nil, fmt.Errorf("right context: %w", err)
	}

	centerRegex, err := thompson.CompileWordPair(src.Center)
	if err != nil {
		return nil, fmt.Errorf("center: %w", err)
	}
	for _, t := range centerRegex.Trans.All() {
		for i := 0; i < len(t.Label.U); i++ {
			if strings.IndexByte(alphabet, t.Label.U[i]) < 0 {
				return nil, fmt.Errorf("center: input symbol %q is not in the alphabet", t.Label.U[i])
			}
		}
	}
	letter := transducer.Expand(centerRegex)

	rt, err := transducer.RealTime(letter, nil)
	if err != nil {
		return nil, fmt.Errorf("center: %w", err)
	}

	hasEps, epsOut, err := epsilonBehavior(letter)
	if err != nil {
		return nil, err
	}

	// rt is left exactly as RealTime produced it: a single initial state (from
	// Thompson's construction) and possibly several final states, with no
	// ToLeftSimple/ToRightSimple pass applied. It is also not necessarily deterministic — two
	// Thompson branches can agree on an input symbol from the same state
	// with different outputs (e.g. center pattern "[ab,x]|[ac,y]") — so it
	// is never run through ColoredPseudoMinimize, which assumes a
	// deterministic automaton; package bimachine matches against it
	// directly as a relation instead.

	return &Representation{
		Name:          src.Name,
		Left:          left,
		Right:         right,
		RightReversed: rightRev,
		CenterRT:      rt,
		HasEpsOutput:  hasEps,
		EpsOutput:     epsOut,
	}, nil
}

// buildRightReversed builds Σ*·reverse(R) — the reverse of R·Σ*. Running
// this automaton forward over the reverse of a suffix tells, in one
// backward sweep over the whole input, whether that suffix has some prefix
// satisfying R: exactly the information package bimachine needs at every
// position without re-scanning the right context from scratch at each
// candidate match end.
func buildRightReversed(alphabet, pattern string, sigmaStar *fsa.FSA[symbol.Sym]) (*fsa.FSA[symbol.Sym], error) {
	if pattern == "" {
		return sigmaStar.Clone(), nil
	}
	nfa, err := thompson.CompileSym(pattern, alphabet)
	if err != nil {
		return nil, err
	}
	base := fsa.Determinize(fsa.RemoveEpsilon(nfa)).FSA
	closed := fsa.Concat(sigmaStar, fsa.Reverse(base))
	det := fsa.Determinize(fsa.RemoveEpsilon(closed)).FSA
	return fsa.ColoredPseudoMinimize(det, colorByFinality(det)), nil
}

// epsilonBehavior decides whether a center's initial state (Thompson's
// construction always produces exactly one) is a function on the empty
// input: zero reachable ε-outputs means the rule never matches the empty
// string, one means a well-defined ε-replacement, more than one means the
// rule is ambiguous on ε and must be rejected.
func epsilonBehavior(letter *transducer.Letter) (bool, symbol.Word, error) {
	outputs := transducer.EpsilonOutputsFrom(letter, letter.Initial[0])
	switch len(outputs) {
	case 0:
		return false, "", nil
	case 1:
		return true, outputs[0], nil
	default:
		return false, "", ErrNonFunctionalEpsilon
	}
}

// buildContext compiles a context pattern (empty meaning "no restriction",
// i.e. Σ*) and closes it on the appropriate side with Σ*, pseudo-minimizes,
// and converts it to the simple normal form the bimachine construction
// expects: left contexts end up right-simple (a unique, terminal final
// state), right contexts end up left-simple (a unique, source-only initial
// state).
func buildContext(alphabet, pattern string, sigmaStar *fsa.FSA[symbol.Sym], leftContext bool) (*fsa.FSA[symbol.Sym], error) {
	if pattern == "" {
		if leftContext {
			return fsa.ToRightSimple(sigmaStar.Clone(), true), nil
		}
		return fsa.ToLeftSimple(sigmaStar.Clone(), true), nil
	}

	nfa, err := thompson.CompileSym(pattern, alphabet)
	if err != nil {
		return nil, err
	}
	base := fsa.Determinize(fsa.RemoveEpsilon(nfa)).FSA

	var closed *fsa.FSA[symbol.Sym]
	if leftContext {
		closed = fsa.Concat(sigmaStar, base) // Σ*·L
	} else {
		closed = fsa.ConcatRight(base, sigmaStar) // R·Σ*
	}
	det := fsa.Determinize(fsa.RemoveEpsilon(closed)).FSA
	min := fsa.ColoredPseudoMinimize(det, colorByFinality(det))

	if leftContext {
		return fsa.ToRightSimple(min, true), nil
	}
	return fsa.ToLeftSimple(min, true), nil
}

// Batch is a priority-ordered set of compiled rules sharing one alphabet:
// index 0 is highest priority.
type Batch struct {
	Alphabet string
	Rules    []*Representation
}

// ErrEmptyBatch is returned by BuildBatch when given no rules — a bimachine
// over zero rules has no useful behavior and is rejected rather than
// silently built as an identity transform.
var ErrEmptyBatch = errors.New("rule: empty rule batch")

// BuildBatch compiles every rule in srcs, in priority order, over alphabet.
func BuildBatch(alphabet string, srcs []Source) (*Batch, error) {
	if len(srcs) == 0 {
		return nil, ErrEmptyBatch
	}
	if err := symbol.ValidAlphabet(alphabet); err != nil {
		return nil, err
	}
	reprs := make([]*Representation, len(srcs))
	for i, src := range srcs {
		r, err := Build(alphabet, src)
		if err != nil {
			return nil, &BuildError{Index: i, Name: src.Name, Err: err}
		}
		reprs[i] = r
	}
	return &Batch{Alphabet: alphabet, Rules: reprs}, nil
}
