package bimachine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spetrov/crrewrite/fsa"
	"github.com/spetrov/crrewrite/rule"
	"github.com/spetrov/crrewrite/symbol"
)

// leftPhiState is one state of the bimachine-with-final-output's stateful
// left automaton (C9 §4.7): ℓ_ctx, the ordinary left-context state, plus
// phi, a per-rule map from live center-union state to the output
// accumulated reaching it. A rule's entry is seeded fresh with its initial
// state whenever that rule's left context holds and nothing is already in
// flight for it, and a state reached here that is final for its rule is
// never retained in phi — a completed candidate has exactly one chance to
// fire, decided immediately, not carried forward as a dangling sink.
type leftPhiState struct {
	ctx fsa.State
	phi []map[fsa.State]symbol.Word
}

// ruleCand is one rule reaching final output w on a single step, recorded
// in priority order (rule ascending) for ψ to pick from.
type ruleCand struct {
	rule int
	out  symbol.Word
}

// leftPhiAuto is the precompiled stateful left automaton: states and
// transitions built once by BFS, plus rawFinal — the pre-strip candidates
// each transition produced, consulted only when building ψ, never at Apply
// time.
type leftPhiAuto struct {
	states   []leftPhiState
	succ     []map[byte]int
	start    int
	emptyAt  []int // ctx state -> automaton state id with every phi empty
	phiEmpty []bool
	rawFinal []map[byte][]ruleCand
}

func buildLeftPhiAuto(alphabet string, left *ctxIndex, cu *centerUnion, numRules int) *leftPhiAuto {
	la := &leftPhiAuto{}

	index := map[string]int{}
	add := func(s leftPhiState) (int, bool) {
		k := fmt.Sprint(s.ctx, s.phi)
		if id, ok := index[k]; ok {
			return id, false
		}
		id := len(la.states)
		index[k] = id
		la.states = append(la.states, s)
		la.succ = append(la.succ, map[byte]int{})
		la.rawFinal = append(la.rawFinal, map[byte][]ruleCand{})
		empty := true
		for _, m := range s.phi {
			if len(m) > 0 {
				empty = false
				break
			}
		}
		la.phiEmpty = append(la.phiEmpty, empty)
		return id, true
	}

	emptyPhi := func() []map[fsa.State]symbol.Word {
		phi := make([]map[fsa.State]symbol.Word, numRules)
		for i := range phi {
			phi[i] = map[fsa.State]symbol.Word{}
		}
		return phi
	}

	la.emptyAt = make([]int, left.dfa.Core.NumStates)
	for i := range la.emptyAt {
		la.emptyAt[i] = -1
	}
	registerEmpty := func(ctx fsa.State, queue *[]int) {
		if la.emptyAt[ctx] >= 0 {
			return
		}
		eid, isNew := add(leftPhiState{ctx: ctx, phi: emptyPhi()})
		la.emptyAt[ctx] = eid
		if isNew {
			*queue = append(*queue, eid)
		}
	}

	startCtx := left.dfa.Start()
	startID, _ := add(leftPhiState{ctx: startCtx, phi: emptyPhi()})
	la.start = startID
	la.emptyAt[startCtx] = startID

	queue := []int{startID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		cur := la.states[id]
		for i := 0; i < len(alphabet); i++ {
			b := alphabet[i]
			nextCtx, ok := left.dfa.Successor(cur.ctx, b)
			if !ok {
				continue
			}
			registerEmpty(nextCtx, &queue)

			nextPhi := emptyPhi()
			var finals []ruleCand
			for r := 0; r < numRules; r++ {
				seed := map[fsa.State]symbol.Word{}
				for s, w := range cur.phi[r] {
					seed[s] = w
				}
				if len(seed) == 0 && left.ok(cur.ctx, r) {
					seed[cu.ruleInitial[r]] = ""
				}

				var srcs []fsa.State
				for s := range seed {
					srcs = append(srcs, s)
				}
				sort.Slice(srcs, func(i, j int) bool { return srcs[i] < srcs[j] })

				raw := map[fsa.State]symbol.Word{}
				for _, s := range srcs {
					w := seed[s]
					for _, e := range cu.fwd[s][b] {
						if cu.ruleOf[e.to] != r {
							continue
						}
						if _, seen := raw[e.to]; !seen {
							raw[e.to] = w + e.out
						}
					}
				}

				var tos []fsa.State
				for s := range raw {
					tos = append(tos, s)
				}
				sort.Slice(tos, func(i, j int) bool { return tos[i] < tos[j] })
				for _, s := range tos {
					w := raw[s]
					if cu.isFinal(s) {
						finals = append(finals, ruleCand{rule: r, out: w})
						continue
					}
					nextPhi[r][s] = w
				}
			}

			allEmpty := true
			for _, m := range nextPhi {
				if len(m) > 0 {
					allEmpty = false
					break
				}
			}

			var nid int
			if allEmpty {
				nid = la.emptyAt[nextCtx]
			} else {
				var isNew bool
				nid, isNew = add(leftPhiState{ctx: nextCtx, phi: nextPhi})
				if isNew {
					queue = append(queue, nid)
				}
			}
			la.succ[id][b] = nid
			if len(finals) > 0 {
				la.rawFinal[id][b] = finals
			}
		}
	}
	return la
}

// psiKey is ψ's key: left-automaton state, input byte, right-context
// state. ι reuses the shared tauEps table instead of its own — it depends
// only on left and right context, not on phi.
type psiKey struct {
	l int
	a byte
	r fsa.State
}

// buildPsi resolves, for every transition that reached at least one rule's
// final state, which rule (if any) actually fires at a given right-context
// state: the highest-priority candidate whose right context holds there.
func buildPsi(la *leftPhiAuto, right *ctxIndex, numRightStates int) *SparseTable[psiKey, symbol.Word] {
	t := NewSparseTable[psiKey, symbol.Word]()
	for l := range la.states {
		for b, cands := range la.rawFinal[l] {
			for r := 0; r < numRightStates; r++ {
				for _, c := range cands {
					if right.ok(fsa.State(r), c.rule) {
						_ = t.Insert(psiKey{l, b, fsa.State(r)}, c.out)
						break
					}
				}
			}
		}
	}
	return t
}

// FinalOutputRewriter is the C9 "bimachine with final output" construction:
// a precompiled stateful left automaton whose states already fold in every
// rule's in-progress center match, combined with a plain right-context scan
// and a ψ table resolving, per (left-state, byte, right-state), whether a
// match fires and with what output. Unlike TwoStepRewriter it needs no
// right automaton with g — phi already carries, per rule, everything
// reachable from the left, so the only remaining unknown at each step is
// whether the (already-known) right context accepts here.
type FinalOutputRewriter struct {
	alphabet string
	left     *ctxIndex
	right    *ctxIndex
	la       *leftPhiAuto
	psi      *SparseTable[psiKey, symbol.Word]
	tauEps   *Table[int, symbol.Word]
}

// BuildFinalOutput compiles batch into a FinalOutputRewriter via the
// bimachine-with-final-output construction (C9): context automata collapse
// further than C8's via colored pseudo-minimization over containsFinalOf,
// and matching is driven by the stateful left automaton's ψ table rather
// than a center-state-keyed δ, so this agrees with TwoStepRewriter on every
// input by a structurally independent route.
func BuildFinalOutput(batch *rule.Batch) (*FinalOutputRewriter, error) {
	if len(batch.Rules) == 0 {
		return nil, rule.ErrEmptyBatch
	}

	lefts := make([]*fsa.FSA[symbol.Sym], len(batch.Rules))
	rights := make([]*fsa.FSA[symbol.Sym], len(batch.Rules))
	for i, r := range batch.Rules {
		lefts[i] = r.Left
		rights[i] = r.RightReversed
	}
	left := buildContextIndex(batch.Alphabet, lefts, true)
	right := buildContextIndex(batch.Alphabet, rights, true)

	cu, err := buildCenterUnion(batch.Rules)
	if err != nil {
		return nil, err
	}

	la := buildLeftPhiAuto(batch.Alphabet, left, cu, len(batch.Rules))
	psi := buildPsi(la, right, right.dfa.Core.NumStates)
	tauEps := buildTauEps(batch.Rules, left, right)

	return &FinalOutputRewriter{
		alphabet: batch.Alphabet,
		left:     left,
		right:    right,
		la:       la,
		psi:      psi,
		tauEps:   tauEps,
	}, nil
}

// Apply rewrites text in a single left-to-right pass, advancing the
// precompiled left automaton one byte at a time and consulting ψ (keyed by
// the left state, the byte just read, and the right-context state at the
// position just past it) to decide whether a match fires there.
func (rw *FinalOutputRewriter) Apply(text string) (string, error) {
	for i := 0; i < len(text); i++ {
		if strings.IndexByte(rw.alphabet, text[i]) < 0 {
			return "", &UnknownSymbolError{Symbol: text[i], Pos: i}
		}
	}
	n := len(text)

	reversed := make([]byte, n)
	for i := 0; i < n; i++ {
		reversed[i] = text[n-1-i]
	}
	rightRevPath, ok := rw.right.dfa.FindPath(string(reversed))
	if !ok {
		return "", fmt.Errorf("bimachine: right context automaton is not total over its own alphabet")
	}
	rightAt := func(i int) fsa.State { return rightRevPath[n-i] }

	var out strings.Builder
	l := rw.la.start
	for pos := 0; pos < n; pos++ {
		a := text[pos]
		lnext, ok := rw.la.succ[l][a]
		if !ok {
			return "", fmt.Errorf("bimachine: left automaton is not total over its own alphabet")
		}
		r := rightAt(pos + 1)
		if w, fired := rw.psi.Lookup(psiKey{l, a, r}); fired {
			out.WriteString(w)
			l = rw.la.emptyAt[rw.la.states[lnext].ctx]
		} else if rw.la.phiEmpty[lnext] {
			out.WriteByte(a)
			l = lnext
		} else {
			l = lnext
		}
	}

	if w, ok := rw.tauEps.Lookup(int(rw.la.states[l].ctx), int(rightRevPath[0])); ok {
		out.WriteString(w)
	}
	return out.String(), nil
}
