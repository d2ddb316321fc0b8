package transducer_test

import (
	"testing"

	"github.com/spetrov/crrewrite/fsa"
	"github.com/spetrov/crrewrite/symbol"
	"github.com/spetrov/crrewrite/thompson"
	"github.com/spetrov/crrewrite/transducer"
)

func buildRealTime(t *testing.T, pattern string) *transducer.RealTimeT {
	t.Helper()
	a, err := thompson.CompileWordPair(pattern)
	if err != nil {
		t.Fatalf("CompileWordPair(%q): %v", pattern, err)
	}
	letter := transducer.Expand(a)
	rt, err := transducer.RealTime(letter, nil)
	if err != nil {
		t.Fatalf("RealTime(%q): %v", pattern, err)
	}
	return rt
}

// runOutput walks every live branch of rt in parallel (a frontier search,
// the same technique package bimachine uses), since rt need not be
// deterministic: two transitions can leave the same state on the same
// input byte with different outputs. It reports one accepting output, if
// any exists, for input consumed in full.
func runOutput(t *testing.T, rt *transducer.RealTimeT, input string) (string, bool) {
	t.Helper()
	adj := map[fsa.State]map[byte][]transitionInfo{}
	for _, tr := range rt.Trans.All() {
		m := adj[tr.From]
		if m == nil {
			m = map[byte][]transitionInfo{}
			adj[tr.From] = m
		}
		m[tr.Label.In.B] = append(m[tr.Label.In.B], transitionInfo{to: tr.To, out: tr.Label.Out})
	}

	frontier := map[fsa.State]symbol.Word{rt.Initial[0]: ""}
	for i := 0; i < len(input); i++ {
		next := map[fsa.State]symbol.Word{}
		for s, w := range frontier {
			for _, e := range adj[s][input[i]] {
				if _, seen := next[e.to]; !seen {
					next[e.to] = w + e.out
				}
			}
		}
		frontier = next
	}
	for s, w := range frontier {
		if rt.Final[s] {
			return w, true
		}
	}
	return "", false
}

type transitionInfo struct {
	to  fsa.State
	out symbol.Word
}

func TestRealTimeSimpleReplacement(t *testing.T) {
	rt := buildRealTime(t, "[ab,x]")
	out, ok := runOutput(t, rt, "ab")
	if !ok || out != "x" {
		t.Fatalf("runOutput = %q, %v; want \"x\", true", out, ok)
	}
	if _, ok := runOutput(t, rt, "ac"); ok {
		t.Fatal("expected no accepting path for \"ac\"")
	}
}

func TestRealTimeDeletion(t *testing.T) {
	rt := buildRealTime(t, "[abc,_]")
	out, ok := runOutput(t, rt, "abc")
	if !ok || out != "" {
		t.Fatalf("runOutput = %q, %v; want \"\", true", out, ok)
	}
}

func TestRealTimeInsertion(t *testing.T) {
	// A pure insertion consumes no input, so no real-time transition can
	// carry its output: RealTime marks the initial state final, and the
	// inserted word is the rule's epsilon-output.
	rt := buildRealTime(t, "[_,xyz]")
	if _, ok := runOutput(t, rt, ""); !ok {
		t.Fatal("runOutput(\"\"): want an accepting path for the empty input")
	}
	a, err := thompson.CompileWordPair("[_,xyz]")
	if err != nil {
		t.Fatalf("CompileWordPair: %v", err)
	}
	letter := transducer.Expand(a)
	outputs := transducer.EpsilonOutputsFrom(letter, letter.Initial[0])
	if len(outputs) != 1 || outputs[0] != "xyz" {
		t.Fatalf("epsilon outputs = %v; want [xyz]", outputs)
	}
}

func TestRealTimeNondeterministicBranch(t *testing.T) {
	// "[ab,x]|[ac,y]" genuinely branches on the same symbol 'a' from the
	// same state with two different continuations/outputs; package
	// bimachine's frontier walk is what actually needs to handle that, so
	// here it's enough to confirm both full words are still reachable via
	// RealTime's relation (not forcing a single deterministic walk).
	rt := buildRealTime(t, "[ab,x]|[ac,y]")
	if out, ok := runOutput(t, rt, "ab"); !ok || out != "x" {
		t.Fatalf("runOutput(ab) = %q, %v; want \"x\", true", out, ok)
	}
	if out, ok := runOutput(t, rt, "ac"); !ok || out != "y" {
		t.Fatalf("runOutput(ac) = %q, %v; want \"y\", true", out, ok)
	}

	// The rule is not a function on the empty input (it requires at least
	// one input symbol), so it must report zero epsilon-outputs.
	a, err := thompson.CompileWordPair("[ab,x]|[ac,y]")
	if err != nil {
		t.Fatalf("CompileWordPair: %v", err)
	}
	letter := transducer.Expand(a)
	outputs := transducer.EpsilonOutputsFrom(letter, letter.Initial[0])
	if len(outputs) != 0 {
		t.Fatalf("expected no epsilon outputs, got %v", outputs)
	}
}

func TestDomainAndRange(t *testing.T) {
	a, err := thompson.CompileWordPair("[ab,xy]")
	if err != nil {
		t.Fatalf("CompileWordPair: %v", err)
	}
	letter := transducer.Expand(a)
	dom := transducer.Domain(letter)
	rng := transducer.Range(letter)

	det := fsa.Determinize(fsa.RemoveEpsilon(dom)).FSA
	if !acceptsSym(det, "ab") {
		t.Error("Domain should accept \"ab\"")
	}
	detR := fsa.Determinize(fsa.RemoveEpsilon(rng)).FSA
	if !acceptsSym(detR, "xy") {
		t.Error("Range should accept \"xy\"")
	}
}

func acceptsSym(a *fsa.FSA[symbol.Sym], text string) bool {
	cur := a.Initial[0]
	for i := 0; i < len(text); i++ {
		found := false
		for _, tr := range a.Trans.All() {
			if tr.From == cur && tr.Label.B == text[i] {
				cur = tr.To
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return a.Final[cur]
}
