package thompson

import (
	"testing"

	"github.com/spetrov/crrewrite/classical"
	"github.com/spetrov/crrewrite/fsa"
	"github.com/spetrov/crrewrite/symbol"
)

func accepts(t *testing.T, pattern, alphabet, text string) bool {
	t.Helper()
	nfa, err := CompileSym(pattern, alphabet)
	if err != nil {
		t.Fatalf("CompileSym(%q): %v", pattern, err)
	}
	det := fsa.Determinize(fsa.RemoveEpsilon(nfa)).FSA
	c := classical.FromCore(det, alphabet)
	path, ok := c.FindPath(text)
	if !ok {
		return false
	}
	return c.IsFinal(path[len(path)-1])
}

func TestCompileSymAcceptance(t *testing.T) {
	const alphabet = "abc"
	tests := []struct {
		name    string
		pattern string
		text    string
		want    bool
	}{
		{"literal match", "abc", "abc", true},
		{"literal mismatch", "abc", "abd", false},
		{"union left", "a|b", "a", true},
		{"union right", "a|b", "b", true},
		{"union miss", "a|b", "c", false},
		{"star zero reps", "a*", "", true},
		{"star many reps", "a*", "aaaa", true},
		{"group then star", "(ab)*", "abab", true},
		{"group then star odd", "(ab)*", "aba", false},
		{"empty set never matches", "@", "", false},
		{"empty set never matches nonempty", "@", "a", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := accepts(t, tt.pattern, alphabet, tt.text); got != tt.want {
				t.Errorf("CompileSym(%q) accepts(%q) = %v, want %v", tt.pattern, tt.text, got, tt.want)
			}
		})
	}
}

func TestCompileSymRejectsOutOfAlphabet(t *testing.T) {
	if _, err := CompileSym("d", "abc"); err == nil {
		t.Fatal("expected error for symbol outside the declared alphabet")
	}
}

func TestCompileWordPair(t *testing.T) {
	a, err := CompileWordPair("[ab,x]|[ac,y]")
	if err != nil {
		t.Fatalf("CompileWordPair: %v", err)
	}
	if len(a.Initial) == 0 {
		t.Fatal("expected at least one initial state")
	}
	var finals int
	for _, f := range a.Final {
		if f {
			finals++
		}
	}
	if finals == 0 {
		t.Fatal("expected at least one final state")
	}
}

func TestCompileWordPairBadSyntax(t *testing.T) {
	if _, err := CompileWordPair("[ab,]"); err == nil {
		t.Fatal("expected error: empty transducer side must be spelled with the epsilon byte")
	}
}

func TestScanPlainSymbolRejectsSpecialBytes(t *testing.T) {
	scan := ScanPlainSymbol("a" + string(symbol.Union))
	if _, _, err := scan(string(symbol.Union), 0); err == nil {
		t.Fatal("expected error scanning a special byte as a base element")
	}
}
