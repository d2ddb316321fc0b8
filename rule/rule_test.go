package rule

import "testing"

const alphabet = "abc"

func TestBuildSimpleRule(t *testing.T) {
	r, err := Build(alphabet, Source{Name: "ab-to-x", Left: "", Right: "", Center: "[ab,x]"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if r.Left == nil || r.Right == nil || r.RightReversed == nil || r.CenterRT == nil {
		t.Fatal("Build left a nil automaton field")
	}
	if r.HasEpsOutput {
		t.Error("rule requiring input \"ab\" should not have an epsilon output")
	}
}

func TestBuildEpsilonOutputRule(t *testing.T) {
	r, err := Build(alphabet, Source{Name: "insert-c", Left: "", Right: "", Center: "[_,c]"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !r.HasEpsOutput {
		t.Fatal("expected HasEpsOutput for a pure-insertion rule")
	}
	if r.EpsOutput != "c" {
		t.Fatalf("EpsOutput = %q, want \"c\"", r.EpsOutput)
	}
}

func TestBuildRejectsNonFunctionalEpsilon(t *testing.T) {
	_, err := Build(alphabet, Source{Name: "ambiguous", Left: "", Right: "", Center: "[_,b]|[_,c]"})
	if err == nil {
		t.Fatal("expected an error for a center ambiguous on the empty input")
	}
}

func TestBuildContextPatterns(t *testing.T) {
	_, err := Build(alphabet, Source{Name: "ctx", Left: "a*", Right: "d", Center: "[c,c]"})
	// 'd' is outside the declared alphabet "abc"; this must fail compiling
	// the right-context pattern rather than silently accepting it.
	if err == nil {
		t.Fatal("expected an error compiling an invalid right-context pattern")
	}
}

func TestBuildBatchRejectsEmpty(t *testing.T) {
	if _, err := BuildBatch(alphabet, nil); err != ErrEmptyBatch {
		t.Fatalf("BuildBatch(nil) error = %v, want ErrEmptyBatch", err)
	}
}

func TestBuildBatchRejectsBadAlphabet(t *testing.T) {
	if _, err := BuildBatch("a_b", []Source{{Name: "x", Center: "[a,a]"}}); err == nil {
		t.Fatal("expected an error for an alphabet containing the reserved epsilon byte")
	}
}

func TestBuildBatchWrapsPerRuleError(t *testing.T) {
	_, err := BuildBatch(alphabet, []Source{
		{Name: "ok", Center: "[a,a]"},
		{Name: "bad", Center: "[z,z]"}, // 'z' is outside the declared alphabet
	})
	if err == nil {
		t.Fatal("expected an error")
	}
	berr, ok := err.(*BuildError)
	if !ok {
		t.Fatalf("expected *BuildError, got %T", err)
	}
	if berr.Index != 1 || berr.Name != "bad" {
		t.Fatalf("BuildError = %+v, want index 1 name \"bad\"", berr)
	}
}

func TestBuildBatchPreservesOrder(t *testing.T) {
	batch, err := BuildBatch(alphabet, []Source{
		{Name: "first", Center: "[a,a]"},
		{Name: "second", Center: "[b,b]"},
	})
	if err != nil {
		t.Fatalf("BuildBatch: %v", err)
	}
	if batch.Rules[0].Name != "first" || batch.Rules[1].Name != "second" {
		t.Fatal("BuildBatch did not preserve rule priority order")
	}
}
