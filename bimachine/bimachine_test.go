package bimachine

import (
	"testing"

	"github.com/spetrov/crrewrite/rule"
)

const alphabet = "abc "

func build(t *testing.T, srcs []rule.Source) *rule.Batch {
	t.Helper()
	batch, err := rule.BuildBatch(alphabet, srcs)
	if err != nil {
		t.Fatalf("BuildBatch: %v", err)
	}
	return batch
}

func TestApplySimpleReplacement(t *testing.T) {
	batch := build(t, []rule.Source{{Name: "ab-to-x", Center: "[ab,x]"}})
	rw, err := BuildTwoStep(batch)
	if err != nil {
		t.Fatalf("BuildTwoStep: %v", err)
	}
	out, err := rw.Apply("cabc")
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out != "cxc" {
		t.Fatalf("Apply(\"cabc\") = %q, want \"cxc\"", out)
	}
}

func TestApplyRespectsLeftContext(t *testing.T) {
	// Only replace "b" with "x" when immediately preceded by "a".
	batch := build(t, []rule.Source{{Name: "ctx", Left: "a", Center: "[b,x]"}})
	rw, err := BuildTwoStep(batch)
	if err != nil {
		t.Fatalf("BuildTwoStep: %v", err)
	}
	out, err := rw.Apply("abcb")
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out != "axcb" {
		t.Fatalf("Apply(\"abcb\") = %q, want \"axcb\"", out)
	}
}

func TestApplyRespectsRightContext(t *testing.T) {
	// Only replace "a" with "x" when immediately followed by "c".
	batch := build(t, []rule.Source{{Name: "ctx", Right: "c", Center: "[a,x]"}})
	rw, err := BuildTwoStep(batch)
	if err != nil {
		t.Fatalf("BuildTwoStep: %v", err)
	}
	out, err := rw.Apply("acab")
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out != "xcab" {
		t.Fatalf("Apply(\"acab\") = %q, want \"xcab\"", out)
	}
}

func TestApplyPriorityOrderLowestIndexWins(t *testing.T) {
	// Two rules both able to match at the same position: the
	// lower-priority-index rule must win.
	batch := build(t, []rule.Source{
		{Name: "a-to-x", Center: "[a,x]"},
		{Name: "ab-to-y", Center: "[ab,y]"},
	})
	rw, err := BuildTwoStep(batch)
	if err != nil {
		t.Fatalf("BuildTwoStep: %v", err)
	}
	out, err := rw.Apply("ab")
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out != "xb" {
		t.Fatalf("Apply(\"ab\") = %q, want \"xb\" (priority rule wins over the longer match)", out)
	}
}

func TestApplyLeftmostLongestWithinOneRule(t *testing.T) {
	// A single rule offering two lengths via alternation: the longer match
	// must win whenever both are viable at the same position.
	batch := build(t, []rule.Source{{Name: "a-or-ab", Center: "[a,x]|[ab,y]"}})
	rw, err := BuildTwoStep(batch)
	if err != nil {
		t.Fatalf("BuildTwoStep: %v", err)
	}
	out, err := rw.Apply("ab")
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out != "y" {
		t.Fatalf("Apply(\"ab\") = %q, want \"y\" (longest match within the rule)", out)
	}
}

func TestApplyUnknownSymbol(t *testing.T) {
	batch := build(t, []rule.Source{{Name: "r", Center: "[a,x]"}})
	rw, err := BuildTwoStep(batch)
	if err != nil {
		t.Fatalf("BuildTwoStep: %v", err)
	}
	_, err = rw.Apply("az") // 'z' is outside the batch's alphabet
	if err == nil {
		t.Fatal("expected an UnknownSymbolError")
	}
	if _, ok := err.(*UnknownSymbolError); !ok {
		t.Fatalf("expected *UnknownSymbolError, got %T", err)
	}
}

func TestTwoStepAndFinalOutputAgree(t *testing.T) {
	srcs := []rule.Source{
		{Name: "ctx", Left: "a", Right: "c", Center: "[b,x]"},
		{Name: "fallback", Center: "[b,y]"},
	}
	batch := build(t, srcs)

	twoStep, err := BuildTwoStep(batch)
	if err != nil {
		t.Fatalf("BuildTwoStep: %v", err)
	}
	finalOut, err := BuildFinalOutput(batch)
	if err != nil {
		t.Fatalf("BuildFinalOutput: %v", err)
	}

	for _, text := range []string{"abc", "ab", "cba", "abca"} {
		out1, err := twoStep.Apply(text)
		if err != nil {
			t.Fatalf("two-step Apply(%q): %v", text, err)
		}
		out2, err := finalOut.Apply(text)
		if err != nil {
			t.Fatalf("final-output Apply(%q): %v", text, err)
		}
		if out1 != out2 {
			t.Errorf("Apply(%q): two-step = %q, final-output = %q; constructions must agree", text, out1, out2)
		}
	}
}

func TestApplyEpsilonOutputAtEndOfInput(t *testing.T) {
	batch := build(t, []rule.Source{{Name: "insert-end", Right: "", Center: "[_,x]"}})
	rw, err := BuildTwoStep(batch)
	if err != nil {
		t.Fatalf("BuildTwoStep: %v", err)
	}
	// Every position (including end-of-input) offers an empty match, so
	// the center pattern [_,x] should fire for a net single insertion on
	// an otherwise-empty string (the engine breaks ties by advancing, and
	// the trailing epsilon-output table covers what's left at the end).
	out, err := rw.Apply("")
	if err != nil {
		t.Fatalf("Apply(\"\"): %v", err)
	}
	if out == "" {
		t.Fatal("expected a non-empty result: the insertion rule should fire on the empty string")
	}
}
