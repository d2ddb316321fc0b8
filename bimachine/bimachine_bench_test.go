package bimachine

import (
	"testing"

	"github.com/spetrov/crrewrite/rule"
)

func buildBenchRewriter(b *testing.B) *TwoStepRewriter {
	b.Helper()
	batch, err := rule.BuildBatch(alphabet, []rule.Source{
		{Name: "ctx", Left: "a", Right: "c", Center: "[b,x]"},
		{Name: "fallback", Center: "[b,y]"},
	})
	if err != nil {
		b.Fatalf("BuildBatch: %v", err)
	}
	rw, err := BuildTwoStep(batch)
	if err != nil {
		b.Fatalf("BuildTwoStep: %v", err)
	}
	return rw
}

func BenchmarkApplyShortInput(b *testing.B) {
	rw := buildBenchRewriter(b)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := rw.Apply("abcabc"); err != nil {
			b.Fatalf("Apply: %v", err)
		}
	}
}

func BenchmarkApplyLongInput(b *testing.B) {
	rw := buildBenchRewriter(b)
	input := ""
	for i := 0; i < 200; i++ {
		input += "abc"
	}
	b.ReportAllocs()
	b.SetBytes(int64(len(input)))
	for i := 0; i < b.N; i++ {
		if _, err := rw.Apply(input); err != nil {
			b.Fatalf("Apply: %v", err)
		}
	}
}

func BenchmarkBuildTwoStep(b *testing.B) {
	batch, err := rule.BuildBatch(alphabet, []rule.Source{
		{Name: "ctx", Left: "a", Right: "c", Center: "[b,x]"},
		{Name: "fallback", Center: "[b,y]"},
	})
	if err != nil {
		b.Fatalf("BuildBatch: %v", err)
	}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := BuildTwoStep(batch); err != nil {
			b.Fatalf("BuildTwoStep: %v", err)
		}
	}
}
