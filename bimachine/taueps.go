package bimachine

import (
	"github.com/spetrov/crrewrite/fsa"
	"github.com/spetrov/crrewrite/rule"
	"github.com/spetrov/crrewrite/symbol"
)

// buildTauEps computes ι/ψ_τ's trailing-ε-output table, shared by both
// bimachine constructions: keyed on (left-index, right-index), it gives the
// ε-output of the highest-priority rule whose ε-behavior applies and whose
// left and right contexts both hold there. Genuinely single-valued by
// construction (rule.Build already rejects non-functional ε-behavior), with
// priority ties broken by visiting rules in order and coalescing.
func buildTauEps(rules []*rule.Representation, left, right *ctxIndex) *Table[int, symbol.Word] {
	tau := NewTable[int, symbol.Word](
		func(a, b int) bool { return a < b },
		func(a, b int) bool { return a == b },
	)
	maxLeft := 0
	if left.dfa.Core.NumStates > 0 {
		maxLeft = left.dfa.Core.NumStates - 1
	}
	for ri, r := range rules {
		if !r.HasEpsOutput {
			continue
		}
		for ls := 0; ls < left.dfa.Core.NumStates; ls++ {
			if !left.ok(fsa.State(ls), ri) {
				continue
			}
			for rs := 0; rs < right.dfa.Core.NumStates; rs++ {
				if !right.ok(fsa.State(rs), ri) {
					continue
				}
				_ = tau.Insert(ls, rs, r.EpsOutput, true)
			}
		}
	}
	tau.Freeze(maxLeft)
	return tau
}
