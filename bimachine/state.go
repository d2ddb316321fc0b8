// Package bimachine compiles a priority-ordered batch of contextual
// replacement rules (package rule) into a single-pass rewriter: a left
// context automaton, a right context automaton run over the reverse of the
// input, and a per-rule center transducer, composed by two alternative
// constructions — a two-step bimachine and a bimachine with final output —
// that converge on the same leftmost-longest, priority-ordered rewriting
// semantics.
package bimachine

import "fmt"

// UnknownSymbolError is returned by Apply when the input contains a byte
// outside the batch's declared alphabet.
type UnknownSymbolError struct {
	Symbol byte
	Pos    int
}

func (e *UnknownSymbolError) Error() string {
	return fmt.Sprintf("bimachine: byte %q at position %d is not in the rewriter's alphabet", e.Symbol, e.Pos)
}
