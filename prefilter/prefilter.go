// Package prefilter gives a rule batch a cheap "could this even match"
// gate: an Aho-Corasick automaton over every rule's required literal
// substrings, checked before a full bimachine pass is run. A batch whose
// rules all require some fixed literal text (the common case for a
// contextual replacement rule, whose center pattern is rarely pure
// alternation-of-single-bytes) skips the bimachine entirely when none of
// its literals occur in the input.
package prefilter

import (
	"golang.org/x/sys/cpu"

	"github.com/coregx/ahocorasick"
)

// Filter reports whether a text can possibly contain a match for any of a
// fixed set of literal substrings.
type Filter struct {
	automaton *ahocorasick.Automaton
}

// Build compiles literals into a Filter. A rule batch with no literal
// anchor at all (every rule can match starting from any byte) yields a
// Filter whose MayMatch is unconditionally true, since there is nothing to
// rule out.
func Build(literals []string) (*Filter, error) {
	builder := ahocorasick.NewBuilder()
	n := 0
	for _, lit := range literals {
		if lit == "" {
			continue
		}
		builder.AddPattern([]byte(lit))
		n++
	}
	if n == 0 {
		return &Filter{}, nil
	}
	auto, err := builder.Build()
	if err != nil {
		return nil, err
	}
	return &Filter{automaton: auto}, nil
}

// MayMatch reports whether text contains at least one of the Filter's
// literals. A false return means a full bimachine pass over text is
// guaranteed to make no replacement; a true return is only a hint — the
// literal being present does not by itself mean any rule's left/right
// context or surrounding structure is satisfied.
func (f *Filter) MayMatch(text string) bool {
	if f == nil || f.automaton == nil {
		return true
	}
	return f.automaton.IsMatch([]byte(text))
}

// FastPathAvailable reports whether the running CPU has the instruction
// set extensions the literal-scanning library uses for its accelerated
// search path. It is informational only: the library itself falls back to
// a portable implementation when the extensions are absent, so callers
// never need to branch on this to stay correct, only to decide whether to
// bother prefiltering very large inputs at all.
func FastPathAvailable() bool {
	switch {
	case cpu.X86.HasAVX2, cpu.X86.HasSSSE3:
		return true
	case cpu.ARM64.HasASIMD:
		return true
	default:
		return false
	}
}
