package thompson

import (
	"fmt"
	"strings"

	"github.com/spetrov/crrewrite/fsa"
	"github.com/spetrov/crrewrite/regexsyn"
	"github.com/spetrov/crrewrite/symbol"
)

// ScanPlainSymbol returns a base-element scanner for plain-symbol regexes:
// every non-special byte present in alphabet is a one-byte base element.
func ScanPlainSymbol(alphabet string) regexsyn.ScanBase[symbol.Sym] {
	return func(pattern string, pos int) (int, symbol.Sym, error) {
		c := pattern[pos]
		if symbol.IsSpecial(c) || symbol.IsForbidden(c) {
			return 0, symbol.Sym{}, &regexsyn.BadRegexError{Reason: fmt.Sprintf("unexpected character %q", c), Pos: pos}
		}
		if strings.IndexByte(alphabet, c) < 0 {
			return 0, symbol.Sym{}, &regexsyn.BadRegexError{Reason: fmt.Sprintf("symbol %q not in declared alphabet", c), Pos: pos}
		}
		return 1, symbol.NewSym(c), nil
	}
}

// ScanWordPairBase scans a bracketed "[u,v]" base element for transducer
// regexes.
func ScanWordPairBase(pattern string, pos int) (int, symbol.WordPair, error) {
	if pattern[pos] != symbol.BaseElementBegin {
		return 0, symbol.WordPair{}, &regexsyn.BadRegexError{Reason: fmt.Sprintf("unexpected character %q, expected '['", pattern[pos]), Pos: pos}
	}
	rel := strings.IndexByte(pattern[pos:], symbol.BaseElementEnd)
	if rel < 0 {
		return 0, symbol.WordPair{}, &regexsyn.BadRegexError{Reason: "unclosed base element, missing ']'", Pos: pos}
	}
	end := pos + rel
	wp, err := symbol.ParseWordPair(pattern[pos : end+1])
	if err != nil {
		return 0, symbol.WordPair{}, &regexsyn.BadRegexError{Reason: err.Error(), Pos: pos}
	}
	return end + 1 - pos, wp, nil
}

// CompileSym parses and builds a plain-symbol NFA from a regex over
// alphabet.
func CompileSym(pattern, alphabet string) (*fsa.FSA[symbol.Sym], error) {
	if err := symbol.ValidAlphabet(alphabet); err != nil {
		return nil, err
	}
	r, err := regexsyn.Parse[symbol.Sym](pattern, ScanPlainSymbol(alphabet))
	if err != nil {
		return nil, err
	}
	return Build(r)
}

// CompileWordPair parses and builds a word-pair-labeled NFA (the regex-level
// transducer representation, before Expand lowers it to symbol pairs).
func CompileWordPair(pattern string) (*fsa.FSA[symbol.WordPair], error) {
	r, err := regexsyn.Parse[symbol.WordPair](pattern, ScanWordPairBase)
	if err != nil {
		return nil, err
	}
	return Build(r)
}
