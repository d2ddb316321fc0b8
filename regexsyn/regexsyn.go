// Package regexsyn parses the concrete regex syntax shared by plain-symbol
// and transducer regular expressions into reverse Polish notation, generic
// over the base-element type (symbol.Sym for plain FSAs, symbol.WordPair
// for transducers) — mirroring the reference library's split between
// syntax parsing and engine-specific lowering.
package regexsyn

import (
	"fmt"

	"github.com/spetrov/crrewrite/symbol"
)

// BadRegexError reports a syntax error in a regex pattern, with the byte
// position at which it was detected (len(pattern) for an error found at
// end-of-input; -1 when not applicable, e.g. an empty pattern).
type BadRegexError struct {
	Reason string
	Pos    int
}

func (e *BadRegexError) Error() string {
	if e.Pos < 0 {
		return fmt.Sprintf("bad regex: %s", e.Reason)
	}
	return fmt.Sprintf("bad regex: %s (at byte %d)", e.Reason, e.Pos)
}

// RPNItem is one entry of a parsed regex's reverse-Polish-notation form:
// either a base-element reference (IsBase, indexing into Regex.Bases) or an
// operator byte (one of symbol.Union, symbol.Concatenation,
// symbol.KleeneStar, symbol.EmptySet).
type RPNItem struct {
	Op        byte
	IsBase    bool
	BaseIndex int
}

// Regex is a parsed regular expression: its RPN form plus the base elements
// the RPN's IsBase entries reference.
type Regex[B comparable] struct {
	RPN   []RPNItem
	Bases []B
}

// ScanBase extracts one base element from pattern starting at pos
// (pattern[pos] is guaranteed not to be '|', '*', a parenthesis, or the
// empty-set token; any other byte, '&' included, reaches the scanner),
// returning the number of bytes consumed.
type ScanBase[B comparable] func(pattern string, pos int) (consumed int, elem B, err error)

type tokKind int

const (
	tokBase tokKind = iota
	tokUnion
	tokConcat
	tokStar
	tokOpen
	tokClose
	tokEmptySet
)

type tok struct {
	kind    tokKind
	baseIdx int
}

// Parse tokenizes pattern (inserting implicit concatenation) and converts
// it to reverse Polish notation via the shunting-yard algorithm.
func Parse[B comparable](pattern string, scanBase ScanBase[B]) (*Regex[B], error) {
	toks, bases, err := tokenize(pattern, scanBase)
	if err != nil {
		return nil, err
	}
	rpn, err := toRPN(toks)
	if err != nil {
		return nil, err
	}
	items := make([]RPNItem, len(rpn))
	for i, t := range rpn {
		switch t.kind {
		case tokBase:
			items[i] = RPNItem{IsBase: true, BaseIndex: t.baseIdx}
		case tokEmptySet:
			items[i] = RPNItem{Op: symbol.EmptySet}
		case tokStar:
			items[i] = RPNItem{Op: symbol.KleeneStar}
		case tokUnion:
			items[i] = RPNItem{Op: symbol.Union}
		case tokConcat:
			items[i] = RPNItem{Op: symbol.Concatenation}
		}
	}
	return &Regex[B]{RPN: items, Bases: bases}, nil
}

func tokenize[B comparable](pattern string, scanBase ScanBase[B]) ([]tok, []B, error) {
	if len(pattern) == 0 {
		return nil, nil, &BadRegexError{Reason: "empty regular expression", Pos: -1}
	}
	var toks []tok
	var bases []B
	prevAtomOrClose := false
	i := 0
	for i < len(pattern) {
		c := pattern[i]
		switch c {
		case symbol.EmptySet:
			if prevAtomOrClose {
				toks = append(toks, tok{kind: tokConcat})
			}
			toks = append(toks, tok{kind: tokEmptySet})
			prevAtomOrClose = true
			i++
		case symbol.Union:
			if !prevAtomOrClose {
				return nil, nil, &BadRegexError{Reason: "unexpected '|'", Pos: i}
			}
			toks = append(toks, tok{kind: tokUnion})
			prevAtomOrClose = false
			i++
		case symbol.KleeneStar:
			if !prevAtomOrClose {
				return nil, nil, &BadRegexError{Reason: "unexpected '*'", Pos: i}
			}
			toks = append(toks, tok{kind: tokStar})
			i++
		case symbol.OpenParenthesis:
			if prevAtomOrClose {
				toks = append(toks, tok{kind: tokConcat})
			}
			toks = append(toks, tok{kind: tokOpen})
			prevAtomOrClose = false
			i++
		case symbol.CloseParenthesis:
			if !prevAtomOrClose {
				return nil, nil, &BadRegexError{Reason: "unexpected ')'", Pos: i}
			}
			toks = append(toks, tok{kind: tokClose})
			prevAtomOrClose = true
			i++
		default:
			consumed, elem, err := scanBase(pattern, i)
			if err != nil {
				return nil, nil, err
			}
			if consumed <= 0 {
				return nil, nil, &BadRegexError{Reason: "internal: scanBase consumed nothing", Pos: i}
			}
			if prevAtomOrClose {
				toks = append(toks, tok{kind: tokConcat})
			}
			bases = append(bases, elem)
			toks = append(toks, tok{kind: tokBase, baseIdx: len(bases) - 1})
			prevAtomOrClose = true
			i += consumed
		}
	}
	if !prevAtomOrClose {
		return nil, nil, &BadRegexError{Reason: "unexpected end of pattern", Pos: len(pattern)}
	}
	return toks, bases, nil
}

func precedence(k tokKind) int {
	switch k {
	case tokUnion:
		return 1
	case tokConcat:
		return 2
	default:
		return 0
	}
}

// toRPN runs the shunting-yard algorithm. Kleene star, being postfix and
// unary, never needs to sit on the operator stack: it is emitted to the
// output the instant it is seen, exactly like a base element.
func toRPN(toks []tok) ([]tok, error) {
	var output []tok
	var ops []tok
	for _, t := range toks {
		switch t.kind {
		case tokBase, tokEmptySet, tokStar:
			output = append(output, t)
		case tokOpen:
			ops = append(ops, t)
		case tokClose:
			found := false
			for len(ops) > 0 {
				top := ops[len(ops)-1]
				ops = ops[:len(ops)-1]
				if top.kind == tokOpen {
					found = true
					break
				}
				output = append(output, top)
			}
			if !found {
				return nil, &BadRegexError{Reason: "mismatched parentheses", Pos: -1}
			}
		default: // tokUnion, tokConcat
			for len(ops) > 0 {
				top := ops[len(ops)-1]
				if top.kind != tokOpen && precedence(top.kind) >= precedence(t.kind) {
					output = append(output, top)
					ops = ops[:len(ops)-1]
					continue
				}
				break
			}
			ops = append(ops, t)
		}
	}
	for len(ops) > 0 {
		top := ops[len(ops)-1]
		ops = ops[:len(ops)-1]
		if top.kind == tokOpen {
			return nil, &BadRegexError{Reason: "mismatched parentheses", Pos: -1}
		}
		output = append(output, top)
	}
	return output, nil
}
