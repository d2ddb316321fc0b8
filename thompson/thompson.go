// Package thompson builds an fsa.FSA by replaying a parsed regex's reverse
// Polish notation against an explicit operand stack, one fragment per RPN
// item — the same incremental patch-and-splice idiom the reference
// library's NFA builder uses, generalized from byte ranges to an arbitrary
// label type.
package thompson

import (
	"errors"
	"fmt"

	"github.com/spetrov/crrewrite/fsa"
	"github.com/spetrov/crrewrite/regexsyn"
	"github.com/spetrov/crrewrite/symbol"
)

// fragment is a partially built automaton piece: a dangling start and final
// state, not yet wired into anything else.
type fragment struct {
	start, final fsa.State
}

// Build runs Thompson's construction over a parsed regex, producing an
// automaton with exactly one initial state and exactly one final state.
func Build[L symbol.Label[L]](r *regexsyn.Regex[L]) (*fsa.FSA[L], error) {
	a := fsa.New[L](0)
	eps := (*new(L)).Epsilon()

	var stack []fragment
	pop := func() fragment {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return top
	}

	for _, item := range r.RPN {
		if item.IsBase {
			if item.BaseIndex < 0 || item.BaseIndex >= len(r.Bases) {
				return nil, fmt.Errorf("thompson: base index %d out of range", item.BaseIndex)
			}
			s := a.AddState()
			f := a.AddState()
			a.AddTransition(s, r.Bases[item.BaseIndex], f)
			stack = append(stack, fragment{s, f})
			continue
		}

		switch item.Op {
		case symbol.EmptySet:
			s := a.AddState()
			f := a.AddState()
			stack = append(stack, fragment{s, f})

		case symbol.KleeneStar:
			if len(stack) < 1 {
				return nil, errors.New("thompson: malformed RPN (* needs one operand)")
			}
			p := pop()
			s := a.AddState()
			f := a.AddState()
			a.AddTransition(s, eps, p.start)
			a.AddTransition(s, eps, f)
			a.AddTransition(p.final, eps, p.start)
			a.AddTransition(p.final, eps, f)
			stack = append(stack, fragment{s, f})

		case symbol.Union:
			if len(stack) < 2 {
				return nil, errors.New("thompson: malformed RPN (| needs two operands)")
			}
			right := pop()
			left := pop()
			s := a.AddState()
			f := a.AddState()
			a.AddTransition(s, eps, left.start)
			a.AddTransition(s, eps, right.start)
			a.AddTransition(left.final, eps, f)
			a.AddTransition(right.final, eps, f)
			stack = append(stack, fragment{s, f})

		case symbol.Concatenation:
			if len(stack) < 2 {
				return nil, errors.New("thompson: malformed RPN (concatenation needs two operands)")
			}
			right := pop()
			left := pop()
			a.AddTransition(left.final, eps, right.start)
			stack = append(stack, fragment{left.start, right.final})

		default:
			return nil, fmt.Errorf("thompson: unrecognized RPN operator %q", item.Op)
		}
	}

	if len(stack) != 1 {
		return nil, errors.New("thompson: malformed RPN (leftover operands)")
	}
	top := stack[0]
	a.Initial = []fsa.State{top.start}
	a.SetFinal(top.final, true)
	return a, nil
}
