package regexsyn

import (
	"testing"

	"github.com/spetrov/crrewrite/symbol"
)

func scanSym(pattern string, pos int) (int, symbol.Sym, error) {
	return 1, symbol.NewSym(pattern[pos]), nil
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		wantErr bool
	}{
		{"single literal", "a", false},
		{"concatenation", "ab", false},
		{"union", "a|b", false},
		{"star", "a*", false},
		{"grouped union then star", "(a|b)*", false},
		{"nested groups", "((a|b)c)*d", false},
		{"empty set atom", "@", false},
		{"empty pattern", "", true},
		{"dangling union", "a|", true},
		{"leading union", "|a", true},
		{"unexpected star", "*a", true},
		{"mismatched open", "(a", true},
		{"mismatched close", "a)", true},
		{"empty alternative branch", "(a|)", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.pattern, scanSym)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.pattern, err, tt.wantErr)
			}
		})
	}
}

func TestParseRPNShape(t *testing.T) {
	// "ab" must become base(a) base(b) concat.
	re, err := Parse("ab", scanSym)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(re.RPN) != 3 {
		t.Fatalf("RPN length = %d, want 3", len(re.RPN))
	}
	if !re.RPN[0].IsBase || !re.RPN[1].IsBase {
		t.Fatalf("expected first two RPN items to be bases, got %+v", re.RPN)
	}
	if re.RPN[2].Op != symbol.Concatenation {
		t.Fatalf("expected trailing concat operator, got %+v", re.RPN[2])
	}
}

func TestParseUnionPrecedence(t *testing.T) {
	// "ab|c" should parse as (a.b)|c: union must bind looser than
	// concatenation, so the final operator in RPN is the union.
	re, err := Parse("ab|c", scanSym)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	last := re.RPN[len(re.RPN)-1]
	if last.Op != symbol.Union {
		t.Fatalf("expected union as the final (lowest precedence) operator, got %+v", last)
	}
}

func TestParseImplicitConcatAroundGroups(t *testing.T) {
	// "(a)(b)" needs an inserted concatenation token between the groups.
	re, err := Parse("(a)(b)", scanSym)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	var concats int
	for _, it := range re.RPN {
		if !it.IsBase && it.Op == symbol.Concatenation {
			concats++
		}
	}
	if concats != 1 {
		t.Fatalf("expected exactly one concatenation operator, got %d in %+v", concats, re.RPN)
	}
}

func TestBadRegexErrorMessage(t *testing.T) {
	_, err := Parse("a|", scanSym)
	if err == nil {
		t.Fatal("expected error")
	}
	bre, ok := err.(*BadRegexError)
	if !ok {
		t.Fatalf("expected *BadRegexError, got %T", err)
	}
	if bre.Error() == "" {
		t.Fatal("expected non-empty error message")
	}
}
