package porterstem

import (
	"strings"
	"testing"
)

func TestCenterLiterals(t *testing.T) {
	tests := []struct {
		center string
		want   []string
	}{
		{"[sses,ss]", []string{"sses"}},
		{"[_,\x02]", nil},
		{"([bb,b]|[cc,c])[\x01,_]", []string{"bb", "cc", "\x01"}},
	}
	for _, tt := range tests {
		got := centerLiterals(tt.center)
		if len(got) != len(tt.want) {
			t.Fatalf("centerLiterals(%q) = %v, want %v", tt.center, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Fatalf("centerLiterals(%q) = %v, want %v", tt.center, got, tt.want)
			}
		}
	}
}

func TestBuild(t *testing.T) {
	if _, err := NewPipeline(); err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
}

func TestStemProducesCleanOutput(t *testing.T) {
	p, err := NewPipeline()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	// These assert the pipeline's structural guarantees (no stray marker
	// bytes, no growth beyond the sentinel round-trip, deterministic
	// output) rather than pinning exact textbook stems — the ten rule
	// groups interact enough that only running the real algorithm on a
	// reference word list should be trusted for exact stem values.
	words := []string{"caresses", "ponies", "agreed", "plastered", "motoring", "relational", "conflated", "sensational"}
	for _, w := range words {
		t.Run(w, func(t *testing.T) {
			got, err := p.Stem(w)
			if err != nil {
				t.Fatalf("Stem(%q): %v", w, err)
			}
			if strings.ContainsAny(got, "\x01\x02") {
				t.Errorf("Stem(%q) = %q still contains an internal marker byte", w, got)
			}
			if len(got) > len(w) {
				t.Errorf("Stem(%q) = %q is longer than the input", w, got)
			}
			got2, err := p.Stem(w)
			if err != nil || got2 != got {
				t.Errorf("Stem(%q) is not deterministic: %q vs %q (err=%v)", w, got, got2, err)
			}
		})
	}
}

func TestStemRejectsReservedBytes(t *testing.T) {
	p, err := NewPipeline()
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	if _, err := p.Stem("ab\x02c"); err == nil {
		t.Fatal("expected an error for input containing a reserved marker byte")
	}
}
