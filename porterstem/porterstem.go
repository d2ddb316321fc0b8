package porterstem

import (
	"fmt"
	"strings"

	"github.com/spetrov/crrewrite/bimachine"
	"github.com/spetrov/crrewrite/prefilter"
	"github.com/spetrov/crrewrite/rule"
)

// endMarker and b1bMarker are the two internal-use bytes steps pass between
// each other within one word; see Alphabet's doc comment. sentinel is a real
// whitespace character appended before running any stage: step0's own
// length-guard rule inserts an endMarker just before it, since its right
// context (whitespace) has to match an actual byte in the text, not a
// virtual end-of-string.
const (
	endMarker = "\x02"
	b1bMarker = "\x01"
	sentinel  = " "
)

// stage is one compiled rule-step group: its bimachine plus a literal
// prefilter over every rule's required substring, so a step whose literals
// are all absent from the current word can skip the bimachine pass outright.
type stage struct {
	rw     *bimachine.TwoStepRewriter
	filter *prefilter.Filter
}

// Pipeline is a compiled Porter stemmer: one bimachine per rule-step group,
// run in order over a single word.
type Pipeline struct {
	stages []stage
}

// NewPipeline compiles every rule-step group into its own bimachine, in the
// order they must run. NewPipeline is the expensive, one-time setup step;
// Stem is cheap and safe to call repeatedly once a Pipeline exists.
func NewPipeline() (*Pipeline, error) {
	p := &Pipeline{stages: make([]stage, len(steps))}
	for i, group := range steps {
		srcs := make([]rule.Source, len(group))
		var literals []string
		for j, s := range group {
			srcs[j] = rule.Source{Name: s.Name, Left: s.Left, Right: s.Right, Center: s.Center}
			literals = append(literals, centerLiterals(s.Center)...)
		}
		batch, err := rule.BuildBatch(Alphabet, srcs)
		if err != nil {
			return nil, fmt.Errorf("porterstem: step %d: %w", i, err)
		}
		rw, err := bimachine.BuildTwoStep(batch)
		if err != nil {
			return nil, fmt.Errorf("porterstem: step %d: %w", i, err)
		}
		filter, err := prefilter.Build(literals)
		if err != nil {
			return nil, fmt.Errorf("porterstem: step %d: prefilter: %w", i, err)
		}
		p.stages[i] = stage{rw: rw, filter: filter}
	}
	return p, nil
}

// centerLiterals pulls every bracketed "old text" side out of a center
// pattern — the "sses" out of "[sses,ss]", both "at\x01" and "bl\x01" out of
// "([at\x01,ate]|[bl\x01,ble])" — for use as prefilter anchors. The epsilon
// placeholder "_" is skipped: a rule whose old side is empty matches
// anywhere and can never be ruled out by a literal scan.
func centerLiterals(center string) []string {
	var out []string
	for {
		open := strings.IndexByte(center, '[')
		if open < 0 {
			break
		}
		rest := center[open+1:]
		comma := strings.IndexByte(rest, ',')
		if comma < 0 {
			break
		}
		lit := rest[:comma]
		if lit != "_" {
			out = append(out, lit)
		}
		center = rest[comma+1:]
	}
	return out
}

// Stem reduces word to its Porter stem. word must already be lowercase and
// drawn from Alphabet minus the two marker bytes, which Stem rejects. Stem
// appends the whitespace sentinel and strips it at the end; the rule groups
// insert and delete the end-of-word marker themselves.
func (p *Pipeline) Stem(word string) (string, error) {
	if strings.ContainsAny(word, endMarker+b1bMarker) {
		return "", fmt.Errorf("porterstem: input must not contain reserved marker bytes")
	}

	cur := word + sentinel
	for _, st := range p.stages {
		if !st.filter.MayMatch(cur) {
			continue
		}
		out, err := st.rw.Apply(cur)
		if err != nil {
			return "", err
		}
		cur = out
	}
	return strings.TrimSuffix(cur, sentinel), nil
}
