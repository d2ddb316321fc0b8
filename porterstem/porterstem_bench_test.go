package porterstem

import "testing"

func BenchmarkStem(b *testing.B) {
	p, err := NewPipeline()
	if err != nil {
		b.Fatalf("NewPipeline: %v", err)
	}
	words := []string{"caresses", "ponies", "agreed", "plastered", "motoring", "relational", "conflated", "sensational"}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := p.Stem(words[i%len(words)]); err != nil {
			b.Fatalf("Stem: %v", err)
		}
	}
}

func BenchmarkNewPipeline(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := NewPipeline(); err != nil {
			b.Fatalf("NewPipeline: %v", err)
		}
	}
}
