package prefilter

import "testing"

func TestBuildEmptyLiteralsAlwaysMayMatch(t *testing.T) {
	f, err := Build(nil)
	if err != nil {
		t.Fatalf("Build(nil): %v", err)
	}
	if !f.MayMatch("anything") {
		t.Error("a Filter with no literals must never rule out a match")
	}
	if !f.MayMatch("") {
		t.Error("a Filter with no literals must never rule out a match, even for empty text")
	}
}

func TestMayMatchFindsLiteral(t *testing.T) {
	f, err := Build([]string{"foo", "bar"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !f.MayMatch("xxfooxx") {
		t.Error("MayMatch should be true when a literal is present")
	}
	if !f.MayMatch("xxbarxx") {
		t.Error("MayMatch should be true when the other literal is present")
	}
	if f.MayMatch("xxbazxx") {
		t.Error("MayMatch should be false when no literal is present")
	}
}

func TestMayMatchNilFilter(t *testing.T) {
	var f *Filter
	if !f.MayMatch("anything") {
		t.Error("a nil *Filter must behave as unconditionally possible, never a hard no")
	}
}

func TestFastPathAvailableDoesNotPanic(t *testing.T) {
	// Purely informational; just confirm it runs on this platform's GOARCH.
	_ = FastPathAvailable()
}
