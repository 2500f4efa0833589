package annotate

import (
	"strings"
	"testing"
)

func TestSignalPeptide(t *testing.T) {
	cases := []struct {
		name string
		seq  string
		want bool
	}{
		{"too short", "MKLLVLAVLA", false},
		{"classic", "MKKLLLAVLAVLALLAGSQA" + "DEDEDE", true},
		{"no positive n-region", "MAAAALLLAVLAVLALLAGSQA", false},
		{"polar core", "MKAAASTSTNQNQSTSTNQSTQ", false},
		{"lower case", strings.ToLower("MKKLLLAVLAVLALLAGSQA"), true},
	}
	for _, tc := range cases {
		if got := SignalPeptide(tc.seq); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestTMHelices(t *testing.T) {
	helix := strings.Repeat("L", 20)
	loop := strings.Repeat("D", 10)

	if got := TMHelices(strings.Repeat("D", 60)); got != 0 {
		t.Fatalf("expected no helices, got %d", got)
	}
	if got := TMHelices(loop + helix + loop + helix + loop); got != 2 {
		t.Fatalf("expected 2 helices, got %d", got)
	}
	// A window must fit strictly before the end of the sequence.
	if got := TMHelices(helix); got != 0 {
		t.Fatalf("expected exact-length window to be skipped, got %d", got)
	}
}

func TestAnnotate(t *testing.T) {
	seq := "MKKLLLAVLAVLALLAGSQA" + strings.Repeat("D", 10)
	a := Annotate(seq)
	if a.Length != len(seq) || !a.SignalPeptide {
		t.Fatalf("unexpected annotation %+v", a)
	}
}
