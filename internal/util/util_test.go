// internal/util/util_test.go
package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "report.json")
	data := []byte(`{"run_id":"abc"}`)

	if err := WriteFile(path, data); err != nil {
		t.Fatalf("WriteFile returned error: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	if string(got) != string(data) {
		t.Fatalf("unexpected file contents: got %q want %q", got, data)
	}
}

func TestTruncateRunes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{name: "no truncation", in: "P12345", max: 10, want: "P12345"},
		{name: "ascii truncation", in: "sp|P69905|HBA_HUMAN", max: 9, want: "sp|P69905…"},
		{name: "multibyte truncation", in: "αβγδε", max: 3, want: "αβγ…"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := TruncateRunes(tt.in, tt.max); got != tt.want {
				t.Fatalf("TruncateRunes(%q,%d)=%q want %q", tt.in, tt.max, got, tt.want)
			}
		})
	}
}

func TestWrapSequence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		in    string
		width int
		want  string
	}{
		{name: "short", in: "MKVL", width: 10, want: "MKVL"},
		{name: "exact", in: "MKVLAA", width: 3, want: "MKV\nLAA"},
		{name: "remainder", in: "MKVLAAG", width: 3, want: "MKV\nLAA\nG"},
		{name: "no width", in: "MKVLAAG", width: 0, want: "MKVLAAG"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := WrapSequence(tt.in, tt.width); got != tt.want {
				t.Fatalf("WrapSequence(%q,%d)=%q want %q", tt.in, tt.width, got, tt.want)
			}
		})
	}
}

func TestIndent(t *testing.T) {
	t.Parallel()
	if got := Indent("ab\ncd\nef", "  "); got != "ab\n  cd\n  ef" {
		t.Fatalf("unexpected indent %q", got)
	}
}
