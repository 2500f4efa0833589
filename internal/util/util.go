// internal/util/util.go
package util

import (
	"os"
	"strings"
	"unicode/utf8"
)

// WriteFile writes data to a file with 0o644 permissions.
func WriteFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}

// TruncateRunes truncates a string to a maximum number of runes,
// appending an ellipsis if truncated.
func TruncateRunes(text string, maxRunes int) string {
	if utf8.RuneCountInString(text) <= maxRunes {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxRunes]) + "…"
}

// WrapSequence breaks a residue string into lines of at most width residues,
// FASTA style.
func WrapSequence(seq string, width int) string {
	if width <= 0 || len(seq) <= width {
		return seq
	}
	var b strings.Builder
	for start := 0; start < len(seq); start += width {
		if start > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(seq[start:min(start+width, len(seq))])
	}
	return b.String()
}

// Indent prefixes every line after the first with pad.
func Indent(text, pad string) string {
	return strings.ReplaceAll(text, "\n", "\n"+pad)
}
