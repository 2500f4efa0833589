// Package annotate applies sequence-only functional heuristics to whole
// entities: signal peptides and transmembrane helices.
package annotate

import "strings"

const hydrophobicResidues = "AVILMFWP"

const (
	signalMinLength   = 20
	signalNRegionEnd  = 5
	signalHRegionEnd  = 20
	signalMinHydroFrc = 0.5

	tmWindow    = 20
	tmThreshold = 0.65
	tmLoopSkip  = 5
)

// Annotation summarises the functional heuristics for one sequence.
type Annotation struct {
	Length        int  `json:"length"`
	SignalPeptide bool `json:"signal_peptide"`
	TMHelices     int  `json:"tm_helices"`
}

// Annotate runs every heuristic on seq.
func Annotate(seq string) Annotation {
	return Annotation{
		Length:        len(seq),
		SignalPeptide: SignalPeptide(seq),
		TMHelices:     TMHelices(seq),
	}
}

// SignalPeptide reports a likely N-terminal signal peptide: at least one K or
// R in the first five residues and a mostly hydrophobic core in residues 6-20.
func SignalPeptide(seq string) bool {
	if len(seq) < signalMinLength {
		return false
	}
	upper := strings.ToUpper(seq[:signalHRegionEnd])
	positive := countIn(upper[:signalNRegionEnd], "KR")
	hRegion := upper[signalNRegionEnd:signalHRegionEnd]
	frac := float64(countIn(hRegion, hydrophobicResidues)) / float64(len(hRegion))
	return positive >= 1 && frac >= signalMinHydroFrc
}

// TMHelices counts hydrophobic 20-residue windows. After a hit the scan jumps
// past the helix and a short loop.
func TMHelices(seq string) int {
	upper := strings.ToUpper(seq)
	count := 0
	for i := 0; i < len(upper)-tmWindow; {
		frac := float64(countIn(upper[i:i+tmWindow], hydrophobicResidues)) / tmWindow
		if frac >= tmThreshold {
			count++
			i += tmWindow + tmLoopSkip
			continue
		}
		i++
	}
	return count
}

func countIn(s, set string) int {
	n := 0
	for _, r := range s {
		if strings.ContainsRune(set, r) {
			n++
		}
	}
	return n
}
