package descriptors

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Residue groups used for the fractional composition descriptors.
const (
	groupAromatic    = "FWY"
	groupAliphatic   = "AVLIM"
	groupHydrophobic = "AVLIMFWP"
	groupPolar       = "STNQCY"
	groupPositive    = "KRH"
	groupNegative    = "DE"
)

// neutralPH is the pH net charge is reported at.
const neutralPH = 7.0

// Composition computes sequence-only biochemical descriptors. It is a pure
// function of the residue string.
type Composition struct{}

// Describe implements Provider.
func (Composition) Describe(_ context.Context, sequence string) (Vector, error) {
	clean := Clean(sequence)
	if len(clean) < minResidues {
		return nil, fmt.Errorf("sequence has %d canonical residues, need at least %d", len(clean), minResidues)
	}
	counts := residueCounts(clean)
	n := float64(len(clean))

	return Vector{
		KeyLength:              float64(len(sequence)),
		KeyAromaticity:         round4(groupCount(counts, groupAromatic) / n),
		KeyAliphaticFraction:   round4(groupCount(counts, groupAliphatic) / n),
		KeyGRAVY:               round4(gravy(clean)),
		KeyHydrophobicFraction: round4(groupCount(counts, groupHydrophobic) / n),
		KeyPolarFraction:       round4(groupCount(counts, groupPolar) / n),
		KeyInstabilityIndex:    round4(instabilityIndex(clean)),
		KeyChargeAtPH7:         round4(chargeAtPH(clean, counts, neutralPH)),
		KeyPositiveFraction:    round4(groupCount(counts, groupPositive) / n),
		KeyNegativeFraction:    round4(groupCount(counts, groupNegative) / n),
		KeyShannonEntropy:      round4(shannonEntropy(counts, len(clean))),
	}, nil
}

func residueCounts(seq string) map[rune]int {
	counts := make(map[rune]int, len(canonicalResidues))
	for _, r := range seq {
		counts[r]++
	}
	return counts
}

func groupCount(counts map[rune]int, group string) float64 {
	total := 0
	for _, r := range group {
		total += counts[r]
	}
	return float64(total)
}

// gravy is the grand average of Kyte-Doolittle hydropathy.
func gravy(seq string) float64 {
	sum := 0.0
	for _, r := range seq {
		sum += kyteDoolittle[r]
	}
	return sum / float64(len(seq))
}

// instabilityIndex follows Guruprasad et al. (1990): 10/L times the sum of the
// dipeptide instability weights.
func instabilityIndex(seq string) float64 {
	sum := 0.0
	for i := 0; i+1 < len(seq); i++ {
		sum += diwv[seq[i]][seq[i+1]]
	}
	return 10 / float64(len(seq)) * sum
}

// chargeAtPH sums Henderson-Hasselbalch partial charges of ionizable side
// chains and both termini. Terminal pKs depend on the terminal residue.
func chargeAtPH(seq string, counts map[rune]int, ph float64) float64 {
	nTerm := pKNTerm
	if pk, ok := pKNTerminal[seq[0]]; ok {
		nTerm = pk
	}
	cTerm := pKCTerm
	if pk, ok := pKCTerminal[seq[len(seq)-1]]; ok {
		cTerm = pk
	}

	positive := 1 / (math.Pow(10, ph-nTerm) + 1)
	for _, g := range pKPositive {
		positive += float64(counts[g.residue]) / (math.Pow(10, ph-g.pK) + 1)
	}
	negative := 1 / (math.Pow(10, cTerm-ph) + 1)
	for _, g := range pKNegative {
		negative += float64(counts[g.residue]) / (math.Pow(10, g.pK-ph) + 1)
	}
	return positive - negative
}

// shannonEntropy is the base-2 entropy of the residue composition.
func shannonEntropy(counts map[rune]int, total int) float64 {
	entropy := 0.0
	for _, r := range canonicalResidues {
		c := counts[r]
		if c == 0 {
			continue
		}
		p := float64(c) / float64(total)
		entropy -= p * math.Log2(p)
	}
	return entropy
}

var kyteDoolittle = map[rune]float64{
	'A': 1.8, 'R': -4.5, 'N': -3.5, 'D': -3.5, 'C': 2.5,
	'Q': -3.5, 'E': -3.5, 'G': -0.4, 'H': -3.2, 'I': 4.5,
	'L': 3.8, 'K': -3.9, 'M': 1.9, 'F': 2.8, 'P': -1.6,
	'S': -0.8, 'T': -0.7, 'W': -0.9, 'Y': -1.3, 'V': 4.2,
}

const (
	pKNTerm = 9.0
	pKCTerm = 2.0
)

type ionizable struct {
	residue rune
	pK      float64
}

var pKPositive = []ionizable{{'K', 10.0}, {'R', 12.0}, {'H', 5.98}}

var pKNegative = []ionizable{{'D', 4.05}, {'E', 4.45}, {'C', 9.0}, {'Y', 10.0}}

var pKNTerminal = map[byte]float64{'A': 7.59, 'M': 7.0, 'S': 6.93, 'P': 8.36, 'T': 6.82, 'V': 7.44, 'E': 7.7}

var pKCTerminal = map[byte]float64{'D': 4.55, 'E': 4.75}

// diwv holds the dipeptide instability weight values, indexed [first][second].
var diwv = parseDIWV(map[byte]string{
	'A': "A1 C44.94 E1 D-7.49 G1 F1 I1 H-7.49 K1 M1 L1 N1 Q1 P20.26 S1 R1 T1 W1 V1 Y1",
	'C': "A1 C1 E1 D20.26 G1 F1 I1 H33.60 K1 M33.60 L20.26 N1 Q-6.54 P20.26 S1 R1 T33.60 W24.68 V-6.54 Y1",
	'E': "A1 C44.94 E33.60 D20.26 G1 F1 I20.26 H-6.54 K1 M1 L1 N1 Q20.26 P20.26 S20.26 R1 T1 W-14.03 V1 Y1",
	'D': "A1 C1 E1 D1 G1 F-6.54 I1 H1 K-7.49 M1 L1 N1 Q1 P1 S20.26 R-6.54 T-14.03 W1 V1 Y1",
	'G': "A-7.49 C1 E-6.54 D1 G13.34 F1 I-7.49 H1 K-7.49 M1 L1 N-7.49 Q1 P1 S1 R1 T-7.49 W13.34 V1 Y-7.49",
	'F': "A1 C1 E1 D13.34 G1 F1 I1 H1 K-14.03 M1 L1 N1 Q1 P20.26 S1 R1 T1 W1 V1 Y33.601",
	'I': "A1 C1 E44.94 D1 G1 F1 I1 H13.34 K-7.49 M1 L20.26 N1 Q1 P-1.88 S1 R1 T1 W1 V-7.49 Y1",
	'H': "A1 C1 E1 D1 G-9.37 F-9.37 I44.94 H1 K24.68 M1 L1 N24.68 Q1 P-1.88 S1 R1 T-6.54 W-1.88 V1 Y44.94",
	'K': "A1 C1 E1 D1 G-7.49 F1 I-7.49 H1 K1 M33.60 L-7.49 N1 Q24.64 P-6.54 S1 R33.60 T1 W1 V-7.49 Y1",
	'M': "A13.34 C1 E1 D1 G1 F1 I1 H58.28 K1 M-1.88 L1 N1 Q-6.54 P44.94 S44.94 R-6.54 T-1.88 W1 V1 Y24.68",
	'L': "A1 C1 E1 D1 G1 F1 I1 H1 K-7.49 M1 L1 N1 Q33.60 P20.26 S1 R20.26 T1 W24.68 V1 Y1",
	'N': "A1 C-1.88 E1 D1 G-14.03 F-14.03 I44.94 H1 K24.68 M1 L1 N1 Q-6.54 P-1.88 S1 R1 T-7.49 W-9.37 V1 Y1",
	'Q': "A1 C-6.54 E20.26 D20.26 G1 F-6.54 I1 H1 K1 M1 L1 N1 Q20.26 P20.26 S44.94 R1 T1 W1 V-6.54 Y-6.54",
	'P': "A20.26 C-6.54 E18.38 D-6.54 G1 F20.26 I1 H1 K1 M-6.54 L1 N1 Q20.26 P20.26 S20.26 R-6.54 T1 W-1.88 V20.26 Y1",
	'S': "A1 C33.60 E20.26 D1 G1 F1 I1 H1 K1 M1 L1 N1 Q20.26 P44.94 S20.26 R20.26 T1 W1 V1 Y1",
	'R': "A1 C1 E1 D1 G-7.49 F1 I1 H20.26 K1 M1 L1 N13.34 Q20.26 P20.26 S44.94 R58.28 T1 W58.28 V1 Y-6.54",
	'T': "A1 C1 E20.26 D1 G-7.49 F13.34 I1 H1 K1 M1 L1 N-14.03 Q-6.54 P1 S1 R1 T1 W-14.03 V1 Y1",
	'W': "A-14.03 C1 E1 D1 G-9.37 F1 I1 H24.68 K1 M24.68 L13.34 N13.34 Q1 P1 S1 R1 T-14.03 W1 V-7.49 Y1",
	'V': "A1 C1 E1 D-14.03 G-7.49 F1 I1 H1 K-1.88 M1 L1 N1 Q1 P20.26 S1 R1 T-7.49 W1 V1 Y-6.54",
	'Y': "A24.68 C1 E-6.54 D24.68 G-7.49 F1 I1 H13.34 K1 M44.94 L1 N1 Q1 P13.34 S1 R-15.91 T-7.49 W-9.37 V1 Y13.34",
})

func parseDIWV(rows map[byte]string) map[byte]map[byte]float64 {
	out := make(map[byte]map[byte]float64, len(rows))
	for first, row := range rows {
		weights := make(map[byte]float64, len(canonicalResidues))
		for _, field := range strings.Fields(row) {
			w, err := strconv.ParseFloat(field[1:], 64)
			if err != nil {
				panic(fmt.Sprintf("diwv %c%s: %v", first, field, err))
			}
			weights[field[0]] = w
		}
		out[first] = weights
	}
	return out
}
