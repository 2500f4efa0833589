// Package descriptors computes per-chunk biochemical and structural descriptor
// vectors, compares them and aggregates them over aligned regions.
package descriptors

import (
	"math"
	"strings"
)

// Descriptor keys.
const (
	KeyLength              = "length"
	KeyAromaticity         = "aromaticity"
	KeyAliphaticFraction   = "aliphatic_fraction"
	KeyGRAVY               = "GRAVY"
	KeyHydrophobicFraction = "hydrophobic_fraction"
	KeyPolarFraction       = "polar_fraction"
	KeyInstabilityIndex    = "instability_index"
	KeyChargeAtPH7         = "charge_at_pH7"
	KeyPositiveFraction    = "positive_fraction"
	KeyNegativeFraction    = "negative_fraction"
	KeyShannonEntropy      = "shannon_entropy"

	KeyHelixFraction          = "helix_fraction"
	KeySheetFraction          = "sheet_fraction"
	KeyDisorderFraction       = "disorder_fraction"
	KeySurfaceExposedFraction = "surface_exposed_fraction"
)

// BiochemicalKeys lists the composition-derived descriptors in report order.
var BiochemicalKeys = []string{
	KeyAromaticity,
	KeyAliphaticFraction,
	KeyGRAVY,
	KeyHydrophobicFraction,
	KeyPolarFraction,
	KeyInstabilityIndex,
	KeyChargeAtPH7,
	KeyPositiveFraction,
	KeyNegativeFraction,
	KeyShannonEntropy,
}

// StructuralKeys lists the structure-derived descriptors in report order.
var StructuralKeys = []string{
	KeyHelixFraction,
	KeySheetFraction,
	KeyDisorderFraction,
	KeySurfaceExposedFraction,
}

// neutralSurfaceExposure is the fallback surface-exposed fraction.
const neutralSurfaceExposure = 0.5

// canonicalResidues is the 20-letter amino acid alphabet.
const canonicalResidues = "ACDEFGHIKLMNPQRSTVWY"

// minResidues is the shortest cleaned sequence descriptors are computed for.
const minResidues = 2

// Vector maps descriptor keys to values.
type Vector map[string]float64

// Clone returns an independent copy of v.
func (v Vector) Clone() Vector {
	out := make(Vector, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Merge copies every entry of o into v.
func (v Vector) Merge(o Vector) {
	for k, val := range o {
		v[k] = val
	}
}

// BiochemicalFallback is the vector substituted for sequences that cannot be
// described: every biochemical value is zero.
func BiochemicalFallback(length int) Vector {
	v := Vector{KeyLength: float64(length)}
	for _, k := range BiochemicalKeys {
		v[k] = 0
	}
	return v
}

// StructuralFallback is the structural fallback: zero fractions and a neutral
// 0.5 surface exposure.
func StructuralFallback() Vector {
	return Vector{
		KeyHelixFraction:          0,
		KeySheetFraction:          0,
		KeyDisorderFraction:       0,
		KeySurfaceExposedFraction: neutralSurfaceExposure,
	}
}

// Fallback returns the full fallback vector, with structural keys when
// includeStructural is set.
func Fallback(length int, includeStructural bool) Vector {
	v := BiochemicalFallback(length)
	if includeStructural {
		v.Merge(StructuralFallback())
	}
	return v
}

// Clean upper-cases seq and drops every residue outside the canonical alphabet.
func Clean(seq string) string {
	var b strings.Builder
	b.Grow(len(seq))
	for _, r := range strings.ToUpper(seq) {
		if strings.ContainsRune(canonicalResidues, r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isStructural(key string) bool {
	for _, k := range StructuralKeys {
		if k == key {
			return true
		}
	}
	return false
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
