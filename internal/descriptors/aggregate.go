package descriptors

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Similarity thresholds on absolute descriptor differences.
const (
	BiochemicalThreshold = 0.15
	StructuralThreshold  = 0.20
)

// Comparison holds per-descriptor absolute differences and similarity flags.
type Comparison struct {
	Diff    map[string]float64 `json:"diff"`
	Similar map[string]bool    `json:"similar"`
}

// MarshalJSON flattens a Comparison into <key>_diff / <key>_similar fields.
func (c Comparison) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(c.Diff)*2)
	for k, v := range c.Diff {
		flat[k+"_diff"] = v
	}
	for k, v := range c.Similar {
		flat[k+"_similar"] = v
	}
	return json.Marshal(flat)
}

// UnmarshalJSON reverses MarshalJSON.
func (c *Comparison) UnmarshalJSON(data []byte) error {
	var flat map[string]json.RawMessage
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	c.Diff = map[string]float64{}
	c.Similar = map[string]bool{}
	for k, raw := range flat {
		switch {
		case strings.HasSuffix(k, "_diff"):
			var v float64
			if err := json.Unmarshal(raw, &v); err != nil {
				return fmt.Errorf("%s: %w", k, err)
			}
			c.Diff[strings.TrimSuffix(k, "_diff")] = v
		case strings.HasSuffix(k, "_similar"):
			var v bool
			if err := json.Unmarshal(raw, &v); err != nil {
				return fmt.Errorf("%s: %w", k, err)
			}
			c.Similar[strings.TrimSuffix(k, "_similar")] = v
		}
	}
	return nil
}

// Compare reports, for every biochemical and structural key present in both
// vectors, the rounded absolute difference and whether it falls under the
// key's threshold.
func Compare(a, b Vector) Comparison {
	c := Comparison{Diff: map[string]float64{}, Similar: map[string]bool{}}
	keys := append(append([]string{}, BiochemicalKeys...), StructuralKeys...)
	for _, k := range keys {
		av, okA := a[k]
		bv, okB := b[k]
		if !okA || !okB {
			continue
		}
		diff := av - bv
		if diff < 0 {
			diff = -diff
		}
		threshold := BiochemicalThreshold
		if isStructural(k) {
			threshold = StructuralThreshold
		}
		c.Diff[k] = round4(diff)
		c.Similar[k] = diff < threshold
	}
	return c
}

// Aggregate averages every key of the first vector across vectors, skipping the
// length key. Keys missing from a later vector count as zero.
func Aggregate(vectors []Vector) Vector {
	out := Vector{}
	if len(vectors) == 0 {
		return out
	}
	for k := range vectors[0] {
		if k == KeyLength {
			continue
		}
		sum := 0.0
		for _, v := range vectors {
			sum += v[k]
		}
		out[k] = round4(sum / float64(len(vectors)))
	}
	return out
}

// SequencePair is the residue text of one aligned chunk pair.
type SequencePair struct {
	Query  string
	Target string
}

// PairDescriptors are the descriptors of one aligned chunk pair.
type PairDescriptors struct {
	Query      Vector
	Target     Vector
	Comparison Comparison
}

// RegionDescriptors are the per-pair descriptors of an aligned region and the
// per-side means across all its pairs.
type RegionDescriptors struct {
	Pairs      []PairDescriptors
	QueryMean  Vector
	TargetMean Vector
	Comparison Comparison
}

// Aggregator describes aligned regions with a Safe provider.
type Aggregator struct {
	provider *Safe
}

// NewAggregator returns an Aggregator using p. Failures of p never surface;
// they are replaced by fallback vectors.
func NewAggregator(p Provider, includeStructural bool) *Aggregator {
	return &Aggregator{provider: NewSafe(p, includeStructural)}
}

// DescribeAlignment computes descriptors for each pair, one provider call per
// chunk per pair, and averages them per side.
func (a *Aggregator) DescribeAlignment(ctx context.Context, pairs []SequencePair) RegionDescriptors {
	out := RegionDescriptors{Pairs: make([]PairDescriptors, 0, len(pairs))}
	queries := make([]Vector, 0, len(pairs))
	targets := make([]Vector, 0, len(pairs))
	for _, p := range pairs {
		q := a.provider.Describe(ctx, p.Query)
		t := a.provider.Describe(ctx, p.Target)
		out.Pairs = append(out.Pairs, PairDescriptors{Query: q, Target: t, Comparison: Compare(q, t)})
		queries = append(queries, q)
		targets = append(targets, t)
	}
	out.QueryMean = Aggregate(queries)
	out.TargetMean = Aggregate(targets)
	out.Comparison = Compare(out.QueryMean, out.TargetMean)
	return out
}

// Legend describes every descriptor key for reports.
var Legend = map[string]string{
	KeyLength:                 "Sequence length in amino acids",
	KeyAromaticity:            "Fraction of aromatic residues (F, W, Y)",
	KeyAliphaticFraction:      "Fraction of aliphatic residues (A, V, L, I, M)",
	KeyGRAVY:                  "Grand average of hydropathy (Kyte-Doolittle), negative is hydrophilic",
	KeyHydrophobicFraction:    "Fraction of hydrophobic residues (A, V, L, I, M, F, W, P)",
	KeyPolarFraction:          "Fraction of polar residues (S, T, N, Q, C, Y)",
	KeyInstabilityIndex:       "Instability index, below 40 is predicted stable",
	KeyChargeAtPH7:            "Net charge at pH 7",
	KeyPositiveFraction:       "Fraction of positively charged residues (K, R, H)",
	KeyNegativeFraction:       "Fraction of negatively charged residues (D, E)",
	KeyShannonEntropy:         "Shannon entropy of residue composition in bits",
	KeyHelixFraction:          "Predicted alpha-helix fraction (0-1)",
	KeySheetFraction:          "Predicted beta-sheet fraction (0-1)",
	KeyDisorderFraction:       "Predicted intrinsically disordered fraction (0-1)",
	KeySurfaceExposedFraction: "Predicted solvent-accessible fraction (0-1)",
}

// String renders a short summary of similar flags, e.g. "9/14 similar".
func (c Comparison) String() string {
	similar := 0
	for _, ok := range c.Similar {
		if ok {
			similar++
		}
	}
	return fmt.Sprintf("%d/%d similar", similar, len(c.Similar))
}
