package align

import "fmt"

// Adaptive filter ratios, all relative to the best alignment of a set.
const (
	similarityRatio    = 0.90
	continuityRatio    = 0.6
	continuityFloor    = 0.5
	relativeScoreRatio = 0.20
)

// Thresholds are the cut-offs derived from the best alignment.
type Thresholds struct {
	BestScore         float64 `json:"best_score"`
	BestAvgSimilarity float64 `json:"best_avg_similarity"`
	BestContinuity    float64 `json:"best_continuity"`
	MinAvgSimilarity  float64 `json:"min_avg_similarity"`
	MinContinuity     float64 `json:"min_continuity"`
	MinRelativeScore  float64 `json:"min_relative_score"`
}

// Rejection records why an alignment was dropped by the filter.
type Rejection struct {
	Rank    int      `json:"rank"`
	Reasons []string `json:"reasons"`
}

// DeriveThresholds computes the adaptive thresholds for best.
func DeriveThresholds(best Alignment) Thresholds {
	return Thresholds{
		BestScore:         best.Score,
		BestAvgSimilarity: best.AvgSimilarity,
		BestContinuity:    best.Continuity,
		MinAvgSimilarity:  best.AvgSimilarity * similarityRatio,
		MinContinuity:     max(continuityFloor, best.Continuity*continuityRatio),
		MinRelativeScore:  best.Score * relativeScoreRatio,
	}
}

// FilterAdaptive keeps the alignments whose similarity, continuity and score
// are close enough to the first (best) alignment of set.
func FilterAdaptive(set Set) Set {
	kept, _, _ := FilterAdaptiveWithReport(set)
	return kept
}

// FilterAdaptiveWithReport is FilterAdaptive that also returns the thresholds
// used and the reasons each dropped alignment failed. The thresholds are nil
// for an empty set.
func FilterAdaptiveWithReport(set Set) (Set, *Thresholds, []Rejection) {
	if len(set) == 0 {
		return Set{}, nil, nil
	}
	th := DeriveThresholds(set[0])

	kept := make(Set, 0, len(set))
	var rejected []Rejection
	for i, aln := range set {
		var reasons []string
		if aln.AvgSimilarity < th.MinAvgSimilarity {
			reasons = append(reasons, fmt.Sprintf("sim %.3f", aln.AvgSimilarity))
		}
		if aln.Continuity < th.MinContinuity {
			reasons = append(reasons, fmt.Sprintf("cont %.3f", aln.Continuity))
		}
		if aln.Score < th.MinRelativeScore {
			reasons = append(reasons, fmt.Sprintf("score %.3f", aln.Score))
		}
		// The best alignment defines the thresholds; a best continuity below the
		// 0.5 floor must not evict it.
		if i == 0 || len(reasons) == 0 {
			kept = append(kept, aln)
			continue
		}
		rejected = append(rejected, Rejection{Rank: i + 1, Reasons: reasons})
	}
	return kept, &th, rejected
}
