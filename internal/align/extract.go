package align

import (
	"github.com/mwiater/chunkalign/internal/similarity"
)

// Range is an inclusive chunk index interval.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of indices covered.
func (r Range) Len() int { return r.End - r.Start + 1 }

// Overlaps reports whether r and o share at least one index.
func (r Range) Overlaps(o Range) bool {
	return r.Start <= o.End && o.Start <= r.End
}

// Alignment is one accepted local alignment. Pairs are strictly increasing on
// both axes and the ranges form its bounding rectangle.
type Alignment struct {
	Score         float64 `json:"score"`
	Pairs         []Pair  `json:"pairs"`
	QueryRange    Range   `json:"query_range"`
	TargetRange   Range   `json:"target_range"`
	NumChunks     int     `json:"num_chunks"`
	QuerySpan     int     `json:"query_span"`
	TargetSpan    int     `json:"target_span"`
	AvgSimilarity float64 `json:"avg_similarity"`
	Continuity    float64 `json:"continuity"`
}

// Overlaps reports whether the bounding rectangles of a and b intersect.
func (a Alignment) Overlaps(b Alignment) bool {
	return a.QueryRange.Overlaps(b.QueryRange) && a.TargetRange.Overlaps(b.TargetRange)
}

// Set is an ordered list of alignments in discovery (descending score) order.
type Set []Alignment

// Extract repeatedly aligns a working copy of s, masking the bounding rectangle
// of every accepted alignment, until the best remaining alignment scores below
// MinScore or covers fewer than MinChunks pairs. s itself is never modified and
// average similarity is read from it, not from the masked copy.
func Extract(s *similarity.Matrix, p Params) Set {
	work := s.Clone()
	var out Set
	for {
		res := Align(work, p)
		if len(res.Pairs) == 0 || res.Score < p.MinScore || len(res.Pairs) < p.MinChunks {
			break
		}
		aln := newAlignment(s, res)
		out = append(out, aln)
		work.ZeroRect(aln.QueryRange.Start, aln.QueryRange.End, aln.TargetRange.Start, aln.TargetRange.End)
	}
	return out
}

func newAlignment(s *similarity.Matrix, res Result) Alignment {
	q := Range{Start: res.Pairs[0].Query, End: res.Pairs[0].Query}
	t := Range{Start: res.Pairs[0].Target, End: res.Pairs[0].Target}
	sum := 0.0
	for _, pair := range res.Pairs {
		q.Start = min(q.Start, pair.Query)
		q.End = max(q.End, pair.Query)
		t.Start = min(t.Start, pair.Target)
		t.End = max(t.End, pair.Target)
		sum += s.At(pair.Query, pair.Target)
	}

	n := len(res.Pairs)
	pairs := make([]Pair, n)
	copy(pairs, res.Pairs)

	return Alignment{
		Score:         res.Score,
		Pairs:         pairs,
		QueryRange:    q,
		TargetRange:   t,
		NumChunks:     n,
		QuerySpan:     q.Len(),
		TargetSpan:    t.Len(),
		AvgSimilarity: sum / float64(n),
		Continuity:    float64(n) / float64(max(q.Len(), t.Len())),
	}
}
