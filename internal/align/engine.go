// Package align implements Smith-Waterman style local alignment over continuous
// similarity matrices, greedy extraction of several disjoint alignments and
// adaptive filtering of the extracted set.
package align

import (
	"github.com/mwiater/chunkalign/internal/similarity"
)

// Traceback codes recorded for every DP cell.
const (
	moveStop       = 0
	moveDiagonal   = 1
	moveVertical   = 2
	moveHorizontal = 3
)

// Default parameter values.
const (
	DefaultGapOpen        = -0.2
	DefaultGapExtend      = -0.1
	DefaultScoreThreshold = 0.5
	DefaultMinScore       = 0.3
	DefaultMinChunks      = 2
)

// Params configures the engine and the extractor.
type Params struct {
	GapOpen        float64 `json:"gap_open"`
	GapExtend      float64 `json:"gap_extend"`
	ScoreThreshold float64 `json:"score_threshold"`
	MinScore       float64 `json:"min_score"`
	MinChunks      int     `json:"min_chunks"`
}

// DefaultParams returns the stock gap, threshold and stopping parameters.
func DefaultParams() Params {
	return Params{
		GapOpen:        DefaultGapOpen,
		GapExtend:      DefaultGapExtend,
		ScoreThreshold: DefaultScoreThreshold,
		MinScore:       DefaultMinScore,
		MinChunks:      DefaultMinChunks,
	}
}

// Pair is one aligned (query chunk, target chunk) index pair.
type Pair struct {
	Query  int `json:"query_chunk_idx"`
	Target int `json:"target_chunk_idx"`
}

// Result is the outcome of a single engine invocation.
type Result struct {
	Score float64
	Pairs []Pair
}

// Table holds the filled DP score and traceback grids, both (N+1)×(M+1).
type Table struct {
	H    [][]float64
	Code [][]uint8
}

// Align computes one optimal local alignment path over s.
func Align(s *similarity.Matrix, p Params) Result {
	res, _ := AlignWithTable(s, p)
	return res
}

// AlignWithTable is Align that also returns the filled DP table.
//
// The diagonal move adds the score-shifted similarity S[i-1][j-1]-threshold.
// Gaps cost GapExtend when the neighbour being extended from was itself reached
// by the same gap move, otherwise GapOpen. Ties resolve in the order stop,
// diagonal, vertical, horizontal, and the first strict maximum in row-major
// fill order is the traceback start.
func AlignWithTable(s *similarity.Matrix, p Params) (Result, Table) {
	n, m := s.Rows(), s.Cols()
	h := make([][]float64, n+1)
	code := make([][]uint8, n+1)
	for i := range h {
		h[i] = make([]float64, m+1)
		code[i] = make([]uint8, m+1)
	}

	maxScore := 0.0
	maxI, maxJ := 0, 0

	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			shifted := s.At(i-1, j-1) - p.ScoreThreshold
			diag := h[i-1][j-1] + shifted

			upPenalty := p.GapOpen
			if code[i-1][j] == moveVertical {
				upPenalty = p.GapExtend
			}
			up := h[i-1][j] + upPenalty

			leftPenalty := p.GapOpen
			if code[i][j-1] == moveHorizontal {
				leftPenalty = p.GapExtend
			}
			left := h[i][j-1] + leftPenalty

			best, move := 0.0, uint8(moveStop)
			if diag > best {
				best, move = diag, moveDiagonal
			}
			if up > best {
				best, move = up, moveVertical
			}
			if left > best {
				best, move = left, moveHorizontal
			}
			h[i][j] = best
			code[i][j] = move

			if best > maxScore {
				maxScore = best
				maxI, maxJ = i, j
			}
		}
	}

	table := Table{H: h, Code: code}
	if maxScore <= 0 {
		return Result{Score: 0}, table
	}
	return Result{Score: maxScore, Pairs: traceback(table, maxI, maxJ)}, table
}

func traceback(t Table, i, j int) []Pair {
	var pairs []Pair
	for i > 0 && j > 0 && t.H[i][j] > 0 {
		switch t.Code[i][j] {
		case moveDiagonal:
			pairs = append(pairs, Pair{Query: i - 1, Target: j - 1})
			i--
			j--
		case moveVertical:
			i--
		case moveHorizontal:
			j--
		default:
			i, j = 0, 0
		}
	}
	for l, r := 0, len(pairs)-1; l < r; l, r = l+1, r-1 {
		pairs[l], pairs[r] = pairs[r], pairs[l]
	}
	return pairs
}
