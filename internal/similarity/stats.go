package similarity

import (
	"math"
	"sort"
)

// maxTopK caps the number of values averaged for MeanTopK.
const maxTopK = 100

// Stats summarizes the distribution of a similarity matrix. It is reported next
// to alignments and never feeds back into the alignment itself.
type Stats struct {
	Shape        [2]int  `json:"matrix_shape"`
	Min          float64 `json:"min_similarity"`
	Max          float64 `json:"max_similarity"`
	Mean         float64 `json:"mean_similarity"`
	Std          float64 `json:"std_similarity"`
	Median       float64 `json:"median_similarity"`
	TopK         int     `json:"top_k"`
	MeanTopK     float64 `json:"mean_top_k"`
	Percentile90 float64 `json:"percentile_90"`
	Percentile95 float64 `json:"percentile_95"`
	Percentile99 float64 `json:"percentile_99"`
}

// ComputeStats returns summary statistics for m. An empty matrix yields zero
// values with its shape filled in.
func ComputeStats(m *Matrix) Stats {
	stats := Stats{Shape: [2]int{m.Rows(), m.Cols()}}
	values := m.Values()
	if len(values) == 0 {
		return stats
	}
	sort.Float64s(values)

	stats.Min = values[0]
	stats.Max = values[len(values)-1]
	stats.Mean = mean(values)
	stats.Std = stddev(values, stats.Mean)
	stats.Median = percentileSorted(values, 50)

	k := maxTopK
	if len(values) < k {
		k = len(values)
	}
	stats.TopK = k
	stats.MeanTopK = mean(values[len(values)-k:])

	stats.Percentile90 = percentileSorted(values, 90)
	stats.Percentile95 = percentileSorted(values, 95)
	stats.Percentile99 = percentileSorted(values, 99)
	return stats
}

// percentileSorted interpolates linearly between closest ranks of an ascending
// slice.
func percentileSorted(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 || p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}
	pos := (p / 100) * float64(len(sorted)-1)
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))
	if lower == upper {
		return sorted[lower]
	}
	weight := pos - float64(lower)
	return sorted[lower] + weight*(sorted[upper]-sorted[lower])
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stddev is the population standard deviation.
func stddev(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		diff := v - mean
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(len(values)))
}

// Pair is one cell of a similarity matrix.
type Pair struct {
	Row   int     `json:"query_chunk_idx"`
	Col   int     `json:"target_chunk_idx"`
	Value float64 `json:"similarity"`
}

// TopPairs returns the n highest cells, ties broken by row then column.
func TopPairs(m *Matrix, n int) []Pair {
	if n <= 0 || m.Size() == 0 {
		return nil
	}
	pairs := make([]Pair, 0, m.Size())
	for i := 0; i < m.Rows(); i++ {
		for j := 0; j < m.Cols(); j++ {
			pairs = append(pairs, Pair{Row: i, Col: j, Value: m.At(i, j)})
		}
	}
	sort.SliceStable(pairs, func(a, b int) bool {
		return pairs[a].Value > pairs[b].Value
	})
	if n > len(pairs) {
		n = len(pairs)
	}
	return pairs[:n]
}
