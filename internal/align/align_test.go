package align

import (
	"math"
	"reflect"
	"testing"

	"github.com/mwiater/chunkalign/internal/similarity"
)

func filled(t *testing.T, rows, cols int, v float64) *similarity.Matrix {
	t.Helper()
	m := similarity.NewMatrix(rows, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			m.Set(i, j, v)
		}
	}
	return m
}

func setBlock(m *similarity.Matrix, r0, r1, c0, c1 int, v float64) {
	for i := r0; i <= r1; i++ {
		for j := c0; j <= c1; j++ {
			m.Set(i, j, v)
		}
	}
}

// twoBlocks has a 0.9 block at rows 0-2/cols 0-2 and a 0.85 block at rows
// 6-8/cols 7-9 over a 0.1 background.
func twoBlocks(t *testing.T) *similarity.Matrix {
	m := filled(t, 10, 10, 0.1)
	setBlock(m, 0, 2, 0, 2, 0.9)
	setBlock(m, 6, 8, 7, 9, 0.85)
	return m
}

func diagonal(t *testing.T, n int) *similarity.Matrix {
	m := filled(t, n, n, 0.1)
	for i := 0; i < n; i++ {
		m.Set(i, i, 0.9)
	}
	return m
}

func TestAlignAllZero(t *testing.T) {
	m := similarity.NewMatrix(4, 3)
	res := Align(m, DefaultParams())
	if res.Score != 0 {
		t.Fatalf("expected score 0, got %f", res.Score)
	}
	if len(res.Pairs) != 0 {
		t.Fatalf("expected empty alignment, got %v", res.Pairs)
	}
}

func TestAlignDiagonal(t *testing.T) {
	res := Align(diagonal(t, 5), DefaultParams())
	if math.Abs(res.Score-2.0) > 1e-9 {
		t.Fatalf("expected score 2.0, got %f", res.Score)
	}
	want := []Pair{{0, 0}, {1, 1}, {2, 2}, {3, 3}, {4, 4}}
	if !reflect.DeepEqual(res.Pairs, want) {
		t.Fatalf("unexpected pairs: %v", res.Pairs)
	}
}

func TestAlignTableProperties(t *testing.T) {
	m := twoBlocks(t)
	m.Set(4, 4, -0.9)
	_, table := AlignWithTable(m, DefaultParams())

	if len(table.H) != m.Rows()+1 || len(table.H[0]) != m.Cols()+1 {
		t.Fatalf("unexpected table shape %dx%d", len(table.H), len(table.H[0]))
	}
	for j := range table.H[0] {
		if table.H[0][j] != 0 || table.Code[0][j] != moveStop {
			t.Fatalf("first row not zero at column %d", j)
		}
	}
	for i := range table.H {
		if table.H[i][0] != 0 || table.Code[i][0] != moveStop {
			t.Fatalf("first column not zero at row %d", i)
		}
		for j := range table.H[i] {
			if table.H[i][j] < 0 {
				t.Fatalf("negative H at (%d,%d): %f", i, j, table.H[i][j])
			}
			if table.H[i][j] == 0 && table.Code[i][j] != moveStop {
				t.Fatalf("zero cell with move %d at (%d,%d)", table.Code[i][j], i, j)
			}
		}
	}
}

func TestAlignDeterministic(t *testing.T) {
	m := twoBlocks(t)
	first := Align(m, DefaultParams())
	for i := 0; i < 5; i++ {
		again := Align(m, DefaultParams())
		if again.Score != first.Score || !reflect.DeepEqual(again.Pairs, first.Pairs) {
			t.Fatalf("run %d differs: %+v vs %+v", i, again, first)
		}
	}
}

func TestAlignPairsStrictlyIncreasing(t *testing.T) {
	m := twoBlocks(t)
	res := Align(m, DefaultParams())
	for i := 1; i < len(res.Pairs); i++ {
		if res.Pairs[i].Query <= res.Pairs[i-1].Query || res.Pairs[i].Target <= res.Pairs[i-1].Target {
			t.Fatalf("pairs not strictly increasing: %v", res.Pairs)
		}
	}
}

func TestAlignGapExtension(t *testing.T) {
	// Two diagonal runs offset by two target columns force a horizontal gap of
	// length two: open (-0.2) then extend (-0.1).
	m := filled(t, 4, 6, 0)
	m.Set(0, 0, 1)
	m.Set(1, 1, 1)
	m.Set(2, 4, 1)
	m.Set(3, 5, 1)
	res := Align(m, DefaultParams())

	want := []Pair{{0, 0}, {1, 1}, {2, 4}, {3, 5}}
	if !reflect.DeepEqual(res.Pairs, want) {
		t.Fatalf("unexpected pairs: %v", res.Pairs)
	}
	if math.Abs(res.Score-1.7) > 1e-9 {
		t.Fatalf("expected score 1.7 (4*0.5 - 0.2 - 0.1), got %f", res.Score)
	}
}

func TestExtractTwoBlocks(t *testing.T) {
	m := twoBlocks(t)
	p := DefaultParams()
	p.GapOpen = -0.4
	p.GapExtend = -0.2

	set := Extract(m, p)
	if len(set) != 2 {
		t.Fatalf("expected 2 alignments, got %d: %+v", len(set), set)
	}

	first, second := set[0], set[1]
	if first.QueryRange != (Range{0, 2}) || first.TargetRange != (Range{0, 2}) {
		t.Fatalf("first alignment escaped its block: %+v", first)
	}
	if second.QueryRange != (Range{6, 8}) || second.TargetRange != (Range{7, 9}) {
		t.Fatalf("second alignment escaped its block: %+v", second)
	}
	if first.Overlaps(second) {
		t.Fatal("alignments overlap")
	}
	if first.Score < second.Score {
		t.Fatalf("expected descending score order: %f < %f", first.Score, second.Score)
	}
	if math.Abs(first.AvgSimilarity-0.9) > 1e-9 || math.Abs(second.AvgSimilarity-0.85) > 1e-9 {
		t.Fatalf("unexpected avg similarities: %f, %f", first.AvgSimilarity, second.AvgSimilarity)
	}
	if first.Continuity != 1 || second.Continuity != 1 {
		t.Fatalf("expected gapless continuity, got %f, %f", first.Continuity, second.Continuity)
	}
	if m.At(0, 0) != 0.9 || m.At(7, 8) != 0.85 {
		t.Fatal("extraction mutated the original matrix")
	}
}

func TestExtractChainsBlocksWithCheapGaps(t *testing.T) {
	// With the default gap costs the bridge between the two blocks costs less
	// than the second block earns, so the greedy pass takes both in one path.
	set := Extract(twoBlocks(t), DefaultParams())
	if len(set) != 1 {
		t.Fatalf("expected a single chained alignment, got %d", len(set))
	}
	aln := set[0]
	if aln.NumChunks != 6 || aln.QueryRange != (Range{0, 8}) || aln.TargetRange != (Range{0, 9}) {
		t.Fatalf("unexpected chained alignment: %+v", aln)
	}
	if math.Abs(aln.Continuity-0.6) > 1e-9 {
		t.Fatalf("expected continuity 6/10, got %f", aln.Continuity)
	}
}

func TestExtractWellSeparatedDefaults(t *testing.T) {
	m := filled(t, 20, 20, 0.1)
	setBlock(m, 0, 2, 0, 2, 0.9)
	setBlock(m, 14, 16, 15, 17, 0.85)
	set := Extract(m, DefaultParams())
	if len(set) != 2 {
		t.Fatalf("expected 2 alignments, got %d", len(set))
	}
	if set[1].QueryRange != (Range{14, 16}) || set[1].TargetRange != (Range{15, 17}) {
		t.Fatalf("unexpected second alignment: %+v", set[1])
	}
}

func TestExtractMinScoreTooHigh(t *testing.T) {
	p := DefaultParams()
	p.MinScore = 5
	set := Extract(twoBlocks(t), p)
	if len(set) != 0 {
		t.Fatalf("expected no alignments, got %d", len(set))
	}
}

func TestExtractMinChunks(t *testing.T) {
	m := filled(t, 5, 5, 0)
	m.Set(2, 2, 1)
	p := DefaultParams()
	if set := Extract(m, p); len(set) != 0 {
		t.Fatalf("expected single-pair alignment rejected by MinChunks, got %+v", set)
	}
	p.MinChunks = 1
	set := Extract(m, p)
	if len(set) != 1 || set[0].NumChunks != 1 {
		t.Fatalf("expected one single-pair alignment, got %+v", set)
	}
}

func TestExtractTerminatesOnMaskedMatrix(t *testing.T) {
	p := DefaultParams()
	p.MinChunks = 0
	p.MinScore = 0
	set := Extract(diagonal(t, 4), p)
	if len(set) != 1 {
		t.Fatalf("expected one alignment before the matrix is exhausted, got %d", len(set))
	}
}

func TestExtractInvariants(t *testing.T) {
	m := filled(t, 30, 30, 0.05)
	setBlock(m, 0, 3, 20, 23, 0.95)
	setBlock(m, 10, 14, 2, 6, 0.8)
	for i := 0; i < 5; i++ {
		m.Set(22+i, 10+i, 0.9)
	}
	p := DefaultParams()
	p.GapOpen = -0.5
	p.GapExtend = -0.3
	set := Extract(m, p)
	if len(set) < 2 {
		t.Fatalf("expected several alignments, got %d", len(set))
	}
	for i, a := range set {
		if a.Continuity <= 0 || a.Continuity > 1 {
			t.Fatalf("alignment %d continuity out of range: %f", i, a.Continuity)
		}
		if math.IsNaN(a.Score) || math.IsInf(a.Score, 0) || math.IsNaN(a.AvgSimilarity) {
			t.Fatalf("alignment %d has non-finite values: %+v", i, a)
		}
		for j := i + 1; j < len(set); j++ {
			if a.Overlaps(set[j]) {
				t.Fatalf("alignments %d and %d overlap", i, j)
			}
		}
	}
}

func TestRangeOverlaps(t *testing.T) {
	if !(Range{0, 2}).Overlaps(Range{2, 4}) {
		t.Fatal("expected touching ranges to overlap")
	}
	if (Range{0, 2}).Overlaps(Range{3, 4}) {
		t.Fatal("expected disjoint ranges not to overlap")
	}
}
