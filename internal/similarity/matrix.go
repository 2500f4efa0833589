// Package similarity builds cosine-similarity matrices between two sets of chunk
// embeddings and summarizes them.
package similarity

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrEmptyInput is returned when either embedding collection is empty.
	ErrEmptyInput = errors.New("empty embedding collection")
	// ErrDimensionMismatch is returned when embeddings do not share one dimensionality.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	// ErrNonFinite is returned when an embedding holds NaN or ±Inf.
	ErrNonFinite = errors.New("non-finite embedding component")
)

// Matrix is a dense row-major N×M grid of similarity values. Rows index query
// chunks, columns index target chunks.
type Matrix struct {
	rows int
	cols int
	data []float64
}

// NewMatrix allocates a zeroed rows×cols matrix.
func NewMatrix(rows, cols int) *Matrix {
	if rows < 0 {
		rows = 0
	}
	if cols < 0 {
		cols = 0
	}
	return &Matrix{rows: rows, cols: cols, data: make([]float64, rows*cols)}
}

// FromRows builds a matrix from a rectangular slice of rows.
func FromRows(rows [][]float64) (*Matrix, error) {
	if len(rows) == 0 {
		return NewMatrix(0, 0), nil
	}
	cols := len(rows[0])
	m := NewMatrix(len(rows), cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("row %d has %d columns, want %d", i, len(row), cols)
		}
		copy(m.data[i*cols:(i+1)*cols], row)
	}
	return m, nil
}

// Rows returns the number of rows.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m *Matrix) Cols() int { return m.cols }

// Size returns rows*cols.
func (m *Matrix) Size() int { return len(m.data) }

// At returns the value at (i, j).
func (m *Matrix) At(i, j int) float64 { return m.data[i*m.cols+j] }

// Set stores v at (i, j).
func (m *Matrix) Set(i, j int, v float64) { m.data[i*m.cols+j] = v }

// Clone returns an independent deep copy.
func (m *Matrix) Clone() *Matrix {
	c := &Matrix{rows: m.rows, cols: m.cols, data: make([]float64, len(m.data))}
	copy(c.data, m.data)
	return c
}

// ZeroRect sets every cell inside the inclusive rectangle to zero.
func (m *Matrix) ZeroRect(rowStart, rowEnd, colStart, colEnd int) {
	for i := rowStart; i <= rowEnd; i++ {
		for j := colStart; j <= colEnd; j++ {
			m.data[i*m.cols+j] = 0
		}
	}
}

// Values returns a copy of the matrix contents in row-major order.
func (m *Matrix) Values() []float64 {
	out := make([]float64, len(m.data))
	copy(out, m.data)
	return out
}

// Build L2-normalizes both embedding collections and returns their pairwise
// cosine-similarity matrix. Zero vectors normalize to zero and score 0 against
// everything.
func Build(query, target [][]float64) (*Matrix, error) {
	if len(query) == 0 || len(target) == 0 {
		return nil, fmt.Errorf("build similarity matrix (query=%d, target=%d): %w", len(query), len(target), ErrEmptyInput)
	}
	dim := len(query[0])
	if len(target[0]) != dim {
		return nil, fmt.Errorf("build similarity matrix: query dimension %d, target dimension %d: %w", dim, len(target[0]), ErrDimensionMismatch)
	}
	if dim == 0 {
		return nil, fmt.Errorf("build similarity matrix: zero-length embeddings: %w", ErrEmptyInput)
	}
	qn, err := normalizeAll(query, dim, "query")
	if err != nil {
		return nil, err
	}
	tn, err := normalizeAll(target, dim, "target")
	if err != nil {
		return nil, err
	}

	m := NewMatrix(len(qn), len(tn))
	for i, a := range qn {
		for j, b := range tn {
			m.Set(i, j, clamp(dot(a, b)))
		}
	}
	return m, nil
}

func normalizeAll(vectors [][]float64, dim int, side string) ([][]float64, error) {
	out := make([][]float64, len(vectors))
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("%s embedding %d has dimension %d, want %d: %w", side, i, len(v), dim, ErrDimensionMismatch)
		}
		for k, x := range v {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return nil, fmt.Errorf("%s embedding %d component %d is %v: %w", side, i, k, x, ErrNonFinite)
			}
		}
		out[i] = normalize(v)
	}
	return out, nil
}

func normalize(v []float64) []float64 {
	out := make([]float64, len(v))
	norm := vectorNorm(v)
	if norm == 0 {
		return out
	}
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}

func vectorNorm(v []float64) float64 {
	sum := 0.0
	for _, val := range v {
		sum += val * val
	}
	return math.Sqrt(sum)
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// clamp trims floating point overshoot outside [-1, 1].
func clamp(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
