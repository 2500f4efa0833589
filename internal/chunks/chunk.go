// Package chunks loads overlapping sequence chunks and the full sequences they
// were cut from.
package chunks

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/mwiater/chunkalign/internal/align"
)

var (
	// ErrNotFound is returned when an entity has no chunks or no full sequence.
	ErrNotFound = errors.New("entity not found")
	// ErrInvalidChunk is returned for chunks with impossible coordinates.
	ErrInvalidChunk = errors.New("invalid chunk")
)

// Chunk is one fixed-length window of an entity's sequence. Start and End are
// 1-based inclusive residue coordinates.
type Chunk struct {
	EntityID  string    `json:"entity_id"`
	Index     int       `json:"chunk_index"`
	Start     int       `json:"start"`
	End       int       `json:"end"`
	Sequence  string    `json:"sequence"`
	Embedding []float64 `json:"embedding,omitempty"`
}

// Len is the residue length of the chunk.
func (c Chunk) Len() int {
	return c.End - c.Start + 1
}

// Check verifies 1 <= Start <= End and that Sequence fits in [Start, End].
func (c Chunk) Check() error {
	switch {
	case c.Start < 1:
		return fmt.Errorf("%s#%d: start %d before residue 1: %w", c.EntityID, c.Index, c.Start, ErrInvalidChunk)
	case c.End < c.Start:
		return fmt.Errorf("%s#%d: end %d before start %d: %w", c.EntityID, c.Index, c.End, c.Start, ErrInvalidChunk)
	case len(c.Sequence) > c.Len():
		return fmt.Errorf("%s#%d: %d residues in a %d-residue window: %w", c.EntityID, c.Index, len(c.Sequence), c.Len(), ErrInvalidChunk)
	}
	return nil
}

// Source provides chunks and full sequences by entity ID.
type Source interface {
	// Chunks returns the entity's chunks sorted by Index.
	Chunks(ctx context.Context, entityID string) ([]Chunk, error)
	// FullSequence returns the entity's complete residue string.
	FullSequence(ctx context.Context, entityID string) (string, error)
}

// Embeddings returns the embedding vectors of cs in order.
func Embeddings(cs []Chunk) [][]float64 {
	out := make([][]float64, len(cs))
	for i, c := range cs {
		out[i] = c.Embedding
	}
	return out
}

// Residues is an inclusive 1-based residue range.
type Residues struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len is the number of residues covered.
func (r Residues) Len() int {
	return r.End - r.Start + 1
}

// Slice cuts the range out of a full sequence, clamped to its bounds.
func (r Residues) Slice(full string) string {
	start := max(r.Start-1, 0)
	end := min(r.End, len(full))
	if start >= end {
		return ""
	}
	return full[start:end]
}

// Region maps an inclusive chunk index range onto residues: the Start of the
// first chunk through the End of the last.
func Region(cs []Chunk, r align.Range) (Residues, error) {
	if r.Start < 0 || r.End >= len(cs) || r.Start > r.End {
		return Residues{}, fmt.Errorf("chunk range [%d, %d] outside %d chunks", r.Start, r.End, len(cs))
	}
	return Residues{Start: cs[r.Start].Start, End: cs[r.End].End}, nil
}

// Assemble rebuilds a full sequence from overlapping chunks using their
// residue coordinates. Positions no chunk covers are left as 'X'. Chunks that
// fail Check are skipped.
func Assemble(cs []Chunk) string {
	end := 0
	for _, c := range cs {
		if c.Check() == nil {
			end = max(end, c.End)
		}
	}
	if end == 0 {
		return ""
	}
	buf := []byte(strings.Repeat("X", end))
	for _, c := range cs {
		if c.Check() != nil {
			continue
		}
		copy(buf[c.Start-1:c.End], c.Sequence)
	}
	return string(buf)
}

// Validation reports whether an entity exists in a Source.
type Validation struct {
	EntityID  string `json:"entity_id"`
	Exists    bool   `json:"exists"`
	NumChunks int    `json:"num_chunks"`
	Message   string `json:"message,omitempty"`
}

// Validate checks that entityID has chunks in src. Only lookup failures other
// than ErrNotFound are returned as errors.
func Validate(ctx context.Context, src Source, entityID string) (Validation, error) {
	cs, err := src.Chunks(ctx, entityID)
	if errors.Is(err, ErrNotFound) {
		return Validation{EntityID: entityID, Message: err.Error()}, nil
	}
	if err != nil {
		return Validation{}, err
	}
	return Validation{EntityID: entityID, Exists: true, NumChunks: len(cs)}, nil
}

func sortByIndex(cs []Chunk) {
	sort.SliceStable(cs, func(i, j int) bool { return cs[i].Index < cs[j].Index })
}

func notFound(entityID, what string) error {
	return fmt.Errorf("%s for %q: %w", what, entityID, ErrNotFound)
}
