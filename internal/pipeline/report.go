package pipeline

import (
	"time"

	"github.com/mwiater/chunkalign/internal/align"
	"github.com/mwiater/chunkalign/internal/annotate"
	"github.com/mwiater/chunkalign/internal/descriptors"
	"github.com/mwiater/chunkalign/internal/similarity"
)

// Report is the complete result of one pipeline run.
type Report struct {
	Metadata        Metadata          `json:"metadata"`
	Inputs          Inputs            `json:"input_sequences"`
	Parameters      Parameters        `json:"parameters"`
	SimilarityStats similarity.Stats  `json:"similarity_matrix_stats"`
	TopPairs        []similarity.Pair `json:"top_chunk_pairs"`
	Summary         Summary           `json:"alignment_summary"`
	Thresholds      *align.Thresholds `json:"filter_thresholds"`
	Rejections      []align.Rejection `json:"filter_rejections,omitempty"`
	Alignments      []AlignmentDetail `json:"alignments"`
	Legend          map[string]string `json:"descriptor_legend"`
}

// ID returns the run ID.
func (r *Report) ID() string {
	return r.Metadata.RunID
}

// Metadata identifies a run.
type Metadata struct {
	RunID       string    `json:"run_id"`
	CreatedAt   time.Time `json:"created_at"`
	Version     string    `json:"pipeline_version"`
	ElapsedSecs float64   `json:"elapsed_seconds"`
}

// Inputs describes both entities.
type Inputs struct {
	Query  Entity `json:"query"`
	Target Entity `json:"target"`
}

// Entity describes one aligned input.
type Entity struct {
	ID           string               `json:"entity_id"`
	FullSequence string               `json:"full_sequence"`
	LengthAA     int                  `json:"length_aa"`
	NumChunks    int                  `json:"num_chunks"`
	Assembled    bool                 `json:"assembled_from_chunks,omitempty"`
	Functional   *annotate.Annotation `json:"functional_annotations"`
}

// Parameters records the settings a run used.
type Parameters struct {
	ChunkLength       int          `json:"chunk_length"`
	ChunkStride       int          `json:"chunk_stride"`
	OverlapPercentage float64      `json:"overlap_percentage"`
	Alignment         align.Params `json:"smith_waterman"`
	Structural        bool         `json:"structural_descriptors"`
	Functional        bool         `json:"functional_annotations"`
}

// Summary aggregates the accepted alignments. The best-* fields are nil when
// nothing was accepted.
type Summary struct {
	RawAlignments      int      `json:"raw_alignments_found"`
	FilteredAlignments int      `json:"filtered_alignments"`
	QueryAAAligned     int      `json:"total_query_aa_aligned"`
	TargetAAAligned    int      `json:"total_target_aa_aligned"`
	BestScore          *float64 `json:"best_score"`
	BestAvgSimilarity  *float64 `json:"best_avg_similarity"`
	BestContinuity     *float64 `json:"best_continuity"`
}

// AlignmentDetail is one accepted alignment mapped back onto residues.
type AlignmentDetail struct {
	Rank          int                    `json:"alignment_rank"`
	Score         float64                `json:"smith_waterman_score"`
	NumChunks     int                    `json:"num_chunks_aligned"`
	AvgSimilarity float64                `json:"avg_cosine_similarity"`
	Continuity    float64                `json:"continuity"`
	QueryRegion   Region                 `json:"query_region"`
	TargetRegion  Region                 `json:"target_region"`
	ChunkSpan     ChunkSpan              `json:"chunk_span"`
	ChunkPairs    []ChunkPair            `json:"chunk_pairs"`
	Comparison    descriptors.Comparison `json:"descriptor_comparison"`
}

// Region is the residue range an alignment covers on one side.
type Region struct {
	Start          int                `json:"start"`
	End            int                `json:"end"`
	LengthAA       int                `json:"length_aa"`
	Sequence       string             `json:"sequence"`
	AvgDescriptors descriptors.Vector `json:"avg_descriptors"`
}

// ChunkSpan is the alignment's bounding rectangle in chunk indices.
type ChunkSpan struct {
	QueryChunks  [2]int `json:"query_chunks"`
	TargetChunks [2]int `json:"target_chunks"`
	QuerySpan    int    `json:"query_span"`
	TargetSpan   int    `json:"target_span"`
}

// ChunkPair is one aligned chunk pair with its descriptors.
type ChunkPair struct {
	QueryIndex  int                    `json:"query_chunk_idx"`
	TargetIndex int                    `json:"target_chunk_idx"`
	Similarity  float64                `json:"cosine_similarity"`
	Query       ChunkDetail            `json:"query_chunk"`
	Target      ChunkDetail            `json:"target_chunk"`
	Comparison  descriptors.Comparison `json:"descriptor_comparison"`
}

// ChunkDetail is one chunk's residues and descriptors.
type ChunkDetail struct {
	Sequence    string             `json:"sequence"`
	Range       [2]int             `json:"range"`
	Descriptors descriptors.Vector `json:"descriptors"`
}

// SimilarityReport is the matrix-only view used by the stats command.
type SimilarityReport struct {
	Query    Entity            `json:"query"`
	Target   Entity            `json:"target"`
	Stats    similarity.Stats  `json:"similarity_matrix_stats"`
	TopPairs []similarity.Pair `json:"top_chunk_pairs"`
}
