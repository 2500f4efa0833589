// Package pipeline runs chunk-level local alignment between two entities,
// from chunk loading through descriptor annotation.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/mwiater/chunkalign/internal/align"
	"github.com/mwiater/chunkalign/internal/annotate"
	"github.com/mwiater/chunkalign/internal/chunks"
	"github.com/mwiater/chunkalign/internal/descriptors"
	"github.com/mwiater/chunkalign/internal/embedding"
	"github.com/mwiater/chunkalign/internal/logging"
	"github.com/mwiater/chunkalign/internal/similarity"
)

// Version is recorded in every report.
const Version = "chunkalign-sw-v1"

// DefaultTopPairs is the number of top similarity cells reported.
const DefaultTopPairs = 10

const totalStages = 7

// Pipeline wires the chunk source, embedder and descriptor provider.
type Pipeline struct {
	Source      chunks.Source
	Embedder    embedding.Embedder
	Descriptors descriptors.Provider
	Params      align.Params
	Structural  bool
	Functional  bool
	TopPairs    int

	now func() time.Time
}

// New returns a Pipeline with default alignment parameters.
func New(src chunks.Source, embedder embedding.Embedder, provider descriptors.Provider) *Pipeline {
	return &Pipeline{
		Source:      src,
		Embedder:    embedder,
		Descriptors: provider,
		Params:      align.DefaultParams(),
		TopPairs:    DefaultTopPairs,
	}
}

type loaded struct {
	entity Entity
	chunks []chunks.Chunk
}

type stageTimer struct {
	step  int
	start time.Time
}

func (s *stageTimer) done(name string) {
	s.step++
	logging.LogStage(s.step, totalStages, name, time.Since(s.start))
	s.start = time.Now()
}

// Run aligns queryID against targetID. Lookup, embedding and matrix errors
// are returned; descriptor failures are absorbed as fallback vectors.
func (p *Pipeline) Run(ctx context.Context, queryID, targetID string) (*Report, error) {
	started := p.clock()
	timer := &stageTimer{start: time.Now()}
	logging.LogEvent("[ALIGN] query=%s target=%s", queryID, targetID)

	query, err := p.loadChunks(ctx, queryID)
	if err != nil {
		return nil, err
	}
	target, err := p.loadChunks(ctx, targetID)
	if err != nil {
		return nil, err
	}
	timer.done(fmt.Sprintf("loaded chunks: query %d, target %d", len(query.chunks), len(target.chunks)))

	if err := p.loadSequence(ctx, query); err != nil {
		return nil, err
	}
	if err := p.loadSequence(ctx, target); err != nil {
		return nil, err
	}
	if p.Functional {
		qa := annotate.Annotate(query.entity.FullSequence)
		ta := annotate.Annotate(target.entity.FullSequence)
		query.entity.Functional = &qa
		target.entity.Functional = &ta
	}
	timer.done(fmt.Sprintf("loaded sequences: query %d aa, target %d aa", query.entity.LengthAA, target.entity.LengthAA))

	if err := p.embed(ctx, query, target); err != nil {
		return nil, err
	}
	timer.done("embeddings ready")

	s, err := similarity.Build(chunks.Embeddings(query.chunks), chunks.Embeddings(target.chunks))
	if err != nil {
		return nil, fmt.Errorf("similarity matrix for %s vs %s: %w", queryID, targetID, err)
	}
	stats := similarity.ComputeStats(s)
	timer.done(fmt.Sprintf("similarity matrix %dx%d, max %.4f, mean %.4f", s.Rows(), s.Cols(), stats.Max, stats.Mean))

	raw := align.Extract(s, p.Params)
	timer.done(fmt.Sprintf("extracted %d raw alignments", len(raw)))

	kept, thresholds, rejections := align.FilterAdaptiveWithReport(raw)
	for _, r := range rejections {
		logging.LogEvent("[FILTER] rejected alignment %d: %v", r.Rank, r.Reasons)
	}
	timer.done(fmt.Sprintf("kept %d alignments", len(kept)))

	details, err := p.describe(ctx, kept, s, query, target)
	if err != nil {
		return nil, err
	}
	timer.done(fmt.Sprintf("described %d alignments", len(details)))

	report := &Report{
		Metadata: Metadata{
			RunID:       uuid.NewString(),
			CreatedAt:   started,
			Version:     Version,
			ElapsedSecs: math.Round(p.clock().Sub(started).Seconds()*1000) / 1000,
		},
		Inputs:          Inputs{Query: query.entity, Target: target.entity},
		Parameters:      p.parameters(query.chunks),
		SimilarityStats: stats,
		TopPairs:        similarity.TopPairs(s, p.topPairs()),
		Summary:         summarize(len(raw), details),
		Thresholds:      thresholds,
		Rejections:      rejections,
		Alignments:      details,
		Legend:          descriptors.Legend,
	}
	logging.LogEvent("[ALIGN] run %s complete: %d alignments", report.ID(), len(details))
	return report, nil
}

// Similarity loads and embeds both entities and reports matrix statistics
// without aligning.
func (p *Pipeline) Similarity(ctx context.Context, queryID, targetID string) (*SimilarityReport, error) {
	query, err := p.loadChunks(ctx, queryID)
	if err != nil {
		return nil, err
	}
	target, err := p.loadChunks(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if err := p.embed(ctx, query, target); err != nil {
		return nil, err
	}
	s, err := similarity.Build(chunks.Embeddings(query.chunks), chunks.Embeddings(target.chunks))
	if err != nil {
		return nil, fmt.Errorf("similarity matrix for %s vs %s: %w", queryID, targetID, err)
	}
	return &SimilarityReport{
		Query:    query.entity,
		Target:   target.entity,
		Stats:    similarity.ComputeStats(s),
		TopPairs: similarity.TopPairs(s, p.topPairs()),
	}, nil
}

func (p *Pipeline) loadChunks(ctx context.Context, id string) (*loaded, error) {
	if p.Source == nil {
		return nil, errors.New("pipeline has no chunk source")
	}
	cs, err := p.Source.Chunks(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load chunks: %w", err)
	}
	return &loaded{entity: Entity{ID: id, NumChunks: len(cs)}, chunks: cs}, nil
}

// loadSequence falls back to assembling the sequence from chunk coordinates
// when the source has no full sequence for the entity.
func (p *Pipeline) loadSequence(ctx context.Context, l *loaded) error {
	seq, err := p.Source.FullSequence(ctx, l.entity.ID)
	switch {
	case errors.Is(err, chunks.ErrNotFound):
		logging.LogEvent("[ALIGN] no full sequence for %s, assembling from chunks", l.entity.ID)
		seq = chunks.Assemble(l.chunks)
		l.entity.Assembled = true
	case err != nil:
		return fmt.Errorf("load sequence: %w", err)
	}
	l.entity.FullSequence = seq
	l.entity.LengthAA = len(seq)
	return nil
}

func (p *Pipeline) embed(ctx context.Context, sides ...*loaded) error {
	for _, l := range sides {
		if _, err := embedding.Fill(ctx, p.Embedder, l.chunks); err != nil {
			return fmt.Errorf("embeddings for %s: %w", l.entity.ID, err)
		}
	}
	return nil
}

func (p *Pipeline) describe(ctx context.Context, set align.Set, s *similarity.Matrix, query, target *loaded) ([]AlignmentDetail, error) {
	provider := p.Descriptors
	if provider == nil {
		provider = descriptors.NewCombined(nil)
	}
	agg := descriptors.NewAggregator(provider, p.Structural)

	details := make([]AlignmentDetail, 0, len(set))
	for i, aln := range set {
		qRes, err := chunks.Region(query.chunks, aln.QueryRange)
		if err != nil {
			return nil, fmt.Errorf("query region of alignment %d: %w", i+1, err)
		}
		tRes, err := chunks.Region(target.chunks, aln.TargetRange)
		if err != nil {
			return nil, fmt.Errorf("target region of alignment %d: %w", i+1, err)
		}

		seqPairs := make([]descriptors.SequencePair, len(aln.Pairs))
		for k, pr := range aln.Pairs {
			seqPairs[k] = descriptors.SequencePair{
				Query:  query.chunks[pr.Query].Sequence,
				Target: target.chunks[pr.Target].Sequence,
			}
		}
		region := agg.DescribeAlignment(ctx, seqPairs)

		pairs := make([]ChunkPair, len(aln.Pairs))
		for k, pr := range aln.Pairs {
			qc, tc := query.chunks[pr.Query], target.chunks[pr.Target]
			pairs[k] = ChunkPair{
				QueryIndex:  pr.Query,
				TargetIndex: pr.Target,
				Similarity:  s.At(pr.Query, pr.Target),
				Query:       ChunkDetail{Sequence: qc.Sequence, Range: [2]int{qc.Start, qc.End}, Descriptors: region.Pairs[k].Query},
				Target:      ChunkDetail{Sequence: tc.Sequence, Range: [2]int{tc.Start, tc.End}, Descriptors: region.Pairs[k].Target},
				Comparison:  region.Pairs[k].Comparison,
			}
		}

		details = append(details, AlignmentDetail{
			Rank:          i + 1,
			Score:         aln.Score,
			NumChunks:     aln.NumChunks,
			AvgSimilarity: aln.AvgSimilarity,
			Continuity:    aln.Continuity,
			QueryRegion: Region{
				Start: qRes.Start, End: qRes.End, LengthAA: qRes.Len(),
				Sequence:       qRes.Slice(query.entity.FullSequence),
				AvgDescriptors: region.QueryMean,
			},
			TargetRegion: Region{
				Start: tRes.Start, End: tRes.End, LengthAA: tRes.Len(),
				Sequence:       tRes.Slice(target.entity.FullSequence),
				AvgDescriptors: region.TargetMean,
			},
			ChunkSpan: ChunkSpan{
				QueryChunks:  [2]int{aln.QueryRange.Start, aln.QueryRange.End},
				TargetChunks: [2]int{aln.TargetRange.Start, aln.TargetRange.End},
				QuerySpan:    aln.QuerySpan,
				TargetSpan:   aln.TargetSpan,
			},
			ChunkPairs: pairs,
			Comparison: region.Comparison,
		})
	}
	return details, nil
}

func summarize(raw int, details []AlignmentDetail) Summary {
	sum := Summary{RawAlignments: raw, FilteredAlignments: len(details)}
	for _, d := range details {
		sum.QueryAAAligned += d.QueryRegion.LengthAA
		sum.TargetAAAligned += d.TargetRegion.LengthAA
	}
	if len(details) > 0 {
		best := details[0]
		sum.BestScore = &best.Score
		sum.BestAvgSimilarity = &best.AvgSimilarity
		sum.BestContinuity = &best.Continuity
	}
	return sum
}

// parameters derives chunk length and stride from the query's first chunks.
func (p *Pipeline) parameters(cs []chunks.Chunk) Parameters {
	params := Parameters{Alignment: p.Params, Structural: p.Structural, Functional: p.Functional}
	if len(cs) > 0 {
		params.ChunkLength = cs[0].Len()
	}
	if len(cs) > 1 {
		params.ChunkStride = cs[1].Start - cs[0].Start
	}
	if params.ChunkLength > 0 && params.ChunkStride > 0 {
		overlap := float64(params.ChunkLength-params.ChunkStride) / float64(params.ChunkLength) * 100
		params.OverlapPercentage = math.Round(overlap*10) / 10
	}
	return params
}

func (p *Pipeline) topPairs() int {
	if p.TopPairs <= 0 {
		return DefaultTopPairs
	}
	return p.TopPairs
}

func (p *Pipeline) clock() time.Time {
	if p.now != nil {
		return p.now()
	}
	return time.Now().UTC()
}
