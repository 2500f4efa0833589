package chunkalign

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/mwiater/chunkalign/internal/appconfig"
	"github.com/mwiater/chunkalign/internal/chunks"
	"github.com/mwiater/chunkalign/internal/descriptors"
	"github.com/mwiater/chunkalign/internal/embedding"
	"github.com/mwiater/chunkalign/internal/pipeline"
)

var errNoChunkSource = errors.New("no chunk source: set storePath or chunksFile")

// openSource prefers the SQLite store over the JSONL files. The returned
// close function is never nil.
func openSource(ctx context.Context, cfg appconfig.Config) (chunks.Source, func() error, error) {
	noop := func() error { return nil }
	if cfg.StorePath != "" {
		store, err := chunks.OpenSQLStore(ctx, cfg.StorePath)
		if err != nil {
			return nil, noop, err
		}
		return store, store.Close, nil
	}
	if cfg.ChunksFile == "" {
		return nil, noop, errNoChunkSource
	}
	src, err := chunks.LoadFiles(cfg.ChunksFile, cfg.SequencesFile)
	if err != nil {
		return nil, noop, err
	}
	return src, noop, nil
}

func newEmbedder(cfg appconfig.Config) embedding.Embedder {
	if cfg.EmbeddingHost == "" {
		return nil
	}
	return embedding.NewHTTPEmbedder(cfg.EmbeddingHost, cfg.EmbeddingModel, cfg.RequestTimeout())
}

func newProvider(cfg appconfig.Config) descriptors.Provider {
	if !cfg.Structural {
		return descriptors.NewCombined(nil)
	}
	structural := descriptors.NewStructural(nil)
	if cfg.StructuralHost != "" {
		structural = descriptors.NewStructural(descriptors.NewHTTPContactPredictor(cfg.StructuralHost, cfg.StructuralModel, cfg.RequestTimeout()))
	}
	return descriptors.NewCombined(structural)
}

func newPipeline(ctx context.Context, cfg appconfig.Config) (*pipeline.Pipeline, func() error, error) {
	src, closeFn, err := openSource(ctx, cfg)
	if err != nil {
		return nil, closeFn, err
	}
	p := pipeline.New(src, newEmbedder(cfg), newProvider(cfg))
	p.Params = cfg.AlignParams()
	p.Structural = cfg.Structural
	p.Functional = cfg.Functional
	p.TopPairs = cfg.TopPairs
	return p, closeFn, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
