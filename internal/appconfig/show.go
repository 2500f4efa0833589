package appconfig

import (
	"fmt"
	"io"

	"github.com/k0kubun/pp"
)

// ShowConfig prints the current configuration summary.
func ShowConfig(out io.Writer, file string, cfg Config) {
	if file == "" {
		fmt.Fprintln(out, "No config file loaded (using defaults).")
	} else {
		fmt.Fprintf(out, "Config file: %s\n\n", file)
	}

	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintf(out, "  Debug:           %v\n", cfg.Debug)
	fmt.Fprintf(out, "  JSON Mode:       %v\n", cfg.JSONMode)
	fmt.Fprintf(out, "  Log File:        %s\n", cfg.LogFilePath())
	if cfg.StorePath != "" {
		fmt.Fprintf(out, "  Chunk Store:     %s\n", cfg.StorePath)
	} else {
		fmt.Fprintf(out, "  Chunks File:     %s\n", cfg.ChunksFile)
		fmt.Fprintf(out, "  Sequences File:  %s\n", cfg.SequencesFile)
	}
	fmt.Fprintf(out, "  Results Store:   %s\n", cfg.ResultsFilePath())
	fmt.Fprintf(out, "  Embedding Host:  %s\n", cfg.EmbeddingHost)
	fmt.Fprintf(out, "  Embedding Model: %s\n", cfg.EmbeddingModel)
	fmt.Fprintf(out, "  Request Timeout: %s\n", cfg.RequestTimeout())
	fmt.Fprintf(out, "  Structural:      %v\n", cfg.Structural)
	if cfg.Structural {
		fmt.Fprintf(out, "  Structural Host: %s\n", cfg.StructuralHost)
		fmt.Fprintf(out, "  Structural Model: %s\n", cfg.StructuralModel)
	}
	fmt.Fprintf(out, "  Functional:      %v\n", cfg.Functional)
	if cfg.Profile != "" {
		fmt.Fprintf(out, "  Profile:         %s\n", cfg.Profile)
	}
	fmt.Fprintf(out, "  Gap Open:        %g\n", cfg.GapOpen)
	fmt.Fprintf(out, "  Gap Extend:      %g\n", cfg.GapExtend)
	fmt.Fprintf(out, "  Score Threshold: %g\n", cfg.ScoreThreshold)
	fmt.Fprintf(out, "  Min Score:       %g\n", cfg.MinScore)
	fmt.Fprintf(out, "  Min Chunks:      %d\n", cfg.MinChunks)
	fmt.Fprintf(out, "  Top Pairs:       %d\n", cfg.TopPairs)
}

// DumpConfig pretty-prints the whole Config struct.
func DumpConfig(out io.Writer, cfg Config) error {
	_, err := pp.Fprintln(out, cfg)
	return err
}
