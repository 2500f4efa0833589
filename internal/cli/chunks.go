package chunkalign

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mwiater/chunkalign/internal/chunks"
)

// chunksCmd groups chunk source maintenance commands.
var chunksCmd = &cobra.Command{
	Use:   "chunks",
	Short: "Group commands for the chunk source",
}

var chunksImportCmd = &cobra.Command{
	Use:   "import [chunks.jsonl] [sequences.jsonl]",
	Short: "Load JSONL chunks and sequences into the SQLite store",
	Long: `Reads chunk and sequence JSONL files (arguments, or chunksFile and
sequencesFile from the config) and writes them into the SQLite store at
storePath, replacing rows with the same keys.`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := *GetConfig()
		if cfg.StorePath == "" {
			return errors.New("chunks import needs storePath")
		}
		chunksPath, sequencesPath := cfg.ChunksFile, cfg.SequencesFile
		if len(args) > 0 {
			chunksPath, sequencesPath = args[0], ""
		}
		if len(args) > 1 {
			sequencesPath = args[1]
		}
		if chunksPath == "" {
			return errNoChunkSource
		}

		src, err := chunks.LoadFiles(chunksPath, sequencesPath)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		store, err := chunks.OpenSQLStore(ctx, cfg.StorePath)
		if err != nil {
			return err
		}
		defer store.Close()
		stats, err := store.Import(ctx, src)
		if err != nil {
			return err
		}
		if cfg.JSONMode {
			return writeJSON(cmd.OutOrStdout(), stats)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d chunks for %d entities (%d sequences) into %s\n",
			stats.Chunks, stats.Entities, stats.Sequences, cfg.StorePath)
		return nil
	},
}

var chunksValidateCmd = &cobra.Command{
	Use:   "validate <entityID>...",
	Short: "Check that entities have chunks in the configured source",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := *GetConfig()
		ctx := cmd.Context()
		src, closeSource, err := openSource(ctx, cfg)
		defer closeSource()
		if err != nil {
			return err
		}

		var checks []chunks.Validation
		missing := 0
		for _, id := range args {
			v, err := chunks.Validate(ctx, src, id)
			if err != nil {
				return err
			}
			if !v.Exists {
				missing++
			}
			checks = append(checks, v)
		}

		if cfg.JSONMode {
			if err := writeJSON(cmd.OutOrStdout(), checks); err != nil {
				return err
			}
		} else {
			for _, v := range checks {
				if v.Exists {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d chunks)\n", v.EntityID, v.NumChunks)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: missing (%s)\n", v.EntityID, v.Message)
				}
			}
		}
		if missing > 0 {
			return fmt.Errorf("%d of %d entities not found: %w", missing, len(args), chunks.ErrNotFound)
		}
		return nil
	},
}

func init() {
	chunksCmd.AddCommand(chunksImportCmd)
	chunksCmd.AddCommand(chunksValidateCmd)
	rootCmd.AddCommand(chunksCmd)
}
