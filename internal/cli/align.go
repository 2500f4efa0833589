package chunkalign

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mwiater/chunkalign/internal/logging"
	"github.com/mwiater/chunkalign/internal/render"
	"github.com/mwiater/chunkalign/internal/results"
	"github.com/mwiater/chunkalign/internal/util"
)

var (
	alignSave   bool
	alignOutput string
)

// alignCmd runs the full pipeline for one query/target pair.
var alignCmd = &cobra.Command{
	Use:   "align <queryID> <targetID>",
	Short: "Find locally similar regions between two entities",
	Long: `Builds the chunk similarity matrix for the two entities, extracts every
non-overlapping local alignment, filters them relative to the best one and
describes each kept region.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := *GetConfig()
		ctx := cmd.Context()
		p, closeSource, err := newPipeline(ctx, cfg)
		defer closeSource()
		if err != nil {
			return err
		}

		report, err := p.Run(ctx, args[0], args[1])
		if err != nil {
			return err
		}

		if alignSave {
			store, err := results.Open(cfg.ResultsFilePath())
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.Save(ctx, report); err != nil {
				return err
			}
		}
		if alignOutput != "" {
			data, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return fmt.Errorf("encode report: %w", err)
			}
			if err := util.WriteFile(alignOutput, data); err != nil {
				return fmt.Errorf("write %s: %w", alignOutput, err)
			}
			logging.LogEvent("[ALIGN] report written to %s", alignOutput)
		}

		if cfg.JSONMode {
			return writeJSON(cmd.OutOrStdout(), report)
		}
		return render.Summary(cmd.OutOrStdout(), report)
	},
}

// statsCmd reports the similarity matrix without aligning.
var statsCmd = &cobra.Command{
	Use:   "stats <queryID> <targetID>",
	Short: "Show similarity matrix statistics and top chunk pairs",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := *GetConfig()
		ctx := cmd.Context()
		p, closeSource, err := newPipeline(ctx, cfg)
		defer closeSource()
		if err != nil {
			return err
		}
		rep, err := p.Similarity(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		if cfg.JSONMode {
			return writeJSON(cmd.OutOrStdout(), rep)
		}
		return render.Similarity(cmd.OutOrStdout(), rep)
	},
}

func init() {
	alignCmd.Flags().BoolVar(&alignSave, "save", false, "persist the report to the result store")
	alignCmd.Flags().StringVarP(&alignOutput, "output", "o", "", "also write the JSON report to this file")
	rootCmd.AddCommand(alignCmd)
	rootCmd.AddCommand(statsCmd)
}
