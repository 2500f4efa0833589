package chunkalign

import (
	"github.com/spf13/cobra"

	"github.com/mwiater/chunkalign/internal/render"
	"github.com/mwiater/chunkalign/internal/results"
)

var resultsLimit int

// resultsCmd groups commands for stored reports.
var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Group commands for stored alignment reports",
}

var resultsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored reports, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := *GetConfig()
		store, err := results.Open(cfg.ResultsFilePath())
		if err != nil {
			return err
		}
		defer store.Close()
		entries, err := store.List(cmd.Context(), resultsLimit)
		if err != nil {
			return err
		}
		if cfg.JSONMode {
			if entries == nil {
				entries = []results.Entry{}
			}
			return writeJSON(cmd.OutOrStdout(), entries)
		}
		return render.Entries(cmd.OutOrStdout(), entries)
	},
}

var resultsGetCmd = &cobra.Command{
	Use:   "get <runID>",
	Short: "Show one stored report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := *GetConfig()
		store, err := results.Open(cfg.ResultsFilePath())
		if err != nil {
			return err
		}
		defer store.Close()
		report, err := store.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if cfg.JSONMode {
			return writeJSON(cmd.OutOrStdout(), report)
		}
		return render.Summary(cmd.OutOrStdout(), report)
	},
}

func init() {
	resultsListCmd.Flags().IntVarP(&resultsLimit, "limit", "n", 20, "maximum number of reports (0 = all)")
	resultsCmd.AddCommand(resultsListCmd)
	resultsCmd.AddCommand(resultsGetCmd)
	rootCmd.AddCommand(resultsCmd)
}
