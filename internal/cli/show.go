// internal/cli/show.go
package chunkalign

import (
	"github.com/spf13/cobra"

	"github.com/mwiater/chunkalign/internal/appconfig"
)

var showDump bool

// showCmd represents the 'show' command group for displaying resources.
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Group commands for displaying resources",
	Long:  `The 'show' command groups subcommands that display resources or information related to chunkalign.`,
}

var showConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show config settings",
	Long:  `Show config settings ensuring that the JSON configs are loaded properly and overridden by flags accordingly.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := *GetConfig()
		if showDump {
			return appconfig.DumpConfig(cmd.OutOrStdout(), cfg)
		}
		appconfig.ShowConfig(cmd.OutOrStdout(), cfg.ConfigPath, cfg)
		return nil
	},
}

func init() {
	showConfigCmd.Flags().BoolVar(&showDump, "dump", false, "pretty-print the full config struct")
	showCmd.AddCommand(showConfigCmd)
	rootCmd.AddCommand(showCmd)
}
