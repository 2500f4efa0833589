// internal/cli/root.go
package chunkalign

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mwiater/chunkalign/internal/appconfig"
	"github.com/mwiater/chunkalign/internal/logging"
)

var (
	cfgFile       string
	currentConfig *appconfig.Config
	appVersion    = "dev"
	appCommit     = "none"
	appDate       = "unknown"
)

// configKeys lists the viper keys bound to root persistent flags. The flag
// name equals the key except for jsonMode, which is exposed as --json.
var configKeys = map[string]string{
	"debug":           "debug",
	"jsonMode":        "json",
	"logFile":         "logFile",
	"chunksFile":      "chunksFile",
	"sequencesFile":   "sequencesFile",
	"storePath":       "storePath",
	"resultsPath":     "resultsPath",
	"embeddingHost":   "embeddingHost",
	"embeddingModel":  "embeddingModel",
	"structuralHost":  "structuralHost",
	"structuralModel": "structuralModel",
	"structural":      "structural",
	"functional":      "functional",
	"timeout":         "timeout",
	"topPairs":        "topPairs",
	"profile":         "profile",
	"gapOpen":         "gapOpen",
	"gapExtend":       "gapExtend",
	"scoreThreshold":  "scoreThreshold",
	"minScore":        "minScore",
	"minChunks":       "minChunks",
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:          "chunkalign",
	Short:        "chunkalign: local alignment of protein chunk embeddings",
	SilenceUsage: true,
}

// rootPersistentPreRunE is assigned to rootCmd in init to avoid an
// initialization cycle (it reaches rootCmd via ensureConfigLoaded).
func rootPersistentPreRunE(cmd *cobra.Command, args []string) error {
	loaded, err := ensureConfigLoaded()
	if err != nil {
		return err
	}

	var cfg appconfig.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.Profile != "" {
		cfg.ApplyProfile(explicitKey)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if loaded {
		cfg.ConfigPath = cfgFile
	}
	currentConfig = &cfg

	// JSON output owns stdout, so logs go to the file only.
	var console io.Writer = os.Stdout
	if cfg.JSONMode {
		console = nil
	}
	if err := logging.InitWithConsole(cfg.LogFilePath(), console); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if cfg.Debug {
		logging.LogEvent("[CONFIG] file=%q profile=%q params=%+v", cfg.ConfigPath, cfg.Profile, cfg.AlignParams())
	}
	return nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", appVersion, appCommit, appDate)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	_ = logging.Close()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentPreRunE = rootPersistentPreRunE

	d := appconfig.Defaults()
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", appconfig.DefaultConfigPath, "config file (e.g., config/config.json)")

	flags.Bool("debug", false, "enable debug logging")
	flags.Bool("json", false, "print JSON instead of the text summary")
	flags.String("logFile", "", "path to the log file")
	flags.String("chunksFile", "", "chunk JSONL file")
	flags.String("sequencesFile", "", "full-sequence JSONL file")
	flags.String("storePath", "", "SQLite chunk store (overrides the JSONL files)")
	flags.String("resultsPath", "", "bbolt result store")
	flags.String("embeddingHost", "", "embedding host for chunks without embeddings")
	flags.String("embeddingModel", "", "embedding model name")
	flags.String("structuralHost", "", "contact-map host for structural descriptors")
	flags.String("structuralModel", "", "contact-map model name")
	flags.Bool("structural", false, "include structural descriptors")
	flags.Bool("functional", false, "annotate signal peptides and TM helices")
	flags.Int("timeout", d.TimeoutSeconds, "request timeout in seconds")
	flags.Int("topPairs", d.TopPairs, "number of top similarity pairs to report")
	flags.String("profile", "", "alignment parameter profile (default, strict, sensitive)")
	flags.Float64("gapOpen", d.GapOpen, "gap opening penalty")
	flags.Float64("gapExtend", d.GapExtend, "gap extension penalty")
	flags.Float64("scoreThreshold", d.ScoreThreshold, "similarity subtracted from every cell")
	flags.Float64("minScore", d.MinScore, "minimum alignment score")
	flags.Int("minChunks", d.MinChunks, "minimum chunks per alignment")

	for key, name := range configKeys {
		_ = viper.BindPFlag(key, flags.Lookup(name))
	}
	for key, value := range appconfig.DefaultMap() {
		viper.SetDefault(key, value)
	}
}

// ensureConfigLoaded reads and schema-checks the config file. A missing file
// at the default path is not an error.
func ensureConfigLoaded() (bool, error) {
	if cfgFile == "" {
		return false, nil
	}
	data, err := os.ReadFile(cfgFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !rootCmd.PersistentFlags().Changed("config") {
			return false, nil
		}
		return false, fmt.Errorf("failed to load config: %w", err)
	}
	if err := appconfig.ValidateDocument(data); err != nil {
		return false, fmt.Errorf("config file %q: %w", cfgFile, err)
	}
	viper.SetConfigFile(cfgFile)
	viper.SetConfigType("json")
	if err := viper.ReadInConfig(); err != nil {
		return false, fmt.Errorf("failed to load config: %w", err)
	}
	return true, nil
}

// explicitKey reports whether key was set by a flag or the config file.
func explicitKey(key string) bool {
	if name, ok := configKeys[key]; ok {
		if f := rootCmd.PersistentFlags().Lookup(name); f != nil && f.Changed {
			return true
		}
	}
	return viper.InConfig(key)
}

// GetConfig returns the loaded application configuration for other packages.
func GetConfig() *appconfig.Config {
	return currentConfig
}

// SetVersionInfo allows the main package to inject build-time variables.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}
