// internal/cli/root_test.go
package chunkalign

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mwiater/chunkalign/internal/appconfig"
	"github.com/mwiater/chunkalign/internal/logging"
)

// resetFlags restores every flag in the command tree to its default so
// tests do not leak values into each other.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// useConfig points the root command at path for the duration of the test.
func useConfig(t *testing.T, path string) {
	t.Helper()
	resetFlags(rootCmd)
	prev := cfgFile
	cfgFile = path
	t.Cleanup(func() {
		cfgFile = prev
		currentConfig = nil
		resetFlags(rootCmd)
	})
	t.Cleanup(func() { _ = logging.Close() })
}

// TestRootCmd verifies running the root command with an invalid subcommand reports an error.
func TestRootCmd(t *testing.T) {
	b := new(bytes.Buffer)
	rootCmd.SetOut(b)
	rootCmd.SetErr(b)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	rootCmd.SetArgs([]string{"nonexistent"})
	_, err := rootCmd.ExecuteC()

	if err == nil {
		t.Error("Expected an error for a nonexistent command, but got none")
	}

	expected := "unknown command \"nonexistent\" for \"chunkalign\""
	if !strings.Contains(b.String(), expected) {
		t.Errorf("Expected output to contain '%s', but got '%s'", expected, b.String())
	}
}

func TestPersistentPreRunEMergesProfileConfigAndFlags(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "chunkalign.log")
	useConfig(t, writeTempConfig(t, `{"profile": "strict", "minChunks": 2, "embeddingModel": "protein-embed"}`))

	_ = rootCmd.PersistentFlags().Set("gapOpen", "-0.3")
	_ = rootCmd.PersistentFlags().Set("json", "true")
	_ = rootCmd.PersistentFlags().Set("logFile", logPath)

	if err := rootCmd.PersistentPreRunE(rootCmd, []string{}); err != nil {
		t.Fatalf("PersistentPreRunE error: %v", err)
	}

	cfg := GetConfig()
	if cfg == nil || cfg.ConfigPath != cfgFile {
		t.Fatalf("expected config loaded with path %s, got %+v", cfgFile, cfg)
	}
	if !cfg.JSONMode || cfg.LogFile != logPath || cfg.EmbeddingModel != "protein-embed" {
		t.Fatalf("expected flag and file values in config: %+v", cfg)
	}
	// flag > config file > profile > defaults
	if cfg.GapOpen != -0.3 {
		t.Fatalf("expected flag gapOpen -0.3, got %g", cfg.GapOpen)
	}
	if cfg.MinChunks != 2 {
		t.Fatalf("expected config minChunks 2, got %d", cfg.MinChunks)
	}
	if cfg.GapExtend != -0.2 || cfg.ScoreThreshold != 0.6 || cfg.MinScore != 0.5 {
		t.Fatalf("expected strict profile values, got %+v", cfg.AlignParams())
	}
	if cfg.TopPairs != 10 || cfg.TimeoutSeconds != 120 {
		t.Fatalf("expected defaults for unset keys, got %+v", cfg)
	}
}

func TestPersistentPreRunEInvalidConfig(t *testing.T) {
	useConfig(t, writeTempConfig(t, `{"gapOpen": 0.4}`))
	err := rootCmd.PersistentPreRunE(rootCmd, []string{})
	if !errors.Is(err, appconfig.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}

	useConfig(t, writeTempConfig(t, `{}`))
	_ = rootCmd.PersistentFlags().Set("minChunks", "0")
	err = rootCmd.PersistentPreRunE(rootCmd, []string{})
	if !errors.Is(err, appconfig.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for flag value, got %v", err)
	}
}

func TestPersistentPreRunEMissingDefaultConfig(t *testing.T) {
	useConfig(t, filepath.Join(t.TempDir(), "absent.json"))
	_ = rootCmd.PersistentFlags().Set("json", "true")
	if err := rootCmd.PersistentPreRunE(rootCmd, []string{}); err != nil {
		t.Fatalf("missing config at the default path should fall back to defaults: %v", err)
	}
	if GetConfig().ConfigPath != "" {
		t.Fatalf("expected no config path, got %q", GetConfig().ConfigPath)
	}

	_ = rootCmd.PersistentFlags().Set("config", filepath.Join(t.TempDir(), "absent.json"))
	if err := rootCmd.PersistentPreRunE(rootCmd, []string{}); err == nil {
		t.Fatal("expected error for an explicitly named missing config")
	}
}

func TestSetVersionInfo(t *testing.T) {
	prev := []string{appVersion, appCommit, appDate}
	t.Cleanup(func() { SetVersionInfo(prev[0], prev[1], prev[2]) })

	SetVersionInfo("1.2.3", "abc123", "2026-01-01")
	if appVersion != "1.2.3" || appCommit != "abc123" || appDate != "2026-01-01" {
		t.Fatalf("unexpected version info %s %s %s", appVersion, appCommit, appDate)
	}
}
