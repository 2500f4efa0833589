// internal/appconfig/appconfig.go
// Package appconfig manages loading and interpreting application configuration.
package appconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mwiater/chunkalign/internal/align"
)

const (
	// DefaultConfigPath is the default path to the application's configuration file.
	DefaultConfigPath = "config/config.json"
	// defaultRequestTimeout bounds each embedding or contact-map request.
	defaultRequestTimeout = 120 * time.Second
	// defaultTopPairs is the number of top similarity cells reported.
	defaultTopPairs = 10
)

// ErrInvalidConfig wraps every schema and semantic validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config represents the top-level application configuration.
type Config struct {
	Debug    bool   `json:"debug" mapstructure:"debug"`
	JSONMode bool   `json:"jsonMode" mapstructure:"jsonMode"`
	LogFile  string `json:"logFile,omitempty" mapstructure:"logFile"`

	ChunksFile    string `json:"chunksFile,omitempty" mapstructure:"chunksFile"`
	SequencesFile string `json:"sequencesFile,omitempty" mapstructure:"sequencesFile"`
	StorePath     string `json:"storePath,omitempty" mapstructure:"storePath"`
	ResultsPath   string `json:"resultsPath,omitempty" mapstructure:"resultsPath"`

	EmbeddingHost   string `json:"embeddingHost,omitempty" mapstructure:"embeddingHost"`
	EmbeddingModel  string `json:"embeddingModel,omitempty" mapstructure:"embeddingModel"`
	StructuralHost  string `json:"structuralHost,omitempty" mapstructure:"structuralHost"`
	StructuralModel string `json:"structuralModel,omitempty" mapstructure:"structuralModel"`
	Structural      bool   `json:"structural" mapstructure:"structural"`
	Functional      bool   `json:"functional" mapstructure:"functional"`
	TimeoutSeconds  int    `json:"timeout,omitempty" mapstructure:"timeout"`
	TopPairs        int    `json:"topPairs,omitempty" mapstructure:"topPairs"`

	Profile        string  `json:"profile,omitempty" mapstructure:"profile"`
	GapOpen        float64 `json:"gapOpen" mapstructure:"gapOpen"`
	GapExtend      float64 `json:"gapExtend" mapstructure:"gapExtend"`
	ScoreThreshold float64 `json:"scoreThreshold" mapstructure:"scoreThreshold"`
	MinScore       float64 `json:"minScore" mapstructure:"minScore"`
	MinChunks      int     `json:"minChunks" mapstructure:"minChunks"`

	ConfigPath string `json:"-" mapstructure:"-"`
}

// Defaults returns a Config populated with every default value.
func Defaults() Config {
	p := align.DefaultParams()
	return Config{
		TimeoutSeconds: int(defaultRequestTimeout.Seconds()),
		TopPairs:       defaultTopPairs,
		GapOpen:        p.GapOpen,
		GapExtend:      p.GapExtend,
		ScoreThreshold: p.ScoreThreshold,
		MinScore:       p.MinScore,
		MinChunks:      p.MinChunks,
	}
}

// DefaultMap returns the defaults keyed by config key, for viper.SetDefault.
func DefaultMap() map[string]any {
	d := Defaults()
	return map[string]any{
		"timeout":        d.TimeoutSeconds,
		"topPairs":       d.TopPairs,
		"gapOpen":        d.GapOpen,
		"gapExtend":      d.GapExtend,
		"scoreThreshold": d.ScoreThreshold,
		"minScore":       d.MinScore,
		"minChunks":      d.MinChunks,
	}
}

// AlignParams returns the alignment parameters.
func (c Config) AlignParams() align.Params {
	return align.Params{
		GapOpen:        c.GapOpen,
		GapExtend:      c.GapExtend,
		ScoreThreshold: c.ScoreThreshold,
		MinScore:       c.MinScore,
		MinChunks:      c.MinChunks,
	}
}

// RequestTimeout returns the timeout duration for HTTP requests, falling back to the default if not specified.
func (c Config) RequestTimeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return defaultRequestTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// LogFilePath returns the path to the application log file, applying a default if not set.
func (c Config) LogFilePath() string {
	if path := c.LogFile; strings.TrimSpace(path) != "" {
		return path
	}
	return "chunkalign.log"
}

// ResultsFilePath returns the result store path, applying a default if not set.
func (c Config) ResultsFilePath() string {
	if path := c.ResultsPath; strings.TrimSpace(path) != "" {
		return path
	}
	return "chunkalign-results.db"
}

// Validate checks semantic constraints the schema cannot express.
func (c Config) Validate() error {
	var problems []string
	if c.GapOpen >= 0 {
		problems = append(problems, fmt.Sprintf("gapOpen must be negative, got %g", c.GapOpen))
	}
	if c.GapExtend >= 0 {
		problems = append(problems, fmt.Sprintf("gapExtend must be negative, got %g", c.GapExtend))
	}
	if c.ScoreThreshold <= 0 || c.ScoreThreshold > 1 {
		problems = append(problems, fmt.Sprintf("scoreThreshold must be in (0, 1], got %g", c.ScoreThreshold))
	}
	if c.MinScore < 0 {
		problems = append(problems, fmt.Sprintf("minScore must not be negative, got %g", c.MinScore))
	}
	if c.MinChunks < 1 {
		problems = append(problems, fmt.Sprintf("minChunks must be at least 1, got %d", c.MinChunks))
	}
	if c.TopPairs < 0 {
		problems = append(problems, fmt.Sprintf("topPairs must not be negative, got %d", c.TopPairs))
	}
	if c.Profile != "" && !KnownProfile(c.Profile) {
		problems = append(problems, fmt.Sprintf("unknown profile %q", c.Profile))
	}
	if c.TimeoutSeconds < 0 {
		problems = append(problems, fmt.Sprintf("timeout must not be negative, got %d", c.TimeoutSeconds))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// Load reads the configuration at path, validates it against the schema and
// the semantic rules, and fills unset values with defaults.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("no configuration file found at %q", path)
		}
		return Config{}, fmt.Errorf("could not read config file %q: %w", path, err)
	}
	if err := ValidateDocument(data); err != nil {
		return Config{}, fmt.Errorf("config file %q: %w", path, err)
	}

	config := Defaults()
	if err := json.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("could not parse config file %q: %w", path, err)
	}
	if config.Profile != "" {
		config.ApplyProfile(presentKeys(data))
	}
	if err := config.Validate(); err != nil {
		return Config{}, fmt.Errorf("config file %q: %w", path, err)
	}
	config.ConfigPath = path
	return config, nil
}

// presentKeys returns a predicate reporting whether a top-level key appears
// in the JSON document.
func presentKeys(data []byte) func(string) bool {
	var raw map[string]json.RawMessage
	_ = json.Unmarshal(data, &raw)
	return func(key string) bool {
		_, ok := raw[key]
		return ok
	}
}
