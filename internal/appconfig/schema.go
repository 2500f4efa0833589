// internal/appconfig/schema.go
package appconfig

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Schema is the JSON schema every config file must satisfy.
var Schema = map[string]any{
	"$schema":              "http://json-schema.org/draft-07/schema#",
	"type":                 "object",
	"additionalProperties": false,
	"properties": map[string]any{
		"debug":           map[string]any{"type": "boolean"},
		"jsonMode":        map[string]any{"type": "boolean"},
		"logFile":         map[string]any{"type": "string"},
		"chunksFile":      map[string]any{"type": "string"},
		"sequencesFile":   map[string]any{"type": "string"},
		"storePath":       map[string]any{"type": "string"},
		"resultsPath":     map[string]any{"type": "string"},
		"embeddingHost":   map[string]any{"type": "string"},
		"embeddingModel":  map[string]any{"type": "string"},
		"structuralHost":  map[string]any{"type": "string"},
		"structuralModel": map[string]any{"type": "string"},
		"structural":      map[string]any{"type": "boolean"},
		"functional":      map[string]any{"type": "boolean"},
		"timeout":         map[string]any{"type": "integer", "minimum": 0},
		"topPairs":        map[string]any{"type": "integer", "minimum": 0},
		"profile":         map[string]any{"type": "string", "enum": ProfileNames()},
		"gapOpen":         map[string]any{"type": "number", "exclusiveMaximum": 0},
		"gapExtend":       map[string]any{"type": "number", "exclusiveMaximum": 0},
		"scoreThreshold":  map[string]any{"type": "number", "exclusiveMinimum": 0, "maximum": 1},
		"minScore":        map[string]any{"type": "number", "minimum": 0},
		"minChunks":       map[string]any{"type": "integer", "minimum": 1},
	},
}

// ValidateDocument checks a raw JSON config document against Schema.
func ValidateDocument(data []byte) error {
	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(Schema), gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: schema validation error: %v", ErrInvalidConfig, err)
	}
	if result.Valid() {
		return nil
	}
	var errs []string
	for _, desc := range result.Errors() {
		errs = append(errs, desc.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(errs, ", "))
}
