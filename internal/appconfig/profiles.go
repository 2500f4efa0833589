// internal/appconfig/profiles.go
package appconfig

import (
	"sort"
	"strings"

	"github.com/mwiater/chunkalign/internal/align"
)

// ProfileName identifies an alignment parameter preset.
type ProfileName string

const (
	ProfileDefault   ProfileName = "default"
	ProfileStrict    ProfileName = "strict"
	ProfileSensitive ProfileName = "sensitive"
)

var profiles = map[ProfileName]align.Params{
	ProfileDefault: align.DefaultParams(),
	// Expensive gaps keep distant similar blocks as separate alignments.
	ProfileStrict: {
		GapOpen:        -0.4,
		GapExtend:      -0.2,
		ScoreThreshold: 0.6,
		MinScore:       0.5,
		MinChunks:      3,
	},
	ProfileSensitive: {
		GapOpen:        -0.1,
		GapExtend:      -0.05,
		ScoreThreshold: 0.4,
		MinScore:       0.2,
		MinChunks:      2,
	},
}

// ProfileNames lists the known profiles, sorted.
func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for n := range profiles {
		names = append(names, string(n))
	}
	sort.Strings(names)
	return names
}

// KnownProfile reports whether name is a known profile.
func KnownProfile(name string) bool {
	_, ok := profiles[ProfileName(normalizeProfileName(name))]
	return ok
}

// ParamsForProfile selects a parameter profile by name.
// Behavior:
//   - empty string => default
//   - unknown string => default
func ParamsForProfile(name string) align.Params {
	if p, ok := profiles[ProfileName(normalizeProfileName(name))]; ok {
		return p
	}
	return align.DefaultParams()
}

// ApplyProfile overwrites the alignment parameters with the profile's values,
// except for keys where explicit(key) is true.
func (c *Config) ApplyProfile(explicit func(key string) bool) {
	p := ParamsForProfile(c.Profile)
	if !explicit("gapOpen") {
		c.GapOpen = p.GapOpen
	}
	if !explicit("gapExtend") {
		c.GapExtend = p.GapExtend
	}
	if !explicit("scoreThreshold") {
		c.ScoreThreshold = p.ScoreThreshold
	}
	if !explicit("minScore") {
		c.MinScore = p.MinScore
	}
	if !explicit("minChunks") {
		c.MinChunks = p.MinChunks
	}
}

func normalizeProfileName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
