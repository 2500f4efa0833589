package descriptors

import (
	"context"
	"fmt"

	"github.com/mwiater/chunkalign/internal/logging"
)

// Provider computes a descriptor vector for one chunk sequence.
type Provider interface {
	Describe(ctx context.Context, sequence string) (Vector, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, sequence string) (Vector, error)

// Describe calls f.
func (f ProviderFunc) Describe(ctx context.Context, sequence string) (Vector, error) {
	return f(ctx, sequence)
}

// Combined runs the composition provider and, when set, a structural provider
// and merges their vectors. A failing structural provider contributes the
// structural fallback instead of failing the whole vector.
type Combined struct {
	Composition Provider
	Structural  Provider
}

// NewCombined returns a Combined provider. structural may be nil.
func NewCombined(structural Provider) *Combined {
	return &Combined{Composition: Composition{}, Structural: structural}
}

// Describe implements Provider.
func (c *Combined) Describe(ctx context.Context, sequence string) (Vector, error) {
	composition := c.Composition
	if composition == nil {
		composition = Composition{}
	}
	v, err := composition.Describe(ctx, sequence)
	if err != nil {
		return nil, err
	}
	if c.Structural == nil {
		return v, nil
	}
	s, err := c.Structural.Describe(ctx, sequence)
	if err != nil {
		logging.LogEvent("[DESCRIPTORS] structural descriptors unavailable, using fallback: %v", err)
		s = StructuralFallback()
	}
	v.Merge(s)
	return v, nil
}

// Safe wraps a Provider so that it never fails: short sequences, errors and
// panics all yield the documented fallback vector.
type Safe struct {
	Provider          Provider
	IncludeStructural bool
}

// NewSafe wraps p.
func NewSafe(p Provider, includeStructural bool) *Safe {
	return &Safe{Provider: p, IncludeStructural: includeStructural}
}

// Describe always returns a complete vector.
func (s *Safe) Describe(ctx context.Context, sequence string) Vector {
	if len(Clean(sequence)) < minResidues || s.Provider == nil {
		return Fallback(len(sequence), s.IncludeStructural)
	}
	v, err := s.describe(ctx, sequence)
	if err != nil {
		logging.LogEvent("[DESCRIPTORS] descriptor computation failed for %q, using fallback: %v", sequence, err)
		return Fallback(len(sequence), s.IncludeStructural)
	}
	return s.complete(v, len(sequence))
}

func (s *Safe) describe(ctx context.Context, sequence string) (v Vector, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("descriptor provider panic: %v", r)
		}
	}()
	return s.Provider.Describe(ctx, sequence)
}

// complete fills any key the provider left out with its fallback value.
func (s *Safe) complete(v Vector, length int) Vector {
	full := Fallback(length, s.IncludeStructural)
	for k := range full {
		if val, ok := v[k]; ok {
			full[k] = val
		}
	}
	return full
}
