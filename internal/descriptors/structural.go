package descriptors

import (
	"context"
	"fmt"
	"math"

	"github.com/mwiater/chunkalign/internal/logging"
)

// contactThreshold is the minimum predicted contact probability counted.
const contactThreshold = 0.3

// ContactPredictor returns an L×L residue contact probability map for a
// sequence. It is backed by an external model.
type ContactPredictor interface {
	PredictContacts(ctx context.Context, sequence string) ([][]float64, error)
}

// Structural derives structural descriptors. Helix and sheet fractions come
// from the injected ContactPredictor; disorder and surface exposure come from
// residue propensity scales.
type Structural struct {
	Predictor ContactPredictor
}

// NewStructural returns a Structural provider. predictor may be nil, in which
// case helix and sheet fractions are reported as 0.
func NewStructural(predictor ContactPredictor) *Structural {
	return &Structural{Predictor: predictor}
}

// Describe implements Provider.
func (s *Structural) Describe(ctx context.Context, sequence string) (Vector, error) {
	helix, sheet := 0.0, 0.0
	if s.Predictor != nil {
		contacts, err := s.Predictor.PredictContacts(ctx, sequence)
		if err != nil {
			logging.LogEvent("[DESCRIPTORS] contact prediction failed: %v", err)
		} else {
			helix, sheet, err = secondaryStructure(contacts, len(sequence))
			if err != nil {
				logging.LogEvent("[DESCRIPTORS] contact map rejected: %v", err)
				helix, sheet = 0, 0
			}
		}
	}
	return Vector{
		KeyHelixFraction:          helix,
		KeySheetFraction:          sheet,
		KeyDisorderFraction:       disorderFraction(sequence),
		KeySurfaceExposedFraction: surfaceExposure(sequence),
	}, nil
}

// secondaryStructure scores helices from i→i+3/i+4 contacts and sheets from
// contacts at least five residues apart.
func secondaryStructure(contacts [][]float64, n int) (float64, float64, error) {
	if n < 4 {
		return 0, 0, nil
	}
	if len(contacts) < n {
		return 0, 0, fmt.Errorf("contact map has %d rows, want %d", len(contacts), n)
	}
	for i := 0; i < n; i++ {
		if len(contacts[i]) < n {
			return 0, 0, fmt.Errorf("contact map row %d has %d columns, want %d", i, len(contacts[i]), n)
		}
	}

	helixScore := 0
	for i := 0; i < n-4; i++ {
		if contacts[i][i+3] > contactThreshold || contacts[i][i+4] > contactThreshold {
			helixScore++
		}
	}
	sheetScore := 0
	for i := 0; i < n; i++ {
		for j := i + 5; j < n; j++ {
			if contacts[i][j] > contactThreshold {
				sheetScore++
			}
		}
	}

	helix := math.Min(float64(helixScore)/math.Max(float64(n-4), 1), 1)
	sheet := math.Min(float64(sheetScore)/math.Max(float64(n*(n-5))/2, 1)*10, 1)
	return round4(helix), round4(sheet), nil
}

// disorderFraction maps the mean disorder propensity onto [0, 1].
func disorderFraction(sequence string) float64 {
	clean := Clean(sequence)
	if len(clean) < minResidues {
		return 0
	}
	sum := 0.0
	for _, r := range clean {
		sum += disorderPropensity[r]
	}
	avg := sum / float64(len(clean))
	return round4(math.Max(0, math.Min(1, (avg+0.4)/0.75)))
}

// surfaceExposure is the mean relative solvent accessibility propensity.
func surfaceExposure(sequence string) float64 {
	clean := Clean(sequence)
	if len(clean) < minResidues {
		return neutralSurfaceExposure
	}
	sum := 0.0
	for _, r := range clean {
		sum += surfacePropensity[r]
	}
	return round4(sum / float64(len(clean)))
}

var disorderPropensity = map[rune]float64{
	'A': 0.06, 'R': 0.18, 'N': 0.13, 'D': 0.19, 'C': -0.20,
	'E': 0.24, 'Q': 0.18, 'G': 0.16, 'H': 0.05, 'I': -0.39,
	'L': -0.28, 'K': 0.21, 'M': -0.22, 'F': -0.35, 'P': 0.33,
	'S': 0.14, 'T': 0.05, 'W': -0.27, 'Y': -0.20, 'V': -0.32,
}

var surfacePropensity = map[rune]float64{
	'A': 0.48, 'R': 0.84, 'N': 0.76, 'D': 0.78, 'C': 0.32,
	'E': 0.82, 'Q': 0.78, 'G': 0.51, 'H': 0.66, 'I': 0.34,
	'L': 0.40, 'K': 0.85, 'M': 0.44, 'F': 0.35, 'P': 0.62,
	'S': 0.66, 'T': 0.60, 'W': 0.38, 'Y': 0.48, 'V': 0.36,
}
