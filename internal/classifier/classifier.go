package classifier

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/paleolab/fossilscan/internal/config"
	"github.com/paleolab/fossilscan/internal/fossil"
)

// ErrClassification marks a classifier failure. It is distinct from a
// successful low-confidence observation.
var ErrClassification = errors.New("classification failed")

// Observation is what a classifier reads off one specimen image.
type Observation struct {
	Type                fossil.Type
	GeologicalPeriod    string
	AgeRange            fossil.AgeRange
	PreservationQuality float64 // 0.0-1.0
	SpeciesCandidates   []fossil.SpeciesCandidate
	Confidence          float64 // 0.0-1.0
}

// Classifier is the interface for fossil identification strategies.
type Classifier interface {
	Classify(ctx context.Context, img image.Image) (Observation, error)
}

// New creates a classifier based on the specified variant.
func New(variant string, cfg *config.Config) (Classifier, error) {
	switch variant {
	case "heuristic", "":
		return NewHeuristic(), nil
	case "vision":
		return NewVision(cfg.OpenAI)
	default:
		return nil, fmt.Errorf("unknown classifier variant: %s", variant)
	}
}

// Variants lists the selectable classifier implementations.
func Variants() []string {
	return []string{"heuristic", "vision"}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
