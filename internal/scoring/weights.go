package scoring

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spboyer/stratafit/internal/models"
)

// Factor names, also the keys accepted in weight overrides.
const (
	FactorArchetype     = "archetype"
	FactorStage         = "stage"
	FactorIndustry      = "industry"
	FactorEffectiveness = "effectiveness"
	FactorCapability    = "capability"
)

// FactorNames lists the factors in the order they appear in a breakdown.
var FactorNames = []string{FactorArchetype, FactorStage, FactorIndustry, FactorEffectiveness, FactorCapability}

// ErrInvalidWeights is returned by ResolveWeights for unusable overrides.
var ErrInvalidWeights = errors.New("invalid scoring weights")

// DefaultWeights returns the documented default weighting. Archetype match
// carries the most weight.
func DefaultWeights() models.Weights {
	return models.Weights{
		Archetype:     0.35,
		Stage:         0.20,
		Industry:      0.10,
		Effectiveness: 0.20,
		Capability:    0.15,
	}
}

// ResolveWeights applies overrides on top of the defaults and renormalizes
// the result to sum to 1. Keys are factor names; unknown keys, negative
// values and an all-zero result are rejected.
func ResolveWeights(overrides map[string]float64) (models.Weights, error) {
	w := DefaultWeights()
	if len(overrides) == 0 {
		return w, nil
	}

	var unknown []string
	for k := range overrides {
		if !isFactor(k) {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return models.Weights{}, fmt.Errorf("%w: unknown factor(s) %s; valid factors are %s",
			ErrInvalidWeights, strings.Join(unknown, ", "), strings.Join(FactorNames, ", "))
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{Result: &w})
	if err != nil {
		return models.Weights{}, err
	}
	if err := dec.Decode(overrides); err != nil {
		return models.Weights{}, fmt.Errorf("%w: %v", ErrInvalidWeights, err)
	}

	for _, name := range FactorNames {
		v := weightOf(w, name)
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return models.Weights{}, fmt.Errorf("%w: %s must be a non-negative number, got %g", ErrInvalidWeights, name, v)
		}
	}
	sum := w.Sum()
	if sum <= 0 {
		return models.Weights{}, fmt.Errorf("%w: weights must not all be zero", ErrInvalidWeights)
	}
	return models.Weights{
		Archetype:     w.Archetype / sum,
		Stage:         w.Stage / sum,
		Industry:      w.Industry / sum,
		Effectiveness: w.Effectiveness / sum,
		Capability:    w.Capability / sum,
	}, nil
}

func isFactor(name string) bool {
	for _, f := range FactorNames {
		if f == name {
			return true
		}
	}
	return false
}

func weightOf(w models.Weights, name string) float64 {
	switch name {
	case FactorArchetype:
		return w.Archetype
	case FactorStage:
		return w.Stage
	case FactorIndustry:
		return w.Industry
	case FactorEffectiveness:
		return w.Effectiveness
	case FactorCapability:
		return w.Capability
	default:
		return 0
	}
}
