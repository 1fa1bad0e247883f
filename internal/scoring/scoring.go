// Package scoring computes the multi-factor fit score of one eligible
// framework against a canonical context.
//
// Each factor is bounded to [0,1] and multiplied by its weight. Missing tag
// profiles and effectiveness records fall back to an explicit neutral value
// of 0.5 rather than to zero or to full credit.
package scoring

import (
	"math"

	"github.com/spboyer/stratafit/internal/models"
)

// Neutral is the value a factor takes when the data it needs is absent.
const Neutral = 0.5

// Input is everything the scorer reads for one framework. Profile and
// Record may be nil.
type Input struct {
	Context   *models.CanonicalContext
	Framework *models.FrameworkDefinition
	Profile   *models.TagProfile
	Record    *models.EffectivenessRecord
}

// Result is the fit score with its breakdown. Rationale holds one line per
// factor that fired, in factor order; Risks holds the penalties applied.
type Result struct {
	Score     float64
	Factors   []models.Factor
	Rationale []string
	Risks     []string
}

// Scorer scores a framework against a context.
type Scorer interface {
	Score(Input) Result
}

// WeightedScorer is the weighted-sum Scorer.
type WeightedScorer struct {
	weights models.Weights
}

// New returns a WeightedScorer using w. Callers resolve overrides with
// ResolveWeights first.
func New(w models.Weights) *WeightedScorer {
	return &WeightedScorer{weights: w}
}

// Weights returns the weights in use.
func (s *WeightedScorer) Weights() models.Weights { return s.weights }

type factorResult struct {
	value     float64
	rationale []string
	risks     []string
}

func (s *WeightedScorer) Score(in Input) Result {
	parts := []struct {
		name   string
		weight float64
		fr     factorResult
	}{
		{FactorArchetype, s.weights.Archetype, archetypeFactor(in)},
		{FactorStage, s.weights.Stage, stageFactor(in)},
		{FactorIndustry, s.weights.Industry, industryFactor(in)},
		{FactorEffectiveness, s.weights.Effectiveness, effectivenessFactor(in)},
		{FactorCapability, s.weights.Capability, capabilityFactor(in)},
	}

	var res Result
	var total float64
	for _, p := range parts {
		v := clamp01(p.fr.value)
		contribution := p.weight * v
		total += contribution
		res.Factors = append(res.Factors, models.Factor{
			Name:         p.name,
			Weight:       round4(p.weight),
			Value:        round4(v),
			Contribution: round4(contribution),
		})
		res.Rationale = append(res.Rationale, p.fr.rationale...)
		res.Risks = append(res.Risks, p.fr.risks...)
	}
	res.Score = round4(total)
	return res
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
