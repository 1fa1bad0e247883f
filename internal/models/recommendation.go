package models

import "github.com/spboyer/stratafit/internal/taxonomy"

// SelectionStatus classifies the outcome of a selection.
type SelectionStatus string

const (
	StatusOK           SelectionStatus = "ok"
	StatusNoEligible   SelectionStatus = "no_eligible"
	StatusEmptyCatalog SelectionStatus = "empty_catalog"
	StatusInvalidInput SelectionStatus = "invalid_input"
)

// Weights defines the weighting scheme for fit scoring. Weights sum to 1.
type Weights struct {
	Archetype     float64 `json:"archetype" mapstructure:"archetype"`
	Stage         float64 `json:"stage" mapstructure:"stage"`
	Industry      float64 `json:"industry" mapstructure:"industry"`
	Effectiveness float64 `json:"effectiveness" mapstructure:"effectiveness"`
	Capability    float64 `json:"capability" mapstructure:"capability"`
}

// Sum returns the total of all factor weights.
func (w Weights) Sum() float64 {
	return w.Archetype + w.Stage + w.Industry + w.Effectiveness + w.Capability
}

// SelectionOptions tunes one selection run.
type SelectionOptions struct {
	MaxResults       int                `json:"max_results" yaml:"max_results"`
	DiversityCap     int                `json:"category_diversity_cap" yaml:"category_diversity_cap"`
	RelaxStage       bool               `json:"relax_stage,omitempty" yaml:"relax_stage,omitempty"`
	DeriveChallenges *bool              `json:"derive_challenges,omitempty" yaml:"derive_challenges,omitempty"`
	Weights          map[string]float64 `json:"weights,omitempty" yaml:"weights,omitempty"`
}

// Merge overlays the fields set in override onto o. A zero count, a nil
// pointer or a nil weight map leaves the value of o in place; RelaxStage is
// enabled by either side.
func (o SelectionOptions) Merge(override *SelectionOptions) SelectionOptions {
	if override == nil {
		return o
	}
	if override.MaxResults != 0 {
		o.MaxResults = override.MaxResults
	}
	if override.DiversityCap != 0 {
		o.DiversityCap = override.DiversityCap
	}
	o.RelaxStage = o.RelaxStage || override.RelaxStage
	if override.DeriveChallenges != nil {
		v := *override.DeriveChallenges
		o.DeriveChallenges = &v
	}
	if override.Weights != nil {
		o.Weights = override.Weights
	}
	return o
}

// Factor is one weighted component of a fit score.
type Factor struct {
	Name         string  `json:"name"`
	Weight       float64 `json:"weight"`
	Value        float64 `json:"value"`
	Contribution float64 `json:"contribution"`
}

// RankedFramework is one entry of a selection result.
type RankedFramework struct {
	Rank          int               `json:"rank"`
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Category      taxonomy.Category `json:"category"`
	Score         float64           `json:"score"`
	Rationale     []string          `json:"rationale"`
	Factors       []Factor          `json:"factors"`
	Complementary []string          `json:"complementary,omitempty"`
	Prerequisites []string          `json:"prerequisites,omitempty"`
	Requirements  []string          `json:"requirements,omitempty"`
	NextSteps     []string          `json:"next_steps,omitempty"`
	Risks         []string          `json:"risks,omitempty"`
}

// Exclusion records why a framework was not eligible.
type Exclusion struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// SelectionResult is the output of one selection.
type SelectionResult struct {
	Success    bool              `json:"success"`
	Status     SelectionStatus   `json:"status"`
	Message    string            `json:"message,omitempty"`
	Context    *CanonicalContext `json:"context,omitempty"`
	Weights    Weights           `json:"weights"`
	Frameworks []RankedFramework `json:"frameworks"`
	Excluded   []Exclusion       `json:"excluded,omitempty"`
	Eligible   int               `json:"eligible_count"`
}

// IDs returns the ranked framework ids in order.
func (r *SelectionResult) IDs() []string {
	ids := make([]string, len(r.Frameworks))
	for i, f := range r.Frameworks {
		ids[i] = f.ID
	}
	return ids
}
