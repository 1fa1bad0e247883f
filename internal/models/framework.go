package models

import "github.com/spboyer/stratafit/internal/taxonomy"

// FrameworkDefinition is the descriptive catalog entry for one framework.
type FrameworkDefinition struct {
	ID               string                          `json:"id"`
	Name             string                          `json:"name"`
	Description      string                          `json:"description,omitempty"`
	Category         taxonomy.Category               `json:"category"`
	Subcategory      string                          `json:"subcategory,omitempty"`
	KeyComponents    []string                        `json:"key_components,omitempty"`
	ApplicationSteps []string                        `json:"application_steps,omitempty"`
	ExpectedOutcomes []string                        `json:"expected_outcomes,omitempty"`
	Complexity       taxonomy.ComplexityTier         `json:"complexity,omitempty"`
	TimeToImplement  string                          `json:"time_to_implement,omitempty"`
	Industries       taxonomy.Set[taxonomy.Industry] `json:"industries,omitempty"`
	SuccessMetrics   []string                        `json:"success_metrics,omitempty"`
	Relationships    []Relationship                  `json:"relationships,omitempty"`
	AntiPatterns     []AntiPattern                   `json:"anti_patterns,omitempty"`
}

// RelationKind classifies a link between two frameworks.
type RelationKind string

const (
	RelationComplementary RelationKind = "complementary"
	RelationPrerequisite  RelationKind = "prerequisite"
	RelationProgressive   RelationKind = "progressive"
)

// Relationship points from the owning framework to Target. A prerequisite
// relationship means Target should be applied first; a progressive one means
// Target is a natural next step.
type Relationship struct {
	Target      string       `json:"target"`
	Kind        RelationKind `json:"kind"`
	Strength    int          `json:"strength,omitempty"`
	Description string       `json:"description,omitempty"`
}

// Operator is a comparison used by anti-pattern conditions.
type Operator string

const (
	OpLess         Operator = "lt"
	OpLessEqual    Operator = "lte"
	OpGreater      Operator = "gt"
	OpGreaterEqual Operator = "gte"
	OpEqual        Operator = "eq"
)

// Condition compares one context metric against a constant.
type Condition struct {
	Metric MetricName `json:"metric"`
	Op     Operator   `json:"op"`
	Value  float64    `json:"value"`
}

// AntiPattern describes a situation in which a framework should not be used.
// It applies only when every condition holds for known metrics.
type AntiPattern struct {
	Name         string      `json:"name"`
	Description  string      `json:"description,omitempty"`
	Conditions   []Condition `json:"conditions"`
	Alternatives []string    `json:"alternatives,omitempty"`
}

// TagProfile classifies a framework across every taxonomy axis.
type TagProfile struct {
	FrameworkID         string                                  `json:"framework_id"`
	TemporalStages      taxonomy.Set[taxonomy.Stage]            `json:"temporal_stages,omitempty"`
	ProblemArchetypes   taxonomy.Set[taxonomy.ProblemArchetype] `json:"problem_archetypes,omitempty"`
	DecisionContexts    taxonomy.Set[taxonomy.DecisionContext]  `json:"decision_contexts,omitempty"`
	DataRequirements    taxonomy.Set[taxonomy.DataRequirement]  `json:"data_requirements,omitempty"`
	Complexity          taxonomy.ComplexityTier                 `json:"complexity_tier,omitempty"`
	OutcomeTypes        taxonomy.Set[taxonomy.OutcomeType]      `json:"outcome_types,omitempty"`
	IndustryContexts    taxonomy.Set[taxonomy.Industry]         `json:"industry_contexts,omitempty"`
	TypicalUsers        string                                  `json:"typical_users,omitempty"`
	TeamSizeMin         *int                                    `json:"team_size_min,omitempty"`
	TeamSizeMax         *int                                    `json:"team_size_max,omitempty"`
	TimeToValueDays     int                                     `json:"time_to_value_days"`
	DurabilityMonths    int                                     `json:"durability_months"`
	EaseOfUse           float64                                 `json:"ease_of_use"`
	Actionability       float64                                 `json:"actionability"`
	Accuracy            float64                                 `json:"accuracy"`
	StrategicImpact     float64                                 `json:"strategic_impact"`
	RequiresFacilitator bool                                    `json:"requires_facilitator"`
	RequiresSoftware    bool                                    `json:"requires_software"`
	HasVariants         bool                                    `json:"has_variants"`
	Keywords            []string                                `json:"keywords,omitempty"`
}

// MaxRating is the upper bound of the ease/actionability/accuracy/impact scores.
const MaxRating = 10.0

// EffectivenessRecord is empirically conditioned performance data for one
// framework.
type EffectivenessRecord struct {
	FrameworkID       string                              `json:"framework_id"`
	SuccessRate       float64                             `json:"success_rate"`
	TimeToImpactDays  int                                 `json:"time_to_impact_days"`
	EffortReturnRatio float64                             `json:"effort_return_ratio"`
	DurabilityMonths  int                                 `json:"durability_months"`
	ByStage           map[taxonomy.Stage]float64          `json:"effectiveness_by_stage,omitempty"`
	ByIndustry        map[taxonomy.Industry]float64       `json:"effectiveness_by_industry,omitempty"`
	ByTeamSize        map[taxonomy.TeamSizeBucket]float64 `json:"effectiveness_by_team_size,omitempty"`
	Prerequisites     []string                            `json:"prerequisites,omitempty"`
	CommonPitfalls    []string                            `json:"common_pitfalls,omitempty"`
	DataPoints        int                                 `json:"data_points"`
	ConfidenceLevel   float64                             `json:"confidence_level"`
}
