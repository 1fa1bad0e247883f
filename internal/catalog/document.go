package catalog

import (
	"fmt"
	"sort"

	"github.com/spboyer/stratafit/internal/models"
	"github.com/spboyer/stratafit/internal/taxonomy"
)

// Defaults applied to absent profile and effectiveness fields at load time.
const (
	DefaultRating            = 5.0
	DefaultConfidence        = 0.5
	DefaultEffortReturnRatio = 1.0
)

// Document is the on-disk shape of a catalog file or bundle. A catalog may be
// split across several documents; they are merged before integrity checks.
type Document struct {
	Version       string             `yaml:"version,omitempty" json:"version,omitempty"`
	Frameworks    []FrameworkDoc     `yaml:"frameworks,omitempty" json:"frameworks,omitempty"`
	Profiles      []ProfileDoc       `yaml:"profiles,omitempty" json:"profiles,omitempty"`
	Effectiveness []EffectivenessDoc `yaml:"effectiveness,omitempty" json:"effectiveness,omitempty"`
}

type FrameworkDoc struct {
	ID               string           `yaml:"id" json:"id"`
	Name             string           `yaml:"name" json:"name"`
	Description      string           `yaml:"description,omitempty" json:"description,omitempty"`
	Category         string           `yaml:"category" json:"category"`
	Subcategory      string           `yaml:"subcategory,omitempty" json:"subcategory,omitempty"`
	KeyComponents    []string         `yaml:"key_components,omitempty" json:"key_components,omitempty"`
	ApplicationSteps []string         `yaml:"application_steps,omitempty" json:"application_steps,omitempty"`
	ExpectedOutcomes []string         `yaml:"expected_outcomes,omitempty" json:"expected_outcomes,omitempty"`
	Complexity       string           `yaml:"complexity,omitempty" json:"complexity,omitempty"`
	TimeToImplement  string           `yaml:"time_to_implement,omitempty" json:"time_to_implement,omitempty"`
	Industries       []string         `yaml:"industries,omitempty" json:"industries,omitempty"`
	SuccessMetrics   []string         `yaml:"success_metrics,omitempty" json:"success_metrics,omitempty"`
	Relationships    []RelationDoc    `yaml:"relationships,omitempty" json:"relationships,omitempty"`
	AntiPatterns     []AntiPatternDoc `yaml:"anti_patterns,omitempty" json:"anti_patterns,omitempty"`
}

type RelationDoc struct {
	Target      string `yaml:"target" json:"target"`
	Kind        string `yaml:"kind" json:"kind"`
	Strength    int    `yaml:"strength,omitempty" json:"strength,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

type AntiPatternDoc struct {
	Name         string         `yaml:"name" json:"name"`
	Description  string         `yaml:"description,omitempty" json:"description,omitempty"`
	Conditions   []ConditionDoc `yaml:"conditions" json:"conditions"`
	Alternatives []string       `yaml:"alternatives,omitempty" json:"alternatives,omitempty"`
}

type ConditionDoc struct {
	Metric string  `yaml:"metric" json:"metric"`
	Op     string  `yaml:"op" json:"op"`
	Value  float64 `yaml:"value" json:"value"`
}

type ProfileDoc struct {
	FrameworkID         string   `yaml:"framework_id" json:"framework_id"`
	TemporalStages      []string `yaml:"temporal_stages,omitempty" json:"temporal_stages,omitempty"`
	ProblemArchetypes   []string `yaml:"problem_archetypes,omitempty" json:"problem_archetypes,omitempty"`
	DecisionContexts    []string `yaml:"decision_contexts,omitempty" json:"decision_contexts,omitempty"`
	DataRequirements    []string `yaml:"data_requirements,omitempty" json:"data_requirements,omitempty"`
	ComplexityTier      string   `yaml:"complexity_tier,omitempty" json:"complexity_tier,omitempty"`
	OutcomeTypes        []string `yaml:"outcome_types,omitempty" json:"outcome_types,omitempty"`
	IndustryContexts    []string `yaml:"industry_contexts,omitempty" json:"industry_contexts,omitempty"`
	TypicalUsers        string   `yaml:"typical_users,omitempty" json:"typical_users,omitempty"`
	TeamSizeMin         *int     `yaml:"team_size_min,omitempty" json:"team_size_min,omitempty"`
	TeamSizeMax         *int     `yaml:"team_size_max,omitempty" json:"team_size_max,omitempty"`
	TimeToValueDays     int      `yaml:"time_to_value_days,omitempty" json:"time_to_value_days,omitempty"`
	DurabilityMonths    int      `yaml:"durability_months,omitempty" json:"durability_months,omitempty"`
	EaseOfUse           *float64 `yaml:"ease_of_use,omitempty" json:"ease_of_use,omitempty"`
	Actionability       *float64 `yaml:"actionability,omitempty" json:"actionability,omitempty"`
	Accuracy            *float64 `yaml:"accuracy,omitempty" json:"accuracy,omitempty"`
	StrategicImpact     *float64 `yaml:"strategic_impact,omitempty" json:"strategic_impact,omitempty"`
	RequiresFacilitator bool     `yaml:"requires_facilitator,omitempty" json:"requires_facilitator,omitempty"`
	RequiresSoftware    bool     `yaml:"requires_software,omitempty" json:"requires_software,omitempty"`
	HasVariants         bool     `yaml:"has_variants,omitempty" json:"has_variants,omitempty"`
	Keywords            []string `yaml:"keywords,omitempty" json:"keywords,omitempty"`
}

type EffectivenessDoc struct {
	FrameworkID       string             `yaml:"framework_id" json:"framework_id"`
	SuccessRate       float64            `yaml:"success_rate" json:"success_rate"`
	TimeToImpactDays  int                `yaml:"time_to_impact_days,omitempty" json:"time_to_impact_days,omitempty"`
	EffortReturnRatio *float64           `yaml:"effort_return_ratio,omitempty" json:"effort_return_ratio,omitempty"`
	DurabilityMonths  int                `yaml:"durability_months,omitempty" json:"durability_months,omitempty"`
	ByStage           map[string]float64 `yaml:"effectiveness_by_stage,omitempty" json:"effectiveness_by_stage,omitempty"`
	ByIndustry        map[string]float64 `yaml:"effectiveness_by_industry,omitempty" json:"effectiveness_by_industry,omitempty"`
	ByTeamSize        map[string]float64 `yaml:"effectiveness_by_team_size,omitempty" json:"effectiveness_by_team_size,omitempty"`
	Prerequisites     []string           `yaml:"prerequisites,omitempty" json:"prerequisites,omitempty"`
	CommonPitfalls    []string           `yaml:"common_pitfalls,omitempty" json:"common_pitfalls,omitempty"`
	DataPoints        int                `yaml:"data_points,omitempty" json:"data_points,omitempty"`
	ConfidenceLevel   *float64           `yaml:"confidence_level,omitempty" json:"confidence_level,omitempty"`
}

// decoded collects the model values produced from one or more documents.
type decoded struct {
	defs     []*models.FrameworkDefinition
	profiles []*models.TagProfile
	records  []*models.EffectivenessRecord
	version  string
}

// add converts doc into model values. Unknown taxonomy values are reported as
// problems prefixed with src; the offending entry is still kept so that later
// checks can report on it too.
func (d *decoded) add(src string, doc *Document, p *problems) {
	if doc.Version != "" {
		d.version = doc.Version
	}
	for i := range doc.Frameworks {
		d.defs = append(d.defs, convertFramework(src, &doc.Frameworks[i], p))
	}
	for i := range doc.Profiles {
		d.profiles = append(d.profiles, convertProfile(src, &doc.Profiles[i], p))
	}
	for i := range doc.Effectiveness {
		d.records = append(d.records, convertRecord(src, &doc.Effectiveness[i], p))
	}
}

func convertFramework(src string, f *FrameworkDoc, p *problems) *models.FrameworkDefinition {
	at := fmt.Sprintf("%s: framework %s", src, f.ID)
	def := &models.FrameworkDefinition{
		ID:               f.ID,
		Name:             f.Name,
		Description:      f.Description,
		Subcategory:      f.Subcategory,
		KeyComponents:    f.KeyComponents,
		ApplicationSteps: f.ApplicationSteps,
		ExpectedOutcomes: f.ExpectedOutcomes,
		TimeToImplement:  f.TimeToImplement,
		SuccessMetrics:   f.SuccessMetrics,
	}
	def.Category = must(p, at, func() (taxonomy.Category, error) { return taxonomy.ParseCategory(f.Category) })
	if f.Complexity != "" {
		def.Complexity = must(p, at, func() (taxonomy.ComplexityTier, error) { return taxonomy.ParseComplexity(f.Complexity) })
	}
	def.Industries = must(p, at, func() (taxonomy.Set[taxonomy.Industry], error) { return taxonomy.ParseIndustries(f.Industries) })
	for _, r := range f.Relationships {
		def.Relationships = append(def.Relationships, models.Relationship{
			Target:      r.Target,
			Kind:        models.RelationKind(r.Kind),
			Strength:    r.Strength,
			Description: r.Description,
		})
	}
	for _, ap := range f.AntiPatterns {
		out := models.AntiPattern{Name: ap.Name, Description: ap.Description, Alternatives: ap.Alternatives}
		for _, c := range ap.Conditions {
			out.Conditions = append(out.Conditions, models.Condition{
				Metric: models.MetricName(c.Metric),
				Op:     models.Operator(c.Op),
				Value:  c.Value,
			})
		}
		def.AntiPatterns = append(def.AntiPatterns, out)
	}
	return def
}

func convertProfile(src string, d *ProfileDoc, p *problems) *models.TagProfile {
	at := fmt.Sprintf("%s: profile %s", src, d.FrameworkID)
	tp := &models.TagProfile{
		FrameworkID:         d.FrameworkID,
		TypicalUsers:        d.TypicalUsers,
		TeamSizeMin:         d.TeamSizeMin,
		TeamSizeMax:         d.TeamSizeMax,
		TimeToValueDays:     d.TimeToValueDays,
		DurabilityMonths:    d.DurabilityMonths,
		EaseOfUse:           orDefault(d.EaseOfUse, DefaultRating),
		Actionability:       orDefault(d.Actionability, DefaultRating),
		Accuracy:            orDefault(d.Accuracy, DefaultRating),
		StrategicImpact:     orDefault(d.StrategicImpact, DefaultRating),
		RequiresFacilitator: d.RequiresFacilitator,
		RequiresSoftware:    d.RequiresSoftware,
		HasVariants:         d.HasVariants,
		Keywords:            normalizeKeywords(d.Keywords),
	}
	tp.TemporalStages = must(p, at, func() (taxonomy.Set[taxonomy.Stage], error) { return taxonomy.ParseStages(d.TemporalStages) })
	tp.ProblemArchetypes = must(p, at, func() (taxonomy.Set[taxonomy.ProblemArchetype], error) {
		return taxonomy.ParseProblemArchetypes(d.ProblemArchetypes)
	})
	tp.DecisionContexts = must(p, at, func() (taxonomy.Set[taxonomy.DecisionContext], error) {
		return taxonomy.ParseDecisionContexts(d.DecisionContexts)
	})
	tp.DataRequirements = must(p, at, func() (taxonomy.Set[taxonomy.DataRequirement], error) {
		return taxonomy.ParseDataRequirements(d.DataRequirements)
	})
	tp.OutcomeTypes = must(p, at, func() (taxonomy.Set[taxonomy.OutcomeType], error) { return taxonomy.ParseOutcomeTypes(d.OutcomeTypes) })
	tp.IndustryContexts = must(p, at, func() (taxonomy.Set[taxonomy.Industry], error) { return taxonomy.ParseIndustries(d.IndustryContexts) })
	if d.ComplexityTier != "" {
		tp.Complexity = must(p, at, func() (taxonomy.ComplexityTier, error) { return taxonomy.ParseComplexity(d.ComplexityTier) })
	}
	return tp
}

func convertRecord(src string, d *EffectivenessDoc, p *problems) *models.EffectivenessRecord {
	at := fmt.Sprintf("%s: effectiveness %s", src, d.FrameworkID)
	r := &models.EffectivenessRecord{
		FrameworkID:       d.FrameworkID,
		SuccessRate:       d.SuccessRate,
		TimeToImpactDays:  d.TimeToImpactDays,
		EffortReturnRatio: orDefault(d.EffortReturnRatio, DefaultEffortReturnRatio),
		DurabilityMonths:  d.DurabilityMonths,
		Prerequisites:     d.Prerequisites,
		CommonPitfalls:    d.CommonPitfalls,
		DataPoints:        d.DataPoints,
		ConfidenceLevel:   orDefault(d.ConfidenceLevel, DefaultConfidence),
	}
	r.ByStage = convertRates(p, at, d.ByStage, taxonomy.ParseStage)
	r.ByIndustry = convertRates(p, at, d.ByIndustry, taxonomy.ParseIndustry)
	r.ByTeamSize = convertRates(p, at, d.ByTeamSize, taxonomy.ParseTeamSizeBucket)
	return r
}

func convertRates[K ~string](p *problems, at string, in map[string]float64, parse func(string) (K, error)) map[K]float64 {
	if len(in) == 0 {
		return nil
	}
	out := make(map[K]float64, len(in))
	for _, raw := range sortedKeys(in) {
		k, err := parse(raw)
		if err != nil {
			p.addf("%s: %v", at, err)
			continue
		}
		out[k] = in[raw]
	}
	return out
}

func must[T any](p *problems, at string, parse func() (T, error)) T {
	v, err := parse()
	if err != nil {
		p.addf("%s: %v", at, err)
	}
	return v
}

func orDefault(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func normalizeKeywords(in []string) []string {
	var out []string
	seen := make(map[string]bool, len(in))
	for _, k := range in {
		k = taxonomy.Canonical(k)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

// ToDocument converts a snapshot back into its document form, for export.
func (s *Snapshot) ToDocument() *Document {
	doc := &Document{Version: s.version}
	for _, id := range s.ids {
		doc.Frameworks = append(doc.Frameworks, frameworkDoc(s.frameworks[id]))
		if tp, ok := s.profiles[id]; ok {
			doc.Profiles = append(doc.Profiles, profileDoc(tp))
		}
		if r, ok := s.records[id]; ok {
			doc.Effectiveness = append(doc.Effectiveness, effectivenessDoc(r))
		}
	}
	return doc
}

func frameworkDoc(d *models.FrameworkDefinition) FrameworkDoc {
	f := FrameworkDoc{
		ID:               d.ID,
		Name:             d.Name,
		Description:      d.Description,
		Category:         string(d.Category),
		Subcategory:      d.Subcategory,
		KeyComponents:    d.KeyComponents,
		ApplicationSteps: d.ApplicationSteps,
		ExpectedOutcomes: d.ExpectedOutcomes,
		Complexity:       string(d.Complexity),
		TimeToImplement:  d.TimeToImplement,
		Industries:       nilIfEmpty(d.Industries.Strings()),
		SuccessMetrics:   d.SuccessMetrics,
	}
	for _, r := range d.Relationships {
		f.Relationships = append(f.Relationships, RelationDoc{
			Target: r.Target, Kind: string(r.Kind), Strength: r.Strength, Description: r.Description,
		})
	}
	for _, ap := range d.AntiPatterns {
		out := AntiPatternDoc{Name: ap.Name, Description: ap.Description, Alternatives: ap.Alternatives}
		for _, c := range ap.Conditions {
			out.Conditions = append(out.Conditions, ConditionDoc{Metric: string(c.Metric), Op: string(c.Op), Value: c.Value})
		}
		f.AntiPatterns = append(f.AntiPatterns, out)
	}
	return f
}

func profileDoc(tp *models.TagProfile) ProfileDoc {
	return ProfileDoc{
		FrameworkID:         tp.FrameworkID,
		TemporalStages:      nilIfEmpty(tp.TemporalStages.Strings()),
		ProblemArchetypes:   nilIfEmpty(tp.ProblemArchetypes.Strings()),
		DecisionContexts:    nilIfEmpty(tp.DecisionContexts.Strings()),
		DataRequirements:    nilIfEmpty(tp.DataRequirements.Strings()),
		ComplexityTier:      string(tp.Complexity),
		OutcomeTypes:        nilIfEmpty(tp.OutcomeTypes.Strings()),
		IndustryContexts:    nilIfEmpty(tp.IndustryContexts.Strings()),
		TypicalUsers:        tp.TypicalUsers,
		TeamSizeMin:         tp.TeamSizeMin,
		TeamSizeMax:         tp.TeamSizeMax,
		TimeToValueDays:     tp.TimeToValueDays,
		DurabilityMonths:    tp.DurabilityMonths,
		EaseOfUse:           models.Float(tp.EaseOfUse),
		Actionability:       models.Float(tp.Actionability),
		Accuracy:            models.Float(tp.Accuracy),
		StrategicImpact:     models.Float(tp.StrategicImpact),
		RequiresFacilitator: tp.RequiresFacilitator,
		RequiresSoftware:    tp.RequiresSoftware,
		HasVariants:         tp.HasVariants,
		Keywords:            tp.Keywords,
	}
}

func effectivenessDoc(r *models.EffectivenessRecord) EffectivenessDoc {
	return EffectivenessDoc{
		FrameworkID:       r.FrameworkID,
		SuccessRate:       r.SuccessRate,
		TimeToImpactDays:  r.TimeToImpactDays,
		EffortReturnRatio: models.Float(r.EffortReturnRatio),
		DurabilityMonths:  r.DurabilityMonths,
		ByStage:           rateDoc(r.ByStage),
		ByIndustry:        rateDoc(r.ByIndustry),
		ByTeamSize:        rateDoc(r.ByTeamSize),
		Prerequisites:     r.Prerequisites,
		CommonPitfalls:    r.CommonPitfalls,
		DataPoints:        r.DataPoints,
		ConfidenceLevel:   models.Float(r.ConfidenceLevel),
	}
}

func rateDoc[K ~string](m map[K]float64) map[string]float64 {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[string(k)] = v
	}
	return out
}

func nilIfEmpty(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
