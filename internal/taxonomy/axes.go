package taxonomy

// Stage is a position in the company lifecycle.
type Stage string

const (
	StagePreFormation Stage = "pre_formation"
	StageFormation    Stage = "formation"
	StageValidation   Stage = "validation"
	StageTraction     Stage = "traction"
	StageGrowth       Stage = "growth"
	StageScale        Stage = "scale"
	StageMaturity     Stage = "maturity"

	// StageUnclassified marks a context whose stage could not be resolved.
	StageUnclassified Stage = ""
)

var stageAxis = axis[Stage]{
	name: "stage",
	members: []Stage{
		StagePreFormation, StageFormation, StageValidation, StageTraction,
		StageGrowth, StageScale, StageMaturity,
	},
	aliases: map[string]Stage{
		"idea":          StagePreFormation,
		"ideation":      StagePreFormation,
		"concept":       StagePreFormation,
		"pre_seed":      StageFormation,
		"founding":      StageFormation,
		"seed":          StageValidation,
		"mvp":           StageValidation,
		"series_a":      StageTraction,
		"early_revenue": StageTraction,
		"series_b":      StageGrowth,
		"expansion":     StageGrowth,
		"series_c":      StageScale,
		"series_d":      StageScale,
		"scaling":       StageScale,
		"late_stage":    StageMaturity,
		"public":        StageMaturity,
		"ipo":           StageMaturity,
		"mature":        StageMaturity,
		"established":   StageMaturity,
	},
}

// Stages returns every stage in lifecycle order.
func Stages() []Stage { return append([]Stage(nil), stageAxis.members...) }

// LookupStage resolves a free-form stage or funding-round label.
func LookupStage(raw string) (Stage, Resolution) { return stageAxis.lookup(raw) }

// ParseStage accepts only exact stage names and known aliases.
func ParseStage(raw string) (Stage, error) { return stageAxis.strict(raw) }

// ParseStages parses a list of stages strictly.
func ParseStages(raw []string) (Set[Stage], error) { return parseSet(stageAxis, raw) }

// Index returns the lifecycle position of s, or -1 when unclassified.
func (s Stage) Index() int {
	for i, m := range stageAxis.members {
		if m == s {
			return i
		}
	}
	return -1
}

// Distance is the number of lifecycle steps between two stages, or -1 when
// either is unclassified.
func (s Stage) Distance(other Stage) int {
	a, b := s.Index(), other.Index()
	if a < 0 || b < 0 {
		return -1
	}
	if a > b {
		return a - b
	}
	return b - a
}

// Adjacent reports whether the stages are exactly one step apart.
func (s Stage) Adjacent(other Stage) bool { return s.Distance(other) == 1 }

// Early reports whether s is before traction.
func (s Stage) Early() bool {
	i := s.Index()
	return i >= 0 && i < StageTraction.Index()
}

// Industry is the market context a framework or company operates in.
type Industry string

const (
	IndustryUniversal          Industry = "universal"
	IndustryB2BSaaS            Industry = "b2b_saas"
	IndustryB2CSaaS            Industry = "b2c_saas"
	IndustryMarketplace        Industry = "marketplace"
	IndustryFintech            Industry = "fintech"
	IndustryHealthtech         Industry = "healthtech"
	IndustryEdtech             Industry = "edtech"
	IndustryEcommerce          Industry = "ecommerce"
	IndustryRetail             Industry = "retail"
	IndustryManufacturing      Industry = "manufacturing"
	IndustryServices           Industry = "services"
	IndustryConsumerGoods      Industry = "consumer_goods"
	IndustryHardware           Industry = "hardware"
	IndustryCleantech          Industry = "cleantech"
	IndustryBiotech            Industry = "biotech"
	IndustryEnterpriseSoftware Industry = "enterprise_software"

	IndustryUnclassified Industry = ""
)

var industryAxis = axis[Industry]{
	name: "industry",
	members: []Industry{
		IndustryUniversal, IndustryB2BSaaS, IndustryB2CSaaS, IndustryMarketplace,
		IndustryFintech, IndustryHealthtech, IndustryEdtech, IndustryEcommerce,
		IndustryRetail, IndustryManufacturing, IndustryServices, IndustryConsumerGoods,
		IndustryHardware, IndustryCleantech, IndustryBiotech, IndustryEnterpriseSoftware,
	},
	aliases: map[string]Industry{
		"all":            IndustryUniversal,
		"any":            IndustryUniversal,
		"all_industries": IndustryUniversal,
		"saas":           IndustryB2BSaaS,
		"saas_b2b":       IndustryB2BSaaS,
		"software":       IndustryB2BSaaS,
		"saas_b2c":       IndustryB2CSaaS,
		"consumer_app":   IndustryB2CSaaS,
		"finance":        IndustryFintech,
		"financial":      IndustryFintech,
		"banking":        IndustryFintech,
		"health":         IndustryHealthtech,
		"healthcare":     IndustryHealthtech,
		"medtech":        IndustryHealthtech,
		"education":      IndustryEdtech,
		"e_commerce":     IndustryEcommerce,
		"consumer":       IndustryConsumerGoods,
		"cpg":            IndustryConsumerGoods,
		"energy":         IndustryCleantech,
		"climate":        IndustryCleantech,
		"life_sciences":  IndustryBiotech,
		"enterprise":     IndustryEnterpriseSoftware,
	},
}

// Industries returns every industry member, the universal marker first.
func Industries() []Industry { return append([]Industry(nil), industryAxis.members...) }

// LookupIndustry resolves a free-form sector label.
func LookupIndustry(raw string) (Industry, Resolution) { return industryAxis.lookup(raw) }

// ParseIndustry accepts only exact industry names and known aliases.
func ParseIndustry(raw string) (Industry, error) { return industryAxis.strict(raw) }

// ParseIndustries parses a list of industries strictly.
func ParseIndustries(raw []string) (Set[Industry], error) { return parseSet(industryAxis, raw) }

// ProblemArchetype is a recurring class of business problem.
type ProblemArchetype string

const (
	ProblemCustomerDiscovery     ProblemArchetype = "customer_discovery"
	ProblemProductMarketFit      ProblemArchetype = "product_market_fit"
	ProblemBusinessModelDesign   ProblemArchetype = "business_model_design"
	ProblemGrowthMechanics       ProblemArchetype = "growth_mechanics"
	ProblemUnitEconomics         ProblemArchetype = "unit_economics_optimization"
	ProblemCompetitiveStrategy   ProblemArchetype = "competitive_strategy"
	ProblemMarketAnalysis        ProblemArchetype = "market_analysis"
	ProblemPortfolioOptimization ProblemArchetype = "portfolio_optimization"
	ProblemInnovationManagement  ProblemArchetype = "innovation_management"
	ProblemOperationalExcellence ProblemArchetype = "operational_excellence"
	ProblemOrganizationalDesign  ProblemArchetype = "organizational_design"
	ProblemFinancialPlanning     ProblemArchetype = "financial_planning"
	ProblemRiskManagement        ProblemArchetype = "risk_management"
	ProblemTalentManagement      ProblemArchetype = "talent_management"
	ProblemDigitalTransformation ProblemArchetype = "digital_transformation"
)

var problemAxis = axis[ProblemArchetype]{
	name: "problem archetype",
	members: []ProblemArchetype{
		ProblemCustomerDiscovery, ProblemProductMarketFit, ProblemBusinessModelDesign,
		ProblemGrowthMechanics, ProblemUnitEconomics, ProblemCompetitiveStrategy,
		ProblemMarketAnalysis, ProblemPortfolioOptimization, ProblemInnovationManagement,
		ProblemOperationalExcellence, ProblemOrganizationalDesign, ProblemFinancialPlanning,
		ProblemRiskManagement, ProblemTalentManagement, ProblemDigitalTransformation,
	},
	aliases: map[string]ProblemArchetype{
		"unit_economics":          ProblemUnitEconomics,
		"competitive_positioning": ProblemCompetitiveStrategy,
		"pmf":                     ProblemProductMarketFit,
		"growth":                  ProblemGrowthMechanics,
	},
}

// ProblemArchetypes returns every archetype.
func ProblemArchetypes() []ProblemArchetype {
	return append([]ProblemArchetype(nil), problemAxis.members...)
}

// ParseProblemArchetypes parses a list of archetypes strictly.
func ParseProblemArchetypes(raw []string) (Set[ProblemArchetype], error) {
	return parseSet(problemAxis, raw)
}

// Label is the human-readable form used in rationales.
func (p ProblemArchetype) Label() string { return label(string(p)) }

// DecisionContext is the kind of decision a framework supports.
type DecisionContext string

const (
	DecisionExploratory  DecisionContext = "exploratory"
	DecisionDiagnostic   DecisionContext = "diagnostic"
	DecisionPrescriptive DecisionContext = "prescriptive"
	DecisionPredictive   DecisionContext = "predictive"
	DecisionEvaluative   DecisionContext = "evaluative"
)

var decisionAxis = axis[DecisionContext]{
	name: "decision context",
	members: []DecisionContext{
		DecisionExploratory, DecisionDiagnostic, DecisionPrescriptive,
		DecisionPredictive, DecisionEvaluative,
	},
}

// ParseDecisionContexts parses a list of decision contexts strictly.
func ParseDecisionContexts(raw []string) (Set[DecisionContext], error) {
	return parseSet(decisionAxis, raw)
}

// DataRequirement is the kind of input data a framework needs.
type DataRequirement string

const (
	DataQualitativeOnly    DataRequirement = "qualitative_only"
	DataBasicQuantitative  DataRequirement = "basic_quantitative"
	DataAdvancedMetrics    DataRequirement = "advanced_metrics"
	DataMarketData         DataRequirement = "market_data"
	DataFinancialStatement DataRequirement = "financial_statements"
)

var dataAxis = axis[DataRequirement]{
	name: "data requirement",
	members: []DataRequirement{
		DataQualitativeOnly, DataBasicQuantitative, DataAdvancedMetrics,
		DataMarketData, DataFinancialStatement,
	},
}

// ParseDataRequirements parses a list of data requirements strictly.
func ParseDataRequirements(raw []string) (Set[DataRequirement], error) {
	return parseSet(dataAxis, raw)
}

// OutcomeType is the kind of result a framework produces.
type OutcomeType string

const (
	OutcomeStrategicClarity        OutcomeType = "strategic_clarity"
	OutcomeTacticalActions         OutcomeType = "tactical_actions"
	OutcomeFinancialProjections    OutcomeType = "financial_projections"
	OutcomeOperationalImprovements OutcomeType = "operational_improvements"
	OutcomeCustomerInsights        OutcomeType = "customer_insights"
	OutcomeCompetitiveAdvantage    OutcomeType = "competitive_advantage"
	OutcomeRiskMitigation          OutcomeType = "risk_mitigation"
	OutcomeInnovationPipeline      OutcomeType = "innovation_pipeline"
	OutcomeOrganizationalAlignment OutcomeType = "organizational_alignment"
	OutcomeGrowthStrategy          OutcomeType = "growth_strategy"
)

var outcomeAxis = axis[OutcomeType]{
	name: "outcome type",
	members: []OutcomeType{
		OutcomeStrategicClarity, OutcomeTacticalActions, OutcomeFinancialProjections,
		OutcomeOperationalImprovements, OutcomeCustomerInsights, OutcomeCompetitiveAdvantage,
		OutcomeRiskMitigation, OutcomeInnovationPipeline, OutcomeOrganizationalAlignment,
		OutcomeGrowthStrategy,
	},
	aliases: map[string]OutcomeType{
		"organizational_design": OutcomeOrganizationalAlignment,
	},
}

// ParseOutcomeTypes parses a list of outcome types strictly.
func ParseOutcomeTypes(raw []string) (Set[OutcomeType], error) {
	return parseSet(outcomeAxis, raw)
}

// Label is the human-readable form used in reports.
func (o OutcomeType) Label() string { return label(string(o)) }

// ComplexityTier orders frameworks by how much effort they take to run.
type ComplexityTier string

const (
	ComplexityPlugAndPlay ComplexityTier = "plug_and_play"
	ComplexitySimple      ComplexityTier = "simple"
	ComplexityModerate    ComplexityTier = "moderate"
	ComplexityComplex     ComplexityTier = "complex"
	ComplexityEnterprise  ComplexityTier = "enterprise"
)

var complexityAxis = axis[ComplexityTier]{
	name: "complexity tier",
	members: []ComplexityTier{
		ComplexityPlugAndPlay, ComplexitySimple, ComplexityModerate,
		ComplexityComplex, ComplexityEnterprise,
	},
	aliases: map[string]ComplexityTier{
		"low":    ComplexitySimple,
		"medium": ComplexityModerate,
		"high":   ComplexityComplex,
	},
}

// ParseComplexity accepts only exact tier names and known aliases.
func ParseComplexity(raw string) (ComplexityTier, error) { return complexityAxis.strict(raw) }

// Level returns 1 (plug and play) through 5 (enterprise), or 0 when unset.
func (c ComplexityTier) Level() int {
	for i, m := range complexityAxis.members {
		if m == c {
			return i + 1
		}
	}
	return 0
}

// CapacityFor is the highest complexity tier a team of the given size can
// usually sustain.
func CapacityFor(teamSize int) ComplexityTier {
	switch {
	case teamSize < 10:
		return ComplexitySimple
	case teamSize < 50:
		return ComplexityModerate
	case teamSize < 200:
		return ComplexityComplex
	default:
		return ComplexityEnterprise
	}
}

// Category is the catalog family a framework belongs to.
type Category string

const (
	CategoryStartup    Category = "startup"
	CategoryGrowth     Category = "growth"
	CategoryStrategy   Category = "strategy"
	CategoryInnovation Category = "innovation"
	CategoryProduct    Category = "product"
	CategoryOperations Category = "operations"
	CategoryFinancial  Category = "financial"
	CategoryCustomer   Category = "customer"
	CategoryLeadership Category = "leadership"
)

var categoryAxis = axis[Category]{
	name: "category",
	members: []Category{
		CategoryStartup, CategoryGrowth, CategoryStrategy, CategoryInnovation,
		CategoryProduct, CategoryOperations, CategoryFinancial, CategoryCustomer,
		CategoryLeadership,
	},
	aliases: map[string]Category{
		"finance":   CategoryFinancial,
		"marketing": CategoryCustomer,
	},
}

// ParseCategory accepts only exact category names and known aliases.
func ParseCategory(raw string) (Category, error) { return categoryAxis.strict(raw) }

// TeamSizeBucket groups team sizes for effectiveness lookups.
type TeamSizeBucket string

const (
	TeamSmall  TeamSizeBucket = "small"
	TeamMedium TeamSizeBucket = "medium"
	TeamLarge  TeamSizeBucket = "large"
)

var bucketAxis = axis[TeamSizeBucket]{
	name:    "team size bucket",
	members: []TeamSizeBucket{TeamSmall, TeamMedium, TeamLarge},
}

// ParseTeamSizeBucket accepts only exact bucket names.
func ParseTeamSizeBucket(raw string) (TeamSizeBucket, error) { return bucketAxis.strict(raw) }

// BucketFor places a team size into small (<=10), medium (11-50) or large.
func BucketFor(teamSize int) TeamSizeBucket {
	switch {
	case teamSize <= 10:
		return TeamSmall
	case teamSize <= 50:
		return TeamMedium
	default:
		return TeamLarge
	}
}

func label(s string) string {
	b := []byte(s)
	for i := range b {
		if b[i] == '_' {
			b[i] = ' '
		}
	}
	return string(b)
}
