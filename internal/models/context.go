package models

import "github.com/spboyer/stratafit/internal/taxonomy"

// MetricName identifies one optional financial or growth metric.
type MetricName string

const (
	MetricRevenue     MetricName = "revenue_usd"
	MetricGrowthRate  MetricName = "growth_rate_percent"
	MetricBurnRate    MetricName = "burn_rate_usd"
	MetricRunway      MetricName = "runway_months"
	MetricLTVCAC      MetricName = "ltv_cac_ratio"
	MetricCustomers   MetricName = "customer_count"
	MetricCompetitors MetricName = "competitor_count"
	MetricMarketShare MetricName = "market_share_percent"
)

// MetricNames lists every recognized metric in a stable order.
var MetricNames = []MetricName{
	MetricRevenue, MetricGrowthRate, MetricBurnRate, MetricRunway,
	MetricLTVCAC, MetricCustomers, MetricCompetitors, MetricMarketShare,
}

// Metrics holds optional numeric signals. A nil field is unknown, never zero.
type Metrics struct {
	RevenueUSD         *float64 `json:"revenue_usd,omitempty" yaml:"revenue_usd,omitempty"`
	GrowthRatePercent  *float64 `json:"growth_rate_percent,omitempty" yaml:"growth_rate_percent,omitempty"`
	BurnRateUSD        *float64 `json:"burn_rate_usd,omitempty" yaml:"burn_rate_usd,omitempty"`
	RunwayMonths       *float64 `json:"runway_months,omitempty" yaml:"runway_months,omitempty"`
	LTVCACRatio        *float64 `json:"ltv_cac_ratio,omitempty" yaml:"ltv_cac_ratio,omitempty"`
	CustomerCount      *float64 `json:"customer_count,omitempty" yaml:"customer_count,omitempty"`
	CompetitorCount    *float64 `json:"competitor_count,omitempty" yaml:"competitor_count,omitempty"`
	MarketSharePercent *float64 `json:"market_share_percent,omitempty" yaml:"market_share_percent,omitempty"`
}

// Get returns the value of a metric and whether it is known.
func (m Metrics) Get(name MetricName) (float64, bool) {
	var p *float64
	switch name {
	case MetricRevenue:
		p = m.RevenueUSD
	case MetricGrowthRate:
		p = m.GrowthRatePercent
	case MetricBurnRate:
		p = m.BurnRateUSD
	case MetricRunway:
		p = m.RunwayMonths
	case MetricLTVCAC:
		p = m.LTVCACRatio
	case MetricCustomers:
		p = m.CustomerCount
	case MetricCompetitors:
		p = m.CompetitorCount
	case MetricMarketShare:
		p = m.MarketSharePercent
	}
	if p == nil {
		return 0, false
	}
	return *p, true
}

// Set assigns a metric value. Unknown names are ignored and reported false.
func (m *Metrics) Set(name MetricName, v float64) bool {
	switch name {
	case MetricRevenue:
		m.RevenueUSD = &v
	case MetricGrowthRate:
		m.GrowthRatePercent = &v
	case MetricBurnRate:
		m.BurnRateUSD = &v
	case MetricRunway:
		m.RunwayMonths = &v
	case MetricLTVCAC:
		m.LTVCACRatio = &v
	case MetricCustomers:
		m.CustomerCount = &v
	case MetricCompetitors:
		m.CompetitorCount = &v
	case MetricMarketShare:
		m.MarketSharePercent = &v
	default:
		return false
	}
	return true
}

// Float returns a pointer to v, for building Metrics literals.
func Float(v float64) *float64 { return &v }

// StartupContext is the raw description of an organization submitted for
// selection.
type StartupContext struct {
	Name         string   `json:"name,omitempty" yaml:"name,omitempty"`
	Stage        string   `json:"stage" yaml:"stage"`
	Industry     string   `json:"industry" yaml:"industry"`
	TeamSize     int      `json:"team_size" yaml:"team_size"`
	Metrics      Metrics  `json:"metrics" yaml:"metrics"`
	Challenges   []string `json:"challenges,omitempty" yaml:"challenges,omitempty"`
	Crisis       bool     `json:"crisis,omitempty" yaml:"crisis,omitempty"`
	Fundraising  bool     `json:"fundraising,omitempty" yaml:"fundraising,omitempty"`
	TimelineDays *int     `json:"timeline_days,omitempty" yaml:"timeline_days,omitempty"`
}

// Urgency describes how quickly the organization needs results.
type Urgency string

const (
	UrgencyCritical Urgency = "critical"
	UrgencyHigh     Urgency = "high"
	UrgencyMedium   Urgency = "medium"
	UrgencyLow      Urgency = "low"
)

// SignalSource says where an archetype signal came from.
type SignalSource string

const (
	SourceChallenge SignalSource = "challenge"
	SourceMetric    SignalSource = "metric"
)

// ArchetypeSignal is one problem archetype raised by the context.
type ArchetypeSignal struct {
	Archetype taxonomy.ProblemArchetype `json:"archetype"`
	Source    SignalSource              `json:"source"`
	Evidence  string                    `json:"evidence"`
}

// CanonicalContext is a StartupContext after normalization. Stage and Industry
// are empty when their resolution is unclassified.
type CanonicalContext struct {
	Stage              taxonomy.Stage          `json:"stage"`
	StageResolution    taxonomy.Resolution     `json:"stage_resolution"`
	RawStage           string                  `json:"raw_stage,omitempty"`
	Industry           taxonomy.Industry       `json:"industry"`
	IndustryResolution taxonomy.Resolution     `json:"industry_resolution"`
	RawIndustry        string                  `json:"raw_industry,omitempty"`
	TeamSize           int                     `json:"team_size"`
	TeamBucket         taxonomy.TeamSizeBucket `json:"team_bucket"`
	Metrics            Metrics                 `json:"metrics"`
	Challenges         []string                `json:"challenges,omitempty"`
	Signals            []ArchetypeSignal       `json:"signals,omitempty"`
	Keywords           []string                `json:"keywords,omitempty"`
	Urgency            Urgency                 `json:"urgency"`
	TimelineDays       int                     `json:"timeline_days"`
}

// Archetypes returns the distinct archetypes across all signals.
func (c *CanonicalContext) Archetypes() taxonomy.Set[taxonomy.ProblemArchetype] {
	var out taxonomy.Set[taxonomy.ProblemArchetype]
	for _, s := range c.Signals {
		out = out.Add(s.Archetype)
	}
	return out
}

// HasSignals reports whether the context raised any archetype or keyword.
func (c *CanonicalContext) HasSignals() bool {
	return len(c.Signals) > 0 || len(c.Keywords) > 0
}
