package normalize

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"testing"

	"github.com/spboyer/stratafit/internal/models"
	"github.com/spboyer/stratafit/internal/taxonomy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intp(v int) *int { return &v }

func TestNormalize_ResolvesAxes(t *testing.T) {
	ctx, err := Normalize(models.StartupContext{
		Stage:    "pre_seed",
		Industry: "saas",
		TeamSize: 5,
	}, Options{})
	require.NoError(t, err)

	assert.Equal(t, taxonomy.StageFormation, ctx.Stage)
	assert.Equal(t, taxonomy.ResolvedAlias, ctx.StageResolution)
	assert.Equal(t, "pre_seed", ctx.RawStage)
	assert.Equal(t, taxonomy.IndustryB2BSaaS, ctx.Industry)
	assert.Equal(t, taxonomy.TeamSmall, ctx.TeamBucket)
	assert.Equal(t, DefaultTimelineDays, ctx.TimelineDays)
	assert.Equal(t, models.UrgencyLow, ctx.Urgency)
	assert.False(t, ctx.HasSignals())
}

func TestNormalize_LogsToGivenLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := Normalize(models.StartupContext{Stage: "seed", TeamSize: 4}, Options{Logger: logger})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "context normalized")
	assert.Contains(t, buf.String(), "stage=")
}

func TestNormalize_UnclassifiedFailsSoft(t *testing.T) {
	ctx, err := Normalize(models.StartupContext{
		Stage:    "thriving somehow",
		Industry: "underwater basket weaving",
		TeamSize: 3,
	}, Options{})
	require.NoError(t, err)
	assert.Equal(t, taxonomy.StageUnclassified, ctx.Stage)
	assert.Equal(t, taxonomy.Unclassified, ctx.StageResolution)
	assert.Equal(t, taxonomy.IndustryUnclassified, ctx.Industry)
	assert.Equal(t, taxonomy.Unclassified, ctx.IndustryResolution)
}

func TestNormalize_Challenges(t *testing.T) {
	ctx, err := Normalize(models.StartupContext{
		Stage:    "series_a",
		TeamSize: 30,
		Challenges: []string{
			"Intense competition from larger incumbents",
			"  ",
			"Our LTV/CAC looks weak and churn is rising",
			"the weather",
		},
	}, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Intense competition from larger incumbents",
		"Our LTV/CAC looks weak and churn is rising",
		"the weather",
	}, ctx.Challenges)

	assert.Equal(t, taxonomy.Set[taxonomy.ProblemArchetype]{
		taxonomy.ProblemCompetitiveStrategy,
		taxonomy.ProblemGrowthMechanics,
		taxonomy.ProblemUnitEconomics,
	}, ctx.Archetypes())
	for _, s := range ctx.Signals {
		assert.Equal(t, models.SourceChallenge, s.Source)
	}
	assert.Contains(t, ctx.Keywords, "competition")
	assert.Contains(t, ctx.Keywords, "incumbent")
	assert.Contains(t, ctx.Keywords, "ltv")
	assert.NotContains(t, ctx.Keywords, "the")
}

func TestNormalize_DerivedChallenges(t *testing.T) {
	raw := models.StartupContext{
		Stage:    "series_b",
		TeamSize: 40,
		Metrics: models.Metrics{
			RunwayMonths:       models.Float(9),
			LTVCACRatio:        models.Float(2.1),
			GrowthRatePercent:  models.Float(35),
			MarketSharePercent: models.Float(4),
		},
	}

	without, err := Normalize(raw, Options{})
	require.NoError(t, err)
	assert.Empty(t, without.Signals)

	ctx, err := Normalize(raw, Options{DeriveChallenges: true})
	require.NoError(t, err)

	got := map[taxonomy.ProblemArchetype]string{}
	for _, s := range ctx.Signals {
		assert.Equal(t, models.SourceMetric, s.Source)
		got[s.Archetype] = s.Evidence
	}
	assert.Contains(t, got[taxonomy.ProblemFinancialPlanning], "runway of 9 months")
	assert.Contains(t, got[taxonomy.ProblemUnitEconomics], "LTV/CAC of 2.1")
	assert.Contains(t, got, taxonomy.ProblemCompetitiveStrategy)
	assert.Contains(t, got, taxonomy.ProblemPortfolioOptimization)
	assert.NotContains(t, got, taxonomy.ProblemGrowthMechanics, "35% growth is healthy")
}

func TestNormalize_MissingMetricsDeriveNothing(t *testing.T) {
	ctx, err := Normalize(models.StartupContext{Stage: "seed", TeamSize: 4}, Options{DeriveChallenges: true})
	require.NoError(t, err)
	assert.Empty(t, ctx.Signals, "absent metrics must not be read as zero")
}

func TestNormalize_ZeroIsAValue(t *testing.T) {
	ctx, err := Normalize(models.StartupContext{
		TeamSize: 4,
		Metrics:  models.Metrics{RunwayMonths: models.Float(0)},
	}, Options{DeriveChallenges: true})
	require.NoError(t, err)
	require.Len(t, ctx.Signals, 1)
	assert.Equal(t, taxonomy.ProblemFinancialPlanning, ctx.Signals[0].Archetype)
	assert.Equal(t, models.UrgencyCritical, ctx.Urgency)
}

func TestNormalize_InputErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  models.StartupContext
		want string
	}{
		{"zero team", models.StartupContext{TeamSize: 0}, "team_size must be at least 1"},
		{"negative runway", models.StartupContext{TeamSize: 2, Metrics: models.Metrics{RunwayMonths: models.Float(-1)}}, "runway_months must not be negative"},
		{"market share", models.StartupContext{TeamSize: 2, Metrics: models.Metrics{MarketSharePercent: models.Float(101)}}, "market_share_percent must be at most 100"},
		{"nan", models.StartupContext{TeamSize: 2, Metrics: models.Metrics{GrowthRatePercent: models.Float(math.NaN())}}, "growth_rate_percent must be a finite number"},
		{"timeline", models.StartupContext{TeamSize: 2, TimelineDays: intp(-5)}, "timeline_days must not be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.raw, Options{})
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidContext))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestNormalize_NegativeGrowthAllowed(t *testing.T) {
	_, err := Normalize(models.StartupContext{TeamSize: 2, Metrics: models.Metrics{GrowthRatePercent: models.Float(-12)}}, Options{})
	require.NoError(t, err)
}

func TestUrgency(t *testing.T) {
	tests := []struct {
		name     string
		raw      models.StartupContext
		timeline int
		want     models.Urgency
	}{
		{"crisis", models.StartupContext{Crisis: true}, 365, models.UrgencyCritical},
		{"short runway", models.StartupContext{Metrics: models.Metrics{RunwayMonths: models.Float(5)}}, 365, models.UrgencyCritical},
		{"runway six months", models.StartupContext{Metrics: models.Metrics{RunwayMonths: models.Float(6)}}, 365, models.UrgencyLow},
		{"fundraising", models.StartupContext{Fundraising: true}, 365, models.UrgencyHigh},
		{"tight timeline", models.StartupContext{}, 20, models.UrgencyHigh},
		{"medium timeline", models.StartupContext{}, 60, models.UrgencyMedium},
		{"default timeline", models.StartupContext{}, DefaultTimelineDays, models.UrgencyLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Urgency(tt.raw, tt.timeline))
		})
	}
}

func TestCompare(t *testing.T) {
	m := models.Metrics{RunwayMonths: models.Float(8)}

	assert.Equal(t, Pass, Compare(m, models.MetricRunway, models.OpLess, 12))
	assert.Equal(t, Fail, Compare(m, models.MetricRunway, models.OpGreater, 12))
	assert.Equal(t, Pass, Compare(m, models.MetricRunway, models.OpEqual, 8))
	assert.Equal(t, Pass, Compare(m, models.MetricRunway, models.OpLessEqual, 8))
	assert.Equal(t, Fail, Compare(m, models.MetricRunway, models.OpGreaterEqual, 9))
	assert.Equal(t, Unknown, Compare(m, models.MetricLTVCAC, models.OpLess, 3))
	assert.Equal(t, Unknown, Compare(m, models.MetricRunway, "between", 3))

	assert.Equal(t, "unknown", Unknown.String())
	assert.Equal(t, "pass", Pass.String())
	assert.Equal(t, "fail", Fail.String())
}

func TestMatchArchetypes(t *testing.T) {
	tests := []struct {
		statement string
		want      []taxonomy.ProblemArchetype
	}{
		{"intense competition from larger incumbents", []taxonomy.ProblemArchetype{taxonomy.ProblemCompetitiveStrategy}},
		{"Improving unit economics", []taxonomy.ProblemArchetype{taxonomy.ProblemUnitEconomics}},
		{"CAC keeps climbing", []taxonomy.ProblemArchetype{taxonomy.ProblemUnitEconomics}},
		{"We lack product-market fit", []taxonomy.ProblemArchetype{taxonomy.ProblemProductMarketFit}},
		{"R&D pipeline is empty", []taxonomy.ProblemArchetype{taxonomy.ProblemInnovationManagement}},
		{"nothing relevant here", nil},
	}
	for _, tt := range tests {
		t.Run(tt.statement, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchArchetypes(tt.statement))
		})
	}
}

func TestTokens(t *testing.T) {
	assert.Equal(t, []string{"intense", "competition", "larger", "incumbent"}, Tokens("Intense competition from larger incumbents"))
	assert.Equal(t, []string{"unit", "economic"}, Tokens("unit_economics"))
	assert.Equal(t, []string{"company"}, Tokens("companies"))
	assert.Equal(t, []string{"process"}, Tokens("process"))
	assert.Empty(t, Tokens("to be or not"))
}
