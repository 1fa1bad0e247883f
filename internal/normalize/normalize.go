// Package normalize turns a raw startup context into a canonical one.
//
// Stage and industry strings are resolved against the taxonomy and fail soft
// to unclassified. Challenge statements are matched against a phrase
// vocabulary to raise problem archetypes, and optionally the metrics raise
// archetypes of their own. Missing metrics stay missing.
package normalize

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spboyer/stratafit/internal/models"
	"github.com/spboyer/stratafit/internal/taxonomy"
)

// ErrInvalidContext wraps every input error reported by Normalize.
var ErrInvalidContext = errors.New("invalid startup context")

// DefaultTimelineDays is the decision timeline assumed when none is given.
const DefaultTimelineDays = 90

// Options controls normalization.
type Options struct {
	// DeriveChallenges raises archetypes from metric thresholds in addition
	// to the stated challenges.
	DeriveChallenges bool
	// Logger receives the resolved context at debug level. Nil uses
	// slog.Default().
	Logger *slog.Logger
}

// Normalize validates raw and resolves it onto the taxonomy. Input errors
// wrap ErrInvalidContext; unresolvable stage or industry strings are not
// errors.
func Normalize(raw models.StartupContext, opts Options) (*models.CanonicalContext, error) {
	var problems []string
	if raw.TeamSize < 1 {
		problems = append(problems, fmt.Sprintf("team_size must be at least 1, got %d", raw.TeamSize))
	}
	if raw.TimelineDays != nil && *raw.TimelineDays < 0 {
		problems = append(problems, fmt.Sprintf("timeline_days must not be negative, got %d", *raw.TimelineDays))
	}
	problems = append(problems, checkMetrics(raw.Metrics)...)
	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidContext, strings.Join(problems, "; "))
	}

	ctx := &models.CanonicalContext{
		RawStage:     raw.Stage,
		RawIndustry:  raw.Industry,
		TeamSize:     raw.TeamSize,
		TeamBucket:   taxonomy.BucketFor(raw.TeamSize),
		Metrics:      raw.Metrics,
		TimelineDays: DefaultTimelineDays,
	}
	if raw.TimelineDays != nil {
		ctx.TimelineDays = *raw.TimelineDays
	}
	ctx.Stage, ctx.StageResolution = taxonomy.LookupStage(raw.Stage)
	ctx.Industry, ctx.IndustryResolution = taxonomy.LookupIndustry(raw.Industry)

	seenKeyword := make(map[string]bool)
	for _, statement := range raw.Challenges {
		statement = strings.TrimSpace(statement)
		if statement == "" {
			continue
		}
		ctx.Challenges = append(ctx.Challenges, statement)
		for _, a := range MatchArchetypes(statement) {
			ctx.Signals = addSignal(ctx.Signals, models.ArchetypeSignal{
				Archetype: a,
				Source:    models.SourceChallenge,
				Evidence:  statement,
			})
		}
		for _, tok := range Tokens(statement) {
			if !seenKeyword[tok] {
				seenKeyword[tok] = true
				ctx.Keywords = append(ctx.Keywords, tok)
			}
		}
	}

	if opts.DeriveChallenges {
		for _, s := range deriveSignals(ctx) {
			ctx.Signals = addSignal(ctx.Signals, s)
		}
	}
	ctx.Urgency = Urgency(raw, ctx.TimelineDays)

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("context normalized",
		"stage", ctx.Stage, "stage_resolution", ctx.StageResolution,
		"industry", ctx.Industry, "industry_resolution", ctx.IndustryResolution,
		"team_bucket", ctx.TeamBucket, "signals", len(ctx.Signals), "keywords", len(ctx.Keywords),
		"urgency", ctx.Urgency)
	return ctx, nil
}

// addSignal appends s unless the same archetype was already raised from the
// same source.
func addSignal(list []models.ArchetypeSignal, s models.ArchetypeSignal) []models.ArchetypeSignal {
	for _, existing := range list {
		if existing.Archetype == s.Archetype && existing.Source == s.Source {
			return list
		}
	}
	return append(list, s)
}

// deriveSignals raises archetypes from metric thresholds. Unknown metrics
// raise nothing.
func deriveSignals(ctx *models.CanonicalContext) []models.ArchetypeSignal {
	m := ctx.Metrics
	var out []models.ArchetypeSignal
	add := func(a taxonomy.ProblemArchetype, format string, args ...any) {
		out = append(out, models.ArchetypeSignal{
			Archetype: a,
			Source:    models.SourceMetric,
			Evidence:  fmt.Sprintf(format, args...),
		})
	}

	if Below(m, models.MetricRunway, 12) == Pass {
		add(taxonomy.ProblemFinancialPlanning, "runway of %g months is under 12", *m.RunwayMonths)
	}
	if Below(m, models.MetricLTVCAC, 3) == Pass {
		add(taxonomy.ProblemUnitEconomics, "LTV/CAC of %g is under 3", *m.LTVCACRatio)
	}
	if Below(m, models.MetricGrowthRate, 20) == Pass {
		add(taxonomy.ProblemGrowthMechanics, "growth of %g%% is under 20%%", *m.GrowthRatePercent)
	}
	if Above(m, models.MetricCompetitors, 50) == Pass {
		add(taxonomy.ProblemCompetitiveStrategy, "%g competitors exceed 50", *m.CompetitorCount)
	} else if Above(m, models.MetricMarketShare, 1) == Pass {
		add(taxonomy.ProblemCompetitiveStrategy, "market share of %g%% puts the company in direct competition", *m.MarketSharePercent)
	}
	switch ctx.Stage {
	case taxonomy.StageTraction, taxonomy.StageGrowth, taxonomy.StageScale:
		if ctx.TeamSize > 20 {
			add(taxonomy.ProblemPortfolioOptimization, "team of %d at %s stage must allocate resources across initiatives", ctx.TeamSize, ctx.Stage)
		}
	}
	return out
}

// Urgency grades how quickly results are needed. Crisis or a known runway
// under six months is critical; fundraising or a timeline under 30 days is
// high; a timeline under 90 days is medium.
func Urgency(raw models.StartupContext, timelineDays int) models.Urgency {
	switch {
	case raw.Crisis || Below(raw.Metrics, models.MetricRunway, 6) == Pass:
		return models.UrgencyCritical
	case raw.Fundraising || timelineDays < 30:
		return models.UrgencyHigh
	case timelineDays < 90:
		return models.UrgencyMedium
	default:
		return models.UrgencyLow
	}
}
