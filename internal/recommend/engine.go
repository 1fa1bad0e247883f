// Package recommend selects, ranks and explains the frameworks that best fit
// a startup context.
package recommend

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spboyer/stratafit/internal/catalog"
	"github.com/spboyer/stratafit/internal/eligibility"
	"github.com/spboyer/stratafit/internal/models"
	"github.com/spboyer/stratafit/internal/normalize"
	"github.com/spboyer/stratafit/internal/scoring"
)

// Documented selection defaults.
const (
	DefaultMaxResults   = 5
	DefaultDiversityCap = 2
)

// Engine runs selections against catalog snapshots. It holds no per-request
// state and is safe for concurrent use.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates an engine. A nil logger uses slog.Default().
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger}
}

// Select recommends frameworks from snap for raw. It never returns an error:
// input problems, an empty catalog and a context no framework applies to are
// reported through the result's Success, Status and Message.
func (e *Engine) Select(snap *catalog.Snapshot, raw models.StartupContext, opts models.SelectionOptions) *models.SelectionResult {
	opts, weights, err := resolveOptions(opts)
	if err != nil {
		return invalid(err)
	}
	ctx, err := normalize.Normalize(raw, normalize.Options{DeriveChallenges: *opts.DeriveChallenges, Logger: e.logger})
	if err != nil {
		return invalid(err)
	}

	result := &models.SelectionResult{
		Success:    true,
		Status:     models.StatusOK,
		Context:    ctx,
		Weights:    weights,
		Frameworks: []models.RankedFramework{},
	}
	if snap == nil || snap.Len() == 0 {
		result.Status = models.StatusEmptyCatalog
		result.Message = "the catalog is empty; there are no frameworks to select from"
		e.logger.Info("selection finished", "status", result.Status)
		return result
	}

	scorer := scoring.New(weights)
	var candidates []candidate
	for _, def := range snap.Frameworks() {
		c := candidate{def: def}
		c.profile, _ = snap.Profile(def.ID)
		c.record, _ = snap.Effectiveness(def.ID)

		v := eligibility.Check(ctx, def, c.profile, eligibility.Options{RelaxStage: opts.RelaxStage})
		if !v.Eligible {
			e.logger.Debug("framework excluded", "framework", def.ID, "rule", v.Rule, "reason", v.Reason)
			result.Excluded = append(result.Excluded, models.Exclusion{ID: def.ID, Reason: v.Reason})
			continue
		}

		c.result = scorer.Score(scoring.Input{Context: ctx, Framework: def, Profile: c.profile, Record: c.record})
		e.logger.Debug("framework scored", "framework", def.ID, "score", c.result.Score, "factors", factorSummary(c.result.Factors))
		candidates = append(candidates, c)
	}
	result.Eligible = len(candidates)

	if len(candidates) == 0 {
		result.Status = models.StatusNoEligible
		result.Message = fmt.Sprintf("none of the %d catalog frameworks applies to this context", snap.Len())
		e.logger.Info("selection finished", "status", result.Status, "excluded", len(result.Excluded))
		return result
	}

	shortlist := diversify(sortCandidates(candidates), opts.MaxResults, opts.DiversityCap)
	result.Frameworks = explain(shortlist)
	e.logger.Info("selection finished",
		"status", result.Status, "eligible", result.Eligible, "returned", len(result.Frameworks),
		"catalog_version", snap.Meta().Version)
	return result
}

// resolveOptions fills documented defaults and resolves weight overrides.
func resolveOptions(opts models.SelectionOptions) (models.SelectionOptions, models.Weights, error) {
	switch {
	case opts.MaxResults < 0:
		return opts, models.Weights{}, fmt.Errorf("max_results must not be negative, got %d", opts.MaxResults)
	case opts.MaxResults == 0:
		opts.MaxResults = DefaultMaxResults
	}
	switch {
	case opts.DiversityCap < 0:
		return opts, models.Weights{}, fmt.Errorf("category_diversity_cap must not be negative, got %d", opts.DiversityCap)
	case opts.DiversityCap == 0:
		opts.DiversityCap = DefaultDiversityCap
	}
	if opts.DeriveChallenges == nil {
		derive := true
		opts.DeriveChallenges = &derive
	}
	weights, err := scoring.ResolveWeights(opts.Weights)
	if err != nil {
		return opts, models.Weights{}, err
	}
	return opts, weights, nil
}

func invalid(err error) *models.SelectionResult {
	return &models.SelectionResult{
		Success:    false,
		Status:     models.StatusInvalidInput,
		Message:    err.Error(),
		Frameworks: []models.RankedFramework{},
	}
}

func factorSummary(factors []models.Factor) string {
	parts := make([]string, len(factors))
	for i, f := range factors {
		parts[i] = fmt.Sprintf("%s=%.2f", f.Name, f.Value)
	}
	return strings.Join(parts, " ")
}
