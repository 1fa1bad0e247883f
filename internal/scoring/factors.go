package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/spboyer/stratafit/internal/models"
	"github.com/spboyer/stratafit/internal/normalize"
	"github.com/spboyer/stratafit/internal/taxonomy"
)

const (
	// AdjacentStageCredit is the stage value for a stage one step outside
	// the framework's window.
	AdjacentStageCredit = 0.6

	// FullConfidenceSamples is the sample size at which an effectiveness
	// record counts at its full confidence level.
	FullConfidenceSamples = 100

	archetypeShare = 0.75
	keywordShare   = 0.25

	complexityShare   = 0.6
	practicalityShare = 0.25
	speedShare        = 0.15

	facilitatorPenalty = 0.7
	softwarePenalty    = 0.9
)

// archetypeFactor is the fraction of the context's archetypes and keywords
// the framework covers. A context with no signals scores 0 for every
// framework.
func archetypeFactor(in Input) factorResult {
	ctx := in.Context
	archetypes := ctx.Archetypes()
	if len(archetypes) == 0 && len(ctx.Keywords) == 0 {
		return factorResult{}
	}

	var fr factorResult
	var covered taxonomy.Set[taxonomy.ProblemArchetype]
	if in.Profile != nil {
		covered = in.Profile.ProblemArchetypes
	}

	var archetypeFrac float64
	if len(archetypes) > 0 {
		matched := 0
		for _, a := range archetypes {
			if covered.Has(a) {
				matched++
			}
		}
		archetypeFrac = float64(matched) / float64(len(archetypes))
		for _, sig := range ctx.Signals {
			if !covered.Has(sig.Archetype) {
				continue
			}
			switch sig.Source {
			case models.SourceChallenge:
				fr.rationale = append(fr.rationale, "Matches stated challenge: "+sig.Archetype.Label())
			case models.SourceMetric:
				fr.rationale = append(fr.rationale, fmt.Sprintf("Addresses %s indicated by metrics (%s)", sig.Archetype.Label(), sig.Evidence))
			}
		}
	}

	var keywordFrac float64
	if len(ctx.Keywords) > 0 {
		vocab := frameworkTokens(in)
		var hits []string
		for _, k := range ctx.Keywords {
			if vocab[k] {
				hits = append(hits, k)
			}
		}
		keywordFrac = float64(len(hits)) / float64(len(ctx.Keywords))
		if len(hits) > 0 {
			fr.rationale = append(fr.rationale, "Keyword overlap: "+strings.Join(hits, ", "))
		}
	}

	switch {
	case len(archetypes) > 0 && len(ctx.Keywords) > 0:
		fr.value = archetypeShare*archetypeFrac + keywordShare*keywordFrac
	case len(archetypes) > 0:
		fr.value = archetypeFrac
	default:
		fr.value = keywordFrac
	}
	return fr
}

// frameworkTokens is the stemmed vocabulary a framework answers to: its name
// plus its profile keywords, or its subcategory when it has no profile.
func frameworkTokens(in Input) map[string]bool {
	vocab := make(map[string]bool)
	add := func(s string) {
		for _, tok := range normalize.Tokens(s) {
			vocab[tok] = true
		}
	}
	if in.Framework != nil {
		add(in.Framework.Name)
	}
	if in.Profile != nil {
		for _, k := range in.Profile.Keywords {
			add(k)
		}
	} else if in.Framework != nil {
		add(in.Framework.Subcategory)
	}
	return vocab
}

func stageFactor(in Input) factorResult {
	stage := in.Context.Stage
	if stage == taxonomy.StageUnclassified {
		return factorResult{}
	}
	if in.Profile == nil {
		return factorResult{value: Neutral}
	}
	window := in.Profile.TemporalStages
	switch {
	case len(window) == 0:
		return factorResult{value: 1, rationale: []string{"Applies at every stage"}}
	case window.Has(stage):
		return factorResult{value: 1, rationale: []string{fmt.Sprintf("Designed for the %s stage", words(string(stage)))}}
	}
	for _, s := range window {
		if stage.Adjacent(s) {
			return factorResult{
				value:     AdjacentStageCredit,
				rationale: []string{fmt.Sprintf("Close to its %s stage window", words(string(s)))},
			}
		}
	}
	return factorResult{risks: []string{fmt.Sprintf("Built for %s, not the %s stage", strings.Join(window.Strings(), ", "), words(string(stage)))}}
}

// industryFactor reads the profile's industry contexts, falling back to the
// definition's industry list.
func industryFactor(in Input) factorResult {
	industry := in.Context.Industry
	if industry == taxonomy.IndustryUnclassified {
		return factorResult{}
	}
	var contexts taxonomy.Set[taxonomy.Industry]
	if in.Profile != nil {
		contexts = in.Profile.IndustryContexts
	}
	if len(contexts) == 0 && in.Framework != nil {
		contexts = in.Framework.Industries
	}
	switch {
	case len(contexts) == 0:
		return factorResult{value: Neutral}
	case contexts.Has(taxonomy.IndustryUniversal):
		return factorResult{value: 1, rationale: []string{"Applies across industries"}}
	case contexts.Has(industry):
		return factorResult{value: 1, rationale: []string{fmt.Sprintf("Proven in %s", words(string(industry)))}}
	default:
		return factorResult{}
	}
}

// effectivenessFactor blends the record's base success rate with the stage,
// industry and team-size values that apply, then pulls the blend toward
// Neutral in proportion to how little the record can be trusted.
func effectivenessFactor(in Input) factorResult {
	rec := in.Record
	if rec == nil {
		return factorResult{value: Neutral}
	}
	ctx := in.Context

	values := []float64{rec.SuccessRate}
	if v, ok := rec.ByStage[ctx.Stage]; ok && ctx.Stage != taxonomy.StageUnclassified {
		values = append(values, v)
	}
	if v, ok := rec.ByIndustry[ctx.Industry]; ok && ctx.Industry != taxonomy.IndustryUnclassified {
		values = append(values, v)
	} else if v, ok := rec.ByIndustry[taxonomy.IndustryUniversal]; ok {
		values = append(values, v)
	}
	if v, ok := rec.ByTeamSize[ctx.TeamBucket]; ok {
		values = append(values, v)
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	blended := sum / float64(len(values))

	confidence := rec.ConfidenceLevel * math.Min(1, float64(rec.DataPoints)/FullConfidenceSamples)
	fr := factorResult{value: confidence*blended + (1-confidence)*Neutral}
	if confidence > 0 {
		fr.rationale = append(fr.rationale, fmt.Sprintf("%.0f%% success rate in comparable contexts (confidence %.2f over %d data points)",
			blended*100, confidence, rec.DataPoints))
		if blended < Neutral {
			fr.risks = append(fr.risks, fmt.Sprintf("Below-average track record in comparable contexts (%.0f%%)", blended*100))
		}
	}
	return fr
}

// capabilityFactor weighs whether the team can run the framework: tier
// against team capacity, then practicality and time to value.
func capabilityFactor(in Input) factorResult {
	ctx := in.Context
	var tier taxonomy.ComplexityTier
	if in.Framework != nil {
		tier = in.Framework.Complexity
	}
	if in.Profile != nil && in.Profile.Complexity != "" {
		tier = in.Profile.Complexity
	}

	var fr factorResult
	fit := Neutral
	if tier.Level() > 0 {
		capacity := taxonomy.CapacityFor(ctx.TeamSize)
		if excess := tier.Level() - capacity.Level(); excess <= 0 {
			fit = 1
			fr.rationale = append(fr.rationale, fmt.Sprintf("%s complexity suits a team of %d", capitalize(words(string(tier))), ctx.TeamSize))
		} else {
			fit = math.Max(0.1, 1-0.25*float64(excess))
			fr.risks = append(fr.risks, fmt.Sprintf("%s complexity exceeds what a team of %d usually sustains", capitalize(words(string(tier))), ctx.TeamSize))
		}
	}

	practicality, speed := Neutral, Neutral
	if p := in.Profile; p != nil {
		if p.RequiresFacilitator && ctx.TeamSize < 10 {
			fit *= facilitatorPenalty
			fr.risks = append(fr.risks, "Needs a trained facilitator, which small teams rarely have")
		}
		if p.RequiresSoftware && ctx.TeamBucket == taxonomy.TeamSmall {
			fit *= softwarePenalty
			fr.risks = append(fr.risks, "Needs dedicated software tooling")
		}
		practicality = (p.EaseOfUse + p.Actionability + p.Accuracy + p.StrategicImpact) / (4 * models.MaxRating)
		speed = 1 / (1 + float64(p.TimeToValueDays)/30)
		if p.TimeToValueDays > 0 && p.TimeToValueDays <= 14 {
			fr.rationale = append(fr.rationale, fmt.Sprintf("Delivers value in about %d days", p.TimeToValueDays))
		}
	}

	fr.value = complexityShare*fit + practicalityShare*practicality + speedShare*speed
	return fr
}

func words(s string) string { return strings.ReplaceAll(s, "_", " ") }

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
