package normalize

import (
	"strings"
	"unicode"

	"github.com/spboyer/stratafit/internal/taxonomy"
)

// vocabulary maps each problem archetype to the phrases that signal it in a
// challenge statement. Phrases match at word starts, so "competit" covers
// "competition", "competitive" and "competitors".
var vocabulary = []struct {
	archetype taxonomy.ProblemArchetype
	phrases   []string
}{
	{taxonomy.ProblemCustomerDiscovery, []string{"customer discovery", "customer needs", "customer interview", "user research", "target customer", "early adopter", "who our customer", "problem validation"}},
	{taxonomy.ProblemProductMarketFit, []string{"product market fit", "pmf", "nobody uses", "low adoption", "adoption", "traction"}},
	{taxonomy.ProblemBusinessModelDesign, []string{"business model", "revenue model", "monetiz", "monetis", "pricing"}},
	{taxonomy.ProblemGrowthMechanics, []string{"growth", "acquisition", "acquiring", "retention", "churn", "activation", "virality", "funnel", "stalled", "plateau"}},
	{taxonomy.ProblemUnitEconomics, []string{"unit economics", "ltv", "cac", "payback", "margin", "profitab", "customer acquisition cost"}},
	{taxonomy.ProblemCompetitiveStrategy, []string{"competit", "incumbent", "rival", "positioning", "differentiat", "commoditi"}},
	{taxonomy.ProblemMarketAnalysis, []string{"market size", "market analysis", "market research", "industry trend", "tam", "new market", "market entry"}},
	{taxonomy.ProblemPortfolioOptimization, []string{"portfolio", "resource allocation", "prioritiz", "prioritis", "product lines", "too many initiatives"}},
	{taxonomy.ProblemInnovationManagement, []string{"innovat", "new product", "r&d", "disrupt"}},
	{taxonomy.ProblemOperationalExcellence, []string{"operations", "operational", "efficien", "process", "bottleneck", "quality", "six sigma"}},
	{taxonomy.ProblemOrganizationalDesign, []string{"organization", "organisation", "culture", "alignment", "misalign", "org structure", "silos", "reorg"}},
	{taxonomy.ProblemFinancialPlanning, []string{"financial", "forecast", "budget", "cash flow", "cash", "runway", "burn", "fundrais", "funding"}},
	{taxonomy.ProblemRiskManagement, []string{"risk", "compliance", "security", "regulat", "lawsuit"}},
	{taxonomy.ProblemTalentManagement, []string{"talent", "hiring", "recruit", "attrition", "people management", "hr"}},
	{taxonomy.ProblemDigitalTransformation, []string{"digital", "transformation", "automat", "legacy system"}},
}

// stopwords are dropped from challenge keywords.
var stopwords = map[string]bool{
	"the": true, "and": true, "our": true, "for": true, "with": true, "from": true,
	"are": true, "not": true, "too": true, "very": true, "have": true, "has": true,
	"but": true, "that": true, "this": true, "into": true, "more": true, "less": true,
	"than": true, "need": true, "needs": true, "how": true, "what": true, "why": true,
	"who": true, "can": true, "cannot": true, "can't": true, "don't": true, "its": true,
	"their": true, "they": true, "them": true, "was": true, "were": true, "been": true,
	"being": true, "will": true, "would": true, "should": true, "could": true, "all": true,
	"any": true, "some": true, "lot": true, "lots": true, "much": true, "many": true,
	"get": true, "got": true, "out": true, "about": true, "over": true, "under": true,
}

// phraseText lowercases s and reduces it to space-separated words. It keeps
// '&' so that "r&d" survives.
func phraseText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := true
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '&' || r == '\'' {
			b.WriteRune(r)
			space = false
			continue
		}
		if !space {
			b.WriteByte(' ')
			space = true
		}
	}
	return strings.TrimSpace(b.String())
}

// MatchArchetypes returns every archetype whose vocabulary occurs in the
// statement, in vocabulary order. No match returns nil.
func MatchArchetypes(statement string) []taxonomy.ProblemArchetype {
	text := " " + phraseText(statement)
	var out []taxonomy.ProblemArchetype
	for _, v := range vocabulary {
		for _, p := range v.phrases {
			if strings.Contains(text, " "+p) {
				out = append(out, v.archetype)
				break
			}
		}
	}
	return out
}

// Tokens splits s into content words: lowercased, stopwords and words shorter
// than three characters removed, plural endings folded.
func Tokens(s string) []string {
	var out []string
	for _, w := range strings.Fields(phraseText(strings.ReplaceAll(s, "_", " "))) {
		w = strings.Trim(w, "'")
		if len(w) < 3 || stopwords[w] {
			continue
		}
		out = append(out, Stem(w))
	}
	return out
}

// Stem folds simple English plurals ("competitors" -> "competitor").
func Stem(w string) string {
	switch {
	case len(w) > 4 && strings.HasSuffix(w, "ies"):
		return w[:len(w)-3] + "y"
	case len(w) > 4 && strings.HasSuffix(w, "ss"):
		return w
	case len(w) > 4 && strings.HasSuffix(w, "s"):
		return w[:len(w)-1]
	}
	return w
}
