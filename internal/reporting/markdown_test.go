package reporting

import (
	"testing"
	"time"

	"github.com/spboyer/stratafit/internal/journey"
	"github.com/spboyer/stratafit/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdown(t *testing.T) {
	md := Markdown(sampleResult(), MarkdownOptions{Date: time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)})

	assert.Contains(t, md, "# Framework Recommendation\n")
	assert.Contains(t, md, "_Generated 2026-03-04_")
	assert.Contains(t, md, `- **Stage**: Traction (from "series_a", alias)`)
	assert.Contains(t, md, "- **Industry**: B2b Saas\n")
	assert.Contains(t, md, "- competitive strategy (challenge: intense competition from larger incumbents)")
	assert.Contains(t, md, "| 1 | Porter's Five Forces | Strategy | 0.650 | Good fit (0.60-0.75) |")
	assert.Contains(t, md, "### 1. Porter's Five Forces")
	assert.Contains(t, md, "- **Factors**: archetype 0.50")
	assert.Contains(t, md, "**Requirements**: Basic market data")
	assert.Contains(t, md, "**Pairs well with**: swot_analysis")
	assert.Contains(t, md, "**Next frameworks**: competitive_positioning")
	assert.Contains(t, md, "- `bcg_matrix`: stage traction is outside growth, scale, maturity")
}

func TestMarkdown_NoEligible(t *testing.T) {
	md := Markdown(&models.SelectionResult{
		Success:    true,
		Status:     models.StatusNoEligible,
		Message:    "none of the 3 catalog frameworks applies to this context",
		Frameworks: []models.RankedFramework{},
		Excluded:   []models.Exclusion{{ID: "a", Reason: "team size 100000 is above the maximum of 500"}},
	}, MarkdownOptions{Title: "Acme"})

	assert.Contains(t, md, "# Acme\n")
	assert.Contains(t, md, "**no_eligible** No framework in the catalog applies to this context.")
	assert.Contains(t, md, "none of the 3 catalog frameworks applies")
	assert.Contains(t, md, "- `a`: team size 100000 is above the maximum of 500")
	assert.NotContains(t, md, "Recommended Frameworks")
}

func TestJourneyMarkdown(t *testing.T) {
	j := &journey.Journey{
		Success:         true,
		Status:          models.StatusOK,
		TotalFrameworks: 2,
		EstimatedDays:   21,
		Phases: []journey.PhasePlan{
			{Phase: journey.PhaseImmediate, Window: journey.PhaseImmediate.Window(), Steps: []journey.Step{
				{Framework: models.RankedFramework{ID: "lean_canvas", Name: "Lean Canvas", Score: 0.7}, EstimatedDays: 7},
			}},
			{Phase: journey.PhaseShortTerm, Window: journey.PhaseShortTerm.Window(), Steps: []journey.Step{
				{Framework: models.RankedFramework{ID: "business_model_canvas", Name: "Business Model Canvas", Score: 0.6}, EstimatedDays: 14},
			}},
		},
		CriticalPath: []string{"lean_canvas", "business_model_canvas"},
	}
	md := JourneyMarkdown(j, MarkdownOptions{})
	assert.Contains(t, md, "# Framework Journey")
	assert.Contains(t, md, "**2 frameworks** over an estimated **21 days**.")
	assert.Contains(t, md, "## Immediate (next 30 days)")
	assert.Contains(t, md, "## Short Term (30 to 90 days)")
	assert.Contains(t, md, "- **Lean Canvas** (7 days, score 0.700)")
	assert.Contains(t, md, "lean_canvas → business_model_canvas")
}

func TestHTML(t *testing.T) {
	html, err := HTML(Markdown(sampleResult(), MarkdownOptions{}))
	require.NoError(t, err)
	assert.Contains(t, html, "<h1>Framework Recommendation</h1>")
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "<strong>Fit Score</strong>")
}
