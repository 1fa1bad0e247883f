package reporting

import (
	"strings"
	"testing"

	"github.com/spboyer/stratafit/internal/models"
	"github.com/spboyer/stratafit/internal/taxonomy"
	"github.com/stretchr/testify/assert"
)

func TestInterpretScore(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		want  string
	}{
		{"strong", 0.9, "Strong fit (≥0.75)"},
		{"strong boundary", 0.75, "Strong fit (≥0.75)"},
		{"good", 0.7, "Good fit (0.60-0.75)"},
		{"good boundary", 0.6, "Good fit (0.60-0.75)"},
		{"partial", 0.5, "Partial fit (0.45-0.60)"},
		{"weak", 0.2, "Weak fit (<0.45)"},
		{"zero", 0, "Weak fit (<0.45)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InterpretScore(tt.score))
		})
	}
}

func TestInterpretStatus(t *testing.T) {
	assert.Equal(t, "Frameworks recommended.", InterpretStatus(models.StatusOK))
	assert.Contains(t, InterpretStatus(models.StatusNoEligible), "No framework")
	assert.Equal(t, "mystery", InterpretStatus("mystery"))
}

func sampleResult() *models.SelectionResult {
	return &models.SelectionResult{
		Success: true,
		Status:  models.StatusOK,
		Context: &models.CanonicalContext{
			Stage:              taxonomy.StageTraction,
			StageResolution:    taxonomy.ResolvedAlias,
			RawStage:           "series_a",
			Industry:           taxonomy.IndustryB2BSaaS,
			IndustryResolution: taxonomy.ResolvedExact,
			RawIndustry:        "b2b_saas",
			TeamSize:           30,
			TeamBucket:         taxonomy.TeamMedium,
			Urgency:            models.UrgencyMedium,
			TimelineDays:       60,
			Challenges:         []string{"intense competition from larger incumbents"},
			Signals: []models.ArchetypeSignal{{
				Archetype: taxonomy.ProblemCompetitiveStrategy,
				Source:    models.SourceChallenge,
				Evidence:  "intense competition from larger incumbents",
			}},
		},
		Eligible: 2,
		Frameworks: []models.RankedFramework{
			{
				Rank:          1,
				ID:            "porters_five_forces",
				Name:          "Porter's Five Forces",
				Category:      taxonomy.CategoryStrategy,
				Score:         0.65,
				Rationale:     []string{"Matches stated challenge: competitive strategy"},
				Factors:       []models.Factor{{Name: "archetype", Weight: 0.35, Value: 0.5, Contribution: 0.175}},
				Complementary: []string{"swot_analysis"},
				NextSteps:     []string{"competitive_positioning"},
				Requirements:  []string{"Basic market data"},
				Risks:         []string{"Static snapshot of a moving market"},
			},
			{Rank: 2, ID: "swot_analysis", Name: "SWOT Analysis", Category: taxonomy.CategoryStrategy, Score: 0.41, Rationale: []string{"General fit; no specific signal matched"}},
		},
		Excluded: []models.Exclusion{{ID: "bcg_matrix", Reason: "stage traction is outside growth, scale, maturity"}},
	}
}

func TestFormatSummary(t *testing.T) {
	out := FormatSummary(sampleResult())
	assert.Contains(t, out, "Status:   ok Frameworks recommended.")
	assert.Contains(t, out, "stage=traction industry=b2b_saas team=30 urgency=medium")
	assert.Contains(t, out, "Eligible: 2, excluded 1")
	assert.Contains(t, out, "1. Porter's Five Forces (strategy): 0.650 - Good fit (0.60-0.75)")
	assert.Contains(t, out, "+ Matches stated challenge: competitive strategy")
	assert.Contains(t, out, "! Static snapshot of a moving market")
}

func TestFormatSummary_Failure(t *testing.T) {
	out := FormatSummary(&models.SelectionResult{Status: models.StatusInvalidInput, Message: "invalid startup context: team_size must be at least 1, got 0"})
	assert.Contains(t, out, "Message:  invalid startup context")
	assert.False(t, strings.Contains(out, "Ranked frameworks"))
}
