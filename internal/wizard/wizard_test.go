package wizard

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spboyer/stratafit/internal/models"
	"github.com/spboyer/stratafit/internal/taxonomy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswers_Context(t *testing.T) {
	a := &Answers{
		Name:         " Acme ",
		Stage:        "seed",
		Industry:     "saas",
		TeamSize:     "12",
		Challenges:   []string{"competitive_strategy"},
		Fundraising:  true,
		TimelineDays: "45",
		Metrics: map[models.MetricName]string{
			models.MetricRunway:   "9",
			models.MetricLTVCAC:   " 2.5 ",
			models.MetricBurnRate: "",
		},
	}

	c, err := a.Context()
	require.NoError(t, err)

	timeline := 45
	want := models.StartupContext{
		Name:         "Acme",
		Stage:        "seed",
		Industry:     "saas",
		TeamSize:     12,
		Challenges:   []string{"competitive_strategy"},
		Fundraising:  true,
		TimelineDays: &timeline,
		Metrics: models.Metrics{
			RunwayMonths: models.Float(9),
			LTVCACRatio:  models.Float(2.5),
		},
	}
	if diff := cmp.Diff(want, c); diff != "" {
		t.Errorf("Context() mismatch (-want +got):\n%s", diff)
	}
}

func TestAnswers_ContextErrors(t *testing.T) {
	a := &Answers{
		TeamSize:     "0",
		TimelineDays: "soon",
		Metrics:      map[models.MetricName]string{models.MetricRevenue: "lots"},
	}
	_, err := a.Context()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "team size: must be at least 1")
	assert.Contains(t, err.Error(), `timeline: "soon" is not a whole number`)
	assert.Contains(t, err.Error(), `revenue_usd: "lots" is not a number`)
}

func TestFromContext_RoundTrip(t *testing.T) {
	timeline := 20
	c := models.StartupContext{
		Name:         "Acme",
		Stage:        "growth",
		Industry:     "fintech",
		TeamSize:     40,
		Challenges:   []string{"growth_mechanics"},
		Crisis:       true,
		TimelineDays: &timeline,
		Metrics: models.Metrics{
			GrowthRatePercent: models.Float(12.5),
			CompetitorCount:   models.Float(0),
		},
	}

	a := FromContext(c)
	assert.Equal(t, "40", a.TeamSize)
	assert.Equal(t, "20", a.TimelineDays)
	assert.Equal(t, "12.5", a.Metrics[models.MetricGrowthRate])
	assert.Equal(t, "0", a.Metrics[models.MetricCompetitors], "a known zero stays known")

	got, err := a.Context()
	require.NoError(t, err)
	if diff := cmp.Diff(c, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestFromContext_Empty(t *testing.T) {
	a := FromContext(models.StartupContext{})
	assert.Empty(t, a.TeamSize)
	assert.Empty(t, a.TimelineDays)
	assert.Empty(t, a.Metrics)
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		positive bool
		want     int
		wantErr  string
	}{
		{"team size", " 8 ", true, 8, ""},
		{"zero team", "0", true, 0, "must be at least 1"},
		{"zero timeline", "0", false, 0, ""},
		{"negative", "-3", false, 0, "must not be negative"},
		{"blank", "  ", true, 0, "a number is required"},
		{"fraction", "2.5", true, 0, `"2.5" is not a whole number`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCount(tt.input, tt.positive)
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOptions(t *testing.T) {
	stages := stageOptions()
	require.Len(t, stages, len(taxonomy.Stages()))
	assert.Equal(t, "pre formation", stages[0].Key)
	assert.Equal(t, "pre_formation", stages[0].Value)

	for _, o := range industryOptions() {
		assert.NotEqual(t, string(taxonomy.IndustryUniversal), o.Value, "universal is a catalog marker, not a choice")
	}

	assert.Len(t, challengeOptions(), len(taxonomy.ProblemArchetypes()))
	assert.Len(t, metricFields(make([]string, len(models.MetricNames))), len(models.MetricNames))
}
