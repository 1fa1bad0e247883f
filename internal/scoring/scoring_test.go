package scoring

import (
	"errors"
	"testing"

	"github.com/spboyer/stratafit/internal/catalog"
	"github.com/spboyer/stratafit/internal/models"
	"github.com/spboyer/stratafit/internal/normalize"
	"github.com/spboyer/stratafit/internal/taxonomy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func growthContext() *models.CanonicalContext {
	return &models.CanonicalContext{
		Stage:      taxonomy.StageGrowth,
		Industry:   taxonomy.IndustryFintech,
		TeamSize:   20,
		TeamBucket: taxonomy.TeamMedium,
	}
}

func factor(t *testing.T, r Result, name string) models.Factor {
	t.Helper()
	for _, f := range r.Factors {
		if f.Name == name {
			return f
		}
	}
	t.Fatalf("factor %s missing from %+v", name, r.Factors)
	return models.Factor{}
}

func TestDefaultWeights(t *testing.T) {
	w := DefaultWeights()
	assert.InDelta(t, 1.0, w.Sum(), 1e-9)
	for _, other := range []float64{w.Stage, w.Industry, w.Effectiveness, w.Capability} {
		assert.Greater(t, w.Archetype, other)
	}
}

func TestResolveWeights(t *testing.T) {
	w, err := ResolveWeights(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultWeights(), w)

	w, err = ResolveWeights(map[string]float64{"archetype": 0.7})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, w.Sum(), 1e-9)
	assert.InDelta(t, 0.7/1.35, w.Archetype, 1e-9)
	assert.InDelta(t, 0.2/1.35, w.Stage, 1e-9)

	w, err = ResolveWeights(map[string]float64{"archetype": 2, "stage": 0, "industry": 0, "effectiveness": 0, "capability": 2})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, w.Archetype, 1e-9)
	assert.InDelta(t, 0.5, w.Capability, 1e-9)
	assert.Zero(t, w.Stage)
}

func TestResolveWeights_Errors(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]float64
		want      string
	}{
		{"unknown", map[string]float64{"vibes": 1, "archetype": 1}, "unknown factor(s) vibes"},
		{"negative", map[string]float64{"stage": -0.1}, "stage must be a non-negative number"},
		{"all zero", map[string]float64{"archetype": 0, "stage": 0, "industry": 0, "effectiveness": 0, "capability": 0}, "must not all be zero"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveWeights(tt.overrides)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidWeights))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestScore_MissingDataIsNeutral(t *testing.T) {
	s := New(DefaultWeights())
	r := s.Score(Input{
		Context:   growthContext(),
		Framework: &models.FrameworkDefinition{ID: "bare", Name: "Bare"},
	})

	assert.Zero(t, factor(t, r, FactorArchetype).Value, "no signals, no archetype credit")
	assert.Equal(t, Neutral, factor(t, r, FactorStage).Value)
	assert.Equal(t, Neutral, factor(t, r, FactorIndustry).Value)
	assert.Equal(t, Neutral, factor(t, r, FactorEffectiveness).Value)
	assert.Equal(t, Neutral, factor(t, r, FactorCapability).Value)
	assert.InDelta(t, 0.325, r.Score, 1e-9)
	assert.Empty(t, r.Rationale)
}

func TestScore_ArchetypeMatch(t *testing.T) {
	ctx := growthContext()
	ctx.Signals = []models.ArchetypeSignal{{
		Archetype: taxonomy.ProblemCompetitiveStrategy,
		Source:    models.SourceChallenge,
		Evidence:  "intense competition from larger incumbents",
	}}
	ctx.Keywords = []string{"competition", "incumbent"}

	tagged := &models.TagProfile{
		FrameworkID:       "alpha",
		ProblemArchetypes: taxonomy.Set[taxonomy.ProblemArchetype]{taxonomy.ProblemCompetitiveStrategy},
		Keywords:          []string{"competition"},
	}
	untagged := &models.TagProfile{FrameworkID: "beta"}

	s := New(DefaultWeights())
	a := s.Score(Input{Context: ctx, Framework: &models.FrameworkDefinition{ID: "alpha", Name: "Alpha"}, Profile: tagged})
	b := s.Score(Input{Context: ctx, Framework: &models.FrameworkDefinition{ID: "beta", Name: "Beta"}, Profile: untagged})

	assert.InDelta(t, 0.875, factor(t, a, FactorArchetype).Value, 1e-9)
	assert.Zero(t, factor(t, b, FactorArchetype).Value)
	assert.Greater(t, a.Score, b.Score)
	assert.Contains(t, a.Rationale, "Matches stated challenge: competitive strategy")
	assert.Contains(t, a.Rationale, "Keyword overlap: competition")
}

func TestScore_DerivedSignalRationale(t *testing.T) {
	ctx := growthContext()
	ctx.Signals = []models.ArchetypeSignal{{
		Archetype: taxonomy.ProblemFinancialPlanning,
		Source:    models.SourceMetric,
		Evidence:  "runway of 9 months is under 12",
	}}
	tp := &models.TagProfile{
		FrameworkID:       "cash",
		ProblemArchetypes: taxonomy.Set[taxonomy.ProblemArchetype]{taxonomy.ProblemFinancialPlanning},
	}
	r := New(DefaultWeights()).Score(Input{Context: ctx, Framework: &models.FrameworkDefinition{ID: "cash", Name: "Cash"}, Profile: tp})
	assert.Equal(t, 1.0, factor(t, r, FactorArchetype).Value)
	assert.Contains(t, r.Rationale, "Addresses financial planning indicated by metrics (runway of 9 months is under 12)")
}

func TestScore_StageAlignment(t *testing.T) {
	window := &models.TagProfile{FrameworkID: "w", TemporalStages: taxonomy.Set[taxonomy.Stage]{taxonomy.StageGrowth}}
	def := &models.FrameworkDefinition{ID: "w", Name: "W"}
	tests := []struct {
		name  string
		stage taxonomy.Stage
		tp    *models.TagProfile
		want  float64
	}{
		{"inside", taxonomy.StageGrowth, window, 1},
		{"adjacent", taxonomy.StageTraction, window, AdjacentStageCredit},
		{"distant", taxonomy.StageFormation, window, 0},
		{"unclassified", taxonomy.StageUnclassified, window, 0},
		{"empty window", taxonomy.StageFormation, &models.TagProfile{FrameworkID: "w"}, 1},
		{"no profile", taxonomy.StageFormation, nil, Neutral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := growthContext()
			ctx.Stage = tt.stage
			r := New(DefaultWeights()).Score(Input{Context: ctx, Framework: def, Profile: tt.tp})
			assert.Equal(t, tt.want, factor(t, r, FactorStage).Value)
		})
	}
}

func TestScore_IndustryAlignment(t *testing.T) {
	fintech := taxonomy.Set[taxonomy.Industry]{taxonomy.IndustryFintech}
	tests := []struct {
		name     string
		industry taxonomy.Industry
		profile  taxonomy.Set[taxonomy.Industry]
		def      taxonomy.Set[taxonomy.Industry]
		want     float64
	}{
		{"exact", taxonomy.IndustryFintech, fintech, nil, 1},
		{"universal", taxonomy.IndustryRetail, taxonomy.Set[taxonomy.Industry]{taxonomy.IndustryUniversal}, nil, 1},
		{"mismatch", taxonomy.IndustryRetail, fintech, nil, 0},
		{"definition fallback", taxonomy.IndustryFintech, nil, fintech, 1},
		{"unknown applicability", taxonomy.IndustryRetail, nil, nil, Neutral},
		{"unclassified", taxonomy.IndustryUnclassified, fintech, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := growthContext()
			ctx.Industry = tt.industry
			r := New(DefaultWeights()).Score(Input{
				Context:   ctx,
				Framework: &models.FrameworkDefinition{ID: "i", Name: "I", Industries: tt.def},
				Profile:   &models.TagProfile{FrameworkID: "i", IndustryContexts: tt.profile},
			})
			assert.Equal(t, tt.want, factor(t, r, FactorIndustry).Value)
		})
	}
}

func TestScore_EffectivenessConfidence(t *testing.T) {
	record := func(confidence float64, points int) *models.EffectivenessRecord {
		return &models.EffectivenessRecord{
			FrameworkID:     "e",
			SuccessRate:     0.8,
			ByStage:         map[taxonomy.Stage]float64{taxonomy.StageGrowth: 0.9},
			ByIndustry:      map[taxonomy.Industry]float64{taxonomy.IndustryUniversal: 0.7},
			ByTeamSize:      map[taxonomy.TeamSizeBucket]float64{taxonomy.TeamMedium: 0.6},
			DataPoints:      points,
			ConfidenceLevel: confidence,
		}
	}
	def := &models.FrameworkDefinition{ID: "e", Name: "E"}
	score := func(rec *models.EffectivenessRecord) Result {
		return New(DefaultWeights()).Score(Input{Context: growthContext(), Framework: def, Record: rec})
	}

	full := score(record(1, 200))
	assert.InDelta(t, 0.75, factor(t, full, FactorEffectiveness).Value, 1e-9)
	assert.Contains(t, full.Rationale, "75% success rate in comparable contexts (confidence 1.00 over 200 data points)")

	weak := score(record(0.2, 50))
	assert.InDelta(t, 0.525, factor(t, weak, FactorEffectiveness).Value, 1e-9)

	none := score(record(0.9, 0))
	assert.Equal(t, Neutral, factor(t, none, FactorEffectiveness).Value)
	assert.Equal(t, score(nil).Score, none.Score, "a record without samples counts as no record")
}

func TestScore_CapabilityPenalizesSmallTeams(t *testing.T) {
	tp := &models.TagProfile{
		FrameworkID:         "heavy",
		Complexity:          taxonomy.ComplexityEnterprise,
		RequiresFacilitator: true,
		TimeToValueDays:     30,
		EaseOfUse:           5,
		Actionability:       5,
		Accuracy:            5,
		StrategicImpact:     5,
	}
	def := &models.FrameworkDefinition{ID: "heavy", Name: "Heavy"}

	small := growthContext()
	small.TeamSize, small.TeamBucket = 5, taxonomy.TeamSmall
	large := growthContext()
	large.TeamSize, large.TeamBucket = 300, taxonomy.TeamLarge

	s := New(DefaultWeights())
	rs := s.Score(Input{Context: small, Framework: def, Profile: tp})
	rl := s.Score(Input{Context: large, Framework: def, Profile: tp})

	assert.InDelta(t, 0.305, factor(t, rs, FactorCapability).Value, 1e-9)
	assert.InDelta(t, 0.8, factor(t, rl, FactorCapability).Value, 1e-9)
	assert.Contains(t, rs.Risks, "Needs a trained facilitator, which small teams rarely have")
	assert.Contains(t, rs.Risks, "Enterprise complexity exceeds what a team of 5 usually sustains")
	assert.Contains(t, rl.Rationale, "Enterprise complexity suits a team of 300")
}

func TestScore_FactorsSumToScore(t *testing.T) {
	snap, err := catalog.Builtin()
	require.NoError(t, err)
	ctx, err := normalize.Normalize(models.StartupContext{
		Stage:      "series_a",
		Industry:   "saas",
		TeamSize:   30,
		Challenges: []string{"intense competition from larger incumbents"},
	}, normalize.Options{})
	require.NoError(t, err)

	s := New(DefaultWeights())
	for _, def := range snap.Frameworks() {
		r := s.Score(input(snap, ctx, def))
		var sum float64
		for _, f := range r.Factors {
			sum += f.Contribution
			assert.GreaterOrEqual(t, f.Value, 0.0)
			assert.LessOrEqual(t, f.Value, 1.0)
		}
		assert.InDelta(t, r.Score, sum, 1e-3, def.ID)
		assert.Len(t, r.Factors, len(FactorNames))
	}
}

func TestScore_NoConstantScore(t *testing.T) {
	snap, err := catalog.Builtin()
	require.NoError(t, err)
	s := New(DefaultWeights())

	contexts := []models.StartupContext{
		{Stage: "pre_seed", Industry: "saas", TeamSize: 5},
		{Stage: "series_a", TeamSize: 30, Challenges: []string{"intense competition from larger incumbents"}},
		{Stage: "mystery", Industry: "unknown", TeamSize: 12},
		{Stage: "ipo", Industry: "retail", TeamSize: 900, Metrics: models.Metrics{RunwayMonths: models.Float(40)}},
	}
	for _, raw := range contexts {
		ctx, err := normalize.Normalize(raw, normalize.Options{DeriveChallenges: true})
		require.NoError(t, err)
		distinct := map[float64]bool{}
		for _, def := range snap.Frameworks() {
			distinct[s.Score(input(snap, ctx, def)).Score] = true
		}
		assert.Greater(t, len(distinct), 1, "all frameworks scored the same for %+v", raw)
	}
}

func TestScore_SameFrameworkDifferentContexts(t *testing.T) {
	snap, err := catalog.Builtin()
	require.NoError(t, err)
	def, err := snap.Framework("lean_canvas")
	require.NoError(t, err)

	early, err := normalize.Normalize(models.StartupContext{
		Stage:      "pre_seed",
		Industry:   "saas",
		TeamSize:   4,
		Challenges: []string{"we have not found product-market fit"},
	}, normalize.Options{})
	require.NoError(t, err)
	late, err := normalize.Normalize(models.StartupContext{Stage: "public", Industry: "manufacturing", TeamSize: 2000}, normalize.Options{})
	require.NoError(t, err)

	s := New(DefaultWeights())
	assert.NotEqual(t, s.Score(input(snap, early, def)).Score, s.Score(input(snap, late, def)).Score)
}

func TestScore_Deterministic(t *testing.T) {
	snap, err := catalog.Builtin()
	require.NoError(t, err)
	ctx, err := normalize.Normalize(models.StartupContext{Stage: "seed", TeamSize: 8, Challenges: []string{"CAC keeps climbing"}}, normalize.Options{})
	require.NoError(t, err)

	s := New(DefaultWeights())
	for _, def := range snap.Frameworks() {
		assert.Equal(t, s.Score(input(snap, ctx, def)), s.Score(input(snap, ctx, def)))
	}
}

func input(snap *catalog.Snapshot, ctx *models.CanonicalContext, def *models.FrameworkDefinition) Input {
	in := Input{Context: ctx, Framework: def}
	if tp, ok := snap.Profile(def.ID); ok {
		in.Profile = tp
	}
	if rec, ok := snap.Effectiveness(def.ID); ok {
		in.Record = rec
	}
	return in
}
