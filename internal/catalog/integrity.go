package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spboyer/stratafit/internal/models"
)

// ErrIntegrity matches any *IntegrityError with errors.Is.
var ErrIntegrity = errors.New("catalog integrity violation")

// IntegrityError lists every problem found while loading catalog data.
type IntegrityError struct {
	Problems []string
}

func (e *IntegrityError) Error() string {
	if len(e.Problems) == 1 {
		return "catalog integrity: " + e.Problems[0]
	}
	return fmt.Sprintf("catalog integrity: %d problems:\n  %s", len(e.Problems), strings.Join(e.Problems, "\n  "))
}

// Is reports whether target is ErrIntegrity.
func (e *IntegrityError) Is(target error) bool {
	return target == ErrIntegrity
}

type problems struct {
	list []string
}

func (p *problems) addf(format string, args ...any) {
	p.list = append(p.list, fmt.Sprintf(format, args...))
}

func (p *problems) err() error {
	if len(p.list) == 0 {
		return nil
	}
	return &IntegrityError{Problems: append([]string(nil), p.list...)}
}

func checkFramework(p *problems, d *models.FrameworkDefinition, all map[string]*models.FrameworkDefinition) {
	if d.Name == "" {
		p.addf("framework %s: empty name", d.ID)
	}
	if d.Category == "" {
		p.addf("framework %s: missing category", d.ID)
	}
	for _, r := range d.Relationships {
		switch {
		case r.Target == d.ID:
			p.addf("framework %s: relationship to itself", d.ID)
		case all[r.Target] == nil:
			p.addf("framework %s: %s relationship to unknown framework %s", d.ID, r.Kind, r.Target)
		}
		switch r.Kind {
		case models.RelationComplementary, models.RelationPrerequisite, models.RelationProgressive:
		default:
			p.addf("framework %s: unknown relationship kind %q", d.ID, r.Kind)
		}
		if r.Strength < 0 || r.Strength > 100 {
			p.addf("framework %s: relationship strength %d outside 0-100", d.ID, r.Strength)
		}
	}
	for _, ap := range d.AntiPatterns {
		if len(ap.Conditions) == 0 {
			p.addf("framework %s: anti-pattern %q has no conditions", d.ID, ap.Name)
		}
		for _, c := range ap.Conditions {
			if !knownMetric(c.Metric) {
				p.addf("framework %s: anti-pattern %q uses unknown metric %q", d.ID, ap.Name, c.Metric)
			}
			switch c.Op {
			case models.OpLess, models.OpLessEqual, models.OpGreater, models.OpGreaterEqual, models.OpEqual:
			default:
				p.addf("framework %s: anti-pattern %q uses unknown operator %q", d.ID, ap.Name, c.Op)
			}
		}
	}
}

func checkProfile(p *problems, tp *models.TagProfile) {
	id := tp.FrameworkID
	if tp.TeamSizeMin != nil && *tp.TeamSizeMin < 1 {
		p.addf("profile %s: team_size_min %d must be at least 1", id, *tp.TeamSizeMin)
	}
	if tp.TeamSizeMin != nil && tp.TeamSizeMax != nil && *tp.TeamSizeMin > *tp.TeamSizeMax {
		p.addf("profile %s: team_size_min %d exceeds team_size_max %d", id, *tp.TeamSizeMin, *tp.TeamSizeMax)
	}
	if tp.TimeToValueDays < 0 {
		p.addf("profile %s: negative time_to_value_days", id)
	}
	if tp.DurabilityMonths < 0 {
		p.addf("profile %s: negative durability_months", id)
	}
	ratings := []struct {
		name string
		v    float64
	}{
		{"ease_of_use", tp.EaseOfUse},
		{"actionability", tp.Actionability},
		{"accuracy", tp.Accuracy},
		{"strategic_impact", tp.StrategicImpact},
	}
	for _, r := range ratings {
		if r.v < 0 || r.v > models.MaxRating {
			p.addf("profile %s: %s %.2f outside 0-%.0f", id, r.name, r.v, models.MaxRating)
		}
	}
}

func checkRecord(p *problems, r *models.EffectivenessRecord) {
	id := r.FrameworkID
	checkRate(p, id, "success_rate", r.SuccessRate)
	checkRate(p, id, "confidence_level", r.ConfidenceLevel)
	if r.EffortReturnRatio <= 0 {
		p.addf("effectiveness %s: effort_return_ratio must be positive", id)
	}
	if r.TimeToImpactDays < 0 {
		p.addf("effectiveness %s: negative time_to_impact_days", id)
	}
	if r.DurabilityMonths < 0 {
		p.addf("effectiveness %s: negative durability_months", id)
	}
	if r.DataPoints < 0 {
		p.addf("effectiveness %s: negative data_points", id)
	}
	checkRates(p, id, "effectiveness_by_stage", r.ByStage)
	checkRates(p, id, "effectiveness_by_industry", r.ByIndustry)
	checkRates(p, id, "effectiveness_by_team_size", r.ByTeamSize)
}

func checkRates[K ~string](p *problems, id, field string, m map[K]float64) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	for _, k := range keys {
		checkRate(p, id, field+"."+k, m[K(k)])
	}
}

func checkRate(p *problems, id, field string, v float64) {
	if v < 0 || v > 1 {
		p.addf("effectiveness %s: %s %.3f outside 0-1", id, field, v)
	}
}

func knownMetric(m models.MetricName) bool {
	for _, n := range models.MetricNames {
		if n == m {
			return true
		}
	}
	return false
}
