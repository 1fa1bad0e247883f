package normalize

import (
	"fmt"
	"math"

	"github.com/spboyer/stratafit/internal/models"
)

// Verdict is the outcome of comparing an optional metric with a threshold.
type Verdict int

const (
	// Unknown means the metric is absent; the comparison was not evaluated.
	Unknown Verdict = iota
	Pass
	Fail
)

func (v Verdict) String() string {
	switch v {
	case Pass:
		return "pass"
	case Fail:
		return "fail"
	default:
		return "unknown"
	}
}

// Compare evaluates "metric op value". An absent metric is Unknown, never 0.
func Compare(m models.Metrics, name models.MetricName, op models.Operator, value float64) Verdict {
	v, ok := m.Get(name)
	if !ok {
		return Unknown
	}
	var holds bool
	switch op {
	case models.OpLess:
		holds = v < value
	case models.OpLessEqual:
		holds = v <= value
	case models.OpGreater:
		holds = v > value
	case models.OpGreaterEqual:
		holds = v >= value
	case models.OpEqual:
		holds = v == value
	default:
		return Unknown
	}
	if holds {
		return Pass
	}
	return Fail
}

// Below is shorthand for Compare(m, name, OpLess, value).
func Below(m models.Metrics, name models.MetricName, value float64) Verdict {
	return Compare(m, name, models.OpLess, value)
}

// Above is shorthand for Compare(m, name, OpGreater, value).
func Above(m models.Metrics, name models.MetricName, value float64) Verdict {
	return Compare(m, name, models.OpGreater, value)
}

// nonNegative lists the metrics that cannot be below zero. Growth rate may be
// negative for a shrinking business.
var nonNegative = []models.MetricName{
	models.MetricRevenue, models.MetricBurnRate, models.MetricRunway, models.MetricLTVCAC,
	models.MetricCustomers, models.MetricCompetitors, models.MetricMarketShare,
}

func checkMetrics(m models.Metrics) []string {
	var problems []string
	for _, name := range models.MetricNames {
		v, ok := m.Get(name)
		if ok && (math.IsNaN(v) || math.IsInf(v, 0)) {
			problems = append(problems, fmt.Sprintf("%s must be a finite number", name))
		}
	}
	for _, name := range nonNegative {
		if Below(m, name, 0) == Pass {
			v, _ := m.Get(name)
			problems = append(problems, fmt.Sprintf("%s must not be negative, got %g", name, v))
		}
	}
	if Above(m, models.MetricMarketShare, 100) == Pass {
		problems = append(problems, fmt.Sprintf("%s must be at most 100, got %g", models.MetricMarketShare, *m.MarketSharePercent))
	}
	return problems
}
