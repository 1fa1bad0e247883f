// Package journey lays a wide selection out as a phased adoption plan.
package journey

import (
	"github.com/spboyer/stratafit/internal/catalog"
	"github.com/spboyer/stratafit/internal/models"
	"github.com/spboyer/stratafit/internal/taxonomy"
)

// Phase is a time horizon of the journey.
type Phase string

const (
	PhaseImmediate  Phase = "immediate"
	PhaseShortTerm  Phase = "short_term"
	PhaseMediumTerm Phase = "medium_term"
	PhaseLongTerm   Phase = "long_term"
)

// Phases lists the phases in order.
var Phases = []Phase{PhaseImmediate, PhaseShortTerm, PhaseMediumTerm, PhaseLongTerm}

// Window describes the horizon a phase covers.
func (p Phase) Window() string {
	switch p {
	case PhaseImmediate:
		return "next 30 days"
	case PhaseShortTerm:
		return "30 to 90 days"
	case PhaseMediumTerm:
		return "3 to 6 months"
	case PhaseLongTerm:
		return "6 to 12 months"
	default:
		return ""
	}
}

const (
	// WideSelection is the number of frameworks requested before phasing.
	WideSelection = 20

	// DefaultEstimatedDays is used for frameworks without a time to value.
	DefaultEstimatedDays = 14

	maxCriticalPath = 5
)

// Step is one framework placed in a phase.
type Step struct {
	Framework     models.RankedFramework `json:"framework"`
	EstimatedDays int                    `json:"estimated_days"`
}

// PhasePlan is the ordered steps of one phase.
type PhasePlan struct {
	Phase  Phase  `json:"phase"`
	Window string `json:"window"`
	Steps  []Step `json:"steps"`
}

// Journey is a phased plan built from a selection.
type Journey struct {
	Success         bool                     `json:"success"`
	Status          models.SelectionStatus   `json:"status"`
	Message         string                   `json:"message,omitempty"`
	Context         *models.CanonicalContext `json:"context,omitempty"`
	Urgency         models.Urgency           `json:"urgency,omitempty"`
	Phases          []PhasePlan              `json:"phases"`
	CriticalPath    []string                 `json:"critical_path"`
	TotalFrameworks int                      `json:"total_frameworks"`
	EstimatedDays   int                      `json:"estimated_days"`
}

// Selector runs a selection. *recommend.Engine implements it.
type Selector interface {
	Select(snap *catalog.Snapshot, raw models.StartupContext, opts models.SelectionOptions) *models.SelectionResult
}

// Build runs a wide selection for raw and phases the result. Diversity
// settings in opts are kept; the result count is widened.
func Build(sel Selector, snap *catalog.Snapshot, raw models.StartupContext, opts models.SelectionOptions) *Journey {
	opts.MaxResults = WideSelection
	return Plan(sel.Select(snap, raw, opts), snap)
}

// Plan phases an existing selection result. Frameworks are bucketed by the
// decision contexts in their tag profiles: diagnostic work comes first,
// prescriptive next, predictive and evaluative after. Complex and enterprise
// tier frameworks fill the long term. Critical urgency compresses the plan
// to two diagnostic frameworks and one prescriptive framework up front, with
// no long-term phase. Each framework appears at most once.
func Plan(res *models.SelectionResult, snap *catalog.Snapshot) *Journey {
	j := &Journey{
		Success:      res.Success,
		Status:       res.Status,
		Message:      res.Message,
		Context:      res.Context,
		Phases:       []PhasePlan{},
		CriticalPath: []string{},
	}
	if res.Context != nil {
		j.Urgency = res.Context.Urgency
	}
	if !res.Success || len(res.Frameworks) == 0 {
		return j
	}

	b := newBuckets(res.Frameworks, snap)
	placed := make(map[string]bool)
	take := func(list []Step, n int) []Step {
		var out []Step
		for _, s := range list {
			if len(out) == n {
				break
			}
			if !placed[s.Framework.ID] {
				placed[s.Framework.ID] = true
				out = append(out, s)
			}
		}
		return out
	}

	steps := make(map[Phase][]Step)
	if j.Urgency == models.UrgencyCritical {
		steps[PhaseImmediate] = append(take(b.diagnostic, 2), take(b.prescriptive, 1)...)
		steps[PhaseShortTerm] = append(take(b.prescriptive, 2), take(b.predictive, 1)...)
		steps[PhaseMediumTerm] = take(b.evaluative, 2)
	} else {
		steps[PhaseImmediate] = take(b.diagnostic, 3)
		steps[PhaseShortTerm] = take(b.prescriptive, 3)
		steps[PhaseMediumTerm] = append(take(b.predictive, 2), take(b.evaluative, 1)...)
		steps[PhaseLongTerm] = take(b.advanced, 3)
	}

	var ordered []Step
	for _, p := range Phases {
		if len(steps[p]) == 0 {
			continue
		}
		j.Phases = append(j.Phases, PhasePlan{Phase: p, Window: p.Window(), Steps: steps[p]})
		ordered = append(ordered, steps[p]...)
	}
	for _, s := range ordered {
		j.EstimatedDays += s.EstimatedDays
	}
	j.TotalFrameworks = len(ordered)
	j.CriticalPath = criticalPath(ordered)
	if j.TotalFrameworks == 0 {
		j.Message = "no selected framework carries a decision context to phase"
	}
	return j
}

type buckets struct {
	diagnostic, prescriptive, predictive, evaluative, advanced []Step
}

func newBuckets(ranked []models.RankedFramework, snap *catalog.Snapshot) buckets {
	var b buckets
	for _, rf := range ranked {
		step := Step{Framework: rf, EstimatedDays: DefaultEstimatedDays}
		var tier taxonomy.ComplexityTier
		var contexts taxonomy.Set[taxonomy.DecisionContext]
		if def, err := snap.Framework(rf.ID); err == nil {
			tier = def.Complexity
		}
		if tp, ok := snap.Profile(rf.ID); ok {
			contexts = tp.DecisionContexts
			if tp.Complexity != "" {
				tier = tp.Complexity
			}
			if tp.TimeToValueDays > 0 {
				step.EstimatedDays = tp.TimeToValueDays
			}
		}

		if contexts.Has(taxonomy.DecisionDiagnostic) {
			b.diagnostic = append(b.diagnostic, step)
		}
		if contexts.Has(taxonomy.DecisionPrescriptive) {
			b.prescriptive = append(b.prescriptive, step)
		}
		if contexts.Has(taxonomy.DecisionPredictive) {
			b.predictive = append(b.predictive, step)
		}
		if contexts.Has(taxonomy.DecisionEvaluative) {
			b.evaluative = append(b.evaluative, step)
		}
		if tier == taxonomy.ComplexityComplex || tier == taxonomy.ComplexityEnterprise {
			b.advanced = append(b.advanced, step)
		}
	}
	return b
}

// criticalPath starts at the first framework with no prerequisites, then
// adds the frameworks that lead on to others.
func criticalPath(steps []Step) []string {
	path := []string{}
	in := make(map[string]bool)
	for _, s := range steps {
		if len(s.Framework.Prerequisites) == 0 {
			path = append(path, s.Framework.ID)
			in[s.Framework.ID] = true
			break
		}
	}
	for _, s := range steps {
		if len(path) == maxCriticalPath {
			break
		}
		if len(s.Framework.NextSteps) > 0 && !in[s.Framework.ID] {
			path = append(path, s.Framework.ID)
			in[s.Framework.ID] = true
		}
	}
	return path
}
