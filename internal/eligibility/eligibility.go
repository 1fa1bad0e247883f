// Package eligibility applies the hard constraints that decide whether a
// framework can apply to a context at all.
package eligibility

import (
	"fmt"
	"strings"

	"github.com/spboyer/stratafit/internal/models"
	"github.com/spboyer/stratafit/internal/normalize"
	"github.com/spboyer/stratafit/internal/taxonomy"
)

// Rule names the constraint that produced a verdict.
type Rule string

const (
	RuleNoProfile   Rule = "no_profile"
	RuleTeamSize    Rule = "team_size"
	RuleStage       Rule = "stage"
	RuleIndustry    Rule = "industry"
	RuleAntiPattern Rule = "anti_pattern"
	RulePassed      Rule = ""
)

// Verdict is the eligibility decision for one framework.
type Verdict struct {
	Eligible bool
	Rule     Rule
	Reason   string
}

// Options relaxes individual constraints.
type Options struct {
	// RelaxStage skips the stage window check; scoring still rewards stage fit.
	RelaxStage bool
}

// Check decides whether def applies to ctx. A nil profile means the framework
// is untagged: it is eligible by default, with only its anti-patterns checked.
func Check(ctx *models.CanonicalContext, def *models.FrameworkDefinition, tp *models.TagProfile, opts Options) Verdict {
	if tp != nil {
		if v, ok := checkTeamSize(ctx, tp); !ok {
			return v
		}
		if !opts.RelaxStage {
			if v, ok := checkStage(ctx, tp); !ok {
				return v
			}
		}
		if v, ok := checkIndustry(ctx, tp); !ok {
			return v
		}
	}
	if v, ok := checkAntiPatterns(ctx, def); !ok {
		return v
	}
	if tp == nil {
		return Verdict{Eligible: true, Rule: RuleNoProfile, Reason: "no tag profile; no constraints to check"}
	}
	return Verdict{Eligible: true, Rule: RulePassed}
}

func checkTeamSize(ctx *models.CanonicalContext, tp *models.TagProfile) (Verdict, bool) {
	if tp.TeamSizeMin != nil && ctx.TeamSize < *tp.TeamSizeMin {
		return reject(RuleTeamSize, "team size %d is below the minimum of %d", ctx.TeamSize, *tp.TeamSizeMin), false
	}
	if tp.TeamSizeMax != nil && ctx.TeamSize > *tp.TeamSizeMax {
		return reject(RuleTeamSize, "team size %d is above the maximum of %d", ctx.TeamSize, *tp.TeamSizeMax), false
	}
	return Verdict{}, true
}

func checkStage(ctx *models.CanonicalContext, tp *models.TagProfile) (Verdict, bool) {
	if len(tp.TemporalStages) == 0 || ctx.Stage == taxonomy.StageUnclassified {
		return Verdict{}, true
	}
	if tp.TemporalStages.Has(ctx.Stage) {
		return Verdict{}, true
	}
	return reject(RuleStage, "stage %s is outside %s", ctx.Stage, strings.Join(tp.TemporalStages.Strings(), ", ")), false
}

func checkIndustry(ctx *models.CanonicalContext, tp *models.TagProfile) (Verdict, bool) {
	if len(tp.IndustryContexts) == 0 || tp.IndustryContexts.Has(taxonomy.IndustryUniversal) {
		return Verdict{}, true
	}
	if ctx.Industry == taxonomy.IndustryUnclassified {
		return Verdict{}, true
	}
	if tp.IndustryContexts.Has(ctx.Industry) {
		return Verdict{}, true
	}
	return reject(RuleIndustry, "industry %s is outside %s", ctx.Industry, strings.Join(tp.IndustryContexts.Strings(), ", ")), false
}

// checkAntiPatterns excludes def when every condition of one of its
// anti-patterns holds. Unknown metrics never exclude.
func checkAntiPatterns(ctx *models.CanonicalContext, def *models.FrameworkDefinition) (Verdict, bool) {
	if def == nil {
		return Verdict{}, true
	}
	for _, ap := range def.AntiPatterns {
		if !Triggered(ctx.Metrics, ap) {
			continue
		}
		reason := fmt.Sprintf("anti-pattern %q applies", ap.Name)
		if len(ap.Alternatives) > 0 {
			reason += "; consider " + strings.Join(ap.Alternatives, ", ")
		}
		return Verdict{Rule: RuleAntiPattern, Reason: reason}, false
	}
	return Verdict{}, true
}

// Triggered reports whether every condition of ap is known and holds.
func Triggered(m models.Metrics, ap models.AntiPattern) bool {
	if len(ap.Conditions) == 0 {
		return false
	}
	for _, c := range ap.Conditions {
		if normalize.Compare(m, c.Metric, c.Op, c.Value) != normalize.Pass {
			return false
		}
	}
	return true
}

func reject(rule Rule, format string, args ...any) Verdict {
	return Verdict{Rule: rule, Reason: fmt.Sprintf(format, args...)}
}
