package reporting

import (
	"fmt"
	"strings"

	"github.com/spboyer/stratafit/internal/models"
)

// InterpretScore returns a plain-language label for a fit score (0–1).
func InterpretScore(score float64) string {
	switch {
	case score >= 0.75:
		return "Strong fit (≥0.75)"
	case score >= 0.6:
		return "Good fit (0.60-0.75)"
	case score >= 0.45:
		return "Partial fit (0.45-0.60)"
	default:
		return "Weak fit (<0.45)"
	}
}

// InterpretStatus explains a selection status.
func InterpretStatus(status models.SelectionStatus) string {
	switch status {
	case models.StatusOK:
		return "Frameworks recommended."
	case models.StatusNoEligible:
		return "No framework in the catalog applies to this context."
	case models.StatusEmptyCatalog:
		return "The catalog has no frameworks."
	case models.StatusInvalidInput:
		return "The context could not be used as given."
	default:
		return string(status)
	}
}

// FormatSummary produces a short plain-text summary of a selection.
func FormatSummary(res *models.SelectionResult) string {
	var b strings.Builder

	b.WriteString("=== Recommendation ===\n\n")
	b.WriteString(fmt.Sprintf("Status:   %s %s\n", res.Status, InterpretStatus(res.Status)))
	if res.Message != "" {
		b.WriteString(fmt.Sprintf("Message:  %s\n", res.Message))
	}
	if ctx := res.Context; ctx != nil {
		b.WriteString(fmt.Sprintf("Context:  stage=%s industry=%s team=%d urgency=%s\n",
			orUnclassified(string(ctx.Stage)), orUnclassified(string(ctx.Industry)), ctx.TeamSize, ctx.Urgency))
		b.WriteString(fmt.Sprintf("Eligible: %d, excluded %d\n", res.Eligible, len(res.Excluded)))
	}

	if len(res.Frameworks) > 0 {
		b.WriteString("\nRanked frameworks:\n")
		for _, f := range res.Frameworks {
			b.WriteString(fmt.Sprintf("  %d. %s (%s): %.3f - %s\n", f.Rank, f.Name, f.Category, f.Score, InterpretScore(f.Score)))
			for _, r := range f.Rationale {
				b.WriteString(fmt.Sprintf("     + %s\n", r))
			}
			for _, r := range f.Risks {
				b.WriteString(fmt.Sprintf("     ! %s\n", r))
			}
		}
	}

	return b.String()
}

func orUnclassified(s string) string {
	if s == "" {
		return "unclassified"
	}
	return s
}
