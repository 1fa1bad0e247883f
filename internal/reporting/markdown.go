package reporting

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/spboyer/stratafit/internal/journey"
	"github.com/spboyer/stratafit/internal/models"
	"github.com/spboyer/stratafit/internal/taxonomy"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// title turns a snake_case taxonomy value into a heading-style label.
func title(s string) string {
	if s == "" {
		return "Unclassified"
	}
	return titleCaser.String(strings.ReplaceAll(s, "_", " "))
}

// MarkdownOptions controls report rendering.
type MarkdownOptions struct {
	// Title is the report heading; "Framework Recommendation" when empty.
	Title string
	// Date is stamped under the heading; omitted when zero.
	Date time.Time
}

// Markdown renders a selection result as a Markdown report.
func Markdown(res *models.SelectionResult, opts MarkdownOptions) string {
	var b strings.Builder
	heading := opts.Title
	if heading == "" {
		heading = "Framework Recommendation"
	}
	fmt.Fprintf(&b, "# %s\n\n", heading)
	if !opts.Date.IsZero() {
		fmt.Fprintf(&b, "_Generated %s_\n\n", opts.Date.Format("2006-01-02"))
	}

	if ctx := res.Context; ctx != nil {
		writeContext(&b, ctx)
	}

	if !res.Success || len(res.Frameworks) == 0 {
		fmt.Fprintf(&b, "## Result\n\n**%s** %s\n", res.Status, InterpretStatus(res.Status))
		if res.Message != "" {
			fmt.Fprintf(&b, "\n%s\n", res.Message)
		}
		writeExcluded(&b, res.Excluded)
		return b.String()
	}

	b.WriteString("## Recommended Frameworks\n\n")
	b.WriteString("| Rank | Framework | Category | Score | Fit |\n")
	b.WriteString("|---:|---|---|---:|---|\n")
	for _, f := range res.Frameworks {
		fmt.Fprintf(&b, "| %d | %s | %s | %.3f | %s |\n", f.Rank, f.Name, title(string(f.Category)), f.Score, InterpretScore(f.Score))
	}
	b.WriteString("\n")

	for _, f := range res.Frameworks {
		fmt.Fprintf(&b, "### %d. %s\n\n", f.Rank, f.Name)
		fmt.Fprintf(&b, "- **Fit Score**: %.3f (%s)\n", f.Score, InterpretScore(f.Score))
		fmt.Fprintf(&b, "- **Category**: %s\n", title(string(f.Category)))
		if len(f.Factors) > 0 {
			parts := make([]string, len(f.Factors))
			for i, fac := range f.Factors {
				parts[i] = fmt.Sprintf("%s %.2f", fac.Name, fac.Value)
			}
			fmt.Fprintf(&b, "- **Factors**: %s\n", strings.Join(parts, ", "))
		}
		b.WriteString("\n**Why this framework**:\n\n")
		writeList(&b, f.Rationale)
		if len(f.Requirements) > 0 {
			fmt.Fprintf(&b, "**Requirements**: %s\n\n", strings.Join(f.Requirements, ", "))
		}
		if len(f.Prerequisites) > 0 {
			fmt.Fprintf(&b, "**Apply first**: %s\n\n", strings.Join(f.Prerequisites, ", "))
		}
		if len(f.Complementary) > 0 {
			fmt.Fprintf(&b, "**Pairs well with**: %s\n\n", strings.Join(f.Complementary, ", "))
		}
		if len(f.NextSteps) > 0 {
			fmt.Fprintf(&b, "**Next frameworks**: %s\n\n", strings.Join(f.NextSteps, ", "))
		}
		if len(f.Risks) > 0 {
			b.WriteString("**Risks to consider**:\n\n")
			writeList(&b, f.Risks)
		}
	}
	writeExcluded(&b, res.Excluded)
	return b.String()
}

// JourneyMarkdown renders a phased journey as Markdown.
func JourneyMarkdown(j *journey.Journey, opts MarkdownOptions) string {
	var b strings.Builder
	heading := opts.Title
	if heading == "" {
		heading = "Framework Journey"
	}
	fmt.Fprintf(&b, "# %s\n\n", heading)
	if !opts.Date.IsZero() {
		fmt.Fprintf(&b, "_Generated %s_\n\n", opts.Date.Format("2006-01-02"))
	}
	if j.Context != nil {
		writeContext(&b, j.Context)
	}
	if !j.Success || j.TotalFrameworks == 0 {
		fmt.Fprintf(&b, "## Result\n\n**%s** %s\n", j.Status, InterpretStatus(j.Status))
		if j.Message != "" {
			fmt.Fprintf(&b, "\n%s\n", j.Message)
		}
		return b.String()
	}

	fmt.Fprintf(&b, "**%d frameworks** over an estimated **%d days**.\n\n", j.TotalFrameworks, j.EstimatedDays)
	for _, p := range j.Phases {
		fmt.Fprintf(&b, "## %s (%s)\n\n", title(string(p.Phase)), p.Window)
		for _, s := range p.Steps {
			fmt.Fprintf(&b, "- **%s** (%d days, score %.3f)\n", s.Framework.Name, s.EstimatedDays, s.Framework.Score)
		}
		b.WriteString("\n")
	}
	if len(j.CriticalPath) > 0 {
		fmt.Fprintf(&b, "## Critical Path\n\n%s\n", strings.Join(j.CriticalPath, " → "))
	}
	return b.String()
}

// HTML renders Markdown to an HTML fragment. Tables are enabled.
func HTML(markdown string) (string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return buf.String(), nil
}

func writeContext(b *strings.Builder, ctx *models.CanonicalContext) {
	b.WriteString("## Company Context\n\n")
	fmt.Fprintf(b, "- **Stage**: %s%s\n", title(string(ctx.Stage)), resolutionNote(ctx.RawStage, ctx.StageResolution))
	fmt.Fprintf(b, "- **Industry**: %s%s\n", title(string(ctx.Industry)), resolutionNote(ctx.RawIndustry, ctx.IndustryResolution))
	fmt.Fprintf(b, "- **Team Size**: %d (%s)\n", ctx.TeamSize, ctx.TeamBucket)
	fmt.Fprintf(b, "- **Urgency**: %s\n", title(string(ctx.Urgency)))
	fmt.Fprintf(b, "- **Timeline**: %d days\n", ctx.TimelineDays)
	b.WriteString("\n")
	if len(ctx.Challenges) > 0 {
		b.WriteString("### Challenges\n\n")
		writeList(b, ctx.Challenges)
	}
	if len(ctx.Signals) > 0 {
		b.WriteString("### Problem Signals\n\n")
		for _, s := range ctx.Signals {
			fmt.Fprintf(b, "- %s (%s: %s)\n", s.Archetype.Label(), s.Source, s.Evidence)
		}
		b.WriteString("\n")
	}
}

// resolutionNote shows the raw input when it was not an exact taxonomy value.
func resolutionNote(raw string, r taxonomy.Resolution) string {
	if raw == "" || r == taxonomy.ResolvedExact {
		return ""
	}
	return fmt.Sprintf(" (from %q, %s)", raw, r)
}

func writeExcluded(b *strings.Builder, excluded []models.Exclusion) {
	if len(excluded) == 0 {
		return
	}
	b.WriteString("\n## Excluded\n\n")
	for _, x := range excluded {
		fmt.Fprintf(b, "- `%s`: %s\n", x.ID, x.Reason)
	}
}

func writeList(b *strings.Builder, items []string) {
	for _, it := range items {
		fmt.Fprintf(b, "- %s\n", it)
	}
	b.WriteString("\n")
}
