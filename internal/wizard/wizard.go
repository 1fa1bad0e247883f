// Package wizard collects a startup context interactively.
package wizard

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spboyer/stratafit/internal/models"
	"github.com/spboyer/stratafit/internal/taxonomy"
	"golang.org/x/term"
)

// Answers holds the raw form values. Numeric fields stay strings until
// Context parses them so a blank answer can mean unknown.
type Answers struct {
	Name         string
	Stage        string
	Industry     string
	TeamSize     string
	Challenges   []string
	Crisis       bool
	Fundraising  bool
	TimelineDays string
	Metrics      map[models.MetricName]string
}

// FromContext prefills answers from an existing context.
func FromContext(c models.StartupContext) *Answers {
	a := &Answers{
		Name:        c.Name,
		Stage:       c.Stage,
		Industry:    c.Industry,
		Challenges:  append([]string(nil), c.Challenges...),
		Crisis:      c.Crisis,
		Fundraising: c.Fundraising,
		Metrics:     make(map[models.MetricName]string, len(models.MetricNames)),
	}
	if c.TeamSize > 0 {
		a.TeamSize = strconv.Itoa(c.TeamSize)
	}
	if c.TimelineDays != nil {
		a.TimelineDays = strconv.Itoa(*c.TimelineDays)
	}
	for _, name := range models.MetricNames {
		if v, ok := c.Metrics.Get(name); ok {
			a.Metrics[name] = strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return a
}

// Context converts the answers into a startup context.
func (a *Answers) Context() (models.StartupContext, error) {
	c := models.StartupContext{
		Name:        strings.TrimSpace(a.Name),
		Stage:       strings.TrimSpace(a.Stage),
		Industry:    strings.TrimSpace(a.Industry),
		Challenges:  append([]string(nil), a.Challenges...),
		Crisis:      a.Crisis,
		Fundraising: a.Fundraising,
	}

	var errs []error
	if n, err := parseCount(a.TeamSize, true); err != nil {
		errs = append(errs, fmt.Errorf("team size: %w", err))
	} else {
		c.TeamSize = n
	}
	if strings.TrimSpace(a.TimelineDays) != "" {
		if n, err := parseCount(a.TimelineDays, false); err != nil {
			errs = append(errs, fmt.Errorf("timeline: %w", err))
		} else {
			c.TimelineDays = &n
		}
	}
	for _, name := range models.MetricNames {
		raw := strings.TrimSpace(a.Metrics[name])
		if raw == "" {
			continue
		}
		if err := validateNumber(raw); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		v, _ := strconv.ParseFloat(raw, 64)
		c.Metrics.Set(name, v)
	}
	return c, errors.Join(errs...)
}

// Run shows the form on in/out, starting from initial, and returns the
// collected context. Non-terminal input uses huh's accessible mode.
func Run(in io.Reader, out io.Writer, initial models.StartupContext) (*models.StartupContext, error) {
	a := FromContext(initial)
	metricValues := make([]string, len(models.MetricNames))
	for i, name := range models.MetricNames {
		metricValues[i] = a.Metrics[name]
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Company name").
				Description("Optional, used in reports").
				Value(&a.Name),
			huh.NewSelect[string]().
				Title("Stage").
				Options(stageOptions()...).
				Value(&a.Stage),
			huh.NewSelect[string]().
				Title("Industry").
				Options(industryOptions()...).
				Value(&a.Industry),
			huh.NewInput().
				Title("Team size").
				Placeholder("8").
				Value(&a.TeamSize).
				Validate(func(s string) error {
					_, err := parseCount(s, true)
					return err
				}),
		).Title("Company"),
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Challenges").
				Description("Problems you want a framework for").
				Options(challengeOptions()...).
				Value(&a.Challenges),
			huh.NewConfirm().
				Title("In crisis?").
				Value(&a.Crisis),
			huh.NewConfirm().
				Title("Raising money now?").
				Value(&a.Fundraising),
			huh.NewInput().
				Title("Days until results are needed").
				Description("Leave blank for the 90 day default").
				Value(&a.TimelineDays).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}
					_, err := parseCount(s, false)
					return err
				}),
		).Title("Situation"),
		huh.NewGroup(metricFields(metricValues)...).
			Title("Metrics").
			Description("All optional. Leave blank when unknown."),
	).
		WithInput(in).
		WithOutput(out)

	if f, ok := in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		form = form.WithAccessible(true)
	}

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}

	for i, name := range models.MetricNames {
		a.Metrics[name] = metricValues[i]
	}
	c, err := a.Context()
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func metricFields(values []string) []huh.Field {
	fields := make([]huh.Field, len(models.MetricNames))
	for i, name := range models.MetricNames {
		fields[i] = huh.NewInput().
			Title(string(name)).
			Value(&values[i]).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return nil
				}
				return validateNumber(s)
			})
	}
	return fields
}

func stageOptions() []huh.Option[string] {
	stages := taxonomy.Stages()
	opts := make([]huh.Option[string], len(stages))
	for i, s := range stages {
		opts[i] = huh.NewOption(label(string(s)), string(s))
	}
	return opts
}

func industryOptions() []huh.Option[string] {
	var opts []huh.Option[string]
	for _, ind := range taxonomy.Industries() {
		if ind == taxonomy.IndustryUniversal {
			continue
		}
		opts = append(opts, huh.NewOption(label(string(ind)), string(ind)))
	}
	return opts
}

func challengeOptions() []huh.Option[string] {
	archetypes := taxonomy.ProblemArchetypes()
	opts := make([]huh.Option[string], len(archetypes))
	for i, p := range archetypes {
		opts[i] = huh.NewOption(p.Label(), string(p))
	}
	return opts
}

// parseCount parses a whole number. Team sizes must be at least 1; other
// counts may be zero.
func parseCount(s string, positive bool) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("a number is required")
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%q is not a whole number", s)
	}
	if positive && n < 1 {
		return 0, errors.New("must be at least 1")
	}
	if n < 0 {
		return 0, errors.New("must not be negative")
	}
	return n, nil
}

func validateNumber(s string) error {
	if _, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
		return fmt.Errorf("%q is not a number", strings.TrimSpace(s))
	}
	return nil
}

func label(s string) string {
	return strings.ReplaceAll(s, "_", " ")
}
