package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spboyer/stratafit/internal/models"
)

// Row represents a single CSV row with column name to value mapping.
type Row map[string]string

// Recognized CSV columns besides the metric names.
const (
	ColumnName         = "name"
	ColumnStage        = "stage"
	ColumnIndustry     = "industry"
	ColumnTeamSize     = "team_size"
	ColumnChallenges   = "challenges"
	ColumnCrisis       = "crisis"
	ColumnFundraising  = "fundraising"
	ColumnTimelineDays = "timeline_days"
)

// ChallengeSeparator splits several challenge statements in one CSV cell.
const ChallengeSeparator = ";"

// LoadCSV reads a CSV file and returns rows as maps of column to value.
// The first row is treated as headers (column names).
func LoadCSV(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv: parse %s: %w", path, err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("csv: %s is empty (no header row)", path)
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}
	rows := make([]Row, 0, len(records)-1)

	for i, record := range records[1:] {
		if len(record) != len(headers) {
			return nil, fmt.Errorf("csv: row %d has %d columns, expected %d", i+2, len(record), len(headers))
		}
		row := make(Row, len(headers))
		for j, h := range headers {
			row[h] = strings.TrimSpace(record[j])
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// loadCSVEntries reads a CSV file of contexts, one per row.
func loadCSVEntries(path string) ([]Entry, error) {
	rows, err := LoadCSV(path)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(rows))
	for i, row := range rows {
		ctx, err := row.Context()
		if err != nil {
			return nil, fmt.Errorf("csv: %s row %d: %w", path, i+2, err)
		}
		entries = append(entries, Entry{Name: entryName(ctx.Name, i+1), Context: ctx})
	}
	return entries, nil
}

// Context converts a row into a startup context. Empty cells are absent
// values; a metric column left blank stays unknown.
func (r Row) Context() (models.StartupContext, error) {
	ctx := models.StartupContext{
		Name:     r[ColumnName],
		Stage:    r[ColumnStage],
		Industry: r[ColumnIndustry],
	}

	if v := r[ColumnTeamSize]; v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return ctx, fmt.Errorf("%s %q is not an integer", ColumnTeamSize, v)
		}
		ctx.TeamSize = n
	}
	if v := r[ColumnTimelineDays]; v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return ctx, fmt.Errorf("%s %q is not an integer", ColumnTimelineDays, v)
		}
		ctx.TimelineDays = &n
	}
	for col, dst := range map[string]*bool{ColumnCrisis: &ctx.Crisis, ColumnFundraising: &ctx.Fundraising} {
		if v := r[col]; v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return ctx, fmt.Errorf("%s %q is not a boolean", col, v)
			}
			*dst = b
		}
	}
	if v := r[ColumnChallenges]; v != "" {
		for _, c := range strings.Split(v, ChallengeSeparator) {
			if c = strings.TrimSpace(c); c != "" {
				ctx.Challenges = append(ctx.Challenges, c)
			}
		}
	}

	for _, name := range models.MetricNames {
		v := r[string(name)]
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return ctx, fmt.Errorf("%s %q is not a number", name, v)
		}
		ctx.Metrics.Set(name, f)
	}
	return ctx, nil
}
