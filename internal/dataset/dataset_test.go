package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const batchCSV = `name,stage,industry,team_size,runway_months
acme,seed,saas,4,7
,series_b,fintech,60,
initech,public,manufacturing,900,30
`

func TestLoad_CSV(t *testing.T) {
	path := writeFile(t, t.TempDir(), "batch.csv", batchCSV)

	entries, err := Load(path)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "acme", entries[0].Name)
	assert.Equal(t, 4, entries[0].Context.TeamSize)
	assert.Equal(t, "context-2", entries[1].Name, "unnamed rows are numbered")
	assert.Nil(t, entries[1].Context.Metrics.RunwayMonths)
	assert.Equal(t, "initech", entries[2].Name)
}

func TestLoad_CSVRowError(t *testing.T) {
	path := writeFile(t, t.TempDir(), "batch.csv", "stage,team_size\nseed,4\nseed,lots\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 3")
	assert.Contains(t, err.Error(), `team_size "lots" is not an integer`)
}

func TestLoad_YAMLList(t *testing.T) {
	path := writeFile(t, t.TempDir(), "batch.yaml", `
- name: acme
  stage: seed
  industry: saas
  team_size: 4
  metrics:
    runway_months: 7
  challenges:
    - we have not found product-market fit
- stage: series_b
  team_size: 60
  crisis: true
`)

	entries, err := Load(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "acme", entries[0].Name)
	require.NotNil(t, entries[0].Context.Metrics.RunwayMonths)
	assert.Equal(t, 7.0, *entries[0].Context.Metrics.RunwayMonths)
	assert.Equal(t, []string{"we have not found product-market fit"}, entries[0].Context.Challenges)
	assert.Equal(t, "context-2", entries[1].Name)
	assert.True(t, entries[1].Context.Crisis)
}

func TestLoad_YAMLDocumentStream(t *testing.T) {
	path := writeFile(t, t.TempDir(), "batch.yml", `
name: one
stage: seed
team_size: 3
---
name: two
stage: growth
team_size: 40
`)

	entries, err := Load(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "one", entries[0].Name)
	assert.Equal(t, "growth", entries[1].Context.Stage)
}

func TestLoad_YAMLErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(writeFile(t, dir, "empty.yaml", ""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "holds no contexts")

	_, err = Load(writeFile(t, dir, "bad.yaml", "team_size: [unterminated\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "yaml: parse")
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	_, err := Load(writeFile(t, t.TempDir(), "batch.txt", "seed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported file type ".txt"`)
}

func TestLoadRange(t *testing.T) {
	tests := []struct {
		name      string
		start     int
		end       int
		wantNames []string
		wantErr   string
	}{
		{name: "range 2-3", start: 2, end: 3, wantNames: []string{"context-2", "initech"}},
		{name: "single", start: 1, end: 1, wantNames: []string{"acme"}},
		{name: "clamps end", start: 2, end: 100, wantNames: []string{"context-2", "initech"}},
		{name: "start beyond available", start: 5, end: 10, wantNames: []string{}},
		{name: "start < 1", start: 0, end: 1, wantErr: "range start must be >= 1"},
		{name: "end < start", start: 3, end: 1, wantErr: "range end (1) must be >= start (3)"},
	}

	path := writeFile(t, t.TempDir(), "batch.csv", batchCSV)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := LoadRange(path, tt.start, tt.end)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			names := []string{}
			for _, e := range entries {
				names = append(names, e.Name)
			}
			assert.Equal(t, tt.wantNames, names)
		})
	}
}
