package main

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/spboyer/stratafit/internal/projectconfig"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAssignments(t *testing.T) {
	got, err := parseAssignments([]string{"runway_months=9", " stage = 0.4 "})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"runway_months": 9, "stage": 0.4}, got)

	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"missing equals", "runway", `"runway" is not name=value`},
		{"missing name", "=3", `"=3" is not name=value`},
		{"not a number", "runway=soon", `runway: "soon" is not a number`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseAssignments([]string{tt.input})
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestParseRange(t *testing.T) {
	tests := []struct {
		spec      string
		wantStart int
		wantEnd   int
		wantErr   bool
	}{
		{"3-7", 3, 7, false},
		{" 2 - 4 ", 2, 4, false},
		{"5", 5, 5, false},
		{"a-3", 0, 0, true},
		{"3-b", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			start, end, err := parseRange(tt.spec)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}

func TestResolveTCPAddr(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tests := []struct {
		name        string
		addr        string
		allowRemote bool
		want        string
	}{
		{"port only", ":9000", false, "127.0.0.1:9000"},
		{"bare port", "9000", false, "127.0.0.1:9000"},
		{"all interfaces", "0.0.0.0:9000", false, "127.0.0.1:9000"},
		{"ipv6 any", "[::]:9000", false, "127.0.0.1:9000"},
		{"explicit host", "10.0.0.5:9000", false, "10.0.0.5:9000"},
		{"allow remote", "0.0.0.0:9000", true, "0.0.0.0:9000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveTCPAddr(tt.addr, tt.allowRemote, logger))
		})
	}
}

func TestPrintTable(t *testing.T) {
	var b strings.Builder
	printTable(&b, []string{"ID", "NAME"}, [][]string{
		{"bcg_matrix", "BCG Matrix"},
		{"okr", "OKRs"},
	})
	want := "ID          NAME\n" +
		"----------  ----------\n" +
		"bcg_matrix  BCG Matrix\n" +
		"okr         OKRs\n"
	assert.Equal(t, want, b.String())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	got := truncate("a rather long framework name", 10)
	assert.True(t, strings.HasSuffix(got, "…"))
	assert.LessOrEqual(t, len([]rune(got)), 10)
}

func parseSelection(t *testing.T, cfg *projectconfig.ProjectConfig, flagArgs ...string) error {
	t.Helper()
	var f selectionFlags
	cmd := &cobra.Command{Use: "test"}
	f.register(cmd)
	require.NoError(t, cmd.ParseFlags(flagArgs))
	_, err := f.options(cmd, cfg)
	return err
}

func TestSelectionFlags_Options(t *testing.T) {
	cfg := projectconfig.New()
	cfg.Selection.Weights = map[string]float64{"stage": 0.3, "industry": 0.2}

	var f selectionFlags
	cmd := &cobra.Command{Use: "test"}
	f.register(cmd)
	require.NoError(t, cmd.ParseFlags([]string{"--max-results", "3", "--no-derive", "--weight", "industry=0.5"}))

	opts, err := f.options(cmd, cfg)
	require.NoError(t, err)
	assert.Equal(t, 3, opts.MaxResults)
	assert.Equal(t, projectconfig.DefaultDiversityCap, opts.DiversityCap, "unset flags keep the configured value")
	require.NotNil(t, opts.DeriveChallenges)
	assert.False(t, *opts.DeriveChallenges)
	assert.Equal(t, map[string]float64{"stage": 0.3, "industry": 0.5}, opts.Weights)

	assert.Equal(t, 0.2, cfg.Selection.Weights["industry"], "config weights are not mutated")

	err = parseSelection(t, cfg, "--weight", "industry")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--weight")
}
