package formatters

import (
	"strings"
	"testing"

	"screener/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() types.MatchTable {
	job := &types.JobDescription{ID: 1, Title: "Backend Engineer"}
	return types.MatchTable{
		Job:  job,
		Sort: types.SortConfig{Key: types.SortByScore, Direction: types.SortDesc},
		Matches: []types.ResolvedMatch{
			{
				ResumeID:      1,
				JobID:         1,
				Score:         8.5,
				Strengths:     []string{"Go", "SQL", "Kubernetes"},
				Gaps:          []string{"Rust"},
				Justification: "Strong | solid fit",
				Resume:        &types.Resume{ID: 1, Name: "Ada", Email: "ada@example.com", Experience: 6, Skills: []string{"go", "sql", "k8s", "aws"}},
				Job:           job,
			},
		},
	}
}

func TestRegistryDispatch(t *testing.T) {
	tests := []struct {
		name     string
		data     any
		format   string
		contains string
	}{
		{"match table text", sampleTable(), "text", "=== CANDIDATE MATCHES ==="},
		{"match table pointer", ptr(sampleTable()), "text", "Showing 1 match"},
		{"match table markdown", sampleTable(), "markdown", "| Score ↓ | Candidate |"},
		{"dashboard text", types.DashboardStats{TotalResumes: 2, AverageScore: 7}, "text", "Avg Score: 7.0"},
		{"dashboard markdown", types.DashboardStats{TotalJobs: 3}, "markdown", "| 0 | 3 | 0 | 0.0 |"},
		{"resume slice", []types.Resume{{ID: 4, Name: "Bo", Email: "bo@x.io", Experience: 2, Skills: []string{"a"}}}, "text", "bo@x.io • 2 years experience • 1 skills"},
		{"single job", types.JobDescription{ID: 9, Title: "SRE"}, "markdown", "## SRE"},
		{"json fallback", map[string]int{"a": 1}, "json", `"a": 1`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := GlobalRegistry.Format(tt.data, tt.format)
			require.NoError(t, err)
			assert.Contains(t, out, tt.contains)
		})
	}
}

func TestRegistryUnknownFormat(t *testing.T) {
	_, err := GlobalRegistry.Format(sampleTable(), "yaml")
	assert.Error(t, err)
}

func TestGetSupportedFormats(t *testing.T) {
	assert.Equal(t, []string{"json", "markdown", "text"}, GlobalRegistry.GetSupportedFormats())
}

func TestMatchTableText(t *testing.T) {
	out, err := (&MatchTableTextFormatter{}).Format(sampleTable())
	require.NoError(t, err)

	assert.Contains(t, out, "1. Ada  8.5/10 [high]")
	assert.Contains(t, out, "Skills: go, sql, k8s +1 more")
	assert.Contains(t, out, "+ SQL")
	assert.NotContains(t, out, "Kubernetes")
	assert.Contains(t, out, "- Rust")
}

func TestMatchTableEmpty(t *testing.T) {
	table := types.MatchTable{CurrentSessionOnly: true}
	out, err := (&MatchTableTextFormatter{}).Format(table)
	require.NoError(t, err)
	assert.Contains(t, out, "Showing 0 matches (from current session)")
	assert.Contains(t, out, "No match results found.")

	table.HasSessionMatches = true
	out, err = (&MatchTableMarkdownFormatter{}).Format(table)
	require.NoError(t, err)
	assert.Contains(t, out, "No matches found for the current filters.")
}

func TestMarkdownEscapesCells(t *testing.T) {
	out, err := (&MatchTableMarkdownFormatter{}).Format(sampleTable())
	require.NoError(t, err)
	assert.Contains(t, out, `Strong \| solid fit`)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.True(t, strings.HasPrefix(lines[len(lines)-1], "| 8.5/10 | Ada |"))
}

func TestFormatterTypeMismatch(t *testing.T) {
	formatters := []Formatter{
		&MatchTableTextFormatter{},
		&MatchTableMarkdownFormatter{},
		&DashboardTextFormatter{},
		&DashboardMarkdownFormatter{},
		&ResumeListTextFormatter{},
		&ResumeListMarkdownFormatter{},
		&JobListTextFormatter{},
		&JobListMarkdownFormatter{},
	}
	for _, f := range formatters {
		_, err := f.Format(42)
		assert.Error(t, err, f.SupportedType())
	}
}

func ptr[T any](v T) *T { return &v }
