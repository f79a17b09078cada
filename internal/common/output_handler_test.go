package common

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"screener/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleOutputToWriter(t *testing.T) {
	var buf bytes.Buffer
	oh := NewOutputHandlerTo(&buf, nil)

	err := oh.HandleOutput(types.DashboardStats{TotalResumes: 3}, CommandConfig{OutputFormat: "json"})

	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"total_resumes": 3`)
}

func TestHandleOutputToFile(t *testing.T) {
	var buf bytes.Buffer
	oh := NewOutputHandlerTo(&buf, nil)
	out := filepath.Join(t.TempDir(), "nested", "resumes.md")

	err := oh.HandleOutput([]types.Resume{{ID: 1, Name: "Ada"}}, CommandConfig{OutputFile: out, OutputFormat: "markdown"})

	require.NoError(t, err)
	assert.Empty(t, buf.String())
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Ada")
}

func TestHandleOutputUnknownFormat(t *testing.T) {
	oh := NewOutputHandlerTo(&bytes.Buffer{}, nil)

	err := oh.HandleOutput(types.DashboardStats{}, CommandConfig{OutputFormat: "yaml"})

	assert.Error(t, err)
}

func TestRunAPICommandSkipsOutputOnError(t *testing.T) {
	called := false
	err := RunAPICommand(context.Background(), nil, CommandConfig{OutputFormat: "json"},
		func(context.Context) (types.JobList, error) {
			called = true
			return nil, assert.AnError
		}, nil)

	assert.True(t, called)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestValidateAndReadFiles(t *testing.T) {
	dir := t.TempDir()
	pdf := filepath.Join(dir, "ada.pdf")
	require.NoError(t, os.WriteFile(pdf, []byte("%PDF-1.4"), 0600))

	fp := NewFileProcessor(nil)

	files, err := fp.ValidateAndReadFiles(pdf)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "ada.pdf", files[0].Name)
	assert.Equal(t, []byte("%PDF-1.4"), files[0].Data)

	_, err = fp.ValidateAndReadFiles(pdf, filepath.Join(dir, "missing.pdf"))
	assert.Error(t, err)
}
