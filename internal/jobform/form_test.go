package jobform

import (
	"context"
	"testing"

	"screener/internal/api"
	"screener/internal/errors"
	"screener/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitSkills(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"Python, React, AWS", []string{"Python", "React", "AWS"}},
		{"Python,", []string{"Python", ""}},
		{"  Go  ", []string{"Go"}},
		{"", []string{}},
		{"   ", []string{}},
		{"a,,b", []string{"a", "", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitSkills(tt.input))
		})
	}
}

func TestParseExperience(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"5", 5},
		{"3.5", 3.5},
		{" 2 years", 2},
		{".5", 0.5},
		{"-1", -1},
		{"1e1", 10},
		{"abc", 0},
		{"", 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseExperience(tt.input))
		})
	}
}

type fakeCreator struct {
	got types.JobDescriptionCreate
	err error
}

func (f *fakeCreator) CreateJob(_ context.Context, job types.JobDescriptionCreate) (*types.JobDescription, error) {
	f.got = job
	if f.err != nil {
		return nil, f.err
	}
	return &types.JobDescription{ID: 1, Title: job.Title, RequiredSkills: job.RequiredSkills}, nil
}

func filledForm() Form {
	var f Form
	f.Set(FieldTitle, "Backend Engineer")
	f.Set(FieldDescription, "Build APIs")
	f.Set(FieldRequiredSkills, "Go, SQL")
	f.Set(FieldRequiredExperience, "3")
	f.Set(FieldRequiredEducation, "BSc")
	return f
}

func TestSubmitResetsOnSuccess(t *testing.T) {
	form := filledForm()
	creator := &fakeCreator{}

	job, err := form.Submit(context.Background(), creator)
	require.NoError(t, err)

	assert.Equal(t, "Backend Engineer", job.Title)
	assert.Equal(t, types.JobDescriptionCreate{
		Title:              "Backend Engineer",
		Description:        "Build APIs",
		RequiredSkills:     []string{"Go", "SQL"},
		RequiredExperience: 3,
		RequiredEducation:  "BSc",
	}, creator.got)
	assert.Equal(t, Form{}, form)
}

func TestSubmitKeepsFieldsOnFailure(t *testing.T) {
	form := filledForm()
	creator := &fakeCreator{err: &api.APIError{StatusCode: 500, Detail: "database is locked"}}

	_, err := form.Submit(context.Background(), creator)
	require.Error(t, err)

	assert.Equal(t, filledForm(), form)
	assert.Equal(t, "Error creating job description: database is locked", FailureMessage(err))
}

func TestSubmitValidatesBeforeNetwork(t *testing.T) {
	form := filledForm()
	form.Set(FieldTitle, "")
	form.Set(FieldRequiredSkills, "")
	creator := &fakeCreator{}

	_, err := form.Submit(context.Background(), creator)
	require.Error(t, err)

	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
	assert.Contains(t, err.Error(), "Job title, Required skills required")
	assert.Empty(t, creator.got.Description, "creator must not be called")
}

func TestSetUnknownField(t *testing.T) {
	var f Form
	assert.False(t, f.Set("salary", "lots"))
	assert.True(t, f.Set(FieldDescription, "x"))
}
