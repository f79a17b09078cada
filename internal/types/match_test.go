package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveEmbeddedDerivesIDs(t *testing.T) {
	m := MatchResult{
		MatchScore:     8.5,
		Summary:        "Strong backend profile",
		Resume:         &Resume{ID: 7, Name: "Jane Doe", Experience: 5, Skills: []string{"Go"}},
		JobDescription: &JobDescription{ID: 3, Title: "Backend Engineer"},
	}

	r := Resolve(m, nil, nil)

	assert.Equal(t, ShapeEmbedded, r.Shape)
	assert.Equal(t, 7, r.ResumeID)
	assert.Equal(t, 3, r.JobID)
	assert.Equal(t, "Jane Doe", r.Resume.Name)
	assert.Equal(t, "Strong backend profile", r.Justification)
}

func TestResolveReferenceJoinsLookups(t *testing.T) {
	resumes := map[int]*Resume{1: {ID: 1, Name: "Ann", Experience: 4, Skills: []string{"SQL"}}}
	jobs := map[int]*JobDescription{2: {ID: 2, Title: "Analyst"}}

	r := Resolve(MatchResult{ResumeID: 1, JobDescriptionID: 2, MatchScore: 6, Justification: "ok"}, resumes, jobs)

	assert.Equal(t, ShapeReference, r.Shape)
	assert.Equal(t, "Ann", r.Resume.Name)
	assert.Equal(t, 4.0, r.Resume.Experience)
	assert.Equal(t, "Analyst", r.Job.Title)
	assert.Equal(t, "ok", r.Justification)
}

func TestResolveUnknownReferenceUsesPlaceholders(t *testing.T) {
	r := Resolve(MatchResult{ResumeID: 99, JobDescriptionID: 42, MatchScore: 5}, map[int]*Resume{}, map[int]*JobDescription{})

	assert.Equal(t, "Unknown Candidate", r.Resume.Name)
	assert.Equal(t, "N/A", r.Resume.Email)
	assert.Equal(t, 0.0, r.Resume.Experience)
	assert.Equal(t, []string{}, r.Resume.Skills)
	assert.Equal(t, "Unknown Position", r.Job.Title)
}

func TestResolveDoesNotMutateLookupSkills(t *testing.T) {
	stored := &Resume{ID: 1, Name: "NoSkills"}
	r := Resolve(MatchResult{ResumeID: 1}, map[int]*Resume{1: stored}, nil)

	assert.Equal(t, []string{}, r.Resume.Skills)
	assert.Nil(t, stored.Skills)
}

func TestClassifyScore(t *testing.T) {
	tests := []struct {
		score float64
		want  ScoreClass
	}{
		{10, ScoreHigh},
		{8, ScoreHigh},
		{7.9, ScoreMedium},
		{6, ScoreMedium},
		{5.9, ScoreLow},
		{0, ScoreLow},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyScore(tt.score), "score %v", tt.score)
	}
}

func TestSkillPreview(t *testing.T) {
	shown, more := SkillPreview([]string{"Go", "SQL", "AWS", "K8s", "Rust"})
	assert.Equal(t, []string{"Go", "SQL", "AWS"}, shown)
	assert.Equal(t, "+2 more", more)

	shown, more = SkillPreview([]string{"Go"})
	assert.Equal(t, []string{"Go"}, shown)
	assert.Empty(t, more)
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "8.5/10", ScoreLabel(8.5))
	assert.Equal(t, "7/10", ScoreLabel(7))
	assert.Equal(t, "Showing 1 match", MatchCountLabel(1))
	assert.Equal(t, "Showing 0 matches", MatchCountLabel(0))
	assert.Equal(t, []string{"a", "b"}, Preview([]string{"a", "b", "c"}, 2))
}
