package types

import "fmt"

// MatchShape tells which wire form a match arrived in
type MatchShape int

const (
	// ShapeEmbedded matches carry the candidate and job inline (bulk match responses)
	ShapeEmbedded MatchShape = iota
	// ShapeReference matches carry only ids (stored match results)
	ShapeReference
)

func (s MatchShape) String() string {
	if s == ShapeEmbedded {
		return "embedded"
	}
	return "reference"
}

// Shape classifies a raw match
func (m MatchResult) Shape() MatchShape {
	if m.Resume != nil {
		return ShapeEmbedded
	}
	return ShapeReference
}

// CandidateResumeID returns the resume id, falling back to the embedded record
func (m MatchResult) CandidateResumeID() int {
	if m.ResumeID == 0 && m.Resume != nil {
		return m.Resume.ID
	}
	return m.ResumeID
}

// JobID returns the job description id, falling back to the embedded record
func (m MatchResult) JobID() int {
	if m.JobDescriptionID == 0 && m.JobDescription != nil {
		return m.JobDescription.ID
	}
	return m.JobDescriptionID
}

// ResolvedMatch is the single canonical form every match takes before display.
// Resume and Job are never nil.
type ResolvedMatch struct {
	ResumeID      int             `json:"resume_id"`
	JobID         int             `json:"job_description_id"`
	Score         float64         `json:"match_score"`
	Strengths     []string        `json:"strengths"`
	Gaps          []string        `json:"gaps"`
	Justification string          `json:"justification"`
	Resume        *Resume         `json:"resume"`
	Job           *JobDescription `json:"job_description"`
	Shape         MatchShape      `json:"-"`
}

// UnknownCandidate is shown when a match references a resume that is not loaded
func UnknownCandidate() *Resume {
	return &Resume{Name: "Unknown Candidate", Email: "N/A", Experience: 0, Skills: []string{}}
}

// UnknownPosition is shown when a match references a job that is not loaded
func UnknownPosition() *JobDescription {
	return &JobDescription{Title: "Unknown Position"}
}

// Resolve flattens m into a ResolvedMatch. Reference-shaped matches are joined
// against the supplied lookups; misses fall back to placeholders.
func Resolve(m MatchResult, resumes map[int]*Resume, jobs map[int]*JobDescription) ResolvedMatch {
	r := ResolvedMatch{
		ResumeID:      m.CandidateResumeID(),
		JobID:         m.JobID(),
		Score:         m.MatchScore,
		Strengths:     m.Strengths,
		Gaps:          m.Gaps,
		Justification: m.Justification,
		Resume:        m.Resume,
		Job:           m.JobDescription,
		Shape:         m.Shape(),
	}
	if r.Justification == "" {
		r.Justification = m.Summary
	}
	if r.Resume == nil {
		r.Resume = resumes[r.ResumeID]
	}
	if r.Resume == nil {
		r.Resume = UnknownCandidate()
	}
	if r.Job == nil {
		r.Job = jobs[r.JobID]
	}
	if r.Job == nil {
		r.Job = UnknownPosition()
	}
	if r.Resume.Skills == nil {
		cp := *r.Resume
		cp.Skills = []string{}
		r.Resume = &cp
	}
	return r
}

// ScoreClass is the colour band of a match score
type ScoreClass string

const (
	ScoreHigh   ScoreClass = "high"
	ScoreMedium ScoreClass = "medium"
	ScoreLow    ScoreClass = "low"
)

// ClassifyScore maps a 0-10 score to its band
func ClassifyScore(score float64) ScoreClass {
	switch {
	case score >= 8:
		return ScoreHigh
	case score >= 6:
		return ScoreMedium
	default:
		return ScoreLow
	}
}

// SkillPreview returns at most three skills plus a "+N more" marker
func SkillPreview(skills []string) ([]string, string) {
	const limit = 3
	if len(skills) <= limit {
		return skills, ""
	}
	return skills[:limit], fmt.Sprintf("+%d more", len(skills)-limit)
}

// Preview returns the first n items of list
func Preview(list []string, n int) []string {
	if len(list) <= n {
		return list
	}
	return list[:n]
}

// ScoreLabel renders a score as "N/10"
func ScoreLabel(score float64) string {
	return fmt.Sprintf("%g/10", score)
}

// MatchCountLabel renders the list summary line
func MatchCountLabel(n int) string {
	if n == 1 {
		return "Showing 1 match"
	}
	return fmt.Sprintf("Showing %d matches", n)
}

// SortKey names a sortable match column
type SortKey string

const (
	SortByScore      SortKey = "match_score"
	SortByExperience SortKey = "resume.experience"
	SortByName       SortKey = "resume.name"
)

// SortDirection is asc or desc
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SortConfig is the active sort of the match table
type SortConfig struct {
	Key       SortKey       `json:"key"`
	Direction SortDirection `json:"direction"`
}

// MatchTable is a rendered view of the candidate match list
type MatchTable struct {
	Job                *JobDescription `json:"job,omitempty"`
	Sort               SortConfig      `json:"sort"`
	CurrentSessionOnly bool            `json:"current_session_only"`
	HasSessionMatches  bool            `json:"has_session_matches"`
	Matches            []ResolvedMatch `json:"matches"`
}

// EmptyMessage explains an empty table
func (t MatchTable) EmptyMessage() string {
	if t.HasSessionMatches {
		return "No matches found for the current filters. Try changing your filter settings."
	}
	return "No match results found. Upload resumes, create job descriptions, and run matching to see results."
}

// SortIndicator returns the arrow shown next to a sortable column header
func (c SortConfig) SortIndicator(key SortKey) string {
	if c.Key != key {
		return ""
	}
	if c.Direction == SortAsc {
		return "↑"
	}
	return "↓"
}
