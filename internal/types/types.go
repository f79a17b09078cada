package types

// Resume represents a parsed candidate resume as returned by the API
type Resume struct {
	ID         int      `json:"id"`
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Phone      string   `json:"phone,omitempty"`
	Experience float64  `json:"experience"` // years
	Skills     []string `json:"skills"`
	Education  []string `json:"education,omitempty"`
	Filename   string   `json:"filename,omitempty"`
	CreatedAt  string   `json:"created_at,omitempty"`
}

// JobDescription represents a job posting candidates are matched against
type JobDescription struct {
	ID                 int      `json:"id"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	RequiredSkills     []string `json:"required_skills"`
	RequiredExperience float64  `json:"required_experience"`
	RequiredEducation  string   `json:"required_education,omitempty"`
	CreatedAt          string   `json:"created_at,omitempty"`
}

// JobDescriptionCreate is the body posted to create a job description
type JobDescriptionCreate struct {
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	RequiredSkills     []string `json:"required_skills"`
	RequiredExperience float64  `json:"required_experience"`
	RequiredEducation  string   `json:"required_education"`
}

// MatchResult is a scored pairing of a resume and a job description.
// Bulk match responses embed Resume and JobDescription and may omit
// the ids; stored results carry ids only.
type MatchResult struct {
	ID               int             `json:"id,omitempty"`
	ResumeID         int             `json:"resume_id,omitempty"`
	JobDescriptionID int             `json:"job_description_id,omitempty"`
	MatchScore       float64         `json:"match_score"` // 0-10
	Strengths        []string        `json:"strengths"`
	Gaps             []string        `json:"gaps"`
	Justification    string          `json:"justification,omitempty"`
	Summary          string          `json:"summary,omitempty"`
	Resume           *Resume         `json:"resume,omitempty"`
	JobDescription   *JobDescription `json:"job_description,omitempty"`
	CreatedAt        string          `json:"created_at,omitempty"`
}

// BulkMatchRequest asks the API to score several resumes against one job
type BulkMatchRequest struct {
	ResumeIDs        []int `json:"resume_ids"`
	JobDescriptionID int   `json:"job_description_id"`
}

// BulkMatchResponse carries the freshly scored matches
type BulkMatchResponse struct {
	Results []MatchResult `json:"results"`
}

// APIInfo is the banner returned by the API root
type APIInfo struct {
	Message string `json:"message"`
	Version string `json:"version"`
}

// DashboardStats summarises the data held by the API
type DashboardStats struct {
	TotalResumes int     `json:"total_resumes"`
	TotalJobs    int     `json:"total_jobs"`
	TotalMatches int     `json:"total_matches"`
	AverageScore float64 `json:"average_score"`
}

// ResumeList is a named slice so formatters can dispatch on it
type ResumeList []Resume

// JobList is a named slice so formatters can dispatch on it
type JobList []JobDescription
