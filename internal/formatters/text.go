package formatters

import (
	"fmt"
	"strings"

	"screener/internal/dashboard"
	"screener/internal/types"
)

// MatchTableTextFormatter handles text formatting for candidate matches
type MatchTableTextFormatter struct{}

func (mtf *MatchTableTextFormatter) Format(data any) (string, error) {
	table, ok := data.(types.MatchTable)
	if !ok {
		return "", fmt.Errorf("expected MatchTable, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== CANDIDATE MATCHES ===\n")
	if table.Job != nil {
		output.WriteString(fmt.Sprintf("Job: %s\n", table.Job.Title))
	}
	output.WriteString(fmt.Sprintf("Sorted by: %s (%s)\n", table.Sort.Key, table.Sort.Direction))
	output.WriteString(types.MatchCountLabel(len(table.Matches)))
	if table.CurrentSessionOnly {
		output.WriteString(" (from current session)")
	}
	output.WriteString("\n\n")

	if len(table.Matches) == 0 {
		output.WriteString(table.EmptyMessage())
		output.WriteString("\n")
		return output.String(), nil
	}

	for i, m := range table.Matches {
		output.WriteString(fmt.Sprintf("%d. %s  %s [%s]\n", i+1, m.Resume.Name, types.ScoreLabel(m.Score), types.ClassifyScore(m.Score)))
		output.WriteString(fmt.Sprintf("   Email: %s\n", m.Resume.Email))
		output.WriteString(fmt.Sprintf("   Position: %s\n", m.Job.Title))
		output.WriteString(fmt.Sprintf("   Experience: %g years\n", m.Resume.Experience))

		shown, more := types.SkillPreview(m.Resume.Skills)
		output.WriteString("   Skills: ")
		output.WriteString(strings.Join(shown, ", "))
		if more != "" {
			output.WriteString(" " + more)
		}
		output.WriteString("\n")

		for _, s := range types.Preview(m.Strengths, 2) {
			output.WriteString(fmt.Sprintf("   + %s\n", s))
		}
		for _, g := range types.Preview(m.Gaps, 2) {
			output.WriteString(fmt.Sprintf("   - %s\n", g))
		}
		if m.Justification != "" {
			output.WriteString(fmt.Sprintf("   Analysis: %s\n", m.Justification))
		}
		output.WriteString("\n")
	}

	return output.String(), nil
}

func (mtf *MatchTableTextFormatter) SupportedType() string {
	return "MatchTable"
}

// DashboardTextFormatter handles text formatting for dashboard stats
type DashboardTextFormatter struct{}

func (dtf *DashboardTextFormatter) Format(data any) (string, error) {
	stats, ok := data.(types.DashboardStats)
	if !ok {
		return "", fmt.Errorf("expected DashboardStats, got %T", data)
	}

	var output strings.Builder
	output.WriteString("=== DASHBOARD ===\n")
	output.WriteString(fmt.Sprintf("Resumes:   %d\n", stats.TotalResumes))
	output.WriteString(fmt.Sprintf("Jobs:      %d\n", stats.TotalJobs))
	output.WriteString(fmt.Sprintf("Matches:   %d\n", stats.TotalMatches))
	output.WriteString(fmt.Sprintf("Avg Score: %s\n", dashboard.FormatAverage(stats.AverageScore)))
	return output.String(), nil
}

func (dtf *DashboardTextFormatter) SupportedType() string {
	return "DashboardStats"
}

// ResumeListTextFormatter handles text formatting for resumes
type ResumeListTextFormatter struct{}

func (rtf *ResumeListTextFormatter) Format(data any) (string, error) {
	resumes, ok := data.(types.ResumeList)
	if !ok {
		return "", fmt.Errorf("expected ResumeList, got %T", data)
	}

	var output strings.Builder
	output.WriteString(fmt.Sprintf("=== RESUMES (%d) ===\n", len(resumes)))
	for _, r := range resumes {
		output.WriteString(fmt.Sprintf("[%d] %s\n", r.ID, r.Name))
		output.WriteString(fmt.Sprintf("    %s\n", resumeDetails(r)))
		if len(r.Skills) > 0 {
			output.WriteString(fmt.Sprintf("    Skills: %s\n", strings.Join(r.Skills, ", ")))
		}
		if r.Filename != "" {
			output.WriteString(fmt.Sprintf("    File: %s\n", r.Filename))
		}
	}
	return output.String(), nil
}

func (rtf *ResumeListTextFormatter) SupportedType() string {
	return "ResumeList"
}

// JobListTextFormatter handles text formatting for job descriptions
type JobListTextFormatter struct{}

func (jtf *JobListTextFormatter) Format(data any) (string, error) {
	jobs, ok := data.(types.JobList)
	if !ok {
		return "", fmt.Errorf("expected JobList, got %T", data)
	}

	var output strings.Builder
	output.WriteString(fmt.Sprintf("=== JOB DESCRIPTIONS (%d) ===\n", len(jobs)))
	for _, j := range jobs {
		output.WriteString(fmt.Sprintf("[%d] %s\n", j.ID, j.Title))
		output.WriteString(fmt.Sprintf("    Experience: %g years\n", j.RequiredExperience))
		if len(j.RequiredSkills) > 0 {
			output.WriteString(fmt.Sprintf("    Skills: %s\n", strings.Join(j.RequiredSkills, ", ")))
		}
		if j.RequiredEducation != "" {
			output.WriteString(fmt.Sprintf("    Education: %s\n", j.RequiredEducation))
		}
	}
	return output.String(), nil
}

func (jtf *JobListTextFormatter) SupportedType() string {
	return "JobList"
}

// resumeDetails renders "email • N years experience • N skills"
func resumeDetails(r types.Resume) string {
	return fmt.Sprintf("%s • %g years experience • %d skills", r.Email, r.Experience, len(r.Skills))
}
