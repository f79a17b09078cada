package formatters

import (
	"fmt"
	"strings"

	"screener/internal/dashboard"
	"screener/internal/types"
)

// MatchTableMarkdownFormatter handles markdown formatting for candidate matches
type MatchTableMarkdownFormatter struct{}

func (mmf *MatchTableMarkdownFormatter) Format(data any) (string, error) {
	table, ok := data.(types.MatchTable)
	if !ok {
		return "", fmt.Errorf("expected MatchTable, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Candidate Matches\n\n")
	if table.Job != nil {
		output.WriteString(fmt.Sprintf("**Job:** %s\n\n", escapeCell(table.Job.Title)))
	}
	output.WriteString(types.MatchCountLabel(len(table.Matches)))
	if table.CurrentSessionOnly {
		output.WriteString(" (from current session)")
	}
	output.WriteString("\n\n")

	if len(table.Matches) == 0 {
		output.WriteString("_" + table.EmptyMessage() + "_\n")
		return output.String(), nil
	}

	output.WriteString(fmt.Sprintf("| Score %s | Candidate | Email | Experience %s | Skills | Strengths | Gaps | Analysis |\n",
		table.Sort.SortIndicator(types.SortByScore), table.Sort.SortIndicator(types.SortByExperience)))
	output.WriteString("|---|---|---|---|---|---|---|---|\n")

	for _, m := range table.Matches {
		shown, more := types.SkillPreview(m.Resume.Skills)
		skills := strings.Join(shown, ", ")
		if more != "" {
			skills += " " + more
		}
		output.WriteString(fmt.Sprintf("| %s | %s | %s | %g years | %s | %s | %s | %s |\n",
			types.ScoreLabel(m.Score),
			escapeCell(m.Resume.Name),
			escapeCell(m.Resume.Email),
			m.Resume.Experience,
			escapeCell(skills),
			escapeCell(strings.Join(types.Preview(m.Strengths, 2), "; ")),
			escapeCell(strings.Join(types.Preview(m.Gaps, 2), "; ")),
			escapeCell(m.Justification)))
	}

	return output.String(), nil
}

func (mmf *MatchTableMarkdownFormatter) SupportedType() string {
	return "MatchTable"
}

// DashboardMarkdownFormatter handles markdown formatting for dashboard stats
type DashboardMarkdownFormatter struct{}

func (dmf *DashboardMarkdownFormatter) Format(data any) (string, error) {
	stats, ok := data.(types.DashboardStats)
	if !ok {
		return "", fmt.Errorf("expected DashboardStats, got %T", data)
	}

	var output strings.Builder
	output.WriteString("# Dashboard\n\n")
	output.WriteString("| Resumes | Jobs | Matches | Avg Score |\n")
	output.WriteString("|---|---|---|---|\n")
	output.WriteString(fmt.Sprintf("| %d | %d | %d | %s |\n",
		stats.TotalResumes, stats.TotalJobs, stats.TotalMatches, dashboard.FormatAverage(stats.AverageScore)))
	return output.String(), nil
}

func (dmf *DashboardMarkdownFormatter) SupportedType() string {
	return "DashboardStats"
}

// ResumeListMarkdownFormatter handles markdown formatting for resumes
type ResumeListMarkdownFormatter struct{}

func (rmf *ResumeListMarkdownFormatter) Format(data any) (string, error) {
	resumes, ok := data.(types.ResumeList)
	if !ok {
		return "", fmt.Errorf("expected ResumeList, got %T", data)
	}

	var output strings.Builder
	output.WriteString("# Resumes\n\n")
	for _, r := range resumes {
		output.WriteString(fmt.Sprintf("## %s\n\n", r.Name))
		output.WriteString(resumeDetails(r))
		output.WriteString("\n\n")
		if len(r.Skills) > 0 {
			output.WriteString("**Skills:** ")
			output.WriteString(strings.Join(r.Skills, ", "))
			output.WriteString("\n\n")
		}
		if len(r.Education) > 0 {
			output.WriteString("**Education:**\n\n")
			for _, e := range r.Education {
				output.WriteString(fmt.Sprintf("- %s\n", e))
			}
			output.WriteString("\n")
		}
	}
	return output.String(), nil
}

func (rmf *ResumeListMarkdownFormatter) SupportedType() string {
	return "ResumeList"
}

// JobListMarkdownFormatter handles markdown formatting for job descriptions
type JobListMarkdownFormatter struct{}

func (jmf *JobListMarkdownFormatter) Format(data any) (string, error) {
	jobs, ok := data.(types.JobList)
	if !ok {
		return "", fmt.Errorf("expected JobList, got %T", data)
	}

	var output strings.Builder
	output.WriteString("# Job Descriptions\n\n")
	for _, j := range jobs {
		output.WriteString(fmt.Sprintf("## %s\n\n", j.Title))
		output.WriteString(j.Description)
		output.WriteString("\n\n")
		output.WriteString(fmt.Sprintf("**Required experience:** %g years\n\n", j.RequiredExperience))
		if len(j.RequiredSkills) > 0 {
			output.WriteString("**Required skills:** ")
			output.WriteString(strings.Join(j.RequiredSkills, ", "))
			output.WriteString("\n\n")
		}
		if j.RequiredEducation != "" {
			output.WriteString(fmt.Sprintf("**Education:** %s\n\n", j.RequiredEducation))
		}
	}
	return output.String(), nil
}

func (jmf *JobListMarkdownFormatter) SupportedType() string {
	return "JobList"
}

// escapeCell keeps a value inside one markdown table cell
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
