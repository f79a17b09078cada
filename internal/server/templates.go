package server

import (
	"embed"
	"html/template"
	"net/http"
	"strings"

	"screener/internal/dashboard"
	"screener/internal/jobform"
	"screener/internal/session"
	"screener/internal/types"
)

//go:embed templates/*.html
var templatesFS embed.FS

var pageNames = []string{"dashboard", "upload", "jobs", "candidates"}

var tabLabels = map[session.Tab]string{
	session.TabDashboard:  "Dashboard",
	session.TabUpload:     "Upload Resume",
	session.TabJobs:       "Job Descriptions",
	session.TabCandidates: "Candidates",
}

var tabPaths = map[session.Tab]string{
	session.TabDashboard:  "/",
	session.TabUpload:     "/upload",
	session.TabJobs:       "/jobs",
	session.TabCandidates: "/candidates",
}

var templateFuncs = template.FuncMap{
	"scoreLabel":    types.ScoreLabel,
	"scoreClass":    func(score float64) string { return "score-" + string(types.ClassifyScore(score)) },
	"formatAverage": dashboard.FormatAverage,
	"preview":       types.Preview,
	"skillPreview": func(skills []string) skillView {
		shown, more := types.SkillPreview(skills)
		return skillView{Shown: shown, More: more}
	},
	"sortIndicator": func(c types.SortConfig, key string) string {
		return c.SortIndicator(types.SortKey(key))
	},
	"join": strings.Join,
}

type skillView struct {
	Shown []string
	More  string
}

type tabLink struct {
	Label  string
	Path   string
	Active bool
}

// pageData is what every page template renders from
type pageData struct {
	Title   string
	Tabs    []tabLink
	Notice  *session.Notice
	Version string

	Stats      types.DashboardStats
	Form       jobform.Form
	MaxUpload  string
	WatchDir   string
	Uploading  bool
	Candidates *candidatesView
}

type candidatesView struct {
	State         session.State
	Table         types.MatchTable
	SelectedCount int
	TotalResumes  int
}

func newCandidatesView(st session.State) *candidatesView {
	return &candidatesView{
		State:         st,
		Table:         st.Table(),
		SelectedCount: len(st.Selected),
		TotalResumes:  len(st.Resumes),
	}
}

func parsePages() (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New("layout.html").Funcs(templateFuncs).
			ParseFS(templatesFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, err
		}
		pages[name] = t
	}
	return pages, nil
}

func navTabs(active session.Tab) []tabLink {
	links := make([]tabLink, 0, len(session.Tabs))
	for _, t := range session.Tabs {
		links = append(links, tabLink{Label: tabLabels[t], Path: tabPaths[t], Active: t == active})
	}
	return links
}

func (s *Server) render(w http.ResponseWriter, page string, tab session.Tab, data pageData) {
	t, ok := s.pages[page]
	if !ok {
		http.Error(w, "Unknown page", http.StatusInternalServerError)
		return
	}
	data.Tabs = navTabs(tab)
	data.Version = s.Version
	if data.Title == "" {
		data.Title = tabLabels[tab]
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := t.Execute(w, data); err != nil {
		s.Logger.LogError(err, "Failed to render page", "page", page)
	}
}
