package session

import (
	"slices"

	"screener/internal/errors"
	"screener/internal/types"
)

// Tab is a top-level view
type Tab string

const (
	TabDashboard  Tab = "dashboard"
	TabUpload     Tab = "upload"
	TabJobs       Tab = "jobs"
	TabCandidates Tab = "candidates"
)

// Tabs lists the views in navigation order
var Tabs = []Tab{TabDashboard, TabUpload, TabJobs, TabCandidates}

// NoticeLevel styles a notice
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

// Notice is a one-shot message for the user
type Notice struct {
	Level   NoticeLevel
	Message string
}

// State is everything the candidate view renders from. Values are treated
// as immutable; Reduce returns a new State.
type State struct {
	Tab Tab

	Resumes        []types.Resume
	Jobs           []types.JobDescription
	Matches        []types.MatchResult // cumulative
	SessionMatches []types.MatchResult // latest bulk match only

	SelectedJobID int   // 0 means none
	Selected      []int // resume ids in selection order
	SelectAll     bool

	Sort               types.SortConfig
	CurrentSessionOnly bool
	Busy               bool

	Notice *Notice
}

// NewState returns the state of a freshly opened candidate view
func NewState() State {
	return State{
		Tab:                TabDashboard,
		Sort:               types.SortConfig{Key: types.SortByScore, Direction: types.SortDesc},
		CurrentSessionOnly: true,
	}
}

// Validation failures raised before any network call
var (
	ErrBusy              = errors.NewValidationError(errors.ErrCodeBusy, "A match is already in progress", nil)
	ErrNoJobSelected     = errors.NewValidationError(errors.ErrCodeNoJobSelected, "Please select a job description first", nil)
	ErrNoResumesSelected = errors.NewValidationError(errors.ErrCodeNoResumes, "Please select at least one resume to match", nil)
	ErrNoResumes         = errors.NewValidationError(errors.ErrCodeNoResumes, "There are no resumes to match", nil)
)

// CheckMatchSelected reports why Match Selected cannot run, or nil
func (s State) CheckMatchSelected() error {
	switch {
	case s.Busy:
		return ErrBusy
	case s.SelectedJobID == 0:
		return ErrNoJobSelected
	case len(s.Selected) == 0:
		return ErrNoResumesSelected
	}
	return nil
}

// CheckMatchAll reports why Match All cannot run, or nil
func (s State) CheckMatchAll() error {
	switch {
	case s.Busy:
		return ErrBusy
	case s.SelectedJobID == 0:
		return ErrNoJobSelected
	case len(s.Resumes) == 0:
		return ErrNoResumes
	}
	return nil
}

func (s State) MatchSelectedDisabled() bool { return s.CheckMatchSelected() != nil }

func (s State) MatchAllDisabled() bool { return s.CheckMatchAll() != nil }

// IsSelected reports whether a resume is in the selection
func (s State) IsSelected(id int) bool {
	return slices.Contains(s.Selected, id)
}

// SelectedJob returns the chosen job description, or nil
func (s State) SelectedJob() *types.JobDescription {
	if s.SelectedJobID == 0 {
		return nil
	}
	for i := range s.Jobs {
		if s.Jobs[i].ID == s.SelectedJobID {
			return &s.Jobs[i]
		}
	}
	return nil
}

// AllResumeIDs returns the ids of every loaded resume in load order
func (s State) AllResumeIDs() []int {
	ids := make([]int, 0, len(s.Resumes))
	for _, r := range s.Resumes {
		ids = append(ids, r.ID)
	}
	return ids
}

// HasSessionMatches reports whether the latest bulk match produced anything
func (s State) HasSessionMatches() bool {
	return len(s.SessionMatches) > 0
}
