package session

import (
	"fmt"
	"slices"

	"screener/internal/api"
	"screener/internal/types"
)

// Action is a state transition request
type Action interface {
	isAction()
}

type (
	// TabSwitched changes the active view. Entering the candidate view
	// starts it from a fresh state, as opening it anew would.
	TabSwitched struct{ Tab Tab }

	ResumesLoaded struct{ Resumes []types.Resume }
	JobsLoaded    struct{ Jobs []types.JobDescription }
	MatchesLoaded struct{ Matches []types.MatchResult }

	ResumeUploaded struct{ Resume types.Resume }
	JobCreated     struct{ Job types.JobDescription }

	JobSelected           struct{ JobID int }
	ResumeToggled         struct{ ResumeID int }
	SelectAllToggled      struct{}
	SortToggled           struct{ Key types.SortKey }
	SessionFilterToggled  struct{}
	SessionMatchesCleared struct{}

	MatchStarted struct{}

	// MatchSucceeded records a bulk match response. All distinguishes
	// Match All, which leaves the selection untouched.
	MatchSucceeded struct {
		Results []types.MatchResult
		All     bool
	}
	MatchFailed struct{ Err error }

	NoticeShown     struct{ Notice Notice }
	NoticeDismissed struct{}
)

func (TabSwitched) isAction()           {}
func (ResumesLoaded) isAction()         {}
func (JobsLoaded) isAction()            {}
func (MatchesLoaded) isAction()         {}
func (ResumeUploaded) isAction()        {}
func (JobCreated) isAction()            {}
func (JobSelected) isAction()           {}
func (ResumeToggled) isAction()         {}
func (SelectAllToggled) isAction()      {}
func (SortToggled) isAction()           {}
func (SessionFilterToggled) isAction()  {}
func (SessionMatchesCleared) isAction() {}
func (MatchStarted) isAction()          {}
func (MatchSucceeded) isAction()        {}
func (MatchFailed) isAction()           {}
func (NoticeShown) isAction()           {}
func (NoticeDismissed) isAction()       {}

// Reduce applies a to s and returns the next state. s is not modified.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case TabSwitched:
		if a.Tab == TabCandidates && s.Tab != TabCandidates {
			next := NewState()
			next.Tab = TabCandidates
			return next
		}
		s.Tab = a.Tab
		s.Notice = nil

	case ResumesLoaded:
		s.Resumes = slices.Clone(a.Resumes)
		s = syncSelection(s)

	case JobsLoaded:
		s.Jobs = slices.Clone(a.Jobs)

	case MatchesLoaded:
		s.Matches = slices.Clone(a.Matches)

	case ResumeUploaded:
		s.Resumes = append(slices.Clone(s.Resumes), a.Resume)
		if s.SelectAll {
			s.Selected = append(slices.Clone(s.Selected), a.Resume.ID)
		}

	case JobCreated:
		s.Jobs = append(slices.Clone(s.Jobs), a.Job)

	case JobSelected:
		s.SelectedJobID = a.JobID

	case ResumeToggled:
		if i := slices.Index(s.Selected, a.ResumeID); i >= 0 {
			s.Selected = slices.Delete(slices.Clone(s.Selected), i, i+1)
		} else {
			s.Selected = append(slices.Clone(s.Selected), a.ResumeID)
		}

	case SelectAllToggled:
		s.SelectAll = !s.SelectAll
		s = syncSelection(s)

	case SortToggled:
		s.Sort = ToggleSort(s.Sort, a.Key)

	case SessionFilterToggled:
		s.CurrentSessionOnly = !s.CurrentSessionOnly

	case SessionMatchesCleared:
		s.SessionMatches = nil

	case MatchStarted:
		s.Busy = true
		s.Notice = nil

	case MatchSucceeded:
		s.Busy = false
		s.SessionMatches = slices.Clone(a.Results)
		s.Matches = append(slices.Clone(s.Matches), a.Results...)
		if a.All {
			s.Notice = &Notice{Level: NoticeSuccess,
				Message: fmt.Sprintf("Matched all %d candidates successfully!", len(a.Results))}
		} else {
			s.Notice = &Notice{Level: NoticeSuccess,
				Message: fmt.Sprintf("Matched %d selected candidates successfully!", len(a.Results))}
			s.Selected = nil
			s.SelectAll = false
		}

	case MatchFailed:
		s.Busy = false
		s.Notice = &Notice{Level: NoticeError, Message: "Error matching candidates: " + api.UserMessage(a.Err)}

	case NoticeShown:
		n := a.Notice
		s.Notice = &n

	case NoticeDismissed:
		s.Notice = nil
	}
	return s
}

// syncSelection re-derives the selection from the select-all flag. It runs
// when the flag flips or the resume list is reloaded; toggling single
// resumes never touches the flag.
func syncSelection(s State) State {
	if s.SelectAll {
		s.Selected = s.AllResumeIDs()
	} else {
		s.Selected = nil
	}
	return s
}

// ToggleSort returns the sort after clicking the column key: ascending,
// unless the column is already ascending.
func ToggleSort(cur types.SortConfig, key types.SortKey) types.SortConfig {
	dir := types.SortAsc
	if cur.Key == key && cur.Direction == types.SortAsc {
		dir = types.SortDesc
	}
	return types.SortConfig{Key: key, Direction: dir}
}
