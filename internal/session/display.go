package session

import (
	"cmp"
	"slices"
	"strings"

	"screener/internal/types"
)

// DisplayMatches composes the match list the candidate view shows.
// With the session filter on it is exactly the latest bulk match; otherwise
// the cumulative list narrowed to the selected job. Every entry is resolved
// to its canonical form, then sorted by the active column.
func DisplayMatches(s State) []types.ResolvedMatch {
	resumes := make(map[int]*types.Resume, len(s.Resumes))
	for i := range s.Resumes {
		resumes[s.Resumes[i].ID] = &s.Resumes[i]
	}
	jobs := make(map[int]*types.JobDescription, len(s.Jobs))
	for i := range s.Jobs {
		jobs[s.Jobs[i].ID] = &s.Jobs[i]
	}

	source := s.SessionMatches
	if !s.CurrentSessionOnly {
		source = make([]types.MatchResult, 0, len(s.Matches))
		for _, m := range s.Matches {
			if s.SelectedJobID == 0 || m.JobID() == s.SelectedJobID {
				source = append(source, m)
			}
		}
	}

	resolved := make([]types.ResolvedMatch, 0, len(source))
	for _, m := range source {
		resolved = append(resolved, types.Resolve(m, resumes, jobs))
	}

	SortMatches(resolved, s.Sort)
	return resolved
}

// SortMatches sorts in place, keeping the relative order of equal entries.
// Unknown keys leave the order unchanged.
func SortMatches(matches []types.ResolvedMatch, sort types.SortConfig) {
	compare := comparator(sort.Key)
	if compare == nil {
		return
	}
	slices.SortStableFunc(matches, func(a, b types.ResolvedMatch) int {
		if sort.Direction == types.SortDesc {
			return compare(b, a)
		}
		return compare(a, b)
	})
}

func comparator(key types.SortKey) func(a, b types.ResolvedMatch) int {
	switch key {
	case types.SortByScore:
		return func(a, b types.ResolvedMatch) int { return cmp.Compare(a.Score, b.Score) }
	case types.SortByExperience:
		return func(a, b types.ResolvedMatch) int { return cmp.Compare(a.Resume.Experience, b.Resume.Experience) }
	case types.SortByName:
		return func(a, b types.ResolvedMatch) int { return strings.Compare(a.Resume.Name, b.Resume.Name) }
	}
	return nil
}

// Table packages the displayed matches with the view settings
func (s State) Table() types.MatchTable {
	return types.MatchTable{
		Job:                s.SelectedJob(),
		Sort:               s.Sort,
		CurrentSessionOnly: s.CurrentSessionOnly,
		HasSessionMatches:  s.HasSessionMatches(),
		Matches:            DisplayMatches(s),
	}
}
