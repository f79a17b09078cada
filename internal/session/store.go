package session

import (
	"context"
	"sync"

	"screener/internal/api"
	"screener/internal/errors"
	"screener/internal/types"
)

// API is the part of the screening API the candidate view needs
type API interface {
	ListResumes(ctx context.Context) ([]types.Resume, error)
	ListJobs(ctx context.Context) ([]types.JobDescription, error)
	ListMatches(ctx context.Context, jobID int) ([]types.MatchResult, error)
	BulkMatch(ctx context.Context, jobID int, resumeIDs []int) ([]types.MatchResult, error)
}

// MatchRecorder is told how many results each bulk match returned
type MatchRecorder interface {
	RecordMatches(ctx context.Context, count int, all bool)
}

// Store owns a State and serialises every transition through Reduce
type Store struct {
	mu       sync.Mutex
	state    State
	client   API
	logger   *errors.Logger
	recorder MatchRecorder
}

// NewStore creates a store starting from NewState
func NewStore(client API, logger *errors.Logger, recorder MatchRecorder) *Store {
	if logger == nil {
		logger = errors.Nop()
	}
	return &Store{
		state:    NewState(),
		client:   client,
		logger:   logger,
		recorder: recorder,
	}
}

// Dispatch applies a and returns the resulting state
func (s *Store) Dispatch(a Action) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Reduce(s.state, a)
	return s.state
}

// Snapshot returns the current state
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// TakeNotice returns the current state and clears its notice, so each
// notice is shown once
func (s *Store) TakeNotice() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	s.state = Reduce(s.state, NoticeDismissed{})
	return st
}

// Load fetches resumes, jobs and stored matches. Each fetch is independent:
// a failure is logged and leaves that part of the state as it was.
func (s *Store) Load(ctx context.Context) {
	if resumes, err := s.client.ListResumes(ctx); err != nil {
		s.logger.LogError(err, "Error fetching resumes")
	} else {
		s.Dispatch(ResumesLoaded{Resumes: resumes})
	}

	if jobs, err := s.client.ListJobs(ctx); err != nil {
		s.logger.LogError(err, "Error fetching jobs")
	} else {
		s.Dispatch(JobsLoaded{Jobs: jobs})
	}

	if matches, err := s.client.ListMatches(ctx, 0); err != nil {
		s.logger.LogError(err, "Error fetching matches")
	} else {
		s.Dispatch(MatchesLoaded{Matches: matches})
	}
}

// MatchSelected scores the selected resumes against the selected job.
// On success the selection is cleared.
func (s *Store) MatchSelected(ctx context.Context) error {
	return s.match(ctx, false)
}

// MatchAll scores every loaded resume against the selected job.
// The selection is left as it was.
func (s *Store) MatchAll(ctx context.Context) error {
	return s.match(ctx, true)
}

func (s *Store) match(ctx context.Context, all bool) error {
	s.mu.Lock()
	check := s.state.CheckMatchSelected
	if all {
		check = s.state.CheckMatchAll
	}
	if err := check(); err != nil {
		if err != ErrBusy {
			s.state = Reduce(s.state, NoticeShown{Notice: Notice{Level: NoticeError, Message: api.UserMessage(err)}})
		}
		s.mu.Unlock()
		return err
	}

	jobID := s.state.SelectedJobID
	ids := s.state.Selected
	if all {
		ids = s.state.AllResumeIDs()
	}
	s.state = Reduce(s.state, MatchStarted{})
	s.mu.Unlock()

	s.logger.Info("Starting bulk match", "job_id", jobID, "resumes", len(ids), "all", all)

	results, err := s.client.BulkMatch(ctx, jobID, ids)
	if err != nil {
		s.logger.LogError(err, "Error in bulk match", "job_id", jobID)
		s.Dispatch(MatchFailed{Err: err})
		return err
	}

	if s.recorder != nil {
		s.recorder.RecordMatches(ctx, len(results), all)
	}
	s.Dispatch(MatchSucceeded{Results: results, All: all})
	return nil
}
