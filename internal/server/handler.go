package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"screener/internal/api"
	"screener/internal/dashboard"
	"screener/internal/errors"
	"screener/internal/formatters"
	"screener/internal/jobform"
	"screener/internal/session"
	"screener/internal/types"
	"screener/internal/upload"
	"screener/internal/utils"

	"go.opentelemetry.io/otel/attribute"
)

// enter switches the store to tab. Entering the candidate view from
// elsewhere starts it fresh and reloads its data.
func (s *Server) enter(ctx context.Context, tab session.Tab) {
	if s.store.Snapshot().Tab == tab {
		return
	}
	s.store.Dispatch(session.TabSwitched{Tab: tab})
	if tab == session.TabCandidates {
		s.store.Load(ctx)
	}
}

func (s *Server) notify(level session.NoticeLevel, message string) {
	s.store.Dispatch(session.NoticeShown{Notice: session.Notice{Level: level, Message: message}})
}

func redirect(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// dashboardHandler renders the summary figures. A failed fetch shows zeros.
func (s *Server) dashboardHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.metrics.Tracer("screener.web").Start(r.Context(), "web.dashboard")
	defer span.End()

	s.enter(ctx, session.TabDashboard)

	stats, err := dashboard.Fetch(ctx, s.backend)
	if err != nil {
		span.RecordError(err)
		s.Logger.LogError(err, "Error fetching stats")
	}

	st := s.store.TakeNotice()
	s.render(w, "dashboard", session.TabDashboard, pageData{Notice: st.Notice, Stats: stats})
}

func (s *Server) uploadPageHandler(w http.ResponseWriter, r *http.Request) {
	s.enter(r.Context(), session.TabUpload)

	st := s.store.TakeNotice()
	s.render(w, "upload", session.TabUpload, pageData{
		Notice:    st.Notice,
		MaxUpload: utils.FormatFileSize(s.AppConfig.Upload.MaxFileSize),
		WatchDir:  s.AppConfig.Upload.WatchDir,
		Uploading: s.uploader.Busy(),
	})
}

// uploadHandler accepts one multipart "file" field
func (s *Server) uploadHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.metrics.Tracer("screener.web").Start(r.Context(), "web.upload")
	defer span.End()

	s.enter(ctx, session.TabUpload)
	defer redirect(w, r, "/upload")

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if stderrors.As(err, &maxBytesErr) {
			s.notify(session.NoticeError, fmt.Sprintf("File is too large (limit %s)", utils.FormatFileSize(maxBytesErr.Limit)))
			return
		}
		s.notify(session.NoticeError, upload.ErrNotPDF.Message)
		return
	}
	defer func() {
		if err := file.Close(); err != nil {
			s.Logger.LogError(err, "Failed to close uploaded file")
		}
	}()

	data, err := io.ReadAll(io.LimitReader(file, s.AppConfig.Upload.MaxFileSize+1))
	if err != nil {
		s.Logger.LogError(err, "Failed to read uploaded file", "file", header.Filename)
		s.notify(session.NoticeError, upload.FailureMessage(err))
		return
	}

	span.SetAttributes(attribute.String("upload.filename", header.Filename), attribute.Int("upload.size", len(data)))

	resume, err := s.uploader.UploadBytes(ctx, header.Filename, data)
	if err != nil {
		span.RecordError(err)
		if !errors.IsType(err, errors.ErrorTypeValidation) {
			s.Logger.LogError(err, "Upload error", "file", header.Filename)
		}
		s.notify(session.NoticeError, upload.FailureMessage(err))
		return
	}

	s.store.Dispatch(session.ResumeUploaded{Resume: *resume})
	s.notify(session.NoticeSuccess, upload.SuccessMessage)
}

func (s *Server) jobsPageHandler(w http.ResponseWriter, r *http.Request) {
	s.enter(r.Context(), session.TabJobs)

	st := s.store.TakeNotice()
	s.formMu.Lock()
	form := s.form
	s.formMu.Unlock()

	s.render(w, "jobs", session.TabJobs, pageData{Notice: st.Notice, Form: form})
}

// createJobHandler submits the job description form. The entered values
// are kept on failure and cleared on success.
func (s *Server) createJobHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.metrics.Tracer("screener.web").Start(r.Context(), "web.create_job")
	defer span.End()

	s.enter(ctx, session.TabJobs)
	defer redirect(w, r, "/jobs")

	if err := r.ParseForm(); err != nil {
		s.notify(session.NoticeError, jobform.FailureMessage(err))
		return
	}

	s.formMu.Lock()
	for _, name := range []string{
		jobform.FieldTitle,
		jobform.FieldDescription,
		jobform.FieldRequiredSkills,
		jobform.FieldRequiredExperience,
		jobform.FieldRequiredEducation,
	} {
		s.form.Set(name, r.PostFormValue(name))
	}
	job, err := s.form.Submit(ctx, s.backend)
	s.formMu.Unlock()

	if err != nil {
		span.RecordError(err)
		if errors.IsType(err, errors.ErrorTypeValidation) {
			s.notify(session.NoticeError, api.UserMessage(err))
			return
		}
		s.metrics.RecordJobCreated(ctx, false)
		s.Logger.LogError(err, "Error creating job")
		s.notify(session.NoticeError, jobform.FailureMessage(err))
		return
	}

	s.metrics.RecordJobCreated(ctx, true)
	s.store.Dispatch(session.JobCreated{Job: *job})
	s.notify(session.NoticeSuccess, jobform.SuccessMessage)
}

func (s *Server) candidatesHandler(w http.ResponseWriter, r *http.Request) {
	s.enter(r.Context(), session.TabCandidates)

	st := s.store.TakeNotice()
	s.render(w, "candidates", session.TabCandidates, pageData{
		Notice:     st.Notice,
		Candidates: newCandidatesView(st),
	})
}

// candidateAction wraps a state change on the candidate view and returns
// to it afterwards
func (s *Server) candidateAction(apply func(r *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.enter(r.Context(), session.TabCandidates)
		apply(r)
		redirect(w, r, "/candidates")
	}
}

func (s *Server) selectJob(r *http.Request) {
	id, err := strconv.Atoi(r.PostFormValue("job_id"))
	if err != nil || id < 0 {
		id = 0
	}
	s.store.Dispatch(session.JobSelected{JobID: id})
}

func (s *Server) toggleResume(r *http.Request) {
	id, err := strconv.Atoi(r.PostFormValue("resume_id"))
	if err != nil {
		return
	}
	s.store.Dispatch(session.ResumeToggled{ResumeID: id})
}

func (s *Server) toggleSelectAll(*http.Request) {
	s.store.Dispatch(session.SelectAllToggled{})
}

func (s *Server) toggleSort(r *http.Request) {
	s.store.Dispatch(session.SortToggled{Key: types.SortKey(r.PostFormValue("key"))})
}

func (s *Server) toggleFilter(*http.Request) {
	s.store.Dispatch(session.SessionFilterToggled{})
}

func (s *Server) clearSessionMatches(*http.Request) {
	s.store.Dispatch(session.SessionMatchesCleared{})
}

func (s *Server) matchSelected(r *http.Request) {
	ctx, span := s.metrics.Tracer("screener.web").Start(r.Context(), "web.match_selected")
	defer span.End()
	if err := s.store.MatchSelected(ctx); err != nil {
		span.RecordError(err)
	}
}

func (s *Server) matchAll(r *http.Request) {
	ctx, span := s.metrics.Tracer("screener.web").Start(r.Context(), "web.match_all")
	defer span.End()
	if err := s.store.MatchAll(ctx); err != nil {
		span.RecordError(err)
	}
}

// exportHandler streams the currently displayed matches as a workbook
func (s *Server) exportHandler(w http.ResponseWriter, r *http.Request) {
	s.enter(r.Context(), session.TabCandidates)
	table := s.store.Snapshot().Table()

	filename := fmt.Sprintf("matches-%s.xlsx", time.Now().Format("20060102-150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	if err := formatters.WriteMatchesExcel(w, table); err != nil {
		s.Logger.LogError(err, "Failed to export matches")
	}
}
