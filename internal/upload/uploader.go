package upload

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"screener/internal/api"
	"screener/internal/config"
	"screener/internal/errors"
	"screener/internal/types"
	"screener/internal/utils"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
)

const pdfMIME = "application/pdf"

// SuccessMessage is shown after a resume is stored
const SuccessMessage = "Resume uploaded successfully!"

var (
	ErrNotPDF           = errors.NewValidationError(errors.ErrCodeNotPDF, "Please upload a PDF file", nil)
	ErrUploadInProgress = errors.NewValidationError(errors.ErrCodeBusy, "An upload is already in progress", nil)
)

// Service accepts resume files
type Service interface {
	UploadResume(ctx context.Context, filename string, data []byte) (*types.Resume, error)
}

// Recorder counts finished uploads
type Recorder interface {
	RecordResumeUpload(ctx context.Context, success bool)
}

// Uploader sends one resume at a time to the screening API
type Uploader struct {
	client   Service
	maxSize  int64
	logger   *errors.Logger
	recorder Recorder
	busy     atomic.Bool
}

// New creates an Uploader; recorder may be nil
func New(client Service, cfg config.UploadConfig, logger *errors.Logger, recorder Recorder) *Uploader {
	if logger == nil {
		logger = errors.Nop()
	}
	return &Uploader{
		client:   client,
		maxSize:  cfg.MaxFileSize,
		logger:   logger,
		recorder: recorder,
	}
}

// Busy reports whether an upload is in flight
func (u *Uploader) Busy() bool {
	return u.busy.Load()
}

// Upload reads path and uploads it
func (u *Uploader) Upload(ctx context.Context, path string) (*types.Resume, error) {
	if err := utils.ValidateInputFile(path); err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotFound, "cannot read resume file", err).
			WithContext("file", path)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable, "cannot read resume file", err)
	}
	if info.Size() > u.maxSize {
		return nil, u.tooLarge(path, info.Size())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable, "cannot read resume file", err).
			WithContext("file", path)
	}
	return u.UploadBytes(ctx, filepath.Base(path), data)
}

// UploadBytes checks data is a PDF within the size limit and uploads it.
// Rejected files never reach the network.
func (u *Uploader) UploadBytes(ctx context.Context, filename string, data []byte) (*types.Resume, error) {
	if mt := mimetype.Detect(data); !mt.Is(pdfMIME) {
		u.logger.Warn("Rejected non-PDF upload", "file", filename, "detected", mt.String())
		return nil, ErrNotPDF
	}
	if int64(len(data)) > u.maxSize {
		return nil, u.tooLarge(filename, int64(len(data)))
	}

	if !u.busy.CompareAndSwap(false, true) {
		return nil, ErrUploadInProgress
	}
	defer u.busy.Store(false)

	logArgs := []any{"file", filename, "size", utils.FormatFileSize(int64(len(data)))}
	if pages, err := pageCount(data); err != nil {
		u.logger.Warn("Could not read PDF page count", "file", filename, "error", err)
	} else {
		logArgs = append(logArgs, "pages", pages)
	}
	u.logger.Info("Uploading resume", logArgs...)

	resume, err := u.client.UploadResume(ctx, filename, data)
	if u.recorder != nil {
		u.recorder.RecordResumeUpload(ctx, err == nil)
	}
	if err != nil {
		return nil, err
	}

	u.logger.Info("Resume uploaded", "file", filename, "resume_id", resume.ID, "name", resume.Name)
	return resume, nil
}

func (u *Uploader) tooLarge(name string, size int64) error {
	return errors.NewValidationError(errors.ErrCodeFileTooLarge,
		fmt.Sprintf("File is too large (%s, limit %s)", utils.FormatFileSize(size), utils.FormatFileSize(u.maxSize)), nil).
		WithContext("file", name)
}

// pageCount opens data as a PDF. The parser panics on some malformed
// files, so panics are turned into errors.
func pageCount(data []byte) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed PDF: %v", r)
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, err
	}
	return r.NumPage(), nil
}

// FailureMessage is shown when an upload fails. Client-side rejections are
// shown as they are; server and transport failures get a prefix.
func FailureMessage(err error) string {
	if errors.IsType(err, errors.ErrorTypeValidation) {
		return api.UserMessage(err)
	}
	return "Error uploading resume: " + api.UserMessage(err)
}
