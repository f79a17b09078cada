package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"screener/internal/common"
	"screener/internal/errors"
	"screener/internal/types"
	"screener/internal/upload"
	"screener/internal/utils"

	"github.com/spf13/cobra"
)

var resumesCmd = &cobra.Command{
	Use:   "resumes",
	Short: "List and upload resumes",
}

var resumesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the resumes stored on the server",
	Args:  cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return resolveOutputFormat(cmd, &resumesListConfig)
	},
	RunE: runResumesList,
}

var resumesUploadCmd = &cobra.Command{
	Use:   "upload [resume.pdf...]",
	Short: "Upload PDF resumes for parsing",
	Long: `Upload one or more PDF resumes. Files are checked to be PDFs within the
configured size limit before anything is sent.

With --watch DIR the command keeps running after the given files are done
and uploads every PDF that appears in DIR until interrupted.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 && watchDir == "" {
			return fmt.Errorf("give at least one file or --watch DIR")
		}
		return resolveOutputFormat(cmd, &resumesUploadConfig)
	},
	RunE: runResumesUpload,
}

var (
	resumesListConfig   common.CommandConfig
	resumesUploadConfig common.CommandConfig
	watchDir            string
)

func init() {
	addOutputFlags(resumesListCmd, &resumesListConfig)
	addOutputFlags(resumesUploadCmd, &resumesUploadConfig)
	resumesUploadCmd.Flags().StringVar(&watchDir, "watch", "", "Keep running and upload PDFs dropped into this directory")

	resumesCmd.AddCommand(resumesListCmd)
	resumesCmd.AddCommand(resumesUploadCmd)
}

func runResumesList(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())
	client := newClient(cfg, logger)

	cc := resumesListConfig
	cc.Stdout = cmd.OutOrStdout()

	return common.RunAPICommand(cmd.Context(), logger, cc,
		func(ctx context.Context) (types.ResumeList, error) {
			resumes, err := client.ListResumes(ctx)
			return types.ResumeList(resumes), err
		}, nil)
}

func runResumesUpload(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())
	uploader := upload.New(newClient(cfg, logger), cfg.Upload, logger, nil)

	cc := resumesUploadConfig
	cc.Stdout = cmd.OutOrStdout()

	files, err := common.NewFileProcessor(logger).ValidateAndReadFiles(args...)
	if err != nil {
		return err
	}

	var uploaded types.ResumeList
	failed := 0
	for _, f := range files {
		resume, err := uploader.UploadBytes(cmd.Context(), f.Name, f.Data)
		if err != nil {
			failed++
			logger.LogError(err, "Upload failed", "file", f.Path)
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", f.Name, upload.FailureMessage(err))
			continue
		}
		uploaded = append(uploaded, *resume)
	}

	if len(uploaded) > 0 {
		if err := common.NewOutputHandler(logger).HandleOutput(uploaded, cc); err != nil {
			return err
		}
	}

	if watchDir != "" {
		if err := watchAndUpload(cmd, uploader, cfg.Upload.DebounceDelay); err != nil {
			return err
		}
	}

	if failed > 0 {
		return errors.NewAPIError(errors.ErrCodeAPIStatus,
			fmt.Sprintf("%d of %d uploads failed", failed, len(files)), nil)
	}
	return nil
}

// watchAndUpload uploads PDFs dropped into watchDir until the command's
// context is cancelled
func watchAndUpload(cmd *cobra.Command, uploader *upload.Uploader, debounce time.Duration) error {
	ctx := cmd.Context()
	logger := getLoggerFromContext(ctx).With("watch_dir", watchDir)
	out := cmd.OutOrStdout()

	df := upload.NewDropFolder(watchDir, debounce, func(path string) {
		if !utils.IsPDFFile(path) {
			logger.Warn("Skipping non-PDF file in drop folder", "file", path)
			return
		}
		resume, err := uploader.Upload(ctx, path)
		if err != nil {
			logger.LogError(err, "Drop folder upload failed", "file", path)
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", filepath.Base(path), upload.FailureMessage(err))
			return
		}
		_, _ = fmt.Fprintf(out, "%s %s (id %d)\n", upload.SuccessMessage, resume.Name, resume.ID)
	}, logger)

	if err := df.Start(); err != nil {
		return fmt.Errorf("failed to watch %s: %w", watchDir, err)
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s for resumes. Press Ctrl+C to stop.\n", watchDir)

	<-ctx.Done()
	return df.Stop()
}
