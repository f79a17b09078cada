package cli

import (
	"context"
	"fmt"

	"screener/internal/common"
	"screener/internal/formatters"
	"screener/internal/session"
	"screener/internal/types"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Score resumes against a job description",
	Long: `Run a bulk match of resumes against one job description and print the
freshly scored results, best match first.

Pick resumes with repeated --resume flags, or score every stored resume
with --all.`,
	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := common.ValidateIDs("job", matchJobID); err != nil {
			return err
		}
		if err := common.ValidateIDs("resume", matchResumeIDs...); err != nil {
			return err
		}
		return resolveOutputFormat(cmd, &matchConfig)
	},
	RunE: runMatch,
}

var (
	matchConfig    common.CommandConfig
	matchJobID     int
	matchResumeIDs []int
	matchAll       bool
	matchXLSX      string
)

func init() {
	addOutputFlags(matchCmd, &matchConfig)
	matchCmd.Flags().IntVar(&matchJobID, "job", 0, "Job description id to match against")
	matchCmd.Flags().IntSliceVar(&matchResumeIDs, "resume", nil, "Resume id to match (repeatable)")
	matchCmd.Flags().BoolVar(&matchAll, "all", false, "Match every stored resume")
	matchCmd.Flags().StringVar(&matchXLSX, "xlsx", "", "Also export the results to an Excel workbook")

	_ = matchCmd.MarkFlagRequired("job")
	matchCmd.MarkFlagsMutuallyExclusive("resume", "all")
	matchCmd.MarkFlagsOneRequired("resume", "all")
}

func runMatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	client := newClient(cfg, logger)
	resumes, jobs, err := fetchCandidates(ctx, client)
	if err != nil {
		return err
	}

	store := session.NewStore(client, logger, nil)
	store.Dispatch(session.TabSwitched{Tab: session.TabCandidates})
	store.Dispatch(session.ResumesLoaded{Resumes: resumes})
	store.Dispatch(session.JobsLoaded{Jobs: jobs})

	st := store.Dispatch(session.JobSelected{JobID: matchJobID})
	if st.SelectedJob() == nil {
		return fmt.Errorf("job description %d not found", matchJobID)
	}

	if matchAll {
		err = store.MatchAll(ctx)
	} else {
		for _, id := range matchResumeIDs {
			if !hasResume(st.Resumes, id) {
				return fmt.Errorf("resume %d not found", id)
			}
			if !store.Snapshot().IsSelected(id) {
				store.Dispatch(session.ResumeToggled{ResumeID: id})
			}
		}
		err = store.MatchSelected(ctx)
	}
	if err != nil {
		return fmt.Errorf("failed to match candidates: %w", err)
	}

	st = store.TakeNotice()
	if st.Notice != nil {
		logger.Info(st.Notice.Message, "job_id", matchJobID)
	}

	table := st.Table()
	if matchXLSX != "" {
		if err := exportTable(cmd, table, matchXLSX); err != nil {
			return err
		}
	}

	cc := matchConfig
	cc.Stdout = cmd.OutOrStdout()
	return common.NewOutputHandler(logger).HandleOutput(table, cc)
}

// fetchCandidates loads resumes and jobs for a one-shot match. Unlike the
// web view, any fetch failure aborts the command.
func fetchCandidates(ctx context.Context, client Backend) ([]types.Resume, []types.JobDescription, error) {
	var (
		resumes []types.Resume
		jobs    []types.JobDescription
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		resumes, err = client.ListResumes(gctx)
		return err
	})
	g.Go(func() (err error) {
		jobs, err = client.ListJobs(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("failed to load candidates: %w", err)
	}
	return resumes, jobs, nil
}

func hasResume(resumes []types.Resume, id int) bool {
	for _, r := range resumes {
		if r.ID == id {
			return true
		}
	}
	return false
}

// exportTable writes table to an .xlsx workbook at filename
func exportTable(cmd *cobra.Command, table types.MatchTable, filename string) error {
	logger := getLoggerFromContext(cmd.Context())

	path, err := formatters.ExportMatchesToExcel(table, filename)
	if err != nil {
		return fmt.Errorf("failed to export matches: %w", err)
	}
	logger.Info("Matches exported", "file", path, "matches", len(table.Matches))
	return nil
}
