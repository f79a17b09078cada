package cli

import (
	"fmt"

	"screener/internal/common"
	"screener/internal/session"
	"screener/internal/types"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Show stored match results",
	Long: `Show every match result stored on the server, optionally only those for
one job description. Results are sorted by score, best first, unless
--sort or --asc say otherwise.`,
	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("job") {
			if err := common.ValidateIDs("job", resultsJobID); err != nil {
				return err
			}
		}
		key, err := common.ParseSortKey(resultsSort)
		if err != nil {
			return err
		}
		resultsSortKey = key
		return resolveOutputFormat(cmd, &resultsConfig)
	},
	RunE: runResults,
}

var (
	resultsConfig  common.CommandConfig
	resultsJobID   int
	resultsSort    string
	resultsSortKey types.SortKey
	resultsAsc     bool
	resultsXLSX    string
)

func init() {
	addOutputFlags(resultsCmd, &resultsConfig)
	resultsCmd.Flags().IntVar(&resultsJobID, "job", 0, "Only show results for this job description id")
	resultsCmd.Flags().StringVar(&resultsSort, "sort", "score", "Sort column: score, experience or name")
	resultsCmd.Flags().BoolVar(&resultsAsc, "asc", false, "Sort ascending")
	resultsCmd.Flags().StringVar(&resultsXLSX, "xlsx", "", "Also export the results to an Excel workbook")

	_ = resultsCmd.RegisterFlagCompletionFunc("sort", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return common.SortKeyNames(), cobra.ShellCompDirectiveNoFileComp
	})
}

func runResults(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)
	client := newClient(cfg, logger)

	var (
		resumes []types.Resume
		jobs    []types.JobDescription
		matches []types.MatchResult
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
	g.Go(func() (err error) {
		matches, err = client.ListMatches(gctx, resultsJobID)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to fetch match results: %w", err)
	}

	st := resultsState(resumes, jobs, matches)
	if resultsJobID != 0 && st.SelectedJob() == nil {
		return fmt.Errorf("job description %d not found", resultsJobID)
	}

	table := st.Table()
	if resultsXLSX != "" {
		if err := exportTable(cmd, table, resultsXLSX); err != nil {
			return err
		}
	}

	cc := resultsConfig
	cc.Stdout = cmd.OutOrStdout()
	return common.NewOutputHandler(logger).HandleOutput(table, cc)
}

// resultsState builds the candidate view over the stored results with the
// session filter off
func resultsState(resumes []types.Resume, jobs []types.JobDescription, matches []types.MatchResult) session.State {
	st := session.NewState()
	for _, a := range []session.Action{
		session.TabSwitched{Tab: session.TabCandidates},
		session.ResumesLoaded{Resumes: resumes},
		session.JobsLoaded{Jobs: jobs},
		session.MatchesLoaded{Matches: matches},
		session.JobSelected{JobID: resultsJobID},
		session.SessionFilterToggled{},
	} {
		st = session.Reduce(st, a)
	}

	dir := types.SortDesc
	if resultsAsc {
		dir = types.SortAsc
	}
	st.Sort = types.SortConfig{Key: resultsSortKey, Direction: dir}
	return st
}
