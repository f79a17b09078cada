package cli

import (
	"context"
	"fmt"

	"screener/internal/common"
	"screener/internal/jobform"
	"screener/internal/types"

	"github.com/spf13/cobra"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List and create job descriptions",
}

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the job descriptions stored on the server",
	Args:  cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return resolveOutputFormat(cmd, &jobsListConfig)
	},
	RunE: runJobsList,
}

var jobsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a job description",
	Long: `Create a job description candidates can be matched against.

Skills are comma separated ("Python, React, AWS"). Experience is in years
and may be fractional.`,
	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return resolveOutputFormat(cmd, &jobsCreateConfig)
	},
	RunE: runJobsCreate,
}

var (
	jobsListConfig   common.CommandConfig
	jobsCreateConfig common.CommandConfig
	jobFields        = map[string]*string{}
)

func init() {
	addOutputFlags(jobsListCmd, &jobsListConfig)
	addOutputFlags(jobsCreateCmd, &jobsCreateConfig)

	flags := []struct {
		name, field, usage string
	}{
		{"title", jobform.FieldTitle, "Job title (required)"},
		{"description", jobform.FieldDescription, "Job description (required)"},
		{"skills", jobform.FieldRequiredSkills, "Comma separated required skills (required)"},
		{"experience", jobform.FieldRequiredExperience, "Required years of experience (required)"},
		{"education", jobform.FieldRequiredEducation, "Required education"},
	}
	for _, f := range flags {
		jobFields[f.field] = jobsCreateCmd.Flags().String(f.name, "", f.usage)
	}

	jobsCmd.AddCommand(jobsListCmd)
	jobsCmd.AddCommand(jobsCreateCmd)
}

func runJobsList(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())
	client := newClient(cfg, logger)

	cc := jobsListConfig
	cc.Stdout = cmd.OutOrStdout()

	return common.RunAPICommand(cmd.Context(), logger, cc,
		func(ctx context.Context) (types.JobList, error) {
			jobs, err := client.ListJobs(ctx)
			return types.JobList(jobs), err
		}, nil)
}

func runJobsCreate(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())
	client := newClient(cfg, logger)

	var form jobform.Form
	for field, value := range jobFields {
		form.Set(field, *value)
	}

	cc := jobsCreateConfig
	cc.Stdout = cmd.OutOrStdout()

	return common.RunAPICommand(cmd.Context(), logger, cc,
		func(ctx context.Context) (*types.JobDescription, error) {
			job, err := form.Submit(ctx, client)
			if err != nil {
				return nil, fmt.Errorf("failed to create job description: %w", err)
			}
			logger.Info(jobform.SuccessMessage, "job_id", job.ID, "title", job.Title)
			return job, nil
		},
		func(cc common.CommandConfig) {
			logger.Debug("Creating job description", "title", form.Title, "output_format", cc.OutputFormat)
		})
}
