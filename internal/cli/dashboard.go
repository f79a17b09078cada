package cli

import (
	"context"

	"screener/internal/common"
	"screener/internal/dashboard"
	"screener/internal/types"

	"github.com/spf13/cobra"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show resume, job and match totals",
	Long: `Fetch resumes, job descriptions and match results concurrently and print
the totals together with the average match score.`,
	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return resolveOutputFormat(cmd, &dashboardConfig)
	},
	RunE: runDashboard,
}

var dashboardConfig common.CommandConfig

func init() {
	addOutputFlags(dashboardCmd, &dashboardConfig)
}

func runDashboard(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())
	client := newClient(cfg, logger)

	cc := dashboardConfig
	cc.Stdout = cmd.OutOrStdout()

	return common.RunAPICommand(cmd.Context(), logger, cc,
		func(ctx context.Context) (types.DashboardStats, error) {
			return dashboard.Fetch(ctx, client)
		},
		func(cc common.CommandConfig) {
			logger.Debug("Fetching dashboard", "api", cfg.API.BaseURL, "output_format", cc.OutputFormat)
		})
}
