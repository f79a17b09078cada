package cli

import (
	"fmt"

	"screener/internal/errors"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete every resume, job description and match on the server",
	Long: `Delete all data held by the screening API. This cannot be undone,
so the command refuses to run without --yes.`,
	Args: cobra.NoArgs,
	RunE: runReset,
}

var resetConfirmed bool

func init() {
	resetCmd.Flags().BoolVar(&resetConfirmed, "yes", false, "Confirm deletion of all server data")
}

func runReset(cmd *cobra.Command, args []string) error {
	if !resetConfirmed {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"refusing to delete all data without --yes", nil)
	}

	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	message, err := newClient(cfg, logger).ResetAll(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to reset data: %w", err)
	}

	logger.Info("All data deleted", "api", cfg.API.BaseURL)
	_, err = fmt.Fprintln(cmd.OutOrStdout(), message)
	return err
}
