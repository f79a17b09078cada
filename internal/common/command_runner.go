package common

import (
	"context"

	"screener/internal/errors"
)

// LogDetailsFunc defines how to log the start of an operation.
type LogDetailsFunc func(cfg CommandConfig)

// APIOperationFunc is a generic function signature for any call against the screening API.
type APIOperationFunc[Output any] func(context.Context) (Output, error)

// RunAPICommand encapsulates the common logic for CLI commands that fetch
// something from the API and print it.
func RunAPICommand[Output any](
	ctx context.Context,
	logger *errors.Logger,
	cmdConfig CommandConfig,
	operation APIOperationFunc[Output],
	logDetails LogDetailsFunc,
) error {
	outputHandler := NewOutputHandler(logger)

	// Fail before the network call when the output path is unusable
	if err := outputHandler.fileProcessor.ValidateOutputFile(cmdConfig.OutputFile); err != nil {
		return err
	}

	if logDetails != nil {
		logDetails(cmdConfig)
	}

	result, err := operation(ctx)
	if err != nil {
		return err
	}

	return outputHandler.HandleOutput(result, cmdConfig)
}
