package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"voxmerge/internal/pipeline"
)

// Exit codes: 1 for runtime failures, 2 for operator mistakes (bad config,
// unknown contact) so scripts can tell retryable runs from fixable setups.
const (
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	err := newRootCommand().Execute()
	if err == nil {
		return
	}
	if !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "voxmerge: "+err.Error())
	}
	os.Exit(exitCode(err))
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrConfiguration),
		errors.Is(err, pipeline.ErrValidation),
		errors.Is(err, pipeline.ErrNotFound):
		return exitUsage
	default:
		return exitFailure
	}
}
