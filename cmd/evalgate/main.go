package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess    = 0 // All cases passed and no regression detected
	ExitEvalFailed = 1 // One or more cases failed, or a regression was detected
	ExitError      = 2 // Configuration or runtime error
)

// EvalFailureError indicates that the evaluation ran successfully,
// but one or more cases failed or a regression was detected.
type EvalFailureError struct {
	Message string
}

func (e *EvalFailureError) Error() string {
	return e.Message
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		// Check error type to determine exit code
		var evalErr *EvalFailureError
		if errors.As(err, &evalErr) {
			os.Exit(ExitEvalFailed)
		}

		// All other errors are configuration/runtime errors
		os.Exit(ExitError)
	}
}
