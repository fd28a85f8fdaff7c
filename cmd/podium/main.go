package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess       = 0 // Run completed and all examples succeeded
	ExitExampleFailed = 1 // One or more examples failed
	ExitError         = 2 // Configuration or runtime error
)

// RunFailureError indicates that the run itself completed, but one or
// more examples failed.
type RunFailureError struct {
	Message string
}

func (e *RunFailureError) Error() string {
	return e.Message
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var runFailureErr *RunFailureError
		if errors.As(err, &runFailureErr) {
			os.Exit(ExitExampleFailed)
		}

		// All other errors are configuration/runtime errors
		os.Exit(ExitError)
	}
}
