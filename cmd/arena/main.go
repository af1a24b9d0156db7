package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess          = 0 // Everything checked out
	ExitValidationFailed = 1 // One or more files violate the evaluation schema
	ExitError            = 2 // Configuration or runtime error
)

// ValidationFailureError indicates that the command ran, but at least one
// input file failed schema validation.
type ValidationFailureError struct {
	Message string
}

func (e *ValidationFailureError) Error() string {
	return e.Message
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var validationErr *ValidationFailureError
		if errors.As(err, &validationErr) {
			os.Exit(ExitValidationFailed)
		}

		os.Exit(ExitError)
	}
}
