package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess   = 0 // At least one framework recommended
	ExitNoResults = 1 // Selection ran but recommended nothing
	ExitError     = 2 // Configuration, input or runtime error
)

// NoResultsError indicates that the selection ran successfully but no
// framework could be recommended for the given context.
type NoResultsError struct {
	Message string
}

func (e *NoResultsError) Error() string {
	return e.Message
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var noResults *NoResultsError
	if errors.As(err, &noResults) {
		return ExitNoResults
	}
	return ExitError
}
