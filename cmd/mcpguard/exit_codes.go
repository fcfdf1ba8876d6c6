package main

import "fmt"

// Exit codes so calling agents can branch on the verdict without parsing
// output.
const (
	// ExitCodeAllowed indicates the operation was allowed (and confirmed,
	// if confirmation was required).
	ExitCodeAllowed = 0

	// ExitCodeGeneralError indicates a generic error (default)
	ExitCodeGeneralError = 1

	// ExitCodeBlocked indicates the guard blocked the operation outright.
	ExitCodeBlocked = 2

	// ExitCodeDenied indicates confirmation was required and was denied or
	// timed out.
	ExitCodeDenied = 3

	// ExitCodeInvalidInput indicates tool input failed schema validation.
	ExitCodeInvalidInput = 4
)

// exitCodeError carries a verdict exit code back through cobra's RunE
// return path, so deferred cleanup (audit store, log sync) runs before the
// process exits. main unwraps it and exits with the code.
type exitCodeError struct {
	code int
}

func (e exitCodeError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func exitWithCode(code int) error {
	return exitCodeError{code: code}
}
