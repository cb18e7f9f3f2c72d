// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package shared

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// Exit codes for helm-mcp commands
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // an operation or the server failed
	ExitInvalidUsage = 2 // bad flags, parameters or configuration
)

// ExitError is an error that carries an exit code
type ExitError struct {
	Code       int
	Message    string
	Suggestion string
	Cause      error
}

func (e *ExitError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Cause
}

// NewFailureError creates an error for failed operations
func NewFailureError(msg string, cause error) *ExitError {
	return &ExitError{
		Code:    ExitFailure,
		Message: msg,
		Cause:   cause,
	}
}

// NewUsageError creates an error for invalid flags, parameters or configuration
func NewUsageError(msg string, cause error) *ExitError {
	return &ExitError{
		Code:    ExitInvalidUsage,
		Message: msg,
		Cause:   cause,
	}
}

// WithSuggestion attaches a remediation hint printed after the error.
func (e *ExitError) WithSuggestion(s string) *ExitError {
	e.Suggestion = s
	return e
}

// ExitCode returns the process exit code for err.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// PrintError writes err, and any suggestion in its chain, to w.
func PrintError(w io.Writer, err error) {
	if err == nil {
		return
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Message == "" && exitErr.Cause == nil {
		// Output was already written by the command.
		return
	}

	fmt.Fprintln(w, "Error:", err.Error())

	if errors.As(err, &exitErr) && exitErr.Suggestion != "" {
		fmt.Fprintf(w, "\nSuggestion: %s\n", exitErr.Suggestion)
	}
}

// HandleExitError prints err and exits with the appropriate code
func HandleExitError(err error) {
	if err == nil {
		return
	}
	PrintError(os.Stderr, err)
	os.Exit(ExitCode(err))
}
