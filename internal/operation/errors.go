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

package operation

import (
	"fmt"
)

// ErrorPrefix starts every result produced when an operation could not be
// run at all.
const ErrorPrefix = "Unexpected error"

// ErrorType classifies dispatch errors.
type ErrorType string

const (
	// ErrorTypeUnknownOperation indicates no operation is registered under the name.
	ErrorTypeUnknownOperation ErrorType = "unknown_operation"

	// ErrorTypeInvalidParams indicates parameters failed binding or validation.
	ErrorTypeInvalidParams ErrorType = "invalid_params"

	// ErrorTypeHandlerPanic indicates the handler panicked.
	ErrorTypeHandlerPanic ErrorType = "handler_panic"
)

// Error describes a failure that happened before or instead of running an
// operation's handler.
type Error struct {
	// Type classifies the error
	Type ErrorType

	// Operation is the requested operation name
	Operation string

	// Message is the human-readable error description
	Message string

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Text renders the error as a dispatch result.
func (e *Error) Text() string {
	return fmt.Sprintf("%s: %s", ErrorPrefix, e.Error())
}

func unknownOperation(name string) *Error {
	return &Error{
		Type:      ErrorTypeUnknownOperation,
		Operation: name,
		Message:   fmt.Sprintf("unknown operation %q", name),
	}
}

func invalidParams(name string, cause error) *Error {
	return &Error{
		Type:      ErrorTypeInvalidParams,
		Operation: name,
		Message:   fmt.Sprintf("invalid parameters for %s", name),
		Cause:     cause,
	}
}
