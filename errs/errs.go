/*
 * Copyright 2025 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package errs defines the error taxonomy shared by the pipeline runtime.
//
// Every error carries an ErrorType so callers can branch with errors.Is
// against the exported sentinels:
//
//	if errors.Is(err, errs.ErrForeignTimeout) {
//		// no row arrived within the read timeout
//	}
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType classifies runtime errors
type ErrorType int

const (
	// ErrorTypeConfig invalid configuration value
	ErrorTypeConfig ErrorType = iota + 1
	// ErrorTypeSQLSemantic semantically invalid pipeline or expression
	ErrorTypeSQLSemantic
	// ErrorTypeForeignFormat malformed row from a foreign source
	ErrorTypeForeignFormat
	// ErrorTypeForeignIO I/O failure talking to a foreign endpoint
	ErrorTypeForeignIO
	// ErrorTypeForeignTimeout foreign endpoint produced nothing in time
	ErrorTypeForeignTimeout
	// ErrorTypeInvalidOption missing or malformed reader/writer option
	ErrorTypeInvalidOption
	// ErrorTypeSQLSyntax malformed pipeline DDL
	ErrorTypeSQLSyntax
)

// String returns the display name of the error type
func (t ErrorType) String() string {
	switch t {
	case ErrorTypeConfig:
		return "CONFIG_ERROR"
	case ErrorTypeSQLSemantic:
		return "SQL_SEMANTIC_ERROR"
	case ErrorTypeForeignFormat:
		return "FOREIGN_FORMAT_ERROR"
	case ErrorTypeForeignIO:
		return "FOREIGN_IO_ERROR"
	case ErrorTypeForeignTimeout:
		return "FOREIGN_TIMEOUT_ERROR"
	case ErrorTypeInvalidOption:
		return "INVALID_OPTION_ERROR"
	case ErrorTypeSQLSyntax:
		return "SQL_SYNTAX_ERROR"
	default:
		return "UNKNOWN_ERROR"
	}
}

// Error is the concrete error returned by the runtime
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
}

// Sentinels for errors.Is. They match any *Error of the same type.
var (
	ErrConfig         = &Error{Type: ErrorTypeConfig}
	ErrSQLSemantic    = &Error{Type: ErrorTypeSQLSemantic}
	ErrForeignFormat  = &Error{Type: ErrorTypeForeignFormat}
	ErrForeignIO      = &Error{Type: ErrorTypeForeignIO}
	ErrForeignTimeout = &Error{Type: ErrorTypeForeignTimeout}
	ErrInvalidOption  = &Error{Type: ErrorTypeInvalidOption}
	ErrSQLSyntax      = &Error{Type: ErrorTypeSQLSyntax}
)

func (e *Error) Error() string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("[%s]", e.Type))
	if e.Message != "" {
		builder.WriteString(" ")
		builder.WriteString(e.Message)
	}
	if e.Cause != nil {
		builder.WriteString(": ")
		builder.WriteString(e.Cause.Error())
	}
	return builder.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a sentinel of the same type
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Cause == nil && t.Type == e.Type
}

// Newf creates an error of the given type
func Newf(typ ErrorType, format string, args ...interface{}) *Error {
	return &Error{Type: typ, Message: fmt.Sprintf(format, args...)}
}

// Wrapf creates an error of the given type around cause
func Wrapf(typ ErrorType, cause error, format string, args ...interface{}) *Error {
	return &Error{Type: typ, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// TypeOf returns the type of the first *Error in err's chain
func TypeOf(err error) (ErrorType, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Type, true
	}
	return 0, false
}

// IsRecoverable reports whether the worker loop may continue after err.
// Configuration and semantic errors are surfaced to the caller that
// applied the pipeline. Foreign errors only affect a single row or turn.
func IsRecoverable(err error) bool {
	typ, ok := TypeOf(err)
	if !ok {
		return false
	}
	switch typ {
	case ErrorTypeForeignFormat, ErrorTypeForeignIO, ErrorTypeForeignTimeout:
		return true
	default:
		return false
	}
}
