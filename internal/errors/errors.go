package errors

import (
	"fmt"
	"strings"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Details []string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// UserMessage is the text shown on the presentation surface. It includes
// detail items (file or column names) but never paths or stack traces.
func (e *AppError) UserMessage() string {
	if len(e.Details) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Details, ", "))
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Details: appErr.Details,
			Cause:   appErr,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// GetCode returns the error code if it's an AppError, otherwise "UNKNOWN"
func GetCode(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return "UNKNOWN"
}

// Predefined error codes
const (
	CodeMissingFile    = "MISSING_FILE"
	CodeMissingColumn  = "MISSING_COLUMN"
	CodeUnreadableFile = "UNREADABLE_FILE"
	CodeNoData         = "NO_DATA"
	CodeConfigInvalid  = "CONFIG_INVALID"
	CodeNotFound       = "NOT_FOUND"
	CodeInvalidInput   = "INVALID_INPUT"
	CodeInternalError  = "INTERNAL_ERROR"
)

// MissingFile reports absent required result files. Names are relative
// display names, never absolute paths.
func MissingFile(names ...string) *AppError {
	return &AppError{
		Code:    CodeMissingFile,
		Message: "required result files are missing",
		Details: names,
	}
}

// MissingColumn reports absent required columns in the case index
func MissingColumn(columns ...string) *AppError {
	return &AppError{
		Code:    CodeMissingColumn,
		Message: "case index is missing required columns",
		Details: columns,
	}
}

// UnreadableFile reports a file that exists but could not be parsed
func UnreadableFile(name string, cause error) *AppError {
	return &AppError{
		Code:    CodeUnreadableFile,
		Message: fmt.Sprintf("could not read %s", name),
		Cause:   cause,
	}
}

// NoData reports a structurally valid but empty result set
func NoData(message string) *AppError {
	return New(CodeNoData, message)
}

func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}
