package errors

import "fmt"

// Error codes for wdbextract operations
const (
	CodeUsage     = "USAGE_ERROR"
	CodeNotFound  = "NOT_FOUND"
	CodeTruncated = "TRUNCATED"
	CodeParse     = "PARSE_ERROR"
	CodeIO        = "IO_ERROR"
)

var (
	// ErrUsage is returned for a malformed invocation
	ErrUsage = &ExtractError{Code: CodeUsage, Message: "invalid usage"}

	// ErrNotFound is returned when the database or a container file does not exist
	ErrNotFound = &ExtractError{Code: CodeNotFound, Message: "file not found"}

	// ErrTruncated is returned when a container ends before a movie's declared length
	ErrTruncated = &ExtractError{Code: CodeTruncated, Message: "container truncated"}

	// ErrParse is returned when a hex-encoded field holds non-hex data
	ErrParse = &ExtractError{Code: CodeParse, Message: "malformed field"}

	// ErrIO is returned for any other read, write, seek or create failure
	ErrIO = &ExtractError{Code: CodeIO, Message: "i/o failure"}
)

// ExtractError represents a structured error in wdbextract operations
type ExtractError struct {
	Code    string                 // Error code for programmatic handling
	Message string                 // Human-readable error message
	Cause   error                  // Underlying error, if any
	Details map[string]interface{} // Additional context
}

// Error implements the error interface
func (e *ExtractError) Error() string {
	if e.Cause != nil {
		if len(e.Details) > 0 {
			return fmt.Sprintf("[%s] %s (details: %v): %v", e.Code, e.Message, e.Details, e.Cause)
		}
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	if len(e.Details) > 0 {
		return fmt.Sprintf("[%s] %s (details: %v)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *ExtractError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an ExtractError with the same code, so that
// errors derived through WithCause/WithDetail still match their sentinel.
func (e *ExtractError) Is(target error) bool {
	t, ok := target.(*ExtractError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithCause adds a cause to the error
func (e *ExtractError) WithCause(cause error) *ExtractError {
	return &ExtractError{
		Code:    e.Code,
		Message: e.Message,
		Cause:   cause,
		Details: e.Details,
	}
}

// WithDetail adds a detail key-value pair to the error
func (e *ExtractError) WithDetail(key string, value interface{}) *ExtractError {
	details := make(map[string]interface{})
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	return &ExtractError{
		Code:    e.Code,
		Message: e.Message,
		Cause:   e.Cause,
		Details: details,
	}
}

// WithMessage overrides the error message
func (e *ExtractError) WithMessage(message string) *ExtractError {
	return &ExtractError{
		Code:    e.Code,
		Message: message,
		Cause:   e.Cause,
		Details: e.Details,
	}
}

// GetErrorCode extracts the error code from an ExtractError anywhere in the chain
func GetErrorCode(err error) string {
	for err != nil {
		if extractErr, ok := err.(*ExtractError); ok {
			return extractErr.Code
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return ""
		}
		err = u.Unwrap()
	}
	return ""
}
