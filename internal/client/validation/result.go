package validation

import "fmt"

// ErrorCode identifies why validation failed. Codes are stable strings and
// can be sent to other components as they are.
type ErrorCode string

const (
	CodeFileTooLarge      ErrorCode = "FILE_TOO_LARGE"
	CodeInvalidType       ErrorCode = "INVALID_TYPE"
	CodeTotalSizeExceeded ErrorCode = "TOTAL_SIZE_EXCEEDED"
	CodeMaxFilesExceeded  ErrorCode = "MAX_FILES_EXCEEDED"
	CodeEmptyFile         ErrorCode = "EMPTY_FILE"
)

// Result is the outcome of a validation. Code and Message are empty when
// Valid is true.
type Result struct {
	Valid   bool      `json:"is_valid"`
	Code    ErrorCode `json:"error_code,omitempty"`
	Message string    `json:"message,omitempty"`
}

// Valid returns a passing result.
func Valid() Result {
	return Result{Valid: true}
}

// Err converts a failing result into an error; a passing result gives nil.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return &Error{Code: r.Code, Message: r.Message}
}

// Error is a failed validation as an error value.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}
