package models

import "fmt"

// Error codes used in logs and top-level error handling.
//
// Structural absence (no table, no column, no label, no link) is never
// an error: resolvers return empty values and the run continues. These
// codes cover only transient interaction failures and fatal conditions.
const (
	ErrCodeTimeout      = "TIMEOUT"
	ErrCodeNavigation   = "NAVIGATION_FAILED"
	ErrCodeExtraction   = "EXTRACTION_FAILED"
	ErrCodeBrowserCrash = "BROWSER_CRASH"
	ErrCodeOutput       = "OUTPUT_FAILED"
	ErrCodeInvalidInput = "INVALID_INPUT"
)

// GuideError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type GuideError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *GuideError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *GuideError) Unwrap() error {
	return e.Err
}

// NewGuideError creates a new GuideError.
func NewGuideError(code, message string, err error) *GuideError {
	return &GuideError{Code: code, Message: message, Err: err}
}
