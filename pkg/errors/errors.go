package errors

import "fmt"

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeCredential ErrorType = "credential"
	ErrorTypeChallenge  ErrorType = "challenge"
	ErrorTypeTimeout    ErrorType = "timeout"
	ErrorTypeDriver     ErrorType = "driver"
	ErrorTypeSession    ErrorType = "session"
	ErrorTypeUnknown    ErrorType = "unknown"
)

// Error represents a login subsystem error with type information
type Error struct {
	Type     ErrorType
	Message  string
	Username string
}

func (e *Error) Error() string {
	if e.Username != "" {
		return fmt.Sprintf("%s error (account %s): %s", e.Type, e.Username, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

// New creates a new typed error
func New(errorType ErrorType, message string) *Error {
	return &Error{Type: errorType, Message: message}
}

// Newf creates a new typed error with a formatted message
func Newf(errorType ErrorType, format string, args ...interface{}) *Error {
	return &Error{Type: errorType, Message: fmt.Sprintf(format, args...)}
}

// ForAccount creates a typed error tied to a specific account
func ForAccount(errorType ErrorType, username, message string) *Error {
	return &Error{Type: errorType, Message: message, Username: username}
}

// IsRecoverable checks if an error type can be recovered locally by
// advancing the credential pool
func IsRecoverable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeCredential, ErrorTypeChallenge, ErrorTypeTimeout:
		return true
	case ErrorTypeConfig, ErrorTypeDriver:
		return false
	default:
		return false
	}
}
