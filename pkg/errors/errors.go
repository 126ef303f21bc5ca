package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown       ErrorCode = "UNKNOWN"
	ErrInternal      ErrorCode = "INTERNAL"
	ErrInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrNotFound      ErrorCode = "NOT_FOUND"
	ErrAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"

	// Guard lifecycle errors
	ErrNoConfigFile   ErrorCode = "NO_CONFIG_FILE"
	ErrAlreadyGuarded ErrorCode = "ALREADY_GUARDED"
	ErrSentinelExists ErrorCode = "SENTINEL_EXISTS"
	ErrNotGuarded     ErrorCode = "NOT_GUARDED"
	ErrNotGuardedFile ErrorCode = "NOT_GUARDED_FILE"
	ErrOutsideProject ErrorCode = "OUTSIDE_PROJECT"

	// Link errors
	ErrLinkNotFound        ErrorCode = "LINK_NOT_FOUND"
	ErrLinkExists          ErrorCode = "LINK_EXISTS"
	ErrLinkPointsElsewhere ErrorCode = "LINK_POINTS_ELSEWHERE"
	ErrNotSymlink          ErrorCode = "NOT_SYMLINK"
	ErrSourceIsSymlink     ErrorCode = "SOURCE_IS_SYMLINK"

	// Environment errors
	ErrHomeDir      ErrorCode = "HOME_DIR"
	ErrRelativePath ErrorCode = "RELATIVE_PATH"

	// FileSystem errors
	ErrFileAccess ErrorCode = "FILE_ACCESS"

	// Encryption errors
	ErrCrypto ErrorCode = "CRYPTO"
)

// Kind groups error codes into the categories callers branch on
type Kind string

const (
	KindNotFound       Kind = "not-found"
	KindAlreadyInState Kind = "already-in-state"
	KindWrongState     Kind = "wrong-state"
	KindBoundary       Kind = "boundary"
	KindEnvironment    Kind = "environment"
	KindInternal       Kind = "internal"
)

var kinds = map[ErrorCode]Kind{
	ErrNotFound:            KindNotFound,
	ErrNoConfigFile:        KindNotFound,
	ErrLinkNotFound:        KindNotFound,
	ErrAlreadyGuarded:      KindAlreadyInState,
	ErrSentinelExists:      KindAlreadyInState,
	ErrLinkExists:          KindAlreadyInState,
	ErrAlreadyExists:       KindAlreadyInState,
	ErrNotGuarded:          KindWrongState,
	ErrNotGuardedFile:      KindWrongState,
	ErrNotSymlink:          KindWrongState,
	ErrSourceIsSymlink:     KindWrongState,
	ErrLinkPointsElsewhere: KindWrongState,
	ErrOutsideProject:      KindBoundary,
	ErrHomeDir:             KindEnvironment,
	ErrRelativePath:        KindEnvironment,
}

// Kind returns the category of an error code. Unmapped codes are internal.
func (c ErrorCode) Kind() Kind {
	if k, ok := kinds[c]; ok {
		return k
	}
	return KindInternal
}

// ConfguardError represents a structured error with code and details
type ConfguardError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *ConfguardError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *ConfguardError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *ConfguardError) Is(target error) bool {
	var targetErr *ConfguardError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new ConfguardError with the given code and message
func New(code ErrorCode, message string) *ConfguardError {
	return &ConfguardError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new ConfguardError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *ConfguardError {
	return &ConfguardError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a ConfguardError
func Wrap(err error, code ErrorCode, message string) *ConfguardError {
	if err == nil {
		return nil
	}
	return &ConfguardError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *ConfguardError {
	if err == nil {
		return nil
	}
	return &ConfguardError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *ConfguardError) WithDetail(key string, value interface{}) *ConfguardError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var cgErr *ConfguardError
	if errors.As(err, &cgErr) {
		return cgErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a ConfguardError
func GetErrorCode(err error) ErrorCode {
	var cgErr *ConfguardError
	if errors.As(err, &cgErr) {
		return cgErr.Code
	}
	return ErrUnknown
}

// KindOf returns the category of err. Errors that carry no code are internal.
func KindOf(err error) Kind {
	return GetErrorCode(err).Kind()
}

// IsKind reports whether err belongs to the given category
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// GetErrorDetails returns the details from an error, or nil if not a ConfguardError
func GetErrorDetails(err error) map[string]interface{} {
	var cgErr *ConfguardError
	if errors.As(err, &cgErr) {
		return cgErr.Details
	}
	return nil
}
