package errors

import (
	"fmt"
	"time"
)

// ErrCode represents an error code
type ErrCode string

const (
	ErrCodeUserNotFound    ErrCode = "USER_NOT_FOUND"
	ErrCodeUnauthenticated ErrCode = "UNAUTHENTICATED"
	ErrCodeRateLimited     ErrCode = "RATE_LIMITED"
	ErrCodeGraphQLFailure  ErrCode = "GRAPHQL_FAILURE"
	ErrCodeNotFound        ErrCode = "NOT_FOUND"
	ErrCodeBadRequest      ErrCode = "BAD_REQUEST"
	ErrCodeUpstream        ErrCode = "UPSTREAM_ERROR"
	ErrCodeInternal        ErrCode = "INTERNAL_ERROR"
)

// AppError represents an application error. ResetAt is only set for
// RATE_LIMITED and reports when the GitHub quota window reopens.
type AppError struct {
	Code    ErrCode
	Message string
	ResetAt time.Time
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewUserNotFoundError creates an error for a GitHub login that does not exist
func NewUserNotFoundError(login string) *AppError {
	return &AppError{
		Code:    ErrCodeUserNotFound,
		Message: fmt.Sprintf("GitHub user %q not found", login),
	}
}

// NewNotFoundError creates a generic not found error for a non-user resource
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// NewUnauthenticatedError creates an error for a bad or expired credential
func NewUnauthenticatedError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeUnauthenticated,
		Message: message,
	}
}

// NewRateLimitedError creates a rate limit error carrying the reset time
func NewRateLimitedError(resetAt time.Time) *AppError {
	msg := "GitHub API rate limit exceeded"
	if !resetAt.IsZero() {
		msg = fmt.Sprintf("GitHub API rate limit exceeded, resets at %s", resetAt.Format(time.RFC3339))
	}
	return &AppError{
		Code:    ErrCodeRateLimited,
		Message: msg,
		ResetAt: resetAt,
	}
}

// NewGraphQLError creates an error for a failed GraphQL query
func NewGraphQLError(message string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeGraphQLFailure,
		Message: message,
		Err:     err,
	}
}

// NewBadRequestError creates a new bad request error
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeBadRequest,
		Message: message,
	}
}

// NewUpstreamError creates an error for a GitHub-side or network failure
func NewUpstreamError(message string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeUpstream,
		Message: message,
		Err:     err,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Err:     err,
	}
}

func codeOf(err error) ErrCode {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return ""
}

// IsUserNotFound checks if the error reports a missing GitHub user
func IsUserNotFound(err error) bool {
	return codeOf(err) == ErrCodeUserNotFound
}

// IsUnauthenticated checks if the error reports a bad credential
func IsUnauthenticated(err error) bool {
	return codeOf(err) == ErrCodeUnauthenticated
}

// IsRateLimited checks if the error is a rate limited error
func IsRateLimited(err error) bool {
	return codeOf(err) == ErrCodeRateLimited
}

// IsGraphQLFailure checks if the error came from the GraphQL endpoint
func IsGraphQLFailure(err error) bool {
	return codeOf(err) == ErrCodeGraphQLFailure
}
