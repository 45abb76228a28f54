package domain

import (
	"errors"
	"net/http"
)

// Sentinel errors for the editing core - use with errors.Is()
var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation failed")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrConflict        = errors.New("already exists")
	ErrLastSection     = errors.New("cannot delete the only section")
	ErrConfirmRequired = errors.New("deletion requires confirmation")
)

// TransientError wraps a network or server failure that the caller may
// retry. Local edits are retained and the dirty flag stays set when a save
// fails with a TransientError.
type TransientError struct {
	Op  string // "save", "citation", "message", "search"
	Err error
}

func (e *TransientError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *TransientError) Unwrap() error { return e.Err }

// IsTransient reports whether err is a retryable network/server failure.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// RemoteError is a non-2xx response from the document API, decoded from an
// RFC 7807 problem-detail body where one was present.
type RemoteError struct {
	Status int
	Detail string
}

func (e *RemoteError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return http.StatusText(e.Status)
}

// Is maps remote status codes onto the sentinel taxonomy so callers can use
// errors.Is without inspecting status codes themselves.
func (e *RemoteError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrValidation:
		return e.Status == http.StatusBadRequest
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrForbidden:
		return e.Status == http.StatusForbidden
	case ErrConflict:
		return e.Status == http.StatusConflict
	}
	return false
}

// Retryable reports whether the remote failure is worth retrying: server
// errors and timeouts are, client errors are not.
func (e *RemoteError) Retryable() bool {
	return e.Status >= http.StatusInternalServerError ||
		e.Status == http.StatusRequestTimeout ||
		e.Status == http.StatusTooManyRequests
}
