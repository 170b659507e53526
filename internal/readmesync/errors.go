package readmesync

import (
	"errors"
	"fmt"
)

// Kind classifies why a sync failed
type Kind string

const (
	// KindValidation is a missing or malformed query parameter
	KindValidation Kind = "validation"
	// KindNotFound means the GitHub repository could not be resolved
	KindNotFound Kind = "not_found"
	// KindAuth means the Docker Hub login was rejected or failed
	KindAuth Kind = "auth"
	// KindFetch means the README could not be downloaded
	KindFetch Kind = "fetch"
	// KindTimeout means an outbound call exceeded its deadline
	KindTimeout Kind = "timeout"
	// KindCanceled means the inbound request went away before the sync finished
	KindCanceled Kind = "canceled"
	// KindOrchestration covers every other failure, including publishing
	KindOrchestration Kind = "orchestration"
)

// MsgMissingFields is the response body when github_repo or dockerhub_repo is absent
const MsgMissingFields = "Missing required fields in GET request"

// Error is a sync failure. Message is safe to return to the webhook caller;
// Err keeps the underlying cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// NewError creates a sync error of the given kind
func NewError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Error returns the caller-facing message
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first *Error in err's chain, KindOrchestration for
// any other non-nil error, and "" for nil.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var syncErr *Error
	if errors.As(err, &syncErr) {
		return syncErr.Kind
	}
	return KindOrchestration
}

func notFoundError(req Request, err error) *Error {
	return NewError(KindNotFound, fmt.Sprintf("GitHub repository: %s not found", req.RawSource), err)
}

func authError(err error) *Error {
	return NewError(KindAuth, "Unable to login to DockerHub, check credentials", err)
}

func fetchError(req Request, err error) *Error {
	return NewError(KindFetch, fmt.Sprintf(
		"Unable to fetch README.md from GitHub repository: %s branch: %s", req.RawSource, req.Branch), err)
}

func timeoutError(stage Stage, err error) *Error {
	return NewError(KindTimeout, fmt.Sprintf("Timed out during %s", stage.Description()), err)
}

func canceledError(stage Stage, err error) *Error {
	return NewError(KindCanceled, fmt.Sprintf("Request canceled during %s", stage.Description()), err)
}

func publishError(err error) *Error {
	return NewError(KindOrchestration, err.Error(), err)
}
