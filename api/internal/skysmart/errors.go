package skysmart

import (
	"fmt"
	"net/http"
)

// AuthError means no bearer token could be obtained.
type AuthError struct {
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("skysmart auth: %s: %v", e.Reason, e.Err)
	}
	return "skysmart auth: " + e.Reason
}

func (e *AuthError) Unwrap() error { return e.Err }

// TransportError wraps a failure below HTTP: dial, TLS, timeout, body read.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("skysmart %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RemoteError is a non-2xx answer from the remote service.
type RemoteError struct {
	Method string
	URL    string
	Status int
	Body   string
}

func (e *RemoteError) Error() string {
	s := fmt.Sprintf("skysmart %s %s: %d %s", e.Method, e.URL, e.Status, http.StatusText(e.Status))
	if e.Body != "" {
		s += ": " + e.Body
	}
	return s
}

// ResolutionError means the task set could not be turned into step ids.
type ResolutionError struct {
	Hash   string
	Reason string
	Err    error
}

func (e *ResolutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("resolve room %q: %s: %v", e.Hash, e.Reason, e.Err)
	}
	return fmt.Sprintf("resolve room %q: %s", e.Hash, e.Reason)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// FetchError means a step could not be retrieved.
type FetchError struct {
	TaskID string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch step %s: %v", e.TaskID, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// MissingContentError means the step payload had no string "content" field.
type MissingContentError struct {
	TaskID string
}

func (e *MissingContentError) Error() string {
	return fmt.Sprintf("fetch step %s: content not found in response", e.TaskID)
}
