package index

import (
	"errors"
	"fmt"
)

var (
	// ErrSearchBackend matches every *BackendError
	ErrSearchBackend = errors.New("search backend error")

	// ErrMalformedHit is returned for hits whose record does not match their kind
	ErrMalformedHit = errors.New("malformed search hit")
)

// BackendError wraps a failure of the index searcher
type BackendError struct {
	Query string
	Err   error
}

func (e *BackendError) Error() string {
	if e.Query == "" {
		return fmt.Sprintf("search backend error: %v", e.Err)
	}
	return fmt.Sprintf("search backend error for %s: %v", e.Query, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

func (e *BackendError) Is(target error) bool { return target == ErrSearchBackend }

func backendError(q Query, err error) error {
	var be *BackendError
	if errors.As(err, &be) {
		return err
	}
	return &BackendError{Query: q.String(), Err: err}
}
