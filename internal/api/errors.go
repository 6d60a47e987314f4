package api

import "errors"

// TransientError marks a failure worth retrying: a transport-level error
// or a server 5xx. Anything else is treated as permanent by the upload
// pipeline.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return e.Err.Error() }

func (e *TransientError) Unwrap() error { return e.Err }

func transient(err error) error {
	return &TransientError{Err: err}
}

// IsTransient reports whether err is marked retryable.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
