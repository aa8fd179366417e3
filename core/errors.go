package core

import "errors"

var (
	ErrNotAuthenticated = errors.New("no session token stored")
	ErrNoChallenge      = errors.New("no challenge outstanding")
	ErrPollExhausted    = errors.New("challenge polling attempts exhausted")
	ErrKeyNotFound      = errors.New("key not found")
	ErrStoreFailed      = errors.New("store operation failed")
)

// ServiceError carries a human-readable rejection message supplied by the
// portal service. The manager surfaces Message verbatim; any other error is
// replaced by a generic fallback.
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// MessageOr extracts the service-supplied message from err, or returns
// fallback when err is not a ServiceError.
func MessageOr(err error, fallback string) string {
	var se *ServiceError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return fallback
}
