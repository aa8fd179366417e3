package outlet

import "errors"

var (
	// ErrServiceUnavailable is returned when the portal service cannot be
	// reached or answers with something other than its JSON envelope.
	ErrServiceUnavailable = errors.New("portal service unavailable")

	// ErrEmptyChallenge is returned when a challenge-generation call
	// succeeds but carries no challenge value.
	ErrEmptyChallenge = errors.New("service returned an empty challenge")
)

// Generic fallback messages surfaced when the service supplies none.
const (
	MsgLoginFailed     = "authentication failed"
	MsgChallengeFailed = "could not generate login challenge"
	MsgRecoveryFailed  = "could not start password recovery"
)
