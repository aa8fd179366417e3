package core

import "time"

// State is the authentication lifecycle state of the client.
type State uint8

const (
	StateAnonymous State = iota
	StateAuthenticating
	StateAuthenticated
	StateChallengeIssued
	StatePolling
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	case StateChallengeIssued:
		return "challenge_issued"
	case StatePolling:
		return "polling"
	}
	return "unknown"
}

// Identity is the user profile returned by the portal service on a
// successful authentication.
type Identity struct {
	ID    string // `codigo` on the wire
	Name  string // `nome` on the wire
	Email string
}

// IsZero reports whether the service returned no identity at all.
func (i Identity) IsZero() bool {
	return i == Identity{}
}

// Session is the locally held authentication state.
//
// Token present means the session is authenticated. DeviceID is generated
// once per installation and survives logout; the service uses it to bind
// QR and app challenges to this client.
type Session struct {
	Token    string
	Identity Identity
	DeviceID string
}

// Authenticated reports whether the session holds a token.
func (s Session) Authenticated() bool {
	return s.Token != ""
}

// Challenge represents one pending alternate-login attempt issued by the
// portal service.
type Challenge struct {
	Token      string    // opaque `desafio` value, rendered as a QR code by the UI
	IssuedAt   time.Time // when the challenge was created
	BoundEmail string    // email the challenge was requested for; empty for app challenges
}

// Snapshot is the read-only view of the auth manager exposed to the UI.
type Snapshot struct {
	State           State
	IsAuthenticated bool
	Identity        Identity
	IsLoading       bool
	Err             string // last surfaced error message, empty when none
}
