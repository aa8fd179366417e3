package outlet

import (
	"context"

	"github.com/neoidea/outlet/core"
)

// Client is the surface the UI layer drives. It is implemented by
// service.AuthManager.
type Client interface {
	// Restore loads any persisted session from local storage.
	Restore(ctx context.Context)

	// Login authenticates with email and password. Credentials are
	// digested before leaving the client.
	Login(ctx context.Context, email, password string) error

	// Logout clears the session and any in-flight challenge poll.
	// It is idempotent.
	Logout(ctx context.Context) error

	// VerifyAuthentication asks the service whether the stored session
	// token is still valid. Fails locally when no token is stored.
	VerifyAuthentication(ctx context.Context) (bool, error)

	// RecoverPassword triggers the password-recovery email.
	RecoverPassword(ctx context.Context, email string) error

	// RequestQRChallenge mints a QR login challenge bound to email.
	// A previously outstanding challenge is discarded.
	RequestQRChallenge(ctx context.Context, email string) (core.Challenge, error)

	// StartPolling begins asking the service whether the outstanding
	// challenge has been approved. StopPolling cancels it; no validation
	// call is observed after cancellation.
	StartPolling(ctx context.Context) error
	StopPolling()

	// RequestAppChallenge and ValidateAppChallenge are the single-shot
	// app-push variant; the caller drives any retry itself.
	RequestAppChallenge(ctx context.Context) (core.Challenge, error)
	ValidateAppChallenge(ctx context.Context, challengeToken, email string) (bool, error)

	// Snapshot returns the current observable auth state.
	Snapshot() core.Snapshot

	// ClearError resets the surfaced error message.
	ClearError()
}
