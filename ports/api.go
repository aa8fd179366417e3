package ports

import (
	"context"

	"github.com/neoidea/outlet/core"
)

// LoginResult is the payload of a successful password login.
type LoginResult struct {
	Token    string
	Identity core.Identity
}

// ValidationResult is the outcome of one challenge-validation call.
// OK false means "not approved yet" and is not an error. Token and
// Identity are optional; the service may approve a challenge without
// returning either.
type ValidationResult struct {
	OK       bool
	Token    string
	Identity core.Identity
}

// AuthAPI is the remote authentication service. Implementations translate
// these calls into form-encoded HTTP exchanges; an explicit rejection by
// the service is returned as *core.ServiceError so callers can surface the
// service-supplied message.
type AuthAPI interface {
	Login(ctx context.Context, emailDigest, passwordDigest string) (LoginResult, error)
	VerifySession(ctx context.Context, token string) (bool, error)
	RecoverPassword(ctx context.Context, email string) error

	CreateQRChallenge(ctx context.Context, email string) (string, error)
	ValidateQRChallenge(ctx context.Context, challengeToken, deviceID string) (ValidationResult, error)

	CreateAppChallenge(ctx context.Context, deviceID string) (string, error)
	ValidateAppChallenge(ctx context.Context, challengeToken, email string) (ValidationResult, error)
}

// ContentAPI is the remote portal-content service.
type ContentAPI interface {
	Layout(ctx context.Context) (core.Layout, error)
	Carousel(ctx context.Context, q core.CarouselQuery) ([]core.CarouselItem, error)
	ContactInfo(ctx context.Context) (core.Contact, error)
	SendContactMessage(ctx context.Context, msg core.ContactMessage) error
}

// MediaAPI is the pair of auxiliary media services that live on their own
// base URLs: live-stream listings and podcast releases. Podcast access
// requires the session token.
type MediaAPI interface {
	LiveBroadcasts(ctx context.Context, eliveID, timezone string) ([]core.Broadcast, error)
	Podcast(ctx context.Context, token, id string) (core.Podcast, error)
	PodcastAudioURL(podcastID, trackID string) string
}
