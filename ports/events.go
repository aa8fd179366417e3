package ports

import (
	"context"

	"github.com/neoidea/outlet/core"
)

// EventPublisher notifies other components of session transitions
type EventPublisher interface {
	PublishLogin(ctx context.Context, identity core.Identity) error
	PublishLogout(ctx context.Context, deviceID string) error
}
