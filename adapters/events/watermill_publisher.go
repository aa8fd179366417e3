package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/neoidea/outlet/core"
	"github.com/neoidea/outlet/ports"
)

const (
	// LoginTopic carries session-established events.
	LoginTopic = "outlet.session.login"
	// LogoutTopic carries session-cleared events.
	LogoutTopic = "outlet.session.logout"
)

// LoginEvent is published when a session is established.
type LoginEvent struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// LogoutEvent is published when the session is cleared.
type LogoutEvent struct {
	DeviceID string `json:"device_id"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill.
type WatermillPublisher struct {
	publisher message.Publisher
}

// NewWatermillPublisher creates a new Watermill publisher.
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{
		publisher: publisher,
	}
}

// PublishLogin publishes a session-established event.
func (p *WatermillPublisher) PublishLogin(ctx context.Context, identity core.Identity) error {
	return p.publish(LoginTopic, LoginEvent{
		UserID: identity.ID,
		Email:  identity.Email,
	})
}

// PublishLogout publishes a session-cleared event.
func (p *WatermillPublisher) PublishLogout(ctx context.Context, deviceID string) error {
	return p.publish(LogoutTopic, LogoutEvent{
		DeviceID: deviceID,
	})
}

func (p *WatermillPublisher) publish(topic string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(uuid.New().String(), payload)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}
