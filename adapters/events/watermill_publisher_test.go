package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neoidea/outlet/core"
)

func newTestPubSub(t *testing.T, topic string) (*gochannel.GoChannel, <-chan *message.Message) {
	t.Helper()

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	t.Cleanup(func() {
		_ = pubSub.Close()
	})

	messages, err := pubSub.Subscribe(context.Background(), topic)
	require.NoError(t, err)
	return pubSub, messages
}

func receive(t *testing.T, messages <-chan *message.Message) *message.Message {
	t.Helper()
	select {
	case msg := <-messages:
		msg.Ack()
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestPublishLogin(t *testing.T) {
	pubSub, messages := newTestPubSub(t, LoginTopic)
	publisher := NewWatermillPublisher(pubSub)

	err := publisher.PublishLogin(context.Background(), core.Identity{ID: "42", Email: "ana@example.com"})
	require.NoError(t, err)

	msg := receive(t, messages)
	assert.NotEmpty(t, msg.UUID)

	var event LoginEvent
	require.NoError(t, json.Unmarshal(msg.Payload, &event))
	assert.Equal(t, "42", event.UserID)
	assert.Equal(t, "ana@example.com", event.Email)
}

func TestPublishLogout(t *testing.T) {
	pubSub, messages := newTestPubSub(t, LogoutTopic)
	publisher := NewWatermillPublisher(pubSub)

	err := publisher.PublishLogout(context.Background(), "web-abc")
	require.NoError(t, err)

	var event LogoutEvent
	require.NoError(t, json.Unmarshal(receive(t, messages).Payload, &event))
	assert.Equal(t, "web-abc", event.DeviceID)
}
