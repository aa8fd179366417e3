package mockapi_test

import (
	"context"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neoidea/outlet/adapters/api"
	"github.com/neoidea/outlet/adapters/store"
	"github.com/neoidea/outlet/core"
	"github.com/neoidea/outlet/mockapi"
	"github.com/neoidea/outlet/service"
)

type fixture struct {
	portal   *mockapi.Server
	client   *api.Client
	sessions *service.SessionStore
	manager  *service.AuthManager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	portal := mockapi.NewServer("172", []byte("test-signing-key-0123456789abcdef"))
	_, err := portal.RegisterAccount("Ana", "ana@example.com", "hunter2")
	require.NoError(t, err)

	srv := httptest.NewServer(mockapi.SetupRouter(portal))
	t.Cleanup(srv.Close)

	base, err := url.Parse(srv.URL)
	require.NoError(t, err)

	client := api.NewClient(srv.Client(), *base, "172")
	sessions := service.NewSessionStore(store.NewMemoryStore(), nil)
	manager := service.NewAuthManager(client, sessions, service.Config{
		Poll: service.PollConfig{Interval: 20 * time.Millisecond},
	})

	return &fixture{portal: portal, client: client, sessions: sessions, manager: manager}
}

func TestPasswordLoginEndToEnd(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.manager.Login(ctx, "ana@example.com", "hunter2"))

	snap := f.manager.Snapshot()
	assert.True(t, snap.IsAuthenticated)
	assert.Equal(t, "Ana", snap.Identity.Name)
	assert.Equal(t, "ana@example.com", snap.Identity.Email)
	assert.NotEmpty(t, f.sessions.Current().Token)

	ok, err := f.manager.VerifyAuthentication(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, f.manager.Logout(ctx))
	_, err = f.manager.VerifyAuthentication(ctx)
	assert.ErrorIs(t, err, core.ErrNotAuthenticated)
}

func TestPasswordLoginRejectedEndToEnd(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	err := f.manager.Login(ctx, "ana@example.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, "Credenciais inválidas", core.MessageOr(err, "fallback"))
	assert.False(t, f.manager.Snapshot().IsAuthenticated)
}

func TestVerifyRejectsForgedToken(t *testing.T) {
	f := newFixture(t)

	ok, err := f.client.VerifySession(context.Background(), "not-a-real-token")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestQRChallengeEndToEnd(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	ch, err := f.manager.RequestQRChallenge(ctx, "ana@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, ch.Token)

	require.NoError(t, f.manager.StartPolling(ctx))
	deviceID := f.sessions.Current().DeviceID
	require.NotEmpty(t, deviceID)

	// Let a few "not yet" validations happen before the app approves.
	time.Sleep(60 * time.Millisecond)
	assert.False(t, f.manager.Snapshot().IsAuthenticated)

	require.True(t, f.portal.ApproveChallenge(ch.Token, deviceID))

	require.Eventually(t, func() bool {
		return f.manager.Snapshot().IsAuthenticated
	}, 2*time.Second, 10*time.Millisecond)

	snap := f.manager.Snapshot()
	assert.Equal(t, core.StateAuthenticated, snap.State)
	assert.Equal(t, "ana@example.com", snap.Identity.Email)

	// The approval minted a real session token.
	ok, err := f.manager.VerifyAuthentication(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestQRChallengeIgnoresOtherDevices(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	ch, err := f.manager.RequestQRChallenge(ctx, "ana@example.com")
	require.NoError(t, err)

	// Approved for a different installation; this client must keep waiting.
	require.True(t, f.portal.ApproveChallenge(ch.Token, "web-someone-else"))

	require.NoError(t, f.manager.StartPolling(ctx))
	assert.Never(t, func() bool {
		return f.manager.Snapshot().IsAuthenticated
	}, 200*time.Millisecond, 20*time.Millisecond)

	f.manager.StopPolling()
}

func TestAppChallengeEndToEnd(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	ch, err := f.manager.RequestAppChallenge(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, ch.Token)

	// Not approved yet.
	ok, err := f.manager.ValidateAppChallenge(ctx, ch.Token, "ana@example.com")
	require.NoError(t, err)
	assert.False(t, ok)

	require.True(t, f.portal.ApproveChallenge(ch.Token, ""))

	ok, err = f.manager.ValidateAppChallenge(ctx, ch.Token, "ana@example.com")
	require.NoError(t, err)
	assert.True(t, ok)

	snap := f.manager.Snapshot()
	assert.True(t, snap.IsAuthenticated)
	assert.Equal(t, "Ana", snap.Identity.Name)
}

func TestContentEndpointsEndToEnd(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.portal.SetLayout(core.Layout{Name: "Demo Portal", Color: "#e6324b"})
	f.portal.SetCarousel([]core.CarouselItem{
		{ID: "1", Title: "Primeiro", Type: "album", Order: 1},
		{ID: "2", Title: "Segundo", Type: "video", Order: 2},
	})
	f.portal.SetContact(core.Contact{Email: "contato@example.com"})

	layout, err := f.client.Layout(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Demo Portal", layout.Name)

	albums, err := f.client.Carousel(ctx, core.CarouselQuery{Type: "album"})
	require.NoError(t, err)
	require.Len(t, albums, 1)
	assert.Equal(t, "Primeiro", albums[0].Title)

	contact, err := f.client.ContactInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, "contato@example.com", contact.Email)

	err = f.client.SendContactMessage(ctx, core.ContactMessage{Name: "Ana", Email: "ana@example.com", Message: "Olá"})
	require.NoError(t, err)

	err = f.client.SendContactMessage(ctx, core.ContactMessage{Name: "Ana"})
	assert.Error(t, err)
}
