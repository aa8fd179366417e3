package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neoidea/outlet/adapters/store"
	"github.com/neoidea/outlet/core"
)

func TestSessionStoreSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()

	s := NewSessionStore(kv, nil)
	s.Save(ctx, core.Session{
		Token:    "tok-1",
		Identity: core.Identity{ID: "42", Name: "Ana", Email: "ana@example.com"},
	})

	// A fresh store over the same backend sees the persisted session.
	loaded := NewSessionStore(kv, nil).Load(ctx)
	assert.Equal(t, "tok-1", loaded.Token)
	assert.Equal(t, "Ana", loaded.Identity.Name)
	assert.Equal(t, "ana@example.com", loaded.Identity.Email)
	assert.True(t, loaded.Authenticated())
}

func TestSessionStoreLoadEmptyBackend(t *testing.T) {
	s := NewSessionStore(store.NewMemoryStore(), nil)

	sess := s.Load(context.Background())
	assert.False(t, sess.Authenticated())
	assert.True(t, sess.Identity.IsZero())
}

func TestSessionStoreClearPreservesDeviceID(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	s := NewSessionStore(kv, nil)

	deviceID := s.EnsureDeviceID(ctx)
	s.Save(ctx, core.Session{Token: "tok-1", Identity: core.Identity{ID: "42"}})
	s.Clear(ctx)

	assert.Equal(t, core.Session{DeviceID: deviceID}, s.Current())

	// The device id survives in the backend for the next process too.
	loaded := NewSessionStore(kv, nil).Load(ctx)
	assert.Empty(t, loaded.Token)
	assert.Equal(t, deviceID, loaded.DeviceID)
}

func TestEnsureDeviceIDStable(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	s := NewSessionStore(kv, nil)

	first := s.EnsureDeviceID(ctx)
	assert.True(t, strings.HasPrefix(first, "web-"))
	assert.Equal(t, first, s.EnsureDeviceID(ctx))

	// A new store over the same backend reuses the persisted id.
	assert.Equal(t, first, NewSessionStore(kv, nil).EnsureDeviceID(ctx))
}

// failingStore rejects every operation, to exercise degraded mode.
type failingStore struct{}

func (failingStore) Get(ctx context.Context, key string) (string, error) {
	return "", core.ErrStoreFailed
}

func (failingStore) Set(ctx context.Context, key, value string) error {
	return core.ErrStoreFailed
}

func (failingStore) Delete(ctx context.Context, key string) error {
	return core.ErrStoreFailed
}

func TestSessionStoreDegradesWhenBackendFails(t *testing.T) {
	ctx := context.Background()
	s := NewSessionStore(failingStore{}, nil)

	sess := core.Session{Token: "tok-1", Identity: core.Identity{ID: "42"}}
	s.Save(ctx, sess)

	// The in-memory copy stays authoritative for the process lifetime.
	current := s.Current()
	assert.Equal(t, "tok-1", current.Token)
	assert.Equal(t, "42", current.Identity.ID)

	deviceID := s.EnsureDeviceID(ctx)
	require.NotEmpty(t, deviceID)
	assert.Equal(t, deviceID, s.EnsureDeviceID(ctx))
}
