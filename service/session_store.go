package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/neoidea/outlet/core"
	"github.com/neoidea/outlet/ports"
)

// Storage keys, kept wire-compatible with earlier clients of the portal.
const (
	keyToken    = "@NeoIdea:token"
	keyUser     = "@NeoIdea:user"
	keyDeviceID = "@NeoIdea:deviceId"

	deviceIDPrefix = "web-"
)

// storedIdentity is the persisted user blob.
type storedIdentity struct {
	ID    string `json:"id"`
	Name  string `json:"nome"`
	Email string `json:"email"`
}

// SessionStore holds the current session and mirrors it into a durable
// key-value store. Persistence is best-effort: when the backing store
// fails, the in-memory copy stays authoritative for the process lifetime
// and the failure is only logged.
type SessionStore struct {
	kv  ports.Store
	log *zap.Logger

	mu      sync.Mutex
	current core.Session
}

// NewSessionStore creates a session store over kv. A nil logger disables
// logging.
func NewSessionStore(kv ports.Store, log *zap.Logger) *SessionStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &SessionStore{
		kv:  kv,
		log: log,
	}
}

// Load reads any persisted token, identity and device id. Absent or
// unreadable fields leave the session unauthenticated rather than failing.
func (s *SessionStore) Load(ctx context.Context) core.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token, err := s.kv.Get(ctx, keyToken); err == nil {
		s.current.Token = token
	} else if !errors.Is(err, core.ErrKeyNotFound) {
		s.log.Warn("session store unreadable, using in-memory session", zap.Error(err))
	}

	if blob, err := s.kv.Get(ctx, keyUser); err == nil {
		var stored storedIdentity
		if err := json.Unmarshal([]byte(blob), &stored); err == nil {
			s.current.Identity = core.Identity(stored)
		}
	}

	if deviceID, err := s.kv.Get(ctx, keyDeviceID); err == nil {
		s.current.DeviceID = deviceID
	}

	return s.current
}

// Save persists the session token and identity, overwriting prior values.
func (s *SessionStore) Save(ctx context.Context, sess core.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess.DeviceID == "" {
		sess.DeviceID = s.current.DeviceID
	}
	s.current = sess

	if err := s.kv.Set(ctx, keyToken, sess.Token); err != nil {
		s.log.Warn("failed to persist session token", zap.Error(err))
		return
	}
	blob, err := json.Marshal(storedIdentity(sess.Identity))
	if err == nil {
		err = s.kv.Set(ctx, keyUser, string(blob))
	}
	if err != nil {
		s.log.Warn("failed to persist user identity", zap.Error(err))
	}
}

// Clear removes the token and identity. The device id is preserved.
func (s *SessionStore) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = core.Session{DeviceID: s.current.DeviceID}

	if err := s.kv.Delete(ctx, keyToken); err != nil {
		s.log.Warn("failed to clear session token", zap.Error(err))
	}
	if err := s.kv.Delete(ctx, keyUser); err != nil {
		s.log.Warn("failed to clear user identity", zap.Error(err))
	}
}

// EnsureDeviceID returns the stable per-installation identifier,
// generating and persisting it on first use.
func (s *SessionStore) EnsureDeviceID(ctx context.Context) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current.DeviceID != "" {
		return s.current.DeviceID
	}

	if deviceID, err := s.kv.Get(ctx, keyDeviceID); err == nil && deviceID != "" {
		s.current.DeviceID = deviceID
		return deviceID
	}

	deviceID := deviceIDPrefix + uuid.New().String()
	s.current.DeviceID = deviceID
	if err := s.kv.Set(ctx, keyDeviceID, deviceID); err != nil {
		s.log.Warn("failed to persist device id", zap.Error(err))
	}
	return deviceID
}

// Current returns the in-memory session.
func (s *SessionStore) Current() core.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.current
}
