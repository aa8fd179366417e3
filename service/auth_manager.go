// Package service contains the auth session manager: the state machine
// behind password login, the QR challenge poll loop, and the app-push
// challenge flow.
package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	outlet "github.com/neoidea/outlet"
	"github.com/neoidea/outlet/adapters/clock"
	"github.com/neoidea/outlet/core"
	"github.com/neoidea/outlet/internal/digest"
	"github.com/neoidea/outlet/ports"
)

// DefaultPollInterval matches the cadence the portal's companion app
// expects between challenge validations.
const DefaultPollInterval = 3 * time.Second

// PollConfig bounds the challenge poll loop.
type PollConfig struct {
	// Interval between validation calls. Defaults to DefaultPollInterval.
	Interval time.Duration
	// MaxAttempts stops the loop after that many validations.
	// Zero keeps polling until cancelled, like the original client.
	MaxAttempts int
}

// Config carries the manager's optional collaborators.
type Config struct {
	Clock  ports.Clock          // required for polling; tests inject a fake
	Events ports.EventPublisher // nil disables event publishing
	Logger *zap.Logger          // nil disables logging
	Poll   PollConfig
}

// AuthManager orchestrates the three login modalities against the remote
// service and keeps the session store current. All methods are safe for
// concurrent use; errors never escape as panics and the manager always
// lands back in a well-defined state.
type AuthManager struct {
	api    ports.AuthAPI
	store  *SessionStore
	clock  ports.Clock
	events ports.EventPublisher
	log    *zap.Logger
	poll   PollConfig

	mu         sync.Mutex
	state      core.State
	session    core.Session
	loading    bool
	errMsg     string
	challenge  *core.Challenge
	gen        uint64 // bumped whenever poll results must be discarded
	cancelPoll context.CancelFunc
}

// NewAuthManager creates a manager over the remote API and session store.
func NewAuthManager(api ports.AuthAPI, store *SessionStore, cfg Config) *AuthManager {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.System{}
	}
	if cfg.Poll.Interval <= 0 {
		cfg.Poll.Interval = DefaultPollInterval
	}
	return &AuthManager{
		api:    api,
		store:  store,
		clock:  cfg.Clock,
		events: cfg.Events,
		log:    cfg.Logger,
		poll:   cfg.Poll,
		state:  core.StateAnonymous,
	}
}

var _ outlet.Client = (*AuthManager)(nil)

// Restore loads any persisted session. A stored token makes the manager
// start out authenticated without asking the service.
func (m *AuthManager) Restore(ctx context.Context) {
	sess := m.store.Load(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.session = sess
	if sess.Authenticated() {
		m.state = core.StateAuthenticated
	}
}

// Login authenticates with email and password. On success the session is
// persisted and any in-flight challenge poll is torn down; only one
// authentication path may win. On failure the state returns to anonymous
// and the service message, when present, is surfaced.
func (m *AuthManager) Login(ctx context.Context, email, password string) error {
	m.begin(core.StateAuthenticating)

	res, err := m.api.Login(ctx, digest.Hex(email), digest.Hex(password))
	if err != nil {
		m.fail(core.MessageOr(err, outlet.MsgLoginFailed))
		return err
	}

	m.establishSession(ctx, res.Token, res.Identity)
	return nil
}

// Logout clears the session, the outstanding challenge, and any poll.
// Calling it while already anonymous is a no-op beyond redundantly
// clearing storage.
func (m *AuthManager) Logout(ctx context.Context) error {
	m.mu.Lock()
	m.stopPollingLocked()
	m.challenge = nil
	wasAuthenticated := m.session.Authenticated()
	deviceID := m.session.DeviceID
	m.session = core.Session{DeviceID: deviceID}
	m.state = core.StateAnonymous
	m.loading = false
	m.errMsg = ""
	m.mu.Unlock()

	m.store.Clear(ctx)

	if m.events != nil && wasAuthenticated {
		if err := m.events.PublishLogout(ctx, deviceID); err != nil {
			m.log.Warn("failed to publish logout event", zap.Error(err))
		}
	}
	return nil
}

// VerifyAuthentication asks the service whether the stored token is still
// valid. Without a stored token this fails locally; no request is made.
func (m *AuthManager) VerifyAuthentication(ctx context.Context) (bool, error) {
	m.mu.Lock()
	token := m.session.Token
	m.mu.Unlock()

	if token == "" {
		return false, core.ErrNotAuthenticated
	}
	return m.api.VerifySession(ctx, token)
}

// RecoverPassword triggers the password-recovery email. Session state is
// untouched either way.
func (m *AuthManager) RecoverPassword(ctx context.Context, email string) error {
	m.setLoading(true)
	err := m.api.RecoverPassword(ctx, email)
	if err != nil {
		m.fail(core.MessageOr(err, outlet.MsgRecoveryFailed))
		return err
	}
	m.setLoading(false)
	return nil
}

// RequestQRChallenge mints a challenge bound to email. Any previous
// challenge is discarded and its poll, if running, stops; the newest
// challenge is always the one polled.
func (m *AuthManager) RequestQRChallenge(ctx context.Context, email string) (core.Challenge, error) {
	m.setLoading(true)

	token, err := m.api.CreateQRChallenge(ctx, email)
	if err != nil {
		m.fail(core.MessageOr(err, outlet.MsgChallengeFailed))
		return core.Challenge{}, err
	}

	ch := core.Challenge{
		Token:      token,
		IssuedAt:   m.now(),
		BoundEmail: email,
	}

	m.mu.Lock()
	m.stopPollingLocked()
	m.challenge = &ch
	m.state = core.StateChallengeIssued
	m.loading = false
	m.errMsg = ""
	m.mu.Unlock()

	return ch, nil
}

// StartPolling begins validating the outstanding challenge once per
// interval. A validation that reports "not yet" keeps the loop running;
// only approval, cancellation, supersession or an exhausted attempt
// budget end it.
func (m *AuthManager) StartPolling(ctx context.Context) error {
	deviceID := m.store.EnsureDeviceID(ctx)

	m.mu.Lock()
	if m.challenge == nil {
		m.mu.Unlock()
		return core.ErrNoChallenge
	}
	if m.cancelPoll != nil {
		m.mu.Unlock()
		return nil
	}
	pctx, cancel := context.WithCancel(ctx)
	m.cancelPoll = cancel
	m.state = core.StatePolling
	gen := m.gen
	ch := *m.challenge
	m.mu.Unlock()

	go m.pollLoop(pctx, gen, ch, deviceID)
	return nil
}

// StopPolling cancels the poll loop. No validation call starts after it
// returns, and a tick already in flight has its result discarded.
func (m *AuthManager) StopPolling() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopPollingLocked()
}

// RequestAppChallenge mints an app-push challenge bound to this
// installation. Unlike the QR flow there is no poll loop; the caller
// validates explicitly.
func (m *AuthManager) RequestAppChallenge(ctx context.Context) (core.Challenge, error) {
	deviceID := m.store.EnsureDeviceID(ctx)
	m.setLoading(true)

	token, err := m.api.CreateAppChallenge(ctx, deviceID)
	if err != nil {
		m.fail(core.MessageOr(err, outlet.MsgChallengeFailed))
		return core.Challenge{}, err
	}

	m.setLoading(false)
	return core.Challenge{
		Token:    token,
		IssuedAt: m.now(),
	}, nil
}

// ValidateAppChallenge performs one validation of an app-push challenge.
// Approval establishes the session just like the QR flow; a "not yet"
// answer returns false with no error so the caller can simply try again.
func (m *AuthManager) ValidateAppChallenge(ctx context.Context, challengeToken, email string) (bool, error) {
	res, err := m.api.ValidateAppChallenge(ctx, challengeToken, email)
	if err != nil {
		m.log.Debug("app challenge validation failed", zap.Error(err))
		return false, err
	}
	if !res.OK {
		return false, nil
	}

	token := res.Token
	if token == "" {
		// The service may approve without minting a dedicated session
		// token; the approved challenge then acts as the credential.
		token = challengeToken
	}
	m.establishSession(ctx, token, res.Identity)
	return true, nil
}

// Snapshot returns the current observable auth state.
func (m *AuthManager) Snapshot() core.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return core.Snapshot{
		State:           m.state,
		IsAuthenticated: m.session.Authenticated(),
		Identity:        m.session.Identity,
		IsLoading:       m.loading,
		Err:             m.errMsg,
	}
}

// ClearError resets the surfaced error message.
func (m *AuthManager) ClearError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errMsg = ""
}

func (m *AuthManager) pollLoop(ctx context.Context, gen uint64, ch core.Challenge, deviceID string) {
	ticker := m.clock.NewTicker(m.poll.Interval)
	defer ticker.Stop()

	attempts := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
		}

		res, err := m.api.ValidateQRChallenge(ctx, ch.Token, deviceID)
		attempts++
		if err != nil {
			// The expected common case is "not scanned yet"; a failed
			// tick is never terminal.
			m.log.Debug("challenge validation tick failed",
				zap.String("challenge", ch.Token), zap.Error(err))
		} else if res.OK {
			m.completeChallenge(ctx, gen, ch, res)
			return
		}

		if m.poll.MaxAttempts > 0 && attempts >= m.poll.MaxAttempts {
			m.exhaustPolling(gen)
			return
		}
	}
}

// completeChallenge applies an approved validation, unless the challenge
// was superseded or another login path won while the call was in flight.
func (m *AuthManager) completeChallenge(ctx context.Context, gen uint64, ch core.Challenge, res ports.ValidationResult) {
	token := res.Token
	if token == "" {
		token = ch.Token
	}

	m.mu.Lock()
	if gen != m.gen || m.state == core.StateAuthenticated {
		m.mu.Unlock()
		return
	}
	sess := m.establishLocked(token, res.Identity)
	m.mu.Unlock()

	// The poll context dies with the poll; persisting the session must not.
	m.persistSession(context.WithoutCancel(ctx), sess)
}

func (m *AuthManager) exhaustPolling(gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if gen != m.gen {
		return
	}
	m.stopPollingLocked()
	m.errMsg = core.ErrPollExhausted.Error()
}

// establishSession moves the manager to authenticated, persists the
// session, and tears down any challenge state.
func (m *AuthManager) establishSession(ctx context.Context, token string, identity core.Identity) {
	m.mu.Lock()
	sess := m.establishLocked(token, identity)
	m.mu.Unlock()

	m.persistSession(ctx, sess)
}

// establishLocked performs the authenticated transition. Callers hold m.mu.
func (m *AuthManager) establishLocked(token string, identity core.Identity) core.Session {
	m.stopPollingLocked()
	m.challenge = nil
	sess := core.Session{
		Token:    token,
		Identity: identity,
		DeviceID: m.session.DeviceID,
	}
	m.session = sess
	m.state = core.StateAuthenticated
	m.loading = false
	m.errMsg = ""
	return sess
}

func (m *AuthManager) persistSession(ctx context.Context, sess core.Session) {
	m.store.Save(ctx, sess)

	if m.events != nil {
		if err := m.events.PublishLogin(ctx, sess.Identity); err != nil {
			m.log.Warn("failed to publish login event", zap.Error(err))
		}
	}
}

// stopPollingLocked cancels the poll loop and invalidates results of any
// validation already in flight. Callers hold m.mu.
func (m *AuthManager) stopPollingLocked() {
	m.gen++
	if m.cancelPoll != nil {
		m.cancelPoll()
		m.cancelPoll = nil
	}
	if m.state == core.StatePolling {
		if m.challenge != nil {
			m.state = core.StateChallengeIssued
		} else {
			m.state = core.StateAnonymous
		}
	}
}

func (m *AuthManager) begin(state core.State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = state
	m.loading = true
	m.errMsg = ""
}

func (m *AuthManager) setLoading(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading = v
	if v {
		m.errMsg = ""
	}
}

// fail records a surfaced message and returns the machine to a stable
// state. A failed password attempt lands back at anonymous, unless a
// challenge poll is still running underneath it, in which case the state
// returns to polling; other operations leave the current state untouched.
func (m *AuthManager) fail(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading = false
	m.errMsg = msg
	if m.state == core.StateAuthenticating {
		if m.cancelPoll != nil {
			m.state = core.StatePolling
		} else {
			m.state = core.StateAnonymous
		}
	}
}

func (m *AuthManager) now() time.Time {
	if m.clock != nil {
		return m.clock.Now()
	}
	return time.Now()
}
