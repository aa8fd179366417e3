// Package mockapi is a gin implementation of the portal service wire
// contract, used by the test suite and the local development server. It
// keeps accounts and challenges in memory, stores bcrypt hashes of the
// credential digests, and mints JWT session tokens.
package mockapi

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/neoidea/outlet/core"
	"github.com/neoidea/outlet/internal/digest"
)

// Account is one registered portal user.
type Account struct {
	Code  int
	Name  string
	Email string

	emailDigest  string
	passwordHash []byte // bcrypt over the SHA-1 hex digest of the password
}

type challenge struct {
	token     string
	email     string // bound at generation for QR challenges
	deviceID  string // bound at generation for app challenges
	app       bool
	approved  bool
	createdAt time.Time
}

// Server holds the mock portal state.
type Server struct {
	mdiID      string
	signingKey []byte

	mu         sync.Mutex
	accounts   map[string]*Account // keyed by email digest
	challenges map[string]*challenge
	nextCode   int

	layout   core.Layout
	carousel []core.CarouselItem
	contact  core.Contact
}

// NewServer creates a mock portal for one installation id.
func NewServer(mdiID string, signingKey []byte) *Server {
	return &Server{
		mdiID:      mdiID,
		signingKey: signingKey,
		accounts:   make(map[string]*Account),
		challenges: make(map[string]*challenge),
		nextCode:   1000,
	}
}

// RegisterAccount adds a user. Credentials are stored the way the real
// service sees them: a bcrypt hash of the SHA-1 digest.
func (s *Server) RegisterAccount(name, email, password string) (*Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(digest.Hex(password)), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	emailDigest := digest.Hex(email)
	if _, ok := s.accounts[emailDigest]; ok {
		return nil, errors.New("account already exists")
	}
	s.nextCode++
	acct := &Account{
		Code:         s.nextCode,
		Name:         name,
		Email:        email,
		emailDigest:  emailDigest,
		passwordHash: hash,
	}
	s.accounts[emailDigest] = acct
	return acct, nil
}

// SetLayout installs the theming fixture served by getLayoutExterno.
func (s *Server) SetLayout(l core.Layout) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layout = l
}

// SetCarousel installs the carousel fixture.
func (s *Server) SetCarousel(items []core.CarouselItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carousel = items
}

// SetContact installs the contact-card fixture.
func (s *Server) SetContact(c core.Contact) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contact = c
}

// ApproveChallenge plays the part of the companion app scanning the QR
// code (or accepting the push). For QR challenges deviceID records which
// installation may claim the approval.
func (s *Server) ApproveChallenge(token, deviceID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch, ok := s.challenges[token]
	if !ok {
		return false
	}
	ch.approved = true
	if !ch.app {
		ch.deviceID = deviceID
	}
	return true
}

func (s *Server) authenticate(emailDigest, passwordDigest string) (*Account, bool) {
	s.mu.Lock()
	acct, ok := s.accounts[emailDigest]
	s.mu.Unlock()
	if !ok {
		return nil, false
	}
	if bcrypt.CompareHashAndPassword(acct.passwordHash, []byte(passwordDigest)) != nil {
		return nil, false
	}
	return acct, true
}

func (s *Server) accountByEmail(email string) (*Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[digest.Hex(email)]
	return acct, ok
}

func (s *Server) createQRChallenge(email string) *challenge {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := &challenge{
		token:     uuid.New().String(),
		email:     email,
		createdAt: time.Now(),
	}
	s.challenges[ch.token] = ch
	return ch
}

func (s *Server) createAppChallenge(deviceID string) *challenge {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := &challenge{
		token:     uuid.New().String(),
		deviceID:  deviceID,
		app:       true,
		createdAt: time.Now(),
	}
	s.challenges[ch.token] = ch
	return ch
}

func (s *Server) lookupChallenge(token string) (*challenge, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.challenges[token]
	return ch, ok
}

func codeString(acct *Account) string {
	return strconv.Itoa(acct.Code)
}
