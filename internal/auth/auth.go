// Package auth is the mock authentication gate: it format-validates the
// email suffix and keeps an in-memory identity for the current session. There
// is no password verification and no persisted session; this is a stub by
// design and must not be hardened into one.
package auth

import (
	"strings"
	"sync"

	"github.com/go-faster/errors"
)

// ErrInvalidCredentialFormat is returned when the email does not end with the
// accepted domain suffix. Surfaced as a user-visible message; the form stays
// open for retry.
var ErrInvalidCredentialFormat = errors.New("email must end with @gmail.com")

const acceptedSuffix = "@gmail.com"

// Identity is the signed-in user for the current process lifetime.
type Identity struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// SignedInEvent is published on successful sign-in or sign-up.
type SignedInEvent struct {
	Identity Identity
}

// SignedOutEvent is published when the identity is cleared.
type SignedOutEvent struct{}

// Publisher receives sign-in/out notifications.
type Publisher interface {
	Publish(e any)
}

// Service holds the current identity.
type Service struct {
	bus Publisher

	mu      sync.Mutex
	current *Identity
}

// NewService creates an unauthenticated Service.
func NewService(bus Publisher) *Service {
	return &Service{bus: bus}
}

// SignIn validates the email format and establishes an identity named after
// the email's local part.
func (s *Service) SignIn(email, _ string) (Identity, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return Identity{}, err
	}

	name := email[:strings.IndexByte(email, '@')]
	return s.establish(Identity{Name: name, Email: email})
}

// SignUp validates the email format and establishes an identity with the
// given display name.
func (s *Service) SignUp(name, email, _ string) (Identity, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return Identity{}, err
	}

	return s.establish(Identity{Name: strings.TrimSpace(name), Email: email})
}

// SignOut clears the identity. Signing out while unauthenticated is a no-op.
func (s *Service) SignOut() {
	s.mu.Lock()
	wasSignedIn := s.current != nil
	s.current = nil
	s.mu.Unlock()

	if wasSignedIn {
		s.bus.Publish(SignedOutEvent{})
	}
}

// Current returns the active identity, if any.
func (s *Service) Current() (Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return Identity{}, false
	}
	return *s.current, true
}

func (s *Service) establish(id Identity) (Identity, error) {
	s.mu.Lock()
	s.current = &id
	s.mu.Unlock()

	s.bus.Publish(SignedInEvent{Identity: id})
	return id, nil
}

// normalizeEmail trims and lower-cases the address before checking the
// accepted suffix.
func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !strings.HasSuffix(email, acceptedSuffix) || email == acceptedSuffix {
		return "", ErrInvalidCredentialFormat
	}
	return email, nil
}
