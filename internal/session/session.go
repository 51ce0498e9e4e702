// Package session owns the authenticated-identity state of the client:
// current user, access/refresh token pair, authentication flag. Tokens are
// the only part written to durable storage; the user is validated and
// re-fetched on every boot.
package session

import (
	"sync"

	"github.com/nebulamart/storefront/internal/models"
)

// State is a point-in-time snapshot of the session.
//
// IsAuthenticated is true iff User is set. Tokens may be present while
// IsAuthenticated is still false: that is the startup window between
// rehydration and the "who am I" validation settling.
type State struct {
	User            *models.User
	AccessToken     string
	RefreshToken    string
	IsAuthenticated bool
	Loading         bool
}

// Store is the session state container. All mutation goes through the
// enumerated operations; each is atomic with respect to the others.
type Store struct {
	mu      sync.Mutex
	state   State
	storage TokenStorage
}

// New loads any persisted token pair into the initial state.
// IsAuthenticated starts false regardless of token presence; Rehydrate
// confirms or clears the identity afterwards.
func New(storage TokenStorage) (*Store, error) {
	access, refresh, err := storage.Load()
	if err != nil {
		return nil, err
	}
	return &Store{
		state:   State{AccessToken: access, RefreshToken: refresh},
		storage: storage,
	}, nil
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	if s.state.User != nil {
		u := *s.state.User
		st.User = &u
	}
	return st
}

// AccessToken is the TokenSource for the backends.
func (s *Store) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.AccessToken
}

func (s *Store) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Loading = loading
}

// LoginSuccess installs the identity and token pair and persists the
// tokens.
func (s *Store) LoginSuccess(user models.User, accessToken, refreshToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.User = &user
	s.state.AccessToken = accessToken
	s.state.RefreshToken = refreshToken
	s.state.IsAuthenticated = true
	s.state.Loading = false
	_ = s.storage.Save(accessToken, refreshToken)
}

// LoginFailure clears the whole session, including persisted tokens.
// Signals credential rejection or a failed validation.
func (s *Store) LoginFailure() {
	s.clear()
}

// Logout has the same clearing effect as LoginFailure; invoked by explicit
// user action or by the refresh coordinator when an exchange is
// irrecoverable.
func (s *Store) Logout() {
	s.clear()
}

// SetUser replaces the user wholesale after a successful session
// validation. Tokens are untouched.
func (s *Store) SetUser(user models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.User = &user
	s.state.IsAuthenticated = true
}

// UpdateTokens swaps in a fresh token pair after a refresh exchange,
// leaving the identity untouched.
func (s *Store) UpdateTokens(accessToken, refreshToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.AccessToken = accessToken
	s.state.RefreshToken = refreshToken
	_ = s.storage.Save(accessToken, refreshToken)
}

func (s *Store) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = State{}
	_ = s.storage.Clear()
}
