package services

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"

	"tripmate/models"
	"tripmate/utils/errors"
)

// Authenticator is the part of the remote API the session needs.
type Authenticator interface {
	Register(ctx context.Context, data models.RegistrationData) (models.User, error)
	Login(ctx context.Context, creds models.LoginCredentials) (models.TokenResponse, error)
}

// State is a snapshot of the session.
type State struct {
	Loading       bool
	Authenticated bool
	User          models.User
}

// SessionService is the single source of truth for who is using the client.
// It is the only writer of the durable token.
//
// A new session is loading until Init has looked at the stored token.
// Login and Register make it loading again while they run; Logout never
// waits for that.
type SessionService struct {
	auth  Authenticator
	store TokenStore

	initOnce sync.Once

	// authMu makes storing a login's token and adopting it one step with
	// respect to Logout.
	authMu sync.Mutex

	mu           sync.RWMutex
	initializing bool
	pending      int
	token        string
	user         *models.User
}

func NewSessionService(auth Authenticator, store TokenStore) *SessionService {
	return &SessionService{
		auth:         auth,
		store:        store,
		initializing: true,
	}
}

// Init resolves the session from the stored token. A stored token is trusted
// as is: the remote is not asked whether it is still valid, so an expired
// token only shows up when a later request fails. Init runs once; later calls
// return immediately.
func (s *SessionService) Init(ctx context.Context) {
	s.initOnce.Do(func() {
		token, err := s.store.Load(ctx)
		if err != nil {
			log.Printf("session: failed to read stored token: %v", err)
			token = ""
		}

		s.mu.Lock()
		if token != "" && s.user == nil {
			user := IdentityFromToken(token)
			s.token = token
			s.user = &user
		}
		s.initializing = false
		s.mu.Unlock()

		if token != "" {
			log.Printf("session: restored stored token")
		}
	})
}

// Login exchanges credentials for a token and stores it.
func (s *SessionService) Login(ctx context.Context, creds models.LoginCredentials) error {
	s.begin()
	defer s.end()
	return s.login(ctx, creds)
}

// Register creates the account and then logs in with the same credentials.
// The identity becomes the user the remote returned on registration.
func (s *SessionService) Register(ctx context.Context, data models.RegistrationData) error {
	s.begin()
	defer s.end()

	user, err := s.auth.Register(ctx, data)
	if err != nil {
		return err
	}
	if err := s.login(ctx, models.LoginCredentials{Username: data.Username, Password: data.Password}); err != nil {
		return err
	}

	s.mu.Lock()
	if s.user != nil {
		s.user = &user
	}
	s.mu.Unlock()
	return nil
}

func (s *SessionService) login(ctx context.Context, creds models.LoginCredentials) error {
	resp, err := s.auth.Login(ctx, creds)
	if err != nil {
		return err
	}
	if resp.AccessToken == "" {
		return errors.NewAPIError("LOGIN_FAILED", errors.GenericMessage, http.StatusBadGateway, "login response carried no token").WithKind(errors.KindAuth)
	}
	user := IdentityFromToken(resp.AccessToken)
	if user.Username == PlaceholderUsername {
		user.Username = creds.Username
	}

	s.authMu.Lock()
	defer s.authMu.Unlock()
	if err := s.store.Save(ctx, resp.AccessToken); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	s.mu.Lock()
	s.token = resp.AccessToken
	s.user = &user
	s.mu.Unlock()

	log.Printf("session: logged in as %s", user.Username)
	return nil
}

// Logout forgets the token and identity. It never fails: a storage error is
// logged and the in-memory session is cleared regardless, so the very next
// request goes out without a token.
func (s *SessionService) Logout(ctx context.Context) {
	s.authMu.Lock()
	defer s.authMu.Unlock()

	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	if err := s.store.Clear(ctx); err != nil {
		log.Printf("session: failed to clear stored token: %v", err)
	}
	log.Printf("session: logged out")
}

// Token implements TokenSource.
func (s *SessionService) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *SessionService) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initializing || s.pending > 0
}

// IsAuthenticated is true only once an identity is resolved; a token alone
// is not enough.
func (s *SessionService) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

func (s *SessionService) CurrentUser() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

func (s *SessionService) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stateLocked()
}

func (s *SessionService) stateLocked() State {
	st := State{Loading: s.initializing || s.pending > 0}
	if s.user != nil {
		st.Authenticated = true
		st.User = *s.user
	}
	return st
}

func (s *SessionService) begin() {
	s.mu.Lock()
	s.pending++
	s.mu.Unlock()
}

func (s *SessionService) end() {
	s.mu.Lock()
	s.pending--
	s.mu.Unlock()
}
