// Package session owns the authenticated identity of the client: the bearer
// token, the user profile and their persisted copy.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/sandeepkv93/taskboard/internal/model"
	"github.com/sandeepkv93/taskboard/internal/storage"
)

// Poster is the slice of the API client the store needs for the auth endpoints.
type Poster interface {
	Post(ctx context.Context, path string, body, out any) error
}

// Session is a point-in-time copy of the store state.
type Session struct {
	Token   string
	User    *model.User
	Expiry  time.Time
	Loading bool
}

type Store struct {
	repo   storage.Repository
	auth   Poster
	logger zerolog.Logger
	now    func() time.Time

	restoreOnce sync.Once

	mu        sync.RWMutex
	loading   bool
	token     string
	user      *model.User
	listeners []func()
}

func NewStore(repo storage.Repository, auth Poster, logger zerolog.Logger) *Store {
	return &Store{
		repo:    repo,
		auth:    auth,
		logger:  logger.With().Str("component", "session").Logger(),
		now:     time.Now,
		loading: true,
	}
}

// OnLogout registers fn to run after a session is torn down.
func (s *Store) OnLogout(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Restore adopts the persisted session. Only the first call does any work;
// Loading reports true until it has finished.
func (s *Store) Restore(ctx context.Context) error {
	var err error
	s.restoreOnce.Do(func() {
		err = s.restore(ctx)
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	})
	return err
}

func (s *Store) restore(ctx context.Context) error {
	token, err := s.repo.Get(ctx, storage.KeyToken)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("session: read token: %w", err)
	}
	if TokenExpired(token, s.now()) {
		s.logger.Info().Msg("persisted token expired, clearing")
		return s.clearStorage(ctx)
	}

	var user *model.User
	rawUser, err := s.repo.Get(ctx, storage.KeyUser)
	switch {
	case err == nil:
		var u model.User
		if decodeErr := json.Unmarshal([]byte(rawUser), &u); decodeErr != nil {
			s.logger.Warn().Err(decodeErr).Msg("persisted user unreadable, clearing")
			return s.clearStorage(ctx)
		}
		user = &u
	case errors.Is(err, storage.ErrNotFound):
	default:
		return fmt.Errorf("session: read user: %w", err)
	}

	s.mu.Lock()
	s.token = token
	s.user = user
	s.mu.Unlock()
	s.logger.Debug().Msg("session restored")
	return nil
}

type authResponse struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// Login exchanges credentials for a session. On failure the current session,
// if any, is kept and the returned *Error carries a user-facing message.
func (s *Store) Login(ctx context.Context, email, password string) error {
	body := map[string]string{"email": strings.TrimSpace(email), "password": password}
	return s.authenticate(ctx, "login", "/auth/login", loginFallback, body)
}

// Register creates an account and logs into it.
func (s *Store) Register(ctx context.Context, name, email, password string) error {
	body := map[string]string{
		"name":     strings.TrimSpace(name),
		"email":    strings.TrimSpace(email),
		"password": password,
	}
	return s.authenticate(ctx, "register", "/auth/register", registerFallback, body)
}

func (s *Store) authenticate(ctx context.Context, op, path, fallback string, body any) error {
	var resp authResponse
	if err := s.auth.Post(ctx, path, body, &resp); err != nil {
		s.logger.Info().Err(err).Str("op", op).Msg("authentication rejected")
		return authError(op, fallback, err)
	}
	if resp.Token == "" {
		return &Error{Op: op, Message: fallback, Err: errors.New("response carried no token")}
	}
	user := resp.User
	s.persist(ctx, resp.Token, &user)

	s.mu.Lock()
	s.token = resp.Token
	s.user = &user
	s.mu.Unlock()
	s.logger.Info().Str("op", op).Str("user", user.ID).Msg("session established")
	return nil
}

// persist writes the session through; a failure costs only the next restart's
// restore, so it is logged rather than returned.
func (s *Store) persist(ctx context.Context, token string, user *model.User) {
	if err := s.repo.Put(ctx, storage.KeyToken, token); err != nil {
		s.logger.Warn().Err(err).Msg("persist token")
		return
	}
	raw, err := json.Marshal(user)
	if err != nil {
		s.logger.Warn().Err(err).Msg("encode user")
		return
	}
	if err := s.repo.Put(ctx, storage.KeyUser, string(raw)); err != nil {
		s.logger.Warn().Err(err).Msg("persist user")
	}
}

// Logout drops the session from memory and storage. It is safe to call
// repeatedly; listeners only run when a session was actually present.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	hadSession := s.token != ""
	s.token = ""
	s.user = nil
	listeners := append([]func(){}, s.listeners...)
	s.mu.Unlock()

	err := s.clearStorage(ctx)
	if hadSession {
		s.logger.Info().Msg("session cleared")
		for _, fn := range listeners {
			fn()
		}
	}
	return err
}

func (s *Store) clearStorage(ctx context.Context) error {
	if err := s.repo.Delete(ctx, storage.KeyToken, storage.KeyUser); err != nil {
		s.logger.Warn().Err(err).Msg("clear persisted session")
		return fmt.Errorf("session: clear storage: %w", err)
	}
	return nil
}

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Authenticated reports whether a token is held and not known to be expired.
func (s *Store) Authenticated() bool {
	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()
	return token != "" && !TokenExpired(token, s.now())
}

func (s *Store) User() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Store) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := Session{Token: s.token, Loading: s.loading}
	if s.user != nil {
		u := *s.user
		out.User = &u
	}
	if s.token != "" {
		out.Expiry, _ = TokenExpiry(s.token)
	}
	return out
}

// Token implements oauth2.TokenSource.
func (s *Store) Token() (*oauth2.Token, error) {
	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()
	if token == "" {
		return nil, ErrNoSession
	}
	exp, _ := TokenExpiry(token)
	return &oauth2.Token{AccessToken: token, TokenType: "Bearer", Expiry: exp}, nil
}

var _ oauth2.TokenSource = (*Store)(nil)
