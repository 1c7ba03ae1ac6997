// Package session holds the client-side authentication state machine. It
// tracks the current identity, persists credentials between runs, and
// notifies watchers when the state changes.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/shirkaty/portal/internal/auth"
	"github.com/shirkaty/portal/internal/client"
	"github.com/shirkaty/portal/internal/model"
)

// State is the session lifecycle state.
type State int

const (
	// Anonymous means no credential is held.
	Anonymous State = iota
	// Authenticating means a sign-in request is in flight.
	Authenticating
	// Authenticated means a verified credential is held.
	Authenticated
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Session errors.
var (
	// ErrAlreadyInFlight is returned when SignIn is called while another
	// sign-in is still pending.
	ErrAlreadyInFlight = errors.New("session: sign-in already in flight")
	// ErrInvalidCredential is returned when the server rejects the email or
	// password.
	ErrInvalidCredential = errors.New("session: invalid credential")
	// ErrUnavailable is returned when the server could not be reached. The
	// credential may still be valid.
	ErrUnavailable = errors.New("session: server unavailable")
)

// Snapshot is an immutable view of the session at a point in time.
type Snapshot struct {
	State      State
	Identity   *auth.Identity
	Token      string
	ExpiresAt  time.Time
	Generation uint64
}

// Role reports the effective role: derived from the identity claims when
// authenticated, RoleUser otherwise. It is never stored independently of the
// identity.
func (s Snapshot) Role() model.Role {
	if s.State == Authenticated && s.Identity != nil {
		return s.Identity.Role
	}
	return model.RoleUser
}

// Change describes a session transition applied from outside, such as an
// auth broadcast from another process or the server's session-revoked event.
type Change struct {
	// Event is one of "signed_in", "signed_out", "token_refreshed".
	Event     string
	Token     string
	ExpiresAt time.Time
	Identity  *auth.Identity
}

// authClient is the slice of the portal client the session store needs.
type authClient interface {
	SignIn(ctx context.Context, email, password string) (*client.AuthResponse, error)
	SignOut(ctx context.Context) error
	Refresh(ctx context.Context) (*client.AuthResponse, error)
}

// tokenSetter is implemented by transports that carry a bearer token.
type tokenSetter interface {
	SetToken(token string)
}

// Store is the session state machine. All methods are safe for concurrent
// use.
type Store struct {
	client authClient
	path   string
	logger *slog.Logger

	mu         sync.Mutex
	state      State
	identity   *auth.Identity
	token      string
	expiresAt  time.Time
	generation uint64
	watchers   []func(Snapshot)
}

// NewStore creates a session store persisting credentials at path. The store
// starts Anonymous; call Restore to pick up a previous session.
func NewStore(c authClient, path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		client: c,
		path:   path,
		logger: logger,
		state:  Anonymous,
	}
}

// Snapshot returns the current session state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		State:      s.state,
		Identity:   s.identity,
		Token:      s.token,
		ExpiresAt:  s.expiresAt,
		Generation: s.generation,
	}
}

// Watch registers a callback invoked after every state transition. Callbacks
// run synchronously with the snapshot that resulted from the transition.
func (s *Store) Watch(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchers = append(s.watchers, fn)
}

func (s *Store) notifyLocked() {
	snap := s.snapshotLocked()
	for _, fn := range s.watchers {
		fn(snap)
	}
}

// SignIn exchanges credentials for a token. The store passes through
// Authenticating while the request is in flight; a concurrent SignIn returns
// ErrAlreadyInFlight. On rejection the store returns to Anonymous with
// ErrInvalidCredential; on transport failure it returns to Anonymous with
// ErrUnavailable.
func (s *Store) SignIn(ctx context.Context, email, password string) error {
	s.mu.Lock()
	if s.state == Authenticating {
		s.mu.Unlock()
		return ErrAlreadyInFlight
	}
	startGen := s.generation
	s.state = Authenticating
	s.identity = nil
	s.notifyLocked()
	s.mu.Unlock()

	resp, err := s.client.SignIn(ctx, email, password)

	s.mu.Lock()
	defer s.mu.Unlock()

	// A SignOut during the flight bumps the generation; its result must not
	// resurrect the session.
	if s.generation != startGen {
		return nil
	}

	if err != nil {
		s.state = Anonymous
		s.token = ""
		s.identity = nil
		s.notifyLocked()
		return classify(err)
	}

	s.applyAuthLocked(resp)
	s.notifyLocked()

	if err := s.persistLocked(); err != nil {
		s.logger.Warn("persisting session failed", "error", err)
	}
	return nil
}

// SignOut discards the credential. It always leaves the store Anonymous and
// removes the persisted file, regardless of prior state or server
// reachability. Calling it repeatedly is harmless.
func (s *Store) SignOut(ctx context.Context) error {
	// Best effort: tell the server, but never let failure keep us signed in.
	if err := s.client.SignOut(ctx); err != nil {
		s.logger.Warn("remote sign-out failed", "error", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	changed := s.state != Anonymous || s.token != ""
	s.state = Anonymous
	s.identity = nil
	s.token = ""
	s.expiresAt = time.Time{}
	s.generation++
	s.clearTransportToken()

	if err := s.removePersisted(); err != nil {
		return fmt.Errorf("removing persisted session: %w", err)
	}
	if changed {
		s.notifyLocked()
	}
	return nil
}

// Refresh exchanges the current token for a fresh one. It requires an
// authenticated session.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	if s.state != Authenticated {
		s.mu.Unlock()
		return ErrInvalidCredential
	}
	startGen := s.generation
	s.mu.Unlock()

	resp, err := s.client.Refresh(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != startGen {
		return nil
	}
	if err != nil {
		return classify(err)
	}
	s.applyAuthLocked(resp)
	s.notifyLocked()
	if err := s.persistLocked(); err != nil {
		s.logger.Warn("persisting session failed", "error", err)
	}
	return nil
}

// Apply applies a session change notification. It is idempotent: applying
// the same change twice leaves the state unchanged and does not re-notify
// watchers.
func (s *Store) Apply(ch Change) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch ch.Event {
	case "signed_out":
		if s.state == Anonymous && s.token == "" {
			return
		}
		s.state = Anonymous
		s.identity = nil
		s.token = ""
		s.expiresAt = time.Time{}
		s.generation++
		s.clearTransportToken()
		if err := s.removePersisted(); err != nil {
			s.logger.Warn("removing persisted session failed", "error", err)
		}
	case "signed_in", "token_refreshed":
		if s.state == Authenticated && s.token == ch.Token {
			return
		}
		s.state = Authenticated
		s.identity = ch.Identity
		s.token = ch.Token
		s.expiresAt = ch.ExpiresAt
		s.generation++
		if ts, ok := s.client.(tokenSetter); ok {
			ts.SetToken(ch.Token)
		}
		if err := s.persistLocked(); err != nil {
			s.logger.Warn("persisting session failed", "error", err)
		}
	default:
		s.logger.Warn("ignoring unknown session change", "event", ch.Event)
		return
	}
	s.notifyLocked()
}

// ChangeFromAuth converts an auth response into a signed_in change, for
// callers that obtained a token outside the store's own SignIn (signup).
func ChangeFromAuth(resp *client.AuthResponse) Change {
	return Change{
		Event:     "signed_in",
		Token:     resp.Token,
		ExpiresAt: time.Unix(resp.ExpiresAt, 0),
		Identity:  identityOf(resp.User),
	}
}

func (s *Store) applyAuthLocked(resp *client.AuthResponse) {
	s.state = Authenticated
	s.token = resp.Token
	s.expiresAt = time.Unix(resp.ExpiresAt, 0)
	s.identity = identityOf(resp.User)
	s.generation++
	if ts, ok := s.client.(tokenSetter); ok {
		ts.SetToken(resp.Token)
	}
}

func (s *Store) clearTransportToken() {
	if ts, ok := s.client.(tokenSetter); ok {
		ts.SetToken("")
	}
}

// identityOf derives the session identity from the user record. The role is
// computed from the role claim, never carried as separate state.
func identityOf(u *model.User) *auth.Identity {
	if u == nil {
		return nil
	}
	role := model.RoleUser
	if u.Role == model.RoleAdmin {
		role = model.RoleAdmin
	}
	return &auth.Identity{
		UserID: u.ID,
		Email:  u.Email,
		Name:   u.Name,
		Role:   role,
	}
}

// classify maps a transport error to the session error taxonomy. A 401 from
// the server means the credential was rejected; anything else is treated as
// the server being unreachable.
func classify(err error) error {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: %s", ErrInvalidCredential, apiErr.Message)
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
