package session

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/shirkaty/portal/internal/auth"
	"github.com/shirkaty/portal/internal/model"
)

// persistedSession is the on-disk TOML shape of a session credential.
type persistedSession struct {
	Token     string            `toml:"token"`
	ExpiresAt time.Time         `toml:"expires_at"`
	Identity  persistedIdentity `toml:"identity"`
}

type persistedIdentity struct {
	UserID string `toml:"user_id"`
	Email  string `toml:"email"`
	Name   string `toml:"name"`
	Role   string `toml:"role"`
}

// DefaultPath returns the standard credential file location,
// ~/.local/state/shirkaty/session.toml, creating the directory if needed.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".local", "state", "shirkaty")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return filepath.Join(dir, "session.toml"), nil
}

// Restore loads a previously persisted credential. When the file exists and
// the token has not expired, the store enters Authenticated directly without
// a network round trip. A missing file leaves the store Anonymous; an
// expired credential is removed.
func (s *Store) Restore() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var p persistedSession
	if _, err := toml.DecodeFile(s.path, &p); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if p.Token == "" {
		return nil
	}
	if !p.ExpiresAt.After(time.Now()) {
		if err := s.removePersisted(); err != nil {
			s.logger.Warn("removing expired session failed", "error", err)
		}
		return nil
	}

	s.state = Authenticated
	s.token = p.Token
	s.expiresAt = p.ExpiresAt
	s.identity = &auth.Identity{
		UserID: p.Identity.UserID,
		Email:  p.Identity.Email,
		Name:   p.Identity.Name,
		Role:   roleFromClaim(p.Identity.Role),
	}
	s.generation++
	if ts, ok := s.client.(tokenSetter); ok {
		ts.SetToken(p.Token)
	}
	s.notifyLocked()
	return nil
}

// roleFromClaim derives the role from the persisted claim string. Anything
// other than an explicit admin marker is a standard user.
func roleFromClaim(claim string) model.Role {
	if claim == string(model.RoleAdmin) {
		return model.RoleAdmin
	}
	return model.RoleUser
}

func (s *Store) persistLocked() error {
	p := persistedSession{
		Token:     s.token,
		ExpiresAt: s.expiresAt,
	}
	if s.identity != nil {
		p.Identity = persistedIdentity{
			UserID: s.identity.UserID,
			Email:  s.identity.Email,
			Name:   s.identity.Name,
			Role:   string(s.identity.Role),
		}
	}

	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(p)
}

func (s *Store) removePersisted() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
