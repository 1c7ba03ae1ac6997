package session

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shirkaty/portal/internal/client"
	"github.com/shirkaty/portal/internal/model"
)

// fakeAuthClient is a scriptable authClient with optional blocking.
type fakeAuthClient struct {
	mu    sync.Mutex
	token string

	signInResp *client.AuthResponse
	signInErr  error
	signOutErr error

	refreshResp *client.AuthResponse
	refreshErr  error

	// When set, SignIn blocks until release is closed.
	started chan struct{}
	release chan struct{}

	// When set, Refresh blocks until refreshRelease is closed.
	refreshStarted chan struct{}
	refreshRelease chan struct{}
}

func (f *fakeAuthClient) SignIn(ctx context.Context, email, password string) (*client.AuthResponse, error) {
	if f.started != nil {
		close(f.started)
	}
	if f.release != nil {
		<-f.release
	}
	return f.signInResp, f.signInErr
}

func (f *fakeAuthClient) SignOut(ctx context.Context) error { return f.signOutErr }

func (f *fakeAuthClient) Refresh(ctx context.Context) (*client.AuthResponse, error) {
	if f.refreshStarted != nil {
		close(f.refreshStarted)
	}
	if f.refreshRelease != nil {
		<-f.refreshRelease
	}
	return f.refreshResp, f.refreshErr
}

func (f *fakeAuthClient) SetToken(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = token
}

func (f *fakeAuthClient) Token() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func okResponse(role model.Role) *client.AuthResponse {
	return &client.AuthResponse{
		Token:     "tok-1",
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
		User: &model.User{
			ID:    "usr-1",
			Email: "amina@example.com",
			Name:  "Amina",
			Role:  role,
		},
	}
}

func newTestStore(t *testing.T, fc *fakeAuthClient) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.toml")
	return NewStore(fc, path, nil)
}

func TestSignInSuccess(t *testing.T) {
	fc := &fakeAuthClient{signInResp: okResponse(model.RoleUser)}
	s := newTestStore(t, fc)

	if err := s.SignIn(context.Background(), "amina@example.com", "s3cret"); err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}

	snap := s.Snapshot()
	if snap.State != Authenticated {
		t.Errorf("state = %v, want Authenticated", snap.State)
	}
	if snap.Token != "tok-1" {
		t.Errorf("token = %q", snap.Token)
	}
	if snap.Role() != model.RoleUser {
		t.Errorf("role = %v, want user", snap.Role())
	}
	if fc.Token() != "tok-1" {
		t.Errorf("transport token = %q, want tok-1", fc.Token())
	}

	info, err := os.Stat(s.path)
	if err != nil {
		t.Fatalf("stat persisted session: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("persisted file mode = %o, want 600", perm)
	}
}

func TestSignInWrongSecretStaysAnonymous(t *testing.T) {
	fc := &fakeAuthClient{
		signInErr: &client.APIError{StatusCode: http.StatusUnauthorized, Message: "invalid email or password"},
	}
	s := newTestStore(t, fc)

	err := s.SignIn(context.Background(), "amina@example.com", "wrong")
	if !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("error = %v, want ErrInvalidCredential", err)
	}

	snap := s.Snapshot()
	if snap.State != Anonymous {
		t.Errorf("state = %v, want Anonymous", snap.State)
	}
	if snap.Token != "" {
		t.Errorf("token = %q, want empty", snap.Token)
	}
	if _, err := os.Stat(s.path); !os.IsNotExist(err) {
		t.Error("credential file should not exist after rejected sign-in")
	}
}

func TestSignInNetworkFailure(t *testing.T) {
	fc := &fakeAuthClient{signInErr: errors.New("dial tcp: connection refused")}
	s := newTestStore(t, fc)

	err := s.SignIn(context.Background(), "amina@example.com", "s3cret")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("error = %v, want ErrUnavailable", err)
	}
	if s.Snapshot().State != Anonymous {
		t.Errorf("state = %v, want Anonymous", s.Snapshot().State)
	}
}

func TestSignInWhileInFlight(t *testing.T) {
	fc := &fakeAuthClient{
		signInResp: okResponse(model.RoleUser),
		started:    make(chan struct{}),
		release:    make(chan struct{}),
	}
	s := newTestStore(t, fc)

	done := make(chan error, 1)
	go func() { done <- s.SignIn(context.Background(), "amina@example.com", "s3cret") }()
	<-fc.started

	if err := s.SignIn(context.Background(), "amina@example.com", "s3cret"); !errors.Is(err, ErrAlreadyInFlight) {
		t.Errorf("second SignIn error = %v, want ErrAlreadyInFlight", err)
	}
	if got := s.Snapshot().State; got != Authenticating {
		t.Errorf("state during flight = %v, want Authenticating", got)
	}

	close(fc.release)
	if err := <-done; err != nil {
		t.Fatalf("first SignIn error = %v", err)
	}
	if got := s.Snapshot().State; got != Authenticated {
		t.Errorf("state = %v, want Authenticated", got)
	}
}

func TestSignOutAlwaysAnonymous(t *testing.T) {
	fc := &fakeAuthClient{signInResp: okResponse(model.RoleAdmin)}
	s := newTestStore(t, fc)

	if err := s.SignIn(context.Background(), "admin@example.com", "s3cret"); err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}
	before := s.Snapshot().Generation

	// Remote sign-out failure must not keep the session alive.
	fc.signOutErr = errors.New("server down")
	if err := s.SignOut(context.Background()); err != nil {
		t.Fatalf("SignOut() error = %v", err)
	}

	snap := s.Snapshot()
	if snap.State != Anonymous || snap.Token != "" || snap.Identity != nil {
		t.Errorf("snapshot after sign-out = %+v", snap)
	}
	if snap.Generation <= before {
		t.Errorf("generation = %d, want > %d", snap.Generation, before)
	}
	if fc.Token() != "" {
		t.Errorf("transport token = %q, want cleared", fc.Token())
	}
	if _, err := os.Stat(s.path); !os.IsNotExist(err) {
		t.Error("credential file should be removed on sign-out")
	}

	// Idempotent from Anonymous.
	if err := s.SignOut(context.Background()); err != nil {
		t.Fatalf("repeated SignOut() error = %v", err)
	}
	if s.Snapshot().State != Anonymous {
		t.Error("repeated SignOut left non-anonymous state")
	}
}

func TestSignOutDuringFlightDiscardsResult(t *testing.T) {
	fc := &fakeAuthClient{
		signInResp: okResponse(model.RoleUser),
		started:    make(chan struct{}),
		release:    make(chan struct{}),
	}
	s := newTestStore(t, fc)

	done := make(chan error, 1)
	go func() { done <- s.SignIn(context.Background(), "amina@example.com", "s3cret") }()
	<-fc.started

	if err := s.SignOut(context.Background()); err != nil {
		t.Fatalf("SignOut() error = %v", err)
	}
	close(fc.release)
	if err := <-done; err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}

	// The sign-in completed after sign-out; its result must not resurrect
	// the session.
	if got := s.Snapshot().State; got != Anonymous {
		t.Errorf("state = %v, want Anonymous", got)
	}
}

func TestApplyIdempotent(t *testing.T) {
	fc := &fakeAuthClient{}
	s := newTestStore(t, fc)

	var notifications int
	s.Watch(func(Snapshot) { notifications++ })

	ch := Change{
		Event:     "signed_in",
		Token:     "tok-9",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	s.Apply(ch)
	first := s.Snapshot()
	s.Apply(ch)
	second := s.Snapshot()

	if first.State != Authenticated || second.State != Authenticated {
		t.Errorf("states = %v, %v, want Authenticated", first.State, second.State)
	}
	if first.Token != second.Token || first.Generation != second.Generation {
		t.Errorf("repeated apply changed state: %+v vs %+v", first, second)
	}
	if notifications != 1 {
		t.Errorf("notifications = %d, want 1", notifications)
	}

	s.Apply(Change{Event: "signed_out"})
	s.Apply(Change{Event: "signed_out"})
	if got := s.Snapshot().State; got != Anonymous {
		t.Errorf("state = %v, want Anonymous", got)
	}
	if notifications != 2 {
		t.Errorf("notifications = %d, want 2", notifications)
	}
}

func TestRestore(t *testing.T) {
	fc := &fakeAuthClient{signInResp: okResponse(model.RoleAdmin)}
	s := newTestStore(t, fc)
	if err := s.SignIn(context.Background(), "admin@example.com", "s3cret"); err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}

	// A fresh store with the same path restores the credential offline.
	restored := NewStore(&fakeAuthClient{}, s.path, nil)
	if err := restored.Restore(); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	snap := restored.Snapshot()
	if snap.State != Authenticated {
		t.Fatalf("state = %v, want Authenticated", snap.State)
	}
	if snap.Role() != model.RoleAdmin {
		t.Errorf("role = %v, want admin", snap.Role())
	}
	if snap.Identity == nil || snap.Identity.Email != "admin@example.com" {
		t.Errorf("identity = %+v", snap.Identity)
	}
}

func TestRestoreExpiredCredential(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.toml")
	expired := `token = "tok-old"
expires_at = 2020-01-01T00:00:00Z

[identity]
user_id = "usr-1"
email = "amina@example.com"
name = "Amina"
role = "user"
`
	if err := os.WriteFile(path, []byte(expired), 0o600); err != nil {
		t.Fatal(err)
	}

	s := NewStore(&fakeAuthClient{}, path, nil)
	if err := s.Restore(); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if got := s.Snapshot().State; got != Anonymous {
		t.Errorf("state = %v, want Anonymous", got)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expired credential file should be removed")
	}
}

func TestRestoreMissingFile(t *testing.T) {
	s := NewStore(&fakeAuthClient{}, filepath.Join(t.TempDir(), "session.toml"), nil)
	if err := s.Restore(); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if got := s.Snapshot().State; got != Anonymous {
		t.Errorf("state = %v, want Anonymous", got)
	}
}

func TestRoleFromClaim(t *testing.T) {
	if got := roleFromClaim("admin"); got != model.RoleAdmin {
		t.Errorf("roleFromClaim(admin) = %v", got)
	}
	for _, claim := range []string{"user", "", "superadmin"} {
		if got := roleFromClaim(claim); got != model.RoleUser {
			t.Errorf("roleFromClaim(%q) = %v, want user", claim, got)
		}
	}
}

func TestRefreshSuccess(t *testing.T) {
	fc := &fakeAuthClient{signInResp: okResponse(model.RoleUser)}
	s := newTestStore(t, fc)

	if err := s.SignIn(context.Background(), "amina@example.com", "s3cret"); err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}

	fc.refreshResp = &client.AuthResponse{
		Token:     "tok-2",
		ExpiresAt: time.Now().Add(2 * time.Hour).Unix(),
		User:      okResponse(model.RoleUser).User,
	}
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	snap := s.Snapshot()
	if snap.State != Authenticated || snap.Token != "tok-2" {
		t.Errorf("snapshot after refresh = %+v", snap)
	}
	if fc.Token() != "tok-2" {
		t.Errorf("transport token = %q, want tok-2", fc.Token())
	}
	if _, err := os.Stat(s.path); err != nil {
		t.Errorf("refreshed credential not persisted: %v", err)
	}
}

func TestRefreshRequiresAuthenticated(t *testing.T) {
	s := newTestStore(t, &fakeAuthClient{})
	if err := s.Refresh(context.Background()); !errors.Is(err, ErrInvalidCredential) {
		t.Errorf("Refresh() from anonymous = %v, want ErrInvalidCredential", err)
	}
}

func TestRefreshFailureClassification(t *testing.T) {
	fc := &fakeAuthClient{signInResp: okResponse(model.RoleUser)}
	s := newTestStore(t, fc)
	if err := s.SignIn(context.Background(), "amina@example.com", "s3cret"); err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}

	fc.refreshErr = &client.APIError{StatusCode: http.StatusUnauthorized, Message: "token expired"}
	if err := s.Refresh(context.Background()); !errors.Is(err, ErrInvalidCredential) {
		t.Errorf("Refresh() on 401 = %v, want ErrInvalidCredential", err)
	}

	fc.refreshErr = errors.New("connection refused")
	if err := s.Refresh(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Refresh() on network error = %v, want ErrUnavailable", err)
	}

	// A failed refresh leaves the existing credential in place.
	snap := s.Snapshot()
	if snap.State != Authenticated || snap.Token != "tok-1" {
		t.Errorf("snapshot after failed refresh = %+v", snap)
	}
}

func TestSignOutDuringRefreshDiscardsResult(t *testing.T) {
	fc := &fakeAuthClient{
		signInResp: okResponse(model.RoleUser),
		refreshResp: &client.AuthResponse{
			Token:     "tok-2",
			ExpiresAt: time.Now().Add(2 * time.Hour).Unix(),
			User:      okResponse(model.RoleUser).User,
		},
		refreshStarted: make(chan struct{}),
		refreshRelease: make(chan struct{}),
	}
	s := newTestStore(t, fc)
	if err := s.SignIn(context.Background(), "amina@example.com", "s3cret"); err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- s.Refresh(context.Background()) }()
	<-fc.refreshStarted

	if err := s.SignOut(context.Background()); err != nil {
		t.Fatalf("SignOut() error = %v", err)
	}
	close(fc.refreshRelease)
	if err := <-done; err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	snap := s.Snapshot()
	if snap.State != Anonymous || snap.Token != "" {
		t.Errorf("snapshot after revoked refresh = %+v", snap)
	}
}
