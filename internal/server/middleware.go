package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/shirkaty/portal/internal/auth"
	"github.com/shirkaty/portal/internal/model"
)

type ctxKey int

const identityKey ctxKey = iota

// identityFrom returns the verified identity attached by authMiddleware.
func identityFrom(ctx context.Context) (*auth.Identity, bool) {
	id, ok := ctx.Value(identityKey).(*auth.Identity)
	return id, ok
}

// isPublic reports whether a route is reachable without a token.
func isPublic(r *http.Request) bool {
	if r.Method != http.MethodPost && r.Method != http.MethodGet {
		return false
	}
	switch r.URL.Path {
	case "/v1/health", "/v1/auth/signup", "/v1/auth/signin", "/v1/auth/reset":
		return true
	}
	return false
}

// authMiddleware verifies the bearer token on every non-public route and
// attaches the resulting identity to the request context. Admin routes
// (under /v1/admin/) additionally require the admin role.
func (s *PortalServer) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isPublic(r) {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		identity, err := s.tokens.Verify(token)
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				writeError(w, http.StatusUnauthorized, "session expired")
				return
			}
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		if strings.HasPrefix(r.URL.Path, "/v1/admin/") && identity.Role != model.RoleAdmin {
			// Standard users never see admin responses, only a 403.
			writeError(w, http.StatusForbidden, "admin access required")
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
