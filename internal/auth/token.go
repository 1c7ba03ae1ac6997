// Package auth issues and verifies the portal's access tokens and hashes
// account passwords.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/shirkaty/portal/internal/model"
)

// Token verification errors.
var (
	ErrTokenExpired = errors.New("auth: token expired")
	ErrTokenInvalid = errors.New("auth: token invalid")
)

// Identity is the verified subject of an access token.
type Identity struct {
	UserID string
	Email  string
	Name   string
	Role   model.Role
}

// TokenManager issues signed JWTs for authenticated users and verifies them
// on incoming requests.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenManager creates a manager with the provided secret, issuer, and lifetime.
func NewTokenManager(secret, issuer string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
	}
}

// Issue returns a signed JWT for the given user. The role travels as a claim
// so authorization is derivable from the token alone.
func (t *TokenManager) Issue(user *model.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss":   t.issuer,
		"sub":   user.ID,
		"email": user.Email,
		"name":  user.Name,
		"role":  string(user.Role),
		"iat":   now.Unix(),
		"nbf":   now.Unix(),
		"exp":   now.Add(t.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// ExpiresAt returns when a token issued at the given time stops being valid.
func (t *TokenManager) ExpiresAt(issuedAt time.Time) time.Time {
	return issuedAt.Add(t.ttl)
}

// Verify parses and validates a token string and returns the embedded identity.
// Expired tokens return ErrTokenExpired; anything else invalid returns
// ErrTokenInvalid.
func (t *TokenManager) Verify(tokenStr string) (*Identity, error) {
	token, err := jwt.Parse(tokenStr, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithIssuer(t.issuer), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	return IdentityFromClaims(claims), nil
}

// IdentityFromClaims derives an Identity from token claims. Role derivation
// is a pure function of the claims: an explicit "admin" role claim yields
// RoleAdmin, anything else yields RoleUser.
func IdentityFromClaims(claims jwt.MapClaims) *Identity {
	id := &Identity{Role: model.RoleUser}
	if sub, ok := claims["sub"].(string); ok {
		id.UserID = sub
	}
	if email, ok := claims["email"].(string); ok {
		id.Email = email
	}
	if name, ok := claims["name"].(string); ok {
		id.Name = name
	}
	if role, ok := claims["role"].(string); ok && model.Role(role) == model.RoleAdmin {
		id.Role = model.RoleAdmin
	}
	return id
}
