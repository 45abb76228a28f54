// Package auth supplies bearer tokens to outgoing document-API and
// stream requests. Token verification belongs to the server; the client
// only injects the token and inspects its expiry for early warning.
package auth

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenSource yields the bearer token for outgoing requests. An empty
// token means unauthenticated requests (the local stub accepts those).
type TokenSource interface {
	Token() string
}

// StaticToken wraps a fixed token, typically loaded from config. When
// the token looks like a JWT its expiry is decoded (unverified - the
// client has no business checking signatures) so an expired token is
// flagged once in the logs instead of surfacing as a wall of 401s.
type StaticToken struct {
	value  string
	logger *slog.Logger

	warnOnce sync.Once
}

// NewStaticToken creates a static token source.
func NewStaticToken(token string, logger *slog.Logger) *StaticToken {
	return &StaticToken{value: token, logger: logger}
}

// Token returns the configured token.
func (t *StaticToken) Token() string {
	if t.value != "" && t.logger != nil {
		if exp, ok := jwtExpiry(t.value); ok && time.Now().After(exp) {
			t.warnOnce.Do(func() {
				t.logger.Warn("auth token is expired, requests will likely be rejected",
					"expired_at", exp,
				)
			})
		}
	}
	return t.value
}

// Inject sets the Authorization header on req when a token is present.
func Inject(req *http.Request, source TokenSource) {
	if source == nil {
		return
	}
	if token := source.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// jwtExpiry decodes the exp claim from a JWT-shaped token without
// verifying the signature.
func jwtExpiry(raw string) (time.Time, bool) {
	if strings.Count(raw, ".") != 2 {
		return time.Time{}, false
	}
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
