package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestInject(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "http://localhost/", nil)
	Inject(req, NewStaticToken("abc123", nil))
	if got := req.Header.Get("Authorization"); got != "Bearer abc123" {
		t.Errorf("Authorization = %q", got)
	}

	// Empty tokens and nil sources leave the request unauthenticated.
	req, _ = http.NewRequest(http.MethodGet, "http://localhost/", nil)
	Inject(req, NewStaticToken("", nil))
	Inject(req, nil)
	if got := req.Header.Get("Authorization"); got != "" {
		t.Errorf("Authorization = %q, want unset", got)
	}
}

// countingHandler counts warn-level records and discards everything.
type countingHandler struct {
	warns *int
}

func (h countingHandler) Enabled(_ context.Context, _ slog.Level) bool { return true }
func (h countingHandler) Handle(_ context.Context, r slog.Record) error {
	if r.Level == slog.LevelWarn {
		*h.warns++
	}
	return nil
}
func (h countingHandler) WithAttrs(_ []slog.Attr) slog.Handler { return h }
func (h countingHandler) WithGroup(_ string) slog.Handler      { return h }

func TestExpiredTokenWarnsOnce(t *testing.T) {
	expired := signedToken(t, time.Now().Add(-time.Hour))

	var warns int
	logger := slog.New(countingHandler{warns: &warns})
	source := NewStaticToken(expired, logger)

	for i := 0; i < 3; i++ {
		if got := source.Token(); got != expired {
			t.Fatalf("Token() = %q", got)
		}
	}
	if warns != 1 {
		t.Errorf("expiry warnings = %d, want exactly 1", warns)
	}
}

func TestLiveTokenDoesNotWarn(t *testing.T) {
	live := signedToken(t, time.Now().Add(time.Hour))

	var warns int
	source := NewStaticToken(live, slog.New(countingHandler{warns: &warns}))
	source.Token()
	if warns != 0 {
		t.Errorf("live token warned %d times", warns)
	}
}

func TestOpaqueTokenPassesThrough(t *testing.T) {
	var warns int
	source := NewStaticToken("not-a-jwt", slog.New(countingHandler{warns: &warns}))
	if got := source.Token(); got != "not-a-jwt" {
		t.Errorf("Token() = %q", got)
	}
	if warns != 0 {
		t.Errorf("opaque token warned %d times", warns)
	}
}

func signedToken(t *testing.T, expiry time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(expiry),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Count(signed, ".") != 2 {
		t.Fatalf("malformed test token %q", signed)
	}
	return signed
}
