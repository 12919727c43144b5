package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/ErlanBelekov/account-service/internal/authctx"
	"github.com/ErlanBelekov/account-service/internal/domain"
	"github.com/ErlanBelekov/account-service/internal/identity"
	"github.com/ErlanBelekov/account-service/internal/token"
	"github.com/ErlanBelekov/account-service/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"
)

const testKey = "middleware-test-secret-32-chars!!"

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeVerifier struct {
	verify func(ctx context.Context, raw string) (*domain.Identity, error)
}

func (f *fakeVerifier) VerifyToken(ctx context.Context, raw string) (*domain.Identity, error) {
	return f.verify(ctx, raw)
}

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

// newEngine builds a minimal gin engine with the Auth middleware protecting GET /protected.
// The handler writes the caller's ID from both contexts so we can assert it was set.
func newEngine(v identity.Verifier) *gin.Engine {
	r := gin.New()
	r.GET("/protected", middleware.Auth(v, testLogger), func(c *gin.Context) {
		fromGin, _ := c.Get(middleware.IdentityKey)
		c.JSON(http.StatusOK, gin.H{
			"gin": fromGin.(*domain.Identity).ID,
			"ctx": authctx.UserID(c.Request.Context()),
		})
	})
	return r
}

func sessionEngine() *gin.Engine {
	return newEngine(identity.NewSessionVerifier(token.NewIssuer([]byte(testKey))))
}

func get(r http.Handler, authHeader string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	r.ServeHTTP(w, req)
	return w
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response %q: %v", w.Body.String(), err)
	}
	return body["error"]
}

func TestAuth_MissingHeader_Returns401(t *testing.T) {
	called := false
	v := &fakeVerifier{verify: func(_ context.Context, _ string) (*domain.Identity, error) {
		called = true
		return nil, nil
	}}

	w := get(newEngine(v), "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
	if got := errorOf(t, w); got != "No authorization header" {
		t.Errorf("error = %q", got)
	}
	if called {
		t.Error("verifier must not be called without a header")
	}
}

func TestAuth_NonBearerScheme_Returns401(t *testing.T) {
	w := get(sessionEngine(), "Basic dXNlcjpwYXNz")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
	if got := errorOf(t, w); got != "Invalid token" {
		t.Errorf("error = %q", got)
	}
}

func TestAuth_InvalidToken_Returns401(t *testing.T) {
	w := get(sessionEngine(), "Bearer not.a.jwt")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
	if got := errorOf(t, w); got != "Invalid token" {
		t.Errorf("error = %q", got)
	}
}

func TestAuth_ExpiredToken_Returns401(t *testing.T) {
	past := time.Now().Add(-8 * 24 * time.Hour)
	tok, _, err := token.NewIssuer([]byte(testKey), token.WithClock(func() time.Time { return past })).Issue("user-1", "a@b.co")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if w := get(sessionEngine(), "Bearer "+tok); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuth_WrongSigningKey_Returns401(t *testing.T) {
	tok, _, err := token.NewIssuer([]byte("different-key-that-is-32-chars!!")).Issue("user-1", "a@b.co")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if w := get(sessionEngine(), "Bearer "+tok); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuth_NilIdentity_Returns401(t *testing.T) {
	v := &fakeVerifier{verify: func(_ context.Context, _ string) (*domain.Identity, error) {
		return nil, nil
	}}

	w := get(newEngine(v), "Bearer anything")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
	if got := errorOf(t, w); got != "Invalid token" {
		t.Errorf("error = %q", got)
	}
}

func TestAuth_VerifierPanics_Returns401AuthenticationFailed(t *testing.T) {
	v := &fakeVerifier{verify: func(_ context.Context, _ string) (*domain.Identity, error) {
		panic("boom")
	}}

	w := get(newEngine(v), "Bearer anything")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
	if got := errorOf(t, w); got != "Authentication failed" {
		t.Errorf("error = %q", got)
	}
}

func TestAuth_VerifierError_Returns401(t *testing.T) {
	v := &fakeVerifier{verify: func(_ context.Context, _ string) (*domain.Identity, error) {
		return nil, errors.New("provider unreachable")
	}}

	if w := get(newEngine(v), "Bearer anything"); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuth_ValidToken_PassesAndSetsIdentity(t *testing.T) {
	const userID = "user-abc"
	tok, _, err := token.NewIssuer([]byte(testKey)).Issue(userID, "a@b.co")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	w := get(sessionEngine(), "Bearer "+tok)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["gin"] != userID || body["ctx"] != userID {
		t.Errorf("body = %v, want both %q", body, userID)
	}
}
