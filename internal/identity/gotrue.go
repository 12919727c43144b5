package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ErlanBelekov/account-service/internal/domain"
	"github.com/ErlanBelekov/account-service/internal/metrics"
)

// GoTrueConfig configures a client for a GoTrue-compatible auth API
// (e.g. Supabase Auth).
type GoTrueConfig struct {
	URL        string
	ServiceKey string
	Timeout    time.Duration

	// HTTPClient overrides the default client, for tests.
	HTTPClient *http.Client
}

type GoTrue struct {
	baseURL string
	key     string
	client  *http.Client
}

func NewGoTrue(cfg GoTrueConfig) *GoTrue {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &GoTrue{
		baseURL: strings.TrimRight(cfg.URL, "/") + "/auth/v1",
		key:     cfg.ServiceKey,
		client:  client,
	}
}

type gotrueUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Aud   string `json:"aud"`
}

type gotrueSession struct {
	AccessToken string      `json:"access_token"`
	User        *gotrueUser `json:"user"`
}

// Signup answers with a session when autoconfirm is on and with the bare
// user object otherwise.
type gotrueSignup struct {
	gotrueUser
	gotrueSession
}

type gotrueError struct {
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	ErrorDescription string `json:"error_description"`
	Error            string `json:"error"`
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (g *GoTrue) SignInWithPassword(ctx context.Context, email, password string) (*domain.ExternalAccount, error) {
	var out gotrueSession
	if err := g.do(ctx, "sign_in", http.MethodPost, "/token?grant_type=password", "", credentials{email, password}, &out); err != nil {
		return nil, err
	}
	if out.User == nil || out.User.ID == "" {
		return nil, errors.New("sign in: provider response has no user")
	}
	return toAccount(out.User, out.AccessToken), nil
}

func (g *GoTrue) SignUp(ctx context.Context, email, password string) (*domain.ExternalAccount, error) {
	var out gotrueSignup
	if err := g.do(ctx, "sign_up", http.MethodPost, "/signup", "", credentials{email, password}, &out); err != nil {
		return nil, err
	}
	if out.gotrueSession.User != nil && out.gotrueSession.User.ID != "" {
		return toAccount(out.gotrueSession.User, out.AccessToken), nil
	}
	if out.gotrueUser.ID == "" {
		return nil, errors.New("sign up: provider response has no user")
	}
	return toAccount(&out.gotrueUser, ""), nil
}

// SignOut revokes the provider session behind accessToken. Without a token
// there is no provider session to end.
func (g *GoTrue) SignOut(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return nil
	}
	return g.do(ctx, "sign_out", http.MethodPost, "/logout", accessToken, nil, nil)
}

func (g *GoTrue) VerifyToken(ctx context.Context, accessToken string) (*domain.ExternalAccount, error) {
	var out gotrueUser
	if err := g.do(ctx, "verify", http.MethodGet, "/user", accessToken, nil, &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, domain.ErrTokenInvalid
	}
	return toAccount(&out, accessToken), nil
}

func (g *GoTrue) do(ctx context.Context, op, method, path, bearer string, body, out any) (err error) {
	start := time.Now()
	defer func() {
		outcome := "ok"
		var provErr *domain.ProviderError
		switch {
		case errors.As(err, &provErr):
			outcome = "rejected"
		case err != nil:
			outcome = "error"
		}
		metrics.IdentityProviderDuration.WithLabelValues(op, outcome).Observe(time.Since(start).Seconds())
	}()

	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", op, err)
	}
	if bearer == "" {
		bearer = g.key
	}
	req.Header.Set("apikey", g.key)
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: request failed: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return &domain.ProviderError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp),
		}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

func errorMessage(resp *http.Response) string {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var e gotrueError
	if err := json.Unmarshal(raw, &e); err == nil {
		for _, msg := range []string{e.Msg, e.ErrorDescription, e.Message, e.Error} {
			if msg != "" {
				return msg
			}
		}
	}
	return http.StatusText(resp.StatusCode)
}

func toAccount(u *gotrueUser, accessToken string) *domain.ExternalAccount {
	return &domain.ExternalAccount{
		ID:          u.ID,
		Email:       u.Email,
		Audience:    u.Aud,
		AccessToken: accessToken,
	}
}
