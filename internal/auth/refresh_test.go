package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"cadence/internal/logger"
	"cadence/internal/store"
)

// newTokenServer fakes the Strava token endpoint and counts requests
func newTokenServer(t *testing.T, calls *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if r.Form.Get("client_id") != "123" || r.Form.Get("client_secret") != "shh" {
			http.Error(w, "bad client", http.StatusUnauthorized)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		switch r.Form.Get("grant_type") {
		case "refresh_token":
			if r.Form.Get("refresh_token") != "old-refresh" {
				http.Error(w, "bad refresh token", http.StatusBadRequest)
				return
			}
			w.Write([]byte(`{"token_type":"Bearer","access_token":"new-access","refresh_token":"new-refresh","expires_at":4102444800,"expires_in":21600}`))
		case "authorization_code":
			if r.Form.Get("code") != "good-code" {
				http.Error(w, "bad code", http.StatusBadRequest)
				return
			}
			w.Write([]byte(`{"token_type":"Bearer","access_token":"first-access","refresh_token":"first-refresh","expires_at":4102444800,"expires_in":21600,"athlete":{"id":42}}`))
		default:
			http.Error(w, "unsupported grant", http.StatusBadRequest)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestTokenStore(t *testing.T, tokenURL string) (*TokenStore, *store.Store) {
	t.Helper()
	s := store.NewMemory()
	cfg := NewOAuthConfig(Config{
		ClientID:     "123",
		ClientSecret: "shh",
		RedirectURL:  "http://localhost:5000/callback",
		TokenURL:     tokenURL,
	})
	return NewTokenStore(cfg, s, logger.Nop()), s
}

func TestAccessTokenNotAuthenticated(t *testing.T) {
	var calls int32
	srv := newTokenServer(t, &calls)
	ts, _ := newTestTokenStore(t, srv.URL)

	if _, err := ts.AccessToken(context.Background()); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("AccessToken() error = %v, want ErrNotAuthenticated", err)
	}
	if calls != 0 {
		t.Errorf("token endpoint called %d times, want 0", calls)
	}
}

func TestAccessTokenRefresh(t *testing.T) {
	now := time.Unix(1700000000, 0)

	tests := []struct {
		name       string
		expiresAt  int64
		wantCalls  int32
		wantAccess string
	}{
		{"expired", now.Unix() - 1, 1, "new-access"},
		{"valid", now.Unix() + 3600, 0, "old-access"},
		{"expires exactly now", now.Unix(), 0, "old-access"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			srv := newTokenServer(t, &calls)
			ts, s := newTestTokenStore(t, srv.URL)
			ts.now = func() time.Time { return now }
			ctx := context.Background()

			err := s.SaveTokens(ctx, &store.Tokens{
				AccessToken:  "old-access",
				RefreshToken: "old-refresh",
				ExpiresAt:    tt.expiresAt,
				AthleteID:    42,
			})
			if err != nil {
				t.Fatal(err)
			}

			got, err := ts.AccessToken(ctx)
			if err != nil {
				t.Fatalf("AccessToken() error = %v", err)
			}
			if got != tt.wantAccess {
				t.Errorf("AccessToken() = %q, want %q", got, tt.wantAccess)
			}

			// A second read must not refresh again
			if _, err := ts.AccessToken(ctx); err != nil {
				t.Fatalf("second AccessToken() error = %v", err)
			}
			if calls != tt.wantCalls {
				t.Errorf("token endpoint called %d times, want %d", calls, tt.wantCalls)
			}

			if tt.wantCalls == 0 {
				return
			}
			stored, err := s.GetTokens(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if stored.AccessToken != "new-access" || stored.RefreshToken != "new-refresh" {
				t.Errorf("stored tokens = %+v, want rotated pair", stored)
			}
			if stored.ExpiresAt != 4102444800 {
				t.Errorf("stored ExpiresAt = %d, want 4102444800", stored.ExpiresAt)
			}
			if stored.AthleteID != 42 {
				t.Errorf("stored AthleteID = %d, want 42", stored.AthleteID)
			}
		})
	}
}

func TestAccessTokenRefreshFailure(t *testing.T) {
	var calls int32
	srv := newTokenServer(t, &calls)
	ts, s := newTestTokenStore(t, srv.URL)
	ctx := context.Background()

	if err := s.SaveTokens(ctx, &store.Tokens{AccessToken: "a", RefreshToken: "revoked", ExpiresAt: 1}); err != nil {
		t.Fatal(err)
	}

	if _, err := ts.AccessToken(ctx); err == nil {
		t.Fatal("AccessToken() error = nil, want refresh failure")
	}
	stored, _ := s.GetTokens(ctx)
	if stored.AccessToken != "a" {
		t.Errorf("tokens overwritten after failed refresh: %+v", stored)
	}
}

func TestExchange(t *testing.T) {
	var calls int32
	srv := newTokenServer(t, &calls)
	ts, s := newTestTokenStore(t, srv.URL)
	ctx := context.Background()

	tokens, err := ts.Exchange(ctx, "good-code")
	if err != nil {
		t.Fatalf("Exchange() error = %v", err)
	}
	if tokens.AthleteID != 42 || tokens.AccessToken != "first-access" {
		t.Errorf("Exchange() = %+v", tokens)
	}

	connected, err := ts.Connected(ctx)
	if err != nil || !connected {
		t.Errorf("Connected() = %v, %v, want true", connected, err)
	}
	stored, err := s.GetTokens(ctx)
	if err != nil || stored.RefreshToken != "first-refresh" {
		t.Errorf("stored = %+v, %v", stored, err)
	}

	if _, err := ts.Exchange(ctx, "bad-code"); err == nil {
		t.Error("Exchange(bad-code) error = nil")
	}
}

func TestAuthCodeURL(t *testing.T) {
	cfg := NewOAuthConfig(Config{ClientID: "123", ClientSecret: "shh", RedirectURL: "http://localhost:5000/callback"})
	raw := AuthCodeURL(cfg, "xyz")

	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	if !strings.HasPrefix(raw, AuthURL) {
		t.Errorf("URL %q does not start with %q", raw, AuthURL)
	}

	q := u.Query()
	want := map[string]string{
		"client_id":       "123",
		"redirect_uri":    "http://localhost:5000/callback",
		"response_type":   "code",
		"scope":           "read,activity:read_all",
		"approval_prompt": "auto",
		"state":           "xyz",
	}
	for k, v := range want {
		if got := q.Get(k); got != v {
			t.Errorf("%s = %q, want %q", k, got, v)
		}
	}
}

func TestState(t *testing.T) {
	a, err := NewState()
	if err != nil {
		t.Fatal(err)
	}
	b, _ := NewState()
	if len(a) != 32 || a == b {
		t.Errorf("NewState() = %q, %q", a, b)
	}
	if !CheckState(a, a) {
		t.Error("CheckState(a, a) = false")
	}
	if CheckState(a, b) || CheckState("", "") {
		t.Error("CheckState accepted a mismatch")
	}
}
