package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"cadence/internal/logger"
	"cadence/internal/store"
)

// ErrNotAuthenticated is returned when no token pair has been stored yet
var ErrNotAuthenticated = errors.New("not connected to Strava")

// TokenStore hands out access tokens from the persisted token pair,
// refreshing and persisting it when it has expired
type TokenStore struct {
	config *oauth2.Config
	store  *store.Store
	log    *logger.Logger
	now    func() time.Time
	mu     sync.Mutex
}

// NewTokenStore creates a TokenStore over the given store
func NewTokenStore(cfg *oauth2.Config, s *store.Store, log *logger.Logger) *TokenStore {
	if log == nil {
		log = logger.Nop()
	}
	return &TokenStore{
		config: cfg,
		store:  s,
		log:    log,
		now:    time.Now,
	}
}

// AccessToken returns a usable access token. When the stored expires_at is
// in the past the refresh token is exchanged once and the full response is
// persisted before the new access token is returned.
func (ts *TokenStore) AccessToken(ctx context.Context) (string, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	tokens, err := ts.store.GetTokens(ctx)
	if errors.Is(err, store.ErrNoAuth) {
		return "", ErrNotAuthenticated
	}
	if err != nil {
		return "", fmt.Errorf("loading tokens: %w", err)
	}

	if tokens.ExpiresAt >= ts.now().Unix() {
		return tokens.AccessToken, nil
	}

	refreshed, err := ts.refresh(ctx, tokens)
	if err != nil {
		return "", err
	}
	return refreshed.AccessToken, nil
}

// refresh exchanges the stored refresh token. The token handed to oauth2
// carries no access token so its TokenSource always goes to the endpoint.
func (ts *TokenStore) refresh(ctx context.Context, current *store.Tokens) (*store.Tokens, error) {
	src := ts.config.TokenSource(ctx, &oauth2.Token{RefreshToken: current.RefreshToken})
	newToken, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("refreshing token: %w", err)
	}

	next := tokensFromOAuth(newToken)
	if next.AthleteID == 0 {
		next.AthleteID = current.AthleteID
	}
	if err := ts.store.SaveTokens(ctx, next); err != nil {
		return nil, fmt.Errorf("saving refreshed token: %w", err)
	}

	ts.log.Info("strava token refreshed", "expires_at", next.ExpiresAt)
	return next, nil
}

// Token implements oauth2.TokenSource for the API client's transport.
// Every call goes through AccessToken.
func (ts *TokenStore) Token() (*oauth2.Token, error) {
	access, err := ts.AccessToken(context.Background())
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{AccessToken: access, TokenType: "Bearer"}, nil
}

// Exchange trades an authorization code for a token pair and persists it
func (ts *TokenStore) Exchange(ctx context.Context, code string) (*store.Tokens, error) {
	token, err := ts.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchanging code for token: %w", err)
	}

	tokens := tokensFromOAuth(token)
	if err := ts.store.SaveTokens(ctx, tokens); err != nil {
		return nil, fmt.Errorf("saving token: %w", err)
	}

	ts.log.Info("strava connected", "athlete_id", tokens.AthleteID)
	return tokens, nil
}

// Connected reports whether a token pair is stored
func (ts *TokenStore) Connected(ctx context.Context) (bool, error) {
	_, err := ts.store.GetTokens(ctx)
	if errors.Is(err, store.ErrNoAuth) {
		return false, nil
	}
	return err == nil, err
}

func tokensFromOAuth(token *oauth2.Token) *store.Tokens {
	return &store.Tokens{
		TokenType:    token.TokenType,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    extractExpiresAt(token),
		ExpiresIn:    extractExpiresIn(token),
		AthleteID:    ExtractAthleteID(token),
	}
}
