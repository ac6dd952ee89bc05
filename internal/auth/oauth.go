package auth

import (
	"golang.org/x/oauth2"
)

const (
	// Strava OAuth endpoints
	AuthURL  = "https://www.strava.com/oauth/authorize"
	TokenURL = "https://www.strava.com/oauth/token"
)

// Scopes required for our app (Strava uses comma-separated scopes)
var Scopes = []string{
	"read,activity:read_all",
}

// Config holds the OAuth client credentials
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string // e.g., "http://localhost:5000/callback"

	// AuthURL and TokenURL override the Strava endpoints. Tests point them
	// at a local server.
	AuthURL  string
	TokenURL string
}

// NewOAuthConfig creates an oauth2.Config from our Config
func NewOAuthConfig(cfg Config) *oauth2.Config {
	authURL, tokenURL := AuthURL, TokenURL
	if cfg.AuthURL != "" {
		authURL = cfg.AuthURL
	}
	if cfg.TokenURL != "" {
		tokenURL = cfg.TokenURL
	}

	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:  authURL,
			TokenURL: tokenURL,
			// Strava expects client_id and client_secret in the form body
			AuthStyle: oauth2.AuthStyleInParams,
		},
		RedirectURL: cfg.RedirectURL,
		Scopes:      Scopes,
	}
}

// AuthCodeURL builds the Strava authorization redirect for state
func AuthCodeURL(cfg *oauth2.Config, state string) string {
	return cfg.AuthCodeURL(state, oauth2.SetAuthURLParam("approval_prompt", "auto"))
}

// ExtractAthleteID extracts the athlete ID from the token extras
// Strava includes athlete info in the token response
func ExtractAthleteID(token *oauth2.Token) int64 {
	if athlete, ok := token.Extra("athlete").(map[string]interface{}); ok {
		if id, ok := athlete["id"].(float64); ok {
			return int64(id)
		}
	}
	return 0
}

// extractExpiresAt prefers Strava's absolute expires_at over the expiry
// oauth2 derives from expires_in
func extractExpiresAt(token *oauth2.Token) int64 {
	switch v := token.Extra("expires_at").(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	}
	if token.Expiry.IsZero() {
		return 0
	}
	return token.Expiry.Unix()
}

func extractExpiresIn(token *oauth2.Token) int64 {
	if v, ok := token.Extra("expires_in").(float64); ok {
		return int64(v)
	}
	return token.ExpiresIn
}
