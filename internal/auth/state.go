package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"time"
)

const (
	// StateCookie carries the OAuth state between /connect and /callback
	StateCookie = "cadence_oauth_state"
	// StateTTL is how long the user has to complete the Strava consent page
	StateTTL = 5 * time.Minute
)

// NewState creates a random state string for CSRF protection
func NewState() (string, error) {
	return generateState()
}

// CheckState reports whether the callback state matches the cookie value
func CheckState(cookie, got string) bool {
	if cookie == "" || got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(cookie), []byte(got)) == 1
}

// generateState creates a random state string for CSRF protection
func generateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
