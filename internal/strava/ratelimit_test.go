package strava

import (
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestRateLimiterReserve(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 3, 0, 0, time.UTC)
	r := newRateLimiter(func() time.Time { return now })

	h := http.Header{}
	h.Set("X-RateLimit-Limit", "100,1000")
	h.Set("X-RateLimit-Usage", "99,500")
	r.UpdateFromHeaders(h)

	if err := r.Reserve(); err != nil {
		t.Fatalf("Reserve() error = %v", err)
	}
	if err := r.Reserve(); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("Reserve() error = %v, want ErrRateLimited", err)
	}

	// The short window resets on the next quarter hour
	now = time.Date(2024, 5, 1, 10, 15, 1, 0, time.UTC)
	if err := r.Reserve(); err != nil {
		t.Errorf("Reserve() after reset error = %v", err)
	}
	short, daily := r.Status()
	if short != 99 || daily != 498 {
		t.Errorf("Status() = %d, %d, want 99, 498", short, daily)
	}
}

func TestParsePair(t *testing.T) {
	tests := []struct {
		in     string
		a, b   int
		wantOK bool
	}{
		{"100,1000", 100, 1000, true},
		{" 34, 512", 34, 512, true},
		{"100", 0, 0, false},
		{"", 0, 0, false},
		{"x,1", 0, 0, false},
	}
	for _, tt := range tests {
		a, b, ok := parsePair(tt.in)
		if ok != tt.wantOK || a != tt.a || b != tt.b {
			t.Errorf("parsePair(%q) = %d, %d, %v", tt.in, a, b, ok)
		}
	}
}
