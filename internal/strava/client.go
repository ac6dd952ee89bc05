package strava

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/oauth2"
)

const BaseURL = "https://www.strava.com/api/v3"

// APIError is a non-200 response from the Strava API
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("strava API error %d: %s", e.StatusCode, e.Body)
}

// Client is a Strava API client
type Client struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *RateLimiter
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL points the client at another API root (tests use httptest)
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// NewClient creates a new Strava API client. Every request asks
// tokenSource for the bearer token; there is no ReuseTokenSource cache in
// between, so refresh decisions stay with the token store.
func NewClient(tokenSource oauth2.TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: BaseURL,
		httpClient: &http.Client{
			Transport: &oauth2.Transport{Source: tokenSource},
		},
		rateLimiter: NewRateLimiter(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetActivities fetches exactly one page of the athlete's activities, most
// recent first. A page past the end yields an empty slice.
func (c *Client) GetActivities(ctx context.Context, page, perPage int) ([]Activity, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(perPage))

	activities := []Activity{}
	if err := c.getJSON(ctx, "/athlete/activities", params, &activities); err != nil {
		return nil, fmt.Errorf("listing activities: %w", err)
	}
	return activities, nil
}

// GetActivity fetches the detailed payload for one activity
func (c *Client) GetActivity(ctx context.Context, activityID int64) (*DetailedActivity, error) {
	var activity DetailedActivity
	path := fmt.Sprintf("/activities/%d", activityID)
	if err := c.getJSON(ctx, path, nil, &activity); err != nil {
		return nil, fmt.Errorf("fetching activity %d: %w", activityID, err)
	}
	return &activity, nil
}

// GetActivityPhotos lists an activity's photos with URLs of the given size
func (c *Client) GetActivityPhotos(ctx context.Context, activityID int64, size int) ([]Photo, error) {
	params := url.Values{}
	params.Set("size", strconv.Itoa(size))
	params.Set("photo_sources", "true")

	photos := []Photo{}
	path := fmt.Sprintf("/activities/%d/photos", activityID)
	if err := c.getJSON(ctx, path, params, &photos); err != nil {
		return nil, fmt.Errorf("fetching photos for %d: %w", activityID, err)
	}
	return photos, nil
}

// RateLimitStatus returns the current rate limit status
func (c *Client) RateLimitStatus() (shortRemaining, dailyRemaining int) {
	return c.rateLimiter.Status()
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	resp, err := c.get(ctx, path, params)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) (*http.Response, error) {
	if err := c.rateLimiter.Reserve(); err != nil {
		return nil, err
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	// Update rate limiter from response headers
	c.rateLimiter.UpdateFromHeaders(resp.Header)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return resp, nil
}
