package strava

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"golang.org/x/oauth2"
)

// newFakeStrava serves total activities with ids total..1 (most recent first)
func newFakeStrava(t *testing.T, total int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/athlete/activities", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			http.Error(w, `{"message":"Authorization Error"}`, http.StatusUnauthorized)
			return
		}
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

		activities := []map[string]any{}
		start := (page - 1) * perPage
		for i := start; i < start+perPage && i < total; i++ {
			activities = append(activities, map[string]any{
				"id":          total - i,
				"name":        fmt.Sprintf("Activity %d", total-i),
				"type":        "Run",
				"distance":    1000.0,
				"moving_time": 120,
			})
		}
		w.Header().Set("X-RateLimit-Limit", "100,1000")
		w.Header().Set("X-RateLimit-Usage", "10,200")
		json.NewEncoder(w).Encode(activities)
	})

	mux.HandleFunc("/activities/7", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"id": 7, "name": "Lunch Ride", "type": "Ride", "distance": 25000, "moving_time": 3600,
			"average_heartrate": 141.5, "average_watts": 180,
			"map": {"polyline": "_p~iF~ps|U_ulLnnqC_mqNvxq` + "`" + `@", "summary_polyline": "abc"},
			"photos": {"count": 2, "primary": {"unique_id": "p1", "urls": {"100": "small.jpg", "600": "big.jpg"}}}
		}`))
	})

	mux.HandleFunc("/activities/7/photos", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("size") != "1000" {
			http.Error(w, "bad size", http.StatusBadRequest)
			return
		}
		w.Write([]byte(`[{"unique_id":"p1","urls":{"1000":"p1-1000.jpg"}},{"unique_id":"p2","urls":{"1000":"p2-1000.jpg"}}]`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(srv *httptest.Server) *Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test-token"})
	return NewClient(ts, WithBaseURL(srv.URL))
}

func TestGetActivitiesPagination(t *testing.T) {
	srv := newFakeStrava(t, 25)
	c := newTestClient(srv)
	ctx := context.Background()

	page1, err := c.GetActivities(ctx, 1, 20)
	if err != nil {
		t.Fatalf("GetActivities(1) error = %v", err)
	}
	page2, err := c.GetActivities(ctx, 2, 20)
	if err != nil {
		t.Fatalf("GetActivities(2) error = %v", err)
	}
	if len(page1) != 20 || len(page2) != 5 {
		t.Fatalf("page sizes = %d, %d, want 20, 5", len(page1), len(page2))
	}

	seen := make(map[int64]bool)
	for _, a := range page1 {
		seen[a.ID] = true
	}
	for _, a := range page2 {
		if seen[a.ID] {
			t.Errorf("activity %d appears on both pages", a.ID)
		}
	}

	page3, err := c.GetActivities(ctx, 3, 20)
	if err != nil {
		t.Fatalf("GetActivities(3) error = %v", err)
	}
	if page3 == nil || len(page3) != 0 {
		t.Errorf("page past the end = %v, want empty slice", page3)
	}

	short, daily := c.RateLimitStatus()
	if short != 90 || daily != 800 {
		t.Errorf("RateLimitStatus() = %d, %d, want 90, 800", short, daily)
	}
}

func TestGetActivitiesOptionalMetrics(t *testing.T) {
	srv := newFakeStrava(t, 1)
	c := newTestClient(srv)

	activities, err := c.GetActivities(context.Background(), 1, 20)
	if err != nil {
		t.Fatal(err)
	}
	if activities[0].AverageHeartrate != nil || activities[0].AverageWatts != nil {
		t.Errorf("missing metrics decoded as %v, %v", activities[0].AverageHeartrate, activities[0].AverageWatts)
	}
}

func TestGetActivity(t *testing.T) {
	srv := newFakeStrava(t, 0)
	c := newTestClient(srv)

	a, err := c.GetActivity(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetActivity() error = %v", err)
	}
	if a.Name != "Lunch Ride" || a.PhotoCount() != 2 {
		t.Errorf("GetActivity() = %+v", a)
	}
	if a.AverageHeartrate == nil || *a.AverageHeartrate != 141.5 {
		t.Errorf("AverageHeartrate = %v", a.AverageHeartrate)
	}
	if got := a.PrimaryPhotoURL(); got != "big.jpg" {
		t.Errorf("PrimaryPhotoURL() = %q, want big.jpg", got)
	}
	if got := a.Map.RoutePolyline(); got == "abc" || got == "" {
		t.Errorf("RoutePolyline() = %q, want detailed polyline", got)
	}
}

func TestGetActivityPhotos(t *testing.T) {
	srv := newFakeStrava(t, 0)
	c := newTestClient(srv)

	photos, err := c.GetActivityPhotos(context.Background(), 7, 1000)
	if err != nil {
		t.Fatalf("GetActivityPhotos() error = %v", err)
	}
	if len(photos) != 2 || photos[1].URLForSize("1000") != "p2-1000.jpg" {
		t.Errorf("GetActivityPhotos() = %+v", photos)
	}
}

func TestAPIError(t *testing.T) {
	srv := newFakeStrava(t, 0)
	c := newTestClient(srv)

	_, err := c.GetActivity(context.Background(), 99)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", apiErr.StatusCode)
	}
}

func TestTokenSourceError(t *testing.T) {
	srv := newFakeStrava(t, 0)
	want := errors.New("no token")
	c := NewClient(failingSource{want}, WithBaseURL(srv.URL))

	_, err := c.GetActivities(context.Background(), 1, 20)
	if !errors.Is(err, want) {
		t.Errorf("error = %v, want wrapped %v", err, want)
	}
}

type failingSource struct{ err error }

func (f failingSource) Token() (*oauth2.Token, error) { return nil, f.err }
