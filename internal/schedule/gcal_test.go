package schedule

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"cadence/internal/config"
	"cadence/internal/logger"
	"cadence/internal/store"
)

// fakeCalendar serves the three Events endpoints used by Push
type fakeCalendar struct {
	mu       sync.Mutex
	existing map[string]string // iCalUID -> event id
	inserted []calendar.Event
	updated  map[string]calendar.Event
}

func (f *fakeCalendar) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	const prefix = "/calendars/primary/events"
	if !strings.HasPrefix(r.URL.Path, prefix) {
		http.NotFound(w, r)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, prefix)

	switch {
	case r.Method == http.MethodGet && rest == "":
		uid := r.URL.Query().Get("iCalUID")
		items := []map[string]string{}
		if id, ok := f.existing[uid]; ok {
			items = append(items, map[string]string{"id": id, "iCalUID": uid})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"items": items})
	case r.Method == http.MethodPost && rest == "":
		var ev calendar.Event
		_ = json.NewDecoder(r.Body).Decode(&ev)
		f.inserted = append(f.inserted, ev)
		ev.Id = "new"
		_ = json.NewEncoder(w).Encode(ev)
	case r.Method == http.MethodPut:
		var ev calendar.Event
		_ = json.NewDecoder(r.Body).Decode(&ev)
		f.updated[strings.TrimPrefix(rest, "/")] = ev
		_ = json.NewEncoder(w).Encode(ev)
	default:
		http.Error(w, "unexpected", http.StatusBadRequest)
	}
}

func newTestCalendar(t *testing.T, fake *fakeCalendar, loc *time.Location) *GoogleCalendar {
	t.Helper()
	ts := httptest.NewServer(fake)
	t.Cleanup(ts.Close)

	srv, err := calendar.NewService(context.Background(),
		option.WithHTTPClient(ts.Client()),
		option.WithEndpoint(ts.URL+"/"),
	)
	if err != nil {
		t.Fatalf("calendar.NewService() error = %v", err)
	}
	return NewGoogleCalendar(srv, "primary", loc, logger.Nop())
}

func TestPushUpserts(t *testing.T) {
	fake := &fakeCalendar{
		existing: map[string]string{"2024-03-01@cadence": "evt1"},
		updated:  map[string]calendar.Event{},
	}
	loc, err := time.LoadLocation("Europe/London")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	g := newTestCalendar(t, fake, loc)

	plans := store.Plans{
		"2024-03-01": {Sport: "Run", DurationMin: 45, Intensity: "easy", Rationale: "Recovery"},
		"2024-07-02": {Sport: "Bike", DurationMin: 90, Intensity: "endurance", Rationale: "Long ride"},
	}

	res, err := g.Push(context.Background(), plans)
	if err != nil {
		t.Fatalf("Push() error = %v", err)
	}
	if res.Created != 1 || res.Updated != 1 || res.Failed != 0 {
		t.Errorf("Push() = %+v", res)
	}

	upd, ok := fake.updated["evt1"]
	if !ok {
		t.Fatal("existing event was not updated")
	}
	if upd.Summary != "Run — easy" || upd.ICalUID != "2024-03-01@cadence" {
		t.Errorf("updated event = %+v", upd)
	}
	if upd.Start.DateTime != "2024-03-01T07:00:00Z" || upd.End.DateTime != "2024-03-01T07:45:00Z" {
		t.Errorf("winter times = %s - %s", upd.Start.DateTime, upd.End.DateTime)
	}

	if len(fake.inserted) != 1 {
		t.Fatalf("inserted %d events, want 1", len(fake.inserted))
	}
	ins := fake.inserted[0]
	if ins.Start.DateTime != "2024-07-02T07:00:00+01:00" || ins.Start.TimeZone != "Europe/London" {
		t.Errorf("summer start = %s (%s)", ins.Start.DateTime, ins.Start.TimeZone)
	}
	if ins.Description != "Long ride" {
		t.Errorf("Description = %q", ins.Description)
	}
}

func TestPushCountsFailures(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":500,"message":"boom"}}`, http.StatusInternalServerError)
	}))
	defer ts.Close()

	srv, err := calendar.NewService(context.Background(),
		option.WithHTTPClient(ts.Client()),
		option.WithEndpoint(ts.URL+"/"),
	)
	if err != nil {
		t.Fatal(err)
	}
	g := NewGoogleCalendar(srv, "primary", time.UTC, logger.Nop())

	res, err := g.Push(context.Background(), store.Plans{
		"2024-03-01": {Sport: "Run", DurationMin: 45, Intensity: "easy", Rationale: "x"},
	})
	if err == nil {
		t.Error("Push() error = nil")
	}
	if res.Failed != 1 {
		t.Errorf("Failed = %d, want 1", res.Failed)
	}
}

func TestNewGoogleCalendarFromConfigDisabled(t *testing.T) {
	_, err := NewGoogleCalendarFromConfig(context.Background(), config.CalendarConfig{}, logger.Nop())
	if err != ErrCalendarDisabled {
		t.Errorf("error = %v, want ErrCalendarDisabled", err)
	}
}

func TestNewGoogleCalendarFromConfigMissingKey(t *testing.T) {
	t.Setenv(serviceAccountEnv, "")
	_, err := NewGoogleCalendarFromConfig(context.Background(), config.CalendarConfig{
		GoogleCalendarID:   "primary",
		ServiceAccountFile: t.TempDir() + "/missing.json",
	}, logger.Nop())
	if err == nil {
		t.Error("expected an error for a missing key file")
	}
}

func TestEventStartsAtSevenAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	g := NewGoogleCalendar(nil, "primary", loc, logger.Nop())
	plan := store.Plan{Sport: "Run", DurationMin: 45, Intensity: "easy", Rationale: "x"}

	tests := []struct {
		name      string
		date      string
		wantStart string
		wantEnd   string
	}{
		{"spring forward", "2026-03-08", "2026-03-08T07:00:00-04:00", "2026-03-08T07:45:00-04:00"},
		{"fall back", "2026-11-01", "2026-11-01T07:00:00-05:00", "2026-11-01T07:45:00-05:00"},
		{"summer", "2026-06-01", "2026-06-01T07:00:00-04:00", "2026-06-01T07:45:00-04:00"},
		{"winter", "2026-01-15", "2026-01-15T07:00:00-05:00", "2026-01-15T07:45:00-05:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := g.event(tt.date, plan)
			if err != nil {
				t.Fatalf("event() error = %v", err)
			}
			if ev.Start.DateTime != tt.wantStart || ev.End.DateTime != tt.wantEnd {
				t.Errorf("event times = %s - %s, want %s - %s",
					ev.Start.DateTime, ev.End.DateTime, tt.wantStart, tt.wantEnd)
			}
			if ev.Start.TimeZone != "America/New_York" {
				t.Errorf("TimeZone = %q", ev.Start.TimeZone)
			}
		})
	}
}
