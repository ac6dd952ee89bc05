package schedule

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"cadence/internal/config"
	"cadence/internal/logger"
	"cadence/internal/store"
)

// ErrCalendarDisabled is returned when no Google calendar is configured
var ErrCalendarDisabled = errors.New("google calendar push is not configured")

// serviceAccountEnv may carry the service account key instead of a file
const serviceAccountEnv = "GOOGLE_SERVICE_ACCOUNT"

// PushResult counts what a push changed
type PushResult struct {
	Created int
	Updated int
	Failed  int
}

// GoogleCalendar upserts plans into one Google calendar, keyed by iCalUID
type GoogleCalendar struct {
	srv        *calendar.Service
	calendarID string
	loc        *time.Location
	log        *logger.Logger
}

// NewGoogleCalendar wraps an existing calendar service
func NewGoogleCalendar(srv *calendar.Service, calendarID string, loc *time.Location, log *logger.Logger) *GoogleCalendar {
	if loc == nil {
		loc = time.Local
	}
	return &GoogleCalendar{srv: srv, calendarID: calendarID, loc: loc, log: log.With("component", "gcal")}
}

// NewGoogleCalendarFromConfig authenticates with a service account key read
// from GOOGLE_SERVICE_ACCOUNT or cfg.ServiceAccountFile. It returns
// ErrCalendarDisabled when cfg has no calendar id.
func NewGoogleCalendarFromConfig(ctx context.Context, cfg config.CalendarConfig, log *logger.Logger) (*GoogleCalendar, error) {
	if cfg.GoogleCalendarID == "" {
		return nil, ErrCalendarDisabled
	}

	key := []byte(os.Getenv(serviceAccountEnv))
	if len(key) == 0 {
		if cfg.ServiceAccountFile == "" {
			return nil, fmt.Errorf("no service account key: set %s or calendar.service_account_file", serviceAccountEnv)
		}
		var err error
		key, err = os.ReadFile(cfg.ServiceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key: %w", err)
		}
	}

	jwtConfig, err := google.JWTConfigFromJSON(key, calendar.CalendarEventsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse service account key: %w", err)
	}

	srv, err := calendar.NewService(ctx, option.WithHTTPClient(jwtConfig.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to create calendar service: %w", err)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid calendar timezone %q: %w", cfg.Timezone, err)
	}
	return NewGoogleCalendar(srv, cfg.GoogleCalendarID, loc, log), nil
}

// Push creates or updates one event per plan. A failure on one plan is
// logged and counted; the error returned is the last one seen.
func (g *GoogleCalendar) Push(ctx context.Context, plans store.Plans) (PushResult, error) {
	var (
		res     PushResult
		lastErr error
	)
	for _, date := range plans.SortedDates() {
		event, err := g.event(date, plans[date])
		if err != nil {
			g.log.Warn("Skipping plan with invalid date", "date", date, "error", err)
			continue
		}

		created, err := g.upsert(ctx, event)
		switch {
		case err != nil:
			res.Failed++
			lastErr = err
			g.log.Error("Failed to push plan", "date", date, "error", err)
		case created:
			res.Created++
			g.log.Info("Created calendar event", "date", date, "summary", event.Summary)
		default:
			res.Updated++
			g.log.Info("Updated calendar event", "date", date, "summary", event.Summary)
		}
	}
	return res, lastErr
}

func (g *GoogleCalendar) upsert(ctx context.Context, event *calendar.Event) (bool, error) {
	existing, err := g.srv.Events.List(g.calendarID).
		Context(ctx).
		ICalUID(event.ICalUID).
		ShowDeleted(false).
		Do()
	if err != nil {
		return false, fmt.Errorf("unable to look up event %s: %w", event.ICalUID, err)
	}

	if len(existing.Items) > 0 {
		id := existing.Items[0].Id
		if _, err := g.srv.Events.Update(g.calendarID, id, event).Context(ctx).Do(); err != nil {
			return false, fmt.Errorf("unable to update event %s: %w", event.ICalUID, err)
		}
		return false, nil
	}

	if _, err := g.srv.Events.Insert(g.calendarID, event).Context(ctx).Do(); err != nil {
		return false, fmt.Errorf("unable to create event %s: %w", event.ICalUID, err)
	}
	return true, nil
}

func (g *GoogleCalendar) event(date string, plan store.Plan) (*calendar.Event, error) {
	day, err := time.ParseInLocation(DateLayout, date, g.loc)
	if err != nil {
		return nil, err
	}
	// wall clock, so DST transition days still start at 07:00
	start := time.Date(day.Year(), day.Month(), day.Day(), startHour, 0, 0, 0, g.loc)
	end := start.Add(time.Duration(plan.DurationMin) * time.Minute)

	ev := &calendar.Event{
		Summary:     Summary(plan),
		Description: plan.Rationale,
		ICalUID:     UID(date),
		Start:       &calendar.EventDateTime{DateTime: start.Format(time.RFC3339)},
		End:         &calendar.EventDateTime{DateTime: end.Format(time.RFC3339)},
	}
	if g.loc != time.Local && g.loc != time.UTC {
		ev.Start.TimeZone = g.loc.String()
		ev.End.TimeZone = g.loc.String()
	}
	return ev, nil
}
