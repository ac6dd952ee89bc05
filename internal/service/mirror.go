package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"

	"cadence/internal/logger"
	"cadence/internal/store"
	"cadence/internal/strava"
)

// ActivityAPI is the part of the Strava client the mirror reads from
type ActivityAPI interface {
	GetActivities(ctx context.Context, page, perPage int) ([]strava.Activity, error)
	GetActivity(ctx context.Context, activityID int64) (*strava.DetailedActivity, error)
	GetActivityPhotos(ctx context.Context, activityID int64, size int) ([]strava.Photo, error)
}

// Mirror reads activities live from Strava and keeps the local snapshot
// the coach and chat work from
type Mirror struct {
	api     ActivityAPI
	store   *store.Store
	log     *logger.Logger
	mapsKey string
	now     func() time.Time
}

// NewMirror creates an activity mirror. mapsKey enables the static map
// image on share previews.
func NewMirror(api ActivityAPI, s *store.Store, log *logger.Logger, mapsKey string) *Mirror {
	if log == nil {
		log = logger.Nop()
	}
	return &Mirror{api: api, store: s, log: log, mapsKey: mapsKey, now: time.Now}
}

// Summarize converts a raw upstream activity. Distance and duration are
// converted here at read time and kept unrounded.
func Summarize(a strava.Activity) store.ActivitySummary {
	start := ""
	if !a.StartDate.IsZero() {
		start = a.StartDate.UTC().Format(time.RFC3339)
	}
	return store.ActivitySummary{
		ID:            a.ID,
		Name:          a.Name,
		Type:          a.Type,
		StartDate:     start,
		DistanceKm:    a.Distance / MetersPerKm,
		MovingTimeMin: float64(a.MovingTime) / SecondsPerMinute,
		AvgHR:         a.AverageHeartrate,
		AvgCadence:    a.AverageCadence,
		AvgPower:      a.AverageWatts,
		Polyline:      a.Map.SummaryPolyline,
	}
}

// ActivityRow is one line of the paginated activity table
type ActivityRow struct {
	ID          int64
	Name        string
	Sport       string
	Date        string
	DurationMin int
	DistanceKm  float64
	AvgHR       *float64
	AvgCadence  *float64
}

// ActivityPage is one upstream page of the activity table
type ActivityPage struct {
	Page       int
	PerPage    int
	Activities []ActivityRow
}

// HasPrev reports whether a previous page link makes sense
func (p ActivityPage) HasPrev() bool { return p.Page > 1 }

// HasNext guesses from a full page that another one may follow
func (p ActivityPage) HasNext() bool { return len(p.Activities) == p.PerPage }

func (p ActivityPage) PrevPage() int { return p.Page - 1 }
func (p ActivityPage) NextPage() int { return p.Page + 1 }

// ListPage fetches exactly one page of activities. Pages below 1 are
// treated as page 1; a page past the end is empty.
func (m *Mirror) ListPage(ctx context.Context, page int) (*ActivityPage, error) {
	if page < 1 {
		page = 1
	}

	activities, err := m.api.GetActivities(ctx, page, ActivitiesPerPage)
	if err != nil {
		return nil, err
	}

	rows := make([]ActivityRow, 0, len(activities))
	for _, a := range activities {
		rows = append(rows, ActivityRow{
			ID:          a.ID,
			Name:        a.Name,
			Sport:       a.Type,
			Date:        formatLocal(a.StartDateLocal),
			DurationMin: RoundMinutes(a.MovingTime),
			DistanceKm:  RoundKm(a.Distance),
			AvgHR:       a.AverageHeartrate,
			AvgCadence:  a.AverageCadence,
		})
	}

	return &ActivityPage{Page: page, PerPage: ActivitiesPerPage, Activities: rows}, nil
}

// ActivityDetail is the detail view of one activity
type ActivityDetail struct {
	store.ActivitySummary
	StartDateLocal string
	Calories       float64
	PhotoURL       string
}

// Detail fetches the richer payload for one activity
func (m *Mirror) Detail(ctx context.Context, id int64) (*ActivityDetail, error) {
	d, err := m.api.GetActivity(ctx, id)
	if err != nil {
		return nil, err
	}
	return detailFrom(d), nil
}

func detailFrom(d *strava.DetailedActivity) *ActivityDetail {
	summary := Summarize(d.Activity)
	summary.Polyline = d.Map.RoutePolyline()
	return &ActivityDetail{
		ActivitySummary: summary,
		StartDateLocal:  formatLocal(d.StartDateLocal),
		Calories:        d.Calories,
		PhotoURL:        d.PrimaryPhotoURL(),
	}
}

// SharePreview is the gallery shown on the share page
type SharePreview struct {
	ID            int64
	Name          string
	Type          string
	DistanceKm    float64
	MovingTimeMin int
	AvgHR         *float64
	AvgCadence    *float64
	Calories      float64
	Images        []string
}

// PreviewImage is the image shown first
func (p SharePreview) PreviewImage() string {
	if len(p.Images) == 0 {
		return PlaceholderImage
	}
	return p.Images[0]
}

// ShareImages assembles the share gallery: the static map first when the
// activity has a route, then the primary photo, then the full photo list
// when the activity has more than one photo
func (m *Mirror) ShareImages(ctx context.Context, id int64) (*SharePreview, error) {
	d, err := m.api.GetActivity(ctx, id)
	if err != nil {
		return nil, err
	}

	var images []string
	if poly := d.Map.SummaryPolyline; poly != "" {
		images = append(images, m.StaticMapURL(poly))
	}
	if primary := d.PrimaryPhotoURL(); primary != "" {
		images = append(images, primary)
	}
	if d.PhotoCount() > 1 {
		photos, err := m.api.GetActivityPhotos(ctx, id, PhotoSize)
		if err != nil {
			return nil, err
		}
		for _, p := range photos {
			if u := p.URLForSize(PhotoSizeKey); u != "" {
				images = append(images, u)
			}
		}
	}
	if len(images) == 0 {
		images = append(images, PlaceholderImage)
	}

	return &SharePreview{
		ID:            d.ID,
		Name:          d.Name,
		Type:          d.Type,
		DistanceKm:    RoundKm(d.Distance),
		MovingTimeMin: RoundMinutes(d.MovingTime),
		AvgHR:         d.AverageHeartrate,
		AvgCadence:    d.AverageCadence,
		Calories:      d.Calories,
		Images:        images,
	}, nil
}

// StaticMapURL builds the Google Static Maps URL for an encoded route
func (m *Mirror) StaticMapURL(poly string) string {
	u := StaticMapBaseURL + "&path=" + url.QueryEscape("enc:"+poly)
	if m.mapsKey != "" {
		u += "&key=" + url.QueryEscape(m.mapsKey)
	}
	return u
}

// AuraCard is one tile of the aura gallery
type AuraCard struct {
	ID            int64
	Name          string
	Type          string
	DistanceKm    float64
	MovingTimeMin int
	Polyline      string
	PhotoURL      string
}

// Aura lists the first page of activities with their route and cover photo
func (m *Mirror) Aura(ctx context.Context) ([]AuraCard, error) {
	activities, err := m.api.GetActivities(ctx, 1, ActivitiesPerPage)
	if err != nil {
		return nil, err
	}

	cards := make([]AuraCard, 0, len(activities))
	for _, a := range activities {
		cards = append(cards, AuraCard{
			ID:            a.ID,
			Name:          a.Name,
			Type:          a.Type,
			DistanceKm:    RoundKm(a.Distance),
			MovingTimeMin: RoundMinutes(a.MovingTime),
			Polyline:      a.Map.SummaryPolyline,
			PhotoURL:      a.PrimaryPhotoURL(),
		})
	}
	return cards, nil
}

// AuraPreview is the single-activity aura card
type AuraPreview struct {
	ID          int64
	Name        string
	DistanceKm  float64
	DurationMin int
	AvgHR       *float64
	AvgCadence  *float64
	PhotoURL    string
	Polyline    string
}

// Preview fetches the detail and the photo list concurrently
func (m *Mirror) Preview(ctx context.Context, id int64) (*AuraPreview, error) {
	var (
		detail *strava.DetailedActivity
		photos []strava.Photo
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d, err := m.api.GetActivity(gctx, id)
		if err != nil {
			return err
		}
		detail = d
		return nil
	})
	g.Go(func() error {
		p, err := m.api.GetActivityPhotos(gctx, id, PhotoSize)
		if err != nil {
			return err
		}
		photos = p
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	preview := &AuraPreview{
		ID:          detail.ID,
		Name:        detail.Name,
		DistanceKm:  detail.Distance / MetersPerKm,
		DurationMin: RoundMinutes(detail.MovingTime),
		AvgHR:       detail.AverageHeartrate,
		AvgCadence:  detail.AverageCadence,
		Polyline:    detail.Map.SummaryPolyline,
	}
	if len(photos) > 0 {
		preview.PhotoURL = photos[0].URLs[PhotoSizeKey]
	}
	return preview, nil
}

// Recent reads at most n activities from the local snapshot. A missing
// snapshot is an empty result; staleness is not checked.
func (m *Mirror) Recent(ctx context.Context, n int) ([]store.ActivitySummary, error) {
	activities, err := m.store.GetSnapshot(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return []store.ActivitySummary{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	if n > 0 && len(activities) > n {
		activities = activities[:n]
	}
	return activities, nil
}

// RoundKm converts meters to kilometers rounded to two decimals
func RoundKm(meters float64) float64 {
	return math.Round(meters/MetersPerKm*100) / 100
}

// RoundMinutes converts seconds to whole minutes
func RoundMinutes(seconds int) int {
	return int(math.Round(float64(seconds) / SecondsPerMinute))
}

func formatLocal(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}
