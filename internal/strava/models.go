package strava

import "time"

// Activity represents a Strava summary activity from the list endpoint.
// Metrics Strava omits for an activity decode as nil.
type Activity struct {
	ID                 int64         `json:"id"`
	Athlete            Athlete       `json:"athlete"`
	Name               string        `json:"name"`
	Type               string        `json:"type"`
	SportType          string        `json:"sport_type"`
	StartDate          time.Time     `json:"start_date"`
	StartDateLocal     time.Time     `json:"start_date_local"`
	Timezone           string        `json:"timezone"`
	Distance           float64       `json:"distance"`             // meters
	MovingTime         int           `json:"moving_time"`          // seconds
	ElapsedTime        int           `json:"elapsed_time"`         // seconds
	TotalElevationGain float64       `json:"total_elevation_gain"` // meters
	AverageSpeed       float64       `json:"average_speed"`        // m/s
	AverageHeartrate   *float64      `json:"average_heartrate"`    // bpm
	MaxHeartrate       *float64      `json:"max_heartrate"`        // bpm
	AverageCadence     *float64      `json:"average_cadence"`      // rpm or spm
	AverageWatts       *float64      `json:"average_watts"`        // W
	HasHeartrate       bool          `json:"has_heartrate"`
	TotalPhotoCount    int           `json:"total_photo_count"`
	Map                Map           `json:"map"`
	Photos             *PhotoSummary `json:"photos,omitempty"`
}

// Athlete represents a Strava athlete (minimal info in activity response)
type Athlete struct {
	ID int64 `json:"id"`
}

// Map holds the encoded route of an activity
type Map struct {
	ID              string `json:"id"`
	Polyline        string `json:"polyline,omitempty"` // detail only
	SummaryPolyline string `json:"summary_polyline"`
}

// RoutePolyline returns the most detailed encoded route available
func (m Map) RoutePolyline() string {
	if m.Polyline != "" {
		return m.Polyline
	}
	return m.SummaryPolyline
}

// DetailedActivity is the payload of the activity detail endpoint
type DetailedActivity struct {
	Activity
	Description string  `json:"description"`
	Calories    float64 `json:"calories"`
}

// PhotoSummary describes the photos attached to an activity
type PhotoSummary struct {
	Count   int           `json:"count"`
	Primary *PrimaryPhoto `json:"primary"`
}

// PrimaryPhotoURL returns the cover photo URL, or "" when there is none
func (a Activity) PrimaryPhotoURL() string {
	if a.Photos == nil {
		return ""
	}
	return a.Photos.Primary.URL()
}

// PhotoCount returns the number of photos the payload reports
func (a Activity) PhotoCount() int {
	if a.Photos != nil && a.Photos.Count > 0 {
		return a.Photos.Count
	}
	return a.TotalPhotoCount
}

// PrimaryPhoto is the cover photo; URLs is keyed by requested size
type PrimaryPhoto struct {
	UniqueID string            `json:"unique_id"`
	URLs     map[string]string `json:"urls"`
}

// URL returns the largest URL the primary photo carries
func (p *PrimaryPhoto) URL() string {
	if p == nil {
		return ""
	}
	return largestURL(p.URLs)
}

// Photo is one entry of the activity photos endpoint
type Photo struct {
	UniqueID string            `json:"unique_id"`
	Caption  string            `json:"caption"`
	URLs     map[string]string `json:"urls"`
}

// URLForSize returns the URL for size, falling back to the largest one
func (p Photo) URLForSize(size string) string {
	if u, ok := p.URLs[size]; ok && u != "" {
		return u
	}
	return largestURL(p.URLs)
}

// largestURL picks the URL with the numerically largest size key
func largestURL(urls map[string]string) string {
	best, bestSize := "", -1
	for k, v := range urls {
		size := 0
		for _, c := range k {
			if c < '0' || c > '9' {
				size = 0
				break
			}
			size = size*10 + int(c-'0')
		}
		if v != "" && size > bestSize {
			best, bestSize = v, size
		}
	}
	return best
}
