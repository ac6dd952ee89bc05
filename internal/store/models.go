package store

// Document keys
const (
	KeyTokens     = "tokens"
	KeyActivities = "activities"
	KeyProfile    = "profile"
	KeyPlans      = "plans"
	KeyChat       = "chat_history"
	KeySyncState  = "sync_state"
)

// Tokens represents OAuth tokens for Strava API access, as returned by
// the token endpoint
type Tokens struct {
	TokenType    string `json:"token_type,omitempty"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"` // epoch seconds
	ExpiresIn    int64  `json:"expires_in,omitempty"`
	AthleteID    int64  `json:"athlete_id,omitempty"`
}

// ActivitySummary is one mirrored activity with unit-converted fields.
// Optional physiological metrics are nil when the upstream omitted them.
type ActivitySummary struct {
	ID            int64    `json:"id"`
	Name          string   `json:"name"`
	Type          string   `json:"type"`
	StartDate     string   `json:"start_date,omitempty"`
	DistanceKm    float64  `json:"distance_km"`
	MovingTimeMin float64  `json:"moving_time_min"`
	AvgHR         *float64 `json:"avg_hr,omitempty"`
	AvgCadence    *float64 `json:"avg_cadence,omitempty"`
	AvgPower      *float64 `json:"avg_power,omitempty"`
	Polyline      string   `json:"map_polyline,omitempty"`
}

// Plan is one day's generated training recommendation
type Plan struct {
	Sport       string `json:"sport"`
	DurationMin int    `json:"duration_min"`
	Intensity   string `json:"intensity"`
	Rationale   string `json:"rationale"`
}

// Plans maps an ISO date (YYYY-MM-DD) to its plan
type Plans map[string]Plan

// Chat roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one transcript turn
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Profile is the athlete profile document. Every leaf is optional: a nil
// pointer means the field was never submitted, an empty string means it
// was submitted blank.
type Profile struct {
	Identity        Identity          `json:"identity"`
	Anthropometrics Anthropometrics   `json:"anthropometrics"`
	Goals           Goals             `json:"goals"`
	Constraints     map[string]string `json:"constraints"`
	Injuries        []Injury          `json:"injuries"`
	Thresholds      Thresholds        `json:"thresholds"`
	Nutrition       Nutrition         `json:"nutrition"`
	Equipment       Equipment         `json:"equipment"`
}

type Identity struct {
	Name     *string `json:"name,omitempty"`
	DOB      *string `json:"dob,omitempty"`
	Sex      *string `json:"sex,omitempty"`
	Timezone *string `json:"timezone,omitempty"`
	Locale   *string `json:"locale,omitempty"`
}

type Anthropometrics struct {
	HeightCm       *string `json:"height_cm,omitempty"`
	WeightKg       *string `json:"weight_kg,omitempty"`
	BodyfatPercent *string `json:"bodyfat_percent,omitempty"`
}

type Goals struct {
	Races       []Race      `json:"races"`
	Methodology *string     `json:"methodology,omitempty"`
	Preferences Preferences `json:"preferences"`
}

type Race struct {
	Name     *string `json:"name,omitempty"`
	Date     *string `json:"date,omitempty"`
	Priority *string `json:"priority,omitempty"`
}

type Preferences struct {
	IndoorOK *bool `json:"indoor_ok,omitempty"`
}

type Injury struct {
	Area   *string `json:"area,omitempty"`
	Status *string `json:"status,omitempty"`
}

type Thresholds struct {
	Run  RunThresholds  `json:"run"`
	Bike BikeThresholds `json:"bike"`
	Swim SwimThresholds `json:"swim"`
}

type RunThresholds struct {
	ThresholdPace *string `json:"threshold_pace,omitempty"`
	ThresholdHR   *string `json:"threshold_hr,omitempty"`
}

type BikeThresholds struct {
	FTP *string `json:"ftp,omitempty"`
	WKg *string `json:"w_kg,omitempty"`
}

type SwimThresholds struct {
	CSS *string `json:"css,omitempty"`
}

type Nutrition struct {
	Diet         *string `json:"diet,omitempty"`
	Restrictions *string `json:"restrictions,omitempty"`
}

type Equipment struct {
	Bike    *string `json:"bike,omitempty"`
	Sensors *string `json:"sensors,omitempty"`
}

// EmptyProfile returns the skeleton shown before the first submission:
// one blank race and one blank injury slot.
func EmptyProfile() Profile {
	return Profile{
		Goals:       Goals{Races: []Race{{}}},
		Constraints: map[string]string{},
		Injuries:    []Injury{{}},
	}
}
