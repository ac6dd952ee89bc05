package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config represents the application configuration
type Config struct {
	Strava   StravaConfig   `json:"strava"`
	OpenAI   OpenAIConfig   `json:"openai"`
	Athlete  AthleteConfig  `json:"athlete"`
	Server   ServerConfig   `json:"server"`
	Storage  StorageConfig  `json:"storage"`
	Calendar CalendarConfig `json:"calendar"`
	Sticker  StickerConfig  `json:"sticker"`
}

// StravaConfig holds Strava API credentials
type StravaConfig struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RedirectURL  string `json:"redirect_url"`
	MapsAPIKey   string `json:"maps_api_key,omitempty"`
}

// OpenAIConfig holds the chat-completion endpoint settings
type OpenAIConfig struct {
	APIKey         string `json:"api_key"`
	BaseURL        string `json:"base_url"`
	Model          string `json:"model"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// AthleteConfig holds athlete-specific settings
type AthleteConfig struct {
	RestingHR   float64 `json:"resting_hr"`
	MaxHR       float64 `json:"max_hr"`
	ThresholdHR float64 `json:"threshold_hr"`
}

// ServerConfig holds the web server settings
type ServerConfig struct {
	Addr          string `json:"addr"`
	Mode          string `json:"mode"` // debug, release or test
	CSRFKey       string `json:"csrf_key"`
	SecureCookies bool   `json:"secure_cookies"`
}

// StorageConfig selects where the JSON documents live
type StorageConfig struct {
	Backend     string `json:"backend"` // file, sqlite, redis or memory
	Dir         string `json:"dir"`
	RedisAddr   string `json:"redis_addr,omitempty"`
	RedisPrefix string `json:"redis_prefix,omitempty"`
}

// CalendarConfig holds the optional Google Calendar push settings
type CalendarConfig struct {
	GoogleCalendarID   string `json:"google_calendar_id,omitempty"`
	ServiceAccountFile string `json:"service_account_file,omitempty"`
	Timezone           string `json:"timezone"`
}

// StickerConfig holds the sticker renderer settings
type StickerConfig struct {
	FontPath string `json:"font_path,omitempty"`
}

// ErrNoConfig is returned when the config file doesn't exist
var ErrNoConfig = errors.New("config file not found")

const (
	DefaultModel   = "gpt-4o-mini"
	DefaultBaseURL = "https://api.openai.com"
	DefaultAddr    = ":5000"
)

// Storage backends
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Strava: StravaConfig{
			RedirectURL: "http://localhost:5000/callback",
		},
		OpenAI: OpenAIConfig{
			BaseURL: DefaultBaseURL,
			Model:   DefaultModel,
		},
		Athlete: AthleteConfig{
			RestingHR:   50,
			MaxHR:       185,
			ThresholdHR: 165,
		},
		Server: ServerConfig{
			Addr: DefaultAddr,
			Mode: "debug",
		},
		Storage: StorageConfig{
			Backend:     BackendFile,
			RedisPrefix: "cadence:",
		},
		Calendar: CalendarConfig{
			Timezone: "Local",
		},
	}
}

// Load reads the configuration from ~/.cadence/config.json, then applies
// .env and environment overrides. When the file is missing but the
// environment carries the Strava credentials, the defaults are used.
func Load() (*Config, error) {
	path, err := getConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile is Load with an explicit config path.
func LoadFile(path string) (*Config, error) {
	// A missing .env is the common case.
	_ = godotenv.Load()

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		if os.Getenv("STRAVA_CLIENT_ID") == "" {
			return nil, ErrNoConfig
		}
	case err != nil:
		return nil, fmt.Errorf("reading config file: %w", err)
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnv(&cfg, os.Getenv)
	applyDefaults(&cfg)

	return &cfg, nil
}

// applyEnv overrides file values with non-empty environment variables
func applyEnv(cfg *Config, getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}

	set(&cfg.Strava.ClientID, "STRAVA_CLIENT_ID")
	set(&cfg.Strava.ClientSecret, "STRAVA_CLIENT_SECRET")
	set(&cfg.Strava.RedirectURL, "STRAVA_REDIRECT_URI")
	set(&cfg.Strava.MapsAPIKey, "GOOGLE_MAPS_API_KEY")
	set(&cfg.OpenAI.APIKey, "OPENAI_API_KEY")
	set(&cfg.OpenAI.BaseURL, "OPENAI_BASE_URL")
	set(&cfg.OpenAI.Model, "OPENAI_MODEL")
	set(&cfg.Server.Addr, "CADENCE_ADDR")
	set(&cfg.Server.Mode, "CADENCE_MODE")
	set(&cfg.Server.CSRFKey, "CADENCE_CSRF_KEY")
	set(&cfg.Storage.Backend, "CADENCE_STORAGE")
	set(&cfg.Storage.Dir, "CADENCE_DATA_DIR")
	set(&cfg.Storage.RedisAddr, "REDIS_ADDR")
	set(&cfg.Calendar.GoogleCalendarID, "GOOGLE_CALENDAR_ID")
	set(&cfg.Calendar.ServiceAccountFile, "GOOGLE_SERVICE_ACCOUNT")
	set(&cfg.Sticker.FontPath, "STICKER_FONT")

	if v := strings.TrimSpace(getenv("OPENAI_TIMEOUT_SECONDS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.OpenAI.TimeoutSeconds = n
		}
	}
}

// applyDefaults fills zero values the file or environment left empty
func applyDefaults(cfg *Config) {
	defaults := DefaultConfig()
	if cfg.Athlete.RestingHR == 0 {
		cfg.Athlete.RestingHR = defaults.Athlete.RestingHR
	}
	if cfg.Athlete.MaxHR == 0 {
		cfg.Athlete.MaxHR = defaults.Athlete.MaxHR
	}
	if cfg.Athlete.ThresholdHR == 0 {
		cfg.Athlete.ThresholdHR = defaults.Athlete.ThresholdHR
	}
	if cfg.OpenAI.BaseURL == "" {
		cfg.OpenAI.BaseURL = defaults.OpenAI.BaseURL
	}
	if cfg.OpenAI.Model == "" {
		cfg.OpenAI.Model = defaults.OpenAI.Model
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaults.Server.Addr
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = defaults.Server.Mode
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = defaults.Storage.Backend
	}
	if cfg.Storage.RedisPrefix == "" {
		cfg.Storage.RedisPrefix = defaults.Storage.RedisPrefix
	}
	if cfg.Storage.Dir == "" {
		if dir, err := GetConfigDir(); err == nil {
			cfg.Storage.Dir = filepath.Join(dir, "data")
		}
	}
	if cfg.Calendar.Timezone == "" {
		cfg.Calendar.Timezone = defaults.Calendar.Timezone
	}
}

// Save writes the configuration to ~/.cadence/config.json
func Save(cfg *Config) error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// CreateExample creates an example config file if none exists
func CreateExample() error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	// Check if config already exists
	if _, err := os.Stat(path); err == nil {
		return nil // Config exists, don't overwrite
	}

	example := DefaultConfig()
	example.Strava.ClientID = "YOUR_CLIENT_ID"
	example.Strava.ClientSecret = "YOUR_CLIENT_SECRET"
	example.OpenAI.APIKey = "YOUR_OPENAI_API_KEY"

	return Save(&example)
}

// Validate checks if the config has required fields
func (c *Config) Validate() error {
	if c.Strava.ClientID == "" || c.Strava.ClientID == "YOUR_CLIENT_ID" {
		return errors.New("strava.client_id is required - get it from https://www.strava.com/settings/api")
	}
	if c.Strava.ClientSecret == "" || c.Strava.ClientSecret == "YOUR_CLIENT_SECRET" {
		return errors.New("strava.client_secret is required - get it from https://www.strava.com/settings/api")
	}
	if c.OpenAI.APIKey == "" || c.OpenAI.APIKey == "YOUR_OPENAI_API_KEY" {
		return errors.New("openai.api_key is required")
	}

	switch c.Storage.Backend {
	case "", BackendFile, BackendSQLite, BackendMemory:
	case BackendRedis:
		if c.Storage.RedisAddr == "" {
			return errors.New("storage.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("storage.backend must be one of file, sqlite, redis, memory, got %q", c.Storage.Backend)
	}

	switch c.Server.Mode {
	case "", "debug", "release", "test":
	default:
		return fmt.Errorf("server.mode must be \"debug\", \"release\" or \"test\", got %q", c.Server.Mode)
	}

	// Validate threshold_hr < max_hr when both are set
	if c.Athlete.ThresholdHR > 0 && c.Athlete.MaxHR > 0 && c.Athlete.ThresholdHR >= c.Athlete.MaxHR {
		return fmt.Errorf("athlete.threshold_hr (%v) must be less than athlete.max_hr (%v)", c.Athlete.ThresholdHR, c.Athlete.MaxHR)
	}

	return nil
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// GetConfigDir returns the path to the config directory
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".cadence"), nil
}
