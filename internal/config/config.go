package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/UnknownOlympus/helios/internal/geo"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the configuration settings for the solar map service.
//
// Fields:
// - Env: The current environment (e.g., local, development, production).
// - Server: Listen port and timeouts of the HTTP server.
// - Solar: Access to the building insights API.
// - Maps: Browser map widget settings.
// - Geocoder: Reverse geocoding used for the summary address.
// - Session: Lifetime and diagnostics size of map sessions.
type Config struct {
	Env      string         `mapstructure:"env"`      // Env is the current environment: local, development, production.
	Server   ServerConfig   `mapstructure:"server"`   // Server holds the HTTP server configuration.
	Solar    SolarConfig    `mapstructure:"solar"`    // Solar holds the Solar API configuration.
	Maps     MapsConfig     `mapstructure:"maps"`     // Maps holds the map widget configuration.
	Geocoder GeocoderConfig `mapstructure:"geocoder"` // Geocoder holds the reverse geocoder configuration.
	Session  SessionConfig  `mapstructure:"session"`  // Session holds the session registry configuration.
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// SolarConfig configures the building insights client.
type SolarConfig struct {
	APIKey    string        `mapstructure:"api_key"`    // The API key with Solar API access.
	BaseURL   string        `mapstructure:"base_url"`   // Base URL of the Solar API.
	RateLimit int           `mapstructure:"rate_limit"` // Requests per second, 0 disables limiting.
	Timeout   time.Duration `mapstructure:"timeout"`    // Timeout of a single click, address lookup included.
}

// MapsConfig configures the browser map widget.
type MapsConfig struct {
	JSKey     string  `mapstructure:"js_key"` // Key for the Maps JavaScript API; defaults to the Solar key.
	CenterLat float64 `mapstructure:"center_lat"`
	CenterLng float64 `mapstructure:"center_lng"`
	Zoom      int     `mapstructure:"zoom"`
}

// GeocoderConfig configures reverse geocoding.
type GeocoderConfig struct {
	Provider  string `mapstructure:"provider"` // none, google or nominatim.
	APIKey    string `mapstructure:"api_key"`  // Defaults to the Solar key for the google provider.
	RateLimit int    `mapstructure:"rate_limit"`
}

// SessionConfig configures map sessions.
type SessionConfig struct {
	TTL            time.Duration `mapstructure:"ttl"`
	MaxDiagnostics int           `mapstructure:"max_diagnostics"`
}

// envPrefix maps HELIOS_SOLAR_API_KEY to solar.api_key.
const envPrefix = "HELIOS"

// MinSessionTTL is the shortest accepted session lifetime.
const MinSessionTTL = time.Second

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("config validation failed")

// Load reads configuration from defaults, an optional YAML file and the environment.
// A .env file in the working directory is loaded first. When path is empty, helios.yaml
// is searched in . and ./configs; a missing file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("helios")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Maps.JSKey == "" {
		cfg.Maps.JSKey = cfg.Solar.APIKey
	}
	if cfg.Geocoder.APIKey == "" {
		cfg.Geocoder.APIKey = cfg.Solar.APIKey
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "production")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 5*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("solar.api_key", "")
	v.SetDefault("solar.base_url", "https://solar.googleapis.com")
	v.SetDefault("solar.rate_limit", 5)
	v.SetDefault("solar.timeout", 15*time.Second)
	v.SetDefault("maps.js_key", "")
	v.SetDefault("maps.center_lat", 41.092865156416345)
	v.SetDefault("maps.center_lng", 28.991783817617385)
	v.SetDefault("maps.zoom", 18)
	v.SetDefault("geocoder.provider", "none")
	v.SetDefault("geocoder.api_key", "")
	v.SetDefault("geocoder.rate_limit", 0)
	v.SetDefault("session.ttl", 30*time.Minute)
	v.SetDefault("session.max_diagnostics", 50)
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Solar.APIKey == "" {
		errs = append(errs, "solar.api_key is required")
	}
	if c.Solar.RateLimit < 0 {
		errs = append(errs, "solar.rate_limit must not be negative")
	}
	if c.Solar.Timeout <= 0 {
		errs = append(errs, "solar.timeout must be positive")
	}
	if !geo.IsValid(c.Maps.CenterLat, c.Maps.CenterLng) {
		errs = append(errs, fmt.Sprintf("maps center (%v, %v) is not a valid coordinate",
			c.Maps.CenterLat, c.Maps.CenterLng))
	}
	if c.Maps.Zoom < 0 || c.Maps.Zoom > 22 {
		errs = append(errs, fmt.Sprintf("maps.zoom must be 0-22, got %d", c.Maps.Zoom))
	}
	switch c.Geocoder.Provider {
	case "none", "google", "nominatim":
	default:
		errs = append(errs, fmt.Sprintf("geocoder.provider must be none, google or nominatim, got %q",
			c.Geocoder.Provider))
	}
	if c.Session.TTL < MinSessionTTL {
		errs = append(errs, fmt.Sprintf("session.ttl must be at least %s, got %s", MinSessionTTL, c.Session.TTL))
	}
	if c.Session.MaxDiagnostics <= 0 {
		errs = append(errs, "session.max_diagnostics must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w:\n  - %s", ErrInvalidConfig, strings.Join(errs, "\n  - "))
	}

	return nil
}
