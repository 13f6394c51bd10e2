package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

var validate = validator.New()

// ServerConfig configures cmd/weather-server.
type ServerConfig struct {
	Port     string `validate:"required,numeric"`
	Env      string
	LogLevel string

	// Search log storage.
	DBDriver string `validate:"oneof=sqlite3 postgres memory"`
	DBDSN    string `validate:"required_unless=DBDriver memory"`

	StaticDir string

	// ProxyHeader, when set, makes the client IP come from this header (e.g. X-Forwarded-For).
	ProxyHeader string

	// Retention of search events. Zero keeps history forever.
	HistoryRetention  time.Duration `validate:"gte=0"`
	RetentionInterval time.Duration `validate:"gt=0"`
}

// ClientConfig configures cmd/weather-cli.
type ClientConfig struct {
	Env      string
	LogLevel string

	ServerURL string `validate:"required,url"`

	Geocoder       string `validate:"oneof=nominatim google"`
	NominatimURL   string `validate:"omitempty,url"`
	GoogleAPIKey   string `validate:"required_if=Geocoder google"`
	OpenMeteoURL   string `validate:"omitempty,url"`
	MapEmbedURL    string `validate:"omitempty,url"`
	UserAgent      string
	HTTPTimeout    time.Duration `validate:"gte=0"` // zero means no timeout
	MaxRetries     int           `validate:"gte=0"`
	CircuitBreaker bool
}

// loadEnvFile reads .env when present. A missing file is not an error; an unreadable or malformed one is.
func loadEnvFile() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// LoadServer reads server configuration from environment with sensible defaults.
func LoadServer() (*ServerConfig, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	cfg := &ServerConfig{
		Port:        getenvDefault("PORT", "3000"),
		Env:         getenvDefault("APP_ENV", "development"),
		LogLevel:    getenvDefault("LOG_LEVEL", "info"),
		DBDriver:    getenvDefault("DB_DRIVER", "sqlite3"),
		DBDSN:       getenvDefault("DB_DSN", "db.sqlite"),
		StaticDir:   getenvDefault("STATIC_DIR", "public"),
		ProxyHeader: os.Getenv("PROXY_HEADER"),
	}

	var err error
	if cfg.HistoryRetention, err = getenvDuration("HISTORY_RETENTION", 0); err != nil {
		return nil, err
	}
	if cfg.RetentionInterval, err = getenvDuration("RETENTION_INTERVAL", time.Hour); err != nil {
		return nil, err
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid server config: %w", err)
	}
	return cfg, nil
}

// LoadClient reads CLI configuration from environment with sensible defaults.
func LoadClient() (*ClientConfig, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	cfg := &ClientConfig{
		Env:            getenvDefault("APP_ENV", "development"),
		LogLevel:       getenvDefault("LOG_LEVEL", "warn"),
		ServerURL:      getenvDefault("SERVER_URL", "http://localhost:3000"),
		Geocoder:       strings.ToLower(getenvDefault("GEOCODER", "nominatim")),
		NominatimURL:   os.Getenv("NOMINATIM_URL"),
		GoogleAPIKey:   os.Getenv("GOOGLE_GEOCODING_API_KEY"),
		OpenMeteoURL:   os.Getenv("OPEN_METEO_URL"),
		MapEmbedURL:    os.Getenv("MAP_EMBED_URL"),
		UserAgent:      os.Getenv("USER_AGENT"),
		MaxRetries:     getenvInt("PROVIDER_MAX_RETRIES", 0),
		CircuitBreaker: getenvBool("PROVIDER_CIRCUIT_BREAKER", false),
	}

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 0); err != nil {
		return nil, err
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid client config: %w", err)
	}
	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
