package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds environment-based settings
type Config struct {
	Environment    string
	LogLevel       string
	ServerAddress  string
	DatabaseURL    string
	MigrationsPath string
	JWTSecret      string
	AllowedOrigins []string
	TemplatesGlob  string
	Timezone       *time.Location

	RedisAddress  string
	RedisUsername string
	RedisPassword string
	CacheTTL      time.Duration

	MQTTBrokerURL string
	MQTTClientID  string

	AlmanacBaseURL   string
	AlmanacGeonameID string
	AlmanacTimeout   time.Duration
	PollInterval     time.Duration
	PollDaysAhead    int

	UploadDir       string
	UseSpaces       bool
	SpacesEndpoint  string
	SpacesRegion    string
	SpacesBucket    string
	SpacesCDNURL    string
	SpacesAccessKey string
	SpacesSecretKey string
}

// Load reads an optional .env file, then configuration from environment variables
func Load() (*Config, error) {
	// a missing .env is fine; real deployments set the environment directly
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	jwt := os.Getenv("JWT_SECRET")
	if jwt == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	tzName := getenv("TIMEZONE", "Asia/Jerusalem")
	tz, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", tzName, err)
	}

	cacheTTL, err := duration("CACHE_TTL", 6*time.Hour)
	if err != nil {
		return nil, err
	}
	almanacTimeout, err := duration("ALMANAC_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	pollInterval, err := duration("POLL_INTERVAL", 6*time.Hour)
	if err != nil {
		return nil, err
	}

	daysAhead := 14
	if raw := strings.TrimSpace(os.Getenv("POLL_DAYS_AHEAD")); raw != "" {
		daysAhead, err = strconv.Atoi(raw)
		if err != nil || daysAhead < 1 {
			return nil, fmt.Errorf("invalid POLL_DAYS_AHEAD %q", raw)
		}
	}

	cfg := &Config{
		Environment:    getenv("APP_ENV", "production"),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		ServerAddress:  getenv("SERVER_ADDRESS", ":8080"),
		DatabaseURL:    dbURL,
		MigrationsPath: getenv("MIGRATIONS_PATH", "./migrations"),
		JWTSecret:      jwt,
		AllowedOrigins: parseList("ALLOWED_ORIGINS", []string{"*"}),
		TemplatesGlob:  getenv("TEMPLATES_GLOB", "web/templates/*.html"),
		Timezone:       tz,

		RedisAddress:  os.Getenv("REDIS_ADDRESS"),
		RedisUsername: os.Getenv("REDIS_USERNAME"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		CacheTTL:      cacheTTL,

		MQTTBrokerURL: os.Getenv("MQTT_BROKER_URL"),
		MQTTClientID:  getenv("MQTT_CLIENT_ID", "minyan-server"),

		AlmanacBaseURL:   getenv("ALMANAC_BASE_URL", "https://www.hebcal.com"),
		AlmanacGeonameID: os.Getenv("ALMANAC_GEONAME_ID"),
		AlmanacTimeout:   almanacTimeout,
		PollInterval:     pollInterval,
		PollDaysAhead:    daysAhead,

		UploadDir:       getenv("UPLOAD_DIR", "./uploads"),
		UseSpaces:       os.Getenv("USE_SPACES") == "true",
		SpacesEndpoint:  os.Getenv("SPACES_ENDPOINT"),
		SpacesRegion:    os.Getenv("SPACES_REGION"),
		SpacesBucket:    os.Getenv("SPACES_BUCKET"),
		SpacesCDNURL:    os.Getenv("SPACES_CDN_URL"),
		SpacesAccessKey: os.Getenv("SPACES_ACCESS_KEY"),
		SpacesSecretKey: os.Getenv("SPACES_SECRET_KEY"),
	}

	if cfg.UseSpaces && (cfg.SpacesBucket == "" || cfg.SpacesEndpoint == "") {
		return nil, fmt.Errorf("SPACES_BUCKET and SPACES_ENDPOINT are required when USE_SPACES=true")
	}
	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func duration(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return d, nil
}

func parseList(key string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
