package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// DefaultFeedURL is the USGS FDSN event query endpoint.
const DefaultFeedURL = "https://earthquake.usgs.gov/fdsnws/event/1/query"

// Config holds all service settings, populated from environment variables.
type Config struct {
	FeedURL        string
	FeedLimit      int
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration

	// DisplayLocation is the timezone used to render event dates and times.
	DisplayLocation *time.Location

	SettingsFile          string
	RefreshInterval       time.Duration
	ConnectivityProbeAddr string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Kafka publishing of delivered earthquakes.
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	connectTimeout, err := parsePositiveDuration("FETCH_CONNECT_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	readTimeout, err := parsePositiveDuration("FETCH_READ_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	refreshInterval, err := time.ParseDuration(sharedcfg.EnvOrDefault("REFRESH_INTERVAL", "0s"))
	if err != nil || refreshInterval < 0 {
		return nil, errors.New("invalid REFRESH_INTERVAL")
	}

	feedLimit, err := strconv.Atoi(sharedcfg.EnvOrDefault("FEED_LIMIT", "10"))
	if err != nil || feedLimit <= 0 {
		return nil, errors.New("invalid FEED_LIMIT: must be a positive integer")
	}

	tzName := sharedcfg.EnvOrDefault("DISPLAY_TIMEZONE", "Local")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("invalid DISPLAY_TIMEZONE %q: %w", tzName, err)
	}

	cfg := &Config{
		FeedURL:               sharedcfg.EnvOrDefault("FEED_URL", DefaultFeedURL),
		FeedLimit:             feedLimit,
		ConnectTimeout:        connectTimeout,
		ReadTimeout:           readTimeout,
		DisplayLocation:       loc,
		SettingsFile:          os.Getenv("SETTINGS_FILE"),
		RefreshInterval:       refreshInterval,
		ConnectivityProbeAddr: sharedcfg.EnvOrDefault("CONNECTIVITY_PROBE_ADDR", "earthquake.usgs.gov:443"),
		HTTPAddr:              sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:              sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:             sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:       shutdownTimeout,
		KafkaEnabled:          os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:          sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:            sharedcfg.EnvOrDefault("KAFKA_TOPIC", "earthquakes"),
	}

	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
		}
		if cfg.KafkaTopic == "" {
			return nil, errors.New("KAFKA_TOPIC is required when KAFKA_ENABLED is true")
		}
	}

	return cfg, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}
