package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/robfig/cron/v3"
)

// DefaultTileURL is the public OpenStreetMap tile server template.
const DefaultTileURL = "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Dataset source and refresh.
	DatasetURL            string
	DatasetTimeout        time.Duration
	DatasetReloadSchedule string

	// Presentation.
	StatPrecision  int
	DateRangeLabel string
	RadiusRoot     float64
	RadiusDivisor  float64
	TileURL        string

	// Mapbox geocoding configuration.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int

	// Activation events; disabled when KafkaBrokers is empty.
	KafkaBrokers         []string
	KafkaActivationTopic string

	// S3-compatible storage for s3:// dataset URLs.
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	datasetTimeout, err := parsePositiveDuration("DATASET_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	mapboxTimeout, err := parsePositiveDuration("MAPBOX_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	precision, err := strconv.Atoi(sharedcfg.EnvOrDefault("STAT_PRECISION", "4"))
	if err != nil || precision < 0 || precision > 10 {
		return nil, errors.New("invalid STAT_PRECISION: must be an integer between 0 and 10")
	}

	radiusRoot, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("MARKER_RADIUS_ROOT", "6"), 64)
	if err != nil || radiusRoot <= 1 {
		return nil, errors.New("invalid MARKER_RADIUS_ROOT: must be a number greater than 1")
	}

	radiusDivisor, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("MARKER_RADIUS_DIVISOR", "1"), 64)
	if err != nil || radiusDivisor <= 0 {
		return nil, errors.New("invalid MARKER_RADIUS_DIVISOR: must be a positive number")
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	var brokers []string
	if v := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		DatasetURL:            sharedcfg.EnvOrDefault("DATASET_URL", "dashboard/dashboard.json"),
		DatasetTimeout:        datasetTimeout,
		DatasetReloadSchedule: os.Getenv("DATASET_RELOAD_SCHEDULE"),

		StatPrecision:  precision,
		DateRangeLabel: sharedcfg.EnvOrDefault("DATE_RANGE_LABEL", "2013-2019"),
		RadiusRoot:     radiusRoot,
		RadiusDivisor:  radiusDivisor,
		TileURL:        sharedcfg.EnvOrDefault("TILE_URL", DefaultTileURL),

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: parseMapboxCacheSize(),

		KafkaBrokers:         brokers,
		KafkaActivationTopic: sharedcfg.EnvOrDefault("KAFKA_ACTIVATION_TOPIC", "city-panel-activations"),

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3Region:    sharedcfg.EnvOrDefault("S3_REGION", "auto"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
	}

	if cfg.DatasetURL == "" {
		return nil, errors.New("DATASET_URL is required")
	}
	if cfg.DatasetReloadSchedule != "" {
		if _, err := cron.ParseStandard(cfg.DatasetReloadSchedule); err != nil {
			return nil, errors.New("invalid DATASET_RELOAD_SCHEDULE: " + err.Error())
		}
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaActivationTopic == "" {
		return nil, errors.New("KAFKA_ACTIVATION_TOPIC is required when KAFKA_BROKERS is set")
	}
	if (cfg.S3AccessKey == "") != (cfg.S3SecretKey == "") {
		return nil, errors.New("S3_ACCESS_KEY and S3_SECRET_KEY must be set together")
	}

	return cfg, nil
}

// ActivationEventsEnabled reports whether panel activations are published to Kafka.
func (c *Config) ActivationEventsEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func parsePositiveDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return d, nil
}

func parseMapboxCacheSize() int {
	if s := os.Getenv("MAPBOX_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
