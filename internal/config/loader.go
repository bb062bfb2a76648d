package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/LdDl/osm2ride"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Default returns configuration used when no file is given
func Default() AppConfig {
	return AppConfig{
		Overpass: OverpassConfig{
			URL:            osm2ride.DEFAULT_OVERPASS_URL,
			Area:           osm2ride.DEFAULT_AREA,
			RouteType:      osm2ride.DEFAULT_ROUTE,
			TimeoutSeconds: int(osm2ride.DEFAULT_TIMEOUT.Seconds()),
			StopTags:       strings.Split(osm2ride.DEFAULT_STOP_TAGS, ","),
		},
		Reconstruct: ReconstructConfig{
			Concurrency: osm2ride.DEFAULT_CONCURRENCY,
		},
		Server: ServerConfig{
			Port: 8080,
		},
		NATS: NATSConfig{
			SubjectPrefix: "itinerary",
		},
	}
}

// Load reads YAML file (if path is not empty) over defaults, applies environment overrides (.env is loaded when
// present) and validates the result
func Load(path string) (AppConfig, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, errors.Wrap(err, "Can't read configuration file")
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, errors.Wrap(err, "Can't parse configuration file")
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := validator.New().Struct(cfg); err != nil {
		return cfg, errors.Wrap(err, "Invalid configuration")
	}
	return cfg, nil
}

func applyEnv(cfg *AppConfig) error {
	cfg.Overpass.URL = getenvDefault("OVERPASS_URL", cfg.Overpass.URL)
	cfg.Overpass.Area = getenvDefault("OVERPASS_AREA", cfg.Overpass.Area)
	if v := os.Getenv("OVERPASS_TIMEOUT_SECONDS"); v != "" {
		sec, err := strconv.Atoi(v)
		if err != nil {
			return errors.Errorf("invalid OVERPASS_TIMEOUT_SECONDS: %q", v)
		}
		cfg.Overpass.TimeoutSeconds = sec
	}
	if v := os.Getenv("RECONSTRUCT_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Errorf("invalid RECONSTRUCT_CONCURRENCY: %q", v)
		}
		cfg.Reconstruct.Concurrency = n
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return errors.Errorf("invalid SERVER_PORT: %q", v)
		}
		cfg.Server.Port = port
	}
	cfg.Metrics.Addr = getenvDefault("METRICS_ADDR", cfg.Metrics.Addr)
	cfg.NATS.URL = getenvDefault("NATS_URL", cfg.NATS.URL)
	return nil
}

// QueryConfiguration converts overpass section to library configuration
func (cfg AppConfig) QueryConfiguration() (osm2ride.QueryConfiguration, error) {
	tags, err := osm2ride.ParseStopTags(strings.Join(cfg.Overpass.StopTags, ","))
	if err != nil {
		return osm2ride.QueryConfiguration{}, err
	}
	return osm2ride.QueryConfiguration{
		Area:      cfg.Overpass.Area,
		RouteType: cfg.Overpass.RouteType,
		StopTags:  tags,
		Timeout:   time.Duration(cfg.Overpass.TimeoutSeconds) * time.Second,
	}, nil
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
