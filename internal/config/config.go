package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Deployment profiles. The tracker historically ran as two parallel
// deployments sharing one frontend: the admin stack on the busTracker
// database with a 5-minute activity window, and the public stack on
// ksrtcTracker with a 10-minute window. They stay distinct here.
const (
	ProfileAdmin  = "admin"
	ProfilePublic = "public"
)

type Config struct {
	Host    string
	Port    string
	Profile string

	MongoURI      string
	MongoDatabase string
	RedisURL      string

	AdminJWTSecret string

	// Routing provider chain; empty values disable a provider.
	GoogleRoutesAPIKey string
	OSRMBaseURL        string

	// Optional broadcast bus for agent sync wake-ups.
	NATSURL string

	// Staleness thresholds, one per read view. Never unified.
	AdminActiveWindow  time.Duration
	PublicActiveWindow time.Duration

	TestMode bool
}

func Load() (*Config, error) {
	// Load .env into environment (ignore if missing)
	_ = godotenv.Load()

	cfg := &Config{
		Host:           getEnv("HOST", "0.0.0.0"),
		Port:           getEnv("PORT", "8000"),
		Profile:        getEnv("PROFILE", ProfilePublic),
		MongoURI:       os.Getenv("MONGODB_URI"),
		RedisURL:       os.Getenv("REDIS_URL"),
		AdminJWTSecret: os.Getenv("ADMIN_JWT_SECRET"),
		TestMode:       strings.EqualFold(os.Getenv("TEST_MODE"), "true"),

		GoogleRoutesAPIKey: os.Getenv("GOOGLE_ROUTES_API_KEY"),
		OSRMBaseURL:        os.Getenv("OSRM_BASE_URL"),
		NATSURL:            os.Getenv("NATS_URL"),
	}

	switch cfg.Profile {
	case ProfileAdmin:
		cfg.MongoDatabase = getEnv("MONGODB_DATABASE", "busTracker")
	case ProfilePublic:
		cfg.MongoDatabase = getEnv("MONGODB_DATABASE", "ksrtcTracker")
	default:
		return nil, fmt.Errorf("unknown PROFILE %q (want %s or %s)", cfg.Profile, ProfileAdmin, ProfilePublic)
	}

	var err error
	cfg.AdminActiveWindow, err = durationEnv("ADMIN_ACTIVE_WINDOW_SEC", 5*time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.PublicActiveWindow, err = durationEnv("PUBLIC_ACTIVE_WINDOW_SEC", 10*time.Minute)
	if err != nil {
		return nil, err
	}

	if cfg.MongoURI == "" && !cfg.TestMode {
		return nil, fmt.Errorf("MONGODB_URI environment variable is required when not in test mode")
	}

	return cfg, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	sec, err := strconv.Atoi(v)
	if err != nil || sec <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return time.Duration(sec) * time.Second, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return strings.TrimSpace(value)
}
