package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// AgentConfig configures the device-side delivery agent.
type AgentConfig struct {
	// ServerURL is the tracker API base URL fixes are posted to.
	ServerURL string
	// ListenAddr is the local capture endpoint (POST /fix, /sync).
	ListenAddr string
	// QueuePath is the durable queue file.
	QueuePath string

	SyncInterval time.Duration
	SendTimeout  time.Duration
	Workers      int
	MaxAttempts  int

	// NATSURL enables push wake-ups when set.
	NATSURL string
	// MetricsAddr enables the Prometheus endpoint when set.
	MetricsAddr string
}

func LoadAgent() (*AgentConfig, error) {
	// Load .env into environment (ignore if missing)
	_ = godotenv.Load()

	cfg := &AgentConfig{
		ServerURL:   os.Getenv("SERVER_URL"),
		ListenAddr:  getEnv("AGENT_ADDR", "127.0.0.1:8100"),
		QueuePath:   getEnv("QUEUE_PATH", "queue.db"),
		NATSURL:     os.Getenv("NATS_URL"),
		MetricsAddr: os.Getenv("METRICS_ADDR"),
	}

	if cfg.ServerURL == "" {
		return nil, fmt.Errorf("SERVER_URL environment variable is required")
	}

	var err error
	cfg.SyncInterval, err = durationEnv("SYNC_INTERVAL_SEC", 30*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.SendTimeout, err = durationEnv("SEND_TIMEOUT_SEC", 10*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.Workers, err = intEnv("DELIVERY_WORKERS", 4)
	if err != nil {
		return nil, err
	}
	cfg.MaxAttempts, err = intEnv("MAX_ATTEMPTS", 5)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return n, nil
}
