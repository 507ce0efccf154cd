package syncer

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Base http(s) URL of the kiosk server.
	ServerURL string

	// False forces poll-only mode for servers without a push channel.
	PushEnabled bool

	// Fixed poll interval, used for fallback and poll-only mode.
	PollInterval time.Duration

	// Consecutive push failures before the fallback poll starts.
	PushFailureLimit int

	// Consecutive poll failures before connectivity is marked lost.
	PollFailureLimit int

	// Reconnect backoff bounds.
	BackoffFloor   time.Duration
	BackoffCeiling time.Duration
}

func ProvideConfig() *Config {
	cfg := &Config{
		ServerURL:        "http://localhost:5000",
		PushEnabled:      true,
		PollInterval:     2 * time.Second,
		PushFailureLimit: 3,
		PollFailureLimit: 3,
		BackoffFloor:     2 * time.Second,
		BackoffCeiling:   30 * time.Second,
	}

	if v := os.Getenv("SERVER_URL"); v != "" {
		cfg.ServerURL = v
	}
	if v := os.Getenv("PUSH_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.PushEnabled = enabled
		}
	}
	if v := os.Getenv("POLL_INTERVAL_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			cfg.PollInterval = time.Duration(ms) * time.Millisecond
		}
	}

	return cfg
}
