package ops

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.temporal.io/sdk/client"

	gingrapi "github.com/tailtown/gingrsync/internal/clients/gingr"
)

// Config carries environment-driven settings for the sync processes.
type Config struct {
	Port              string
	PostgresDSN       string
	TemporalAddress   string
	TemporalNamespace string
	TemporalDisabled  bool
	SyncBatchSize     int
	GingrRequestDelay time.Duration
	GingrTimeout      time.Duration
	GingrMaxAttempts  int
}

// LoadConfig reads environment variables, applies defaults, and validates
// basic constraints.
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:              envDefault("PORT", "8080"),
		PostgresDSN:       strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		TemporalAddress:   envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace: envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:  isTruthy(os.Getenv("TEMPORAL_DISABLED")),
	}
	var err error
	if cfg.SyncBatchSize, err = envPositiveInt("SYNC_BATCH_SIZE", 100); err != nil {
		return Config{}, err
	}
	delayMs, err := envPositiveInt("GINGR_REQUEST_DELAY_MS", 250)
	if err != nil {
		return Config{}, err
	}
	cfg.GingrRequestDelay = time.Duration(delayMs) * time.Millisecond
	timeoutSec, err := envPositiveInt("GINGR_TIMEOUT_SECONDS", 10)
	if err != nil {
		return Config{}, err
	}
	cfg.GingrTimeout = time.Duration(timeoutSec) * time.Second
	if cfg.GingrMaxAttempts, err = envPositiveInt("GINGR_MAX_ATTEMPTS", 3); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// GingrClientConfig builds the per-tenant client template. BaseURL and
// APIKey are filled by the directory provider.
func (c Config) GingrClientConfig() gingrapi.Config {
	return gingrapi.Config{
		RequestTimeout: c.GingrTimeout,
		RequestDelay:   c.GingrRequestDelay,
		MaxAttempts:    c.GingrMaxAttempts,
	}
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func envPositiveInt(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", key)
	}
	return value, nil
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
