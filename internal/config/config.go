package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/log"
)

type Config struct {
	// API
	ServerURL  string
	APITimeout time.Duration

	// Session persistence
	SessionBackend string
	SessionFile    string
	SessionDBPath  string

	// UI feedback
	AlertClearDelay    time.Duration
	LoginRedirectDelay time.Duration

	// Reference data cache
	RefDataTTL       time.Duration
	RefDataCacheSize int

	// AMQP (optional)
	AMQPURL      string
	AMQPExchange string

	LogLevel string
}

func Load() *Config {
	return &Config{
		ServerURL:  getEnv("FINTRACK_SERVER_URL", "http://localhost:5000"),
		APITimeout: getEnvDuration("FINTRACK_API_TIMEOUT", 5*time.Second),

		SessionBackend: getEnv("FINTRACK_SESSION_BACKEND", "file"),
		SessionFile:    getEnv("FINTRACK_SESSION_FILE", defaultSessionFile()),
		SessionDBPath:  getEnv("FINTRACK_SESSION_DB_PATH", "./data/fintrack.db"),

		AlertClearDelay:    getEnvDuration("FINTRACK_ALERT_CLEAR_DELAY", 3*time.Second),
		LoginRedirectDelay: getEnvDuration("FINTRACK_LOGIN_REDIRECT_DELAY", 500*time.Millisecond),

		RefDataTTL:       getEnvDuration("FINTRACK_REFDATA_TTL", 10*time.Minute),
		RefDataCacheSize: getEnvInt("FINTRACK_REFDATA_CACHE_SIZE", 16),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "fintrack"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// APIBaseURL is the server URL with the versioned API prefix.
func (c *Config) APIBaseURL() string {
	return strings.TrimRight(c.ServerURL, "/") + "/api/v1"
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if u, err := url.Parse(c.ServerURL); err != nil {
		errors = append(errors, fmt.Sprintf("invalid server URL '%s': %v", c.ServerURL, err))
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errors = append(errors, fmt.Sprintf("invalid server URL scheme '%s': must be 'http' or 'https'", u.Scheme))
	} else if u.Host == "" {
		errors = append(errors, fmt.Sprintf("invalid server URL '%s': missing host", c.ServerURL))
	}

	if c.APITimeout < 100*time.Millisecond || c.APITimeout > 2*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid API timeout %v: must be between 100ms and 2m", c.APITimeout))
	}

	validBackends := []string{"memory", "file", "sqlite"}
	isValidBackend := false
	for _, b := range validBackends {
		if c.SessionBackend == b {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid session backend '%s': must be one of %v", c.SessionBackend, validBackends))
	}

	switch c.SessionBackend {
	case "file":
		if c.SessionFile == "" {
			errors = append(errors, "session file path cannot be empty when using file backend")
		}
	case "sqlite":
		if c.SessionDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		}
	}

	if c.AlertClearDelay < 0 {
		errors = append(errors, fmt.Sprintf("invalid alert clear delay %v: must not be negative", c.AlertClearDelay))
	}
	if c.LoginRedirectDelay < 0 {
		errors = append(errors, fmt.Sprintf("invalid login redirect delay %v: must not be negative", c.LoginRedirectDelay))
	}

	if c.RefDataTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid reference data TTL %v: must be at least 1 second", c.RefDataTTL))
	}
	if c.RefDataCacheSize < 1 || c.RefDataCacheSize > 1024 {
		errors = append(errors, fmt.Sprintf("invalid reference data cache size %d: must be between 1 and 1024", c.RefDataCacheSize))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, err.Error())
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".fintrack", "session.json")
	}
	return filepath.Join(home, ".fintrack", "session.json")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
