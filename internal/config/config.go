// Package config loads the API's runtime settings from the process
// environment. A local .env file is picked up automatically when present.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	_ "github.com/joho/godotenv/autoload"
)

var ErrMissingEnv = errors.New("required environment variable not set")

// Config holds runtime settings for the expense API.
//
// Fields:
//   - StoreURI / StoreKey: connection string and access key of the document store. Both required.
//   - StoreAccount: user the access key authenticates as. Derived from StoreURI when empty.
//   - DatabaseName / CollectionName: logical database and collection holding expenses.
//   - Port: HTTP listen port.
//   - FrontendOrigin: the single origin allowed to make credentialed cross-origin calls.
//   - RateLimitRPS / RateLimitBurst: per-client token bucket. RPS of 0 disables limiting.
type Config struct {
	StoreURI       string
	StoreKey       string
	StoreAccount   string
	DatabaseName   string
	CollectionName string
	Port           int
	FrontendOrigin string
	RateLimitRPS   float64
	RateLimitBurst int
	LogLevel       zerolog.Level
}

// LoadDefaults populates the optional settings.
func (c *Config) LoadDefaults() {
	c.DatabaseName = "SmartExpenseDB"
	c.CollectionName = "Expenses"
	c.Port = 8000
	c.FrontendOrigin = "http://localhost:5173"
	c.RateLimitRPS = 20
	c.RateLimitBurst = 40
	c.LogLevel = zerolog.InfoLevel
}

// Load builds a Config from defaults overlaid with the environment.
func Load() (*Config, error) {
	return loadFrom(os.Getenv)
}

func loadFrom(getenv func(string) string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	cfg.StoreURI = strings.TrimSpace(getenv("COSMOS_URI"))
	cfg.StoreKey = strings.TrimSpace(getenv("COSMOS_KEY"))

	var missing []string
	if cfg.StoreURI == "" {
		missing = append(missing, "COSMOS_URI")
	}
	if cfg.StoreKey == "" {
		missing = append(missing, "COSMOS_KEY")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingEnv, strings.Join(missing, ", "))
	}

	cfg.StoreAccount = strings.TrimSpace(getenv("COSMOS_ACCOUNT"))
	if cfg.StoreAccount == "" {
		cfg.StoreAccount = accountFromURI(cfg.StoreURI)
	}

	if v := getenv("DATABASE_NAME"); v != "" {
		cfg.DatabaseName = v
	}
	if v := getenv("CONTAINER_NAME"); v != "" {
		cfg.CollectionName = v
	}
	if v := getenv("FRONTEND_ORIGIN"); v != "" {
		cfg.FrontendOrigin = strings.TrimRight(v, "/")
	}

	if v := getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return nil, fmt.Errorf("invalid PORT %q", v)
		}
		cfg.Port = port
	}

	if v := getenv("RATE_LIMIT_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil || rps < 0 {
			return nil, fmt.Errorf("invalid RATE_LIMIT_RPS %q", v)
		}
		cfg.RateLimitRPS = rps
	}
	if v := getenv("RATE_LIMIT_BURST"); v != "" {
		burst, err := strconv.Atoi(v)
		if err != nil || burst < 0 {
			return nil, fmt.Errorf("invalid RATE_LIMIT_BURST %q", v)
		}
		cfg.RateLimitBurst = burst
	}

	if v := getenv("LOG_LEVEL"); v != "" {
		level, err := zerolog.ParseLevel(strings.ToLower(v))
		if err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", v, err)
		}
		cfg.LogLevel = level
	}

	return cfg, nil
}

// accountFromURI picks the user embedded in the connection string, falling
// back to the first label of the host (<account>.mongo.cosmos.azure.com).
func accountFromURI(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if u.User != nil && u.User.Username() != "" {
		return u.User.Username()
	}
	host := u.Hostname()
	if host == "" {
		return ""
	}
	if i := strings.Index(host, "."); i > 0 {
		return host[:i]
	}
	return host
}
