// Package config loads service settings from an optional YAML file, a
// .env file and the environment, in increasing order of precedence.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverPostgres = "postgres"

	minSecretLen = 32
)

type StoreConfig struct {
	Driver string
	Path   string
	DSN    string
}

type SessionConfig struct {
	Secret   string
	TTL      time.Duration
	IdleTTL  time.Duration
	FeedSize int
}

type Config struct {
	Port         string
	LogLevel     string
	MenuPage     string
	MetricsToken string
	RatePerMin   int
	Store        StoreConfig
	Session      SessionConfig
}

func (c Config) String() string {
	return fmt.Sprintf(
		"Port: %s | LogLevel: %s | MenuPage: %s | Store: %s",
		c.Port, c.LogLevel, c.MenuPage, c.Store.Driver,
	)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("menu.page", "web/menu.html")
	v.SetDefault("store.driver", DriverMemory)
	v.SetDefault("store.path", "data/state.json")
	v.SetDefault("session.ttl", "720h")
	v.SetDefault("session.idle_ttl", "30m")
	v.SetDefault("session.feed_size", 20)
	v.SetDefault("ratelimit.per_min", 60)
}

// Load reads configFile when it is non-empty, then overlays .env and the
// process environment. Keys map to variables by upper-casing and replacing
// dots with underscores, e.g. store.driver -> STORE_DRIVER.
func Load(configFile string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", configFile)
		}
	}

	_ = v.BindEnv("store.dsn", "STORE_DSN", "DATABASE_URL")
	_ = v.BindEnv("session.secret", "SESSION_SECRET")
	_ = v.BindEnv("metrics.token", "METRICS_TOKEN")

	cfg := &Config{
		Port:         v.GetString("port"),
		LogLevel:     v.GetString("log.level"),
		MenuPage:     v.GetString("menu.page"),
		MetricsToken: v.GetString("metrics.token"),
		RatePerMin:   v.GetInt("ratelimit.per_min"),
		Store: StoreConfig{
			Driver: strings.ToLower(v.GetString("store.driver")),
			Path:   v.GetString("store.path"),
			DSN:    v.GetString("store.dsn"),
		},
		Session: SessionConfig{
			Secret:   v.GetString("session.secret"),
			TTL:      v.GetDuration("session.ttl"),
			IdleTTL:  v.GetDuration("session.idle_ttl"),
			FeedSize: v.GetInt("session.feed_size"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case DriverMemory:
	case DriverFile:
		if c.Store.Path == "" {
			return errors.New("store.path is required for the file driver")
		}
	case DriverPostgres:
		if c.Store.DSN == "" {
			return errors.New("store.dsn is required for the postgres driver")
		}
	default:
		return errors.Errorf("unknown store.driver %q", c.Store.Driver)
	}

	if len(c.Session.Secret) < minSecretLen {
		return errors.Errorf("session.secret is required and must be at least %d chars", minSecretLen)
	}
	if c.Session.TTL <= 0 {
		return errors.New("session.ttl must be positive")
	}
	return nil
}
