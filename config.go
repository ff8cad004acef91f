package rango

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/eringen/rango/visit"
)

// Visit store backends selectable through VISIT_STORE.
const (
	VisitStoreSQLite = "sqlite"
	VisitStoreRedis  = visit.BackendRedis
	VisitStoreMemory = visit.BackendMemory
)

// SiteConfig holds all configuration for a rango site.
type SiteConfig struct {
	Name         string `env:"SITE_NAME" envDefault:"Rango"`                // Site name
	URL          string `env:"SITE_URL" envDefault:"http://localhost:8000"` // Canonical URL
	Description  string `env:"SITE_DESCRIPTION"`                            // RSS and meta description
	Addr         string `env:"ADDR" envDefault:":8000"`                     // Listen address
	DatabasePath string `env:"DATABASE_PATH" envDefault:"data/rango.db"`   // SQLite path

	SessionSecret string        `env:"SESSION_SECRET"`                    // Required: cookie signing secret
	CookieSecure  bool          `env:"COOKIE_SECURE"`                     // Set true for HTTPS
	SessionMaxAge time.Duration `env:"SESSION_MAX_AGE" envDefault:"336h"` // Session cookie lifetime

	VisitStore string        `env:"VISIT_STORE" envDefault:"sqlite"` // sqlite, redis or memory
	RedisURL   string        `env:"REDIS_URL"`                       // Required when VisitStore is redis
	VisitTTL   time.Duration `env:"VISIT_TTL" envDefault:"336h"`     // Idle visit state retention

	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"1m"`   // Index page cache TTL
	LogLevel string        `env:"LOG_LEVEL" envDefault:"info"` // debug, info, warn, error, off
}

// LoadConfig reads an optional .env file and then the process environment.
func LoadConfig() (SiteConfig, error) {
	_ = godotenv.Load() // .env is optional

	var cfg SiteConfig
	if err := env.Parse(&cfg); err != nil {
		return SiteConfig{}, fmt.Errorf("rango: parse env: %w", err)
	}
	cfg.setDefaults()
	return cfg, nil
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Rango"
	}
	if c.URL == "" {
		c.URL = "http://localhost:8000"
	}
	if c.Addr == "" {
		c.Addr = ":8000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/rango.db"
	}
	if c.SessionMaxAge == 0 {
		c.SessionMaxAge = 14 * 24 * time.Hour
	}
	if c.VisitStore == "" {
		c.VisitStore = VisitStoreSQLite
	}
	if c.VisitTTL == 0 {
		c.VisitTTL = 14 * 24 * time.Hour
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = time.Minute
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithClock replaces the clock used for visit tracking.
func WithClock(clock visit.Clock) Option {
	return func(a *App) {
		a.clock = clock
	}
}

// WithVisitStore overrides the backend selected by SiteConfig.VisitStore.
func WithVisitStore(store visit.Store) Option {
	return func(a *App) {
		a.visitStore = store
	}
}
