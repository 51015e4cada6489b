package internal

import (
	"fmt"
	"log/slog"
	"net/url"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/folio/internal/prefs"
)

// Document sources.
const (
	SourceFS   = "fs"
	SourceHTTP = "http"
)

// Config represents the application configuration.
type Config struct {
	App   ApplicationConfig `yaml:"app"`
	Docs  DocsConfig        `yaml:"docs"`
	Prefs PrefsConfig       `yaml:"prefs"`
	CORS  CORSConfig        `yaml:"cors"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Docs.Validate(); err != nil {
		return err
	}
	return c.Prefs.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// DocsConfig describes where the documentation site lives.
//
// Source selects the provider:
//   - "fs" (default): Root is a local site directory.
//   - "http": BaseURL is the site's public URL.
type DocsConfig struct {
	Source             string        `yaml:"source"`
	Root               string        `yaml:"root"`
	BaseURL            string        `yaml:"base_url"`
	Manifest           string        `yaml:"manifest"`
	Prefix             string        `yaml:"prefix"`
	PreloadConcurrency int           `yaml:"preload_concurrency"`
	PreloadRPS         float64       `yaml:"preload_rps"`
	FetchTimeout       time.Duration `yaml:"fetch_timeout"`
	Watch              bool          `yaml:"watch"`
}

// Validate validates the docs configuration.
func (c *DocsConfig) Validate() error {
	if c.Source == "" {
		c.Source = SourceFS
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Source, validation.Required, validation.In(SourceFS, SourceHTTP)),
		validation.Field(&c.Root, validation.When(c.Source == SourceFS, validation.Required)),
		validation.Field(&c.BaseURL, validation.When(c.Source == SourceHTTP, validation.Required, validation.By(httpURL))),
		validation.Field(&c.Manifest, validation.Required),
		validation.Field(&c.Prefix, validation.Required),
		validation.Field(&c.PreloadConcurrency, validation.Min(0), validation.Max(256)),
		validation.Field(&c.PreloadRPS, validation.Min(0.0)),
		validation.Field(&c.FetchTimeout, validation.Min(time.Duration(0))),
		validation.Field(&c.Watch, validation.When(c.Watch, validation.By(func(any) error {
			if c.Source != SourceFS {
				return fmt.Errorf("watch requires source %q", SourceFS)
			}
			return nil
		}))),
	)
}

func httpURL(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("must be an http or https URL")
	}
	return nil
}

// PrefsConfig selects the preference store.
type PrefsConfig struct {
	Backend   string       `yaml:"backend"`
	SQLite    SQLiteConfig `yaml:"sqlite"`
	Redis     RedisConfig  `yaml:"redis"`
	MaxRecent int          `yaml:"max_recent"`
}

// Validate validates the preference configuration.
func (c *PrefsConfig) Validate() error {
	if c.Backend == "" {
		c.Backend = prefs.BackendSQLite
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Backend, validation.Required, validation.In(prefs.BackendSQLite, prefs.BackendRedis, prefs.BackendMemory)),
		validation.Field(&c.MaxRecent, validation.Min(0)),
	); err != nil {
		return err
	}
	switch c.Backend {
	case prefs.BackendSQLite:
		return c.SQLite.Validate()
	case prefs.BackendRedis:
		return c.Redis.Validate()
	}
	return nil
}

// Settings converts the configuration into prefs.Open arguments.
func (c *PrefsConfig) Settings() prefs.Settings {
	return prefs.Settings{
		Backend:    c.Backend,
		SQLitePath: c.SQLite.Path,
		Redis: prefs.RedisOptions{
			Addr:     c.Redis.Addr,
			Password: c.Redis.Password,
			DB:       c.Redis.DB,
		},
	}
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	DB       int    `yaml:"db"`
	Password string `yaml:"password"`
}

// Validate validates the Redis configuration.
func (c *RedisConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Addr, validation.Required),
		validation.Field(&c.DB, validation.Min(0)),
	)
}

// CORSConfig lists the origins allowed to call the API from a browser.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Docs: DocsConfig{
			Source:             SourceFS,
			Root:               "./site",
			Manifest:           "docs.json",
			Prefix:             "docs/",
			PreloadConcurrency: 8,
			FetchTimeout:       10 * time.Second,
		},
		Prefs: PrefsConfig{
			Backend:   prefs.BackendSQLite,
			SQLite:    SQLiteConfig{Path: "./folio.db"},
			Redis:     RedisConfig{Addr: "localhost:6379"},
			MaxRecent: prefs.DefaultMaxRecent,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
		},
	}
}
