package app

import (
	"os"
	"strings"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"

	"github.com/madangbooks/madang/internal/domain/customer"
	"github.com/madangbooks/madang/internal/domain/history"
	"github.com/madangbooks/madang/internal/domain/sale"
)

const defaultAddr = "0.0.0.0:8080"

// Config holds the complete application configuration, loadable from
// environment variables (MADANG_ prefix), flags, or YAML config files.
type Config struct {
	Addr        string `default:"0.0.0.0:8080" usage:"API server listen address"`
	Driver      string `default:"" usage:"Storage driver: postgres or sqlite (default: postgres when a database URL is set)"`
	DatabaseURL string `usage:"PostgreSQL connection URL (MADANG_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	SQLitePath  string `default:"madang.db" usage:"SQLite database file" flag:"sqlite-path"`
	Customer    CustomerConfig
	Sales       SalesConfig
	RateLimit   RateLimitConfig
	CORS        CORSConfig
	Graceful    GracefulConfig
}

// CustomerConfig sets the attributes of customers created by a sale.
type CustomerConfig struct {
	Variant string `default:"minimal" usage:"Default attribute variant: minimal or extended"`
	Address string `default:"" usage:"Default address, overrides the variant"`
	Phone   string `default:"" usage:"Default phone, overrides the variant"`
}

// SalesConfig sets order entry policy.
type SalesConfig struct {
	AllowZeroPrice     bool   `default:"true" usage:"Accept zero-priced sales" flag:"allow-zero-price"`
	AmbiguousNames     string `default:"first" usage:"Name shared by several customers: first or reject" flag:"ambiguous-names"`
	HistoryConcurrency int    `default:"4" usage:"Concurrent lookups of a multi-name history" flag:"history-concurrency"`
}

// RateLimitConfig controls the per-client sliding window limit on writes.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max write requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files and command-line flags, and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	return loadConfig(false)
}

// LoadEnvConfig is LoadConfig without flag parsing, for commands that own
// their flag set.
func LoadEnvConfig() (*Config, error) {
	return loadConfig(true)
}

func loadConfig(skipFlags bool) (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "MADANG",
		SkipFlags: skipFlags,
		Files:     []string{"config.yaml", "/etc/madang/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, etc.) that use standard names like DATABASE_URL and PORT to the
// application's MADANG_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == defaultAddr {
		c.Addr = "0.0.0.0:" + port
	}
	if c.Driver == "" {
		c.Driver = DriverSQLite
		if c.DatabaseURL != "" {
			c.Driver = DriverPostgres
		}
	}
}

// Validate checks the storage selection and the sales policy.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Driver) {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("database URL is required: set MADANG_DATABASE_URL or DATABASE_URL")
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return errors.New("sqlite path is required: set MADANG_SQLITEPATH")
		}
	default:
		return errors.Errorf("unknown storage driver %q", c.Driver)
	}
	_, err := c.SaleOptions()
	return err
}

// Storage returns the storage selection.
func (c *Config) Storage() StorageConfig {
	return StorageConfig{
		Driver:      strings.ToLower(c.Driver),
		DatabaseURL: c.DatabaseURL,
		SQLitePath:  c.SQLitePath,
	}
}

// CustomerDefaults returns the configured variant with explicit overrides.
func (c *Config) CustomerDefaults() (customer.Defaults, error) {
	d, err := customer.DefaultsFor(c.Customer.Variant)
	if err != nil {
		return customer.Defaults{}, err
	}
	if v := strings.TrimSpace(c.Customer.Address); v != "" {
		d.Address = v
	}
	if v := strings.TrimSpace(c.Customer.Phone); v != "" {
		d.Phone = v
	}
	return d, nil
}

// SaleOptions returns the sale.Service options for the configured policy.
func (c *Config) SaleOptions() ([]sale.Option, error) {
	defaults, err := c.CustomerDefaults()
	if err != nil {
		return nil, err
	}
	policy, err := customer.ParsePolicy(c.Sales.AmbiguousNames)
	if err != nil {
		return nil, err
	}
	limit := c.Sales.HistoryConcurrency
	if limit <= 0 {
		limit = history.DefaultConcurrency
	}
	return []sale.Option{
		sale.WithCustomerDefaults(defaults),
		sale.WithAmbiguityPolicy(policy),
		sale.WithZeroPrice(c.Sales.AllowZeroPrice),
		sale.WithHistoryConcurrency(limit),
	}, nil
}
