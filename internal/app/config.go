package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete application configuration, loadable from
// environment variables (POS_ prefix), flags, or YAML config files.
type Config struct {
	Addr      string `default:"0.0.0.0:8080" usage:"POS server listen address"`
	Store     StoreConfig
	Bootstrap BootstrapConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Graceful  GracefulConfig
}

// StoreConfig selects and configures the blob store backend.
type StoreConfig struct {
	Backend     string `default:"bolt" usage:"blob store backend: memory, bolt, or postgres"`
	Path        string `default:"pos.db" usage:"bbolt database file path" flag:"store-path"`
	DatabaseURL string `usage:"PostgreSQL connection URL (POS_STORE_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	Key         string `default:"myProductItems" usage:"blob entry holding the serialized catalog" flag:"catalog-key"`
}

// BootstrapConfig points at the dataset used to seed an empty catalog. When
// both File and URL are empty, the embedded default dataset is used.
type BootstrapConfig struct {
	File string `usage:"local products JSON file (.json or .json.gz)" flag:"bootstrap-file"`
	URL  string `usage:"URL serving the products JSON dataset" flag:"bootstrap-url"`
}

// RateLimitConfig controls the per-client sliding window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins []string `default:"*" usage:"Allowed CORS origins"`
	MaxAge  int      `default:"86400" usage:"Preflight cache duration in seconds" flag:"cors-max-age"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files, and applies platform defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "POS",
		Files:     []string{"config.yaml", "/etc/pos/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	switch cfg.Store.Backend {
	case "memory", "bolt":
	case "postgres":
		if cfg.Store.DatabaseURL == "" {
			return nil, errors.New("database URL is required for the postgres backend: set POS_STORE_DATABASE_URL or DATABASE_URL")
		}
	default:
		return nil, errors.Errorf("unknown store backend %q (want memory, bolt, or postgres)", cfg.Store.Backend)
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables that use
// standard names like DATABASE_URL and PORT to the POS_-prefixed
// configuration.
func (c *Config) applyPlatformDefaults() {
	if c.Store.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.Store.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
