package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete application configuration, loadable from
// environment variables (VITRINE_ prefix), flags, or YAML config files.
type Config struct {
	Addr       string        `default:"0.0.0.0:8080" usage:"HTTP listen address"`
	CatalogURL string        `default:"https://dummyjson.com" usage:"Base URL of the remote catalog API" flag:"catalog-url"`
	StorePath  string        `default:"vitrine.db" usage:"Path to the local SQLite state store" flag:"store-path"`
	Timeout    time.Duration `default:"10s" usage:"Catalog request timeout"`
	Browse     BrowseConfig
	CORS       CORSConfig
	Graceful   GracefulConfig
}

// BrowseConfig controls catalog display behaviour.
type BrowseConfig struct {
	PageSize       int           `default:"20" usage:"Products per page" flag:"page-size"`
	SearchDebounce time.Duration `default:"500ms" usage:"Quiet period before a search change reloads" flag:"search-debounce"`
	CacheTTL       time.Duration `default:"5m" usage:"Freshness window for cached catalog responses" flag:"cache-ttl"`
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

// LoadConfig loads configuration from environment variables and YAML config
// files, applying platform-provided defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "VITRINE",
		Files:     []string{"config.yaml", "/etc/vitrine/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()
	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables that use
// standard names like PORT to the VITRINE_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
