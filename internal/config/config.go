package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	applog "github.com/amosWeiskopf/sitegraph/internal/log"
	"github.com/amosWeiskopf/sitegraph/pkg/reporter"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Renderer names
const (
	RendererChrome = "chrome"
	RendererHTTP   = "http"
)

// DefaultUserAgent is sent by both renderers unless overridden
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X)"

// ErrInvalid is wrapped by every validation failure
var ErrInvalid = errors.New("invalid configuration")

// Config holds all application configuration
type Config struct {
	// Crawler configuration
	Crawler CrawlerConfig `mapstructure:"crawler"`

	// Output configuration
	Output OutputConfig `mapstructure:"output"`

	// Logging configuration
	Logging LoggingConfig `mapstructure:"logging"`

	// Metrics configuration
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// CrawlerConfig holds crawler-specific configuration
type CrawlerConfig struct {
	MaxDepth  int           `mapstructure:"max_depth"`
	MaxPages  int           `mapstructure:"max_pages"`
	Renderer  string        `mapstructure:"renderer"` // "chrome" or "http"
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
	Headless  bool          `mapstructure:"headless"`
}

// OutputConfig holds report configuration
type OutputConfig struct {
	Format    string `mapstructure:"format"` // "dot", "json" or "markdown"
	Path      string `mapstructure:"path"`   // empty means stdout
	TopLinked int    `mapstructure:"top_linked"`
	Progress  bool   `mapstructure:"progress"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "console" or "json"
}

// MetricsConfig holds the Prometheus endpoint configuration
type MetricsConfig struct {
	Addr string `mapstructure:"addr"` // empty disables the endpoint
}

// flagKeys maps command line flags to configuration keys
var flagKeys = map[string]string{
	"max-depth":    "crawler.max_depth",
	"max-pages":    "crawler.max_pages",
	"renderer":     "crawler.renderer",
	"timeout":      "crawler.timeout",
	"user-agent":   "crawler.user_agent",
	"headless":     "crawler.headless",
	"format":       "output.format",
	"output":       "output.path",
	"top-linked":   "output.top_linked",
	"progress":     "output.progress",
	"log-level":    "logging.level",
	"log-format":   "logging.format",
	"metrics-addr": "metrics.addr",
}

// Load reads configuration from defaults, an optional YAML file, SITEGRAPH_* environment
// variables and flags, in increasing order of precedence. flags may be nil.
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("sitegraph")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.sitegraph")
	}

	setDefaults(v)

	v.SetEnvPrefix("SITEGRAPH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		// Only an explicitly requested file has to exist
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Crawler defaults
	v.SetDefault("crawler.max_depth", 4)
	v.SetDefault("crawler.max_pages", 0)
	v.SetDefault("crawler.renderer", RendererChrome)
	v.SetDefault("crawler.timeout", "30s")
	v.SetDefault("crawler.user_agent", DefaultUserAgent)
	v.SetDefault("crawler.headless", true)

	// Output defaults
	v.SetDefault("output.format", reporter.FormatDOT)
	v.SetDefault("output.path", "")
	v.SetDefault("output.top_linked", 10)
	v.SetDefault("output.progress", false)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", applog.FormatConsole)

	v.SetDefault("metrics.addr", "")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Crawler.MaxDepth <= 0 {
		return fmt.Errorf("%w: crawler.max_depth must be positive", ErrInvalid)
	}
	if c.Crawler.MaxPages < 0 {
		return fmt.Errorf("%w: crawler.max_pages must not be negative", ErrInvalid)
	}
	if c.Crawler.Timeout <= 0 {
		return fmt.Errorf("%w: crawler.timeout must be positive", ErrInvalid)
	}
	if c.Crawler.Renderer != RendererChrome && c.Crawler.Renderer != RendererHTTP {
		return fmt.Errorf("%w: unknown renderer %q", ErrInvalid, c.Crawler.Renderer)
	}
	if !slices.Contains(reporter.Formats, c.Output.Format) {
		return fmt.Errorf("%w: unknown output format %q", ErrInvalid, c.Output.Format)
	}
	if c.Output.TopLinked < 0 {
		return fmt.Errorf("%w: output.top_linked must not be negative", ErrInvalid)
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.Logging.Level)); err != nil {
		return fmt.Errorf("%w: unknown log level %q", ErrInvalid, c.Logging.Level)
	}
	if c.Logging.Format != applog.FormatConsole && c.Logging.Format != applog.FormatJSON {
		return fmt.Errorf("%w: unknown log format %q", ErrInvalid, c.Logging.Format)
	}
	return nil
}
